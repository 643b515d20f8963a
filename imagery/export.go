package imagery

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// RasterizeChannel maps one channel of a planar image into an
// *image.Gray, linearly scaling [min, max] to [0, 255]. This exists as a
// debugging/export hook for external sinks (e.g. a "--export-png"-style
// operation); it does not participate in the analytical pipeline itself.
func RasterizeChannel(img *PlanarImage, channel int, min, max float64) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, img.Columns, img.Rows))
	span := max - min
	if span == 0 {
		span = 1
	}
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Columns; c++ {
			v, _ := img.Value(r, c, channel)
			t := (v - min) / span
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			out.SetGray(c, r, color.Gray{Y: uint8(math.Round(t * 255))})
		}
	}
	return out
}

// ResampleTo scales src into an image the size of dstBounds using
// golang.org/x/image/draw's high-quality resampler, for sinks that need a
// fixed-size preview regardless of the source grid's resolution.
func ResampleTo(src *image.Gray, dstBounds image.Rectangle) *image.Gray {
	dst := image.NewGray(dstBounds)
	draw.CatmullRom.Scale(dst, dstBounds, src, src.Bounds(), draw.Over, nil)
	return dst
}
