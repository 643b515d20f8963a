package imagery

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRasterizeChannel_ScalesToGrayscale(t *testing.T) {
	img := newTestImage(t, 2, 2, 1)
	*img.Reference(0, 0, 0) = 0
	*img.Reference(0, 1, 0) = 10

	gray := RasterizeChannel(img, 0, 0, 10)
	assert.Equal(t, uint8(0), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), gray.GrayAt(1, 0).Y)
}

func TestResampleTo_ProducesRequestedSize(t *testing.T) {
	img := newTestImage(t, 4, 4, 1)
	gray := RasterizeChannel(img, 0, 0, 1)

	resized := ResampleTo(gray, image.Rect(0, 0, 8, 8))
	assert.Equal(t, 8, resized.Bounds().Dx())
	assert.Equal(t, 8, resized.Bounds().Dy())
}
