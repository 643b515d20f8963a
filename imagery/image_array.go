package imagery

import (
	"math"
	"sort"

	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// ImageArray is an ordered sequence of planar images sharing a coordinate
// system.
type ImageArray struct {
	Images []*PlanarImage
}

// NewImageArray wraps images in storage order without copying them.
func NewImageArray(images ...*PlanarImage) *ImageArray {
	return &ImageArray{Images: images}
}

// Len returns the number of images.
func (a *ImageArray) Len() int { return len(a.Images) }

const axisTol = 1e-6

// IsRectilinear reports whether every image shares row- and column-axis
// unit vectors and row/column pitch (spec §3). An empty or single-image
// array is trivially rectilinear.
func (a *ImageArray) IsRectilinear() bool {
	if len(a.Images) < 2 {
		return true
	}
	ref := a.Images[0]
	for _, img := range a.Images[1:] {
		if !img.RowUnit.ApproxEqual(ref.RowUnit, axisTol) ||
			!img.ColUnit.ApproxEqual(ref.ColUnit, axisTol) ||
			math.Abs(img.PxlDx-ref.PxlDx) > axisTol ||
			math.Abs(img.PxlDy-ref.PxlDy) > axisTol {
			return false
		}
	}
	return true
}

// IsRegular reports whether the array is rectilinear AND images are
// uniformly spaced along the common normal at the through-plane pitch AND
// all images share row/column counts (spec §3).
func (a *ImageArray) IsRegular() bool {
	if !a.IsRectilinear() {
		return false
	}
	if len(a.Images) < 2 {
		return true
	}
	ref := a.Images[0]
	normal := ref.Normal()

	positions := make([]float64, len(a.Images))
	for i, img := range a.Images {
		if img.Rows != ref.Rows || img.Columns != ref.Columns {
			return false
		}
		positions[i] = normal.Dot(img.Anchor.Add(img.Offset))
	}

	sortedPositions := append([]float64(nil), positions...)
	sort.Float64s(sortedPositions)

	for i := 1; i < len(sortedPositions); i++ {
		step := sortedPositions[i] - sortedPositions[i-1]
		if math.Abs(step-ref.PxlDz) > axisTol {
			return false
		}
	}
	return true
}

// Position returns the in-space location of voxel (imgIdx, r, c).
func (a *ImageArray) Position(imgIdx, r, c int) (geom.Vector3, error) {
	if imgIdx < 0 || imgIdx >= len(a.Images) {
		return geom.Vector3{}, errs.ErrNoMatch
	}
	return a.Images[imgIdx].Position(r, c), nil
}

// Index returns the image index, row, column, and linear index of the
// voxel containing pt on the requested channel, or ok=false when pt falls
// outside every image's volume.
func (a *ImageArray) Index(pt geom.Vector3, channel int) (imgIdx, row, col, linear int, ok bool) {
	for i, img := range a.Images {
		if r, c, lin, found := img.Index(pt, channel); found {
			return i, r, c, lin, true
		}
	}
	return 0, 0, 0, InvalidIndex, false
}

// DeepCopy duplicates every image's storage.
func (a *ImageArray) DeepCopy() *ImageArray {
	out := &ImageArray{Images: make([]*PlanarImage, len(a.Images))}
	for i, img := range a.Images {
		out.Images[i] = img.DeepCopy()
	}
	return out
}

// ShallowCopy shares the same underlying *PlanarImage pointers.
func (a *ImageArray) ShallowCopy() *ImageArray {
	out := &ImageArray{Images: make([]*PlanarImage, len(a.Images))}
	copy(out.Images, a.Images)
	return out
}
