// Package adjacency implements image-array adjacency queries (spec §4.5):
// an integer z-indexing of images along a chosen normal such that adjacent
// integers correspond to physically adjacent planes.
package adjacency

import (
	"sort"

	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/imagery"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// Adjacency answers image-neighbour and point-in-grid queries for an
// ImageArray that forms a rectilinear grid. Valid only while the
// underlying images' geometry is unmodified; voxel value updates are
// permitted.
type Adjacency struct {
	array  *imagery.ImageArray
	normal geom.Vector3

	order      []int     // order[z] = index into array.Images for z-index z
	imageToIdx map[*imagery.PlanarImage]int
}

// New constructs an Adjacency over array along normal. Fails with
// errs.ErrInvalidGrid when the images do not form a rectilinear grid.
// Construction is O(N log N) in the number of images.
func New(array *imagery.ImageArray, normal geom.Vector3) (*Adjacency, error) {
	if !array.IsRectilinear() {
		return nil, &errs.GridError{Reason: "image set is not rectilinear"}
	}
	n, err := normal.Unit()
	if err != nil {
		return nil, err
	}

	type posIdx struct {
		pos float64
		idx int
	}
	entries := make([]posIdx, len(array.Images))
	for i, img := range array.Images {
		entries[i] = posIdx{pos: n.Dot(img.Anchor.Add(img.Offset)), idx: i}
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].pos < entries[b].pos })

	order := make([]int, len(entries))
	imageToIdx := make(map[*imagery.PlanarImage]int, len(array.Images))
	for z, e := range entries {
		order[z] = e.idx
		imageToIdx[array.Images[e.idx]] = z
	}

	return &Adjacency{array: array, normal: n, order: order, imageToIdx: imageToIdx}, nil
}

// ImagePresent reports whether img belongs to this adjacency's array.
func (a *Adjacency) ImagePresent(img *imagery.PlanarImage) bool {
	_, ok := a.imageToIdx[img]
	return ok
}

// IndexPresent reports whether z is a valid z-index.
func (a *Adjacency) IndexPresent(z int) bool {
	return z >= 0 && z < len(a.order)
}

// IndexToImage returns the image at z-index z.
func (a *Adjacency) IndexToImage(z int) (*imagery.PlanarImage, error) {
	if !a.IndexPresent(z) {
		return nil, errs.ErrNoMatch
	}
	return a.array.Images[a.order[z]], nil
}

// ImageToIndex returns the z-index of img.
func (a *Adjacency) ImageToIndex(img *imagery.PlanarImage) (int, error) {
	z, ok := a.imageToIdx[img]
	if !ok {
		return 0, errs.ErrNoMatch
	}
	return z, nil
}

// GetWhollyOverlappingImages returns every image in the array whose in-plane
// footprint (row/column extent, in-plane axes, and anchor position
// projected onto the plane) exactly matches img's, excluding img itself,
// so a caller can find a partner image at the same in-plane location on a
// possibly different z-index. (imagery.MeldImageArrays does not use it; it
// pairs whole arrays via imagery.GridsMatch.)
func (a *Adjacency) GetWhollyOverlappingImages(img *imagery.PlanarImage) []*imagery.PlanarImage {
	var out []*imagery.PlanarImage
	for _, other := range a.array.Images {
		if other == img {
			continue
		}
		if other.Rows == img.Rows && other.Columns == img.Columns &&
			other.RowUnit.ApproxEqual(img.RowUnit, 1e-6) &&
			other.ColUnit.ApproxEqual(img.ColUnit, 1e-6) &&
			inPlanePosition(other, a.normal).ApproxEqual(inPlanePosition(img, a.normal), 1e-6) {
			out = append(out, other)
		}
	}
	return out
}

// inPlanePosition projects an image's anchor+offset onto the plane
// orthogonal to normal, discarding the through-plane component, so two
// images at different z-indices but the same in-plane footprint compare
// equal.
func inPlanePosition(img *imagery.PlanarImage, normal geom.Vector3) geom.Vector3 {
	pos := img.Anchor.Add(img.Offset)
	return pos.Sub(normal.Scale(normal.Dot(pos)))
}
