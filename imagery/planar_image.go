// Package imagery implements the planar image and image array data model
// (spec §3, §4.2) along with the image-adjacency, voxel-mutation, and
// neighbourhood-sampling components built on top of it.
package imagery

import (
	"fmt"
	"math"

	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// InvalidIndex is the sentinel linear index returned by Index when a point
// falls outside the image's volume.
const InvalidIndex = -1

// PlanarImage is a rectangular pixel grid of one or more numeric channels.
// Voxel data is stored dense, channel-major within position: the value at
// (r, c, k) lives at offset (r*Columns+c)*Channels+k.
type PlanarImage struct {
	Rows     int
	Columns  int
	Channels int

	PxlDx float64 // row-axis in-plane pitch
	PxlDy float64 // column-axis in-plane pitch
	PxlDz float64 // through-plane thickness

	RowUnit geom.Vector3
	ColUnit geom.Vector3

	Anchor geom.Vector3
	Offset geom.Vector3

	Metadata map[string]string

	data []float64
}

// NewPlanarImage constructs a PlanarImage, validating every invariant in
// spec §3: positive dimensions and pitches, finite and unit row/column
// axes, and non-parallel axes.
func NewPlanarImage(rows, cols, channels int, pxlDx, pxlDy, pxlDz float64, rowUnit, colUnit, anchor, offset geom.Vector3) (*PlanarImage, error) {
	if rows < 1 || cols < 1 || channels < 1 {
		return nil, &errs.GridError{Reason: fmt.Sprintf("rows, columns and channels must be >= 1, got (%d,%d,%d)", rows, cols, channels)}
	}
	if pxlDx <= 0 || pxlDy <= 0 || pxlDz <= 0 {
		return nil, &errs.GridError{Reason: "pixel pitches and thickness must be strictly positive"}
	}

	ru, err := rowUnit.Unit()
	if err != nil {
		return nil, &errs.DegenerateInputError{Op: "NewPlanarImage", Reason: "row axis is zero-length"}
	}
	cu, err := colUnit.Unit()
	if err != nil {
		return nil, &errs.DegenerateInputError{Op: "NewPlanarImage", Reason: "column axis is zero-length"}
	}
	if math.Abs(ru.Dot(cu)) > 1e-6 {
		return nil, &errs.DegenerateInputError{Op: "NewPlanarImage", Reason: "row and column axes are not orthogonal"}
	}
	if ru.Cross(cu).IsZero() {
		return nil, &errs.DegenerateInputError{Op: "NewPlanarImage", Reason: "row and column axes are parallel"}
	}

	return &PlanarImage{
		Rows: rows, Columns: cols, Channels: channels,
		PxlDx: pxlDx, PxlDy: pxlDy, PxlDz: pxlDz,
		RowUnit: ru, ColUnit: cu,
		Anchor: anchor, Offset: offset,
		Metadata: make(map[string]string),
		data:     make([]float64, rows*cols*channels),
	}, nil
}

// Normal returns the in-plane normal, the cross product of the row- and
// column-axis unit vectors.
func (img *PlanarImage) Normal() geom.Vector3 {
	n, _ := img.RowUnit.Cross(img.ColUnit).Unit()
	return n
}

func (img *PlanarImage) bounds(r, c, k int) bool {
	return r >= 0 && r < img.Rows && c >= 0 && c < img.Columns && k >= 0 && k < img.Channels
}

func (img *PlanarImage) linearIndex(r, c, k int) int {
	return (r*img.Columns+c)*img.Channels + k
}

// Value reads voxel (r, c, k). The second return value is false when the
// coordinates are out of bounds, signalling invalidity separately from the
// (zero) data value as required by spec §4.2.
func (img *PlanarImage) Value(r, c, k int) (float64, bool) {
	if !img.bounds(r, c, k) {
		return 0, false
	}
	return img.data[img.linearIndex(r, c, k)], true
}

// Reference returns a pointer to voxel (r, c, k) for in-place mutation, or
// nil if out of bounds.
func (img *PlanarImage) Reference(r, c, k int) *float64 {
	if !img.bounds(r, c, k) {
		return nil
	}
	return &img.data[img.linearIndex(r, c, k)]
}

// Position returns the in-space location of voxel (r, c).
func (img *PlanarImage) Position(r, c int) geom.Vector3 {
	return img.Anchor.Add(img.Offset).
		Add(img.RowUnit.Scale(img.PxlDx * float64(r))).
		Add(img.ColUnit.Scale(img.PxlDy * float64(c)))
}

// Index returns the (row, col) of the voxel containing pt, or ok=false if
// pt falls outside the image's voxel volume (its in-plane footprint, or
// more than half the slice thickness PxlDz off the image plane). The
// computation inverts Position by projecting pt onto the row/column axes,
// which is exact because those axes are orthonormal.
func (img *PlanarImage) Index(pt geom.Vector3, channel int) (row, col, linear int, ok bool) {
	rel := pt.Sub(img.Anchor).Sub(img.Offset)
	rf := img.RowUnit.Dot(rel) / img.PxlDx
	cf := img.ColUnit.Dot(rel) / img.PxlDy

	r := int(math.Round(rf))
	c := int(math.Round(cf))
	if r < 0 || r >= img.Rows || c < 0 || c >= img.Columns || channel < 0 || channel >= img.Channels {
		return 0, 0, InvalidIndex, false
	}
	// Reject points whose perpendicular distance from the true row/col
	// grid line exceeds half a pixel pitch in either axis; Round already
	// enforces this for values inside [0,Rows)/[0,Cols), but points
	// outside the plane (through-plane offset beyond half the slice
	// thickness) must also fail.
	nf := img.Normal().Dot(rel) / img.PxlDz
	if math.Abs(rf-float64(r)) > 0.5+1e-9 || math.Abs(cf-float64(c)) > 0.5+1e-9 || math.Abs(nf) > 0.5+1e-9 {
		return 0, 0, InvalidIndex, false
	}
	return r, c, img.linearIndex(r, c, channel), true
}

// GetMetadata returns the value for key and whether it was present.
func (img *PlanarImage) GetMetadata(key string) (string, bool) {
	v, ok := img.Metadata[key]
	return v, ok
}

// SetMetadata sets key to value.
func (img *PlanarImage) SetMetadata(key, value string) {
	if img.Metadata == nil {
		img.Metadata = make(map[string]string)
	}
	img.Metadata[key] = value
}

// EraseMetadata removes key.
func (img *PlanarImage) EraseMetadata(key string) {
	delete(img.Metadata, key)
}

// MetadataKeys enumerates all metadata keys.
func (img *PlanarImage) MetadataKeys() []string {
	keys := make([]string, 0, len(img.Metadata))
	for k := range img.Metadata {
		keys = append(keys, k)
	}
	return keys
}

// DeepCopy returns an independent copy of img, including its own voxel
// buffer and metadata map.
func (img *PlanarImage) DeepCopy() *PlanarImage {
	cp := *img
	cp.data = make([]float64, len(img.data))
	copy(cp.data, img.data)
	cp.Metadata = make(map[string]string, len(img.Metadata))
	for k, v := range img.Metadata {
		cp.Metadata[k] = v
	}
	return &cp
}
