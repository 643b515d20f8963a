// Package drover implements the Drover data container: the typed aggregate
// holding every payload kind an operation pipeline works over (spec §3,
// §4.4). The container is a tagged-variant model — one list per payload
// kind — never a polymorphic base class.
package drover

import (
	"github.com/codeninja55/dicomautomaton-go/contour"
	"github.com/codeninja55/dicomautomaton-go/imagery"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
	"github.com/codeninja55/dicomautomaton-go/payload"
)

// Drover owns every payload list an operation pipeline may read or write.
// Zero value is a valid, empty Drover.
type Drover struct {
	ContourData      *contour.Data
	ImageArrays      []*imagery.ImageArray
	PointClouds      []*payload.PointCloud
	SurfaceMeshes    []*payload.SurfaceMesh
	TreatmentPlans   []*payload.TreatmentPlan
	LineSamples      []*payload.LineSample
	SpatialTransforms []*payload.SpatialTransform
}

// New returns an empty Drover.
func New() *Drover {
	return &Drover{}
}

// ShallowCopy returns a Drover sharing payload ownership with d: every
// slice is copied, but the elements (pointers) are the same underlying
// payloads.
func (d *Drover) ShallowCopy() *Drover {
	cp := &Drover{ContourData: d.ContourData}
	cp.ImageArrays = append(cp.ImageArrays, d.ImageArrays...)
	cp.PointClouds = append(cp.PointClouds, d.PointClouds...)
	cp.SurfaceMeshes = append(cp.SurfaceMeshes, d.SurfaceMeshes...)
	cp.TreatmentPlans = append(cp.TreatmentPlans, d.TreatmentPlans...)
	cp.LineSamples = append(cp.LineSamples, d.LineSamples...)
	cp.SpatialTransforms = append(cp.SpatialTransforms, d.SpatialTransforms...)
	return cp
}

// DeepCopy returns a Drover whose contour data, image arrays, point clouds
// and surface meshes are independently duplicated. Treatment plans, line
// samples and spatial transforms are not duplicated: the copy holds the
// same pointers as d. Reports errs.ErrFatal only if asked to copy a nil ImageArrays entry,
// which would indicate a prior invariant violation rather than a normal
// allocation failure (Go does not model allocation failure as a recoverable
// error).
func (d *Drover) DeepCopy() (*Drover, error) {
	cp := New()
	if d.ContourData != nil {
		dataCopy := &contour.Data{Collections: make([]*contour.Collection, len(d.ContourData.Collections))}
		for i, cc := range d.ContourData.Collections {
			dataCopy.Collections[i] = cc.DeepCopy()
		}
		cp.ContourData = dataCopy
	}
	for _, ia := range d.ImageArrays {
		if ia == nil {
			return nil, errs.ErrFatal
		}
		cp.ImageArrays = append(cp.ImageArrays, ia.DeepCopy())
	}
	for _, pc := range d.PointClouds {
		cp.PointClouds = append(cp.PointClouds, pc.DeepCopy())
	}
	for _, sm := range d.SurfaceMeshes {
		cp.SurfaceMeshes = append(cp.SurfaceMeshes, sm.DeepCopy())
	}
	// Treatment plans, line samples, and spatial transforms are treated
	// as immutable once loaded (their UID is their identity), so the
	// deep copy shares them; an operation that needs an independent
	// mutable copy constructs one explicitly via the payload package.
	cp.TreatmentPlans = append(cp.TreatmentPlans, d.TreatmentPlans...)
	cp.LineSamples = append(cp.LineSamples, d.LineSamples...)
	cp.SpatialTransforms = append(cp.SpatialTransforms, d.SpatialTransforms...)
	return cp, nil
}

// Consume moves every payload from other into d without copying, leaving
// other empty.
func (d *Drover) Consume(other *Drover) {
	if other.ContourData != nil {
		if d.ContourData == nil {
			d.ContourData = &contour.Data{}
		}
		d.ContourData.Collections = append(d.ContourData.Collections, other.ContourData.Collections...)
		other.ContourData = nil
	}
	d.ImageArrays = append(d.ImageArrays, other.ImageArrays...)
	d.PointClouds = append(d.PointClouds, other.PointClouds...)
	d.SurfaceMeshes = append(d.SurfaceMeshes, other.SurfaceMeshes...)
	d.TreatmentPlans = append(d.TreatmentPlans, other.TreatmentPlans...)
	d.LineSamples = append(d.LineSamples, other.LineSamples...)
	d.SpatialTransforms = append(d.SpatialTransforms, other.SpatialTransforms...)

	other.ImageArrays = nil
	other.PointClouds = nil
	other.SurfaceMeshes = nil
	other.TreatmentPlans = nil
	other.LineSamples = nil
	other.SpatialTransforms = nil
}

// ImageArrayByIndex returns the image array at idx, or errs.ErrNoMatch if
// out of bounds.
func (d *Drover) ImageArrayByIndex(idx int) (*imagery.ImageArray, error) {
	if idx < 0 || idx >= len(d.ImageArrays) {
		return nil, errs.ErrNoMatch
	}
	return d.ImageArrays[idx], nil
}

// ContourCollectionByROIName returns the first contour collection whose
// metadata carries ROIName == name, or errs.ErrNoMatch.
func (d *Drover) ContourCollectionByROIName(name string) (*contour.Collection, error) {
	if d.ContourData == nil {
		return nil, errs.ErrNoMatch
	}
	for _, cc := range d.ContourData.Collections {
		if v, ok := cc.Metadata("ROIName"); ok && v == name {
			return cc, nil
		}
	}
	return nil, errs.ErrNoMatch
}

// TreatmentPlanByUID returns the plan with the given UID, or
// errs.ErrNoMatch.
func (d *Drover) TreatmentPlanByUID(uid string) (*payload.TreatmentPlan, error) {
	for _, p := range d.TreatmentPlans {
		if p.UID == uid {
			return p, nil
		}
	}
	return nil, errs.ErrNoMatch
}

// RemoveImageArray deletes the image array at idx.
func (d *Drover) RemoveImageArray(idx int) error {
	if idx < 0 || idx >= len(d.ImageArrays) {
		return errs.ErrNoMatch
	}
	d.ImageArrays = append(d.ImageArrays[:idx], d.ImageArrays[idx+1:]...)
	return nil
}
