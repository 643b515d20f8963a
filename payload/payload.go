// Package payload implements the non-image, non-contour data kinds held by
// the Drover container: point clouds, surface meshes, line samples,
// treatment plans, and spatial transforms (spec §3, §4.9).
package payload

import (
	"github.com/google/uuid"

	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// PointCloud is an unordered collection of 3-D points with one shared
// metadata map; individual points carry no metadata of their own.
type PointCloud struct {
	Points   []geom.Vector3
	Metadata map[string]string
}

// NewPointCloud constructs a PointCloud.
func NewPointCloud(points []geom.Vector3) *PointCloud {
	return &PointCloud{Points: append([]geom.Vector3(nil), points...), Metadata: map[string]string{}}
}

// DeepCopy duplicates the point slice and metadata map.
func (p *PointCloud) DeepCopy() *PointCloud {
	cp := &PointCloud{Points: append([]geom.Vector3(nil), p.Points...), Metadata: map[string]string{}}
	for k, v := range p.Metadata {
		cp.Metadata[k] = v
	}
	return cp
}

// SurfaceMesh is a triangle mesh: a vertex list plus triangles referencing
// vertex indices.
type SurfaceMesh struct {
	Vertices  []geom.Vector3
	Triangles [][3]int
	Metadata  map[string]string
}

// NewSurfaceMesh constructs a SurfaceMesh, failing with
// errs.ErrDegenerateInput if any triangle references an out-of-range
// vertex index.
func NewSurfaceMesh(vertices []geom.Vector3, triangles [][3]int) (*SurfaceMesh, error) {
	for _, tri := range triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= len(vertices) {
				return nil, &errs.DegenerateInputError{Op: "NewSurfaceMesh", Reason: "triangle references out-of-range vertex"}
			}
		}
	}
	return &SurfaceMesh{
		Vertices:  append([]geom.Vector3(nil), vertices...),
		Triangles: append([][3]int(nil), triangles...),
		Metadata:  map[string]string{},
	}, nil
}

// SurfaceArea sums the area of every triangle.
func (m *SurfaceMesh) SurfaceArea() float64 {
	var total float64
	for _, tri := range m.Triangles {
		a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
		total += 0.5 * b.Sub(a).Cross(c.Sub(a)).Length()
	}
	return total
}

// DeepCopy duplicates vertex/triangle slices and the metadata map.
func (m *SurfaceMesh) DeepCopy() *SurfaceMesh {
	cp := &SurfaceMesh{
		Vertices:  append([]geom.Vector3(nil), m.Vertices...),
		Triangles: append([][3]int(nil), m.Triangles...),
		Metadata:  map[string]string{},
	}
	for k, v := range m.Metadata {
		cp.Metadata[k] = v
	}
	return cp
}

// LineSamplePoint is one (abscissa, ordinate) observation, e.g. a
// dose-volume histogram bin or a time-series sample.
type LineSamplePoint struct {
	X, Y float64
}

// LineSample is an ordered sequence of (x, y) samples, such as a DVH curve.
type LineSample struct {
	Samples  []LineSamplePoint
	Metadata map[string]string
}

// NewLineSample constructs a LineSample, failing with
// errs.ErrDegenerateInput if abscissae are not non-decreasing.
func NewLineSample(samples []LineSamplePoint) (*LineSample, error) {
	for i := 1; i < len(samples); i++ {
		if samples[i].X < samples[i-1].X {
			return nil, &errs.DegenerateInputError{Op: "NewLineSample", Reason: "abscissae must be non-decreasing"}
		}
	}
	return &LineSample{Samples: append([]LineSamplePoint(nil), samples...), Metadata: map[string]string{}}, nil
}

// Interpolate returns the linearly-interpolated ordinate at x, or ok=false
// if x falls outside the sample's domain.
func (ls *LineSample) Interpolate(x float64) (y float64, ok bool) {
	n := len(ls.Samples)
	if n == 0 || x < ls.Samples[0].X || x > ls.Samples[n-1].X {
		return 0, false
	}
	for i := 1; i < n; i++ {
		if x <= ls.Samples[i].X {
			a, b := ls.Samples[i-1], ls.Samples[i]
			if b.X == a.X {
				return a.Y, true
			}
			t := (x - a.X) / (b.X - a.X)
			return a.Y + t*(b.Y-a.Y), true
		}
	}
	return ls.Samples[n-1].Y, true
}

// StaticBeamState is one static control point within a dynamic beam state:
// a cumulative meterset weight plus free-form metadata (gantry angle,
// collimator positions, and similar beam-delivery parameters recorded as
// strings by the external loader).
type StaticBeamState struct {
	CumulativeMetersetWeight float64
	Metadata                 map[string]string
}

// DynamicBeamState is an ordered sequence of static states whose cumulative
// meterset weight must strictly increase (spec §6).
type DynamicBeamState struct {
	StaticStates []StaticBeamState
}

// Validate checks the strictly-monotonic-increasing invariant.
func (d *DynamicBeamState) Validate() error {
	for i := 1; i < len(d.StaticStates); i++ {
		if d.StaticStates[i].CumulativeMetersetWeight <= d.StaticStates[i-1].CumulativeMetersetWeight {
			return &errs.DegenerateInputError{Op: "DynamicBeamState.Validate", Reason: "cumulative meterset weight must strictly increase"}
		}
	}
	return nil
}

// TreatmentPlan is a sequence of dynamic beam states plus a generated
// identifier used for cross-referencing by metadata key (spec §3: "never by
// raw pointer").
type TreatmentPlan struct {
	UID          string
	DynamicBeams []DynamicBeamState
	Metadata     map[string]string
}

// NewTreatmentPlan constructs a TreatmentPlan, validating every beam's
// monotonicity invariant and stamping a fresh UID.
func NewTreatmentPlan(beams []DynamicBeamState) (*TreatmentPlan, error) {
	for i := range beams {
		if err := beams[i].Validate(); err != nil {
			return nil, err
		}
	}
	return &TreatmentPlan{
		UID:          uuid.NewString(),
		DynamicBeams: append([]DynamicBeamState(nil), beams...),
		Metadata:     map[string]string{},
	}, nil
}

// SpatialTransform is an abstract 3-D coordinate transform: an affine
// matrix (row-major 3x4, the last column the translation) plus an
// identifying UID for cross-referencing.
type SpatialTransform struct {
	UID      string
	Affine   [3][4]float64
	Metadata map[string]string
}

// Identity returns the identity spatial transform.
func Identity() *SpatialTransform {
	var m [3][4]float64
	m[0][0], m[1][1], m[2][2] = 1, 1, 1
	return &SpatialTransform{UID: uuid.NewString(), Affine: m, Metadata: map[string]string{}}
}

// Apply transforms pt by the affine matrix.
func (t *SpatialTransform) Apply(pt geom.Vector3) geom.Vector3 {
	m := t.Affine
	return geom.Vector3{
		X: m[0][0]*pt.X + m[0][1]*pt.Y + m[0][2]*pt.Z + m[0][3],
		Y: m[1][0]*pt.X + m[1][1]*pt.Y + m[1][2]*pt.Z + m[1][3],
		Z: m[2][0]*pt.X + m[2][1]*pt.Y + m[2][2]*pt.Z + m[2][3],
	}
}
