package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeninja55/dicomautomaton-go/geom"
)

func TestPointCloud_DeepCopyIndependence(t *testing.T) {
	pc := NewPointCloud([]geom.Vector3{geom.NewVector3(1, 2, 3)})
	pc.Metadata["k"] = "v"

	cp := pc.DeepCopy()
	pc.Points[0] = geom.NewVector3(9, 9, 9)
	pc.Metadata["k"] = "changed"

	assert.True(t, cp.Points[0].ApproxEqual(geom.NewVector3(1, 2, 3), 1e-12))
	assert.Equal(t, "v", cp.Metadata["k"])
}

func TestSurfaceMesh_RejectsOutOfRangeTriangle(t *testing.T) {
	verts := []geom.Vector3{geom.NewVector3(0, 0, 0), geom.NewVector3(1, 0, 0), geom.NewVector3(0, 1, 0)}
	_, err := NewSurfaceMesh(verts, [][3]int{{0, 1, 5}})
	require.Error(t, err)
}

func TestSurfaceMesh_SurfaceArea(t *testing.T) {
	verts := []geom.Vector3{geom.NewVector3(0, 0, 0), geom.NewVector3(1, 0, 0), geom.NewVector3(0, 1, 0)}
	m, err := NewSurfaceMesh(verts, [][3]int{{0, 1, 2}})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, m.SurfaceArea(), 1e-12)
}

func TestLineSample_RejectsNonMonotonicAbscissae(t *testing.T) {
	_, err := NewLineSample([]LineSamplePoint{{X: 1, Y: 0}, {X: 0, Y: 1}})
	require.Error(t, err)
}

func TestLineSample_InterpolateLinear(t *testing.T) {
	ls, err := NewLineSample([]LineSamplePoint{{X: 0, Y: 0}, {X: 10, Y: 100}})
	require.NoError(t, err)

	y, ok := ls.Interpolate(5)
	require.True(t, ok)
	assert.InDelta(t, 50, y, 1e-9)

	_, ok = ls.Interpolate(20)
	assert.False(t, ok)
}

func TestDynamicBeamState_ValidatesMonotonicMetersetWeight(t *testing.T) {
	good := DynamicBeamState{StaticStates: []StaticBeamState{{CumulativeMetersetWeight: 0}, {CumulativeMetersetWeight: 0.5}, {CumulativeMetersetWeight: 1}}}
	require.NoError(t, good.Validate())

	bad := DynamicBeamState{StaticStates: []StaticBeamState{{CumulativeMetersetWeight: 0.5}, {CumulativeMetersetWeight: 0.5}}}
	require.Error(t, bad.Validate())
}

func TestNewTreatmentPlan_StampsUID(t *testing.T) {
	plan, err := NewTreatmentPlan([]DynamicBeamState{{StaticStates: []StaticBeamState{{CumulativeMetersetWeight: 0}, {CumulativeMetersetWeight: 1}}}})
	require.NoError(t, err)
	assert.NotEmpty(t, plan.UID)
}

func TestSpatialTransform_IdentityIsNoOp(t *testing.T) {
	id := Identity()
	pt := geom.NewVector3(1, 2, 3)
	assert.True(t, id.Apply(pt).ApproxEqual(pt, 1e-12))
}
