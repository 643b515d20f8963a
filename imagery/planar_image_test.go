package imagery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeninja55/dicomautomaton-go/geom"
)

func newTestImage(t *testing.T, rows, cols, channels int) *PlanarImage {
	t.Helper()
	img, err := NewPlanarImage(rows, cols, channels, 1.0, 1.0, 1.0,
		geom.NewVector3(1, 0, 0), geom.NewVector3(0, 1, 0),
		geom.NewVector3(0, 0, 0), geom.Vector3{})
	require.NoError(t, err)
	return img
}

func TestNewPlanarImage_RejectsNonPositiveDimensions(t *testing.T) {
	_, err := NewPlanarImage(0, 4, 1, 1, 1, 1, geom.NewVector3(1, 0, 0), geom.NewVector3(0, 1, 0), geom.Vector3{}, geom.Vector3{})
	require.Error(t, err)
}

func TestNewPlanarImage_RejectsParallelAxes(t *testing.T) {
	_, err := NewPlanarImage(4, 4, 1, 1, 1, 1, geom.NewVector3(1, 0, 0), geom.NewVector3(2, 0, 0), geom.Vector3{}, geom.Vector3{})
	require.ErrorContains(t, err, "degenerate")
}

func TestPlanarImage_ValueAndReference(t *testing.T) {
	img := newTestImage(t, 3, 3, 1)

	_, ok := img.Value(5, 5, 0)
	assert.False(t, ok)

	ref := img.Reference(1, 1, 0)
	require.NotNil(t, ref)
	*ref = 42
	v, ok := img.Value(1, 1, 0)
	require.True(t, ok)
	assert.Equal(t, float64(42), v)
}

func TestPlanarImage_PositionIsLinearInRowCol(t *testing.T) {
	img := newTestImage(t, 4, 4, 1)

	p00 := img.Position(0, 0)
	p10 := img.Position(1, 0)
	p01 := img.Position(0, 1)
	p11 := img.Position(1, 1)

	// Linearity: p(1,1) - p(0,0) == (p(1,0)-p(0,0)) + (p(0,1)-p(0,0)).
	sum := p10.Sub(p00).Add(p01.Sub(p00))
	assert.True(t, p11.Sub(p00).ApproxEqual(sum, 1e-9))
}

func TestPlanarImage_IndexRoundTrip(t *testing.T) {
	img := newTestImage(t, 4, 4, 2)

	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			pos := img.Position(r, c)
			for k := 0; k < 2; k++ {
				gotR, gotC, lin, ok := img.Index(pos, k)
				require.True(t, ok)
				assert.Equal(t, r, gotR)
				assert.Equal(t, c, gotC)
				assert.Equal(t, img.linearIndex(r, c, k), lin)
			}
		}
	}
}

func TestPlanarImage_MetadataRoundTrip(t *testing.T) {
	img := newTestImage(t, 1, 1, 1)
	img.SetMetadata("ROIName", "Body")
	v, ok := img.GetMetadata("ROIName")
	require.True(t, ok)
	assert.Equal(t, "Body", v)

	img.EraseMetadata("ROIName")
	_, ok = img.GetMetadata("ROIName")
	assert.False(t, ok)
}

func TestPlanarImage_DeepCopyIsIndependent(t *testing.T) {
	img := newTestImage(t, 2, 2, 1)
	*img.Reference(0, 0, 0) = 7
	cp := img.DeepCopy()

	*img.Reference(0, 0, 0) = 99
	v, _ := cp.Value(0, 0, 0)
	assert.Equal(t, float64(7), v)
}
