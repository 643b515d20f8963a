package imagery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeninja55/dicomautomaton-go/geom"
)

func newTestArray(t *testing.T, n, rows, cols int, zStep float64) *ImageArray {
	t.Helper()
	imgs := make([]*PlanarImage, n)
	for i := 0; i < n; i++ {
		img, err := NewPlanarImage(rows, cols, 1, 1.0, 1.0, zStep,
			geom.NewVector3(1, 0, 0), geom.NewVector3(0, 1, 0),
			geom.NewVector3(0, 0, 0), geom.NewVector3(0, 0, float64(i)*zStep))
		require.NoError(t, err)
		imgs[i] = img
	}
	return NewImageArray(imgs...)
}

func TestImageArray_RectilinearAndRegular(t *testing.T) {
	arr := newTestArray(t, 3, 4, 4, 1.0)
	assert.True(t, arr.IsRectilinear())
	assert.True(t, arr.IsRegular())
}

func TestImageArray_NotRectilinearOnMismatchedAxes(t *testing.T) {
	arr := newTestArray(t, 2, 4, 4, 1.0)
	other, err := NewPlanarImage(4, 4, 1, 1, 1, 1,
		geom.NewVector3(0, 1, 0), geom.NewVector3(1, 0, 0),
		geom.Vector3{}, geom.NewVector3(0, 0, 2))
	require.NoError(t, err)
	arr.Images = append(arr.Images, other)

	assert.False(t, arr.IsRectilinear())
	assert.False(t, arr.IsRegular())
}

func TestImageArray_NotRegularOnUnevenSpacing(t *testing.T) {
	arr := newTestArray(t, 3, 4, 4, 1.0)
	// Perturb the through-plane position of the last image.
	arr.Images[2].Offset = geom.NewVector3(0, 0, 10)

	assert.True(t, arr.IsRectilinear())
	assert.False(t, arr.IsRegular())
}

func TestImageArray_IndexFindsContainingImage(t *testing.T) {
	arr := newTestArray(t, 3, 4, 4, 1.0)
	pt := arr.Images[1].Position(2, 2)

	imgIdx, r, c, _, ok := arr.Index(pt, 0)
	require.True(t, ok)
	assert.Equal(t, 1, imgIdx)
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
}

func TestImageArray_DeepCopyIndependence(t *testing.T) {
	arr := newTestArray(t, 2, 2, 2, 1.0)
	*arr.Images[0].Reference(0, 0, 0) = 5

	cp := arr.DeepCopy()
	*arr.Images[0].Reference(0, 0, 0) = 50

	v, _ := cp.Images[0].Value(0, 0, 0)
	assert.Equal(t, float64(5), v)
}
