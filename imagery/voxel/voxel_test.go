package voxel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeninja55/dicomautomaton-go/contour"
	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/imagery"
)

func newTestImage(t *testing.T, rows, cols int) *imagery.PlanarImage {
	t.Helper()
	img, err := imagery.NewPlanarImage(rows, cols, 1, 1, 1, 1,
		geom.NewVector3(1, 0, 0), geom.NewVector3(0, 1, 0), geom.Vector3{}, geom.Vector3{})
	require.NoError(t, err)
	return img
}

func squareCollection(minR, minC, maxR, maxC float64) *contour.Collection {
	pts := []geom.Vector3{
		geom.NewVector3(minR, minC, 0),
		geom.NewVector3(maxR, minC, 0),
		geom.NewVector3(maxR, maxC, 0),
		geom.NewVector3(minR, maxC, 0),
	}
	c := contour.NewContour(pts, true, nil)
	return contour.NewCollection(c)
}

func TestMutate_CentreInclusivity_VisitsOnlyInteriorVoxels(t *testing.T) {
	img := newTestImage(t, 4, 4)
	cc := squareCollection(0.5, 0.5, 2.5, 2.5)

	var visited int
	cfg := Config{EditStyle: InPlace, Aggregate: First, ContourOverlap: contour.Ignore, Inclusivity: Centre, Channel: 0}
	err := Mutate(img, []*contour.Collection{cc}, cfg, func(vc VoxelContext) (float64, error) {
		visited++
		return vc.Value + 1, nil
	})
	require.NoError(t, err)
	// rows/cols 1 and 2 (centres at 1,2) fall strictly inside (0.5,2.5) square => 2x2
	assert.Equal(t, 4, visited)

	v, _ := img.Value(1, 1, 0)
	assert.Equal(t, 1.0, v)
	v, _ = img.Value(0, 0, 0)
	assert.Equal(t, 0.0, v)
}

func TestComputeMask_NoCollectionsIsWhollyInterior(t *testing.T) {
	img := newTestImage(t, 2, 2)
	mask, err := ComputeMask(img, nil, Config{Inclusivity: Centre})
	require.NoError(t, err)
	for _, v := range mask {
		assert.True(t, v)
	}
}

func TestMutate_RejectsCopyMaskStyle(t *testing.T) {
	img := newTestImage(t, 2, 2)
	err := Mutate(img, nil, Config{EditStyle: CopyMask}, func(vc VoxelContext) (float64, error) { return vc.Value, nil })
	require.Error(t, err)
}

func TestApplyMaskModification_Invert(t *testing.T) {
	mask := []bool{true, false, false, true}
	out := applyMaskModification(mask, 2, 2, MaskInvert)
	assert.Equal(t, []bool{false, true, true, false}, out)
}

func TestApplyMaskModification_DilateAndErode(t *testing.T) {
	// single interior pixel at (1,1) of a 3x3 grid
	mask := make([]bool, 9)
	mask[1*3+1] = true

	dilated := applyMaskModification(mask, 3, 3, MaskDilate1)
	assert.True(t, dilated[0*3+1])
	assert.True(t, dilated[1*3+0])
	assert.True(t, dilated[1*3+1])

	eroded := applyMaskModification(dilated, 3, 3, MaskErode1)
	assert.True(t, eroded[1*3+1])
	assert.False(t, eroded[0*3+1])
}

func TestMutate_NeighbourhoodAdjacencyFillsWindowWithNaNAtEdges(t *testing.T) {
	img := newTestImage(t, 2, 2)
	cfg := Config{EditStyle: InPlace, Adjacency: Neighbourhood, Inclusivity: Centre, Channel: 0}

	var sawNaN bool
	err := Mutate(img, nil, cfg, func(vc VoxelContext) (float64, error) {
		for _, w := range vc.Window {
			if math.IsNaN(w) {
				sawNaN = true
			}
		}
		return vc.Value, nil
	})
	require.NoError(t, err)
	assert.True(t, sawNaN)
}

func TestMutateArray_PropagatesCallbackError(t *testing.T) {
	arr := imagery.NewImageArray(newTestImage(t, 2, 2), newTestImage(t, 2, 2))
	cfg := Config{EditStyle: InPlace, Inclusivity: Centre, Channel: 0}

	boom := assert.AnError
	err := MutateArray(arr, nil, cfg, func(vc VoxelContext) (float64, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
}
