package neighbourhood

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/imagery"
)

// buildLinearisedArray constructs a 4x4x3 array (one channel) whose voxel
// values equal the linear voxel index, matching spec §8 testable scenario 1.
func buildLinearisedArray(t *testing.T) *imagery.ImageArray {
	t.Helper()
	var images []*imagery.PlanarImage
	counter := 0.0
	for z := 0; z < 3; z++ {
		img, err := imagery.NewPlanarImage(4, 4, 1, 1, 1, 1,
			geom.NewVector3(1, 0, 0), geom.NewVector3(0, 1, 0),
			geom.NewVector3(0, 0, float64(z)), geom.Vector3{})
		require.NoError(t, err)
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				*img.Reference(r, c, 0) = counter
				counter++
			}
		}
		images = append(images, img)
	}
	return imagery.NewImageArray(images...)
}

func meanReducer(centre float64, neighbours []float64, _ geom.Vector3) float64 {
	sum, n := centre, 1.0
	for _, v := range neighbours {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	return sum / n
}

func TestSample_SphericalMeanOfCentreVoxelMatchesSevenValues(t *testing.T) {
	arr := buildLinearisedArray(t)

	// Before mutation, capture the original values that should contribute
	// to the centre voxel's mean: itself and its six face-adjacent
	// neighbours.
	centreImg := arr.Images[1]
	centreVal, _ := centreImg.Value(1, 1, 0)
	up, _ := centreImg.Value(0, 1, 0)
	down, _ := centreImg.Value(2, 1, 0)
	left, _ := centreImg.Value(1, 0, 0)
	right, _ := centreImg.Value(1, 2, 0)
	above, _ := arr.Images[2].Value(1, 1, 0)
	below, _ := arr.Images[0].Value(1, 1, 0)
	want := (centreVal + up + down + left + right + above + below) / 7

	spec := Spec{Kind: Spherical, RMax: 1.0}
	err := Sample(arr, geom.NewVector3(0, 0, 1), spec, meanReducer, nil, Config{Channel: 0})
	require.NoError(t, err)

	got, ok := arr.Images[1].Value(1, 1, 0)
	require.True(t, ok)
	assert.InDelta(t, want, got, 1e-9)
}

func TestSample_SelectionFillsNaNForOutOfBoundsOffsets(t *testing.T) {
	arr := buildLinearisedArray(t)

	var sawNaN bool
	reducer := func(centre float64, neighbours []float64, _ geom.Vector3) float64 {
		for _, v := range neighbours {
			if math.IsNaN(v) {
				sawNaN = true
			}
		}
		return centre
	}
	spec := Spec{Kind: Selection, Triplets: [][3]int{{-1, 0, 0}, {0, -1, 0}, {0, 0, -5}}}
	err := Sample(arr, geom.NewVector3(0, 0, 1), spec, reducer, nil, Config{Channel: 0})
	require.NoError(t, err)
	assert.True(t, sawNaN)
}

func TestSample_CubicRequiresRegularGrid(t *testing.T) {
	bottom, err := imagery.NewPlanarImage(4, 4, 1, 1, 1, 1,
		geom.NewVector3(1, 0, 0), geom.NewVector3(0, 1, 0), geom.Vector3{}, geom.Vector3{})
	require.NoError(t, err)
	top, err := imagery.NewPlanarImage(4, 4, 1, 1, 1, 1,
		geom.NewVector3(1, 0, 0), geom.NewVector3(0, 1, 0), geom.NewVector3(0, 0, 5), geom.Vector3{})
	require.NoError(t, err)
	arr := imagery.NewImageArray(bottom, top)

	err = Sample(arr, geom.NewVector3(0, 0, 1), Spec{Kind: Cubic, RMax: 1}, meanReducer, nil, Config{Channel: 0})
	require.Error(t, err)
}
