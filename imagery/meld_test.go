package imagery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridsMatch_IdenticalGrids(t *testing.T) {
	a := newTestArray(t, 2, 3, 3, 1.0)
	b := newTestArray(t, 2, 3, 3, 1.0)
	assert.True(t, GridsMatch(a, b))
}

func TestGridsMatch_DifferentImageCount(t *testing.T) {
	a := newTestArray(t, 2, 3, 3, 1.0)
	b := newTestArray(t, 3, 3, 3, 1.0)
	assert.False(t, GridsMatch(a, b))
}

func TestMeldImageArrays_SumsOverlappingGrids(t *testing.T) {
	a := newTestArray(t, 1, 2, 2, 1.0)
	b := newTestArray(t, 1, 2, 2, 1.0)
	*a.Images[0].Reference(0, 0, 0) = 3
	*b.Images[0].Reference(0, 0, 0) = 4

	err := MeldImageArrays(a, []*ImageArray{b}, MeldSum)
	require.NoError(t, err)

	v, _ := a.Images[0].Value(0, 0, 0)
	assert.Equal(t, float64(7), v)
}

func TestMeldImageArrays_SkipsNonMatchingGrids(t *testing.T) {
	a := newTestArray(t, 1, 2, 2, 1.0)
	mismatched := newTestArray(t, 1, 4, 4, 1.0)

	*a.Images[0].Reference(0, 0, 0) = 9
	err := MeldImageArrays(a, []*ImageArray{mismatched}, MeldSum)
	require.NoError(t, err)

	v, _ := a.Images[0].Value(0, 0, 0)
	assert.Equal(t, float64(9), v)
}

func TestMeldImageArrays_EmptyCollectionError(t *testing.T) {
	empty := NewImageArray()
	err := MeldImageArrays(empty, nil, MeldSum)
	require.Error(t, err)
}
