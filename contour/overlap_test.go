package contour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeninja55/dicomautomaton-go/geom"
)

func squareAt(z, half float64, ccw bool) *Contour {
	pts := []geom.Vector3{
		geom.NewVector3(-half, -half, z),
		geom.NewVector3(half, -half, z),
		geom.NewVector3(half, half, z),
		geom.NewVector3(-half, half, z),
	}
	if !ccw {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return NewContour(pts, true, nil)
}

func insideFn(c *Contour, pt geom.Vector3) (bool, error) { return c.Inside(pt) }

// concentricSquares returns an outer CCW square of half-extent 2 and an
// inner square of half-extent 1, with the requested inner orientation.
func concentricSquares(innerCCW bool) *Collection {
	outer := squareAt(0, 2, true)
	inner := squareAt(0, 1, innerCCW)
	return NewCollection(outer, inner)
}

func TestInterior_HonourOppositeOrientations_Annulus(t *testing.T) {
	cc := concentricSquares(false) // inner is CW: opposite of outer

	inAnnulus := geom.NewVector3(1.5, 0, 0)
	inHole := geom.NewVector3(0, 0, 0)
	outside := geom.NewVector3(3, 3, 0)

	got, err := Interior(cc, inAnnulus, HonourOppositeOrientations, insideFn)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = Interior(cc, inHole, HonourOppositeOrientations, insideFn)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = Interior(cc, outside, HonourOppositeOrientations, insideFn)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestInterior_Ignore_OuterSquareOnly(t *testing.T) {
	cc := concentricSquares(false)

	inHole := geom.NewVector3(0, 0, 0)
	got, err := Interior(cc, inHole, Ignore, insideFn)
	require.NoError(t, err)
	assert.True(t, got, "ignore mode treats overlap as interior everywhere inside the outer boundary")
}

func TestInterior_ImplicitOrientations_Annulus(t *testing.T) {
	cc := concentricSquares(false)

	inAnnulus := geom.NewVector3(1.5, 0, 0)
	inHole := geom.NewVector3(0, 0, 0)

	got, err := Interior(cc, inAnnulus, ImplicitOrientations, insideFn)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = Interior(cc, inHole, ImplicitOrientations, insideFn)
	require.NoError(t, err)
	assert.False(t, got)
}
