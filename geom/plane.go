package geom

import "github.com/codeninja55/dicomautomaton-go/internal/errs"

// Side classifies a point's position relative to a plane.
type Side int

const (
	// Below indicates the point is on the side opposite the normal.
	Below Side = iota - 1
	// On indicates the point lies on the plane within tolerance.
	On
	// Above indicates the point is on the side the normal points toward.
	Above
)

// Plane is a unit normal vector plus a point lying on the plane.
type Plane struct {
	Normal Vector3
	Point  Vector3
}

// NewPlane constructs a plane from a normal (normalised internally) and a
// point. Fails with errs.ErrDegenerateInput if normal is zero.
func NewPlane(normal, point Vector3) (Plane, error) {
	n, err := normal.Unit()
	if err != nil {
		return Plane{}, &errs.DegenerateInputError{Op: "NewPlane", Reason: "zero normal"}
	}
	return Plane{Normal: n, Point: point}, nil
}

// SignedDistance returns the signed distance from p to the plane: positive
// on the side the normal points toward.
func (p Plane) SignedDistance(pt Vector3) float64 {
	return p.Normal.Dot(pt.Sub(p.Point))
}

// Classify returns the Side of pt relative to the plane, treating distances
// within tol of zero as On.
func (p Plane) Classify(pt Vector3, tol float64) Side {
	d := p.SignedDistance(pt)
	switch {
	case d > tol:
		return Above
	case d < -tol:
		return Below
	default:
		return On
	}
}

// WithOffset returns a plane with the same normal, translated along the
// normal so that SignedDistance(origin-ish reference) shifts by offset; the
// new point is the old point advanced by offset along the normal.
func (p Plane) WithOffset(offset float64) Plane {
	return Plane{Normal: p.Normal, Point: p.Point.Add(p.Normal.Scale(offset))}
}
