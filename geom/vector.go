// Package geom implements the vector, plane, and rotation algebra shared by
// every geometric component of the core: contour cleaving, image geometry,
// and the neighbourhood sampler.
package geom

import (
	"fmt"
	"math"

	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// Vector3 is an ordered triple of finite doubles with the usual vector
// algebra. Callers are responsible for never calling Unit on a zero vector;
// Unit reports errs.ErrDegenerateInput in that case rather than panicking.
type Vector3 struct {
	X, Y, Z float64
}

// NewVector3 constructs a vector, panicking if any component is non-finite.
// Non-finite components indicate a programming error upstream (e.g. a NaN
// leaking out of a neighbourhood reduction), not a recoverable input
// condition, so this mirrors the teacher's pattern of panicking on
// parameters that violate a hard precondition (see BLAS's documented
// panic-on-malformed-parameters contract in the gonum reference package).
func NewVector3(x, y, z float64) Vector3 {
	if !isFinite(x) || !isFinite(y) || !isFinite(z) {
		panic(fmt.Sprintf("geom: non-finite vector component (%g, %g, %g)", x, y, z))
	}
	return Vector3{X: x, Y: y, Z: z}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Add returns v + w.
func (v Vector3) Add(w Vector3) Vector3 { return Vector3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vector3) Sub(w Vector3) Vector3 { return Vector3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns v * s.
func (v Vector3) Scale(s float64) Vector3 { return Vector3{v.X * s, v.Y * s, v.Z * s} }

// Neg returns -v.
func (v Vector3) Neg() Vector3 { return v.Scale(-1) }

// Dot returns the scalar (inner) product of v and w.
func (v Vector3) Dot(w Vector3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns v × w.
func (v Vector3) Cross(w Vector3) Vector3 {
	return Vector3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// LengthSq returns the squared Euclidean length.
func (v Vector3) LengthSq() float64 { return v.Dot(v) }

// Length returns the Euclidean length.
func (v Vector3) Length() float64 { return math.Sqrt(v.LengthSq()) }

// IsZero reports whether v has (numerically) zero length.
func (v Vector3) IsZero() bool { return v.LengthSq() < 1e-18 }

// Unit returns v scaled to unit length. It fails with errs.ErrDegenerateInput
// when v is the zero vector; callers must not invoke Unit on a vector they
// have not already checked for zero-ness (spec invariant).
func (v Vector3) Unit() (Vector3, error) {
	if v.IsZero() {
		return Vector3{}, &errs.DegenerateInputError{Op: "Vector3.Unit", Reason: "zero-length vector has no direction"}
	}
	return v.Scale(1 / v.Length()), nil
}

// Distance returns the Euclidean distance between v and w.
func (v Vector3) Distance(w Vector3) float64 { return v.Sub(w).Length() }

// Lerp returns the point a fraction t of the way from v to w.
func (v Vector3) Lerp(w Vector3, t float64) Vector3 {
	return v.Add(w.Sub(v).Scale(t))
}

// ApproxEqual reports whether v and w differ by no more than tol in each
// component.
func (v Vector3) ApproxEqual(w Vector3, tol float64) bool {
	return math.Abs(v.X-w.X) <= tol && math.Abs(v.Y-w.Y) <= tol && math.Abs(v.Z-w.Z) <= tol
}

// GramSchmidt orthogonalises a and b in place, producing two orthogonal unit
// vectors spanning the same plane as the inputs. a is preserved in
// direction (only normalised); b is replaced by the component of the
// original b orthogonal to a, then normalised. Fails with
// errs.ErrDegenerateInput when a is zero, b is zero, or a and b are
// parallel (the span degenerates to a line).
func GramSchmidt(a, b *Vector3) error {
	if a.IsZero() || b.IsZero() {
		return &errs.DegenerateInputError{Op: "GramSchmidt", Reason: "zero-length input vector"}
	}
	aUnit, err := a.Unit()
	if err != nil {
		return err
	}
	bPerp := b.Sub(aUnit.Scale(aUnit.Dot(*b)))
	if bPerp.IsZero() {
		return &errs.DegenerateInputError{Op: "GramSchmidt", Reason: "inputs are parallel"}
	}
	bUnit, err := bPerp.Unit()
	if err != nil {
		return err
	}
	*a = aUnit
	*b = bUnit
	return nil
}

// RotationFromTo returns a rotation matrix (row-major, 3x3 flattened) that
// carries unit vector u onto unit vector v, built from the double-reflection
// identity
//
//	R = 2*s*s^T/(s·s) - I, with s = u + v
//
// (a reflection through the plane orthogonal to u followed by one through
// the plane orthogonal to s, i.e. a half-turn about s), which avoids the singularities of a direct axis-angle formula when u and
// v are nearly anti-parallel. Fails with errs.ErrDegenerateInput if either
// input is not (numerically) unit length.
func RotationFromTo(u, v Vector3) ([3][3]float64, error) {
	const tol = 1e-9
	if math.Abs(u.LengthSq()-1) > tol || math.Abs(v.LengthSq()-1) > tol {
		return [3][3]float64{}, &errs.DegenerateInputError{Op: "RotationFromTo", Reason: "inputs must be unit vectors"}
	}

	sum := u.Add(v)
	sumSq := sum.LengthSq()
	if sumSq < 1e-18 {
		// u and v are antipodal: reflect through any plane containing u,
		// then reflect again through the plane orthogonal to u. Pick an
		// arbitrary vector not parallel to u to seed the construction.
		seed := Vector3{1, 0, 0}
		if math.Abs(u.X) > 0.9 {
			seed = Vector3{0, 1, 0}
		}
		axis, err := u.Cross(seed).Unit()
		if err != nil {
			return [3][3]float64{}, err
		}
		return reflectTwice(u, axis), nil
	}

	// R = (u·v+1)^-1 * (u+v)(u+v)^T - I (since |u+v|^2 = 2*(u·v+1)), the
	// standard single-pair reflection-composition rotation matrix.
	k := 2 / sumSq
	var r [3][3]float64
	s := [3]float64{sum.X, sum.Y, sum.Z}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = k*s[i]*s[j] - identity3[i][j]
		}
	}
	return r, nil
}

var identity3 = [3][3]float64{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// reflectTwice composes two reflections, through the plane orthogonal to u
// and then through the plane orthogonal to axis, producing a rotation that
// carries u to -u.
func reflectTwice(u, axis Vector3) [3][3]float64 {
	r1 := householder(u)
	r2 := householder(axis)
	return matMul(r2, r1)
}

// householder returns the reflection matrix through the plane orthogonal to
// unit vector n: H = I - 2*n*n^T.
func householder(n Vector3) [3][3]float64 {
	nn := [3]float64{n.X, n.Y, n.Z}
	var h [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h[i][j] = identity3[i][j] - 2*nn[i]*nn[j]
		}
	}
	return h
}

func matMul(a, b [3][3]float64) [3][3]float64 {
	var c [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[i][k] * b[k][j]
			}
			c[i][j] = sum
		}
	}
	return c
}

// ApplyRotation applies rotation matrix r to vector v.
func ApplyRotation(r [3][3]float64, v Vector3) Vector3 {
	return Vector3{
		X: r[0][0]*v.X + r[0][1]*v.Y + r[0][2]*v.Z,
		Y: r[1][0]*v.X + r[1][1]*v.Y + r[1][2]*v.Z,
		Z: r[2][0]*v.X + r[2][1]*v.Y + r[2][2]*v.Z,
	}
}
