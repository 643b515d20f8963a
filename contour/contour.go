// Package contour implements the contour-of-points model, the contour
// collection / contour data aggregates, and the plane-bisection cleaver
// (spec §3, §4.3, §4.8, §4.9 supplements).
package contour

import (
	"math"

	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// Contour is an ordered sequence of 3-vectors, closed or open, with a
// string-to-string metadata map. A closed contour is an oriented polygon.
type Contour struct {
	Points   []geom.Vector3
	Closed   bool
	Metadata map[string]string
}

// NewContour constructs a contour, copying metadata defensively if non-nil.
func NewContour(points []geom.Vector3, closed bool, metadata map[string]string) *Contour {
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	pts := append([]geom.Vector3(nil), points...)
	return &Contour{Points: pts, Closed: closed, Metadata: md}
}

// Centroid returns the arithmetic mean of the contour's vertices. Fails
// with errs.ErrEmptyCollection when the contour has no points.
func (c *Contour) Centroid() (geom.Vector3, error) {
	if len(c.Points) == 0 {
		return geom.Vector3{}, errs.ErrEmptyCollection
	}
	sum := geom.Vector3{}
	for _, p := range c.Points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(c.Points))), nil
}

// AverageNormal estimates a representative plane normal by summing the
// cross products of consecutive centroid-relative edge vectors (Newell's
// method), which tolerates mild non-planarity. Fails with
// errs.ErrDegenerateInput for fewer than 3 points or a degenerate (zero)
// accumulated normal.
func (c *Contour) AverageNormal() (geom.Vector3, error) {
	if len(c.Points) < 3 {
		return geom.Vector3{}, &errs.DegenerateInputError{Op: "Contour.AverageNormal", Reason: "fewer than 3 points"}
	}
	centroid, err := c.Centroid()
	if err != nil {
		return geom.Vector3{}, err
	}
	n := geom.Vector3{}
	count := len(c.Points)
	for i := 0; i < count; i++ {
		a := c.Points[i].Sub(centroid)
		b := c.Points[(i+1)%count].Sub(centroid)
		n = n.Add(a.Cross(b))
	}
	unit, err := n.Unit()
	if err != nil {
		return geom.Vector3{}, &errs.DegenerateInputError{Op: "Contour.AverageNormal", Reason: "accumulated normal is zero"}
	}
	return unit, nil
}

// Plane returns the contour's plane: AverageNormal anchored at Centroid.
func (c *Contour) Plane() (geom.Plane, error) {
	n, err := c.AverageNormal()
	if err != nil {
		return geom.Plane{}, err
	}
	centroid, err := c.Centroid()
	if err != nil {
		return geom.Plane{}, err
	}
	return geom.NewPlane(n, centroid)
}

// SignedArea returns the polygon area, signed according to winding about
// normal (positive for counter-clockwise as seen looking against normal).
// Uses the generalized shoelace formula projected onto normal (Newell's
// formula halved), valid for planar or near-planar closed contours.
func (c *Contour) SignedArea(normal geom.Vector3) (float64, error) {
	if len(c.Points) < 3 {
		return 0, &errs.DegenerateInputError{Op: "Contour.SignedArea", Reason: "fewer than 3 points"}
	}
	n, err := normal.Unit()
	if err != nil {
		return 0, err
	}
	sum := geom.Vector3{}
	count := len(c.Points)
	for i := 0; i < count; i++ {
		a := c.Points[i]
		b := c.Points[(i+1)%count]
		sum = sum.Add(a.Cross(b))
	}
	return 0.5 * n.Dot(sum), nil
}

// Area returns the unsigned polygon area about the contour's own average
// normal.
func (c *Contour) Area() (float64, error) {
	n, err := c.AverageNormal()
	if err != nil {
		return 0, err
	}
	a, err := c.SignedArea(n)
	if err != nil {
		return 0, err
	}
	return math.Abs(a), nil
}

// Orientation returns +1 for counter-clockwise winding, -1 for clockwise,
// measured about a reference normal derived from the point positions alone
// (geom.OrthogonalRegression), not from AverageNormal: AverageNormal's
// Newell-sum direction is itself derived from vertex order, so it reverses
// in lockstep with the winding and SignedArea about it is always
// non-negative — it cannot tell CCW from CW. OrthogonalRegression's
// least-variance-direction fit depends only on the point set, not its
// traversal order, so it gives a fixed reference to measure winding
// against.
func (c *Contour) Orientation() (int, error) {
	plane, err := geom.OrthogonalRegression(c.Points)
	if err != nil {
		return 0, err
	}
	a, err := c.SignedArea(plane.Normal)
	if err != nil {
		return 0, err
	}
	if a < 0 {
		return -1, nil
	}
	return 1, nil
}

// OrientationAbout returns +1 if the contour winds counter-clockwise about
// the given normal, -1 if clockwise. Unlike Orientation, which measures
// winding about a normal fitted to the contour's own points, this lets two
// contours be compared against one shared reference normal, which is what
// distinguishes a CCW contour from an oppositely wound CW one.
func (c *Contour) OrientationAbout(normal geom.Vector3) (int, error) {
	a, err := c.SignedArea(normal)
	if err != nil {
		return 0, err
	}
	if a < 0 {
		return -1, nil
	}
	return 1, nil
}

// ReorientCCW reverses vertex order if Orientation() currently reports
// the contour as clockwise, so that Orientation() == +1 afterward. Supplemented from the original implementation's
// Reorient_Counter_Clockwise helper (Structs.h).
func (c *Contour) ReorientCCW() error {
	o, err := c.Orientation()
	if err != nil {
		return err
	}
	if o < 0 {
		for i, j := 0, len(c.Points)-1; i < j; i, j = i+1, j-1 {
			c.Points[i], c.Points[j] = c.Points[j], c.Points[i]
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box (min, max corners).
func (c *Contour) Bounds() (min, max geom.Vector3, err error) {
	if len(c.Points) == 0 {
		return geom.Vector3{}, geom.Vector3{}, errs.ErrEmptyCollection
	}
	min, max = c.Points[0], c.Points[0]
	for _, p := range c.Points[1:] {
		min = geom.Vector3{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = geom.Vector3{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	return min, max, nil
}

// ResampleEvenly returns a new contour with n vertices spaced evenly along
// the original closed contour's perimeter, preserving shape at coarser or
// finer resolution. Supplemented from the original implementation's
// Resample_Evenly_Along_Perimeter helper (Structs.h). Fails with
// errs.ErrDegenerateInput when n < 3 or the contour has zero perimeter.
func (c *Contour) ResampleEvenly(n int) (*Contour, error) {
	if n < 3 {
		return nil, &errs.DegenerateInputError{Op: "Contour.ResampleEvenly", Reason: "n must be >= 3"}
	}
	if len(c.Points) < 2 {
		return nil, &errs.DegenerateInputError{Op: "Contour.ResampleEvenly", Reason: "too few points to resample"}
	}

	segCount := len(c.Points)
	if !c.Closed {
		segCount--
	}
	cum := make([]float64, segCount+1)
	for i := 0; i < segCount; i++ {
		next := c.Points[(i+1)%len(c.Points)]
		cum[i+1] = cum[i] + c.Points[i].Distance(next)
	}
	perimeter := cum[segCount]
	if perimeter < 1e-12 {
		return nil, &errs.DegenerateInputError{Op: "Contour.ResampleEvenly", Reason: "zero perimeter"}
	}

	out := make([]geom.Vector3, n)
	for i := 0; i < n; i++ {
		target := perimeter * float64(i) / float64(n)
		out[i] = pointAtArcLength(c.Points, cum, target)
	}
	return NewContour(out, c.Closed, c.Metadata), nil
}

func pointAtArcLength(points []geom.Vector3, cum []float64, target float64) geom.Vector3 {
	seg := 0
	for seg < len(cum)-2 && cum[seg+1] < target {
		seg++
	}
	segLen := cum[seg+1] - cum[seg]
	t := 0.0
	if segLen > 1e-12 {
		t = (target - cum[seg]) / segLen
	}
	a := points[seg%len(points)]
	b := points[(seg+1)%len(points)]
	return a.Lerp(b, t)
}

// Inside reports whether pt projects inside the contour's polygon using a
// 2-D point-in-polygon test performed in the plane spanned by two
// orthonormal in-plane axes derived from the contour's average normal.
func (c *Contour) Inside(pt geom.Vector3) (bool, error) {
	n, err := c.AverageNormal()
	if err != nil {
		return false, err
	}
	u, v, err := inPlaneAxes(n)
	if err != nil {
		return false, err
	}
	centroid, err := c.Centroid()
	if err != nil {
		return false, err
	}

	proj := make([][2]float64, len(c.Points))
	for i, p := range c.Points {
		rel := p.Sub(centroid)
		proj[i] = [2]float64{u.Dot(rel), v.Dot(rel)}
	}
	rel := pt.Sub(centroid)
	px, py := u.Dot(rel), v.Dot(rel)

	return pointInPolygon2D(px, py, proj), nil
}

// inPlaneAxes derives two orthonormal vectors spanning the plane orthogonal
// to n, via Gram-Schmidt against an arbitrary seed not parallel to n.
func inPlaneAxes(n geom.Vector3) (u, v geom.Vector3, err error) {
	seed := geom.NewVector3(1, 0, 0)
	if math.Abs(n.X) > 0.9 {
		seed = geom.NewVector3(0, 1, 0)
	}
	a, b := n, seed
	if err := geom.GramSchmidt(&a, &b); err != nil {
		return geom.Vector3{}, geom.Vector3{}, err
	}
	// a is n normalised, b is the component of seed orthogonal to n: use
	// b and n×b as the in-plane orthonormal basis.
	u = b
	v = n.Cross(b)
	return u, v, nil
}

// pointInPolygon2D implements the standard ray-casting test.
func pointInPolygon2D(px, py float64, poly [][2]float64) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := poly[i][0], poly[i][1]
		xj, yj := poly[j][0], poly[j][1]
		if (yi > py) != (yj > py) {
			xIntersect := (xj-xi)*(py-yi)/(yj-yi) + xi
			if px < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}
