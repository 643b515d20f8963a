package contour

import (
	"math"

	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// SplitAlongPlane partitions every contour in cc by a plane, producing two
// collections (below, above). Degenerate cases (a contour lying entirely on
// one side, possibly touching the plane, or one with too few resulting
// vertices or no area on a side) simply contribute nothing to the empty
// side; ROI metadata is preserved on both halves (spec §4.3).
func (cc *Collection) SplitAlongPlane(p geom.Plane) (below, above *Collection) {
	below = &Collection{}
	above = &Collection{}
	const tol = 1e-9
	for _, c := range cc.Contours {
		b, a := splitContour(c, p, tol)
		if b != nil {
			below.Contours = append(below.Contours, b)
		}
		if a != nil {
			above.Contours = append(above.Contours, a)
		}
	}
	return below, above
}

// splitContour clips a single closed polygon against plane p using
// Sutherland-Hodgman, returning the below and above fragments (either may
// be nil if the contour lies entirely on one side; a fragment with fewer
// than 3 vertices or no area is dropped).
func splitContour(c *Contour, p geom.Plane, tol float64) (below, above *Contour) {
	if len(c.Points) == 0 {
		return nil, nil
	}
	belowPts := clipPolygon(c.Points, p, tol, false)
	abovePts := clipPolygon(c.Points, p, tol, true)

	fragment := func(pts []geom.Vector3) *Contour {
		if len(pts) < 3 {
			return nil
		}
		f := NewContour(pts, c.Closed, c.Metadata)
		if a, err := f.Area(); err != nil || a <= tol {
			return nil
		}
		return f
	}
	return fragment(belowPts), fragment(abovePts)
}

// clipPolygon implements Sutherland-Hodgman clipping of a closed polygon
// against plane p, keeping the "above" side when keepAbove is true and the
// "below" side (inclusive of On) otherwise.
func clipPolygon(points []geom.Vector3, p geom.Plane, tol float64, keepAbove bool) []geom.Vector3 {
	n := len(points)
	if n == 0 {
		return nil
	}
	inside := func(pt geom.Vector3) bool {
		d := p.SignedDistance(pt)
		if keepAbove {
			return d >= -tol
		}
		return d <= tol
	}
	intersect := func(a, b geom.Vector3) geom.Vector3 {
		da := p.SignedDistance(a)
		db := p.SignedDistance(b)
		t := da / (da - db)
		return a.Lerp(b, t)
	}

	var out []geom.Vector3
	for i := 0; i < n; i++ {
		cur := points[i]
		prev := points[(i-1+n)%n]
		curIn := inside(cur)
		prevIn := inside(prev)
		if curIn {
			if !prevIn {
				out = append(out, intersect(prev, cur))
			}
			out = append(out, cur)
		} else if prevIn {
			out = append(out, intersect(prev, cur))
		}
	}
	return out
}

// AreaAbove returns the total area of cc lying above plane p: the
// area-oracle the bisection search consults (spec §9 design notes).
func (cc *Collection) AreaAbove(p geom.Plane) (float64, error) {
	_, above := cc.SplitAlongPlane(p)
	return above.TotalArea()
}

// BisectionResult reports the outcome of Total_Area_Bisection_Along_Plane.
type BisectionResult struct {
	Plane      geom.Plane
	Fraction   float64
	Iterations int
}

// TotalAreaBisectionAlongPlane searches for a plane with the given normal
// such that the fraction of cc's total area lying above it equals target,
// within tol, via bisection seeded from the projections of every vertex
// onto normal (spec §4.8).
func (cc *Collection) TotalAreaBisectionAlongPlane(normal geom.Vector3, target, tol float64, maxIters int) (BisectionResult, error) {
	n, err := normal.Unit()
	if err != nil {
		return BisectionResult{}, err
	}

	var projections []float64
	for _, c := range cc.Contours {
		for _, pt := range c.Points {
			projections = append(projections, n.Dot(pt))
		}
	}
	if len(projections) == 0 {
		return BisectionResult{}, errs.ErrEmptyCollection
	}

	totalArea, err := cc.TotalArea()
	if err != nil {
		return BisectionResult{}, err
	}
	if totalArea <= 0 {
		return BisectionResult{}, &errs.DegenerateInputError{Op: "TotalAreaBisectionAlongPlane", Reason: "zero total area"}
	}

	lo, hi := minMax(projections)
	origin := geom.Vector3{}

	fracAt := func(offset float64) (float64, error) {
		p, err := geom.NewPlane(n, origin.Add(n.Scale(offset)))
		if err != nil {
			return 0, err
		}
		above, err := cc.AreaAbove(p)
		if err != nil {
			return 0, err
		}
		return above / totalArea, nil
	}

	// Fraction is a non-increasing function of offset: at offset=lo every
	// vertex projects at or above the plane (fraction ~1); at offset=hi
	// none do (fraction ~0).
	var mid, midFrac float64
	iters := 0
	for iters = 0; iters < maxIters; iters++ {
		mid = 0.5 * (lo + hi)
		midFrac, err = fracAt(mid)
		if err != nil {
			return BisectionResult{}, err
		}
		if math.Abs(midFrac-target) <= tol {
			break
		}
		if midFrac > target {
			// too much area above; move the plane up (toward hi)
			lo = mid
		} else {
			hi = mid
		}
	}

	plane, err := geom.NewPlane(n, origin.Add(n.Scale(mid)))
	if err != nil {
		return BisectionResult{}, err
	}
	res := BisectionResult{Plane: plane, Fraction: midFrac, Iterations: iters}

	if math.Abs(midFrac-target) > tol {
		return res, &errs.NonConvergentError{Op: "TotalAreaBisectionAlongPlane", Iterations: iters, Achieved: midFrac, Target: target}
	}
	return res, nil
}

func minMax(xs []float64) (min, max float64) {
	min, max = xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max
}

// AxisSegmentStrategy selects how PartitionByAxisSegment combines the three
// axis bisections when more than one axis is requested.
type AxisSegmentStrategy int

const (
	// Compound bisects all requested axes against the original
	// collection once and intersects every half-space; sub-segments may
	// have inconsistent area.
	Compound AxisSegmentStrategy = iota
	// Nested applies axes in sequence, each bisecting the output of the
	// previous; produces sub-segments of approximately equal area. The
	// preferred default.
	Nested
)

// AxisTarget names one axis of a higher-level (thickness, offset-from-
// bottom) partition request.
type AxisTarget struct {
	Normal geom.Vector3
	// Thickness and OffsetFromBottom are both fractions of the total
	// extent along Normal, in [0, 1].
	Thickness        float64
	OffsetFromBottom float64
}

// PartitionByAxisSegment computes the sub-collection selected by thickness/
// offset windows along one or more axes (spec §4.8 "higher-level
// partitioning"). For each axis: lower = 1 - offset, upper = lower -
// thickness; the sub-segment is the intersection of (above lower) and
// (below upper). With Nested, axes are applied to the result of the
// previous axis; with Compound, all axes bisect the original collection and
// every half-space is intersected via successive Split_Along_Plane calls.
func (cc *Collection) PartitionByAxisSegment(axes []AxisTarget, strategy AxisSegmentStrategy, tol float64, maxIters int) (*Collection, error) {
	if len(axes) == 0 {
		return nil, &errs.DegenerateInputError{Op: "PartitionByAxisSegment", Reason: "no axes specified"}
	}

	// axisPlanes computes the (lower, upper) bounding planes for axis,
	// bisecting source; non-convergence is tolerated since the caller
	// still wants the best-effort planes.
	axisPlanes := func(source *Collection, axis AxisTarget) (lower, upper geom.Plane, err error) {
		lowerFrac := 1 - axis.OffsetFromBottom
		upperFrac := lowerFrac - axis.Thickness

		lowRes, err := source.TotalAreaBisectionAlongPlane(axis.Normal, lowerFrac, tol, maxIters)
		if err != nil && !errorsIsNonConvergent(err) {
			return geom.Plane{}, geom.Plane{}, err
		}
		highRes, err := source.TotalAreaBisectionAlongPlane(axis.Normal, upperFrac, tol, maxIters)
		if err != nil && !errorsIsNonConvergent(err) {
			return geom.Plane{}, geom.Plane{}, err
		}
		return lowRes.Plane, highRes.Plane, nil
	}

	intersectHalfSpace := func(source *Collection, lower, upper geom.Plane) *Collection {
		_, aboveLower := source.SplitAlongPlane(lower)
		belowUpper, _ := aboveLower.SplitAlongPlane(upper)
		return belowUpper
	}

	if strategy == Nested {
		current := cc
		for _, axis := range axes {
			lower, upper, err := axisPlanes(current, axis)
			if err != nil {
				return nil, err
			}
			current = intersectHalfSpace(current, lower, upper)
		}
		return current, nil
	}

	// Compound: bisect every axis against the original collection once,
	// then intersect all six half-spaces by sequential splitting of an
	// accumulator (intersection of half-spaces is order-independent).
	result := cc
	for _, axis := range axes {
		lower, upper, err := axisPlanes(cc, axis)
		if err != nil {
			return nil, err
		}
		result = intersectHalfSpace(result, lower, upper)
	}
	return result, nil
}

func errorsIsNonConvergent(err error) bool {
	_, ok := err.(*errs.NonConvergentError)
	return ok
}
