package contour

import "github.com/codeninja55/dicomautomaton-go/geom"

// OverlapMode selects how a voxel mutator or neighbourhood sampler combines
// multiple, possibly overlapping, contours within a single collection into
// one interior/exterior decision (spec §4.7).
type OverlapMode int

const (
	// Ignore: interior if any contour in the collection contains the
	// point, regardless of orientation.
	Ignore OverlapMode = iota
	// HonourOppositeOrientations: interior if the count of
	// counter-clockwise containing contours exceeds the count of
	// clockwise containing contours.
	HonourOppositeOrientations
	// ImplicitOrientations: interior if the number of containing
	// contours is odd.
	ImplicitOrientations
)

// Interior evaluates whether pt is interior to collection under mode,
// using the given inside-test for each individual contour.
func Interior(cc *Collection, pt geom.Vector3, mode OverlapMode, inside func(*Contour, geom.Vector3) (bool, error)) (bool, error) {
	switch mode {
	case Ignore:
		for _, c := range cc.Contours {
			in, err := inside(c, pt)
			if err != nil {
				return false, err
			}
			if in {
				return true, nil
			}
		}
		return false, nil

	case HonourOppositeOrientations:
		normal, err := cc.RepresentativeNormal()
		if err != nil {
			return false, err
		}
		var ccwCount, cwCount int
		for _, c := range cc.Contours {
			in, err := inside(c, pt)
			if err != nil {
				return false, err
			}
			if !in {
				continue
			}
			o, err := c.OrientationAbout(normal)
			if err != nil {
				return false, err
			}
			if o > 0 {
				ccwCount++
			} else {
				cwCount++
			}
		}
		return ccwCount > cwCount, nil

	case ImplicitOrientations:
		var count int
		for _, c := range cc.Contours {
			in, err := inside(c, pt)
			if err != nil {
				return false, err
			}
			if in {
				count++
			}
		}
		return count%2 == 1, nil

	default:
		return false, nil
	}
}
