package geom

import (
	"gonum.org/v1/gonum/mat"

	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// OrthogonalRegression fits a plane to a point set by total least squares:
// the centroid anchors the plane and the normal is the right singular vector
// of the mean-centred coordinate matrix associated with the smallest
// singular value (the direction of least variance). Fails with
// errs.ErrDegenerateInput when fewer than 3 points are supplied or the
// points are collinear (rank-deficient centred matrix with no unique
// minimum-variance direction).
func OrthogonalRegression(points []Vector3) (Plane, error) {
	if len(points) < 3 {
		return Plane{}, &errs.DegenerateInputError{Op: "OrthogonalRegression", Reason: "fewer than 3 points"}
	}

	centroid := Vector3{}
	for _, p := range points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Scale(1 / float64(len(points)))

	data := make([]float64, 0, len(points)*3)
	for _, p := range points {
		c := p.Sub(centroid)
		data = append(data, c.X, c.Y, c.Z)
	}
	m := mat.NewDense(len(points), 3, data)

	var svd mat.SVD
	ok := svd.Factorize(m, mat.SVDThin)
	if !ok {
		return Plane{}, &errs.DegenerateInputError{Op: "OrthogonalRegression", Reason: "SVD factorization failed"}
	}

	values := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	// The normal is the right-singular vector (column of V) associated
	// with the smallest singular value, i.e. the least-variance
	// direction of the centred point cloud.
	minIdx := 0
	for i := 1; i < len(values); i++ {
		if values[i] < values[minIdx] {
			minIdx = i
		}
	}
	if collinear(points) {
		return Plane{}, &errs.DegenerateInputError{Op: "OrthogonalRegression", Reason: "points are collinear"}
	}

	normal := Vector3{X: v.At(0, minIdx), Y: v.At(1, minIdx), Z: v.At(2, minIdx)}
	return NewPlane(normal, centroid)
}

// collinear reports whether every point lies on one line through points[0]
// (coincident points included).
func collinear(points []Vector3) bool {
	var dir Vector3
	for _, p := range points[1:] {
		d := p.Sub(points[0])
		if dir.IsZero() {
			dir = d
			continue
		}
		if !dir.Cross(d).IsZero() {
			return false
		}
	}
	return true
}
