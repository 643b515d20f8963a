package contour

import (
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// MeshTwoToOne builds a triangle strip connecting a finer contour (fine,
// with exactly twice the vertex count) to a coarser contour (coarse),
// pairing each coarse edge (coarse[i], coarse[i+1]) with the two fine edges
// running fine[2i] -> fine[2i+1] -> fine[2i+2]. The routine asserts that
// the ratio between the combined length of those two fine edges and the
// coarse-edge length stays within [1/ratioTol, ratioTol]; when violated it
// fails with errs.ErrDegenerateInput ("not suitable for this contour")
// rather than attempting a recovery, per the original implementation's
// Complex_Branching_Meshing.cc and spec §9 design note (b).
//
// Triangle indices 0..len(fine.Points)-1 address fine.Points, and
// coarse.Points[i] is addressed as len(fine.Points)+i; three triangles are
// returned per coarse edge, as a flat list of index triples.
func MeshTwoToOne(fine, coarse *Contour, ratioTol float64) ([][3]int, error) {
	if len(fine.Points) < 4 || len(coarse.Points) < 2 {
		return nil, &errs.DegenerateInputError{Op: "MeshTwoToOne", Reason: "insufficient vertices"}
	}
	if len(fine.Points) != 2*len(coarse.Points) {
		return nil, &errs.DegenerateInputError{Op: "MeshTwoToOne", Reason: "fine contour must have exactly twice the coarse contour's vertex count"}
	}
	if ratioTol <= 1 {
		return nil, &errs.DegenerateInputError{Op: "MeshTwoToOne", Reason: "ratioTol must exceed 1"}
	}

	n := len(coarse.Points)
	offset := len(fine.Points)
	var triangles [][3]int

	for i := 0; i < n; i++ {
		f0 := fine.Points[2*i]
		f1 := fine.Points[(2*i+1)%len(fine.Points)]
		f2 := fine.Points[(2*i+2)%len(fine.Points)]
		c0 := coarse.Points[i]
		c1 := coarse.Points[(i+1)%n]

		midDist := f0.Distance(f1) + f1.Distance(f2)
		coarseLen := c0.Distance(c1)
		if coarseLen < 1e-12 {
			return nil, &errs.DegenerateInputError{Op: "MeshTwoToOne", Reason: "not suitable for this contour: zero-length coarse edge"}
		}
		ratio := midDist / coarseLen
		if ratio > ratioTol || ratio < 1/ratioTol {
			return nil, &errs.DegenerateInputError{Op: "MeshTwoToOne", Reason: "not suitable for this contour: midpoint/coarse-edge ratio out of bounds"}
		}

		triangles = append(triangles,
			[3]int{2 * i, (2*i + 1) % offset, offset + i},
			[3]int{(2*i + 1) % offset, offset + (i+1)%n, offset + i},
			[3]int{(2*i + 1) % offset, (2*i + 2) % offset, offset + (i+1)%n},
		)
	}
	return triangles, nil
}
