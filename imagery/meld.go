package imagery

import "github.com/codeninja55/dicomautomaton-go/internal/errs"

// MeldRule combines a centre voxel value with a melding partner's value.
type MeldRule func(accum, next float64) float64

// MeldSum accumulates by addition.
func MeldSum(accum, next float64) float64 { return accum + next }

// MeldMax accumulates by taking the maximum.
func MeldMax(accum, next float64) float64 {
	if next > accum {
		return next
	}
	return accum
}

// MeldImageArrays combines the voxel values of base with every array in
// others that wholly overlaps it, in place, using rule. Arrays that are not
// grid-identical to base are skipped rather than erroring, since melding is
// meant to combine a dose-grid family that may include partially
// overlapping auxiliary grids.
//
// Grounded on the original implementation's Dose_Meld.cc: a voxel-wise
// combination of spatially-registered dose grids, reimplemented here purely
// against the in-memory model (no file I/O).
func MeldImageArrays(base *ImageArray, others []*ImageArray, rule MeldRule) error {
	if base.Len() == 0 {
		return errs.ErrEmptyCollection
	}
	for _, other := range others {
		if !GridsMatch(base, other) {
			continue
		}
		for i, img := range base.Images {
			oimg := other.Images[i]
			for r := 0; r < img.Rows; r++ {
				for c := 0; c < img.Columns; c++ {
					for k := 0; k < img.Channels; k++ {
						ov, _ := oimg.Value(r, c, k)
						ref := img.Reference(r, c, k)
						*ref = rule(*ref, ov)
					}
				}
			}
		}
	}
	return nil
}
