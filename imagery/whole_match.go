package imagery

// GridsMatch reports whether a and b occupy the same rectilinear grid,
// image-for-image and voxel-for-voxel: equal image count, and for each
// corresponding pair, equal row/column counts, pitches, axes, and anchor
// position. It does not compare voxel values.
//
// Grounded on the original implementation's Whole_Match.cc, which performs
// this check to fast-path comparisons (e.g. gamma analysis) between
// identically-gridded dose arrays.
func GridsMatch(a, b *ImageArray) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Images {
		ia, ib := a.Images[i], b.Images[i]
		if ia.Rows != ib.Rows || ia.Columns != ib.Columns || ia.Channels != ib.Channels {
			return false
		}
		if !ia.RowUnit.ApproxEqual(ib.RowUnit, axisTol) || !ia.ColUnit.ApproxEqual(ib.ColUnit, axisTol) {
			return false
		}
		if absDiff(ia.PxlDx, ib.PxlDx) > axisTol || absDiff(ia.PxlDy, ib.PxlDy) > axisTol || absDiff(ia.PxlDz, ib.PxlDz) > axisTol {
			return false
		}
		posA := ia.Anchor.Add(ia.Offset)
		posB := ib.Anchor.Add(ib.Offset)
		if !posA.ApproxEqual(posB, axisTol) {
			return false
		}
	}
	return true
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
