// Package voxel implements the voxel mutator (spec §4.6, §4.7): bounded
// traversal of an image's voxels restricted by one or more contour
// collections, with a user-supplied callback invoked exactly once per
// interior voxel. Concurrency across images in an array mirrors the
// teacher's directory-level worker pool (dicom.ParseDirectoryWithOptions):
// a jobs channel, a fixed worker count, and first-error-wins cancellation.
package voxel

import (
	"math"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/codeninja55/dicomautomaton-go/contour"
	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/imagery"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// EditStyle selects whether Mutate writes through the target image or only
// computes an interior mask.
type EditStyle int

const (
	InPlace EditStyle = iota
	CopyMask
)

// AggregateMode selects how multiple contour collections are combined into
// one interior decision.
type AggregateMode int

const (
	First AggregateMode = iota
	Last
	Any
)

// AdjacencyMode selects what the callback receives for each voxel.
type AdjacencyMode int

const (
	SingleVoxel AdjacencyMode = iota
	Neighbourhood
)

// MaskModification post-processes the computed interior mask.
type MaskModification int

const (
	MaskNoop MaskModification = iota
	MaskInvert
	MaskDilate1
	MaskErode1
)

// Inclusivity selects the per-voxel interior test.
type Inclusivity int

const (
	Centre Inclusivity = iota
	PlanarCornerInclusive
	PlanarCornerExclusive
)

// Config parameterises a mutator invocation per spec §4.6.
type Config struct {
	EditStyle      EditStyle
	Aggregate      AggregateMode
	Adjacency      AdjacencyMode
	MaskMod        MaskModification
	ContourOverlap contour.OverlapMode
	Inclusivity    Inclusivity
	// Channel restricts the callback to one channel; negative means every
	// channel.
	Channel int
	// Workers bounds MutateArray's per-image worker pool. Zero or negative
	// defaults to runtime.GOMAXPROCS(0).
	Workers int
	// Logger receives one debug record per MutateArray call and a warning
	// for each image whose mutation fails. Nil defaults to log.Default().
	Logger *log.Logger
}

func (cfg Config) logger() *log.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return log.Default()
}

// VoxelContext is passed to the callback for each interior voxel.
type VoxelContext struct {
	Row, Col, Channel int
	Value             float64
	Position          geom.Vector3
	// Window holds the 3x3 in-plane neighbourhood (row-major, NaN where the
	// offset voxel does not exist) when Config.Adjacency == Neighbourhood;
	// nil otherwise.
	Window []float64
}

// Callback reads or, for an in-place edit, rewrites one voxel. It must
// return the new value to write, even when reading only (return Value
// unchanged).
type Callback func(VoxelContext) (float64, error)

// ComputeMask evaluates the interior mask for img under collections and cfg
// without invoking any callback or mutating img. Used directly for the
// copy-mask edit style.
func ComputeMask(img *imagery.PlanarImage, collections []*contour.Collection, cfg Config) ([]bool, error) {
	mask := make([]bool, img.Rows*img.Columns)
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Columns; c++ {
			in, err := voxelInside(img, r, c, collections, cfg)
			if err != nil {
				return nil, err
			}
			mask[r*img.Columns+c] = in
		}
	}
	return applyMaskModification(mask, img.Rows, img.Columns, cfg.MaskMod), nil
}

// Mutate traverses img in row-major then column-major then channel order,
// invoking cb exactly once per voxel whose mask entry is set. Requires
// cfg.EditStyle == InPlace; callers wanting a mask only should call
// ComputeMask directly.
func Mutate(img *imagery.PlanarImage, collections []*contour.Collection, cfg Config, cb Callback) error {
	if cfg.EditStyle != InPlace {
		return &errs.ParameterError{Kind: errs.ErrInvalidArgument, Key: "EditStyle"}
	}
	mask, err := ComputeMask(img, collections, cfg)
	if err != nil {
		return err
	}

	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Columns; c++ {
			if !mask[r*img.Columns+c] {
				continue
			}
			for k := 0; k < img.Channels; k++ {
				if cfg.Channel >= 0 && k != cfg.Channel {
					continue
				}
				v, _ := img.Value(r, c, k)
				vc := VoxelContext{Row: r, Col: c, Channel: k, Value: v, Position: img.Position(r, c)}
				if cfg.Adjacency == Neighbourhood {
					vc.Window = inPlaneWindow(img, r, c, k)
				}
				out, err := cb(vc)
				if err != nil {
					return err
				}
				*img.Reference(r, c, k) = out
			}
		}
	}
	return nil
}

// MutateArray runs Mutate independently across every image of array, one
// task per image, with a fixed worker pool. The first callback error
// encountered cancels further task dispatch and is returned; already
// in-flight tasks on other workers are allowed to finish since voxel
// updates never cross images (spec §5).
func MutateArray(array *imagery.ImageArray, collections []*contour.Collection, cfg Config, cb Callback) error {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(array.Images) {
		workers = len(array.Images)
	}
	if workers < 1 {
		return nil
	}
	logger := cfg.logger()
	logger.Debug("mutating image array", "images", len(array.Images), "workers", workers)

	jobs := make(chan int, len(array.Images))
	for i := range array.Images {
		jobs <- i
	}
	close(jobs)

	errCh := make(chan error, 1)
	done := make(chan struct{})
	var once sync.Once
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-done:
					return
				default:
				}
				if err := Mutate(array.Images[idx], collections, cfg, cb); err != nil {
					logger.Warn("voxel mutation failed, cancelling remaining tasks", "image", idx, "error", err)
					once.Do(func() {
						errCh <- err
						close(done)
					})
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)
	return <-errCh
}

func voxelInside(img *imagery.PlanarImage, r, c int, collections []*contour.Collection, cfg Config) (bool, error) {
	if len(collections) == 0 {
		return true, nil
	}
	switch cfg.Inclusivity {
	case Centre:
		return combinedInterior(collections, img.Position(r, c), cfg)
	case PlanarCornerInclusive:
		for _, corner := range voxelCorners(img, r, c) {
			in, err := combinedInterior(collections, corner, cfg)
			if err != nil {
				return false, err
			}
			if in {
				return true, nil
			}
		}
		return false, nil
	case PlanarCornerExclusive:
		for _, corner := range voxelCorners(img, r, c) {
			in, err := combinedInterior(collections, corner, cfg)
			if err != nil {
				return false, err
			}
			if !in {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, &errs.DegenerateInputError{Op: "voxel.voxelInside", Reason: "unknown inclusivity mode"}
	}
}

func combinedInterior(collections []*contour.Collection, pt geom.Vector3, cfg Config) (bool, error) {
	insideFn := func(c *contour.Contour, p geom.Vector3) (bool, error) { return c.Inside(p) }
	switch cfg.Aggregate {
	case First:
		return contour.Interior(collections[0], pt, cfg.ContourOverlap, insideFn)
	case Last:
		return contour.Interior(collections[len(collections)-1], pt, cfg.ContourOverlap, insideFn)
	case Any:
		for _, cc := range collections {
			in, err := contour.Interior(cc, pt, cfg.ContourOverlap, insideFn)
			if err != nil {
				return false, err
			}
			if in {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, &errs.DegenerateInputError{Op: "voxel.combinedInterior", Reason: "unknown aggregate mode"}
	}
}

func voxelCorners(img *imagery.PlanarImage, r, c int) [4]geom.Vector3 {
	centre := img.Position(r, c)
	dr := img.RowUnit.Scale(img.PxlDx / 2)
	dc := img.ColUnit.Scale(img.PxlDy / 2)
	return [4]geom.Vector3{
		centre.Sub(dr).Sub(dc),
		centre.Sub(dr).Add(dc),
		centre.Add(dr).Sub(dc),
		centre.Add(dr).Add(dc),
	}
}

func inPlaneWindow(img *imagery.PlanarImage, r, c, k int) []float64 {
	window := make([]float64, 0, 9)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			v, ok := img.Value(r+dr, c+dc, k)
			if !ok {
				v = math.NaN()
			}
			window = append(window, v)
		}
	}
	return window
}

func applyMaskModification(mask []bool, rows, cols int, mod MaskModification) []bool {
	at := func(m []bool, r, c int) bool {
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return false
		}
		return m[r*cols+c]
	}
	switch mod {
	case MaskNoop:
		return mask
	case MaskInvert:
		out := make([]bool, len(mask))
		for i, v := range mask {
			out[i] = !v
		}
		return out
	case MaskDilate1:
		out := make([]bool, len(mask))
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				out[r*cols+c] = at(mask, r, c) || at(mask, r-1, c) || at(mask, r+1, c) || at(mask, r, c-1) || at(mask, r, c+1)
			}
		}
		return out
	case MaskErode1:
		out := make([]bool, len(mask))
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				out[r*cols+c] = at(mask, r, c) && at(mask, r-1, c) && at(mask, r+1, c) && at(mask, r, c-1) && at(mask, r, c+1)
			}
		}
		return out
	default:
		return mask
	}
}
