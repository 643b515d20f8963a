// Package neighbourhood implements the neighbourhood sampler (spec §4.9):
// per-voxel reduction over a spherical, cubic, or explicit-offset
// neighbourhood, taken against a read-only snapshot of the array so that
// writes to one voxel never influence a sibling voxel's reduction.
// Concurrency mirrors imagery/voxel's worker pool, itself grounded on the
// teacher's directory-level pool (dicom.ParseDirectoryWithOptions).
package neighbourhood

import (
	"math"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/codeninja55/dicomautomaton-go/contour"
	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/imagery"
	"github.com/codeninja55/dicomautomaton-go/imagery/adjacency"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// Kind selects the neighbourhood shape.
type Kind int

const (
	Spherical Kind = iota
	Cubic
	Selection
)

// Spec describes one neighbourhood. RMax applies to Spherical and Cubic;
// Triplets applies to Selection, each entry a (dr, dc, dz) offset in voxel
// and image-index coordinates.
type Spec struct {
	Kind     Kind
	RMax     float64
	Triplets [][3]int
}

// Reducer combines a voxel's own value with its neighbourhood into the
// value written back. Implementations must be deterministic given the same
// inputs (spec §4.9).
type Reducer func(centre float64, neighbours []float64, centrePos geom.Vector3) float64

// Config parameterises a Sample invocation.
type Config struct {
	// Channel restricts the reduction to one channel; negative means every
	// channel.
	Channel int
	// ContourOverlap selects how the domain-limiting collection combines
	// overlapping member contours (spec §4.7); irrelevant when no
	// collection is supplied.
	ContourOverlap contour.OverlapMode
	// Workers bounds the per-image worker pool. Zero or negative defaults
	// to runtime.GOMAXPROCS(0).
	Workers int
	// Logger receives one debug record per Sample call and a warning for
	// each image whose sampling fails. Nil defaults to log.Default().
	Logger *log.Logger
}

func (cfg Config) logger() *log.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return log.Default()
}

// Sample edits array in place: for every voxel passing the channel filter
// and, if cc is non-nil, the contour interior test, it replaces the voxel
// value with reducer(centre, neighbours, position) evaluated against a
// snapshot taken before any voxel is written. normal orients the z-index
// used to resolve a Selection triplet's dz component and a Spherical or
// Cubic neighbourhood's cross-image candidates.
func Sample(array *imagery.ImageArray, normal geom.Vector3, spec Spec, reducer Reducer, cc *contour.Collection, cfg Config) error {
	if !array.IsRectilinear() {
		return &errs.GridError{Reason: "image array is not rectilinear"}
	}
	if spec.Kind == Cubic && !array.IsRegular() {
		return &errs.GridError{Reason: "cubic neighbourhood requires a regular grid"}
	}

	snapshot := array.DeepCopy()
	adj, err := adjacency.New(snapshot, normal)
	if err != nil {
		return err
	}

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
	logger.Debug("sampling neighbourhood", "images", len(array.Images), "workers", workers, "kind", spec.Kind)

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
				zIdx, err := adj.ImageToIndex(snapshot.Images[idx])
				if err != nil {
					logger.Warn("neighbourhood sampling failed to resolve z-index, cancelling remaining tasks", "image", idx, "error", err)
					once.Do(func() {
						errCh <- err
						close(done)
					})
					continue
				}
				if err := sampleImage(array.Images[idx], snapshot, adj, zIdx, spec, reducer, cc, cfg); err != nil {
					logger.Warn("neighbourhood sampling failed, cancelling remaining tasks", "image", idx, "error", err)
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

func sampleImage(live *imagery.PlanarImage, snapshot *imagery.ImageArray, adj *adjacency.Adjacency, zIdx int, spec Spec, reducer Reducer, cc *contour.Collection, cfg Config) error {
	snapImg, err := adj.IndexToImage(zIdx)
	if err != nil {
		return err
	}

	insideFn := func(c *contour.Contour, p geom.Vector3) (bool, error) { return c.Inside(p) }

	for r := 0; r < snapImg.Rows; r++ {
		for c := 0; c < snapImg.Columns; c++ {
			pos := snapImg.Position(r, c)
			if cc != nil {
				in, err := contour.Interior(cc, pos, cfg.ContourOverlap, insideFn)
				if err != nil {
					return err
				}
				if !in {
					continue
				}
			}
			for k := 0; k < snapImg.Channels; k++ {
				if cfg.Channel >= 0 && k != cfg.Channel {
					continue
				}
				centre, _ := snapImg.Value(r, c, k)
				var neighbours []float64
				switch spec.Kind {
				case Spherical:
					neighbours = collectSpherical(snapshot, adj, zIdx, r, c, k, spec.RMax, pos)
				case Cubic:
					neighbours = collectCubic(snapshot, adj, zIdx, r, c, k, spec.RMax, snapImg)
				case Selection:
					neighbours = collectSelection(snapshot, adj, zIdx, r, c, k, spec.Triplets)
				}
				newVal := reducer(centre, neighbours, pos)
				*live.Reference(r, c, k) = newVal
			}
		}
	}
	return nil
}

func lookupVoxel(snapshot *imagery.ImageArray, adj *adjacency.Adjacency, zIdx, r, c, k, dz int) (float64, geom.Vector3, bool) {
	img, err := adj.IndexToImage(zIdx + dz)
	if err != nil {
		return 0, geom.Vector3{}, false
	}
	v, ok := img.Value(r, c, k)
	if !ok {
		return 0, geom.Vector3{}, false
	}
	return v, img.Position(r, c), true
}

func maxAbs3(a, b, c int) int {
	m := absInt(a)
	if v := absInt(b); v > m {
		m = v
	}
	if v := absInt(c); v > m {
		m = v
	}
	return m
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// collectSpherical grows an outward cubic wavefront (Chebyshev shells) in
// voxel coordinates, collecting voxels whose in-space distance from centrePos
// is within rMax, stopping once a full shell contributes nothing (spec
// §4.9.1).
func collectSpherical(snapshot *imagery.ImageArray, adj *adjacency.Adjacency, zIdx, r, c, k int, rMax float64, centrePos geom.Vector3) []float64 {
	var out []float64
	for shell := 1; ; shell++ {
		found := false
		for dz := -shell; dz <= shell; dz++ {
			for dr := -shell; dr <= shell; dr++ {
				for dc := -shell; dc <= shell; dc++ {
					if maxAbs3(dr, dc, dz) != shell {
						continue
					}
					v, pos, ok := lookupVoxel(snapshot, adj, zIdx, r+dr, c+dc, k, dz)
					if !ok {
						continue
					}
					if pos.Distance(centrePos) <= rMax {
						out = append(out, v)
						found = true
					}
				}
			}
		}
		if !found {
			break
		}
	}
	return out
}

// collectCubic gathers every voxel within an axis-aligned box of half-extent
// floor(rMax/pxl_*) in each direction, excluding the centre (spec §4.9.2).
func collectCubic(snapshot *imagery.ImageArray, adj *adjacency.Adjacency, zIdx, r, c, k int, rMax float64, img *imagery.PlanarImage) []float64 {
	hr := int(math.Floor(rMax / img.PxlDx))
	hc := int(math.Floor(rMax / img.PxlDy))
	hz := int(math.Floor(rMax / img.PxlDz))

	var out []float64
	for dz := -hz; dz <= hz; dz++ {
		for dr := -hr; dr <= hr; dr++ {
			for dc := -hc; dc <= hc; dc++ {
				if dr == 0 && dc == 0 && dz == 0 {
					continue
				}
				v, _, ok := lookupVoxel(snapshot, adj, zIdx, r+dr, c+dc, k, dz)
				if ok {
					out = append(out, v)
				}
			}
		}
	}
	return out
}

// collectSelection looks up each explicit (dr, dc, dz) triplet, supplying
// NaN for an offset that addresses no voxel so the reduction sees a stable,
// ordered vector (spec §4.9.3).
func collectSelection(snapshot *imagery.ImageArray, adj *adjacency.Adjacency, zIdx, r, c, k int, triplets [][3]int) []float64 {
	out := make([]float64, len(triplets))
	for i, t := range triplets {
		v, _, ok := lookupVoxel(snapshot, adj, zIdx, r+t[0], c+t[1], k, t[2])
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}
