// Package builtin supplies a minimal sample operation catalogue:
// LoadVirtualImage, ReduceNeighbourhood, and ExportToMemory. Spec §1 treats
// the full analytical catalogue as an external collaborator, but these
// three let the core demonstrate, and test, a complete
// parse -> dispatch -> mutate pipeline end to end (spec §8 scenario 5)
// without depending on any file-format loader.
package builtin

import (
	"strconv"

	"github.com/codeninja55/dicomautomaton-go/drover"
	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/imagery"
	"github.com/codeninja55/dicomautomaton-go/imagery/neighbourhood"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
	"github.com/codeninja55/dicomautomaton-go/operation"
)

// MemoryImages is a package-level exchange slot ExportToMemory writes into
// and tests read from, standing in for the kind of external-memory sink a
// real deployment's bindings would provide.
var MemoryImages []*imagery.ImageArray

// MeanReducer averages a voxel with its neighbours.
func MeanReducer(centre float64, neighbours []float64, _ geom.Vector3) float64 {
	sum, count := centre, 1
	for _, v := range neighbours {
		if v == v { // exclude NaN fill values
			sum += v
			count++
		}
	}
	return sum / float64(count)
}

// LoadVirtualImage constructs a synthetic regular image array of Images
// single-channel rows x cols images filled by a deterministic linear ramp,
// and pushes it onto
// d.ImageArrays. It exists so pipelines can be exercised without a
// filesystem, per spec §8 scenario 5's LoadVirtualImage step.
var LoadVirtualImage = &operation.Operation{
	Name: "LoadVirtualImage",
	Schema: []operation.ArgumentSchema{
		{Name: "Rows", Default: "4", Description: "Row count per image."},
		{Name: "Columns", Default: "4", Description: "Column count per image."},
		{Name: "Images", Default: "3", Description: "Number of images in the array."},
		{Name: "VoxelPitch", Default: "1.0", Description: "Isotropic voxel pitch in mm."},
	},
	Invoke: func(d *drover.Drover, args, meta map[string]string, filenameLex string) error {
		rows, err := strconv.Atoi(args["Rows"])
		if err != nil {
			return &errs.ParameterError{Kind: errs.ErrInvalidArgument, Key: "Rows"}
		}
		cols, err := strconv.Atoi(args["Columns"])
		if err != nil {
			return &errs.ParameterError{Kind: errs.ErrInvalidArgument, Key: "Columns"}
		}
		numImages, err := strconv.Atoi(args["Images"])
		if err != nil {
			return &errs.ParameterError{Kind: errs.ErrInvalidArgument, Key: "Images"}
		}
		pitch, err := strconv.ParseFloat(args["VoxelPitch"], 64)
		if err != nil {
			return &errs.ParameterError{Kind: errs.ErrInvalidArgument, Key: "VoxelPitch"}
		}

		array, err := buildLinearRamp(rows, cols, numImages, pitch)
		if err != nil {
			return err
		}
		d.ImageArrays = append(d.ImageArrays, array)
		return nil
	},
}

func buildLinearRamp(rows, cols, numImages int, pitch float64) (*imagery.ImageArray, error) {
	images := make([]*imagery.PlanarImage, numImages)
	rowUnit := geom.NewVector3(1, 0, 0)
	colUnit := geom.NewVector3(0, 1, 0)
	for z := 0; z < numImages; z++ {
		img, err := imagery.NewPlanarImage(rows, cols, 1, pitch, pitch, pitch,
			rowUnit, colUnit, geom.NewVector3(0, 0, float64(z)*pitch), geom.NewVector3(0, 0, 0))
		if err != nil {
			return nil, err
		}
		idx := 0
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				*img.Reference(r, c, 0) = float64(idx)
				idx++
			}
		}
		images[z] = img
	}
	return imagery.NewImageArray(images...), nil
}

// ReduceNeighbourhood applies a spherical-neighbourhood mean reduction
// in place to the most recently loaded image array, per spec §4.9 and §8
// scenario 5's ReduceNeighbourhood(mean, r_max=voxel_pitch) step.
var ReduceNeighbourhood = &operation.Operation{
	Name: "ReduceNeighbourhood",
	Schema: []operation.ArgumentSchema{
		{Name: "RMax", Default: "1.0", Description: "Neighbourhood radius in mm."},
	},
	Invoke: func(d *drover.Drover, args, meta map[string]string, filenameLex string) error {
		if len(d.ImageArrays) == 0 {
			return errs.ErrNoMatch
		}
		rMax, err := strconv.ParseFloat(args["RMax"], 64)
		if err != nil {
			return &errs.ParameterError{Kind: errs.ErrInvalidArgument, Key: "RMax"}
		}

		array := d.ImageArrays[len(d.ImageArrays)-1]
		normal := array.Images[0].Normal()
		spec := neighbourhood.Spec{Kind: neighbourhood.Spherical, RMax: rMax}
		return neighbourhood.Sample(array, normal, spec, MeanReducer, nil, neighbourhood.Config{Channel: -1})
	},
}

// ExportToMemory copies the most recently loaded image array into
// MemoryImages, standing in for an external-memory sink (spec §8
// scenario 5's ExportToMemory step).
var ExportToMemory = &operation.Operation{
	Name: "ExportToMemory",
	Invoke: func(d *drover.Drover, args, meta map[string]string, filenameLex string) error {
		if len(d.ImageArrays) == 0 {
			return errs.ErrNoMatch
		}
		MemoryImages = append(MemoryImages, d.ImageArrays[len(d.ImageArrays)-1].DeepCopy())
		return nil
	},
}

// Catalogue is the full sample registry, suitable for handing straight to
// pipeline.NewDriver.
var Catalogue = []*operation.Operation{LoadVirtualImage, ReduceNeighbourhood, ExportToMemory}
