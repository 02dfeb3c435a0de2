package tiler

import (
	"fmt"
	"time"
)

// RenderTaskTemplate is the part of the source render task that tiling reads.
// It is never mutated.
type RenderTaskTemplate struct {
	// Name is the source task's node name.
	Name string
	// Path is the source task's full path in the host scene graph.
	Path string
	// CameraPath is the camera the source task renders through.
	CameraPath string
	// OutputPath is the output path template; its last component is the file
	// name and the rest is the directory.
	OutputPath string
}

// TilePlan is everything the Builder will create for one tile.
type TilePlan struct {
	Geometry   TileGeometry
	Resolution Resolution
	// Name is the intended tile camera and render task name. A host may
	// adjust it on rename; the Builder derives output paths from the final
	// name.
	Name string
	// OutputPath is the tile's output path assuming Name is kept.
	OutputPath string
}

// Plan is the host-free description of one tiling invocation.
type Plan struct {
	Grid      Grid
	Camera    CameraTemplate
	Task      RenderTaskTemplate
	Timestamp string
	// Tiles are in row-major creation order.
	Tiles []TilePlan
}

// NewPlan computes the tiles for cam and task over grid. stamp is the
// invocation time and becomes the output subdirectory. A grid with more
// columns or rows than the camera has pixels truncates tiles to zero pixels
// and fails with ErrConfiguration.
func NewPlan(cam CameraTemplate, task RenderTaskTemplate, grid Grid, stamp time.Time) (*Plan, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if !cam.Resolution.Valid() {
		return nil, fmt.Errorf("%w: camera %q has resolution %s", ErrConfiguration, cam.Path, cam.Resolution)
	}
	if cam.Name == "" {
		return nil, fmt.Errorf("%w: camera %q has no name", ErrConfiguration, cam.Path)
	}

	p := &Plan{
		Grid:      grid,
		Camera:    cam,
		Task:      task,
		Timestamp: RunTimestamp(stamp),
		Tiles:     make([]TilePlan, 0, grid.Len()),
	}
	res := cam.Resolution.Divide(grid)
	if !res.Valid() {
		return nil, fmt.Errorf("%w: %s split %dx%d leaves %s tiles",
			ErrConfiguration, cam.Resolution, grid.TilesX, grid.TilesY, res)
	}
	for _, geo := range MapGrid(grid) {
		name := TileNodeName(cam.Name, geo.Label)
		p.Tiles = append(p.Tiles, TilePlan{
			Geometry:   geo,
			Resolution: res,
			Name:       name,
			OutputPath: TileOutputPath(task.OutputPath, p.Timestamp, name),
		})
	}
	return p, nil
}

// OutputDir returns the directory every tile of the plan writes into.
func (p *Plan) OutputDir() string {
	return TileOutputDir(p.Task.OutputPath, p.Timestamp)
}

// Labels returns the tile labels in creation order.
func (p *Plan) Labels() []string {
	labels := make([]string, len(p.Tiles))
	for i, t := range p.Tiles {
		labels[i] = t.Geometry.Label
	}
	return labels
}

// Truncated reports whether tile resolutions were truncated, meaning the
// reassembled image is smaller than the source frame.
func (p *Plan) Truncated() bool {
	return !p.Camera.Resolution.EvenlyDivides(p.Grid)
}
