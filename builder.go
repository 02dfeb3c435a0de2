package tiler

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Names of the generated aggregation scope and its merge node.
const (
	AggregationName = "TILE_OUTPUTS"
	MergeName       = "OUT"
)

// BuildConfig configures a Builder.
type BuildConfig struct {
	// Params names the host parameters to read and write. Empty fields
	// default to DefaultParamNames.
	Params ParamNames
	// Now returns the invocation time. Defaults to time.Now.
	Now func() time.Time
	// Events receives build progress events. Optional.
	Events EventSink
	// Debug prints a trace of every host call group to stderr.
	Debug bool
}

// BuildRequest names the inputs of one tiling invocation.
type BuildRequest struct {
	// CameraPath is the source camera.
	CameraPath string
	// TaskPath is the source render task.
	TaskPath string
	// TilesX and TilesY are the grid dimensions.
	TilesX, TilesY int
	// Destination is the container for generated nodes. Anything already at
	// this path is destroyed.
	Destination string
}

// Grid returns the request's grid.
func (r BuildRequest) Grid() Grid {
	return Grid{TilesX: r.TilesX, TilesY: r.TilesY}
}

// TileNodes are the nodes created for one tile.
type TileNodes struct {
	Label      string
	Camera     NodeRef
	Task       NodeRef
	OutputPath string
}

// BuildResult describes the generated subgraph.
type BuildResult struct {
	Plan        *Plan
	Container   NodeRef
	Indirection NodeRef
	Aggregation NodeRef
	Merge       NodeRef
	// Tiles are in creation order, matching Plan.Tiles and the merge inputs.
	Tiles []TileNodes
}

// Builder realizes tiled render setups in a Host.
//
// A build is not incremental: every call to BuildTiledRender destroys the
// destination container and rebuilds it from scratch. If a host call fails
// while the subgraph is being built, the partial container is destroyed and
// the host's error is returned as is. The previous run's subgraph is already
// gone by then, so a failed build leaves neither the old nor the new
// subgraph at the destination. A failing Execute leaves the finished
// subgraph in place.
type Builder struct {
	host Host
	cfg  BuildConfig
}

// NewBuilder creates a Builder driving host.
func NewBuilder(host Host, cfg BuildConfig) *Builder {
	cfg.Params = cfg.Params.withDefaults()
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Builder{host: host, cfg: cfg}
}

// sources holds everything resolved before the host is mutated.
type sources struct {
	camera      NodeRef
	task        NodeRef
	parent      NodeRef
	destination string
	name        string
	plan        *Plan
}

// BuildTiledRender builds one camera and one render task per tile of the
// requested grid, merges the tasks, and executes them once.
func (b *Builder) BuildTiledRender(req BuildRequest) (*BuildResult, error) {
	src, err := b.resolve(req)
	if err != nil {
		return nil, err
	}
	b.debugf("plan %s: %dx%d tiles of %s into %s/",
		src.plan.Camera.Path, req.TilesX, req.TilesY,
		src.plan.Tiles[0].Resolution, src.plan.OutputDir())

	if err := b.replaceDestination(src); err != nil {
		return nil, err
	}
	container, err := b.host.CreateContainer(src.parent, src.name)
	if err != nil {
		return nil, err
	}
	b.emit(TileEvent{Type: EventSubgraphReplaced, Container: src.destination, Timestamp: src.plan.Timestamp})

	res, err := b.populate(container, src)
	if err != nil {
		b.rollback(container, src, err)
		return nil, err
	}

	if err := b.host.Execute(res.Aggregation); err != nil {
		return res, err
	}
	b.debugf("executed %d tiles", len(res.Tiles))
	b.emit(TileEvent{
		Type:      EventExecuted,
		Container: src.destination,
		Timestamp: src.plan.Timestamp,
		Tiles:     len(res.Tiles),
	})
	return res, nil
}

// resolve validates the request and reads the source templates without
// mutating the host.
func (b *Builder) resolve(req BuildRequest) (*sources, error) {
	grid := req.Grid()
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	p := b.cfg.Params

	camRef, err := b.resolveSource("source camera", req.CameraPath)
	if err != nil {
		return nil, err
	}
	taskRef, err := b.resolveSource("source render task", req.TaskPath)
	if err != nil {
		return nil, err
	}

	cam, err := readCameraTemplate(b.host, camRef, p)
	if err != nil {
		return nil, err
	}
	var task RenderTaskTemplate
	if task.Name, err = b.host.Name(taskRef); err != nil {
		return nil, err
	}
	if task.Path, err = b.host.Path(taskRef); err != nil {
		return nil, err
	}
	if task.CameraPath, err = stringParam(b.host, taskRef, p.RenderCamera); err != nil {
		return nil, err
	}
	if task.OutputPath, err = stringParam(b.host, taskRef, p.OutputPath); err != nil {
		return nil, err
	}

	destination := req.Destination
	parentPath, name := SplitDestination(destination)
	if name == "" {
		return nil, fmt.Errorf("%w: destination %q has no name", ErrConfiguration, destination)
	}
	parent, err := b.resolveSource("destination parent", parentPath)
	if err != nil {
		return nil, err
	}
	destination = parentJoin(parentPath, name)
	for _, sp := range []string{cam.Path, task.Path} {
		if within(sp, destination) {
			return nil, fmt.Errorf("%w: destination %q would destroy source %q", ErrConfiguration, destination, sp)
		}
	}

	plan, err := NewPlan(cam, task, grid, b.cfg.Now())
	if err != nil {
		return nil, err
	}
	if plan.Truncated() {
		log.Printf("tiler: %s resolution %s is not divisible by %dx%d; tiles truncated to %s",
			cam.Path, cam.Resolution, grid.TilesX, grid.TilesY, plan.Tiles[0].Resolution)
	}
	if !cam.Window.IsDefault() {
		log.Printf("tiler: %s has a non-default frame window %+v; tiles cover the full frame",
			cam.Path, cam.Window)
	}

	return &sources{
		camera:      camRef,
		task:        taskRef,
		parent:      parent,
		destination: destination,
		name:        name,
		plan:        plan,
	}, nil
}

// resolveSource resolves a path that must exist before anything is built.
func (b *Builder) resolveSource(what, path string) (NodeRef, error) {
	ref, err := b.host.Resolve(path)
	if errors.Is(err, ErrNotFound) {
		return NoNode, fmt.Errorf("%w: %s %q: %w", ErrConfiguration, what, path, err)
	}
	return ref, err
}

// replaceDestination destroys whatever a previous run left at the
// destination path.
func (b *Builder) replaceDestination(src *sources) error {
	old, err := b.host.Resolve(src.destination)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	b.debugf("destroying previous %s", src.destination)
	return b.host.Destroy(old)
}

// populate creates the indirection node, the aggregation scope, and every
// tile inside container.
func (b *Builder) populate(container NodeRef, src *sources) (*BuildResult, error) {
	h := b.host
	res := &BuildResult{Plan: src.plan, Container: container}

	var err error
	if res.Indirection, err = h.CreateIndirection(container, src.plan.Camera.Path); err != nil {
		return nil, err
	}
	if res.Aggregation, err = h.CreateContainer(container, AggregationName); err != nil {
		return nil, err
	}
	if res.Merge, err = h.CreateMerge(res.Aggregation, MergeName); err != nil {
		return nil, err
	}

	res.Tiles = make([]TileNodes, 0, len(src.plan.Tiles))
	for i := range src.plan.Tiles {
		tile, err := b.buildTile(res, src, &src.plan.Tiles[i])
		if err != nil {
			return nil, err
		}
		res.Tiles = append(res.Tiles, tile)
	}

	if err := h.Layout(container); err != nil {
		return nil, err
	}
	if err := h.Layout(res.Aggregation); err != nil {
		return nil, err
	}
	return res, nil
}

// buildTile creates, configures and wires the camera and render task of one
// tile.
func (b *Builder) buildTile(res *BuildResult, src *sources, tp *TilePlan) (TileNodes, error) {
	h := b.host
	p := b.cfg.Params
	geo := tp.Geometry
	tile := TileNodes{Label: geo.Label}

	cam, err := h.Duplicate(src.camera, res.Container, true)
	if err != nil {
		return tile, err
	}
	tile.Camera = cam
	if err := h.SetInput(cam, 0, res.Indirection); err != nil {
		return tile, err
	}

	static := []paramValue{
		{p.WindowX, geo.OffsetX},
		{p.WindowY, geo.OffsetY},
		{p.WindowSizeX, geo.SizeX},
		{p.WindowSizeY, geo.SizeY},
		{p.ResolutionX, tp.Resolution.Width},
		{p.ResolutionY, tp.Resolution.Height},
	}
	for _, name := range p.transformParams() {
		static = append(static, paramValue{name, 0.0})
	}
	for _, s := range static {
		if err := b.overwrite(cam, s.name, s.value); err != nil {
			return tile, err
		}
	}
	if err := h.Rename(cam, tp.Name); err != nil {
		return tile, err
	}
	camPath, err := h.Path(cam)
	if err != nil {
		return tile, err
	}

	task, err := h.Duplicate(src.task, res.Aggregation, true)
	if err != nil {
		return tile, err
	}
	tile.Task = task
	if err := h.Rename(task, tp.Name); err != nil {
		return tile, err
	}
	if err := b.overwrite(task, p.RenderCamera, camPath); err != nil {
		return tile, err
	}
	taskName, err := h.Name(task)
	if err != nil {
		return tile, err
	}
	tile.OutputPath = TileOutputPath(src.plan.Task.OutputPath, src.plan.Timestamp, taskName)
	if err := b.overwrite(task, p.OutputPath, tile.OutputPath); err != nil {
		return tile, err
	}
	if err := h.AppendMergeInput(res.Merge, task); err != nil {
		return tile, err
	}

	taskPath, err := h.Path(task)
	if err != nil {
		return tile, err
	}
	b.debugf("tile %s: camera %s window (%.4f, %.4f) size (%.4f, %.4f) -> %s",
		geo.Label, camPath, geo.OffsetX, geo.OffsetY, geo.SizeX, geo.SizeY, tile.OutputPath)
	b.emit(TileEvent{
		Type:       EventTileCreated,
		Container:  src.destination,
		Timestamp:  src.plan.Timestamp,
		X:          geo.X,
		Y:          geo.Y,
		Label:      geo.Label,
		CameraPath: camPath,
		TaskPath:   taskPath,
		OutputPath: tile.OutputPath,
		Tiles:      len(res.Tiles) + 1,
	})
	return tile, nil
}

// paramValue is a parameter assignment.
type paramValue struct {
	name  string
	value any
}

// overwrite drops any animation or link on a parameter and sets a static
// value.
func (b *Builder) overwrite(ref NodeRef, name string, value any) error {
	if err := b.host.ClearParamAnimation(ref, name); err != nil {
		return err
	}
	return b.host.SetParam(ref, name, value)
}

// rollback removes a partially built destination container.
func (b *Builder) rollback(container NodeRef, src *sources, cause error) {
	b.debugf("build failed (%v); removing %s", cause, src.destination)
	if err := b.host.Destroy(container); err != nil {
		log.Printf("tiler: rollback of %s failed: %v", src.destination, err)
		return
	}
	b.emit(TileEvent{Type: EventRolledBack, Container: src.destination, Timestamp: src.plan.Timestamp})
}

func (b *Builder) emit(e TileEvent) {
	if b.cfg.Events != nil {
		b.cfg.Events.EmitTileEvent(e)
	}
}

func (b *Builder) debugf(format string, args ...any) {
	if !b.cfg.Debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[tiler] "+format+"\n", args...)
}

// parentJoin joins a parent path and a child name without doubling the
// root slash.
func parentJoin(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

// within reports whether p is dir or lies below it.
func within(p, dir string) bool {
	return p == dir || strings.HasPrefix(p, dir+"/")
}
