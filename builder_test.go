package tiler

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var buildTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

const (
	testCamera = "/obj/cam1"
	testTask   = "/out/rop1"
	testDest   = "/obj/CAM_TILES"
)

// newTestScene returns a graph with one camera and one render task.
func newTestScene(t *testing.T, res Resolution) *Graph {
	t.Helper()
	g := NewGraph()
	if _, err := g.Insert("/obj", NewCamera("cam1", res)); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Insert("/out", NewRenderTask("rop1", testCamera, "/renders/beauty.exr")); err != nil {
		t.Fatal(err)
	}
	return g
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testRequest(tx, ty int) BuildRequest {
	return BuildRequest{
		CameraPath:  testCamera,
		TaskPath:    testTask,
		TilesX:      tx,
		TilesY:      ty,
		Destination: testDest,
	}
}

// eventRecorder is an EventSink that keeps every event.
type eventRecorder struct {
	events []TileEvent
}

func (r *eventRecorder) EmitTileEvent(e TileEvent) {
	r.events = append(r.events, e)
}

func (r *eventRecorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func dump(t *testing.T, g *Graph) string {
	t.Helper()
	var buf bytes.Buffer
	if err := g.Dump(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

// subtreePaths lists every path under root, root excluded.
func subtreePaths(n *Node) []string {
	var out []string
	for _, c := range n.Children() {
		out = append(out, c.Path())
		out = append(out, subtreePaths(c)...)
	}
	return out
}

func mustLookup(t *testing.T, g *Graph, p string) *Node {
	t.Helper()
	n := g.Lookup(p)
	if n == nil {
		t.Fatalf("no node at %s", p)
	}
	return n
}

func TestBuildTiledRender4x4(t *testing.T) {
	g := newTestScene(t, Resolution{3840, 2160})
	b := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime)})

	res, err := b.BuildTiledRender(testRequest(4, 4))
	if err != nil {
		t.Fatalf("BuildTiledRender: %v", err)
	}
	if len(res.Tiles) != 16 {
		t.Fatalf("tiles = %d, want 16", len(res.Tiles))
	}

	dest := mustLookup(t, g, testDest)
	if dest.Ref() != res.Container {
		t.Errorf("Container ref = %d, want %d", res.Container, dest.Ref())
	}

	// 1 indirection + 16 cameras + TILE_OUTPUTS
	if got := dest.NumChildren(); got != 18 {
		t.Errorf("destination children = %d, want 18", got)
	}
	agg := mustLookup(t, g, testDest+"/"+AggregationName)
	// 16 tasks + OUT
	if got := agg.NumChildren(); got != 17 {
		t.Errorf("%s children = %d, want 17", AggregationName, got)
	}

	for i, tile := range res.Tiles {
		want := TileNodeName("cam1", res.Plan.Tiles[i].Geometry.Label)
		cam := g.Node(tile.Camera)
		if cam == nil || cam.Name != want || cam.Type != NodeTypeCamera {
			t.Fatalf("tile %d camera = %+v, want camera %s", i, cam, want)
		}
		if rx := cam.Param("resx").Eval(0); rx != 960 {
			t.Errorf("%s resx = %v, want 960", want, rx)
		}
		if ry := cam.Param("resy").Eval(0); ry != 540 {
			t.Errorf("%s resy = %v, want 540", want, ry)
		}
		geo := res.Plan.Tiles[i].Geometry
		if v := cam.Param("winx").Eval(0); v != geo.OffsetX {
			t.Errorf("%s winx = %v, want %v", want, v, geo.OffsetX)
		}
		if v := cam.Param("winsizey").Eval(0); v != 0.25 {
			t.Errorf("%s winsizey = %v, want 0.25", want, v)
		}
		task := g.Node(tile.Task)
		if task == nil || task.Name != want || task.Parent != agg {
			t.Fatalf("tile %d task = %+v, want %s in %s", i, task, want, agg.Path())
		}
	}

	merge := mustLookup(t, g, testDest+"/"+AggregationName+"/"+MergeName)
	if merge.Ref() != res.Merge {
		t.Errorf("Merge ref mismatch")
	}
	var mergeOrder []string
	for _, in := range merge.MergeInputs() {
		mergeOrder = append(mergeOrder, in.Name)
	}
	var wantOrder []string
	for _, tp := range res.Plan.Tiles {
		wantOrder = append(wantOrder, tp.Name)
	}
	if diff := cmp.Diff(wantOrder, mergeOrder); diff != "" {
		t.Errorf("merge order mismatch (-want +got):\n%s", diff)
	}

	execs := g.Executions()
	if len(execs) != 1 {
		t.Fatalf("executions = %d, want 1", len(execs))
	}
	if execs[0].Path != agg.Path() {
		t.Errorf("executed %s, want %s", execs[0].Path, agg.Path())
	}
	if len(execs[0].Tasks) != 16 {
		t.Errorf("executed %d tasks, want 16", len(execs[0].Tasks))
	}
}

func TestBuildTiledRenderWiring(t *testing.T) {
	g := newTestScene(t, Resolution{1920, 1080})
	b := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime)})

	res, err := b.BuildTiledRender(testRequest(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	ind := g.Node(res.Indirection)
	if ind == nil || ind.Type != NodeTypeIndirection {
		t.Fatalf("indirection = %+v", ind)
	}
	if ind.Target != testCamera {
		t.Errorf("indirection target = %q, want %q", ind.Target, testCamera)
	}
	if ind.Parent != g.Node(res.Container) {
		t.Error("indirection is not inside the destination container")
	}

	for _, tile := range res.Tiles {
		cam := g.Node(tile.Camera)
		if in := cam.Input(0); in != ind {
			t.Errorf("%s input 0 = %v, want indirection", cam.Name, in)
		}
		task := g.Node(tile.Task)
		if got := task.Param("RS_renderCamera").Eval(0); got != cam.Path() {
			t.Errorf("%s RS_renderCamera = %v, want %s", task.Name, got, cam.Path())
		}
		if got := task.Param("RS_outputFileNamePrefix").Eval(0); got != tile.OutputPath {
			t.Errorf("%s output = %v, want %s", task.Name, got, tile.OutputPath)
		}
		want := "/renders/20261019_120000/" + task.Name + "beauty.exr"
		if tile.OutputPath != want {
			t.Errorf("%s OutputPath = %q, want %q", task.Name, tile.OutputPath, want)
		}
		for _, name := range cam.ParamNames() {
			if cam.Param(name).Animated() {
				t.Errorf("%s.%s still animated or linked", cam.Name, name)
			}
		}
	}

	// Source nodes are left untouched.
	src := mustLookup(t, g, testTask)
	if got := src.Param("RS_outputFileNamePrefix").Eval(0); got != "/renders/beauty.exr" {
		t.Errorf("source output path changed to %v", got)
	}
	if got := src.Param("RS_renderCamera").Eval(0); got != testCamera {
		t.Errorf("source camera ref changed to %v", got)
	}
}

func TestBuildTiledRenderClearsAnimatedTransform(t *testing.T) {
	g := newTestScene(t, Resolution{1920, 1080})
	g.Frame = 5
	cam := mustLookup(t, g, testCamera)
	cam.Param("tx").SetChannel(NewChannel(nil, Keyframe{0, 0}, Keyframe{10, 5}))
	cam.Param("ry").SetChannel(NewChannel(nil, Keyframe{0, 90}, Keyframe{10, 180}))

	b := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime)})
	res, err := b.BuildTiledRender(testRequest(2, 1))
	if err != nil {
		t.Fatal(err)
	}
	for _, tile := range res.Tiles {
		tc := g.Node(tile.Camera)
		for _, name := range DefaultParamNames.transformParams() {
			p := tc.Param(name)
			if p.Animated() {
				t.Errorf("%s.%s animated", tc.Name, name)
			}
			if v := p.Eval(g.Frame); v != 0.0 {
				t.Errorf("%s.%s = %v, want 0", tc.Name, name, v)
			}
		}
	}
	if got := cam.Param("tx").Eval(g.Frame); got != 2.5 {
		t.Errorf("source tx = %v, want 2.5", got)
	}
	if !cam.Param("tx").Animated() {
		t.Error("source tx lost its animation")
	}
}

func TestBuildTiledRenderRerun(t *testing.T) {
	g := newTestScene(t, Resolution{1920, 1080})
	now := buildTime
	b := NewBuilder(g, BuildConfig{Now: func() time.Time { return now }})

	first, err := b.BuildTiledRender(testRequest(3, 2))
	if err != nil {
		t.Fatal(err)
	}
	firstPaths := subtreePaths(mustLookup(t, g, testDest))
	firstContainer := g.Node(first.Container)

	now = now.Add(time.Second)
	second, err := b.BuildTiledRender(testRequest(3, 2))
	if err != nil {
		t.Fatal(err)
	}
	if !firstContainer.IsDisposed() {
		t.Error("first run's container was not destroyed")
	}
	if diff := cmp.Diff(firstPaths, subtreePaths(mustLookup(t, g, testDest))); diff != "" {
		t.Errorf("rerun structure differs (-first +second):\n%s", diff)
	}
	if n := len(mustLookup(t, g, "/obj").Children()); n != 2 {
		t.Errorf("/obj has %d children, want cam1 and CAM_TILES", n)
	}
	if len(g.Executions()) != 2 {
		t.Errorf("executions = %d, want 2", len(g.Executions()))
	}

	d1 := path.Dir(first.Tiles[0].OutputPath)
	d2 := path.Dir(second.Tiles[0].OutputPath)
	if d1 == d2 {
		t.Errorf("both runs write into %s", d1)
	}
	if d2 != "/renders/20261019_120001" {
		t.Errorf("second run dir = %s", d2)
	}
}

func TestBuildTiledRenderReplacesExistingDestination(t *testing.T) {
	g := newTestScene(t, Resolution{1920, 1080})
	stale := NewContainer("CAM_TILES")
	stale.AddChild(NewContainer("leftover"))
	if _, err := g.Insert("/obj", stale); err != nil {
		t.Fatal(err)
	}

	b := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime)})
	if _, err := b.BuildTiledRender(testRequest(1, 1)); err != nil {
		t.Fatal(err)
	}
	if g.Lookup(testDest+"/leftover") != nil {
		t.Error("stale content survived the rebuild")
	}
	if g.Lookup(testDest+"/cam1_u00_v00") == nil {
		t.Error("tile camera missing")
	}
}

func TestBuildTiledRenderInvalidGridNoMutation(t *testing.T) {
	for _, grid := range [][2]int{{0, 4}, {4, 0}, {-1, 2}} {
		g := newTestScene(t, Resolution{1920, 1080})
		before := dump(t, g)
		b := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime)})

		_, err := b.BuildTiledRender(testRequest(grid[0], grid[1]))
		if !errors.Is(err, ErrInvalidGrid) {
			t.Errorf("%v: err = %v, want ErrInvalidGrid", grid, err)
		}
		if after := dump(t, g); after != before {
			t.Errorf("%v: graph mutated:\n%s", grid, after)
		}
		if len(g.Executions()) != 0 {
			t.Errorf("%v: executed", grid)
		}
	}
}

func TestBuildTiledRenderMissingSources(t *testing.T) {
	cases := []struct {
		name string
		req  BuildRequest
	}{
		{"camera", BuildRequest{CameraPath: "/obj/nope", TaskPath: testTask, TilesX: 2, TilesY: 2, Destination: testDest}},
		{"task", BuildRequest{CameraPath: testCamera, TaskPath: "/out/nope", TilesX: 2, TilesY: 2, Destination: testDest}},
		{"destination parent", BuildRequest{CameraPath: testCamera, TaskPath: testTask, TilesX: 2, TilesY: 2, Destination: "/nowhere/TILES"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := newTestScene(t, Resolution{1920, 1080})
			before := dump(t, g)
			_, err := NewBuilder(g, BuildConfig{}).BuildTiledRender(c.req)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("err = %v, want ErrConfiguration", err)
			}
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("err = %v, want it to wrap ErrNotFound", err)
			}
			if after := dump(t, g); after != before {
				t.Errorf("graph mutated:\n%s", after)
			}
		})
	}
}

func TestBuildTiledRenderBadSourceParams(t *testing.T) {
	g := newTestScene(t, Resolution{1920, 1080})
	mustLookup(t, g, testCamera).AddParam("resx", "wide")
	_, err := NewBuilder(g, BuildConfig{}).BuildTiledRender(testRequest(2, 2))
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("string resx: err = %v, want ErrConfiguration", err)
	}

	g = newTestScene(t, Resolution{0, 1080})
	_, err = NewBuilder(g, BuildConfig{}).BuildTiledRender(testRequest(2, 2))
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("zero resx: err = %v, want ErrConfiguration", err)
	}

	g = NewGraph()
	if _, err := g.Insert("/obj", NewContainer("cam1")); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Insert("/out", NewRenderTask("rop1", testCamera, "/r/x.exr")); err != nil {
		t.Fatal(err)
	}
	_, err = NewBuilder(g, BuildConfig{}).BuildTiledRender(testRequest(2, 2))
	if !errors.Is(err, ErrNoParam) {
		t.Errorf("camera without params: err = %v, want ErrNoParam", err)
	}
}

func TestBuildTiledRenderDestinationErrors(t *testing.T) {
	for _, dest := range []string{"/obj", "/", "/obj/cam1"} {
		g := newTestScene(t, Resolution{1920, 1080})
		before := dump(t, g)
		req := testRequest(2, 2)
		req.Destination = dest
		_, err := NewBuilder(g, BuildConfig{}).BuildTiledRender(req)
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("destination %q: err = %v, want ErrConfiguration", dest, err)
		}
		if after := dump(t, g); after != before {
			t.Errorf("destination %q: graph mutated", dest)
		}
	}
}

// suffixHost adjusts every rename the way hosts with naming rules do.
type suffixHost struct {
	*Graph
}

func (h suffixHost) Rename(ref NodeRef, name string) error {
	return h.Graph.Rename(ref, name+"_1")
}

func TestBuildTiledRenderOutputFollowsFinalName(t *testing.T) {
	g := newTestScene(t, Resolution{1920, 1080})
	res, err := NewBuilder(suffixHost{g}, BuildConfig{Now: fixedClock(buildTime)}).BuildTiledRender(testRequest(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	task := g.Node(res.Tiles[0].Task)
	if task.Name != "cam1_u00_v00_1" {
		t.Fatalf("task name = %q", task.Name)
	}
	want := "/renders/20261019_120000/cam1_u00_v00_1beauty.exr"
	if res.Tiles[0].OutputPath != want {
		t.Errorf("output = %q, want %q", res.Tiles[0].OutputPath, want)
	}
	cam := g.Node(res.Tiles[0].Camera)
	if got := task.Param("RS_renderCamera").Eval(0); got != cam.Path() {
		t.Errorf("RS_renderCamera = %v, want %s", got, cam.Path())
	}
}

// failingHost fails the nth AppendMergeInput call.
type failingHost struct {
	*Graph
	failAt int
	calls  int
	err    error
}

func (h *failingHost) AppendMergeInput(merge, src NodeRef) error {
	h.calls++
	if h.calls == h.failAt {
		return h.err
	}
	return h.Graph.AppendMergeInput(merge, src)
}

func TestBuildTiledRenderRollsBackOnHostError(t *testing.T) {
	g := newTestScene(t, Resolution{1920, 1080})
	hostErr := errors.New("host: merge refused")
	h := &failingHost{Graph: g, failAt: 3, err: hostErr}
	rec := &eventRecorder{}
	b := NewBuilder(h, BuildConfig{Now: fixedClock(buildTime), Events: rec})

	res, err := b.BuildTiledRender(testRequest(2, 2))
	if err != hostErr {
		t.Fatalf("err = %v, want the host error unchanged", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
	if g.Lookup(testDest) != nil {
		t.Error("partial destination was not removed")
	}
	if len(g.Executions()) != 0 {
		t.Error("failed build executed")
	}
	want := []EventType{EventSubgraphReplaced, EventTileCreated, EventTileCreated, EventRolledBack}
	if diff := cmp.Diff(want, rec.types()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if mustLookup(t, g, testCamera).IsDisposed() || mustLookup(t, g, testTask).IsDisposed() {
		t.Error("rollback touched the sources")
	}
}

func TestBuildTiledRenderExecuteErrorKeepsGraph(t *testing.T) {
	g := newTestScene(t, Resolution{1920, 1080})
	renderErr := errors.New("render farm offline")
	var rendered []string
	g.Render = func(task ExecutedTask) error {
		rendered = append(rendered, path.Base(task.Path))
		if len(rendered) == 2 {
			return renderErr
		}
		return nil
	}
	rec := &eventRecorder{}
	b := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime), Events: rec})

	res, err := b.BuildTiledRender(testRequest(2, 2))
	if !errors.Is(err, renderErr) {
		t.Fatalf("err = %v, want render error", err)
	}
	if res == nil || len(res.Tiles) != 4 {
		t.Fatalf("result = %+v, want the finished subgraph", res)
	}
	if g.Lookup(testDest+"/"+AggregationName+"/"+MergeName) == nil {
		t.Error("subgraph removed after execute failure")
	}
	if diff := cmp.Diff([]string{"cam1_u00_v00", "cam1_u01_v00"}, rendered); diff != "" {
		t.Errorf("rendered mismatch (-want +got):\n%s", diff)
	}
	for _, e := range rec.events {
		if e.Type == EventExecuted || e.Type == EventRolledBack {
			t.Errorf("unexpected %s event", e.Type)
		}
	}
}

func TestBuildTiledRenderKeepsHostRelativeOutput(t *testing.T) {
	g := NewGraph()
	if _, err := g.Insert("/obj", NewCamera("cam1", Resolution{1920, 1080})); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Insert("/out", NewRenderTask("rop1", testCamera, "$HIP/../renders/beauty.exr")); err != nil {
		t.Fatal(err)
	}
	res, err := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime)}).BuildTiledRender(testRequest(2, 1))
	if err != nil {
		t.Fatal(err)
	}
	want := "$HIP/../renders/20261019_120000/cam1_u00_v00beauty.exr"
	if res.Tiles[0].OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", res.Tiles[0].OutputPath, want)
	}
	if got := g.Node(res.Tiles[0].Task).Param("RS_outputFileNamePrefix").Eval(0); got != want {
		t.Errorf("task output = %v, want %q", got, want)
	}
	if got := g.Executions()[0].Tasks[1].Output; got != "$HIP/../renders/20261019_120000/cam1_u01_v00beauty.exr" {
		t.Errorf("executed output = %q", got)
	}
}

func TestBuildTiledRenderZeroPixelTilesNoMutation(t *testing.T) {
	g := newTestScene(t, Resolution{2, 2})
	before := dump(t, g)
	_, err := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime)}).BuildTiledRender(testRequest(4, 4))
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
	if after := dump(t, g); after != before {
		t.Errorf("graph mutated:\n%s", after)
	}
	if len(g.Executions()) != 0 {
		t.Error("executed")
	}
}

func TestBuildTiledRenderFailedRerunLeavesNoSubgraph(t *testing.T) {
	g := newTestScene(t, Resolution{1920, 1080})
	if _, err := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime)}).BuildTiledRender(testRequest(2, 2)); err != nil {
		t.Fatal(err)
	}
	previous := mustLookup(t, g, testDest)

	hostErr := errors.New("host: merge refused")
	h := &failingHost{Graph: g, failAt: 1, err: hostErr}
	if _, err := NewBuilder(h, BuildConfig{Now: fixedClock(buildTime)}).BuildTiledRender(testRequest(2, 2)); err != hostErr {
		t.Fatalf("err = %v, want the host error unchanged", err)
	}
	if !previous.IsDisposed() {
		t.Error("previous subgraph survived the failed rerun")
	}
	if g.Lookup(testDest) != nil {
		t.Error("partial subgraph survived the failed rerun")
	}
	if len(g.Executions()) != 1 {
		t.Errorf("executions = %d, want only the first run", len(g.Executions()))
	}
}

func TestBuildTiledRenderEvents(t *testing.T) {
	g := newTestScene(t, Resolution{1920, 1080})
	rec := &eventRecorder{}
	b := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime), Events: rec})
	if _, err := b.BuildTiledRender(testRequest(2, 1)); err != nil {
		t.Fatal(err)
	}
	want := []TileEvent{
		{Type: EventSubgraphReplaced, Container: testDest, Timestamp: "20261019_120000"},
		{
			Type: EventTileCreated, Container: testDest, Timestamp: "20261019_120000",
			X: 0, Y: 0, Label: "u00_v00",
			CameraPath: testDest + "/cam1_u00_v00",
			TaskPath:   testDest + "/TILE_OUTPUTS/cam1_u00_v00",
			OutputPath: "/renders/20261019_120000/cam1_u00_v00beauty.exr",
			Tiles:      1,
		},
		{
			Type: EventTileCreated, Container: testDest, Timestamp: "20261019_120000",
			X: 1, Y: 0, Label: "u01_v00",
			CameraPath: testDest + "/cam1_u01_v00",
			TaskPath:   testDest + "/TILE_OUTPUTS/cam1_u01_v00",
			OutputPath: "/renders/20261019_120000/cam1_u01_v00beauty.exr",
			Tiles:      2,
		},
		{Type: EventExecuted, Container: testDest, Timestamp: "20261019_120000", Tiles: 2},
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTiledRenderWarnings(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})

	g := newTestScene(t, Resolution{1921, 1080})
	mustLookup(t, g, testCamera).AddParam("winsizex", 0.5)
	res, err := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime)}).BuildTiledRender(testRequest(4, 1))
	if err != nil {
		t.Fatal(err)
	}
	if w := g.Node(res.Tiles[0].Camera).Param("resx").Eval(0); w != 480 {
		t.Errorf("tile resx = %v, want 480", w)
	}
	out := buf.String()
	if !strings.Contains(out, "tiler: /obj/cam1 resolution 1921x1080 is not divisible by 4x1") {
		t.Errorf("missing truncation warning in %q", out)
	}
	if !strings.Contains(out, "non-default frame window") {
		t.Errorf("missing window warning in %q", out)
	}
	// Tile windows ignore the source window.
	if v := g.Node(res.Tiles[0].Camera).Param("winsizex").Eval(0); v != 0.25 {
		t.Errorf("tile winsizex = %v, want 0.25", v)
	}
}

func TestBuildTiledRenderDebug(t *testing.T) {
	g := newTestScene(t, Resolution{1920, 1080})
	g.SetDebugMode(true)
	t.Cleanup(func() { g.SetDebugMode(false) })

	b := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime), Debug: true})
	res, err := b.BuildTiledRender(testRequest(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Tiles) != 4 {
		t.Errorf("tiles = %d, want 4", len(res.Tiles))
	}
}

func TestBuildTiledRenderCustomParamNames(t *testing.T) {
	g := NewGraph()
	cam := NewContainer("shotcam")
	cam.Type = NodeTypeCamera
	for _, name := range []string{"tx", "ty", "tz", "rx", "ry", "rz", "winx", "winy"} {
		cam.AddParam(name, 0.0)
	}
	cam.AddParam("winsizex", 1.0)
	cam.AddParam("winsizey", 1.0)
	cam.AddParam("width", 800)
	cam.AddParam("height", 600)
	if _, err := g.Insert("/obj", cam); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Insert("/out", NewRenderTask("rop1", "/obj/shotcam", "/r/img.png")); err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(g, BuildConfig{
		Now:    fixedClock(buildTime),
		Params: ParamNames{ResolutionX: "width", ResolutionY: "height"},
	})
	req := testRequest(2, 3)
	req.CameraPath = "/obj/shotcam"
	res, err := b.BuildTiledRender(req)
	if err != nil {
		t.Fatal(err)
	}
	tc := g.Node(res.Tiles[5].Camera)
	if tc.Name != "shotcam_u01_v02" {
		t.Errorf("last tile = %s", tc.Name)
	}
	if w, h := tc.Param("width").Eval(0), tc.Param("height").Eval(0); w != 400 || h != 200 {
		t.Errorf("tile size = %vx%v, want 400x200", w, h)
	}
}

func ExampleBuilder_BuildTiledRender() {
	g := NewGraph()
	_, _ = g.Insert("/obj", NewCamera("cam1", Resolution{Width: 1920, Height: 1080}))
	_, _ = g.Insert("/out", NewRenderTask("rop1", "/obj/cam1", "/renders/beauty.exr"))

	b := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime)})
	res, err := b.BuildTiledRender(BuildRequest{
		CameraPath:  "/obj/cam1",
		TaskPath:    "/out/rop1",
		TilesX:      2,
		TilesY:      1,
		Destination: "/obj/CAM_TILES",
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, tile := range res.Tiles {
		fmt.Println(tile.Label, tile.OutputPath)
	}
	// Output:
	// u00_v00 /renders/20261019_120000/cam1_u00_v00beauty.exr
	// u01_v00 /renders/20261019_120000/cam1_u01_v00beauty.exr
}

func BenchmarkBuildTiledRender8x8(b *testing.B) {
	g := NewGraph()
	_, _ = g.Insert("/obj", NewCamera("cam1", Resolution{Width: 7680, Height: 4320}))
	_, _ = g.Insert("/out", NewRenderTask("rop1", "/obj/cam1", "/renders/beauty.exr"))
	bld := NewBuilder(g, BuildConfig{Now: fixedClock(buildTime)})
	req := testRequest(8, 8)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := bld.BuildTiledRender(req); err != nil {
			b.Fatal(err)
		}
	}
}
