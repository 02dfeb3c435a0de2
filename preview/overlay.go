// Package preview draws a tiler.Plan with Ebitengine: one outlined rectangle
// per tile, labelled, with a highlight sweeping through the tiles in the
// order the builder creates them.
package preview

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/tiler"
)

// Config controls the overlay window.
type Config struct {
	// Width and Height are the logical screen size. Zero values fit the
	// plan's aspect ratio into 960 pixels of width.
	Width, Height int
	// SecondsPerTile is how long the highlight rests on each tile.
	// Defaults to 0.25.
	SecondsPerTile float32
}

const (
	defaultPreviewWidth   = 960
	defaultSecondsPerTile = 0.25
)

var (
	outlineColor   = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	highlightColor = color.RGBA{R: 80, G: 180, B: 255, A: 96}
	clearColor     = color.RGBA{R: 30, G: 30, B: 40, A: 255}
)

// Overlay is an ebiten.Game that visualizes a plan.
type Overlay struct {
	plan  *tiler.Plan
	w, h  int
	sweep *gween.Tween
	index int
}

var _ ebiten.Game = (*Overlay)(nil)

// NewOverlay creates an overlay for plan.
func NewOverlay(plan *tiler.Plan, cfg Config) *Overlay {
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = fitSize(plan.Camera.Resolution, defaultPreviewWidth)
	}
	spt := cfg.SecondsPerTile
	if spt <= 0 {
		spt = defaultSecondsPerTile
	}
	n := float32(len(plan.Tiles))
	return &Overlay{
		plan:  plan,
		w:     w,
		h:     h,
		sweep: gween.New(0, n, n*spt, ease.Linear),
	}
}

// fitSize scales res to the given width, keeping its aspect ratio.
func fitSize(res tiler.Resolution, width int) (int, int) {
	if !res.Valid() {
		return width, width * 9 / 16
	}
	return width, max(1, width*res.Height/res.Width)
}

// TileRect maps a tile's frame window to screen pixels on a w by h screen.
// Window space has Y up; screen space has Y down, so tile v00 is drawn at
// the bottom.
func TileRect(geo tiler.TileGeometry, w, h float64) tiler.Rect {
	win := geo.Window()
	return tiler.Rect{
		X:      (win.X + 0.5) * w,
		Y:      (0.5 - (win.Y + win.Height)) * h,
		Width:  win.Width * w,
		Height: win.Height * h,
	}
}

// Update advances the highlight sweep, restarting it when it finishes.
func (o *Overlay) Update() error {
	if len(o.plan.Tiles) == 0 {
		return nil
	}
	v, done := o.sweep.Update(float32(1.0 / float64(ebiten.TPS())))
	if done {
		o.sweep.Reset()
	}
	o.index = min(int(v), len(o.plan.Tiles)-1)
	return nil
}

// Draw renders every tile outline, its label, and the highlighted tile.
func (o *Overlay) Draw(screen *ebiten.Image) {
	screen.Fill(clearColor)
	w, h := float64(o.w), float64(o.h)
	for i, t := range o.plan.Tiles {
		r := TileRect(t.Geometry, w, h)
		if i == o.index {
			vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), highlightColor, false)
		}
		vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 1, outlineColor, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s\n%s", t.Geometry.Label, t.Resolution), int(r.X)+4, int(r.Y)+2)
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  %dx%d  -> %s",
		o.plan.Camera.Path, o.plan.Grid.TilesX, o.plan.Grid.TilesY, o.plan.OutputDir()), 4, o.h-16)
}

// Layout returns the overlay's fixed logical size.
func (o *Overlay) Layout(_, _ int) (int, int) {
	return o.w, o.h
}

// Size returns the logical screen size.
func (o *Overlay) Size() (int, int) {
	return o.w, o.h
}
