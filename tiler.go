package tiler

import (
	"errors"
	"fmt"
)

// Rect is an axis-aligned rectangle. For tile windows the coordinate system
// is the camera's window space, centered on the frame with Y increasing upward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Area returns Width * Height.
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// Grid is the tile layout of one invocation: TilesX columns by TilesY rows.
type Grid struct {
	TilesX, TilesY int
}

// Cell identifies one tile of a Grid.
type Cell struct {
	X, Y int
}

// Validate returns ErrInvalidGrid unless both tile counts are positive.
func (g Grid) Validate() error {
	if g.TilesX <= 0 || g.TilesY <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGrid, g.TilesX, g.TilesY)
	}
	return nil
}

// Len returns the number of cells in the grid.
func (g Grid) Len() int {
	return g.TilesX * g.TilesY
}

// Cells returns every cell in row-major order: y outer, x inner.
// This is the creation order of tile cameras and render tasks.
func (g Grid) Cells() []Cell {
	if g.TilesX <= 0 || g.TilesY <= 0 {
		return nil
	}
	cells := make([]Cell, 0, g.Len())
	for y := range g.TilesY {
		for x := range g.TilesX {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	return cells
}

// Contains reports whether c lies inside the grid.
func (g Grid) Contains(c Cell) bool {
	return c.X >= 0 && c.X < g.TilesX && c.Y >= 0 && c.Y < g.TilesY
}

// Errors returned by the planner and the in-memory host.
var (
	// ErrInvalidGrid is returned when a tile count is zero or negative.
	ErrInvalidGrid = errors.New("tiler: invalid grid")
	// ErrConfiguration is returned when a source camera, source render task,
	// or destination parent cannot be resolved or is unusable.
	ErrConfiguration = errors.New("tiler: configuration error")
	// ErrNotFound is returned by Host.Resolve when nothing lives at a path.
	ErrNotFound = errors.New("tiler: node not found")
	// ErrNoParam is returned when a node has no parameter with the given name.
	ErrNoParam = errors.New("tiler: no such parameter")
	// ErrParamAnimated is returned by SetParam on a parameter that is still
	// driven by keyframes or a link to another parameter.
	ErrParamAnimated = errors.New("tiler: parameter is animated")
	// ErrNodeType is returned when an operation is applied to a node of the
	// wrong type, such as appending merge inputs to a camera.
	ErrNodeType = errors.New("tiler: wrong node type")
)

// NodeType distinguishes the kinds of node the in-memory Graph knows about.
type NodeType uint8

const (
	NodeTypeContainer   NodeType = iota // scope holding other nodes
	NodeTypeCamera                      // camera with window, resolution and transform params
	NodeTypeRenderTask                  // render driver bound to a camera and an output path
	NodeTypeIndirection                 // re-exposes another node's transform
	NodeTypeMerge                       // ordered aggregation of render tasks
)

// String returns a short lowercase name for the node type.
func (t NodeType) String() string {
	switch t {
	case NodeTypeContainer:
		return "container"
	case NodeTypeCamera:
		return "camera"
	case NodeTypeRenderTask:
		return "rendertask"
	case NodeTypeIndirection:
		return "indirection"
	case NodeTypeMerge:
		return "merge"
	default:
		return fmt.Sprintf("NodeType(%d)", uint8(t))
	}
}
