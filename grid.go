package tiler

import "fmt"

// windowOffsetScale converts the [-1, 1] remapped tile center into the unit
// the camera window offset parameter uses.
const windowOffsetScale = 0.5

// TileGeometry is the camera window and label for one tile.
type TileGeometry struct {
	// X and Y are the tile's grid coordinate.
	X, Y int
	// OffsetX and OffsetY are the frame window offset of the tile camera.
	OffsetX, OffsetY float64
	// SizeX and SizeY are the frame window size, the fraction of the full
	// frame covered by the tile along each axis.
	SizeX, SizeY float64
	// Label is the tile's "uXX_vYY" identifier.
	Label string
}

// Window returns the tile rectangle in window units (Offset ± Size/2).
// The windows of every tile in a grid partition [-0.5, 0.5] on both axes.
func (t TileGeometry) Window() Rect {
	return Rect{
		X:      t.OffsetX - t.SizeX/2,
		Y:      t.OffsetY - t.SizeY/2,
		Width:  t.SizeX,
		Height: t.SizeY,
	}
}

// Fit linearly remaps value from [oldMin, oldMax] to [newMin, newMax].
// Values outside the old range extrapolate.
func Fit(value, oldMin, oldMax, newMin, newMax float64) float64 {
	return ((value-oldMin)*(newMax-newMin))/(oldMax-oldMin) + newMin
}

// TileLabel returns the "uXX_vYY" label for the tile at (x, y), zero padded
// to two digits.
func TileLabel(x, y int) string {
	return fmt.Sprintf("u%02d_v%02d", x, y)
}

// MapTile computes the frame window of tile (x, y) in a tilesX by tilesY grid.
//
// Panics if either tile count is not positive or (x, y) is outside the grid;
// callers validate the grid with Grid.Validate first.
func MapTile(x, y, tilesX, tilesY int) TileGeometry {
	if tilesX <= 0 || tilesY <= 0 {
		panic(fmt.Sprintf("tiler: tile counts must be positive, got %dx%d", tilesX, tilesY))
	}
	if x < 0 || x >= tilesX || y < 0 || y >= tilesY {
		panic(fmt.Sprintf("tiler: tile (%d, %d) out of range for %dx%d grid", x, y, tilesX, tilesY))
	}

	zoomX := 1.0 / float64(tilesX)
	zoomY := 1.0 / float64(tilesY)

	// Tile center in [0, 1] frame space.
	centerX := float64(x)*zoomX + zoomX/2
	centerY := float64(y)*zoomY + zoomY/2

	return TileGeometry{
		X:       x,
		Y:       y,
		OffsetX: Fit(centerX, 0, 1, -1, 1) * windowOffsetScale,
		OffsetY: Fit(centerY, 0, 1, -1, 1) * windowOffsetScale,
		SizeX:   zoomX,
		SizeY:   zoomY,
		Label:   TileLabel(x, y),
	}
}

// MapGrid returns the geometry of every tile of g in row-major order.
func MapGrid(g Grid) []TileGeometry {
	cells := g.Cells()
	tiles := make([]TileGeometry, len(cells))
	for i, c := range cells {
		tiles[i] = MapTile(c.X, c.Y, g.TilesX, g.TilesY)
	}
	return tiles
}
