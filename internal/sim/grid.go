package sim

import (
	"fmt"
	"math"
)

// Board geometry. Tile sizes use integer division, so the last column and
// row leave a few pixels of slack on the right and bottom edges.
const (
	ScreenWidth  = 800
	ScreenHeight = 600
	GridCols     = 15
	GridRows     = 10
	TileWidth    = ScreenWidth / GridCols
	TileHeight   = ScreenHeight / GridRows
)

// Tile addresses one grid cell.
type Tile struct {
	Col, Row int
}

func (t Tile) String() string {
	return fmt.Sprintf("(%d,%d)", t.Col, t.Row)
}

// Grid is a fixed-size passability map where true = passable and buildable.
type Grid struct {
	cols  int
	rows  int
	tileW int
	tileH int
	open  []bool
}

// NewGrid returns a grid with every tile passable.
func NewGrid(cols, rows, tileW, tileH int) *Grid {
	g := &Grid{
		cols:  cols,
		rows:  rows,
		tileW: tileW,
		tileH: tileH,
		open:  make([]bool, cols*rows),
	}
	g.Reset(nil)
	return g
}

// NewBoardGrid returns the standard 15x10 board grid.
func NewBoardGrid() *Grid {
	return NewGrid(GridCols, GridRows, TileWidth, TileHeight)
}

func (g *Grid) Cols() int       { return g.cols }
func (g *Grid) Rows() int       { return g.rows }
func (g *Grid) TileWidth() int  { return g.tileW }
func (g *Grid) TileHeight() int { return g.tileH }

// InBounds reports whether (col, row) lies on the grid.
func (g *Grid) InBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.cols && row < g.rows
}

// IsPassable returns false for out-of-bounds cells.
func (g *Grid) IsPassable(col, row int) bool {
	if !g.InBounds(col, row) {
		return false
	}
	return g.open[row*g.cols+col]
}

// SetOccupied marks an in-bounds passable cell as blocked.
// It reports whether the cell changed.
func (g *Grid) SetOccupied(col, row int) bool {
	if !g.IsPassable(col, row) {
		return false
	}
	g.open[row*g.cols+col] = false
	return true
}

// Reset opens every cell and then blocks the given permanent obstacles.
// Out-of-bounds obstacles are ignored.
func (g *Grid) Reset(obstacles []Tile) {
	for i := range g.open {
		g.open[i] = true
	}
	for _, t := range obstacles {
		if g.InBounds(t.Col, t.Row) {
			g.open[t.Row*g.cols+t.Col] = false
		}
	}
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	c := *g
	c.open = make([]bool, len(g.open))
	copy(c.open, g.open)
	return &c
}

// ToTile converts a pixel position to the tile containing it.
func (g *Grid) ToTile(p Vec2) Tile {
	return Tile{
		Col: int(math.Floor(p.X / float64(g.tileW))),
		Row: int(math.Floor(p.Y / float64(g.tileH))),
	}
}

// ToPixelCenter returns the pixel centre of a tile.
func (g *Grid) ToPixelCenter(t Tile) Vec2 {
	return Vec2{
		X: float64(t.Col*g.tileW + g.tileW/2),
		Y: float64(t.Row*g.tileH + g.tileH/2),
	}
}

func (g *Grid) index(t Tile) int { return t.Row*g.cols + t.Col }

func (g *Grid) tileAt(i int) Tile { return Tile{Col: i % g.cols, Row: i / g.cols} }
