package report

import (
	"image"
	"image/color"

	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
	"github.com/fogleman/gg"
)

var (
	boardBackground = color.RGBA{34, 40, 34, 255}
	gridLine        = color.RGBA{60, 70, 60, 255}
	obstacleFill    = color.RGBA{90, 80, 70, 255}
	destinationFill = color.RGBA{0, 140, 60, 200}
	pathLine        = color.RGBA{200, 200, 120, 140}
	hpBack          = color.RGBA{120, 0, 0, 255}
	hpFront         = color.RGBA{0, 200, 0, 255}
)

// RenderBoard draws the snapshot at native board resolution.
func RenderBoard(snap sim.Snapshot) image.Image {
	return drawBoard(snap).Image()
}

// SavePNG renders the snapshot and writes it to path.
func SavePNG(snap sim.Snapshot, path string) error {
	return drawBoard(snap).SavePNG(path)
}

func drawBoard(snap sim.Snapshot) *gg.Context {
	dc := gg.NewContext(sim.ScreenWidth, sim.ScreenHeight)
	dc.SetColor(boardBackground)
	dc.DrawRectangle(0, 0, sim.ScreenWidth, sim.ScreenHeight)
	dc.Fill()

	if g := snap.Grid; g != nil {
		tw, th := float64(g.TileWidth()), float64(g.TileHeight())
		for row := 0; row < g.Rows(); row++ {
			for col := 0; col < g.Cols(); col++ {
				if g.IsPassable(col, row) || hasTowerAt(snap, col, row) {
					continue
				}
				dc.SetColor(obstacleFill)
				dc.DrawRectangle(float64(col)*tw, float64(row)*th, tw, th)
				dc.Fill()
			}
		}
		dc.SetColor(destinationFill)
		dc.DrawRectangle(float64(snap.Destination.Col)*tw, float64(snap.Destination.Row)*th, tw, th)
		dc.Fill()

		dc.SetColor(gridLine)
		dc.SetLineWidth(1)
		for col := 0; col <= g.Cols(); col++ {
			dc.DrawLine(float64(col)*tw, 0, float64(col)*tw, float64(g.Rows())*th)
			dc.Stroke()
		}
		for row := 0; row <= g.Rows(); row++ {
			dc.DrawLine(0, float64(row)*th, float64(g.Cols())*tw, float64(row)*th)
			dc.Stroke()
		}

		dc.SetColor(pathLine)
		dc.SetLineWidth(2)
		for _, e := range snap.Enemies {
			if e.PathIndex >= len(e.Path) {
				continue
			}
			dc.MoveTo(e.Pos.X, e.Pos.Y)
			for _, t := range e.Path[e.PathIndex:] {
				p := g.ToPixelCenter(t)
				dc.LineTo(p.X, p.Y)
			}
			dc.Stroke()
		}
	}

	for _, t := range snap.Towers {
		dc.SetColor(t.DisplayColor())
		dc.DrawRectangle(t.Pos.X-20, t.Pos.Y-20, 40, 40)
		dc.Fill()
		for l := 0; l < t.Level; l++ {
			dc.SetColor(sim.ColorGold)
			dc.DrawCircle(t.Pos.X-12+float64(l)*8, t.Pos.Y-26, 3)
			dc.Fill()
		}
	}
	if sel, ok := snap.SelectedTower(); ok {
		dc.SetColor(color.RGBA{255, 255, 255, 90})
		dc.SetLineWidth(1)
		dc.DrawCircle(sel.Pos.X, sel.Pos.Y, sel.Range)
		dc.Stroke()
	}

	for _, e := range snap.Enemies {
		if !e.Active {
			continue
		}
		dc.SetColor(e.Color)
		dc.DrawCircle(e.Pos.X, e.Pos.Y, 15)
		dc.Fill()
		dc.SetColor(hpBack)
		dc.DrawRectangle(e.Pos.X-15, e.Pos.Y-22, 30, 4)
		dc.Fill()
		dc.SetColor(hpFront)
		dc.DrawRectangle(e.Pos.X-15, e.Pos.Y-22, 30*e.HPFraction(), 4)
		dc.Fill()
	}

	for _, p := range snap.Projectiles {
		if !p.Active {
			continue
		}
		dc.SetColor(sim.ColorWhite)
		r := 4.0
		if p.Kind == sim.ProjectileArea {
			dc.SetColor(sim.ColorOrange)
			r = 6
		}
		dc.DrawCircle(p.Pos.X, p.Pos.Y, r)
		dc.Fill()
	}
	for _, b := range snap.Beams {
		if !b.Active {
			continue
		}
		dc.SetColor(b.Color)
		dc.SetLineWidth(b.Width)
		dc.DrawLine(b.From.X, b.From.Y, b.To.X, b.To.Y)
		dc.Stroke()
	}
	for _, v := range snap.Effects {
		if !v.Active {
			continue
		}
		c := v.Color
		c.A = uint8(float64(c.A) * v.Alpha())
		dc.SetColor(c)
		dc.DrawCircle(v.Pos.X, v.Pos.Y, v.Radius)
		dc.Fill()
	}
	return dc
}

func hasTowerAt(snap sim.Snapshot, col, row int) bool {
	for _, t := range snap.Towers {
		if t.Tile.Col == col && t.Tile.Row == row {
			return true
		}
	}
	return false
}
