package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
)

var (
	colBackground  = color.RGBA{R: 12, G: 14, B: 12, A: 255}
	colGround      = color.RGBA{R: 36, G: 44, B: 36, A: 255}
	colGridLine    = color.RGBA{R: 58, G: 70, B: 58, A: 255}
	colObstacle    = color.RGBA{R: 92, G: 82, B: 70, A: 255}
	colObstacleTop = color.RGBA{R: 110, G: 98, B: 84, A: 255}
	colDestination = color.RGBA{R: 0, G: 140, B: 60, A: 200}
	colSpawn       = color.RGBA{R: 140, G: 40, B: 40, A: 160}
	colRoute       = color.RGBA{R: 200, G: 200, B: 120, A: 60}
	colHPBack      = color.RGBA{R: 120, A: 255}
	colHPFront     = color.RGBA{G: 200, A: 255}
	colBorder      = color.RGBA{R: 65, G: 80, B: 90, A: 255}
)

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)

	snap := g.session.Snapshot()
	ox, oy := float32(g.offX), float32(g.offY)

	g.drawBoard(screen, snap, ox, oy)
	if snap.State != sim.StateMenu {
		g.drawTowers(screen, snap, ox, oy)
		g.drawEnemies(screen, snap, ox, oy)
		g.drawShots(screen, snap, ox, oy)
		g.drawHoverTile(screen, snap, ox, oy)
	}

	vector.StrokeRect(screen, ox-1, oy-1, sim.ScreenWidth+2, sim.ScreenHeight+2, 2.0, colBorder, false)

	logX := g.offX + sim.ScreenWidth + g.offX
	g.log.Draw(screen, logX, g.height)

	g.drawHUD(screen, snap)
	g.drawTowerPanel(screen, snap)
	g.drawOverlay(screen, snap)
}

func (g *Game) drawBoard(screen *ebiten.Image, snap sim.Snapshot, ox, oy float32) {
	vector.FillRect(screen, ox, oy, sim.ScreenWidth, sim.ScreenHeight, colGround, false)

	grid := snap.Grid
	tw, th := float32(grid.TileWidth()), float32(grid.TileHeight())
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Cols(); col++ {
			if grid.IsPassable(col, row) || towerOn(snap, col, row) {
				continue
			}
			x, y := ox+float32(col)*tw, oy+float32(row)*th
			vector.FillRect(screen, x, y, tw, th, colObstacle, false)
			vector.FillRect(screen, x+4, y+4, tw-8, th-8, colObstacleTop, false)
		}
	}

	d := snap.Destination
	vector.FillRect(screen, ox+float32(d.Col)*tw, oy+float32(d.Row)*th, tw, th, colDestination, false)
	st := grid.ToTile(snap.Spawn)
	vector.FillRect(screen, ox+float32(st.Col)*tw, oy+float32(st.Row)*th, tw, th, colSpawn, false)

	for col := 0; col <= grid.Cols(); col++ {
		x := ox + float32(col)*tw
		vector.StrokeLine(screen, x, oy, x, oy+float32(grid.Rows())*th, 1.0, colGridLine, false)
	}
	for row := 0; row <= grid.Rows(); row++ {
		y := oy + float32(row)*th
		vector.StrokeLine(screen, ox, y, ox+float32(grid.Cols())*tw, y, 1.0, colGridLine, false)
	}
}

func (g *Game) drawTowers(screen *ebiten.Image, snap sim.Snapshot, ox, oy float32) {
	for i := range snap.Towers {
		t := &snap.Towers[i]
		x, y := ox+float32(t.Pos.X), oy+float32(t.Pos.Y)

		if i == snap.Selected {
			vector.StrokeCircle(screen, x, y, float32(t.Range), 1.0, color.RGBA{R: 255, G: 255, B: 255, A: 90}, true)
			vector.StrokeRect(screen, x-23, y-23, 46, 46, 2.0, sim.ColorWhite, false)
		}
		if t.AbilityActive {
			vector.StrokeCircle(screen, x, y, 26, 3.0, color.RGBA{R: 90, G: 200, B: 220, A: 200}, true)
		}
		if t.PowerShot {
			vector.StrokeCircle(screen, x, y, 26, 3.0, sim.ColorOrange, true)
		}

		vector.FillRect(screen, x-20, y-20, 40, 40, t.DisplayColor(), false)
		vector.StrokeRect(screen, x-20, y-20, 40, 40, 1.0, color.RGBA{A: 200}, false)
		// Level pips.
		for l := 0; l < t.Level; l++ {
			vector.FillCircle(screen, x-12+float32(l)*8, y-14, 3, sim.ColorGold, true)
		}
		if t.Malfunctioning {
			vector.StrokeLine(screen, x-12, y-12, x+12, y+12, 3.0, sim.ColorRed, false)
			vector.StrokeLine(screen, x+12, y-12, x-12, y+12, 3.0, sim.ColorRed, false)
		}
	}
}

func (g *Game) drawEnemies(screen *ebiten.Image, snap sim.Snapshot, ox, oy float32) {
	grid := snap.Grid
	for i := range snap.Enemies {
		e := &snap.Enemies[i]
		if !e.Active {
			continue
		}
		x, y := ox+float32(e.Pos.X), oy+float32(e.Pos.Y)

		// Remaining route, faint.
		if e.PathIndex < len(e.Path) {
			px, py := x, y
			for _, t := range e.Path[e.PathIndex:] {
				c := grid.ToPixelCenter(t)
				nx, ny := ox+float32(c.X), oy+float32(c.Y)
				vector.StrokeLine(screen, px, py, nx, ny, 1.0, colRoute, false)
				px, py = nx, ny
			}
		}

		vector.FillCircle(screen, x, y, 15, e.Color, true)
		if e.Slowed {
			vector.StrokeCircle(screen, x, y, 17, 2.0, sim.ColorSkyBlue, true)
		}
		if e.DOT {
			vector.StrokeCircle(screen, x, y, 19, 2.0, sim.ColorOrange, true)
		}

		vector.FillRect(screen, x-15, y-24, 30, 4, colHPBack, false)
		vector.FillRect(screen, x-15, y-24, 30*float32(e.HPFraction()), 4, colHPFront, false)
	}
}

func (g *Game) drawShots(screen *ebiten.Image, snap sim.Snapshot, ox, oy float32) {
	for _, p := range snap.Projectiles {
		if !p.Active {
			continue
		}
		if p.Kind == sim.ProjectileArea {
			vector.FillCircle(screen, ox+float32(p.Pos.X), oy+float32(p.Pos.Y), 6, sim.ColorOrange, true)
			continue
		}
		vector.FillCircle(screen, ox+float32(p.Pos.X), oy+float32(p.Pos.Y), 4, sim.ColorWhite, true)
	}
	for _, b := range snap.Beams {
		if !b.Active {
			continue
		}
		vector.StrokeLine(screen, ox+float32(b.From.X), oy+float32(b.From.Y), ox+float32(b.To.X), oy+float32(b.To.Y),
			float32(b.Width), b.Color, true)
	}
	for i := range snap.Effects {
		v := &snap.Effects[i]
		if !v.Active {
			continue
		}
		c := v.Color
		c.R = uint8(float64(c.R) * v.Alpha())
		c.G = uint8(float64(c.G) * v.Alpha())
		c.B = uint8(float64(c.B) * v.Alpha())
		c.A = uint8(float64(c.A) * v.Alpha())
		x, y := ox+float32(v.Pos.X), oy+float32(v.Pos.Y)
		if v.Kind == sim.EffectExplosion {
			vector.StrokeCircle(screen, x, y, float32(v.Radius), 3.0, c, true)
			continue
		}
		vector.FillCircle(screen, x, y, float32(v.Radius)*float32(v.Alpha()), c, true)
	}
}

// drawHoverTile outlines the tile under the cursor, red when unbuildable.
func (g *Game) drawHoverTile(screen *ebiten.Image, snap sim.Snapshot, ox, oy float32) {
	if snap.State != sim.StatePlaying {
		return
	}
	mx, my := ebiten.CursorPosition()
	p := sim.Vec2{X: float64(mx - g.offX), Y: float64(my - g.offY)}
	t := snap.Grid.ToTile(p)
	if !snap.Grid.InBounds(t.Col, t.Row) {
		return
	}
	col := color.RGBA{R: 255, G: 255, B: 255, A: 120}
	if !snap.Grid.IsPassable(t.Col, t.Row) || snap.Money < sim.TowerCost(g.buildType) {
		col = color.RGBA{R: 255, G: 60, B: 60, A: 140}
	}
	tw, th := float32(snap.Grid.TileWidth()), float32(snap.Grid.TileHeight())
	vector.StrokeRect(screen, ox+float32(t.Col)*tw+1, oy+float32(t.Row)*th+1, tw-2, th-2, 2.0, col, false)
}

func towerOn(snap sim.Snapshot, col, row int) bool {
	for _, t := range snap.Towers {
		if t.Tile.Col == col && t.Tile.Row == row {
			return true
		}
	}
	return false
}
