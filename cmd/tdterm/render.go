package main

import (
	"fmt"
	"image/color"

	"github.com/gdamore/tcell/v2"

	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
)

var (
	styleDefault  = tcell.StyleDefault
	styleFrame    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGround   = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown)
	styleDest     = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleSpawn    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleCursor   = tcell.StyleDefault.Reverse(true)
	styleShot     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleTitle    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorOrange)
)

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (t *term) draw() {
	t.screen.Clear()
	snap := t.session.Snapshot()
	t.drawFrame()
	t.drawBoard(snap)
	t.drawSidebar(snap)
	t.screen.Show()
}

func (t *term) drawFrame() {
	w, h := sim.GridCols*cellW, sim.GridRows*cellH
	for x := 0; x <= w+1; x++ {
		t.screen.SetContent(x, 0, '─', nil, styleFrame)
		t.screen.SetContent(x, h+1, '─', nil, styleFrame)
	}
	for y := 0; y <= h+1; y++ {
		t.screen.SetContent(0, y, '│', nil, styleFrame)
		t.screen.SetContent(w+1, y, '│', nil, styleFrame)
	}
	t.screen.SetContent(0, 0, '┌', nil, styleFrame)
	t.screen.SetContent(w+1, 0, '┐', nil, styleFrame)
	t.screen.SetContent(0, h+1, '└', nil, styleFrame)
	t.screen.SetContent(w+1, h+1, '┘', nil, styleFrame)
}

// fillTile paints every cell of a tile with r.
func (t *term) fillTile(tile sim.Tile, r rune, st tcell.Style) {
	for dy := 0; dy < cellH; dy++ {
		for dx := 0; dx < cellW; dx++ {
			t.screen.SetContent(boardX+tile.Col*cellW+dx, boardY+tile.Row*cellH+dy, r, nil, st)
		}
	}
}

// pixelToCell maps a board pixel position to a terminal cell.
func pixelToCell(p sim.Vec2) (int, int) {
	x := boardX + int(p.X*cellW/sim.TileWidth)
	y := boardY + int(p.Y*cellH/sim.TileHeight)
	return x, y
}

func (t *term) drawBoard(snap sim.Snapshot) {
	grid := snap.Grid
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Cols(); col++ {
			tile := sim.Tile{Col: col, Row: row}
			if grid.IsPassable(col, row) {
				t.fillTile(tile, '·', styleGround)
			} else {
				t.fillTile(tile, '▓', styleObstacle)
			}
		}
	}
	t.fillTile(snap.Destination, '█', styleDest)
	t.fillTile(grid.ToTile(snap.Spawn), '░', styleSpawn)

	if snap.State == sim.StateMenu {
		return
	}

	for i, tw := range snap.Towers {
		st := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(rgb(tw.DisplayColor()))
		if i == snap.Selected {
			st = st.Bold(true).Underline(true)
		}
		label := fmt.Sprintf("T%d%d", int(tw.Type)+1, tw.Level+1)
		if tw.AbilityActive || tw.PowerShot {
			label += "!"
		}
		t.fillTile(tw.Tile, ' ', st)
		t.putString(boardX+tw.Tile.Col*cellW, boardY+tw.Tile.Row*cellH, label, st)
	}

	for _, p := range snap.Projectiles {
		if p.Active {
			x, y := pixelToCell(p.Pos)
			t.screen.SetContent(x, y, '*', nil, styleShot)
		}
	}

	for _, e := range snap.Enemies {
		if !e.Active {
			continue
		}
		x, y := pixelToCell(e.Pos)
		st := tcell.StyleDefault.Foreground(rgb(e.Color)).Bold(true)
		if e.Slowed {
			st = st.Background(tcell.ColorNavy)
		}
		r := 'o'
		if e.HPFraction() > 0.5 {
			r = 'O'
		}
		t.screen.SetContent(x, y, r, nil, st)
	}

	if snap.State == sim.StatePlaying || snap.State == sim.StatePaused {
		x, y := boardX+t.cursor.Col*cellW, boardY+t.cursor.Row*cellH
		mainc, _, st, _ := t.screen.GetContent(x, y)
		t.screen.SetContent(x, y, mainc, nil, st.Reverse(true))
		t.screen.SetContent(x+cellW-1, y+cellH-1, '┘', nil, styleCursor)
	}
}

func (t *term) putString(x, y int, s string, st tcell.Style) {
	for i, r := range []rune(s) {
		t.screen.SetContent(x+i, y, r, nil, st)
	}
}

// sidebarLines is the text shown right of the board.
func (t *term) sidebarLines(snap sim.Snapshot) []string {
	if snap.State == sim.StateMenu {
		return []string{
			"TOWER DEFENSE",
			"",
			fmt.Sprintf("difficulty: %s", t.difficulty),
			"e/m/h  pick difficulty",
			"enter  start",
			"q      quit",
		}
	}
	wave := min(snap.WaveIndex+1, snap.WaveCount)
	lines := []string{
		fmt.Sprintf("%s  %s", snap.Difficulty, snap.State),
		fmt.Sprintf("money   $%d", snap.Money),
		fmt.Sprintf("wave    %d/%d", wave, snap.WaveCount),
		fmt.Sprintf("escaped %d/%d", snap.Escaped, sim.MaxEscaped),
		fmt.Sprintf("kills   %d", snap.Kills),
		fmt.Sprintf("build   %s ($%d)", t.buildType, sim.TowerCost(t.buildType)),
	}
	switch {
	case snap.InWave:
		lines = append(lines, fmt.Sprintf("enemies %d left", snap.EnemiesRemaining()))
	case snap.WaveIndex < snap.WaveCount:
		next := fmt.Sprintf("next in %.1fs", snap.WaveDelay)
		if snap.SkipAvailable() {
			next += " (s skips)"
		}
		lines = append(lines, next)
	}
	if tw, ok := snap.SelectedTower(); ok {
		info := tw.Info()
		lines = append(lines, "",
			fmt.Sprintf("%s L%d  %s", info.Name, info.Level+1, info.Status),
			fmt.Sprintf("dmg %d rng %.0f rate %.2f", info.Damage, info.Range, info.FireRate),
		)
		if info.UpgradeCost > 0 {
			lines = append(lines, fmt.Sprintf("u upgrade $%d", info.UpgradeCost))
		}
		if info.Ready {
			lines = append(lines, "a "+info.Ability)
		} else {
			lines = append(lines, fmt.Sprintf("ability in %.1fs", info.Cooldown))
		}
	}
	switch snap.State {
	case sim.StateGameOver:
		lines = append(lines, "", "GAME OVER  n=new  esc=menu")
	case sim.StateWin:
		lines = append(lines, "", "VICTORY  n=new  esc=menu")
	}
	lines = append(lines, "", "arrows/click  enter=build", "1/2/3 u a r s p  q=quit", "")
	return append(lines, t.feed.lines...)
}

func (t *term) drawSidebar(snap sim.Snapshot) {
	x := boardX + sim.GridCols*cellW + 3
	y := 0
	for i, line := range t.sidebarLines(snap) {
		st := styleDefault
		if i == 0 {
			st = styleTitle
		}
		t.putString(x, y, line, st)
		y++
	}
	if t.statusTimer > 0 && t.status != "" {
		t.putString(x, y+1, "> "+t.status, styleStatus)
	}
}
