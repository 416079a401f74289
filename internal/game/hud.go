package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
)

// Debug font metrics at 1x.
const (
	hudLineH = 12
	hudCharW = 6
	hudPadX  = 5
	hudPadY  = 4
)

var titleFace = text.NewGoXFace(basicfont.Face7x13)

var helpLines = []string{
	"click=build/select  1/2/3=tower type",
	"U=upgrade  A=ability  R=repair",
	"SPACE=skip delay  P=pause  ,/.=speed",
	"ESC=menu  C=copy report  F1=help",
}

// hudLines builds the status box contents.
func (g *Game) hudLines(snap sim.Snapshot) []string {
	wave := snap.WaveIndex + 1
	if wave > snap.WaveCount {
		wave = snap.WaveCount
	}
	lines := []string{
		fmt.Sprintf("$%d  wave %d/%d  escaped %d/%d", snap.Money, wave, snap.WaveCount, snap.Escaped, sim.MaxEscaped),
		fmt.Sprintf("%s  %s  sim %s", snap.Difficulty, snap.State, speedLabel(g.simSpeed)),
		fmt.Sprintf("build: %s ($%d)", g.buildType, sim.TowerCost(g.buildType)),
	}
	switch {
	case snap.InWave:
		lines = append(lines, fmt.Sprintf("enemies left: %d", snap.EnemiesRemaining()))
	case snap.WaveIndex < snap.WaveCount:
		next := fmt.Sprintf("next wave in %.1fs", snap.WaveDelay)
		if snap.SkipAvailable() {
			next += "  [SPACE] skip"
		}
		lines = append(lines, next)
	}
	if g.statusTimer > 0 && g.status != "" {
		lines = append(lines, "> "+g.status)
	}
	if g.showHelp {
		lines = append(lines, helpLines...)
	}
	return lines
}

func speedLabel(s float64) string {
	if s == float64(int(s)) {
		return fmt.Sprintf("%dx", int(s))
	}
	return fmt.Sprintf("%.1fx", s)
}

// drawHUD renders the status box in the bottom-left corner of the board.
// Text is drawn into hudBuf at 1x then composited at hudScale.
func (g *Game) drawHUD(screen *ebiten.Image, snap sim.Snapshot) {
	if snap.State == sim.StateMenu {
		return
	}
	if g.hudBuf == nil {
		g.hudBuf = ebiten.NewImage(g.width/hudScale, g.height/hudScale)
	}
	lines := g.hudLines(snap)

	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*hudCharW + hudPadX*2)
	boxH := float32(len(lines)*hudLineH + hudPadY*2)
	bx := float32(g.offX/hudScale + 2)
	by := float32((g.offY+sim.ScreenHeight)/hudScale) - boxH - 2

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 200}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(g.hudBuf, line, int(bx)+hudPadX, int(by)+hudPadY+i*hudLineH)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(hudScale, hudScale)
	screen.DrawImage(g.hudBuf, opts)
}

// drawOverlay dims the board for the menu, pause and end screens.
func (g *Game) drawOverlay(screen *ebiten.Image, snap sim.Snapshot) {
	var title string
	var sub []string
	switch snap.State {
	case sim.StateMenu:
		title = "TOWER DEFENSE"
		sub = []string{
			fmt.Sprintf("difficulty: %s", g.difficulty),
			"E=easy  M=medium  H=hard",
			"ENTER to start",
		}
	case sim.StatePaused:
		title = "PAUSED"
		sub = []string{"P to resume"}
	case sim.StateGameOver:
		title = "GAME OVER"
		sub = []string{fmt.Sprintf("kills %d  waves %d/%d", snap.Kills, snap.WaveIndex, snap.WaveCount), "N=new game  ESC=menu  C=copy report"}
	case sim.StateWin:
		title = "VICTORY"
		sub = []string{fmt.Sprintf("kills %d  money $%d", snap.Kills, snap.Money), "N=new game  ESC=menu  C=copy report"}
	default:
		return
	}

	ox, oy := float32(g.offX), float32(g.offY)
	vector.FillRect(screen, ox, oy, sim.ScreenWidth, sim.ScreenHeight, color.RGBA{A: 150}, false)

	cx := float64(g.offX + sim.ScreenWidth/2)
	cy := float64(g.offY + sim.ScreenHeight/2)
	drawCentered(screen, title, cx, cy-60, 3, color.White)
	for i, s := range sub {
		drawCentered(screen, s, cx, cy+float64(i)*28, 2, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	}
}

// drawCentered draws s centred on (cx, cy) at the given scale.
func drawCentered(screen *ebiten.Image, s string, cx, cy, scale float64, clr color.Color) {
	w, h := text.Measure(s, titleFace, 0)
	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(cx-w*scale/2, cy-h*scale/2)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, s, titleFace, op)
}
