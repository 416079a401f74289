package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
)

// Tower panel, rendered into panelBuf at 1x then blitted at hudScale.
const (
	panelBufW = 150
	panelBufH = 110
)

// towerPanelLines lists what the inspector shows for one tower.
func towerPanelLines(info sim.TowerInfo) []string {
	lines := []string{
		fmt.Sprintf("%s  L%d", info.Name, info.Level+1),
		fmt.Sprintf("dmg %d  rng %.0f", info.Damage, info.Range),
		fmt.Sprintf("rate %.2f/s", info.FireRate),
	}
	if info.UpgradeCost > 0 {
		lines = append(lines, fmt.Sprintf("upgrade $%d [U]", info.UpgradeCost))
	} else {
		lines = append(lines, "max level")
	}
	lines = append(lines, info.Ability)
	if info.Ready {
		lines = append(lines, "ability ready [A]")
	} else {
		lines = append(lines, fmt.Sprintf("ability in %.1fs", info.Cooldown))
	}
	status := info.Status
	if status == "malfunction" {
		status += fmt.Sprintf(" [R] $%d", sim.RepairCost)
	}
	return append(lines, status)
}

// drawTowerPanel shows the selected tower in the top-right corner of the board.
func (g *Game) drawTowerPanel(screen *ebiten.Image, snap sim.Snapshot) {
	if snap.State == sim.StateMenu {
		return
	}
	t, ok := snap.SelectedTower()
	if !ok {
		return
	}
	if g.panelBuf == nil {
		g.panelBuf = ebiten.NewImage(panelBufW, panelBufH)
	}
	lines := towerPanelLines(t.Info())

	g.panelBuf.Clear()
	h := float32(len(lines)*hudLineH + hudPadY*2)
	vector.FillRect(g.panelBuf, 0, 0, panelBufW, h, color.RGBA{R: 8, G: 10, B: 16, A: 220}, false)
	vector.StrokeRect(g.panelBuf, 0, 0, panelBufW, h, 1.0, t.DisplayColor(), false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(g.panelBuf, line, hudPadX, hudPadY+i*hudLineH)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(hudScale, hudScale)
	opts.GeoM.Translate(float64(g.offX+sim.ScreenWidth-panelBufW*hudScale-4), float64(g.offY+4))
	screen.DrawImage(g.panelBuf, opts)
}
