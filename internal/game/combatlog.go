package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
)

const (
	logPanelWidth = 320
	logMaxEntries = 80
	logLineHeight = 14
)

// CombatEntry is a single line in the combat log.
type CombatEntry struct {
	Tick     int
	Label    string // "E12", "T3" or "--"
	Category string
	Message  string
}

// CombatLog is a ring buffer of session events rendered as a side panel.
// It implements sim.EventSink.
type CombatLog struct {
	entries []CombatEntry
	head    int
	count   int
}

// NewCombatLog creates a combat log with a fixed capacity.
func NewCombatLog() *CombatLog {
	return &CombatLog{
		entries: make([]CombatEntry, logMaxEntries),
	}
}

// Record keeps the events a player cares about and drops the chatter.
func (cl *CombatLog) Record(e sim.Event) {
	if e.Verbose {
		return
	}
	switch e.Category {
	case "effect", "status":
		return
	case "combat":
		if e.Key == "hit" || e.Key == "fire" {
			return
		}
	case "path":
		if e.Key == "recheck" || e.Key == "forced" {
			return
		}
	}
	msg := e.Key
	if e.Value != "" {
		msg = e.Key + ": " + e.Value
	}
	cl.Add(e.Tick, e.Actor, e.Category, msg)
}

// Add appends an entry to the log.
func (cl *CombatLog) Add(tick int, label, category, msg string) {
	cl.entries[cl.head] = CombatEntry{
		Tick:     tick,
		Label:    label,
		Category: category,
		Message:  msg,
	}
	cl.head = (cl.head + 1) % logMaxEntries
	if cl.count < logMaxEntries {
		cl.count++
	}
}

// Clear empties the log.
func (cl *CombatLog) Clear() {
	cl.head = 0
	cl.count = 0
}

// Recent returns entries in chronological order (oldest first).
func (cl *CombatLog) Recent() []CombatEntry {
	result := make([]CombatEntry, cl.count)
	for i := 0; i < cl.count; i++ {
		idx := (cl.head - cl.count + i + logMaxEntries) % logMaxEntries
		result[i] = cl.entries[idx]
	}
	return result
}

func categoryColor(cat string) color.RGBA {
	switch cat {
	case "combat":
		return color.RGBA{R: 210, G: 70, B: 70, A: 255}
	case "enemy", "path":
		return color.RGBA{R: 230, G: 170, B: 40, A: 255}
	case "economy":
		return color.RGBA{R: 230, G: 200, B: 60, A: 255}
	case "wave", "state":
		return color.RGBA{R: 70, G: 110, B: 210, A: 255}
	case "ability":
		return color.RGBA{R: 90, G: 200, B: 220, A: 255}
	case "tower":
		return color.RGBA{R: 150, G: 150, B: 150, A: 255}
	}
	return color.RGBA{R: 200, G: 200, B: 200, A: 255}
}

// Draw renders the log panel on the right side of the window.
func (cl *CombatLog) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 14, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 16, color.RGBA{R: 20, G: 24, B: 34, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "COMBAT LOG", panelX+8, 0)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+logPanelWidth), 16, 1.0, color.RGBA{R: 50, G: 60, B: 90, A: 200}, false)

	entries := cl.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / logLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}
	visible := entries[startIdx:]
	const recent = 3

	y := 20
	for i, e := range visible {
		if i >= len(visible)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 34, B: 46, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, categoryColor(e.Category), false)

		line := fmt.Sprintf("%5d [%s] %s", e.Tick, e.Label, e.Message)
		if limit := (logPanelWidth - 16) / 6; len(line) > limit {
			line = line[:limit]
		}
		ebitenutil.DebugPrintAt(screen, line, panelX+12, y)
		y += logLineHeight
	}
}
