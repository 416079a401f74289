package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/chancedonaho/TowerDefenseGame/internal/config"
	"github.com/chancedonaho/TowerDefenseGame/internal/logger"
	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
)

// Each board tile is drawn as cellW x cellH terminal cells.
const (
	cellW = 4
	cellH = 2

	boardX = 1 // board origin inside the frame
	boardY = 1

	feedSize       = 12
	statusLifetime = 2.5
)

// term is the terminal front-end. The run loop goroutine owns the session;
// the poll goroutine only forwards events.
type term struct {
	screen  tcell.Screen
	session *sim.Session
	feed    *feed
	dt      float64

	difficulty sim.Difficulty
	buildType  sim.TowerType
	cursor     sim.Tile

	status      string
	statusTimer float64
}

func newTerm(screen tcell.Screen, cfg config.GameConfig, sinks ...sim.EventSink) *term {
	d, err := sim.ParseDifficulty(cfg.Difficulty)
	if err != nil {
		logger.Component("tdterm").WithError(err).Warn("falling back to medium")
	}
	tps := cfg.TPS
	if tps <= 0 {
		tps = config.DefaultGame().TPS
	}
	t := &term{
		screen:     screen,
		feed:       newFeed(feedSize),
		dt:         1.0 / float64(tps),
		difficulty: d,
		buildType:  sim.TowerTier1,
		cursor:     sim.Tile{Col: sim.GridCols / 2, Row: sim.GridRows / 2},
	}
	opts := []sim.Option{sim.WithEventSink(t.feed)}
	for _, s := range sinks {
		opts = append(opts, sim.WithEventSink(s))
	}
	t.session = sim.NewSession(opts...)
	return t
}

func (t *term) run() {
	t.screen.EnableMouse()
	ticker := time.NewTicker(time.Duration(t.dt * float64(time.Second)))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !t.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			t.step()
			t.draw()
		}
	}
}

// step advances the clock and the session by one tick.
func (t *term) step() {
	if t.statusTimer > 0 {
		t.statusTimer -= t.dt
	}
	t.session.Update(t.dt)
}

// handleEvent applies one terminal event. It returns false to quit.
func (t *term) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return t.handleKey(ev)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			if tile, ok := cellToTile(x, y); ok {
				t.cursor = tile
				t.buildOrSelect()
			}
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

func (t *term) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		t.moveCursor(0, -1)
	case tcell.KeyDown:
		t.moveCursor(0, 1)
	case tcell.KeyLeft:
		t.moveCursor(-1, 0)
	case tcell.KeyRight:
		t.moveCursor(1, 0)
	case tcell.KeyEnter:
		if t.session.State() == sim.StateMenu {
			t.start()
		} else {
			t.buildOrSelect()
		}
	case tcell.KeyEscape:
		if t.session.State() != sim.StateMenu {
			t.session.ReturnToMenu()
		}
	case tcell.KeyRune:
		return t.handleRune(ev.Rune())
	}
	return true
}

func (t *term) handleRune(r rune) bool {
	if r == 'q' {
		return false
	}
	state := t.session.State()
	if state == sim.StateMenu {
		switch r {
		case 'e':
			t.difficulty = sim.Easy
		case 'm':
			t.difficulty = sim.Medium
		case 'h':
			t.difficulty = sim.Hard
		}
		return true
	}

	sel := t.session.Selected()
	var err error
	switch r {
	case '1':
		t.buildType = sim.TowerTier1
	case '2':
		t.buildType = sim.TowerTier2
	case '3':
		t.buildType = sim.TowerTier3
	case 'u':
		err = t.session.UpgradeTower(sel)
	case 'a':
		err = t.session.ActivateAbility(sel)
	case 'r':
		err = t.session.RepairTower(sel)
	case 's', ' ':
		err = t.session.SkipWaveDelay()
	case 'p':
		err = t.session.TogglePause()
	case 'n':
		if state == sim.StateGameOver || state == sim.StateWin {
			t.start()
		}
	}
	if err != nil {
		t.setStatus(commandMessage(err))
	}
	return true
}

func (t *term) moveCursor(dc, dr int) {
	c, r := t.cursor.Col+dc, t.cursor.Row+dr
	if c >= 0 && c < sim.GridCols && r >= 0 && r < sim.GridRows {
		t.cursor = sim.Tile{Col: c, Row: r}
	}
}

// buildOrSelect selects the tower under the cursor, or builds there.
func (t *term) buildOrSelect() {
	if t.session.State() != sim.StatePlaying {
		return
	}
	p := t.session.Grid().ToPixelCenter(t.cursor)
	if t.session.SelectTowerAt(p) >= 0 {
		return
	}
	if _, err := t.session.PlaceTower(t.buildType, t.cursor); err != nil {
		t.setStatus(commandMessage(err))
	}
}

func (t *term) start() {
	t.feed.clear()
	t.session.Reset(t.difficulty)
	t.status = ""
}

func (t *term) setStatus(msg string) {
	t.status = msg
	t.statusTimer = statusLifetime
}

// cellToTile maps a terminal cell to the board tile drawn there.
func cellToTile(x, y int) (sim.Tile, bool) {
	bx, by := x-boardX, y-boardY
	if bx < 0 || by < 0 || bx >= sim.GridCols*cellW || by >= sim.GridRows*cellH {
		return sim.Tile{}, false
	}
	return sim.Tile{Col: bx / cellW, Row: by / cellH}, true
}

func commandMessage(err error) string {
	switch {
	case errors.Is(err, sim.ErrInsufficientFunds):
		return "not enough money"
	case errors.Is(err, sim.ErrTileBlocked):
		return "can't build there"
	case errors.Is(err, sim.ErrNoSuchTower):
		return "select a tower first"
	case errors.Is(err, sim.ErrMaxLevel):
		return "tower is at max level"
	case errors.Is(err, sim.ErrAbilityUnavailable):
		return "ability not ready"
	case errors.Is(err, sim.ErrNotMalfunctioning):
		return "tower doesn't need repair"
	case errors.Is(err, sim.ErrSkipUnavailable):
		return "nothing to skip"
	case errors.Is(err, sim.ErrNotPlaying):
		return "game is paused"
	}
	return fmt.Sprintf("error: %v", err)
}

// feed keeps the last few headline events for the sidebar.
type feed struct {
	lines []string
	size  int
}

func newFeed(size int) *feed {
	return &feed{size: size}
}

// Record implements sim.EventSink.
func (f *feed) Record(e sim.Event) {
	if e.Verbose {
		return
	}
	switch e.Category {
	case "wave", "state", "economy", "ability", "tower":
	case "combat":
		if e.Key != "kill" {
			return
		}
	case "enemy", "path":
		if e.Key != "escape" && e.Key != "blocked" {
			return
		}
	default:
		return
	}
	line := fmt.Sprintf("%-3s %s %s", e.Actor, e.Key, e.Value)
	f.lines = append(f.lines, line)
	if len(f.lines) > f.size {
		f.lines = f.lines[len(f.lines)-f.size:]
	}
}

func (f *feed) clear() { f.lines = nil }
