// Package game is the ebiten window front-end. It owns a sim.Session, feeds
// it a fixed step every tick and routes keyboard and mouse input to session
// commands.
package game

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/chancedonaho/TowerDefenseGame/internal/config"
	"github.com/chancedonaho/TowerDefenseGame/internal/logger"
	"github.com/chancedonaho/TowerDefenseGame/internal/metrics"
	"github.com/chancedonaho/TowerDefenseGame/internal/report"
	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
)

// borderWidth is the pixel gap between the window edge and the board.
const borderWidth = 12

// hudScale is the integer upscale factor applied to HUD text.
const hudScale = 2

// statusLifetime is how long a command message stays on screen, in seconds.
const statusLifetime = 2.5

var simSpeeds = []float64{0.5, 1, 2, 4}

type Game struct {
	cfg     config.GameConfig
	session *sim.Session
	events  *sim.SimLog
	log     *CombatLog
	metrics *metrics.Recorder

	width  int
	height int
	offX   int // board origin in window pixels
	offY   int

	difficulty sim.Difficulty
	buildType  sim.TowerType
	showHelp   bool

	prevKeys      map[ebiten.Key]bool
	prevMouseLeft bool

	// Simulation speed control.
	simSpeed  float64
	tickAccum float64
	dt        float64

	status      string
	statusTimer float64

	// Offscreen buffers, created on first Draw.
	hudBuf   *ebiten.Image
	panelBuf *ebiten.Image
}

// New creates a game sitting in the menu. Extra sinks (a sound manager, for
// instance) receive every session event.
func New(cfg config.GameConfig, sinks ...sim.EventSink) *Game {
	d, err := sim.ParseDifficulty(cfg.Difficulty)
	if err != nil {
		logger.Component("game").WithError(err).Warn("falling back to medium")
	}
	tps := cfg.TPS
	if tps <= 0 {
		tps = config.DefaultGame().TPS
	}

	g := &Game{
		cfg:        cfg,
		events:     sim.NewSimLog(false),
		log:        NewCombatLog(),
		metrics:    metrics.New(),
		width:      borderWidth + sim.ScreenWidth + borderWidth + logPanelWidth,
		height:     borderWidth + sim.ScreenHeight + borderWidth,
		offX:       borderWidth,
		offY:       borderWidth,
		difficulty: d,
		buildType:  sim.TowerTier1,
		showHelp:   true,
		prevKeys:   make(map[ebiten.Key]bool),
		simSpeed:   1.0,
		dt:         1.0 / float64(tps),
	}
	opts := []sim.Option{
		sim.WithMetrics(g.metrics),
		sim.WithEventSink(g.events),
		sim.WithEventSink(g.log),
	}
	for _, s := range sinks {
		opts = append(opts, sim.WithEventSink(s))
	}
	g.session = sim.NewSession(opts...)
	return g
}

// Session exposes the underlying session, mainly for tests.
func (g *Game) Session() *sim.Session { return g.session }

func (g *Game) Update() error {
	// Handle input every frame regardless of sim speed.
	g.handleInput()

	if g.statusTimer > 0 {
		g.statusTimer -= g.dt
	}
	if g.session.State() != sim.StatePlaying {
		return nil
	}

	// For speeds > 1 run multiple sim ticks per frame.
	// For speeds < 1 accumulate fractions.
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.session.Update(g.dt)
	}
	return nil
}

// action is one user intent, decoupled from the key that produced it.
type action int

const (
	actNone action = iota
	actStart
	actEasy
	actMedium
	actHard
	actBuildTier1
	actBuildTier2
	actBuildTier3
	actUpgrade
	actAbility
	actRepair
	actSkip
	actPause
	actSlower
	actFaster
	actMenu
	actRestart
	actCopyReport
	actToggleHelp
)

var keyActions = []struct {
	key ebiten.Key
	act action
}{
	{ebiten.KeyEnter, actStart},
	{ebiten.KeyE, actEasy},
	{ebiten.KeyM, actMedium},
	{ebiten.KeyH, actHard},
	{ebiten.Key1, actBuildTier1},
	{ebiten.Key2, actBuildTier2},
	{ebiten.Key3, actBuildTier3},
	{ebiten.KeyU, actUpgrade},
	{ebiten.KeyA, actAbility},
	{ebiten.KeyR, actRepair},
	{ebiten.KeySpace, actSkip},
	{ebiten.KeyS, actSkip},
	{ebiten.KeyP, actPause},
	{ebiten.KeyComma, actSlower},
	{ebiten.KeyPeriod, actFaster},
	{ebiten.KeyEscape, actMenu},
	{ebiten.KeyN, actRestart},
	{ebiten.KeyC, actCopyReport},
	{ebiten.KeyF1, actToggleHelp},
}

// handleInput turns edge-triggered keypresses and clicks into actions.
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	for _, ka := range keyActions {
		currentKeys[ka.key] = ebiten.IsKeyPressed(ka.key)
		if currentKeys[ka.key] && !g.prevKeys[ka.key] {
			g.do(ka.act)
		}
	}
	g.prevKeys = currentKeys

	// Left mouse click: select a tower or build on an empty tile.
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if !g.prevMouseLeft {
			mx, my := ebiten.CursorPosition()
			g.click(mx, my)
		}
	}
	g.prevMouseLeft = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}

// do applies one action. Actions that make no sense in the current state
// are ignored.
func (g *Game) do(a action) {
	state := g.session.State()
	if state == sim.StateMenu {
		switch a {
		case actEasy:
			g.difficulty = sim.Easy
		case actMedium:
			g.difficulty = sim.Medium
		case actHard:
			g.difficulty = sim.Hard
		case actStart:
			g.start()
		}
		return
	}

	sel := g.session.Selected()
	var err error
	switch a {
	case actBuildTier1:
		g.buildType = sim.TowerTier1
	case actBuildTier2:
		g.buildType = sim.TowerTier2
	case actBuildTier3:
		g.buildType = sim.TowerTier3
	case actUpgrade:
		err = g.session.UpgradeTower(sel)
	case actAbility:
		err = g.session.ActivateAbility(sel)
	case actRepair:
		err = g.session.RepairTower(sel)
	case actSkip:
		err = g.session.SkipWaveDelay()
	case actPause:
		err = g.session.TogglePause()
	case actSlower:
		g.simSpeed = stepSpeed(g.simSpeed, -1)
	case actFaster:
		g.simSpeed = stepSpeed(g.simSpeed, 1)
	case actMenu:
		g.session.ReturnToMenu()
	case actRestart:
		if state == sim.StateGameOver || state == sim.StateWin {
			g.start()
		}
	case actCopyReport:
		err = g.copyReport()
	case actToggleHelp:
		g.showHelp = !g.showHelp
	}
	if err != nil {
		g.setStatus(commandMessage(err))
	}
}

// click handles a left click at window coordinates.
func (g *Game) click(mx, my int) {
	if g.session.State() != sim.StatePlaying {
		return
	}
	bx, by := mx-g.offX, my-g.offY
	if bx < 0 || by < 0 || bx >= sim.ScreenWidth || by >= sim.ScreenHeight {
		return
	}
	p := sim.Vec2{X: float64(bx), Y: float64(by)}
	if g.session.SelectTowerAt(p) >= 0 {
		return
	}
	if _, err := g.session.PlaceTowerAt(g.buildType, p); err != nil {
		g.setStatus(commandMessage(err))
	}
}

func (g *Game) start() {
	g.events.Clear()
	g.log.Clear()
	g.session.Reset(g.difficulty)
	g.tickAccum = 0
	g.status = ""
}

func (g *Game) copyReport() error {
	text := report.Summarize(g.session.Snapshot(), g.events).Format()
	if err := clipboard.WriteAll(text); err != nil {
		logger.Component("game").WithError(err).Warn("clipboard unavailable")
		return err
	}
	g.setStatus("report copied to clipboard")
	return nil
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusTimer = statusLifetime
}

// commandMessage turns a rejected command into a short player-facing line.
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

// stepSpeed moves one notch through simSpeeds in direction dir.
func stepSpeed(cur float64, dir int) float64 {
	idx := 0
	for i, s := range simSpeeds {
		if s <= cur {
			idx = i
		}
	}
	idx += dir
	if idx < 0 {
		idx = 0
	}
	if idx >= len(simSpeeds) {
		idx = len(simSpeeds) - 1
	}
	return simSpeeds[idx]
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// WindowSize is the unscaled window size in pixels.
func (g *Game) WindowSize() (int, int) {
	return g.width, g.height
}
