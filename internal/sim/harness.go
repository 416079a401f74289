package sim

import (
	"github.com/chancedonaho/TowerDefenseGame/internal/metrics"
)

// Harness drives a Session headlessly at a fixed step. It backs the
// package tests and cmd/headless-report.
type Harness struct {
	Session *Session
	Log     *SimLog
	Metrics *metrics.Recorder
	DT      float64

	difficulty Difficulty
	waves      []Wave
}

// harnessOptionKind controls the pass in which an option is applied.
type harnessOptionKind int

const (
	harnessOptInfra harnessOptionKind = iota // difficulty, waves, step, log; before the session exists
	harnessOptBoard                          // obstacles and money, after Reset
	harnessOptTower                          // towers, after the board is final
	harnessOptEnemy                          // enemies last, so routes avoid towers
)

// HarnessOption is a builder applied to a Harness during construction.
type HarnessOption struct {
	kind harnessOptionKind
	fn   func(*Harness)
}

// WithDifficulty selects the difficulty profile.
func WithDifficulty(d Difficulty) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.difficulty = d }}
}

// WithVerbose keeps per-tick movement events in the log.
func WithVerbose(v bool) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.Log = NewSimLog(v) }}
}

// WithStep sets the fixed dt in seconds.
func WithStep(dt float64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.DT = dt }}
}

// WithCampaign replaces the wave list.
func WithCampaign(waves ...Wave) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.waves = waves }}
}

// WithoutWaves disables the wave controller so only explicit enemies exist.
func WithoutWaves() HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.waves = []Wave{} }}
}

// WithMoney overrides the starting money.
func WithMoney(m int) HarnessOption {
	return HarnessOption{harnessOptBoard, func(h *Harness) {
		h.Session.money = m
		h.Session.metrics.SetMoney(m)
	}}
}

// WithObstacle blocks a tile as if it were a permanent obstacle.
func WithObstacle(col, row int) HarnessOption {
	return HarnessOption{harnessOptBoard, func(h *Harness) {
		h.Session.grid.SetOccupied(col, row)
	}}
}

// WithTower places a tower free of charge.
func WithTower(t TowerType, col, row int) HarnessOption {
	return HarnessOption{harnessOptTower, func(h *Harness) {
		h.Session.money += TowerCost(t)
		if _, err := h.Session.PlaceTower(t, Tile{col, row}); err != nil {
			h.Session.money -= TowerCost(t)
		}
	}}
}

// WithEnemy spawns an enemy at the centre of a tile.
func WithEnemy(t EnemyType, col, row int) HarnessOption {
	return HarnessOption{harnessOptEnemy, func(h *Harness) {
		h.Session.spawnEnemy(t, h.Session.grid.ToPixelCenter(Tile{col, row}))
	}}
}

// WithEnemyAt spawns an enemy at an exact pixel position.
func WithEnemyAt(t EnemyType, x, y float64) HarnessOption {
	return HarnessOption{harnessOptEnemy, func(h *Harness) {
		h.Session.spawnEnemy(t, Vec2{x, y})
	}}
}

// NewHarness builds a playing session from the options in ordered passes:
//  1. Infrastructure (difficulty, waves, step, log)
//  2. Session construction and Reset
//  3. Board (money, obstacles)
//  4. Towers
//  5. Enemies
func NewHarness(opts ...HarnessOption) *Harness {
	h := &Harness{
		Log:        NewSimLog(false),
		Metrics:    metrics.New(),
		DT:         1.0 / 60.0,
		difficulty: Easy,
	}
	apply := func(kind harnessOptionKind) {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(h)
			}
		}
	}

	apply(harnessOptInfra)
	sessOpts := []Option{WithMetrics(h.Metrics), WithEventSink(h.Log)}
	if h.waves != nil {
		sessOpts = append(sessOpts, WithWaves(h.waves))
	}
	h.Session = NewSession(sessOpts...)
	h.Session.Reset(h.difficulty)

	apply(harnessOptBoard)
	apply(harnessOptTower)
	apply(harnessOptEnemy)
	return h
}

// RunTicks advances n fixed steps.
func (h *Harness) RunTicks(n int) {
	for i := 0; i < n; i++ {
		h.Session.Update(h.DT)
	}
}

// RunSeconds advances by whole steps until at least sec seconds have elapsed.
func (h *Harness) RunSeconds(sec float64) {
	end := h.Session.now + sec
	for h.Session.now < end-1e-9 {
		h.Session.Update(h.DT)
		if h.Session.state != StatePlaying {
			return
		}
	}
}

// RunUntil advances up to maxTicks, stopping when predicate holds.
// It returns the session tick at which the predicate was satisfied, or -1.
func (h *Harness) RunUntil(predicate func(*Harness) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		h.Session.Update(h.DT)
		if predicate(h) {
			return h.Session.tick
		}
	}
	return -1
}

// Enemy returns the live enemy with the given ID, or nil.
func (h *Harness) Enemy(id EnemyID) *Enemy {
	return h.Session.enemyIndex[id]
}

// Enemies returns the session's current enemy list.
func (h *Harness) Enemies() []*Enemy {
	return h.Session.enemies
}

// Tower returns tower i, or nil.
func (h *Harness) Tower(i int) *Tower {
	if i < 0 || i >= len(h.Session.towers) {
		return nil
	}
	return h.Session.towers[i]
}
