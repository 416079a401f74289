package sim

import (
	"fmt"
	"slices"

	"github.com/chancedonaho/TowerDefenseGame/internal/logger"
	"github.com/chancedonaho/TowerDefenseGame/internal/metrics"
	"github.com/sirupsen/logrus"
)

// GameState is the session's top-level phase.
type GameState int

const (
	StateMenu GameState = iota
	StatePlaying
	StatePaused
	StateGameOver
	StateWin
)

func (g GameState) String() string {
	switch g {
	case StateMenu:
		return "menu"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game-over"
	case StateWin:
		return "win"
	default:
		return fmt.Sprintf("state(%d)", int(g))
	}
}

// Session owns all simulation state for one game. It is not safe for
// concurrent use; a single goroutine must drive Update and the commands.
type Session struct {
	grid        *Grid
	difficulty  Difficulty
	profile     DifficultyProfile
	waves       []Wave
	spawn       Vec2
	destination Tile

	towers      []*Tower
	enemies     []*Enemy
	enemyIndex  map[EnemyID]*Enemy
	projectiles []*Projectile
	effects     []*VisualEffect
	beams       []*LaserBeam
	nextEnemyID EnemyID

	state    GameState
	money    int
	selected int

	waveIndex      int
	waveTimer      float64 // countdown to the next spawn
	waveDelay      float64 // countdown to the next wave
	waveInProgress bool
	spawned        int // this wave
	defeated       int // this wave
	escaped        int // whole session
	kills          int // whole session

	now  float64
	tick int

	sinks   []EventSink
	metrics *metrics.Recorder
}

// Option configures a Session at construction.
type Option func(*Session)

// WithMetrics attaches a Prometheus recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Session) { s.metrics = r }
}

// WithEventSink adds a consumer for simulation events.
func WithEventSink(sink EventSink) Option {
	return func(s *Session) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// WithWaves replaces the campaign. An empty list disables spawning.
func WithWaves(waves []Wave) Option {
	return func(s *Session) { s.waves = slices.Clone(waves) }
}

// NewSession creates a session on the standard board, sitting in the menu.
func NewSession(opts ...Option) *Session {
	s := &Session{
		grid:        NewBoardGrid(),
		waves:       slices.Clone(DefaultWaves),
		spawn:       Vec2{X: TileWidth / 2.0, Y: GridRows * TileHeight / 2.0},
		destination: Tile{Col: GridCols - 1, Row: GridRows / 2},
		enemyIndex:  make(map[EnemyID]*Enemy),
		selected:    -1,
		difficulty:  Medium,
	}
	for _, o := range opts {
		o(s)
	}
	s.profile = ProfileFor(s.difficulty)
	s.grid.Reset(s.profile.Obstacles)
	return s
}

// Reset starts a fresh game at the given difficulty.
func (s *Session) Reset(d Difficulty) {
	s.difficulty = d
	s.profile = ProfileFor(d)
	s.grid.Reset(s.profile.Obstacles)

	s.towers = nil
	s.enemies = nil
	s.enemyIndex = make(map[EnemyID]*Enemy)
	s.projectiles = nil
	s.effects = nil
	s.beams = nil

	s.money = s.profile.StartingMoney
	s.selected = -1
	s.waveIndex = 0
	s.waveTimer = 0
	s.waveDelay = WaveDelay
	s.waveInProgress = false
	s.spawned = 0
	s.defeated = 0
	s.escaped = 0
	s.kills = 0
	s.now = 0
	s.tick = 0

	s.metrics.SetMoney(s.money)
	s.metrics.SetWave(1)
	logger.Component("session").WithFields(logrus.Fields{
		"difficulty": d.String(),
		"money":      s.money,
		"obstacles":  len(s.profile.Obstacles),
	}).Info("session reset")
	s.setState(StatePlaying)
}

func (s *Session) setState(next GameState) {
	if s.state == next {
		return
	}
	prev := s.state
	s.state = next
	s.emit(Event{Actor: "--", Category: "state", Key: "change", Value: fmt.Sprintf("%s -> %s", prev, next)})
	logger.Component("session").WithFields(logrus.Fields{
		"from": prev.String(),
		"to":   next.String(),
	}).Info("game state changed")
}

func (s *Session) emit(e Event) {
	if len(s.sinks) == 0 {
		return
	}
	e.Tick = s.tick
	e.Time = s.now
	for _, sink := range s.sinks {
		sink.Record(e)
	}
}

func (s *Session) addMoney(delta int) {
	s.money += delta
	s.metrics.SetMoney(s.money)
}

// findPath runs BFS from start to the destination and records the outcome.
func (s *Session) findPath(start Tile) []Tile {
	p := FindPath(s.grid, start, s.destination)
	s.metrics.PathSearch(p != nil)
	return p
}

// liveEnemy resolves a handle, returning nil for dead, escaped or swept enemies.
func (s *Session) liveEnemy(id EnemyID) *Enemy {
	e, ok := s.enemyIndex[id]
	if !ok || !e.Active {
		return nil
	}
	return e
}

// Now is the session clock: seconds of simulated play since Reset.
func (s *Session) Now() float64 { return s.now }

func (s *Session) State() GameState       { return s.state }
func (s *Session) Money() int             { return s.money }
func (s *Session) Difficulty() Difficulty { return s.difficulty }
func (s *Session) Grid() *Grid            { return s.grid }
func (s *Session) Destination() Tile      { return s.destination }
func (s *Session) SpawnPoint() Vec2       { return s.spawn }
func (s *Session) Selected() int          { return s.selected }
func (s *Session) Escaped() int           { return s.escaped }
func (s *Session) Kills() int             { return s.kills }
func (s *Session) WaveIndex() int         { return s.waveIndex }
func (s *Session) WaveCount() int         { return len(s.waves) }
func (s *Session) TowerCount() int        { return len(s.towers) }
func (s *Session) EnemyCount() int        { return len(s.enemies) }

// Snapshot is a read-only copy of everything a renderer needs.
type Snapshot struct {
	State      GameState
	Difficulty Difficulty
	Time       float64
	Tick       int

	Money     int
	WaveIndex int // 0-based; equals WaveCount once every wave is done
	WaveCount int
	WaveTotal int // enemies in the current wave
	InWave    bool
	WaveDelay float64
	Spawned   int
	Defeated  int
	Escaped   int
	Kills     int
	Selected  int

	Spawn       Vec2
	Destination Tile
	Grid        *Grid

	Towers      []Tower
	Enemies     []Enemy
	Projectiles []Projectile
	Effects     []VisualEffect
	Beams       []LaserBeam
}

// Snapshot copies the current state. The result shares nothing with the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:       s.state,
		Difficulty:  s.difficulty,
		Time:        s.now,
		Tick:        s.tick,
		Money:       s.money,
		WaveIndex:   s.waveIndex,
		WaveCount:   len(s.waves),
		InWave:      s.waveInProgress,
		WaveDelay:   s.waveDelay,
		Spawned:     s.spawned,
		Defeated:    s.defeated,
		Escaped:     s.escaped,
		Kills:       s.kills,
		Selected:    s.selected,
		Spawn:       s.spawn,
		Destination: s.destination,
		Grid:        s.grid.Clone(),
		Towers:      make([]Tower, 0, len(s.towers)),
		Enemies:     make([]Enemy, 0, len(s.enemies)),
		Projectiles: make([]Projectile, 0, len(s.projectiles)),
		Effects:     make([]VisualEffect, 0, len(s.effects)),
		Beams:       make([]LaserBeam, 0, len(s.beams)),
	}
	if s.waveIndex < len(s.waves) {
		snap.WaveTotal = s.waves[s.waveIndex].Total()
	}
	for _, t := range s.towers {
		snap.Towers = append(snap.Towers, *t)
	}
	for _, e := range s.enemies {
		c := *e
		c.Path = slices.Clone(e.Path)
		snap.Enemies = append(snap.Enemies, c)
	}
	for _, p := range s.projectiles {
		snap.Projectiles = append(snap.Projectiles, *p)
	}
	for _, v := range s.effects {
		snap.Effects = append(snap.Effects, *v)
	}
	for _, b := range s.beams {
		snap.Beams = append(snap.Beams, *b)
	}
	return snap
}

// SkipAvailable reports whether SkipWaveDelay would be accepted.
func (snap Snapshot) SkipAvailable() bool {
	return snap.State == StatePlaying && !snap.InWave && snap.WaveIndex < snap.WaveCount && snap.WaveDelay > SkipThreshold
}

// SpawnProgress is the fraction of the current wave already spawned.
func (snap Snapshot) SpawnProgress() float64 {
	if snap.WaveTotal == 0 {
		return 0
	}
	return float64(snap.Spawned) / float64(snap.WaveTotal)
}

// EnemiesRemaining counts enemies still to spawn plus those on the board.
func (snap Snapshot) EnemiesRemaining() int {
	if !snap.InWave {
		return 0
	}
	return snap.WaveTotal - snap.Spawned + len(snap.Enemies)
}

// SelectedTower returns the selected tower, if any.
func (snap Snapshot) SelectedTower() (Tower, bool) {
	if snap.Selected < 0 || snap.Selected >= len(snap.Towers) {
		return Tower{}, false
	}
	return snap.Towers[snap.Selected], true
}
