package sim

import (
	"fmt"

	"github.com/chancedonaho/TowerDefenseGame/internal/logger"
	"github.com/sirupsen/logrus"
)

// spawnEnemy creates an enemy of type t at pos with its initial route
// already computed. Max HP is scaled by the difficulty profile.
func (s *Session) spawnEnemy(t EnemyType, pos Vec2) *Enemy {
	spec := enemySpecs[t]
	hp := spec.MaxHP * s.profile.HPPercent / 100
	s.nextEnemyID++
	e := &Enemy{
		ID:            s.nextEnemyID,
		Pos:           pos,
		Type:          t,
		Color:         spec.Color,
		HP:            hp,
		MaxHP:         hp,
		Speed:         spec.Speed,
		OriginalSpeed: spec.Speed,
		Active:        true,
	}
	e.Path = s.findPath(s.grid.ToTile(pos))
	if e.Path == nil {
		s.useFallback(e)
	}
	s.enemies = append(s.enemies, e)
	s.enemyIndex[e.ID] = e

	s.metrics.EnemySpawned(t.String())
	s.emit(Event{Actor: enemyLabel(e.ID), Category: "wave", Key: "spawn",
		Value: fmt.Sprintf("%s hp=%d route=%d", t, hp, len(e.Path)), NumVal: float64(hp)})
	return e
}

func (s *Session) updateEnemies(dt float64) {
	for _, e := range s.enemies {
		if !e.Active {
			continue
		}
		s.maintainPath(e, dt)
		s.moveEnemy(e, dt)
		if !e.Active {
			continue
		}
		s.tickStatus(e, dt)
	}
}

// maintainPath re-paths on the recheck timer when the route is missing or
// its next tile has been blocked. A failed search keeps the stale route; an
// enemy with no route at all falls back to the middle row. Fallback walkers
// search every recheck so they rejoin a real route once one opens.
func (s *Session) maintainPath(e *Enemy, dt float64) {
	e.RecheckTimer -= dt
	if e.RecheckTimer > 0 {
		return
	}
	e.RecheckTimer = PathRecheckInterval

	need := len(e.Path) == 0 || e.Fallback
	if !need && e.PathIndex < len(e.Path) {
		next := e.Path[e.PathIndex]
		need = !s.grid.IsPassable(next.Col, next.Row)
	}
	if !need {
		return
	}

	p := s.findPath(s.grid.ToTile(e.Pos))
	switch {
	case p == nil && len(e.Path) == 0:
		s.useFallback(e)
		return
	case p == nil:
		if !e.Fallback {
			s.emit(Event{Actor: enemyLabel(e.ID), Category: "path", Key: "none", Value: "keeping stale route"})
		}
		return
	}
	e.Path = p
	e.PathIndex = 0
	e.Fallback = false
	s.emit(Event{Actor: enemyLabel(e.ID), Category: "path", Key: "recheck", Value: fmt.Sprintf("%d tiles", len(p)), NumVal: float64(len(p))})
}

// useFallback sends e along the middle row from its current column to the
// last column, ignoring obstacles. Arriving at the end counts as an escape.
func (s *Session) useFallback(e *Enemy) {
	from := min(max(s.grid.ToTile(e.Pos).Col, 0), s.grid.Cols()-1)
	row := s.grid.Rows() / 2
	route := make([]Tile, 0, s.grid.Cols()-from)
	for c := from; c < s.grid.Cols(); c++ {
		route = append(route, Tile{Col: c, Row: row})
	}
	e.Path = route
	e.PathIndex = 0
	e.Fallback = true
	s.emit(Event{Actor: enemyLabel(e.ID), Category: "path", Key: "fallback",
		Value: fmt.Sprintf("row %d, %d tiles", row, len(route)), NumVal: float64(len(route))})
}

// moveEnemy walks toward the centre of the current path tile.
func (s *Session) moveEnemy(e *Enemy, dt float64) {
	if len(e.Path) == 0 || e.PathIndex >= len(e.Path) {
		return
	}
	target := s.grid.ToPixelCenter(e.Path[e.PathIndex])
	if e.Pos.Dist(target) < ArriveEpsilon {
		e.PathIndex++
		if e.PathIndex >= len(e.Path) {
			s.escape(e)
		}
		return
	}
	e.Pos = e.Pos.MoveToward(target, e.Speed*dt)
	s.emit(Event{Actor: enemyLabel(e.ID), Category: "enemy", Key: "move",
		Value: fmt.Sprintf("(%.1f,%.1f)", e.Pos.X, e.Pos.Y), NumVal: e.Speed, Verbose: true})
}

// escape retires an enemy that reached the destination or lost its route.
func (s *Session) escape(e *Enemy) {
	if !e.Active {
		return
	}
	e.Active = false
	e.Escaped = true
	s.escaped++
	s.metrics.EnemyEscaped()
	s.emit(Event{Actor: enemyLabel(e.ID), Category: "enemy", Key: "escape",
		Value: fmt.Sprintf("%d/%d", s.escaped, MaxEscaped), NumVal: float64(s.escaped)})
	logger.Component("waves").WithFields(logrus.Fields{
		"enemy":   e.ID,
		"escaped": s.escaped,
	}).Debug("enemy escaped")

	if s.escaped >= MaxEscaped && s.state == StatePlaying {
		s.setState(StateGameOver)
	}
}

// tickStatus advances slow and DOT timers. At most one DOT tick lands per update.
func (s *Session) tickStatus(e *Enemy, dt float64) {
	if e.Slowed {
		e.SlowRemaining -= dt
		if e.SlowRemaining <= 0 {
			e.Slowed = false
			e.Speed = e.OriginalSpeed
			s.emit(Event{Actor: enemyLabel(e.ID), Category: "status", Key: "slow_end", NumVal: e.Speed})
		}
	}
	if e.DOT {
		e.DOTRemaining -= dt
		e.DOTTickIn -= dt
		if e.DOTTickIn <= 0 {
			e.DOTTickIn = DotTickInterval
			s.damageEnemy(e, e.DOTDamage, "dot")
		}
		if e.DOTRemaining <= 0 {
			e.DOT = false
			s.emit(Event{Actor: enemyLabel(e.ID), Category: "status", Key: "dot_end"})
		}
	}
}

// damageEnemy applies an already armour-adjusted amount and handles the kill.
func (s *Session) damageEnemy(e *Enemy, amount int, source string) {
	if !e.Active {
		return
	}
	e.HP -= amount
	s.emit(Event{Actor: enemyLabel(e.ID), Category: "combat", Key: "hit",
		Value: fmt.Sprintf("%d %s (hp %d/%d)", amount, source, e.HP, e.MaxHP), NumVal: float64(amount)})
	if e.HP > 0 {
		return
	}
	e.Active = false
	s.defeated++
	s.kills++
	s.addMoney(KillReward)
	s.metrics.EnemyKilled(e.Type.String())
	s.emit(Event{Actor: enemyLabel(e.ID), Category: "combat", Key: "kill",
		Value: fmt.Sprintf("%s by %s, +%d", e.Type, source, KillReward), NumVal: KillReward})
}
