package sim

import (
	"errors"
	"fmt"

	"github.com/chancedonaho/TowerDefenseGame/internal/logger"
	"github.com/sirupsen/logrus"
)

// Command rejections. A rejected command leaves the session unchanged;
// callers driving a UI are free to ignore these.
var (
	ErrNotPlaying         = errors.New("session is not in play")
	ErrUnknownTowerType   = errors.New("unknown tower type")
	ErrOutOfBounds        = errors.New("tile out of bounds")
	ErrTileBlocked        = errors.New("tile is not buildable")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNoSuchTower        = errors.New("no such tower")
	ErrMaxLevel           = errors.New("tower already at max level")
	ErrAbilityUnavailable = errors.New("ability on cooldown or active")
	ErrNotMalfunctioning  = errors.New("tower is not malfunctioning")
	ErrSkipUnavailable    = errors.New("no wave delay to skip")
)

// PlaceTower builds a tower of type t on tile and returns its index.
// Every active enemy is re-pathed at once; an enemy left with no route is
// retired as escaped.
func (s *Session) PlaceTower(t TowerType, tile Tile) (int, error) {
	if s.state != StatePlaying {
		return -1, ErrNotPlaying
	}
	spec, ok := towerSpecs[t]
	if !ok {
		return -1, fmt.Errorf("place %v: %w", t, ErrUnknownTowerType)
	}
	if !s.grid.InBounds(tile.Col, tile.Row) {
		return -1, fmt.Errorf("place at %v: %w", tile, ErrOutOfBounds)
	}
	if !s.grid.IsPassable(tile.Col, tile.Row) || s.towerAt(tile) >= 0 {
		return -1, fmt.Errorf("place at %v: %w", tile, ErrTileBlocked)
	}
	if s.money < spec.Cost {
		return -1, fmt.Errorf("place %v costs %d, have %d: %w", t, spec.Cost, s.money, ErrInsufficientFunds)
	}

	tw := newTower(t, tile, s.grid.ToPixelCenter(tile), s.now)
	s.towers = append(s.towers, tw)
	idx := len(s.towers) - 1
	s.addMoney(-spec.Cost)
	s.grid.SetOccupied(tile.Col, tile.Row)

	s.metrics.TowerPlaced(t.String())
	s.emit(Event{Actor: towerLabel(idx), Category: "economy", Key: "place",
		Value: fmt.Sprintf("%s at %v for %d", spec.Name, tile, spec.Cost), NumVal: float64(spec.Cost)})
	logger.Component("session").WithFields(logrus.Fields{
		"tower": t.String(),
		"tile":  tile.String(),
		"money": s.money,
	}).Info("tower placed")

	s.repathAll()
	return idx, nil
}

// PlaceTowerAt places a tower on the tile under a pixel position.
func (s *Session) PlaceTowerAt(t TowerType, p Vec2) (int, error) {
	return s.PlaceTower(t, s.grid.ToTile(p))
}

// repathAll forces an immediate path recalculation for every active enemy.
func (s *Session) repathAll() {
	for _, e := range s.enemies {
		if !e.Active {
			continue
		}
		p := s.findPath(s.grid.ToTile(e.Pos))
		if p == nil {
			logger.Component("pathfinder").WithFields(logrus.Fields{
				"enemy": e.ID,
				"tile":  s.grid.ToTile(e.Pos).String(),
			}).Warn("enemy has no route after placement, retiring")
			s.emit(Event{Actor: enemyLabel(e.ID), Category: "path", Key: "blocked", Value: "no route after placement"})
			s.escape(e)
			continue
		}
		e.Path = p
		e.PathIndex = 0
		e.RecheckTimer = 0
		e.Fallback = false
		s.emit(Event{Actor: enemyLabel(e.ID), Category: "path", Key: "forced", Value: fmt.Sprintf("%d tiles", len(p)), NumVal: float64(len(p))})
	}
}

func (s *Session) towerAt(tile Tile) int {
	for i, t := range s.towers {
		if t.Tile == tile {
			return i
		}
	}
	return -1
}

func (s *Session) tower(i int) (*Tower, error) {
	if i < 0 || i >= len(s.towers) {
		return nil, fmt.Errorf("tower %d: %w", i, ErrNoSuchTower)
	}
	return s.towers[i], nil
}

// SelectTower selects tower i. A negative index clears the selection.
func (s *Session) SelectTower(i int) error {
	if i < 0 {
		s.selected = -1
		return nil
	}
	if _, err := s.tower(i); err != nil {
		s.selected = -1
		return err
	}
	s.selected = i
	return nil
}

// SelectTowerAt selects the first tower within half a tile width of p.
// It returns the new selection, or -1 when nothing was hit.
func (s *Session) SelectTowerAt(p Vec2) int {
	s.selected = -1
	reach := float64(s.grid.TileWidth()) / 2
	for i, t := range s.towers {
		if t.Pos.Dist(p) <= reach {
			s.selected = i
			break
		}
	}
	return s.selected
}

// UpgradeTower raises tower i one level.
func (s *Session) UpgradeTower(i int) error {
	if s.state != StatePlaying {
		return ErrNotPlaying
	}
	t, err := s.tower(i)
	if err != nil {
		return err
	}
	if t.Level >= MaxUpgradeLevel {
		return fmt.Errorf("upgrade tower %d: %w", i, ErrMaxLevel)
	}
	cost := UpgradeCost(t.Type, t.Level)
	if s.money < cost {
		return fmt.Errorf("upgrade tower %d costs %d, have %d: %w", i, cost, s.money, ErrInsufficientFunds)
	}
	s.addMoney(-cost)
	t.Level++
	t.applyLevel()

	s.emit(Event{Actor: towerLabel(i), Category: "economy", Key: "upgrade",
		Value: fmt.Sprintf("level %d for %d", t.Level, cost), NumVal: float64(t.Level)})
	logger.Component("session").WithFields(logrus.Fields{
		"tower": i,
		"level": t.Level,
		"money": s.money,
	}).Info("tower upgraded")
	return nil
}

// ActivateAbility fires tower i's special ability.
func (s *Session) ActivateAbility(i int) error {
	if s.state != StatePlaying {
		return ErrNotPlaying
	}
	t, err := s.tower(i)
	if err != nil {
		return err
	}
	if !t.CanActivateAbility() {
		return fmt.Errorf("tower %d: %w", i, ErrAbilityUnavailable)
	}
	s.activateAbility(i, t)
	return nil
}

// RepairTower pays to clear a malfunction.
func (s *Session) RepairTower(i int) error {
	if s.state != StatePlaying {
		return ErrNotPlaying
	}
	t, err := s.tower(i)
	if err != nil {
		return err
	}
	if !t.Malfunctioning {
		return fmt.Errorf("repair tower %d: %w", i, ErrNotMalfunctioning)
	}
	if s.money < RepairCost {
		return fmt.Errorf("repair tower %d costs %d, have %d: %w", i, RepairCost, s.money, ErrInsufficientFunds)
	}
	s.addMoney(-RepairCost)
	t.Malfunctioning = false
	t.LastFired = s.now

	s.emit(Event{Actor: towerLabel(i), Category: "economy", Key: "repair", Value: fmt.Sprintf("paid %d", RepairCost), NumVal: RepairCost})
	logger.Component("session").WithField("tower", i).Info("tower repaired")
	return nil
}

// SkipWaveDelay starts the next wave immediately.
func (s *Session) SkipWaveDelay() error {
	if s.state != StatePlaying {
		return ErrNotPlaying
	}
	if s.waveInProgress || s.waveIndex >= len(s.waves) || s.waveDelay <= SkipThreshold {
		return ErrSkipUnavailable
	}
	s.waveDelay = 0
	s.emit(Event{Actor: "--", Category: "wave", Key: "skip", Value: fmt.Sprintf("wave %d", s.waveIndex+1)})
	return nil
}

// TogglePause switches between playing and paused.
func (s *Session) TogglePause() error {
	switch s.state {
	case StatePlaying:
		s.setState(StatePaused)
	case StatePaused:
		s.setState(StatePlaying)
	default:
		return ErrNotPlaying
	}
	return nil
}

// ReturnToMenu abandons the current game.
func (s *Session) ReturnToMenu() {
	s.selected = -1
	s.setState(StateMenu)
}
