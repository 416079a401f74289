package sim

import (
	"fmt"

	"github.com/chancedonaho/TowerDefenseGame/internal/logger"
	"github.com/sirupsen/logrus"
)

// updateWaves counts down the inter-wave delay, releases enemies on the
// wave's spawn interval and advances once the board is clear.
func (s *Session) updateWaves(dt float64) {
	if s.state != StatePlaying {
		return
	}
	if !s.waveInProgress && s.waveIndex < len(s.waves) {
		s.waveDelay -= dt
		if s.waveDelay <= 0 {
			s.startWave()
		}
	}
	if !s.waveInProgress {
		return
	}

	w := s.waves[s.waveIndex]
	s.waveTimer -= dt
	if s.waveTimer <= 0 && s.spawned < w.Total() {
		s.spawnEnemy(w.TypeAt(s.spawned), s.spawn)
		s.waveTimer = w.SpawnInterval
		s.spawned++
	}
	if s.spawned >= w.Total() && len(s.enemies) == 0 {
		s.completeWave()
	}
}

func (s *Session) startWave() {
	s.waveInProgress = true
	s.waveTimer = 0
	s.spawned = 0
	s.defeated = 0
	s.metrics.SetWave(s.waveIndex + 1)

	w := s.waves[s.waveIndex]
	s.emit(Event{Actor: "--", Category: "wave", Key: "start",
		Value: fmt.Sprintf("wave %d/%d: %d enemies", s.waveIndex+1, len(s.waves), w.Total()), NumVal: float64(s.waveIndex + 1)})
	logger.Component("waves").WithFields(logrus.Fields{
		"wave":    s.waveIndex + 1,
		"enemies": w.Total(),
	}).Info("wave started")
}

func (s *Session) completeWave() {
	s.waveInProgress = false
	s.emit(Event{Actor: "--", Category: "wave", Key: "complete",
		Value: fmt.Sprintf("wave %d: %d defeated", s.waveIndex+1, s.defeated), NumVal: float64(s.waveIndex + 1)})
	logger.Component("waves").WithFields(logrus.Fields{
		"wave":     s.waveIndex + 1,
		"defeated": s.defeated,
		"money":    s.money,
	}).Info("wave complete")

	s.waveIndex++
	if s.waveIndex >= len(s.waves) {
		s.setState(StateWin)
		return
	}
	s.waveDelay = WaveDelay
}
