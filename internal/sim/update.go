package sim

import (
	"slices"
	"time"
)

// Update advances the session by dt seconds. It is a no-op unless playing.
func (s *Session) Update(dt float64) {
	if s.state != StatePlaying || dt <= 0 {
		return
	}
	start := time.Now()
	s.tick++
	s.now += dt

	// 1. ENEMIES: path upkeep, movement, slow and DOT timers.
	s.updateEnemies(dt)

	// 2. TOWERS: target selection and firing.
	s.fireTowers(dt)

	// 3. PROJECTILES: homing and impact resolution.
	s.updateProjectiles(dt)

	// 4. EFFECTS: fade visual effects and beams.
	s.updateEffects(dt)

	// 5. ABILITIES: cooldowns and active-duration expiry.
	s.updateAbilities(dt)

	// 6. SWEEP: drop everything marked inactive this tick.
	s.sweep()

	// 7. WAVES: delay countdown, spawning, completion.
	s.updateWaves(dt)

	// 8. WATCHDOG: hard-difficulty malfunctions.
	s.checkMalfunctions()

	s.metrics.ObserveTick(time.Since(start))
}

func (s *Session) updateEffects(dt float64) {
	for _, v := range s.effects {
		if !v.Active {
			continue
		}
		v.Remaining -= dt
		if v.Remaining <= 0 {
			v.Active = false
		}
	}
	for _, b := range s.beams {
		if !b.Active {
			continue
		}
		b.Remaining -= dt
		if b.Remaining <= 0 {
			b.Active = false
		}
	}
}

// sweep compacts every entity collection in one pass per collection.
func (s *Session) sweep() {
	s.enemies = slices.DeleteFunc(s.enemies, func(e *Enemy) bool {
		if e.Active {
			return false
		}
		delete(s.enemyIndex, e.ID)
		return true
	})
	s.projectiles = slices.DeleteFunc(s.projectiles, func(p *Projectile) bool { return !p.Active })
	s.effects = slices.DeleteFunc(s.effects, func(v *VisualEffect) bool { return !v.Active })
	s.beams = slices.DeleteFunc(s.beams, func(b *LaserBeam) bool { return !b.Active })
}
