package sim

import (
	"fmt"
	"image/color"

	"github.com/chancedonaho/TowerDefenseGame/internal/logger"
	"github.com/sirupsen/logrus"
)

func (s *Session) fireTowers(dt float64) {
	for i, t := range s.towers {
		if t.Malfunctioning {
			continue
		}
		if t.FireCooldown > 0 {
			t.FireCooldown -= dt
			continue
		}
		target := s.nearestEnemy(t.Pos, t.Range)
		if target == nil {
			continue
		}
		s.fire(i, t, target)
	}
}

// nearestEnemy returns the closest active enemy strictly inside maxDist.
// Ties go to the earliest enemy in spawn order.
func (s *Session) nearestEnemy(from Vec2, maxDist float64) *Enemy {
	var best *Enemy
	bestDist := maxDist
	for _, e := range s.enemies {
		if !e.Active {
			continue
		}
		if d := from.Dist(e.Pos); d < bestDist {
			bestDist = d
			best = e
		}
	}
	return best
}

// fire dispatches one shot from tower i at target.
func (s *Session) fire(i int, t *Tower, target *Enemy) {
	power := t.PowerShot && t.Type == TowerTier3
	mode := "projectile"
	out := t.Damage

	switch {
	case t.Level == MaxUpgradeLevel && t.Type == TowerTier1:
		mode = "hitscan"
		s.damageEnemy(target, armorReduce(t.Damage, target.Type), "beam")
		s.beams = append(s.beams, &LaserBeam{
			From: t.Pos, To: target.Pos,
			Remaining: beamLifetime, Lifetime: beamLifetime,
			Width: 2, Color: withAlpha(ColorSkyBlue, 0.8), Active: true,
		})
		s.addEffect(EffectImpact, target.Pos, impactLifetime, impactRadius, withAlpha(ColorWhite, 0.9))
		t.FireCooldown = HitscanCooldown

	case t.Level == MaxUpgradeLevel && t.Type == TowerTier2:
		mode = "area"
		s.projectiles = append(s.projectiles, &Projectile{
			Pos: t.Pos, Source: t.Pos, Target: target.ID,
			Speed: AreaProjectileSpeed, Damage: t.Damage,
			Active: true, Kind: ProjectileArea, Radius: AreaRadius,
		})
		t.FireCooldown = 1 / t.FireRate

	default:
		if power {
			out *= PowerShotMultiplier
		}
		t.PowerShot = false
		s.projectiles = append(s.projectiles, &Projectile{
			Pos: t.Pos, Source: t.Pos, Target: target.ID,
			Speed: ProjectileSpeed, Damage: out,
			Active: true, Kind: ProjectileStandard,
		})
		t.FireCooldown = 1 / t.FireRate
	}

	col, radius := muzzleFlash(t, power)
	s.addEffect(EffectMuzzle, t.Pos, flashLifetime, radius, col)
	t.LastFired = s.now

	s.metrics.ShotFired(mode)
	s.emit(Event{Actor: towerLabel(i), Category: "combat", Key: "fire",
		Value: fmt.Sprintf("%s at %s dist=%.0f", mode, enemyLabel(target.ID), t.Pos.Dist(target.Pos)), NumVal: float64(out)})
	logger.Component("combat").WithFields(logrus.Fields{
		"tower":  i,
		"mode":   mode,
		"target": target.ID,
		"power":  power,
	}).Debug("tower fired")
}

func muzzleFlash(t *Tower, power bool) (col color.RGBA, radius float64) {
	switch {
	case power:
		return withAlpha(ColorOrange, 0.9), 25
	case t.Type == TowerTier2 && t.Level == MaxUpgradeLevel:
		return withAlpha(ColorOrange, 0.8), 20
	case t.Type == TowerTier1 && t.Level == MaxUpgradeLevel:
		return withAlpha(ColorSkyBlue, 0.9), 18
	case t.Type == TowerTier1:
		return withAlpha(ColorSkyBlue, 0.8), 15
	case t.Type == TowerTier2:
		return withAlpha(ColorLime, 0.8), 15
	default:
		return withAlpha(ColorRed, 0.8), 15
	}
}

func (s *Session) addEffect(kind EffectKind, pos Vec2, life, radius float64, col color.RGBA) {
	s.effects = append(s.effects, &VisualEffect{
		Kind: kind, Pos: pos,
		Remaining: life, Lifetime: life,
		Radius: radius, Color: col, Active: true,
	})
	s.emit(Event{Actor: "--", Category: "effect", Key: kind.String(),
		Value: fmt.Sprintf("(%.0f,%.0f) r=%.0f", pos.X, pos.Y, radius), NumVal: radius})
}

func (s *Session) updateProjectiles(dt float64) {
	for _, p := range s.projectiles {
		if !p.Active {
			continue
		}
		target := s.liveEnemy(p.Target)
		if target == nil {
			p.Active = false
			continue
		}
		if p.Pos.Dist(target.Pos) < ArriveEpsilon {
			s.impact(p, target)
			p.Active = false
			continue
		}
		p.Pos = p.Pos.MoveToward(target.Pos, p.Speed*dt)
	}
}

// impact resolves a projectile that reached its target.
func (s *Session) impact(p *Projectile, target *Enemy) {
	if p.Kind == ProjectileStandard {
		s.damageEnemy(target, armorReduce(p.Damage, target.Type), "projectile")
		return
	}

	s.addEffect(EffectExplosion, p.Pos, explosionLifetime, p.Radius, withAlpha(ColorOrange, 0.8))
	for _, e := range s.enemies {
		if !e.Active || p.Pos.Dist(e.Pos) > p.Radius {
			continue
		}
		s.damageEnemy(e, armorReduce(p.Damage/areaHitDivisor, e.Type), "splash")
		if !e.Active {
			continue
		}
		e.applyDOT(armorReduce(p.Damage/dotDivisor, e.Type))
		s.emit(Event{Actor: enemyLabel(e.ID), Category: "status", Key: "dot",
			Value: fmt.Sprintf("%d/tick for %.0fs", e.DOTDamage, DotDuration), NumVal: float64(e.DOTDamage)})
	}
}

// activateAbility applies the type-specific effect and starts the cooldown.
func (s *Session) activateAbility(i int, t *Tower) {
	t.AbilityCooldown = towerSpecs[t.Type].AbilityCooldown
	switch t.Type {
	case TowerTier1:
		t.AbilityActive = true
		t.AbilityRemaining = t.AbilityDuration
		slowed := 0
		for _, e := range s.enemies {
			if e.Active && t.Pos.Dist(e.Pos) <= t.Range {
				e.applySlow(t.AbilityDuration)
				slowed++
				s.emit(Event{Actor: enemyLabel(e.ID), Category: "status", Key: "slow", NumVal: e.Speed})
			}
		}
		s.emit(Event{Actor: towerLabel(i), Category: "ability", Key: "activate", Value: fmt.Sprintf("slow pulse hit %d", slowed), NumVal: float64(slowed)})
	case TowerTier2:
		t.AbilityActive = true
		t.AbilityRemaining = t.AbilityDuration
		t.OriginalFireRate = t.FireRate
		t.FireRate *= RapidFireMultiplier
		s.emit(Event{Actor: towerLabel(i), Category: "ability", Key: "activate", Value: fmt.Sprintf("fire rate %.2f", t.FireRate), NumVal: t.FireRate})
	case TowerTier3:
		t.PowerShot = true
		s.emit(Event{Actor: towerLabel(i), Category: "ability", Key: "activate", Value: "power shot armed"})
	}
	logger.Component("combat").WithFields(logrus.Fields{
		"tower": i,
		"type":  t.Type.String(),
	}).Info("ability activated")
}

func (s *Session) updateAbilities(dt float64) {
	for i, t := range s.towers {
		if t.AbilityCooldown > 0 {
			t.AbilityCooldown -= dt
		}
		if !t.AbilityActive {
			continue
		}
		t.AbilityRemaining -= dt
		if t.AbilityRemaining <= 0 {
			t.AbilityActive = false
			if t.Type == TowerTier2 {
				t.FireRate = t.OriginalFireRate
			}
			s.emit(Event{Actor: towerLabel(i), Category: "ability", Key: "expire", NumVal: t.FireRate})
		}
	}
}

// checkMalfunctions flags towers idle for MalfunctionWindow on difficulties that enable it.
func (s *Session) checkMalfunctions() {
	if !s.profile.Malfunctions || s.state != StatePlaying {
		return
	}
	for i, t := range s.towers {
		if t.Malfunctioning || s.now-t.LastFired < MalfunctionWindow {
			continue
		}
		t.Malfunctioning = true
		s.emit(Event{Actor: towerLabel(i), Category: "tower", Key: "malfunction",
			Value: fmt.Sprintf("idle %.1fs", s.now-t.LastFired), NumVal: s.now - t.LastFired})
		logger.Component("combat").WithField("tower", i).Info("tower malfunctioned")
	}
}
