package sim

import "image/color"

// EnemyID is a stable handle to an enemy. IDs are never reused within a session.
type EnemyID uint64

// Tower is a placed defensive structure. Towers persist until the session resets.
type Tower struct {
	Pos   Vec2
	Tile  Tile
	Type  TowerType
	Color color.RGBA
	Level int

	Damage       int
	Range        float64
	FireRate     float64
	FireCooldown float64 // seconds until the next shot is allowed

	AbilityCooldown  float64 // remaining
	AbilityActive    bool
	AbilityRemaining float64
	AbilityDuration  float64
	OriginalFireRate float64 // restored when a rapid-fire ability expires
	PowerShot        bool

	Malfunctioning bool
	LastFired      float64 // session clock
}

func newTower(t TowerType, tile Tile, pos Vec2, now float64) *Tower {
	spec := towerSpecs[t]
	base := spec.Levels[0]
	return &Tower{
		Pos:              pos,
		Tile:             tile,
		Type:             t,
		Color:            spec.Color,
		Damage:           base.Damage,
		Range:            base.Range,
		FireRate:         base.FireRate,
		AbilityDuration:  spec.AbilityDuration,
		OriginalFireRate: base.FireRate,
		LastFired:        now,
	}
}

// DisplayColor is the colour a renderer should use for the tower body.
func (t *Tower) DisplayColor() color.RGBA {
	if t.Malfunctioning {
		return ColorGray
	}
	return t.Color
}

// CanActivateAbility reports whether the ability is ready.
func (t *Tower) CanActivateAbility() bool {
	return t.AbilityCooldown <= 0 && !t.AbilityActive
}

// TowerInfo is the tooltip view of a tower.
type TowerInfo struct {
	Name        string
	Level       int
	Damage      int
	Range       float64
	FireRate    float64
	UpgradeCost int // 0 at max level
	Ability     string
	Ready       bool
	Cooldown    float64 // seconds until the ability is ready
	Status      string
}

// Info summarises the tower for a tooltip or inspector panel.
func (t *Tower) Info() TowerInfo {
	spec := towerSpecs[t.Type]
	info := TowerInfo{
		Name:        spec.Name,
		Level:       t.Level,
		Damage:      t.Damage,
		Range:       t.Range,
		FireRate:    t.FireRate,
		UpgradeCost: UpgradeCost(t.Type, t.Level),
		Ability:     spec.AbilityName,
		Ready:       t.CanActivateAbility(),
		Cooldown:    max(t.AbilityCooldown, 0),
		Status:      "ok",
	}
	switch {
	case t.Malfunctioning:
		info.Status = "malfunction"
	case t.AbilityActive:
		info.Status = "ability active"
	case t.PowerShot:
		info.Status = "power shot armed"
	}
	return info
}

// applyLevel loads the stat block for the tower's current level.
// An active rapid-fire boost is carried over onto the new base rate.
func (t *Tower) applyLevel() {
	st := towerSpecs[t.Type].Levels[t.Level]
	t.Damage = st.Damage
	t.Range = st.Range
	t.OriginalFireRate = st.FireRate
	t.FireRate = st.FireRate
	if t.Type == TowerTier2 && t.AbilityActive {
		t.FireRate = st.FireRate * RapidFireMultiplier
	}
}

// PathState is the enemy's route-following phase.
type PathState int

const (
	PathNone PathState = iota
	PathFollowing
	PathArrived
)

func (p PathState) String() string {
	switch p {
	case PathFollowing:
		return "following"
	case PathArrived:
		return "arrived"
	default:
		return "no-path"
	}
}

// Enemy walks the BFS route from the spawn point to the destination tile.
type Enemy struct {
	ID    EnemyID
	Pos   Vec2
	Type  EnemyType
	Color color.RGBA

	HP, MaxHP     int
	Speed         float64
	OriginalSpeed float64
	Active        bool
	Escaped       bool

	Path         []Tile
	PathIndex    int
	RecheckTimer float64
	Fallback     bool // walking the fixed middle row because no route exists

	Slowed        bool
	SlowRemaining float64

	DOT          bool
	DOTRemaining float64
	DOTTickIn    float64
	DOTDamage    int
}

// PathState derives the route phase from the path and index.
func (e *Enemy) PathState() PathState {
	switch {
	case len(e.Path) == 0:
		return PathNone
	case e.PathIndex >= len(e.Path):
		return PathArrived
	default:
		return PathFollowing
	}
}

// HPFraction is hp/maxHp clamped to [0,1].
func (e *Enemy) HPFraction() float64 {
	if e.MaxHP <= 0 || e.HP <= 0 {
		return 0
	}
	f := float64(e.HP) / float64(e.MaxHP)
	if f > 1 {
		return 1
	}
	return f
}

// applySlow holds speed at SlowFactor of the original. Reapplying only resets the timer.
func (e *Enemy) applySlow(duration float64) {
	e.Slowed = true
	e.SlowRemaining = duration
	e.Speed = e.OriginalSpeed * SlowFactor
}

// applyDOT replaces any existing damage-over-time state.
func (e *Enemy) applyDOT(perTick int) {
	e.DOT = true
	e.DOTRemaining = DotDuration
	e.DOTTickIn = DotTickInterval
	e.DOTDamage = perTick
}

// ProjectileKind selects what happens on impact.
type ProjectileKind int

const (
	ProjectileStandard ProjectileKind = iota
	ProjectileArea                    // splash damage plus DOT
)

func (k ProjectileKind) String() string {
	if k == ProjectileArea {
		return "area"
	}
	return "standard"
}

// Projectile homes on its target's current position each tick.
type Projectile struct {
	Pos    Vec2
	Source Vec2
	Target EnemyID
	Speed  float64
	Damage int
	Active bool
	Kind   ProjectileKind
	Radius float64 // area kind only
}

// EffectKind tags a transient visual effect.
type EffectKind int

const (
	EffectMuzzle EffectKind = iota
	EffectImpact
	EffectExplosion
)

func (k EffectKind) String() string {
	switch k {
	case EffectImpact:
		return "impact"
	case EffectExplosion:
		return "explosion"
	default:
		return "muzzle"
	}
}

// VisualEffect is a fading circle.
type VisualEffect struct {
	Kind      EffectKind
	Pos       Vec2
	Remaining float64
	Lifetime  float64
	Radius    float64
	Color     color.RGBA
	Active    bool
}

// Alpha is the remaining fraction of the effect's life.
func (v *VisualEffect) Alpha() float64 {
	if v.Lifetime <= 0 {
		return 0
	}
	return v.Remaining / v.Lifetime
}

// LaserBeam is the line drawn by a hit-scan shot.
type LaserBeam struct {
	From, To  Vec2
	Remaining float64
	Lifetime  float64
	Width     float64
	Color     color.RGBA
	Active    bool
}
