package sim

import (
	"fmt"
	"image/color"
	"strings"
)

// Gameplay constants.
const (
	MaxUpgradeLevel = 2
	MaxEscaped      = 10 // escapes that end the session

	KillReward = 10
	RepairCost = 50

	PathRecheckInterval = 1.5 // seconds between per-enemy path checks
	ArriveEpsilon       = 5.0 // pixels

	SlowFactor = 0.5

	DotDuration     = 4.0
	DotTickInterval = 0.5
	dotDivisor      = 8 // per-tick damage = projectile damage / dotDivisor
	areaHitDivisor  = 3 // immediate area damage = projectile damage / areaHitDivisor

	ProjectileSpeed     = 200.0
	AreaProjectileSpeed = 150.0
	AreaRadius          = 50.0

	HitscanCooldown     = 0.2
	PowerShotMultiplier = 3
	RapidFireMultiplier = 1.5

	MalfunctionWindow = 30.0

	WaveDelay     = 15.0
	SkipThreshold = 0.5 // the delay must exceed this for a skip to be accepted

	beamLifetime      = 0.1
	impactLifetime    = 0.2
	impactRadius      = 8.0
	flashLifetime     = 0.2
	explosionLifetime = 0.5
)

// Colours used for entity rendering hints.
var (
	ColorBlue     = color.RGBA{R: 0, G: 121, B: 241, A: 255}
	ColorGreen    = color.RGBA{R: 0, G: 228, B: 48, A: 255}
	ColorRed      = color.RGBA{R: 230, G: 41, B: 55, A: 255}
	ColorYellow   = color.RGBA{R: 253, G: 249, B: 0, A: 255}
	ColorDarkGray = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	ColorGold     = color.RGBA{R: 255, G: 203, B: 0, A: 255}
	ColorGray     = color.RGBA{R: 130, G: 130, B: 130, A: 255}
	ColorSkyBlue  = color.RGBA{R: 102, G: 191, B: 255, A: 255}
	ColorLime     = color.RGBA{R: 0, G: 158, B: 47, A: 255}
	ColorOrange   = color.RGBA{R: 255, G: 161, B: 0, A: 255}
	ColorWhite    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// withAlpha scales c to the given opacity, keeping it premultiplied.
func withAlpha(c color.RGBA, a float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(float64(c.A) * a),
	}
}

// --- Towers ---

// TowerType identifies a tower tier. TowerNone is only used for previews.
type TowerType int

const (
	TowerNone TowerType = iota
	TowerTier1
	TowerTier2
	TowerTier3
)

// TowerTypes lists the buildable tower types in menu order.
var TowerTypes = []TowerType{TowerTier1, TowerTier2, TowerTier3}

func (t TowerType) String() string {
	switch t {
	case TowerTier1:
		return "tier1"
	case TowerTier2:
		return "tier2"
	case TowerTier3:
		return "tier3"
	default:
		return "none"
	}
}

// TowerLevelStats is the combat block for one upgrade level.
type TowerLevelStats struct {
	Damage   int
	Range    float64
	FireRate float64 // shots per second
}

// TowerSpec is the static description of a tower type.
type TowerSpec struct {
	Name            string
	Color           color.RGBA
	Cost            int
	UpgradeCosts    [MaxUpgradeLevel]int // cost to go from level i to i+1
	Levels          [MaxUpgradeLevel + 1]TowerLevelStats
	AbilityName     string
	AbilityCooldown float64
	AbilityDuration float64 // zero for one-shot abilities
}

var towerSpecs = map[TowerType]TowerSpec{
	TowerTier1: {
		Name:         "Tier 1",
		Color:        ColorBlue,
		Cost:         20,
		UpgradeCosts: [MaxUpgradeLevel]int{30, 60},
		Levels: [MaxUpgradeLevel + 1]TowerLevelStats{
			{Damage: 25, Range: 150, FireRate: 1.0},
			{Damage: 37, Range: 180, FireRate: 1.2},
			{Damage: 62, Range: 225, FireRate: 1.5},
		},
		AbilityName:     "Area Slow (3s)",
		AbilityCooldown: 15,
		AbilityDuration: 3,
	},
	TowerTier2: {
		Name:         "Tier 2",
		Color:        ColorGreen,
		Cost:         30,
		UpgradeCosts: [MaxUpgradeLevel]int{40, 80},
		Levels: [MaxUpgradeLevel + 1]TowerLevelStats{
			{Damage: 20, Range: 120, FireRate: 1.5},
			{Damage: 30, Range: 144, FireRate: 1.95},
			{Damage: 50, Range: 180, FireRate: 2.55},
		},
		AbilityName:     "Speed Boost (5s)",
		AbilityCooldown: 10,
		AbilityDuration: 5,
	},
	TowerTier3: {
		Name:         "Tier 3",
		Color:        ColorRed,
		Cost:         50,
		UpgradeCosts: [MaxUpgradeLevel]int{60, 120},
		Levels: [MaxUpgradeLevel + 1]TowerLevelStats{
			{Damage: 40, Range: 200, FireRate: 1.2},
			{Damage: 68, Range: 260, FireRate: 1.44},
			{Damage: 116, Range: 340, FireRate: 1.8},
		},
		AbilityName:     "Power Shot (3x DMG)",
		AbilityCooldown: 8,
		AbilityDuration: 0,
	},
}

// SpecFor returns the static stats for a tower type.
func SpecFor(t TowerType) (TowerSpec, bool) {
	s, ok := towerSpecs[t]
	return s, ok
}

// TowerCost returns the placement cost, or 0 for unknown types.
func TowerCost(t TowerType) int {
	return towerSpecs[t].Cost
}

// UpgradeCost returns the cost to upgrade from level, or 0 at max level.
func UpgradeCost(t TowerType, level int) int {
	if level < 0 || level >= MaxUpgradeLevel {
		return 0
	}
	return towerSpecs[t].UpgradeCosts[level]
}

// --- Enemies ---

// EnemyType identifies an enemy archetype.
type EnemyType int

const (
	EnemyBasic EnemyType = iota
	EnemyFast
	EnemyArmoured
	EnemyFastArmoured
)

func (e EnemyType) String() string {
	switch e {
	case EnemyBasic:
		return "basic"
	case EnemyFast:
		return "fast"
	case EnemyArmoured:
		return "armoured"
	case EnemyFastArmoured:
		return "fast-armoured"
	default:
		return "unknown"
	}
}

// Armoured reports whether incoming damage is reduced for this type.
func (e EnemyType) Armoured() bool {
	return e == EnemyArmoured || e == EnemyFastArmoured
}

// EnemySpec is the static description of an enemy type.
type EnemySpec struct {
	Speed float64
	MaxHP int
	Color color.RGBA
}

var enemySpecs = map[EnemyType]EnemySpec{
	EnemyBasic:        {Speed: 60, MaxHP: 80, Color: ColorRed},
	EnemyFast:         {Speed: 90, MaxHP: 40, Color: ColorYellow},
	EnemyArmoured:     {Speed: 60, MaxHP: 150, Color: ColorDarkGray},
	EnemyFastArmoured: {Speed: 90, MaxHP: 100, Color: ColorGold},
}

// EnemySpecFor returns the static stats for an enemy type.
func EnemySpecFor(e EnemyType) (EnemySpec, bool) {
	s, ok := enemySpecs[e]
	return s, ok
}

// armorReduce applies the 30% armour reduction, rounding down.
func armorReduce(dmg int, e EnemyType) int {
	if !e.Armoured() {
		return dmg
	}
	return dmg * 7 / 10
}

// --- Difficulty ---

// Difficulty selects a map layout and enemy scaling.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// ParseDifficulty accepts "easy", "medium" or "hard" in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium", "":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// DifficultyProfile holds everything a difficulty changes.
type DifficultyProfile struct {
	StartingMoney int
	HPPercent     int // enemy max HP scaling, in percent
	Malfunctions  bool
	Obstacles     []Tile
}

// ProfileFor returns the compiled-in profile for d.
func ProfileFor(d Difficulty) DifficultyProfile {
	switch d {
	case Easy:
		return DifficultyProfile{StartingMoney: 120, HPPercent: 100}
	case Hard:
		return DifficultyProfile{StartingMoney: 80, HPPercent: 140, Malfunctions: true, Obstacles: hardObstacles()}
	default:
		return DifficultyProfile{StartingMoney: 100, HPPercent: 120, Obstacles: mediumObstacles()}
	}
}

func mediumObstacles() []Tile {
	var out []Tile
	for row := 2; row < 4; row++ {
		for col := 2; col < 6; col++ {
			out = append(out, Tile{col, row})
		}
	}
	return append(out, Tile{4, 6}, Tile{5, 6}, Tile{4, 7}, Tile{5, 7})
}

func hardObstacles() []Tile {
	var out []Tile
	for col := 2; col < 5; col++ {
		out = append(out, Tile{col, 2})
	}
	for col := 10; col < 13; col++ {
		out = append(out, Tile{col, 2})
	}
	for col := 4; col < 7; col++ {
		out = append(out, Tile{col, 4})
	}
	for col := 8; col < 11; col++ {
		out = append(out, Tile{col, 6})
	}
	for row := 6; row < 8; row++ {
		out = append(out, Tile{3, row})
	}
	return out
}

// --- Waves ---

// Wave is one scripted batch: counts per enemy type released in type order.
type Wave struct {
	Basic         int
	Fast          int
	Armoured      int
	FastArmoured  int
	SpawnInterval float64 // seconds between spawns
}

// Total is the number of enemies in the wave.
func (w Wave) Total() int {
	return w.Basic + w.Fast + w.Armoured + w.FastArmoured
}

// TypeAt returns the type of the i-th spawn (0-based).
func (w Wave) TypeAt(i int) EnemyType {
	switch {
	case i < w.Basic:
		return EnemyBasic
	case i < w.Basic+w.Fast:
		return EnemyFast
	case i < w.Basic+w.Fast+w.Armoured:
		return EnemyArmoured
	default:
		return EnemyFastArmoured
	}
}

// DefaultWaves is the standard ten-wave campaign.
var DefaultWaves = []Wave{
	{5, 0, 0, 0, 1.0},
	{3, 2, 0, 0, 0.8},
	{0, 5, 0, 0, 0.5},
	{5, 0, 2, 0, 0.9},
	{2, 2, 2, 0, 0.7},
	{0, 5, 0, 2, 0.4},
	{5, 0, 5, 0, 0.8},
	{0, 5, 0, 3, 0.6},
	{0, 0, 5, 5, 0.3},
	{10, 5, 5, 5, 0.5},
}
