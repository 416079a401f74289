package sim

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestNewSessionStartsInMenu(t *testing.T) {
	s := NewSession()
	if s.State() != StateMenu {
		t.Fatalf("state=%s, want menu", s.State())
	}
	s.Update(1)
	if s.Now() != 0 {
		t.Error("menu session advanced its clock")
	}
	if _, err := s.PlaceTower(TowerTier1, Tile{0, 0}); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("place from menu: err=%v", err)
	}
}

func TestResetPerDifficulty(t *testing.T) {
	cases := []struct {
		d         Difficulty
		money     int
		obstacles int
	}{
		{Easy, 120, 0},
		{Medium, 100, 12},
		{Hard, 80, 14},
	}
	for _, c := range cases {
		t.Run(c.d.String(), func(t *testing.T) {
			s := NewSession()
			s.Reset(c.d)
			if s.State() != StatePlaying || s.Money() != c.money || s.Difficulty() != c.d {
				t.Fatalf("state=%s money=%d difficulty=%s", s.State(), s.Money(), s.Difficulty())
			}
			blocked := 0
			for row := 0; row < GridRows; row++ {
				for col := 0; col < GridCols; col++ {
					if !s.Grid().IsPassable(col, row) {
						blocked++
					}
				}
			}
			if blocked != c.obstacles {
				t.Errorf("blocked tiles=%d, want %d", blocked, c.obstacles)
			}
			if FindPath(s.Grid(), Tile{0, 5}, s.Destination()) == nil {
				t.Error("layout cuts the spawn off from the destination")
			}
		})
	}
}

func TestResetClearsPreviousGame(t *testing.T) {
	h := NewHarness(WithTower(TowerTier1, 3, 3), WithEnemy(EnemyBasic, 0, 5))
	h.RunSeconds(1)
	h.Session.Reset(Hard)
	if h.Session.TowerCount() != 0 || h.Session.EnemyCount() != 0 || h.Session.Now() != 0 {
		t.Fatalf("towers=%d enemies=%d now=%v", h.Session.TowerCount(), h.Session.EnemyCount(), h.Session.Now())
	}
	if !h.Session.Grid().IsPassable(3, 3) {
		t.Error("tower tile still occupied after reset")
	}
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"": Medium, "easy": Easy, "medium": Medium, "hard": Hard} {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Errorf("ParseDifficulty(%q)=%s,%v", in, got, err)
		}
	}
	if _, err := ParseDifficulty("nightmare"); err == nil {
		t.Error("unknown difficulty accepted")
	}
}

func TestPlaceTowerRejections(t *testing.T) {
	cases := []struct {
		name  string
		opts  []HarnessOption
		setup func(*Session)
		kind  TowerType
		tile  Tile
		want  error
	}{
		{name: "unknown type", kind: TowerNone, tile: Tile{0, 0}, want: ErrUnknownTowerType},
		{name: "right of board", kind: TowerTier1, tile: Tile{GridCols, 0}, want: ErrOutOfBounds},
		{name: "above board", kind: TowerTier1, tile: Tile{0, -1}, want: ErrOutOfBounds},
		{name: "obstacle", opts: []HarnessOption{WithDifficulty(Medium)}, kind: TowerTier1, tile: Tile{2, 2}, want: ErrTileBlocked},
		{name: "occupied", opts: []HarnessOption{WithTower(TowerTier2, 4, 4)}, kind: TowerTier1, tile: Tile{4, 4}, want: ErrTileBlocked},
		{name: "funds", opts: []HarnessOption{WithMoney(49)}, kind: TowerTier3, tile: Tile{0, 0}, want: ErrInsufficientFunds},
		{name: "paused", setup: func(s *Session) { _ = s.TogglePause() }, kind: TowerTier1, tile: Tile{0, 0}, want: ErrNotPlaying},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := NewHarness(append(c.opts, WithoutWaves())...)
			if c.setup != nil {
				c.setup(h.Session)
			}
			money, towers := h.Session.Money(), h.Session.TowerCount()

			idx, err := h.Session.PlaceTower(c.kind, c.tile)
			if !errors.Is(err, c.want) {
				t.Fatalf("err=%v, want %v", err, c.want)
			}
			if idx != -1 || h.Session.Money() != money || h.Session.TowerCount() != towers {
				t.Errorf("rejected placement changed state: idx=%d money=%d towers=%d", idx, h.Session.Money(), h.Session.TowerCount())
			}
		})
	}
}

func TestPlaceTowerSuccess(t *testing.T) {
	h := NewHarness(WithoutWaves())
	idx, err := h.Session.PlaceTowerAt(TowerTier2, Vec2{X: 300, Y: 100})
	if err != nil {
		t.Fatal(err)
	}
	tw := h.Tower(idx)
	if tw.Tile != (Tile{5, 1}) || tw.Pos != (Vec2{X: 291, Y: 90}) {
		t.Errorf("tower at %s %v", tw.Tile, tw.Pos)
	}
	if tw.Damage != 20 || tw.Range != 120 || tw.FireRate != 1.5 || tw.Level != 0 {
		t.Errorf("stats %+v", *tw)
	}
	if h.Session.Money() != 120-30 {
		t.Errorf("money=%d", h.Session.Money())
	}
	if h.Session.Grid().IsPassable(5, 1) {
		t.Error("tower tile still passable")
	}
	if !h.Log.HasEntry("economy", "place", "Tier 2") {
		t.Error("placement not recorded")
	}

	var buf bytes.Buffer
	if err := h.Metrics.Dump(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `td_towers_placed_total{kind="tier2"} 1`) {
		t.Errorf("metrics dump:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "td_money 90") {
		t.Errorf("money gauge not updated:\n%s", buf.String())
	}
}

func TestUpgradeTower(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithMoney(100), WithTower(TowerTier3, 0, 0))
	tw := h.Tower(0)

	if err := h.Session.UpgradeTower(0); err != nil {
		t.Fatal(err)
	}
	if tw.Level != 1 || tw.Damage != 68 || tw.Range != 260 || tw.FireRate != 1.44 || h.Session.Money() != 40 {
		t.Fatalf("after L1: %+v money=%d", *tw, h.Session.Money())
	}
	if err := h.Session.UpgradeTower(0); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("L2 with 40: err=%v", err)
	}
	h.Session.addMoney(100)
	if err := h.Session.UpgradeTower(0); err != nil {
		t.Fatal(err)
	}
	if tw.Level != 2 || tw.Damage != 116 || tw.Range != 340 || tw.FireRate != 1.8 || h.Session.Money() != 20 {
		t.Fatalf("after L2: %+v money=%d", *tw, h.Session.Money())
	}
	if err := h.Session.UpgradeTower(0); !errors.Is(err, ErrMaxLevel) {
		t.Errorf("past max: err=%v", err)
	}
	if UpgradeCost(TowerTier3, MaxUpgradeLevel) != 0 {
		t.Error("max-level upgrade cost should be 0")
	}
	if err := h.Session.UpgradeTower(7); !errors.Is(err, ErrNoSuchTower) {
		t.Errorf("bad index: err=%v", err)
	}
}

func TestSelection(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithTower(TowerTier1, 2, 2), WithTower(TowerTier1, 6, 6))

	if got := h.Session.SelectTowerAt(Vec2{X: 345, Y: 385}); got != 1 {
		t.Fatalf("SelectTowerAt near tower 1 = %d", got)
	}
	if snapT, ok := h.Session.Snapshot().SelectedTower(); !ok || snapT.Tile != (Tile{6, 6}) {
		t.Errorf("snapshot selection %v %v", snapT.Tile, ok)
	}
	if got := h.Session.SelectTowerAt(Vec2{X: 500, Y: 500}); got != -1 || h.Session.Selected() != -1 {
		t.Errorf("click on empty ground kept selection %d", got)
	}
	if err := h.Session.SelectTower(0); err != nil || h.Session.Selected() != 0 {
		t.Errorf("SelectTower(0): %v sel=%d", err, h.Session.Selected())
	}
	if err := h.Session.SelectTower(5); !errors.Is(err, ErrNoSuchTower) || h.Session.Selected() != -1 {
		t.Errorf("SelectTower(5): %v sel=%d", err, h.Session.Selected())
	}
	_ = h.Session.SelectTower(1)
	_ = h.Session.SelectTower(-1)
	if h.Session.Selected() != -1 {
		t.Error("negative index did not clear the selection")
	}
}

func TestPauseFreezesSimulation(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithEnemy(EnemyBasic, 0, 5))
	h.RunTicks(10)
	if err := h.Session.TogglePause(); err != nil {
		t.Fatal(err)
	}
	pos, now := h.Enemies()[0].Pos, h.Session.Now()

	h.RunTicks(60)
	if h.Enemies()[0].Pos != pos || h.Session.Now() != now {
		t.Fatal("paused session advanced")
	}
	if err := h.Session.UpgradeTower(0); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("upgrade while paused: err=%v", err)
	}

	if err := h.Session.TogglePause(); err != nil || h.Session.State() != StatePlaying {
		t.Fatalf("resume: %v state=%s", err, h.Session.State())
	}
	h.RunTicks(1)
	if h.Session.Now() <= now {
		t.Error("resumed session did not advance")
	}

	h.Session.ReturnToMenu()
	if err := h.Session.TogglePause(); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("pause from menu: err=%v", err)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithTower(TowerTier1, 3, 3), WithEnemy(EnemyBasic, 0, 5))
	snap := h.Session.Snapshot()

	snap.Towers[0].Damage = 999
	snap.Enemies[0].Path[0] = Tile{9, 9}
	snap.Grid.SetOccupied(0, 0)

	if h.Tower(0).Damage == 999 {
		t.Error("snapshot tower aliases the session")
	}
	if h.Enemies()[0].Path[0] == (Tile{9, 9}) {
		t.Error("snapshot path aliases the session")
	}
	if !h.Session.Grid().IsPassable(0, 0) {
		t.Error("snapshot grid aliases the session")
	}
	if snap.WaveCount != 0 || snap.Selected != -1 || len(snap.Enemies) != 1 {
		t.Errorf("snapshot %+v", snap)
	}
}

func TestTowerSpecTable(t *testing.T) {
	for _, tt := range TowerTypes {
		spec, ok := SpecFor(tt)
		if !ok {
			t.Fatalf("no spec for %s", tt)
		}
		if len(spec.Levels) != MaxUpgradeLevel+1 || len(spec.UpgradeCosts) != MaxUpgradeLevel {
			t.Errorf("%s: levels=%d upgrades=%d", tt, len(spec.Levels), len(spec.UpgradeCosts))
		}
		for l := 1; l < len(spec.Levels); l++ {
			if spec.Levels[l].Damage <= spec.Levels[l-1].Damage {
				t.Errorf("%s: damage does not grow at level %d", tt, l)
			}
		}
	}
	if TowerCost(TowerTier1) != 20 || TowerCost(TowerTier2) != 30 || TowerCost(TowerTier3) != 50 {
		t.Error("tower costs")
	}
}

func TestEnemySpecTable(t *testing.T) {
	for _, et := range []EnemyType{EnemyBasic, EnemyFast, EnemyArmoured, EnemyFastArmoured} {
		spec, ok := EnemySpecFor(et)
		if !ok {
			t.Fatalf("no spec for %s", et)
		}
		if spec.Speed <= 0 || spec.MaxHP <= 0 {
			t.Errorf("%s: %+v", et, spec)
		}
	}
	basic, _ := EnemySpecFor(EnemyBasic)
	fast, _ := EnemySpecFor(EnemyFast)
	if fast.Speed <= basic.Speed || fast.MaxHP >= basic.MaxHP {
		t.Errorf("fast %+v vs basic %+v", fast, basic)
	}
	if _, ok := EnemySpecFor(EnemyType(99)); ok {
		t.Error("unknown enemy type has a spec")
	}
}

func TestTowerInfo(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithTower(TowerTier3, 0, 0))
	info := h.Tower(0).Info()
	if info.Name != "Tier 3" || info.UpgradeCost != 60 || !info.Ready || info.Status != "ok" {
		t.Fatalf("fresh tower info %+v", info)
	}

	_ = h.Session.ActivateAbility(0)
	info = h.Tower(0).Info()
	if info.Ready || info.Cooldown != 8 || info.Status != "power shot armed" {
		t.Errorf("after activation %+v", info)
	}

	h.Tower(0).Malfunctioning = true
	if got := h.Tower(0).Info().Status; got != "malfunction" {
		t.Errorf("status=%q", got)
	}
}
