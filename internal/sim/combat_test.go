package sim

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func firstOf(log *SimLog, actor, category, key string) (Event, bool) {
	for _, e := range log.Entries() {
		if e.Actor == actor && e.Category == category && e.Key == key {
			return e, true
		}
	}
	return Event{}, false
}

func hitCount(n int) func(*Harness) bool {
	return func(h *Harness) bool { return h.Log.CountCategory("combat", "hit") >= n }
}

func fireCount(n int) func(*Harness) bool {
	return func(h *Harness) bool { return h.Log.CountCategory("combat", "fire") >= n }
}

func TestArmorReduce(t *testing.T) {
	cases := []struct {
		dmg  int
		kind EnemyType
		want int
	}{
		{25, EnemyBasic, 25},
		{25, EnemyFast, 25},
		{25, EnemyArmoured, 17},
		{25, EnemyFastArmoured, 17},
		{62, EnemyArmoured, 43},
		{120, EnemyFastArmoured, 84},
		{1, EnemyArmoured, 0},
		{0, EnemyArmoured, 0},
	}
	for _, c := range cases {
		if got := armorReduce(c.dmg, c.kind); got != c.want {
			t.Errorf("armorReduce(%d, %s)=%d, want %d", c.dmg, c.kind, got, c.want)
		}
	}
}

func TestTier1ProjectileDamage(t *testing.T) {
	cases := []struct {
		kind   EnemyType
		wantHP int
	}{
		{EnemyBasic, 55},
		{EnemyArmoured, 133},
	}
	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			h := NewHarness(WithoutWaves(), WithTower(TowerTier1, 7, 4), WithEnemy(c.kind, 4, 5))
			e := h.Enemies()[0]

			if h.RunUntil(hitCount(1), 1200) < 0 {
				t.Fatalf("no hit landed\n%s", h.Log.Format())
			}
			if e.HP != c.wantHP {
				t.Errorf("hp=%d, want %d", e.HP, c.wantHP)
			}
			if h.Log.CountCategory("combat", "kill") != 0 {
				t.Error("a single shot should not kill")
			}
		})
	}
}

func TestTier1HitscanAtMaxLevel(t *testing.T) {
	cases := []struct {
		kind   EnemyType
		wantHP int
	}{
		{EnemyBasic, 80 - 62},
		{EnemyArmoured, 150 - 43},
	}
	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			h := NewHarness(WithoutWaves(), WithMoney(1000), WithTower(TowerTier1, 7, 4), WithEnemy(c.kind, 4, 5))
			for i := 0; i < 2; i++ {
				if err := h.Session.UpgradeTower(0); err != nil {
					t.Fatalf("upgrade %d: %v", i, err)
				}
			}
			e := h.Enemies()[0]

			if h.RunUntil(hitCount(1), 60) < 0 {
				t.Fatal("hit-scan tower never hit")
			}
			if e.HP != c.wantHP {
				t.Errorf("hp=%d, want %d", e.HP, c.wantHP)
			}
			if len(h.Session.projectiles) != 0 {
				t.Errorf("hit-scan spawned %d projectiles", len(h.Session.projectiles))
			}
			if len(h.Session.beams) != 1 {
				t.Errorf("beams=%d, want 1", len(h.Session.beams))
			}
			if h.Log.CountCategory("effect", "impact") != 1 {
				t.Error("expected one impact effect")
			}
			if got := h.Tower(0).FireCooldown; got != HitscanCooldown {
				t.Errorf("cooldown=%v, want %v", got, HitscanCooldown)
			}
		})
	}
}

func TestAreaProjectileSplashAndDOT(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithMoney(1000),
		WithTower(TowerTier2, 7, 4),
		WithEnemy(EnemyBasic, 5, 5),
		WithEnemy(EnemyArmoured, 5, 5),
	)
	for i := 0; i < 2; i++ {
		if err := h.Session.UpgradeTower(0); err != nil {
			t.Fatalf("upgrade: %v", err)
		}
	}
	basic, armoured := h.Enemies()[0], h.Enemies()[1]

	if h.RunUntil(hitCount(2), 600) < 0 {
		t.Fatalf("splash never landed\n%s", h.Log.Format())
	}
	if h.Log.CountCategory("effect", "explosion") < 1 {
		t.Error("no explosion effect recorded")
	}

	if ev, ok := firstOf(h.Log, enemyLabel(basic.ID), "combat", "hit"); !ok || ev.NumVal != 16 {
		t.Errorf("basic splash=%v ok=%v, want 16", ev.NumVal, ok)
	}
	if ev, ok := firstOf(h.Log, enemyLabel(armoured.ID), "combat", "hit"); !ok || ev.NumVal != 11 {
		t.Errorf("armoured splash=%v ok=%v, want 11", ev.NumVal, ok)
	}
	if !basic.DOT || basic.DOTDamage != 6 {
		t.Errorf("basic dot=%v dmg=%d, want true/6", basic.DOT, basic.DOTDamage)
	}
	if !armoured.DOT || armoured.DOTDamage != 4 {
		t.Errorf("armoured dot=%v dmg=%d, want true/4", armoured.DOT, armoured.DOTDamage)
	}
}

func TestPowerShotConsumed(t *testing.T) {
	h := NewHarness(WithoutWaves(),
		WithTower(TowerTier3, 7, 4),
		WithEnemy(EnemyBasic, 4, 5),
		WithEnemy(EnemyBasic, 2, 5),
	)
	if err := h.Session.ActivateAbility(0); err != nil {
		t.Fatalf("activate: %v", err)
	}
	tw := h.Tower(0)
	if !tw.PowerShot {
		t.Fatal("power shot not armed")
	}

	if h.RunUntil(fireCount(1), 600) < 0 {
		t.Fatal("tower never fired")
	}
	first, _ := h.Log.LastOf("combat", "fire")
	if first.NumVal != 120 {
		t.Errorf("first shot damage=%v, want 120", first.NumVal)
	}
	if tw.PowerShot {
		t.Error("power shot flag survived the shot")
	}

	if h.RunUntil(fireCount(2), 600) < 0 {
		t.Fatal("tower never fired again")
	}
	second, _ := h.Log.LastOf("combat", "fire")
	if second.NumVal != 40 {
		t.Errorf("second shot damage=%v, want 40", second.NumVal)
	}

	h.RunUntil(hitCount(1), 600)
	if ev, ok := firstOf(h.Log, "E1", "combat", "hit"); !ok || ev.NumVal != 120 {
		t.Errorf("first hit on E1=%v ok=%v, want 120", ev.NumVal, ok)
	}
}

func TestTargetsNearestInRange(t *testing.T) {
	h := NewHarness(WithoutWaves(),
		WithTower(TowerTier1, 7, 4),
		WithEnemy(EnemyBasic, 4, 5), // ~170px, out of range
		WithEnemy(EnemyBasic, 6, 5), // ~80px
	)
	if h.RunUntil(fireCount(1), 10) < 0 {
		t.Fatal("no shot")
	}
	ev, _ := h.Log.LastOf("combat", "fire")
	if !strings.Contains(ev.Value, "at E2") {
		t.Errorf("fired at wrong enemy: %s", ev.Value)
	}
}

func TestTargetTieGoesToFirstSpawned(t *testing.T) {
	h := NewHarness(WithoutWaves(),
		WithTower(TowerTier1, 7, 4),
		WithEnemy(EnemyBasic, 6, 5),
		WithEnemy(EnemyBasic, 6, 5),
	)
	if h.RunUntil(fireCount(1), 10) < 0 {
		t.Fatal("no shot")
	}
	ev, _ := h.Log.LastOf("combat", "fire")
	if !strings.Contains(ev.Value, "at E1") {
		t.Errorf("tie broke toward %s", ev.Value)
	}
}

func TestNoTargetOutOfRange(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithTower(TowerTier1, 0, 0), WithEnemy(EnemyBasic, 13, 9))
	h.RunTicks(60)
	if n := h.Log.CountCategory("combat", "fire"); n != 0 {
		t.Fatalf("fired %d times at an out-of-range enemy", n)
	}
}

func TestProjectileFizzlesWhenTargetGone(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithTower(TowerTier3, 7, 4), WithEnemy(EnemyBasic, 4, 5))
	if h.RunUntil(fireCount(1), 60) < 0 {
		t.Fatal("no shot")
	}
	if len(h.Session.projectiles) != 1 {
		t.Fatalf("projectiles=%d, want 1", len(h.Session.projectiles))
	}
	money := h.Session.Money()

	h.Enemies()[0].Active = false
	h.RunTicks(2)

	if len(h.Session.projectiles) != 0 {
		t.Errorf("projectile still in flight after target vanished")
	}
	if h.Log.CountCategory("combat", "hit") != 0 {
		t.Error("orphaned projectile dealt damage")
	}
	if h.Session.Money() != money {
		t.Error("money changed without a kill")
	}
}

func TestKillReward(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithMoney(0), WithTower(TowerTier3, 7, 4), WithEnemy(EnemyFast, 6, 5))
	if h.RunUntil(func(h *Harness) bool { return h.Session.Kills() == 1 }, 1200) < 0 {
		t.Fatalf("no kill\n%s", h.Log.Format())
	}
	if h.Session.Money() != KillReward {
		t.Errorf("money=%d, want %d", h.Session.Money(), KillReward)
	}
	h.RunTicks(1)
	if h.Session.EnemyCount() != 0 {
		t.Error("dead enemy not swept")
	}
}

func TestSlowPulseIdempotent(t *testing.T) {
	h := NewHarness(WithoutWaves(),
		WithTower(TowerTier1, 7, 4),
		WithTower(TowerTier1, 7, 6),
		WithEnemy(EnemyArmoured, 7, 5),
	)
	h.Tower(0).FireCooldown = 1e9
	h.Tower(1).FireCooldown = 1e9
	e := h.Enemies()[0]

	if err := h.Session.ActivateAbility(0); err != nil {
		t.Fatal(err)
	}
	if e.Speed != 30 {
		t.Fatalf("speed=%v after first slow, want 30", e.Speed)
	}
	h.RunTicks(30)
	if err := h.Session.ActivateAbility(1); err != nil {
		t.Fatal(err)
	}
	if e.Speed != 30 {
		t.Fatalf("speed=%v after second slow, want 30 (no compounding)", e.Speed)
	}

	h.RunSeconds(3.1)
	if e.Slowed {
		t.Fatal("slow did not expire")
	}
	if e.Speed != e.OriginalSpeed || e.Speed != 60 {
		t.Errorf("speed=%v after expiry, want 60", e.Speed)
	}
}

func TestSlowPulseOnlyInRange(t *testing.T) {
	h := NewHarness(WithoutWaves(),
		WithTower(TowerTier1, 0, 0),
		WithEnemy(EnemyBasic, 1, 1),
		WithEnemy(EnemyBasic, 12, 8),
	)
	if err := h.Session.ActivateAbility(0); err != nil {
		t.Fatal(err)
	}
	near, far := h.Enemies()[0], h.Enemies()[1]
	if !near.Slowed || far.Slowed {
		t.Fatalf("near slowed=%v far slowed=%v", near.Slowed, far.Slowed)
	}
}

func TestRapidFireRestoresOriginalRate(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithTower(TowerTier2, 0, 0))
	tw := h.Tower(0)

	if err := h.Session.ActivateAbility(0); err != nil {
		t.Fatal(err)
	}
	if tw.FireRate != 2.25 {
		t.Fatalf("boosted rate=%v, want 2.25", tw.FireRate)
	}
	if err := h.Session.ActivateAbility(0); !errors.Is(err, ErrAbilityUnavailable) {
		t.Fatalf("re-activation while active: err=%v", err)
	}

	h.RunSeconds(5.05)
	if tw.AbilityActive {
		t.Fatal("ability still active")
	}
	if tw.FireRate != 1.5 {
		t.Errorf("rate=%v after expiry, want 1.5", tw.FireRate)
	}
	if err := h.Session.ActivateAbility(0); !errors.Is(err, ErrAbilityUnavailable) {
		t.Errorf("activation during cooldown: err=%v", err)
	}

	h.RunSeconds(5)
	if err := h.Session.ActivateAbility(0); err != nil {
		t.Errorf("activation after cooldown: %v", err)
	}
}

func TestUpgradeDuringRapidFire(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithMoney(500), WithTower(TowerTier2, 0, 0))
	tw := h.Tower(0)
	if err := h.Session.ActivateAbility(0); err != nil {
		t.Fatal(err)
	}
	if err := h.Session.UpgradeTower(0); err != nil {
		t.Fatal(err)
	}
	if math.Abs(tw.FireRate-1.95*RapidFireMultiplier) > 1e-9 {
		t.Errorf("boosted upgraded rate=%v, want %v", tw.FireRate, 1.95*RapidFireMultiplier)
	}
	h.RunSeconds(5.05)
	if tw.FireRate != 1.95 {
		t.Errorf("rate=%v after expiry, want 1.95", tw.FireRate)
	}
}

func TestPowerShotAbilityState(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithTower(TowerTier3, 0, 0))
	tw := h.Tower(0)
	if err := h.Session.ActivateAbility(0); err != nil {
		t.Fatal(err)
	}
	if tw.AbilityActive {
		t.Error("one-shot ability should not enter the active state")
	}
	if tw.AbilityCooldown != 8 {
		t.Errorf("cooldown=%v, want 8", tw.AbilityCooldown)
	}
	if err := h.Session.ActivateAbility(0); !errors.Is(err, ErrAbilityUnavailable) {
		t.Errorf("second activation: err=%v", err)
	}
	if err := h.Session.ActivateAbility(3); !errors.Is(err, ErrNoSuchTower) {
		t.Errorf("bad index: err=%v", err)
	}
}

func TestMalfunctionWatchdog(t *testing.T) {
	h := NewHarness(WithDifficulty(Hard), WithoutWaves(), WithTower(TowerTier1, 0, 0))
	tw := h.Tower(0)

	if err := h.Session.RepairTower(0); !errors.Is(err, ErrNotMalfunctioning) {
		t.Fatalf("repair healthy tower: err=%v", err)
	}
	if h.RunUntil(func(h *Harness) bool { return tw.Malfunctioning }, 2000) < 0 {
		t.Fatal("tower never malfunctioned")
	}
	if now := h.Session.Now(); now < MalfunctionWindow-1e-6 || now > MalfunctionWindow+0.05 {
		t.Errorf("malfunction at %.3fs, want ~%v", now, MalfunctionWindow)
	}
	if tw.DisplayColor() != ColorGray {
		t.Error("malfunctioning tower not drawn gray")
	}

	// A malfunctioning tower ignores enemies in range.
	h.Session.spawnEnemy(EnemyBasic, h.Session.grid.ToPixelCenter(Tile{1, 1}))
	h.RunTicks(30)
	if h.Log.CountCategory("combat", "fire") != 0 {
		t.Fatal("malfunctioning tower fired")
	}

	money := h.Session.Money()
	if err := h.Session.RepairTower(0); err != nil {
		t.Fatalf("repair: %v", err)
	}
	if tw.Malfunctioning || h.Session.Money() != money-RepairCost {
		t.Errorf("after repair: malfunctioning=%v money=%d", tw.Malfunctioning, h.Session.Money())
	}
	if tw.LastFired != h.Session.Now() {
		t.Error("repair did not reset the last-fired clock")
	}
}

func TestRepairNeedsFunds(t *testing.T) {
	h := NewHarness(WithDifficulty(Hard), WithoutWaves(), WithMoney(10), WithTower(TowerTier1, 0, 0))
	h.Tower(0).Malfunctioning = true
	if err := h.Session.RepairTower(0); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err=%v, want ErrInsufficientFunds", err)
	}
	if !h.Tower(0).Malfunctioning || h.Session.Money() != 10 {
		t.Error("rejected repair changed state")
	}
}

func TestNoMalfunctionBelowHard(t *testing.T) {
	h := NewHarness(WithDifficulty(Medium), WithoutWaves(), WithTower(TowerTier1, 0, 0))
	h.RunSeconds(40)
	if h.Tower(0).Malfunctioning {
		t.Fatal("tower malfunctioned on medium")
	}
}
