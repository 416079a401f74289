package sim

import (
	"slices"
	"testing"

	"github.com/chancedonaho/TowerDefenseGame/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// wallExceptRow blocks every tile of col except the one on row.
func wallExceptRow(col, row int) []HarnessOption {
	var opts []HarnessOption
	for r := 0; r < GridRows; r++ {
		if r != row {
			opts = append(opts, WithObstacle(col, r))
		}
	}
	return opts
}

func TestEnemyWalksToDestinationAndEscapes(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithEnemy(EnemyBasic, 0, 5))
	e := h.Enemies()[0]
	if e.PathState() != PathFollowing || len(e.Path) != GridCols {
		t.Fatalf("initial route: state=%s len=%d", e.PathState(), len(e.Path))
	}

	h.RunSeconds(20)

	if h.Session.Escaped() != 1 {
		t.Fatalf("escaped=%d, want 1\n%s", h.Session.Escaped(), h.Log.Format())
	}
	if !e.Escaped || e.Active || e.PathState() != PathArrived {
		t.Errorf("enemy after escape: escaped=%v active=%v state=%s", e.Escaped, e.Active, e.PathState())
	}
	if h.Session.EnemyCount() != 0 {
		t.Error("escaped enemy not swept")
	}
	if h.Session.State() != StatePlaying {
		t.Errorf("state=%s after a single escape", h.Session.State())
	}
}

func TestEnemyReroutesAroundBlockedTileAhead(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithEnemy(EnemyBasic, 0, 5))
	e := h.Enemies()[0]
	blocked := Tile{9, 5}
	h.Session.grid.SetOccupied(blocked.Col, blocked.Row)

	if h.RunUntil(func(h *Harness) bool { return h.Log.CountCategory("path", "recheck") > 0 }, 1200) < 0 {
		t.Fatalf("enemy never re-pathed\n%s", h.Log.Format())
	}
	if slices.Contains(e.Path, blocked) {
		t.Fatalf("new route %v still crosses %s", e.Path, blocked)
	}
	if e.Path[0] != (Tile{8, 5}) || e.PathIndex != 0 {
		t.Errorf("route starts at %s idx %d, want (8,5) idx 0", e.Path[0], e.PathIndex)
	}
	assertValidPath(t, h.Session.grid, e.Path, Tile{8, 5}, h.Session.Destination())

	h.RunSeconds(20)
	if h.Session.Escaped() != 1 {
		t.Errorf("rerouted enemy did not reach the destination")
	}
}

func TestEnemyKeepsStaleRouteWhenSearchFails(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithEnemy(EnemyBasic, 2, 5))
	e := h.Enemies()[0]
	before := slices.Clone(e.Path)

	h.Session.grid.SetOccupied(3, 5)
	h.Session.grid.SetOccupied(14, 5)
	e.PathIndex = 1

	h.RunTicks(1)

	if _, ok := h.Log.LastOf("path", "none"); !ok {
		t.Fatal("failed search not recorded")
	}
	if !slices.Equal(e.Path, before) {
		t.Errorf("stale route replaced: %v", e.Path)
	}
	if !e.Active {
		t.Error("enemy retired on a failed periodic search")
	}
}

func TestEnemyWithoutRouteWalksMiddleRow(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithObstacle(14, 5), WithEnemy(EnemyFast, 3, 3))
	e := h.Enemies()[0]
	if !e.Fallback || e.PathState() != PathFollowing {
		t.Fatalf("fallback=%v state=%s, want fallback route", e.Fallback, e.PathState())
	}
	if len(e.Path) != GridCols-3 || e.Path[0] != (Tile{3, GridRows / 2}) || e.Path[len(e.Path)-1] != h.Session.Destination() {
		t.Fatalf("fallback route %v", e.Path)
	}
	start := e.Pos

	h.RunSeconds(2)
	if e.Pos == start {
		t.Fatal("routeless enemy did not move")
	}
	if n := h.Log.CountCategory("path", "none"); n != 0 {
		t.Errorf("path/none events=%d while walking the fallback row", n)
	}

	h.RunSeconds(20)
	if e.Active || !e.Escaped || h.Session.Escaped() != 1 {
		t.Errorf("fallback walker active=%v escaped=%v count=%d", e.Active, e.Escaped, h.Session.Escaped())
	}
	if evs := h.Log.FilterActor(enemyLabel(e.ID)); len(evs) == 0 || evs[0].Key != "fallback" {
		t.Errorf("first enemy event %v, want path/fallback", evs)
	}
}

func TestFallbackWalkerRejoinsRouteWhenOneOpens(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithObstacle(14, 5), WithEnemy(EnemyBasic, 1, 5))
	e := h.Enemies()[0]
	if !e.Fallback {
		t.Fatal("expected a fallback route")
	}

	h.Session.grid.Reset(nil)
	h.RunSeconds(PathRecheckInterval + 0.1)

	if e.Fallback {
		t.Fatal("enemy still on the fallback row after the destination cleared")
	}
	if !h.Log.HasEntry("path", "recheck", "") {
		t.Error("rejoin not recorded")
	}
	assertValidPath(t, h.Session.grid, e.Path, e.Path[0], h.Session.Destination())
}

func TestPlacementForcesRepath(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithEnemy(EnemyBasic, 2, 5))
	e := h.Enemies()[0]

	if _, err := h.Session.PlaceTower(TowerTier1, Tile{8, 5}); err != nil {
		t.Fatalf("place: %v", err)
	}

	if len(e.Path) != 15 || e.PathIndex != 0 {
		t.Fatalf("route len=%d idx=%d, want 15/0", len(e.Path), e.PathIndex)
	}
	if slices.Contains(e.Path, Tile{8, 5}) {
		t.Error("route crosses the new tower")
	}
	ev, ok := h.Log.LastOf("path", "forced")
	if !ok || ev.Actor != enemyLabel(e.ID) || ev.NumVal != 15 {
		t.Errorf("forced repath event=%+v ok=%v", ev, ok)
	}
}

func TestPlacementRetiresEnemyWithNoRoute(t *testing.T) {
	hook := test.NewLocal(logger.Log)
	defer logger.Log.ReplaceHooks(make(logrus.LevelHooks))

	opts := append(wallExceptRow(5, 5), WithoutWaves(), WithEnemy(EnemyBasic, 2, 5))
	h := NewHarness(opts...)
	e := h.Enemies()[0]

	if _, err := h.Session.PlaceTower(TowerTier1, Tile{5, 5}); err != nil {
		t.Fatalf("place: %v", err)
	}

	if e.Active || !e.Escaped || h.Session.Escaped() != 1 {
		t.Fatalf("enemy active=%v escaped=%v count=%d", e.Active, e.Escaped, h.Session.Escaped())
	}
	if !h.Log.HasEntry("path", "blocked", "") {
		t.Error("blocked event missing")
	}
	if h.Session.State() != StatePlaying {
		t.Errorf("state=%s", h.Session.State())
	}

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["component"] == "pathfinder" {
			warned = true
		}
	}
	if !warned {
		t.Error("no pathfinder warning logged")
	}
}

func TestBlockedRetirementsCountTowardGameOver(t *testing.T) {
	opts := wallExceptRow(5, 5)
	opts = append(opts, WithoutWaves())
	for i := 0; i < MaxEscaped-1; i++ {
		opts = append(opts, WithEnemy(EnemyBasic, 1, 5))
	}
	h := NewHarness(opts...)

	if _, err := h.Session.PlaceTower(TowerTier1, Tile{5, 5}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if h.Session.Escaped() != MaxEscaped-1 || h.Session.State() != StatePlaying {
		t.Fatalf("escaped=%d state=%s", h.Session.Escaped(), h.Session.State())
	}

	// The tile stays occupied; only the shooter goes.
	h.Session.towers = nil
	last := h.Session.spawnEnemy(EnemyBasic, h.Session.grid.ToPixelCenter(Tile{1, 5}))
	if !last.Fallback {
		t.Fatalf("walled-in enemy got a route: %v", last.Path)
	}
	h.RunSeconds(30)

	if last.Active || !last.Escaped {
		t.Fatalf("fallback walker active=%v escaped=%v", last.Active, last.Escaped)
	}
	if h.Session.Escaped() != MaxEscaped {
		t.Errorf("escaped=%d, want %d", h.Session.Escaped(), MaxEscaped)
	}
	if h.Session.State() != StateGameOver {
		t.Errorf("state=%s, want game-over", h.Session.State())
	}
}

func TestDOTAppliesOneTickPerUpdate(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithEnemy(EnemyBasic, 0, 5))
	e := h.Enemies()[0]
	e.applyDOT(6)

	h.Session.Update(2.0)
	if e.HP != 74 {
		t.Fatalf("hp=%d after a 2s step, want 74", e.HP)
	}
	if !e.DOT {
		t.Fatal("DOT ended early")
	}

	h.Session.Update(2.5)
	if e.HP != 68 {
		t.Errorf("hp=%d after expiry step, want 68", e.HP)
	}
	if e.DOT {
		t.Error("DOT still active past its duration")
	}
	if !h.Log.HasEntry("status", "dot_end", "") {
		t.Error("dot_end not recorded")
	}
}

func TestDOTTicksEveryHalfSecond(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithStep(0.25), WithEnemy(EnemyArmoured, 0, 5))
	e := h.Enemies()[0]
	e.applyDOT(4)

	h.RunSeconds(4.1)

	if e.DOT {
		t.Fatal("DOT did not expire")
	}
	if e.HP != 150-8*4 {
		t.Errorf("hp=%d, want %d", e.HP, 150-8*4)
	}
}

func TestDOTCanKill(t *testing.T) {
	h := NewHarness(WithoutWaves(), WithMoney(0), WithEnemy(EnemyFast, 0, 5))
	e := h.Enemies()[0]
	e.HP = 5
	e.applyDOT(6)

	h.RunSeconds(0.6)

	if e.Active || h.Session.Kills() != 1 {
		t.Fatalf("active=%v kills=%d", e.Active, h.Session.Kills())
	}
	if h.Session.Money() != KillReward {
		t.Errorf("money=%d, want %d", h.Session.Money(), KillReward)
	}
	ev, _ := h.Log.LastOf("combat", "kill")
	if ev.Actor != enemyLabel(e.ID) {
		t.Errorf("kill event actor=%s", ev.Actor)
	}
}

func TestApplySlowDoesNotCompound(t *testing.T) {
	e := &Enemy{Speed: 90, OriginalSpeed: 90}
	e.applySlow(3)
	e.applySlow(3)
	if e.Speed != 45 || !e.Slowed || e.SlowRemaining != 3 {
		t.Fatalf("after double slow: speed=%v slowed=%v remaining=%v", e.Speed, e.Slowed, e.SlowRemaining)
	}
}

func TestHPFraction(t *testing.T) {
	cases := []struct {
		hp, max int
		want    float64
	}{
		{80, 80, 1},
		{40, 80, 0.5},
		{0, 80, 0},
		{-5, 80, 0},
		{10, 0, 0},
	}
	for _, c := range cases {
		e := &Enemy{HP: c.hp, MaxHP: c.max}
		if got := e.HPFraction(); got != c.want {
			t.Errorf("HPFraction(%d/%d)=%v, want %v", c.hp, c.max, got, c.want)
		}
	}
}
