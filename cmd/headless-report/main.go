package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/chancedonaho/TowerDefenseGame/internal/config"
	"github.com/chancedonaho/TowerDefenseGame/internal/logger"
	"github.com/chancedonaho/TowerDefenseGame/internal/report"
	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
)

// actInterval is how often, in simulated seconds, the scripted player acts.
const actInterval = 0.5

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	rc := cfg.Report

	var strategyName string
	flag.IntVar(&rc.Runs, "runs", rc.Runs, "number of headless sessions")
	flag.Float64Var(&rc.MaxSeconds, "max-seconds", rc.MaxSeconds, "simulated seconds per run before giving up")
	flag.Float64Var(&rc.DT, "dt", rc.DT, "fixed step in seconds")
	flag.StringVar(&rc.Difficulty, "difficulty", rc.Difficulty, "easy, medium or hard")
	flag.StringVar(&strategyName, "strategy", "balanced", "build script: "+strings.Join(strategyNames(), ", ")+" or rotate")
	flag.StringVar(&rc.PNGPath, "png", rc.PNGPath, "write the last run's final board to this PNG")
	flag.BoolVar(&rc.DumpMetrics, "metrics", rc.DumpMetrics, "print the last run's metrics in Prometheus text format")
	flag.Parse()

	// Keep stdout for the report itself.
	logger.Setup(cfg.Log, os.Stderr)

	if rc.Runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if rc.DT <= 0 || rc.MaxSeconds <= 0 {
		fmt.Println("error: -dt and -max-seconds must be > 0")
		return
	}
	diff, err := sim.ParseDifficulty(rc.Difficulty)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if strategyName != "rotate" {
		if _, ok := strategyByName(strategyName); !ok {
			fmt.Printf("error: unsupported strategy %q (supported: %s, rotate)\n", strategyName, strings.Join(strategyNames(), ", "))
			return
		}
	}

	fmt.Printf("=== Headless Tower Defense Report ===\n")
	fmt.Printf("difficulty=%s runs=%d max_seconds=%.0f dt=%.4f strategy=%s\n\n", diff, rc.Runs, rc.MaxSeconds, rc.DT, strategyName)

	all := make([]report.RunSummary, 0, rc.Runs)
	var last *sim.Harness
	for i := 0; i < rc.Runs; i++ {
		st := pickStrategy(strategyName, i)
		h := runOne(diff, rc, st)
		rs := report.Summarize(h.Session.Snapshot(), h.Log)
		rs.Run = i + 1
		all = append(all, rs)
		fmt.Printf("strategy=%s\n", st.name)
		fmt.Print(rs.Format())
		fmt.Println()
		last = h
	}
	fmt.Print(report.FormatAggregate(all))

	if rc.PNGPath != "" {
		if err := report.SavePNG(last.Session.Snapshot(), rc.PNGPath); err != nil {
			logger.Component("report").WithError(err).Error("writing board image")
		} else {
			fmt.Printf("\nboard written to %s\n", rc.PNGPath)
		}
	}
	if rc.DumpMetrics {
		fmt.Println()
		if err := last.Metrics.Dump(os.Stdout); err != nil {
			logger.Component("report").WithError(err).Error("dumping metrics")
		}
	}
}

// runOne plays a single session with a scripted player until it ends or
// the time limit passes.
func runOne(diff sim.Difficulty, rc config.ReportConfig, st strategy) *sim.Harness {
	h := sim.NewHarness(sim.WithDifficulty(diff), sim.WithStep(rc.DT))
	s := h.Session
	next := 0.0
	for s.State() == sim.StatePlaying && s.Now() < rc.MaxSeconds {
		if s.Now() >= next {
			st.act(s)
			next = s.Now() + actInterval
		}
		s.Update(h.DT)
	}
	return h
}

// buildOrder is one planned tower.
type buildOrder struct {
	tower sim.TowerType
	tile  sim.Tile
}

// strategy is a fixed build script plus simple upkeep rules.
type strategy struct {
	name  string
	build []buildOrder
	next  int
}

var strategies = []strategy{
	{name: "balanced", build: []buildOrder{
		{sim.TowerTier1, sim.Tile{Col: 3, Row: 4}},
		{sim.TowerTier1, sim.Tile{Col: 3, Row: 6}},
		{sim.TowerTier2, sim.Tile{Col: 7, Row: 4}},
		{sim.TowerTier3, sim.Tile{Col: 7, Row: 6}},
		{sim.TowerTier1, sim.Tile{Col: 11, Row: 4}},
		{sim.TowerTier2, sim.Tile{Col: 11, Row: 6}},
		{sim.TowerTier3, sim.Tile{Col: 12, Row: 4}},
		{sim.TowerTier3, sim.Tile{Col: 12, Row: 6}},
	}},
	{name: "tier1", build: []buildOrder{
		{sim.TowerTier1, sim.Tile{Col: 2, Row: 4}},
		{sim.TowerTier1, sim.Tile{Col: 2, Row: 6}},
		{sim.TowerTier1, sim.Tile{Col: 6, Row: 4}},
		{sim.TowerTier1, sim.Tile{Col: 6, Row: 6}},
		{sim.TowerTier1, sim.Tile{Col: 9, Row: 4}},
		{sim.TowerTier1, sim.Tile{Col: 9, Row: 6}},
		{sim.TowerTier1, sim.Tile{Col: 12, Row: 4}},
		{sim.TowerTier1, sim.Tile{Col: 12, Row: 6}},
	}},
	{name: "tier3", build: []buildOrder{
		{sim.TowerTier3, sim.Tile{Col: 7, Row: 4}},
		{sim.TowerTier3, sim.Tile{Col: 7, Row: 6}},
		{sim.TowerTier3, sim.Tile{Col: 11, Row: 4}},
		{sim.TowerTier3, sim.Tile{Col: 11, Row: 6}},
	}},
}

func strategyNames() []string {
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.name
	}
	return names
}

// strategyByName returns a fresh copy of the named strategy.
func strategyByName(name string) (strategy, bool) {
	for _, s := range strategies {
		if s.name == name {
			return s, true
		}
	}
	return strategy{}, false
}

// pickStrategy resolves the -strategy flag for run i.
func pickStrategy(name string, run int) strategy {
	if name == "rotate" {
		return strategies[run%len(strategies)]
	}
	s, _ := strategyByName(name)
	return s
}

// act spends money and keeps towers working. Repairs come first, then the
// next planned build, then upgrades once the plan is done.
func (st *strategy) act(s *sim.Session) {
	snap := s.Snapshot()
	for i, t := range snap.Towers {
		if t.Malfunctioning {
			_ = s.RepairTower(i)
		}
	}

	for st.next < len(st.build) {
		b := st.build[st.next]
		_, err := s.PlaceTower(b.tower, b.tile)
		if errors.Is(err, sim.ErrInsufficientFunds) {
			break
		}
		// Placed, or the tile is unusable on this board.
		st.next++
	}

	if st.next >= len(st.build) {
		for i := 0; i < s.TowerCount(); i++ {
			if s.UpgradeTower(i) == nil {
				break
			}
		}
	}

	if len(snap.Enemies) == 0 {
		return
	}
	for i := 0; i < s.TowerCount(); i++ {
		_ = s.ActivateAbility(i)
	}
}
