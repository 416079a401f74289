// Package report turns finished sessions into text summaries and board images.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
)

// RunSummary condenses one session and its event log.
type RunSummary struct {
	Run        int
	Difficulty string
	Outcome    string
	Time       float64
	Ticks      int

	WavesCleared int
	WaveCount    int
	Money        int
	Kills        int
	Escaped      int
	Towers       int
	Upgrades     int

	Shots           map[string]int // by fire mode
	Hits            int
	FirstKillTick   int
	FirstEscapeTick int

	Reroutes     int
	Forced       int
	Blocked      int
	Abilities    int
	Malfunctions int
	Repairs      int
}

// Summarize builds a RunSummary from a snapshot and the session's log.
// A nil log yields zero event counts and -1 phase markers.
func Summarize(snap sim.Snapshot, log *sim.SimLog) RunSummary {
	rs := RunSummary{
		Difficulty:      snap.Difficulty.String(),
		Outcome:         snap.State.String(),
		Time:            snap.Time,
		Ticks:           snap.Tick,
		WavesCleared:    snap.WaveIndex,
		WaveCount:       snap.WaveCount,
		Money:           snap.Money,
		Kills:           snap.Kills,
		Escaped:         snap.Escaped,
		Towers:          len(snap.Towers),
		Shots:           map[string]int{},
		FirstKillTick:   -1,
		FirstEscapeTick: -1,
	}
	if log == nil {
		return rs
	}

	for _, e := range log.Filter("combat", "fire") {
		if f := strings.Fields(e.Value); len(f) > 0 {
			rs.Shots[f[0]]++
		}
	}
	rs.FirstKillTick = firstTick(log, "combat", "kill")
	rs.FirstEscapeTick = firstTick(log, "enemy", "escape")
	rs.Hits = log.CountCategory("combat", "hit")
	rs.Upgrades = log.CountCategory("economy", "upgrade")
	rs.Reroutes = log.CountCategory("path", "recheck")
	rs.Forced = log.CountCategory("path", "forced")
	rs.Blocked = log.CountCategory("path", "blocked")
	rs.Abilities = log.CountCategory("ability", "activate")
	rs.Malfunctions = log.CountCategory("tower", "malfunction")
	rs.Repairs = log.CountCategory("economy", "repair")
	return rs
}

func firstTick(log *sim.SimLog, category, key string) int {
	if ev := log.Filter(category, key); len(ev) > 0 {
		return ev[0].Tick
	}
	return -1
}

// TotalShots sums shots across fire modes.
func (rs RunSummary) TotalShots() int {
	n := 0
	for _, v := range rs.Shots {
		n += v
	}
	return n
}

// Format renders the summary as a block of key=value lines.
func (rs RunSummary) Format() string {
	var sb strings.Builder
	if rs.Run > 0 {
		fmt.Fprintf(&sb, "--- Run %d (%s) ---\n", rs.Run, rs.Difficulty)
	} else {
		fmt.Fprintf(&sb, "--- Session (%s) ---\n", rs.Difficulty)
	}
	fmt.Fprintf(&sb, "outcome=%s time=%.1fs ticks=%d waves=%d/%d\n",
		rs.Outcome, rs.Time, rs.Ticks, rs.WavesCleared, rs.WaveCount)
	fmt.Fprintf(&sb, "economy: money=%d towers=%d upgrades=%d repairs=%d\n",
		rs.Money, rs.Towers, rs.Upgrades, rs.Repairs)
	fmt.Fprintf(&sb, "combat: kills=%d escaped=%d hits=%d shots=%d [%s]\n",
		rs.Kills, rs.Escaped, rs.Hits, rs.TotalShots(), joinCounts(rs.Shots))
	fmt.Fprintf(&sb, "phase_markers: first_kill=%d first_escape=%d\n", rs.FirstKillTick, rs.FirstEscapeTick)
	fmt.Fprintf(&sb, "routing: rechecks=%d forced=%d blocked=%d\n", rs.Reroutes, rs.Forced, rs.Blocked)
	fmt.Fprintf(&sb, "towers: abilities=%d malfunctions=%d\n", rs.Abilities, rs.Malfunctions)
	return sb.String()
}

// FormatAggregate averages a set of runs.
func FormatAggregate(runs []RunSummary) string {
	var sb strings.Builder
	sb.WriteString("=== Aggregate ===\n")
	fmt.Fprintf(&sb, "runs=%d\n", len(runs))
	if len(runs) == 0 {
		return sb.String()
	}

	outcomes := map[string]int{}
	var kills, escaped, waves, shots int
	var killTicks []int
	for _, rs := range runs {
		outcomes[rs.Outcome]++
		kills += rs.Kills
		escaped += rs.Escaped
		waves += rs.WavesCleared
		shots += rs.TotalShots()
		if rs.FirstKillTick >= 0 {
			killTicks = append(killTicks, rs.FirstKillTick)
		}
	}
	n := len(runs)
	fmt.Fprintf(&sb, "outcomes: %s\n", joinCounts(outcomes))
	fmt.Fprintf(&sb, "avg_per_run: kills=%.1f escaped=%.1f waves=%.1f shots=%.1f\n",
		avg(kills, n), avg(escaped, n), avg(waves, n), avg(shots, n))
	fmt.Fprintf(&sb, "first_kill_avg_tick=%s\n", avgTickString(killTicks))
	return sb.String()
}

func avg(sum, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, ",")
}
