package sim

import (
	"fmt"
	"strings"
)

// Event is one observable simulation occurrence: a shot, a hit, a path
// change, a wave transition. Renderers and tests consume the same stream.
type Event struct {
	Tick     int
	Time     float64 // session clock, seconds
	Actor    string  // "E12", "T3", or "--" for global events
	Category string  // path, combat, effect, status, ability, economy, wave, state, enemy, tower
	Key      string  // specific event within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
	Verbose  bool    // per-tick detail, dropped unless the sink asks for it
}

// String formats the event as a fixed-width log line.
//
//	[T=0042] E3   combat    hit              25 dmg (hp 55/80)
func (e Event) String() string {
	return fmt.Sprintf("[T=%04d] %-4s %-9s %-16s %s",
		e.Tick, e.Actor, e.Category, e.Key, e.Value)
}

// EventSink receives events as the session emits them.
type EventSink interface {
	Record(Event)
}

// SimLog is an unbounded, filterable event log for headless runs and tests.
type SimLog struct {
	entries []Event
	verbose bool
}

// NewSimLog creates a SimLog. With verbose set, per-tick movement events are kept too.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Record implements EventSink.
func (sl *SimLog) Record(e Event) {
	if e.Verbose && !sl.verbose {
		return
	}
	sl.entries = append(sl.entries, e)
}

// Clear drops every recorded event.
func (sl *SimLog) Clear() {
	sl.entries = nil
}

// Entries returns all recorded events.
func (sl *SimLog) Entries() []Event {
	return sl.entries
}

// Len is the number of recorded events.
func (sl *SimLog) Len() int {
	return len(sl.entries)
}

// Filter returns events matching category and key. Empty matches anything.
func (sl *SimLog) Filter(category, key string) []Event {
	var out []Event
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterActor returns events for one actor label.
func (sl *SimLog) FilterActor(label string) []Event {
	var out []Event
	for _, e := range sl.entries {
		if e.Actor == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns events within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []Event {
	var out []Event
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many events match category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent event matching category and key.
func (sl *SimLog) LastOf(category, key string) (Event, bool) {
	for i := len(sl.entries) - 1; i >= 0; i-- {
		e := sl.entries[i]
		if (category == "" || e.Category == category) && (key == "" || e.Key == key) {
			return e, true
		}
	}
	return Event{}, false
}

// HasEntry reports whether any event matches category, key and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log, one event per line.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns the log restricted to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func enemyLabel(id EnemyID) string { return fmt.Sprintf("E%d", id) }
func towerLabel(i int) string      { return fmt.Sprintf("T%d", i) }
