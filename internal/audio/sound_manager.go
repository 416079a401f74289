// Package audio plays short synthesized cues for simulation events.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
)

const (
	sampleRate = beep.SampleRate(44100)
)

// Cue identifies one sound effect.
type Cue int

const (
	CueFire Cue = iota
	CueKill
	CueEscape
	CueWave
	CueError
)

type cueShape struct {
	from, to float64 // Hz, swept linearly
	dur      time.Duration
	volume   float64
}

var cueShapes = map[Cue]cueShape{
	CueFire:   {from: 900, to: 600, dur: 40 * time.Millisecond, volume: 0.05},
	CueKill:   {from: 500, to: 1200, dur: 120 * time.Millisecond, volume: 0.12},
	CueEscape: {from: 220, to: 90, dur: 300 * time.Millisecond, volume: 0.18},
	CueWave:   {from: 330, to: 660, dur: 400 * time.Millisecond, volume: 0.12},
	CueError:  {from: 120, to: 120, dur: 150 * time.Millisecond, volume: 0.10},
}

// SoundManager owns the speaker and a mixer that cues are added to.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	lastFire    time.Time
}

// NewSoundManager creates a silent manager; call Initialize to open the device.
func NewSoundManager() *SoundManager {
	return &SoundManager{mixer: &beep.Mixer{}}
}

// Initialize opens the speaker. Calling it twice is a no-op.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup drops queued cues and marks the manager silent.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// Play queues a cue. It is safe to call before Initialize.
func (sm *SoundManager) Play(c Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	shape, ok := cueShapes[c]
	if !ok {
		return
	}
	// Towers fire many times a second; thin the clicks out.
	if c == CueFire {
		if time.Since(sm.lastFire) < 80*time.Millisecond {
			return
		}
		sm.lastFire = time.Now()
	}
	speaker.Lock()
	sm.mixer.Add(beep.Take(sampleRate.N(shape.dur), newSweepGenerator(sampleRate, shape)))
	speaker.Unlock()
}

// Record maps simulation events onto cues, so a SoundManager can be
// registered directly as a session event sink.
func (sm *SoundManager) Record(e sim.Event) {
	if c, ok := CueFor(e); ok {
		sm.Play(c)
	}
}

// CueFor returns the cue for an event, if it has one.
func CueFor(e sim.Event) (Cue, bool) {
	switch {
	case e.Category == "combat" && e.Key == "fire":
		return CueFire, true
	case e.Category == "combat" && e.Key == "kill":
		return CueKill, true
	case e.Category == "enemy" && e.Key == "escape":
		return CueEscape, true
	case e.Category == "wave" && e.Key == "start":
		return CueWave, true
	case e.Category == "tower" && e.Key == "malfunction":
		return CueError, true
	}
	return 0, false
}

// SweepGenerator is a sine tone that glides between two frequencies under a
// linear decay envelope.
type SweepGenerator struct {
	sr      beep.SampleRate
	shape   cueShape
	pos     int
	samples int
	phase   float64
}

// newSweepGenerator creates a generator for one cue shape.
func newSweepGenerator(sr beep.SampleRate, shape cueShape) *SweepGenerator {
	n := sr.N(shape.dur)
	if n < 1 {
		n = 1
	}
	return &SweepGenerator{sr: sr, shape: shape, samples: n}
}

// Stream implements beep.Streamer. It reports false once the sweep has ended.
func (g *SweepGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.samples {
			return i, i > 0
		}
		progress := float64(g.pos) / float64(g.samples)
		freq := g.shape.from + (g.shape.to-g.shape.from)*progress
		val := math.Sin(2*math.Pi*g.phase) * g.shape.volume * (1 - progress)

		samples[i][0] = val
		samples[i][1] = val

		g.phase += freq / float64(g.sr)
		g.phase -= math.Floor(g.phase)
		g.pos++
	}
	return len(samples), true
}

// Err implements beep.Streamer. Synthesis never fails.
func (g *SweepGenerator) Err() error { return nil }
