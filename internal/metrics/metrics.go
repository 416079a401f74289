// Package metrics exposes simulation counters through Prometheus.
//
// Every Recorder owns its own registry so parallel sessions (and tests)
// never collide on metric names. All methods are safe on a nil *Recorder.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects per-session gameplay metrics.
// Label values are bounded: enemy and tower kinds, shot modes, path results.
type Recorder struct {
	reg *prometheus.Registry

	enemiesSpawned *prometheus.CounterVec
	enemiesKilled  *prometheus.CounterVec
	enemiesEscaped prometheus.Counter
	towersPlaced   *prometheus.CounterVec
	shotsFired     *prometheus.CounterVec
	pathSearches   *prometheus.CounterVec
	moneyGauge     prometheus.Gauge
	waveGauge      prometheus.Gauge
	tickDuration   prometheus.Histogram
}

// New builds a Recorder on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		enemiesSpawned: f.NewCounterVec(prometheus.CounterOpts{
			Name: "td_enemies_spawned_total",
			Help: "Enemies spawned by the wave controller",
		}, []string{"kind"}),
		enemiesKilled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "td_enemies_killed_total",
			Help: "Enemies killed by tower fire",
		}, []string{"kind"}),
		enemiesEscaped: f.NewCounter(prometheus.CounterOpts{
			Name: "td_enemies_escaped_total",
			Help: "Enemies that reached the destination or were retired without a path",
		}),
		towersPlaced: f.NewCounterVec(prometheus.CounterOpts{
			Name: "td_towers_placed_total",
			Help: "Towers placed",
		}, []string{"kind"}),
		shotsFired: f.NewCounterVec(prometheus.CounterOpts{
			Name: "td_shots_fired_total",
			Help: "Tower shots by delivery mode",
		}, []string{"mode"}), // "hitscan", "projectile", "area"
		pathSearches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "td_path_searches_total",
			Help: "BFS searches by outcome",
		}, []string{"result"}), // "found", "none"
		moneyGauge: f.NewGauge(prometheus.GaugeOpts{
			Name: "td_money",
			Help: "Current player money",
		}),
		waveGauge: f.NewGauge(prometheus.GaugeOpts{
			Name: "td_wave",
			Help: "Current wave index (1-based)",
		}),
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "td_tick_duration_seconds",
			Help:    "Wall time spent in one simulation update",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
	}
}

// Registry returns the underlying registry for scraping or inspection.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

func (r *Recorder) EnemySpawned(kind string) {
	if r == nil {
		return
	}
	r.enemiesSpawned.WithLabelValues(kind).Inc()
}

func (r *Recorder) EnemyKilled(kind string) {
	if r == nil {
		return
	}
	r.enemiesKilled.WithLabelValues(kind).Inc()
}

func (r *Recorder) EnemyEscaped() {
	if r == nil {
		return
	}
	r.enemiesEscaped.Inc()
}

func (r *Recorder) TowerPlaced(kind string) {
	if r == nil {
		return
	}
	r.towersPlaced.WithLabelValues(kind).Inc()
}

func (r *Recorder) ShotFired(mode string) {
	if r == nil {
		return
	}
	r.shotsFired.WithLabelValues(mode).Inc()
}

// PathSearch records one BFS call and whether it produced a route.
func (r *Recorder) PathSearch(found bool) {
	if r == nil {
		return
	}
	result := "none"
	if found {
		result = "found"
	}
	r.pathSearches.WithLabelValues(result).Inc()
}

func (r *Recorder) SetMoney(money int) {
	if r == nil {
		return
	}
	r.moneyGauge.Set(float64(money))
}

func (r *Recorder) SetWave(wave int) {
	if r == nil {
		return
	}
	r.waveGauge.Set(float64(wave))
}

func (r *Recorder) ObserveTick(d time.Duration) {
	if r == nil {
		return
	}
	r.tickDuration.Observe(d.Seconds())
}

// Dump writes counters and gauges in a flat "name{labels} value" form.
// Histograms are summarised as sample count and sum.
func (r *Recorder) Dump(w io.Writer) error {
	if r == nil {
		return nil
	}
	families, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetGauge() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetGauge().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%.6f", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
