// Package config holds every tunable setting for the binaries.
// Defaults live here; environment variables override them.
package config

import (
	"os"
	"strconv"
	"strings"
)

// =============================================================================
// GAME
// =============================================================================

// GameConfig controls the interactive front-ends.
type GameConfig struct {
	Difficulty string  // "easy", "medium" or "hard"
	Scale      float64 // window scale factor
	TPS        int     // simulation ticks per second
	Mute       bool    // disables audio cues
}

// DefaultGame returns the default front-end configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		Difficulty: "medium",
		Scale:      1.0,
		TPS:        60,
	}
}

// GameFromEnv returns the game configuration with environment overrides.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	if d := getEnvString("TD_DIFFICULTY", ""); d != "" {
		cfg.Difficulty = strings.ToLower(d)
	}
	if s := getEnvFloat("TD_SCALE", 0); s > 0 {
		cfg.Scale = s
	}
	if tps := getEnvInt("TD_TPS", 0); tps > 0 {
		cfg.TPS = tps
	}
	cfg.Mute = getEnvBool("TD_MUTE", cfg.Mute)

	return cfg
}

// =============================================================================
// LOGGING
// =============================================================================

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string // any logrus level name
	Format string // "text" or "json"
}

// DefaultLog returns info-level text logging.
func DefaultLog() LogConfig {
	return LogConfig{Level: "info", Format: "text"}
}

// LogFromEnv reads LOG_LEVEL and LOG_FORMAT.
func LogFromEnv() LogConfig {
	cfg := DefaultLog()
	if l := getEnvString("LOG_LEVEL", ""); l != "" {
		cfg.Level = l
	}
	if f := getEnvString("LOG_FORMAT", ""); f != "" {
		cfg.Format = strings.ToLower(f)
	}
	return cfg
}

// =============================================================================
// HEADLESS REPORT
// =============================================================================

// ReportConfig drives cmd/headless-report.
type ReportConfig struct {
	Runs        int     // number of sessions to simulate
	MaxSeconds  float64 // simulated seconds per run before giving up
	DT          float64 // fixed step in seconds
	Difficulty  string
	PNGPath     string // board snapshot output; empty disables it
	DumpMetrics bool
}

// DefaultReport returns the default headless report configuration.
func DefaultReport() ReportConfig {
	return ReportConfig{
		Runs:       3,
		MaxSeconds: 600,
		DT:         1.0 / 60.0,
		Difficulty: "medium",
	}
}

// ReportFromEnv returns the report configuration with environment overrides.
func ReportFromEnv() ReportConfig {
	cfg := DefaultReport()

	if r := getEnvInt("TD_REPORT_RUNS", 0); r > 0 {
		cfg.Runs = r
	}
	if s := getEnvFloat("TD_REPORT_MAX_SECONDS", 0); s > 0 {
		cfg.MaxSeconds = s
	}
	if dt := getEnvFloat("TD_REPORT_DT", 0); dt > 0 {
		cfg.DT = dt
	}
	if d := getEnvString("TD_DIFFICULTY", ""); d != "" {
		cfg.Difficulty = strings.ToLower(d)
	}
	cfg.PNGPath = getEnvString("TD_REPORT_PNG", cfg.PNGPath)
	cfg.DumpMetrics = getEnvBool("TD_REPORT_METRICS", cfg.DumpMetrics)

	return cfg
}

// =============================================================================
// AGGREGATE
// =============================================================================

// AppConfig bundles every section.
type AppConfig struct {
	Game   GameConfig
	Log    LogConfig
	Report ReportConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Game:   GameFromEnv(),
		Log:    LogFromEnv(),
		Report: ReportFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvString(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
