// Package logger owns the process-wide logrus instance.
package logger

import (
	"io"
	"os"

	"github.com/chancedonaho/TowerDefenseGame/internal/config"
	"github.com/sirupsen/logrus"
)

// Log is the global logger. It is usable before Init with logrus defaults.
var Log = logrus.New()

// Init configures Log from LOG_LEVEL and LOG_FORMAT.
// Call it once at startup, after .env has been loaded.
func Init() {
	Setup(config.LogFromEnv(), os.Stdout)
}

// Setup applies cfg to a fresh logger writing to out.
func Setup(cfg config.LogConfig, out io.Writer) {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	l.SetOutput(out)
	Log = l
}

// Component returns an entry tagged with the given component name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
