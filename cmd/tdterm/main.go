// Command tdterm plays the tower defense session in a terminal.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"

	"github.com/chancedonaho/TowerDefenseGame/internal/audio"
	"github.com/chancedonaho/TowerDefenseGame/internal/config"
	"github.com/chancedonaho/TowerDefenseGame/internal/logger"
	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
)

const logFile = "tdterm.log"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// The terminal belongs to the board; logs go to a file.
	var out io.Writer = io.Discard
	if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		defer f.Close()
		out = f
	}
	logger.Setup(cfg.Log, out)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	var sinks []sim.EventSink
	if !cfg.Game.Mute {
		sound := audio.NewSoundManager()
		if err := sound.Initialize(); err != nil {
			// Non-fatal, the game runs without sound.
			logger.Component("tdterm").WithError(err).Warn("audio disabled")
		} else {
			defer sound.Cleanup()
			sinks = append(sinks, sound)
		}
	}

	t := newTerm(screen, cfg.Game, sinks...)
	defer screen.Fini()
	t.run()
}
