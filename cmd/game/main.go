package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"

	"github.com/chancedonaho/TowerDefenseGame/internal/audio"
	"github.com/chancedonaho/TowerDefenseGame/internal/config"
	"github.com/chancedonaho/TowerDefenseGame/internal/game"
	"github.com/chancedonaho/TowerDefenseGame/internal/logger"
	"github.com/chancedonaho/TowerDefenseGame/internal/sim"
)

func main() {
	// A missing .env is fine; the environment and defaults still apply.
	_ = godotenv.Load()
	logger.Init()
	cfg := config.Load()

	var sinks []sim.EventSink
	if !cfg.Game.Mute {
		sound := audio.NewSoundManager()
		if err := sound.Initialize(); err != nil {
			logger.Component("main").WithError(err).Warn("audio disabled")
		} else {
			defer sound.Cleanup()
			sinks = append(sinks, sound)
		}
	}

	g := game.New(cfg.Game, sinks...)
	w, h := g.WindowSize()
	ebiten.SetWindowTitle("Tower Defense")
	ebiten.SetWindowSize(int(float64(w)*cfg.Game.Scale), int(float64(h)*cfg.Game.Scale))
	if cfg.Game.TPS > 0 {
		ebiten.SetTPS(cfg.Game.TPS)
	}
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
