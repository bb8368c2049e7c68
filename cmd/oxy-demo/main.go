// Command oxy-demo opens a window and renders a small lit scene: a spinning cube, a sphere, three lights
// and a fly camera. WASD moves, the mouse looks around, Escape pauses, E toggles the cube's spin
// and R reloads the asset manifest.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-render/engine"
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/logging"
)

func main() {
	configPath := flag.String("config", "", "engine config file (TOML)")
	manifest := flag.String("manifest", "", "asset manifest, overrides assets.manifest")
	profile := flag.Bool("profile", false, "log frame rate and memory statistics")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logging.Fatal("load config: %v", err)
		}
	}
	if *manifest != "" {
		cfg.Assets.Manifest = *manifest
	}

	game := newDemoGame()
	eng := engine.NewEngine(
		engine.WithConfig(cfg),
		engine.WithGameLogic(game),
		engine.WithProfiling(*profile),
	)
	game.engine = eng

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		select {
		case <-sigCh:
			eng.Quit()
		case <-eng.Done():
		}
	}()

	if err := eng.Run(); err != nil {
		logging.Fatal("%v", err)
	}
}
