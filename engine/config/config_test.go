package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/world"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.PresentMode() != renderer.PresentModeMailbox {
		t.Fatalf("default present mode = %v", c.PresentMode())
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
[window]
title = "demo"
vsync = true

[render]
sphere_bands = [8, 12]

[log]
level = "debug"
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Window.Title != "demo" || c.Window.Width != 1280 {
		t.Fatalf("window = %+v", c.Window)
	}
	if c.Render.SphereBands != [2]int{8, 12} || c.Render.MaxConsecutiveFailures != 120 {
		t.Fatalf("render = %+v", c.Render)
	}
	if c.PresentMode() != renderer.PresentModeVSync {
		t.Fatal("window.vsync did not force vsync")
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"zero width":     "[window]\nwidth = 0\n",
		"clear color":    "[render]\nclear_color = [0.0, 0.0, 2.0, 1.0]\n",
		"sphere bands":   "[render]\nsphere_bands = [1, 3]\n",
		"failures":       "[render]\nmax_consecutive_failures = -1\n",
		"present mode":   "[render]\npresent_mode = \"sometimes\"\n",
		"log level":      "[log]\nlevel = \"loud\"\n",
		"decode workers": "[assets]\ndecode_workers = -2\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(src)); !errors.Is(err, ErrInvalid) {
				t.Fatalf("Parse = %v, want ErrInvalid", err)
			}
		})
	}

	if _, err := Parse([]byte("[window]\ntitel = \"x\"\n")); err == nil || errors.Is(err, ErrInvalid) {
		t.Fatalf("unknown key: %v", err)
	}
}

func TestLoadResolvesManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oxy.toml")
	if err := os.WriteFile(path, []byte("[assets]\nmanifest = \"assets/manifest.toml\"\nhot_reload = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "assets", "manifest.toml"); c.Assets.Manifest != want {
		t.Fatalf("manifest = %q, want %q", c.Assets.Manifest, want)
	}
	if !c.Assets.HotReload {
		t.Fatal("hot_reload not read")
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("missing file loaded")
	}
}

func TestInputBindings(t *testing.T) {
	if got := Default().InputBindings().Bindings[world.StatePlaying]["move_forward"]; got != common.KeyW {
		t.Fatalf("default move_forward = %d", got)
	}

	c, err := Parse([]byte(`
[input.bindings.playing]
move_forward = "KeyE"
toggle_pause = "Escape"

[input.bindings.paused]
toggle_pause = "KeyQ"
`))
	if err != nil {
		t.Fatal(err)
	}
	b := c.InputBindings().Bindings
	if b[world.StatePlaying]["move_forward"] != common.KeyE {
		t.Fatal("configured playing context not applied")
	}
	if _, ok := b[world.StatePlaying]["move_left"]; ok {
		t.Fatal("configured context was merged with the default instead of replacing it")
	}
	if b[world.StatePaused]["toggle_pause"] != common.KeyQ {
		t.Fatal("paused context missing")
	}
}
