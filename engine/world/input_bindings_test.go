package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
)

func TestParseInputBindings(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"json", ".json", `{"playing": {"jump": "Space", "fire": "KeyF", "bogus": "NotAKey"}}`},
		{"toml", ".toml", "[playing]\njump = \"Space\"\nfire = \"KeyF\"\nbogus = \"NotAKey\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseInputBindings([]byte(tt.data), tt.ext)
			if err != nil {
				t.Fatalf("ParseInputBindings: %v", err)
			}
			playing := b.Bindings[StatePlaying]
			if playing["jump"] != common.KeySpace || playing["fire"] != common.KeyF {
				t.Fatalf("bindings = %v", playing)
			}
			if _, ok := playing["bogus"]; ok {
				t.Fatal("unknown key name should be skipped")
			}
		})
	}
}

func TestLoadInputBindingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.json")
	if err := os.WriteFile(path, []byte(`{"paused": {"toggle_pause": "Escape"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := LoadInputBindings(path)
	if err != nil {
		t.Fatalf("LoadInputBindings: %v", err)
	}
	if b.Bindings[StatePaused]["toggle_pause"] != common.KeyEsc {
		t.Fatalf("bindings = %v", b.Bindings)
	}

	if _, err := LoadInputBindings(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestDefaultInputBindings(t *testing.T) {
	playing := DefaultInputBindings().Bindings[StatePlaying]
	want := map[string]int{
		"move_forward":  common.KeyW,
		"move_backward": common.KeyS,
		"move_left":     common.KeyA,
		"move_right":    common.KeyD,
		"move_up":       common.KeySpace,
		"move_down":     common.KeyLeftShift,
		"toggle_pause":  common.KeyEsc,
		"interact":      common.KeyE,
	}
	for action, code := range want {
		if playing[action] != code {
			t.Errorf("%s = %d, want %d", action, playing[action], code)
		}
	}
}
