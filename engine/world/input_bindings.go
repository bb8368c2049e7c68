package world

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/pelletier/go-toml/v2"
)

// InputBindings maps context name → action name → key code.
type InputBindings struct {
	Bindings map[string]map[string]int
}

// DefaultInputBindings binds WASD movement, Space and ShiftLeft for up and down, Escape to toggle_pause and
// E to interact in the "playing" context. The "paused" context binds Escape to toggle_pause.
func DefaultInputBindings() *InputBindings {
	return &InputBindings{Bindings: map[string]map[string]int{
		StatePlaying: {
			"move_forward":  common.KeyW,
			"move_backward": common.KeyS,
			"move_left":     common.KeyA,
			"move_right":    common.KeyD,
			"move_up":       common.KeySpace,
			"move_down":     common.KeyLeftShift,
			"toggle_pause":  common.KeyEsc,
			"interact":      common.KeyE,
		},
		StatePaused: {
			"toggle_pause": common.KeyEsc,
		},
	}}
}

// LoadInputBindings reads a bindings file. Files ending in .toml are decoded as TOML, everything else as
// JSON. Both hold a table of contexts, each a table of action = "KeyName".
//
// Parameters:
//   - path: the bindings file
//
// Returns:
//   - *InputBindings: the parsed bindings
//   - error: an error if the file cannot be read or parsed
func LoadInputBindings(path string) (*InputBindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input bindings %s: %w", path, err)
	}
	b, err := ParseInputBindings(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("input bindings %s: %w", path, err)
	}
	return b, nil
}

// ParseInputBindings decodes bindings from data. ext selects the format as in LoadInputBindings.
// Unknown key names are logged and skipped.
func ParseInputBindings(data []byte, ext string) (*InputBindings, error) {
	raw := map[string]map[string]string{}
	if strings.EqualFold(ext, ".toml") {
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return FromKeyNames(raw), nil
}

// FromKeyNames converts a context → action → key name table into key codes.
func FromKeyNames(raw map[string]map[string]string) *InputBindings {
	b := &InputBindings{Bindings: make(map[string]map[string]int, len(raw))}
	for context, actions := range raw {
		codes := make(map[string]int, len(actions))
		for action, keyName := range actions {
			code, ok := common.KeyCodeByName(keyName)
			if !ok {
				log.Warn("unknown key %q for action %s in context %s", keyName, action, context)
				continue
			}
			codes[action] = code
		}
		b.Bindings[context] = codes
	}
	return b
}
