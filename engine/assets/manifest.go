package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// MaterialConfig describes one material in the manifest.
type MaterialConfig struct {
	// Pipeline is the key of the registered pipeline the material draws with.
	Pipeline string `json:"pipeline" toml:"pipeline"`
	// Diffuse is the name of the diffuse texture.
	Diffuse string `json:"diffuse" toml:"diffuse"`
	// Normal is the name of the normal map. Empty binds the default flat normal.
	Normal    string  `json:"normal,omitempty" toml:"normal,omitempty"`
	Roughness float32 `json:"roughness" toml:"roughness"`
	Metallic  float32 `json:"metallic" toml:"metallic"`
}

// AssetManifest lists the textures, meshes and materials to load. Texture and mesh paths are relative
// to the directory the manifest was loaded from.
type AssetManifest struct {
	Textures  map[string]string         `json:"textures" toml:"textures"`
	Meshes    map[string]string         `json:"meshes" toml:"meshes"`
	Materials map[string]MaterialConfig `json:"materials" toml:"materials"`

	dir string
}

// LoadManifest reads a manifest from disk. Files ending in .toml are parsed as TOML and everything
// else as JSON.
//
// Parameters:
//   - path: the manifest file path
//
// Returns:
//   - *AssetManifest: the parsed manifest with paths resolved against its directory
//   - error: an error if the file cannot be read or parsed
func LoadManifest(path string) (*AssetManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	m, err := ParseManifest(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes manifest bytes. ext selects the format: ".toml" for TOML, anything else for JSON.
// Unknown fields are rejected so typos in asset names surface at load time.
func ParseManifest(data []byte, ext string) (*AssetManifest, error) {
	m := &AssetManifest{}
	if strings.EqualFold(ext, ".toml") {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(m); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(m); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}
	if m.Textures == nil {
		m.Textures = map[string]string{}
	}
	if m.Meshes == nil {
		m.Meshes = map[string]string{}
	}
	if m.Materials == nil {
		m.Materials = map[string]MaterialConfig{}
	}
	return m, nil
}

// Dir returns the directory asset paths are resolved against.
func (m *AssetManifest) Dir() string {
	return m.dir
}

// Resolve returns rel joined onto the manifest directory. Absolute paths are returned unchanged.
func (m *AssetManifest) Resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.dir, rel)
}
