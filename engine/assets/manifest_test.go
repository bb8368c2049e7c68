package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const tomlManifest = `
[textures]
bricks = "textures/bricks.png"
bricks_n = "textures/bricks_n.png"

[meshes]
wall = "meshes/wall.obj"

[materials.wall]
pipeline = "standard"
diffuse = "bricks"
normal = "bricks_n"
roughness = 0.8
`

const jsonManifest = `{
	"textures": {"bricks": "textures/bricks.png"},
	"materials": {
		"wall": {"pipeline": "standard", "diffuse": "bricks", "roughness": 0.8, "metallic": 0.1}
	}
}`

func TestParseManifestTOML(t *testing.T) {
	m, err := ParseManifest([]byte(tomlManifest), ".toml")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Textures) != 2 || m.Meshes["wall"] != "meshes/wall.obj" {
		t.Fatalf("manifest = %+v", m)
	}
	want := MaterialConfig{Pipeline: "standard", Diffuse: "bricks", Normal: "bricks_n", Roughness: 0.8}
	if m.Materials["wall"] != want {
		t.Fatalf("material = %+v, want %+v", m.Materials["wall"], want)
	}
}

func TestParseManifestJSON(t *testing.T) {
	m, err := ParseManifest([]byte(jsonManifest), ".json")
	if err != nil {
		t.Fatal(err)
	}
	if m.Meshes == nil {
		t.Fatal("missing section left a nil map")
	}
	if got := m.Materials["wall"]; got.Normal != "" || got.Metallic != 0.1 {
		t.Fatalf("material = %+v", got)
	}
}

func TestParseManifestRejectsUnknownFields(t *testing.T) {
	if _, err := ParseManifest([]byte(`{"textures": {}, "sounds": {}}`), ".json"); err == nil {
		t.Fatal("unknown JSON section accepted")
	}
	if _, err := ParseManifest([]byte("[materials.x]\npipline = \"standard\"\n"), ".toml"); err == nil {
		t.Fatal("misspelled TOML key accepted")
	}
}

func TestLoadManifestResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assets.toml")
	if err := os.WriteFile(path, []byte(tomlManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Dir() != dir {
		t.Fatalf("Dir() = %q, want %q", m.Dir(), dir)
	}
	if got := m.Resolve(m.Textures["bricks"]); got != filepath.Join(dir, "textures", "bricks.png") {
		t.Fatalf("Resolve = %q", got)
	}
	abs := filepath.Join(dir, "elsewhere.png")
	if got := m.Resolve(abs); got != abs {
		t.Fatalf("absolute path rewritten to %q", got)
	}

	if _, err := LoadManifest(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("missing manifest loaded")
	}
}

func TestTextureFormatFor(t *testing.T) {
	cases := map[string]wgpu.TextureFormat{
		"bricks.png":            wgpu.TextureFormatRGBA8UnormSrgb,
		"textures/bricks_n.png": wgpu.TextureFormatRGBA8Unorm,
		"height_data.png":       wgpu.TextureFormatRGBA8Unorm,
		"n.png":                 wgpu.TextureFormatRGBA8UnormSrgb,
		"my_n_dir/albedo.png":   wgpu.TextureFormatRGBA8UnormSrgb,
	}
	for path, want := range cases {
		if got := TextureFormatFor(path); got != want {
			t.Errorf("TextureFormatFor(%q) = %v, want %v", path, got, want)
		}
	}
}
