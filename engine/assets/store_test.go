package assets_test

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/assets"
	"github.com/Carmen-Shannon/oxy-render/engine/frame"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-render/internal/gputest"
	"github.com/cogentcore/webgpu/wgpu"
)

const triangleOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

const manifestTOML = `
[textures]
bricks = "bricks.png"
bricks_n = "bricks_n.png"

[meshes]
tri = "tri.obj"

[materials.plain]
pipeline = "standard"
diffuse = "bricks"
roughness = 0.25

[materials.bumpy]
pipeline = "standard"
diffuse = "bricks"
normal = "bricks_n"
metallic = 1.0
`

// flatVertex and flatFragment declare a material group with only a diffuse texture.
const flatVertex = `//@oxy:include vertex
//@oxy:include camera
//@oxy:provider 0 0 camera
//@oxy:group 0 0 storage_uniform camera camera

@vertex
fn vs_main(v: VertexInput) -> @builtin(position) vec4<f32> {
    return camera.view_proj * vec4<f32>(v.position, 1.0);
}
`

const flatFragment = `//@oxy:include camera
//@oxy:group 0 0 storage_uniform camera camera
//@oxy:provider 2 0 material diffuse_texture
@group(2) @binding(0) var diffuse_texture: texture_2d<f32>;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return camera.view_proj[0];
}
`

const unlitFragment = `@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.RGBA{0, 255, 0, 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// writeAssets lays out the manifest and its files in a temp dir and returns the manifest path.
func writeAssets(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "bricks.png"))
	writePNG(t, filepath.Join(dir, "bricks_n.png"))
	if err := os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(triangleOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "manifest.toml")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newStore(t *testing.T, extra ...pipeline.Pipeline) (assets.Store, *gputest.Backend) {
	t.Helper()
	pipelines := append(frame.BuiltinPipelines(), extra...)
	r, backend, err := gputest.NewRenderer(640, 480, renderer.WithPipelines(pipelines...))
	if err != nil {
		t.Fatal(err)
	}
	s := assets.NewStore(r, assets.WithDecodeWorkers(3))
	t.Cleanup(s.Release)
	return s, backend
}

func bindGroupFor(b *gputest.Backend, label string) (gputest.BindGroupInit, bool) {
	for i := len(b.BindGroups) - 1; i >= 0; i-- {
		if b.BindGroups[i].Label == label {
			return b.BindGroups[i], true
		}
	}
	return gputest.BindGroupInit{}, false
}

func TestInitializeLoadsBuiltinsAndManifest(t *testing.T) {
	s, backend := newStore(t)
	if err := s.Initialize(writeAssets(t, manifestTOML)); err != nil {
		t.Fatal(err)
	}

	meshes, materials, textures := s.Registry().Counts()
	if meshes != 3 || materials != 3 || textures != 4 {
		t.Fatalf("counts = %d meshes, %d materials, %d textures", meshes, materials, textures)
	}
	for _, name := range []string{assets.BuiltinCube, assets.BuiltinSphere, "tri"} {
		id, err := s.ResolveMesh(name)
		if err != nil {
			t.Fatal(err)
		}
		if s.Mesh(id).Model.IndexCount() == 0 {
			t.Fatalf("mesh %s has no indices", name)
		}
	}

	formats := map[string]wgpu.TextureFormat{}
	for _, up := range backend.Textures {
		formats[up.Label] = up.Format
	}
	if formats["texture:bricks"] != wgpu.TextureFormatRGBA8UnormSrgb {
		t.Fatalf("color texture uploaded as %v", formats["texture:bricks"])
	}
	if formats["texture:bricks_n"] != wgpu.TextureFormatRGBA8Unorm {
		t.Fatalf("normal map uploaded as %v", formats["texture:bricks_n"])
	}
	if formats["texture:"+assets.DefaultNormalTexture] != wgpu.TextureFormatRGBA8Unorm {
		t.Fatal("default normal is not linear")
	}

	texID, _ := s.ResolveTexture("bricks")
	if tex := s.Texture(texID); tex.Width != 4 || tex.Height != 2 {
		t.Fatalf("bricks = %dx%d", tex.Width, tex.Height)
	}
}

func TestInitializeWithoutManifest(t *testing.T) {
	s, _ := newStore(t)
	if err := s.Initialize(""); err != nil {
		t.Fatal(err)
	}
	meshes, materials, textures := s.Registry().Counts()
	if meshes != 2 || materials != 1 || textures != 2 {
		t.Fatalf("built-in counts = %d, %d, %d", meshes, materials, textures)
	}

	id, err := s.ResolveMaterial(assets.DefaultMaterial)
	if err != nil {
		t.Fatal(err)
	}
	mat := s.Material(id)
	if mat.PipelineName != assets.DefaultPipeline || mat.Uniform.Roughness != 0.5 {
		t.Fatalf("default material = %+v", mat.Uniform)
	}
}

func TestMaterialBindsDefaultNormal(t *testing.T) {
	s, backend := newStore(t)
	if err := s.Initialize(writeAssets(t, manifestTOML)); err != nil {
		t.Fatal(err)
	}

	defaultNormal, _ := s.ResolveTexture(assets.DefaultNormalTexture)
	bricks, _ := s.ResolveTexture("bricks")
	bricksN, _ := s.ResolveTexture("bricks_n")

	plain, ok := bindGroupFor(backend, "material:plain")
	if !ok {
		t.Fatal("no bind group for material plain")
	}
	if plain.Views[material.BindingDiffuse] != s.Texture(bricks).View() {
		t.Fatal("plain diffuse is not the bricks view")
	}
	if plain.Views[material.BindingNormal] != s.Texture(defaultNormal).View() {
		t.Fatal("material without a normal map did not bind the default normal")
	}
	if plain.Samplers[material.BindingSampler] == nil {
		t.Fatal("no sampler bound")
	}

	bumpy, _ := bindGroupFor(backend, "material:bumpy")
	if bumpy.Views[material.BindingNormal] != s.Texture(bricksN).View() {
		t.Fatal("bumpy normal is not the bricks_n view")
	}
	if bumpy.Samplers[material.BindingSampler] != plain.Samplers[material.BindingSampler] {
		t.Fatal("materials do not share the default sampler")
	}
}

func TestMaterialUniformUpload(t *testing.T) {
	s, backend := newStore(t)
	if err := s.Initialize(writeAssets(t, manifestTOML)); err != nil {
		t.Fatal(err)
	}

	writes := backend.WritesFor("material:plain")
	if len(writes) != 1 {
		t.Fatalf("plain uniform writes = %d", len(writes))
	}
	w := writes[0]
	if w.Binding != material.BindingParams || len(w.Data) != 16 {
		t.Fatalf("write = binding %d, %d bytes", w.Binding, len(w.Data))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(w.Data[0:4])); got != 0.25 {
		t.Fatalf("roughness = %f", got)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	s, _ := newStore(t)
	path := writeAssets(t, manifestTOML)
	if err := s.Initialize(path); err != nil {
		t.Fatal(err)
	}
	firstGen, firstID := s.Generation(), s.GenerationID()
	stale, _ := s.ResolveMaterial("bumpy")
	m1, mat1, tex1 := s.Registry().Counts()

	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	m2, mat2, tex2 := s.Registry().Counts()
	if m1 != m2 || mat1 != mat2 || tex1 != tex2 {
		t.Fatalf("counts changed across reload: %d/%d/%d -> %d/%d/%d", m1, mat1, tex1, m2, mat2, tex2)
	}
	if s.Generation() <= firstGen || s.GenerationID() == firstID {
		t.Fatal("reload did not start a new generation")
	}
	if s.Material(stale) != nil {
		t.Fatal("handle from the previous generation still dereferences")
	}
	if s.ManifestPath() != path {
		t.Fatalf("ManifestPath = %q", s.ManifestPath())
	}
}

func TestReloadReleasesPreviousGeneration(t *testing.T) {
	s, backend := newStore(t)
	if err := s.Initialize(writeAssets(t, manifestTOML)); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	// three material bind groups and their uniform buffers from the first generation
	if backend.Released["bind_group"] < 3 {
		t.Fatalf("released bind groups = %d", backend.Released["bind_group"])
	}
	if backend.Released["texture"] < 4 {
		t.Fatalf("released textures = %d", backend.Released["texture"])
	}
}

func TestInitializeFailureClearsStore(t *testing.T) {
	s, backend := newStore(t)
	backend.FailTextureUploads["texture:bricks_n"] = true

	err := s.Initialize(writeAssets(t, manifestTOML))
	if err == nil {
		t.Fatal("expected upload failure")
	}
	meshes, materials, textures := s.Registry().Counts()
	if meshes+materials+textures != 0 {
		t.Fatalf("failed initialize left %d/%d/%d assets", meshes, materials, textures)
	}
	if _, err := s.ResolveMesh(assets.BuiltinCube); !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("built-in survived a failed initialize: %v", err)
	}
}

func TestFailedUploadReleasesPartialResources(t *testing.T) {
	tests := []struct {
		name string
		fail func(b *gputest.Backend)
	}{
		{"texture", func(b *gputest.Backend) { b.FailTextureUploads["texture:bricks_n"] = true }},
		{"mesh", func(b *gputest.Backend) { b.FailMeshUploads["mesh:tri"] = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, backend := newStore(t)
			tt.fail(backend)
			if err := s.Initialize(writeAssets(t, manifestTOML)); err == nil {
				t.Fatal("expected upload failure")
			}
			for _, kind := range []string{"texture", "buffer"} {
				if backend.Created[kind] == 0 {
					t.Fatalf("no %s was created before the failure", kind)
				}
				if backend.Released[kind] != backend.Created[kind] {
					t.Fatalf("%s: released %d of %d created", kind, backend.Released[kind], backend.Created[kind])
				}
			}
		})
	}
}

func TestInitializeUnknownTexture(t *testing.T) {
	s, _ := newStore(t)
	manifest := `
[materials.broken]
pipeline = "standard"
diffuse = "nope"
`
	err := s.Initialize(writeAssets(t, manifest))
	if !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("Initialize = %v, want ErrNotFound", err)
	}
}

func TestInitializeBadMeshFile(t *testing.T) {
	s, _ := newStore(t)
	path := writeAssets(t, "[meshes]\nbad = \"bad.obj\"\n")
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), "bad.obj"), []byte("v 0 0 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Initialize(path); !errors.Is(err, model.ErrInvalidMesh) {
		t.Fatalf("Initialize = %v, want ErrInvalidMesh", err)
	}
}

func TestCreateMaterialLayoutMismatch(t *testing.T) {
	flat := pipeline.NewPipeline("flat",
		pipeline.WithVertexShader(shader.MustCompile("flat.vert", shader.ShaderTypeVertex, flatVertex)),
		pipeline.WithFragmentShader(shader.MustCompile("flat.frag", shader.ShaderTypeFragment, flatFragment)),
	)
	unlit := pipeline.NewPipeline("unlit",
		pipeline.WithVertexShader(shader.MustCompile("unlit.vert", shader.ShaderTypeVertex, flatVertex)),
		pipeline.WithFragmentShader(shader.MustCompile("unlit.frag", shader.ShaderTypeFragment, unlitFragment)),
	)
	s, _ := newStore(t, flat, unlit)
	if err := s.Initialize(""); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"flat", "unlit"} {
		_, err := s.CreateMaterial("m_"+key, assets.MaterialConfig{Pipeline: key, Diffuse: assets.DefaultWhiteTexture})
		if !errors.Is(err, assets.ErrLayoutMismatch) {
			t.Fatalf("CreateMaterial on %s = %v, want ErrLayoutMismatch", key, err)
		}
	}
	if _, err := s.ResolveMaterial("m_flat"); !errors.Is(err, assets.ErrNotFound) {
		t.Fatal("mismatched material was registered")
	}

	_, err := s.CreateMaterial("ghost", assets.MaterialConfig{Pipeline: "missing", Diffuse: assets.DefaultWhiteTexture})
	if !errors.Is(err, renderer.ErrPipelineNotFound) {
		t.Fatalf("CreateMaterial on unknown pipeline = %v", err)
	}
}

func TestCreateRuntimeAssets(t *testing.T) {
	s, _ := newStore(t)
	if err := s.Initialize(""); err != nil {
		t.Fatal(err)
	}

	texID, err := s.CreateSolidTexture("red", [4]byte{255, 0, 0, 255}, wgpu.TextureFormatRGBA8UnormSrgb)
	if err != nil {
		t.Fatal(err)
	}
	matID, err := s.CreateMaterial("red", assets.MaterialConfig{Pipeline: "standard", Diffuse: "red", Metallic: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if mat := s.Material(matID); mat.Diffuse != texID {
		t.Fatal("material diffuse handle is not the created texture")
	}

	vertices, indices := assets.Cube()
	if _, err := s.CreateMesh("box", vertices, indices); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateMesh("broken", vertices, indices[:4]); !errors.Is(err, model.ErrInvalidMesh) {
		t.Fatalf("CreateMesh with a partial triangle = %v", err)
	}
}
