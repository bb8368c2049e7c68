package frame_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/assets"
	"github.com/Carmen-Shannon/oxy-render/engine/frame"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/ui"
	"github.com/Carmen-Shannon/oxy-render/engine/world"
	"github.com/Carmen-Shannon/oxy-render/internal/gputest"
	"github.com/go-gl/mathgl/mgl32"
)

const triangleOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
`

type fixedSize struct{ w, h int }

func (s fixedSize) Width() int  { return s.w }
func (s fixedSize) Height() int { return s.h }

type scene struct {
	r       renderer.Renderer
	backend *gputest.Backend
	store   assets.Store
	frame   frame.FrameRenderer
	world   *world.Context
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// newScene loads a manifest with texture t1, mesh m1 and material mat1 and builds a frame renderer.
func newScene(t *testing.T, opts ...frame.FrameRendererBuilderOption) *scene {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "t1.png"))
	if err := os.WriteFile(filepath.Join(dir, "m1.obj"), []byte(triangleOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	manifest := `
[textures]
t1 = "t1.png"

[meshes]
m1 = "m1.obj"

[materials.mat1]
pipeline = "standard"
diffuse = "t1"
roughness = 0.25
metallic = 1.0
`
	manifestPath := filepath.Join(dir, "manifest.toml")
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	r, backend, err := gputest.NewRenderer(1280, 720, renderer.WithPipelines(frame.BuiltinPipelines()...))
	if err != nil {
		t.Fatal(err)
	}
	store := assets.NewStore(r, assets.WithDecodeWorkers(2))
	t.Cleanup(store.Release)
	if err := store.Initialize(manifestPath); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	fr, err := frame.NewFrameRenderer(r, store, opts...)
	if err != nil {
		t.Fatalf("NewFrameRenderer: %v", err)
	}
	t.Cleanup(fr.Release)

	backend.ResetFrame()
	return &scene{r: r, backend: backend, store: store, frame: fr, world: world.NewContext()}
}

func (s *scene) spawn(t *testing.T, mesh, material string) {
	t.Helper()
	meshID, err := s.store.ResolveMesh(mesh)
	if err != nil {
		t.Fatal(err)
	}
	matID, err := s.store.ResolveMaterial(material)
	if err != nil {
		t.Fatal(err)
	}
	s.world.SpawnDrawable(world.IdentityTransform(), world.MeshRenderer{Mesh: meshID, Material: matID})
}

func worldDraws(b *gputest.Backend) []gputest.Draw {
	var out []gputest.Draw
	for _, d := range b.Draws {
		if b.Passes[d.Pass].Label == "world" {
			out = append(out, d)
		}
	}
	return out
}

func TestRenderDrawsMaterialBindGroup(t *testing.T) {
	s := newScene(t)
	s.spawn(t, "m1", "mat1")

	if err := s.frame.Render(s.world, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}

	draws := worldDraws(s.backend)
	if len(draws) != 1 {
		t.Fatalf("world draws = %d, want 1", len(draws))
	}
	d := draws[0]
	matID, _ := s.store.ResolveMaterial("mat1")
	mat := s.store.Material(matID)
	if d.Pipeline != frame.StandardPipeline {
		t.Fatalf("pipeline = %s", d.Pipeline)
	}
	if d.BindGroups[frame.MaterialGroup] != mat.Provider.BindGroup() {
		t.Fatal("group 2 is not mat1's bind group")
	}
	cam, lights, models := s.frame.Uniforms().Providers()
	if d.BindGroups[frame.CameraGroup] != cam.BindGroup() || d.BindGroups[frame.LightsGroup] != lights.BindGroup() {
		t.Fatal("camera or light group not bound")
	}
	if d.BindGroups[frame.ModelGroup] != models.BindGroup() {
		t.Fatal("model group not bound")
	}
	if d.IndexCount != 3 || d.InstanceCount != 1 || d.FirstInstance != 0 {
		t.Fatalf("draw = %+v", d)
	}
}

func TestRenderSequence(t *testing.T) {
	s := newScene(t)
	s.spawn(t, "m1", "mat1")

	if err := s.frame.Render(s.world, nil); err != nil {
		t.Fatal(err)
	}

	want := []string{"acquire", "encoder", "write camera", "write lights", "write models",
		"pass world", "draw standard", "end pass", "pass ui", "end pass", "submit", "present"}
	if got := s.backend.Events; !slices.Equal(got, want) {
		t.Fatalf("events:\n got %v\nwant %v", got, want)
	}
	if len(s.backend.Passes) != 2 || !s.backend.Passes[0].Clear || !s.backend.Passes[0].Depth || s.backend.Passes[1].Clear {
		t.Fatalf("passes = %+v", s.backend.Passes)
	}
}

func TestRenderCapsLights(t *testing.T) {
	s := newScene(t)
	for i := range 20 {
		s.world.SpawnLight(world.At(mgl32.Vec3{float32(i), 0, 0}), light.NewLight(light.LightTypePoint))
	}
	s.world.Update(0.016)

	if err := s.frame.Render(s.world, nil); err != nil {
		t.Fatal(err)
	}

	writes := s.backend.WritesFor("lights")
	if len(writes) != 1 {
		t.Fatalf("light writes = %d", len(writes))
	}
	data := writes[0].Data
	if len(data) != 1088 {
		t.Fatalf("light data = %d bytes, want 1088", len(data))
	}
	if n := binary.LittleEndian.Uint32(data[48:]); n != light.MaxLights {
		t.Fatalf("NumLights = %d, want %d", n, light.MaxLights)
	}
	// the sixteenth light sits at x = 15
	last := 64 + 15*64
	if x := binary.LittleEndian.Uint32(data[last:]); x != 0x41700000 {
		t.Fatalf("light 15 x bits = %#x, want 15.0", x)
	}
	if s.frame.Stats().Lights != light.MaxLights {
		t.Fatalf("stats lights = %d", s.frame.Stats().Lights)
	}
}

func TestRenderOutdatedSurfaceResizes(t *testing.T) {
	resized := [2]int{}
	s := newScene(t,
		frame.WithSizeSource(fixedSize{1024, 768}),
		frame.WithResizeCallback(func(w, h int) { resized = [2]int{w, h} }),
	)
	s.spawn(t, "m1", "mat1")
	s.backend.AcquireErrors = []error{fmt.Errorf("%w: surface texture outdated", renderer.ErrSurfaceOutdated)}

	if err := s.frame.Render(s.world, nil); err != nil {
		t.Fatalf("Render with outdated surface = %v, want nil", err)
	}
	if len(s.backend.Draws) != 0 {
		t.Fatalf("skipped frame drew %d times", len(s.backend.Draws))
	}
	if w, h := s.r.SurfaceSize(); w != 1024 || h != 768 {
		t.Fatalf("surface = %dx%d, want the window size", w, h)
	}
	if resized != [2]int{1024, 768} {
		t.Fatalf("resize callback got %v", resized)
	}
	if !s.frame.Stats().Skipped {
		t.Fatal("stats do not mark the frame skipped")
	}

	// the next frame renders normally
	if err := s.frame.Render(s.world, nil); err != nil {
		t.Fatal(err)
	}
	if len(worldDraws(s.backend)) != 1 {
		t.Fatalf("world draws after recovery = %d", len(worldDraws(s.backend)))
	}
}

func TestRenderReturnsOtherAcquireErrors(t *testing.T) {
	s := newScene(t)
	boom := errors.New("device lost")
	s.backend.AcquireErrors = []error{boom}

	if err := s.frame.Render(s.world, nil); !errors.Is(err, boom) {
		t.Fatalf("Render = %v, want %v", err, boom)
	}
}

func TestRenderZeroDrawablesSkipsModelWrite(t *testing.T) {
	s := newScene(t)
	if err := s.frame.Render(s.world, nil); err != nil {
		t.Fatal(err)
	}
	if w := s.backend.WritesFor("models"); len(w) != 0 {
		t.Fatalf("model writes = %d, want 0", len(w))
	}
	if len(worldDraws(s.backend)) != 0 {
		t.Fatal("drew with no drawables")
	}
}

func TestRenderTruncatesModels(t *testing.T) {
	s := newScene(t)
	for range model.MaxModelMatrices + 5 {
		s.spawn(t, "m1", "mat1")
	}

	if err := s.frame.Render(s.world, nil); err != nil {
		t.Fatal(err)
	}
	writes := s.backend.WritesFor("models")
	if len(writes) != 1 {
		t.Fatalf("model writes = %d, want 1", len(writes))
	}
	if len(writes[0].Data) != model.MaxModelMatrices*64 {
		t.Fatalf("model write = %d bytes", len(writes[0].Data))
	}
	draws := worldDraws(s.backend)
	if len(draws) != model.MaxModelMatrices {
		t.Fatalf("draws = %d, want %d", len(draws), model.MaxModelMatrices)
	}
	if last := draws[len(draws)-1].FirstInstance; last != model.MaxModelMatrices-1 {
		t.Fatalf("last first instance = %d", last)
	}
}

func TestRenderStaleHandleIsLookupError(t *testing.T) {
	s := newScene(t)
	s.spawn(t, "m1", "mat1")
	if err := s.store.Reload(); err != nil {
		t.Fatal(err)
	}
	s.backend.ResetFrame()

	err := s.frame.Render(s.world, nil)
	if !errors.Is(err, frame.ErrDrawLookup) {
		t.Fatalf("Render = %v, want ErrDrawLookup", err)
	}
	if !slices.Contains(s.backend.Events, "abort") {
		t.Fatal("failed frame was not aborted")
	}

	// the frame was abandoned, so the next acquire succeeds
	s.backend.ResetFrame()
	if err := s.r.AcquireSurface(); err != nil {
		t.Fatalf("acquire after abort: %v", err)
	}
}

func TestRenderUITextures(t *testing.T) {
	s := newScene(t)
	out := &ui.Output{
		Screen: ui.ScreenDescriptor{Width: 1280, Height: 720, Scale: 1},
		TexturesSet: []ui.TextureDelta{
			{ID: 1, Image: common.SolidTexture([4]byte{255, 255, 255, 255}, 0)},
		},
		Meshes: []ui.Mesh{{
			Texture: 1,
			Vertices: []ui.GPUVertex{
				{Position: [2]float32{0, 0}, Color: [4]float32{1, 1, 1, 1}},
				{Position: [2]float32{10, 0}, Color: [4]float32{1, 1, 1, 1}},
				{Position: [2]float32{10, 10}, Color: [4]float32{1, 1, 1, 1}},
			},
			Indices: []uint32{0, 1, 2},
		}},
	}
	if err := s.frame.Render(s.world, out); err != nil {
		t.Fatal(err)
	}
	if got := s.frame.Stats(); got.UIDraws != 1 || got.UITextures != 1 {
		t.Fatalf("stats = %+v", got)
	}

	released := s.backend.Released["texture"]
	next := &ui.Output{TexturesFree: []ui.TextureID{1}}
	if err := s.frame.Render(s.world, next); err != nil {
		t.Fatal(err)
	}
	if s.frame.Stats().UITextures != 0 {
		t.Fatal("freed UI texture still alive")
	}
	if s.backend.Released["texture"] != released+1 {
		t.Fatalf("texture releases = %d, want %d", s.backend.Released["texture"], released+1)
	}
}

func TestResizeIgnoresZero(t *testing.T) {
	s := newScene(t)
	if err := s.frame.Resize(0, 600); err != nil {
		t.Fatal(err)
	}
	if w, h := s.r.SurfaceSize(); w != 1280 || h != 720 {
		t.Fatalf("surface = %dx%d", w, h)
	}
	if w, h := s.r.DepthExtent(); w != 1280 || h != 720 {
		t.Fatalf("depth after zero resize = %dx%d", w, h)
	}
	if err := s.frame.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	if w, h := s.r.DepthExtent(); w != 800 || h != 600 {
		t.Fatalf("depth = %dx%d", w, h)
	}
}
