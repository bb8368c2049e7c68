package renderer_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-render/internal/gputest"
)

const vertexSource = `//@oxy:include vertex
//@oxy:include camera
//@oxy:provider 0 0 camera
//@oxy:group 0 0 storage_uniform camera camera

@vertex
fn vs_main(v: VertexInput) -> @builtin(position) vec4<f32> {
    return camera.view_proj * vec4<f32>(v.position, 1.0);
}
`

const fragmentSource = `@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

func testPipeline(key string) pipeline.Pipeline {
	return pipeline.NewPipeline(key,
		pipeline.WithVertexShader(shader.MustCompile(key+".vert", shader.ShaderTypeVertex, vertexSource)),
		pipeline.WithFragmentShader(shader.MustCompile(key+".frag", shader.ShaderTypeFragment, fragmentSource)),
	)
}

func TestResizeIgnoresZeroDimensions(t *testing.T) {
	r, backend, err := gputest.NewRenderer(1280, 720)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Resize(0, 600); err != nil {
		t.Fatalf("Resize(0, 600) = %v", err)
	}
	if w, h := r.SurfaceSize(); w != 1280 || h != 720 {
		t.Fatalf("surface after zero resize = %dx%d", w, h)
	}
	if len(backend.Configures) != 1 {
		t.Fatalf("zero resize reconfigured the surface: %v", backend.Configures)
	}

	if err := r.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	if w, h := r.SurfaceSize(); w != 800 || h != 600 {
		t.Fatalf("surface = %dx%d, want 800x600", w, h)
	}
	if w, h := r.DepthExtent(); w != 800 || h != 600 {
		t.Fatalf("depth extent = %dx%d, want 800x600", w, h)
	}
}

func TestPipelineCache(t *testing.T) {
	r, backend, err := gputest.NewRenderer(640, 480, renderer.WithPipelines(testPipeline("standard")))
	if err != nil {
		t.Fatal(err)
	}

	p, err := r.LookupPipeline("standard")
	if err != nil {
		t.Fatal(err)
	}
	if p.RenderPipeline() == nil || p.BindGroupLayout(0) == nil {
		t.Fatal("registered pipeline has no GPU objects")
	}

	// re-registering the same key is skipped
	if err := r.RegisterPipelines(testPipeline("standard")); err != nil {
		t.Fatal(err)
	}
	if len(backend.Pipelines) != 1 {
		t.Fatalf("compiled %d times, want once", len(backend.Pipelines))
	}

	if r.Pipeline("missing") != nil {
		t.Fatal("Pipeline returned a value for an unknown key")
	}
	if _, err := r.LookupPipeline("missing"); !errors.Is(err, renderer.ErrPipelineNotFound) {
		t.Fatalf("LookupPipeline(missing) = %v, want ErrPipelineNotFound", err)
	}

	r.Release()
	if len(r.Pipelines()) != 0 || backend.Released["pipeline"] != 1 {
		t.Fatalf("release left %d pipelines, released %d", len(r.Pipelines()), backend.Released["pipeline"])
	}
}

func TestUpdateMeshBuffersReusesCapacity(t *testing.T) {
	r, backend, err := gputest.NewRenderer(640, 480)
	if err != nil {
		t.Fatal(err)
	}
	mesh := bind_group_provider.NewBindGroupProvider("ui mesh")

	if err := r.UpdateMeshBuffers(mesh, make([]byte, 64), make([]byte, 24), 6); err != nil {
		t.Fatal(err)
	}
	if v, i := mesh.MeshCapacity(); v != 4096 || i != 4096 {
		t.Fatalf("capacity = %d/%d, want 4096/4096", v, i)
	}
	if err := r.UpdateMeshBuffers(mesh, make([]byte, 128), make([]byte, 48), 12); err != nil {
		t.Fatal(err)
	}
	if len(backend.Meshes) != 1 || mesh.IndexCount() != 12 {
		t.Fatalf("allocations = %d, index count = %d", len(backend.Meshes), mesh.IndexCount())
	}

	if err := r.UpdateMeshBuffers(mesh, make([]byte, 5000), make([]byte, 48), 12); err != nil {
		t.Fatal(err)
	}
	if v, _ := mesh.MeshCapacity(); v != 8192 {
		t.Fatalf("grown vertex capacity = %d, want 8192", v)
	}
	if backend.Released["buffer"] != 2 {
		t.Fatalf("released %d buffers on growth, want 2", backend.Released["buffer"])
	}
}

func TestParsePresentMode(t *testing.T) {
	tests := []struct {
		name string
		want renderer.PresentMode
		err  bool
	}{
		{"", renderer.PresentModeMailbox, false},
		{"Mailbox", renderer.PresentModeMailbox, false},
		{"vsync", renderer.PresentModeVSync, false},
		{"uncapped", renderer.PresentModeUncapped, false},
		{"sometimes", renderer.PresentModeMailbox, true},
	}
	for _, tt := range tests {
		got, err := renderer.ParsePresentMode(tt.name)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParsePresentMode(%q) = %v, %v", tt.name, got, err)
		}
	}
}
