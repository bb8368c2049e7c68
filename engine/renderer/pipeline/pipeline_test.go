package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
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

const fragmentSource = `//@oxy:include camera
//@oxy:group 0 0 storage_uniform camera camera
//@oxy:provider 2 0 material diffuse_texture
@group(2) @binding(0) var diffuse_texture: texture_2d<f32>;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return camera.view_proj[0];
}
`

func newTestPipeline(t *testing.T, opts ...PipelineBuilderOption) Pipeline {
	t.Helper()
	vs := shader.MustCompile("test.vert", shader.ShaderTypeVertex, vertexSource)
	fs := shader.MustCompile("test.frag", shader.ShaderTypeFragment, fragmentSource)
	return NewPipeline("test", append([]PipelineBuilderOption{WithVertexShader(vs), WithFragmentShader(fs)}, opts...)...)
}

func TestNewPipelineMergesStages(t *testing.T) {
	p := newTestPipeline(t)

	if p.GroupCount() != 3 {
		t.Fatalf("group count = %d, want 3", p.GroupCount())
	}
	if p.HasGroup(1) || !p.HasGroup(2) {
		t.Fatalf("HasGroup(1)=%v HasGroup(2)=%v", p.HasGroup(1), p.HasGroup(2))
	}
	camera, _ := p.BindGroupLayoutDescriptor(0)
	if len(camera.Entries) != 1 || camera.Entries[0].Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
		t.Fatalf("camera entries = %+v", camera.Entries)
	}
	if g, ok := p.GroupFor(shader.AnnotationArgMaterial); !ok || g != 2 {
		t.Fatalf("material group = %d, %v", g, ok)
	}
	if _, ok := p.GroupFor(shader.AnnotationArgModel); ok {
		t.Fatal("model group reported for a pipeline that never declares it")
	}
	if len(p.VertexLayouts()) != 1 {
		t.Fatalf("vertex layouts = %d", len(p.VertexLayouts()))
	}
}

func TestPipelineOptions(t *testing.T) {
	p := newTestPipeline(t, WithDepth(false, true), WithCullMode(wgpu.CullModeNone), WithAlphaBlending(true))
	if p.DepthTestEnabled() || p.DepthWriteEnabled() {
		t.Fatal("depth write enabled without depth test")
	}
	if p.CullMode() != wgpu.CullModeNone {
		t.Fatalf("cull mode = %v", p.CullMode())
	}
	if p.BlendState() == nil || p.BlendState().Color.SrcFactor != wgpu.BlendFactorOne {
		t.Fatalf("blend state = %+v", p.BlendState())
	}

	def := newTestPipeline(t)
	if !def.DepthTestEnabled() || def.BlendState() != nil || def.CullMode() != wgpu.CullModeBack {
		t.Fatal("unexpected defaults")
	}
}
