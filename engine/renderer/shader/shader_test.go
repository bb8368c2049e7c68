package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

const testVertexSource = `//@oxy:include vertex
//@oxy:include camera
//@oxy:include model_data

//@oxy:provider 0 0 camera
//@oxy:group 0 0 storage_uniform camera camera
//@oxy:provider 3 0 model
//@oxy:group 3 0 storage_read models array<model_data>

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

/* block comments /* nest */ and are ignored: @group(9) @binding(9) var<uniform> ghost: f32; */
@vertex
fn vs_main(v: VertexInput, @builtin(instance_index) i: u32) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = camera.view_proj * models[i].model * vec4<f32>(v.position, 1.0);
    out.uv = v.uv;
    return out;
}
`

const testFragmentSource = `//@oxy:include light_instance
//@oxy:include global_light_data
//@oxy:include material_params

//@oxy:group 1 0 storage_uniform lights global_light_data
//@oxy:provider 2 0 material diffuse_texture
@group(2) @binding(0) var diffuse_texture: texture_2d<f32>;
//@oxy:provider 2 1 material sampler
@group(2) @binding(1) var material_sampler: sampler;
//@oxy:group 2 2 storage_uniform params material_params
@group(2) @binding(3) var normal_texture: texture_2d<f32>;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(diffuse_texture, material_sampler, uv) * params.roughness;
}
`

func TestNewShaderVertexReflection(t *testing.T) {
	s, err := NewShader("standard.vert", ShaderTypeVertex, testVertexSource)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if s.EntryPoint() != "vs_main" {
		t.Fatalf("entry point = %q", s.EntryPoint())
	}
	if !strings.Contains(s.Source(), "@group(0) @binding(0) var<uniform> camera: CameraUniform;") {
		t.Fatalf("camera declaration not generated:\n%s", s.Source())
	}
	if !strings.Contains(s.Source(), "var<storage, read> models: array<ModelData>;") {
		t.Fatalf("model declaration not generated")
	}

	layouts := s.VertexLayouts()
	if len(layouts) != 1 {
		t.Fatalf("vertex layouts = %d, want 1", len(layouts))
	}
	want := model.VertexBufferLayout()
	if layouts[0].ArrayStride != want.ArrayStride || len(layouts[0].Attributes) != len(want.Attributes) {
		t.Fatalf("layout = %+v, want %+v", layouts[0], want)
	}
	for i := range want.Attributes {
		if layouts[0].Attributes[i] != want.Attributes[i] {
			t.Errorf("attribute %d = %+v, want %+v", i, layouts[0].Attributes[i], want.Attributes[i])
		}
	}

	if got := s.BindGroupLayoutDescriptor(0).Entries[0].Buffer.MinBindingSize; got != 64 {
		t.Errorf("camera min size = %d, want 64", got)
	}
	models := s.BindGroupLayoutDescriptor(3).Entries[0]
	if models.Buffer.Type != wgpu.BufferBindingTypeReadOnlyStorage || models.Buffer.MinBindingSize != 64 {
		t.Errorf("models entry = %+v", models.Buffer)
	}
	if _, ok := s.BindGroupLayoutDescriptors()[9]; ok {
		t.Error("binding inside a block comment was reflected")
	}
	if s.BindGroupVarName(3, 0) != "models" {
		t.Errorf("var name = %q", s.BindGroupVarName(3, 0))
	}

	var identities []AnnotationArg
	for _, d := range s.Declarations() {
		if id := d.Identity(); id != "" {
			identities = append(identities, id)
		}
	}
	if len(identities) != 2 || identities[0] != AnnotationArgCamera || identities[1] != AnnotationArgModel {
		t.Errorf("identities = %v", identities)
	}
}

func TestNewShaderFragmentMatchesMaterialLayout(t *testing.T) {
	s, err := NewShader("standard.frag", ShaderTypeFragment, testFragmentSource)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if len(s.VertexLayouts()) != 0 {
		t.Fatal("fragment shader reported vertex layouts")
	}
	if got := s.BindGroupLayoutDescriptor(1).Entries[0].Buffer.MinBindingSize; got != 1088 {
		t.Errorf("light data min size = %d, want 1088", got)
	}
	got := LayoutFingerprint(s.BindGroupLayoutDescriptor(material.Group))
	want := LayoutFingerprint(material.LayoutDescriptor())
	if got != want {
		t.Fatalf("fingerprint mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestLayoutFingerprintIgnoresOrderAndVisibility(t *testing.T) {
	a := wgpu.BindGroupLayoutDescriptor{Entries: []wgpu.BindGroupLayoutEntry{
		{Binding: 1, Visibility: wgpu.ShaderStageFragment, Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}},
		{Binding: 0, Visibility: wgpu.ShaderStageVertex, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 64}},
	}}
	b := wgpu.BindGroupLayoutDescriptor{Entries: []wgpu.BindGroupLayoutEntry{
		{Binding: 0, Visibility: wgpu.ShaderStageFragment, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 64}},
		{Binding: 1, Visibility: wgpu.ShaderStageVertex, Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}},
	}}
	if LayoutFingerprint(a) != LayoutFingerprint(b) {
		t.Fatalf("%s != %s", LayoutFingerprint(a), LayoutFingerprint(b))
	}
	b.Entries[0].Buffer.MinBindingSize = 16
	if LayoutFingerprint(a) == LayoutFingerprint(b) {
		t.Fatal("different buffer sizes share a fingerprint")
	}
}

func TestMergeLayoutsOrsVisibility(t *testing.T) {
	vert := map[int]wgpu.BindGroupLayoutDescriptor{0: {Entries: []wgpu.BindGroupLayoutEntry{
		{Binding: 0, Visibility: wgpu.ShaderStageVertex, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
	}}}
	frag := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
		}},
		2: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
	}
	merged := MergeLayouts(vert, frag)
	if len(merged) != 2 {
		t.Fatalf("groups = %d", len(merged))
	}
	if v := merged[0].Entries[0].Visibility; v != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
		t.Fatalf("visibility = %v", v)
	}
}

func TestParseAnnotationErrors(t *testing.T) {
	tests := []string{
		"//@oxy:",
		"//@oxy:include nothing",
		"//@oxy:group 0 0 storage_uniform camera",
		"//@oxy:group x 0 storage_uniform camera camera",
		"//@oxy:group 0 0 private camera camera",
		"//@oxy:provider 2 0 shadow",
		"//@oxy:provider 2 0 material glow",
		"//@oxy:compute 1",
	}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			if _, err := parseAnnotation(line, 1); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
	if a, err := parseAnnotation("let x = 1; // plain comment", 1); a != nil || err != nil {
		t.Fatalf("plain line parsed as %v, %v", a, err)
	}
}

func TestNewShaderRequiresEntryPoint(t *testing.T) {
	if _, err := NewShader("empty", ShaderTypeFragment, "//@oxy:include camera\n"); err == nil {
		t.Fatal("expected missing entry point error")
	}
}

func TestLayoutTableResolvesNestedStructsOutOfOrder(t *testing.T) {
	structs := parseStructs(stripComments(`
struct Outer { inner: array<Inner, 2>, flag: u32, };
struct Inner { a: vec3<f32>, b: f32, };
`))
	table := newLayoutTable(structs)
	outer, ok := table.resolve("Outer")
	if !ok {
		t.Fatal("Outer not resolved")
	}
	// Inner is 16 bytes; two of them plus a u32 rounded up to 16-byte alignment
	if outer.size != 48 || outer.align != 16 {
		t.Fatalf("Outer layout = %+v", outer)
	}
}
