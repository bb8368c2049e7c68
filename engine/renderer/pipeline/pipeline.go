package pipeline

import (
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It pairs a vertex and fragment shader with the fixed-function state used to create the GPU render pipeline.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	// layoutDescriptors are the bind group layouts of both stages merged per group
	layoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	// groupRoles maps provider identities declared in the shaders to their group index
	groupRoles map[shader.AnnotationArg]int

	// The following fields are GPU resources populated by the Renderer when the pipeline is registered.

	renderPipeline   *wgpu.RenderPipeline
	bindGroupLayouts map[int]*wgpu.BindGroupLayout

	// The following properties configure pipeline creation and are set with the builder options.

	depthTestEnabled  bool
	depthWriteEnabled bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline defines the interface for a render pipeline: a vertex and fragment shader, the bind group
// layouts they declare, and the depth, blend, cull and topology state used to compile it.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader for a stage.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderPipeline returns the compiled GPU pipeline, or nil before registration.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the render pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline sets the compiled GPU pipeline.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// VertexLayouts returns the vertex buffer layouts reflected from the vertex shader.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptors returns the layouts of both stages merged per group.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptor returns the merged layout of one group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor
	//   - bool: false if no stage declares the group
	BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool)

	// GroupCount returns one past the highest declared group index, the number of layouts the
	// pipeline layout needs.
	//
	// Returns:
	//   - int: the group count
	GroupCount() int

	// HasGroup reports whether any stage declares the group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - bool: true if declared
	HasGroup(group int) bool

	// GroupFor looks up the group that a provider identity was declared at.
	//
	// Parameters:
	//   - identity: a provider identity such as shader.AnnotationArgMaterial
	//
	// Returns:
	//   - int: the group index
	//   - bool: false if the shaders never declare the identity
	GroupFor(identity shader.AnnotationArg) (int, bool)

	// BindGroupLayout returns the GPU layout created for a group, or nil before registration.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// BindGroupLayouts returns every GPU layout keyed by group index.
	//
	// Returns:
	//   - map[int]*wgpu.BindGroupLayout: the layouts
	BindGroupLayouts() map[int]*wgpu.BindGroupLayout

	// SetBindGroupLayout stores the GPU layout created for a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - bgl: the layout
	SetBindGroupLayout(group int, bgl *wgpu.BindGroupLayout)

	// DepthTestEnabled returns whether the pipeline has a depth attachment and tests against it.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	DepthWriteEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline, or nil when blending is off.
	BlendState() *wgpu.BlendState
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render Pipeline. Both shaders should be supplied through the options; their
// layouts and provider declarations are merged once the options are applied.
// Defaults: depth test and write on, back-face culling, CCW front faces, triangle lists, no blending.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		bindGroupLayouts:  make(map[int]*wgpu.BindGroupLayout),
		groupRoles:        make(map[shader.AnnotationArg]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	var stages []map[int]wgpu.BindGroupLayoutDescriptor
	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		if s == nil {
			continue
		}
		stages = append(stages, s.BindGroupLayoutDescriptors())
		for _, d := range s.Declarations() {
			if id := d.Identity(); id != "" && d.Group != nil {
				p.groupRoles[id] = *d.Group
			}
		}
	}
	p.layoutDescriptors = shader.MergeLayouts(stages...)
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	if p.vertexShader == nil {
		return nil
	}
	return p.vertexShader.VertexLayouts()
}

func (p *pipeline) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return p.layoutDescriptors
}

func (p *pipeline) BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool) {
	desc, ok := p.layoutDescriptors[group]
	return desc, ok
}

func (p *pipeline) GroupCount() int {
	n := 0
	for g := range p.layoutDescriptors {
		n = max(n, g+1)
	}
	return n
}

func (p *pipeline) HasGroup(group int) bool {
	_, ok := p.layoutDescriptors[group]
	return ok
}

func (p *pipeline) GroupFor(identity shader.AnnotationArg) (int, bool) {
	g, ok := p.groupRoles[identity]
	return g, ok
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	return p.bindGroupLayouts[group]
}

func (p *pipeline) BindGroupLayouts() map[int]*wgpu.BindGroupLayout {
	return p.bindGroupLayouts
}

func (p *pipeline) SetBindGroupLayout(group int, bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayouts[group] = bgl
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}
