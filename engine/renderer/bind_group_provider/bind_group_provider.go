package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Releaser frees GPU objects on behalf of a provider. The renderer backend implements it so that every
// release goes through the backend that created the object.
type Releaser interface {
	ReleaseBuffer(buf *wgpu.Buffer)
	ReleaseTexture(tex *wgpu.Texture)
	ReleaseTextureView(tv *wgpu.TextureView)
	ReleaseSampler(s *wgpu.Sampler)
	ReleaseBindGroup(bg *wgpu.BindGroup)
	ReleaseBindGroupLayout(bgl *wgpu.BindGroupLayout)
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are GPU allocated resources and must be released when no longer needed. They are populated by the Renderer during initialization, not by user-creation.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized with the Renderer.
	bindGroup *wgpu.BindGroup
	// bindGroupLayout is the GPU bind group layout the bind group was built against, or nil if not initialized with the Renderer.
	bindGroupLayout *wgpu.BindGroupLayout
	// buffers holds the GPU buffers created for this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// textures holds the GPU textures backing textureViews, keyed by binding index.
	textures map[int]*wgpu.Texture
	// textureViews holds the GPU texture views bound by this provider, keyed by binding index.
	textureViews map[int]*wgpu.TextureView
	// samplers holds the GPU samplers bound by this provider, keyed by binding index.
	samplers map[int]*wgpu.Sampler

	// Shared resources are bound by this provider but owned elsewhere, so Release leaves them alone.

	sharedLayout       bool
	sharedTextureViews map[int]bool
	sharedSamplers     map[int]bool

	// The following fields are specific to mesh providers.

	// vertexBuffer is the GPU vertex buffer created for this provider, or nil if not initialized with the Renderer.
	vertexBuffer *wgpu.Buffer
	// indexBuffer is the GPU index buffer created for this provider, or nil if not initialized with the Renderer.
	indexBuffer *wgpu.Buffer
	// indexCount is the number of indices for draw calls, used by the Renderer to issue drawIndexed calls for this provider.
	indexCount int
	// vertexCapacity and indexCapacity are the allocated byte sizes of the mesh buffers, used to decide whether a rewrite fits.
	vertexCapacity, indexCapacity uint64
}

// BindGroupProvider defines the interface for components that require GPU bind group resources.
// Materials, textures, meshes and the per-frame uniforms each hold a BindGroupProvider to describe
// their GPU binding requirements. The Renderer then uses this provider to initialize and update GPU resources.
//
// Usage pattern:
//  1. Owner creates a BindGroupProvider with a debug label
//  2. Owner attaches any shared resources (texture views, samplers, the pipeline's layout)
//  3. Owner calls Renderer.InitBindGroup(provider, descriptor) to create the remaining GPU resources
//  4. Owner calls Renderer.WriteBuffers to update uniforms
//  5. The frame renderer reads BindGroup() for draw calls
type BindGroupProvider interface {
	// Release frees every GPU resource this provider owns through r. Shared resources are skipped.
	//
	// Parameters:
	//   - r: the releaser that frees the GPU objects, normally the renderer
	Release(r Releaser)

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the bind group layout for this provider.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer for a binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns a map of all buffers associated with this provider, keyed by binding index.
	//
	// Returns:
	//   - map[int]*wgpu.Buffer: the buffers
	Buffers() map[int]*wgpu.Buffer

	// Texture returns the texture backing the view at a binding, or nil for shared views.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Texture: the texture or nil
	Texture(binding int) *wgpu.Texture

	// TextureView returns the texture view for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the view or nil
	TextureView(binding int) *wgpu.TextureView

	// TextureViews returns all texture views keyed by binding index.
	//
	// Returns:
	//   - map[int]*wgpu.TextureView: the views
	TextureViews() map[int]*wgpu.TextureView

	// Sampler returns the sampler for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// Samplers returns all samplers keyed by binding index.
	//
	// Returns:
	//   - map[int]*wgpu.Sampler: the samplers
	Samplers() map[int]*wgpu.Sampler

	// VertexBuffer returns the vertex buffer, or nil if this is not a mesh provider.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the index buffer, or nil if this is not a mesh provider.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices drawn for this mesh.
	IndexCount() int

	// MeshCapacity returns the allocated byte sizes of the vertex and index buffers.
	//
	// Returns:
	//   - vertexBytes: size of the vertex buffer
	//   - indexBytes: size of the index buffer
	MeshCapacity() (vertexBytes, indexBytes uint64)

	// SetBindGroup sets the bind group.
	//
	// Parameters:
	//   - bg: the bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout sets an owned bind group layout.
	//
	// Parameters:
	//   - bgl: the layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// ShareBindGroupLayout sets a layout owned elsewhere, typically by a pipeline.
	//
	// Parameters:
	//   - bgl: the layout
	ShareBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer sets an owned buffer for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTexture sets an owned texture and its view for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tex: the texture
	//   - tv: the view of tex
	SetTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView)

	// ShareTextureView binds a view owned by another provider.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the view
	ShareTextureView(binding int, tv *wgpu.TextureView)

	// SetSampler sets an owned sampler for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	SetSampler(binding int, s *wgpu.Sampler)

	// ShareSampler binds a sampler owned elsewhere.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	ShareSampler(binding int, s *wgpu.Sampler)

	// SetMeshBuffers sets the vertex and index buffers with their allocated sizes.
	//
	// Parameters:
	//   - vb: the vertex buffer
	//   - vertexBytes: allocated size of vb
	//   - ib: the index buffer
	//   - indexBytes: allocated size of ib
	SetMeshBuffers(vb *wgpu.Buffer, vertexBytes uint64, ib *wgpu.Buffer, indexBytes uint64)

	// SetIndexCount sets the number of indices drawn for this mesh.
	//
	// Parameters:
	//   - count: the index count
	SetIndexCount(count int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new, empty BindGroupProvider with the given debug label and options applied.
//
// Parameters:
//   - label: the debug label used for GPU object labels
//   - options: functional options to configure the provider
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:              label,
		buffers:            make(map[int]*wgpu.Buffer),
		textures:           make(map[int]*wgpu.Texture),
		textureViews:       make(map[int]*wgpu.TextureView),
		samplers:           make(map[int]*wgpu.Sampler),
		sharedTextureViews: make(map[int]bool),
		sharedSamplers:     make(map[int]bool),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) Texture(binding int) *wgpu.Texture {
	return p.textures[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) TextureViews() map[int]*wgpu.TextureView {
	return p.textureViews
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) Samplers() map[int]*wgpu.Sampler {
	return p.samplers
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) MeshCapacity() (vertexBytes, indexBytes uint64) {
	return p.vertexCapacity, p.indexCapacity
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
	p.sharedLayout = false
}

func (p *bindGroupProvider) ShareBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
	p.sharedLayout = true
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView) {
	p.textures[binding] = tex
	p.textureViews[binding] = tv
	delete(p.sharedTextureViews, binding)
}

func (p *bindGroupProvider) ShareTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
	p.sharedTextureViews[binding] = true
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
	delete(p.sharedSamplers, binding)
}

func (p *bindGroupProvider) ShareSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
	p.sharedSamplers[binding] = true
}

func (p *bindGroupProvider) SetMeshBuffers(vb *wgpu.Buffer, vertexBytes uint64, ib *wgpu.Buffer, indexBytes uint64) {
	p.vertexBuffer, p.vertexCapacity = vb, vertexBytes
	p.indexBuffer, p.indexCapacity = ib, indexBytes
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) Release(r Releaser) {
	// the bind group references the views and buffers, so it goes first
	if p.bindGroup != nil {
		r.ReleaseBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	for i, tv := range p.textureViews {
		if tv != nil && !p.sharedTextureViews[i] {
			r.ReleaseTextureView(tv)
		}
		delete(p.textureViews, i)
	}
	for i, tex := range p.textures {
		if tex != nil {
			r.ReleaseTexture(tex)
		}
		delete(p.textures, i)
	}
	for i, s := range p.samplers {
		if s != nil && !p.sharedSamplers[i] {
			r.ReleaseSampler(s)
		}
		delete(p.samplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil {
			r.ReleaseBuffer(buf)
		}
		delete(p.buffers, i)
	}
	clear(p.sharedTextureViews)
	clear(p.sharedSamplers)

	if p.bindGroupLayout != nil && !p.sharedLayout {
		r.ReleaseBindGroupLayout(p.bindGroupLayout)
	}
	p.bindGroupLayout = nil
	p.sharedLayout = false

	if p.vertexBuffer != nil {
		r.ReleaseBuffer(p.vertexBuffer)
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		r.ReleaseBuffer(p.indexBuffer)
		p.indexBuffer = nil
	}
	p.vertexCapacity, p.indexCapacity, p.indexCount = 0, 0, 0
}
