package renderer

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/logging"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var log = logging.With("renderer")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend
	// closeBackend tears down the device and surface when the renderer owns a real backend
	closeBackend func()

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingPipelines     []pipeline.Pipeline
}

// SurfaceSource is anything a wgpu surface can be created for, typically the engine window.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed to simplify rendering tasks into a streamlined and idiomatic flow.
// The Renderer owns the pipeline cache and forwards every GPU operation to its backend, which allows a
// recording backend to stand in for the GPU in tests.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// LookupPipeline retrieves a registered Pipeline or a wrapped ErrPipelineNotFound.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline
	//   - error: ErrPipelineNotFound wrapped with the key if it is not cached
	LookupPipeline(key string) (pipeline.Pipeline, error)

	// Pipelines returns a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines compiles each pipeline through the backend and caches it by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface and depth texture. A zero width or height is ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the surface could not be reconfigured
	Resize(width, height int) error

	// SurfaceSize returns the configured surface size, zeros before the first configuration.
	SurfaceSize() (width, height int)

	// DepthExtent returns the size of the depth texture.
	DepthExtent() (width, height int)

	// SetPresentMode changes the present mode. It takes effect on the next Resize.
	SetPresentMode(mode PresentMode)

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// UpdateMeshBuffers rewrites a provider's mesh in place when it fits the existing buffers and
	// reallocates larger buffers otherwise. Used for geometry that changes every frame, such as the UI.
	//
	// Parameters:
	//   - provider: the mesh provider
	//   - vertexData: the raw vertex data bytes
	//   - indexData: the raw index data bytes
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if the upload fails
	UpdateMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates GPU buffers and a bind group from a layout descriptor and stores them
	// on the given BindGroupProvider. Textures and samplers must be initialized via InitTextureView
	// and InitSampler (or shared in) before calling this method.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferSizeOverrides: custom buffer sizes to use instead of MinBindingSize, keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// InitTextureView creates a GPU texture from staging data and stores it with its view
	// on the given BindGroupProvider at the specified binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the binding index for this texture
	//   - stagingData: the pixel data, dimensions and format for the texture
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a GPU sampler from staging data and stores it on the given BindGroupProvider
	// at the specified binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	//
	// Returns:
	//   - error: an error if a target buffer is missing or the write fails
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// ReleaseProvider frees every GPU object the provider owns.
	ReleaseProvider(provider bind_group_provider.BindGroupProvider)

	// AcquireSurface acquires the next swapchain image.
	AcquireSurface() error

	// BeginEncoder starts recording the frame's commands.
	BeginEncoder() error

	// BeginPass starts a render pass.
	BeginPass(desc PassDescriptor) error

	// Draw records an indexed draw into the current pass.
	Draw(call DrawCall) error

	// EndPass ends the current render pass.
	EndPass()

	// Submit submits the recorded commands.
	Submit() error

	// Present presents the acquired image.
	Present()

	// AbortFrame drops the frame in progress without submitting it.
	AbortFrame()

	// Backend returns the backend the renderer drives. Its Releaser methods are used by providers.
	Backend() RendererBackend

	// Release releases every cached pipeline and, for a wgpu renderer, the device and surface.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer on a new GPU device for the given surface source and configures the
// surface at the source's size.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - source: the window the surface is created for
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured Renderer
//   - error: an error if the device, surface or a pre-registered pipeline could not be created
func NewRenderer(backendType RendererBackendType, source SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(options...)
	r.backendType = backendType

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		b, err := newWGPURendererBackend(source.SurfaceDescriptor(), r.forceFallbackAdapter)
		if err != nil {
			return nil, err
		}
		r.backend = b
		r.closeBackend = b.release
	}

	if err := r.setup(source.Width(), source.Height()); err != nil {
		return nil, err
	}
	return r, nil
}

// NewRendererWithBackend creates a Renderer over an existing backend and configures its surface.
//
// Parameters:
//   - backend: the backend to drive
//   - width: the initial surface width
//   - height: the initial surface height
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured Renderer
//   - error: an error if the surface or a pre-registered pipeline could not be created
func NewRendererWithBackend(backend RendererBackend, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(options...)
	r.backend = backend
	if err := r.setup(width, height); err != nil {
		return nil, err
	}
	return r, nil
}

func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) setup(width, height int) error {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if err := r.Resize(width, height); err != nil {
		return err
	}
	if err := r.RegisterPipelines(r.pendingPipelines...); err != nil {
		return err
	}
	r.pendingPipelines = nil
	return nil
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("configure surface %dx%d: %w", width, height, err)
	}
	log.Debug("surface configured at %dx%d", width, height)
	return nil
}

func (r *renderer) SurfaceSize() (int, int) {
	return r.backend.SurfaceSize()
}

func (r *renderer) DepthExtent() (int, int) {
	return r.backend.DepthExtent()
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) LookupPipeline(key string) (pipeline.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pipelineCache[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPipelineNotFound, key)
	}
	return p, nil
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %s: %w", key, err)
		}
		r.pipelineCache[key] = p
		log.Debug("registered pipeline %s with %d bind groups", key, p.GroupCount())
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) UpdateMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	vertexCap, indexCap := provider.MeshCapacity()
	if provider.VertexBuffer() != nil && uint64(len(vertexData)) <= vertexCap && uint64(len(indexData)) <= indexCap {
		return r.backend.WriteMeshBuffers(provider, vertexData, indexData, indexCount)
	}

	provider.Release(r.backend)
	return r.backend.InitMeshBuffers(provider, growBuffer(vertexData), growBuffer(indexData), indexCount)
}

// growBuffer pads data with zeros up to the next power of two (at least 4 KiB) so a growing mesh
// does not reallocate every frame.
func growBuffer(data []byte) []byte {
	size := max(len(data), 4096)
	if size&(size-1) != 0 {
		size = 1 << bits.Len(uint(size))
	}
	out := make([]byte, size)
	copy(out, data)
	return out
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferSizeOverrides)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	return r.backend.WriteBuffers(writes)
}

func (r *renderer) ReleaseProvider(provider bind_group_provider.BindGroupProvider) {
	provider.Release(r.backend)
}

func (r *renderer) AcquireSurface() error {
	return r.backend.AcquireSurface()
}

func (r *renderer) BeginEncoder() error {
	return r.backend.BeginEncoder()
}

func (r *renderer) BeginPass(desc PassDescriptor) error {
	return r.backend.BeginPass(desc)
}

func (r *renderer) Draw(call DrawCall) error {
	return r.backend.Draw(call)
}

func (r *renderer) EndPass() {
	r.backend.EndPass()
}

func (r *renderer) Submit() error {
	return r.backend.Submit()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) AbortFrame() {
	r.backend.AbortFrame()
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		r.backend.ReleaseRenderPipeline(p)
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()

	if r.closeBackend != nil {
		r.closeBackend()
		r.closeBackend = nil
	}
}
