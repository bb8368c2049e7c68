// Package gputest provides a GPU-free renderer backend that records every call, for tests of the
// asset store, uniform bridge and frame renderer.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureUpload records one InitTextureView call.
type TextureUpload struct {
	Label   string
	Binding int
	Format  wgpu.TextureFormat
	Width   uint32
	Height  uint32
}

// BindGroupInit records one InitBindGroup call.
type BindGroupInit struct {
	Label string
	// Views holds the texture view bound at each texture binding.
	Views map[int]*wgpu.TextureView
	// Samplers holds the sampler bound at each sampler binding.
	Samplers map[int]*wgpu.Sampler
	// BufferSizes holds the size of each buffer created for the bind group.
	BufferSizes map[int]uint64
	BindGroup   *wgpu.BindGroup
}

// Write records one buffer write.
type Write struct {
	Label   string
	Binding int
	Offset  uint64
	Data    []byte
}

// Draw records one Draw call.
type Draw struct {
	Pipeline      string
	BindGroups    map[int]*wgpu.BindGroup
	IndexCount    int
	InstanceCount uint32
	FirstInstance uint32
	// Pass is the index into Backend.Passes of the pass the draw was recorded in.
	Pass int
}

// Backend is a recording renderer.RendererBackend. GPU objects are zero-valued placeholders that are
// never passed to wgpu, so releasing them only bumps counters.
type Backend struct {
	mu sync.Mutex

	// AcquireErrors are returned by successive AcquireSurface calls before it starts succeeding.
	AcquireErrors []error
	// FailTextureUploads makes InitTextureView fail for labels in the set after the texture was created.
	FailTextureUploads map[string]bool
	// FailMeshUploads makes InitMeshBuffers fail for labels in the set after the buffers were created.
	FailMeshUploads map[string]bool

	Events        []string
	Configures    [][2]int
	Pipelines     []string
	Textures      []TextureUpload
	BindGroups    []BindGroupInit
	Meshes        []string
	Writes        []Write
	Passes        []renderer.PassDescriptor
	Draws         []Draw
	Released      map[string]int
	Created       map[string]int
	PresentMode   renderer.PresentMode
	surfaceWidth  int
	surfaceHeight int
	inFrame       bool
	inPass        bool
}

var _ renderer.RendererBackend = &Backend{}

// NewBackend returns an empty recording backend.
func NewBackend() *Backend {
	return &Backend{
		Released:           make(map[string]int),
		Created:            make(map[string]int),
		FailTextureUploads: make(map[string]bool),
		FailMeshUploads:    make(map[string]bool),
	}
}

// NewRenderer returns a renderer driving a new recording backend at the given surface size.
func NewRenderer(width, height int, opts ...renderer.RendererBuilderOption) (renderer.Renderer, *Backend, error) {
	b := NewBackend()
	r, err := renderer.NewRendererWithBackend(b, width, height, opts...)
	return r, b, err
}

func (b *Backend) event(format string, args ...any) {
	b.Events = append(b.Events, fmt.Sprintf(format, args...))
}

// ResetFrame clears the per-frame recordings and keeps the resource recordings.
func (b *Backend) ResetFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = nil
	b.Writes = nil
	b.Passes = nil
	b.Draws = nil
}

// WritesFor returns the writes made to the provider with the given label.
func (b *Backend) WritesFor(label string) []Write {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Write
	for _, w := range b.Writes {
		if w.Label == label {
			out = append(out, w)
		}
	}
	return out
}

func (b *Backend) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surfaceWidth, b.surfaceHeight = width, height
	b.Configures = append(b.Configures, [2]int{width, height})
	b.event("configure %dx%d", width, height)
	return nil
}

func (b *Backend) SurfaceSize() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceWidth, b.surfaceHeight
}

func (b *Backend) DepthExtent() (int, int) {
	return b.SurfaceSize()
}

func (b *Backend) SurfaceFormat() wgpu.TextureFormat {
	return wgpu.TextureFormatBGRA8UnormSrgb
}

func (b *Backend) SetPresentMode(mode renderer.PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.PresentMode = mode
}

func (b *Backend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for g := 0; g < p.GroupCount(); g++ {
		p.SetBindGroupLayout(g, new(wgpu.BindGroupLayout))
	}
	p.SetRenderPipeline(new(wgpu.RenderPipeline))
	b.Pipelines = append(b.Pipelines, p.PipelineKey())
	return nil
}

func (b *Backend) ReleaseRenderPipeline(p pipeline.Pipeline) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p.SetRenderPipeline(nil)
	b.Released["pipeline"]++
}

func (b *Backend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(vertexData) == 0 || len(indexData) == 0 {
		return errors.New("mesh buffers need vertex and index data")
	}
	provider.SetMeshBuffers(new(wgpu.Buffer), uint64(len(vertexData)), new(wgpu.Buffer), uint64(len(indexData)))
	b.Created["buffer"] += 2
	if b.FailMeshUploads[provider.Label()] {
		return fmt.Errorf("mesh %s: injected upload failure", provider.Label())
	}
	provider.SetIndexCount(indexCount)
	b.Meshes = append(b.Meshes, provider.Label())
	return nil
}

func (b *Backend) WriteMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if provider.VertexBuffer() == nil {
		return fmt.Errorf("%s has no mesh buffers to write", provider.Label())
	}
	provider.SetIndexCount(indexCount)
	b.event("mesh %s", provider.Label())
	return nil
}

func (b *Backend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(descriptor.Entries) == 0 {
		return nil
	}
	if provider.BindGroupLayout() == nil {
		provider.SetBindGroupLayout(new(wgpu.BindGroupLayout))
	}

	rec := BindGroupInit{
		Label:       provider.Label(),
		Views:       make(map[int]*wgpu.TextureView),
		Samplers:    make(map[int]*wgpu.Sampler),
		BufferSizes: make(map[int]uint64),
	}
	for _, entry := range descriptor.Entries {
		binding := int(entry.Binding)
		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("%s: texture binding %d has no texture view", provider.Label(), binding)
			}
			rec.Views[binding] = tv
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			s := provider.Sampler(binding)
			if s == nil {
				return fmt.Errorf("%s: sampler binding %d has no sampler", provider.Label(), binding)
			}
			rec.Samplers[binding] = s
		default:
			size := entry.Buffer.MinBindingSize
			if override, ok := bufferSizeOverrides[binding]; ok {
				size = override
			}
			if provider.Buffer(binding) == nil {
				provider.SetBuffer(binding, new(wgpu.Buffer))
				b.Created["buffer"]++
			}
			rec.BufferSizes[binding] = size
		}
	}
	bg := new(wgpu.BindGroup)
	provider.SetBindGroup(bg)
	rec.BindGroup = bg
	b.BindGroups = append(b.BindGroups, rec)
	return nil
}

func (b *Backend) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if uint32(len(stagingData.Pixels)) != stagingData.Width*stagingData.Height*4 {
		return fmt.Errorf("texture %s: %d bytes for %dx%d", provider.Label(), len(stagingData.Pixels), stagingData.Width, stagingData.Height)
	}
	provider.SetTexture(binding, new(wgpu.Texture), new(wgpu.TextureView))
	b.Created["texture"]++
	if b.FailTextureUploads[provider.Label()] {
		return fmt.Errorf("texture %s: injected upload failure", provider.Label())
	}
	b.Textures = append(b.Textures, TextureUpload{
		Label:   provider.Label(),
		Binding: binding,
		Format:  common.Coalesce(stagingData.Format, wgpu.TextureFormatRGBA8UnormSrgb),
		Width:   stagingData.Width,
		Height:  stagingData.Height,
	})
	return nil
}

func (b *Backend) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, _ common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	provider.SetSampler(binding, new(wgpu.Sampler))
	return nil
}

func (b *Backend) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range writes {
		if w.Provider.Buffer(w.Binding) == nil {
			return fmt.Errorf("%s has no buffer at binding %d", w.Provider.Label(), w.Binding)
		}
		b.Writes = append(b.Writes, Write{
			Label:   w.Provider.Label(),
			Binding: w.Binding,
			Offset:  w.Offset,
			Data:    append([]byte(nil), w.Data...),
		})
		b.event("write %s", w.Provider.Label())
	}
	return nil
}

func (b *Backend) AcquireSurface() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.AcquireErrors) > 0 {
		err := b.AcquireErrors[0]
		b.AcquireErrors = b.AcquireErrors[1:]
		if err != nil {
			b.event("acquire failed")
			return err
		}
	}
	if b.inFrame {
		return errors.New("previous frame surface not yet presented")
	}
	b.inFrame = true
	b.event("acquire")
	return nil
}

func (b *Backend) BeginEncoder() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		return renderer.ErrNoFrame
	}
	b.event("encoder")
	return nil
}

func (b *Backend) BeginPass(desc renderer.PassDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		return renderer.ErrNoFrame
	}
	b.inPass = true
	b.Passes = append(b.Passes, desc)
	b.event("pass %s", desc.Label)
	return nil
}

func (b *Backend) Draw(call renderer.DrawCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inPass {
		return renderer.ErrNoFrame
	}
	if call.Pipeline.RenderPipeline() == nil {
		return fmt.Errorf("pipeline %s is not registered", call.Pipeline.PipelineKey())
	}
	groups := make(map[int]*wgpu.BindGroup, len(call.BindGroups))
	for g, p := range call.BindGroups {
		groups[g] = p.BindGroup()
	}
	b.Draws = append(b.Draws, Draw{
		Pipeline:      call.Pipeline.PipelineKey(),
		BindGroups:    groups,
		IndexCount:    call.Mesh.IndexCount(),
		InstanceCount: max(call.InstanceCount, 1),
		FirstInstance: call.FirstInstance,
		Pass:          len(b.Passes) - 1,
	})
	b.event("draw %s", call.Pipeline.PipelineKey())
	return nil
}

func (b *Backend) EndPass() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inPass {
		b.inPass = false
		b.event("end pass")
	}
}

func (b *Backend) Submit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		return renderer.ErrNoFrame
	}
	b.event("submit")
	return nil
}

func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		return
	}
	b.inFrame = false
	b.event("present")
}

func (b *Backend) AbortFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inFrame, b.inPass = false, false
	b.event("abort")
}

func (b *Backend) release(kind string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Released[kind]++
}

func (b *Backend) ReleaseBuffer(*wgpu.Buffer)                   { b.release("buffer") }
func (b *Backend) ReleaseTexture(*wgpu.Texture)                 { b.release("texture") }
func (b *Backend) ReleaseTextureView(*wgpu.TextureView)         { b.release("view") }
func (b *Backend) ReleaseSampler(*wgpu.Sampler)                 { b.release("sampler") }
func (b *Backend) ReleaseBindGroup(*wgpu.BindGroup)             { b.release("bind_group") }
func (b *Backend) ReleaseBindGroupLayout(*wgpu.BindGroupLayout) { b.release("layout") }
