package frame

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-render/engine/ui"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind groups of the ui pipeline.
const (
	uiScreenGroup  = 0
	uiTextureGroup = 1

	uiTextureBinding = 0
	uiSamplerBinding = 1
)

var uiSamplerStaging = common.SamplerStagingData{
	AddressModeU: wgpu.AddressModeClampToEdge,
	AddressModeV: wgpu.AddressModeClampToEdge,
	AddressModeW: wgpu.AddressModeClampToEdge,
	MagFilter:    wgpu.FilterModeLinear,
	MinFilter:    wgpu.FilterModeLinear,
	MipmapFilter: wgpu.MipmapFilterModeNearest,
}

// uiResources holds the GPU side of the overlay: the screen uniform, one bind group per UI texture and a
// pool of mesh buffers reused frame to frame.
type uiResources struct {
	r        renderer.Renderer
	pipeline pipeline.Pipeline

	screen   bind_group_provider.BindGroupProvider
	sampler  bind_group_provider.BindGroupProvider
	textures map[ui.TextureID]bind_group_provider.BindGroupProvider
	meshes   []bind_group_provider.BindGroupProvider
	// pending maps each uploaded mesh of this frame to its pool slot, -1 for skipped meshes
	pending []int
}

func newUIResources(r renderer.Renderer, p pipeline.Pipeline) (*uiResources, error) {
	u := &uiResources{
		r:        r,
		pipeline: p,
		textures: make(map[ui.TextureID]bind_group_provider.BindGroupProvider),
	}

	desc, ok := p.BindGroupLayoutDescriptor(uiScreenGroup)
	if !ok {
		return nil, fmt.Errorf("pipeline %s declares no screen group", p.PipelineKey())
	}
	u.screen = bind_group_provider.NewBindGroupProvider("ui screen",
		bind_group_provider.WithSharedBindGroupLayout(p.BindGroupLayout(uiScreenGroup)),
	)
	if err := r.InitBindGroup(u.screen, desc, nil); err != nil {
		return nil, fmt.Errorf("ui screen bind group: %w", err)
	}

	u.sampler = bind_group_provider.NewBindGroupProvider("ui sampler")
	if err := r.InitSampler(u.sampler, uiSamplerBinding, uiSamplerStaging); err != nil {
		u.release()
		return nil, fmt.Errorf("ui sampler: %w", err)
	}
	return u, nil
}

// apply uploads this frame's texture deltas, screen size and meshes. It runs before the ui pass begins.
func (u *uiResources) apply(out *ui.Output) error {
	for _, delta := range out.TexturesSet {
		if err := u.setTexture(delta); err != nil {
			return err
		}
	}

	screen := out.Screen
	if screen.Width == 0 || screen.Height == 0 {
		screen.Width, screen.Height = u.r.SurfaceSize()
	}
	uniform := screen.Uniform()
	err := u.r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: u.screen, Binding: 0, Data: uniform.Marshal()}})
	if err != nil {
		return err
	}

	u.pending = u.pending[:0]
	slot := 0
	for _, m := range out.Meshes {
		if len(m.Indices) == 0 {
			u.pending = append(u.pending, -1)
			continue
		}
		if slot == len(u.meshes) {
			u.meshes = append(u.meshes, bind_group_provider.NewBindGroupProvider(fmt.Sprintf("ui mesh %d", slot)))
		}
		if err := u.r.UpdateMeshBuffers(u.meshes[slot], ui.MarshalVertices(m.Vertices), model.MarshalIndices(m.Indices), len(m.Indices)); err != nil {
			return err
		}
		u.pending = append(u.pending, slot)
		slot++
	}
	return nil
}

func (u *uiResources) setTexture(delta ui.TextureDelta) error {
	if old, ok := u.textures[delta.ID]; ok {
		u.r.ReleaseProvider(old)
		delete(u.textures, delta.ID)
	}

	desc, ok := u.pipeline.BindGroupLayoutDescriptor(uiTextureGroup)
	if !ok {
		return fmt.Errorf("pipeline %s declares no texture group", u.pipeline.PipelineKey())
	}
	provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("ui texture %d", delta.ID),
		bind_group_provider.WithSharedBindGroupLayout(u.pipeline.BindGroupLayout(uiTextureGroup)),
		bind_group_provider.WithSharedSampler(uiSamplerBinding, u.sampler.Sampler(uiSamplerBinding)),
	)
	if err := u.r.InitTextureView(provider, uiTextureBinding, delta.Image); err != nil {
		return err
	}
	if err := u.r.InitBindGroup(provider, desc, nil); err != nil {
		u.r.ReleaseProvider(provider)
		return err
	}
	u.textures[delta.ID] = provider
	return nil
}

// draw issues one draw per uploaded mesh. Meshes whose texture is unknown are skipped.
func (u *uiResources) draw(out *ui.Output) (int, error) {
	if out == nil {
		return 0, nil
	}
	draws := 0
	for i, m := range out.Meshes {
		if i >= len(u.pending) || u.pending[i] < 0 {
			continue
		}
		tex, ok := u.textures[m.Texture]
		if !ok {
			log.Warn("ui mesh %d references unknown texture %d", i, m.Texture)
			continue
		}
		err := u.r.Draw(renderer.DrawCall{
			Pipeline: u.pipeline,
			Mesh:     u.meshes[u.pending[i]],
			BindGroups: map[int]bind_group_provider.BindGroupProvider{
				uiScreenGroup:  u.screen,
				uiTextureGroup: tex,
			},
			InstanceCount: 1,
		})
		if err != nil {
			return draws, err
		}
		draws++
	}
	return draws, nil
}

func (u *uiResources) free(ids []ui.TextureID) {
	for _, id := range ids {
		if p, ok := u.textures[id]; ok {
			u.r.ReleaseProvider(p)
			delete(u.textures, id)
		}
	}
}

// textureCount returns the number of live UI textures.
func (u *uiResources) textureCount() int {
	return len(u.textures)
}

func (u *uiResources) release() {
	for id, p := range u.textures {
		u.r.ReleaseProvider(p)
		delete(u.textures, id)
	}
	for _, p := range u.meshes {
		u.r.ReleaseProvider(p)
	}
	u.meshes = nil
	if u.sampler != nil {
		u.r.ReleaseProvider(u.sampler)
	}
	if u.screen != nil {
		u.r.ReleaseProvider(u.screen)
	}
}
