package frame

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-render/engine/world"
	"github.com/go-gl/mathgl/mgl32"
)

// Bind groups of the engine-owned uniforms in the standard pipeline.
const (
	CameraGroup   = 0
	LightsGroup   = 1
	MaterialGroup = 2
	ModelGroup    = 3
)

// modelDataSize is the size of one entry in the model matrix storage buffer.
const modelDataSize = 64

// UniformBridge owns the per-frame uniform buffers and copies ECS state into them. The buffers are
// created once against the standard pipeline's layouts; only their contents change.
type UniformBridge struct {
	r renderer.Renderer

	camera bind_group_provider.BindGroupProvider
	lights bind_group_provider.BindGroupProvider
	models bind_group_provider.BindGroupProvider

	matrices []mgl32.Mat4
}

// NewUniformBridge creates the camera, light and model buffers and their bind groups.
//
// Parameters:
//   - r: the renderer to allocate through
//   - p: a registered pipeline declaring the camera, light and model groups
//
// Returns:
//   - *UniformBridge: the bridge
//   - error: an error if p lacks a group or an allocation fails
func NewUniformBridge(r renderer.Renderer, p pipeline.Pipeline) (*UniformBridge, error) {
	u := &UniformBridge{r: r}

	var err error
	if u.camera, err = newGroupProvider(r, p, CameraGroup, "camera", nil); err != nil {
		return nil, err
	}
	if u.lights, err = newGroupProvider(r, p, LightsGroup, "lights", nil); err != nil {
		u.Release()
		return nil, err
	}
	if u.models, err = newGroupProvider(r, p, ModelGroup, "models", map[int]uint64{0: model.MaxModelMatrices * modelDataSize}); err != nil {
		u.Release()
		return nil, err
	}
	return u, nil
}

func newGroupProvider(r renderer.Renderer, p pipeline.Pipeline, group int, label string, sizes map[int]uint64) (bind_group_provider.BindGroupProvider, error) {
	desc, ok := p.BindGroupLayoutDescriptor(group)
	if !ok {
		return nil, fmt.Errorf("pipeline %s declares no %s group %d", p.PipelineKey(), label, group)
	}
	provider := bind_group_provider.NewBindGroupProvider(label,
		bind_group_provider.WithSharedBindGroupLayout(p.BindGroupLayout(group)),
	)
	if err := r.InitBindGroup(provider, desc, sizes); err != nil {
		return nil, fmt.Errorf("%s bind group: %w", label, err)
	}
	return provider, nil
}

// WriteCamera uploads the view-projection matrix as is.
func (u *UniformBridge) WriteCamera(viewProj mgl32.Mat4) error {
	uniform := camera.NewGPUCameraUniform(viewProj)
	return u.r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: u.camera, Binding: 0, Data: uniform.Marshal()}})
}

// WriteLights uploads the ambient and sun terms and the first light.MaxLights enabled lights in
// snapshot order. The rest are dropped.
//
// Returns:
//   - int: the number of lights written
//   - error: a write error
func (u *UniformBridge) WriteLights(snap world.LightSnapshot) (int, error) {
	data, dropped := light.NewGPUGlobalLightData(snap.Environment, snap.Lights)
	if dropped > 0 {
		log.Debug("%d lights over the limit of %d were dropped", dropped, light.MaxLights)
	}
	err := u.r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: u.lights, Binding: 0, Data: data.Marshal()}})
	return int(data.NumLights), err
}

// WriteModels uploads one matrix per drawable in draw order. Nothing is written for zero drawables.
// Past model.MaxModelMatrices the rest are not written and a warning is logged.
//
// Returns:
//   - int: the number of drawables that may be drawn this frame
//   - error: a write error
func (u *UniformBridge) WriteModels(drawables []world.Drawable) (int, error) {
	if len(drawables) == 0 {
		return 0, nil
	}
	n := len(drawables)
	if n > model.MaxModelMatrices {
		log.Warn("%d drawables exceed the model buffer capacity of %d; %d will not be drawn",
			n, model.MaxModelMatrices, n-model.MaxModelMatrices)
		n = model.MaxModelMatrices
	}

	u.matrices = u.matrices[:0]
	for _, d := range drawables[:n] {
		u.matrices = append(u.matrices, d.Transform.Matrix())
	}
	err := u.r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: u.models,
		Binding:  0,
		Data:     model.MarshalModelMatrices(u.matrices),
	}})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Providers returns the camera, lights and models providers.
func (u *UniformBridge) Providers() (cam, lights, models bind_group_provider.BindGroupProvider) {
	return u.camera, u.lights, u.models
}

// Release frees the uniform buffers and bind groups.
func (u *UniformBridge) Release() {
	for _, p := range []bind_group_provider.BindGroupProvider{u.camera, u.lights, u.models} {
		if p != nil {
			u.r.ReleaseProvider(p)
		}
	}
}
