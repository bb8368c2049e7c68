package material

import (
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"
)

// material is the implementation of the Material interface.
type material struct {
	name           string
	pipelineKey    string
	roughness      float32
	metallic       float32
	diffuseTexture string
	normalTexture  string
	provider       bind_group_provider.BindGroupProvider
}

// Material describes how a surface is shaded: the pipeline that draws it, the textures it samples,
// and its scalar parameters. Once built by the asset store it owns a BindGroupProvider whose bind
// group is bound at Group for every draw that uses it.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the material name
	Name() string

	// PipelineKey retrieves the name of the render pipeline that draws this material.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Roughness retrieves the perceptual roughness.
	//
	// Returns:
	//   - float32: roughness in [0, 1]
	Roughness() float32

	// Metallic retrieves the metalness.
	//
	// Returns:
	//   - float32: metalness in [0, 1]
	Metallic() float32

	// DiffuseTexture retrieves the name of the diffuse texture asset.
	//
	// Returns:
	//   - string: the texture name
	DiffuseTexture() string

	// NormalTexture retrieves the name of the normal map asset, or "" when none is set.
	//
	// Returns:
	//   - string: the texture name or ""
	NormalTexture() string

	// Uniform returns the parameter block uploaded at BindingParams.
	//
	// Returns:
	//   - GPUMaterialUniform: the uniform
	Uniform() GPUMaterialUniform

	// BindGroupProvider retrieves the provider holding the material bind group, or nil before it is built.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider assigns the provider holding the material bind group.
	//
	// Parameters:
	//   - provider: the provider
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material with the given options applied. Roughness defaults to 0.5.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the new material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{roughness: 0.5}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) DiffuseTexture() string {
	return m.diffuseTexture
}

func (m *material) NormalTexture() string {
	return m.normalTexture
}

func (m *material) Uniform() GPUMaterialUniform {
	return NewGPUMaterialUniform(m.roughness, m.metallic)
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.provider
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.provider = provider
}
