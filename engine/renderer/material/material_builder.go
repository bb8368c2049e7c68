package material

import "github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"

// MaterialBuilderOption is a functional option for configuring a Material via NewMaterial.
type MaterialBuilderOption func(*material)

// WithName sets the material identifier.
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithPipelineKey sets the render pipeline that draws the material.
//
// Parameters:
//   - key: the pipeline name
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

// WithRoughness sets the perceptual roughness.
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = roughness
	}
}

// WithMetallic sets the metalness.
func WithMetallic(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = metallic
	}
}

// WithDiffuseTexture sets the diffuse texture by asset name.
//
// Parameters:
//   - name: the texture name
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse texture to a material
func WithDiffuseTexture(name string) MaterialBuilderOption {
	return func(m *material) {
		m.diffuseTexture = name
	}
}

// WithNormalTexture sets the normal map by asset name. An empty name means the default flat normal.
//
// Parameters:
//   - name: the texture name
//
// Returns:
//   - MaterialBuilderOption: a function that applies the normal map to a material
func WithNormalTexture(name string) MaterialBuilderOption {
	return func(m *material) {
		m.normalTexture = name
	}
}

// WithBindGroupProvider sets a provider that already holds the material bind group.
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) MaterialBuilderOption {
	return func(m *material) {
		m.provider = provider
	}
}
