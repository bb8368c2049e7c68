package assets

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrLayoutMismatch is returned when a pipeline's material group does not match the layout the asset
// store builds material bind groups for.
var ErrLayoutMismatch = errors.New("material bind group layout mismatch")

// DefaultMaterial is the built-in material: white diffuse on the standard pipeline.
const DefaultMaterial = "default"

// DefaultPipeline is the pipeline key the built-in material draws with.
const DefaultPipeline = "standard"

// MaterialData is a material whose bind group has been created against its pipeline's group 2 layout.
type MaterialData struct {
	Name         string
	PipelineName string
	// Provider owns the material bind group and its uniform buffer. The textures and sampler it binds
	// are shared from the store.
	Provider bind_group_provider.BindGroupProvider
	Uniform  material.GPUMaterialUniform
	Diffuse  TextureID
	Normal   TextureID
	// Material is the CPU-side description the bind group was built from.
	Material material.Material
}

// MaterialLayoutDescriptor returns the layout material bind groups are built for: 0 diffuse view,
// 1 sampler, 2 the 16-byte {roughness, metallic} uniform, 3 normal view.
func MaterialLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return material.LayoutDescriptor()
}

// checkMaterialLayout verifies that p declares the material group with exactly the expected layout.
//
// Parameters:
//   - p: the pipeline a material will draw with
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the pipeline's descriptor for the material group
//   - error: ErrLayoutMismatch wrapped with both fingerprints on mismatch
func checkMaterialLayout(p pipeline.Pipeline) (wgpu.BindGroupLayoutDescriptor, error) {
	want := shader.LayoutFingerprint(MaterialLayoutDescriptor())
	desc, ok := p.BindGroupLayoutDescriptor(material.Group)
	if !ok {
		return desc, fmt.Errorf("%w: pipeline %s declares no group %d", ErrLayoutMismatch, p.PipelineKey(), material.Group)
	}
	if got := shader.LayoutFingerprint(desc); got != want {
		return desc, fmt.Errorf("%w: pipeline %s group %d is %s, want %s", ErrLayoutMismatch, p.PipelineKey(), material.Group, got, want)
	}
	return desc, nil
}
