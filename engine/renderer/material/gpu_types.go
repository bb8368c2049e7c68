package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group slots of a material. Materials always bind at group 2.
const (
	Group = 2

	BindingDiffuse = 0
	BindingSampler = 1
	BindingParams  = 2
	BindingNormal  = 3
)

// GPUMaterialUniformSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterialUniform layout exactly (16 bytes).
//
//go:embed assets/material_params.wgsl
var GPUMaterialUniformSource string

// GPUMaterialUniform is the GPU-aligned uniform bound at BindingParams.
// Matches the WGSL MaterialParams struct layout exactly (see GPUMaterialUniformSource).
// Size: 16 bytes.
type GPUMaterialUniform struct {
	Roughness float32    // offset 0: perceptual roughness (4 bytes)
	Metallic  float32    // offset 4: metalness (4 bytes)
	_         [2]float32 // offset 8: padding to 16 bytes
}

// NewGPUMaterialUniform builds the uniform for the given surface parameters.
func NewGPUMaterialUniform(roughness, metallic float32) GPUMaterialUniform {
	return GPUMaterialUniform{Roughness: roughness, Metallic: metallic}
}

// Size returns the size of the GPUMaterialUniform struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload; the padding is zero.
func (g *GPUMaterialUniform) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Roughness))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Metallic))
	return buf
}

// LayoutDescriptor is the bind group layout every material pipeline must declare at Group.
// Pipelines are checked against it by fingerprint before a material is built for them.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the material layout
func LayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	texture := wgpu.TextureBindingLayout{
		SampleType:    wgpu.TextureSampleTypeFloat,
		ViewDimension: wgpu.TextureViewDimension2D,
	}
	return wgpu.BindGroupLayoutDescriptor{
		Label: "material",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: BindingDiffuse, Visibility: wgpu.ShaderStageFragment, Texture: texture},
			{Binding: BindingSampler, Visibility: wgpu.ShaderStageFragment, Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}},
			{Binding: BindingParams, Visibility: wgpu.ShaderStageFragment, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 16}},
			{Binding: BindingNormal, Visibility: wgpu.ShaderStageFragment, Texture: texture},
		},
	}
}
