package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxModelMatrices is the fixed capacity of the per-frame model matrix storage buffer.
const MaxModelMatrices = 10000

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct shared by every mesh pipeline.
// Matches GPUVertex layout exactly (32 bytes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 32 bytes, tightly packed.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	UV       [2]float32 // offset 12: texture coordinate (8 bytes)
	Normal   [3]float32 // offset 20: vertex normal (12 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	g.marshalInto(buf)
	return buf
}

func (g *GPUVertex) marshalInto(buf []byte) {
	putFloats(buf[0:12], g.Position[:])
	putFloats(buf[12:20], g.UV[:])
	putFloats(buf[20:32], g.Normal[:])
}

// MarshalVertices serializes a vertex slice into one contiguous buffer.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: len(vertices)*32 bytes
func MarshalVertices(vertices []GPUVertex) []byte {
	buf := make([]byte, len(vertices)*32)
	for i := range vertices {
		vertices[i].marshalInto(buf[i*32:])
	}
	return buf
}

// MarshalIndices serializes 32-bit indices into a little-endian buffer.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// VertexBufferLayout returns the vertex buffer layout matching GPUVertex: position at location 0,
// uv at location 1 and normal at location 2.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout for pipeline creation
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 32,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 20, ShaderLocation: 2},
		},
	}
}

// GPUModelDataSource is the canonical WGSL definition of the ModelData struct for per-draw model matrices.
// Matches GPUModelData layout exactly (64 bytes).
//
//go:embed assets/model_data.wgsl
var GPUModelDataSource string

// GPUModelData is the GPU-aligned representation of a single model matrix.
// Matches the WGSL ModelData struct layout exactly (see GPUModelDataSource).
// Size: 64 bytes (mat4x4<f32>).
type GPUModelData struct {
	Model [16]float32 // offset 0: 4×4 model-to-world transform matrix (64 bytes)
}

// NewGPUModelData copies a column-major transform into the storage layout.
func NewGPUModelData(m mgl32.Mat4) GPUModelData {
	return GPUModelData{Model: m}
}

// Size returns the size of the GPUModelData struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUModelData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUModelData) Marshal() []byte {
	buf := make([]byte, 64)
	putFloats(buf, g.Model[:])
	return buf
}

// MarshalModelMatrices packs transforms back to back for the model storage buffer. At most
// MaxModelMatrices entries are written.
//
// Parameters:
//   - matrices: the transforms in draw order
//
// Returns:
//   - []byte: min(len(matrices), MaxModelMatrices)*64 bytes
func MarshalModelMatrices(matrices []mgl32.Mat4) []byte {
	n := min(len(matrices), MaxModelMatrices)
	buf := make([]byte, n*64)
	for i := range n {
		putFloats(buf[i*64:], matrices[i][:])
	}
	return buf
}

func putFloats(buf []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}
