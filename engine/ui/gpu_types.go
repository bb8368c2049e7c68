package ui

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the UIVertex struct.
// Matches GPUVertex layout exactly (32 bytes).
//
//go:embed assets/ui_vertex.wgsl
var GPUVertexSource string

// GPUVertex is one vertex of a tessellated UI mesh, positioned in logical screen pixels.
// Size: 32 bytes.
type GPUVertex struct {
	Position [2]float32 // offset  0: screen position in logical pixels, origin top-left (8 bytes)
	UV       [2]float32 // offset  8: texture coordinate (8 bytes)
	Color    [4]float32 // offset 16: linear RGBA multiplier (16 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalVertices serializes UI vertices into one contiguous buffer.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: len(vertices)*32 bytes
func MarshalVertices(vertices []GPUVertex) []byte {
	buf := make([]byte, len(vertices)*32)
	for i, v := range vertices {
		o := buf[i*32:]
		putFloats(o[0:], v.Position[:])
		putFloats(o[8:], v.UV[:])
		putFloats(o[16:], v.Color[:])
	}
	return buf
}

// GPUScreenUniformSource is the canonical WGSL definition of the ScreenUniform struct.
// Matches GPUScreenUniform layout exactly (16 bytes).
//
//go:embed assets/screen_uniform.wgsl
var GPUScreenUniformSource string

// GPUScreenUniform carries the logical screen size so the UI vertex shader can map pixels to clip space.
// Size: 16 bytes.
type GPUScreenUniform struct {
	Size  [2]float32 // offset 0: logical width and height (8 bytes)
	Scale float32    // offset 8: physical pixels per logical pixel (4 bytes)
	_     float32    // offset 12: padding
}

// Marshal serializes the GPUScreenUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUScreenUniform) Marshal() []byte {
	buf := make([]byte, 16)
	putFloats(buf, g.Size[:])
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.Scale))
	return buf
}

func putFloats(buf []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}
