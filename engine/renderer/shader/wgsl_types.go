package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// typeLayout holds the byte size and alignment of a host-shareable WGSL type.
type typeLayout struct {
	size  uint64
	align uint64
}

// vertexFormat pairs a wgpu vertex format with its packed byte size.
type vertexFormat struct {
	format wgpu.VertexFormat
	size   uint64
}

// structField is one member of a WGSL struct as written in source.
type structField struct {
	name     string
	typeName string
	location int
	builtin  bool
}

// structDecl is a WGSL struct declaration.
type structDecl struct {
	name   string
	fields []structField
}

// isVertexInput reports whether every member carries @location and none is a @builtin.
// Vertex outputs mix @location with @builtin(position) and are excluded.
func (s structDecl) isVertexInput() bool {
	if len(s.fields) == 0 {
		return false
	}
	for _, f := range s.fields {
		if f.builtin || f.location < 0 {
			return false
		}
	}
	return true
}

// scalarLayouts covers the scalar, vector and matrix types used by engine shaders.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var scalarLayouts = map[string]typeLayout{
	"f32": {4, 4}, "i32": {4, 4}, "u32": {4, 4}, "bool": {4, 4},

	"vec2<f32>": {8, 8}, "vec2f": {8, 8}, "vec2<i32>": {8, 8}, "vec2i": {8, 8}, "vec2<u32>": {8, 8}, "vec2u": {8, 8},
	"vec3<f32>": {12, 16}, "vec3f": {12, 16}, "vec3<i32>": {12, 16}, "vec3i": {12, 16}, "vec3<u32>": {12, 16}, "vec3u": {12, 16},
	"vec4<f32>": {16, 16}, "vec4f": {16, 16}, "vec4<i32>": {16, 16}, "vec4i": {16, 16}, "vec4<u32>": {16, 16}, "vec4u": {16, 16},

	"mat2x2<f32>": {16, 8}, "mat3x3<f32>": {48, 16}, "mat4x4<f32>": {64, 16},
	"mat2x2f": {16, 8}, "mat3x3f": {48, 16}, "mat4x4f": {64, 16},
}

// vertexFormats maps vertex attribute types onto wgpu formats.
var vertexFormats = map[string]vertexFormat{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
}

// textureDimensions maps sampled texture base names onto view dimensions.
var textureDimensions = map[string]wgpu.TextureViewDimension{
	"texture_2d":         wgpu.TextureViewDimension2D,
	"texture_2d_array":   wgpu.TextureViewDimension2DArray,
	"texture_3d":         wgpu.TextureViewDimension3D,
	"texture_cube":       wgpu.TextureViewDimensionCube,
	"texture_depth_2d":   wgpu.TextureViewDimension2D,
	"texture_depth_cube": wgpu.TextureViewDimensionCube,
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

func alignUp(align, v uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// layoutTable resolves type names to layouts, learning struct layouts as they are added.
type layoutTable map[string]typeLayout

// newLayoutTable computes the layout of every struct it can resolve. Structs that reference
// other structs are retried until no more progress is made, so declaration order does not matter.
func newLayoutTable(structs []structDecl) layoutTable {
	t := layoutTable{}
	pending := structs
	for len(pending) > 0 {
		var next []structDecl
		for _, s := range pending {
			if l, ok := t.structLayout(s); ok {
				t[s.name] = l
			} else {
				next = append(next, s)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return t
}

// resolve returns the layout of a type. A runtime-sized array resolves to the stride of one element.
func (t layoutTable) resolve(typeName string) (typeLayout, bool) {
	if l, ok := scalarLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := t[typeName]; ok {
		return l, true
	}
	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return typeLayout{}, false
	}
	elemName, countStr, sized := strings.Cut(strings.TrimSuffix(inner, ">"), ",")
	elem, ok := t.resolve(strings.TrimSpace(elemName))
	if !ok {
		return typeLayout{}, false
	}
	stride := alignUp(elem.align, elem.size)
	if !sized {
		return typeLayout{stride, elem.align}, true
	}
	count, err := strconv.ParseUint(strings.TrimSpace(countStr), 10, 64)
	if err != nil {
		return typeLayout{}, false
	}
	return typeLayout{count * stride, elem.align}, true
}

// structLayout places each member at its aligned offset and rounds the total up to the struct alignment.
// A trailing runtime-sized array contributes one element.
func (t layoutTable) structLayout(s structDecl) (typeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for _, f := range s.fields {
		if f.builtin {
			continue
		}
		l, ok := t.resolve(f.typeName)
		if !ok {
			return typeLayout{}, false
		}
		offset = alignUp(l.align, offset) + l.size
		align = max(align, l.align)
	}
	return typeLayout{alignUp(align, offset), align}, true
}
