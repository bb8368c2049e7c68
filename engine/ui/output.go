package ui

import "github.com/Carmen-Shannon/oxy-render/common"

// TextureID names a UI texture across frames. The frame renderer keeps one GPU texture per id until it
// appears in Output.TexturesFree.
type TextureID uint64

// ScreenDescriptor is the surface the UI is laid out on.
type ScreenDescriptor struct {
	// Width and Height are the physical surface size in pixels.
	Width, Height int
	// Scale is physical pixels per logical pixel.
	Scale float32
}

// Logical returns the screen size in logical pixels.
func (s ScreenDescriptor) Logical() (float32, float32) {
	scale := s.Scale
	if scale <= 0 {
		scale = 1
	}
	return float32(s.Width) / scale, float32(s.Height) / scale
}

// Uniform returns the screen uniform the UI vertex shader maps positions with.
func (s ScreenDescriptor) Uniform() GPUScreenUniform {
	w, h := s.Logical()
	return GPUScreenUniform{Size: [2]float32{w, h}, Scale: max(s.Scale, 1)}
}

// Mesh is one textured triangle list in logical screen pixels.
type Mesh struct {
	Texture  TextureID
	Vertices []GPUVertex
	Indices  []uint32
}

// TextureDelta creates or replaces a UI texture.
type TextureDelta struct {
	ID    TextureID
	Image common.TextureStagingData
}

// Output is everything the UI produced for one frame. TexturesSet must be uploaded before Meshes are
// drawn and TexturesFree released after.
type Output struct {
	Screen       ScreenDescriptor
	Meshes       []Mesh
	TexturesSet  []TextureDelta
	TexturesFree []TextureID
}

// Empty reports whether the output draws and changes nothing.
func (o *Output) Empty() bool {
	return o == nil || (len(o.Meshes) == 0 && len(o.TexturesSet) == 0 && len(o.TexturesFree) == 0)
}
