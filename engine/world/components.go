package world

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/assets"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places an entity in the world.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// IdentityTransform returns a transform at the origin with no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// At returns an identity transform moved to position.
func At(position mgl32.Vec3) Transform {
	t := IdentityTransform()
	t.Position = position
	return t
}

// Matrix returns the local-to-world matrix, scale first, then rotation, then translation.
func (t Transform) Matrix() mgl32.Mat4 {
	return common.ComposeTRS(t.Position, t.Rotation, t.Scale)
}

// MeshRenderer marks an entity as drawable with the given mesh and material.
type MeshRenderer struct {
	Mesh     assets.MeshID
	Material assets.MaterialID
}

// DirectionalLight is the scene's sun. Only the first one spawned is used.
type DirectionalLight struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
}

// Drawable is one entity to draw this frame.
type Drawable struct {
	Entity    uint64
	Transform Transform
	MeshRenderer
}
