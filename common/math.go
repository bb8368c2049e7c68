package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// glToWebGPU remaps OpenGL clip-space depth [-1, 1] into the WebGPU range [0, 1].
var glToWebGPU = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Perspective builds a right-handed perspective projection whose depth lands in the WebGPU
// clip range [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: distance to the near plane
//   - far: distance to the far plane
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	return glToWebGPU.Mul4(mgl32.Perspective(fovY, aspect, near, far))
}

// LookTo builds a right-handed view matrix for an eye at position looking along forward.
func LookTo(position, forward, up mgl32.Vec3) mgl32.Mat4 {
	return mgl32.LookAtV(position, position.Add(forward), up)
}

// ComposeTRS builds a local-to-world matrix that applies scale first, then rotation, then translation.
//
// Parameters:
//   - translation: world-space position
//   - rotation: orientation quaternion
//   - scale: per-axis scale
//
// Returns:
//   - mgl32.Mat4: T * R * S in column-major order
func ComposeTRS(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(translation.X(), translation.Y(), translation.Z())
	r := rotation.Normalize().Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// ForwardFromYawPitch returns the unit forward vector for a yaw around +Y and a pitch around the
// camera's right axis. Yaw 0 and pitch 0 look down -Z.
func ForwardFromYawPitch(yaw, pitch float32) mgl32.Vec3 {
	cy, sy := cos32(yaw), sin32(yaw)
	cp, sp := cos32(pitch), sin32(pitch)
	return mgl32.Vec3{-sy * cp, sp, -cy * cp}.Normalize()
}

func cos32(v float32) float32 { return float32(math.Cos(float64(v))) }

func sin32(v float32) float32 { return float32(math.Sin(float64(v))) }
