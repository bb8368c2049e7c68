package camera

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ControllerInput is the per-frame input a CameraController consumes.
type ControllerInput struct {
	// Move is the requested movement in camera space: X right, Y up, Z forward. Each axis is expected in [-1, 1].
	Move mgl32.Vec3
	// Look is the raw mouse delta in pixels since the previous frame.
	Look mgl32.Vec2
}

// CameraController drives a Camera from per-frame input.
type CameraController interface {
	// Apply moves and rotates the camera for one frame.
	//
	// Parameters:
	//   - cam: the camera to drive
	//   - input: the movement and look input for this frame
	//   - dt: elapsed seconds since the previous frame
	Apply(cam Camera, input ControllerInput, dt float32)

	// MouseSensitivity returns the radians of rotation per pixel of mouse movement.
	MouseSensitivity() float32

	// MoveSpeed returns the translation speed in world units per second.
	MoveSpeed() float32

	// PitchLimit returns the absolute pitch clamp in radians.
	PitchLimit() float32
}

type flyController struct {
	sensitivity float32
	speed       float32
	pitchLimit  float32
}

var _ CameraController = &flyController{}

// NewFlyController creates a free-flight controller. Mouse movement turns the camera and Move translates
// it along the camera's own axes. Defaults are 0.002 rad/pixel, 10 units/second and a pitch clamp of 1.54 rad.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the new controller
func NewFlyController(options ...CameraControllerOption) CameraController {
	fc := &flyController{
		sensitivity: 0.002,
		speed:       10,
		pitchLimit:  1.54,
	}
	for _, option := range options {
		option(fc)
	}
	return fc
}

func (fc *flyController) Apply(cam Camera, input ControllerInput, dt float32) {
	yaw, pitch := cam.Orientation()
	yaw -= input.Look.X() * fc.sensitivity
	pitch = common.Clamp(pitch-input.Look.Y()*fc.sensitivity, -fc.pitchLimit, fc.pitchLimit)
	cam.SetOrientation(yaw, pitch)

	move := input.Move
	if move.LenSqr() == 0 {
		return
	}
	if move.Len() > 1 {
		move = move.Normalize()
	}
	forward := cam.Forward()
	right := cam.Right()
	delta := right.Mul(move.X()).Add(mgl32.Vec3{0, move.Y(), 0}).Add(forward.Mul(move.Z()))
	cam.SetPosition(cam.Position().Add(delta.Mul(fc.speed * dt)))
}

func (fc *flyController) MouseSensitivity() float32 {
	return fc.sensitivity
}

func (fc *flyController) MoveSpeed() float32 {
	return fc.speed
}

func (fc *flyController) PitchLimit() float32 {
	return fc.pitchLimit
}
