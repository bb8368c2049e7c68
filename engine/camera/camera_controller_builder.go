package camera

// CameraControllerOption configures a fly controller.
type CameraControllerOption func(*flyController)

// WithMouseSensitivity sets the rotation in radians applied per pixel of mouse movement.
//
// Parameters:
//   - sensitivity: radians per pixel
//
// Returns:
//   - CameraControllerOption: a function that sets the mouse sensitivity
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(fc *flyController) {
		fc.sensitivity = sensitivity
	}
}

// WithMoveSpeed sets the translation speed in world units per second.
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(fc *flyController) {
		fc.speed = speed
	}
}

// WithPitchLimit sets the absolute pitch clamp in radians.
func WithPitchLimit(limit float32) CameraControllerOption {
	return func(fc *flyController) {
		if limit > 0 {
			fc.pitchLimit = limit
		}
	}
}
