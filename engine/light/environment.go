package light

import "github.com/go-gl/mathgl/mgl32"

// Environment holds the scene-wide lighting terms: the ambient color and the single directional sun.
type Environment struct {
	// Ambient is the RGB ambient color applied to every fragment.
	Ambient mgl32.Vec3
	// SunDirection is the direction the sunlight travels. It is normalized when packed.
	SunDirection mgl32.Vec3
	// SunColor is the RGB color of the sun.
	SunColor mgl32.Vec3
	// SunIntensity scales SunColor. It is packed into the w component of the sun color vector.
	SunIntensity float32
}

// DefaultEnvironment returns a dim ambient term and a white sun angled down from above.
func DefaultEnvironment() Environment {
	return Environment{
		Ambient:      mgl32.Vec3{0.1, 0.1, 0.12},
		SunDirection: mgl32.Vec3{-0.3, -1, -0.4},
		SunColor:     mgl32.Vec3{1, 0.97, 0.9},
		SunIntensity: 1,
	}
}
