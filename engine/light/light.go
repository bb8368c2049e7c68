package light

import "github.com/go-gl/mathgl/mgl32"

// LightType identifies the kind of local light source. The numeric value is the type tag written into
// the GPU light record.
type LightType uint32

const (
	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range.
	LightTypePoint LightType = iota

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// Fragments outside the cutoff cone receive no contribution.
	LightTypeSpot
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType  LightType
	position   mgl32.Vec3
	direction  mgl32.Vec3
	color      mgl32.Vec3
	intensity  float32
	lightRange float32
	cutoff     float32 // stored as cos(half-angle)
	enabled    bool
}

// Light defines the interface for a point or spot light.
//
// Lights are attached to world entities and packed into the global light uniform each frame.
// Directional lighting is carried separately by Environment.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: point or spot
	Type() LightType

	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - mgl32.Vec3: position
	Position() mgl32.Vec3

	// Direction returns the normalized cone axis. Meaningless for point lights.
	//
	// Returns:
	//   - mgl32.Vec3: normalized direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	Intensity() float32

	// Range returns the maximum attenuation distance. Beyond this distance the light contributes zero energy.
	Range() float32

	// Cutoff returns the cosine of the spot cone half-angle. Meaningless for point lights.
	//
	// Returns:
	//   - float32: cos(half-angle)
	Cutoff() float32

	// Enabled returns whether this light is active for rendering.
	// Disabled lights are skipped when the light uniform is packed.
	Enabled() bool

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - p: position
	SetPosition(p mgl32.Vec3)

	// SetDirection sets the cone axis and normalizes it.
	//
	// Parameters:
	//   - d: direction (will be normalized)
	SetDirection(d mgl32.Vec3)

	// SetColor sets the RGB color of the light.
	SetColor(c mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	SetIntensity(intensity float32)

	// SetRange sets the maximum attenuation distance.
	SetRange(lightRange float32)

	// SetCutoffDegrees sets the spot cone half-angle in degrees. It is stored as a cosine.
	//
	// Parameters:
	//   - deg: half-angle in degrees
	SetCutoffDegrees(deg float32)

	// SetEnabled enables or disables the light for rendering.
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create (point or spot)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:  lightType,
		direction:  mgl32.Vec3{0, -1, 0},
		color:      mgl32.Vec3{1, 1, 1},
		intensity:  1,
		lightRange: 10,
		cutoff:     cosDeg(30),
		enabled:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) Cutoff() float32 {
	return l.cutoff
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *lightImpl) SetDirection(d mgl32.Vec3) {
	l.direction = normalize3(d)
}

func (l *lightImpl) SetColor(c mgl32.Vec3) {
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = lightRange
}

func (l *lightImpl) SetCutoffDegrees(deg float32) {
	l.cutoff = cosDeg(deg)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
