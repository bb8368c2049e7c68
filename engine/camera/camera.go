package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	yaw      float32
	pitch    float32
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4

	controller CameraController
}

// Camera defines the interface for a first-person style camera.
// The camera holds a position, a yaw/pitch orientation and perspective settings, and caches
// the view, projection and view-projection matrices derived from them.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - p: the new eye position
	SetPosition(p mgl32.Vec3)

	// Orientation returns the yaw and pitch in radians.
	//
	// Returns:
	//   - yaw: rotation around +Y, 0 looks down -Z
	//   - pitch: rotation around the camera's right axis
	Orientation() (yaw, pitch float32)

	// SetOrientation replaces the yaw and pitch in radians.
	//
	// Parameters:
	//   - yaw: rotation around +Y
	//   - pitch: rotation around the right axis
	SetOrientation(yaw, pitch float32)

	// Forward returns the unit view direction.
	Forward() mgl32.Vec3

	// Right returns the unit right vector, perpendicular to Forward and the up vector.
	Right() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// SetAspect changes the aspect ratio. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width divided by height
	SetAspect(aspect float32)

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the cached view matrix.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the cached projection matrix with WebGPU [0, 1] depth.
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view, ready for upload into the camera uniform.
	ViewProjectionMatrix() mgl32.Mat4

	// Controller returns the attached controller, or nil.
	Controller() CameraController

	// SetController attaches a controller that Update drives.
	//
	// Parameters:
	//   - ctrl: the controller, or nil to detach
	SetController(ctrl CameraController)

	// Update advances the attached controller by dt seconds using the given input, then recomputes the matrices.
	//
	// Parameters:
	//   - input: this frame's movement and look input
	//   - dt: elapsed seconds since the last update
	Update(input ControllerInput, dt float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at the origin looking down -Z with a 45 degree vertical field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		up:     mgl32.Vec3{0, 1, 0},
		fov:    mgl32.DegToRad(45),
		aspect: 1.0,
		near:   0.1,
		far:    1000.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
	c.updateMatrices()
}

func (c *cameraImpl) Orientation() (yaw, pitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yaw, c.pitch
}

func (c *cameraImpl) SetOrientation(yaw, pitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw, c.pitch = yaw, pitch
	c.updateMatrices()
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ForwardFromYawPitch(c.yaw, c.pitch)
}

func (c *cameraImpl) Right() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ForwardFromYawPitch(c.yaw, c.pitch).Cross(c.up).Normalize()
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Update(input ControllerInput, dt float32) {
	c.mu.Lock()
	ctrl := c.controller
	c.mu.Unlock()

	// the controller calls back into the exported setters, so the lock is not held here
	if ctrl != nil {
		ctrl.Apply(c, input, dt)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	forward := common.ForwardFromYawPitch(c.yaw, c.pitch)
	c.viewMatrix = common.LookTo(c.position, forward, c.up)
	c.projectionMatrix = common.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
