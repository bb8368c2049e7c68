package world

import (
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/logging"
	"github.com/EngoEngine/ecs"
	"github.com/go-gl/mathgl/mgl32"
)

var log = logging.With("world")

// Context owns the ECS world and the resources its systems share. There is no global world: the engine
// creates one Context and passes it to the game logic's Update and to the frame renderer. A Context is
// owned by the frame loop and is not safe for concurrent use.
//
// Usage pattern:
//
//	ctx := world.NewContext()
//	cam := ctx.SpawnCamera(camera.NewCamera(camera.WithController(camera.NewFlyController())), true)
//	ctx.SpawnDrawable(world.At(mgl32.Vec3{0, 0, -5}), world.MeshRenderer{Mesh: cube, Material: mat})
//	ctx.Update(dt)
//	drawables := ctx.Drawables()
type Context struct {
	world *ecs.World

	inputMapping *inputMappingSystem
	flyCamera    *flyCameraSystem
	lightSync    *lightSyncSystem
	render       *renderSystem

	entities   map[uint64]ecs.BasicEntity
	transforms map[uint64]*Transform

	time        GameTime
	raw         *RawInputState
	actions     *ActionState
	bindings    *InputBindings
	state       *GameState
	environment light.Environment

	aspect    float32
	viewProj  mgl32.Mat4
	lights    LightSnapshot
	drawables []Drawable
}

// NewContext creates a world with the engine systems registered: input mapping, fly camera, camera matrix,
// light sync, drawable collection and input cleanup.
//
// Parameters:
//   - options: variadic list of ContextBuilderOption functions
//
// Returns:
//   - *Context: the new context
func NewContext(options ...ContextBuilderOption) *Context {
	c := &Context{
		world:       &ecs.World{},
		entities:    make(map[uint64]ecs.BasicEntity),
		transforms:  make(map[uint64]*Transform),
		raw:         newRawInputState(),
		actions:     newActionState(),
		bindings:    DefaultInputBindings(),
		state:       newGameState(),
		environment: light.DefaultEnvironment(),
		viewProj:    mgl32.Ident4(),
	}
	for _, opt := range options {
		opt(c)
	}

	c.inputMapping = &inputMappingSystem{ctx: c}
	c.flyCamera = &flyCameraSystem{ctx: c}
	c.lightSync = &lightSyncSystem{ctx: c}
	c.render = &renderSystem{ctx: c}

	c.world.AddSystem(c.inputMapping)
	c.world.AddSystem(c.flyCamera)
	c.world.AddSystem(&cameraMatrixSystem{ctx: c, fly: c.flyCamera})
	c.world.AddSystem(c.lightSync)
	c.world.AddSystem(c.render)
	c.world.AddSystem(&inputCleanupSystem{ctx: c})
	return c
}

// Update advances the clock by dt seconds and runs every system once in priority order.
func (c *Context) Update(dt float32) {
	c.time.Delta = dt
	c.time.Tick++
	c.time.Total += float64(dt)
	c.world.Update(dt)
}

// AddSystem registers a game system. Use PriorityLogic to run between input mapping and the camera.
func (c *Context) AddSystem(system ecs.System) {
	c.world.AddSystem(system)
}

// World exposes the underlying ECS world.
func (c *Context) World() *ecs.World {
	return c.world
}

func (c *Context) track(basic ecs.BasicEntity, t *Transform) uint64 {
	c.entities[basic.ID()] = basic
	if t != nil {
		c.transforms[basic.ID()] = t
	}
	return basic.ID()
}

// SpawnDrawable creates an entity drawn with r at t.
//
// Returns:
//   - uint64: the entity id
func (c *Context) SpawnDrawable(t Transform, r MeshRenderer) uint64 {
	e := &renderEntity{BasicEntity: ecs.NewBasic(), transform: &t, renderer: &r}
	c.render.Add(e)
	// Visible before the next Update.
	c.drawables = append(c.drawables, Drawable{Entity: e.ID(), Transform: t, MeshRenderer: r})
	return c.track(e.BasicEntity, e.transform)
}

// SpawnLight creates a point or spot light entity. The light follows the entity's transform.
func (c *Context) SpawnLight(t Transform, l light.Light) uint64 {
	e := &lightEntity{BasicEntity: ecs.NewBasic(), transform: &t, light: l}
	c.lightSync.AddLight(e)
	return c.track(e.BasicEntity, e.transform)
}

// SpawnSun creates the directional light entity. Only the first sun spawned lights the scene.
func (c *Context) SpawnSun(sun DirectionalLight) uint64 {
	e := &sunEntity{BasicEntity: ecs.NewBasic(), sun: &sun}
	c.lightSync.AddSun(e)
	return c.track(e.BasicEntity, nil)
}

// SpawnCamera creates a camera entity. A camera with a controller is driven by the move actions and the
// mouse; the primary camera's matrix is what CameraMatrix returns.
func (c *Context) SpawnCamera(cam camera.Camera, primary bool) uint64 {
	if primary {
		for _, e := range c.flyCamera.entities {
			e.primary = false
		}
		c.viewProj = cam.ViewProjectionMatrix()
	}
	e := &cameraEntity{BasicEntity: ecs.NewBasic(), camera: cam, primary: primary}
	c.flyCamera.Add(e)
	return c.track(e.BasicEntity, nil)
}

// Despawn removes an entity from every system. It reports false for unknown ids.
func (c *Context) Despawn(id uint64) bool {
	basic, ok := c.entities[id]
	if !ok {
		return false
	}
	c.world.RemoveEntity(basic)
	delete(c.entities, id)
	delete(c.transforms, id)
	c.drawables = c.render.collect(c.drawables[:0])
	return true
}

// RemapRenderers replaces the mesh and material of every drawable with fn's result. The asset store
// hands out new handles after a reload, and this is how the engine moves drawables onto them.
func (c *Context) RemapRenderers(fn func(entity uint64, r MeshRenderer) MeshRenderer) {
	for _, e := range c.render.entities {
		*e.renderer = fn(e.ID(), *e.renderer)
	}
	c.drawables = c.render.collect(c.drawables[:0])
}

// Transform returns the mutable transform of a drawable or light entity, nil for other entities.
func (c *Context) Transform(id uint64) *Transform {
	return c.transforms[id]
}

// EntityCount returns the number of live entities.
func (c *Context) EntityCount() int {
	return len(c.entities)
}

// Drawables returns the drawables gathered by the last Update, in spawn order. The slice is reused by
// the next Update.
func (c *Context) Drawables() []Drawable {
	return c.drawables
}

// LightSnapshot returns the lighting gathered by the last Update.
func (c *Context) LightSnapshot() LightSnapshot {
	return c.lights
}

// CameraMatrix returns the primary camera's view-projection matrix, identity until a camera exists.
func (c *Context) CameraMatrix() mgl32.Mat4 {
	return c.viewProj
}

// SetCameraMatrix replaces the view-projection matrix until the next Update recomputes it from the
// primary camera. Game logic without a world camera publishes its own matrix this way.
func (c *Context) SetCameraMatrix(m mgl32.Mat4) {
	c.viewProj = m
}

// Resize forwards a new surface size to the primary camera's aspect ratio.
func (c *Context) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.aspect = float32(width) / float32(height)
}

// SetEnvironment replaces the ambient and default sun terms.
func (c *Context) SetEnvironment(env light.Environment) {
	c.environment = env
}

// Time returns the frame clock.
func (c *Context) Time() GameTime {
	return c.time
}

// Actions returns the action state of the last Update.
func (c *Context) Actions() *ActionState {
	return c.actions
}

// State returns the game state.
func (c *Context) State() *GameState {
	return c.state
}

// SetBindings replaces the input bindings.
func (c *Context) SetBindings(b *InputBindings) {
	c.bindings = b
}

// KeyDown records a key press.
func (c *Context) KeyDown(code int) {
	c.raw.PressedKeys[code] = struct{}{}
}

// KeyUp records a key release.
func (c *Context) KeyUp(code int) {
	delete(c.raw.PressedKeys, code)
}

// MouseButton records a mouse button press or release.
func (c *Context) MouseButton(button int, pressed bool) {
	if pressed {
		c.raw.MouseButtons[button] = struct{}{}
	} else {
		delete(c.raw.MouseButtons, button)
	}
}

// MouseMotion accumulates a raw mouse movement in pixels.
func (c *Context) MouseMotion(dx, dy float32) {
	c.raw.MouseDelta = c.raw.MouseDelta.Add(mgl32.Vec2{dx, dy})
}

// controllerInput maps the move actions onto camera-space movement. Mouse look is ignored while the
// active state shows the cursor.
func (c *Context) controllerInput() camera.ControllerInput {
	var in camera.ControllerInput
	axis := func(pos, neg string) float32 {
		var v float32
		if c.actions.Pressed(pos) {
			v++
		}
		if c.actions.Pressed(neg) {
			v--
		}
		return v
	}
	in.Move = mgl32.Vec3{
		axis("move_right", "move_left"),
		axis("move_up", "move_down"),
		axis("move_forward", "move_backward"),
	}
	if !c.state.CursorVisible() {
		in.Look = c.raw.MouseDelta
	}
	return in
}
