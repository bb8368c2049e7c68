package engine

import (
	"github.com/Carmen-Shannon/oxy-render/engine/assets"
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/ui"
	"github.com/Carmen-Shannon/oxy-render/engine/window"
	"github.com/Carmen-Shannon/oxy-render/engine/world"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUContext is what the engine hands to GameLogic.Init once the device, the asset store and the world
// exist.
type GPUContext struct {
	Renderer renderer.Renderer
	Assets   assets.Store
	World    *world.Context
	Window   window.Window
	Config   *config.Config
}

// GameLogic is the application plugged into the engine. Every method is called on the frame loop.
//
// Usage pattern:
//
//	type game struct{ engine.BaseGameLogic }
//
//	func (g *game) Init(gpu *engine.GPUContext) error {
//		if err := g.BaseGameLogic.Init(gpu); err != nil {
//			return err
//		}
//		cube, _ := gpu.Assets.ResolveMesh("cube")
//		...
//	}
type GameLogic interface {
	// Init is called once after the engine created its GPU resources and before the first frame.
	//
	// Parameters:
	//   - gpu: the engine's renderer, asset store, world, window and configuration
	//
	// Returns:
	//   - error: stops engine initialization
	Init(gpu *GPUContext) error

	// Update advances the game by dt seconds. Implementations run the ECS schedule with ctx.Update.
	//
	// Parameters:
	//   - ctx: the world
	//   - dt: seconds since the previous frame
	Update(ctx *world.Context, dt float32)

	// DrawUI paints the overlay for this frame.
	DrawUI(f *ui.Frame)

	// OnWindowEvent receives every window event.
	OnWindowEvent(e window.Event)

	// OnDeviceEvent receives raw mouse motion.
	OnDeviceEvent(e window.DeviceEvent)

	// OnResize is called after the surface was reconfigured to width x height.
	OnResize(width, height int)

	// CameraMatrix returns the view-projection matrix the frame is drawn with.
	CameraMatrix() mgl32.Mat4

	// CursorVisible reports whether the cursor should be shown this frame.
	CursorVisible() bool
}

var _ GameLogic = &BaseGameLogic{}

// BaseGameLogic is a GameLogic that feeds input into the world, toggles the pause state on the
// toggle_pause action and draws the pause overlay. Embed it and override what the game needs.
type BaseGameLogic struct {
	ctx *world.Context
}

// Init keeps the world so input events can be forwarded to it.
func (b *BaseGameLogic) Init(gpu *GPUContext) error {
	b.ctx = gpu.World
	return nil
}

// Update runs the world systems and handles the toggle_pause action.
func (b *BaseGameLogic) Update(ctx *world.Context, dt float32) {
	b.ctx = ctx
	ctx.Update(dt)
	if !ctx.Actions().JustPressed("toggle_pause") {
		return
	}
	state := ctx.State()
	switch state.Active() {
	case world.StatePlaying:
		state.Set(world.StatePaused)
	case world.StatePaused:
		state.Set(world.StatePlaying)
	}
}

// DrawUI draws the pause overlay while paused.
func (b *BaseGameLogic) DrawUI(f *ui.Frame) {
	if b.ctx != nil && b.ctx.State().Active() == world.StatePaused {
		ui.DrawPauseOverlay(f)
	}
}

// OnWindowEvent forwards keys and mouse buttons to the world.
func (b *BaseGameLogic) OnWindowEvent(e window.Event) {
	if b.ctx == nil {
		return
	}
	switch e.Type {
	case window.EventKeyboardInput:
		if e.Pressed {
			b.ctx.KeyDown(e.Key)
		} else {
			b.ctx.KeyUp(e.Key)
		}
	case window.EventMouseInput:
		b.ctx.MouseButton(e.Button, e.Pressed)
	}
}

// OnDeviceEvent forwards mouse motion to the world.
func (b *BaseGameLogic) OnDeviceEvent(e window.DeviceEvent) {
	if b.ctx != nil {
		b.ctx.MouseMotion(e.DX, e.DY)
	}
}

// OnResize does nothing; the engine already updates the world's aspect ratio.
func (b *BaseGameLogic) OnResize(width, height int) {}

// CameraMatrix returns the world's primary camera matrix.
func (b *BaseGameLogic) CameraMatrix() mgl32.Mat4 {
	if b.ctx == nil {
		return mgl32.Ident4()
	}
	return b.ctx.CameraMatrix()
}

// CursorVisible follows the active game state.
func (b *BaseGameLogic) CursorVisible() bool {
	return b.ctx == nil || b.ctx.State().CursorVisible()
}
