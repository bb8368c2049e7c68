package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-render/engine/assets"
	"github.com/Carmen-Shannon/oxy-render/engine/config"
	"github.com/Carmen-Shannon/oxy-render/engine/frame"
	"github.com/Carmen-Shannon/oxy-render/engine/logging"
	"github.com/Carmen-Shannon/oxy-render/engine/profiler"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/ui"
	"github.com/Carmen-Shannon/oxy-render/engine/window"
	"github.com/Carmen-Shannon/oxy-render/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
)

var log = logging.With("engine")

// ErrNoGameLogic is returned by Init when the engine was built without a GameLogic.
var ErrNoGameLogic = errors.New("no game logic configured")

// assetRef remembers which named assets an entity drew with, so it can be pointed at the new handles
// after a reload.
type assetRef struct {
	mesh     string
	material string
}

// engine implements the Engine interface.
// Runs update, render and present on the window's message loop.
type engine struct {
	cfg   *config.Config
	logic GameLogic

	window   window.Window
	renderer renderer.Renderer
	// ownsRenderer is true when Init created the renderer and Release must destroy it
	ownsRenderer bool

	store   assets.Store
	world   *world.Context
	frame   frame.FrameRenderer
	ui      ui.UI
	watcher *assets.Watcher

	profiler         *profiler.Profiler
	profilingEnabled bool
	showHUD          bool

	initialized     bool
	reloadRequested bool
	assetRefs       map[uint64]assetRef

	failures  int
	lastFrame time.Time

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
	releaseOnce sync.Once

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It owns the window, the renderer, the asset store and the world, and drives one frame per window
// message loop iteration.
//
// Usage pattern:
//
//	e := engine.NewEngine(engine.WithConfig(cfg), engine.WithGameLogic(&game{}))
//	if err := e.Init(); err != nil { ... }
//	e.Run()
type Engine interface {
	// Init creates the window (unless one was given), the renderer, the asset store, the world, the frame
	// renderer and the UI, loads the configured manifest and calls GameLogic.Init.
	//
	// Returns:
	//   - error: a configuration, device, asset or game logic error
	Init() error

	// Step runs one frame: pending asset reloads, GameLogic.Update, the camera matrix, cursor sync, the
	// UI and the frame renderer. A failed frame is logged and dropped; after the configured number of
	// failures in a row the engine quits.
	//
	// Returns:
	//   - error: the frame's render error, or nil
	Step() error

	// Run initializes the engine if needed, runs the window message loop until the window closes or
	// Quit is called, and releases everything.
	//
	// Returns:
	//   - error: an initialization error
	Run() error

	// Quit stops the frame loop. Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Done is closed once Quit has been called.
	Done() <-chan struct{}

	// Release frees the GPU resources, the watcher and the window. Safe to call multiple times.
	Release()

	// ReloadAssets schedules a full asset store reload at the top of the next frame.
	ReloadAssets()

	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer, nil before Init.
	Renderer() renderer.Renderer

	// Assets returns the asset store, nil before Init.
	Assets() assets.Store

	// World returns the world, nil before Init.
	World() *world.Context

	// FrameStats returns the counters of the last rendered frame.
	FrameStats() frame.Stats

	// Profiler returns the frame rate and memory profiler.
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetHUDVisible shows or hides the stats overlay.
	SetHUDVisible(visible bool)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Nothing is created on the GPU until Init.
//
// Parameters:
//   - options: functional options for engine configuration (config, game logic, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		cfg:         config.Default(),
		quitChannel: make(chan struct{}),
		assetRefs:   make(map[uint64]assetRef),
		showHUD:     true,
	}

	for _, opt := range options {
		opt(e)
	}

	e.profiler = profiler.NewProfiler(profiler.WithLogging(e.profilingEnabled))
	return e
}

func (e *engine) Init() error {
	if e.initialized {
		return nil
	}
	if e.logic == nil {
		return ErrNoGameLogic
	}
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	if err := logging.SetLevel(e.cfg.Log.Level); err != nil {
		return err
	}

	if e.window == nil {
		e.window = window.NewWindow(
			window.WithTitle(e.cfg.Window.Title),
			window.WithSize(e.cfg.Window.Width, e.cfg.Window.Height),
		)
	}

	if err := e.initRenderer(); err != nil {
		e.Release()
		return err
	}

	storeOpts := []assets.StoreBuilderOption{
		assets.WithSphereBands(e.cfg.Render.SphereBands[0], e.cfg.Render.SphereBands[1]),
	}
	if e.cfg.Assets.DecodeWorkers > 0 {
		storeOpts = append(storeOpts, assets.WithDecodeWorkers(e.cfg.Assets.DecodeWorkers))
	}
	e.store = assets.NewStore(e.renderer, storeOpts...)
	if err := e.store.Initialize(e.cfg.Assets.Manifest); err != nil {
		e.Release()
		return fmt.Errorf("initialize assets: %w", err)
	}

	e.world = world.NewContext(world.WithInputBindings(e.cfg.InputBindings()))
	e.world.Resize(e.window.Width(), e.window.Height())

	c := e.cfg.Render.ClearColor
	fr, err := frame.NewFrameRenderer(e.renderer, e.store,
		frame.WithSizeSource(e.window),
		frame.WithClearColor(wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]}),
		frame.WithResizeCallback(e.onResize),
	)
	if err != nil {
		e.Release()
		return fmt.Errorf("create frame renderer: %w", err)
	}
	e.frame = fr
	e.ui = ui.NewUI()

	if e.cfg.Assets.HotReload && e.cfg.Assets.Manifest != "" {
		w, err := assets.NewWatcher(e.cfg.Assets.Manifest)
		if err != nil {
			log.Warn("hot reload disabled: %v", err)
		} else {
			e.watcher = w
		}
	}

	e.window.SetEventCallback(e.handleWindowEvent)
	e.window.SetDeviceEventCallback(e.logic.OnDeviceEvent)
	e.window.SetUpdateCallback(e.handleUpdate)

	gpu := &GPUContext{
		Renderer: e.renderer,
		Assets:   e.store,
		World:    e.world,
		Window:   e.window,
		Config:   e.cfg,
	}
	if err := e.logic.Init(gpu); err != nil {
		e.Release()
		return fmt.Errorf("game logic init: %w", err)
	}

	e.initialized = true
	e.lastFrame = time.Now()
	log.Info("engine ready: %dx%d, present mode %s", e.window.Width(), e.window.Height(), e.cfg.PresentMode())
	return nil
}

func (e *engine) initRenderer() error {
	if e.renderer != nil {
		return e.renderer.RegisterPipelines(frame.BuiltinPipelines()...)
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, e.window,
		renderer.WithPresentMode(e.cfg.PresentMode()),
		renderer.WithPipelines(frame.BuiltinPipelines()...),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	e.renderer = r
	e.ownsRenderer = true
	return nil
}

func (e *engine) Run() error {
	if err := e.Init(); err != nil {
		return err
	}
	defer e.Release()
	e.window.ProcessMessages()
	return nil
}

// handleUpdate is the window's per-iteration callback.
func (e *engine) handleUpdate() {
	select {
	case <-e.quitChannel:
		e.window.RequestClose()
		return
	default:
	}
	_ = e.Step()
}

func (e *engine) Step() (err error) {
	if !e.initialized {
		return nil
	}
	frameStart := time.Now()
	dt := float32(frameStart.Sub(e.lastFrame).Seconds())
	e.lastFrame = frameStart

	// Recover from panics in game code to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			log.Error("frame recovered from panic: %v", r)
			err = fmt.Errorf("frame panic: %v", r)
			e.Quit()
		}
	}()

	if e.watcher != nil && e.watcher.Pending() {
		e.reloadRequested = true
	}
	if e.reloadRequested {
		e.reloadRequested = false
		e.reloadAssets()
	}

	e.logic.Update(e.world, dt)
	e.world.SetCameraMatrix(e.logic.CameraMatrix())

	if visible := e.logic.CursorVisible(); visible != e.window.CursorVisible() {
		e.window.SetCursorVisible(visible)
	}

	overlay := e.drawUI()
	err = e.frame.Render(e.world, overlay)
	if err != nil || e.frame.Stats().Skipped {
		e.ui.Invalidate()
	}
	e.countFailure(err)

	e.profiler.Tick()

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return err
}

func (e *engine) drawUI() *ui.Output {
	f := e.ui.Begin(ui.ScreenDescriptor{
		Width:  e.window.Width(),
		Height: e.window.Height(),
		Scale:  e.window.ScaleFactor(),
	})
	if e.showHUD {
		ui.DrawHUD(f, ui.HUDStats{
			FPS:       e.profiler.FPS(),
			Drawables: len(e.world.Drawables()),
			Lights:    e.frame.Stats().Lights,
			State:     e.world.State().Active(),
		})
	}
	e.logic.DrawUI(f)
	return e.ui.End(f)
}

func (e *engine) countFailure(err error) {
	if err == nil {
		e.failures = 0
		return
	}
	e.failures++
	log.Error("frame dropped (%d in a row): %v", e.failures, err)
	if limit := e.cfg.Render.MaxConsecutiveFailures; limit > 0 && e.failures >= limit {
		log.Error("%d consecutive frames failed, stopping", e.failures)
		e.Quit()
	}
}

// reloadAssets rebuilds the store and moves every drawable onto the handles of the new generation by
// name. A failed reload leaves the store empty; frames then fail with frame.ErrDrawLookup until the
// next successful reload.
func (e *engine) reloadAssets() {
	e.captureAssetRefs()
	if err := e.store.Reload(); err != nil {
		log.Error("asset reload failed: %v", err)
		return
	}
	e.world.RemapRenderers(func(entity uint64, r world.MeshRenderer) world.MeshRenderer {
		ref, ok := e.assetRefs[entity]
		if !ok {
			return r
		}
		if id, err := e.store.ResolveMesh(ref.mesh); err == nil {
			r.Mesh = id
		} else {
			log.Warn("entity %d: %v", entity, err)
		}
		if id, err := e.store.ResolveMaterial(ref.material); err == nil {
			r.Material = id
		} else {
			log.Warn("entity %d: %v", entity, err)
		}
		return r
	})
}

// captureAssetRefs records the asset names of every drawable whose handles still resolve. Entities
// whose handles went stale in an earlier failed reload keep the names recorded before it.
func (e *engine) captureAssetRefs() {
	refs := make(map[uint64]assetRef, len(e.assetRefs))
	e.world.RemapRenderers(func(entity uint64, r world.MeshRenderer) world.MeshRenderer {
		ref := e.assetRefs[entity]
		if m := e.store.Mesh(r.Mesh); m != nil {
			ref.mesh = m.Name
		}
		if m := e.store.Material(r.Material); m != nil {
			ref.material = m.Name
		}
		if ref.mesh != "" || ref.material != "" {
			refs[entity] = ref
		}
		return r
	})
	e.assetRefs = refs
}

func (e *engine) onResize(width, height int) {
	e.world.Resize(width, height)
	e.logic.OnResize(width, height)
}

func (e *engine) handleWindowEvent(ev window.Event) {
	switch ev.Type {
	case window.EventResized:
		if err := e.frame.Resize(ev.Width, ev.Height); err != nil {
			log.Warn("resize to %dx%d failed: %v", ev.Width, ev.Height, err)
		}
	case window.EventCloseRequested:
		e.Quit()
	}
	e.logic.OnWindowEvent(ev)
}

// Quit signals the frame loop to stop. The window is asked to close on its next iteration, so Quit may
// be called from any goroutine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Done() <-chan struct{} {
	return e.quitChannel
}

func (e *engine) Release() {
	e.releaseOnce.Do(func() {
		if e.watcher != nil {
			if err := e.watcher.Close(); err != nil {
				log.Warn("close watcher: %v", err)
			}
		}
		if e.frame != nil {
			e.frame.Release()
		}
		if e.store != nil {
			e.store.Release()
		}
		if e.renderer != nil && e.ownsRenderer {
			e.renderer.Release()
		}
		if e.window != nil {
			if err := e.window.Close(); err != nil {
				log.Warn("close window: %v", err)
			}
		}
		e.initialized = false
	})
}

func (e *engine) ReloadAssets() {
	e.reloadRequested = true
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Assets() assets.Store {
	return e.store
}

func (e *engine) World() *world.Context {
	return e.world
}

func (e *engine) FrameStats() frame.Stats {
	if e.frame == nil {
		return frame.Stats{}
	}
	return e.frame.Stats()
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
	e.profiler.SetLogging(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
	e.profiler.SetLogging(false)
}

func (e *engine) SetHUDVisible(visible bool) {
	e.showHUD = visible
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
