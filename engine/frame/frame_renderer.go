package frame

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/engine/assets"
	"github.com/Carmen-Shannon/oxy-render/engine/logging"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-render/engine/ui"
	"github.com/Carmen-Shannon/oxy-render/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
)

var log = logging.With("frame")

// ErrDrawLookup is returned when a drawable references a mesh, material or pipeline that does not exist.
var ErrDrawLookup = errors.New("draw lookup failed")

// SizeSource reports the current window size. The frame renderer reads it to reconfigure a lost surface.
type SizeSource interface {
	Width() int
	Height() int
}

// Stats describes the last rendered frame.
type Stats struct {
	Drawables int
	Draws     int
	UIDraws   int
	Lights    int
	// UITextures is the number of UI textures alive after the frame.
	UITextures int
	// Skipped is true when nothing was drawn because the surface was unconfigured or had to be
	// reconfigured. The UI output of a skipped frame was not applied.
	Skipped bool
}

// frameRenderer is the implementation of the FrameRenderer interface.
type frameRenderer struct {
	r        renderer.Renderer
	store    assets.Store
	uniforms *UniformBridge
	overlay  *uiResources

	size       SizeSource
	onResize   func(width, height int)
	clearColor wgpu.Color
	stats      Stats
}

// FrameRenderer drives one frame: acquire the surface, upload uniforms, draw the world, draw the UI on
// top and present.
//
// Usage pattern:
//
//	fr, err := frame.NewFrameRenderer(r, store, frame.WithSizeSource(win))
//	...
//	if err := fr.Render(ctx, uiOutput); err != nil { ... }
type FrameRenderer interface {
	// Render draws one frame. A lost or outdated surface skips the frame, reconfigures the surface to
	// the window size and returns nil. Any other failure is returned and the frame is abandoned.
	//
	// Parameters:
	//   - w: the world whose camera, lights and drawables are drawn
	//   - overlay: the UI output for this frame, or nil
	//
	// Returns:
	//   - error: an acquire, upload, draw or submit error; lookup failures wrap ErrDrawLookup
	Render(w *world.Context, overlay *ui.Output) error

	// Resize reconfigures the surface and depth texture. Zero in either dimension is ignored.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: a surface configuration error
	Resize(width, height int) error

	// Uniforms returns the uniform bridge.
	Uniforms() *UniformBridge

	// Stats returns counters of the last Render call.
	Stats() Stats

	// Release frees the frame renderer's GPU resources. Assets stay owned by the store.
	Release()
}

var _ FrameRenderer = &frameRenderer{}

// NewFrameRenderer creates the uniform buffers and UI resources. The standard and ui pipelines must
// already be registered with r (see BuiltinPipelines).
//
// Parameters:
//   - r: the renderer
//   - store: the asset store drawables resolve against
//   - options: variadic list of FrameRendererBuilderOption functions
//
// Returns:
//   - FrameRenderer: the frame renderer
//   - error: a missing pipeline or allocation error
func NewFrameRenderer(r renderer.Renderer, store assets.Store, options ...FrameRendererBuilderOption) (FrameRenderer, error) {
	f := &frameRenderer{
		r:          r,
		store:      store,
		clearColor: wgpu.Color{A: 1},
	}
	for _, opt := range options {
		opt(f)
	}

	standard, err := r.LookupPipeline(StandardPipeline)
	if err != nil {
		return nil, err
	}
	if f.uniforms, err = NewUniformBridge(r, standard); err != nil {
		return nil, err
	}

	uiPipeline, err := r.LookupPipeline(UIPipeline)
	if err != nil {
		f.uniforms.Release()
		return nil, err
	}
	if f.overlay, err = newUIResources(r, uiPipeline); err != nil {
		f.uniforms.Release()
		return nil, err
	}
	return f, nil
}

func (f *frameRenderer) Render(w *world.Context, overlay *ui.Output) error {
	f.stats = Stats{}
	if width, height := f.r.SurfaceSize(); width == 0 || height == 0 {
		f.stats.Skipped = true
		return nil
	}

	if err := f.r.AcquireSurface(); err != nil {
		if renderer.IsSurfaceRecoverable(err) {
			width, height := f.windowSize()
			log.Debug("surface needs reconfiguration (%v), resizing to %dx%d", err, width, height)
			f.stats.Skipped = true
			if err := f.Resize(width, height); err != nil {
				log.Warn("surface reconfiguration failed, retrying next frame: %v", err)
			}
			return nil
		}
		return fmt.Errorf("acquire surface: %w", err)
	}

	if err := f.render(w, overlay); err != nil {
		f.r.AbortFrame()
		return err
	}
	f.r.Present()
	return nil
}

func (f *frameRenderer) render(w *world.Context, overlay *ui.Output) error {
	if err := f.r.BeginEncoder(); err != nil {
		return fmt.Errorf("begin encoder: %w", err)
	}

	drawables := w.Drawables()
	f.stats.Drawables = len(drawables)
	if err := f.uniforms.WriteCamera(w.CameraMatrix()); err != nil {
		return fmt.Errorf("camera uniform: %w", err)
	}
	lights, err := f.uniforms.WriteLights(w.LightSnapshot())
	if err != nil {
		return fmt.Errorf("light uniform: %w", err)
	}
	f.stats.Lights = lights
	drawn, err := f.uniforms.WriteModels(drawables)
	if err != nil {
		return fmt.Errorf("model matrices: %w", err)
	}

	if err := f.worldPass(drawables[:drawn]); err != nil {
		return err
	}
	if err := f.uiPass(overlay); err != nil {
		return err
	}

	if err := f.r.Submit(); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}

func (f *frameRenderer) worldPass(drawables []world.Drawable) error {
	err := f.r.BeginPass(renderer.PassDescriptor{
		Label:      "world",
		Clear:      true,
		ClearColor: f.clearColor,
		Depth:      true,
	})
	if err != nil {
		return fmt.Errorf("world pass: %w", err)
	}
	defer f.r.EndPass()

	cam, lights, models := f.uniforms.Providers()
	for i, d := range drawables {
		call, err := f.drawCall(d)
		if err != nil {
			return err
		}
		call.BindGroups[CameraGroup] = cam
		call.BindGroups[LightsGroup] = lights
		if call.Pipeline.HasGroup(ModelGroup) {
			call.BindGroups[ModelGroup] = models
		}
		call.InstanceCount = 1
		call.FirstInstance = uint32(i)
		if err := f.r.Draw(call); err != nil {
			return fmt.Errorf("draw entity %d: %w", d.Entity, err)
		}
		f.stats.Draws++
	}
	return nil
}

func (f *frameRenderer) drawCall(d world.Drawable) (renderer.DrawCall, error) {
	mesh := f.store.Mesh(d.Mesh)
	if mesh == nil {
		return renderer.DrawCall{}, fmt.Errorf("%w: entity %d mesh %s", ErrDrawLookup, d.Entity, d.Mesh)
	}
	mat := f.store.Material(d.Material)
	if mat == nil {
		return renderer.DrawCall{}, fmt.Errorf("%w: entity %d material %s", ErrDrawLookup, d.Entity, d.Material)
	}
	p, err := f.r.LookupPipeline(mat.PipelineName)
	if err != nil {
		return renderer.DrawCall{}, fmt.Errorf("%w: entity %d material %s: %w", ErrDrawLookup, d.Entity, mat.Name, err)
	}
	return renderer.DrawCall{
		Pipeline:   p,
		Mesh:       mesh.Provider(),
		BindGroups: map[int]bind_group_provider.BindGroupProvider{MaterialGroup: mat.Provider},
	}, nil
}

func (f *frameRenderer) uiPass(overlay *ui.Output) error {
	if overlay != nil {
		if err := f.overlay.apply(overlay); err != nil {
			return fmt.Errorf("ui textures: %w", err)
		}
	}

	err := f.r.BeginPass(renderer.PassDescriptor{Label: "ui"})
	if err != nil {
		return fmt.Errorf("ui pass: %w", err)
	}
	draws, drawErr := f.overlay.draw(overlay)
	f.r.EndPass()
	f.stats.UIDraws = draws
	if drawErr != nil {
		return fmt.Errorf("ui draw: %w", drawErr)
	}

	if overlay != nil {
		f.overlay.free(overlay.TexturesFree)
	}
	f.stats.UITextures = f.overlay.textureCount()
	return nil
}

func (f *frameRenderer) windowSize() (int, int) {
	if f.size != nil {
		return f.size.Width(), f.size.Height()
	}
	return f.r.SurfaceSize()
}

func (f *frameRenderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if err := f.r.Resize(width, height); err != nil {
		return err
	}
	if f.onResize != nil {
		f.onResize(width, height)
	}
	return nil
}

func (f *frameRenderer) Uniforms() *UniformBridge {
	return f.uniforms
}

func (f *frameRenderer) Stats() Stats {
	return f.stats
}

func (f *frameRenderer) Release() {
	f.overlay.release()
	f.uniforms.Release()
}
