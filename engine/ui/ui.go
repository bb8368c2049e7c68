package ui

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/logging"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

var log = logging.With("ui")

// DefaultFontSize is the point size of the built-in UI font.
const DefaultFontSize = 16.0

// panelState is a rasterized panel kept alive across frames.
type panelState struct {
	id            TextureID
	key           string
	width, height int
	used          bool
}

// ui implements the UI interface.
type ui struct {
	mu sync.Mutex

	fontData []byte
	fontSize float64
	source   *text.FontSource

	panels map[string]*panelState
	nextID TextureID
	// dropped holds textures of invalidated panels, listed in the next frame's TexturesFree
	dropped []TextureID
}

// UI is the immediate-mode overlay layer. Each frame the caller opens a Frame with Begin, paints panels into
// it and closes it with End, which returns the Output the frame renderer composites over the world pass.
// Panels are rasterized on the CPU and cached as textures keyed by their content key, so an unchanged
// panel costs no upload.
type UI interface {
	// Begin opens a frame laid out on screen.
	//
	// Parameters:
	//   - screen: the surface the frame is drawn onto
	//
	// Returns:
	//   - *Frame: the frame to paint panels into
	Begin(screen ScreenDescriptor) *Frame

	// End closes the frame and produces its output. Panels that were not painted this frame have their
	// textures listed in TexturesFree.
	//
	// Parameters:
	//   - f: the frame returned by Begin
	//
	// Returns:
	//   - *Output: the meshes and texture changes for the frame renderer
	End(f *Frame) *Output

	// Invalidate forgets every cached panel so the next frame rasterizes and uploads them again. Call it
	// when a frame's Output was never applied, for example because the frame was dropped.
	Invalidate()

	// PanelCount returns the number of cached panel textures.
	PanelCount() int
}

var _ UI = &ui{}

// NewUI creates a UI with the built-in Go Regular font unless another font is configured.
//
// Parameters:
//   - options: functional options for the font
//
// Returns:
//   - UI: the new UI
func NewUI(options ...UIBuilderOption) UI {
	u := &ui{
		fontData: goregular.TTF,
		fontSize: DefaultFontSize,
		panels:   make(map[string]*panelState),
	}
	for _, opt := range options {
		opt(u)
	}

	source, err := text.NewFontSource(u.fontData)
	if err != nil {
		log.Warn("failed to load UI font, text will not render: %v", err)
	} else {
		u.source = source
	}
	return u
}

func (u *ui) Begin(screen ScreenDescriptor) *Frame {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, p := range u.panels {
		p.used = false
	}
	return &Frame{ui: u, screen: screen, out: &Output{Screen: screen}}
}

func (u *ui) End(f *Frame) *Output {
	u.mu.Lock()
	defer u.mu.Unlock()
	f.out.TexturesFree = append(f.out.TexturesFree, u.dropped...)
	u.dropped = u.dropped[:0]
	for _, name := range common.SortedKeys(u.panels) {
		p := u.panels[name]
		if !p.used {
			f.out.TexturesFree = append(f.out.TexturesFree, p.id)
			delete(u.panels, name)
		}
	}
	out := f.out
	f.out = nil
	return out
}

func (u *ui) Invalidate() {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, name := range common.SortedKeys(u.panels) {
		u.dropped = append(u.dropped, u.panels[name].id)
	}
	clear(u.panels)
}

func (u *ui) PanelCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.panels)
}

// panel returns the cached state for name and whether it must be rasterized again.
func (u *ui) panel(name, key string, width, height int) (*panelState, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.panels[name]
	if !ok {
		u.nextID++
		p = &panelState{id: u.nextID}
		u.panels[name] = p
	}
	p.used = true
	stale := !ok || p.key != key || p.width != width || p.height != height
	p.key, p.width, p.height = key, width, height
	return p, stale
}

func (u *ui) face(size float64) text.Face {
	if u.source == nil {
		return nil
	}
	return u.source.Face(size)
}

// Frame collects one frame of UI. It is not safe for concurrent use.
type Frame struct {
	ui     *ui
	screen ScreenDescriptor
	out    *Output
}

// Screen returns the screen the frame is laid out on.
func (f *Frame) Screen() ScreenDescriptor {
	return f.screen
}

// Size returns the frame size in logical pixels.
func (f *Frame) Size() (float32, float32) {
	return f.screen.Logical()
}

// Panel places a rectangle of UI at (x, y) with size (w, h) in logical pixels, drawn after every panel
// placed before it. paint runs only when key differs from the key the panel was last painted with, or
// when the panel's pixel size changed. The gg context it receives is scaled so paint draws in logical
// pixels, with the UI font already set.
//
// Parameters:
//   - name: identifies the panel across frames
//   - x, y, w, h: the panel rectangle in logical pixels
//   - key: the content key; an unchanged key reuses the cached texture
//   - paint: draws the panel contents
func (f *Frame) Panel(name string, x, y, w, h float32, key string, paint func(dc *gg.Context)) {
	if f.out == nil {
		panic(fmt.Sprintf("ui: Panel %q on a frame that already ended", name))
	}
	if w <= 0 || h <= 0 {
		return
	}
	scale := max(f.screen.Scale, 1)
	pw, ph := int(w*scale+0.5), int(h*scale+0.5)

	p, stale := f.ui.panel(name, key, pw, ph)
	if stale {
		dc := gg.NewContext(pw, ph)
		dc.Scale(float64(scale), float64(scale))
		if face := f.ui.face(f.ui.fontSize); face != nil {
			dc.SetFont(face)
		}
		paint(dc)
		staging := common.ImageToStaging(dc.Image())
		if err := dc.Close(); err != nil {
			log.Warn("panel %s: %v", name, err)
		}
		f.out.TexturesSet = append(f.out.TexturesSet, TextureDelta{ID: p.id, Image: staging})
	}
	f.out.Meshes = append(f.out.Meshes, Quad(p.id, x, y, w, h))
}

// Quad returns a textured rectangle mesh covering the whole texture.
//
// Parameters:
//   - id: the texture to sample
//   - x, y, w, h: the rectangle in logical pixels
//
// Returns:
//   - Mesh: four vertices and two triangles
func Quad(id TextureID, x, y, w, h float32) Mesh {
	white := [4]float32{1, 1, 1, 1}
	return Mesh{
		Texture: id,
		Vertices: []GPUVertex{
			{Position: [2]float32{x, y}, UV: [2]float32{0, 0}, Color: white},
			{Position: [2]float32{x + w, y}, UV: [2]float32{1, 0}, Color: white},
			{Position: [2]float32{x + w, y + h}, UV: [2]float32{1, 1}, Color: white},
			{Position: [2]float32{x, y + h}, UV: [2]float32{0, 1}, Color: white},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}
