package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-render/engine/logging"
	"github.com/cogentcore/webgpu/wgpu"
)

var log = logging.With("window")

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetEventCallback sets the function receiving window events: resizes, close requests, keys, mouse
	// buttons, cursor movement, scrolling, focus and scale changes.
	//
	// Parameters:
	//   - callback: function receiving each event (or nil to disable)
	SetEventCallback(callback func(Event))

	// SetDeviceEventCallback sets the function receiving raw mouse motion deltas.
	//
	// Parameters:
	//   - callback: function receiving each delta (or nil to disable)
	SetDeviceEventCallback(callback func(DeviceEvent))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// SetCursorVisible shows the cursor, or hides and captures it for mouse look.
	//
	// Parameters:
	//   - visible: true for a normal cursor, false for a hidden captured cursor
	SetCursorVisible(visible bool)

	// CursorVisible reports the cursor mode last applied.
	CursorVisible() bool

	// ScaleFactor returns physical pixels per logical pixel.
	ScaleFactor() float32

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose makes IsRunning report false so ProcessMessages returns after the current iteration.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth and maxHeight bound the window size during resize.
	maxWidth, maxHeight int

	// minWidth and minHeight bound the window size during resize.
	minWidth, minHeight int

	// width and height are the current framebuffer size in pixels.
	width, height int

	scale         float32
	cursorVisible bool

	// lastX and lastY are the previous cursor position; hasCursor is false until the first sample.
	lastX, lastY float32
	hasCursor    bool

	// closeRequested is set by RequestClose.
	closeRequested bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	onEvent       func(Event)
	onDeviceEvent func(DeviceEvent)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:         "oxy",
		maxWidth:      3840,
		maxHeight:     2160,
		minWidth:      320,
		minHeight:     200,
		width:         1280,
		height:        720,
		scale:         1,
		cursorVisible: true,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetEventCallback(callback func(Event)) {
	w.onEvent = callback
}

func (w *engineWindow) SetDeviceEventCallback(callback func(DeviceEvent)) {
	w.onDeviceEvent = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) SetCursorVisible(visible bool) {
	if visible == w.cursorVisible {
		return
	}
	w.cursorVisible = visible
	// the next sample after a mode switch jumps, so restart delta tracking
	w.hasCursor = false
	platformSetCursorVisible(w, visible)
}

func (w *engineWindow) CursorVisible() bool {
	return w.cursorVisible
}

func (w *engineWindow) ScaleFactor() float32 {
	return w.scale
}

func (w *engineWindow) IsRunning() bool {
	return !w.closeRequested && platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	w.closeRequested = true
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// emit delivers a window event, updating the stored size and scale first.
func (w *engineWindow) emit(e Event) {
	switch e.Type {
	case EventResized:
		w.width, w.height = e.Width, e.Height
	case EventScaleFactorChanged:
		w.scale = e.Scale
	case EventFocused:
		if !e.Focused {
			w.hasCursor = false
		}
	}
	if w.onEvent != nil {
		w.onEvent(e)
	}
}

// cursorMoved emits EventCursorMoved and the motion delta since the previous sample as a DeviceEvent.
// The first sample after creation, a focus loss or a cursor mode switch only records the position.
func (w *engineWindow) cursorMoved(x, y float32) {
	w.emit(Event{Type: EventCursorMoved, X: x, Y: y})
	if w.hasCursor && w.onDeviceEvent != nil {
		if dx, dy := x-w.lastX, y-w.lastY; dx != 0 || dy != 0 {
			w.onDeviceEvent(DeviceEvent{DX: dx, DY: dy})
		}
	}
	w.lastX, w.lastY, w.hasCursor = x, y, true
}
