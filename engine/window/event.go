package window

// EventType identifies a window event.
type EventType int

const (
	// EventResized carries the new framebuffer size in Width and Height.
	EventResized EventType = iota
	// EventCloseRequested is sent when the user asks the window to close.
	EventCloseRequested
	// EventKeyboardInput carries Key and Pressed. Key repeats are reported as presses.
	EventKeyboardInput
	// EventMouseInput carries Button and Pressed.
	EventMouseInput
	// EventCursorMoved carries the cursor position in X and Y.
	EventCursorMoved
	// EventScroll carries the vertical wheel offset in Scroll.
	EventScroll
	// EventFocused carries Focused.
	EventFocused
	// EventScaleFactorChanged carries the new content scale in Scale.
	EventScaleFactorChanged
)

func (t EventType) String() string {
	switch t {
	case EventResized:
		return "resized"
	case EventCloseRequested:
		return "close_requested"
	case EventKeyboardInput:
		return "keyboard_input"
	case EventMouseInput:
		return "mouse_input"
	case EventCursorMoved:
		return "cursor_moved"
	case EventScroll:
		return "scroll"
	case EventFocused:
		return "focused"
	case EventScaleFactorChanged:
		return "scale_factor_changed"
	}
	return "unknown"
}

// Event is a window event. Only the fields named by its Type are set.
type Event struct {
	Type    EventType
	Width   int
	Height  int
	Key     int
	Button  int
	Pressed bool
	X, Y    float32
	Scroll  float32
	Focused bool
	Scale   float32
}

// DeviceEvent is raw input not tied to the cursor position. MouseMotion deltas keep arriving while the
// cursor is hidden and captured, which is what camera look uses.
type DeviceEvent struct {
	DX, DY float32
}
