package window

import "testing"

func TestBuilderDefaults(t *testing.T) {
	w := newEngineWindow(WithTitle("demo"), WithSize(800, 0), WithCursorVisible(false))
	if w.title != "demo" || w.width != 800 || w.height != 720 {
		t.Fatalf("window = %q %dx%d", w.title, w.width, w.height)
	}
	if w.CursorVisible() || w.ScaleFactor() != 1 {
		t.Fatalf("cursor visible %v, scale %v", w.CursorVisible(), w.ScaleFactor())
	}
}

func TestEmitTracksSizeAndScale(t *testing.T) {
	w := newEngineWindow()
	var got []EventType
	w.SetEventCallback(func(e Event) { got = append(got, e.Type) })

	w.emit(Event{Type: EventResized, Width: 1024, Height: 768})
	w.emit(Event{Type: EventScaleFactorChanged, Scale: 2})

	if w.Width() != 1024 || w.Height() != 768 || w.ScaleFactor() != 2 {
		t.Fatalf("window = %dx%d scale %v", w.Width(), w.Height(), w.ScaleFactor())
	}
	if len(got) != 2 || got[0] != EventResized || got[1] != EventScaleFactorChanged {
		t.Fatalf("events = %v", got)
	}
}

func TestCursorMotionDeltas(t *testing.T) {
	w := newEngineWindow()
	var deltas []DeviceEvent
	w.SetDeviceEventCallback(func(e DeviceEvent) { deltas = append(deltas, e) })

	w.cursorMoved(100, 100)
	w.cursorMoved(103, 98)
	w.cursorMoved(103, 98)
	if len(deltas) != 1 || deltas[0] != (DeviceEvent{DX: 3, DY: -2}) {
		t.Fatalf("deltas = %v", deltas)
	}

	// switching cursor mode restarts tracking so the warp is not reported as motion
	w.SetCursorVisible(false)
	w.cursorMoved(640, 360)
	w.cursorMoved(641, 360)
	if len(deltas) != 2 || deltas[1] != (DeviceEvent{DX: 1}) {
		t.Fatalf("deltas after mode switch = %v", deltas)
	}

	w.emit(Event{Type: EventFocused, Focused: false})
	w.cursorMoved(10, 10)
	if len(deltas) != 2 {
		t.Fatal("first sample after focus loss produced a delta")
	}
}

func TestRequestClose(t *testing.T) {
	w := newEngineWindow()
	w.RequestClose()
	if w.IsRunning() {
		t.Fatal("window running after RequestClose")
	}
	if err := w.Close(); err == nil {
		t.Fatal("Close on a window without a platform window succeeded")
	}
}

func TestEventTypeString(t *testing.T) {
	if EventKeyboardInput.String() != "keyboard_input" || EventType(99).String() != "unknown" {
		t.Fatal("unexpected event names")
	}
}
