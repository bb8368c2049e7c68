package world

import (
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// GameTime is the frame clock advanced once per Update.
type GameTime struct {
	// Delta is the seconds elapsed since the previous frame.
	Delta float32
	// Tick counts updates since the context was created.
	Tick uint64
	// Total is the seconds elapsed since the context was created.
	Total float64
}

// RawInputState is the device state collected from window events between two updates.
type RawInputState struct {
	PressedKeys  map[int]struct{}
	MouseButtons map[int]struct{}
	// MouseDelta accumulates cursor movement in pixels and is reset at the end of each update.
	MouseDelta mgl32.Vec2
}

func newRawInputState() *RawInputState {
	return &RawInputState{
		PressedKeys:  make(map[int]struct{}),
		MouseButtons: make(map[int]struct{}),
	}
}

// KeyDown reports whether the key is held.
func (r *RawInputState) KeyDown(code int) bool {
	_, ok := r.PressedKeys[code]
	return ok
}

// ActionState is the set of bound actions active this frame and the previous one.
type ActionState struct {
	active   map[string]struct{}
	previous map[string]struct{}
}

func newActionState() *ActionState {
	return &ActionState{
		active:   make(map[string]struct{}),
		previous: make(map[string]struct{}),
	}
}

// Pressed reports whether the action is active this frame.
func (a *ActionState) Pressed(action string) bool {
	_, ok := a.active[action]
	return ok
}

// JustPressed reports whether the action became active this frame.
func (a *ActionState) JustPressed(action string) bool {
	_, was := a.previous[action]
	return a.Pressed(action) && !was
}

func (a *ActionState) set(action string) {
	a.active[action] = struct{}{}
}

func (a *ActionState) clear() {
	clear(a.active)
}

// rollover copies the last frame's actions into the previous set before they are recomputed.
func (a *ActionState) rollover() {
	clear(a.previous)
	for k := range a.active {
		a.previous[k] = struct{}{}
	}
}

// LightSnapshot is the lighting state gathered by the light sync system, in spawn order.
type LightSnapshot struct {
	Environment light.Environment
	Lights      []light.Light
}
