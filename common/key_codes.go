package common

import "strings"

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW         = 87  // W key (ASCII)
	KeyA         = 65  // A key (ASCII)
	KeyS         = 83  // S key (ASCII)
	KeyD         = 68  // D key (ASCII)
	KeyQ         = 81  // Q key (ASCII)
	KeyE         = 69  // E key (ASCII)
	KeyF         = 70  // F key (ASCII)
	KeyR         = 82  // R key (ASCII)
	KeySpace     = 32  // Spacebar (ASCII)
	KeyBackspace = 259 // Backspace key (GLFW)
	KeyEsc       = 256 // Escape key (GLFW)
	KeyEnter     = 257 // Enter key (GLFW)
	KeyTab       = 258 // Tab key (GLFW)
	KeyF1        = 290 // F1 key (GLFW)

	KeyLeftShift    = 340 // Left Shift (GLFW)
	KeyLeftControl  = 341 // Left Control (GLFW)
	KeyRightShift   = 344 // Right Shift (GLFW)
	KeyRightControl = 345 // Right Control (GLFW)
)

// keyNames maps binding-file key names onto key codes. Lookups are case-insensitive.
var keyNames = map[string]int{
	"keyw":         KeyW,
	"keya":         KeyA,
	"keys":         KeyS,
	"keyd":         KeyD,
	"keyq":         KeyQ,
	"keye":         KeyE,
	"keyf":         KeyF,
	"keyr":         KeyR,
	"space":        KeySpace,
	"backspace":    KeyBackspace,
	"escape":       KeyEsc,
	"enter":        KeyEnter,
	"tab":          KeyTab,
	"f1":           KeyF1,
	"shiftleft":    KeyLeftShift,
	"shiftright":   KeyRightShift,
	"controlleft":  KeyLeftControl,
	"controlright": KeyRightControl,
}

// KeyCodeByName resolves a key name as written in an input bindings file (e.g. "KeyW", "Space", "ShiftLeft").
//
// Parameters:
//   - name: the key name
//
// Returns:
//   - int: the key code
//   - bool: false if the name is unknown
func KeyCodeByName(name string) (int, bool) {
	code, ok := keyNames[strings.ToLower(name)]
	return code, ok
}
