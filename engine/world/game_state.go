package world

import "fmt"

// Built-in game state names. Each one is also an input binding context.
const (
	StatePlaying  = "playing"
	StatePaused   = "paused"
	StateMainMenu = "main_menu"
)

// GameStateConfig declares a state and whether the cursor is visible while it is active.
type GameStateConfig struct {
	Name          string
	CursorVisible bool
}

// DefaultGameStates hides the cursor while playing and shows it in the menus.
func DefaultGameStates() []GameStateConfig {
	return []GameStateConfig{
		{Name: StatePlaying, CursorVisible: false},
		{Name: StatePaused, CursorVisible: true},
		{Name: StateMainMenu, CursorVisible: true},
	}
}

// GameState tracks the active state. The active state selects the input binding context.
type GameState struct {
	active string
	cursor map[string]bool
}

func newGameState() *GameState {
	g := &GameState{}
	_ = g.Configure(DefaultGameStates(), StatePlaying)
	return g
}

// Configure replaces the known states and activates initial. The previous configuration is kept
// when initial is not one of configs.
func (g *GameState) Configure(configs []GameStateConfig, initial string) error {
	lookup := make(map[string]bool, len(configs))
	for _, c := range configs {
		lookup[c.Name] = c.CursorVisible
	}
	if _, ok := lookup[initial]; !ok {
		return fmt.Errorf("initial game state %q is not configured", initial)
	}
	g.cursor = lookup
	g.active = initial
	return nil
}

// Active returns the active state name.
func (g *GameState) Active() string {
	return g.active
}

// Set activates a configured state. Unknown names are ignored and reported false.
func (g *GameState) Set(name string) bool {
	if _, ok := g.cursor[name]; !ok {
		return false
	}
	g.active = name
	return true
}

// CursorVisible reports the cursor visibility of the active state. Unknown states show the cursor.
func (g *GameState) CursorVisible() bool {
	visible, ok := g.cursor[g.active]
	return !ok || visible
}
