package world

import "github.com/Carmen-Shannon/oxy-render/engine/light"

// ContextBuilderOption is a functional option for configuring a Context.
type ContextBuilderOption func(*Context)

// WithInputBindings replaces the default input bindings.
//
// Parameters:
//   - b: the bindings; nil keeps the defaults
//
// Returns:
//   - ContextBuilderOption: a function that applies the bindings to a Context
func WithInputBindings(b *InputBindings) ContextBuilderOption {
	return func(c *Context) {
		if b != nil {
			c.bindings = b
		}
	}
}

// WithEnvironment sets the ambient term and the sun used until a sun entity is spawned.
func WithEnvironment(env light.Environment) ContextBuilderOption {
	return func(c *Context) {
		c.environment = env
	}
}

// WithGameStates replaces the default game states. An initial state that is not configured is logged
// and the defaults are kept.
func WithGameStates(configs []GameStateConfig, initial string) ContextBuilderOption {
	return func(c *Context) {
		if err := c.state.Configure(configs, initial); err != nil {
			log.Warn("%v", err)
		}
	}
}
