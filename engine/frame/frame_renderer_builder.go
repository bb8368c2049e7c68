package frame

import "github.com/cogentcore/webgpu/wgpu"

// FrameRendererBuilderOption is a functional option for configuring a FrameRenderer.
type FrameRendererBuilderOption func(*frameRenderer)

// WithSizeSource sets where the window size is read from when a lost surface is reconfigured.
// Without one the last configured surface size is reused.
//
// Parameters:
//   - src: usually the window
//
// Returns:
//   - FrameRendererBuilderOption: a function that applies the size source to a frameRenderer
func WithSizeSource(src SizeSource) FrameRendererBuilderOption {
	return func(f *frameRenderer) {
		f.size = src
	}
}

// WithResizeCallback sets a function called after every successful Resize.
func WithResizeCallback(fn func(width, height int)) FrameRendererBuilderOption {
	return func(f *frameRenderer) {
		f.onResize = fn
	}
}

// WithClearColor sets the world pass clear color. Defaults to opaque black.
func WithClearColor(c wgpu.Color) FrameRendererBuilderOption {
	return func(f *frameRenderer) {
		f.clearColor = c
	}
}
