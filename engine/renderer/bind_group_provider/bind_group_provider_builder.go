package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithSharedBindGroupLayout sets a layout owned elsewhere (usually a pipeline) for this provider.
// The provider's bind group is built against it and Release leaves it alone.
//
// Parameters:
//   - bgl: the bind group layout to use for this provider
//
// Returns:
//   - BindGroupProviderOption: a function that sets the bind group layout for this provider
func WithSharedBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
		p.sharedLayout = bgl != nil
	}
}

// WithSharedTextureView binds a texture view owned by another provider.
//
// Parameters:
//   - binding: the binding index for this view
//   - tv: the view to bind
//
// Returns:
//   - BindGroupProviderOption: a function that sets the view for the specified binding
func WithSharedTextureView(binding int, tv *wgpu.TextureView) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.textureViews[binding] = tv
		p.sharedTextureViews[binding] = true
	}
}

// WithSharedSampler binds a sampler owned elsewhere.
//
// Parameters:
//   - binding: the binding index for this sampler
//   - s: the sampler to bind
//
// Returns:
//   - BindGroupProviderOption: a function that sets the sampler for the specified binding
func WithSharedSampler(binding int, s *wgpu.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[binding] = s
		p.sharedSamplers[binding] = true
	}
}

// WithBuffer sets an owned buffer for a specific binding index. Used when a buffer must exist before
// InitBindGroup runs, for example a storage buffer sized for a fixed capacity.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer for the specified binding
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}
