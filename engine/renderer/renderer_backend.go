package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrPipelineNotFound is returned when a pipeline key has not been registered.
	ErrPipelineNotFound = errors.New("pipeline not found")
	// ErrSurfaceLost is returned when the swapchain surface was lost and must be reconfigured.
	ErrSurfaceLost = errors.New("surface lost")
	// ErrSurfaceOutdated is returned when the swapchain no longer matches the window and must be reconfigured.
	ErrSurfaceOutdated = errors.New("surface outdated")
	// ErrNoFrame is returned when a pass or draw is issued outside of an acquired frame.
	ErrNoFrame = errors.New("no frame in progress")
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeMailbox replaces the queued frame with the newest one. Falls back to VSync when the
	// surface does not support it.
	PresentModeMailbox PresentMode = iota

	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency. Falls back to VSync when unsupported.
	PresentModeUncapped
)

// ParsePresentMode maps a config name ("mailbox", "vsync", "uncapped") to a PresentMode.
func ParsePresentMode(name string) (PresentMode, error) {
	switch strings.ToLower(name) {
	case "", "mailbox":
		return PresentModeMailbox, nil
	case "vsync", "fifo":
		return PresentModeVSync, nil
	case "uncapped", "immediate":
		return PresentModeUncapped, nil
	}
	return PresentModeMailbox, fmt.Errorf("unknown present mode %q", name)
}

func (m PresentMode) String() string {
	switch m {
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeVSync:
		return "vsync"
	case PresentModeUncapped:
		return "uncapped"
	}
	return fmt.Sprintf("PresentMode(%d)", int(m))
}

// DepthFormat is the format of the depth attachment used by every depth-tested pipeline.
const DepthFormat = wgpu.TextureFormatDepth32Float

// PassDescriptor describes one render pass within a frame.
type PassDescriptor struct {
	// Label is a debug label for the pass.
	Label string
	// Clear clears the color target to ClearColor when true, otherwise the previous contents are loaded.
	Clear bool
	// ClearColor is the color the target is cleared to.
	ClearColor wgpu.Color
	// Depth attaches the depth buffer, cleared to 1.0 at the start of the pass.
	Depth bool
}

// DrawCall describes one indexed draw.
type DrawCall struct {
	// Pipeline is the registered pipeline to draw with.
	Pipeline pipeline.Pipeline
	// Mesh holds the vertex and index buffers.
	Mesh bind_group_provider.BindGroupProvider
	// BindGroups maps group indices to the providers whose bind groups are set before drawing.
	BindGroups map[int]bind_group_provider.BindGroupProvider
	// InstanceCount is the number of instances to draw. Zero is treated as one.
	InstanceCount uint32
	// FirstInstance is the first instance index, used to index per-draw storage data.
	FirstInstance uint32
}

// RendererBackend is the GPU API behind a Renderer. It owns the device, queue and surface and performs
// every GPU object creation and release on the Renderer's behalf. The wgpu implementation is the only
// production backend; tests substitute a recording fake.
type RendererBackend interface {
	bind_group_provider.Releaser

	// ConfigureSurface (re)configures the swapchain and recreates the depth texture at the given size.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: an error if the surface or depth texture could not be created
	ConfigureSurface(width, height int) error

	// SurfaceSize returns the configured swapchain size, or zeros before the first configuration.
	SurfaceSize() (width, height int)

	// DepthExtent returns the size of the current depth texture.
	DepthExtent() (width, height int)

	// SurfaceFormat returns the color format of the configured swapchain.
	SurfaceFormat() wgpu.TextureFormat

	// SetPresentMode stores the preferred present mode. It is applied on the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline creates the bind group layouts and the GPU render pipeline for p and stores them on p.
	//
	// Parameters:
	//   - p: the pipeline to compile
	//
	// Returns:
	//   - error: an error if a shader module, layout or the pipeline could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// ReleaseRenderPipeline releases the GPU objects created by RegisterRenderPipeline.
	ReleaseRenderPipeline(p pipeline.Pipeline)

	// InitMeshBuffers creates vertex and index buffers sized to the data and uploads it.
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// WriteMeshBuffers uploads new mesh data into the provider's existing buffers. The caller guarantees the data fits.
	WriteMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates any missing buffers and the bind group described by descriptor. Texture and sampler
	// bindings must already be present on the provider.
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// InitTextureView creates a texture from staging data and stores it with its view at the binding.
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler and stores it at the binding.
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes each staged write to its provider's buffer.
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// AcquireSurface acquires the next swapchain image. Lost and outdated surfaces are reported as
	// ErrSurfaceLost and ErrSurfaceOutdated.
	AcquireSurface() error

	// BeginEncoder creates the command encoder for the acquired frame.
	BeginEncoder() error

	// BeginPass starts a render pass targeting the acquired image.
	BeginPass(desc PassDescriptor) error

	// Draw records an indexed draw into the current pass.
	Draw(call DrawCall) error

	// EndPass ends the current render pass.
	EndPass()

	// Submit finishes the encoder and submits the command buffer.
	Submit() error

	// Present presents the acquired image and releases the frame's surface references.
	Present()

	// AbortFrame drops any in-progress pass, encoder and surface image without submitting.
	AbortFrame()
}

// classifySurfaceError maps a swapchain acquire failure to ErrSurfaceLost or ErrSurfaceOutdated when its
// status text names one of them. Other errors, including a lost device, are returned unchanged.
func classifySurfaceError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "device-lost"), strings.Contains(msg, "device lost"), strings.Contains(msg, "devicelost"):
		return err
	case strings.Contains(msg, "outdated"):
		return fmt.Errorf("%w: %v", ErrSurfaceOutdated, err)
	case strings.Contains(msg, "lost"):
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	}
	return err
}

// IsSurfaceRecoverable reports whether err means the surface only needs reconfiguring.
func IsSurfaceRecoverable(err error) bool {
	return errors.Is(err, ErrSurfaceLost) || errors.Is(err, ErrSurfaceOutdated)
}
