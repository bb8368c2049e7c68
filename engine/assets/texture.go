package assets

import (
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// DefaultNormalTexture is the built-in flat normal map bound when a material has none.
	DefaultNormalTexture = "default_normal"
	// DefaultWhiteTexture is the built-in white diffuse texture.
	DefaultWhiteTexture = "default_white"
)

var (
	flatNormal = [4]byte{128, 128, 255, 255}
	white      = [4]byte{255, 255, 255, 255}
)

// textureBinding is the binding a texture provider stores its texture and view at.
const textureBinding = 0

// TextureData is a texture uploaded to the GPU.
type TextureData struct {
	Name string
	// Path is the source file, empty for generated textures.
	Path   string
	Format wgpu.TextureFormat
	Width  int
	Height int
	// Provider owns the GPU texture and its view.
	Provider bind_group_provider.BindGroupProvider
}

// View returns the texture's view, for sharing into bind groups.
func (t *TextureData) View() *wgpu.TextureView {
	return t.Provider.TextureView(textureBinding)
}

// TextureFormatFor picks the upload format from a texture file name. Files whose name contains "_n."
// (normal maps) or "_data." hold linear data and upload as RGBA8Unorm; everything else is color and
// uploads as RGBA8UnormSrgb.
func TextureFormatFor(path string) wgpu.TextureFormat {
	name := filepath.Base(path)
	if strings.Contains(name, "_n.") || strings.Contains(name, "_data.") {
		return wgpu.TextureFormatRGBA8Unorm
	}
	return wgpu.TextureFormatRGBA8UnormSrgb
}

// defaultSamplerStaging is the sampler every material shares: clamped, linear magnification and
// nearest minification.
var defaultSamplerStaging = common.SamplerStagingData{
	AddressModeU: wgpu.AddressModeClampToEdge,
	AddressModeV: wgpu.AddressModeClampToEdge,
	AddressModeW: wgpu.AddressModeClampToEdge,
	MagFilter:    wgpu.FilterModeLinear,
	MinFilter:    wgpu.FilterModeNearest,
	MipmapFilter: wgpu.MipmapFilterModeNearest,
}
