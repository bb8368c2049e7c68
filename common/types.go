// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
// The asset store decodes image files into this form before the renderer creates the GPU texture.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
	// Format is the GPU texture format the pixels are uploaded as. When left undefined the renderer uploads as RGBA8UnormSrgb.
	Format wgpu.TextureFormat
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// SolidTexture builds a 1x1 texture of a single RGBA color in the given format.
//
// Parameters:
//   - rgba: the color bytes
//   - format: the GPU texture format for the upload
//
// Returns:
//   - TextureStagingData: a 1x1 staging texture
func SolidTexture(rgba [4]byte, format wgpu.TextureFormat) TextureStagingData {
	return TextureStagingData{
		Pixels: []byte{rgba[0], rgba[1], rgba[2], rgba[3]},
		Width:  1,
		Height: 1,
		Format: format,
	}
}

// DecodeImage decodes any registered raster image format (PNG, JPEG, GIF, BMP, TIFF, WebP)
// into tightly packed RGBA pixels.
// Reference: https://pkg.go.dev/image
//
// Parameters:
//   - r: the reader holding the encoded image bytes
//
// Returns:
//   - TextureStagingData: the decoded pixels with Width and Height populated and Format left undefined
//   - error: error if decoding fails
func DecodeImage(r io.Reader) (TextureStagingData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return ImageToStaging(img), nil
}

// DecodeImageFile opens and decodes the image at path.
//
// Parameters:
//   - path: the image file path on disk
//
// Returns:
//   - TextureStagingData: the decoded pixels
//   - error: error if the file cannot be opened or decoded
func DecodeImageFile(path string) (TextureStagingData, error) {
	file, err := os.Open(path)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", path, err)
	}
	defer file.Close()

	staging, err := DecodeImage(file)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("texture file %s: %w", path, err)
	}
	return staging, nil
}

// ImageToStaging converts any image.Image into RGBA staging data with a zero-origin, tightly packed pixel buffer.
func ImageToStaging(img image.Image) TextureStagingData {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
}
