package shader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// LayoutFingerprint renders a bind group layout as a canonical string. Entries are ordered by binding
// and shader visibility is ignored, so two layouts with the same fingerprint accept the same bind groups.
//
// Parameters:
//   - desc: the layout descriptor to fingerprint
//
// Returns:
//   - string: the canonical fingerprint, e.g. "0:tex(2d,float);1:sampler(filtering);2:buf(uniform,16)"
func LayoutFingerprint(desc wgpu.BindGroupLayoutDescriptor) string {
	entries := slices.Clone(desc.Entries)
	slices.SortFunc(entries, func(a, b wgpu.BindGroupLayoutEntry) int {
		return int(a.Binding) - int(b.Binding)
	})
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		var kind string
		switch {
		case e.Buffer.Type != wgpu.BufferBindingTypeUndefined:
			kind = fmt.Sprintf("buf(%s,%d)", bufferTypeName(e.Buffer.Type), e.Buffer.MinBindingSize)
		case e.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			kind = fmt.Sprintf("sampler(%s)", samplerTypeName(e.Sampler.Type))
		case e.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			kind = fmt.Sprintf("tex(%s,%s,%t)", viewDimensionName(e.Texture.ViewDimension), sampleTypeName(e.Texture.SampleType), e.Texture.Multisampled)
		default:
			kind = "unknown"
		}
		parts = append(parts, fmt.Sprintf("%d:%s", e.Binding, kind))
	}
	return strings.Join(parts, ";")
}

func bufferTypeName(t wgpu.BufferBindingType) string {
	switch t {
	case wgpu.BufferBindingTypeUniform:
		return "uniform"
	case wgpu.BufferBindingTypeStorage:
		return "storage"
	case wgpu.BufferBindingTypeReadOnlyStorage:
		return "storage_read"
	}
	return fmt.Sprint(uint32(t))
}

func samplerTypeName(t wgpu.SamplerBindingType) string {
	switch t {
	case wgpu.SamplerBindingTypeFiltering:
		return "filtering"
	case wgpu.SamplerBindingTypeNonFiltering:
		return "non_filtering"
	case wgpu.SamplerBindingTypeComparison:
		return "comparison"
	}
	return fmt.Sprint(uint32(t))
}

func sampleTypeName(t wgpu.TextureSampleType) string {
	switch t {
	case wgpu.TextureSampleTypeFloat:
		return "float"
	case wgpu.TextureSampleTypeUnfilterableFloat:
		return "unfilterable_float"
	case wgpu.TextureSampleTypeDepth:
		return "depth"
	case wgpu.TextureSampleTypeSint:
		return "sint"
	case wgpu.TextureSampleTypeUint:
		return "uint"
	}
	return fmt.Sprint(uint32(t))
}

func viewDimensionName(d wgpu.TextureViewDimension) string {
	switch d {
	case wgpu.TextureViewDimension2D, wgpu.TextureViewDimensionUndefined:
		// an undefined dimension defaults to 2d when the layout is created
		return "2d"
	case wgpu.TextureViewDimension2DArray:
		return "2d_array"
	case wgpu.TextureViewDimension3D:
		return "3d"
	case wgpu.TextureViewDimensionCube:
		return "cube"
	}
	return fmt.Sprint(uint32(d))
}

// MergeLayouts combines the layouts declared by several stages of one pipeline. Entries with the same
// group and binding are merged by OR-ing their visibility.
//
// Parameters:
//   - layouts: per-stage layout descriptors keyed by group index
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors, entries sorted by binding
func MergeLayouts(layouts ...map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	for _, stage := range layouts {
		for group, desc := range stage {
			if merged[group] == nil {
				merged[group] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := merged[group][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					merged[group][e.Binding] = existing
					continue
				}
				merged[group][e.Binding] = e
			}
		}
	}
	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(merged))
	for group, byBinding := range merged {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
		for _, e := range byBinding {
			entries = append(entries, e)
		}
		slices.SortFunc(entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		out[group] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return out
}
