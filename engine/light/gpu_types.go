package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// MaxLights is the fixed capacity of the light array in the global light uniform.
// Lights beyond this count are dropped in iteration order; there is no priority sorting.
const MaxLights = 16

// GPULightInstanceSource is the canonical WGSL definition of the LightInstance struct.
// Matches GPULightInstance layout exactly (64 bytes).
//
//go:embed assets/light_instance.wgsl
var GPULightInstanceSource string

// GPULightInstance is the GPU-aligned representation of a single point or spot light.
// Matches the WGSL LightInstance struct layout exactly (see GPULightInstanceSource).
// Size: 64 bytes.
type GPULightInstance struct {
	Position  [3]float32 // offset  0: world-space position
	LightType uint32     // offset 12: 0 = point, 1 = spot
	Color     [3]float32 // offset 16: RGB color
	Intensity float32    // offset 28: scalar multiplier
	Direction [3]float32 // offset 32: normalized cone axis (spot) or unused (point)
	Range     float32    // offset 44: attenuation cutoff distance
	Cutoff    float32    // offset 48: cos(half-angle) for spot
	_pad      [3]float32 // offset 52: padding to 64 bytes
}

// NewGPULightInstance packs a Light into its GPU record.
//
// Parameters:
//   - l: the light to pack
//
// Returns:
//   - GPULightInstance: the GPU record
func NewGPULightInstance(l Light) GPULightInstance {
	return GPULightInstance{
		Position:  l.Position(),
		LightType: uint32(l.Type()),
		Color:     l.Color(),
		Intensity: l.Intensity(),
		Direction: l.Direction(),
		Range:     l.Range(),
		Cutoff:    l.Cutoff(),
	}
}

// Size returns the size of the GPULightInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPULightInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULightInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULightInstance) Marshal() []byte {
	buf := make([]byte, 64)
	g.marshalInto(buf)
	return buf
}

func (g *GPULightInstance) marshalInto(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Intensity))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Direction[0]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.Direction[1]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.Direction[2]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.Range))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.Cutoff))
	clear(buf[52:64]) // padding
}

// GPUGlobalLightDataSource is the canonical WGSL definition of the GlobalLightData struct.
// Matches GPUGlobalLightData layout exactly (1088 bytes). It references LightInstance, so shaders
// must include GPULightInstanceSource first.
//
//go:embed assets/global_light_data.wgsl
var GPUGlobalLightDataSource string

// GPUGlobalLightData is the GPU-aligned representation of the global light uniform.
// Matches the WGSL GlobalLightData struct layout exactly (see GPUGlobalLightDataSource).
// Size: 1088 bytes.
type GPUGlobalLightData struct {
	Ambient      [4]float32                  // offset  0: RGB ambient, w unused
	SunDirection [4]float32                  // offset 16: normalized sun direction, w unused
	SunColor     [4]float32                  // offset 32: RGB sun color, w = intensity
	NumLights    uint32                      // offset 48: live entries in Lights
	_pad         [3]uint32                   // offset 52: padding to 64
	Lights       [MaxLights]GPULightInstance // offset 64: 16 * 64 bytes
}

// NewGPUGlobalLightData packs the environment and up to MaxLights enabled lights, in the order given.
// Lights past the capacity are dropped.
//
// Parameters:
//   - env: the ambient and sun terms
//   - lights: the local lights in iteration order
//
// Returns:
//   - GPUGlobalLightData: the packed uniform
//   - int: how many enabled lights were dropped because the array was full
func NewGPUGlobalLightData(env Environment, lights []Light) (GPUGlobalLightData, int) {
	sunDir := normalize3(env.SunDirection)
	g := GPUGlobalLightData{
		Ambient:      [4]float32{env.Ambient[0], env.Ambient[1], env.Ambient[2], 1},
		SunDirection: [4]float32{sunDir[0], sunDir[1], sunDir[2], 0},
		SunColor:     [4]float32{env.SunColor[0], env.SunColor[1], env.SunColor[2], env.SunIntensity},
	}

	dropped := 0
	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		if g.NumLights == MaxLights {
			dropped++
			continue
		}
		g.Lights[g.NumLights] = NewGPULightInstance(l)
		g.NumLights++
	}
	return g, dropped
}

// Size returns the size of the GPUGlobalLightData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (1088)
func (g *GPUGlobalLightData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUGlobalLightData struct into a byte buffer suitable for GPU upload.
// Entries at or beyond NumLights are written as zeros.
//
// Returns:
//   - []byte: 1088-byte buffer ready for GPU upload
func (g *GPUGlobalLightData) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Ambient[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.SunDirection[i]))
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.SunColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[48:52], g.NumLights)
	for i := uint32(0); i < g.NumLights && i < MaxLights; i++ {
		off := 64 + int(i)*64
		g.Lights[i].marshalInto(buf[off : off+64])
	}
	return buf
}
