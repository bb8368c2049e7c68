package assets

import (
	"math"

	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultSphereLatitudeBands is the number of rings of the built-in sphere.
	DefaultSphereLatitudeBands = 16
	// DefaultSphereLongitudeBands is the number of segments around the built-in sphere.
	DefaultSphereLongitudeBands = 32
)

// cubeFaces lists each face's outward normal and two in-plane axes with u x v = normal, so corners
// walked -u-v, +u-v, +u+v, -u+v are counter-clockwise seen from outside.
var cubeFaces = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
}

// Cube returns a unit cube centred on the origin with per-face normals: 24 vertices and 36 indices.
func Cube() ([]model.GPUVertex, []uint32) {
	vertices := make([]model.GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)

	corners := [4]struct{ su, sv, tu, tv float32 }{
		{-1, -1, 0, 1},
		{1, -1, 1, 1},
		{1, 1, 1, 0},
		{-1, 1, 0, 0},
	}
	for _, face := range cubeFaces {
		n, u, v := face[0], face[1], face[2]
		base := uint32(len(vertices))
		for _, c := range corners {
			p := n.Add(u.Mul(c.su)).Add(v.Mul(c.sv)).Mul(0.5)
			vertices = append(vertices, model.GPUVertex{
				Position: p,
				UV:       [2]float32{c.tu, c.tv},
				Normal:   n,
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

// UVSphere returns a sphere of radius 0.5 centred on the origin. UVs wrap once around the equator and
// run from the north pole (v = 0) to the south pole (v = 1). Bands below 2 latitude or 3 longitude are
// raised to that minimum.
//
// Parameters:
//   - latBands: number of rings from pole to pole
//   - lonBands: number of segments around the axis
//
// Returns:
//   - []model.GPUVertex: (latBands+1)*(lonBands+1) vertices
//   - []uint32: triangle list indices without degenerate pole triangles
func UVSphere(latBands, lonBands int) ([]model.GPUVertex, []uint32) {
	latBands = max(latBands, 2)
	lonBands = max(lonBands, 3)

	vertices := make([]model.GPUVertex, 0, (latBands+1)*(lonBands+1))
	for i := 0; i <= latBands; i++ {
		theta := float64(i) * math.Pi / float64(latBands)
		sinT, cosT := math.Sincos(theta)
		for j := 0; j <= lonBands; j++ {
			phi := float64(j) * 2 * math.Pi / float64(lonBands)
			sinP, cosP := math.Sincos(phi)
			n := mgl32.Vec3{float32(cosP * sinT), float32(cosT), float32(sinP * sinT)}
			vertices = append(vertices, model.GPUVertex{
				Position: n.Mul(0.5),
				UV:       [2]float32{float32(j) / float32(lonBands), float32(i) / float32(latBands)},
				Normal:   n,
			})
		}
	}

	indices := make([]uint32, 0, 6*lonBands*(latBands-1))
	stride := uint32(lonBands + 1)
	for i := 0; i < latBands; i++ {
		for j := 0; j < lonBands; j++ {
			first := uint32(i)*stride + uint32(j)
			second := first + stride
			if i != 0 {
				indices = append(indices, first, first+1, second)
			}
			if i != latBands-1 {
				indices = append(indices, second, first+1, second+1)
			}
		}
	}
	return vertices, indices
}
