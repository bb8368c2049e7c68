package assets

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// assertOutwardCCW checks that every non-degenerate triangle winds counter-clockwise seen from outside
// a mesh centred on the origin.
func assertOutwardCCW(t *testing.T, vertices []model.GPUVertex, indices []uint32) {
	t.Helper()
	for i := 0; i+2 < len(indices); i += 3 {
		a := mgl32.Vec3(vertices[indices[i]].Position)
		b := mgl32.Vec3(vertices[indices[i+1]].Position)
		c := mgl32.Vec3(vertices[indices[i+2]].Position)
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() < 1e-6 {
			t.Fatalf("triangle %d is degenerate", i/3)
		}
		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		if n.Dot(centroid) <= 0 {
			t.Fatalf("triangle %d winds inward", i/3)
		}
	}
}

func TestCube(t *testing.T) {
	vertices, indices := Cube()
	if len(vertices) != 24 || len(indices) != 36 {
		t.Fatalf("cube = %d vertices, %d indices", len(vertices), len(indices))
	}
	assertOutwardCCW(t, vertices, indices)

	for i, v := range vertices {
		for _, p := range v.Position {
			if p != 0.5 && p != -0.5 {
				t.Fatalf("vertex %d position %v is not a unit cube corner", i, v.Position)
			}
		}
		n := mgl32.Vec3(v.Normal)
		if n.Dot(mgl32.Vec3(v.Position)) != 0.5 {
			t.Fatalf("vertex %d normal %v does not face its corner", i, v.Normal)
		}
	}
}

func TestUVSphere(t *testing.T) {
	vertices, indices := UVSphere(DefaultSphereLatitudeBands, DefaultSphereLongitudeBands)
	if len(vertices) != 17*33 {
		t.Fatalf("sphere vertices = %d, want %d", len(vertices), 17*33)
	}
	if len(indices) != 2880 {
		t.Fatalf("sphere indices = %d, want 2880", len(indices))
	}
	assertOutwardCCW(t, vertices, indices)

	for i, v := range vertices {
		r := mgl32.Vec3(v.Position).Len()
		if r < 0.499 || r > 0.501 {
			t.Fatalf("vertex %d radius = %f", i, r)
		}
		if v.UV[0] < 0 || v.UV[0] > 1 || v.UV[1] < 0 || v.UV[1] > 1 {
			t.Fatalf("vertex %d uv %v out of range", i, v.UV)
		}
	}
	if vertices[0].UV[1] != 0 || vertices[len(vertices)-1].UV[1] != 1 {
		t.Fatal("v does not run from the north pole to the south pole")
	}
}

func TestUVSphereClampsBands(t *testing.T) {
	vertices, indices := UVSphere(0, 1)
	if len(vertices) != 3*4 {
		t.Fatalf("vertices = %d, want %d", len(vertices), 3*4)
	}
	if len(indices) != 6*3*1 {
		t.Fatalf("indices = %d, want %d", len(indices), 18)
	}
}
