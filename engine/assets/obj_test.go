package assets

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/model"
)

const quadOBJ = `# a unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl none
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJFanTriangulates(t *testing.T) {
	vertices, indices, err := ParseOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	if len(vertices) != 4 {
		t.Fatalf("vertices = %d, want 4", len(vertices))
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	if len(indices) != len(want) {
		t.Fatalf("indices = %v, want %v", indices, want)
	}
	for i := range want {
		if indices[i] != want[i] {
			t.Fatalf("indices = %v, want %v", indices, want)
		}
	}
	if vertices[2].Normal != [3]float32{0, 0, 1} {
		t.Fatalf("normal = %v", vertices[2].Normal)
	}
}

func TestParseOBJFlipsV(t *testing.T) {
	vertices, _, err := ParseOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	// vt 0 0 becomes (0, 1); vt 1 1 becomes (1, 0)
	if vertices[0].UV != [2]float32{0, 1} || vertices[2].UV != [2]float32{1, 0} {
		t.Fatalf("uvs = %v %v", vertices[0].UV, vertices[2].UV)
	}
}

func TestParseOBJNegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	vertices, indices, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(vertices) != 3 || len(indices) != 3 {
		t.Fatalf("got %d vertices, %d indices", len(vertices), len(indices))
	}
	if vertices[1].Position != [3]float32{1, 0, 0} {
		t.Fatalf("second corner = %v", vertices[1].Position)
	}
	if vertices[0].UV != [2]float32{} || vertices[0].Normal != [3]float32{} {
		t.Fatal("missing texcoord or normal was not zeroed")
	}
}

func TestParseOBJSharesCorners(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
o second
f 1 2 3
f 3 2 4
`
	vertices, indices, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(vertices) != 4 || len(indices) != 6 {
		t.Fatalf("got %d vertices, %d indices; objects should merge into one mesh", len(vertices), len(indices))
	}
}

func TestParseOBJVertexOnlyNormalForm(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 -1
f 1//1 2//1 3//1
`
	vertices, _, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if vertices[0].Normal != [3]float32{0, 0, -1} {
		t.Fatalf("normal = %v", vertices[0].Normal)
	}
}

func TestParseOBJErrors(t *testing.T) {
	cases := map[string]string{
		"no faces":       "v 0 0 0\nv 1 0 0\nv 0 1 0\n",
		"bad index":      "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n",
		"short face":     "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad float":      "v 0 zero 0\n",
		"too many parts": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1/1/1 2 3\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := ParseOBJ(strings.NewReader(src)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}

	_, _, err := ParseOBJ(strings.NewReader(cases["no faces"]))
	if !errors.Is(err, model.ErrInvalidMesh) {
		t.Fatalf("empty mesh error = %v, want ErrInvalidMesh", err)
	}
}
