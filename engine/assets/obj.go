package assets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-render/engine/model"
)

// objCorner is one face corner's position, texcoord and normal indices (0-based, -1 when absent).
type objCorner struct {
	v, vt, vn int
}

// LoadOBJ reads and parses a Wavefront OBJ file.
//
// Parameters:
//   - path: the .obj file path
//
// Returns:
//   - []model.GPUVertex: the de-duplicated vertices
//   - []uint32: the triangle list indices
//   - error: an error if the file cannot be read or is malformed
func LoadOBJ(path string) ([]model.GPUVertex, []uint32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open mesh file %s: %w", path, err)
	}
	defer file.Close()

	vertices, indices, err := ParseOBJ(file)
	if err != nil {
		return nil, nil, fmt.Errorf("mesh file %s: %w", path, err)
	}
	return vertices, indices, nil
}

// ParseOBJ parses OBJ geometry into a single-indexed triangle mesh. It understands v, vt, vn and f
// statements; faces may use the v, v/vt, v//vn and v/vt/vn forms with 1-based or negative (relative)
// indices and are fan-triangulated. The texture v coordinate is flipped to 1-v. A corner without a
// normal gets the zero vector and one without a texcoord gets (0, 0). Every other statement, including
// objects, groups and materials, is ignored, so all faces land in one mesh.
func ParseOBJ(r io.Reader) ([]model.GPUVertex, []uint32, error) {
	var (
		positions [][3]float32
		texcoords [][2]float32
		normals   [][3]float32
		vertices  []model.GPUVertex
		indices   []uint32
		seen      = make(map[objCorner]uint32)
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, [3]float32{p[0], p[1], p[2]})
		case "vt":
			t, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			texcoords = append(texcoords, [2]float32{t[0], 1 - t[1]})
		case "vn":
			n, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, [3]float32{n[0], n[1], n[2]})
		case "f":
			if len(fields) < 4 {
				return nil, nil, fmt.Errorf("line %d: face needs at least 3 corners", lineNo)
			}
			face := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				c, err := parseCorner(ref, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx, ok := seen[c]
				if !ok {
					v := model.GPUVertex{Position: positions[c.v]}
					if c.vt >= 0 {
						v.UV = texcoords[c.vt]
					}
					if c.vn >= 0 {
						v.Normal = normals[c.vn]
					}
					idx = uint32(len(vertices))
					vertices = append(vertices, v)
					seen[c] = idx
				}
				face = append(face, idx)
			}
			for i := 1; i+1 < len(face); i++ {
				indices = append(indices, face[0], face[i], face[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if len(indices) == 0 {
		return nil, nil, fmt.Errorf("%w: no faces", model.ErrInvalidMesh)
	}
	return vertices, indices, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d components, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := range out {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

func parseCorner(ref string, numV, numVT, numVN int) (objCorner, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return objCorner{}, fmt.Errorf("malformed face corner %q", ref)
	}
	c := objCorner{v: -1, vt: -1, vn: -1}
	var err error
	if c.v, err = resolveIndex(parts[0], numV); err != nil || c.v < 0 {
		return objCorner{}, fmt.Errorf("face corner %q: bad position index", ref)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveIndex(parts[1], numVT); err != nil {
			return objCorner{}, fmt.Errorf("face corner %q: %w", ref, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveIndex(parts[2], numVN); err != nil {
			return objCorner{}, fmt.Errorf("face corner %q: %w", ref, err)
		}
	}
	return c, nil
}

// resolveIndex converts a 1-based or negative OBJ index into a 0-based index into a list of length n.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return -1, err
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return -1, fmt.Errorf("index %d out of range (%d defined)", i, n)
}
