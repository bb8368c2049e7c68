package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"
)

// ErrInvalidMesh is returned by Validate when the geometry cannot be drawn.
var ErrInvalidMesh = errors.New("invalid mesh")

// model is the implementation of the Model interface.
type model struct {
	name           string
	vertices       []GPUVertex
	indices        []uint32
	meshProvider   bind_group_provider.BindGroupProvider
	boundingRadius float32
}

// Model defines the interface for a single indexed triangle mesh.
// A Model keeps its CPU-side geometry and, once uploaded by the Renderer, a BindGroupProvider holding
// the vertex buffer, index buffer and index count used for draw calls.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Vertices returns the CPU-side vertex data.
	//
	// Returns:
	//   - []GPUVertex: the vertices
	Vertices() []GPUVertex

	// Indices returns the CPU-side triangle list indices.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// VertexData returns the vertices serialized for GPU upload.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the indices serialized for GPU upload.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices drawn for this model.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// MeshProvider retrieves the BindGroupProvider holding GPU mesh resources, or nil before upload.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider

	// SetMeshProvider assigns the BindGroupProvider that holds the uploaded buffers.
	//
	// Parameters:
	//   - provider: the mesh provider
	SetMeshProvider(provider bind_group_provider.BindGroupProvider)

	// BoundingRadius returns the maximum vertex distance from the model origin.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// Validate checks that the mesh is a non-empty triangle list whose indices are all in range.
	//
	// Returns:
	//   - error: a wrapped ErrInvalidMesh describing the first problem found
	Validate() error
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	m.boundingRadius = computeBoundingRadius(m.vertices)
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) VertexData() []byte {
	return MarshalVertices(m.vertices)
}

func (m *model) IndexData() []byte {
	return MarshalIndices(m.indices)
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *model) SetMeshProvider(provider bind_group_provider.BindGroupProvider) {
	m.meshProvider = provider
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *model) Validate() error {
	if len(m.vertices) == 0 || len(m.indices) == 0 {
		return fmt.Errorf("%w: %q has no geometry", ErrInvalidMesh, m.name)
	}
	if len(m.indices)%3 != 0 {
		return fmt.Errorf("%w: %q index count %d is not a multiple of 3", ErrInvalidMesh, m.name, len(m.indices))
	}
	for i, idx := range m.indices {
		if int(idx) >= len(m.vertices) {
			return fmt.Errorf("%w: %q index %d at %d out of range (%d vertices)", ErrInvalidMesh, m.name, idx, i, len(m.vertices))
		}
	}
	return nil
}

func computeBoundingRadius(vertices []GPUVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}
