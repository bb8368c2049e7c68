package assets

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-render/common"
)

// ErrNotFound is returned when a name has not been registered in a category.
var ErrNotFound = errors.New("asset not found")

// category is one namespace of the registry: a dense slice of resources and a name index into it.
type category[T any] struct {
	kind  string
	items []*T
	names map[string]Handle[T]
}

func newCategory[T any](kind string) category[T] {
	return category[T]{kind: kind, names: make(map[string]Handle[T])}
}

func (c *category[T]) register(generation uint32, name string, item *T) Handle[T] {
	h := Handle[T]{index: uint32(len(c.items)), generation: generation}
	c.items = append(c.items, item)
	c.names[name] = h
	return h
}

func (c *category[T]) resolve(name string) (Handle[T], error) {
	h, ok := c.names[name]
	if !ok {
		return Handle[T]{}, fmt.Errorf("%s %q: %w", c.kind, name, ErrNotFound)
	}
	return h, nil
}

func (c *category[T]) get(generation uint32, h Handle[T]) *T {
	if !h.IsValid() || h.generation != generation || int(h.index) >= len(c.items) {
		return nil
	}
	return c.items[h.index]
}

func (c *category[T]) reset() {
	c.items = nil
	c.names = make(map[string]Handle[T])
}

// Registry maps asset names to opaque handles and handles to resources. Meshes, materials and textures
// are separate namespaces, so the same name may be used once in each. All methods are safe for
// concurrent use.
type Registry struct {
	mu         sync.RWMutex
	generation uint32

	meshes    category[MeshData]
	materials category[MaterialData]
	textures  category[TextureData]
}

// NewRegistry returns an empty registry at generation 1.
func NewRegistry() *Registry {
	return &Registry{
		generation: 1,
		meshes:     newCategory[MeshData]("mesh"),
		materials:  newCategory[MaterialData]("material"),
		textures:   newCategory[TextureData]("texture"),
	}
}

// RegisterMesh stores a mesh under name. Registering a name again replaces the mapping; the previous
// slot stays allocated until the next Clear.
//
// Parameters:
//   - name: the mesh name
//   - mesh: the mesh resource
//
// Returns:
//   - MeshID: the handle for the stored mesh
func (r *Registry) RegisterMesh(name string, mesh *MeshData) MeshID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meshes.register(r.generation, name, mesh)
}

// RegisterMaterial stores a material under name. See RegisterMesh for re-registration.
func (r *Registry) RegisterMaterial(name string, mat *MaterialData) MaterialID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.materials.register(r.generation, name, mat)
}

// RegisterTexture stores a texture under name. See RegisterMesh for re-registration.
func (r *Registry) RegisterTexture(name string, tex *TextureData) TextureID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.textures.register(r.generation, name, tex)
}

// ResolveMesh looks up the handle registered for a mesh name.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshID: the handle
//   - error: ErrNotFound wrapped with the name when it is not registered
func (r *Registry) ResolveMesh(name string) (MeshID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.meshes.resolve(name)
}

// ResolveMaterial looks up the handle registered for a material name.
func (r *Registry) ResolveMaterial(name string) (MaterialID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.materials.resolve(name)
}

// ResolveTexture looks up the handle registered for a texture name.
func (r *Registry) ResolveTexture(name string) (TextureID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.textures.resolve(name)
}

// Mesh dereferences a handle. It returns nil for the zero handle, a stale handle or an out-of-range index.
func (r *Registry) Mesh(id MeshID) *MeshData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.meshes.get(r.generation, id)
}

// Material dereferences a handle. It returns nil for the zero handle, a stale handle or an out-of-range index.
func (r *Registry) Material(id MaterialID) *MaterialData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.materials.get(r.generation, id)
}

// Texture dereferences a handle. It returns nil for the zero handle, a stale handle or an out-of-range index.
func (r *Registry) Texture(id TextureID) *TextureData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.textures.get(r.generation, id)
}

// Counts returns the number of names registered in each category.
func (r *Registry) Counts() (meshes, materials, textures int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.meshes.names), len(r.materials.names), len(r.textures.names)
}

// MeshNames returns the registered mesh names in sorted order.
func (r *Registry) MeshNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return common.SortedKeys(r.meshes.names)
}

// MaterialNames returns the registered material names in sorted order.
func (r *Registry) MaterialNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return common.SortedKeys(r.materials.names)
}

// TextureNames returns the registered texture names in sorted order.
func (r *Registry) TextureNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return common.SortedKeys(r.textures.names)
}

// Generation returns the current generation. It starts at 1 and increases on every Clear.
func (r *Registry) Generation() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// Clear empties every category and bumps the generation in a single critical section, so no reader can
// observe a partially cleared registry. It returns the resources that were held so the caller can
// release them, orphaned slots included.
func (r *Registry) Clear() (meshes []*MeshData, materials []*MaterialData, textures []*TextureData) {
	r.mu.Lock()
	defer r.mu.Unlock()

	meshes = slices.Clone(r.meshes.items)
	materials = slices.Clone(r.materials.items)
	textures = slices.Clone(r.textures.items)

	r.meshes.reset()
	r.materials.reset()
	r.textures.reset()
	r.generation++

	return meshes, materials, textures
}
