package assets

import "fmt"

// Handle is an opaque reference to a resource of type T held by a Registry. Handles are only minted by
// the registry; the zero Handle is invalid, and a handle from a previous generation of the registry
// dereferences to nil.
type Handle[T any] struct {
	index      uint32
	generation uint32
}

// MeshID identifies a mesh in the asset store.
type MeshID = Handle[MeshData]

// MaterialID identifies a material in the asset store.
type MaterialID = Handle[MaterialData]

// TextureID identifies a texture in the asset store.
type TextureID = Handle[TextureData]

// IsValid reports whether the handle was minted by a registry. It says nothing about whether the
// handle's generation is still current.
func (h Handle[T]) IsValid() bool {
	return h.generation != 0
}

func (h Handle[T]) String() string {
	if !h.IsValid() {
		return "handle(invalid)"
	}
	return fmt.Sprintf("handle(%d@%d)", h.index, h.generation)
}
