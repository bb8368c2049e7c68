package assets

import (
	"errors"
	"slices"
	"testing"
)

func TestRegistryRegisterResolve(t *testing.T) {
	r := NewRegistry()
	mesh := &MeshData{Name: "crate"}
	id := r.RegisterMesh("crate", mesh)

	got, err := r.ResolveMesh("crate")
	if err != nil {
		t.Fatal(err)
	}
	if got != id {
		t.Fatalf("ResolveMesh = %v, want %v", got, id)
	}
	if r.Mesh(got) != mesh {
		t.Fatal("Mesh(id) did not return the registered resource")
	}
}

func TestRegistryNotFound(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ResolveMaterial("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ResolveMaterial(missing) = %v, want ErrNotFound", err)
	}
	if _, err := r.ResolveTexture("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ResolveTexture(missing) = %v, want ErrNotFound", err)
	}
}

func TestRegistryCategoriesAreSeparate(t *testing.T) {
	r := NewRegistry()
	r.RegisterMesh("rock", &MeshData{Name: "rock"})
	r.RegisterTexture("rock", &TextureData{Name: "rock"})

	if _, err := r.ResolveMaterial("rock"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("material namespace sees other categories: %v", err)
	}
	meshID, _ := r.ResolveMesh("rock")
	texID, _ := r.ResolveTexture("rock")
	if r.Mesh(meshID) == nil || r.Texture(texID) == nil {
		t.Fatal("same name in two categories did not resolve in both")
	}
}

func TestRegistryClearInvalidatesHandles(t *testing.T) {
	r := NewRegistry()
	old := r.RegisterTexture("stone", &TextureData{Name: "stone"})

	_, _, textures := r.Clear()
	if len(textures) != 1 || textures[0].Name != "stone" {
		t.Fatalf("Clear returned %v", textures)
	}
	if r.Generation() != 2 {
		t.Fatalf("generation = %d, want 2", r.Generation())
	}
	if r.Texture(old) != nil {
		t.Fatal("handle from a cleared generation still dereferences")
	}

	fresh := r.RegisterTexture("stone", &TextureData{Name: "stone"})
	if fresh == old {
		t.Fatal("re-registered handle equals the stale handle")
	}
	if r.Texture(old) != nil {
		t.Fatal("stale handle resolves to the new slot")
	}
}

func TestRegistryZeroHandle(t *testing.T) {
	r := NewRegistry()
	r.RegisterMesh("cube", &MeshData{Name: "cube"})

	var zero MeshID
	if zero.IsValid() {
		t.Fatal("zero handle reported valid")
	}
	if r.Mesh(zero) != nil {
		t.Fatal("zero handle dereferenced to a resource")
	}
	if zero.String() != "handle(invalid)" {
		t.Fatalf("String() = %q", zero.String())
	}
}

func TestRegistryCountsAndNames(t *testing.T) {
	r := NewRegistry()
	r.RegisterMesh("b", &MeshData{})
	r.RegisterMesh("a", &MeshData{})
	r.RegisterMaterial("m", &MaterialData{})

	meshes, materials, textures := r.Counts()
	if meshes != 2 || materials != 1 || textures != 0 {
		t.Fatalf("Counts = %d, %d, %d", meshes, materials, textures)
	}
	if names := r.MeshNames(); !slices.Equal(names, []string{"a", "b"}) {
		t.Fatalf("MeshNames = %v", names)
	}
}
