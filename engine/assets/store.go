package assets

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/logging"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

var log = logging.With("assets")

const (
	// BuiltinCube is the name of the built-in unit cube mesh.
	BuiltinCube = "cube"
	// BuiltinSphere is the name of the built-in UV sphere mesh.
	BuiltinSphere = "sphere"
)

// MeshData is a mesh uploaded to the GPU.
type MeshData struct {
	Name string
	// Path is the source file, empty for built-in and programmatic meshes.
	Path string
	// Model holds the CPU geometry and the provider that owns the vertex and index buffers.
	Model model.Model
}

// Provider returns the provider holding the mesh's vertex and index buffers.
func (m *MeshData) Provider() bind_group_provider.BindGroupProvider {
	return m.Model.MeshProvider()
}

// store is the implementation of the Store interface.
type store struct {
	mu       *sync.Mutex
	registry *Registry
	renderer renderer.Renderer

	decodePool    worker.DynamicWorkerPool
	decodeWorkers int

	sphereLatBands int
	sphereLonBands int

	// sampler owns the sampler shared by every material of the current generation
	sampler      bind_group_provider.BindGroupProvider
	manifestPath string
	generationID uuid.UUID
}

// Store owns every GPU-resident asset: meshes, textures and materials. It loads them from a manifest,
// maps names to opaque handles through its Registry and releases them through the renderer.
//
// Usage pattern:
//
//	s := assets.NewStore(r)
//	if err := s.Initialize("assets/manifest.toml"); err != nil { ... }
//	cube, _ := s.ResolveMesh(assets.BuiltinCube)
//	mesh := s.Mesh(cube)
type Store interface {
	// Initialize clears the store and rebuilds it: built-in assets first, then the manifest's textures,
	// meshes and materials. Any failure clears the store again so no partial generation survives.
	//
	// Parameters:
	//   - manifestPath: the manifest file; empty loads only the built-ins
	//
	// Returns:
	//   - error: the first load error
	Initialize(manifestPath string) error

	// Reload runs Initialize again with the last manifest path.
	Reload() error

	// ManifestPath returns the manifest path of the last Initialize.
	ManifestPath() string

	// ResolveMesh looks up a mesh handle by name, returning a wrapped ErrNotFound if absent.
	ResolveMesh(name string) (MeshID, error)

	// ResolveMaterial looks up a material handle by name, returning a wrapped ErrNotFound if absent.
	ResolveMaterial(name string) (MaterialID, error)

	// ResolveTexture looks up a texture handle by name, returning a wrapped ErrNotFound if absent.
	ResolveTexture(name string) (TextureID, error)

	// Mesh dereferences a mesh handle, nil when stale.
	Mesh(id MeshID) *MeshData

	// Material dereferences a material handle, nil when stale.
	Material(id MaterialID) *MaterialData

	// Texture dereferences a texture handle, nil when stale.
	Texture(id TextureID) *TextureData

	// CreateMesh uploads geometry and registers it under name.
	//
	// Parameters:
	//   - name: the mesh name
	//   - vertices: the vertex data
	//   - indices: triangle list indices
	//
	// Returns:
	//   - MeshID: the new handle
	//   - error: model.ErrInvalidMesh for malformed geometry, or an upload error
	CreateMesh(name string, vertices []model.GPUVertex, indices []uint32) (MeshID, error)

	// CreateTexture uploads staging pixels and registers them under name.
	CreateTexture(name string, staging common.TextureStagingData) (TextureID, error)

	// CreateSolidTexture uploads a 1x1 texture of one color.
	CreateSolidTexture(name string, rgba [4]byte, format wgpu.TextureFormat) (TextureID, error)

	// CreateMaterial builds a material bind group against the pipeline named in cfg.
	//
	// Parameters:
	//   - name: the material name
	//   - cfg: the pipeline, textures and surface parameters
	//
	// Returns:
	//   - MaterialID: the new handle
	//   - error: renderer.ErrPipelineNotFound, ErrLayoutMismatch or ErrNotFound (wrapped) on bad references
	CreateMaterial(name string, cfg MaterialConfig) (MaterialID, error)

	// Registry returns the name and handle registry.
	Registry() *Registry

	// Generation returns the registry generation. Handles from earlier generations dereference to nil.
	Generation() uint32

	// GenerationID returns a random identifier of the current generation, used in logs.
	GenerationID() uuid.UUID

	// Release frees every GPU resource and stops the decode workers.
	Release()
}

var _ Store = &store{}

// NewStore creates an empty Store that uploads through r. Call Initialize to populate it.
//
// Parameters:
//   - r: the renderer used for uploads and releases; the built-in pipeline must be registered before Initialize
//   - options: variadic list of StoreBuilderOption functions
//
// Returns:
//   - Store: the new store
func NewStore(r renderer.Renderer, options ...StoreBuilderOption) Store {
	s := &store{
		mu:             &sync.Mutex{},
		registry:       NewRegistry(),
		renderer:       r,
		decodeWorkers:  runtime.NumCPU(),
		sphereLatBands: DefaultSphereLatitudeBands,
		sphereLonBands: DefaultSphereLongitudeBands,
	}
	for _, opt := range options {
		opt(s)
	}
	s.decodeWorkers = max(s.decodeWorkers, 1)
	s.decodePool = worker.NewDynamicWorkerPool(s.decodeWorkers, 256, 1*time.Second)
	return s
}

func (s *store) Initialize(manifestPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.clear()
	s.manifestPath = manifestPath
	s.generationID = uuid.New()

	if err := s.load(manifestPath); err != nil {
		s.clear()
		return err
	}

	meshes, materials, textures := s.registry.Counts()
	log.Info("asset generation %d (%s) ready: %d meshes, %d materials, %d textures in %s",
		s.registry.Generation(), s.generationID, meshes, materials, textures, time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *store) Reload() error {
	s.mu.Lock()
	path := s.manifestPath
	s.mu.Unlock()
	return s.Initialize(path)
}

func (s *store) ManifestPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manifestPath
}

func (s *store) load(manifestPath string) error {
	if err := s.createBuiltins(); err != nil {
		return fmt.Errorf("built-in assets: %w", err)
	}
	if manifestPath == "" {
		return nil
	}

	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	decoded, err := s.decode(manifest)
	if err != nil {
		return err
	}

	for _, name := range common.SortedKeys(manifest.Textures) {
		tex := decoded.textures[name]
		if _, err := s.createTexture(name, manifest.Resolve(manifest.Textures[name]), tex); err != nil {
			return err
		}
	}
	for _, name := range common.SortedKeys(manifest.Meshes) {
		m := decoded.meshes[name]
		if _, err := s.createMesh(name, manifest.Resolve(manifest.Meshes[name]), m.vertices, m.indices); err != nil {
			return err
		}
	}
	for _, name := range common.SortedKeys(manifest.Materials) {
		if _, err := s.createMaterial(name, manifest.Materials[name]); err != nil {
			return err
		}
	}
	return nil
}

type decodedMesh struct {
	vertices []model.GPUVertex
	indices  []uint32
}

type decodedAssets struct {
	textures map[string]common.TextureStagingData
	meshes   map[string]decodedMesh
}

// decode reads and decodes every manifest texture and mesh on the worker pool. Results are collected
// under a mutex; the first error wins.
func (s *store) decode(manifest *AssetManifest) (*decodedAssets, error) {
	out := &decodedAssets{
		textures: make(map[string]common.TextureStagingData, len(manifest.Textures)),
		meshes:   make(map[string]decodedMesh, len(manifest.Meshes)),
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	taskID := 0
	for name, rel := range manifest.Textures {
		path := manifest.Resolve(rel)
		wg.Add(1)
		s.decodePool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				staging, err := common.DecodeImageFile(path)
				if err != nil {
					fail(fmt.Errorf("texture %q: %w", name, err))
					return nil, err
				}
				staging.Format = TextureFormatFor(path)
				mu.Lock()
				out.textures[name] = staging
				mu.Unlock()
				return nil, nil
			},
		})
		taskID++
	}
	for name, rel := range manifest.Meshes {
		path := manifest.Resolve(rel)
		wg.Add(1)
		s.decodePool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				vertices, indices, err := LoadOBJ(path)
				if err != nil {
					fail(fmt.Errorf("mesh %q: %w", name, err))
					return nil, err
				}
				mu.Lock()
				out.meshes[name] = decodedMesh{vertices: vertices, indices: indices}
				mu.Unlock()
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (s *store) createBuiltins() error {
	s.sampler = bind_group_provider.NewBindGroupProvider("default sampler")
	if err := s.renderer.InitSampler(s.sampler, 0, defaultSamplerStaging); err != nil {
		return err
	}

	cubeV, cubeI := Cube()
	if _, err := s.createMesh(BuiltinCube, "", cubeV, cubeI); err != nil {
		return err
	}
	sphereV, sphereI := UVSphere(s.sphereLatBands, s.sphereLonBands)
	if _, err := s.createMesh(BuiltinSphere, "", sphereV, sphereI); err != nil {
		return err
	}

	if _, err := s.createTexture(DefaultNormalTexture, "", common.SolidTexture(flatNormal, wgpu.TextureFormatRGBA8Unorm)); err != nil {
		return err
	}
	if _, err := s.createTexture(DefaultWhiteTexture, "", common.SolidTexture(white, wgpu.TextureFormatRGBA8UnormSrgb)); err != nil {
		return err
	}

	_, err := s.createMaterial(DefaultMaterial, MaterialConfig{
		Pipeline:  DefaultPipeline,
		Diffuse:   DefaultWhiteTexture,
		Roughness: 0.5,
	})
	return err
}

func (s *store) createMesh(name, path string, vertices []model.GPUVertex, indices []uint32) (MeshID, error) {
	provider := bind_group_provider.NewBindGroupProvider("mesh:" + name)
	m := model.NewModel(
		model.WithName(name),
		model.WithGeometry(vertices, indices),
		model.WithMeshProvider(provider),
	)
	if err := m.Validate(); err != nil {
		return MeshID{}, fmt.Errorf("mesh %q: %w", name, err)
	}
	if err := s.renderer.InitMeshBuffers(provider, m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
		s.renderer.ReleaseProvider(provider)
		return MeshID{}, fmt.Errorf("mesh %q: upload: %w", name, err)
	}
	return s.registry.RegisterMesh(name, &MeshData{Name: name, Path: path, Model: m}), nil
}

func (s *store) createTexture(name, path string, staging common.TextureStagingData) (TextureID, error) {
	provider := bind_group_provider.NewBindGroupProvider("texture:" + name)
	staging.Format = common.Coalesce(staging.Format, wgpu.TextureFormatRGBA8UnormSrgb)
	if err := s.renderer.InitTextureView(provider, textureBinding, staging); err != nil {
		s.renderer.ReleaseProvider(provider)
		return TextureID{}, fmt.Errorf("texture %q: upload: %w", name, err)
	}
	return s.registry.RegisterTexture(name, &TextureData{
		Name:     name,
		Path:     path,
		Format:   staging.Format,
		Width:    int(staging.Width),
		Height:   int(staging.Height),
		Provider: provider,
	}), nil
}

func (s *store) createMaterial(name string, cfg MaterialConfig) (MaterialID, error) {
	p, err := s.renderer.LookupPipeline(cfg.Pipeline)
	if err != nil {
		return MaterialID{}, fmt.Errorf("material %q: %w", name, err)
	}
	desc, err := checkMaterialLayout(p)
	if err != nil {
		return MaterialID{}, fmt.Errorf("material %q: %w", name, err)
	}

	diffuseID, err := s.registry.ResolveTexture(cfg.Diffuse)
	if err != nil {
		return MaterialID{}, fmt.Errorf("material %q diffuse: %w", name, err)
	}
	normalName := common.Coalesce(cfg.Normal, DefaultNormalTexture)
	normalID, err := s.registry.ResolveTexture(normalName)
	if err != nil {
		return MaterialID{}, fmt.Errorf("material %q normal: %w", name, err)
	}
	diffuse, normal := s.registry.Texture(diffuseID), s.registry.Texture(normalID)

	mat := material.NewMaterial(
		material.WithName(name),
		material.WithPipelineKey(cfg.Pipeline),
		material.WithRoughness(cfg.Roughness),
		material.WithMetallic(cfg.Metallic),
		material.WithDiffuseTexture(cfg.Diffuse),
		material.WithNormalTexture(normalName),
	)

	provider := bind_group_provider.NewBindGroupProvider("material:"+name,
		bind_group_provider.WithSharedBindGroupLayout(p.BindGroupLayout(material.Group)),
		bind_group_provider.WithSharedTextureView(material.BindingDiffuse, diffuse.View()),
		bind_group_provider.WithSharedSampler(material.BindingSampler, s.sampler.Sampler(0)),
		bind_group_provider.WithSharedTextureView(material.BindingNormal, normal.View()),
	)
	if err := s.renderer.InitBindGroup(provider, desc, nil); err != nil {
		s.renderer.ReleaseProvider(provider)
		return MaterialID{}, fmt.Errorf("material %q: bind group: %w", name, err)
	}

	uniform := mat.Uniform()
	err = s.renderer.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: provider,
		Binding:  material.BindingParams,
		Data:     uniform.Marshal(),
	}})
	if err != nil {
		s.renderer.ReleaseProvider(provider)
		return MaterialID{}, fmt.Errorf("material %q: uniform: %w", name, err)
	}
	mat.SetBindGroupProvider(provider)

	return s.registry.RegisterMaterial(name, &MaterialData{
		Name:         name,
		PipelineName: cfg.Pipeline,
		Provider:     provider,
		Uniform:      uniform,
		Diffuse:      diffuseID,
		Normal:       normalID,
		Material:     mat,
	}), nil
}

func (s *store) CreateMesh(name string, vertices []model.GPUVertex, indices []uint32) (MeshID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createMesh(name, "", vertices, indices)
}

func (s *store) CreateTexture(name string, staging common.TextureStagingData) (TextureID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTexture(name, "", staging)
}

func (s *store) CreateSolidTexture(name string, rgba [4]byte, format wgpu.TextureFormat) (TextureID, error) {
	return s.CreateTexture(name, common.SolidTexture(rgba, format))
}

func (s *store) CreateMaterial(name string, cfg MaterialConfig) (MaterialID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sampler == nil {
		return MaterialID{}, errors.New("store is not initialized")
	}
	return s.createMaterial(name, cfg)
}

// clear empties the registry and releases every resource it held. Materials go first because their
// bind groups reference the texture views.
func (s *store) clear() {
	meshes, materials, textures := s.registry.Clear()
	for _, m := range materials {
		s.renderer.ReleaseProvider(m.Provider)
	}
	for _, t := range textures {
		s.renderer.ReleaseProvider(t.Provider)
	}
	for _, m := range meshes {
		s.renderer.ReleaseProvider(m.Provider())
	}
	if s.sampler != nil {
		s.renderer.ReleaseProvider(s.sampler)
		s.sampler = nil
	}
}

func (s *store) ResolveMesh(name string) (MeshID, error) {
	return s.registry.ResolveMesh(name)
}

func (s *store) ResolveMaterial(name string) (MaterialID, error) {
	return s.registry.ResolveMaterial(name)
}

func (s *store) ResolveTexture(name string) (TextureID, error) {
	return s.registry.ResolveTexture(name)
}

func (s *store) Mesh(id MeshID) *MeshData {
	return s.registry.Mesh(id)
}

func (s *store) Material(id MaterialID) *MaterialData {
	return s.registry.Material(id)
}

func (s *store) Texture(id TextureID) *TextureData {
	return s.registry.Texture(id)
}

func (s *store) Registry() *Registry {
	return s.registry
}

func (s *store) Generation() uint32 {
	return s.registry.Generation()
}

func (s *store) GenerationID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generationID
}

func (s *store) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	s.decodePool.Stop()
}
