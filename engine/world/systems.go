package world

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/EngoEngine/ecs"
	"github.com/go-gl/mathgl/mgl32"
)

// System priorities. ecs.World runs higher priorities first.
const (
	PriorityInput        = 100
	PriorityLogic        = 50
	PriorityCamera       = 20
	PrioritySync         = 10
	PriorityInputCleanup = -100
)

// inputMappingSystem turns raw key state into actions through the bindings of the active game state.
type inputMappingSystem struct {
	ctx *Context
}

func (s *inputMappingSystem) Priority() int { return PriorityInput }

func (s *inputMappingSystem) Remove(ecs.BasicEntity) {}

func (s *inputMappingSystem) Update(float32) {
	s.ctx.actions.rollover()
	s.ctx.actions.clear()
	for action, code := range s.ctx.bindings.Bindings[s.ctx.state.Active()] {
		if s.ctx.raw.KeyDown(code) {
			s.ctx.actions.set(action)
		}
	}
}

type cameraEntity struct {
	ecs.BasicEntity
	camera  camera.Camera
	primary bool
}

// flyCameraSystem feeds the move actions and mouse delta into every camera's controller.
type flyCameraSystem struct {
	ctx      *Context
	entities []*cameraEntity
}

func (s *flyCameraSystem) Priority() int { return PriorityCamera + 1 }

func (s *flyCameraSystem) Add(e *cameraEntity) {
	s.entities = append(s.entities, e)
}

func (s *flyCameraSystem) Remove(basic ecs.BasicEntity) {
	s.entities = slices.DeleteFunc(s.entities, func(e *cameraEntity) bool { return e.ID() == basic.ID() })
}

func (s *flyCameraSystem) Update(dt float32) {
	input := s.ctx.controllerInput()
	for _, e := range s.entities {
		if e.camera.Controller() == nil {
			continue
		}
		e.camera.Update(input, dt)
	}
}

// cameraMatrixSystem publishes the primary camera's view-projection matrix.
type cameraMatrixSystem struct {
	ctx *Context
	fly *flyCameraSystem
}

func (s *cameraMatrixSystem) Priority() int { return PriorityCamera }

func (s *cameraMatrixSystem) Remove(ecs.BasicEntity) {}

func (s *cameraMatrixSystem) Update(float32) {
	for _, e := range s.fly.entities {
		if e.primary {
			if s.ctx.aspect > 0 {
				e.camera.SetAspect(s.ctx.aspect)
			}
			s.ctx.viewProj = e.camera.ViewProjectionMatrix()
			return
		}
	}
}

type lightEntity struct {
	ecs.BasicEntity
	transform *Transform
	light     light.Light
}

type sunEntity struct {
	ecs.BasicEntity
	sun *DirectionalLight
}

// lightSyncSystem moves every light to its entity's position and gathers the frame's LightSnapshot.
type lightSyncSystem struct {
	ctx    *Context
	lights []*lightEntity
	suns   []*sunEntity
}

func (s *lightSyncSystem) Priority() int { return PrioritySync }

func (s *lightSyncSystem) AddLight(e *lightEntity) {
	s.lights = append(s.lights, e)
}

func (s *lightSyncSystem) AddSun(e *sunEntity) {
	s.suns = append(s.suns, e)
}

func (s *lightSyncSystem) Remove(basic ecs.BasicEntity) {
	s.lights = slices.DeleteFunc(s.lights, func(e *lightEntity) bool { return e.ID() == basic.ID() })
	s.suns = slices.DeleteFunc(s.suns, func(e *sunEntity) bool { return e.ID() == basic.ID() })
}

func (s *lightSyncSystem) Update(float32) {
	snap := &s.ctx.lights
	snap.Environment = s.ctx.environment
	if len(s.suns) > 0 {
		sun := s.suns[0].sun
		snap.Environment.SunDirection = sun.Direction
		snap.Environment.SunColor = sun.Color
		snap.Environment.SunIntensity = sun.Intensity
	}
	snap.Lights = snap.Lights[:0]
	for _, e := range s.lights {
		if e.transform != nil {
			e.light.SetPosition(e.transform.Position)
		}
		snap.Lights = append(snap.Lights, e.light)
	}
}

type renderEntity struct {
	ecs.BasicEntity
	transform *Transform
	renderer  *MeshRenderer
}

// renderSystem collects the drawables in spawn order.
type renderSystem struct {
	ctx      *Context
	entities []*renderEntity
}

func (s *renderSystem) Priority() int { return PrioritySync - 1 }

func (s *renderSystem) Add(e *renderEntity) {
	s.entities = append(s.entities, e)
}

func (s *renderSystem) Remove(basic ecs.BasicEntity) {
	s.entities = slices.DeleteFunc(s.entities, func(e *renderEntity) bool { return e.ID() == basic.ID() })
}

func (s *renderSystem) Update(float32) {
	s.ctx.drawables = s.collect(s.ctx.drawables[:0])
}

func (s *renderSystem) collect(dst []Drawable) []Drawable {
	for _, e := range s.entities {
		dst = append(dst, Drawable{
			Entity:       e.ID(),
			Transform:    *e.transform,
			MeshRenderer: *e.renderer,
		})
	}
	return dst
}

// inputCleanupSystem runs last and resets the mouse delta.
type inputCleanupSystem struct {
	ctx *Context
}

func (s *inputCleanupSystem) Priority() int { return PriorityInputCleanup }

func (s *inputCleanupSystem) Remove(ecs.BasicEntity) {}

func (s *inputCleanupSystem) Update(float32) {
	s.ctx.raw.MouseDelta = mgl32.Vec2{}
}
