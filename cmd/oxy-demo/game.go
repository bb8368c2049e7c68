package main

import (
	"math"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/logging"
	"github.com/Carmen-Shannon/oxy-render/engine/window"
	"github.com/Carmen-Shannon/oxy-render/engine/world"
	"github.com/go-gl/mathgl/mgl32"
)

var log = logging.With("demo")

// demoGame builds the scene in Init and spins the cube while playing.
type demoGame struct {
	engine.BaseGameLogic

	engine   engine.Engine
	cube     uint64
	spinning bool
	angle    float32
}

func newDemoGame() *demoGame {
	return &demoGame{spinning: true}
}

func (g *demoGame) Init(gpu *engine.GPUContext) error {
	if err := g.BaseGameLogic.Init(gpu); err != nil {
		return err
	}
	ctx := gpu.World

	cube, err := gpu.Assets.ResolveMesh("cube")
	if err != nil {
		return err
	}
	sphere, err := gpu.Assets.ResolveMesh("sphere")
	if err != nil {
		return err
	}
	mat, err := gpu.Assets.ResolveMaterial("default")
	if err != nil {
		return err
	}
	// A manifest may provide a textured material for the cube.
	cubeMat := mat
	if names := gpu.Assets.Registry().MaterialNames(); len(names) > 1 {
		for _, name := range names {
			if name == "default" {
				continue
			}
			if id, err := gpu.Assets.ResolveMaterial(name); err == nil {
				cubeMat = id
				log.Info("cube uses material %s", name)
				break
			}
		}
	}

	g.cube = ctx.SpawnDrawable(world.At(mgl32.Vec3{-1.5, 0, -5}), world.MeshRenderer{Mesh: cube, Material: cubeMat})
	ball := world.At(mgl32.Vec3{1.5, 0, -5})
	ball.Scale = mgl32.Vec3{1.5, 1.5, 1.5}
	ctx.SpawnDrawable(ball, world.MeshRenderer{Mesh: sphere, Material: mat})

	floor := world.At(mgl32.Vec3{0, -1.5, -5})
	floor.Scale = mgl32.Vec3{12, 0.2, 12}
	ctx.SpawnDrawable(floor, world.MeshRenderer{Mesh: cube, Material: mat})

	ctx.SpawnSun(world.DirectionalLight{
		Direction: mgl32.Vec3{-0.4, -1, -0.3},
		Color:     mgl32.Vec3{1, 0.96, 0.9},
		Intensity: 0.8,
	})
	ctx.SpawnLight(world.At(mgl32.Vec3{-3, 2, -3}), light.NewLight(light.LightTypePoint,
		light.WithColor(0.2, 0.4, 1),
		light.WithIntensity(2),
		light.WithRange(12),
	))
	ctx.SpawnLight(world.At(mgl32.Vec3{3, 2, -3}), light.NewLight(light.LightTypePoint,
		light.WithColor(1, 0.5, 0.1),
		light.WithIntensity(2),
		light.WithRange(12),
	))
	ctx.SpawnLight(world.At(mgl32.Vec3{0, 4, -2}), light.NewLight(light.LightTypeSpot,
		light.WithDirection(0, -1, -0.6),
		light.WithColor(0.2, 1, 0.5),
		light.WithIntensity(3),
		light.WithRange(15),
		light.WithCutoff(25),
	))

	w, h := gpu.Window.Width(), gpu.Window.Height()
	ctx.SpawnCamera(camera.NewCamera(
		camera.WithPosition(mgl32.Vec3{0, 1, 2}),
		camera.WithFov(float32(60*math.Pi/180)),
		camera.WithAspect(float32(w)/float32(h)),
		camera.WithClipPlanes(0.1, 200),
		camera.WithController(camera.NewFlyController()),
	), true)
	return nil
}

func (g *demoGame) Update(ctx *world.Context, dt float32) {
	g.BaseGameLogic.Update(ctx, dt)
	if ctx.State().Active() != world.StatePlaying {
		return
	}
	if ctx.Actions().JustPressed("interact") {
		g.spinning = !g.spinning
	}
	if !g.spinning {
		return
	}
	g.angle += dt
	if t := ctx.Transform(g.cube); t != nil {
		t.Rotation = mgl32.QuatRotate(g.angle, mgl32.Vec3{0.3, 1, 0}.Normalize())
	}
}

// OnWindowEvent reloads the asset manifest on R, on top of the default input forwarding.
func (g *demoGame) OnWindowEvent(e window.Event) {
	g.BaseGameLogic.OnWindowEvent(e)
	if e.Type == window.EventKeyboardInput && e.Pressed && e.Key == common.KeyR && g.engine != nil {
		log.Info("reloading assets")
		g.engine.ReloadAssets()
	}
}
