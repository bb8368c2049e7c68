package frame

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-render/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Built-in pipeline keys.
const (
	StandardPipeline = "standard"
	UIPipeline       = "ui"
)

//go:embed shaders/standard.vert.wgsl
var standardVertexSource string

//go:embed shaders/standard.frag.wgsl
var standardFragmentSource string

//go:embed shaders/ui.vert.wgsl
var uiVertexSource string

//go:embed shaders/ui.frag.wgsl
var uiFragmentSource string

// BuiltinPipelines returns fresh instances of the pipelines the frame renderer needs: "standard" for lit
// meshes and "ui" for the overlay. They are not yet registered with a renderer.
//
// Returns:
//   - []pipeline.Pipeline: the standard and ui pipelines
func BuiltinPipelines() []pipeline.Pipeline {
	return []pipeline.Pipeline{StandardPipelineDef(), UIPipelineDef()}
}

// StandardPipelineDef builds the lit mesh pipeline: camera at group 0, lights at 1, material at 2 and
// model matrices at 3. Depth tested, back faces culled.
func StandardPipelineDef() pipeline.Pipeline {
	return pipeline.NewPipeline(StandardPipeline,
		pipeline.WithVertexShader(shader.MustCompile("standard.vert", shader.ShaderTypeVertex, standardVertexSource)),
		pipeline.WithFragmentShader(shader.MustCompile("standard.frag", shader.ShaderTypeFragment, standardFragmentSource)),
	)
}

// UIPipelineDef builds the overlay pipeline: screen uniform at group 0, texture and sampler at 1. No
// depth, no culling, premultiplied alpha blending.
func UIPipelineDef() pipeline.Pipeline {
	return pipeline.NewPipeline(UIPipeline,
		pipeline.WithVertexShader(shader.MustCompile("ui.vert", shader.ShaderTypeVertex, uiVertexSource)),
		pipeline.WithFragmentShader(shader.MustCompile("ui.frag", shader.ShaderTypeFragment, uiFragmentSource)),
		pipeline.WithDepth(false, false),
		pipeline.WithCullMode(wgpu.CullModeNone),
		pipeline.WithAlphaBlending(true),
	)
}
