package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/ui"
)

// registryEntry pairs an embedded WGSL struct definition with its WGSL type name.
type registryEntry struct {
	Source string
	Type   string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string
	declarations         []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source and records the binding declarations it saw.
type PreProcessor interface {
	// Process expands every annotation in source. Include annotations become the registered struct
	// source, group annotations become @group/@binding declarations, and provider annotations are
	// dropped from the output. The declarations list is reset on each call.
	//
	// Parameters:
	//   - source: raw WGSL with annotations
	//
	// Returns:
	//   - string: the expanded WGSL
	//   - error: an error naming the first malformed annotation
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations from the last Process call in source order.
	//
	// Returns:
	//   - []Annotation: the declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor that knows every engine GPU struct.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:          {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			annotationArgVertex:          {Source: model.GPUVertexSource, Type: "VertexInput"},
			AnnotationArgModelData:       {Source: model.GPUModelDataSource, Type: "ModelData"},
			AnnotationArgLightInstance:   {Source: light.GPULightInstanceSource, Type: "LightInstance"},
			AnnotationArgGlobalLightData: {Source: light.GPUGlobalLightDataSource, Type: "GlobalLightData"},
			AnnotationArgMaterialParams:  {Source: material.GPUMaterialUniformSource, Type: "MaterialParams"},
			annotationArgUIVertex:        {Source: ui.GPUVertexSource, Type: "UIVertex"},
			AnnotationArgUIScreen:        {Source: ui.GPUScreenUniformSource, Type: "ScreenUniform"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform: "var<uniform>",
			annotationArgStorageTypeRead:    "var<storage, read>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			// a struct may be included by several shaders concatenated together, emit it once
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, p.structRegistry[a.Args[0]].Source)
		case AnnotationTypeBindingGroup:
			typeArg := string(a.Args[2])
			wgslType := p.structRegistry[AnnotationArg(typeArg)].Type
			if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
				wgslType = fmt.Sprintf("array<%s>", p.structRegistry[AnnotationArg(strings.TrimSuffix(inner, ">"))].Type)
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				*a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], wgslType))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
