// annotations.go defines the @oxy: comment annotations understood by the WGSL pre-processor.
// An annotation is a single line comment that either injects a registered struct definition,
// generates a resource declaration, or tags a hand-written binding with the engine resource that
// feeds it. The frame renderer reads the tags to decide what to bind at each group.
//
//	//@oxy:include <struct>
//	//@oxy:group <group> <binding> <address_space> <var_name> <struct | array<struct>>
//	//@oxy:provider <group> <binding> <identity> [role]
package shader

import (
	"fmt"
	"strconv"
	"strings"
)

const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude is replaced by the WGSL source of a registered struct.
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup is replaced by a generated @group/@binding declaration.
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider produces no WGSL. It names the engine resource behind the
	// hand-written binding that follows it.
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation is a single parsed @oxy: line.
type Annotation struct {
	Type AnnotationType

	// Args depends on Type:
	//   - include:  [0] struct
	//   - group:    [0] address space, [1] var name, [2] struct or array<struct>
	//   - provider: [0] identity, [1] role (optional)
	Args []AnnotationArg

	// Line is the 1-based source line, used in errors.
	Line int

	// Group and Binding are nil for include annotations.
	Group   *int
	Binding *int
}

// Identity returns the provider identity of a provider annotation, or "" for any other type.
func (a Annotation) Identity() AnnotationArg {
	if a.Type != AnnotationTypeProvider {
		return ""
	}
	return a.Args[0]
}

// Role returns the optional binding role of a provider annotation.
func (a Annotation) Role() AnnotationArg {
	if a.Type != AnnotationTypeProvider || len(a.Args) < 2 {
		return ""
	}
	return a.Args[1]
}

// AnnotationArg is a typed annotation argument.
type AnnotationArg string

// Struct arguments. Each maps onto a Go GPU type that embeds its WGSL definition.
const (
	AnnotationArgCamera          AnnotationArg = "camera"
	annotationArgVertex          AnnotationArg = "vertex"
	AnnotationArgLightInstance   AnnotationArg = "light_instance"
	AnnotationArgGlobalLightData AnnotationArg = "global_light_data"
	AnnotationArgModelData       AnnotationArg = "model_data"
	AnnotationArgMaterialParams  AnnotationArg = "material_params"
	annotationArgUIVertex        AnnotationArg = "ui_vertex"
	AnnotationArgUIScreen        AnnotationArg = "ui_screen"
)

// Address space arguments.
const (
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead    AnnotationArg = "storage_read"
)

// Provider identities. The frame renderer binds the matching engine resource at the annotated group.
const (
	AnnotationArgLights   AnnotationArg = "lights"
	AnnotationArgMaterial AnnotationArg = "material"
	AnnotationArgModel    AnnotationArg = "model"
	AnnotationArgUI       AnnotationArg = "ui"
)

// Material binding roles.
const (
	AnnotationArgDiffuseTexture AnnotationArg = "diffuse_texture"
	AnnotationArgSampler        AnnotationArg = "sampler"
	AnnotationArgParams         AnnotationArg = "params"
	AnnotationArgNormalTexture  AnnotationArg = "normal_texture"
)

type argKind uint8

const (
	kindStruct argKind = 1 << iota
	kindAddressSpace
	kindIdentity
	kindRole
)

// argKinds records where each argument may appear. Camera is both a struct and an identity.
var argKinds = map[AnnotationArg]argKind{
	AnnotationArgCamera:             kindStruct | kindIdentity,
	annotationArgVertex:             kindStruct,
	AnnotationArgLightInstance:      kindStruct,
	AnnotationArgGlobalLightData:    kindStruct,
	AnnotationArgModelData:          kindStruct,
	AnnotationArgMaterialParams:     kindStruct,
	annotationArgUIVertex:           kindStruct,
	AnnotationArgUIScreen:           kindStruct,
	annotationArgStorageTypeUniform: kindAddressSpace,
	annotationArgStorageTypeRead:    kindAddressSpace,
	AnnotationArgLights:             kindIdentity,
	AnnotationArgMaterial:           kindIdentity,
	AnnotationArgModel:              kindIdentity,
	AnnotationArgUI:                 kindIdentity,
	AnnotationArgDiffuseTexture:     kindRole,
	AnnotationArgSampler:            kindRole,
	AnnotationArgParams:             kindRole,
	AnnotationArgNormalTexture:      kindRole,
}

func isKind(arg string, kind argKind) bool {
	return argKinds[AnnotationArg(arg)]&kind != 0
}

// parseAnnotation parses one source line. Lines without the prefix yield (nil, nil).
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, after, ok := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}
	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	a := &Annotation{Type: AnnotationType(args[0]), Line: lineNum}
	switch a.Type {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy:include takes exactly one struct", lineNum)
		}
		if !isKind(args[1], kindStruct) {
			return nil, fmt.Errorf("line %d: unknown struct %q", lineNum, args[1])
		}
		a.Args = []AnnotationArg{AnnotationArg(args[1])}
		return a, nil

	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy:group takes group, binding, address space, name and struct", lineNum)
		}
		if err := a.parseSlot(args[1], args[2]); err != nil {
			return nil, err
		}
		if !isKind(args[3], kindAddressSpace) {
			return nil, fmt.Errorf("line %d: unknown address space %q", lineNum, args[3])
		}
		elem := args[5]
		if inner, ok := strings.CutPrefix(elem, "array<"); ok {
			elem = strings.TrimSuffix(inner, ">")
		}
		if !isKind(elem, kindStruct) {
			return nil, fmt.Errorf("line %d: unknown struct %q", lineNum, elem)
		}
		a.Args = []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])}
		return a, nil

	case AnnotationTypeProvider:
		if len(args) != 4 && len(args) != 5 {
			return nil, fmt.Errorf("line %d: @oxy:provider takes group, binding, identity and an optional role", lineNum)
		}
		if err := a.parseSlot(args[1], args[2]); err != nil {
			return nil, err
		}
		if !isKind(args[3], kindIdentity) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q", lineNum, args[3])
		}
		a.Args = []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !isKind(args[4], kindRole) {
				return nil, fmt.Errorf("line %d: unknown binding role %q", lineNum, args[4])
			}
			a.Args = append(a.Args, AnnotationArg(args[4]))
		}
		return a, nil
	}
	return nil, fmt.Errorf("line %d: unknown @oxy annotation %q", lineNum, args[0])
}

func (a *Annotation) parseSlot(group, binding string) error {
	g, err := strconv.Atoi(group)
	if err != nil {
		return fmt.Errorf("line %d: invalid group %q: %w", a.Line, group, err)
	}
	b, err := strconv.Atoi(binding)
	if err != nil {
		return fmt.Errorf("line %d: invalid binding %q: %w", a.Line, binding, err)
	}
	a.Group, a.Binding = &g, &b
	return nil
}
