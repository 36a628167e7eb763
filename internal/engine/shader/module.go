// Package shader assembles GLSL programs from a base stage pair plus optional
// modules selected by feature flags. Compilation lives in the renderer.
package shader

import (
	"fmt"
	"strings"
)

// Version is the GLSL header prepended to every stage.
const Version = "#version 410 core\n"

// MaxBones bounds the skinning palette.
const MaxBones = 64

// Uniform names shared by the material and renderer packages.
const (
	UModel            = "uModel"
	UViewProj         = "uViewProj"
	UBones            = "uBones"
	UBaseColor        = "uBaseColor"
	UShadowColor      = "uShadowColor"
	ULightDir         = "uLightDir"
	ULitThreshold     = "uLitThreshold"
	UMidThreshold     = "uMidThreshold"
	UOpacity          = "uOpacity"
	URevealProgress   = "uRevealProgress"
	UPlaceholderColor = "uPlaceholderColor"
	UMap              = "uMap"
	ULineColor        = "uLineColor"
	USeed             = "uSeed"
	UGapFrequency     = "uGapFrequency"
	UGapThreshold     = "uGapThreshold"
	UWobble           = "uWobble"
)

// Base selects the program a material is built on.
type Base int

const (
	Toon Base = iota
	Ink
)

func (b Base) String() string {
	switch b {
	case Toon:
		return "toon"
	case Ink:
		return "ink"
	default:
		return fmt.Sprintf("base(%d)", int(b))
	}
}

// Supports returns the features that apply to b.
func (b Base) Supports() Features {
	switch b {
	case Toon:
		return Skinning | Textured | ColourReveal
	case Ink:
		return Skinning | InkGaps
	default:
		return 0
	}
}

// Features is a set of optional shader modules.
type Features uint8

const (
	Skinning Features = 1 << iota
	Textured
	ColourReveal
	InkGaps
)

// Has reports whether every feature in x is set.
func (f Features) Has(x Features) bool {
	return f&x == x
}

func (f Features) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for _, m := range modules {
		if f.Has(m.feature) {
			names = append(names, m.name)
		}
	}
	return strings.Join(names, "+")
}

// Stage is a pipeline stage.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

// Uniform is one declared uniform. Count > 0 declares an array.
type Uniform struct {
	Name  string
	Type  string
	Stage Stage
	Count int
}

func (u Uniform) declaration() string {
	if u.Count > 0 {
		return fmt.Sprintf("uniform %s %s[%d];\n", u.Type, u.Name, u.Count)
	}
	return fmt.Sprintf("uniform %s %s;\n", u.Type, u.Name)
}

type module struct {
	name     string
	feature  Features
	stage    Stage
	uniforms []Uniform
	on, off  string
}

// modules in emission order.
var modules = []module{
	{
		name:     "skinning",
		feature:  Skinning,
		stage:    VertexStage,
		uniforms: []Uniform{{Name: UBones, Type: "mat4", Stage: VertexStage, Count: MaxBones}},
		on:       skinningOn,
		off:      skinningOff,
	},
	{
		name:     "texture",
		feature:  Textured,
		stage:    FragmentStage,
		uniforms: []Uniform{{Name: UMap, Type: "sampler2D", Stage: FragmentStage}},
		on:       textureOn,
		off:      textureOff,
	},
	{
		name:    "colour-reveal",
		feature: ColourReveal,
		stage:   FragmentStage,
		uniforms: []Uniform{
			{Name: URevealProgress, Type: "float", Stage: FragmentStage},
			{Name: UPlaceholderColor, Type: "vec3", Stage: FragmentStage},
		},
		on:  colourRevealOn,
		off: colourRevealOff,
	},
	{
		name:    "ink-gaps",
		feature: InkGaps,
		stage:   FragmentStage,
		uniforms: []Uniform{
			{Name: USeed, Type: "float", Stage: FragmentStage},
			{Name: UGapFrequency, Type: "float", Stage: FragmentStage},
			{Name: UGapThreshold, Type: "float", Stage: FragmentStage},
			{Name: UWobble, Type: "float", Stage: FragmentStage},
		},
		on:  inkGapsOn,
		off: inkGapsOff,
	},
}

type baseProgram struct {
	uniforms         []Uniform
	vertex, fragment string
}

var bases = map[Base]baseProgram{
	Toon: {
		uniforms: []Uniform{
			{Name: UModel, Type: "mat4", Stage: VertexStage},
			{Name: UViewProj, Type: "mat4", Stage: VertexStage},
			{Name: UBaseColor, Type: "vec3", Stage: FragmentStage},
			{Name: UShadowColor, Type: "vec3", Stage: FragmentStage},
			{Name: ULightDir, Type: "vec3", Stage: FragmentStage},
			{Name: ULitThreshold, Type: "float", Stage: FragmentStage},
			{Name: UMidThreshold, Type: "float", Stage: FragmentStage},
			{Name: UOpacity, Type: "float", Stage: FragmentStage},
		},
		vertex:   toonVertex,
		fragment: toonFragment,
	},
	Ink: {
		uniforms: []Uniform{
			{Name: UModel, Type: "mat4", Stage: VertexStage},
			{Name: UViewProj, Type: "mat4", Stage: VertexStage},
			{Name: ULineColor, Type: "vec3", Stage: FragmentStage},
			{Name: UOpacity, Type: "float", Stage: FragmentStage},
			{Name: URevealProgress, Type: "float", Stage: FragmentStage},
		},
		vertex:   inkVertex,
		fragment: inkFragment,
	},
}

// Source is a fully assembled program.
type Source struct {
	Base     Base
	Features Features
	Vertex   string
	Fragment string
	Uniforms []Uniform
}

// Key identifies the program variant, e.g. "toon/skinning+texture".
func (s Source) Key() string {
	return Key(s.Base, s.Features)
}

// Key returns the cache key for a base and feature set.
func Key(base Base, features Features) string {
	return base.String() + "/" + (features & base.Supports()).String()
}

// HasUniform reports whether the program declares name.
func (s Source) HasUniform(name string) bool {
	for _, u := range s.Uniforms {
		if u.Name == name {
			return true
		}
	}
	return false
}

// Build assembles the stages for base with the given features. Features the
// base does not support are ignored. Each stage is laid out as header,
// uniform declarations, module bodies in fixed order, then the base main.
func Build(base Base, features Features) Source {
	bp, ok := bases[base]
	if !ok {
		panic(fmt.Sprintf("shader: unknown base %d", int(base)))
	}
	features &= base.Supports()

	src := Source{Base: base, Features: features}
	src.Uniforms = append(src.Uniforms, bp.uniforms...)
	for _, m := range modules {
		if base.Supports().Has(m.feature) && features.Has(m.feature) {
			src.Uniforms = append(src.Uniforms, m.uniforms...)
		}
	}

	var vs, fs strings.Builder
	vs.WriteString(Version)
	fs.WriteString(Version)
	for _, u := range src.Uniforms {
		if u.Stage == VertexStage {
			vs.WriteString(u.declaration())
		} else {
			fs.WriteString(u.declaration())
		}
	}

	for _, m := range modules {
		if !base.Supports().Has(m.feature) {
			continue
		}
		body := m.off
		if features.Has(m.feature) {
			body = m.on
		}
		w := &fs
		if m.stage == VertexStage {
			w = &vs
		}
		fmt.Fprintf(w, "\n// module: %s\n", m.name)
		w.WriteString(body)
	}

	vs.WriteString("\n")
	vs.WriteString(bp.vertex)
	fs.WriteString("\n")
	fs.WriteString(bp.fragment)

	src.Vertex = vs.String()
	src.Fragment = fs.String()
	return src
}
