package material

import (
	"github.com/Faultbox/inkreveal/internal/engine/shader"
	"github.com/Faultbox/inkreveal/internal/engine/texture"
	"github.com/Faultbox/inkreveal/internal/engine/theme"
	"github.com/Faultbox/inkreveal/pkg/math"
)

// TextureShadowFactor darkens the sampled colour to get the shadow band of a
// textured surface.
const TextureShadowFactor = 0.55

// ToonOptions configures a toon program.
type ToonOptions struct {
	LitThreshold float32
	MidThreshold float32
	LightDir     math.Vec3
	Side         Side
	Texture      *texture.Texture
	Skinned      bool
	// ColourReveal blends from the palette placeholder to the shaded colour
	// by the reveal progress.
	ColourReveal bool
}

// DefaultToonOptions returns the stock thresholds and light direction.
func DefaultToonOptions() ToonOptions {
	return ToonOptions{
		LitThreshold: 0.5,
		MidThreshold: 0.0,
		LightDir:     math.Vec3{X: 0.4, Y: 1, Z: 0.6},
		Side:         DoubleSide,
		ColourReveal: true,
	}
}

// NewToon creates a three-band toon program whose colours follow bus.
func NewToon(name string, bus *theme.Bus, opts ToonOptions) *Program {
	var features shader.Features
	if opts.Skinned {
		features |= shader.Skinning
	}
	if opts.Texture != nil {
		features |= shader.Textured
	}
	if opts.ColourReveal {
		features |= shader.ColourReveal
	}

	p := newProgram(name, shader.Toon, features)
	p.Side = opts.Side
	p.Texture = opts.Texture
	p.SetFloat(shader.ULitThreshold, opts.LitThreshold)
	p.SetFloat(shader.UMidThreshold, opts.MidThreshold)
	p.SetVec3(shader.ULightDir, opts.LightDir.Normalize())
	p.SetFloat(shader.UOpacity, 1)
	p.SetFloat(shader.URevealProgress, 1)

	p.bindTheme(bus, func(pal theme.Palette) {
		p.SetVec3(shader.UBaseColor, pal.Base)
		p.SetVec3(shader.UShadowColor, pal.Shadow)
		p.SetVec3(shader.UPlaceholderColor, pal.Placeholder)
	})
	return p
}

// Band is a discrete lighting band.
type Band int

const (
	ShadowBand Band = iota
	MidBand
	LitBand
)

// Classify picks the band for a signed light cosine.
func Classify(ndl, lit, mid float32) Band {
	switch {
	case ndl > lit:
		return LitBand
	case ndl > mid:
		return MidBand
	default:
		return ShadowBand
	}
}

// ToonParams is a snapshot of the inputs to the toon fragment stage.
type ToonParams struct {
	Base, Shadow   math.Vec3
	Placeholder    math.Vec3
	LightDir       math.Vec3
	Lit, Mid       float32
	Opacity        float32
	RevealProgress float32
	ColourReveal   bool
	Texture        *texture.Texture
}

// ToonParams captures the program's current uniforms.
func (p *Program) ToonParams() ToonParams {
	base, _ := p.Vec3(shader.UBaseColor)
	shadow, _ := p.Vec3(shader.UShadowColor)
	placeholder, _ := p.Vec3(shader.UPlaceholderColor)
	light, _ := p.Vec3(shader.ULightDir)
	lit, _ := p.Float(shader.ULitThreshold)
	mid, _ := p.Float(shader.UMidThreshold)
	return ToonParams{
		Base:           base,
		Shadow:         shadow,
		Placeholder:    placeholder,
		LightDir:       light,
		Lit:            lit,
		Mid:            mid,
		Opacity:        p.Opacity(),
		RevealProgress: p.RevealProgress(),
		ColourReveal:   p.features.Has(shader.ColourReveal),
		Texture:        p.Texture,
	}
}

// ShadeToon evaluates the toon fragment stage on the CPU. normal must face
// the viewer (double-sided programs flip back-face normals before this).
func ShadeToon(p ToonParams, normal math.Vec3, u, v float32) (math.Vec3, float32) {
	ndl := normal.Normalize().Dot(p.LightDir.Normalize())

	base, shadow := p.Base, p.Shadow
	if p.Texture != nil {
		base = p.Texture.Sample(u, v)
		shadow = base.Scale(TextureShadowFactor)
	}

	var colour math.Vec3
	switch Classify(ndl, p.Lit, p.Mid) {
	case LitBand:
		colour = base
	case MidBand:
		colour = base.Lerp(shadow, 0.5)
	default:
		colour = shadow
	}

	if p.ColourReveal {
		colour = p.Placeholder.Lerp(colour, math.Clamp01(p.RevealProgress))
	}
	return colour, p.Opacity
}
