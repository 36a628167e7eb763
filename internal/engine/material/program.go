// Package material holds shading program instances: the uniform values and
// render state the renderer applies when drawing a node, plus CPU reference
// evaluators of the toon and ink shading formulas.
package material

import (
	"github.com/Faultbox/inkreveal/internal/engine/shader"
	"github.com/Faultbox/inkreveal/internal/engine/texture"
	"github.com/Faultbox/inkreveal/internal/engine/theme"
	"github.com/Faultbox/inkreveal/pkg/math"
)

// Side selects which triangle faces are rasterized.
type Side int

const (
	DoubleSide Side = iota
	FrontSide
	BackSide
)

func (s Side) String() string {
	switch s {
	case FrontSide:
		return "front"
	case BackSide:
		return "back"
	default:
		return "double"
	}
}

// Program is one material instance. Uniform values are mutated in place by
// the reveal choreographer and by theme changes; the renderer reads them each
// frame.
type Program struct {
	Name string

	base     shader.Base
	features shader.Features

	floats  map[string]float32
	vec3s   map[string]math.Vec3
	Texture *texture.Texture

	// Render state.
	Transparent   bool
	DepthWrite    bool
	PolygonOffset bool
	OffsetFactor  float32
	OffsetUnits   float32
	Side          Side
	LineWidth     float32

	// baseOpacity scales every opacity written through SetOpacity.
	baseOpacity float32
	unsubscribe func()
	disposed    bool
}

func newProgram(name string, base shader.Base, features shader.Features) *Program {
	return &Program{
		Name:        name,
		base:        base,
		features:    features & base.Supports(),
		floats:      make(map[string]float32),
		vec3s:       make(map[string]math.Vec3),
		DepthWrite:  true,
		LineWidth:   1,
		baseOpacity: 1,
	}
}

// bindTheme applies the bus palette now and on every mode change. A nil bus
// leaves the program on the default light palette.
func (p *Program) bindTheme(bus *theme.Bus, apply func(theme.Palette)) {
	if bus == nil {
		apply(theme.DefaultPalettes().Light)
		return
	}
	apply(bus.Palette())
	p.unsubscribe = bus.Subscribe(func(m theme.Mode) {
		apply(bus.Palettes().For(m))
	})
}

// Base returns the shader base the program is built on.
func (p *Program) Base() shader.Base { return p.base }

// Features returns the enabled shader modules.
func (p *Program) Features() shader.Features { return p.features }

// Key identifies the compiled shader variant this program needs.
func (p *Program) Key() string { return shader.Key(p.base, p.features) }

// Source assembles the program's shader stages.
func (p *Program) Source() shader.Source { return shader.Build(p.base, p.features) }

// Float returns a scalar uniform.
func (p *Program) Float(name string) (float32, bool) {
	v, ok := p.floats[name]
	return v, ok
}

// SetFloat sets a scalar uniform.
func (p *Program) SetFloat(name string, v float32) { p.floats[name] = v }

// Vec3 returns a vector uniform.
func (p *Program) Vec3(name string) (math.Vec3, bool) {
	v, ok := p.vec3s[name]
	return v, ok
}

// SetVec3 sets a vector uniform.
func (p *Program) SetVec3(name string, v math.Vec3) { p.vec3s[name] = v }

// EachUniform calls the matching function for every stored uniform.
func (p *Program) EachUniform(scalar func(name string, v float32), vector func(name string, v math.Vec3)) {
	for name, v := range p.floats {
		scalar(name, v)
	}
	for name, v := range p.vec3s {
		vector(name, v)
	}
}

// Opacity returns the current opacity uniform.
func (p *Program) Opacity() float32 { return p.floats[shader.UOpacity] }

// RevealProgress returns the current reveal-progress uniform.
func (p *Program) RevealProgress() float32 { return p.floats[shader.URevealProgress] }

// SetOpacity writes the opacity uniform, scaled by the program's configured
// opacity.
func (p *Program) SetOpacity(o float32) {
	p.floats[shader.UOpacity] = p.baseOpacity * o
}

// SetRevealProgress writes the reveal-progress uniform. Ink programs treat it
// as draw progress (-1 hides the lines); toon programs as colour progress.
func (p *Program) SetRevealProgress(v float32) {
	p.floats[shader.URevealProgress] = v
}

// SetTransparent toggles alpha blending. Ink programs blend their gap mask
// and stay transparent regardless.
func (p *Program) SetTransparent(t bool) {
	if p.base == shader.Ink {
		return
	}
	p.Transparent = t
}

// LineWidthIn returns LineWidth limited to the driver's supported range
// [lo, hi]. Core profiles commonly report [1, 1]; a reversed or empty range
// falls back to 1.
func (p *Program) LineWidthIn(lo, hi float32) float32 {
	if lo <= 0 || hi < lo {
		return 1
	}
	return min(max(p.LineWidth, lo), hi)
}

// EdgeDriven reports whether the program follows draw progress rather than
// colour progress.
func (p *Program) EdgeDriven() bool { return p.base == shader.Ink }

// Visible reports whether drawing the program can produce any pixels.
func (p *Program) Visible() bool {
	if p.disposed || p.Opacity() <= 0 {
		return false
	}
	if p.base == shader.Ink && p.RevealProgress() < 0 {
		return false
	}
	return true
}

// Subscribed reports whether the program still listens to theme changes.
func (p *Program) Subscribed() bool { return p.unsubscribe != nil }

// Disposed reports whether Dispose has run.
func (p *Program) Disposed() bool { return p.disposed }

// Dispose releases the theme subscription. Calling it again is a no-op.
func (p *Program) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}
