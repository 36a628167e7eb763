package material

import (
	"github.com/Faultbox/inkreveal/internal/engine/shader"
	"github.com/Faultbox/inkreveal/internal/engine/theme"
	"github.com/Faultbox/inkreveal/pkg/math"
)

// Offsets and scales of the second noise sample that varies line opacity.
const (
	variationScale  = 2.3
	variationOffset = 17.0
)

// InkOptions configures an ink line program.
type InkOptions struct {
	Seed         float32
	GapFrequency float32
	GapThreshold float32
	Wobble       float32
	Opacity      float32
	LineWidth    float32
	// Solid disables the gap mask.
	Solid   bool
	Skinned bool
}

// DefaultInkOptions returns the stock gap pattern.
func DefaultInkOptions() InkOptions {
	return InkOptions{
		GapFrequency: 4.0,
		GapThreshold: 0.35,
		Wobble:       0.08,
		Opacity:      1,
		LineWidth:    1,
	}
}

// NewInk creates a line program whose colour follows bus. Lines blend over
// their surface without writing depth and are pulled toward the camera by a
// negative polygon offset.
func NewInk(name string, bus *theme.Bus, opts InkOptions) *Program {
	var features shader.Features
	if !opts.Solid {
		features |= shader.InkGaps
	}
	if opts.Skinned {
		features |= shader.Skinning
	}

	p := newProgram(name, shader.Ink, features)
	p.baseOpacity = opts.Opacity
	p.Transparent = true
	p.DepthWrite = false
	p.PolygonOffset = true
	p.OffsetFactor = -1
	p.OffsetUnits = -1
	p.Side = DoubleSide
	if opts.LineWidth > 0 {
		p.LineWidth = opts.LineWidth
	}

	p.SetFloat(shader.USeed, opts.Seed)
	p.SetFloat(shader.UGapFrequency, opts.GapFrequency)
	p.SetFloat(shader.UGapThreshold, opts.GapThreshold)
	p.SetFloat(shader.UWobble, opts.Wobble)
	p.SetFloat(shader.UOpacity, opts.Opacity)
	p.SetFloat(shader.URevealProgress, 1)

	p.bindTheme(bus, func(pal theme.Palette) {
		p.SetVec3(shader.ULineColor, pal.Line)
	})
	return p
}

// Hash is a polynomial rolling hash of identity, modulo 1000.
func Hash(identity string) uint32 {
	var h uint32
	for i := 0; i < len(identity); i++ {
		h = (h*31 + uint32(identity[i])) % 1000
	}
	return h
}

// SeedFor derives a per-mesh seed so sibling meshes get different gap
// patterns.
func SeedFor(base float32, identity string) float32 {
	return base + float32(Hash(identity))
}

// InkParams is a snapshot of the inputs to the ink fragment stage.
type InkParams struct {
	LineColor      math.Vec3
	Seed           float32
	GapFrequency   float32
	GapThreshold   float32
	Wobble         float32
	Opacity        float32
	RevealProgress float32
	Gaps           bool
}

// InkParams captures the program's current uniforms.
func (p *Program) InkParams() InkParams {
	colour, _ := p.Vec3(shader.ULineColor)
	seed, _ := p.Float(shader.USeed)
	freq, _ := p.Float(shader.UGapFrequency)
	thr, _ := p.Float(shader.UGapThreshold)
	wobble, _ := p.Float(shader.UWobble)
	return InkParams{
		LineColor:      colour,
		Seed:           seed,
		GapFrequency:   freq,
		GapThreshold:   thr,
		Wobble:         wobble,
		Opacity:        p.Opacity(),
		RevealProgress: p.RevealProgress(),
		Gaps:           p.features.Has(shader.InkGaps),
	}
}

// GapMask evaluates the broken-line coverage at a bind-pose position: the
// smoothstep band around the threshold times a +-10% opacity variation.
func GapMask(p InkParams, objectPos math.Vec3) float32 {
	q := objectPos.Scale(p.GapFrequency).Add(math.Vec3{X: p.Seed, Y: p.Seed, Z: p.Seed})
	mask := math.Smoothstep(p.GapThreshold-p.Wobble, p.GapThreshold+p.Wobble, ValueNoise3(q))

	offset := math.Vec3{X: variationOffset, Y: variationOffset, Z: variationOffset}
	variation := 0.9 + 0.2*ValueNoise3(q.Scale(variationScale).Add(offset))
	return mask * variation
}

// InkAlpha evaluates the ink fragment alpha on the CPU. Negative reveal
// progress hides the line entirely.
func InkAlpha(p InkParams, objectPos math.Vec3) float32 {
	if p.RevealProgress < 0 {
		return 0
	}
	mask := float32(1)
	if p.Gaps {
		mask = GapMask(p, objectPos)
	}
	return math.Clamp01(p.Opacity * mask * math.Smoothstep(0, 1, p.RevealProgress))
}
