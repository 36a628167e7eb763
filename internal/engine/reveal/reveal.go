// Package reveal drives the per-entity reveal animation: a frustum-gated
// fade-in, a progressive edge draw and a deferred colour wash.
package reveal

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/inkreveal/internal/logger"
	"github.com/Faultbox/inkreveal/pkg/math"
)

// Overshoot scales draw progress slightly past 1 so the smoothstep tail of
// the ink mask resolves before the edge phase ends.
const Overshoot = 1.05

// Hidden is the draw progress of an entity that has not started revealing.
const Hidden = -1

// Phase is a reveal state.
type Phase int

const (
	Waiting Phase = iota
	FadingIn
	DrawingEdges
	ColourDelay
	ColouringIn
	Done
)

func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case FadingIn:
		return "fading-in"
	case DrawingEdges:
		return "drawing-edges"
	case ColourDelay:
		return "colour-delay"
	case ColouringIn:
		return "colouring-in"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Config holds the phase durations in seconds.
type Config struct {
	FadeDuration   float32
	EdgeDuration   float32
	ColourDelay    float32
	ColourDuration float32
	// Immediate skips the frustum gate and starts in FadingIn.
	Immediate bool
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		FadeDuration:   0.15,
		EdgeDuration:   1.2,
		ColourDelay:    0.1,
		ColourDuration: 0.8,
	}
}

// Target is a shading program driven by the choreographer.
type Target interface {
	SetOpacity(float32)
	SetRevealProgress(float32)
	SetTransparent(bool)
	// EdgeDriven targets receive draw progress; the rest colour progress.
	EdgeDriven() bool
}

// Viewer supplies the camera matrices for the visibility test.
type Viewer interface {
	ProjectionMatrix() math.Mat4
	// WorldMatrix is the camera's world transform (the inverse of its view).
	WorldMatrix() math.Mat4
}

// Anchor supplies the entity's world-space reveal point.
type Anchor interface {
	WorldPosition() math.Vec3
}

// AnchorFunc adapts a function to Anchor.
type AnchorFunc func() math.Vec3

// WorldPosition calls f.
func (f AnchorFunc) WorldPosition() math.Vec3 { return f() }

// EaseOutCubic is 1 - (1-t)^3 with t clamped to [0, 1].
func EaseOutCubic(t float32) float32 {
	t = math.Clamp01(t)
	u := 1 - t
	return 1 - u*u*u
}

// Choreographer is one entity's reveal state machine. Phases only move
// forward; Replay is the sole way back to the start.
type Choreographer struct {
	cfg    Config
	viewer Viewer
	anchor Anchor

	phase          Phase
	elapsed        float32
	opacity        float32
	drawProgress   float32
	colourProgress float32

	targets []Target
	onPhase []func(from, to Phase)
	log     *zap.Logger
}

// New creates a choreographer. A nil viewer or anchor counts as always
// visible.
func New(cfg Config, viewer Viewer, anchor Anchor) *Choreographer {
	c := &Choreographer{
		cfg:    cfg,
		viewer: viewer,
		anchor: anchor,
		log:    logger.Named("reveal"),
	}
	c.reset()
	return c
}

func (c *Choreographer) reset() {
	c.elapsed = 0
	c.opacity = 0
	c.colourProgress = 0
	if c.cfg.Immediate {
		c.phase = FadingIn
		c.drawProgress = 0
	} else {
		c.phase = Waiting
		c.drawProgress = Hidden
	}
}

// Connect attaches a program and puts it in the pre-reveal state: invisible,
// no progress, alpha blended.
func (c *Choreographer) Connect(t Target) {
	t.SetOpacity(0)
	t.SetRevealProgress(0)
	t.SetTransparent(true)
	c.targets = append(c.targets, t)
}

// Adopt attaches a program at the current progress instead of resetting it,
// for programs created after the reveal started.
func (c *Choreographer) Adopt(t Target) {
	t.SetOpacity(c.opacity)
	if t.EdgeDriven() {
		t.SetRevealProgress(c.drawProgress)
	} else {
		t.SetRevealProgress(c.colourProgress)
	}
	t.SetTransparent(c.phase != Done)
	c.targets = append(c.targets, t)
}

// Disconnect detaches t. It reports whether t was connected.
func (c *Choreographer) Disconnect(t Target) bool {
	for i, x := range c.targets {
		if x == t {
			c.targets = append(c.targets[:i], c.targets[i+1:]...)
			return true
		}
	}
	return false
}

// Targets returns the number of connected programs.
func (c *Choreographer) Targets() int { return len(c.targets) }

// OnPhase registers a callback for every phase transition.
func (c *Choreographer) OnPhase(fn func(from, to Phase)) {
	c.onPhase = append(c.onPhase, fn)
}

// Replay restarts the reveal from the beginning and resets every connected
// program.
func (c *Choreographer) Replay() {
	from := c.phase
	c.reset()
	for _, t := range c.targets {
		t.SetOpacity(0)
		t.SetRevealProgress(0)
		t.SetTransparent(true)
	}
	c.notify(from, c.phase)
}

// Phase returns the current phase.
func (c *Choreographer) Phase() Phase { return c.phase }

// Elapsed returns the time spent in the current phase. FadingIn and
// DrawingEdges share one clock.
func (c *Choreographer) Elapsed() float32 { return c.elapsed }

// Opacity returns the fade-in value pushed to every program.
func (c *Choreographer) Opacity() float32 { return c.opacity }

// DrawProgress returns the edge draw value: Hidden while waiting, then
// rising to Overshoot.
func (c *Choreographer) DrawProgress() float32 { return c.drawProgress }

// ColourProgress returns the colour wash value in [0, 1].
func (c *Choreographer) ColourProgress() float32 { return c.colourProgress }

// Config returns the timings.
func (c *Choreographer) Config() Config { return c.cfg }

// Visible reports whether the anchor lies inside the viewer's frustum. The
// frustum is rebuilt from the current matrices on every call.
func (c *Choreographer) Visible() bool {
	if c.viewer == nil || c.anchor == nil {
		return true
	}
	viewProj := c.viewer.ProjectionMatrix().Mul(c.viewer.WorldMatrix().Inverse())
	return math.FrustumFromMatrix(viewProj).ContainsPoint(c.anchor.WorldPosition())
}

// Update advances the state machine by dt seconds.
func (c *Choreographer) Update(dt float32) {
	switch c.phase {
	case Waiting:
		if !c.Visible() {
			return
		}
		// The frame that sees the entity only starts the clock.
		c.elapsed = 0
		c.drawProgress = 0
		c.setPhase(FadingIn)

	case FadingIn:
		c.elapsed += dt
		c.opacity = EaseOutCubic(ratio(c.elapsed, c.cfg.FadeDuration))
		c.advanceDraw()
		if c.elapsed >= c.cfg.FadeDuration {
			c.opacity = 1
		}
		c.pushOpacity()
		c.pushDraw()
		if c.opacity >= 1 {
			c.setPhase(DrawingEdges)
		}

	case DrawingEdges:
		c.elapsed += dt
		c.advanceDraw()
		if c.elapsed >= c.cfg.EdgeDuration {
			c.drawProgress = Overshoot
			c.pushDraw()
			c.elapsed = 0
			c.setPhase(ColourDelay)
			return
		}
		c.pushDraw()

	case ColourDelay:
		c.elapsed += dt
		if c.elapsed >= c.cfg.ColourDelay {
			c.elapsed = 0
			c.setPhase(ColouringIn)
		}

	case ColouringIn:
		c.elapsed += dt
		c.colourProgress = EaseOutCubic(ratio(c.elapsed, c.cfg.ColourDuration))
		if c.elapsed >= c.cfg.ColourDuration {
			c.colourProgress = 1
		}
		c.pushColour()
		if c.colourProgress >= 1 {
			for _, t := range c.targets {
				t.SetOpacity(1)
				t.SetTransparent(false)
			}
			c.setPhase(Done)
		}

	case Done:
	}
}

func (c *Choreographer) advanceDraw() {
	c.drawProgress = Overshoot * EaseOutCubic(ratio(c.elapsed, c.cfg.EdgeDuration))
}

func (c *Choreographer) pushOpacity() {
	for _, t := range c.targets {
		t.SetOpacity(c.opacity)
	}
}

func (c *Choreographer) pushDraw() {
	for _, t := range c.targets {
		if t.EdgeDriven() {
			t.SetRevealProgress(c.drawProgress)
		}
	}
}

func (c *Choreographer) pushColour() {
	for _, t := range c.targets {
		if !t.EdgeDriven() {
			t.SetRevealProgress(c.colourProgress)
		}
	}
}

func (c *Choreographer) setPhase(p Phase) {
	from := c.phase
	c.phase = p
	c.notify(from, p)
}

func (c *Choreographer) notify(from, to Phase) {
	c.log.Debug("reveal phase",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Float32("drawProgress", c.drawProgress),
		zap.Float32("colourProgress", c.colourProgress))
	for _, fn := range c.onPhase {
		fn(from, to)
	}
}

// ratio is elapsed/duration; a non-positive duration completes at once.
func ratio(elapsed, duration float32) float32 {
	if duration <= 0 {
		return 1
	}
	return elapsed / duration
}
