package reveal

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/inkreveal/pkg/math"
)

type camera struct {
	proj  math.Mat4
	world math.Mat4
}

func (c *camera) ProjectionMatrix() math.Mat4 { return c.proj }
func (c *camera) WorldMatrix() math.Mat4      { return c.world }

// newCamera sits at (0, 0, 5) looking down -Z.
func newCamera() *camera {
	return &camera{
		proj:  math.Perspective(float32(gomath.Pi/3), 1, 0.1, 100),
		world: math.Translate(0, 0, 5),
	}
}

type point struct{ pos math.Vec3 }

func (p *point) WorldPosition() math.Vec3 { return p.pos }

type target struct {
	edge        bool
	opacity     float32
	progress    float32
	transparent bool
	history     []float32
}

func (t *target) SetOpacity(o float32) { t.opacity = o }
func (t *target) SetRevealProgress(p float32) {
	t.progress = p
	t.history = append(t.history, p)
}
func (t *target) SetTransparent(b bool) { t.transparent = b }
func (t *target) EdgeDriven() bool      { return t.edge }

// binaryConfig uses durations that are exact sums of 1/32 s frames.
func binaryConfig() Config {
	return Config{FadeDuration: 0.125, EdgeDuration: 1, ColourDelay: 0.125, ColourDuration: 0.5}
}

const frame = 1.0 / 32

func TestEaseOutCubic(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.875},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		if got := EaseOutCubic(tt.in); gomath.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("EaseOutCubic(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConnectResetsTarget(t *testing.T) {
	c := New(DefaultConfig(), newCamera(), &point{})
	tg := &target{opacity: 1, progress: 1}
	c.Connect(tg)

	if tg.opacity != 0 || tg.progress != 0 || !tg.transparent {
		t.Errorf("after Connect: opacity %v progress %v transparent %v", tg.opacity, tg.progress, tg.transparent)
	}
	if c.Targets() != 1 {
		t.Errorf("Targets() = %d, want 1", c.Targets())
	}
	if c.Phase() != Waiting || c.DrawProgress() != Hidden {
		t.Errorf("phase %v draw %v, want waiting/-1", c.Phase(), c.DrawProgress())
	}
}

func TestOutsideFrustumKeepsWaiting(t *testing.T) {
	anchors := []math.Vec3{
		{Z: 50},          // behind the camera
		{X: 100},         // far to the side
		{Z: -500},        // beyond the far plane
		{Y: -40, Z: -10}, // below
	}
	for _, pos := range anchors {
		c := New(DefaultConfig(), newCamera(), &point{pos: pos})
		tg := &target{edge: true}
		c.Connect(tg)

		for i := 0; i < 1000; i++ {
			c.Update(1.0 / 60)
		}
		if c.Phase() != Waiting {
			t.Errorf("anchor %v: phase %v, want waiting", pos, c.Phase())
		}
		if c.DrawProgress() != Hidden {
			t.Errorf("anchor %v: draw progress %v, want %v", pos, c.DrawProgress(), Hidden)
		}
		if tg.opacity != 0 {
			t.Errorf("anchor %v: target opacity %v, want 0", pos, tg.opacity)
		}
	}
}

func TestFrustumFollowsCamera(t *testing.T) {
	cam := newCamera()
	anchor := &point{pos: math.Vec3{X: 20, Z: -5}}
	c := New(DefaultConfig(), cam, anchor)

	c.Update(frame)
	if c.Phase() != Waiting {
		t.Fatalf("phase %v, want waiting", c.Phase())
	}

	// Move the camera over the anchor; the next check must see it.
	cam.world = math.Translate(20, 0, 5)
	c.Update(frame)
	if c.Phase() != FadingIn {
		t.Errorf("phase %v after camera move, want fading-in", c.Phase())
	}
}

func TestVisibleFrameOnlyStartsClock(t *testing.T) {
	c := New(DefaultConfig(), newCamera(), &point{})
	c.Update(0.5)

	if c.Phase() != FadingIn {
		t.Fatalf("phase %v, want fading-in", c.Phase())
	}
	if c.Elapsed() != 0 || c.DrawProgress() != 0 || c.Opacity() != 0 {
		t.Errorf("elapsed %v draw %v opacity %v, want all 0", c.Elapsed(), c.DrawProgress(), c.Opacity())
	}
}

func TestImmediateStartsFading(t *testing.T) {
	cfg := binaryConfig()
	cfg.Immediate = true
	// A camera looking away: immediate mode ignores it.
	cam := newCamera()
	c := New(cfg, cam, &point{pos: math.Vec3{Z: 50}})

	if c.Phase() != FadingIn || c.DrawProgress() != 0 {
		t.Fatalf("phase %v draw %v, want fading-in/0", c.Phase(), c.DrawProgress())
	}
	c.Update(frame)
	if c.Elapsed() != frame {
		t.Errorf("elapsed %v, want %v", c.Elapsed(), frame)
	}
	if c.Opacity() <= 0 || c.DrawProgress() <= 0 {
		t.Errorf("opacity %v draw %v, want both rising", c.Opacity(), c.DrawProgress())
	}
}

func TestTimeline(t *testing.T) {
	cfg := binaryConfig()
	cfg.Immediate = true
	c := New(cfg, nil, nil)
	surface := &target{}
	lines := &target{edge: true}
	c.Connect(surface)
	c.Connect(lines)

	var transitions []Phase
	c.OnPhase(func(from, to Phase) { transitions = append(transitions, to) })

	checkpoints := map[int]Phase{
		3:  FadingIn,
		4:  DrawingEdges,
		31: DrawingEdges,
		32: ColourDelay,
		35: ColourDelay,
		36: ColouringIn,
		51: ColouringIn,
		52: Done,
	}
	for i := 1; i <= 60; i++ {
		c.Update(frame)
		if want, ok := checkpoints[i]; ok && c.Phase() != want {
			t.Errorf("frame %d: phase %v, want %v", i, c.Phase(), want)
		}
		if i == 4 {
			if c.Opacity() != 1 || surface.opacity != 1 || lines.opacity != 1 {
				t.Errorf("frame 4: opacity %v (targets %v, %v), want 1", c.Opacity(), surface.opacity, lines.opacity)
			}
			if c.Elapsed() != cfg.FadeDuration {
				t.Errorf("frame 4: edge clock %v, want it to keep running from %v", c.Elapsed(), cfg.FadeDuration)
			}
		}
		if i == 32 && lines.progress != Overshoot {
			t.Errorf("frame 32: draw progress %v, want %v", lines.progress, Overshoot)
		}
		if i == 35 && surface.progress != 0 {
			t.Errorf("frame 35: colour progress %v during delay, want 0", surface.progress)
		}
	}

	want := []Phase{DrawingEdges, ColourDelay, ColouringIn, Done}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, transitions[i], want[i])
		}
	}

	if c.ColourProgress() != 1 || surface.progress != 1 {
		t.Errorf("colour progress %v (target %v), want 1", c.ColourProgress(), surface.progress)
	}
	if surface.transparent || lines.transparent {
		t.Error("targets still transparent after done")
	}
	if lines.progress != Overshoot {
		t.Errorf("lines progress %v, want %v", lines.progress, Overshoot)
	}
}

func TestDrawProgressMonotonic(t *testing.T) {
	deltas := []float32{1.0 / 60, 1.0 / 30, 1.0 / 144, 0.1}
	for _, dt := range deltas {
		c := New(DefaultConfig(), nil, nil)
		lines := &target{edge: true}
		c.Connect(lines)

		prev := float32(Hidden)
		reachedBeforeLeaving := false
		for i := 0; i < 2000 && c.Phase() != Done; i++ {
			before := c.Phase()
			c.Update(dt)
			if c.Phase() == FadingIn || c.Phase() == DrawingEdges || before == DrawingEdges {
				if c.DrawProgress() < prev {
					t.Fatalf("dt %v: draw progress fell from %v to %v", dt, prev, c.DrawProgress())
				}
				prev = c.DrawProgress()
			}
			if before == DrawingEdges && c.Phase() != DrawingEdges {
				reachedBeforeLeaving = c.DrawProgress() >= 1
			}
		}
		if c.Phase() != Done {
			t.Errorf("dt %v: never finished, phase %v", dt, c.Phase())
		}
		if !reachedBeforeLeaving {
			t.Errorf("dt %v: left drawing-edges below 1", dt)
		}
		for i := 1; i < len(lines.history); i++ {
			if lines.history[i] < lines.history[i-1] {
				t.Errorf("dt %v: pushed progress fell at %d: %v -> %v", dt, i, lines.history[i-1], lines.history[i])
				break
			}
		}
	}
}

func TestDefaultTimings(t *testing.T) {
	c := New(DefaultConfig(), newCamera(), &point{})
	surface := &target{}
	c.Connect(surface)

	const dt = 1.0 / 120
	c.Update(dt) // becomes visible
	var clock float32
	for c.Phase() == FadingIn {
		c.Update(dt)
		clock += dt
	}
	if gomath.Abs(float64(clock-0.15)) > dt {
		t.Errorf("fade took %v, want 0.15", clock)
	}
	if c.Opacity() != 1 || surface.opacity != 1 {
		t.Errorf("opacity %v after fade, want 1", c.Opacity())
	}

	for c.Phase() == DrawingEdges {
		c.Update(dt)
		clock += dt
	}
	if gomath.Abs(float64(clock-1.2)) > 2*dt {
		t.Errorf("edges finished at %v, want 1.2", clock)
	}
	if c.DrawProgress() != Overshoot {
		t.Errorf("draw progress %v, want %v", c.DrawProgress(), Overshoot)
	}

	for c.Phase() != Done {
		c.Update(dt)
		clock += dt
	}
	if gomath.Abs(float64(clock-2.1)) > 4*dt {
		t.Errorf("reveal finished at %v, want 2.1", clock)
	}
	if surface.transparent {
		t.Error("surface still transparent")
	}
}

func TestZeroDurations(t *testing.T) {
	c := New(Config{Immediate: true}, nil, nil)
	tg := &target{}
	c.Connect(tg)
	for i := 0; i < 10; i++ {
		c.Update(frame)
	}
	if c.Phase() != Done {
		t.Errorf("phase %v, want done", c.Phase())
	}
	if gomath.IsNaN(float64(c.DrawProgress())) || c.DrawProgress() != Overshoot {
		t.Errorf("draw progress %v, want %v", c.DrawProgress(), Overshoot)
	}
}

func TestReplay(t *testing.T) {
	cfg := binaryConfig()
	c := New(cfg, nil, nil)
	tg := &target{}
	c.Connect(tg)
	for i := 0; i < 100; i++ {
		c.Update(frame)
	}
	if c.Phase() != Done {
		t.Fatalf("phase %v, want done", c.Phase())
	}

	var got []Phase
	c.OnPhase(func(from, to Phase) { got = append(got, from, to) })
	c.Replay()

	if c.Phase() != Waiting || c.DrawProgress() != Hidden || c.ColourProgress() != 0 {
		t.Errorf("after replay: phase %v draw %v colour %v", c.Phase(), c.DrawProgress(), c.ColourProgress())
	}
	if tg.opacity != 0 || tg.progress != 0 || !tg.transparent {
		t.Errorf("target not reset: %+v", tg)
	}
	if len(got) != 2 || got[0] != Done || got[1] != Waiting {
		t.Errorf("replay notification = %v, want [done waiting]", got)
	}
}

func TestDisconnect(t *testing.T) {
	c := New(binaryConfig(), nil, nil)
	a, b := &target{}, &target{edge: true}
	c.Connect(a)
	c.Connect(b)

	if !c.Disconnect(b) {
		t.Fatal("Disconnect(b) = false")
	}
	if c.Disconnect(b) {
		t.Error("second Disconnect(b) = true")
	}
	c.Update(frame)
	c.Update(frame)
	if b.opacity != 0 {
		t.Errorf("disconnected target updated: opacity %v", b.opacity)
	}
	if a.opacity == 0 {
		t.Error("connected target not updated")
	}
}

func TestPhaseString(t *testing.T) {
	if got := ColourDelay.String(); got != "colour-delay" {
		t.Errorf("String() = %q", got)
	}
	if got := Phase(42).String(); got != "phase(42)" {
		t.Errorf("String() = %q", got)
	}
}

func TestAdoptMatchesProgress(t *testing.T) {
	cfg := binaryConfig()
	cfg.Immediate = true
	c := New(cfg, nil, nil)
	for i := 0; i < 8; i++ {
		c.Update(frame)
	}

	lines := &target{edge: true}
	c.Adopt(lines)
	if lines.opacity != c.Opacity() || lines.progress != c.DrawProgress() || !lines.transparent {
		t.Errorf("adopted mid-reveal: %+v, want opacity %v progress %v", lines, c.Opacity(), c.DrawProgress())
	}

	for c.Phase() != Done {
		c.Update(frame)
	}
	surface := &target{}
	c.Adopt(surface)
	if surface.opacity != 1 || surface.progress != 1 || surface.transparent {
		t.Errorf("adopted after done: %+v", surface)
	}
	if c.Targets() != 2 {
		t.Errorf("Targets() = %d, want 2", c.Targets())
	}
}
