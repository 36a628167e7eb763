// Package renderer draws a scene graph with OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/inkreveal/internal/engine/material"
	"github.com/Faultbox/inkreveal/internal/engine/scene"
	"github.com/Faultbox/inkreveal/internal/engine/shader"
	"github.com/Faultbox/inkreveal/internal/logger"
	"github.com/Faultbox/inkreveal/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background math.Vec3
}

// Stats counts the work of the last frame.
type Stats struct {
	Opaque      int
	Transparent int
	Segments    int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	programs map[string]*Compiled
	failed   map[string]error
	stats    Stats

	// lineWidths is GL_ALIASED_LINE_WIDTH_RANGE.
	lineWidths [2]float32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		programs: make(map[string]*Compiled),
		failed:   make(map[string]error),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.GetFloatv(gl.ALIASED_LINE_WIDTH_RANGE, &r.lineWidths[0])
	logger.Debug("line width range",
		zap.Float32("min", r.lineWidths[0]),
		zap.Float32("max", r.lineWidths[1]))
	r.SetBackground(cfg.Background)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	return r, nil
}

// Close deletes every cached program. GPU buffers belong to the geometry
// they were uploaded for and are freed when that geometry is disposed.
func (r *Renderer) Close() error {
	logger.Info("closing renderer", zap.Int("programs", len(r.programs)))
	for key, c := range r.programs {
		c.Delete()
		delete(r.programs, key)
	}
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x on close", code)
	}
	return nil
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetBackground changes the clear colour.
func (r *Renderer) SetBackground(c math.Vec3) {
	r.config.Background = c
	gl.ClearColor(c.X, c.Y, c.Z, 1.0)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame and restores default state.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.Disable(gl.BLEND)
	gl.Disable(gl.POLYGON_OFFSET_FILL)
	gl.Disable(gl.POLYGON_OFFSET_LINE)
	gl.DepthMask(true)
}

// Stats returns the counts of the last Draw.
func (r *Renderer) Stats() Stats { return r.stats }

// Program returns the compiled GL program for p, compiling it on first use.
// Programs are shared by every material with the same base and features.
func (r *Renderer) Program(p *material.Program) (*Compiled, error) {
	key := p.Key()
	if c, ok := r.programs[key]; ok {
		return c, nil
	}
	if err, ok := r.failed[key]; ok {
		return nil, err
	}
	c, err := Compile(p.Source())
	if err != nil {
		logger.Error("shader program failed", zap.String("program", key), zap.Error(err))
		r.failed[key] = err
		return nil, err
	}
	r.programs[key] = c
	return c, nil
}

// Draw renders every visible node of g: opaque nodes first, then blended
// nodes back to front from eye. Nodes whose program fails to compile are
// skipped; their errors are combined in the result.
func (r *Renderer) Draw(g *scene.Graph, viewProj math.Mat4, eye math.Vec3) error {
	q := g.Collect(eye)
	r.stats = Stats{Opaque: len(q.Opaque), Transparent: len(q.Transparent)}

	var err error
	for _, it := range q.Opaque {
		err = multierr.Append(err, r.drawItem(it, viewProj))
	}
	for _, it := range q.Transparent {
		err = multierr.Append(err, r.drawItem(it, viewProj))
	}
	return err
}

func (r *Renderer) drawItem(it scene.Item, viewProj math.Mat4) error {
	n := it.Node
	prog := n.Material
	c, err := r.Program(prog)
	if err != nil {
		return err
	}

	gl.UseProgram(c.ID)
	r.applyState(prog, n.Kind)

	gl.UniformMatrix4fv(c.Location(shader.UModel), 1, false, &it.World[0])
	gl.UniformMatrix4fv(c.Location(shader.UViewProj), 1, false, &viewProj[0])
	prog.EachUniform(
		func(name string, v float32) {
			if loc := c.Location(name); loc >= 0 {
				gl.Uniform1f(loc, v)
			}
		},
		func(name string, v math.Vec3) {
			if loc := c.Location(name); loc >= 0 {
				gl.Uniform3f(loc, v.X, v.Y, v.Z)
			}
		},
	)
	if c.Source.HasUniform(shader.UBones) {
		bindBones(c.Location(shader.UBones), n.Skeleton)
	}
	if prog.Texture != nil && c.Source.HasUniform(shader.UMap) {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, textureID(prog.Texture))
		gl.Uniform1i(c.Location(shader.UMap), 0)
	}

	switch n.Kind {
	case scene.Mesh:
		meshBuffersFor(n.Mesh).draw()
	case scene.Lines:
		lineBuffersFor(n.Lines).draw()
		r.stats.Segments += n.Lines.SegmentCount()
	}
	return nil
}

// applyState sets blend, depth-write, polygon offset, culling and line width
// from the program.
func (r *Renderer) applyState(p *material.Program, kind scene.Kind) {
	if p.Transparent {
		gl.Enable(gl.BLEND)
	} else {
		gl.Disable(gl.BLEND)
	}
	gl.DepthMask(p.DepthWrite)

	offsetMode := uint32(gl.POLYGON_OFFSET_FILL)
	if kind == scene.Lines {
		offsetMode = gl.POLYGON_OFFSET_LINE
	}
	if p.PolygonOffset {
		gl.Enable(offsetMode)
		gl.PolygonOffset(p.OffsetFactor, p.OffsetUnits)
	} else {
		gl.Disable(offsetMode)
	}

	switch p.Side {
	case material.FrontSide:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case material.BackSide:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Disable(gl.CULL_FACE)
	}

	if kind == scene.Lines {
		// Widths outside the range raise GL_INVALID_VALUE.
		gl.LineWidth(p.LineWidthIn(r.lineWidths[0], r.lineWidths[1]))
	}
}

func bindBones(loc int32, s *scene.Skeleton) {
	if loc < 0 {
		return
	}
	bones := identityBones
	if s != nil && len(s.Bones) > 0 {
		bones = s.Bones
	}
	if len(bones) > shader.MaxBones {
		bones = bones[:shader.MaxBones]
	}
	gl.UniformMatrix4fv(loc, int32(len(bones)), false, &bones[0][0])
}

var identityBones = []math.Mat4{math.Identity()}

// ReadPixels reads back the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pixels[0]))
	return pixels, w, h
}
