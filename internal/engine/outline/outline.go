// Package outline mounts the stylized look onto a scene subtree: a toon
// program per mesh, an ink line child built from the mesh's feature edges,
// and one reveal choreographer driving all of them.
package outline

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/inkreveal/internal/engine/edges"
	"github.com/Faultbox/inkreveal/internal/engine/geometry"
	"github.com/Faultbox/inkreveal/internal/engine/material"
	"github.com/Faultbox/inkreveal/internal/engine/reveal"
	"github.com/Faultbox/inkreveal/internal/engine/scene"
	"github.com/Faultbox/inkreveal/internal/engine/theme"
	"github.com/Faultbox/inkreveal/internal/logger"
)

// LineSuffix is appended to a mesh node's name to name its outline child.
const LineSuffix = "/outline"

// Env carries the shared context programs and choreographers are built
// against.
type Env struct {
	Bus    *theme.Bus
	Viewer reveal.Viewer
}

// Options configures a mount. Ink.Seed is the base seed; each mesh offsets
// it by the hash of its Identity.
type Options struct {
	Edges  edges.Options
	Toon   material.ToonOptions
	Ink    material.InkOptions
	Reveal reveal.Config
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		Edges:  edges.DefaultOptions(),
		Toon:   material.DefaultToonOptions(),
		Ink:    material.DefaultInkOptions(),
		Reveal: reveal.DefaultConfig(),
	}
}

type binding struct {
	mesh         scene.Handle
	lines        scene.Handle
	ink          *material.Program
	ownsMaterial bool
	segments     int
}

// Entity is a mounted subtree.
type Entity struct {
	graph    *scene.Graph
	root     scene.Handle
	env      Env
	opts     Options
	choreo   *reveal.Choreographer
	bindings []*binding
	mounted  bool
	log      *zap.Logger
}

// Mount decorates every mesh node under root. A mesh that fails validation
// aborts the mount; everything created up to that point is freed and the
// graph is left as it was.
func Mount(g *scene.Graph, root scene.Handle, env Env, opts Options) (*Entity, error) {
	if !g.Valid(root) {
		return nil, fmt.Errorf("mount outline: %w", scene.ErrInvalidHandle)
	}

	e := &Entity{
		graph:  g,
		root:   root,
		env:    env,
		opts:   opts,
		choreo: reveal.New(opts.Reveal, env.Viewer, g.Anchor(root)),
		log:    logger.Named("outline"),
	}

	var meshes []scene.Handle
	g.Walk(root, func(h scene.Handle, n *scene.Node) bool {
		if n.Kind == scene.Mesh && n.Mesh != nil {
			meshes = append(meshes, h)
		}
		return true
	})

	for _, h := range meshes {
		if err := e.decorate(h); err != nil {
			err = fmt.Errorf("mount outline %q: %w", g.Get(h).Name, err)
			return nil, multierr.Append(err, e.teardown())
		}
	}
	e.mounted = true

	e.log.Info("mounted entity",
		zap.String("root", g.Get(root).Name),
		zap.Int("meshes", len(e.bindings)),
		zap.Int("edges", e.Segments()))
	return e, nil
}

func (e *Entity) decorate(h scene.Handle) error {
	node := e.graph.Get(h)
	if err := node.Mesh.Validate(); err != nil {
		return err
	}
	lines, err := edges.Extract(node.Mesh, e.opts.Edges)
	if err != nil {
		return err
	}

	b := &binding{mesh: h}
	if node.Material == nil {
		topts := e.opts.Toon
		topts.Skinned = node.Mesh.Skinned()
		node.Material = material.NewToon(node.Name, e.env.Bus, topts)
		b.ownsMaterial = true
	}
	e.bindings = append(e.bindings, b)
	e.choreo.Connect(node.Material)

	if err := e.attachLines(b, lines); err != nil {
		return err
	}
	e.choreo.Connect(b.ink)
	return nil
}

func (e *Entity) attachLines(b *binding, lines *geometry.LineGeometry) error {
	node := e.graph.Get(b.mesh)

	iopts := e.opts.Ink
	iopts.Seed = material.SeedFor(e.opts.Ink.Seed, e.Identity(b.mesh))
	iopts.Skinned = lines.Skinned()
	name := node.Name + LineSuffix
	ink := material.NewInk(name, e.env.Bus, iopts)

	h, err := e.graph.Add(scene.Node{
		Name:      name,
		Kind:      scene.Lines,
		Transform: scene.IdentityTransform(),
		Lines:     lines,
		Material:  ink,
		Skeleton:  node.Skeleton,
	}, b.mesh)
	if err != nil {
		ink.Dispose()
		return err
	}
	b.lines = h
	b.ink = ink
	b.segments = lines.SegmentCount()
	return nil
}

// Identity names h by its path from the mount root, e.g. "ship/hull/deck".
// A node sharing its name with earlier siblings gets a "#k" suffix, so
// duplicate names still seed distinct gap patterns.
func (e *Entity) Identity(h scene.Handle) string {
	var parts []string
	for {
		part := e.graph.Get(h).Name
		if h == e.root {
			parts = append(parts, part)
			break
		}
		if k := e.twinIndex(h); k > 0 {
			part = fmt.Sprintf("%s#%d", part, k)
		}
		parts = append(parts, part)
		h = e.graph.Parent(h)
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

// twinIndex counts the siblings before h that carry the same name.
func (e *Entity) twinIndex(h scene.Handle) int {
	name := e.graph.Get(h).Name
	k := 0
	for _, s := range e.graph.Children(e.graph.Parent(h)) {
		if s == h {
			break
		}
		if e.graph.Get(s).Name == name {
			k++
		}
	}
	return k
}

// Update advances the reveal by dt seconds.
func (e *Entity) Update(dt float32) {
	if e.mounted {
		e.choreo.Update(dt)
	}
}

// Reveal returns the entity's choreographer.
func (e *Entity) Reveal() *reveal.Choreographer { return e.choreo }

// Replay restarts the reveal.
func (e *Entity) Replay() {
	if e.mounted {
		e.choreo.Replay()
	}
}

// Root returns the mounted subtree's root.
func (e *Entity) Root() scene.Handle { return e.root }

// Mounted reports whether Unmount has not yet run.
func (e *Entity) Mounted() bool { return e.mounted }

// Segments returns the total outline segment count.
func (e *Entity) Segments() int {
	n := 0
	for _, b := range e.bindings {
		n += b.segments
	}
	return n
}

// LineNodes returns the outline child of every decorated mesh.
func (e *Entity) LineNodes() []scene.Handle {
	out := make([]scene.Handle, 0, len(e.bindings))
	for _, b := range e.bindings {
		if b.lines != scene.Nil {
			out = append(out, b.lines)
		}
	}
	return out
}

// Rebuild re-extracts every outline with new edge options. Every mesh is
// extracted before anything is freed, so an extraction error leaves the old
// outlines in place. Old line nodes are then freed; the new ink programs join
// the reveal at its current progress.
func (e *Entity) Rebuild(opts edges.Options) error {
	if !e.mounted {
		return nil
	}

	fresh := make([]*geometry.LineGeometry, len(e.bindings))
	for i, b := range e.bindings {
		node := e.graph.Get(b.mesh)
		lines, err := edges.Extract(node.Mesh, opts)
		if err != nil {
			return fmt.Errorf("rebuild outline %q: %w", node.Name, err)
		}
		fresh[i] = lines
	}

	var err error
	for _, b := range e.bindings {
		err = multierr.Append(err, e.dropLines(b))
	}

	e.opts.Edges = opts
	for i, b := range e.bindings {
		if aerr := e.attachLines(b, fresh[i]); aerr != nil {
			err = multierr.Append(err, aerr)
			continue
		}
		e.choreo.Adopt(b.ink)
	}
	if err != nil {
		return fmt.Errorf("rebuild outline: %w", err)
	}

	e.log.Info("rebuilt outline",
		zap.Float64("thresholdAngle", opts.ThresholdAngle),
		zap.Float32("creaseOffset", opts.CreaseOffset),
		zap.Int("edges", e.Segments()))
	return nil
}

// Unmount frees every line node, disposes the toon programs the mount
// created and detaches everything from the choreographer. It is safe to
// call twice.
func (e *Entity) Unmount() error {
	if !e.mounted {
		return nil
	}
	e.mounted = false
	err := e.teardown()
	e.log.Info("unmounted entity", zap.Int("meshes", len(e.bindings)))
	return err
}

func (e *Entity) teardown() error {
	var err error
	for _, b := range e.bindings {
		err = multierr.Append(err, e.dropLines(b))

		node := e.graph.Get(b.mesh)
		if node == nil || node.Material == nil {
			continue
		}
		e.choreo.Disconnect(node.Material)
		if b.ownsMaterial {
			node.Material.Dispose()
			node.Material = nil
		}
	}
	return err
}

func (e *Entity) dropLines(b *binding) error {
	if b.lines == scene.Nil {
		return nil
	}
	if b.ink != nil {
		e.choreo.Disconnect(b.ink)
	}
	h := b.lines
	b.lines, b.ink, b.segments = scene.Nil, nil, 0
	if !e.graph.Valid(h) {
		return nil
	}
	return e.graph.Remove(h)
}
