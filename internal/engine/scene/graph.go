// Package scene is an arena of render nodes addressed by integer handles.
// Parent and child links are explicit handle lists, so removing a node frees
// its whole subtree without pointer cycles.
package scene

import (
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/inkreveal/internal/engine/geometry"
	"github.com/Faultbox/inkreveal/internal/engine/material"
	"github.com/Faultbox/inkreveal/internal/logger"
	"github.com/Faultbox/inkreveal/pkg/math"
)

// Handle addresses a node. The zero value is Nil.
type Handle int

// Nil is the absent handle; as a parent it means "top level".
const Nil Handle = 0

// ErrInvalidHandle is returned for handles that are Nil, out of range or
// already removed.
var ErrInvalidHandle = errors.New("scene: invalid node handle")

// Kind is what a node draws.
type Kind int

const (
	Group Kind = iota
	Mesh
	Lines
)

func (k Kind) String() string {
	switch k {
	case Mesh:
		return "mesh"
	case Lines:
		return "lines"
	default:
		return "group"
	}
}

// Transform is a node's local translation, rotation and scale.
type Transform struct {
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
}

// IdentityTransform returns the no-op transform.
func IdentityTransform() Transform {
	return Transform{Rotation: math.QuatIdentity(), Scale: math.Vec3{X: 1, Y: 1, Z: 1}}
}

// Matrix returns the local transform matrix.
func (t Transform) Matrix() math.Mat4 {
	return math.Compose(t.Position, t.Rotation, t.Scale)
}

// Skeleton holds the bone matrices that deform skinned geometry.
type Skeleton struct {
	Bones []math.Mat4
}

// NewSkeleton returns n identity bones.
func NewSkeleton(n int) *Skeleton {
	s := &Skeleton{Bones: make([]math.Mat4, n)}
	for i := range s.Bones {
		s.Bones[i] = math.Identity()
	}
	return s
}

// Deform applies linear blend skinning to one position.
func (s *Skeleton) Deform(p math.Vec3, joints [geometry.Influences]uint16, weights [geometry.Influences]float32) math.Vec3 {
	var out math.Vec3
	for i := range joints {
		if weights[i] == 0 || int(joints[i]) >= len(s.Bones) {
			continue
		}
		out = out.Add(s.Bones[joints[i]].TransformVec3(p).Scale(weights[i]))
	}
	return out
}

// Node is one render node.
type Node struct {
	Name      string
	Kind      Kind
	Transform Transform
	Mesh      *geometry.MeshGeometry
	Lines     *geometry.LineGeometry
	Material  *material.Program
	Skeleton  *Skeleton
	Hidden    bool
}

type slot struct {
	node     Node
	parent   Handle
	children []Handle
	used     bool
}

// Graph owns every node and the resources attached to them.
type Graph struct {
	slots []*slot
	free  []Handle
	count int
	log   *zap.Logger
}

// New returns an empty graph.
func New() *Graph {
	// Slot 0 backs Nil and is never handed out.
	return &Graph{slots: []*slot{{}}, log: logger.Named("scene")}
}

// Len returns the number of live nodes.
func (g *Graph) Len() int { return g.count }

// Valid reports whether h addresses a live node.
func (g *Graph) Valid(h Handle) bool {
	return h > Nil && int(h) < len(g.slots) && g.slots[h].used
}

// Add inserts n under parent (Nil for a top-level node).
func (g *Graph) Add(n Node, parent Handle) (Handle, error) {
	if parent != Nil && !g.Valid(parent) {
		return Nil, ErrInvalidHandle
	}

	var h Handle
	if k := len(g.free); k > 0 {
		h = g.free[k-1]
		g.free = g.free[:k-1]
		*g.slots[h] = slot{}
	} else {
		h = Handle(len(g.slots))
		g.slots = append(g.slots, &slot{})
	}

	s := g.slots[h]
	s.node = n
	s.parent = parent
	s.used = true
	if parent != Nil {
		p := g.slots[parent]
		p.children = append(p.children, h)
	}
	g.count++
	return h, nil
}

// Get returns the node at h, or nil. The pointer stays valid until h is
// removed.
func (g *Graph) Get(h Handle) *Node {
	if !g.Valid(h) {
		return nil
	}
	return &g.slots[h].node
}

// Parent returns h's parent, Nil for top-level or invalid nodes.
func (g *Graph) Parent(h Handle) Handle {
	if !g.Valid(h) {
		return Nil
	}
	return g.slots[h].parent
}

// Children returns a copy of h's child handles.
func (g *Graph) Children(h Handle) []Handle {
	if !g.Valid(h) {
		return nil
	}
	return append([]Handle(nil), g.slots[h].children...)
}

// Roots returns the top-level nodes.
func (g *Graph) Roots() []Handle {
	var roots []Handle
	for i := 1; i < len(g.slots); i++ {
		if s := g.slots[i]; s.used && s.parent == Nil {
			roots = append(roots, Handle(i))
		}
	}
	return roots
}

// Walk visits h and its descendants depth-first, parents before children.
// Returning false from fn skips that node's children.
func (g *Graph) Walk(h Handle, fn func(Handle, *Node) bool) {
	if !g.Valid(h) {
		return
	}
	if !fn(h, &g.slots[h].node) {
		return
	}
	for _, c := range g.Children(h) {
		g.Walk(c, fn)
	}
}

// WorldMatrix composes the transforms from the top level down to h.
func (g *Graph) WorldMatrix(h Handle) math.Mat4 {
	m := math.Identity()
	for g.Valid(h) {
		s := g.slots[h]
		m = s.node.Transform.Matrix().Mul(m)
		h = s.parent
	}
	return m
}

// WorldPosition returns the world-space origin of h.
func (g *Graph) WorldPosition(h Handle) math.Vec3 {
	return g.WorldMatrix(h).Translation()
}

// Anchor returns a reveal anchor tracking h's world position.
func (g *Graph) Anchor(h Handle) NodeAnchor {
	return NodeAnchor{graph: g, handle: h}
}

// NodeAnchor reports a node's current world position.
type NodeAnchor struct {
	graph  *Graph
	handle Handle
}

// WorldPosition returns the node's world-space origin.
func (a NodeAnchor) WorldPosition() math.Vec3 {
	return a.graph.WorldPosition(a.handle)
}

// Remove deletes h and its subtree, disposing the line geometry, mesh GPU
// buffers and material of every removed node. Release errors are combined.
func (g *Graph) Remove(h Handle) error {
	if !g.Valid(h) {
		return ErrInvalidHandle
	}

	if p := g.slots[h].parent; p != Nil {
		ps := g.slots[p]
		for i, c := range ps.children {
			if c == h {
				ps.children = append(ps.children[:i], ps.children[i+1:]...)
				break
			}
		}
	}

	var err error
	removed := 0
	var free func(Handle)
	free = func(x Handle) {
		s := g.slots[x]
		for _, c := range s.children {
			free(c)
		}
		err = multierr.Append(err, release(&s.node))
		*s = slot{}
		g.free = append(g.free, x)
		g.count--
		removed++
	}
	free(h)

	g.log.Debug("removed subtree", zap.Int("handle", int(h)), zap.Int("nodes", removed))
	return err
}

func release(n *Node) error {
	var err error
	if n.Lines != nil {
		err = multierr.Append(err, n.Lines.Dispose())
	}
	if n.Mesh != nil {
		err = multierr.Append(err, n.Mesh.Dispose())
	}
	if n.Material != nil {
		n.Material.Dispose()
	}
	return err
}
