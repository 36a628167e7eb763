package scene

import (
	"sort"

	"github.com/Faultbox/inkreveal/pkg/math"
)

// Item is one drawable node with its resolved world matrix.
type Item struct {
	Handle Handle
	Node   *Node
	World  math.Mat4
}

// Queue is a frame's draw list split by blending.
type Queue struct {
	Opaque      []Item
	Transparent []Item
}

// Len returns the total number of items.
func (q Queue) Len() int { return len(q.Opaque) + len(q.Transparent) }

// Collect gathers every drawable node. Hidden nodes are skipped with their
// subtrees, as are nodes without geometry, without a material, or whose
// program cannot produce pixels. Transparent items are ordered back to front
// from eye; items at equal depth keep parent-before-child order so outlines
// land on top of their surface.
func (g *Graph) Collect(eye math.Vec3) Queue {
	var q Queue
	for _, root := range g.Roots() {
		g.collect(root, math.Identity(), &q)
	}

	dist := make(map[Handle]float32, len(q.Transparent))
	for _, it := range q.Transparent {
		dist[it.Handle] = it.World.Translation().Distance(eye)
	}
	sort.SliceStable(q.Transparent, func(i, j int) bool {
		return dist[q.Transparent[i].Handle] > dist[q.Transparent[j].Handle]
	})
	return q
}

func (g *Graph) collect(h Handle, parent math.Mat4, q *Queue) {
	s := g.slots[h]
	if s.node.Hidden {
		return
	}
	world := parent.Mul(s.node.Transform.Matrix())

	n := &s.node
	if drawable(n) {
		it := Item{Handle: h, Node: n, World: world}
		if n.Material.Transparent {
			q.Transparent = append(q.Transparent, it)
		} else {
			q.Opaque = append(q.Opaque, it)
		}
	}
	for _, c := range s.children {
		g.collect(c, world, q)
	}
}

func drawable(n *Node) bool {
	if n.Material == nil || !n.Material.Visible() {
		return false
	}
	switch n.Kind {
	case Mesh:
		return n.Mesh != nil && n.Mesh.VertexCount() > 0
	case Lines:
		return n.Lines != nil && n.Lines.SegmentCount() > 0
	default:
		return false
	}
}
