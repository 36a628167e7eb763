package geometry

import (
	gomath "math"

	"github.com/Faultbox/inkreveal/pkg/math"
)

// boxFaces lists each face as (normal, u, v) with u x v == normal, so corners
// walked -u-v, +u-v, +u+v, -u+v wind counter-clockwise from outside.
var boxFaces = [6][3]math.Vec3{
	{{X: 1}, {Y: 1}, {Z: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
	{{Y: 1}, {Z: 1}, {X: 1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {Y: 1}, {X: 1}},
}

// Box builds an axis-aligned cube of the given edge length centred on the
// origin, with flat per-face normals. Each face is two triangles, or four
// (a fan around the face centre) when fan is set.
func Box(size float32, fan bool) *MeshGeometry {
	h := size / 2
	m := &MeshGeometry{Indices: []uint32{}}

	for _, f := range boxFaces {
		n, u, v := f[0], f[1].Scale(h), f[2].Scale(h)
		c := n.Scale(h)
		base := uint32(m.VertexCount())

		corners := [4]math.Vec3{
			c.Sub(u).Sub(v),
			c.Add(u).Sub(v),
			c.Add(u).Add(v),
			c.Sub(u).Add(v),
		}
		uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
		for i, p := range corners {
			m.addVertex(p, n, uvs[i])
		}

		if fan {
			m.addVertex(c, n, [2]float32{0.5, 0.5})
			centre := base + 4
			for i := uint32(0); i < 4; i++ {
				m.Indices = append(m.Indices, base+i, base+(i+1)%4, centre)
			}
		} else {
			m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
		}
	}
	return m
}

// IsolatedTriangles builds n non-indexed triangles that share no edges.
func IsolatedTriangles(n int) *MeshGeometry {
	m := &MeshGeometry{}
	for i := 0; i < n; i++ {
		off := float32(i) * 3
		normal := math.Vec3{Z: 1}
		m.addVertex(math.Vec3{X: off}, normal, [2]float32{0, 0})
		m.addVertex(math.Vec3{X: off + 1}, normal, [2]float32{1, 0})
		m.addVertex(math.Vec3{X: off, Y: 1}, normal, [2]float32{0, 1})
	}
	return m
}

// Fold builds two unit quads hinged on the Z axis. The first lies in the
// XZ plane facing +Y; the second is the first rotated by angleDeg about Z.
// An angle of 0 is a flat strip, 90 a right-angle fold.
func Fold(angleDeg float64) *MeshGeometry {
	rad := angleDeg * gomath.Pi / 180
	dir := math.Vec3{X: float32(-gomath.Cos(rad)), Y: float32(gomath.Sin(rad))}

	m := &MeshGeometry{Indices: []uint32{}}

	// Quad A: x in [0,1].
	nA := math.Vec3{Y: 1}
	m.addVertex(math.Vec3{Z: -0.5}, nA, [2]float32{0, 0})
	m.addVertex(math.Vec3{Z: 0.5}, nA, [2]float32{0, 1})
	m.addVertex(math.Vec3{X: 1, Z: 0.5}, nA, [2]float32{1, 1})
	m.addVertex(math.Vec3{X: 1, Z: -0.5}, nA, [2]float32{1, 0})
	m.Indices = append(m.Indices, 0, 1, 2, 0, 2, 3)

	// Quad B: from the hinge along dir.
	far := dir
	nB := far.Cross(math.Vec3{Z: 1}).Normalize()
	m.addVertex(math.Vec3{Z: -0.5}, nB, [2]float32{0, 0})
	m.addVertex(far.Add(math.Vec3{Z: -0.5}), nB, [2]float32{1, 0})
	m.addVertex(far.Add(math.Vec3{Z: 0.5}), nB, [2]float32{1, 1})
	m.addVertex(math.Vec3{Z: 0.5}, nB, [2]float32{0, 1})
	m.Indices = append(m.Indices, 4, 5, 6, 4, 6, 7)

	return m
}

// lProfile is an L-shaped outline, counter-clockwise seen from +Z. (0, 1)
// splits the long left side so the caps and sides share every edge.
var lProfile = [7][2]float32{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}, {0, 1}}

// LBlock builds the L profile extruded along Z over [-depth/2, depth/2].
// The inner corner at (1, 1) is a concave 90 degree edge.
func LBlock(depth float32) *MeshGeometry {
	h := depth / 2
	m := &MeshGeometry{Indices: []uint32{}}

	for i := range lProfile {
		p0, p1 := lProfile[i], lProfile[(i+1)%len(lProfile)]
		n := math.Vec3{X: p1[1] - p0[1], Y: -(p1[0] - p0[0])}.Normalize()
		base := uint32(m.VertexCount())
		m.addVertex(math.Vec3{X: p0[0], Y: p0[1], Z: -h}, n, [2]float32{0, 0})
		m.addVertex(math.Vec3{X: p1[0], Y: p1[1], Z: -h}, n, [2]float32{1, 0})
		m.addVertex(math.Vec3{X: p1[0], Y: p1[1], Z: h}, n, [2]float32{1, 1})
		m.addVertex(math.Vec3{X: p0[0], Y: p0[1], Z: h}, n, [2]float32{0, 1})
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}

	capTris := [][3]uint32{{0, 1, 2}, {0, 2, 3}, {0, 3, 6}, {6, 3, 4}, {6, 4, 5}}

	for _, side := range []float32{h, -h} {
		n := math.Vec3{Z: 1}
		if side < 0 {
			n = math.Vec3{Z: -1}
		}
		base := uint32(m.VertexCount())
		for _, p := range lProfile {
			m.addVertex(math.Vec3{X: p[0], Y: p[1], Z: side}, n, [2]float32{p[0] / 2, p[1] / 2})
		}
		for _, t := range capTris {
			if side > 0 {
				m.Indices = append(m.Indices, base+t[0], base+t[1], base+t[2])
			} else {
				m.Indices = append(m.Indices, base+t[0], base+t[2], base+t[1])
			}
		}
	}
	return m
}

// WithLinearSkin assigns two-joint skin weights blending from joint 0 at
// minY to joint 1 at maxY. The mesh is modified in place and returned.
func WithLinearSkin(m *MeshGeometry, minY, maxY float32) *MeshGeometry {
	n := m.VertexCount()
	m.SkinIndices = make([]uint16, n*Influences)
	m.SkinWeights = make([]float32, n*Influences)
	for v := 0; v < n; v++ {
		t := math.Clamp01((m.Positions[v*3+1] - minY) / (maxY - minY))
		m.SkinIndices[v*Influences] = 0
		m.SkinIndices[v*Influences+1] = 1
		m.SkinWeights[v*Influences] = 1 - t
		m.SkinWeights[v*Influences+1] = t
	}
	return m
}

func (m *MeshGeometry) addVertex(p, n math.Vec3, uv [2]float32) {
	m.Positions = append(m.Positions, p.X, p.Y, p.Z)
	m.Normals = append(m.Normals, n.X, n.Y, n.Z)
	m.UVs = append(m.UVs, uv[0], uv[1])
}
