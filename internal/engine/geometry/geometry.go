// Package geometry holds the CPU-side triangle and line buffers consumed by
// the outline extractor and the renderer.
package geometry

import (
	"errors"
	"fmt"

	"github.com/Faultbox/inkreveal/pkg/math"
)

// Influences is the number of skin joints that may affect one vertex.
const Influences = 4

// Precondition failures reported by Validate and by the outline extractor.
var (
	ErrNoPositions  = errors.New("geometry: mesh has no position buffer")
	ErrNoNormals    = errors.New("geometry: mesh has no normal buffer")
	ErrIndexCount   = errors.New("geometry: index count is not a multiple of 3")
	ErrSkinMismatch = errors.New("geometry: skin buffers do not match vertex count")
)

// MeshGeometry is a triangle soup with optional normals, texture coordinates,
// skin data and index buffer. Positions and Normals have stride 3, UVs stride
// 2, SkinIndices and SkinWeights stride Influences.
type MeshGeometry struct {
	Positions   []float32
	Normals     []float32
	UVs         []float32
	SkinIndices []uint16
	SkinWeights []float32
	Indices     []uint32

	gpu gpuSlot
}

// VertexCount returns the number of vertices in the position buffer.
func (m *MeshGeometry) VertexCount() int {
	return len(m.Positions) / 3
}

// Indexed reports whether the mesh carries an index buffer.
func (m *MeshGeometry) Indexed() bool {
	return m.Indices != nil
}

// Skinned reports whether the mesh carries skin buffers.
func (m *MeshGeometry) Skinned() bool {
	return len(m.SkinIndices) > 0 && len(m.SkinWeights) > 0
}

// TriangleCount returns the number of triangles.
func (m *MeshGeometry) TriangleCount() int {
	if m.Indexed() {
		return len(m.Indices) / 3
	}
	return m.VertexCount() / 3
}

// Triangle returns the vertex indices of triangle i in winding order.
func (m *MeshGeometry) Triangle(i int) [3]uint32 {
	if m.Indexed() {
		return [3]uint32{m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]}
	}
	base := uint32(i * 3)
	return [3]uint32{base, base + 1, base + 2}
}

// Position returns vertex v's position.
func (m *MeshGeometry) Position(v uint32) math.Vec3 {
	return math.Vec3{X: m.Positions[v*3], Y: m.Positions[v*3+1], Z: m.Positions[v*3+2]}
}

// Validate checks the buffer invariants. Normals are not required here; the
// outline extractor checks for them separately.
func (m *MeshGeometry) Validate() error {
	if len(m.Positions)%3 != 0 {
		return fmt.Errorf("geometry: position buffer length %d is not a multiple of 3", len(m.Positions))
	}
	n := m.VertexCount()
	if m.Normals != nil && len(m.Normals) != n*3 {
		return fmt.Errorf("geometry: normal buffer has %d floats, want %d", len(m.Normals), n*3)
	}
	if m.UVs != nil && len(m.UVs) != n*2 {
		return fmt.Errorf("geometry: uv buffer has %d floats, want %d", len(m.UVs), n*2)
	}
	if m.Indexed() {
		if len(m.Indices)%3 != 0 {
			return ErrIndexCount
		}
		for _, idx := range m.Indices {
			if int(idx) >= n {
				return fmt.Errorf("geometry: index %d out of range (%d vertices)", idx, n)
			}
		}
	} else if n%3 != 0 {
		return fmt.Errorf("geometry: non-indexed vertex count %d: %w", n, ErrIndexCount)
	}
	if m.SkinIndices != nil || m.SkinWeights != nil {
		if len(m.SkinIndices) != n*Influences || len(m.SkinWeights) != n*Influences {
			return fmt.Errorf("%w: %d indices, %d weights for %d vertices",
				ErrSkinMismatch, len(m.SkinIndices), len(m.SkinWeights), n)
		}
	}
	return nil
}

// Clone returns a deep copy without any GPU attachment.
func (m *MeshGeometry) Clone() *MeshGeometry {
	return &MeshGeometry{
		Positions:   cloneSlice(m.Positions),
		Normals:     cloneSlice(m.Normals),
		UVs:         cloneSlice(m.UVs),
		SkinIndices: cloneSlice(m.SkinIndices),
		SkinWeights: cloneSlice(m.SkinWeights),
		Indices:     cloneSlice(m.Indices),
	}
}

// ToNonIndexed expands the mesh so every triangle corner owns its vertex.
// Shared positions end up at different vertex indices, which is what
// skinning-preserving clones produce.
func (m *MeshGeometry) ToNonIndexed() *MeshGeometry {
	if !m.Indexed() {
		return m.Clone()
	}

	out := &MeshGeometry{}
	for _, idx := range m.Indices {
		out.Positions = append(out.Positions, m.Positions[idx*3:idx*3+3]...)
		if m.Normals != nil {
			out.Normals = append(out.Normals, m.Normals[idx*3:idx*3+3]...)
		}
		if m.UVs != nil {
			out.UVs = append(out.UVs, m.UVs[idx*2:idx*2+2]...)
		}
		if m.Skinned() {
			out.SkinIndices = append(out.SkinIndices, m.SkinIndices[idx*Influences:(idx+1)*Influences]...)
			out.SkinWeights = append(out.SkinWeights, m.SkinWeights[idx*Influences:(idx+1)*Influences]...)
		}
	}
	return out
}

// ComputeFlatNormals fills Normals with each vertex's face normal. The mesh
// is expanded to non-indexed form first so faces do not share normals.
func (m *MeshGeometry) ComputeFlatNormals() *MeshGeometry {
	out := m.ToNonIndexed()
	out.Normals = make([]float32, len(out.Positions))
	for t := 0; t < out.TriangleCount(); t++ {
		tri := out.Triangle(t)
		a, b, c := out.Position(tri[0]), out.Position(tri[1]), out.Position(tri[2])
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		for _, v := range tri {
			out.Normals[v*3], out.Normals[v*3+1], out.Normals[v*3+2] = n.X, n.Y, n.Z
		}
	}
	return out
}

// GPU returns the renderer's resource for this mesh, if uploaded.
func (m *MeshGeometry) GPU() Releaser { return m.gpu.get() }

// Attach records the renderer's resource for this mesh.
func (m *MeshGeometry) Attach(r Releaser) { m.gpu.attach(r) }

// Dispose frees the GPU resource. Calling it again is a no-op.
func (m *MeshGeometry) Dispose() error { return m.gpu.release() }

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
