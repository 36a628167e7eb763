// Package edges extracts outline segments (boundary and crease edges) from
// triangle meshes.
//
// Triangle edges are matched by quantized endpoint position rather than by
// vertex index, so meshes whose faces do not share vertices (flat-shaded
// exports, skinning-preserving clones) still produce one segment per
// geometric edge.
package edges

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/inkreveal/internal/engine/geometry"
	"github.com/Faultbox/inkreveal/internal/logger"
	"github.com/Faultbox/inkreveal/pkg/math"
)

// Precision is the grid that endpoint positions snap to when matching edges.
const Precision = 1e-4

// degenerateArea is the cross-product length below which a face counts as
// zero-area.
const degenerateArea = 1e-10

// Options controls extraction.
type Options struct {
	// ThresholdAngle in degrees: an edge shared by two faces is kept when the
	// angle between their normals is at least this large.
	ThresholdAngle float64
	// CreaseOffset pushes retained endpoints along the averaged normal of the
	// adjacent faces. Zero leaves positions untouched.
	CreaseOffset float32
}

// DefaultOptions returns a 30 degree threshold with no offset.
func DefaultOptions() Options {
	return Options{ThresholdAngle: 30}
}

// Stats summarises one extraction.
type Stats struct {
	Triangles   int
	Degenerate  int
	Edges       int // distinct geometric edges
	Boundary    int // retained, one adjacent face
	Crease      int // retained, two adjacent faces
	NonManifold int // retained, more than two adjacent faces
}

// Retained returns the number of segments written.
func (s Stats) Retained() int {
	return s.Boundary + s.Crease + s.NonManifold
}

type vertexKey [3]int64

type edgeKey [2]vertexKey

// occurrence is one triangle's use of an edge. lo and hi are the original
// vertex indices matching key[0] and key[1].
type occurrence struct {
	face   int
	lo, hi uint32
}

// Extract returns the boundary and crease segments of mesh.
// It fails with geometry.ErrNoPositions or geometry.ErrNoNormals when the
// mesh lacks required buffers; an empty mesh yields an empty result.
func Extract(mesh *geometry.MeshGeometry, opts Options) (*geometry.LineGeometry, error) {
	lines, _, err := ExtractWithStats(mesh, opts)
	return lines, err
}

// ExtractWithStats is Extract plus a summary of what was found.
func ExtractWithStats(mesh *geometry.MeshGeometry, opts Options) (*geometry.LineGeometry, Stats, error) {
	lines := &geometry.LineGeometry{}
	var stats Stats

	if mesh == nil || (len(mesh.Positions) == 0 && len(mesh.Indices) == 0) {
		return lines, stats, nil
	}
	if len(mesh.Positions) == 0 {
		return nil, stats, geometry.ErrNoPositions
	}
	if len(mesh.Normals) == 0 {
		return nil, stats, geometry.ErrNoNormals
	}
	if err := mesh.Validate(); err != nil {
		return nil, stats, fmt.Errorf("extract edges: %w", err)
	}

	stats.Triangles = mesh.TriangleCount()
	normals := make([]math.Vec3, stats.Triangles)
	groups := make(map[edgeKey][]occurrence)
	var order []edgeKey

	for f := 0; f < stats.Triangles; f++ {
		tri := mesh.Triangle(f)
		a, b, c := mesh.Position(tri[0]), mesh.Position(tri[1]), mesh.Position(tri[2])
		cross := b.Sub(a).Cross(c.Sub(a))
		if cross.Dot(cross) < degenerateArea {
			// Zero-area faces keep a zero normal and take no part in adjacency.
			stats.Degenerate++
			continue
		}
		normals[f] = cross.Normalize()

		for k := 0; k < 3; k++ {
			i, j := tri[k], tri[(k+1)%3]
			ki, kj := quantize(mesh.Position(i)), quantize(mesh.Position(j))
			if ki == kj {
				continue
			}
			if less(kj, ki) {
				ki, kj = kj, ki
				i, j = j, i
			}
			key := edgeKey{ki, kj}
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], occurrence{face: f, lo: i, hi: j})
		}
	}

	stats.Edges = len(order)
	cosThreshold := float32(gomath.Cos(opts.ThresholdAngle * gomath.Pi / 180))

	for _, key := range order {
		occ := groups[key]

		switch {
		case len(occ) == 1:
			stats.Boundary++
		case len(occ) == 2:
			if !sharp(normals[occ[0].face], normals[occ[1].face], cosThreshold) {
				continue
			}
			stats.Crease++
		default:
			if !anyPairSharp(occ, normals, cosThreshold) {
				continue
			}
			stats.NonManifold++
		}

		first := occ[0]
		pa, pb := mesh.Position(first.lo), mesh.Position(first.hi)
		if opts.CreaseOffset != 0 {
			var sum math.Vec3
			for _, o := range occ {
				sum = sum.Add(normals[o.face])
			}
			dir := sum.Normalize()
			pa = pa.Add(dir.Scale(opts.CreaseOffset))
			pb = pb.Add(dir.Scale(opts.CreaseOffset))
		}
		lines.AddSegment(pa, pb)

		if mesh.Skinned() {
			for _, v := range [2]uint32{first.lo, first.hi} {
				lines.SkinIndices = append(lines.SkinIndices,
					mesh.SkinIndices[v*geometry.Influences:(v+1)*geometry.Influences]...)
				lines.SkinWeights = append(lines.SkinWeights,
					mesh.SkinWeights[v*geometry.Influences:(v+1)*geometry.Influences]...)
			}
		}
	}

	logger.Named("edges").Debug("extracted outline",
		zap.Int("triangles", stats.Triangles),
		zap.Int("edges", stats.Edges),
		zap.Int("boundary", stats.Boundary),
		zap.Int("crease", stats.Crease),
		zap.Int("nonManifold", stats.NonManifold),
		zap.Int("degenerate", stats.Degenerate),
	)

	return lines, stats, nil
}

// sharp reports whether two face normals diverge by at least the threshold.
func sharp(a, b math.Vec3, cosThreshold float32) bool {
	return a.Dot(b) <= cosThreshold
}

// anyPairSharp applies the crease test to every pair of faces around a
// non-manifold edge.
func anyPairSharp(occ []occurrence, normals []math.Vec3, cosThreshold float32) bool {
	for i := 0; i < len(occ); i++ {
		for j := i + 1; j < len(occ); j++ {
			if sharp(normals[occ[i].face], normals[occ[j].face], cosThreshold) {
				return true
			}
		}
	}
	return false
}

func quantize(p math.Vec3) vertexKey {
	return vertexKey{snap(p.X), snap(p.Y), snap(p.Z)}
}

func snap(x float32) int64 {
	return int64(gomath.Round(float64(x) / Precision))
}

func less(a, b vertexKey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
