package math

// Plane is ax + by + cz + d = 0 with (a, b, c) pointing into the frustum.
type Plane struct {
	Normal Vec3
	D      float32
}

// Distance returns the signed distance of p from the plane (scaled by the
// normal's length when the plane is not normalized).
func (p Plane) Distance(v Vec3) float32 {
	return p.Normal.Dot(v) + p.D
}

// Frustum is the six clip planes of a view-projection matrix:
// left, right, bottom, top, near, far.
type Frustum [6]Plane

// FrustumFromMatrix extracts the clip planes of a combined
// projection * view matrix (Gribb/Hartmann).
func FrustumFromMatrix(m Mat4) Frustum {
	row := func(i int) Vec4 {
		return Vec4{m[i], m[4+i], m[8+i], m[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	plane := func(a Vec4, b Vec4, sign float32) Plane {
		p := Plane{
			Normal: Vec3{a[0] + sign*b[0], a[1] + sign*b[1], a[2] + sign*b[2]},
			D:      a[3] + sign*b[3],
		}
		if l := p.Normal.Length(); l > 0 {
			p.Normal = p.Normal.Scale(1 / l)
			p.D /= l
		}
		return p
	}

	return Frustum{
		plane(r3, r0, 1),
		plane(r3, r0, -1),
		plane(r3, r1, 1),
		plane(r3, r1, -1),
		plane(r3, r2, 1),
		plane(r3, r2, -1),
	}
}

// ContainsPoint reports whether p lies inside (or on) every plane.
func (f Frustum) ContainsPoint(p Vec3) bool {
	for _, plane := range f {
		if plane.Distance(p) < 0 {
			return false
		}
	}
	return true
}
