package material

import (
	gomath "math"

	"github.com/Faultbox/inkreveal/pkg/math"
)

// Hash3 is the lattice hash used by the ink shader:
// fract(sin(dot(p, (127.1, 311.7, 74.7))) * 43758.5453).
func Hash3(x, y, z float64) float64 {
	s := gomath.Sin(x*127.1+y*311.7+z*74.7) * 43758.5453
	return s - gomath.Floor(s)
}

// ValueNoise3 is trilinear value noise over Hash3 with a smooth fade. The
// result is in [0, 1] and equals Hash3 at integer lattice points.
func ValueNoise3(p math.Vec3) float32 {
	x, y, z := float64(p.X), float64(p.Y), float64(p.Z)
	ix, iy, iz := gomath.Floor(x), gomath.Floor(y), gomath.Floor(z)
	fx, fy, fz := x-ix, y-iy, z-iz
	ux, uy, uz := fade(fx), fade(fy), fade(fz)

	x00 := lerp(Hash3(ix, iy, iz), Hash3(ix+1, iy, iz), ux)
	x10 := lerp(Hash3(ix, iy+1, iz), Hash3(ix+1, iy+1, iz), ux)
	x01 := lerp(Hash3(ix, iy, iz+1), Hash3(ix+1, iy, iz+1), ux)
	x11 := lerp(Hash3(ix, iy+1, iz+1), Hash3(ix+1, iy+1, iz+1), ux)
	return float32(lerp(lerp(x00, x10, uy), lerp(x01, x11, uy), uz))
}

func fade(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
