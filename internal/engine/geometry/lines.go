package geometry

import "github.com/Faultbox/inkreveal/pkg/math"

// LineGeometry is a buffer of disjoint two-point segments (6 floats each).
// When the source mesh was skinned, SkinIndices/SkinWeights carry one
// Influences-wide quadruple per segment endpoint.
type LineGeometry struct {
	Positions   []float32
	SkinIndices []uint16
	SkinWeights []float32

	gpu gpuSlot
}

// SegmentCount returns the number of segments.
func (l *LineGeometry) SegmentCount() int {
	return len(l.Positions) / 6
}

// Skinned reports whether the segments carry skin data.
func (l *LineGeometry) Skinned() bool {
	return len(l.SkinIndices) > 0
}

// Segment returns the endpoints of segment i.
func (l *LineGeometry) Segment(i int) (a, b math.Vec3) {
	p := l.Positions[i*6 : i*6+6]
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}, math.Vec3{X: p[3], Y: p[4], Z: p[5]}
}

// AddSegment appends a segment.
func (l *LineGeometry) AddSegment(a, b math.Vec3) {
	l.Positions = append(l.Positions, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
}

// TotalLength returns the summed length of all segments.
func (l *LineGeometry) TotalLength() float32 {
	var total float32
	for i := 0; i < l.SegmentCount(); i++ {
		a, b := l.Segment(i)
		total += a.Distance(b)
	}
	return total
}

// GPU returns the renderer's resource for this buffer, if uploaded.
func (l *LineGeometry) GPU() Releaser { return l.gpu.get() }

// Attach records the renderer's resource for this buffer.
func (l *LineGeometry) Attach(r Releaser) { l.gpu.attach(r) }

// Dispose frees the GPU resource. Calling it again is a no-op.
func (l *LineGeometry) Dispose() error { return l.gpu.release() }

// Disposed reports whether Dispose has run.
func (l *LineGeometry) Disposed() bool { return l.gpu.disposed }
