package geometry

// Releaser frees a GPU-side resource (vertex arrays, buffers).
type Releaser interface {
	Release() error
}

// gpuSlot tracks the single GPU resource attached to a geometry buffer.
type gpuSlot struct {
	res      Releaser
	disposed bool
}

func (s *gpuSlot) get() Releaser {
	return s.res
}

func (s *gpuSlot) attach(r Releaser) {
	s.res = r
	s.disposed = false
}

func (s *gpuSlot) release() error {
	if s.disposed {
		return nil
	}
	s.disposed = true
	res := s.res
	s.res = nil
	if res == nil {
		return nil
	}
	return res.Release()
}
