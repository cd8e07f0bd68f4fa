package renderer

// Scanner looks for unfinished rays in row-major order, resuming each scan
// from the first incomplete pixel the previous scan found. Rays never become
// incomplete again within a frame, so pixels before the cursor are not revisited.
type Scanner struct {
	Cursor int // Linear pixel index the next scan starts from
}

// Reset moves the cursor back to the first pixel
func (s *Scanner) Reset() {
	s.Cursor = 0
}

// Scan returns true when every ray from the cursor onward is complete.
// Otherwise the cursor is left on the first incomplete ray.
func (s *Scanner) Scan(buffer *RayBuffer) bool {
	for i := s.Cursor; i < len(buffer.Rays); i++ {
		if !buffer.Rays[i].Complete {
			s.Cursor = i
			return false
		}
	}
	s.Cursor = len(buffer.Rays)
	return true
}

// Position returns the cursor as pixel coordinates in a buffer of the given width
func (s *Scanner) Position(width int) (x, y int) {
	if width <= 0 {
		return 0, 0
	}
	return s.Cursor % width, s.Cursor / width
}
