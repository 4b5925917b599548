package acllite

import "fmt"

// Staging holds reusable host side scratch buffers used to encode float32
// input data to fp16 before upload to the device.  Reusing the scratch
// avoids re-allocating conversion memory on every inference call.
type Staging struct {
	// bufs holds one scratch buffer per model input index
	bufs [][]uint16
}

// NewStaging creates a staging area for a model with the given number of
// input tensors
func NewStaging(numInputs int) *Staging {
	return &Staging{
		bufs: make([][]uint16, numInputs),
	}
}

// EncodeFloat16 converts src into the scratch buffer for the given input
// index and returns it.  The returned slice is only valid until the next
// call for the same index.
func (s *Staging) EncodeFloat16(idx int, src []float32) []uint16 {

	if idx < 0 || idx >= len(s.bufs) {
		// out of range index means the caller bypassed input validation,
		// fall back to a throw away buffer
		return encodeFloat16Slice(make([]uint16, len(src)), src)
	}

	if cap(s.bufs[idx]) < len(src) {
		s.bufs[idx] = make([]uint16, len(src))
	}

	s.bufs[idx] = s.bufs[idx][:len(src)]

	return encodeFloat16Slice(s.bufs[idx], src)
}

// CopyAt copies src into the scratch buffer for the given input index at
// the given element offset, growing the buffer to size elements first.
// Used to pack multiple host arrays into a single model input.
func (s *Staging) CopyAt(idx, offset, size int, src []float32) ([]uint16, error) {

	if idx < 0 || idx >= len(s.bufs) {
		return nil, fmt.Errorf("index %d out of range [0-%d)", idx, len(s.bufs))
	}

	if offset < 0 || offset+len(src) > size {
		return nil, fmt.Errorf("offset %d out of range [0,%d)", offset, size)
	}

	if cap(s.bufs[idx]) < size {
		grown := make([]uint16, size)
		copy(grown, s.bufs[idx])
		s.bufs[idx] = grown
	}

	s.bufs[idx] = s.bufs[idx][:size]

	encodeFloat16Slice(s.bufs[idx][offset:offset+len(src)], src)

	return s.bufs[idx], nil
}

// Clear resets the staging area, dropping all scratch buffers
func (s *Staging) Clear() {
	for i := range s.bufs {
		s.bufs[i] = nil
	}
}

// encodeFloat16Slice encodes src into dst which must be of equal length
func encodeFloat16Slice(dst []uint16, src []float32) []uint16 {

	for i, val := range src {
		dst[i] = EncodeFloat16(val)
	}

	return dst
}
