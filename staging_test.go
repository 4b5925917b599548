package acllite

import (
	"testing"
)

func TestStagingEncodeFloat16(t *testing.T) {

	s := NewStaging(2)

	enc := s.EncodeFloat16(0, []float32{0, 1, -2})

	if len(enc) != 3 {
		t.Fatalf("len(enc) = %d; want 3", len(enc))
	}

	// fp16 bit patterns for 0, 1 and -2
	want := []uint16{0x0000, 0x3c00, 0xc000}

	for i, bits := range want {
		if enc[i] != bits {
			t.Errorf("enc[%d] = %#04x; want %#04x", i, enc[i], bits)
		}
	}
}

func TestStagingReusesBuffer(t *testing.T) {

	s := NewStaging(1)

	first := s.EncodeFloat16(0, []float32{1, 2, 3, 4})
	second := s.EncodeFloat16(0, []float32{5, 6})

	if len(second) != 2 {
		t.Fatalf("len(second) = %d; want 2", len(second))
	}

	// second encode must reuse the first buffer's backing array
	if &first[0] != &second[0] {
		t.Error("scratch buffer was reallocated for a smaller encode")
	}
}

func TestStagingGrowsBuffer(t *testing.T) {

	s := NewStaging(1)

	s.EncodeFloat16(0, []float32{1})
	grown := s.EncodeFloat16(0, []float32{1, 2, 3})

	if len(grown) != 3 {
		t.Fatalf("len(grown) = %d; want 3", len(grown))
	}
}

func TestStagingOutOfRangeIndex(t *testing.T) {

	s := NewStaging(1)

	// out of range index still encodes, into a throw away buffer
	enc := s.EncodeFloat16(5, []float32{1})

	if len(enc) != 1 || enc[0] != 0x3c00 {
		t.Errorf("encode via throw away buffer failed, got %v", enc)
	}
}

func TestStagingCopyAt(t *testing.T) {

	s := NewStaging(1)

	buf, err := s.CopyAt(0, 2, 4, []float32{1, 1})

	if err != nil {
		t.Fatalf("CopyAt failed: %v", err)
	}

	if len(buf) != 4 {
		t.Fatalf("len(buf) = %d; want 4", len(buf))
	}

	if buf[0] != 0 || buf[1] != 0 {
		t.Error("elements before offset were overwritten")
	}

	if buf[2] != 0x3c00 || buf[3] != 0x3c00 {
		t.Errorf("elements at offset not encoded, got %#04x %#04x", buf[2], buf[3])
	}
}

func TestStagingCopyAtBounds(t *testing.T) {

	s := NewStaging(1)

	if _, err := s.CopyAt(2, 0, 4, []float32{1}); err == nil {
		t.Error("expected error for index out of range, got nil")
	}

	if _, err := s.CopyAt(0, 3, 4, []float32{1, 1}); err == nil {
		t.Error("expected error for overflowing copy, got nil")
	}

	if _, err := s.CopyAt(0, -1, 4, []float32{1}); err == nil {
		t.Error("expected error for negative offset, got nil")
	}
}

func TestStagingClear(t *testing.T) {

	s := NewStaging(1)

	s.EncodeFloat16(0, []float32{1, 2, 3})
	s.Clear()

	if s.bufs[0] != nil {
		t.Error("Clear did not drop scratch buffer")
	}
}
