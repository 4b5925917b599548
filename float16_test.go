package acllite

import (
	"math"
	"testing"

	"github.com/x448/float16"
)

func TestEncodeDecodeFloat16(t *testing.T) {

	values := []float32{0, 1, -1, 0.5, -2, 65504, 6.103515625e-05}

	for _, val := range values {
		if got := DecodeFloat16(EncodeFloat16(val)); got != val {
			t.Errorf("round trip of %v = %v", val, got)
		}
	}
}

func TestDecodeFloat16MatchesLibrary(t *testing.T) {

	// spot check the lookup table against direct conversion
	for _, bits := range []uint16{0x0000, 0x3c00, 0xc000, 0x7bff, 0x0001, 0x8000} {
		want := float16.Frombits(bits).Float32()

		if got := DecodeFloat16(bits); got != want {
			t.Errorf("DecodeFloat16(%#04x) = %v; want %v", bits, got, want)
		}
	}
}

func TestConvertFloat16Buffer(t *testing.T) {

	buf := []uint16{0x3c00, 0xc000, 0x0000}

	got := convertFloat16BufferToFloat32(buf)

	want := []float32{1, -2, 0}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v; want %v", i, got[i], want[i])
		}
	}
}

func TestDecodeFloat16NaN(t *testing.T) {

	if !math.IsNaN(float64(DecodeFloat16(0x7e00))) {
		t.Error("expected NaN for quiet NaN bit pattern")
	}
}
