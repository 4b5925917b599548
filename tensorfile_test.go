package acllite

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadWriteFloat32s(t *testing.T) {

	file := filepath.Join(t.TempDir(), "tensor.bin")

	want := []float32{0, 1.5, -2.25, 3e8}

	if err := WriteFloat32s(file, want); err != nil {
		t.Fatalf("WriteFloat32s failed: %v", err)
	}

	got, err := ReadFloat32s(file, len(want))

	if err != nil {
		t.Fatalf("ReadFloat32s failed: %v", err)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v; want %v", i, got[i], want[i])
		}
	}
}

func TestReadFloat32sSizeMismatch(t *testing.T) {

	file := filepath.Join(t.TempDir(), "tensor.bin")

	if err := WriteFloat32s(file, []float32{1, 2}); err != nil {
		t.Fatalf("WriteFloat32s failed: %v", err)
	}

	if _, err := ReadFloat32s(file, 3); err == nil {
		t.Error("expected error for short file, got nil")
	}

	if _, err := ReadFloat32s(file, 1); err == nil {
		t.Error("expected error for long file, got nil")
	}
}

func TestReadFloat32sMissingFile(t *testing.T) {

	_, err := ReadFloat32s(filepath.Join(t.TempDir(), "missing.bin"), 1)

	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestReadWriteInt32s(t *testing.T) {

	file := filepath.Join(t.TempDir(), "labels.bin")

	want := []int32{0, 20, -1, 1 << 30}

	if err := WriteInt32s(file, want); err != nil {
		t.Fatalf("WriteInt32s failed: %v", err)
	}

	got, err := ReadInt32s(file, len(want))

	if err != nil {
		t.Fatalf("ReadInt32s failed: %v", err)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d; want %d", i, got[i], want[i])
		}
	}
}

func TestReadInt32sLittleEndian(t *testing.T) {

	file := filepath.Join(t.TempDir(), "labels.bin")

	// value 258 = 0x00000102 stored little-endian
	if err := os.WriteFile(file, []byte{0x02, 0x01, 0x00, 0x00}, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := ReadInt32s(file, 1)

	if err != nil {
		t.Fatalf("ReadInt32s failed: %v", err)
	}

	if got[0] != 258 {
		t.Errorf("got %d; want 258", got[0])
	}
}
