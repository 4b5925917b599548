package acllite

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// ReadFloat32s reads a raw little-endian float32 tensor dump from file.
// The file must contain exactly n values.
func ReadFloat32s(file string, n int) ([]float32, error) {

	raw, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if len(raw) != n*4 {
		return nil, fmt.Errorf("file %s holds %d bytes, want %d", file,
			len(raw), n*4)
	}

	data := make([]float32, n)

	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		data[i] = math.Float32frombits(bits)
	}

	return data, nil
}

// ReadInt32s reads a raw little-endian int32 tensor dump from file.  The
// file must contain exactly n values.
func ReadInt32s(file string, n int) ([]int32, error) {

	raw, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if len(raw) != n*4 {
		return nil, fmt.Errorf("file %s holds %d bytes, want %d", file,
			len(raw), n*4)
	}

	data := make([]int32, n)

	for i := 0; i < n; i++ {
		data[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
	}

	return data, nil
}

// WriteFloat32s writes values as a raw little-endian float32 tensor dump,
// the same format ReadFloat32s consumes
func WriteFloat32s(file string, data []float32) error {

	raw := make([]byte, len(data)*4)

	for i, val := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(val))
	}

	if err := os.WriteFile(file, raw, 0644); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	return nil
}

// WriteInt32s writes values as a raw little-endian int32 tensor dump, the
// same format ReadInt32s consumes
func WriteInt32s(file string, data []int32) error {

	raw := make([]byte, len(data)*4)

	for i, val := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(val))
	}

	if err := os.WriteFile(file, raw, 0644); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	return nil
}
