package acllite

import "github.com/x448/float16"

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16 := float16.Frombits(uint16(i))
		f16LookupTable[i] = f16.Float32()
	}
}

// convertFloat16BufferToFloat32 converts a float16 buffer to float32 as Go
// has no support for FP16
func convertFloat16BufferToFloat32(float16Buf []uint16) []float32 {
	float32Buf := make([]float32, len(float16Buf))

	for i, val := range float16Buf {
		float32Buf[i] = f16LookupTable[val]
	}

	return float32Buf
}

// EncodeFloat16 converts a float32 value to its fp16 bit pattern using
// round to nearest even
func EncodeFloat16(val float32) uint16 {
	return float16.Fromfloat32(val).Bits()
}

// DecodeFloat16 converts an fp16 bit pattern to float32
func DecodeFloat16(bits uint16) float32 {
	return f16LookupTable[bits]
}
