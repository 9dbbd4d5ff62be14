package tflite

import "github.com/x448/float16"

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table as some delegates emit FP16 outputs
	for i := range f16LookupTable {
		f16LookupTable[i] = float16.Frombits(uint16(i)).Float32()
	}
}

// float16ToFloat32 converts a buffer of IEEE 754 half precision bit patterns
// to float32 as Go has no native FP16 type
func float16ToFloat32(buf []uint16) []float32 {

	out := make([]float32, len(buf))

	for i, v := range buf {
		out[i] = f16LookupTable[v]
	}

	return out
}

// dequantizeUint8 converts asymmetric uint8 quantized values to float32
func dequantizeUint8(buf []uint8, zp int32, scale float32) []float32 {

	out := make([]float32, len(buf))

	for i, v := range buf {
		out[i] = (float32(v) - float32(zp)) * scale
	}

	return out
}

// dequantizeInt8 converts affine int8 quantized values to float32
func dequantizeInt8(buf []int8, zp int32, scale float32) []float32 {

	out := make([]float32, len(buf))

	for i, v := range buf {
		out[i] = (float32(v) - float32(zp)) * scale
	}

	return out
}
