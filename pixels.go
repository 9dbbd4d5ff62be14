package tflitedetect

import "fmt"

// CopyPixelsToTensor writes each packed 0xAARRGGBB pixel as three interleaved
// R, G, B bytes into dst.  The alpha channel is dropped.  dst must hold
// exactly InputChannels bytes per pixel.
func CopyPixelsToTensor(dst []byte, pixels []uint32) error {

	if len(dst) != len(pixels)*InputChannels {
		return fmt.Errorf("%w: tensor buffer is %d bytes, %d pixels need %d",
			ErrInputSize, len(dst), len(pixels), len(pixels)*InputChannels)
	}

	for i, val := range pixels {
		// AA RR GG BB
		dst[i*3+0] = byte(val >> 16)
		dst[i*3+1] = byte(val >> 8)
		dst[i*3+2] = byte(val)
	}

	return nil
}

// PackARGB packs the 8 bit channel values into a 0xAARRGGBB pixel
func PackARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
