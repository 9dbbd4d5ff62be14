// Package yuv converts YUV 4:2:0 semi-planar camera frames (NV21, a full
// resolution Y plane followed by an interleaved VU plane) to packed
// 0xAARRGGBB pixels as taken by tflitedetect.Detector.Recognize.
package yuv

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensions is returned for odd or non positive frame sizes
	ErrDimensions = errors.New("yuv: width and height must be positive and even")
	// ErrPlaneSize is returned when the Y or VU plane is shorter than the
	// frame needs
	ErrPlaneSize = errors.New("yuv: plane too small for frame")
	// ErrOutputSize is returned when the output buffer does not hold one
	// pixel per frame position
	ErrOutputSize = errors.New("yuv: output buffer size mismatch")
)

// Converter converts NV21 frames to packed ARGB.  out must hold exactly
// width*height pixels
type Converter interface {
	ConvertNV21ToARGB(y, vu []byte, width, height int, out []uint32) error
}

// PlaneSizes returns the byte lengths of the Y and VU planes of a frame
func PlaneSizes(width, height int) (ySize, vuSize int) {
	return width * height, width * height / 2
}

// Validate checks the plane and output buffer lengths for a frame of the
// given size
func Validate(y, vu []byte, width, height int, out []uint32) error {

	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}

	ySize, vuSize := PlaneSizes(width, height)

	if len(y) < ySize {
		return fmt.Errorf("%w: Y plane has %d bytes, need %d", ErrPlaneSize,
			len(y), ySize)
	}

	if len(vu) < vuSize {
		return fmt.Errorf("%w: VU plane has %d bytes, need %d", ErrPlaneSize,
			len(vu), vuSize)
	}

	if len(out) != width*height {
		return fmt.Errorf("%w: have %d pixels, need %d", ErrOutputSize,
			len(out), width*height)
	}

	return nil
}
