//go:build libyuv

package yuv

/*
#cgo LDFLAGS: -lyuv
#include <stdint.h>

extern void ConvertYUV420SPToARGB8888(uint8_t* const yData,
                                      uint8_t* const uvData,
                                      int* const output,
                                      const int width, const int height);
*/
import "C"

import (
	"unsafe"
)

// LibYUV converts frames with the native ConvertYUV420SPToARGB8888 routine
// linked from libyuv.  The routine does no error signalling of its own so
// the buffers are validated before the call
type LibYUV struct{}

// ConvertNV21ToARGB writes width*height packed ARGB pixels to out
func (LibYUV) ConvertNV21ToARGB(y, vu []byte, width, height int, out []uint32) error {

	if err := Validate(y, vu, width, height, out); err != nil {
		return err
	}

	C.ConvertYUV420SPToARGB8888(
		(*C.uint8_t)(unsafe.Pointer(&y[0])),
		(*C.uint8_t)(unsafe.Pointer(&vu[0])),
		(*C.int)(unsafe.Pointer(&out[0])),
		C.int(width), C.int(height),
	)

	return nil
}
