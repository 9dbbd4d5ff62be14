package preprocess

import (
	"errors"
	"fmt"
	"image"

	"github.com/swdee/go-tflitedetect"
	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// ErrMatType is returned for Mats that are not 8 bit BGR or BGRA
var ErrMatType = errors.New("preprocess: mat must be CV_8UC3 or CV_8UC4")

// FrameFromMat packs the pixels of a BGR or BGRA Mat into dst as
// 0xAARRGGBB.  BGR pixels are given an opaque alpha.  dst must hold exactly
// one entry per Mat pixel
func FrameFromMat(mat gocv.Mat, dst []uint32) error {

	var channels int

	switch mat.Type() {
	case gocv.MatTypeCV8UC3:
		channels = 3
	case gocv.MatTypeCV8UC4:
		channels = 4
	default:
		return fmt.Errorf("%w: got type %v", ErrMatType, mat.Type())
	}

	if mat.Rows()*mat.Cols() != len(dst) {
		return fmt.Errorf("%w: mat has %d pixels, buffer %d",
			tflitedetect.ErrInputSize, mat.Rows()*mat.Cols(), len(dst))
	}

	if !mat.IsContinuous() {
		return fmt.Errorf("mat must be continuous")
	}

	data, err := mat.DataPtrUint8()

	if err != nil {
		return fmt.Errorf("mat.DataPtrUint8: %w", err)
	}

	for i := range dst {
		p := data[i*channels : i*channels+channels]
		a := uint8(0xFF)

		if channels == 4 {
			a = p[3]
		}

		dst[i] = tflitedetect.PackARGB(a, p[2], p[1], p[0])
	}

	return nil
}

// FrameFromImage scales img to size x size and packs it into dst as
// 0xAARRGGBB.  dst is reallocated when it does not hold size*size pixels
// and the packed buffer is returned
func FrameFromImage(img image.Image, size int, dst []uint32) []uint32 {

	if len(dst) != size*size {
		dst = make([]uint32, size*size)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	for i := range dst {
		p := scaled.Pix[i*4 : i*4+4]
		dst[i] = tflitedetect.PackARGB(p[3], p[0], p[1], p[2])
	}

	return dst
}
