package yuv

import (
	"fmt"

	"github.com/swdee/go-tflitedetect"
	"gocv.io/x/gocv"
)

// OpenCV converts frames with gocv for hosts without the native helper
// library
type OpenCV struct{}

// ConvertNV21ToARGB writes width*height packed ARGB pixels to out
func (OpenCV) ConvertNV21ToARGB(y, vu []byte, width, height int, out []uint32) error {

	if err := Validate(y, vu, width, height, out); err != nil {
		return err
	}

	ySize, vuSize := PlaneSizes(width, height)

	// OpenCV expects both planes in one single channel Mat of height*3/2 rows
	frame := make([]byte, ySize+vuSize)
	copy(frame, y[:ySize])
	copy(frame[ySize:], vu[:vuSize])

	src, err := gocv.NewMatFromBytes(height*3/2, width, gocv.MatTypeCV8UC1, frame)

	if err != nil {
		return fmt.Errorf("error creating NV21 mat: %w", err)
	}

	defer src.Close()

	bgra := gocv.NewMat()
	defer bgra.Close()

	gocv.CvtColor(src, &bgra, gocv.ColorYUVToBGRANV21)

	data, err := bgra.DataPtrUint8()

	if err != nil {
		return fmt.Errorf("error reading BGRA mat: %w", err)
	}

	for i := range out {
		p := data[i*4 : i*4+4]
		out[i] = tflitedetect.PackARGB(p[3], p[2], p[1], p[0])
	}

	return nil
}
