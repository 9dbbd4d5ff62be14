package preprocess

import (
	"image"
	"image/color"

	"github.com/swdee/go-tflitedetect"
	"gocv.io/x/gocv"
)

// Mode is the method used to fit a source frame into the square model input
type Mode int

const (
	// Letterbox scales the frame keeping its aspect and pads the remainder
	Letterbox Mode = iota
	// Stretch scales each axis independently to fill the input
	Stretch
)

// Resizer scales camera frames to the square model input and maps the
// normalized detection boxes back to frame pixels
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// size is the width and height of the model input
	size int
	mode Mode
	// tempMat holds the scaled frame before padding
	tempMat gocv.Mat
	// letterbox parameters used in scaling
	xPad  int
	yPad  int
	scale float32
	// resize dimensions
	resizeW int
	resizeH int
}

// NewResizer returns a resizer for srcWidth x srcHeight frames going to a
// model with a size x size input tensor
func NewResizer(srcWidth, srcHeight, size int, mode Mode) *Resizer {
	r := &Resizer{
		srcWidth:  srcWidth,
		srcHeight: srcHeight,
		size:      size,
		mode:      mode,
		tempMat:   gocv.NewMat(),
	}

	r.preCalc()

	return r
}

// Close frees memory allocated during resize process
func (r *Resizer) Close() error {
	return r.tempMat.Close()
}

// preCalc the letterbox scale and padding
func (r *Resizer) preCalc() {

	r.resizeW = r.size
	r.resizeH = r.size

	if r.mode == Stretch {
		return
	}

	scaleW := float32(r.size) / float32(r.srcWidth)
	scaleH := float32(r.size) / float32(r.srcHeight)
	r.scale = scaleH

	if scaleW < scaleH {
		r.scale = scaleW
		r.resizeH = int(float32(r.srcHeight) * r.scale)
	} else {
		r.resizeW = int(float32(r.srcWidth) * r.scale)
	}

	r.yPad = (r.size - r.resizeH) / 2
	r.xPad = (r.size - r.resizeW) / 2
}

// Resize scales src into dest at the model input size.  In Letterbox mode
// pad is the colour of the padding bars
func (r *Resizer) Resize(src gocv.Mat, dest *gocv.Mat, pad color.RGBA) {

	if r.mode == Stretch {
		gocv.Resize(src, dest, image.Pt(r.size, r.size), 0, 0, gocv.InterpolationLinear)
		return
	}

	gocv.Resize(src, &r.tempMat, image.Pt(r.resizeW, r.resizeH),
		0, 0, gocv.InterpolationArea)

	gocv.CopyMakeBorder(r.tempMat, dest, r.yPad, r.size-r.resizeH-r.yPad,
		r.xPad, r.size-r.resizeW-r.xPad, gocv.BorderConstant, pad)
}

// BoxToSource converts a detection box normalized to the model input into
// a rectangle in source frame pixels, clipped to the frame
func (r *Resizer) BoxToSource(box tflitedetect.Box) image.Rectangle {

	var rect image.Rectangle

	if r.mode == Stretch {
		rect = image.Rect(
			int(box.Xmin*float32(r.srcWidth)),
			int(box.Ymin*float32(r.srcHeight)),
			int(box.Xmax*float32(r.srcWidth)),
			int(box.Ymax*float32(r.srcHeight)),
		)

	} else {
		size := float32(r.size)

		rect = image.Rect(
			int((box.Xmin*size-float32(r.xPad))/r.scale),
			int((box.Ymin*size-float32(r.yPad))/r.scale),
			int((box.Xmax*size-float32(r.xPad))/r.scale),
			int((box.Ymax*size-float32(r.yPad))/r.scale),
		)
	}

	return rect.Intersect(image.Rect(0, 0, r.srcWidth, r.srcHeight))
}

// ScaleFactor returns the scale factor used in letterbox resize
func (r *Resizer) ScaleFactor() float32 {
	return r.scale
}

// XPad returns the x padding used in letterbox resize
func (r *Resizer) XPad() int {
	return r.xPad
}

// YPad returns the y padding used in letterbox resize
func (r *Resizer) YPad() int {
	return r.yPad
}

// Size returns the model input width and height
func (r *Resizer) Size() int {
	return r.size
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}
