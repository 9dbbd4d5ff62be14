package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-tflitedetect"
	"gocv.io/x/gocv"
)

// boxLabel defines where the detection label should be rendered on the
// image
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// DetectionBoxes renders the bounding boxes around the objects detected.
// rects holds the box of each detection in img pixel coordinates, as
// returned by preprocess.Resizer.BoxToSource
func DetectionBoxes(img *gocv.Mat, dets []tflitedetect.Detection,
	rects []image.Rectangle, font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0, len(dets))

	for i, det := range dets {

		if i >= len(rects) {
			break
		}

		rect := rects[i]

		if rect.Empty() {
			continue
		}

		useClr := ClassColor(det.Class)

		// draw rectangle around detected object
		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := fmt.Sprintf("%s %.2f", det.Label, det.Score)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		// Calculate the alignment of text label
		var centerX int

		switch font.Alignment {
		case Center:
			centerX = (rect.Min.X + rect.Max.X) / 2

		case Right:
			centerX = rect.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

		case Left:
			fallthrough
		default:
			centerX = rect.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
		}

		// labels of boxes touching the top edge are moved inside the box
		top := rect.Min.Y
		labelH := textSize.Y + font.TopPad + font.BottomPad

		if top-labelH < 0 {
			top += labelH
		}

		boxLabels = append(boxLabels, boxLabel{
			rect: image.Rect(centerX-textSize.X/2-font.LeftPad, top-labelH,
				centerX+textSize.X/2+font.RightPad, top),
			clr:     useClr,
			text:    text,
			textPos: image.Pt(centerX-textSize.X/2, top-font.BottomPad),
		})
	}

	// draw labels last so they sit above every box outline
	for _, box := range boxLabels {
		gocv.Rectangle(img, box.rect, box.clr, -1)

		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}

// Overlay writes lines of text to the top left corner of img, used for
// inference timing and frame rate
func Overlay(img *gocv.Mat, lines []string, font Font) {

	y := font.TopPad

	for _, line := range lines {
		textSize := gocv.GetTextSize(line, font.Face, font.Scale, font.Thickness)
		y += textSize.Y + font.BottomPad

		gocv.PutTextWithParams(img, line, image.Pt(font.LeftPad, y),
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
