package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Alignment of a label relative to its detection box
type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	// Alignment of the text label to the bounding box
	Alignment Alignment
}

// DefaultFont returns the font used for detection box labels
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     White,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
		Alignment: Left,
	}
}

// OverlayFont returns the font used by Overlay for status text, drawn
// without a background so it is thicker and coloured
func OverlayFont() Font {
	f := DefaultFont()
	f.Scale = 0.6
	f.Color = Yellow
	f.Thickness = 2
	f.LeftPad = 8
	f.TopPad = 8

	return f
}
