package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/swdee/go-tflitedetect"
	"github.com/swdee/go-tflitedetect/preprocess"
	"github.com/swdee/go-tflitedetect/render"
	"github.com/swdee/go-tflitedetect/tflite"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/ssd_mobilenet_v1_quant.tflite", "TFLite SSD model file")
	labelFile := flag.String("l", "../data/coco_labels.txt", "Text file containing model labels")
	imgFile := flag.String("i", "../data/bus.jpg", "Image file to run object detection on")
	saveFile := flag.String("o", "../data/bus-ssd-out.jpg", "The output JPG file with object detection markers")
	letterbox := flag.Bool("b", false, "Letterbox the image instead of stretching it to the model input")

	flag.Parse()

	model, err := os.Open(*modelFile)

	if err != nil {
		log.Fatal("Error opening model: ", err)
	}

	defer model.Close()

	labels, err := os.Open(*labelFile)

	if err != nil {
		log.Fatal("Error opening labels: ", err)
	}

	defer labels.Close()

	det := tflitedetect.NewDetector(tflite.NewEngine(nil))

	if err := det.Initialize(model, labels); err != nil {
		log.Fatal("Error initializing detector: ", err)
	}

	defer det.Close()

	// optional querying of model file tensors, not necessary for
	// production inference code
	if err := det.Query(os.Stdout); err != nil {
		log.Fatal("Error querying model: ", err)
	}

	// load image
	img := gocv.IMRead(*imgFile, gocv.IMReadColor)

	if img.Empty() {
		log.Fatal("Error reading image from: ", *imgFile)
	}

	defer img.Close()

	mode := preprocess.Stretch

	if *letterbox {
		mode = preprocess.Letterbox
	}

	resizer := preprocess.NewResizer(img.Cols(), img.Rows(), det.InputSize(), mode)
	defer resizer.Close()

	cropImg := gocv.NewMat()
	defer cropImg.Close()

	resizer.Resize(img, &cropImg, render.Black)

	pixels := make([]uint32, det.InputSize()*det.InputSize())

	if err := preprocess.FrameFromMat(cropImg, pixels); err != nil {
		log.Fatal("Error converting image: ", err)
	}

	// perform inference on image file
	dets, err := det.Recognize(pixels)

	if err != nil {
		log.Fatal("Recognize failed with error: ", err)
	}

	rects := make([]image.Rectangle, len(dets))

	for i, d := range dets {
		rects[i] = resizer.BoxToSource(d.Box)

		fmt.Printf("%s @ (%d %d %d %d) %f\n", d.Label, rects[i].Min.X,
			rects[i].Min.Y, rects[i].Max.X, rects[i].Max.Y, d.Score)
	}

	render.DetectionBoxes(&img, dets, rects, render.DefaultFont(), 2)

	// Save the result
	if ok := gocv.IMWrite(*saveFile, img); !ok {
		log.Println("Failed to save the image")
	}

	log.Printf("Saved object detection result to %s\n", *saveFile)
}
