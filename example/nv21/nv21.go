package main

import (
	"flag"
	"log"
	"os"

	"github.com/swdee/go-tflitedetect"
	"github.com/swdee/go-tflitedetect/tflite"
	"github.com/swdee/go-tflitedetect/yuv"
)

// Runs detection on a raw NV21 camera frame, as dumped by an Android camera
// preview, sized to the model input
func main() {
	// disable logging timestamps
	log.SetFlags(0)

	modelFile := flag.String("m", "../data/ssd_mobilenet_v1_quant.tflite", "TFLite SSD model file")
	labelFile := flag.String("l", "../data/coco_labels.txt", "Text file containing model labels")
	frameFile := flag.String("f", "../data/frame-300x300.nv21", "Raw NV21 frame of the model input size")

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

	raw, err := os.ReadFile(*frameFile)

	if err != nil {
		log.Fatal("Error reading frame: ", err)
	}

	size := det.InputSize()
	ySize, _ := yuv.PlaneSizes(size, size)

	if len(raw) < ySize {
		log.Fatalf("Frame file has %d bytes, expected a %dx%d NV21 frame", len(raw), size, size)
	}

	pixels := make([]uint32, size*size)

	if err := converter.ConvertNV21ToARGB(raw[:ySize], raw[ySize:], size, size, pixels); err != nil {
		log.Fatal("Error converting frame: ", err)
	}

	dets, err := det.Recognize(pixels)

	if err != nil {
		log.Fatal("Recognize failed with error: ", err)
	}

	for _, d := range dets {
		log.Printf("%s %.3f [%.3f %.3f %.3f %.3f]\n", d.Label, d.Score,
			d.Box.Xmin, d.Box.Ymin, d.Box.Xmax, d.Box.Ymax)
	}

	log.Printf("%d detections\n", len(dets))
}
