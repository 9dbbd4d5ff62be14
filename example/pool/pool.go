package main

import (
	"flag"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/swdee/go-tflitedetect"
	"github.com/swdee/go-tflitedetect/preprocess"
	"github.com/swdee/go-tflitedetect/tflite"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/ssd_mobilenet_v1_quant.tflite", "TFLite SSD model file")
	labelFile := flag.String("l", "../data/coco_labels.txt", "Text file containing model labels")
	imgDir := flag.String("d", "../data/images/", "A directory of images to run inference on")
	poolSize := flag.Int("s", 2, "Size of detector pool")
	threads := flag.Int("t", 1, "Runtime threads per detector, 0 leaves the count to the runtime")
	repeat := flag.Int("r", 1, "Repeat processing image directory the specified number of times, use this if you don't have enough images")

	flag.Parse()

	// check dir exists
	info, err := os.Stat(*imgDir)

	if err != nil {
		log.Fatalf("No such image directory %s, error: %v\n", *imgDir, err)
	}

	if !info.IsDir() {
		log.Fatal("Image path is not a directory")
	}

	modelData, err := os.ReadFile(*modelFile)

	if err != nil {
		log.Fatalf("Error reading model: %v\n", err)
	}

	labelData, err := os.ReadFile(*labelFile)

	if err != nil {
		log.Fatalf("Error reading labels: %v\n", err)
	}

	// create new pool
	pool, err := tflitedetect.NewPool(*poolSize, tflite.NewEngine(nil),
		modelData, labelData, tflitedetect.WithNumThreads(*threads))

	if err != nil {
		log.Fatalf("Error creating detector pool: %v\n", err)
	}

	defer pool.Close()

	// get list of all files in the directory
	files, err := os.ReadDir(*imgDir)

	if err != nil {
		log.Fatalf("Error reading image directory: %v\n", err)
	}

	start := time.Now()
	var wg sync.WaitGroup

	// repeat processing the specified number of times to increase the number
	// of images processed
	for i := 0; i < *repeat; i++ {
		for _, file := range files {
			if file.IsDir() {
				continue
			}

			// pool.Get() blocks if no detectors are available in the pool
			det := pool.Get()
			wg.Add(1)

			go func(det *tflitedetect.Detector, file string) {
				defer wg.Done()
				defer pool.Return(det)
				processFile(det, file)
			}(det, filepath.Join(*imgDir, file.Name()))
		}
	}

	wg.Wait()

	log.Printf("Completed in %s\n", time.Since(start).String())
}

func processFile(det *tflitedetect.Detector, file string) {

	f, err := os.Open(file)

	if err != nil {
		log.Printf("Error opening %s: %v\n", file, err)
		return
	}

	defer f.Close()

	img, _, err := image.Decode(f)

	if err != nil {
		log.Printf("Error decoding %s: %v\n", file, err)
		return
	}

	start := time.Now()

	pixels := preprocess.FrameFromImage(img, det.InputSize(), nil)
	dets, err := det.Recognize(pixels)

	exe := time.Since(start)

	if err != nil {
		log.Printf("Recognize failed on %s: %v\n", file, err)
		return
	}

	for _, d := range dets {
		log.Printf("%dms - File[%s] %s: %.3f\n", exe.Milliseconds(), file, d.Label, d.Score)
	}
}
