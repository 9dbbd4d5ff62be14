//go:build integration && cgo
// +build integration,cgo

package tflite

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/swdee/go-tflitedetect"
)

func TestSSDRecognize(t *testing.T) {

	modelFile := os.Getenv("TFLITE_MODEL")

	if modelFile == "" {
		t.Fatalf("No Model file provided in TFLITE_MODEL")
	}

	labelFile := os.Getenv("TFLITE_LABELS")

	if labelFile == "" {
		t.Fatalf("No Labels file provided in TFLITE_LABELS")
	}

	model, err := os.Open(modelFile)

	if err != nil {
		t.Fatalf("Error opening model: %v", err)
	}

	defer model.Close()

	labels, err := os.Open(labelFile)

	if err != nil {
		t.Fatalf("Error opening labels: %v", err)
	}

	defer labels.Close()

	det := tflitedetect.NewDetector(NewEngine(nil))

	if err := det.Initialize(model, labels); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	defer det.Close()

	var buf bytes.Buffer

	if err := det.Query(&buf); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Output Number: 4") {
		t.Errorf("Expected SSD post-process outputs, got:\n%s", buf.String())
	}

	// a blank frame should run cleanly, detections are not expected
	size := det.InputSize()
	pixels := make([]uint32, size*size)

	for i := range pixels {
		pixels[i] = tflitedetect.PackARGB(0xFF, 0x80, 0x80, 0x80)
	}

	dets, err := det.Recognize(pixels)

	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	for _, d := range dets {
		if d.Score < tflitedetect.MinScore {
			t.Errorf("Detection below threshold returned: %+v", d)
		}
	}
}
