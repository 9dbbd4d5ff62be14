package tflitedetect

import (
	"fmt"
	"math"
)

// output tensor positions of the TFLite SSD post processing operator
const (
	outputBoxes = iota
	outputClasses
	outputScores
	outputCount
	numOutputs
)

// Box is a bounding box in coordinates normalized to the model input size
type Box struct {
	Xmin float32
	Ymin float32
	Xmax float32
	Ymax float32
}

// Width returns the normalized width of the box
func (b Box) Width() float32 {
	return b.Xmax - b.Xmin
}

// Height returns the normalized height of the box
func (b Box) Height() float32 {
	return b.Ymax - b.Ymin
}

// Detection defines the attributes of a single object detected
type Detection struct {
	// Box is the bounding box of the object location
	Box Box
	// Class is the line number in the labels the Model was trained on,
	// that is the model class index plus the label offset
	Class int
	// Label is the name of the Class
	Label string
	// Score is the confidence score of the object detected
	Score float32
}

// DecodeDetections takes the four SSD output tensors (boxes, classes, scores
// and the detection count) and returns the detections whose score is at or
// above minScore.  Class indices that fall outside of labels once
// labelOffset is added are skipped.
func DecodeDetections(outputs [][]float32, labels []string, labelOffset int,
	minScore float32) ([]Detection, error) {

	if len(outputs) < numOutputs {
		return nil, fmt.Errorf("%w: expected %d output tensors, got %d",
			ErrOutputInvalid, numOutputs, len(outputs))
	}

	if len(outputs[outputCount]) == 0 {
		return nil, fmt.Errorf("%w: detection count tensor is empty", ErrOutputInvalid)
	}

	boxes := outputs[outputBoxes]
	classes := outputs[outputClasses]
	scores := outputs[outputScores]

	count := detectionCount(outputs[outputCount][0], len(boxes)/4,
		len(classes), len(scores))

	dets := make([]Detection, 0, count)

	for i := 0; i < count; i++ {

		labelIndex := int(classes[i]) + labelOffset

		if labelIndex < 0 || labelIndex > len(labels)-1 {
			continue
		}

		score := scores[i]

		// NaN scores never meet the threshold
		if !(score >= minScore) {
			continue
		}

		dets = append(dets, Detection{
			Box: Box{
				Xmin: boxes[i*4+0],
				Ymin: boxes[i*4+1],
				Xmax: boxes[i*4+2],
				Ymax: boxes[i*4+3],
			},
			Class: labelIndex,
			Label: labels[labelIndex],
			Score: score,
		})
	}

	return dets, nil
}

// detectionCount converts the reported count to an int no larger than any of
// the per detection arrays
func detectionCount(reported float32, limits ...int) int {

	if math.IsNaN(float64(reported)) || reported <= 0 {
		return 0
	}

	count := math.MaxInt32

	if float64(reported) < float64(count) {
		count = int(reported)
	}

	for _, l := range limits {
		if l < count {
			count = l
		}
	}

	return count
}
