package tflitedetect

import (
	"bytes"
	"runtime"
)

const (
	// ModelInputSize is the default width and height of the square model
	// input tensor
	ModelInputSize = 300
	// MinScore is the default confidence threshold a detection must meet
	MinScore float32 = 0.6
	// LabelOffset is added to a model class index to get the labels file
	// line of that class.  SSD models reserve label 0 for the background
	// class
	LabelOffset = 1
	// InputChannels is the number of bytes per pixel in the input tensor
	InputChannels = 3
)

// modelIdentifier is the flatbuffer file identifier of TFLite models, found
// after the 4 byte root table offset
var modelIdentifier = []byte("TFL3")

// CheckModelIdentifier reports whether data starts like a TFLite flatbuffer
// model
func CheckModelIdentifier(data []byte) bool {

	if len(data) < 8 {
		return false
	}

	return bytes.Equal(data[4:8], modelIdentifier)
}

// Engine is an inference runtime able to load models and create sessions to
// run them
type Engine interface {
	// LoadModel validates and loads the model data.  It returns an error
	// wrapping ErrModelIdentifier when the identifier check fails
	LoadModel(data []byte) (Model, error)
	// NewSession creates an interpreter session bound to model using
	// numThreads worker threads
	NewSession(model Model, numThreads int) (Session, error)
}

// Model is a loaded model handle owned by the runtime
type Model interface {
	// Close releases the model
	Close() error
}

// Session is a single interpreter instance bound to a Model
type Session interface {
	// AllocateTensors allocates the session's input and output tensors.  It
	// returns an error wrapping ErrTensorAllocation on failure
	AllocateTensors() error
	// SetInput copies data into the first input tensor
	SetInput(data []byte) error
	// Invoke runs the model synchronously
	Invoke() error
	// Outputs returns each output tensor converted to float32
	Outputs() ([][]float32, error)
	// InputTensors returns the attributes of the input tensors
	InputTensors() []TensorAttr
	// OutputTensors returns the attributes of the output tensors
	OutputTensors() []TensorAttr
	// Close releases the interpreter and its options
	Close() error
}

// defaultNumThreads is one runtime worker thread per available processor
// core
func defaultNumThreads() int {
	return runtime.NumCPU()
}
