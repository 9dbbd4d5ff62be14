package tflitedetect

import "errors"

var (
	// ErrNotInitialized is returned when Recognize is called before a
	// successful Initialize
	ErrNotInitialized = errors.New("tflitedetect: detector not initialized")

	// ErrModelIdentifier is returned when the model data does not carry the
	// TFLite flatbuffer file identifier
	ErrModelIdentifier = errors.New("tflitedetect: model identifier check failed")

	// ErrTensorAllocation is returned when the runtime fails to allocate the
	// session tensors
	ErrTensorAllocation = errors.New("tflitedetect: failed to allocate tensors")

	// ErrInputSize is returned when the pixel frame or tensor buffer does not
	// match the model input tensor size
	ErrInputSize = errors.New("tflitedetect: input size mismatch")

	// ErrOutputInvalid is returned when the model does not produce the four
	// SSD post processing output tensors
	ErrOutputInvalid = errors.New("tflitedetect: output tensors invalid")

	// ErrInvoke is returned when the runtime fails to run the model
	ErrInvoke = errors.New("tflitedetect: model invoke failed")

	// ErrPoolClosed is returned when using a Pool after Close
	ErrPoolClosed = errors.New("tflitedetect: pool closed")
)
