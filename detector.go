package tflitedetect

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Detector runs an SSD object detection model on camera frames.
//
// A Detector reuses a single tensor buffer across Recognize calls and is not
// safe for concurrent use.  Use one Detector per goroutine or a Pool.
type Detector struct {
	// engine is the inference runtime the model is loaded into
	engine Engine
	// model is the loaded model handle, nil until initialized
	model Model
	// labels the Model was trained on
	labels []string
	// quantized is the reusable input tensor buffer of RGB bytes
	quantized []byte
	// initialized is set once the model and labels are loaded
	initialized bool

	inputSize   int
	minScore    float32
	labelOffset int
	numThreads  int
	logger      *slog.Logger
}

// NewDetector returns a Detector that loads its model into engine
func NewDetector(engine Engine, opts ...Option) *Detector {

	d := &Detector{
		engine:      engine,
		inputSize:   ModelInputSize,
		minScore:    MinScore,
		labelOffset: LabelOffset,
		numThreads:  defaultNumThreads(),
		logger:      discardLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Initialize loads the labels and model.  The model data must pass the
// runtime's identifier check.  Calling Initialize on an initialized Detector
// does nothing, the first model and labels remain in effect.
func (d *Detector) Initialize(modelData, labelData io.Reader) error {

	if d.initialized {
		return nil
	}

	labels, err := ParseLabels(labelData)

	if err != nil {
		return fmt.Errorf("error loading labels: %w", err)
	}

	data, err := io.ReadAll(modelData)

	if err != nil {
		return fmt.Errorf("error reading model: %w", err)
	}

	model, err := d.engine.LoadModel(data)

	if err != nil {
		return fmt.Errorf("error loading model: %w", err)
	}

	d.model = model
	d.labels = labels
	d.quantized = make([]byte, d.inputSize*d.inputSize*InputChannels)
	d.initialized = true

	d.logger.Debug("detector initialized", "labels", len(labels),
		"model_bytes", len(data), "input_size", d.inputSize)

	return nil
}

// Recognize runs the model on a frame of packed 0xAARRGGBB pixels, the frame
// must be InputSize x InputSize pixels.  It returns the detections scoring
// at or above the minimum score.
func (d *Detector) Recognize(pixels []uint32) (dets []Detection, err error) {

	if !d.initialized {
		return nil, ErrNotInitialized
	}

	if len(pixels) != d.inputSize*d.inputSize {
		return nil, fmt.Errorf("%w: got %d pixels, expected %dx%d",
			ErrInputSize, len(pixels), d.inputSize, d.inputSize)
	}

	session, err := d.engine.NewSession(d.model, d.numThreads)

	if err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	// session is scoped to this call
	defer func() {
		if cerr := session.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing session: %w", cerr)
		}
	}()

	return d.invoke(session, pixels)
}

// invoke fills the session input tensor from pixels, runs the model and
// decodes the outputs
func (d *Detector) invoke(session Session, pixels []uint32) ([]Detection, error) {

	if err := session.AllocateTensors(); err != nil {
		if errors.Is(err, ErrTensorAllocation) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", ErrTensorAllocation, err)
	}

	if err := CopyPixelsToTensor(d.quantized, pixels); err != nil {
		return nil, err
	}

	if err := session.SetInput(d.quantized); err != nil {
		return nil, fmt.Errorf("error setting input: %w", err)
	}

	start := time.Now()

	if err := session.Invoke(); err != nil {
		return nil, fmt.Errorf("error running model: %w", err)
	}

	d.logger.Debug("interpreter invoke", "duration", time.Since(start))

	outputs, err := session.Outputs()

	if err != nil {
		return nil, fmt.Errorf("error getting outputs: %w", err)
	}

	return DecodeDetections(outputs, d.labels, d.labelOffset, d.minScore)
}

// Close releases the loaded model.  The Detector must be initialized again
// before further use.
func (d *Detector) Close() error {

	if !d.initialized {
		return nil
	}

	d.initialized = false
	d.labels = nil
	d.quantized = nil

	model := d.model
	d.model = nil

	if err := model.Close(); err != nil {
		return fmt.Errorf("error closing model: %w", err)
	}

	return nil
}

// Initialized reports whether the model and labels have been loaded
func (d *Detector) Initialized() bool {
	return d.initialized
}

// Labels returns the labels loaded by Initialize
func (d *Detector) Labels() []string {
	return d.labels
}

// InputSize returns the width and height of the square input frame
func (d *Detector) InputSize() int {
	return d.inputSize
}
