//go:build cgo

// Package tflite implements the tflitedetect Engine on the TensorFlow Lite C
// library through github.com/mattn/go-tflite.
package tflite

import (
	"fmt"
	"io"
	"log/slog"

	gotflite "github.com/mattn/go-tflite"
	"github.com/swdee/go-tflitedetect"
)

// Engine loads TFLite flatbuffer models and creates interpreter sessions
type Engine struct {
	logger *slog.Logger
}

// NewEngine returns a TFLite Engine.  Runtime error reports are written to
// logger, if nil they are discarded
func NewEngine(logger *slog.Logger) *Engine {

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Engine{
		logger: logger,
	}
}

// Model wraps a loaded TFLite model
type Model struct {
	model *gotflite.Model
}

// LoadModel validates the model identifier and creates the TFLite model
func (e *Engine) LoadModel(data []byte) (tflitedetect.Model, error) {

	if !tflitedetect.CheckModelIdentifier(data) {
		return nil, fmt.Errorf("%w: missing TFL3 file identifier",
			tflitedetect.ErrModelIdentifier)
	}

	model := gotflite.NewModel(data)

	if model == nil {
		return nil, fmt.Errorf("tflite.NewModel failed for %d byte model", len(data))
	}

	return &Model{
		model: model,
	}, nil
}

// Close deletes the TFLite model
func (m *Model) Close() error {

	if m.model == nil {
		return nil
	}

	m.model.Delete()
	m.model = nil

	return nil
}

// NewSession creates an interpreter with the builtin op resolver bound to
// model, running numThreads worker threads
func (e *Engine) NewSession(model tflitedetect.Model, numThreads int) (tflitedetect.Session, error) {

	m, ok := model.(*Model)

	if !ok || m.model == nil {
		return nil, fmt.Errorf("model %T was not loaded by the tflite engine", model)
	}

	options := gotflite.NewInterpreterOptions()

	if options == nil {
		return nil, fmt.Errorf("tflite.NewInterpreterOptions failed")
	}

	if numThreads > 0 {
		options.SetNumThread(numThreads)
	}

	options.SetErrorReporter(func(msg string, _ interface{}) {
		e.logger.Error("tflite runtime", "msg", msg)
	}, nil)

	interpreter := gotflite.NewInterpreter(m.model, options)

	if interpreter == nil {
		options.Delete()
		return nil, fmt.Errorf("tflite.NewInterpreter failed")
	}

	return &Session{
		interpreter: interpreter,
		options:     options,
	}, nil
}
