package tflitedetect

import (
	"io"
	"log/slog"
)

// Option configures a Detector
type Option func(*Detector)

// WithLogger sets the logger used for runtime diagnostics.  By default log
// output is discarded
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithInputSize sets the width and height of the square model input tensor
func WithInputSize(size int) Option {
	return func(d *Detector) {
		if size > 0 {
			d.inputSize = size
		}
	}
}

// WithMinScore sets the confidence threshold a detection must meet
func WithMinScore(score float32) Option {
	return func(d *Detector) {
		d.minScore = score
	}
}

// WithLabelOffset sets the offset added to a model class index to find its
// label
func WithLabelOffset(offset int) Option {
	return func(d *Detector) {
		d.labelOffset = offset
	}
}

// WithNumThreads sets the number of runtime worker threads used by each
// session.  A value of 0 leaves the thread count to the runtime default
func WithNumThreads(n int) Option {
	return func(d *Detector) {
		if n >= 0 {
			d.numThreads = n
		}
	}
}

// discardLogger returns a logger that drops all records
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
