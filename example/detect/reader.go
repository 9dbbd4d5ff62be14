package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/swdee/go-tflitedetect/internal/config"
	"gocv.io/x/gocv"
)

// Frame is a captured camera frame.  The receiver is responsible for
// closing Mat
type Frame struct {
	ID   uint64
	Time time.Time
	Mat  gocv.Mat
}

func openInput(cfg *config.ConfigFile) (*gocv.VideoCapture, error) {

	switch config.InputType(cfg.Input.Type) {
	case config.InputTypeFile:
		return gocv.VideoCaptureFile(cfg.Input.Path)
	case config.InputTypeIPC:
		return gocv.OpenVideoCapture(cfg.Input.Path)
	default:
		return gocv.VideoCaptureDevice(cfg.Input.Device)
	}
}

func streamreader(
	ctx context.Context,
	parent_logger *slog.Logger,
	cfg *config.ConfigFile,
	out_chan chan<- Frame,
) error {

	logger := parent_logger.With("coroutine", "streamreader")

	input_stream, err := openInput(cfg)
	if err != nil {
		logger.Error(
			"Can't open input",
			"type", cfg.Input.Type,
			"address", cfg.Input.Path,
			"error", err)
		return ErrBadInput
	}
	defer input_stream.Close()

	logger.Info("Started", "type", cfg.Input.Type, "address", cfg.Input.Path)

	var frame_id uint64 = 0

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled
		default:
			img := gocv.NewMat()
			if !input_stream.Read(&img) {
				img.Close()
				logger.Error("Can't read next frame. Shutting down...", "stream", cfg.Input.Path)
				return ErrStreamEnded
			}
			if img.Empty() {
				logger.Warn("Empty frame received, skipping", "stream", cfg.Input.Path)
				img.Close()
				continue
			}

			select {
			case <-ctx.Done():
				img.Close()
				logger.Info("Cancelled by context")
				return context.Canceled
			case out_chan <- Frame{ID: frame_id, Time: time.Now(), Mat: img}:
				frame_id++
			}
		}
	}
}
