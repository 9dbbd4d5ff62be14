package main

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/swdee/go-tflitedetect"
	"github.com/swdee/go-tflitedetect/internal/config"
	"github.com/swdee/go-tflitedetect/preprocess"
	"github.com/swdee/go-tflitedetect/render"
	"gocv.io/x/gocv"
)

// ProcessedFrame is a frame annotated with its detections
type ProcessedFrame struct {
	ID  uint64
	Mat gocv.Mat
}

func resizeMode(cfg *config.ConfigFile) preprocess.Mode {

	if config.ResizeMode(cfg.Input.Resize) == config.ResizeModeLetterbox {
		return preprocess.Letterbox
	}

	return preprocess.Stretch
}

func processor(
	ctx context.Context,
	parent_logger *slog.Logger,
	worker int,
	cfg *config.ConfigFile,
	pool *tflitedetect.Pool,
	in_chan <-chan Frame,
	out_chan chan<- ProcessedFrame,
	det_chan chan<- DetectionMessage,
	stat_chan chan<- Statistics,
) error {

	logger := parent_logger.With("coroutine", "processor", "worker", worker)

	size := cfg.Model.InputSize
	pixels := make([]uint32, size*size)

	input := gocv.NewMat()
	defer input.Close()

	var resizer *preprocess.Resizer
	defer func() {
		if resizer != nil {
			resizer.Close()
		}
	}()

	font := render.DefaultFont()
	overlayFont := render.OverlayFont()

	logger.Info("Started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled

		case frame := <-in_chan:
			// frame size can change mid stream on some IP cameras
			cols, rows := frame.Mat.Cols(), frame.Mat.Rows()

			if resizer == nil || resizer.SrcWidth() != cols || resizer.SrcHeight() != rows {
				if resizer != nil {
					resizer.Close()
				}
				resizer = preprocess.NewResizer(cols, rows, size, resizeMode(cfg))
				logger.Debug("Resizer created", "width", cols, "height", rows,
					"scale", resizer.ScaleFactor())
			}

			resizer.Resize(frame.Mat, &input, render.Black)

			if err := preprocess.FrameFromMat(input, pixels); err != nil {
				frame.Mat.Close()
				logger.Error("Can't convert frame", "frame", frame.ID, "error", err)
				return err
			}

			start := time.Now()
			dets, err := pool.Recognize(pixels)
			inference := time.Since(start)

			if err != nil {
				frame.Mat.Close()
				logger.Error("Recognize failed", "frame", frame.ID, "error", err)
				return err
			}

			rects := make([]image.Rectangle, len(dets))

			for i, d := range dets {
				rects[i] = resizer.BoxToSource(d.Box)
				logger.Debug("Detection", "frame", frame.ID, "label", d.Label,
					"score", d.Score, "rect", rects[i])
			}

			render.DetectionBoxes(&frame.Mat, dets, rects, font, 2)
			render.Overlay(&frame.Mat, []string{
				fmt.Sprintf("Frame %d", frame.ID),
				fmt.Sprintf("Inference %.1fms", float64(inference.Microseconds())/1000),
			}, overlayFont)

			// hand-off to mqtt is best effort, a nil channel disables it
			if len(dets) > 0 {
				select {
				case det_chan <- newDetectionMessage(frame.ID, frame.Time, dets):
				default:
				}
			}

			select {
			case stat_chan <- Statistics{Inference: inference, Detections: len(dets)}:
			default:
			}

			select {
			case <-ctx.Done():
				frame.Mat.Close()
				logger.Info("Cancelled by context")
				return context.Canceled
			case out_chan <- ProcessedFrame{ID: frame.ID, Mat: frame.Mat}:
			}
		}
	}
}
