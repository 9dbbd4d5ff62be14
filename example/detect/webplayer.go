package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/swdee/go-tflitedetect/internal/config"
	"gocv.io/x/gocv"

	"github.com/hybridgroup/mjpeg"
)

func webplayer(
	ctx context.Context,
	parent_logger *slog.Logger,
	cfg *config.ConfigFile,
	in_chan <-chan ProcessedFrame,
) error {

	logger := parent_logger.With("coroutine", "webplayer")

	output_stream := mjpeg.NewStream()

	mux := http.NewServeMux()
	mux.Handle("/", output_stream)

	server := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", cfg.Webserver.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Webserver.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Webserver.WriteTimeoutSec) * time.Second,
	}

	err_chan := make(chan error, 1)

	go func() {
		err_chan <- server.ListenAndServe()
	}()
	defer func() {
		shutdown_context, cancel := context.WithTimeout(
			context.Background(),
			time.Second*time.Duration(cfg.Webserver.ShutdownTimeoutSec))
		defer cancel()
		shutdown_initiated_timestamp := time.Now()
		err := server.Shutdown(shutdown_context)
		logger.Info(
			"Shut down",
			"shutdown time (sec)", time.Since(shutdown_initiated_timestamp).Seconds(),
			"error", err)
	}()

	logger.Info("Started", "port", cfg.Webserver.Port)

	// with several processors frames can arrive out of order
	var last_id uint64
	shown := false

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context", "timeout (sec)", cfg.Webserver.ShutdownTimeoutSec)
			return context.Canceled

		case err := <-err_chan:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			logger.Error("Error", "port", cfg.Webserver.Port, "error", err)
			return err

		case frame := <-in_chan:
			if shown && frame.ID < last_id {
				logger.Debug("Dropping late frame", "frame", frame.ID, "last", last_id)
				frame.Mat.Close()
				continue
			}

			buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame.Mat)
			frame.Mat.Close()

			if err != nil {
				logger.Error("Can't encode frame", "frame", frame.ID, "error", err)
				return err
			}

			data := make([]byte, buf.Len())
			copy(data, buf.GetBytes())
			buf.Close()

			output_stream.UpdateJPEG(data)

			last_id = frame.ID
			shown = true
		}
	}
}
