package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swdee/go-tflitedetect"
	"github.com/swdee/go-tflitedetect/internal/config"
	"github.com/swdee/go-tflitedetect/tflite"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"
)

func main() {

	cfgPath := flag.String("config", "detect.toml", "Path to config file")
	query := flag.Bool("q", false, "Print the model tensors and exit")
	printCfg := flag.Bool("p", false, "Print the effective configuration and exit")

	flag.Parse()

	cfg, err := config.Unmarshal(*cfgPath)
	if err != nil {
		slog.Error("Config file not loaded. Shutting down...", "provided path", *cfgPath, "error", err)
		os.Exit(1)
	}

	if *printCfg {
		data, err := cfg.Marshal()
		if err != nil {
			slog.Error("Can't encode config", "error", err)
			os.Exit(1)
		}
		fmt.Print(string(data))
		return
	}

	log_level, ok := cfg.Logging.SlogLevel()
	if !ok {
		slog.Warn(
			"No valid logging level provided. Defaulting to LevelError",
			"provided value", cfg.Logging.Level)
	}

	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      log_level,
		TimeFormat: time.RFC3339,
		AddSource:  log_level == slog.LevelDebug,
	}))

	pool, err := newPool(cfg, logger)
	if err != nil {
		logger.Error("Model not loaded. Shutting down...", "path", cfg.Model.Path, "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if *query {
		det := pool.Get()
		err := det.Query(os.Stdout)
		pool.Return(det)

		if err != nil {
			logger.Error("Query failed", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("Starting...", "pool size", pool.Size(), "input size", cfg.Model.InputSize)

	eg, child_ctx := errgroup.WithContext(context.Background())

	frames_chan := make(chan Frame, cfg.Model.PoolSize)
	processed_chan := make(chan ProcessedFrame, cfg.Model.PoolSize)
	stats_chan := make(chan Statistics, 64)

	// nil disables detection hand-off in the processors
	var dets_chan chan DetectionMessage

	if cfg.MQTT.Enabled {
		dets_chan = make(chan DetectionMessage, 16)

		eg.Go(func() error {
			return mqttclient(child_ctx, logger, cfg, dets_chan)
		})
	}

	eg.Go(func() error {
		return streamreader(child_ctx, logger, cfg, frames_chan)
	})

	for i := 0; i < pool.Size(); i++ {
		worker := i
		eg.Go(func() error {
			return processor(child_ctx, logger, worker, cfg, pool,
				frames_chan, processed_chan, dets_chan, stats_chan)
		})
	}

	eg.Go(func() error {
		return webplayer(child_ctx, logger, cfg, processed_chan)
	})

	eg.Go(func() error {
		return stats(child_ctx, logger, stats_chan, cfg.Logging.StatPeriodSec)
	})

	eg.Go(func() error {
		return control(child_ctx, logger)
	})

	err = eg.Wait()

	switch {
	case errors.Is(err, ErrInterrupted), errors.Is(err, ErrStreamEnded):
		logger.Info("Stopped", "reason", err)
	default:
		logger.Error("Stopped", "error", err)
	}
}

// newPool loads the model and labels files into a pool of detectors, one
// per processor
func newPool(cfg *config.ConfigFile, logger *slog.Logger) (*tflitedetect.Pool, error) {

	modelData, err := os.ReadFile(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadModel, err)
	}

	labelData, err := os.ReadFile(cfg.Model.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadModel, err)
	}

	opts := []tflitedetect.Option{
		tflitedetect.WithLogger(logger),
		tflitedetect.WithInputSize(cfg.Model.InputSize),
		tflitedetect.WithMinScore(cfg.Model.MinScore),
		tflitedetect.WithLabelOffset(cfg.Model.LabelOffset),
	}

	// without the option each session runs one thread per core
	if cfg.Model.Threads > 0 {
		opts = append(opts, tflitedetect.WithNumThreads(cfg.Model.Threads))
	}

	pool, err := tflitedetect.NewPool(cfg.Model.PoolSize, tflite.NewEngine(logger),
		modelData, labelData, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadModel, err)
	}

	return pool, nil
}

func control(ctx context.Context, logger *slog.Logger) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt,
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGINT)
	defer signal.Stop(interrupt)

	select {
	case <-ctx.Done():
		logger.Info("Control cancelled by context")
		return context.Canceled
	case <-interrupt:
		logger.Info("Cancelled by user")
		return ErrInterrupted
	}
}
