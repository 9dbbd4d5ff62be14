package main

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Statistics is sent by the processors for every frame handled
type Statistics struct {
	Inference  time.Duration
	Detections int
}

// summary of the inference times in milliseconds over one stat period
type summary struct {
	Frames int
	Mean   float64
	StdDev float64
	P95    float64
	Max    float64
}

// summarize the inference time samples, given in milliseconds
func summarize(samples []float64) summary {

	if len(samples) == 0 {
		return summary{}
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	s := summary{
		Frames: len(sorted),
		P95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}

	if len(sorted) < 2 {
		s.Mean = sorted[0]
		return s
	}

	s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)

	return s
}

func stats(ctx context.Context, parent_logger *slog.Logger, in_chan <-chan Statistics,
	stat_period_sec uint) error {

	logger := parent_logger.With("coroutine", "stats")

	period := time.Second * time.Duration(stat_period_sec)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var total uint64
	var detections int
	samples := make([]float64, 0, 256)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled

		case s := <-in_chan:
			total++
			detections += s.Detections
			samples = append(samples, float64(s.Inference.Microseconds())/1000)

		case <-ticker.C:
			sum := summarize(samples)

			logger.Info("Stats",
				"frames processed", total,
				"frames per second", float64(sum.Frames)/period.Seconds(),
				"detections", detections,
				"inference mean (ms)", sum.Mean,
				"inference stddev (ms)", sum.StdDev,
				"inference p95 (ms)", sum.P95,
				"inference max (ms)", sum.Max)

			samples = samples[:0]
			detections = 0
		}
	}
}
