package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, summary{}, summarize(nil))
}

func TestSummarizeSingle(t *testing.T) {

	s := summarize([]float64{12.5})

	assert.Equal(t, 1, s.Frames)
	assert.Equal(t, 12.5, s.Mean)
	assert.Equal(t, 0.0, s.StdDev)
	assert.Equal(t, 12.5, s.P95)
	assert.Equal(t, 12.5, s.Max)
}

func TestSummarize(t *testing.T) {

	samples := []float64{9, 2, 4, 4, 5, 7, 4, 5}

	s := summarize(samples)

	assert.Equal(t, 8, s.Frames)
	assert.Equal(t, 5.0, s.Mean)
	assert.InDelta(t, math.Sqrt(32.0/7.0), s.StdDev, 1e-9)
	assert.Equal(t, 9.0, s.Max)
	assert.InDelta(t, 9.0, s.P95, 2)

	// samples are left in arrival order
	assert.Equal(t, 9.0, samples[0])
}
