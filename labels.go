package tflitedetect

import (
	"fmt"
	"io"
	"strings"
)

// ParseLabels reads the labels used to train the Model from r.  It should
// contain one label per line.  Empty lines are dropped and the remaining
// lines are trimmed of surrounding whitespace.
func ParseLabels(r io.Reader) ([]string, error) {

	// read the whole text so no line length limit applies
	data, err := io.ReadAll(r)

	if err != nil {
		return nil, fmt.Errorf("error reading labels: %w", err)
	}

	labels := make([]string, 0)

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")

		if line == "" {
			continue
		}

		labels = append(labels, strings.TrimSpace(line))
	}

	return labels, nil
}
