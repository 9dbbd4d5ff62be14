package tflitedetect

import (
	"slices"
	"strings"
	"testing"
)

func TestParseLabels(t *testing.T) {

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"empty", "", []string{}},
		{"single no newline", "person", []string{"person"}},
		{"trailing newline", "???\nperson\n", []string{"???", "person"}},
		{"windows line endings", "???\r\nperson\r\ncar\r\n", []string{"???", "person", "car"}},
		{"empty lines dropped", "\n\nperson\n\n\ncar\n", []string{"person", "car"}},
		{"entries trimmed", "  person \n\ttraffic light\t\n", []string{"person", "traffic light"}},
		{"order kept", "c\nb\na", []string{"c", "b", "a"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			labels, err := ParseLabels(strings.NewReader(tc.text))

			if err != nil {
				t.Fatalf("ParseLabels failed: %v", err)
			}

			if !slices.Equal(labels, tc.expected) {
				t.Errorf("Expected %q, got %q", tc.expected, labels)
			}
		})
	}
}

func TestParseLabelsLongLine(t *testing.T) {

	long := strings.Repeat("x", 256*1024)

	labels, err := ParseLabels(strings.NewReader("???\n" + long + "\nperson\n"))

	if err != nil {
		t.Fatalf("ParseLabels failed on a long line: %v", err)
	}

	if len(labels) != 3 || labels[1] != long || labels[2] != "person" {
		t.Errorf("Unexpected labels, got %d entries", len(labels))
	}
}
