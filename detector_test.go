package tflitedetect

import (
	"bytes"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
)

// newTestDetector returns an initialized 2x2 input Detector on a fake engine
func newTestDetector(t *testing.T, engine *fakeEngine, opts ...Option) *Detector {
	t.Helper()

	opts = append([]Option{WithInputSize(2)}, opts...)
	d := NewDetector(engine, opts...)

	err := d.Initialize(bytes.NewReader(testModel), strings.NewReader(testLabels))

	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	return d
}

// recognize runs Recognize on a blank 2x2 frame and fails the test on error
func recognize(t *testing.T, d *Detector) []Detection {
	t.Helper()

	dets, err := d.Recognize(make([]uint32, 4))

	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	return dets
}

func TestRecognizeBeforeInitialize(t *testing.T) {

	inputs := [][]uint32{
		nil,
		{},
		make([]uint32, 4),
		make([]uint32, ModelInputSize*ModelInputSize),
	}

	engine := &fakeEngine{}
	d := NewDetector(engine)

	for _, pixels := range inputs {
		dets, err := d.Recognize(pixels)

		if !errors.Is(err, ErrNotInitialized) {
			t.Errorf("Expected ErrNotInitialized for %d pixels, got %v", len(pixels), err)
		}

		if dets != nil {
			t.Errorf("Expected nil detections, got %+v", dets)
		}
	}

	if len(engine.sessions) != 0 {
		t.Errorf("No session should be created, got %d", len(engine.sessions))
	}
}

func TestInitializeTwiceKeepsFirst(t *testing.T) {

	engine := &fakeEngine{}
	d := newTestDetector(t, engine)

	other := append([]byte(nil), testModel...)
	other = append(other, "other"...)

	if err := d.Initialize(bytes.NewReader(other), strings.NewReader("cat\ndog\n")); err != nil {
		t.Fatalf("Second Initialize failed: %v", err)
	}

	if engine.loads != 1 {
		t.Errorf("Model loaded %d times", engine.loads)
	}

	expected := []string{"???", "person", "bicycle", "car"}

	if !slices.Equal(d.Labels(), expected) {
		t.Errorf("Expected labels %q, got %q", expected, d.Labels())
	}

	if !bytes.Equal(d.model.(*fakeModel).data, testModel) {
		t.Errorf("First model was replaced")
	}
}

func TestInitializeBadIdentifier(t *testing.T) {

	labels := []string{"", "person\n", "???\nperson\ncar", "\n\n\n"}
	models := [][]byte{nil, []byte("TFL3"), []byte("\x1c\x00\x00\x00TFL2....")}

	for _, model := range models {
		for _, lbl := range labels {
			d := NewDetector(&fakeEngine{})

			err := d.Initialize(bytes.NewReader(model), strings.NewReader(lbl))

			if !errors.Is(err, ErrModelIdentifier) {
				t.Errorf("Model %q: expected ErrModelIdentifier, got %v", model, err)
			}

			if d.Initialized() {
				t.Errorf("Model %q: detector should not be initialized", model)
			}

			_, err = d.Recognize(make([]uint32, ModelInputSize*ModelInputSize))

			if !errors.Is(err, ErrNotInitialized) {
				t.Errorf("Model %q: expected ErrNotInitialized, got %v", model, err)
			}
		}
	}
}

func TestInitializeAllocatesBuffer(t *testing.T) {

	d := NewDetector(&fakeEngine{})

	if err := d.Initialize(bytes.NewReader(testModel), strings.NewReader(testLabels)); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if !d.Initialized() {
		t.Fatalf("Detector not initialized")
	}

	if d.InputSize() != ModelInputSize {
		t.Errorf("Expected input size %d, got %d", ModelInputSize, d.InputSize())
	}

	if n := ModelInputSize * ModelInputSize * InputChannels; len(d.quantized) != n {
		t.Errorf("Expected %d byte buffer, got %d", n, len(d.quantized))
	}
}

func TestRecognizeZeroCount(t *testing.T) {

	engine := &fakeEngine{
		outputs: ssdOutputs(
			[][4]float32{{0.1, 0.1, 0.5, 0.5}, {0.2, 0.2, 0.6, 0.6}},
			[]float32{0, 1},
			[]float32{0.99, 0.95},
			0,
		),
	}

	d := newTestDetector(t, engine)

	if dets := recognize(t, d); len(dets) != 0 {
		t.Errorf("Expected no detections, got %+v", dets)
	}
}

func TestRecognizeScoreBoundary(t *testing.T) {

	engine := &fakeEngine{
		outputs: ssdOutputs(
			[][4]float32{{0.1, 0.1, 0.2, 0.2}, {0.3, 0.3, 0.4, 0.4}},
			[]float32{0, 0},
			[]float32{0.6, 0.5999},
			2,
		),
	}

	d := newTestDetector(t, engine)
	dets := recognize(t, d)

	if len(dets) != 1 {
		t.Fatalf("Expected 1 detection, got %+v", dets)
	}

	if dets[0].Score != 0.6 || dets[0].Label != "person" || dets[0].Class != 1 {
		t.Errorf("Unexpected detection %+v", dets[0])
	}
}

func TestRecognizeNaNScore(t *testing.T) {

	engine := &fakeEngine{
		outputs: ssdOutputs(
			[][4]float32{{0.1, 0.1, 0.2, 0.2}},
			[]float32{0},
			[]float32{float32(math.NaN())},
			1,
		),
	}

	d := newTestDetector(t, engine)

	if dets := recognize(t, d); len(dets) != 0 {
		t.Errorf("NaN score should not be emitted, got %+v", dets)
	}
}

func TestRecognizeLabelRange(t *testing.T) {

	// labels are ???, person, bicycle, car so valid classes are -1 to 2
	engine := &fakeEngine{
		outputs: ssdOutputs(
			[][4]float32{{}, {}, {}, {}, {}},
			[]float32{-2, 3, 90, -1, 2},
			[]float32{0.99, 0.99, 1.0, 0.99, 0.99},
			5,
		),
	}

	d := newTestDetector(t, engine)
	dets := recognize(t, d)

	if len(dets) != 2 {
		t.Fatalf("Expected 2 detections, got %+v", dets)
	}

	if dets[0].Label != "???" || dets[0].Class != 0 {
		t.Errorf("Expected ??? class 0, got %+v", dets[0])
	}

	if dets[1].Label != "car" || dets[1].Class != 3 {
		t.Errorf("Expected car class 3, got %+v", dets[1])
	}
}

func TestRecognizePerDetectionBoxes(t *testing.T) {

	// the box must come from the detection's own slot, not the first slot
	engine := &fakeEngine{
		outputs: ssdOutputs(
			[][4]float32{{0.1, 0.2, 0.3, 0.4}, {0.5, 0.6, 0.7, 0.8}},
			[]float32{0, 1},
			[]float32{0.9, 0.8},
			2,
		),
	}

	d := newTestDetector(t, engine)
	dets := recognize(t, d)

	if len(dets) != 2 {
		t.Fatalf("Expected 2 detections, got %+v", dets)
	}

	first := Box{Xmin: 0.1, Ymin: 0.2, Xmax: 0.3, Ymax: 0.4}
	second := Box{Xmin: 0.5, Ymin: 0.6, Xmax: 0.7, Ymax: 0.8}

	if dets[0].Box != first {
		t.Errorf("Expected first box %+v, got %+v", first, dets[0].Box)
	}

	if dets[1].Box != second {
		t.Errorf("Expected second box %+v, got %+v", second, dets[1].Box)
	}

	if dets[1].Label != "bicycle" {
		t.Errorf("Expected bicycle, got %s", dets[1].Label)
	}
}

func TestRecognizePixelConversion(t *testing.T) {

	engine := &fakeEngine{outputs: ssdOutputs(nil, nil, nil, 0)}
	d := newTestDetector(t, engine)

	pixels := []uint32{0xAA112233, 0x00FFFFFF, 0xFF000000, 0x7F80FF01}

	if _, err := d.Recognize(pixels); err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	s := engine.lastSession()

	if s == nil {
		t.Fatalf("No session created")
	}

	expected := []byte{
		0x11, 0x22, 0x33,
		0xFF, 0xFF, 0xFF,
		0x00, 0x00, 0x00,
		0x80, 0xFF, 0x01,
	}

	if !bytes.Equal(s.input, expected) {
		t.Errorf("Expected tensor input %v, got %v", expected, s.input)
	}

	if !s.allocated || !s.invoked || !s.closed {
		t.Errorf("Session lifecycle incomplete: allocated=%v invoked=%v closed=%v",
			s.allocated, s.invoked, s.closed)
	}
}

func TestRecognizeReusesBuffer(t *testing.T) {

	engine := &fakeEngine{outputs: ssdOutputs(nil, nil, nil, 0)}
	d := newTestDetector(t, engine)

	buf := &d.quantized[0]

	for i := 0; i < 3; i++ {
		if _, err := d.Recognize([]uint32{uint32(i), 0, 0, 0}); err != nil {
			t.Fatalf("Recognize failed: %v", err)
		}
	}

	if buf != &d.quantized[0] {
		t.Errorf("Input buffer was reallocated")
	}

	if len(engine.sessions) != 3 {
		t.Errorf("Each call should use its own session, got %d", len(engine.sessions))
	}
}

func TestRecognizeNewSessionEachCall(t *testing.T) {

	engine := &fakeEngine{outputs: ssdOutputs(nil, nil, nil, 0)}
	d := newTestDetector(t, engine, WithNumThreads(3))

	recognize(t, d)
	recognize(t, d)

	if len(engine.sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(engine.sessions))
	}

	if engine.sessions[0] == engine.sessions[1] {
		t.Errorf("Session was reused")
	}

	for _, s := range engine.sessions {
		if s.threads != 3 || !s.closed {
			t.Errorf("Expected closed session with 3 threads, got threads=%d closed=%v",
				s.threads, s.closed)
		}
	}
}

func TestRecognizeDefaultThreads(t *testing.T) {

	engine := &fakeEngine{outputs: ssdOutputs(nil, nil, nil, 0)}
	d := newTestDetector(t, engine)

	recognize(t, d)

	if got := engine.lastSession().threads; got != defaultNumThreads() {
		t.Errorf("Expected %d threads, got %d", defaultNumThreads(), got)
	}
}

func TestRecognizeAllocationFailure(t *testing.T) {

	engine := &fakeEngine{allocErr: errors.New("arena exhausted")}
	d := newTestDetector(t, engine)

	dets, err := d.Recognize(make([]uint32, 4))

	if !errors.Is(err, ErrTensorAllocation) {
		t.Errorf("Expected ErrTensorAllocation, got %v", err)
	}

	if dets != nil {
		t.Errorf("Expected nil detections, got %+v", dets)
	}

	s := engine.lastSession()

	if s == nil {
		t.Fatalf("No session created")
	}

	if !s.closed {
		t.Errorf("Session must be released on failure")
	}

	if s.invoked {
		t.Errorf("Session should not be invoked after allocation failed")
	}
}

func TestRecognizeInvokeFailure(t *testing.T) {

	engine := &fakeEngine{invokeErr: ErrInvoke}
	d := newTestDetector(t, engine)

	if _, err := d.Recognize(make([]uint32, 4)); !errors.Is(err, ErrInvoke) {
		t.Errorf("Expected ErrInvoke, got %v", err)
	}

	if !engine.lastSession().closed {
		t.Errorf("Session must be released on failure")
	}
}

func TestRecognizeInputSize(t *testing.T) {

	engine := &fakeEngine{outputs: ssdOutputs(nil, nil, nil, 0)}
	d := newTestDetector(t, engine)

	for _, n := range []int{0, 3, 5, 16} {
		if _, err := d.Recognize(make([]uint32, n)); !errors.Is(err, ErrInputSize) {
			t.Errorf("%d pixels: expected ErrInputSize, got %v", n, err)
		}
	}

	if len(engine.sessions) != 0 {
		t.Errorf("No session should be created for bad input, got %d", len(engine.sessions))
	}
}

func TestRecognizeMissingOutputs(t *testing.T) {

	engine := &fakeEngine{outputs: [][]float32{{0.1, 0.1, 0.2, 0.2}, {0}}}
	d := newTestDetector(t, engine)

	if _, err := d.Recognize(make([]uint32, 4)); !errors.Is(err, ErrOutputInvalid) {
		t.Errorf("Expected ErrOutputInvalid, got %v", err)
	}

	if !engine.lastSession().closed {
		t.Errorf("Session must be released on failure")
	}
}

func TestRecognizeCustomThreshold(t *testing.T) {

	engine := &fakeEngine{
		outputs: ssdOutputs(
			[][4]float32{{}, {}},
			[]float32{0, 1},
			[]float32{0.45, 0.35},
			2,
		),
	}

	d := newTestDetector(t, engine, WithMinScore(0.4), WithLabelOffset(2))
	dets := recognize(t, d)

	if len(dets) != 1 || dets[0].Label != "bicycle" {
		t.Errorf("Expected a single bicycle, got %+v", dets)
	}
}

func TestClose(t *testing.T) {

	engine := &fakeEngine{}
	d := newTestDetector(t, engine)
	model := d.model.(*fakeModel)

	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if !model.closed {
		t.Errorf("Model not closed")
	}

	if d.Initialized() {
		t.Errorf("Detector still initialized after Close")
	}

	if _, err := d.Recognize(make([]uint32, 4)); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}

	// closing twice is harmless
	if err := d.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}

	// and the detector can be initialized again
	if err := d.Initialize(bytes.NewReader(testModel), strings.NewReader(testLabels)); err != nil {
		t.Fatalf("Initialize after Close failed: %v", err)
	}

	if engine.loads != 2 {
		t.Errorf("Expected 2 loads, got %d", engine.loads)
	}
}

func TestQuery(t *testing.T) {

	engine := &fakeEngine{}
	d := newTestDetector(t, engine, WithNumThreads(2))

	var buf bytes.Buffer

	if err := d.Query(&buf); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	out := buf.String()

	expected := []string{
		"Model Input Number: 1, Output Number: 4",
		"Labels: 4, Label Offset: 1, Min Score: 0.60, Threads: 2",
		"name=normalized_input_image_tensor, n_dims=4, dims=[1, 2, 2, 3], n_elems=12",
		"TFLite_Detection_PostProcess:3",
	}

	for _, s := range expected {
		if !strings.Contains(out, s) {
			t.Errorf("Query output missing %q:\n%s", s, out)
		}
	}

	if !engine.lastSession().closed {
		t.Errorf("Query session not closed")
	}
}

func TestQueryNotInitialized(t *testing.T) {

	d := NewDetector(&fakeEngine{})

	if err := d.Query(&bytes.Buffer{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}
