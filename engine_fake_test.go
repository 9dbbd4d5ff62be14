package tflitedetect

import (
	"fmt"
	"sync"
)

// testModel carries the TFLite identifier after the root table offset
var testModel = []byte("\x1c\x00\x00\x00TFL3 ssd test model")

const testLabels = "???\nperson\nbicycle\ncar\n"

// fakeEngine is an in-memory Engine recording how the Detector drives it
type fakeEngine struct {
	mu sync.Mutex

	loads    int
	sessions []*fakeSession

	allocErr  error
	invokeErr error
	outputs   [][]float32
}

type fakeModel struct {
	data   []byte
	closed bool
}

type fakeSession struct {
	engine    *fakeEngine
	model     *fakeModel
	threads   int
	allocated bool
	invoked   bool
	closed    bool
	input     []byte
}

func (e *fakeEngine) LoadModel(data []byte) (Model, error) {

	if !CheckModelIdentifier(data) {
		return nil, fmt.Errorf("%w: fake engine", ErrModelIdentifier)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.loads++

	return &fakeModel{data: data}, nil
}

func (e *fakeEngine) NewSession(model Model, numThreads int) (Session, error) {

	m, ok := model.(*fakeModel)

	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", model)
	}

	s := &fakeSession{engine: e, model: m, threads: numThreads}

	e.mu.Lock()
	e.sessions = append(e.sessions, s)
	e.mu.Unlock()

	return s, nil
}

func (e *fakeEngine) lastSession() *fakeSession {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.sessions) == 0 {
		return nil
	}

	return e.sessions[len(e.sessions)-1]
}

func (m *fakeModel) Close() error {
	m.closed = true
	return nil
}

func (s *fakeSession) AllocateTensors() error {

	if s.engine.allocErr != nil {
		return s.engine.allocErr
	}

	s.allocated = true
	return nil
}

func (s *fakeSession) SetInput(data []byte) error {
	s.input = append([]byte(nil), data...)
	return nil
}

func (s *fakeSession) Invoke() error {

	if s.engine.invokeErr != nil {
		return s.engine.invokeErr
	}

	s.invoked = true
	return nil
}

func (s *fakeSession) Outputs() ([][]float32, error) {
	return s.engine.outputs, nil
}

func (s *fakeSession) InputTensors() []TensorAttr {
	return []TensorAttr{
		{Index: 0, Name: "normalized_input_image_tensor", Dims: []int{1, 2, 2, 3},
			Size: 12, Type: TensorUint8, Scale: 0.0078125, ZP: 128},
	}
}

func (s *fakeSession) OutputTensors() []TensorAttr {
	return []TensorAttr{
		{Index: 0, Name: "TFLite_Detection_PostProcess", Dims: []int{1, 10, 4}, Size: 160, Type: TensorFloat32},
		{Index: 1, Name: "TFLite_Detection_PostProcess:1", Dims: []int{1, 10}, Size: 40, Type: TensorFloat32},
		{Index: 2, Name: "TFLite_Detection_PostProcess:2", Dims: []int{1, 10}, Size: 40, Type: TensorFloat32},
		{Index: 3, Name: "TFLite_Detection_PostProcess:3", Dims: []int{1}, Size: 4, Type: TensorFloat32},
	}
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// ssdOutputs builds the four SSD output tensors from per detection values
func ssdOutputs(boxes [][4]float32, classes, scores []float32, count float32) [][]float32 {

	flat := make([]float32, 0, len(boxes)*4)

	for _, b := range boxes {
		flat = append(flat, b[:]...)
	}

	return [][]float32{flat, classes, scores, {count}}
}
