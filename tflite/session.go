//go:build cgo

package tflite

import (
	"fmt"

	gotflite "github.com/mattn/go-tflite"
	"github.com/swdee/go-tflitedetect"
)

// float16Type is the TFLite C API kTfLiteFloat16 type which go-tflite does
// not define a constant for
const float16Type = gotflite.TensorType(10)

// Session is a TFLite interpreter bound to a single model
type Session struct {
	interpreter *gotflite.Interpreter
	options     *gotflite.InterpreterOptions
	// floatInput is a scratch buffer for models taking float32 input
	floatInput []float32
}

// AllocateTensors allocates the interpreter input and output tensors
func (s *Session) AllocateTensors() error {

	if status := s.interpreter.AllocateTensors(); status != gotflite.OK {
		return fmt.Errorf("%w: status=%v", tflitedetect.ErrTensorAllocation, status)
	}

	return nil
}

// SetInput copies the RGB byte data into input tensor 0.  Quantized models
// take the bytes as is, float models receive them normalized to [-1,1]
func (s *Session) SetInput(data []byte) error {

	input := s.interpreter.GetInputTensor(0)

	if input == nil {
		return fmt.Errorf("%w: model has no input tensor", tflitedetect.ErrInputSize)
	}

	var status gotflite.Status

	switch input.Type() {
	case gotflite.Float32:
		if int(input.ByteSize()) != len(data)*4 {
			return fmt.Errorf("%w: tensor takes %d bytes, got %d float32 values",
				tflitedetect.ErrInputSize, input.ByteSize(), len(data))
		}

		if len(s.floatInput) != len(data) {
			s.floatInput = make([]float32, len(data))
		}

		for i, v := range data {
			s.floatInput[i] = (float32(v) - 127.5) / 127.5
		}

		status = input.CopyFromBuffer(s.floatInput)

	default:
		if int(input.ByteSize()) != len(data) {
			return fmt.Errorf("%w: tensor takes %d bytes, got %d",
				tflitedetect.ErrInputSize, input.ByteSize(), len(data))
		}

		status = input.CopyFromBuffer(data)
	}

	if status != gotflite.OK {
		return fmt.Errorf("copying to input tensor failed: status=%v", status)
	}

	return nil
}

// Invoke runs the interpreter
func (s *Session) Invoke() error {

	if status := s.interpreter.Invoke(); status != gotflite.OK {
		return fmt.Errorf("%w: status=%v", tflitedetect.ErrInvoke, status)
	}

	return nil
}

// Outputs copies every output tensor out of the interpreter converting
// the values to float32.  Quantized tensors are dequantized with their
// scale and zero point
func (s *Session) Outputs() ([][]float32, error) {

	count := s.interpreter.GetOutputTensorCount()
	outputs := make([][]float32, count)

	for i := 0; i < count; i++ {
		tensor := s.interpreter.GetOutputTensor(i)

		if tensor == nil {
			return nil, fmt.Errorf("%w: output tensor %d missing",
				tflitedetect.ErrOutputInvalid, i)
		}

		out, err := tensorFloat32s(tensor)

		if err != nil {
			return nil, fmt.Errorf("output tensor %d: %w", i, err)
		}

		outputs[i] = out
	}

	return outputs, nil
}

// tensorFloat32s copies the tensor data and converts it to float32
func tensorFloat32s(tensor *gotflite.Tensor) ([]float32, error) {

	size := int(tensor.ByteSize())
	var status gotflite.Status

	switch tensor.Type() {
	case gotflite.Float32:
		buf := make([]float32, size/4)
		status = tensor.CopyToBuffer(buf)

		if status == gotflite.OK {
			return buf, nil
		}

	case float16Type:
		buf := make([]uint16, size/2)
		status = tensor.CopyToBuffer(buf)

		if status == gotflite.OK {
			return float16ToFloat32(buf), nil
		}

	case gotflite.UInt8:
		buf := make([]uint8, size)
		status = tensor.CopyToBuffer(buf)

		if status == gotflite.OK {
			q := tensor.QuantizationParams()
			return dequantizeUint8(buf, int32(q.ZeroPoint), float32(q.Scale)), nil
		}

	case gotflite.Int8:
		buf := make([]int8, size)
		status = tensor.CopyToBuffer(buf)

		if status == gotflite.OK {
			q := tensor.QuantizationParams()
			return dequantizeInt8(buf, int32(q.ZeroPoint), float32(q.Scale)), nil
		}

	case gotflite.Int32:
		buf := make([]int32, size/4)
		status = tensor.CopyToBuffer(buf)

		if status == gotflite.OK {
			out := make([]float32, len(buf))

			for i, v := range buf {
				out[i] = float32(v)
			}

			return out, nil
		}

	default:
		return nil, fmt.Errorf("%w: unsupported tensor type %v",
			tflitedetect.ErrOutputInvalid, tensor.Type())
	}

	return nil, fmt.Errorf("copying from output tensor failed: status=%v", status)
}

// InputTensors returns the attributes of the interpreter input tensors
func (s *Session) InputTensors() []tflitedetect.TensorAttr {

	count := s.interpreter.GetInputTensorCount()
	attrs := make([]tflitedetect.TensorAttr, 0, count)

	for i := 0; i < count; i++ {
		attrs = append(attrs, tensorAttr(i, s.interpreter.GetInputTensor(i)))
	}

	return attrs
}

// OutputTensors returns the attributes of the interpreter output tensors
func (s *Session) OutputTensors() []tflitedetect.TensorAttr {

	count := s.interpreter.GetOutputTensorCount()
	attrs := make([]tflitedetect.TensorAttr, 0, count)

	for i := 0; i < count; i++ {
		attrs = append(attrs, tensorAttr(i, s.interpreter.GetOutputTensor(i)))
	}

	return attrs
}

// Close deletes the interpreter and its options
func (s *Session) Close() error {

	if s.interpreter != nil {
		s.interpreter.Delete()
		s.interpreter = nil
	}

	if s.options != nil {
		s.options.Delete()
		s.options = nil
	}

	return nil
}

func tensorAttr(index int, tensor *gotflite.Tensor) tflitedetect.TensorAttr {

	attr := tflitedetect.TensorAttr{
		Index: index,
	}

	if tensor == nil {
		return attr
	}

	attr.Name = tensor.Name()
	attr.Size = int(tensor.ByteSize())
	attr.Type = convertType(tensor.Type())

	attr.Dims = make([]int, tensor.NumDims())

	for i := range attr.Dims {
		attr.Dims[i] = tensor.Dim(i)
	}

	q := tensor.QuantizationParams()
	attr.Scale = float32(q.Scale)
	attr.ZP = int32(q.ZeroPoint)

	return attr
}

// convertType maps TFLite tensor types to tflitedetect ones
func convertType(t gotflite.TensorType) tflitedetect.TensorType {

	switch t {
	case gotflite.Float32:
		return tflitedetect.TensorFloat32
	case float16Type:
		return tflitedetect.TensorFloat16
	case gotflite.Int8:
		return tflitedetect.TensorInt8
	case gotflite.UInt8:
		return tflitedetect.TensorUint8
	case gotflite.Int16:
		return tflitedetect.TensorInt16
	case gotflite.Int32:
		return tflitedetect.TensorInt32
	case gotflite.Int64:
		return tflitedetect.TensorInt64
	case gotflite.Bool:
		return tflitedetect.TensorBool
	default:
		return tflitedetect.TensorUnknown
	}
}
