package tflitedetect

import (
	"fmt"
	"strings"
)

// TensorType is the element type of a tensor
type TensorType int

const (
	TensorUnknown TensorType = iota
	TensorFloat32
	TensorFloat16
	TensorInt8
	TensorUint8
	TensorInt16
	TensorInt32
	TensorInt64
	TensorBool
)

// TensorAttr describes a model input or output tensor
type TensorAttr struct {
	Index int
	Name  string
	Dims  []int
	// Size is the number of bytes of the tensor data
	Size  int
	Type  TensorType
	Scale float32
	ZP    int32
}

// NElems returns the number of elements in the tensor
func (a TensorAttr) NElems() int {

	if len(a.Dims) == 0 {
		return 0
	}

	n := 1

	for _, d := range a.Dims {
		n *= d
	}

	return n
}

// String returns the TensorAttr's attributes formatted as a string
func (a TensorAttr) String() string {

	dims := make([]string, len(a.Dims))

	for i, d := range a.Dims {
		dims[i] = fmt.Sprintf("%d", d)
	}

	return fmt.Sprintf("index=%d, name=%s, n_dims=%d, dims=[%s], n_elems=%d, "+
		"size=%d, type=%s, zp=%d, scale=%f",
		a.Index, a.Name, len(a.Dims), strings.Join(dims, ", "), a.NElems(),
		a.Size, a.Type.String(), a.ZP, a.Scale,
	)
}

// String returns a readable description of the TensorType
func (t TensorType) String() string {
	switch t {
	case TensorFloat32:
		return "FP32"
	case TensorFloat16:
		return "FP16"
	case TensorInt8:
		return "INT8"
	case TensorUint8:
		return "UINT8"
	case TensorInt16:
		return "INT16"
	case TensorInt32:
		return "INT32"
	case TensorInt64:
		return "INT64"
	case TensorBool:
		return "BOOL"
	default:
		return "UNKNOW"
	}
}
