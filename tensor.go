package acllite

/*
#cgo LDFLAGS: -lascendcl
#include "acl/acl.h"
#include <stdlib.h>
*/
import "C"
import (
	"fmt"
	"strings"
)

// TensorFormat wraps C.aclFormat
type TensorFormat int

const (
	TensorNCHW      TensorFormat = C.ACL_FORMAT_NCHW
	TensorNHWC      TensorFormat = C.ACL_FORMAT_NHWC
	TensorND        TensorFormat = C.ACL_FORMAT_ND
	TensorNC1HWC0   TensorFormat = C.ACL_FORMAT_NC1HWC0
	TensorFractalZ  TensorFormat = C.ACL_FORMAT_FRACTAL_Z
	TensorUndefined TensorFormat = C.ACL_FORMAT_UNDEFINED
)

// TensorType wraps C.aclDataType
type TensorType int

const (
	TensorFloat32     TensorType = C.ACL_FLOAT
	TensorFloat16     TensorType = C.ACL_FLOAT16
	TensorInt8        TensorType = C.ACL_INT8
	TensorInt32       TensorType = C.ACL_INT32
	TensorUint8       TensorType = C.ACL_UINT8
	TensorInt16       TensorType = C.ACL_INT16
	TensorUint16      TensorType = C.ACL_UINT16
	TensorUint32      TensorType = C.ACL_UINT32
	TensorInt64       TensorType = C.ACL_INT64
	TensorUint64      TensorType = C.ACL_UINT64
	TensorDouble      TensorType = C.ACL_DOUBLE
	TensorBool        TensorType = C.ACL_BOOL
	TensorTypeUnknown TensorType = C.ACL_DT_UNDEFINED
)

// TensorAttr represents the attributes of a single model input or output
// tensor read from the aclmdlDesc
type TensorAttr struct {
	Index  uint32
	Name   string
	NDims  uint32
	Dims   []int64
	NElems uint32
	// Size is the tensor buffer size in bytes on the device
	Size uint32
	Fmt  TensorFormat
	Type TensorType
}

// queryTensorAttr reads a single input or output tensor attribute from the
// model description
func (r *Runtime) queryTensorAttr(idx uint32, output bool) (TensorAttr, error) {

	var cDims C.aclmdlIODims
	var ret C.aclError

	attr := TensorAttr{Index: idx}

	if output {
		ret = C.aclmdlGetOutputDims(r.modelDesc, C.size_t(idx), &cDims)
	} else {
		ret = C.aclmdlGetInputDims(r.modelDesc, C.size_t(idx), &cDims)
	}

	if ret != C.ACL_ERROR_NONE {
		return TensorAttr{}, fmt.Errorf("C.aclmdlGetInputDims/aclmdlGetOutputDims failed with code %d, error: %s",
			int(ret), ErrorCodes(ret).String())
	}

	attr.NDims = uint32(cDims.dimCount)
	attr.Dims = make([]int64, attr.NDims)

	elems := uint32(1)

	for i := uint32(0); i < attr.NDims; i++ {
		attr.Dims[i] = int64(cDims.dims[i])
		elems *= uint32(cDims.dims[i])
	}

	attr.NElems = elems

	attr.Name = C.GoString(&cDims.name[0])

	if output {
		attr.Size = uint32(C.aclmdlGetOutputSizeByIndex(r.modelDesc, C.size_t(idx)))
		attr.Fmt = TensorFormat(C.aclmdlGetOutputFormat(r.modelDesc, C.size_t(idx)))
		attr.Type = TensorType(C.aclmdlGetOutputDataType(r.modelDesc, C.size_t(idx)))
	} else {
		attr.Size = uint32(C.aclmdlGetInputSizeByIndex(r.modelDesc, C.size_t(idx)))
		attr.Fmt = TensorFormat(C.aclmdlGetInputFormat(r.modelDesc, C.size_t(idx)))
		attr.Type = TensorType(C.aclmdlGetInputDataType(r.modelDesc, C.size_t(idx)))
	}

	return attr, nil
}

// QueryInputTensors gets the model Input Tensor attributes
func (r *Runtime) QueryInputTensors() ([]TensorAttr, error) {

	inputAttrs := make([]TensorAttr, r.ioNum.NumberInput)

	for i := uint32(0); i < r.ioNum.NumberInput; i++ {
		attr, err := r.queryTensorAttr(i, false)

		if err != nil {
			return nil, err
		}

		inputAttrs[i] = attr
	}

	return inputAttrs, nil
}

// QueryOutputTensors gets the model Output Tensor attributes
func (r *Runtime) QueryOutputTensors() ([]TensorAttr, error) {

	outputAttrs := make([]TensorAttr, r.ioNum.NumberOutput)

	for i := uint32(0); i < r.ioNum.NumberOutput; i++ {
		attr, err := r.queryTensorAttr(i, true)

		if err != nil {
			return nil, err
		}

		outputAttrs[i] = attr
	}

	return outputAttrs, nil
}

// ElemSize returns the byte size of a single element of the TensorType
func (t TensorType) ElemSize() int {
	switch t {
	case TensorInt8, TensorUint8, TensorBool:
		return 1
	case TensorFloat16, TensorInt16, TensorUint16:
		return 2
	case TensorFloat32, TensorInt32, TensorUint32:
		return 4
	case TensorInt64, TensorUint64, TensorDouble:
		return 8
	default:
		return 0
	}
}

// String returns the TensorAttr's attributes formatted as a string
func (a TensorAttr) String() string {

	dims := make([]string, len(a.Dims))

	for i, d := range a.Dims {
		dims[i] = fmt.Sprintf("%d", d)
	}

	return fmt.Sprintf("index=%d, name=%s, n_dims=%d, dims=[%s], n_elems=%d, "+
		"size=%d, fmt=%s, type=%s",
		a.Index, a.Name, a.NDims, strings.Join(dims, ", "), a.NElems,
		a.Size, a.Fmt.String(), a.Type.String(),
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
	case TensorUint16:
		return "UINT16"
	case TensorInt32:
		return "INT32"
	case TensorUint32:
		return "UINT32"
	case TensorInt64:
		return "INT64"
	case TensorUint64:
		return "UINT64"
	case TensorDouble:
		return "DOUBLE"
	case TensorBool:
		return "BOOL"
	default:
		return "UNKNOW"
	}
}

// String returns a readable description of the TensorFormat
func (t TensorFormat) String() string {
	switch t {
	case TensorNCHW:
		return "NCHW"
	case TensorNHWC:
		return "NHWC"
	case TensorND:
		return "ND"
	case TensorNC1HWC0:
		return "NC1HWC0"
	case TensorFractalZ:
		return "FRACTAL_Z"
	case TensorUndefined:
		return "UNDEFINED"
	default:
		return "UNKNOW"
	}
}
