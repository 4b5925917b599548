package acllite

/*
#cgo LDFLAGS: -lascendcl
#include "acl/acl.h"
#include <stdlib.h>
*/
import "C"
import (
	"fmt"
	"time"
	"unsafe"
)

// Input defines a single host side input buffer for inference
type Input struct {
	// Index is the input index
	Index uint32
	// Buf is a pointer to the host data to copy to the device
	Buf unsafe.Pointer
	// Size is the number of bytes of Buf
	Size uint32
}

// Output holds a single model output copied back from the device
type Output struct {
	// Index is the output index
	Index uint32
	// Size is the size of the output buffer in bytes
	Size uint32
	// Type is the on device data type of the output tensor
	Type TensorType
	// BufFloat is the output data as float32.  Populated for FP32 outputs
	// and for FP16 outputs when the runtime wantFloat option is set
	BufFloat []float32
	// BufFloat16 is the raw fp16 bit pattern of the output, populated for
	// FP16 outputs when wantFloat is disabled
	BufFloat16 []uint16
	// BufInt32 is the output data as int32, populated for INT32 outputs
	BufInt32 []int32
}

// Outputs is the result set of a single inference run
type Outputs struct {
	Output []Output
	// Duration is the wall time of the on device model execution
	Duration time.Duration
}

// Inference runs the model forward pass on the given inputs.  Each inputs
// element feeds the model input of the same index.  Host data is provided
// as float32 and converted to fp16 automatically when the model input
// tensor is FP16.
func (r *Runtime) Inference(inputs [][]float32) (*Outputs, error) {

	if len(inputs) != int(r.ioNum.NumberInput) {
		return nil, fmt.Errorf("model expects %d inputs, got %d",
			r.ioNum.NumberInput, len(inputs))
	}

	raw := make([]Input, len(inputs))

	for idx, data := range inputs {

		attr := r.inputAttrs[idx]

		if uint32(len(data)) != attr.NElems {
			return nil, fmt.Errorf("input %d expects %d elements, got %d",
				idx, attr.NElems, len(data))
		}

		switch attr.Type {
		case TensorFloat32:
			raw[idx] = Input{
				Index: uint32(idx),
				Buf:   unsafe.Pointer(&data[0]),
				// multiply by 4 for size of float32
				Size: uint32(len(data) * 4),
			}

		case TensorFloat16:
			// encode to fp16 using the reusable staging buffer
			enc := r.staging.EncodeFloat16(idx, data)

			raw[idx] = Input{
				Index: uint32(idx),
				Buf:   unsafe.Pointer(&enc[0]),
				// multiply by 2 for size of fp16
				Size: uint32(len(enc) * 2),
			}

		default:
			return nil, fmt.Errorf("input %d has unsupported tensor type %s",
				idx, attr.Type.String())
		}
	}

	return r.Execute(raw)
}

// Execute runs the model on pre-marshalled host buffers.  Most callers
// should use Inference instead.
func (r *Runtime) Execute(inputs []Input) (*Outputs, error) {

	if len(inputs) != int(r.ioNum.NumberInput) {
		return nil, fmt.Errorf("model expects %d inputs, got %d",
			r.ioNum.NumberInput, len(inputs))
	}

	err := r.setCurrentContext()

	if err != nil {
		return nil, err
	}

	// build the device resident input dataset
	inDS := C.aclmdlCreateDataset()

	if inDS == nil {
		return nil, fmt.Errorf("C.aclmdlCreateDataset returned nil")
	}

	defer destroyDataset(inDS)

	for i, input := range inputs {

		attr := r.inputAttrs[i]

		if input.Size != attr.Size {
			return nil, fmt.Errorf("input %d expects %d bytes, got %d",
				i, attr.Size, input.Size)
		}

		err = appendDeviceBuffer(inDS, input.Buf, input.Size)

		if err != nil {
			return nil, fmt.Errorf("error staging input %d: %w", i, err)
		}
	}

	// build the device resident output dataset
	outDS := C.aclmdlCreateDataset()

	if outDS == nil {
		return nil, fmt.Errorf("C.aclmdlCreateDataset returned nil")
	}

	defer destroyDataset(outDS)

	for i, attr := range r.outputAttrs {

		err = appendDeviceBuffer(outDS, nil, attr.Size)

		if err != nil {
			return nil, fmt.Errorf("error allocating output %d: %w", i, err)
		}
	}

	// run the model
	start := time.Now()

	ret := C.aclmdlExecute(r.modelID, inDS, outDS)

	if ret != C.ACL_ERROR_NONE {
		return nil, fmt.Errorf("C.aclmdlExecute failed with code %d, error: %s",
			int(ret), ErrorCodes(ret).String())
	}

	dur := time.Since(start)

	// copy outputs back to host memory
	outputs := &Outputs{
		Output:   make([]Output, r.ioNum.NumberOutput),
		Duration: dur,
	}

	for i := range r.outputAttrs {
		out, err := r.copyOutput(outDS, uint32(i))

		if err != nil {
			return nil, err
		}

		outputs.Output[i] = out
	}

	return outputs, nil
}

// appendDeviceBuffer allocates a device buffer of the given size, copies
// the host data into it when provided, and adds it to the dataset.  The
// device memory is owned by the dataset and released by destroyDataset.
func appendDeviceBuffer(ds *C.aclmdlDataset, hostBuf unsafe.Pointer,
	size uint32) error {

	var devPtr unsafe.Pointer

	ret := C.aclrtMalloc(&devPtr, C.size_t(size), C.ACL_MEM_MALLOC_HUGE_FIRST)

	if ret != C.ACL_ERROR_NONE {
		return fmt.Errorf("C.aclrtMalloc failed with code %d, error: %s",
			int(ret), ErrorCodes(ret).String())
	}

	if hostBuf != nil {
		ret = C.aclrtMemcpy(devPtr, C.size_t(size), hostBuf, C.size_t(size),
			C.ACL_MEMCPY_HOST_TO_DEVICE)

		if ret != C.ACL_ERROR_NONE {
			C.aclrtFree(devPtr)
			return fmt.Errorf("C.aclrtMemcpy host to device failed with code %d, error: %s",
				int(ret), ErrorCodes(ret).String())
		}
	}

	buf := C.aclCreateDataBuffer(devPtr, C.size_t(size))

	if buf == nil {
		C.aclrtFree(devPtr)
		return fmt.Errorf("C.aclCreateDataBuffer returned nil")
	}

	ret = C.aclmdlAddDatasetBuffer(ds, buf)

	if ret != C.ACL_ERROR_NONE {
		C.aclrtFree(devPtr)
		C.aclDestroyDataBuffer(buf)
		return fmt.Errorf("C.aclmdlAddDatasetBuffer failed with code %d, error: %s",
			int(ret), ErrorCodes(ret).String())
	}

	return nil
}

// copyOutput copies a single output buffer from the device into Go owned
// memory, converting fp16 data to float32 when wantFloat is set
func (r *Runtime) copyOutput(outDS *C.aclmdlDataset, idx uint32) (Output, error) {

	attr := r.outputAttrs[idx]

	buf := C.aclmdlGetDatasetBuffer(outDS, C.size_t(idx))

	if buf == nil {
		return Output{}, fmt.Errorf("output %d missing from dataset", idx)
	}

	devPtr := C.aclGetDataBufferAddr(buf)
	size := uint32(C.aclGetDataBufferSizeV2(buf))

	out := Output{
		Index: idx,
		Size:  size,
		Type:  attr.Type,
	}

	copyBack := func(hostPtr unsafe.Pointer) error {
		ret := C.aclrtMemcpy(hostPtr, C.size_t(size), devPtr, C.size_t(size),
			C.ACL_MEMCPY_DEVICE_TO_HOST)

		if ret != C.ACL_ERROR_NONE {
			return fmt.Errorf("C.aclrtMemcpy device to host failed with code %d, error: %s",
				int(ret), ErrorCodes(ret).String())
		}

		return nil
	}

	switch attr.Type {
	case TensorFloat32:
		data := make([]float32, size/4)

		if err := copyBack(unsafe.Pointer(&data[0])); err != nil {
			return Output{}, err
		}

		out.BufFloat = data

	case TensorFloat16:
		data := make([]uint16, size/2)

		if err := copyBack(unsafe.Pointer(&data[0])); err != nil {
			return Output{}, err
		}

		if r.wantFloat {
			out.BufFloat = convertFloat16BufferToFloat32(data)
		} else {
			out.BufFloat16 = data
		}

	case TensorInt32:
		data := make([]int32, size/4)

		if err := copyBack(unsafe.Pointer(&data[0])); err != nil {
			return Output{}, err
		}

		out.BufInt32 = data

	default:
		return Output{}, fmt.Errorf("output %d has unsupported tensor type %s",
			idx, attr.Type.String())
	}

	return out, nil
}

// destroyDataset releases a dataset along with its data buffers and the
// device memory they point at
func destroyDataset(ds *C.aclmdlDataset) {

	if ds == nil {
		return
	}

	n := C.aclmdlGetDatasetNumBuffers(ds)

	for i := C.size_t(0); i < n; i++ {
		buf := C.aclmdlGetDatasetBuffer(ds, i)

		if buf == nil {
			continue
		}

		devPtr := C.aclGetDataBufferAddr(buf)

		if devPtr != nil {
			C.aclrtFree(devPtr)
		}

		C.aclDestroyDataBuffer(buf)
	}

	C.aclmdlDestroyDataset(ds)
}
