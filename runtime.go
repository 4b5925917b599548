package acllite

/*
#cgo LDFLAGS: -lascendcl
#include "acl/acl.h"
#include <stdlib.h>
*/
import "C"
import (
	"fmt"
	"os"
	"sync"
	"unsafe"
)

// ErrorCodes wraps the aclError status values returned by the C API
type ErrorCodes int

// error code values returned by the C API
const (
	Success              ErrorCodes = C.ACL_ERROR_NONE
	ErrInvalidParam      ErrorCodes = C.ACL_ERROR_INVALID_PARAM
	ErrUninitialize      ErrorCodes = C.ACL_ERROR_UNINITIALIZE
	ErrRepeatInitialize  ErrorCodes = C.ACL_ERROR_REPEAT_INITIALIZE
	ErrInvalidFile       ErrorCodes = C.ACL_ERROR_INVALID_FILE
	ErrParseFile         ErrorCodes = C.ACL_ERROR_PARSE_FILE
	ErrInvalidModelID    ErrorCodes = C.ACL_ERROR_INVALID_MODEL_ID
	ErrParseModel        ErrorCodes = C.ACL_ERROR_PARSE_MODEL
	ErrReadModelFailure  ErrorCodes = C.ACL_ERROR_READ_MODEL_FAILURE
	ErrModelSizeInvalid  ErrorCodes = C.ACL_ERROR_MODEL_SIZE_INVALID
	ErrModelInputMissed  ErrorCodes = C.ACL_ERROR_MODEL_INPUT_NOT_MATCH
	ErrModelOutputMissed ErrorCodes = C.ACL_ERROR_MODEL_OUTPUT_NOT_MATCH
	ErrBadAlloc          ErrorCodes = C.ACL_ERROR_BAD_ALLOC
	ErrAPINotSupport     ErrorCodes = C.ACL_ERROR_API_NOT_SUPPORT
	ErrInvalidDevice     ErrorCodes = C.ACL_ERROR_INVALID_DEVICE
	ErrMemoryUnaligned   ErrorCodes = C.ACL_ERROR_MEMORY_ADDRESS_UNALIGNED
	ErrResourceNotMatch  ErrorCodes = C.ACL_ERROR_RESOURCE_NOT_MATCH
	ErrInvalidResource   ErrorCodes = C.ACL_ERROR_INVALID_RESOURCE_HANDLE
	ErrFeatureUnsupport  ErrorCodes = C.ACL_ERROR_FEATURE_UNSUPPORTED
	ErrInternalError     ErrorCodes = C.ACL_ERROR_INTERNAL_ERROR
	ErrFailure           ErrorCodes = C.ACL_ERROR_FAILURE
	ErrGEFailure         ErrorCodes = C.ACL_ERROR_GE_FAILURE
	ErrRTFailure         ErrorCodes = C.ACL_ERROR_RT_FAILURE
	ErrDRVFailure        ErrorCodes = C.ACL_ERROR_DRV_FAILURE
)

// String returns a readable description of the error code
func (e ErrorCodes) String() string {
	switch e {
	case Success:
		return "execution successful"
	case ErrInvalidParam:
		return "parameter is invalid"
	case ErrUninitialize:
		return "acl has not been initialized"
	case ErrRepeatInitialize:
		return "acl has already been initialized"
	case ErrInvalidFile:
		return "file is invalid"
	case ErrParseFile:
		return "failed to parse file"
	case ErrInvalidModelID:
		return "model id is invalid"
	case ErrParseModel:
		return "failed to parse model"
	case ErrReadModelFailure:
		return "failed to read model file"
	case ErrModelSizeInvalid:
		return "model size is invalid"
	case ErrModelInputMissed:
		return "input does not match the model"
	case ErrModelOutputMissed:
		return "output does not match the model"
	case ErrBadAlloc:
		return "memory allocation failed"
	case ErrAPINotSupport:
		return "api is not supported on this platform"
	case ErrInvalidDevice:
		return "device is invalid or unavailable"
	case ErrMemoryUnaligned:
		return "memory address is not aligned"
	case ErrResourceNotMatch:
		return "resource does not match"
	case ErrInvalidResource:
		return "resource handle is invalid"
	case ErrFeatureUnsupport:
		return "feature is not supported"
	case ErrInternalError:
		return "internal error"
	case ErrFailure:
		return "execution failed"
	case ErrGEFailure:
		return "graph engine failure"
	case ErrRTFailure:
		return "runtime failure"
	case ErrDRVFailure:
		return "driver failure"
	default:
		return fmt.Sprintf("unknown error code %d", e)
	}
}

// aclLifecycle guards the process wide aclInit/aclFinalize pair.  The ACL
// library must be initialized exactly once before any device call and
// finalized after the last Runtime has been closed.
var aclLifecycle struct {
	sync.Mutex
	refs int
}

// acquireACL initializes the ACL library on first use and increments the
// live handle count
func acquireACL() error {
	aclLifecycle.Lock()
	defer aclLifecycle.Unlock()

	if aclLifecycle.refs == 0 {
		ret := C.aclInit(nil)

		if ret != C.ACL_ERROR_NONE {
			return fmt.Errorf("C.aclInit failed with code %d, error: %s",
				int(ret), ErrorCodes(ret).String())
		}
	}

	aclLifecycle.refs++
	return nil
}

// releaseACL decrements the live handle count and finalizes the ACL library
// when the last Runtime closes
func releaseACL() error {
	aclLifecycle.Lock()
	defer aclLifecycle.Unlock()

	if aclLifecycle.refs == 0 {
		return nil
	}

	aclLifecycle.refs--

	if aclLifecycle.refs == 0 {
		ret := C.aclFinalize()

		if ret != C.ACL_ERROR_NONE {
			return fmt.Errorf("C.aclFinalize failed with code %d, error: %s",
				int(ret), ErrorCodes(ret).String())
		}
	}

	return nil
}

// Runtime defines an ACL run time instance holding a device bound model
type Runtime struct {
	// deviceID is the NPU device the model is loaded on
	deviceID int32
	// context is the ACL device context
	context C.aclrtContext
	// stream is the ACL execution stream
	stream C.aclrtStream
	// modelID is the handle of the loaded offline model
	modelID C.uint32_t
	// modelDesc describes the loaded model's tensors
	modelDesc *C.aclmdlDesc
	// ioNum caches the number of model Input/Output tensors
	ioNum IONumber
	// inputAttrs caches the Input Tensor attributes of the Model
	inputAttrs []TensorAttr
	// outputAttrs caches the Output Tensor attributes of the Model
	outputAttrs []TensorAttr
	// wantFloat indicates if fp16 Outputs are converted to float32.
	// default option is True
	wantFloat bool
	// staging holds reusable host side scratch buffers for fp16 input
	// encoding
	staging *Staging
}

// NewRuntime returns an ACL run time instance.  Provide the full path and
// filename of the compiled offline model (.om) file to run and the NPU
// device id to load it onto.
func NewRuntime(modelFile string, deviceID int32) (*Runtime, error) {

	r := &Runtime{
		deviceID:  deviceID,
		wantFloat: true,
	}

	err := acquireACL()

	if err != nil {
		return nil, err
	}

	err = r.init(modelFile)

	if err != nil {
		// release whatever device resources were created before the failure
		_ = r.Close()
		return nil, err
	}

	// cache IONumber
	r.ioNum = IONumber{
		NumberInput:  uint32(C.aclmdlGetNumInputs(r.modelDesc)),
		NumberOutput: uint32(C.aclmdlGetNumOutputs(r.modelDesc)),
	}

	// query Input tensors
	r.inputAttrs, err = r.QueryInputTensors()

	if err != nil {
		_ = r.Close()
		return nil, err
	}

	// query Output tensors
	r.outputAttrs, err = r.QueryOutputTensors()

	if err != nil {
		_ = r.Close()
		return nil, err
	}

	r.staging = NewStaging(int(r.ioNum.NumberInput))

	return r, nil
}

// init binds the device, creates the context and stream, and loads the
// model file
func (r *Runtime) init(modelFile string) error {

	// check file exists in Go, before passing to C
	info, err := os.Stat(modelFile)

	if err != nil {
		return fmt.Errorf("model file does not exist at %s, error: %w",
			modelFile, err)
	}

	if info.IsDir() {
		return fmt.Errorf("model file is a directory")
	}

	ret := C.aclrtSetDevice(C.int32_t(r.deviceID))

	if ret != C.ACL_ERROR_NONE {
		return fmt.Errorf("C.aclrtSetDevice failed with code %d, error: %s",
			int(ret), ErrorCodes(ret).String())
	}

	ret = C.aclrtCreateContext(&r.context, C.int32_t(r.deviceID))

	if ret != C.ACL_ERROR_NONE {
		return fmt.Errorf("C.aclrtCreateContext failed with code %d, error: %s",
			int(ret), ErrorCodes(ret).String())
	}

	ret = C.aclrtCreateStream(&r.stream)

	if ret != C.ACL_ERROR_NONE {
		return fmt.Errorf("C.aclrtCreateStream failed with code %d, error: %s",
			int(ret), ErrorCodes(ret).String())
	}

	// convert the Go string to a C string
	cModelFile := C.CString(modelFile)
	defer C.free(unsafe.Pointer(cModelFile))

	ret = C.aclmdlLoadFromFile(cModelFile, &r.modelID)

	if ret != C.ACL_ERROR_NONE {
		return fmt.Errorf("C.aclmdlLoadFromFile call failed with code %d, error: %s",
			int(ret), ErrorCodes(ret).String())
	}

	r.modelDesc = C.aclmdlCreateDesc()

	if r.modelDesc == nil {
		return fmt.Errorf("C.aclmdlCreateDesc returned nil")
	}

	ret = C.aclmdlGetDesc(r.modelDesc, r.modelID)

	if ret != C.ACL_ERROR_NONE {
		return fmt.Errorf("C.aclmdlGetDesc failed with code %d, error: %s",
			int(ret), ErrorCodes(ret).String())
	}

	return nil
}

// setCurrentContext binds the runtime's device context to the calling
// thread.  Needed as Go may schedule calls across OS threads.
func (r *Runtime) setCurrentContext() error {

	ret := C.aclrtSetCurrentContext(r.context)

	if ret != C.ACL_ERROR_NONE {
		return fmt.Errorf("C.aclrtSetCurrentContext failed with code %d, error: %s",
			int(ret), ErrorCodes(ret).String())
	}

	return nil
}

// Close unloads the model from the device, destroys the context and stream
// releasing all device resources
func (r *Runtime) Close() error {

	var firstErr error

	if r.modelDesc != nil {
		ret := C.aclmdlDestroyDesc(r.modelDesc)

		if ret != C.ACL_ERROR_NONE && firstErr == nil {
			firstErr = fmt.Errorf("C.aclmdlDestroyDesc failed with code %d, error: %s",
				int(ret), ErrorCodes(ret).String())
		}

		r.modelDesc = nil
	}

	if r.modelID != 0 {
		ret := C.aclmdlUnload(r.modelID)

		if ret != C.ACL_ERROR_NONE && firstErr == nil {
			firstErr = fmt.Errorf("C.aclmdlUnload failed with code %d, error: %s",
				int(ret), ErrorCodes(ret).String())
		}

		r.modelID = 0
	}

	if r.stream != nil {
		ret := C.aclrtDestroyStream(r.stream)

		if ret != C.ACL_ERROR_NONE && firstErr == nil {
			firstErr = fmt.Errorf("C.aclrtDestroyStream failed with code %d, error: %s",
				int(ret), ErrorCodes(ret).String())
		}

		r.stream = nil
	}

	if r.context != nil {
		ret := C.aclrtDestroyContext(r.context)

		if ret != C.ACL_ERROR_NONE && firstErr == nil {
			firstErr = fmt.Errorf("C.aclrtDestroyContext failed with code %d, error: %s",
				int(ret), ErrorCodes(ret).String())
		}

		r.context = nil
	}

	ret := C.aclrtResetDevice(C.int32_t(r.deviceID))

	if ret != C.ACL_ERROR_NONE && firstErr == nil {
		firstErr = fmt.Errorf("C.aclrtResetDevice failed with code %d, error: %s",
			int(ret), ErrorCodes(ret).String())
	}

	err := releaseACL()

	if err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

// SetWantFloat defines if fp16 Output tensors are converted to float32 for
// post processing, or left as raw fp16 bits
func (r *Runtime) SetWantFloat(val bool) {
	r.wantFloat = val
}

// DeviceID returns the NPU device the model is loaded on
func (r *Runtime) DeviceID() int32 {
	return r.deviceID
}

// Version represents the CANN runtime version triple
type Version struct {
	Major int32
	Minor int32
	Patch int32
	// SocName is the name of the NPU SoC the process is running against
	SocName string
}

// Version returns the CANN runtime version and SoC name
func (r *Runtime) Version() (Version, error) {

	var major, minor, patch C.int32_t

	ret := C.aclrtGetVersion(&major, &minor, &patch)

	if ret != C.ACL_ERROR_NONE {
		return Version{}, fmt.Errorf("C.aclrtGetVersion failed with code %d, error: %s",
			int(ret), ErrorCodes(ret).String())
	}

	return Version{
		Major:   int32(major),
		Minor:   int32(minor),
		Patch:   int32(patch),
		SocName: C.GoString(C.aclrtGetSocName()),
	}, nil
}

// InputAttrs returns the loaded model's input tensor attributes
func (r *Runtime) InputAttrs() []TensorAttr {
	return r.inputAttrs
}

// OutputAttrs returns the loaded model's output tensor attributes
func (r *Runtime) OutputAttrs() []TensorAttr {
	return r.outputAttrs
}
