package acllite

/*
#cgo LDFLAGS: -lascendcl
#include "acl/acl.h"
*/
import "C"

// IONumber holds the number of Input and Output tensors of the model
type IONumber struct {
	NumberInput  uint32
	NumberOutput uint32
}

// QueryModelIONumber queries the number of Input and Output tensors of the
// model
func (r *Runtime) QueryModelIONumber() (IONumber, error) {
	return IONumber{
		NumberInput:  uint32(C.aclmdlGetNumInputs(r.modelDesc)),
		NumberOutput: uint32(C.aclmdlGetNumOutputs(r.modelDesc)),
	}, nil
}
