/*
go-acllite provides Go language bindings for the Huawei Ascend CANN ACL
inference C API.  It aims to provide lite bindings in the spirit of the
MxBase C++ samples used for running AI inference models on the Ascend NPU
via the CANN software stack.

The bindings cover device and model lifecycle, tensor marshalling between
host and device, and model execution.  The postprocess and preprocess
subdirectories carry the graph convolutional network named entity
recognition pipeline built on top of these bindings.

These bindings have been written against the Ascend 310 series (Atlas 200
DK and Atlas 300 inference cards).

See example code and usage in the example subdirectory.
*/
package acllite
