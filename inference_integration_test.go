//go:build integration
// +build integration

package acllite

import (
	"os"
	"strings"
	"testing"
)

// TestGCNNERInference runs a real model on the device.  Requires the CANN
// toolkit and an Ascend NPU, so it only runs with the integration build
// tag and model paths provided through the environment.
func TestGCNNERInference(t *testing.T) {

	modelFile := os.Getenv("ACL_MODEL")

	if modelFile == "" {
		t.Fatalf("No Model file provided in ACL_MODEL")
	}

	// Initialize runtime
	rt, err := NewRuntime(modelFile, 0)

	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}

	defer rt.Close()

	if rt.InputAttrs()[0].NElems == 0 {
		t.Fatal("input tensor has no elements")
	}

	// run inference on zero valued inputs, checking the marshalling path
	// end to end
	inputs := make([][]float32, len(rt.InputAttrs()))

	for i, attr := range rt.InputAttrs() {
		inputs[i] = make([]float32, attr.NElems)
	}

	outputs, err := rt.Inference(inputs)

	if err != nil {
		t.Fatalf("Inference failed: %v", err)
	}

	if len(outputs.Output) != len(rt.OutputAttrs()) {
		t.Fatalf("got %d outputs; want %d", len(outputs.Output),
			len(rt.OutputAttrs()))
	}

	for i, out := range outputs.Output {
		if len(out.BufFloat) == 0 && len(out.BufInt32) == 0 &&
			len(out.BufFloat16) == 0 {
			t.Errorf("output %d has no data", i)
		}
	}

	if outputs.Duration <= 0 {
		t.Error("inference duration was not recorded")
	}

	// query dump should mention every tensor
	var sb strings.Builder

	if err := rt.Query(&sb); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if !strings.Contains(sb.String(), "Input tensors:") {
		t.Error("Query output missing input tensor section")
	}
}
