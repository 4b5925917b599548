// Package postprocess decodes model output tensors into named entity
// predictions and scores them against gold labels.
package postprocess

import (
	"fmt"
	"strings"

	"github.com/acllite/go-acllite"
)

// GCNNER defines the struct for the GCN named entity recognition model
// inference post processing
type GCNNER struct {
	Params GCNNERParams
}

// GCNNERParams defines the struct containing the GCNNER parameters to use
// for post processing operations
type GCNNERParams struct {
	// Labels is the class label list used to train the GCN model, indexed
	// by class id.  Labels use the BIO scheme, eg: "O", "B-name", "I-name"
	Labels []string
	// Nodes is the number of graph nodes in the model input
	Nodes int
	// numClass is the number of classes in Labels
	numClass int
}

// Entity is a single predicted or gold entity span.  Start and End are
// node indices, End inclusive.
type Entity struct {
	// Type is the entity type, eg: "name", "company"
	Type string
	// Start is the node index the span begins at
	Start int
	// End is the node index the span finishes at, inclusive
	End int
}

// String formats the entity as "type:start-end"
func (e Entity) String() string {
	return fmt.Sprintf("%s:%d-%d", e.Type, e.Start, e.End)
}

// NewGCNNER returns an instance of the GCNNER post processor
func NewGCNNER(param GCNNERParams) *GCNNER {
	p := &GCNNER{
		Params: param,
	}

	p.Params.numClass = len(param.Labels)

	return p
}

// ArgMax takes the model outputs and selects the highest scoring class id
// per node from the logits tensor at output index 0
func (p *GCNNER) ArgMax(outputs *acllite.Outputs) ([]uint32, error) {

	if len(outputs.Output) == 0 {
		return nil, fmt.Errorf("no output tensors")
	}

	return p.ArgMaxLogits(outputs.Output[0].BufFloat)
}

// ArgMaxLogits selects the highest scoring class id per node from a flat
// [nodes, classes] logits buffer
func (p *GCNNER) ArgMaxLogits(logits []float32) ([]uint32, error) {

	if len(logits) != p.Params.Nodes*p.Params.numClass {
		return nil, fmt.Errorf("logits buffer holds %d values, want %d",
			len(logits), p.Params.Nodes*p.Params.numClass)
	}

	argmax := make([]uint32, p.Params.Nodes)

	for n := 0; n < p.Params.Nodes; n++ {
		offset := n * p.Params.numClass
		idx, _ := argMax(logits[offset : offset+p.Params.numClass])
		argmax[n] = uint32(idx)
	}

	return argmax, nil
}

// Decode maps class ids to their label strings
func (p *GCNNER) Decode(argmax []uint32) ([]string, error) {

	labels := make([]string, len(argmax))

	for i, id := range argmax {
		if int(id) >= p.Params.numClass {
			return nil, fmt.Errorf("class id %d is larger than size of Labels list", id)
		}

		labels[i] = p.Params.Labels[id]
	}

	return labels, nil
}

// Entities extracts entity spans from per-node class ids.  A span starts
// at a B- tag and extends over following I- tags of the same type.  An I-
// tag with no open span of its type starts a new span.
func (p *GCNNER) Entities(argmax []uint32) ([]Entity, error) {

	var entities []Entity
	var open *Entity

	flush := func() {
		if open != nil {
			entities = append(entities, *open)
			open = nil
		}
	}

	for i, id := range argmax {

		if int(id) >= p.Params.numClass {
			return nil, fmt.Errorf("class id %d is larger than size of Labels list", id)
		}

		label := p.Params.Labels[id]

		switch {
		case label == "O":
			flush()

		case strings.HasPrefix(label, "B-"):
			flush()
			open = &Entity{Type: label[2:], Start: i, End: i}

		case strings.HasPrefix(label, "I-"):
			typ := label[2:]

			if open != nil && open.Type == typ {
				open.End = i
			} else {
				// lenient BIO, a dangling I- tag opens a span
				flush()
				open = &Entity{Type: typ, Start: i, End: i}
			}

		default:
			return nil, fmt.Errorf("label %q is not in BIO format", label)
		}
	}

	flush()

	return entities, nil
}

// argMax returns the index of the maximum element in a slice
func argMax(slice []float32) (int, float32) {

	if len(slice) == 0 {
		return 0, 0
	}

	maxIdx := 0
	maxValue := slice[0]

	for i, value := range slice {
		if value > maxValue {
			maxValue = value
			maxIdx = i
		}
	}

	return maxIdx, maxValue
}
