// Package gcnner runs the graph convolutional network named entity
// recognition model end to end: tensor file loading, device inference,
// argmax decode, entity span extraction and span level scoring.
package gcnner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/acllite/go-acllite"
	"github.com/acllite/go-acllite/postprocess"
)

// model input tensor indices
const (
	InputAdjacency = 0
	InputFeature   = 1
)

// dataset subdirectory names, one file per graph in each
const (
	AdjacencyDir = "adjacency"
	FeatureDir   = "feature"
	LabelDir     = "label"
	ResultDir    = "result"
)

// InitParam holds the configuration needed to build a Pipeline
type InitParam struct {
	// DeviceID is the NPU device to load the model onto
	DeviceID int32
	// ModelPath is the compiled offline model (.om) file
	ModelPath string
	// LabelPath is the class label file, one BIO label per line
	LabelPath string
	// ClassNum is the number of output classes the model predicts
	ClassNum int
	// Nodes is the number of graph nodes per input
	Nodes int
	// Features is the feature vector length per node
	Features int
}

// Result holds the decoded predictions of a single graph
type Result struct {
	// Argmax is the winning class id per node
	Argmax []uint32
	// Labels is the label string per node
	Labels []string
	// Entities are the extracted entity spans
	Entities []postprocess.Entity
	// InferCost is the on device execution time in milliseconds
	InferCost float64
}

// Pipeline is a device bound GCN NER inference pipeline
type Pipeline struct {
	param  InitParam
	rt     *acllite.Runtime
	labels []string
	post   *postprocess.GCNNER
	scorer *postprocess.Scorer
	cost   *postprocess.CostRecorder
}

// NewPipeline loads the label map, binds the model to the device and
// validates the model tensors against the configured graph shape
func NewPipeline(param InitParam) (*Pipeline, error) {

	labels, err := acllite.LoadLabels(param.LabelPath)

	if err != nil {
		return nil, fmt.Errorf("error loading labels: %w", err)
	}

	if param.ClassNum != len(labels) {
		return nil, fmt.Errorf("classNum is %d but label file holds %d labels",
			param.ClassNum, len(labels))
	}

	rt, err := acllite.NewRuntime(param.ModelPath, param.DeviceID)

	if err != nil {
		return nil, fmt.Errorf("error initializing ACL runtime: %w", err)
	}

	p := &Pipeline{
		param:  param,
		rt:     rt,
		labels: labels,
		post: postprocess.NewGCNNER(postprocess.GCNNERParams{
			Labels: labels,
			Nodes:  param.Nodes,
		}),
		scorer: &postprocess.Scorer{},
		cost:   &postprocess.CostRecorder{},
	}

	err = p.checkModelShape()

	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	return p, nil
}

// checkModelShape verifies the loaded model's tensors match the configured
// graph shape before any inference runs
func (p *Pipeline) checkModelShape() error {

	attrs := p.rt.InputAttrs()

	if len(attrs) != 2 {
		return fmt.Errorf("model has %d inputs, want 2 (adjacency, feature)",
			len(attrs))
	}

	wantAdj := uint32(p.param.Nodes * p.param.Nodes)

	if attrs[InputAdjacency].NElems != wantAdj {
		return fmt.Errorf("adjacency input holds %d elements, want %d",
			attrs[InputAdjacency].NElems, wantAdj)
	}

	wantFeat := uint32(p.param.Nodes * p.param.Features)

	if attrs[InputFeature].NElems != wantFeat {
		return fmt.Errorf("feature input holds %d elements, want %d",
			attrs[InputFeature].NElems, wantFeat)
	}

	outAttrs := p.rt.OutputAttrs()

	if len(outAttrs) == 0 {
		return fmt.Errorf("model has no outputs")
	}

	wantOut := uint32(p.param.Nodes * p.param.ClassNum)

	if outAttrs[0].NElems != wantOut {
		return fmt.Errorf("logits output holds %d elements, want %d",
			outAttrs[0].NElems, wantOut)
	}

	return nil
}

// Infer runs the model on an adjacency and feature matrix and decodes the
// per node predictions
func (p *Pipeline) Infer(adjacency, features []float32) (*Result, error) {

	if len(adjacency) != p.param.Nodes*p.param.Nodes {
		return nil, fmt.Errorf("adjacency matrix holds %d values, want %d",
			len(adjacency), p.param.Nodes*p.param.Nodes)
	}

	if len(features) != p.param.Nodes*p.param.Features {
		return nil, fmt.Errorf("feature matrix holds %d values, want %d",
			len(features), p.param.Nodes*p.param.Features)
	}

	inputs := make([][]float32, 2)
	inputs[InputAdjacency] = adjacency
	inputs[InputFeature] = features

	outputs, err := p.rt.Inference(inputs)

	if err != nil {
		return nil, fmt.Errorf("error running model: %w", err)
	}

	p.cost.Add(outputs.Duration)

	argmax, err := p.post.ArgMax(outputs)

	if err != nil {
		return nil, fmt.Errorf("error decoding argmax: %w", err)
	}

	labels, err := p.post.Decode(argmax)

	if err != nil {
		return nil, err
	}

	entities, err := p.post.Entities(argmax)

	if err != nil {
		return nil, err
	}

	return &Result{
		Argmax:    argmax,
		Labels:    labels,
		Entities:  entities,
		InferCost: float64(outputs.Duration.Nanoseconds()) / 1e6,
	}, nil
}

// Process runs inference for a single named graph in the dataset directory
// writing the prediction file, and when eval is set scores the predictions
// against the gold label file
func (p *Pipeline) Process(dataDir, name string, eval bool) (*Result, error) {

	adjacency, err := acllite.ReadFloat32s(
		filepath.Join(dataDir, AdjacencyDir, name+".bin"),
		p.param.Nodes*p.param.Nodes)

	if err != nil {
		return nil, fmt.Errorf("error reading adjacency tensor: %w", err)
	}

	features, err := acllite.ReadFloat32s(
		filepath.Join(dataDir, FeatureDir, name+".bin"),
		p.param.Nodes*p.param.Features)

	if err != nil {
		return nil, fmt.Errorf("error reading feature tensor: %w", err)
	}

	res, err := p.Infer(adjacency, features)

	if err != nil {
		return nil, err
	}

	err = WriteResult(filepath.Join(dataDir, ResultDir), name, res.Labels)

	if err != nil {
		return nil, err
	}

	if eval {
		err = p.scoreAgainstGold(dataDir, name, res)

		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

// scoreAgainstGold reads the gold label ids for the graph and accumulates
// span level counts on the pipeline scorer
func (p *Pipeline) scoreAgainstGold(dataDir, name string, res *Result) error {

	goldIDs, err := acllite.ReadInt32s(
		filepath.Join(dataDir, LabelDir, name+".bin"), p.param.Nodes)

	if err != nil {
		return fmt.Errorf("error reading gold labels: %w", err)
	}

	gold := make([]uint32, len(goldIDs))

	for i, id := range goldIDs {
		if id < 0 || int(id) >= p.param.ClassNum {
			return fmt.Errorf("gold label id %d at node %d out of range [0-%d)",
				id, i, p.param.ClassNum)
		}

		gold[i] = uint32(id)
	}

	goldEntities, err := p.post.Entities(gold)

	if err != nil {
		return err
	}

	p.scorer.Score(res.Entities, goldEntities)

	return nil
}

// Scorer returns the pipeline's accumulated span scorer
func (p *Pipeline) Scorer() *postprocess.Scorer {
	return p.scorer
}

// Cost returns the pipeline's accumulated inference cost recorder
func (p *Pipeline) Cost() *postprocess.CostRecorder {
	return p.cost
}

// Labels returns the loaded label map
func (p *Pipeline) Labels() []string {
	return p.labels
}

// Runtime returns the underlying ACL runtime
func (p *Pipeline) Runtime() *acllite.Runtime {
	return p.rt
}

// Close releases the device bound model and all device resources
func (p *Pipeline) Close() error {
	return p.rt.Close()
}

// WriteResult writes the per node predicted labels to <dir>/<name>.txt, one
// "index label" line per node
func WriteResult(dir, name string, labels []string) error {

	err := os.MkdirAll(dir, 0755)

	if err != nil {
		return fmt.Errorf("error creating result directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, name+".txt"))

	if err != nil {
		return fmt.Errorf("error creating result file: %w", err)
	}

	defer f.Close()

	for i, label := range labels {
		_, err = fmt.Fprintf(f, "%d %s\n", i, label)

		if err != nil {
			return fmt.Errorf("error writing result file: %w", err)
		}
	}

	return nil
}
