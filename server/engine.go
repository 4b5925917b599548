package server

import (
	"context"
	"fmt"

	"github.com/acllite/go-acllite"
	"github.com/acllite/go-acllite/gcnner"
	"github.com/acllite/go-acllite/postprocess"
)

// PoolEngine runs inference through a pool of device bound runtimes so
// concurrent requests are served across NPU devices
type PoolEngine struct {
	pool *acllite.Pool
	post *postprocess.GCNNER
}

// NewPoolEngine opens PoolSize runtimes spread across the configured
// devices and prepares the post processor from the label file
func NewPoolEngine(cfg *gcnner.Config) (*PoolEngine, error) {

	labels, err := acllite.LoadLabels(cfg.LabelPath)

	if err != nil {
		return nil, fmt.Errorf("error loading labels: %w", err)
	}

	if cfg.ClassNum != len(labels) {
		return nil, fmt.Errorf("classNum is %d but label file holds %d labels",
			cfg.ClassNum, len(labels))
	}

	pool, err := acllite.NewPool(cfg.PoolSize, cfg.ModelPath, cfg.DeviceIDs)

	if err != nil {
		return nil, fmt.Errorf("error creating runtime pool: %w", err)
	}

	return &PoolEngine{
		pool: pool,
		post: postprocess.NewGCNNER(postprocess.GCNNERParams{
			Labels: labels,
			Nodes:  cfg.Nodes,
		}),
	}, nil
}

// Infer acquires a runtime from the pool, runs the forward pass and
// decodes the predictions
func (e *PoolEngine) Infer(ctx context.Context, adjacency,
	features []float32) (*gcnner.Result, error) {

	rt, err := e.pool.GetCtx(ctx)

	if err != nil {
		return nil, err
	}

	defer e.pool.Return(rt)

	inputs := make([][]float32, 2)
	inputs[gcnner.InputAdjacency] = adjacency
	inputs[gcnner.InputFeature] = features

	outputs, err := rt.Inference(inputs)

	if err != nil {
		return nil, fmt.Errorf("error running model: %w", err)
	}

	argmax, err := e.post.ArgMax(outputs)

	if err != nil {
		return nil, err
	}

	labels, err := e.post.Decode(argmax)

	if err != nil {
		return nil, err
	}

	entities, err := e.post.Entities(argmax)

	if err != nil {
		return nil, err
	}

	return &gcnner.Result{
		Argmax:    argmax,
		Labels:    labels,
		Entities:  entities,
		InferCost: float64(outputs.Duration.Nanoseconds()) / 1e6,
	}, nil
}

// Close shuts down the pool and all runtimes in it
func (e *PoolEngine) Close() error {
	e.pool.Close()
	return nil
}
