package acllite

import (
	"context"
	"sync"
)

// Pool is a simple runtime pool to open multiple of the same Model across
// one or more NPU devices
type Pool struct {
	// pool of runtimes
	runtimes chan *Runtime
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a new runtime pool.  Runtimes are spread round robin
// across the given device ids.
func NewPool(size int, modelFile string, deviceIDs []int32) (*Pool, error) {

	if len(deviceIDs) == 0 {
		deviceIDs = []int32{0}
	}

	p := &Pool{
		runtimes: make(chan *Runtime, size),
		size:     size,
	}

	for i := 0; i < size; i++ {
		rt, err := NewRuntime(modelFile, deviceIDs[i%len(deviceIDs)])

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(rt)
	}

	return p, nil
}

// Gets a runtime from the pool
func (p *Pool) Get() *Runtime {
	return <-p.runtimes
}

// GetCtx gets a runtime from the pool, giving up when the context is
// cancelled
func (p *Pool) GetCtx(ctx context.Context) (*Runtime, error) {
	select {
	case rt := <-p.runtimes:
		return rt, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Return a runtime to the pool
func (p *Pool) Return(runtime *Runtime) {
	select {
	case p.runtimes <- runtime:
	default:
		// pool is full or closed
	}
}

// Size returns the number of runtimes the pool was created with
func (p *Pool) Size() int {
	return p.size
}

// Close the pool and all runtimes in it
func (p *Pool) Close() {
	p.close.Do(func() {
		// close channel
		close(p.runtimes)

		// close all runtimes
		for next := range p.runtimes {
			_ = next.Close()
		}
	})
}
