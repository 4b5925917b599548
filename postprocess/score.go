package postprocess

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Scorer accumulates span level true positive, false positive and false
// negative counts across Score calls.  Safe for concurrent use.
type Scorer struct {
	mu sync.Mutex
	tp uint32
	fp uint32
	fn uint32
}

// Score compares predicted entity spans against gold spans.  A prediction
// counts as a true positive only on an exact match of type, start and end.
func (s *Scorer) Score(pred, gold []Entity) {

	goldSet := make(map[Entity]struct{}, len(gold))

	for _, e := range gold {
		goldSet[e] = struct{}{}
	}

	var tp, fp uint32

	for _, e := range pred {
		if _, ok := goldSet[e]; ok {
			tp++
			// matched gold spans must not count twice
			delete(goldSet, e)
		} else {
			fp++
		}
	}

	fn := uint32(len(goldSet))

	s.mu.Lock()
	s.tp += tp
	s.fp += fp
	s.fn += fn
	s.mu.Unlock()
}

// Counts returns the accumulated true positive, false positive and false
// negative counts
func (s *Scorer) Counts() (tp, fp, fn uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tp, s.fp, s.fn
}

// Reset clears the accumulated counts
func (s *Scorer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tp, s.fp, s.fn = 0, 0, 0
}

// Precision returns TP / (TP + FP), or 0 when nothing was predicted
func (s *Scorer) Precision() float64 {
	tp, fp, _ := s.Counts()

	if tp+fp == 0 {
		return 0
	}

	return float64(tp) / float64(tp+fp)
}

// Recall returns TP / (TP + FN), or 0 when no gold spans were seen
func (s *Scorer) Recall() float64 {
	tp, _, fn := s.Counts()

	if tp+fn == 0 {
		return 0
	}

	return float64(tp) / float64(tp+fn)
}

// F1 returns the harmonic mean of precision and recall, or 0 when both
// are 0
func (s *Scorer) F1() float64 {
	p := s.Precision()
	r := s.Recall()

	if p+r == 0 {
		return 0
	}

	return 2 * p * r / (p + r)
}

// CostRecorder accumulates per inference wall times for reporting the
// average and total model execution cost.  Safe for concurrent use.
type CostRecorder struct {
	mu sync.Mutex
	// samples are durations in milliseconds
	samples []float64
}

// Add records a single inference duration
func (c *CostRecorder) Add(d time.Duration) {
	c.mu.Lock()
	c.samples = append(c.samples, float64(d.Nanoseconds())/1e6)
	c.mu.Unlock()
}

// Count returns the number of recorded inferences
func (c *CostRecorder) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}

// Mean returns the average inference cost in milliseconds
func (c *CostRecorder) Mean() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.samples) == 0 {
		return 0
	}

	return stat.Mean(c.samples, nil)
}

// Total returns the summed inference cost in milliseconds
func (c *CostRecorder) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return floats.Sum(c.samples)
}
