package postprocess

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScorerExactMatch(t *testing.T) {

	s := &Scorer{}

	pred := []Entity{
		{Type: "name", Start: 0, End: 1},
		{Type: "company", Start: 5, End: 6},
	}
	gold := []Entity{
		{Type: "name", Start: 0, End: 1},
		{Type: "company", Start: 5, End: 6},
	}

	s.Score(pred, gold)

	tp, fp, fn := s.Counts()
	assert.Equal(t, uint32(2), tp)
	assert.Equal(t, uint32(0), fp)
	assert.Equal(t, uint32(0), fn)
	assert.Equal(t, 1.0, s.Precision())
	assert.Equal(t, 1.0, s.Recall())
	assert.Equal(t, 1.0, s.F1())
}

func TestScorerBoundaryMismatch(t *testing.T) {

	s := &Scorer{}

	// same type, wrong end boundary: one FP and one FN
	pred := []Entity{{Type: "name", Start: 0, End: 2}}
	gold := []Entity{{Type: "name", Start: 0, End: 1}}

	s.Score(pred, gold)

	tp, fp, fn := s.Counts()
	assert.Equal(t, uint32(0), tp)
	assert.Equal(t, uint32(1), fp)
	assert.Equal(t, uint32(1), fn)
}

func TestScorerAccumulatesAcrossCalls(t *testing.T) {

	s := &Scorer{}

	gold := []Entity{{Type: "name", Start: 0, End: 0}}

	s.Score(gold, gold)
	s.Score(nil, gold)
	s.Score([]Entity{{Type: "game", Start: 3, End: 4}}, nil)

	tp, fp, fn := s.Counts()
	assert.Equal(t, uint32(1), tp)
	assert.Equal(t, uint32(1), fp)
	assert.Equal(t, uint32(1), fn)

	assert.InDelta(t, 0.5, s.Precision(), 1e-9)
	assert.InDelta(t, 0.5, s.Recall(), 1e-9)
	assert.InDelta(t, 0.5, s.F1(), 1e-9)
}

func TestScorerEmptyIsZeroNotNaN(t *testing.T) {

	s := &Scorer{}
	s.Score(nil, nil)

	assert.Equal(t, 0.0, s.Precision())
	assert.Equal(t, 0.0, s.Recall())
	assert.Equal(t, 0.0, s.F1())
}

func TestScorerDuplicatePredictions(t *testing.T) {

	s := &Scorer{}

	e := Entity{Type: "name", Start: 0, End: 1}

	// the second identical prediction must not match the gold span twice
	s.Score([]Entity{e, e}, []Entity{e})

	tp, fp, fn := s.Counts()
	assert.Equal(t, uint32(1), tp)
	assert.Equal(t, uint32(1), fp)
	assert.Equal(t, uint32(0), fn)
}

func TestScorerReset(t *testing.T) {

	s := &Scorer{}
	e := Entity{Type: "name", Start: 0, End: 1}

	s.Score([]Entity{e}, []Entity{e})
	s.Reset()

	tp, fp, fn := s.Counts()
	assert.Zero(t, tp)
	assert.Zero(t, fp)
	assert.Zero(t, fn)
}

func TestScorerConcurrent(t *testing.T) {

	s := &Scorer{}
	e := Entity{Type: "name", Start: 0, End: 1}

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			s.Score([]Entity{e}, []Entity{e})
		}()
	}

	wg.Wait()

	tp, _, _ := s.Counts()
	assert.Equal(t, uint32(50), tp)
}

func TestCostRecorder(t *testing.T) {

	c := &CostRecorder{}

	assert.Equal(t, 0, c.Count())
	assert.Equal(t, 0.0, c.Mean())
	assert.Equal(t, 0.0, c.Total())

	c.Add(10 * time.Millisecond)
	c.Add(20 * time.Millisecond)

	assert.Equal(t, 2, c.Count())
	assert.InDelta(t, 15.0, c.Mean(), 1e-9)
	assert.InDelta(t, 30.0, c.Total(), 1e-9)
}
