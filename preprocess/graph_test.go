package preprocess

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNormalizedAdjacencySingleEdge(t *testing.T) {

	// two nodes joined by one edge: A+I is all ones, both degrees are 2,
	// so every entry becomes 1/2
	adj, err := NormalizedAdjacency(2, []Edge{{Src: 0, Dst: 1}})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, 0.5, adj.At(i, j), 1e-9)
		}
	}
}

func TestNormalizedAdjacencyIsolatedNode(t *testing.T) {

	// node 2 has no edges, the identity term keeps its degree at 1 so the
	// diagonal entry stays 1 with no division by zero
	adj, err := NormalizedAdjacency(3, []Edge{{Src: 0, Dst: 1}})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, adj.At(2, 2), 1e-9)
	assert.Equal(t, 0.0, adj.At(2, 0))
	assert.Equal(t, 0.0, adj.At(0, 2))
}

func TestNormalizedAdjacencySymmetric(t *testing.T) {

	edges := []Edge{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 2}}

	adj, err := NormalizedAdjacency(4, edges)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.InDelta(t, adj.At(j, i), adj.At(i, j), 1e-12)
		}
	}
}

func TestNormalizedAdjacencyBadInput(t *testing.T) {

	_, err := NormalizedAdjacency(0, nil)
	assert.Error(t, err)

	_, err = NormalizedAdjacency(2, []Edge{{Src: 0, Dst: 5}})
	assert.Error(t, err)

	_, err = NormalizedAdjacency(2, []Edge{{Src: -1, Dst: 0}})
	assert.Error(t, err)
}

func TestRowNormalize(t *testing.T) {

	features := mat.NewDense(3, 2, []float64{
		2, 2,
		0, 0,
		1, 3,
	})

	RowNormalize(features)

	assert.InDelta(t, 0.5, features.At(0, 0), 1e-9)
	assert.InDelta(t, 0.5, features.At(0, 1), 1e-9)

	// zero row left untouched
	assert.Equal(t, 0.0, features.At(1, 0))

	assert.InDelta(t, 0.25, features.At(2, 0), 1e-9)
	assert.InDelta(t, 0.75, features.At(2, 1), 1e-9)
}

func TestFlattenRowMajor(t *testing.T) {

	m := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})

	flat := Flatten(m)
	require.Len(t, flat, 6)

	for i, want := range []float32{1, 2, 3, 4, 5, 6} {
		assert.Equal(t, want, flat[i])
	}
}

func TestLoadEdgeList(t *testing.T) {

	file := filepath.Join(t.TempDir(), "edges.txt")

	content := "# comment line\n0 1\n\n1 2\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	edges, err := LoadEdgeList(file)
	require.NoError(t, err)

	require.Len(t, edges, 2)
	assert.Equal(t, Edge{Src: 0, Dst: 1}, edges[0])
	assert.Equal(t, Edge{Src: 1, Dst: 2}, edges[1])
}

func TestLoadEdgeListMalformed(t *testing.T) {

	file := filepath.Join(t.TempDir(), "edges.txt")

	require.NoError(t, os.WriteFile(file, []byte("0 1 2\n"), 0644))

	_, err := LoadEdgeList(file)
	assert.Error(t, err)
}

func TestNormalizedAdjacencyDegreeScaling(t *testing.T) {

	// path graph 0-1-2: degree of node 1 after self loops is 3, nodes 0
	// and 2 have degree 2, so entry (0,1) is 1/sqrt(2*3)
	adj, err := NormalizedAdjacency(3, []Edge{{0, 1}, {1, 2}})
	require.NoError(t, err)

	want := 1 / math.Sqrt(6)
	assert.InDelta(t, want, adj.At(0, 1), 1e-9)
	assert.InDelta(t, want, adj.At(1, 0), 1e-9)
	assert.InDelta(t, 0.0, adj.At(0, 2), 1e-9)
}
