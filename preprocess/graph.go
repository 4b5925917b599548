// Package preprocess prepares graph data for input to a graph
// convolutional network model, constructing the renormalized adjacency
// matrix and normalized feature matrix the model was trained with.
package preprocess

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Edge is a single directed edge between two node indices
type Edge struct {
	Src int
	Dst int
}

// LoadEdgeList reads whitespace separated "src dst" node index pairs from
// file, one edge per line.  Lines starting with # are skipped.
func LoadEdgeList(file string) ([]Edge, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	var edges []Edge
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)

		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected \"src dst\", got %q",
				lineNo, line)
		}

		src, err := strconv.Atoi(fields[0])

		if err != nil {
			return nil, fmt.Errorf("line %d: invalid src index: %w", lineNo, err)
		}

		dst, err := strconv.Atoi(fields[1])

		if err != nil {
			return nil, fmt.Errorf("line %d: invalid dst index: %w", lineNo, err)
		}

		edges = append(edges, Edge{Src: src, Dst: dst})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return edges, nil
}

// NormalizedAdjacency builds the renormalized adjacency matrix
// D^-1/2 (A + I) D^-1/2 for a graph of n nodes.  Edges are treated as
// undirected and self loops from the identity term are always present, so
// no node has zero degree.
func NormalizedAdjacency(n int, edges []Edge) (*mat.Dense, error) {

	if n <= 0 {
		return nil, fmt.Errorf("node count must be positive, got %d", n)
	}

	adj := mat.NewDense(n, n, nil)

	// A + I
	for i := 0; i < n; i++ {
		adj.Set(i, i, 1)
	}

	for _, e := range edges {
		if e.Src < 0 || e.Src >= n || e.Dst < 0 || e.Dst >= n {
			return nil, fmt.Errorf("edge (%d,%d) out of range [0-%d)",
				e.Src, e.Dst, n)
		}

		adj.Set(e.Src, e.Dst, 1)
		adj.Set(e.Dst, e.Src, 1)
	}

	// D^-1/2 from the row sums of A + I
	invSqrt := make([]float64, n)

	for i := 0; i < n; i++ {
		deg := mat.Sum(adj.RowView(i))
		invSqrt[i] = 1 / math.Sqrt(deg)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := adj.At(i, j)

			if v != 0 {
				adj.Set(i, j, v*invSqrt[i]*invSqrt[j])
			}
		}
	}

	return adj, nil
}

// RowNormalize scales each row of the feature matrix to sum to 1.  Rows
// that sum to zero are left untouched.
func RowNormalize(features *mat.Dense) {

	rows, cols := features.Dims()

	for i := 0; i < rows; i++ {
		sum := mat.Sum(features.RowView(i))

		if sum == 0 {
			continue
		}

		for j := 0; j < cols; j++ {
			features.Set(i, j, features.At(i, j)/sum)
		}
	}
}

// Flatten converts a matrix to a row-major []float32 in the layout the
// model input tensors expect
func Flatten(m mat.Matrix) []float32 {

	rows, cols := m.Dims()
	out := make([]float32, 0, rows*cols)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out = append(out, float32(m.At(i, j)))
		}
	}

	return out
}
