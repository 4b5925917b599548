package gcnner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResult(t *testing.T) {

	dir := filepath.Join(t.TempDir(), "result")

	err := WriteResult(dir, "graph_0001", []string{"O", "B-name", "I-name"})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "graph_0001.txt"))
	require.NoError(t, err)

	assert.Equal(t, "0 O\n1 B-name\n2 I-name\n", string(raw))
}

func TestWriteResultCreatesDir(t *testing.T) {

	dir := filepath.Join(t.TempDir(), "a", "b", "result")

	err := WriteResult(dir, "g", nil)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "g.txt"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
