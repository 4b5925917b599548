package acllite

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLabels(t *testing.T) {

	file := filepath.Join(t.TempDir(), "labels.txt")

	content := "O\nB-name\n  I-name  \nB-company\n"

	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	labels, err := LoadLabels(file)

	if err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}

	want := []string{"O", "B-name", "I-name", "B-company"}

	if len(labels) != len(want) {
		t.Fatalf("len(labels) = %d; want %d", len(labels), len(want))
	}

	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q; want %q", i, labels[i], want[i])
		}
	}
}

func TestLoadLabelsMissingFile(t *testing.T) {

	_, err := LoadLabels(filepath.Join(t.TempDir(), "missing.txt"))

	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
