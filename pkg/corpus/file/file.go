package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/foliokit/sage/pkg/knowledge"
)

// File reads and writes the corpus as a JSON artifact on disk, the format
// the embedding batch job produces.
type File struct {
	path string
}

// New creates a new File source/sink for the given path.
func New(path string) *File {
	return &File{path: path}
}

// Fetch loads every corpus record from the artifact.
func (f *File) Fetch(ctx context.Context) ([]knowledge.Record, error) {
	r, err := os.Open(f.path)
	if err != nil {
		return nil, &knowledge.CorpusLoadError{Reason: fmt.Sprintf("cannot open corpus file %s", f.path), Err: err}
	}
	defer r.Close()

	return knowledge.DecodeRecords(r)
}

// Store replaces the artifact with the given records.
func (f *File) Store(ctx context.Context, records []knowledge.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write corpus file %s: %w", f.path, err)
	}
	return nil
}
