package corpus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/foliokit/sage/pkg/knowledge"
)

func TestNewFactory_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "embeddings.json")

	store, err := NewFactory(ctx, Config{Type: TypeFile, Path: path})
	if err != nil {
		t.Fatalf("NewFactory failed: %v", err)
	}

	records := []knowledge.Record{
		{ID: "a", Topic: "Skills", Text: "Knows Python", Embedding: []float32{1, 0}},
	}
	if err := store.Store(ctx, records); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, err := store.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Unexpected records: %+v", got)
	}
}

func TestNewFactory_FileWithoutPath(t *testing.T) {
	if _, err := NewFactory(context.Background(), Config{Type: TypeFile}); err == nil {
		t.Fatal("Expected error for file corpus without path")
	}
}

func TestNewFactory_UnsupportedType(t *testing.T) {
	if _, err := NewFactory(context.Background(), Config{Type: "carrier-pigeon"}); err == nil {
		t.Fatal("Expected error for unsupported corpus type")
	}
}
