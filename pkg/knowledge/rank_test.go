package knowledge

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	a := []float32{3, 4}
	b := []float32{4, 3}

	if got, want := Cosine(a, a), 1.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Cosine(a, a) = %v, want %v", got, want)
	}
	if got, want := Cosine(a, b), Cosine(b, a); got != want {
		t.Errorf("Cosine is not symmetric: %v != %v", got, want)
	}
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("Cosine of orthogonal vectors = %v, want 0", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{-1, 0}); got != -1 {
		t.Errorf("Cosine of opposite vectors = %v, want -1", got)
	}
}

func TestCosine_NonFinite(t *testing.T) {
	if got := Cosine([]float32{0, 0}, []float32{1, 0}); !math.IsNaN(got) {
		t.Errorf("Cosine with zero-magnitude vector = %v, want NaN", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{1, 0, 0}); !math.IsNaN(got) {
		t.Errorf("Cosine with mismatched lengths = %v, want NaN", got)
	}
}

func TestTopK(t *testing.T) {
	store, err := NewStore([]Record{
		{ID: "a", Topic: "Skills", Text: "Knows Python", Embedding: []float32{1, 0}},
		{ID: "b", Topic: "Projects", Text: "Built a chatbot", Embedding: []float32{0, 1}},
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	got, err := store.TopK([]float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("TopK failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(got))
	}
	if got[0].ID != "a" || got[0].Similarity != 1.0 {
		t.Errorf("Expected a with similarity 1.0, got %s with %v", got[0].ID, got[0].Similarity)
	}

	got, err = store.TopK([]float32{0, 1}, 2)
	if err != nil {
		t.Fatalf("TopK failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	if got[0].ID != "b" || got[0].Similarity != 1.0 {
		t.Errorf("Expected b first with similarity 1.0, got %s with %v", got[0].ID, got[0].Similarity)
	}
	if got[1].ID != "a" || got[1].Similarity != 0.0 {
		t.Errorf("Expected a second with similarity 0.0, got %s with %v", got[1].ID, got[1].Similarity)
	}
}

func TestTopK_Ordering(t *testing.T) {
	store, err := NewStore([]Record{
		{ID: "far", Topic: "T", Text: "x", Embedding: []float32{-1, 0}},
		{ID: "near", Topic: "T", Text: "x", Embedding: []float32{1, 0.1}},
		{ID: "mid", Topic: "T", Text: "x", Embedding: []float32{1, 1}},
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	got, err := store.TopK([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("TopK failed: %v", err)
	}

	for i := 0; i < len(got)-1; i++ {
		if got[i].Similarity < got[i+1].Similarity {
			t.Errorf("Result not sorted descending at %d: %v < %v", i, got[i].Similarity, got[i+1].Similarity)
		}
	}
	if got[0].ID != "near" || got[1].ID != "mid" || got[2].ID != "far" {
		t.Errorf("Unexpected order: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestTopK_KLargerThanCorpus(t *testing.T) {
	store, err := NewStore([]Record{
		{ID: "a", Topic: "T", Text: "x", Embedding: []float32{1, 0}},
		{ID: "b", Topic: "T", Text: "x", Embedding: []float32{0, 1}},
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	got, err := store.TopK([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("TopK failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected all 2 records, got %d", len(got))
	}
}

func TestTopK_StableTies(t *testing.T) {
	// Identical embeddings score identically; corpus order must hold.
	store, err := NewStore([]Record{
		{ID: "first", Topic: "T", Text: "x", Embedding: []float32{1, 0}},
		{ID: "second", Topic: "T", Text: "x", Embedding: []float32{1, 0}},
		{ID: "third", Topic: "T", Text: "x", Embedding: []float32{1, 0}},
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	for run := 0; run < 5; run++ {
		got, err := store.TopK([]float32{1, 0}, 3)
		if err != nil {
			t.Fatalf("TopK failed: %v", err)
		}
		if got[0].ID != "first" || got[1].ID != "second" || got[2].ID != "third" {
			t.Fatalf("Run %d: tie order not stable: %s, %s, %s", run, got[0].ID, got[1].ID, got[2].ID)
		}
	}
}

func TestTopK_ZeroMagnitudeRecordRanksLast(t *testing.T) {
	store, err := NewStore([]Record{
		{ID: "zero", Topic: "T", Text: "x", Embedding: []float32{0, 0}},
		{ID: "opposite", Topic: "T", Text: "x", Embedding: []float32{-1, 0}},
		{ID: "match", Topic: "T", Text: "x", Embedding: []float32{1, 0}},
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	got, err := store.TopK([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("TopK failed: %v", err)
	}
	if got[0].ID != "match" {
		t.Errorf("Expected match first, got %s", got[0].ID)
	}
	if got[2].ID != "zero" {
		t.Errorf("Expected zero-magnitude record last, got %s", got[2].ID)
	}
	if !math.IsNaN(got[2].Similarity) {
		t.Errorf("Expected NaN score for zero-magnitude record, got %v", got[2].Similarity)
	}
}

func TestTopK_InvalidArguments(t *testing.T) {
	store, err := NewStore([]Record{
		{ID: "a", Topic: "T", Text: "x", Embedding: []float32{1, 0}},
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if _, err := store.TopK([]float32{1, 0, 0}, 1); err == nil {
		t.Error("Expected error for query dimension mismatch")
	}
	if _, err := store.TopK([]float32{1, 0}, 0); err == nil {
		t.Error("Expected error for k < 1")
	}
}
