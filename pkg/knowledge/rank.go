package knowledge

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Cosine returns the cosine similarity of two equal-length vectors, in [-1, 1].
// If either vector has zero magnitude, or the lengths differ, the result is NaN;
// callers must treat a non-finite score as "no match".
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.NaN()
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopK scores every record against the query vector and returns the k best,
// ordered by descending similarity. Ties keep corpus order, so repeated
// queries against an unchanged corpus are deterministic. Non-finite scores
// rank last. If the corpus has fewer than k records, all are returned.
//
// The corpus is small and static, so this is a full linear scan plus sort.
// No approximate index is wanted here.
func (s *Store) TopK(query []float32, k int) ([]ScoredRecord, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}
	if len(query) != s.dim {
		return nil, fmt.Errorf("query vector has dimension %d, corpus expects %d", len(query), s.dim)
	}

	scored := make([]ScoredRecord, len(s.records))
	for i, rec := range s.records {
		scored[i] = ScoredRecord{
			Record:     rec,
			Similarity: Cosine(query, rec.Embedding),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		si, sj := scored[i].Similarity, scored[j].Similarity
		if math.IsNaN(si) {
			return false
		}
		if math.IsNaN(sj) {
			return true
		}
		return si > sj
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Retrieve implements Retriever against the in-memory corpus.
func (s *Store) Retrieve(ctx context.Context, query []float32, k int) ([]ScoredRecord, error) {
	return s.TopK(query, k)
}
