package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Record represents a single knowledge base entry with its precomputed embedding.
type Record struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// ScoredRecord pairs a Record with its similarity to a query vector.
// It is produced per query and never persisted.
type ScoredRecord struct {
	Record
	Similarity float64 `json:"similarity"`
}

// Embedder is the interface for generating embeddings.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever returns the k records most similar to a query vector,
// ordered by descending similarity.
type Retriever interface {
	Retrieve(ctx context.Context, query []float32, k int) ([]ScoredRecord, error)
}

// Upserter inserts or updates records in a vector store.
type Upserter interface {
	Upsert(ctx context.Context, records []Record) error
}

// CorpusLoadError reports a missing, malformed, or inconsistent corpus.
// It is fatal to startup: the service cannot answer without a corpus.
type CorpusLoadError struct {
	Reason string
	Err    error
}

func (e *CorpusLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corpus load failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("corpus load failed: %s", e.Reason)
}

func (e *CorpusLoadError) Unwrap() error {
	return e.Err
}

// Store holds the corpus in memory for the process lifetime.
// It is immutable after construction and safe for concurrent readers.
type Store struct {
	records []Record
	dim     int
}

// DecodeRecords parses a serialized JSON list of records.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, &CorpusLoadError{Reason: "malformed corpus", Err: err}
	}
	return records, nil
}

// NewStore validates records and builds an immutable Store.
// Every record must have a non-empty id, topic, and text, a unique id, and
// an embedding of the same dimensionality as the rest of the corpus.
func NewStore(records []Record) (*Store, error) {
	if len(records) == 0 {
		return nil, &CorpusLoadError{Reason: "corpus is empty"}
	}

	dim := len(records[0].Embedding)
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return nil, &CorpusLoadError{Reason: fmt.Sprintf("record %d has an empty id", i)}
		}
		if rec.Topic == "" {
			return nil, &CorpusLoadError{Reason: fmt.Sprintf("record %q has an empty topic", rec.ID)}
		}
		if rec.Text == "" {
			return nil, &CorpusLoadError{Reason: fmt.Sprintf("record %q has an empty text", rec.ID)}
		}
		if len(rec.Embedding) == 0 {
			return nil, &CorpusLoadError{Reason: fmt.Sprintf("record %q has no embedding", rec.ID)}
		}
		if len(rec.Embedding) != dim {
			return nil, &CorpusLoadError{
				Reason: fmt.Sprintf("record %q has embedding dimension %d, expected %d", rec.ID, len(rec.Embedding), dim),
			}
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, &CorpusLoadError{Reason: fmt.Sprintf("duplicate record id %q", rec.ID)}
		}
		seen[rec.ID] = struct{}{}
	}

	return &Store{records: records, dim: dim}, nil
}

// Load decodes and validates a corpus from a serialized source.
func Load(r io.Reader) (*Store, error) {
	records, err := DecodeRecords(r)
	if err != nil {
		return nil, err
	}
	return NewStore(records)
}

// All returns the loaded records. The slice is a read-only view; the corpus
// never mutates after load.
func (s *Store) All() []Record {
	return s.records
}

// Len returns the number of records in the corpus.
func (s *Store) Len() int {
	return len(s.records)
}

// Dimension returns the embedding dimensionality shared by every record.
func (s *Store) Dimension() int {
	return s.dim
}
