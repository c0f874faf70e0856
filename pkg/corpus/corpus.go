package corpus

import (
	"context"

	"github.com/foliokit/sage/pkg/knowledge"
)

// Source yields the serialized corpus produced by the offline embedding
// batch job. A deployment configures exactly one source; it is fetched
// once at process start and the records never mutate afterwards.
type Source interface {
	// Fetch loads every corpus record, in artifact order.
	Fetch(ctx context.Context) ([]knowledge.Record, error)
}

// Sink receives the corpus written by the embedding batch job. Storing
// replaces the whole artifact; there is no partial update.
type Sink interface {
	Store(ctx context.Context, records []knowledge.Record) error
}
