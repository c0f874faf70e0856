package qdrant

import (
	"context"
	"fmt"

	"github.com/foliokit/sage/pkg/knowledge"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantStore implements knowledge.Retriever and knowledge.Upserter using Qdrant.
// It is an alternative to the in-memory corpus scan for corpora that outgrow it.
type QdrantStore struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

// New creates a new QdrantStore.
func New(host string, port int, collectionName string, vectorSize uint64) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	store := &QdrantStore{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
	}

	if err := store.initCollection(context.Background()); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *QdrantStore) initCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     s.vectorSize,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}
	return nil
}

// Upsert inserts or updates knowledge records and their embeddings.
func (s *QdrantStore) Upsert(ctx context.Context, records []knowledge.Record) error {
	points := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		if uint64(len(rec.Embedding)) != s.vectorSize {
			return fmt.Errorf("record %q has embedding dimension %d, collection expects %d", rec.ID, len(rec.Embedding), s.vectorSize)
		}

		payload := map[string]*qdrant.Value{
			"topic": qdrant.NewValueString(rec.Topic),
			"text":  qdrant.NewValueString(rec.Text),
			"id":    qdrant.NewValueString(rec.ID),
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(rec.ID),
			Vectors: qdrant.NewVectors(rec.Embedding...),
			Payload: payload,
		}
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         points,
		Wait:           &wait,
	})
	return err
}

// Retrieve returns the k records most similar to the query vector.
func (s *QdrantStore) Retrieve(ctx context.Context, query []float32, k int) ([]knowledge.ScoredRecord, error) {
	if uint64(len(query)) != s.vectorSize {
		return nil, fmt.Errorf("query vector has dimension %d, collection expects %d", len(query), s.vectorSize)
	}

	limit := uint64(k)
	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	scored := make([]knowledge.ScoredRecord, len(res))
	for i, hit := range res {
		rec := knowledge.Record{ID: hit.Id.GetUuid()}
		if v, ok := hit.Payload["id"]; ok && v.GetStringValue() != "" {
			rec.ID = v.GetStringValue()
		}
		if v, ok := hit.Payload["topic"]; ok {
			rec.Topic = v.GetStringValue()
		}
		if v, ok := hit.Payload["text"]; ok {
			rec.Text = v.GetStringValue()
		}

		scored[i] = knowledge.ScoredRecord{
			Record:     rec,
			Similarity: float64(hit.Score),
		}
	}

	return scored, nil
}
