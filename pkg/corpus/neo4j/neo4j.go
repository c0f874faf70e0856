package neo4j

import (
	"context"
	"fmt"

	"github.com/foliokit/sage/pkg/corpus/consts"
	"github.com/foliokit/sage/pkg/knowledge"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Neo4jCorpus struct {
	driver neo4j.DriverWithContext
	dbName string
}

// New creates a new Neo4jCorpus adapter.
func New(uri, username, password, dbName string) (*Neo4jCorpus, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	return &Neo4jCorpus{
		driver: driver,
		dbName: dbName,
	}, nil
}

// Fetch loads every corpus record, in artifact order.
func (c *Neo4jCorpus) Fetch(ctx context.Context) ([]knowledge.Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.dbName})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
		MATCH (e:%s)
		RETURN e.%s AS id, e.%s AS topic, e.%s AS text, e.%s AS embedding
		ORDER BY e.%s
		`, consts.LabelEntry, consts.ColRecordID, consts.ColTopic, consts.ColText, consts.ColEmbedding, consts.ColSeq)

		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}

		var records []knowledge.Record
		for res.Next(ctx) {
			rec := res.Record()
			id, _ := rec.Get("id")
			topic, _ := rec.Get("topic")
			text, _ := rec.Get("text")
			raw, _ := rec.Get("embedding")

			values, ok := raw.([]any)
			if !ok {
				return nil, fmt.Errorf("entry %v has a non-list embedding", id)
			}
			embedding := make([]float32, len(values))
			for i, v := range values {
				f, ok := v.(float64)
				if !ok {
					return nil, fmt.Errorf("entry %v has a non-numeric embedding value", id)
				}
				embedding[i] = float32(f)
			}

			records = append(records, knowledge.Record{
				ID:        asString(id),
				Topic:     asString(topic),
				Text:      asString(text),
				Embedding: embedding,
			})
		}

		return records, res.Err()
	})
	if err != nil {
		return nil, &knowledge.CorpusLoadError{Reason: "cannot read corpus graph", Err: err}
	}

	return result.([]knowledge.Record), nil
}

// Store replaces the entry nodes with the given records.
func (c *Neo4jCorpus) Store(ctx context.Context, records []knowledge.Record) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.dbName})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		clearQuery := fmt.Sprintf(`MATCH (e:%s) DETACH DELETE e`, consts.LabelEntry)
		if _, err := tx.Run(ctx, clearQuery, nil); err != nil {
			return nil, err
		}

		createQuery := fmt.Sprintf(`
		CREATE (e:%s {
			%s: $id,
			%s: $topic,
			%s: $text,
			%s: $embedding,
			%s: $seq
		})
		`, consts.LabelEntry, consts.ColRecordID, consts.ColTopic, consts.ColText, consts.ColEmbedding, consts.ColSeq)

		for i, rec := range records {
			embedding := make([]float64, len(rec.Embedding))
			for j, v := range rec.Embedding {
				embedding[j] = float64(v)
			}

			params := map[string]any{
				"id":        rec.ID,
				"topic":     rec.Topic,
				"text":      rec.Text,
				"embedding": embedding,
				"seq":       i,
			}
			if _, err := tx.Run(ctx, createQuery, params); err != nil {
				return nil, err
			}
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to store corpus graph: %w", err)
	}
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
