package mongo

import (
	"context"
	"fmt"

	"github.com/foliokit/sage/pkg/corpus/consts"
	"github.com/foliokit/sage/pkg/knowledge"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCorpus struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type RecordDoc struct {
	RecordID  string    `bson:"record_id"`
	Topic     string    `bson:"topic"`
	Text      string    `bson:"text"`
	Embedding []float32 `bson:"embedding"`
	Seq       int       `bson:"seq"` // preserves artifact order
}

// New creates a new MongoCorpus adapter.
func New(client *mongo.Client, dbName, collectionName string) *MongoCorpus {
	return &MongoCorpus{
		client:     client,
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// Fetch loads every corpus record, in artifact order.
func (c *MongoCorpus) Fetch(ctx context.Context) ([]knowledge.Record, error) {
	opts := options.Find().SetSort(bson.M{consts.ColSeq: 1})

	cursor, err := c.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, &knowledge.CorpusLoadError{Reason: "cannot read corpus collection", Err: err}
	}
	defer cursor.Close(ctx)

	var records []knowledge.Record
	for cursor.Next(ctx) {
		var doc RecordDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, &knowledge.CorpusLoadError{Reason: "malformed corpus document", Err: err}
		}

		records = append(records, knowledge.Record{
			ID:        doc.RecordID,
			Topic:     doc.Topic,
			Text:      doc.Text,
			Embedding: doc.Embedding,
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, &knowledge.CorpusLoadError{Reason: "cannot read corpus collection", Err: err}
	}

	return records, nil
}

// Store replaces the collection contents with the given records.
func (c *MongoCorpus) Store(ctx context.Context, records []knowledge.Record) error {
	if _, err := c.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear corpus collection: %w", err)
	}

	docs := make([]interface{}, len(records))
	for i, rec := range records {
		docs[i] = RecordDoc{
			RecordID:  rec.ID,
			Topic:     rec.Topic,
			Text:      rec.Text,
			Embedding: rec.Embedding,
			Seq:       i,
		}
	}

	if _, err := c.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert corpus documents: %w", err)
	}
	return nil
}
