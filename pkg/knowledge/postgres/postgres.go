package postgres

import (
	"context"
	"fmt"

	"github.com/foliokit/sage/pkg/knowledge"
	"github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore implements knowledge.Retriever and knowledge.Upserter using pgvector.
type PostgresStore struct {
	db *gorm.DB
}

// RecordModel represents the database schema for a knowledge record.
type RecordModel struct {
	ID        string `gorm:"primaryKey"`
	Topic     string
	Text      string
	Embedding pgvector.Vector `gorm:"type:vector(1536)"` // Adjust dimension as needed
}

// TableName overrides the table name.
func (RecordModel) TableName() string {
	return "knowledge_records"
}

// New creates a new PostgresStore.
func New(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Enable pgvector extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("failed to enable pgvector extension: %w", err)
	}

	if err := db.AutoMigrate(&RecordModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Upsert inserts or updates knowledge records and their embeddings.
func (s *PostgresStore) Upsert(ctx context.Context, records []knowledge.Record) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			model := RecordModel{
				ID:        rec.ID,
				Topic:     rec.Topic,
				Text:      rec.Text,
				Embedding: pgvector.NewVector(rec.Embedding),
			}

			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"topic", "text", "embedding"}),
			}).Create(&model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Retrieve returns the k records most similar to the query vector.
func (s *PostgresStore) Retrieve(ctx context.Context, query []float32, k int) ([]knowledge.ScoredRecord, error) {
	var rows []struct {
		ID       string
		Topic    string
		Text     string
		Distance float64
	}

	// pgvector's <=> operator is cosine distance: 1 - cosine similarity.
	// Order by distance ascending to get the most similar first.
	err := s.db.WithContext(ctx).
		Model(&RecordModel{}).
		Select("id, topic, text, embedding <=> ? AS distance", pgvector.NewVector(query)).
		Order(clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{pgvector.NewVector(query)}}).
		Limit(k).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	scored := make([]knowledge.ScoredRecord, len(rows))
	for i, row := range rows {
		scored[i] = knowledge.ScoredRecord{
			Record: knowledge.Record{
				ID:    row.ID,
				Topic: row.Topic,
				Text:  row.Text,
			},
			Similarity: 1 - row.Distance,
		}
	}

	return scored, nil
}
