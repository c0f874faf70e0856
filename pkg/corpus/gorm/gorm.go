package gorm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/foliokit/sage/pkg/corpus/consts"
	"github.com/foliokit/sage/pkg/knowledge"
	"gorm.io/gorm"
)

// Corpus reads and writes the corpus through a relational database via GORM.
type Corpus struct {
	db *gorm.DB
}

// RecordModel represents the database schema for a corpus record.
type RecordModel struct {
	gorm.Model
	RecordID  string `gorm:"uniqueIndex"`
	Topic     string
	Text      string
	Embedding []byte `gorm:"type:json"` // Store as JSON bytes
	Seq       int    `gorm:"index"`     // preserves artifact order
}

// TableName overrides the table name.
func (RecordModel) TableName() string {
	return consts.TableNameRecords
}

// New creates a new Corpus.
func New(db *gorm.DB) (*Corpus, error) {
	if err := db.AutoMigrate(&RecordModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Corpus{db: db}, nil
}

// Fetch loads every corpus record, in artifact order.
func (c *Corpus) Fetch(ctx context.Context) ([]knowledge.Record, error) {
	var models []RecordModel
	if err := c.db.WithContext(ctx).Order("seq asc").Find(&models).Error; err != nil {
		return nil, &knowledge.CorpusLoadError{Reason: "cannot read corpus table", Err: err}
	}

	records := make([]knowledge.Record, len(models))
	for i, model := range models {
		var embedding []float32
		if err := json.Unmarshal(model.Embedding, &embedding); err != nil {
			return nil, &knowledge.CorpusLoadError{
				Reason: fmt.Sprintf("malformed embedding for record %q", model.RecordID),
				Err:    err,
			}
		}

		records[i] = knowledge.Record{
			ID:        model.RecordID,
			Topic:     model.Topic,
			Text:      model.Text,
			Embedding: embedding,
		}
	}

	return records, nil
}

// Store replaces the table contents with the given records.
func (c *Corpus) Store(ctx context.Context, records []knowledge.Record) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&RecordModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear corpus table: %w", err)
		}

		for i, rec := range records {
			embedding, err := json.Marshal(rec.Embedding)
			if err != nil {
				return fmt.Errorf("failed to marshal embedding for record %q: %w", rec.ID, err)
			}

			model := RecordModel{
				RecordID:  rec.ID,
				Topic:     rec.Topic,
				Text:      rec.Text,
				Embedding: embedding,
				Seq:       i,
			}
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("failed to insert record %q: %w", rec.ID, err)
			}
		}
		return nil
	})
}
