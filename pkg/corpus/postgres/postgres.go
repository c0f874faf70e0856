package postgres

import (
	"fmt"

	gormcorpus "github.com/foliokit/sage/pkg/corpus/gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// New creates a new Postgres-backed corpus.
func New(dsn string) (*gormcorpus.Corpus, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	return gormcorpus.New(db)
}
