package sqlite

import (
	"fmt"

	gormcorpus "github.com/foliokit/sage/pkg/corpus/gorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New creates a new SQLite-backed corpus.
func New(dsn string) (*gormcorpus.Corpus, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	return gormcorpus.New(db)
}
