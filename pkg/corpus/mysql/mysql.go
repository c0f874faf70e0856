package mysql

import (
	"fmt"

	gormcorpus "github.com/foliokit/sage/pkg/corpus/gorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// New creates a new MySQL-backed corpus.
func New(dsn string) (*gormcorpus.Corpus, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	return gormcorpus.New(db)
}
