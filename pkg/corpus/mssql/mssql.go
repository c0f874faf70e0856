package mssql

import (
	"fmt"

	gormcorpus "github.com/foliokit/sage/pkg/corpus/gorm"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
)

// New creates a new SQL Server-backed corpus.
func New(dsn string) (*gormcorpus.Corpus, error) {
	db, err := gorm.Open(sqlserver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlserver: %w", err)
	}
	return gormcorpus.New(db)
}
