// Package sqlite contributes the SQLite dialector to the review queue.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	gormreview "github.com/gradeloop/gradeloop/pkg/grading/adapter/review/gorm"
)

// init registers the SQLite dialector factory with the review queue adapter.
func init() {
	gormreview.RegisterDialector("sqlite", func(cfg gormreview.StoreConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		// GORM SQLite Dialector expects the file path directly
		return sqlite.Open(cfg.Database), nil
	})
}
