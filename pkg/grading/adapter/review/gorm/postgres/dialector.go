// Package postgres contributes the PostgreSQL dialector to the review queue.
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	gormreview "github.com/gradeloop/gradeloop/pkg/grading/adapter/review/gorm"
)

// init registers the PostgreSQL dialector factory with the review queue adapter.
func init() {
	gormreview.RegisterDialector("postgres", func(cfg gormreview.StoreConfig) (gorm.Dialector, error) {
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode)
		return postgres.Open(dsn), nil
	})
}
