// Package mysql contributes the MySQL dialector to the review queue.
package mysql

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	gormreview "github.com/gradeloop/gradeloop/pkg/grading/adapter/review/gorm"
)

// init registers the MySQL dialector factory with the review queue adapter.
func init() {
	gormreview.RegisterDialector("mysql", func(cfg gormreview.StoreConfig) (gorm.Dialector, error) {
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
		return mysql.Open(dsn), nil
	})
}
