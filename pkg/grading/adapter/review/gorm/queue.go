// Package gorm implements a database-backed review queue. Dialect support
// is contributed by the sqlite, mysql and postgres subpackages through the
// dialector registry.
package gorm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

const moduleName = "review.gorm"

// StoreConfig describes one review queue backend, decoded from the raw
// review_store configuration section.
type StoreConfig struct {
	Type     string `mapstructure:"type"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DecodeStoreConfig decodes a raw configuration value into a StoreConfig.
func DecodeStoreConfig(raw interface{}) (StoreConfig, error) {
	var cfg StoreConfig
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return StoreConfig{}, exception.NewGradingError(moduleName, "failed to decode review store config", exception.KindUnknown, err)
	}
	return cfg, nil
}

// DialectorFactory builds a gorm.Dialector from a store configuration.
type DialectorFactory func(cfg StoreConfig) (gorm.Dialector, error)

var (
	dialectorRegistry = make(map[string]DialectorFactory)
	dialectorMutex    sync.RWMutex
)

// RegisterDialector registers a DialectorFactory for the given store type.
func RegisterDialector(storeType string, factory DialectorFactory) {
	dialectorMutex.Lock()
	defer dialectorMutex.Unlock()
	if _, exists := dialectorRegistry[storeType]; exists {
		logger.Warnf("Dialector for type '%s' already registered. Overwriting.", storeType)
	}
	dialectorRegistry[storeType] = factory
}

// GetDialectorFactory retrieves the DialectorFactory for the given store type.
func GetDialectorFactory(storeType string) (DialectorFactory, error) {
	dialectorMutex.RLock()
	defer dialectorMutex.RUnlock()
	factory, ok := dialectorRegistry[storeType]
	if !ok {
		return nil, fmt.Errorf("no dialector registered for review store type: %s", storeType)
	}
	return factory, nil
}

// ReviewRecord is the persisted form of one review snapshot.
type ReviewRecord struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	WorkflowID  string `gorm:"index;size:64"`
	StudentID   string `gorm:"size:64"`
	StudentName string `gorm:"size:128"`
	Class       string `gorm:"size:128"`
	Reason      string `gorm:"size:255"`
	Suggestions string
	TotalScore  float64
	Confidence  float64
	// Issues is the snapshot's issue list serialized as JSON.
	Issues     string
	EnqueuedAt time.Time
	CreatedAt  time.Time
}

// TableName pins the table name independent of GORM's pluralization.
func (ReviewRecord) TableName() string {
	return "review_queue"
}

// Queue is a review sink persisting snapshots through GORM.
type Queue struct {
	db *gorm.DB
}

// NewQueue opens the configured backend and migrates the review table.
func NewQueue(cfg StoreConfig) (*Queue, error) {
	factory, err := GetDialectorFactory(cfg.Type)
	if err != nil {
		return nil, exception.NewGradingError(moduleName, "unsupported review store type", exception.KindUnknown, err)
	}
	dialector, err := factory(cfg)
	if err != nil {
		return nil, exception.NewGradingError(moduleName, "failed to build review store dialector", exception.KindUnknown, err)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, exception.NewGradingError(moduleName, "failed to open review store", exception.KindUnknown, err)
	}
	if err := db.AutoMigrate(&ReviewRecord{}); err != nil {
		return nil, exception.NewGradingError(moduleName, "failed to migrate review queue table", exception.KindUnknown, err)
	}
	logger.Infof("Review queue opened (%s)", cfg.Type)
	return &Queue{db: db}, nil
}

// NewQueueFromDB wraps an already opened database handle; used by tests.
func NewQueueFromDB(db *gorm.DB) (*Queue, error) {
	if err := db.AutoMigrate(&ReviewRecord{}); err != nil {
		return nil, exception.NewGradingError(moduleName, "failed to migrate review queue table", exception.KindUnknown, err)
	}
	return &Queue{db: db}, nil
}

// Enqueue persists the snapshot.
func (q *Queue) Enqueue(ctx context.Context, snapshot port.ReviewSnapshot) error {
	issues, err := json.Marshal(snapshot.Issues)
	if err != nil {
		issues = []byte("[]")
	}
	record := ReviewRecord{
		WorkflowID:  snapshot.WorkflowID,
		StudentID:   snapshot.Student.ID,
		StudentName: snapshot.Student.Name,
		Class:       snapshot.Student.Class,
		Reason:      snapshot.Reason,
		Suggestions: snapshot.Suggestions,
		TotalScore:  snapshot.TotalScore,
		Confidence:  snapshot.Confidence,
		Issues:      string(issues),
		EnqueuedAt:  snapshot.EnqueuedAt,
	}
	if err := q.db.WithContext(ctx).Create(&record).Error; err != nil {
		return exception.NewGradingError(moduleName, "failed to enqueue review snapshot", exception.KindUnknown, err)
	}
	logger.Debugf("Queue: persisted review snapshot for workflow %s (record %d)", snapshot.WorkflowID, record.ID)
	return nil
}

// Pending returns the queued records in arrival order.
func (q *Queue) Pending(ctx context.Context) ([]ReviewRecord, error) {
	var records []ReviewRecord
	if err := q.db.WithContext(ctx).Order("id asc").Find(&records).Error; err != nil {
		return nil, exception.NewGradingError(moduleName, "failed to list review queue", exception.KindUnknown, err)
	}
	return records, nil
}

var _ port.ReviewSink = (*Queue)(nil)
