package gorm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	gormreview "github.com/gradeloop/gradeloop/pkg/grading/adapter/review/gorm"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
)

func openQueue(t *testing.T) *gormreview.Queue {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	queue, err := gormreview.NewQueueFromDB(db)
	require.NoError(t, err)
	return queue
}

func snapshot(workflowID string, score float64) port.ReviewSnapshot {
	return port.ReviewSnapshot{
		WorkflowID:  workflowID,
		Student:     model.StudentInfo{ID: "s-1", Name: "张三", Class: "三年二班"},
		Reason:      "AI置信度较低",
		Suggestions: "建议复核第2小问",
		TotalScore:  score,
		Confidence:  55,
		Issues:      []string{"总分超出量规上限，已截断"},
		EnqueuedAt:  time.Now(),
	}
}

func TestEnqueue_PersistsSnapshotFields(t *testing.T) {
	queue := openQueue(t)

	require.NoError(t, queue.Enqueue(context.Background(), snapshot("wf-1", 32)))

	records, err := queue.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, "wf-1", record.WorkflowID)
	assert.Equal(t, "张三", record.StudentName)
	assert.Equal(t, "AI置信度较低", record.Reason)
	assert.Equal(t, 32.0, record.TotalScore)
	assert.Contains(t, record.Issues, "总分超出量规上限")
}

func TestPending_ReturnsArrivalOrder(t *testing.T) {
	queue := openQueue(t)

	require.NoError(t, queue.Enqueue(context.Background(), snapshot("wf-1", 10)))
	require.NoError(t, queue.Enqueue(context.Background(), snapshot("wf-2", 20)))
	require.NoError(t, queue.Enqueue(context.Background(), snapshot("wf-3", 30)))

	records, err := queue.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "wf-1", records[0].WorkflowID)
	assert.Equal(t, "wf-3", records[2].WorkflowID)
}

func TestDecodeStoreConfig(t *testing.T) {
	cfg, err := gormreview.DecodeStoreConfig(map[string]interface{}{
		"type":     "postgres",
		"host":     "db.internal",
		"port":     5432,
		"database": "gradeloop",
		"user":     "grader",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
}
