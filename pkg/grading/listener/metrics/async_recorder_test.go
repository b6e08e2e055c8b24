package metrics_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	listenermetrics "github.com/gradeloop/gradeloop/pkg/grading/listener/metrics"
)

// MockSyncRecorder counts the calls delegated by the asynchronous wrapper.
type MockSyncRecorder struct {
	mu             sync.Mutex
	workflowStarts int
	workflowEnds   int
	stepStarts     int
	stepEnds       int
	retries        []string
	decisions      []string
	durations      []string
}

func (m *MockSyncRecorder) RecordWorkflowStart(ctx context.Context, workflow *model.Workflow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflowStarts++
}

func (m *MockSyncRecorder) RecordWorkflowEnd(ctx context.Context, workflow *model.Workflow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflowEnds++
}

func (m *MockSyncRecorder) RecordStepStart(ctx context.Context, workflow *model.Workflow, step *model.Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stepStarts++
}

func (m *MockSyncRecorder) RecordStepEnd(ctx context.Context, workflow *model.Workflow, step *model.Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stepEnds++
}

func (m *MockSyncRecorder) RecordRetry(ctx context.Context, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries = append(m.retries, reason)
}

func (m *MockSyncRecorder) RecordDecision(ctx context.Context, decision string, confidence float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, decision)
}

func (m *MockSyncRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations = append(m.durations, name)
}

func (m *MockSyncRecorder) snapshot() (int, int, int, int, []string, []string, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.workflowStarts, m.workflowEnds, m.stepStarts, m.stepEnds,
		append([]string(nil), m.retries...),
		append([]string(nil), m.decisions...),
		append([]string(nil), m.durations...)
}

func TestAsyncMetricRecorder_DrainsAllEventsOnClose(t *testing.T) {
	backend := &MockSyncRecorder{}
	recorder := listenermetrics.NewAsyncMetricRecorder(64, backend)

	ctx := context.Background()
	workflow := model.NewWorkflow(model.WorkflowOptions{}.Resolve())
	step := workflow.StartStep("detect", "locate page anchors")

	recorder.RecordWorkflowStart(ctx, workflow)
	recorder.RecordStepStart(ctx, workflow, step)
	recorder.RecordStepEnd(ctx, workflow, step)
	recorder.RecordRetry(ctx, "network")
	recorder.RecordDecision(ctx, "auto-sync", 88)
	recorder.RecordDuration(ctx, "render", 120*time.Millisecond, map[string]string{"status": "success"})
	recorder.RecordWorkflowEnd(ctx, workflow)

	recorder.Close()

	starts, ends, stepStarts, stepEnds, retries, decisions, durations := backend.snapshot()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, ends)
	assert.Equal(t, 1, stepStarts)
	assert.Equal(t, 1, stepEnds)
	assert.Equal(t, []string{"network"}, retries)
	assert.Equal(t, []string{"auto-sync"}, decisions)
	assert.Equal(t, []string{"render"}, durations)
}

func TestAsyncMetricRecorder_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	backend := &MockSyncRecorder{}
	recorder := listenermetrics.NewAsyncMetricRecorder(1, backend)

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			recorder.RecordRetry(ctx, "network")
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("recording blocked on a full queue")
	}
	recorder.Close()

	_, _, _, _, retries, _, _ := backend.snapshot()
	require.NotEmpty(t, retries)
	assert.LessOrEqual(t, len(retries), 500)
}
