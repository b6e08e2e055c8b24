package metrics

import (
	"context"
	"time"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
)

// NoOpMetricRecorder is an implementation of MetricRecorder that does nothing.
// It is used when metrics are disabled or during testing.
type NoOpMetricRecorder struct{}

// NewNoOpMetricRecorder creates a new instance of NoOpMetricRecorder.
func NewNoOpMetricRecorder() MetricRecorder {
	return &NoOpMetricRecorder{}
}

// RecordWorkflowStart does nothing.
func (r *NoOpMetricRecorder) RecordWorkflowStart(ctx context.Context, wf *model.Workflow) {}

// RecordWorkflowEnd does nothing.
func (r *NoOpMetricRecorder) RecordWorkflowEnd(ctx context.Context, wf *model.Workflow) {}

// RecordStepStart does nothing.
func (r *NoOpMetricRecorder) RecordStepStart(ctx context.Context, wf *model.Workflow, step *model.Step) {
}

// RecordStepEnd does nothing.
func (r *NoOpMetricRecorder) RecordStepEnd(ctx context.Context, wf *model.Workflow, step *model.Step) {
}

// RecordRetry does nothing.
func (r *NoOpMetricRecorder) RecordRetry(ctx context.Context, reason string) {}

// RecordDecision does nothing.
func (r *NoOpMetricRecorder) RecordDecision(ctx context.Context, decision string, confidence float64) {
}

// RecordDuration does nothing.
func (r *NoOpMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
}

var _ MetricRecorder = (*NoOpMetricRecorder)(nil)

// --- NoOpTracer ---

// NoOpTracer is an implementation of Tracer that does nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a new instance of NoOpTracer.
func NewNoOpTracer() Tracer {
	return &NoOpTracer{}
}

// StartWorkflowSpan returns the context unchanged.
func (t *NoOpTracer) StartWorkflowSpan(ctx context.Context, wf *model.Workflow) (context.Context, func()) {
	return ctx, func() {}
}

// StartStepSpan returns the context unchanged.
func (t *NoOpTracer) StartStepSpan(ctx context.Context, wf *model.Workflow, step *model.Step) (context.Context, func()) {
	return ctx, func() {}
}

// RecordError does nothing.
func (t *NoOpTracer) RecordError(ctx context.Context, component string, err error) {}

// RecordEvent does nothing.
func (t *NoOpTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
}

var _ Tracer = (*NoOpTracer)(nil)
