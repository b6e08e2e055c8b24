package metrics

import (
	"context"
	"time"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
)

// Span represents a single operation or unit of work in distributed tracing.
// This interface provides basic methods for managing the lifecycle of a span.
type Span interface {
	// End sets the end time of the current span and finishes the span.
	// Once a span is ended, its data is ready to be exported to the tracing system.
	End()
}

// MetricRecorder is an abstract interface for recording metrics related to
// grading workflow execution.
//
// This interface provides a standardized way to record metrics for workflow,
// step and decision-level events, and facilitates integration with different
// metrics backends (e.g., Prometheus, OpenTelemetry Metrics).
type MetricRecorder interface {
	// RecordWorkflowStart records the start of a Workflow run.
	//
	// ctx: The context for the operation.
	// wf: Details of the started Workflow.
	RecordWorkflowStart(ctx context.Context, wf *model.Workflow)

	// RecordWorkflowEnd records the end of a Workflow run.
	//
	// ctx: The context for the operation.
	// wf: Details of the ended Workflow.
	RecordWorkflowEnd(ctx context.Context, wf *model.Workflow)

	// RecordStepStart records the start of a workflow Step.
	//
	// ctx: The context for the operation.
	// wf: The owning Workflow.
	// step: Details of the started Step.
	RecordStepStart(ctx context.Context, wf *model.Workflow, step *model.Step)

	// RecordStepEnd records the end of a workflow Step.
	//
	// ctx: The context for the operation.
	// wf: The owning Workflow.
	// step: Details of the ended Step.
	RecordStepEnd(ctx context.Context, wf *model.Workflow, step *model.Step)

	// RecordRetry records a whole-workflow retry.
	//
	// ctx: The context for the operation.
	// reason: A string indicating the reason for the retry (typically the
	//         error kind that triggered it).
	RecordRetry(ctx context.Context, reason string)

	// RecordDecision records the outcome of the decision step.
	//
	// ctx: The context for the operation.
	// decision: The decision taken ("auto-sync" or "manual-review").
	// confidence: The scoring confidence the decision was based on.
	RecordDecision(ctx context.Context, decision string, confidence float64)

	// RecordDuration records the execution time of a specific operation.
	//
	// ctx: The context for the operation.
	// name: The name of the duration to record (e.g., "llm_call_duration", "render_time").
	// duration: The length of the duration to record.
	// tags: A map of additional tags or attributes to associate with the duration.
	//       Example: `{"provider": "openai", "status": "success"}`
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}
