package metrics

import (
	"context"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
)

// Tracer is an abstract interface for distributed tracing.
// This interface provides functionality to integrate with tracing systems like
// OpenTelemetry, enabling visualization of workflow and step execution flows.
type Tracer interface {
	// StartWorkflowSpan starts a Span for a Workflow run.
	//
	// ctx: The parent context.
	// wf: The Workflow to be traced.
	//
	// Returns: A context with the new Span set, and a function to end the Span.
	//          It is recommended to call the returned function in a defer statement.
	StartWorkflowSpan(ctx context.Context, wf *model.Workflow) (context.Context, func())

	// StartStepSpan starts a Span for a workflow Step.
	//
	// ctx: The parent context (typically a context with a workflow Span).
	// wf: The owning Workflow.
	// step: The Step to be traced.
	//
	// Returns: A context with the new Span set, and a function to end the Span.
	StartStepSpan(ctx context.Context, wf *model.Workflow, step *model.Step) (context.Context, func())

	// RecordError records an error in the current Span.
	//
	// ctx: The context with the current Span.
	// component: The name of the component where the error occurred (e.g., "detect", "score").
	// err: The error to record.
	RecordError(ctx context.Context, component string, err error)

	// RecordEvent records an event in the current Span.
	//
	// ctx: The context with the current Span.
	// name: The name of the event (e.g., "score_synced", "review_enqueued").
	// attributes: Additional attributes to associate with the event.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
