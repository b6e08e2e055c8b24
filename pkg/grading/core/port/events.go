package port

import (
	"context"
	"time"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
)

// EventType enumerates workflow lifecycle signals emitted to listeners.
type EventType string

const (
	EventWorkflowStarted    EventType = "workflow-started"
	EventStepCompleted      EventType = "step-completed"
	EventStepFailed         EventType = "step-failed"
	EventWorkflowCompleted  EventType = "workflow-completed"
	EventWorkflowError      EventType = "workflow-error"
	EventManualReview       EventType = "manual-review-required"
	EventScoreSynced        EventType = "score-synced"
	EventMaxRetriesExceeded EventType = "workflow-max-retries-exceeded"
)

// StepSnapshot is an immutable view of one step record at emission time.
type StepSnapshot struct {
	Name      string
	Status    model.StepStatus
	StartTime time.Time
	Duration  time.Duration
	Warnings  []string
	Failures  []string
}

// Event is a workflow lifecycle notification. Payloads are value types, not
// live references into orchestrator state; events for a given workflow are
// delivered strictly in pipeline order. A retried workflow carries a new
// workflow id, so consumers must not assume one id spans retries.
type Event struct {
	Type       EventType
	WorkflowID string
	Timestamp  time.Time
	Retries    int
	// Step is set on step-completed and step-failed events.
	Step *StepSnapshot
	// Workflow is the reduced projection at emission time.
	Workflow model.WorkflowSummary
	// Err carries the failure message on step-failed and workflow-error events.
	Err string
}

// WorkflowExecutionListener receives workflow lifecycle events.
type WorkflowExecutionListener interface {
	OnWorkflowEvent(ctx context.Context, event Event)
}
