package model

import (
	"fmt"
	"time"

	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	logger "github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"

	"github.com/google/uuid"
)

// WorkflowStatus represents the state of one grading workflow instance.
type WorkflowStatus string

const (
	StatusRunning        WorkflowStatus = "running"
	StatusCompleted      WorkflowStatus = "completed"
	StatusFailed         WorkflowStatus = "failed"
	StatusAwaitingReview WorkflowStatus = "awaiting-review"
	StatusRetrying       WorkflowStatus = "retrying"
)

// String returns the string representation of the WorkflowStatus.
func (s WorkflowStatus) String() string {
	return string(s)
}

// IsTerminal checks if the status represents a finished workflow instance.
// A retrying instance is terminal: the retry is carried by a new Workflow.
func (s WorkflowStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusAwaitingReview, StatusRetrying:
		return true
	default:
		return false
	}
}

// StepStatus represents the state of one pipeline stage execution.
type StepStatus string

const (
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// Decision is the branch chosen by the decide step after scoring.
type Decision string

const (
	// DecisionNone is the zero value before the decide step completes.
	DecisionNone Decision = ""
	// DecisionAutoSync means the score is written back automatically.
	DecisionAutoSync Decision = "auto-sync"
	// DecisionManualReview means the workflow is routed to a human.
	DecisionManualReview Decision = "manual-review"
)

// WorkflowError is one recorded step failure.
type WorkflowError struct {
	Step      string
	Message   string
	Timestamp time.Time
}

// ReviewInfo is attached to a workflow routed to manual review.
type ReviewInfo struct {
	OriginalResult *ScoringResult
	Reason         string
	Suggestions    string
}

// StudentInfo identifies the student whose answer is being graded.
type StudentInfo struct {
	ID    string
	Name  string
	Class string
}

// WorkflowResults holds the typed output of each completed pipeline stage.
type WorkflowResults struct {
	Detected map[AnchorType]DetectedElement
	Image    *ImagePayload
	Rubric   *ScoringRubric
	Scoring  *ScoringResult
}

// Workflow is one end-to-end grading attempt. It is created by the
// orchestrator, mutated only on the orchestrator's execution path, and frozen
// once Status reaches a terminal value.
type Workflow struct {
	ID          string
	Status      WorkflowStatus
	Steps       []*Step
	Results     WorkflowResults
	Errors      []WorkflowError
	Options     WorkflowOptions
	Decision    Decision
	NeedsReview bool
	Review      *ReviewInfo
	Retries     int
	StartTime   time.Time
	EndTime     *time.Time
}

// Step is the execution record of one pipeline stage.
type Step struct {
	Name        string
	Description string
	Status      StepStatus
	StartTime   time.Time
	EndTime     *time.Time
	Warnings    []string
	Failures    []string
}

// NewID generates a new UUID string.
func NewID() string {
	return uuid.New().String()
}

// NewWorkflow creates a new running Workflow with the given resolved options.
func NewWorkflow(opts WorkflowOptions) *Workflow {
	return &Workflow{
		ID:        NewID(),
		Status:    StatusRunning,
		Steps:     make([]*Step, 0, 5),
		Errors:    make([]WorkflowError, 0),
		Options:   opts,
		Decision:  DecisionNone,
		StartTime: time.Now(),
	}
}

// isValidWorkflowTransition checks if the state transition is valid.
func isValidWorkflowTransition(current, next WorkflowStatus) bool {
	switch current {
	case StatusRunning:
		return next == StatusCompleted || next == StatusFailed ||
			next == StatusAwaitingReview || next == StatusRetrying
	default:
		// Terminal statuses never transition again.
		return false
	}
}

// TransitionTo safely transitions the workflow status.
func (w *Workflow) TransitionTo(next WorkflowStatus) error {
	if !isValidWorkflowTransition(w.Status, next) {
		return fmt.Errorf("workflow %s: invalid state transition: %s -> %s", w.ID, w.Status, next)
	}
	w.Status = next
	return nil
}

// markTerminal applies a terminal status, forcing it with a warning when the
// transition table disagrees, and stamps the end time.
func (w *Workflow) markTerminal(status WorkflowStatus) {
	if err := w.TransitionTo(status); err != nil {
		logger.Warnf("Could not update workflow (ID: %s) status to %s: %v", w.ID, status, err)
		w.Status = status
	}
	now := time.Now()
	w.EndTime = &now
}

// MarkAsCompleted updates the workflow status to completed.
func (w *Workflow) MarkAsCompleted() {
	w.markTerminal(StatusCompleted)
}

// MarkAsFailed updates the workflow status to failed and records the error.
func (w *Workflow) MarkAsFailed(step string, err error) {
	w.markTerminal(StatusFailed)
	w.RecordError(step, err)
}

// MarkAsAwaitingReview updates the workflow status to awaiting-review and
// attaches the review payload.
func (w *Workflow) MarkAsAwaitingReview(info *ReviewInfo) {
	w.markTerminal(StatusAwaitingReview)
	w.NeedsReview = true
	w.Review = info
}

// MarkAsRetrying terminates this instance in favor of a fresh retry workflow.
func (w *Workflow) MarkAsRetrying(step string, err error) {
	w.markTerminal(StatusRetrying)
	w.RecordError(step, err)
}

// RecordError appends a step failure to the workflow error list.
// History stays complete even when a retry later hides the failure.
func (w *Workflow) RecordError(step string, err error) {
	if err == nil {
		return
	}
	w.Errors = append(w.Errors, WorkflowError{
		Step:      step,
		Message:   exception.ExtractErrorMessage(err),
		Timestamp: time.Now(),
	})
}

// StartStep appends a new running Step record and returns it.
// Exactly one Step exists per pipeline stage per Workflow.
func (w *Workflow) StartStep(name, description string) *Step {
	step := &Step{
		Name:        name,
		Description: description,
		Status:      StepRunning,
		StartTime:   time.Now(),
	}
	w.Steps = append(w.Steps, step)
	return step
}

// Step returns the step record with the given name, or nil.
func (w *Workflow) Step(name string) *Step {
	for _, s := range w.Steps {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// MarkAsCompleted finishes the step successfully.
func (s *Step) MarkAsCompleted() {
	s.Status = StepCompleted
	now := time.Now()
	s.EndTime = &now
}

// MarkAsFailed finishes the step with the given error recorded.
func (s *Step) MarkAsFailed(err error) {
	s.Status = StepFailed
	now := time.Now()
	s.EndTime = &now
	if err != nil {
		s.Failures = append(s.Failures, exception.ExtractErrorMessage(err))
	}
}

// MarkAsSkipped finishes the step without executing it.
func (s *Step) MarkAsSkipped(reason string) {
	s.Status = StepSkipped
	now := time.Now()
	s.EndTime = &now
	if reason != "" {
		s.Warnings = append(s.Warnings, reason)
	}
}

// AddWarning attaches a non-fatal finding to the step record.
func (s *Step) AddWarning(msg string) {
	s.Warnings = append(s.Warnings, msg)
}

// Duration returns the elapsed execution time of the step.
func (s *Step) Duration() time.Duration {
	if s.EndTime == nil {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// WorkflowSummary is the reduced projection retained in workflow history.
type WorkflowSummary struct {
	ID         string
	StartTime  time.Time
	Status     WorkflowStatus
	Decision   Decision
	TotalScore float64
	Confidence float64
}

// Summary builds the reduced history projection of the workflow.
func (w *Workflow) Summary() WorkflowSummary {
	summary := WorkflowSummary{
		ID:        w.ID,
		StartTime: w.StartTime,
		Status:    w.Status,
		Decision:  w.Decision,
	}
	if w.Results.Scoring != nil {
		summary.TotalScore = w.Results.Scoring.TotalScore
		summary.Confidence = w.Results.Scoring.Confidence
	}
	return summary
}
