package model

import "time"

// Defaults applied by WorkflowOptions.Resolve.
const (
	DefaultConfidenceThreshold  = 70.0
	DefaultMaxRetries           = 3
	DefaultRetryDelay           = 3 * time.Second
	DefaultConfirmationTimeout  = 30 * time.Second
	DefaultHistorySize          = 10
	DefaultMinQualityScore      = 40.0
)

// WorkflowOptions is the resolved configuration of one grading run.
type WorkflowOptions struct {
	// Question and reference answer drive rubric generation.
	Question        string
	ReferenceAnswer string
	QuestionType    QuestionType

	// Student identifies whose answer is being graded.
	Student StudentInfo

	// Rubric, when supplied by the caller, makes the generate-rubric step skip.
	Rubric *ScoringRubric

	// ConfidenceThreshold gates auto-sync vs manual review, on a 0-100 scale.
	ConfidenceThreshold float64
	// MaxRetries bounds automatic whole-workflow retries for network failures.
	MaxRetries int
	// RetryDelay is the fixed delay before a retried workflow starts.
	RetryDelay time.Duration

	// AutoSubmit triggers ScoreWriter.Submit after a successful write.
	AutoSubmit bool
	// RequireConfirmation blocks the sync on an external confirmation signal.
	RequireConfirmation bool
	// ConfirmationTimeout bounds the confirmation wait; expiry cancels the sync.
	ConfirmationTimeout time.Duration

	// RequiredAnchors lists the anchor types whose absence fails detection.
	RequiredAnchors []AnchorType
	// MinQualityScore marks captures below it with a step warning.
	MinQualityScore float64
	// HistorySize bounds the orchestrator's retained workflow projections.
	HistorySize int
}

// Resolve fills unset fields with their documented defaults and returns the
// resolved copy. The receiver is not modified.
func (o WorkflowOptions) Resolve() WorkflowOptions {
	if o.ConfidenceThreshold <= 0 {
		o.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.ConfirmationTimeout <= 0 {
		o.ConfirmationTimeout = DefaultConfirmationTimeout
	}
	if o.HistorySize <= 0 {
		o.HistorySize = DefaultHistorySize
	}
	if o.MinQualityScore <= 0 {
		o.MinQualityScore = DefaultMinQualityScore
	}
	if o.QuestionType == "" {
		o.QuestionType = QuestionSubjective
	}
	if len(o.RequiredAnchors) == 0 {
		o.RequiredAnchors = []AnchorType{AnchorAnswerArea, AnchorScoreInput}
	}
	return o
}
