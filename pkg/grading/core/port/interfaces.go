// Package port defines the capability interfaces the grading core consumes
// and the engine interfaces it exposes. Implementations live in the adapter
// and engine packages and are wired together with Fx.
package port

import (
	"context"
	"time"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
)

// PageElementLocator finds elements on the live host page.
type PageElementLocator interface {
	// FindAll returns every element matching the strategy, in document order.
	FindAll(ctx context.Context, strategy model.LocatorStrategy) ([]model.PageElement, error)
}

// RenderOptions controls how an element is rasterized.
type RenderOptions struct {
	Scale           float64
	BackgroundColor string
	Timeout         time.Duration
}

// ImageRenderer produces a raster encoding of an element's rendered bounds.
type ImageRenderer interface {
	Render(ctx context.Context, element model.PageElement, opts RenderOptions) ([]byte, error)
}

// CompletionOptions tunes a language model call.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// TextCompletion is the text-generation capability used for rubric analysis.
type TextCompletion interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// VisionCompletion is the multimodal capability used for scoring.
type VisionCompletion interface {
	CompleteWithImage(ctx context.Context, prompt string, image *model.ImagePayload, opts CompletionOptions) (string, error)
}

// ScoreWriter writes an accepted score back into the host page.
type ScoreWriter interface {
	// Write sets the score on the given score-input element.
	Write(ctx context.Context, element model.PageElement, score float64) error
	// Submit activates the page's submit control.
	Submit(ctx context.Context, element model.PageElement) error
}

// ReviewSnapshot is the immutable payload handed to a review sink.
type ReviewSnapshot struct {
	WorkflowID  string
	Student     model.StudentInfo
	Reason      string
	Suggestions string
	TotalScore  float64
	Confidence  float64
	Issues      []string
	EnqueuedAt  time.Time
}

// ReviewSink surfaces a workflow for human adjudication.
type ReviewSink interface {
	Enqueue(ctx context.Context, snapshot ReviewSnapshot) error
}

// ImageArchive optionally retains captured answer images for later audit.
type ImageArchive interface {
	// Store archives the payload under the workflow id and returns the
	// storage reference.
	Store(ctx context.Context, workflowID string, payload *model.ImagePayload) (string, error)
}

// ElementDetector scans the host page for the required UI anchors.
type ElementDetector interface {
	Detect(ctx context.Context, required []model.AnchorType) (map[model.AnchorType]model.DetectedElement, error)
}

// ImageCapturer produces an image payload for a detected answer-area anchor.
type ImageCapturer interface {
	Capture(ctx context.Context, anchor model.DetectedElement) (*model.ImagePayload, error)
}

// RubricGenerator produces (or reuses) a scoring rubric for a question.
type RubricGenerator interface {
	Generate(ctx context.Context, question, referenceAnswer string, questionType model.QuestionType) (*model.ScoringRubric, error)
}

// ScoringEngine invokes the AI scoring capability and returns a validated,
// normalized result. Callers may rely on the result honoring the rubric
// bounds, but not on the underlying AI call having succeeded.
type ScoringEngine interface {
	Score(ctx context.Context, image *model.ImagePayload, rubric *model.ScoringRubric, student model.StudentInfo) (*model.ScoringResult, error)
}
