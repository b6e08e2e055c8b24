// Package orchestrator drives the grading pipeline: anchor detection, image
// capture, rubric generation, AI scoring and the confidence-gated decision
// between automatic score sync and manual review. One orchestrator runs one
// workflow at a time; failures are classified by error kind and either retried
// as a whole new workflow, escalated to manual handling, or surfaced upward.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/fx"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	metrics "github.com/gradeloop/gradeloop/pkg/grading/core/metrics"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/engine/retry"
	"github.com/gradeloop/gradeloop/pkg/grading/engine/score"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	logger "github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

// Pipeline step names, in execution order.
const (
	StepDetect         = "detect"
	StepCapture        = "capture"
	StepGenerateRubric = "generate-rubric"
	StepScore          = "score"
	StepDecide         = "decide"
)

// ManualReviewReason is attached to every workflow routed to manual review
// by the confidence gate.
const ManualReviewReason = "AI置信度较低"

// ErrBusy is returned by Run when another workflow is already running.
// Calls are rejected immediately; there is no queueing.
var ErrBusy = errors.New("orchestrator busy: a workflow is already running")

// Params collects the orchestrator's collaborators for Fx injection.
type Params struct {
	fx.In

	Detector  port.ElementDetector
	Capturer  port.ImageCapturer
	Generator port.RubricGenerator
	Scorer    port.ScoringEngine
	Writer    port.ScoreWriter
	Reviews   port.ReviewSink
	Archive   port.ImageArchive `optional:"true"`
	Policy    retry.Policy
	Listeners []port.WorkflowExecutionListener `group:"workflow_listeners"`
	Recorder  metrics.MetricRecorder
	Tracer    metrics.Tracer
	Config    *config.Config
}

// Orchestrator is the workflow state machine. All mutable state (the current
// workflow pointer and the bounded history) is owned exclusively by the
// orchestrator and mutated only on its own execution path.
type Orchestrator struct {
	detector  port.ElementDetector
	capturer  port.ImageCapturer
	generator port.RubricGenerator
	scorer    port.ScoringEngine
	writer    port.ScoreWriter
	reviews   port.ReviewSink
	archive   port.ImageArchive
	policy    retry.Policy
	listeners []port.WorkflowExecutionListener
	recorder  metrics.MetricRecorder
	tracer    metrics.Tracer

	mu      sync.Mutex
	running bool
	current *model.Workflow
	history *lru.Cache[string, model.WorkflowSummary]

	confirmMu sync.Mutex
	confirms  map[string]chan bool
}

// NewOrchestrator creates an Orchestrator from injected collaborators.
func NewOrchestrator(p Params) (*Orchestrator, error) {
	historySize := p.Config.Gradeloop.Grading.HistorySize
	if historySize <= 0 {
		historySize = model.DefaultHistorySize
	}
	history, err := lru.New[string, model.WorkflowSummary](historySize)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		detector:  p.Detector,
		capturer:  p.Capturer,
		generator: p.Generator,
		scorer:    p.Scorer,
		writer:    p.Writer,
		reviews:   p.Reviews,
		archive:   p.Archive,
		policy:    p.Policy,
		listeners: p.Listeners,
		recorder:  p.Recorder,
		tracer:    p.Tracer,
		history:   history,
		confirms:  make(map[string]chan bool),
	}, nil
}

// Run executes one grading workflow with the given options, driving retries
// internally. It returns the final (terminal) Workflow of the last attempt.
// A call while another workflow is running fails immediately with ErrBusy.
func (o *Orchestrator) Run(ctx context.Context, opts model.WorkflowOptions) (*model.Workflow, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		logger.Warnf("Workflow run rejected: busy.")
		return nil, ErrBusy
	}
	o.running = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.running = false
		o.current = nil
		o.mu.Unlock()
	}()

	opts = opts.Resolve()
	maxRetries := opts.MaxRetries
	if o.policy.GetMaxAttempts() > 0 {
		maxRetries = o.policy.GetMaxAttempts()
	}

	attempt := 0
	for {
		wf := model.NewWorkflow(opts)
		wf.Retries = attempt

		o.mu.Lock()
		o.current = wf
		o.mu.Unlock()

		logger.Infof("Workflow %s started (attempt %d).", wf.ID, attempt+1)
		o.recorder.RecordWorkflowStart(ctx, wf)
		o.notify(ctx, o.newEvent(port.EventWorkflowStarted, wf, nil, nil))

		failedStep, err := o.execute(ctx, wf)

		if err == nil {
			o.finish(ctx, wf)
			return wf, nil
		}

		kind := exception.KindOf(err)
		switch {
		case o.policy.ShouldRetry(err):
			if attempt+1 >= maxRetries {
				wf.MarkAsFailed(failedStep, nil)
				o.finish(ctx, wf)
				o.notify(ctx, o.newEvent(port.EventMaxRetriesExceeded, wf, nil, err))
				logger.Errorf("Workflow %s exhausted its retry budget (%d attempts): %v", wf.ID, attempt+1, err)
				return wf, err
			}
			wf.MarkAsRetrying(failedStep, nil)
			o.finish(ctx, wf)
			o.recorder.RecordRetry(ctx, kind.String())
			attempt++
			logger.Warnf("Workflow %s failed with a %s error; retrying from the start (retry %d/%d).", wf.ID, kind, attempt, maxRetries)

			delay := o.policy.GetBackoffInterval(attempt)
			if delay <= 0 {
				delay = opts.RetryDelay
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return wf, ctx.Err()
			}
			continue

		case kind == exception.KindElementDetection:
			// Missing anchors are not self-healing; hand the task back for
			// manual handling instead of retrying.
			wf.MarkAsFailed(failedStep, nil)
			o.finish(ctx, wf)
			o.notify(ctx, o.newEvent(port.EventWorkflowError, wf, nil, err))
			logger.Errorf("Workflow %s escalated to manual mode: %v", wf.ID, err)
			return wf, err

		default:
			wf.MarkAsFailed(failedStep, nil)
			o.finish(ctx, wf)
			o.notify(ctx, o.newEvent(port.EventWorkflowError, wf, nil, err))
			logger.Errorf("Workflow %s failed: %v", wf.ID, err)
			return wf, err
		}
	}
}

// execute runs the pipeline steps in order on one workflow instance.
// It returns the name of the failed step alongside the classified error; a
// nil error means the workflow reached a terminal status itself (completed or
// awaiting-review).
func (o *Orchestrator) execute(ctx context.Context, wf *model.Workflow) (string, error) {
	ctx, endSpan := o.tracer.StartWorkflowSpan(ctx, wf)
	defer endSpan()

	// 1. detect
	if err := o.runStep(ctx, wf, StepDetect, "locate page anchors", o.stepDetect); err != nil {
		return StepDetect, err
	}

	// 2. capture
	if err := o.runStep(ctx, wf, StepCapture, "capture the answer area", o.stepCapture); err != nil {
		return StepCapture, err
	}

	// 3. generate-rubric (skipped when the caller supplied a rubric)
	if wf.Options.Rubric != nil {
		step := wf.StartStep(StepGenerateRubric, "generate the scoring rubric")
		step.MarkAsSkipped("rubric supplied by caller")
		wf.Results.Rubric = wf.Options.Rubric
		o.notify(ctx, o.newEvent(port.EventStepCompleted, wf, step, nil))
	} else if err := o.runStep(ctx, wf, StepGenerateRubric, "generate the scoring rubric", o.stepGenerateRubric); err != nil {
		return StepGenerateRubric, err
	}

	// 4. score
	if err := o.runStep(ctx, wf, StepScore, "score the captured answer", o.stepScore); err != nil {
		if exception.KindOf(err) == exception.KindAIScoring {
			// A failed visual read is not recoverable by repetition; route
			// straight to manual review with the explicit error result.
			wf.Results.Scoring = score.ErrorResult(wf.Results.Rubric, err)
			o.routeToReview(ctx, wf, wf.Step(StepScore))
			o.notify(ctx, o.newEvent(port.EventManualReview, wf, nil, err))
			return "", nil
		}
		return StepScore, err
	}

	// 5. decide
	if err := o.runStep(ctx, wf, StepDecide, "apply the confidence gate", o.stepDecide); err != nil {
		return StepDecide, err
	}
	if wf.Status == model.StatusAwaitingReview {
		o.notify(ctx, o.newEvent(port.EventManualReview, wf, nil, nil))
	}
	return "", nil
}

// runStep executes one pipeline stage with its bookkeeping: step record,
// metrics, tracing, event emission and error propagation. Every failure is
// recorded on the step and the workflow before any branching decision.
func (o *Orchestrator) runStep(ctx context.Context, wf *model.Workflow, name, description string, fn func(ctx context.Context, wf *model.Workflow, step *model.Step) error) error {
	step := wf.StartStep(name, description)
	o.recorder.RecordStepStart(ctx, wf, step)
	stepCtx, endSpan := o.tracer.StartStepSpan(ctx, wf, step)

	err := fn(stepCtx, wf, step)

	if err != nil {
		step.MarkAsFailed(err)
		wf.RecordError(name, err)
		o.tracer.RecordError(stepCtx, name, err)
		endSpan()
		o.recorder.RecordStepEnd(ctx, wf, step)
		o.notify(ctx, o.newEvent(port.EventStepFailed, wf, step, err))
		return err
	}

	if step.Status == model.StepRunning {
		step.MarkAsCompleted()
	}
	endSpan()
	o.recorder.RecordStepEnd(ctx, wf, step)
	o.notify(ctx, o.newEvent(port.EventStepCompleted, wf, step, nil))
	return nil
}

// stepDetect locates the required page anchors.
func (o *Orchestrator) stepDetect(ctx context.Context, wf *model.Workflow, step *model.Step) error {
	detected, err := o.detector.Detect(ctx, wf.Options.RequiredAnchors)
	if err != nil {
		return err
	}
	wf.Results.Detected = detected
	return nil
}

// stepCapture captures the answer-area anchor and optionally archives the image.
func (o *Orchestrator) stepCapture(ctx context.Context, wf *model.Workflow, step *model.Step) error {
	anchor, ok := wf.Results.Detected[model.AnchorAnswerArea]
	if !ok {
		return exception.NewGradingErrorf(StepCapture, exception.KindElementDetection, "no answer-area anchor was detected")
	}

	payload, err := o.capturer.Capture(ctx, anchor)
	if err != nil {
		return err
	}

	if payload.Quality.Score < wf.Options.MinQualityScore {
		step.AddWarning(
			exception.NewGradingErrorf(StepCapture, exception.KindUnknown,
				"capture quality %.1f is below the minimum %.1f", payload.Quality.Score, wf.Options.MinQualityScore).Message)
	}

	if o.archive != nil {
		if ref, archiveErr := o.archive.Store(ctx, wf.ID, payload); archiveErr != nil {
			step.AddWarning("image archive failed: " + exception.ExtractErrorMessage(archiveErr))
		} else {
			logger.Debugf("Capture archived at %s.", ref)
		}
	}

	wf.Results.Image = payload
	return nil
}

// stepGenerateRubric generates the scoring rubric.
func (o *Orchestrator) stepGenerateRubric(ctx context.Context, wf *model.Workflow, step *model.Step) error {
	rubric, err := o.generator.Generate(ctx, wf.Options.Question, wf.Options.ReferenceAnswer, wf.Options.QuestionType)
	if err != nil {
		return err
	}
	wf.Results.Rubric = rubric
	return nil
}

// stepScore invokes the scoring engine.
func (o *Orchestrator) stepScore(ctx context.Context, wf *model.Workflow, step *model.Step) error {
	result, err := o.scorer.Score(ctx, wf.Results.Image, wf.Results.Rubric, wf.Options.Student)
	if err != nil {
		return err
	}
	wf.Results.Scoring = result
	return nil
}

// finish records the terminal state of one workflow attempt: metrics, the
// bounded history entry, and the completion event where applicable.
func (o *Orchestrator) finish(ctx context.Context, wf *model.Workflow) {
	if wf.EndTime == nil {
		// execute left the workflow terminal through a MarkAs* call in all
		// paths; this is the completed path.
		wf.MarkAsCompleted()
	}
	o.recorder.RecordWorkflowEnd(ctx, wf)
	o.history.Add(wf.ID, wf.Summary())

	if wf.Status == model.StatusCompleted {
		o.notify(ctx, o.newEvent(port.EventWorkflowCompleted, wf, nil, nil))
	}
}

// History returns the retained workflow projections, most recent first.
func (o *Orchestrator) History() []model.WorkflowSummary {
	keys := o.history.Keys()
	out := make([]model.WorkflowSummary, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if summary, ok := o.history.Peek(keys[i]); ok {
			out = append(out, summary)
		}
	}
	return out
}

// Current returns the running workflow, or nil when idle.
func (o *Orchestrator) Current() *model.Workflow {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// newEvent builds an immutable event payload for the workflow's current state.
func (o *Orchestrator) newEvent(eventType port.EventType, wf *model.Workflow, step *model.Step, err error) port.Event {
	event := port.Event{
		Type:       eventType,
		WorkflowID: wf.ID,
		Timestamp:  time.Now(),
		Retries:    wf.Retries,
		Workflow:   wf.Summary(),
	}
	if step != nil {
		snapshot := port.StepSnapshot{
			Name:      step.Name,
			Status:    step.Status,
			StartTime: step.StartTime,
			Duration:  step.Duration(),
			Warnings:  append([]string(nil), step.Warnings...),
			Failures:  append([]string(nil), step.Failures...),
		}
		event.Step = &snapshot
	}
	if err != nil {
		event.Err = exception.ExtractErrorMessage(err)
	}
	return event
}

// notify delivers one event to every registered listener, in pipeline order
// for a given workflow.
func (o *Orchestrator) notify(ctx context.Context, event port.Event) {
	for _, l := range o.listeners {
		l.OnWorkflowEvent(ctx, event)
	}
}
