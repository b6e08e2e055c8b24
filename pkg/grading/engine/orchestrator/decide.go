package orchestrator

import (
	"context"
	"time"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	logger "github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

// Decide is the confidence gate: a pure function of the comparison between
// the scoring confidence and the threshold. No other state (time, retries)
// affects it. An explicit force-review flag on the result always wins.
func Decide(confidence, threshold float64, forceReview bool) model.Decision {
	if forceReview {
		return model.DecisionManualReview
	}
	if confidence >= threshold {
		return model.DecisionAutoSync
	}
	return model.DecisionManualReview
}

// stepDecide applies the confidence gate and executes the chosen branch.
func (o *Orchestrator) stepDecide(ctx context.Context, wf *model.Workflow, step *model.Step) error {
	result := wf.Results.Scoring
	if result == nil {
		return exception.NewGradingErrorf(StepDecide, exception.KindUnknown, "no scoring result to decide on")
	}

	decision := Decide(result.Confidence, wf.Options.ConfidenceThreshold, result.ForceReview)
	o.recorder.RecordDecision(ctx, string(decision), result.Confidence)
	logger.Infof("Workflow %s decision: %s (confidence %.1f, threshold %.1f).",
		wf.ID, decision, result.Confidence, wf.Options.ConfidenceThreshold)

	if decision == model.DecisionManualReview {
		o.routeToReview(ctx, wf, step)
		return nil
	}
	return o.syncScore(ctx, wf, step)
}

// syncScore executes the auto-sync branch: an optional confirmation gate,
// the score write, and an optional form submit.
func (o *Orchestrator) syncScore(ctx context.Context, wf *model.Workflow, step *model.Step) error {
	wf.Decision = model.DecisionAutoSync
	result := wf.Results.Scoring

	if wf.Options.RequireConfirmation {
		approved, decided := o.awaitConfirmation(ctx, wf.ID, wf.Options.ConfirmationTimeout)
		if !decided {
			step.AddWarning("confirmation timed out; score sync cancelled")
			logger.Warnf("Workflow %s: confirmation timed out, sync cancelled.", wf.ID)
			return nil
		}
		if !approved {
			step.AddWarning("confirmation rejected; score sync cancelled")
			logger.Infof("Workflow %s: confirmation rejected, sync cancelled.", wf.ID)
			return nil
		}
	}

	anchor, ok := wf.Results.Detected[model.AnchorScoreInput]
	if !ok || anchor.Primary() == nil {
		return exception.NewGradingErrorf(StepDecide, exception.KindElementDetection, "no score-input anchor to write to")
	}

	if err := o.writer.Write(ctx, anchor.Primary(), result.TotalScore); err != nil {
		return exception.NewGradingError(StepDecide, "score write failed", exception.KindOf(err), err)
	}
	logger.Infof("Workflow %s: score %.1f synced.", wf.ID, result.TotalScore)
	o.notify(ctx, o.newEvent(port.EventScoreSynced, wf, nil, nil))

	if wf.Options.AutoSubmit {
		if submit, ok := wf.Results.Detected[model.AnchorSubmitButton]; ok && submit.Primary() != nil {
			if err := o.writer.Submit(ctx, submit.Primary()); err != nil {
				step.AddWarning("submit failed: " + exception.ExtractErrorMessage(err))
			}
		} else {
			step.AddWarning("auto-submit requested but no submit-button anchor was detected")
		}
	}
	return nil
}

// routeToReview executes the manual-review branch: the review sink is handed
// a snapshot and the workflow terminates as awaiting-review. Enqueue failures
// degrade to a step warning; the review marking itself never fails.
func (o *Orchestrator) routeToReview(ctx context.Context, wf *model.Workflow, step *model.Step) {
	result := wf.Results.Scoring
	wf.Decision = model.DecisionManualReview

	snapshot := port.ReviewSnapshot{
		WorkflowID:  wf.ID,
		Student:     wf.Options.Student,
		Reason:      ManualReviewReason,
		Suggestions: result.Feedback,
		TotalScore:  result.TotalScore,
		Confidence:  result.Confidence,
		Issues:      append([]string(nil), result.Issues...),
		EnqueuedAt:  time.Now(),
	}
	if err := o.reviews.Enqueue(ctx, snapshot); err != nil {
		msg := "review enqueue failed: " + exception.ExtractErrorMessage(err)
		logger.Errorf("Workflow %s: %s", wf.ID, msg)
		if step != nil {
			step.AddWarning(msg)
		}
	}

	wf.MarkAsAwaitingReview(&model.ReviewInfo{
		OriginalResult: result,
		Reason:         ManualReviewReason,
		Suggestions:    result.Feedback,
	})
}

// awaitConfirmation blocks on the external confirmation signal for the given
// workflow, racing it against the timeout. The registered channel is removed
// on every outcome so no listener leaks.
func (o *Orchestrator) awaitConfirmation(ctx context.Context, workflowID string, timeout time.Duration) (approved, decided bool) {
	ch := make(chan bool, 1)

	o.confirmMu.Lock()
	o.confirms[workflowID] = ch
	o.confirmMu.Unlock()

	defer func() {
		o.confirmMu.Lock()
		delete(o.confirms, workflowID)
		o.confirmMu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case approved = <-ch:
		return approved, true
	case <-timer.C:
		return false, false
	case <-ctx.Done():
		return false, false
	}
}

// Confirm delivers an external confirmation signal for a workflow blocked in
// the confirmation gate. It reports whether a waiter accepted the signal.
func (o *Orchestrator) Confirm(workflowID string, approved bool) bool {
	o.confirmMu.Lock()
	ch, ok := o.confirms[workflowID]
	if ok {
		delete(o.confirms, workflowID)
	}
	o.confirmMu.Unlock()

	if !ok {
		return false
	}
	ch <- approved
	return true
}
