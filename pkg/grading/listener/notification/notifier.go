package notification

import (
	"context"
	"fmt"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	logger "github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

// Notifier delivers terminal workflow outcomes to an external channel.
type Notifier interface {
	// Notify sends a notification message.
	// ctx: context for cancellation.
	// subject: short summary line.
	// body: detailed message.
	Notify(ctx context.Context, subject string, body string) error
}

// DummyNotifier writes notifications to the application log. It stands in
// for a real channel (IM webhook, mail) in local and test runs.
type DummyNotifier struct{}

// NewDummyNotifier creates a new DummyNotifier.
func NewDummyNotifier() *DummyNotifier {
	return &DummyNotifier{}
}

func (n *DummyNotifier) Notify(ctx context.Context, subject string, body string) error {
	logger.Infof("Notification: %s - %s", subject, body)
	return nil
}

var _ Notifier = (*DummyNotifier)(nil)

// NotificationWorkflowListener forwards terminal workflow events to a Notifier.
// Intermediate step events are ignored.
type NotificationWorkflowListener struct {
	notifier Notifier
}

// NewNotificationWorkflowListener creates a new NotificationWorkflowListener.
func NewNotificationWorkflowListener(notifier Notifier) *NotificationWorkflowListener {
	return &NotificationWorkflowListener{notifier: notifier}
}

func (l *NotificationWorkflowListener) OnWorkflowEvent(ctx context.Context, event port.Event) {
	var subject, body string
	switch event.Type {
	case port.EventWorkflowCompleted:
		subject = "grading workflow completed"
		body = fmt.Sprintf("workflow %s finished with decision %s (score %.1f, confidence %.1f)",
			event.WorkflowID, event.Workflow.Decision, event.Workflow.TotalScore, event.Workflow.Confidence)
	case port.EventManualReview:
		subject = "grading workflow needs manual review"
		body = fmt.Sprintf("workflow %s was routed to the review queue (confidence %.1f)",
			event.WorkflowID, event.Workflow.Confidence)
	case port.EventMaxRetriesExceeded:
		subject = "grading workflow retry budget exhausted"
		body = fmt.Sprintf("workflow %s failed after %d retries: %s", event.WorkflowID, event.Retries, event.Err)
	case port.EventWorkflowError:
		subject = "grading workflow failed"
		body = fmt.Sprintf("workflow %s failed: %s", event.WorkflowID, event.Err)
	default:
		return
	}
	if err := l.notifier.Notify(ctx, subject, body); err != nil {
		logger.Errorf("NotificationWorkflowListener: failed to send notification for workflow %s: %v", event.WorkflowID, err)
	}
}

var _ port.WorkflowExecutionListener = (*NotificationWorkflowListener)(nil)
