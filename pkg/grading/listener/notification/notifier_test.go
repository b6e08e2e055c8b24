package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/listener/notification"
)

// MockNotifier records every notification it receives.
type MockNotifier struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (m *MockNotifier) Notify(ctx context.Context, subject string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return m.err
}

func (m *MockNotifier) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.subjects...)
}

func TestNotificationListener_NotifiesOnTerminalEvents(t *testing.T) {
	notifier := &MockNotifier{}
	listener := notification.NewNotificationWorkflowListener(notifier)

	for _, eventType := range []port.EventType{
		port.EventWorkflowCompleted,
		port.EventManualReview,
		port.EventMaxRetriesExceeded,
		port.EventWorkflowError,
	} {
		listener.OnWorkflowEvent(context.Background(), port.Event{Type: eventType, WorkflowID: "wf-1"})
	}

	assert.Len(t, notifier.Subjects(), 4)
}

func TestNotificationListener_IgnoresIntermediateEvents(t *testing.T) {
	notifier := &MockNotifier{}
	listener := notification.NewNotificationWorkflowListener(notifier)

	for _, eventType := range []port.EventType{
		port.EventWorkflowStarted,
		port.EventStepCompleted,
		port.EventStepFailed,
		port.EventScoreSynced,
	} {
		listener.OnWorkflowEvent(context.Background(), port.Event{Type: eventType, WorkflowID: "wf-1"})
	}

	assert.Empty(t, notifier.Subjects())
}

func TestNotificationListener_NotifierFailureIsSwallowed(t *testing.T) {
	notifier := &MockNotifier{err: errors.New("webhook unreachable")}
	listener := notification.NewNotificationWorkflowListener(notifier)

	assert.NotPanics(t, func() {
		listener.OnWorkflowEvent(context.Background(), port.Event{Type: port.EventWorkflowCompleted, WorkflowID: "wf-1"})
	})
	assert.Len(t, notifier.Subjects(), 1)
}
