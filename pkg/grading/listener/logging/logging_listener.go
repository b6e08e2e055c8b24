package logging

import (
	"context"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	logger "github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

// LoggingWorkflowListener logs every workflow lifecycle event.
type LoggingWorkflowListener struct{}

// NewLoggingWorkflowListener creates a new LoggingWorkflowListener.
func NewLoggingWorkflowListener() *LoggingWorkflowListener {
	return &LoggingWorkflowListener{}
}

func (l *LoggingWorkflowListener) OnWorkflowEvent(ctx context.Context, event port.Event) {
	switch event.Type {
	case port.EventWorkflowStarted:
		logger.Infof("WorkflowListener: started - ID: %s, Retries: %d", event.WorkflowID, event.Retries)
	case port.EventStepCompleted:
		logger.Infof("WorkflowListener: step completed - ID: %s, Step: %s, Status: %s, Duration: %s",
			event.WorkflowID, event.Step.Name, event.Step.Status, event.Step.Duration)
	case port.EventStepFailed:
		logger.Warnf("WorkflowListener: step failed - ID: %s, Step: %s, Error: %s",
			event.WorkflowID, event.Step.Name, event.Err)
	case port.EventWorkflowCompleted:
		logger.Infof("WorkflowListener: completed - ID: %s, Decision: %s, Score: %.1f, Confidence: %.1f",
			event.WorkflowID, event.Workflow.Decision, event.Workflow.TotalScore, event.Workflow.Confidence)
	case port.EventManualReview:
		logger.Infof("WorkflowListener: manual review required - ID: %s, Confidence: %.1f",
			event.WorkflowID, event.Workflow.Confidence)
	case port.EventScoreSynced:
		logger.Infof("WorkflowListener: score synced - ID: %s, Score: %.1f",
			event.WorkflowID, event.Workflow.TotalScore)
	case port.EventMaxRetriesExceeded:
		logger.Errorf("WorkflowListener: retry budget exhausted - ID: %s, Retries: %d, Error: %s",
			event.WorkflowID, event.Retries, event.Err)
	case port.EventWorkflowError:
		logger.Errorf("WorkflowListener: workflow error - ID: %s, Error: %s", event.WorkflowID, event.Err)
	default:
		logger.Debugf("WorkflowListener: %s - ID: %s", event.Type, event.WorkflowID)
	}
}

var _ port.WorkflowExecutionListener = (*LoggingWorkflowListener)(nil)
