package metrics

import (
	"context"
	"sync"
	"time"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	"github.com/gradeloop/gradeloop/pkg/grading/core/metrics"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"

	"go.uber.org/fx"
)

// MetricEvent represents a metric event to be recorded asynchronously.
type MetricEvent struct {
	Type       string
	Workflow   *model.Workflow
	Step       *model.Step
	Reason     string            // For retry reasons
	Decision   string            // For decision outcomes
	Confidence float64           // For decision confidence
	Name       string            // For generic duration metrics
	Duration   time.Duration     // For duration metrics
	Tags       map[string]string // For duration metric tags
}

// Metric event type constants
const (
	MetricEventTypeWorkflowStart  = "workflow_start"
	MetricEventTypeWorkflowEnd    = "workflow_end"
	MetricEventTypeStepStart      = "step_start"
	MetricEventTypeStepEnd        = "step_end"
	MetricEventTypeRetry          = "retry"
	MetricEventTypeDecision       = "decision"
	MetricEventTypeRecordDuration = "record_duration"
)

// AsyncMetricRecorder asynchronously records metrics by pushing events to a channel
// and processing them in a separate goroutine, keeping metric backends off the
// workflow execution path.
type AsyncMetricRecorder struct {
	eventQueue   chan MetricEvent
	stopCh       chan struct{}
	wg           sync.WaitGroup
	syncRecorder metrics.MetricRecorder // The concrete instance that performs actual metric recording
}

// NewAsyncMetricRecorder creates a new asynchronous metric recorder.
// bufferSize: The buffer size for the event queue. If 0 or less, a default value is used.
// syncRec: The synchronous recorder that performs the actual metric recording.
func NewAsyncMetricRecorder(bufferSize int, syncRec metrics.MetricRecorder) *AsyncMetricRecorder {
	if bufferSize <= 0 {
		bufferSize = 100 // Default buffer size
	}
	r := &AsyncMetricRecorder{
		eventQueue:   make(chan MetricEvent, bufferSize),
		stopCh:       make(chan struct{}),
		syncRecorder: syncRec,
	}
	r.wg.Add(1)
	go r.run()
	logger.Debugf("AsyncMetricRecorder: Worker goroutine started (buffer size: %d).", bufferSize)
	return r
}

// run is the worker goroutine that reads events from the event queue and processes them with the synchronous recorder.
func (r *AsyncMetricRecorder) run() {
	defer r.wg.Done()
	for {
		select {
		case event := <-r.eventQueue:
			r.processEvent(event)
		case <-r.stopCh:
			// Upon receiving a stop signal, process all remaining events in the queue before exiting.
			remaining := len(r.eventQueue)
			for i := 0; i < remaining; i++ {
				event := <-r.eventQueue
				r.processEvent(event)
			}
			logger.Debugf("AsyncMetricRecorder: Worker goroutine stopped. Processed %d remaining events.", remaining)
			return
		}
	}
}

// processEvent processes the received metric event.
func (r *AsyncMetricRecorder) processEvent(event MetricEvent) {
	// A new background context is used here because the event payload does not
	// carry the originating context across the queue boundary.
	ctx := context.Background()
	switch event.Type {
	case MetricEventTypeWorkflowStart:
		r.syncRecorder.RecordWorkflowStart(ctx, event.Workflow)
	case MetricEventTypeWorkflowEnd:
		r.syncRecorder.RecordWorkflowEnd(ctx, event.Workflow)
	case MetricEventTypeStepStart:
		r.syncRecorder.RecordStepStart(ctx, event.Workflow, event.Step)
	case MetricEventTypeStepEnd:
		r.syncRecorder.RecordStepEnd(ctx, event.Workflow, event.Step)
	case MetricEventTypeRetry:
		r.syncRecorder.RecordRetry(ctx, event.Reason)
	case MetricEventTypeDecision:
		r.syncRecorder.RecordDecision(ctx, event.Decision, event.Confidence)
	case MetricEventTypeRecordDuration:
		r.syncRecorder.RecordDuration(ctx, event.Name, event.Duration, event.Tags)
	default:
		logger.Warnf("AsyncMetricRecorder: Unknown metric event type: %s", event.Type)
	}
}

// Close gracefully stops the recorder and processes all remaining events in the queue.
func (r *AsyncMetricRecorder) Close() {
	logger.Debugf("AsyncMetricRecorder: Sending shutdown signal...")
	close(r.stopCh)
	r.wg.Wait()
	logger.Debugf("AsyncMetricRecorder: Shutdown complete.")
}

// sendEvent sends an event to the queue, logging a warning if the queue is full.
func (r *AsyncMetricRecorder) sendEvent(event MetricEvent, id string) {
	select {
	case r.eventQueue <- event:
		// Event added to queue
	default:
		logger.Warnf("AsyncMetricRecorder: Event queue is full (type: %s, ID: %s). Event discarded.", event.Type, id)
	}
}

// RecordWorkflowStart asynchronously records the start of a workflow run.
func (r *AsyncMetricRecorder) RecordWorkflowStart(ctx context.Context, workflow *model.Workflow) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeWorkflowStart, Workflow: workflow}, workflow.ID)
}

// RecordWorkflowEnd asynchronously records the end of a workflow run.
func (r *AsyncMetricRecorder) RecordWorkflowEnd(ctx context.Context, workflow *model.Workflow) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeWorkflowEnd, Workflow: workflow}, workflow.ID)
}

// RecordStepStart asynchronously records the start of a workflow step.
func (r *AsyncMetricRecorder) RecordStepStart(ctx context.Context, workflow *model.Workflow, step *model.Step) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeStepStart, Workflow: workflow, Step: step}, workflow.ID)
}

// RecordStepEnd asynchronously records the end of a workflow step.
func (r *AsyncMetricRecorder) RecordStepEnd(ctx context.Context, workflow *model.Workflow, step *model.Step) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeStepEnd, Workflow: workflow, Step: step}, workflow.ID)
}

// RecordRetry asynchronously records one whole-workflow retry.
func (r *AsyncMetricRecorder) RecordRetry(ctx context.Context, reason string) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeRetry, Reason: reason}, reason)
}

// RecordDecision asynchronously records the grading decision outcome.
func (r *AsyncMetricRecorder) RecordDecision(ctx context.Context, decision string, confidence float64) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeDecision, Decision: decision, Confidence: confidence}, decision)
}

// RecordDuration asynchronously records the execution time of a named operation.
func (r *AsyncMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeRecordDuration, Name: name, Duration: duration, Tags: tags}, name)
}

// Ensures AsyncMetricRecorder implements the metrics.MetricRecorder interface at compile time.
var _ metrics.MetricRecorder = (*AsyncMetricRecorder)(nil)

// NewAsyncMetricRecorderWrapper is a helper function for use with fx.Decorate.
// It takes fx.Lifecycle and config.Config and calls AsyncMetricRecorder.Close() on shutdown.
func NewAsyncMetricRecorderWrapper(lc fx.Lifecycle, cfg *config.Config, syncRecorder metrics.MetricRecorder) metrics.MetricRecorder {
	bufferSize := cfg.Gradeloop.Grading.MetricsAsyncBufferSize
	if bufferSize <= 0 {
		bufferSize = 100
	}
	asyncRecorder := NewAsyncMetricRecorder(bufferSize, syncRecorder)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			asyncRecorder.Close()
			return nil
		},
	})
	logger.Debugf("MetricRecorder decorated with asynchronous wrapper.")
	return asyncRecorder
}
