package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	metrics "github.com/gradeloop/gradeloop/pkg/grading/core/metrics"
	logger "github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the metrics.MetricRecorder interface.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	// Workflow Metrics
	workflowDurationSeconds *prometheus.HistogramVec
	workflowStatusCounter   *prometheus.CounterVec

	// Step Metrics
	stepDurationSeconds *prometheus.HistogramVec
	stepStatusCounter   *prometheus.CounterVec

	// Retry / Decision Metrics
	retryCounter      *prometheus.CounterVec
	decisionCounter   *prometheus.CounterVec
	decisionConfidence *prometheus.HistogramVec

	// Generic operation durations (LLM calls, rendering, ...)
	operationDurationSeconds *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a new instance of PrometheusRecorder.
func NewPrometheusRecorder() metrics.MetricRecorder {
	registry := prometheus.NewRegistry()

	// Register Go standard metrics and process/OS metrics.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		workflowDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grading_workflow_duration_seconds",
			Help:    "Duration of grading workflow runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		workflowStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grading_workflow_status_total",
			Help: "Total number of grading workflow runs by status.",
		}, []string{"status"}),
		stepDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grading_step_duration_seconds",
			Help:    "Duration of grading workflow steps.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step_name", "status"}),
		stepStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grading_step_status_total",
			Help: "Total number of grading workflow steps by status.",
		}, []string{"step_name", "status"}),
		retryCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grading_workflow_retry_total",
			Help: "Total whole-workflow retries by reason.",
		}, []string{"reason"}),
		decisionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grading_decision_total",
			Help: "Total grading decisions by outcome.",
		}, []string{"decision"}),
		decisionConfidence: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grading_decision_confidence",
			Help:    "Scoring confidence observed at decision time.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}, []string{"decision"}),
		operationDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grading_operation_duration_seconds",
			Help:    "Duration of named operations (LLM calls, rendering, sync).",
			Buckets: prometheus.DefBuckets,
		}, []string{"name", "status"}),
	}

	// Register all metrics with the registry.
	registry.MustRegister(r.workflowDurationSeconds)
	registry.MustRegister(r.workflowStatusCounter)
	registry.MustRegister(r.stepDurationSeconds)
	registry.MustRegister(r.stepStatusCounter)
	registry.MustRegister(r.retryCounter)
	registry.MustRegister(r.decisionCounter)
	registry.MustRegister(r.decisionConfidence)
	registry.MustRegister(r.operationDurationSeconds)

	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// RecordWorkflowStart records the start of a Workflow run.
func (r *PrometheusRecorder) RecordWorkflowStart(ctx context.Context, wf *model.Workflow) {
	r.workflowStatusCounter.WithLabelValues(string(wf.Status)).Inc()
	logger.Debugf("Metrics: Workflow '%s' started.", wf.ID)
}

// RecordWorkflowEnd records the end of a Workflow run.
func (r *PrometheusRecorder) RecordWorkflowEnd(ctx context.Context, wf *model.Workflow) {
	if wf.EndTime == nil {
		return
	}
	duration := wf.EndTime.Sub(wf.StartTime).Seconds()

	r.workflowStatusCounter.WithLabelValues(string(wf.Status)).Inc()
	r.workflowDurationSeconds.WithLabelValues(string(wf.Status)).Observe(duration)

	logger.Debugf("Metrics: Workflow '%s' ended. Duration: %.3fs", wf.ID, duration)
}

// RecordStepStart records the start of a workflow Step.
func (r *PrometheusRecorder) RecordStepStart(ctx context.Context, wf *model.Workflow, step *model.Step) {
	r.stepStatusCounter.WithLabelValues(step.Name, string(step.Status)).Inc()
	logger.Debugf("Metrics: Step '%s' started.", step.Name)
}

// RecordStepEnd records the end of a workflow Step.
func (r *PrometheusRecorder) RecordStepEnd(ctx context.Context, wf *model.Workflow, step *model.Step) {
	if step.EndTime == nil {
		return
	}
	duration := step.EndTime.Sub(step.StartTime).Seconds()

	r.stepStatusCounter.WithLabelValues(step.Name, string(step.Status)).Inc()
	r.stepDurationSeconds.WithLabelValues(step.Name, string(step.Status)).Observe(duration)

	logger.Debugf("Metrics: Step '%s' ended. Duration: %.3fs", step.Name, duration)
}

// RecordRetry records a whole-workflow retry.
func (r *PrometheusRecorder) RecordRetry(ctx context.Context, reason string) {
	r.retryCounter.WithLabelValues(reason).Inc()
}

// RecordDecision records the outcome of the decision step.
func (r *PrometheusRecorder) RecordDecision(ctx context.Context, decision string, confidence float64) {
	r.decisionCounter.WithLabelValues(decision).Inc()
	r.decisionConfidence.WithLabelValues(decision).Observe(confidence)
}

// RecordDuration records the execution time of a named operation.
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	status := tags["status"]
	if status == "" {
		status = "success"
	}
	r.operationDurationSeconds.WithLabelValues(name, status).Observe(duration.Seconds())
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
