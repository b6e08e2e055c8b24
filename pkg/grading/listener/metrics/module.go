package metrics

import (
	"go.uber.org/fx"
)

// Module decorates the metric recorder with the asynchronous wrapper.
// PrometheusRecorder is provided by infrastructure/metrics; fx.Decorate
// replaces it with AsyncMetricRecorderWrapper so backend recording happens
// off the workflow execution path.
var Module = fx.Options(
	fx.Decorate(NewAsyncMetricRecorderWrapper),
)
