package orchestrator

import (
	"go.uber.org/fx"

	"github.com/gradeloop/gradeloop/pkg/grading/engine/retry"
)

// Module is an Fx module that provides the workflow orchestrator and the
// default retry policy.
var Module = fx.Options(
	fx.Provide(retry.NewPolicy),
	fx.Provide(NewOrchestrator),
)
