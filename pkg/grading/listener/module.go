package listener

import (
	"github.com/gradeloop/gradeloop/pkg/grading/listener/logging"
	"github.com/gradeloop/gradeloop/pkg/grading/listener/metrics"
	"github.com/gradeloop/gradeloop/pkg/grading/listener/notification"

	"go.uber.org/fx"
)

// Module aggregates all workflow listener modules.
var Module = fx.Options(
	logging.Module,
	metrics.Module,
	notification.Module,
)
