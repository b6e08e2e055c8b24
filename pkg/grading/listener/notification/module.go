package notification

import (
	"go.uber.org/fx"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
)

// Module provides the notification workflow listener backed by the
// dummy notifier. Swap the Notifier provider to wire a real channel.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewDummyNotifier,
			fx.As(new(Notifier)),
		),
	),
	fx.Provide(
		fx.Annotate(
			NewNotificationWorkflowListener,
			fx.As(new(port.WorkflowExecutionListener)),
			fx.ResultTags(`group:"workflow_listeners"`),
		),
	),
)
