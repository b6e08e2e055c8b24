package logging

import (
	"go.uber.org/fx"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
)

// Module provides the logging workflow listener.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewLoggingWorkflowListener,
			fx.As(new(port.WorkflowExecutionListener)),
			fx.ResultTags(`group:"workflow_listeners"`),
		),
	),
)
