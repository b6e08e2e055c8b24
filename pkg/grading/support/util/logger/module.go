package logger

import "go.uber.org/fx"

// Module is an Fx module that wires the gradeloop logger into the Fx container.
var Module = fx.Options(
	fx.WithLogger(NewFxLoggerAdapter),
)
