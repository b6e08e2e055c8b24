package score

import (
	"go.uber.org/fx"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
)

// Module is an Fx module that provides the scoring engine.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewEngine,
		fx.As(new(port.ScoringEngine)),
	)),
)
