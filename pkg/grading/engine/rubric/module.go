package rubric

import (
	"go.uber.org/fx"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
)

// Module is an Fx module that provides the rubric generator.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewGenerator,
		fx.As(new(port.RubricGenerator)),
	)),
)
