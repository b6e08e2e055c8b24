package detect

import (
	"go.uber.org/fx"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
)

// Module is an Fx module that provides the anchor detector.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewDetector,
		fx.As(new(port.ElementDetector)),
	)),
)
