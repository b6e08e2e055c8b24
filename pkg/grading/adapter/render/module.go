package render

import (
	"go.uber.org/fx"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
)

// Module provides the HTTP screenshot service renderer.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewHTTPRenderer,
			fx.As(new(port.ImageRenderer)),
		),
	),
)
