package capture

import (
	"go.uber.org/fx"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
)

// Module is an Fx module that provides the image capturer.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewCapturer,
		fx.As(new(port.ImageCapturer)),
	)),
)
