package goquery

import (
	"go.uber.org/fx"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
)

// Module provides the goquery-backed page element locator. The *Page itself
// is provided by the entrypoint, which knows where the host page comes from.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewLocator,
			fx.As(new(port.PageElementLocator)),
		),
	),
)
