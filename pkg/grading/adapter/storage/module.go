package storage

import (
	"go.uber.org/fx"
)

// Module provides the image archive capability.
var Module = fx.Options(
	fx.Provide(NewImageArchive),
)
