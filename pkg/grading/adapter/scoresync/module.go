package scoresync

import (
	"go.uber.org/fx"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
)

// Module provides the page write-back score writer.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewPageScoreWriter,
			fx.As(new(port.ScoreWriter)),
		),
	),
)
