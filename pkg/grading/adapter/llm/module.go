// Package llm selects the configured language model vendor and provides
// the completion capabilities.
package llm

import (
	"strings"

	"go.uber.org/fx"

	"github.com/gradeloop/gradeloop/pkg/grading/adapter/llm/gemini"
	"github.com/gradeloop/gradeloop/pkg/grading/adapter/llm/openai"
	"github.com/gradeloop/gradeloop/pkg/grading/core/config"
	"github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

// NewTextCompletion selects the text completion vendor from the configuration.
func NewTextCompletion(cfg *config.LLMConfig) port.TextCompletion {
	return selectVendor(cfg).(port.TextCompletion)
}

// NewVisionCompletion selects the vision completion vendor from the configuration.
func NewVisionCompletion(cfg *config.LLMConfig) port.VisionCompletion {
	return selectVendor(cfg).(port.VisionCompletion)
}

func selectVendor(cfg *config.LLMConfig) interface{} {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return gemini.NewClient(cfg)
	case "openai", "":
		return openai.NewClient(cfg)
	default:
		logger.Warnf("llm: unknown provider %q, falling back to openai", cfg.Provider)
		return openai.NewClient(cfg)
	}
}

// Module provides the completion capabilities for the configured vendor.
var Module = fx.Options(
	fx.Provide(NewTextCompletion),
	fx.Provide(NewVisionCompletion),
)
