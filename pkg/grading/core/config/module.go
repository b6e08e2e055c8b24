// Package config provides core configuration structures for gradeloop.
// This file defines the Fx providers for configuration components.
package config

import "go.uber.org/fx"

// NewGradingConfigProvider extracts the grading workflow section.
func NewGradingConfigProvider(cfg *Config) *GradingConfig {
	return &cfg.Gradeloop.Grading
}

// NewLLMConfigProvider extracts the LLM section so adapters can depend on it
// without pulling the whole configuration.
func NewLLMConfigProvider(cfg *Config) *LLMConfig {
	return &cfg.Gradeloop.LLM
}

// NewRenderConfigProvider extracts the render backend section.
func NewRenderConfigProvider(cfg *Config) *RenderConfig {
	return &cfg.Gradeloop.Render
}

// NewPageConfigProvider extracts the host-page geometry section.
func NewPageConfigProvider(cfg *Config) *PageConfig {
	return &cfg.Gradeloop.Page
}

// Module provides configuration-related components to Fx.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewOsEnvironmentExpander,
		fx.As(new(EnvironmentExpander)),
	)),
	fx.Provide(NewConfigProvider),
	fx.Provide(NewGradingConfigProvider),
	fx.Provide(NewLLMConfigProvider),
	fx.Provide(NewRenderConfigProvider),
	fx.Provide(NewPageConfigProvider),
)
