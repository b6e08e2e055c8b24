// Package config provides structures and utilities for managing the
// gradeloop application configuration.
package config

// EmbeddedConfig holds the content of the configuration file, typically
// passed from main.go via go:embed.
type EmbeddedConfig []byte

// GradingConfig holds the grading workflow defaults.
type GradingConfig struct {
	// ConfidenceThreshold gates auto-sync vs manual review (0-100 scale).
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	// MaxRetries bounds automatic whole-workflow retries.
	MaxRetries int `yaml:"max_retries"`
	// RetryDelayMs is the fixed delay before a retried workflow starts.
	RetryDelayMs int `yaml:"retry_delay_ms"`
	// AutoSubmit submits the host page form after a successful score write.
	AutoSubmit bool `yaml:"auto_submit"`
	// RequireConfirmation blocks score sync on an external confirmation.
	RequireConfirmation bool `yaml:"require_confirmation"`
	// ConfirmationTimeoutSeconds bounds the confirmation wait.
	ConfirmationTimeoutSeconds int `yaml:"confirmation_timeout_seconds"`
	// MinQualityScore marks captures below it with a step warning.
	MinQualityScore float64 `yaml:"min_quality_score"`
	// HistorySize bounds the retained workflow history projections.
	HistorySize int `yaml:"history_size"`
	// MetricsAsyncBufferSize is the queue size of the asynchronous metric
	// recorder. Zero or negative falls back to the built-in default.
	MetricsAsyncBufferSize int `yaml:"metrics_async_buffer_size"`
}

// LLMConfig holds the language model capability settings.
type LLMConfig struct {
	// Provider selects the adapter: "openai" or "gemini".
	Provider string `yaml:"provider"`
	// APIKey authenticates against the provider.
	APIKey string `yaml:"api_key"`
	// BaseURL overrides the provider endpoint (openai-compatible gateways).
	BaseURL string `yaml:"base_url"`
	// TextModel is used for rubric analysis.
	TextModel string `yaml:"text_model"`
	// VisionModel is used for image scoring.
	VisionModel string `yaml:"vision_model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	// TimeoutSeconds bounds each completion call.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// RenderConfig holds the screenshot rendering backend settings.
type RenderConfig struct {
	// Endpoint is the HTTP rendering service URL.
	Endpoint string `yaml:"endpoint"`
	// Scale is the device scale factor applied to captures.
	Scale float64 `yaml:"scale"`
	// BackgroundColor fills transparent regions of the capture.
	BackgroundColor string `yaml:"background_color"`
	// TimeoutMs bounds one render call.
	TimeoutMs int `yaml:"timeout_ms"`
}

// PageConfig holds host-page geometry assumptions.
type PageConfig struct {
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`
}

// ArchiveConfig holds the captured-image archive settings.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseDir string `yaml:"base_dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g. "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// GradeloopConfig holds all configuration under the "gradeloop" top-level key.
type GradeloopConfig struct {
	Grading GradingConfig `yaml:"grading"`
	LLM     LLMConfig     `yaml:"llm"`
	Render  RenderConfig  `yaml:"render"`
	Page    PageConfig    `yaml:"page"`
	Archive ArchiveConfig `yaml:"archive"`
	System  SystemConfig  `yaml:"system"`
	// ReviewStores holds raw review queue backend configurations, decoded by
	// the review adapter with mapstructure.
	ReviewStores map[string]interface{} `yaml:"review_store"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Gradeloop GradeloopConfig `yaml:"gradeloop"`
}

// NewConfig returns a Config populated with documented defaults.
func NewConfig() *Config {
	return &Config{
		Gradeloop: GradeloopConfig{
			Grading: GradingConfig{
				ConfidenceThreshold:        70,
				MaxRetries:                 3,
				RetryDelayMs:               3000,
				ConfirmationTimeoutSeconds: 30,
				MinQualityScore:            40,
				HistorySize:                10,
			},
			LLM: LLMConfig{
				Provider:       "openai",
				TextModel:      "gpt-4o-mini",
				VisionModel:    "gpt-4o",
				Temperature:    0.2,
				MaxTokens:      2000,
				TimeoutSeconds: 60,
			},
			Render: RenderConfig{
				Scale:           2.0,
				BackgroundColor: "#ffffff",
				TimeoutMs:       10000,
			},
			Page: PageConfig{
				ViewportWidth:  1920,
				ViewportHeight: 1080,
			},
			System: SystemConfig{
				Logging: LoggingConfig{Level: "INFO"},
			},
		},
	}
}
