package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"

	"go.uber.org/fx"
)

const moduleName = "config"

// EnvironmentExpander expands environment variable placeholders within a
// configuration byte slice before it is parsed.
type EnvironmentExpander interface {
	Expand(input []byte) ([]byte, error)
}

// OsEnvironmentExpander expands ${VAR} placeholders with os.ExpandEnv.
type OsEnvironmentExpander struct{}

// NewOsEnvironmentExpander creates a new OsEnvironmentExpander.
func NewOsEnvironmentExpander() *OsEnvironmentExpander {
	return &OsEnvironmentExpander{}
}

// Expand replaces ${VAR} or $VAR with the environment value. Unset variables
// expand to the empty string; os.ExpandEnv never fails so the error is nil.
func (e *OsEnvironmentExpander) Expand(input []byte) ([]byte, error) {
	return []byte(os.ExpandEnv(string(input))), nil
}

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string `name:"envFilePath" optional:"true"`
	Expander       EnvironmentExpander
}

// LoadConfig loads configuration from the embedded YAML document and the
// process environment. It is intended to be called once at startup.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig, expander EnvironmentExpander) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	expanded, err := expander.Expand(embeddedConfig)
	if err != nil {
		return nil, exception.NewGradingError(moduleName, "failed to expand environment placeholders in config", exception.KindUnknown, err)
	}

	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, exception.NewGradingError(moduleName, "failed to unmarshal embedded config", exception.KindUnknown, err)
	}

	return cfg, nil
}

// NewConfigProvider is the Fx provider for *Config. It loads the
// configuration and applies the configured log level.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := LoadConfig(params.EnvFilePath, params.EmbeddedConfig, params.Expander)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Gradeloop.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Gradeloop.System.Logging.Level)

	return cfg, nil
}

// WorkflowOptions converts the grading configuration into resolved workflow
// options for one run.
func (c *Config) WorkflowOptions() model.WorkflowOptions {
	g := c.Gradeloop.Grading
	return model.WorkflowOptions{
		ConfidenceThreshold: g.ConfidenceThreshold,
		MaxRetries:          g.MaxRetries,
		RetryDelay:          time.Duration(g.RetryDelayMs) * time.Millisecond,
		AutoSubmit:          g.AutoSubmit,
		RequireConfirmation: g.RequireConfirmation,
		ConfirmationTimeout: time.Duration(g.ConfirmationTimeoutSeconds) * time.Second,
		MinQualityScore:     g.MinQualityScore,
		HistorySize:         g.HistorySize,
	}.Resolve()
}
