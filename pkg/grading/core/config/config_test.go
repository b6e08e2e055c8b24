package config_test

import (
	"testing"
	"time"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
gradeloop:
  grading:
    confidence_threshold: 80
    max_retries: 2
    auto_submit: true
  llm:
    provider: openai
    api_key: ${GRADELOOP_TEST_API_KEY}
    vision_model: gpt-4o
  system:
    logging:
      level: DEBUG
`

func TestLoadConfig_MergesYAMLOverDefaults(t *testing.T) {
	t.Setenv("GRADELOOP_TEST_API_KEY", "sk-test-123")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig(testYAML), config.NewOsEnvironmentExpander())
	require.NoError(t, err)

	assert.Equal(t, 80.0, cfg.Gradeloop.Grading.ConfidenceThreshold)
	assert.Equal(t, 2, cfg.Gradeloop.Grading.MaxRetries)
	assert.True(t, cfg.Gradeloop.Grading.AutoSubmit)
	assert.Equal(t, "sk-test-123", cfg.Gradeloop.LLM.APIKey)
	assert.Equal(t, "DEBUG", cfg.Gradeloop.System.Logging.Level)

	// Untouched sections keep their defaults.
	assert.Equal(t, 3000, cfg.Gradeloop.Grading.RetryDelayMs)
	assert.Equal(t, 2.0, cfg.Gradeloop.Render.Scale)
	assert.Equal(t, 1920, cfg.Gradeloop.Page.ViewportWidth)
}

func TestLoadConfig_RejectsMalformedYAML(t *testing.T) {
	_, err := config.LoadConfig("", config.EmbeddedConfig("gradeloop: ["), config.NewOsEnvironmentExpander())
	assert.Error(t, err)
}

func TestConfig_WorkflowOptions(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Gradeloop.Grading.ConfidenceThreshold = 65
	cfg.Gradeloop.Grading.RetryDelayMs = 500
	cfg.Gradeloop.Grading.RequireConfirmation = true

	opts := cfg.WorkflowOptions()
	assert.Equal(t, 65.0, opts.ConfidenceThreshold)
	assert.Equal(t, 500*time.Millisecond, opts.RetryDelay)
	assert.True(t, opts.RequireConfirmation)
	assert.Equal(t, 30*time.Second, opts.ConfirmationTimeout)
	assert.NotEmpty(t, opts.RequiredAnchors)
}
