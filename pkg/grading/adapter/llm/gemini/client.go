// Package gemini implements the text and vision completion capabilities
// over the Google generative AI SDK.
package gemini

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

const moduleName = "llm.gemini"

// Client talks to the Gemini API. A short-lived SDK client is opened per
// call, following the SDK's connection model.
type Client struct {
	apiKey      string
	textModel   string
	visionModel string
}

// NewClient creates a new Client from the LLM configuration.
func NewClient(cfg *config.LLMConfig) *Client {
	return &Client{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		textModel:   strings.TrimSpace(cfg.TextModel),
		visionModel: strings.TrimSpace(cfg.VisionModel),
	}
}

// Complete runs a text-only completion.
func (c *Client) Complete(ctx context.Context, prompt string, opts port.CompletionOptions) (string, error) {
	return c.generate(ctx, c.textModel, opts, genai.Text(prompt))
}

// CompleteWithImage runs a multimodal completion with the raster inlined as
// an SDK blob part.
func (c *Client) CompleteWithImage(ctx context.Context, prompt string, image *model.ImagePayload, opts port.CompletionOptions) (string, error) {
	if image == nil || len(image.Data) == 0 {
		return "", exception.NewGradingError(moduleName, "no image payload for vision completion", exception.KindAIScoring, nil)
	}
	blob := &genai.Blob{MIMEType: imageMIME(image.Format), Data: image.Data}
	return c.generate(ctx, c.visionModel, opts, genai.Text(prompt), blob)
}

func (c *Client) generate(ctx context.Context, modelName string, opts port.CompletionOptions, parts ...genai.Part) (string, error) {
	if c.apiKey == "" {
		return "", exception.NewGradingError(moduleName, "API key is not configured", exception.KindAIScoring, nil)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return "", exception.NewGradingError(moduleName, "failed to create Gemini client", exception.KindNetwork, err)
	}
	defer client.Close()

	m := client.GenerativeModel(modelName)
	temperature := float32(opts.Temperature)
	m.GenerationConfig = genai.GenerationConfig{Temperature: &temperature}
	if opts.MaxTokens > 0 {
		maxTokens := int32(opts.MaxTokens)
		m.GenerationConfig.MaxOutputTokens = &maxTokens
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", exception.NewGradingError(moduleName, "Gemini completion call failed", exception.KindNetwork, err)
	}

	text := firstText(resp)
	if text == "" {
		return "", exception.NewGradingError(moduleName, "Gemini returned an empty response", exception.KindAIScoring, nil)
	}
	logger.Debugf("gemini: model %s returned %d chars", modelName, len(text))
	return text, nil
}

// firstText concatenates the text parts of the first candidate.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}

func imageMIME(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

var (
	_ port.TextCompletion   = (*Client)(nil)
	_ port.VisionCompletion = (*Client)(nil)
)
