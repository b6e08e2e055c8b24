// Package openai implements the text and vision completion capabilities
// against an OpenAI-compatible chat completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

const (
	moduleName     = "llm.openai"
	defaultBaseURL = "https://api.openai.com/v1"
)

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client talks to an OpenAI-compatible chat completions endpoint. It serves
// both the text capability (rubric analysis) and the vision capability
// (scoring).
type Client struct {
	apiKey      string
	baseURL     string
	textModel   string
	visionModel string
	httpc       *http.Client
}

// NewClient creates a new Client from the LLM configuration.
func NewClient(cfg *config.LLMConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		httpc:       &http.Client{Timeout: timeout},
	}
}

// Complete runs a text-only completion.
func (c *Client) Complete(ctx context.Context, prompt string, opts port.CompletionOptions) (string, error) {
	messages := []chatMessage{{
		Role:    "user",
		Content: []contentPart{{Type: "text", Text: prompt}},
	}}
	return c.complete(ctx, c.textModel, messages, opts)
}

// CompleteWithImage runs a multimodal completion with the image inlined as a
// base64 data URL.
func (c *Client) CompleteWithImage(ctx context.Context, prompt string, image *model.ImagePayload, opts port.CompletionOptions) (string, error) {
	if image == nil || len(image.Data) == 0 {
		return "", exception.NewGradingError(moduleName, "no image payload for vision completion", exception.KindAIScoring, nil)
	}
	dataURL := "data:" + imageMIME(image.Format) + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
	messages := []chatMessage{{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
		},
	}}
	return c.complete(ctx, c.visionModel, messages, opts)
}

func (c *Client) complete(ctx context.Context, modelName string, messages []chatMessage, opts port.CompletionOptions) (string, error) {
	if c.apiKey == "" {
		return "", exception.NewGradingError(moduleName, "API key is not configured", exception.KindAIScoring, nil)
	}

	payload, err := json.Marshal(chatRequest{
		Model:       modelName,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", exception.NewGradingError(moduleName, "failed to encode completion request", exception.KindUnknown, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", exception.NewGradingError(moduleName, "failed to create completion request", exception.KindUnknown, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", exception.NewGradingError(moduleName, "completion call failed", exception.KindNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", exception.NewGradingError(moduleName, "failed to read completion response", exception.KindNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("completion endpoint returned status %d", resp.StatusCode)
		kind := exception.KindAIScoring
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			kind = exception.KindNetwork
		}
		return "", exception.NewGradingError(moduleName, message, kind, errors.New(strings.TrimSpace(string(body))))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", exception.NewGradingError(moduleName, "failed to decode completion response", exception.KindAIScoring, err)
	}
	if parsed.Error != nil {
		return "", exception.NewGradingError(moduleName, "completion endpoint reported: "+parsed.Error.Message, exception.KindAIScoring, nil)
	}
	if len(parsed.Choices) == 0 {
		return "", exception.NewGradingError(moduleName, "completion response has no choices", exception.KindAIScoring, nil)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	logger.Debugf("openai: model %s returned %d chars", modelName, len(content))
	return content, nil
}

// imageMIME maps a payload format to the MIME types the vision endpoint
// accepts.
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
