package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeloop/gradeloop/pkg/grading/adapter/llm/openai"
	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
)

func newClient(baseURL string) *openai.Client {
	return openai.NewClient(&config.LLMConfig{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		TextModel:      "gpt-4o-mini",
		VisionModel:    "gpt-4o",
		TimeoutSeconds: 5,
	})
}

func chatReply(content string) string {
	reply := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
	data, _ := json.Marshal(reply)
	return string(data)
}

func TestComplete_SendsPromptAndReturnsContent(t *testing.T) {
	var captured struct {
		auth string
		body map[string]interface{}
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))
		w.Write([]byte(chatReply("分析结果")))
	}))
	defer server.Close()

	content, err := newClient(server.URL).Complete(context.Background(), "分析这道题", port.CompletionOptions{Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "分析结果", content)
	assert.Equal(t, "Bearer test-key", captured.auth)
	assert.Equal(t, "gpt-4o-mini", captured.body["model"])
}

func TestCompleteWithImage_InlinesDataURL(t *testing.T) {
	var rawBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		rawBody = string(body)
		w.Write([]byte(chatReply(`{"totalScore": 40}`)))
	}))
	defer server.Close()

	image := &model.ImagePayload{Data: []byte("fake-png"), Format: "png"}
	content, err := newClient(server.URL).CompleteWithImage(context.Background(), "评分", image, port.CompletionOptions{})
	require.NoError(t, err)
	assert.Contains(t, content, "totalScore")
	assert.Contains(t, rawBody, "data:image/png;base64,")
	assert.Contains(t, rawBody, `"model":"gpt-4o"`)
}

func TestCompleteWithImage_MissingImageFails(t *testing.T) {
	_, err := newClient("http://localhost:0").CompleteWithImage(context.Background(), "评分", nil, port.CompletionOptions{})
	require.Error(t, err)
	assert.Equal(t, exception.KindAIScoring, exception.KindOf(err))
}

func TestComplete_TransportAndServerFailuresAreNetworkKind(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	down.Close()

	_, err := newClient(down.URL).Complete(context.Background(), "p", port.CompletionOptions{})
	require.Error(t, err)
	assert.Equal(t, exception.KindNetwork, exception.KindOf(err))

	for _, status := range []int{http.StatusInternalServerError, http.StatusTooManyRequests} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", status)
		}))
		_, err := newClient(server.URL).Complete(context.Background(), "p", port.CompletionOptions{})
		server.Close()
		require.Error(t, err)
		assert.Equal(t, exception.KindNetwork, exception.KindOf(err), "status %d", status)
	}
}

func TestComplete_APIErrorsAreAIScoringKind(t *testing.T) {
	badRequest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "invalid model"}}`, http.StatusBadRequest)
	}))
	defer badRequest.Close()

	_, err := newClient(badRequest.URL).Complete(context.Background(), "p", port.CompletionOptions{})
	require.Error(t, err)
	assert.Equal(t, exception.KindAIScoring, exception.KindOf(err))

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer empty.Close()

	_, err = newClient(empty.URL).Complete(context.Background(), "p", port.CompletionOptions{})
	require.Error(t, err)
	assert.Equal(t, exception.KindAIScoring, exception.KindOf(err))
}
