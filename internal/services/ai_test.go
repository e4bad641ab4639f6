package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/projecttime-api/internal/models"
)

func newFakeOpenAI(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			}},
		})
	}))
}

func TestAIService_GenerateTasksFromText(t *testing.T) {
	srv := newFakeOpenAI(t, "```json\n[{\"title\":\"Write API docs\",\"description\":\"cover tasks\",\"priority\":\"HIGH\",\"due_date\":null}]\n```")
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"

	tasks, err := NewAIServiceWithConfig(cfg).GenerateTasksFromText(context.Background(), "Website", "please write the API docs")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Write API docs", tasks[0].Title)
	assert.Equal(t, models.PriorityHigh, tasks[0].Priority)
	assert.Nil(t, tasks[0].DueDate)
}

func TestAIService_InvalidJSON(t *testing.T) {
	srv := newFakeOpenAI(t, "sorry, no tasks here")
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"

	_, err := NewAIServiceWithConfig(cfg).GenerateTasksFromText(context.Background(), "Website", "hello")
	assert.ErrorContains(t, err, "failed to parse AI response")
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "[]", stripCodeFence("```json\n[]\n```"))
	assert.Equal(t, "[]", stripCodeFence("  []  "))
}
