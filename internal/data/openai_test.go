package data

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/repo"
)

func TestOpenAIRepo_Complete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"nah."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	r := NewOpenAIRepo("sk-test", "", srv.URL)
	text, err := r.Complete(context.Background(), repo.CompletionRequest{
		Messages: []repo.PromptMessage{
			{Role: repo.RoleSystem, Content: "persona"},
			{Role: repo.RoleUser, Content: "hi"},
		},
		Temperature: 0.85,
		MaxTokens:   220,
	})

	require.NoError(t, err)
	assert.Equal(t, "nah.", text)
	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 220, got["max_tokens"])
	assert.InDelta(t, 0.85, got["temperature"], 1e-6)
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestOpenAIRepo_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIRepo("sk-test", "m", srv.URL).Complete(context.Background(), repo.CompletionRequest{})

	assert.EqualError(t, err, "no response choices")
}

func TestOpenAIRepo_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIRepo("sk-test", "m", srv.URL).Complete(context.Background(), repo.CompletionRequest{})

	assert.ErrorContains(t, err, "chat completion")
}
