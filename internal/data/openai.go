package data

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/repo"
)

const completionTimeout = 60 * time.Second

// openaiRepo implements the completion repository on an OpenAI-compatible API
type openaiRepo struct {
	client *openai.Client
	model  string
}

// NewOpenAIRepo creates a completion repository. baseURL may be empty.
func NewOpenAIRepo(apiKey, model, baseURL string) repo.CompletionRepo {
	if model == "" {
		model = openai.GPT4oMini
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &openaiRepo{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Complete sends the prompt and returns the first choice
func (r *openaiRepo) Complete(ctx context.Context, req repo.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return resp.Choices[0].Message.Content, nil
}
