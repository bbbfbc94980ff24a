package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/repo"
)

// GeneratorConfig contains completion call parameters
type GeneratorConfig struct {
	Temperature  float32
	MaxTokens    int
	SnippetDepth int // Messages before the trigger included in the snippet
}

// DefaultGeneratorConfig returns default generator configuration
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Temperature:  0.85,
		MaxTokens:    220,
		SnippetDepth: 10,
	}
}

// NameResolver maps a sender ID to a display name
type NameResolver func(ctx context.Context, senderID string) string

// ReplyRequest is the input for one generated reply
type ReplyRequest struct {
	Snippet    string
	SenderName string
	Text       string
	SafeMode   bool
}

// GenerateResult is the raw generated text
type GenerateResult struct {
	Text     string
	Fallback bool // The completion failed and the canned reply was used
}

// GeneratorUsecase builds persona prompts and requests completions
type GeneratorUsecase struct {
	completion repo.CompletionRepo
	persona    domain.Persona
	config     GeneratorConfig
	logger     *zap.Logger
}

// NewGeneratorUsecase creates a new generator usecase
func NewGeneratorUsecase(completion repo.CompletionRepo, persona domain.Persona, config GeneratorConfig, logger *zap.Logger) *GeneratorUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneratorUsecase{
		completion: completion,
		persona:    persona,
		config:     config,
		logger:     logger,
	}
}

// BuildSnippet renders the trigger message and the messages before it as "name: text" lines
func (uc *GeneratorUsecase) BuildSnippet(ctx context.Context, history []domain.Message, index int, resolve NameResolver) string {
	if index < 0 || index >= len(history) {
		return ""
	}
	start := max(0, index-uc.config.SnippetDepth)

	var sb strings.Builder
	for _, m := range history[start : index+1] {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		name := "someone"
		if m.SenderID != "" {
			name = resolve(ctx, m.SenderID)
		}
		fmt.Fprintf(&sb, "%s: %s\n", name, text)
	}
	return sb.String()
}

// BuildPrompt builds the system and user turns for req
func (uc *GeneratorUsecase) BuildPrompt(req *ReplyRequest) []repo.PromptMessage {
	name := uc.persona.Name
	userMsg := fmt.Sprintf(
		"You are %s. Generate a short reply (1-3 lines) in the persona described.\nConversation snippet:\n%s\n%s: %s\n%s:",
		name, req.Snippet, req.SenderName, req.Text, name,
	)
	if req.SafeMode {
		userMsg = uc.persona.SafeModeNote + "\n\n" + userMsg
	}
	return []repo.PromptMessage{
		{Role: repo.RoleSystem, Content: uc.persona.Instructions},
		{Role: repo.RoleUser, Content: userMsg},
	}
}

// Generate requests a reply. Completion errors never escape, the persona's
// fallback reply is returned instead.
func (uc *GeneratorUsecase) Generate(ctx context.Context, req *ReplyRequest) GenerateResult {
	text, err := uc.completion.Complete(ctx, repo.CompletionRequest{
		Messages:    uc.BuildPrompt(req),
		Temperature: uc.config.Temperature,
		MaxTokens:   uc.config.MaxTokens,
	})
	if err == nil {
		text = strings.TrimSpace(text)
		if text != "" {
			return GenerateResult{Text: text}
		}
		err = fmt.Errorf("empty completion")
	}

	uc.logger.Error("completion failed, using fallback reply", zap.Error(err))
	return GenerateResult{Text: uc.persona.FallbackReply, Fallback: true}
}
