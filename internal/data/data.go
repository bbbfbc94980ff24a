package data

import (
	"go.uber.org/zap"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/repo"
	"github.com/DevRickLin/feishu-persona-bot/internal/conf"
)

// Repositories contains all repositories
type Repositories struct {
	Message    repo.MessageRepo
	Thread     repo.ThreadRepo
	Completion repo.CompletionRepo
}

// NewRepositories creates all repositories
func NewRepositories(feishuClient FeishuClient, cfg *conf.Config, logger *zap.Logger) *Repositories {
	feishuRepo := NewFeishuRepo(feishuClient, logger.Named("feishu"))
	return &Repositories{
		Message:    feishuRepo,
		Thread:     feishuRepo,
		Completion: NewOpenAIRepo(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL),
	}
}
