package biz

import (
	"go.uber.org/zap"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/repo"
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Intake    *usecase.IntakeUsecase
	Decision  *usecase.DecisionUsecase
	Generator *usecase.GeneratorUsecase
	Delivery  *usecase.DeliveryUsecase
}

// UsecaseConfig contains the settings the usecases are built from
type UsecaseConfig struct {
	SkipInitialBacklog bool
	Decision           usecase.DecisionConfig
	Generator          usecase.GeneratorConfig
}

// NewUsecases creates all usecases, sharing one random source and sleeper
func NewUsecases(messageRepo repo.MessageRepo, completionRepo repo.CompletionRepo, persona domain.Persona, cfg UsecaseConfig, rnd usecase.Random, sleep usecase.Sleeper, logger *zap.Logger) *Usecases {
	return &Usecases{
		Intake:    usecase.NewIntakeUsecase(cfg.SkipInitialBacklog),
		Decision:  usecase.NewDecisionUsecase(persona, cfg.Decision, rnd),
		Generator: usecase.NewGeneratorUsecase(completionRepo, persona, cfg.Generator, logger),
		Delivery:  usecase.NewDeliveryUsecase(messageRepo, rnd, sleep),
	}
}
