package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/repo"
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/usecase"
)

type stubMessageRepo struct{ sent []string }

func (s *stubMessageRepo) SelfID() string { return "bot" }
func (s *stubMessageRepo) GetRecentMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	return nil, nil
}
func (s *stubMessageRepo) GetChatMembers(ctx context.Context, chatID string) ([]domain.Member, error) {
	return nil, nil
}
func (s *stubMessageRepo) SendText(ctx context.Context, chatID, text string) error {
	s.sent = append(s.sent, text)
	return nil
}

type stubCompletion struct{}

func (stubCompletion) Complete(ctx context.Context, req repo.CompletionRequest) (string, error) {
	return "sure", nil
}

type constRandom float64

func (c constRandom) Float64() float64 { return float64(c) }

func TestNewUsecases_SharesRepositories(t *testing.T) {
	messages := &stubMessageRepo{}
	persona := domain.Persona{Name: "Maverick", FallbackReply: "huh."}
	var slept []time.Duration
	sleep := func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	ucs := NewUsecases(messages, stubCompletion{}, persona, UsecaseConfig{
		SkipInitialBacklog: true,
		Decision:           usecase.DecisionConfig{ReplyChance: 1, Cooldown: time.Second},
		Generator:          usecase.DefaultGeneratorConfig(),
	}, constRandom(0), sleep, nil)

	var mark domain.Watermark
	assert.True(t, ucs.Intake.Priming(&mark))
	assert.True(t, ucs.Decision.Decide(domain.NewCooldownTable(), "u1", "just a long plain statement here", time.Now()).Engage)
	assert.Equal(t, "sure", ucs.Generator.Generate(context.Background(), &usecase.ReplyRequest{}).Text)

	_, err := ucs.Delivery.Deliver(context.Background(), "oc_1", "sure")
	require.NoError(t, err)
	assert.Equal(t, []string{"sure"}, messages.sent)
	assert.Len(t, slept, 1)
}
