package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/repo"
)

// seqRandom replays fixed draws, repeating the last one
type seqRandom struct {
	vals []float64
	i    int
}

func (r *seqRandom) Float64() float64 {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[min(r.i, len(r.vals)-1)]
	r.i++
	return v
}

type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

type recordingSleeper struct {
	slept []time.Duration
	err   error
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return s.err
}

type mockMessageRepo struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (m *mockMessageRepo) SelfID() string { return "bot" }

func (m *mockMessageRepo) GetRecentMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	return nil, nil
}

func (m *mockMessageRepo) GetChatMembers(ctx context.Context, chatID string) ([]domain.Member, error) {
	return nil, nil
}

func (m *mockMessageRepo) SendText(ctx context.Context, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, text)
	return nil
}

type mockCompletionRepo struct {
	reply string
	err   error
	reqs  []repo.CompletionRequest
}

func (m *mockCompletionRepo) Complete(ctx context.Context, req repo.CompletionRequest) (string, error) {
	m.reqs = append(m.reqs, req)
	return m.reply, m.err
}

func testPersona() domain.Persona {
	return domain.Persona{
		Name:              "Maverick",
		Instructions:      "You are Maverick.",
		ProtectedKeywords: []string{"christian", "muslim"},
		Greetings:         []string{"yo", "hey", "hi", "hello"},
		DeflectionPhrase:  "(not touching that).",
		SafeModeNote:      "NOTE: The last message mentions a protected identity. Do NOT insult any protected group. Reply neutrally or pivot.",
		FallbackReply:     "huh. can't chat right now.",
	}
}
