package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/repo"
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/usecase"
	"github.com/DevRickLin/feishu-persona-bot/internal/infra/logging"
)

// ErrorBackoff is the wait after a failed cycle
const ErrorBackoff = 6 * time.Second

// LoopConfig contains poll loop configuration
type LoopConfig struct {
	ThreadID       string
	FetchAmount    int
	PollInterval   time.Duration
	MaxReplyLength int
}

// SessionState is the in-memory state of one bot process
type SessionState struct {
	Watermark domain.Watermark
	Cooldowns *domain.CooldownTable
	Usernames *domain.UsernameCache
}

// NewSessionState creates empty session state
func NewSessionState() *SessionState {
	return &SessionState{
		Cooldowns: domain.NewCooldownTable(),
		Usernames: domain.NewUsernameCache(),
	}
}

// ChatLoop polls one thread and replies in character.
// It runs on a single goroutine and owns its SessionState.
type ChatLoop struct {
	config      LoopConfig
	persona     domain.Persona
	messageRepo repo.MessageRepo
	intakeUC    *usecase.IntakeUsecase
	decisionUC  *usecase.DecisionUsecase
	generatorUC *usecase.GeneratorUsecase
	deliveryUC  *usecase.DeliveryUsecase
	logger      *zap.Logger

	state *SessionState
	now   func() time.Time
	sleep usecase.Sleeper
}

// NewChatLoop creates a new chat loop
func NewChatLoop(
	config LoopConfig,
	persona domain.Persona,
	messageRepo repo.MessageRepo,
	intakeUC *usecase.IntakeUsecase,
	decisionUC *usecase.DecisionUsecase,
	generatorUC *usecase.GeneratorUsecase,
	deliveryUC *usecase.DeliveryUsecase,
	logger *zap.Logger,
) *ChatLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatLoop{
		config:      config,
		persona:     persona,
		messageRepo: messageRepo,
		intakeUC:    intakeUC,
		decisionUC:  decisionUC,
		generatorUC: generatorUC,
		deliveryUC:  deliveryUC,
		logger:      logger,
		state:       NewSessionState(),
		now:         time.Now,
		sleep:       usecase.SleepContext,
	}
}

// State returns the loop's session state
func (l *ChatLoop) State() *SessionState {
	return l.state
}

// Run polls until ctx is cancelled
func (l *ChatLoop) Run(ctx context.Context) error {
	l.logger.Info("polling thread",
		zap.String("thread_id", l.config.ThreadID),
		zap.Duration("interval", l.config.PollInterval),
	)

	for {
		wait := l.config.PollInterval
		if err := l.safeCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error("loop error", zap.Error(err))
			wait = ErrorBackoff
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// safeCycle runs one cycle, turning a panic into an error
func (l *ChatLoop) safeCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()
	return l.RunCycle(ctx)
}

// RunCycle fetches the latest messages and handles the new ones in order
func (l *ChatLoop) RunCycle(ctx context.Context) error {
	batch, err := l.messageRepo.GetRecentMessages(ctx, l.config.ThreadID, l.config.FetchAmount)
	if err != nil {
		return fmt.Errorf("fetch messages: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}

	history := l.intakeUC.Chronological(batch)
	priming := l.intakeUC.Priming(&l.state.Watermark)
	selfID := l.messageRepo.SelfID()

	for i := range history {
		msg := &history[i]
		switch l.intakeUC.Admit(&l.state.Watermark, selfID, msg, priming) {
		case usecase.AdmitAccepted:
		case usecase.AdmitBacklog:
			l.logger.Debug("skipping backlog message", zap.String("msg_id", msg.ID))
			continue
		default:
			continue
		}

		if err := l.handleMessage(ctx, history, i); err != nil {
			return err
		}
	}

	if priming {
		l.logger.Info("startup backlog skipped", zap.Int64("watermark", l.state.Watermark.Value()))
	}
	return nil
}

// handleMessage runs decision, generation and delivery for history[index].
// Only context cancellation is returned.
func (l *ChatLoop) handleMessage(ctx context.Context, history []domain.Message, index int) error {
	msg := &history[index]
	text := strings.TrimSpace(msg.Text)
	senderName := l.resolveName(ctx, msg.SenderID)
	log := l.logger.With(zap.String("sender", senderName), zap.String("msg_id", msg.ID))
	log.Info("new message", zap.String("text", logging.Truncate(text, 120)))

	decision := l.decisionUC.Decide(l.state.Cooldowns, msg.SenderID, text, l.now())
	if !decision.Engage {
		if decision.Reason == "cooldown" {
			log.Info("cooldown active")
		} else {
			log.Info("skipping", zap.String("reason", decision.Reason), zap.Float64("chance", decision.Chance))
		}
		return nil
	}

	safeMode := l.persona.IsProtected(text)
	snippet := l.generatorUC.BuildSnippet(ctx, history, index, l.resolveName)
	result := l.generatorUC.Generate(ctx, &usecase.ReplyRequest{
		Snippet:    snippet,
		SenderName: senderName,
		Text:       text,
		SafeMode:   safeMode,
	})

	reply := domain.ShapeReply(result.Text, l.config.MaxReplyLength)
	if reply == "" {
		reply = domain.ShapeReply(l.persona.FallbackReply, l.config.MaxReplyLength)
	}
	if safeMode {
		reply = domain.ApplySafeMode(reply, l.persona, l.config.MaxReplyLength)
	}

	delay, err := l.deliveryUC.Deliver(ctx, l.config.ThreadID, reply)
	log.Info("typing delay", zap.Duration("delay", delay))
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		log.Error("send failed", zap.Error(err))
	} else {
		log.Info("replied", zap.String("reply", strings.ReplaceAll(reply, "\n", " | ")), zap.Bool("safe_mode", safeMode))
	}

	// The cooldown starts even when sending failed
	l.state.Cooldowns.Record(msg.SenderID, l.now())

	if err := l.deliveryUC.Pause(ctx); err != nil {
		return err
	}
	return nil
}

// resolveName returns the sender's display name, falling back to the ID.
// The bot's own messages carry the persona name.
func (l *ChatLoop) resolveName(ctx context.Context, senderID string) string {
	if senderID != "" && senderID == l.messageRepo.SelfID() {
		return l.persona.Name
	}
	if name, ok := l.state.Usernames.Get(senderID); ok {
		return name
	}

	members, err := l.messageRepo.GetChatMembers(ctx, l.config.ThreadID)
	if err != nil {
		l.logger.Warn("failed to get chat members", zap.Error(err))
		return senderID
	}
	for _, m := range members {
		if m.UserID != "" && m.Name != "" {
			l.state.Usernames.Put(m.UserID, m.Name)
		}
	}

	if name, ok := l.state.Usernames.Get(senderID); ok {
		return name
	}
	return senderID
}
