package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/repo"
)

// Typing delay bounds, in seconds
const (
	minTypingDelay = 0.8
	maxTypingDelay = 28.0
)

// DeliveryUsecase sends replies after a human-like typing delay
type DeliveryUsecase struct {
	messageRepo repo.MessageRepo
	rnd         Random
	sleep       Sleeper
}

// NewDeliveryUsecase creates a new delivery usecase
func NewDeliveryUsecase(messageRepo repo.MessageRepo, rnd Random, sleep Sleeper) *DeliveryUsecase {
	if rnd == nil {
		rnd = DefaultRandom()
	}
	if sleep == nil {
		sleep = SleepContext
	}
	return &DeliveryUsecase{
		messageRepo: messageRepo,
		rnd:         rnd,
		sleep:       sleep,
	}
}

// TypingDelay returns how long a person would take to type text
func (uc *DeliveryUsecase) TypingDelay(text string) time.Duration {
	words := max(1, domain.WordCount(text))
	perWord := Uniform(uc.rnd, 0.55, 1.1)
	jitter := Uniform(uc.rnd, 0.0, 1.6)
	delay := min(max(minTypingDelay, float64(words)*perWord+jitter), maxTypingDelay)
	delay += Uniform(uc.rnd, 0.2, 1.5)
	return seconds(delay)
}

// Deliver waits for the typing delay and sends text to the chat.
// The delay is returned even when sending fails.
func (uc *DeliveryUsecase) Deliver(ctx context.Context, chatID, text string) (time.Duration, error) {
	delay := uc.TypingDelay(text)
	if err := uc.sleep(ctx, delay); err != nil {
		return delay, err
	}
	if err := uc.messageRepo.SendText(ctx, chatID, text); err != nil {
		return delay, fmt.Errorf("send text: %w", err)
	}
	return delay, nil
}

// Pause waits a short random interval between two messages of a batch
func (uc *DeliveryUsecase) Pause(ctx context.Context) error {
	return uc.sleep(ctx, seconds(Uniform(uc.rnd, 0.6, 1.8)))
}
