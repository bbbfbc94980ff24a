package usecase

import (
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
)

// AdmitReason explains why a fetched message was or was not admitted
type AdmitReason string

const (
	AdmitAccepted  AdmitReason = "accepted"
	AdmitNoContent AdmitReason = "no_content"
	AdmitSeen      AdmitReason = "seen"
	AdmitSelf      AdmitReason = "self"
	AdmitBacklog   AdmitReason = "backlog"
)

// IntakeUsecase orders fetched batches and filters out messages already handled
type IntakeUsecase struct {
	skipInitialBacklog bool
}

// NewIntakeUsecase creates a new intake usecase.
// With skipInitialBacklog the first batch after startup only primes the watermark.
func NewIntakeUsecase(skipInitialBacklog bool) *IntakeUsecase {
	return &IntakeUsecase{skipInitialBacklog: skipInitialBacklog}
}

// Chronological returns a newest-first batch reversed into oldest-first order
func (uc *IntakeUsecase) Chronological(newestFirst []domain.Message) []domain.Message {
	out := make([]domain.Message, len(newestFirst))
	for i, m := range newestFirst {
		out[len(newestFirst)-1-i] = m
	}
	return out
}

// Priming reports whether the current cycle should only establish the baseline
func (uc *IntakeUsecase) Priming(mark *domain.Watermark) bool {
	return uc.skipInitialBacklog && !mark.IsSet()
}

// Admit decides whether m is new work. The watermark advances for every message
// with an identifier and text that has not been seen, including the bot's own.
func (uc *IntakeUsecase) Admit(mark *domain.Watermark, selfID string, m *domain.Message, priming bool) AdmitReason {
	if m.Seq == 0 || !m.HasText() {
		return AdmitNoContent
	}
	if mark.Seen(m.Seq) {
		return AdmitSeen
	}
	mark.Advance(m.Seq)
	if m.IsFromBot(selfID) {
		return AdmitSelf
	}
	if priming {
		return AdmitBacklog
	}
	return AdmitAccepted
}
