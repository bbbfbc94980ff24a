package usecase

import (
	"strings"
	"time"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
)

// DecisionConfig contains reply decision configuration
type DecisionConfig struct {
	BotHandle   string        // Account handle, a mention forces a reply
	ReplyChance float64       // Base reply probability
	Cooldown    time.Duration // Minimum gap between two replies to the same sender
}

// LivelyChanceFloor is the minimum probability used for questions, exclamations and short messages
const LivelyChanceFloor = 0.85

// DefaultDecisionConfig returns default decision configuration
func DefaultDecisionConfig() DecisionConfig {
	return DecisionConfig{
		ReplyChance: 0.75,
		Cooldown:    25 * time.Second,
	}
}

// Decision is the outcome of a reply decision
type Decision struct {
	Engage bool
	Reason string
	Chance float64
}

// DecisionUsecase decides whether the bot engages with a message
type DecisionUsecase struct {
	persona domain.Persona
	config  DecisionConfig
	rnd     Random
}

// NewDecisionUsecase creates a new decision usecase
func NewDecisionUsecase(persona domain.Persona, config DecisionConfig, rnd Random) *DecisionUsecase {
	if rnd == nil {
		rnd = DefaultRandom()
	}
	return &DecisionUsecase{
		persona: persona,
		config:  config,
		rnd:     rnd,
	}
}

// Decide determines whether to reply to text from senderID at now.
// Each call makes at most one independent draw.
func (uc *DecisionUsecase) Decide(cooldowns *domain.CooldownTable, senderID, text string, now time.Time) Decision {
	// 1. Replied to this sender too recently -> skip
	if cooldowns.Active(senderID, now, uc.config.Cooldown) {
		return Decision{Reason: "cooldown"}
	}

	lower := strings.ToLower(text)

	// 2. Addressed directly -> always reply
	if uc.mentionsBot(lower) {
		return Decision{Engage: true, Reason: "mention", Chance: 1}
	}
	if uc.persona.StartsWithGreeting(lower) {
		return Decision{Engage: true, Reason: "greeting", Chance: 1}
	}

	// 3. Questions, exclamations and short messages get a raised chance
	if strings.ContainsAny(text, "?!") || domain.WordCount(text) < 5 {
		chance := max(uc.config.ReplyChance, LivelyChanceFloor)
		return Decision{Engage: uc.rnd.Float64() < chance, Reason: "lively", Chance: chance}
	}

	// 4. Everything else -> base chance
	chance := uc.config.ReplyChance
	return Decision{Engage: uc.rnd.Float64() < chance, Reason: "base", Chance: chance}
}

func (uc *DecisionUsecase) mentionsBot(lower string) bool {
	for _, name := range []string{uc.config.BotHandle, uc.persona.Name} {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" && strings.Contains(lower, name) {
			return true
		}
	}
	return false
}
