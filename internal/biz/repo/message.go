package repo

import (
	"context"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
)

// MessageRepo is the chat platform interface.
// Responsible for fetching and sending messages through the platform API.
type MessageRepo interface {
	// SelfID returns the identifier the bot's own messages are sent under
	SelfID() string

	// GetRecentMessages returns up to limit messages from the chat, newest first
	GetRecentMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error)

	// GetChatMembers gets the list of chat members
	GetChatMembers(ctx context.Context, chatID string) ([]domain.Member, error)

	// SendText sends a text message
	SendText(ctx context.Context, chatID, text string) error
}

// ThreadRepo lists the chats visible to the bot account
type ThreadRepo interface {
	ListThreads(ctx context.Context, limit int) ([]domain.Thread, error)
}
