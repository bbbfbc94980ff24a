package data

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/repo"
	"github.com/DevRickLin/feishu-persona-bot/internal/infra/feishu"
)

// FeishuClient is the subset of the Feishu client the repositories use
type FeishuClient interface {
	AppID() string
	ListMessages(ctx context.Context, chatID string, pageSize int) ([]*feishu.HistoryMessage, error)
	GetChatMembers(ctx context.Context, chatID string) ([]*feishu.ChatMember, error)
	ListChats(ctx context.Context, limit int) ([]*feishu.ChatInfo, error)
	SendText(ctx context.Context, chatID, text string) error
}

// FeishuRepo implements the Feishu message and thread repositories
type FeishuRepo struct {
	client FeishuClient
	logger *zap.Logger
}

// NewFeishuRepo creates a new Feishu repository
func NewFeishuRepo(client FeishuClient, logger *zap.Logger) *FeishuRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeishuRepo{client: client, logger: logger}
}

var (
	_ repo.MessageRepo = (*FeishuRepo)(nil)
	_ repo.ThreadRepo  = (*FeishuRepo)(nil)
)

// SelfID returns the sender ID of the bot's own messages
func (r *FeishuRepo) SelfID() string {
	return r.client.AppID()
}

// GetRecentMessages gets the latest messages, newest first
func (r *FeishuRepo) GetRecentMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	msgs, err := r.client.ListMessages(ctx, chatID, limit)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		var createTime time.Time
		var createMs int64
		if m.CreateTime != "" {
			// Feishu timestamp is millisecond string
			if ms, err := strconv.ParseInt(m.CreateTime, 10, 64); err == nil {
				createMs = ms
				createTime = time.UnixMilli(ms)
			}
		}

		// Feishu message IDs (om_...) carry no order, fall back to creation time
		seq, ok := domain.ParseSeq(m.MsgID)
		if !ok && m.MsgID != "" {
			seq = createMs
		}

		msg := domain.Message{
			ID:         m.MsgID,
			Seq:        seq,
			ChatID:     chatID,
			Text:       m.Content,
			CreateTime: createTime,
		}
		if m.Sender != nil {
			msg.SenderID = m.Sender.SenderID
			msg.FromSelf = m.Sender.SenderType == "app" && m.Sender.SenderID == r.client.AppID()
		}
		result = append(result, msg)
	}
	return result, nil
}

// GetChatMembers gets chat member list
func (r *FeishuRepo) GetChatMembers(ctx context.Context, chatID string) ([]domain.Member, error) {
	members, err := r.client.GetChatMembers(ctx, chatID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Member, 0, len(members))
	for _, m := range members {
		result = append(result, domain.Member{
			UserID: m.MemberID,
			Name:   m.Name,
		})
	}
	return result, nil
}

// SendText sends a text message
func (r *FeishuRepo) SendText(ctx context.Context, chatID, text string) error {
	return r.client.SendText(ctx, chatID, text)
}

// ListThreads lists chats with their members. A chat whose members cannot be
// read is still listed.
func (r *FeishuRepo) ListThreads(ctx context.Context, limit int) ([]domain.Thread, error) {
	chats, err := r.client.ListChats(ctx, limit)
	if err != nil {
		return nil, err
	}

	threads := make([]domain.Thread, 0, len(chats))
	for _, c := range chats {
		members, err := r.GetChatMembers(ctx, c.ChatID)
		if err != nil {
			r.logger.Warn("failed to get chat members", zap.String("chat_id", c.ChatID), zap.Error(err))
		}
		threads = append(threads, domain.Thread{
			ID:      c.ChatID,
			Title:   c.Name,
			Members: members,
		})
	}
	return threads, nil
}
