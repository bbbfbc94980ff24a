package feishu

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/DevRickLin/feishu-persona-bot/internal/infra/logging"
)

// Feishu API limits
const (
	MaxHistoryPageSize = 50
	MaxChatListSize    = 100
)

// Sender represents the message sender
type Sender struct {
	SenderID   string // User open_id or app ID
	SenderType string // user, app
}

// ChatMember represents a member in a chat
type ChatMember struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
}

// ChatInfo represents a chat visible to the bot
type ChatInfo struct {
	ChatID string `json:"chat_id"`
	Name   string `json:"name"`
}

// HistoryMessage represents a message from chat history
type HistoryMessage struct {
	MsgID      string `json:"message_id"`
	MsgType    string `json:"msg_type"`
	Content    string `json:"content"` // Plain text with mentions resolved
	CreateTime string `json:"create_time"`
	Sender     *Sender
}

// BotInfo describes the bot account
type BotInfo struct {
	OpenID  string `json:"open_id"`
	AppName string `json:"app_name"`
}

// Client is the Feishu API client
type Client struct {
	appID   string
	larkCli *lark.Client
	logger  *zap.Logger
}

// NewClient creates a new Feishu client. Tenant tokens are kept in cache, so a
// persistent cache lets a restarted process reuse its session.
func NewClient(appID, appSecret string, cache larkcore.Cache, logger *zap.Logger, debug bool) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []lark.ClientOptionFunc{
		lark.WithLogger(logging.NewLarkLogger(logger)),
		lark.WithLogLevel(logging.LarkLevel(debug)),
	}
	if cache != nil {
		opts = append(opts, lark.WithTokenCache(cache))
	}
	return &Client{
		appID:   appID,
		larkCli: lark.NewClient(appID, appSecret, opts...),
		logger:  logger,
	}
}

// AppID returns the app ID, which is the sender ID of the bot's own messages
func (c *Client) AppID() string {
	return c.appID
}

// Login verifies the credentials by fetching the bot's own info.
// The tenant token obtained on the way lands in the token cache.
func (c *Client) Login(ctx context.Context) (*BotInfo, error) {
	resp, err := c.larkCli.Get(ctx, "/open-apis/bot/v3/info", nil, larkcore.AccessTokenTypeTenant)
	if err != nil {
		return nil, fmt.Errorf("get bot info: %w", err)
	}

	var result struct {
		Code int     `json:"code"`
		Msg  string  `json:"msg"`
		Bot  BotInfo `json:"bot"`
	}
	if err := json.Unmarshal(resp.RawBody, &result); err != nil {
		return nil, fmt.Errorf("decode bot info: %w", err)
	}
	if result.Code != 0 {
		return nil, fmt.Errorf("get bot info error: %s (code %d)", result.Msg, result.Code)
	}

	c.logger.Info("logged in", zap.String("open_id", result.Bot.OpenID), zap.String("app_name", result.Bot.AppName))
	return &result.Bot, nil
}

// ListMessages retrieves the most recent messages from a chat, newest first
func (c *Client) ListMessages(ctx context.Context, chatID string, pageSize int) ([]*HistoryMessage, error) {
	if pageSize > MaxHistoryPageSize {
		pageSize = MaxHistoryPageSize
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	req := larkim.NewListMessageReqBuilder().
		ContainerIdType("chat").
		ContainerId(chatID).
		SortType("ByCreateTimeDesc").
		PageSize(pageSize).
		Build()

	resp, err := c.larkCli.Im.Message.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("list messages error: %s", resp.Msg)
	}

	var messages []*HistoryMessage
	if resp.Data == nil {
		return messages, nil
	}
	for _, item := range resp.Data.Items {
		msg := &HistoryMessage{
			MsgID:      deref(item.MessageId),
			MsgType:    deref(item.MsgType),
			CreateTime: deref(item.CreateTime),
		}

		mentionMap := make(map[string]string)
		for _, mention := range item.Mentions {
			if mention != nil && mention.Key != nil && mention.Name != nil {
				mentionMap[*mention.Key] = *mention.Name
			}
		}

		deleted := item.Deleted != nil && *item.Deleted
		if !deleted && item.Body != nil && item.Body.Content != nil {
			msg.Content = ParseContent(msg.MsgType, *item.Body.Content, mentionMap)
		}

		if item.Sender != nil {
			msg.Sender = &Sender{
				SenderID:   deref(item.Sender.Id),
				SenderType: deref(item.Sender.SenderType),
			}
		}

		messages = append(messages, msg)
	}

	c.logger.Debug("listed messages", zap.String("chat_id", chatID), zap.Int("count", len(messages)))
	return messages, nil
}

// GetChatMembers retrieves members of a chat, following pagination
func (c *Client) GetChatMembers(ctx context.Context, chatID string) ([]*ChatMember, error) {
	var members []*ChatMember
	var pageToken string

	for {
		reqBuilder := larkim.NewGetChatMembersReqBuilder().
			MemberIdType("open_id").
			ChatId(chatID).
			PageSize(100)
		if pageToken != "" {
			reqBuilder = reqBuilder.PageToken(pageToken)
		}

		resp, err := c.larkCli.Im.ChatMembers.Get(ctx, reqBuilder.Build())
		if err != nil {
			return nil, fmt.Errorf("get chat members failed: %w", err)
		}
		if !resp.Success() {
			return nil, fmt.Errorf("get chat members error: %s", resp.Msg)
		}
		if resp.Data == nil {
			break
		}

		for _, item := range resp.Data.Items {
			members = append(members, &ChatMember{
				MemberID: deref(item.MemberId),
				Name:     deref(item.Name),
			})
		}

		if resp.Data.PageToken == nil || *resp.Data.PageToken == "" {
			break
		}
		pageToken = *resp.Data.PageToken
	}

	return members, nil
}

// ListChats retrieves up to limit chats the bot is a member of
func (c *Client) ListChats(ctx context.Context, limit int) ([]*ChatInfo, error) {
	if limit <= 0 || limit > MaxChatListSize {
		limit = MaxChatListSize
	}

	var chats []*ChatInfo
	var pageToken string
	for len(chats) < limit {
		reqBuilder := larkim.NewListChatReqBuilder().PageSize(min(limit-len(chats), MaxChatListSize))
		if pageToken != "" {
			reqBuilder = reqBuilder.PageToken(pageToken)
		}

		resp, err := c.larkCli.Im.Chat.List(ctx, reqBuilder.Build())
		if err != nil {
			return nil, fmt.Errorf("list chats failed: %w", err)
		}
		if !resp.Success() {
			return nil, fmt.Errorf("list chats error: %s", resp.Msg)
		}
		if resp.Data == nil {
			break
		}

		for _, item := range resp.Data.Items {
			chats = append(chats, &ChatInfo{
				ChatID: deref(item.ChatId),
				Name:   deref(item.Name),
			})
		}

		if resp.Data.HasMore == nil || !*resp.Data.HasMore || resp.Data.PageToken == nil || *resp.Data.PageToken == "" {
			break
		}
		pageToken = *resp.Data.PageToken
	}

	if len(chats) > limit {
		chats = chats[:limit]
	}
	return chats, nil
}

// SendText sends a plain text message to a chat
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	contentJSON, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encode text: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(contentJSON)).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message error: %s", resp.Msg)
	}
	return nil
}

// ParseContent extracts plain text from a message body.
// Mention placeholders (@_user_1) are replaced with real names.
// Non-text messages yield an empty string.
func ParseContent(msgType, content string, mentionMap map[string]string) string {
	switch msgType {
	case "text":
		var parsed struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal([]byte(content), &parsed); err != nil {
			return ""
		}
		return replaceMentions(parsed.Text, mentionMap)
	case "post":
		return parsePostContent(content, mentionMap)
	}
	return ""
}

// parsePostContent extracts the text of a rich text message
func parsePostContent(content string, mentionMap map[string]string) string {
	var parsed struct {
		Title   string `json:"title"`
		Content [][]struct {
			Tag    string `json:"tag"`
			Text   string `json:"text,omitempty"`
			UserID string `json:"user_id,omitempty"` // for "at" tags
		} `json:"content"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return ""
	}

	var textParts []string
	if parsed.Title != "" {
		textParts = append(textParts, parsed.Title)
	}
	for _, line := range parsed.Content {
		var lineParts []string
		for _, elem := range line {
			switch elem.Tag {
			case "text", "a":
				if elem.Text != "" {
					lineParts = append(lineParts, elem.Text)
				}
			case "at":
				if elem.UserID != "" {
					if name, ok := mentionMap[elem.UserID]; ok {
						lineParts = append(lineParts, "@"+name)
					} else {
						lineParts = append(lineParts, "@"+elem.UserID)
					}
				}
			}
		}
		if len(lineParts) > 0 {
			textParts = append(textParts, strings.Join(lineParts, ""))
		}
	}

	return replaceMentions(strings.Join(textParts, "\n"), mentionMap)
}

// replaceMentions replaces mention placeholders (@_user_1, @_user_2, etc.) with real names.
// Longer keys go first so @_user_1 never eats the prefix of @_user_10.
func replaceMentions(text string, mentionMap map[string]string) string {
	keys := slices.Collect(maps.Keys(mentionMap))
	slices.SortFunc(keys, func(a, b string) int {
		if n := cmp.Compare(len(b), len(a)); n != 0 {
			return n
		}
		return strings.Compare(a, b)
	})
	for _, key := range keys {
		text = strings.ReplaceAll(text, key, "@"+mentionMap[key])
	}
	return text
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
