package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Message represents a chat message fetched from the platform
type Message struct {
	ID         string
	Seq        int64 // Ordering key, 0 when the message has no usable identifier
	ChatID     string
	SenderID   string
	SenderName string
	Text       string
	CreateTime time.Time
	FromSelf   bool // Whether the message was sent by the bot's own account
}

// IsFromBot checks if the message is from the bot
func (m *Message) IsFromBot(botID string) bool {
	return m.FromSelf || (botID != "" && m.SenderID == botID)
}

// HasText reports whether the message carries non-blank text
func (m *Message) HasText() bool {
	return strings.TrimSpace(m.Text) != ""
}

// ParseSeq parses a numeric message identifier into an ordering key.
// Non-numeric or non-positive identifiers are rejected.
func ParseSeq(id string) (int64, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Member represents a chat member (value object)
type Member struct {
	UserID string
	Name   string
}

// Thread represents a chat the bot account can see
type Thread struct {
	ID      string
	Title   string
	Members []Member
}

// MemberNames returns the display names of the thread members
func (t *Thread) MemberNames() []string {
	names := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names
}

// Summary renders the thread as one listing line
func (t *Thread) Summary() string {
	return fmt.Sprintf("THREAD_ID: %s | title: %s | users: %v", t.ID, t.Title, t.MemberNames())
}
