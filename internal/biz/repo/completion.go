package repo

import "context"

// Role of a prompt message
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// PromptMessage is a single turn sent to the completion service
type PromptMessage struct {
	Role    Role
	Content string
}

// CompletionRequest describes one completion call
type CompletionRequest struct {
	Messages    []PromptMessage
	Temperature float32
	MaxTokens   int
}

// CompletionRepo is the language-model completion interface
type CompletionRepo interface {
	// Complete returns the text of the first choice
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
