package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when the upstream credential, endpoint or
// deployment is missing.
var ErrNotConfigured = errors.New("Azure OpenAI client not configured")

// Message roles understood by the completion provider.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat message sent upstream.
type Message struct {
	Role    string
	Content string
}

// ChatRequest contains the data needed for a completion request.
type ChatRequest struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Usage reports token accounting for a non-streaming completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the result of a non-streaming completion.
type Completion struct {
	Content string
	Model   string
	Created int64
	Usage   Usage
}

// ChatStream yields incremental text. Recv returns io.EOF once the upstream
// stream has ended; an empty string with a nil error is a chunk that carried
// no text.
type ChatStream interface {
	Recv() (string, error)
	Close() error
}

// Completer is the upstream completion provider.
type Completer interface {
	OpenStream(ctx context.Context, req ChatRequest) (ChatStream, error)
	Complete(ctx context.Context, req ChatRequest) (*Completion, error)
}

// Settings is the non-secret view of the upstream configuration. It is used
// in diagnostics shown to users and in debug output.
type Settings struct {
	Endpoint     string
	Deployment   string
	APIVersion   string
	APIKeyLength int
}
