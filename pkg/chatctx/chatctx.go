// Package chatctx carries the chat session identity through context.Context.
package chatctx

import (
	"context"

	"github.com/effective-security/x/values"
	"github.com/google/uuid"
)

type contextKey int

const (
	keyChatID contextKey = iota
)

// WithChatID returns a new context carrying the chat ID.
// An empty id is replaced with a freshly generated one.
func WithChatID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyChatID, values.StringsCoalesce(id, NewChatID()))
}

// GetChatID retrieves the chat ID from the context,
// or an empty string when none is set.
func GetChatID(ctx context.Context) string {
	if v, ok := ctx.Value(keyChatID).(string); ok {
		return v
	}
	return ""
}

// NewChatID generates a new chat ID.
func NewChatID() string {
	return uuid.NewString()
}
