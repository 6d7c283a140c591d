package chatctx_test

import (
	"context"
	"testing"

	"github.com/parleyhq/parley/pkg/chatctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ChatID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, chatctx.GetChatID(ctx))

	ctx = chatctx.WithChatID(ctx, "chat-123")
	assert.Equal(t, "chat-123", chatctx.GetChatID(ctx))

	// empty id gets replaced with a generated one
	ctx = chatctx.WithChatID(context.Background(), "")
	id := chatctx.GetChatID(ctx)
	require.NotEmpty(t, id)
	assert.NotEqual(t, "chat-123", id)
}
