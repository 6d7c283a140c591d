// Package store keeps per-chat message history so stateful sessions can
// span multiple gateway requests within one process.
package store

import (
	"github.com/parleyhq/parley/pkg/chat"
)

// MessageStore keeps the message history of chats, keyed by chat ID.
type MessageStore interface {
	Messages(chatID string) []chat.Message
	Add(chatID string, msgs ...chat.Message) error
	Reset(chatID string) error
}
