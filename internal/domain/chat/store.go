package chat

import (
	"context"
	"time"
)

// NewMessage is the unsaved form of a message handed to the store.
type NewMessage struct {
	ChatID    string
	SenderID  string
	Content   string
	Type      MessageType
	MediaURL  string
	ReplyToID string
}

// Store is the durable persistence collaborator. Implementations assign the
// message ID and server timestamp at insert time.
type Store interface {
	// InsertMessage persists a message with status "sent" and returns the
	// stored copy carrying its durable ID and server-assigned timestamp.
	InsertMessage(ctx context.Context, msg NewMessage) (*Message, error)

	// TouchChatActivity bumps the conversation's last-activity marker.
	// Derived state; callers treat failures as non-fatal.
	TouchChatActivity(ctx context.Context, chatID string, at time.Time) error

	// UpdateUserPresence records a user's advisory online state.
	UpdateUserPresence(ctx context.Context, userID string, status PresenceStatus, lastSeen time.Time) error

	// ListChatsForUser returns the user's conversations, most recently
	// active first.
	ListChatsForUser(ctx context.Context, userID string) ([]*Chat, error)

	// ListMessages returns up to limit messages for a chat in ascending
	// created-at order.
	ListMessages(ctx context.Context, chatID string, limit int) ([]*Message, error)
}
