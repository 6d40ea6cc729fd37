package relay

import (
	"context"
	"fmt"
	"time"

	"nexuschat/chat-api/internal/domain/chat"
	"nexuschat/chat-api/internal/infrastructure/metrics"
)

// SendMessageInput is the client-supplied body of a send_message intent.
// The message ID and timestamp are always server-assigned.
type SendMessageInput struct {
	ChatID    string `json:"chatId" validate:"required"`
	SenderID  string `json:"senderId" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Type      string `json:"type" validate:"required"`
	MediaURL  string `json:"mediaUrl"`
	ReplyToID string `json:"replyToId"`
}

const activityUpdateTimeout = 5 * time.Second

// SendMessage validates, persists, and broadcasts a chat message.
//
// The store write always completes before any receiver sees the message:
// a persistence failure is returned to the caller (for a message_error back
// to the sender) and nothing is broadcast. On success the persisted copy,
// carrying its durable ID and server timestamp, is fanned out to every
// current member of the room - including the sender's own connections, so
// all devices converge on the stored copy rather than a locally fabricated
// one. The conversation's last-activity marker is then updated
// asynchronously; that write is derived state and never blocks delivery.
func (s *Service) SendMessage(ctx context.Context, input SendMessageInput) (*chat.Message, error) {
	if err := s.validate.Struct(input); err != nil {
		metrics.RecordMessageFailed("invalid_payload")
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if !chat.ValidateMessageType(input.Type) {
		metrics.RecordMessageFailed("invalid_payload")
		return nil, fmt.Errorf("%w: unknown message type %q", ErrInvalidPayload, input.Type)
	}

	// A disconnect mid-send must not cancel an in-flight write: the message
	// still persists and still reaches the remaining members.
	persistCtx := context.WithoutCancel(ctx)

	start := time.Now()
	msg, err := s.store.InsertMessage(persistCtx, chat.NewMessage{
		ChatID:    input.ChatID,
		SenderID:  input.SenderID,
		Content:   input.Content,
		Type:      chat.MessageType(input.Type),
		MediaURL:  input.MediaURL,
		ReplyToID: input.ReplyToID,
	})
	metrics.PersistDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordMessageFailed("persistence")
		s.log.Error().Err(err).Str("chat_id", input.ChatID).Msg("message persist failed")
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	ev := Event{Type: EventReceiveMessage, Data: msg}
	delivered := 0
	for _, member := range s.state.RoomMembers(msg.ChatID) {
		if s.deliver(member.Conn, ev) {
			delivered++
		}
	}
	metrics.RecordMessageRelayed(delivered)

	s.log.Debug().
		Str("message_id", msg.ID).
		Str("chat_id", msg.ChatID).
		Int("fanout", delivered).
		Msg("message relayed")

	go s.touchChatActivity(msg.ChatID, msg.CreatedAt)

	return msg, nil
}

// touchChatActivity bumps the conversation's last-activity marker.
// Fire-and-forget: failures are logged and swallowed, never retried.
func (s *Service) touchChatActivity(chatID string, at time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), activityUpdateTimeout)
	defer cancel()

	if err := s.store.TouchChatActivity(ctx, chatID, at); err != nil {
		s.log.Warn().Err(err).Str("chat_id", chatID).Msg("chat activity update failed")
	}
}
