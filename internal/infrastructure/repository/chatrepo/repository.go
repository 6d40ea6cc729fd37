package chatrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"nexuschat/chat-api/internal/domain/chat"
	"nexuschat/chat-api/internal/infrastructure/database/entities"
	"nexuschat/chat-api/internal/utils/idgen"
	"nexuschat/chat-api/internal/utils/platformerrors"
)

// Repository is the GORM-backed persistence store for chats and messages.
type Repository struct {
	db *gorm.DB
}

var _ chat.Store = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertMessage persists a message with status "sent". The public ID and the
// created-at timestamp are assigned here, never taken from the client.
func (r *Repository) InsertMessage(ctx context.Context, msg chat.NewMessage) (*chat.Message, error) {
	publicID, err := idgen.GenerateSecureID("msg", 24)
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to generate message id",
			err,
			"c41a9d55-0f6b-4d02-9d1e-58c2ab3c9e01",
		)
	}

	entity := entities.Message{
		PublicID: publicID,
		ChatID:   msg.ChatID,
		SenderID: msg.SenderID,
		Content:  msg.Content,
		Type:     msg.Type,
		Status:   chat.MessageStatusSent,
	}
	if msg.MediaURL != "" {
		entity.MediaURL = &msg.MediaURL
	}
	if msg.ReplyToID != "" {
		entity.ReplyToID = &msg.ReplyToID
	}

	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to insert message",
			err,
			"5b7e2f10-8a43-4c6d-b1f2-0d9e8c7a6b5f",
		)
	}

	return mapMessage(entity), nil
}

// TouchChatActivity bumps the conversation's last-activity marker.
func (r *Repository) TouchChatActivity(ctx context.Context, chatID string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Chat{}).
		Where("id = ?", chatID).
		Update("last_message_at", at).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update chat activity",
			err,
			"9f1c3b72-6e54-4a8d-8c2b-1a0d9e8f7c6b",
		)
	}
	return nil
}

// UpdateUserPresence records a user's advisory online state.
func (r *Repository) UpdateUserPresence(ctx context.Context, userID string, status chat.PresenceStatus, lastSeen time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"status":    status,
			"last_seen": lastSeen,
		}).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update user presence",
			err,
			"2e8d4c6a-1b3f-4e5d-9a7c-8b6f5e4d3c2a",
		)
	}
	return nil
}

// ListChatsForUser returns the user's conversations, most recently active
// first.
func (r *Repository) ListChatsForUser(ctx context.Context, userID string) ([]*chat.Chat, error) {
	var rows []entities.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_participants ON chat_participants.chat_id = chats.id").
		Where("chat_participants.user_id = ?", userID).
		Order("chats.last_message_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list chats",
			err,
			"7d5b3a19-4c2e-4f6a-b8d0-3e2c1a0f9e8d",
		)
	}

	out := make([]*chat.Chat, 0, len(rows))
	for _, row := range rows {
		out = append(out, &chat.Chat{
			ID:            row.ID,
			Type:          row.Type,
			CreatedAt:     row.CreatedAt,
			LastMessageAt: row.LastMessageAt,
		})
	}
	return out, nil
}

// ListMessages returns up to limit messages for a chat in ascending
// created-at order.
func (r *Repository) ListMessages(ctx context.Context, chatID string, limit int) ([]*chat.Message, error) {
	var rows []entities.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list messages",
			err,
			"0a9c8b7d-6e5f-4d3c-2b1a-9f8e7d6c5b4a",
		)
	}

	out := make([]*chat.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapMessage(row))
	}
	return out, nil
}

func mapMessage(entity entities.Message) *chat.Message {
	msg := &chat.Message{
		ID:        entity.PublicID,
		ChatID:    entity.ChatID,
		SenderID:  entity.SenderID,
		Content:   entity.Content,
		Type:      entity.Type,
		Status:    entity.Status,
		CreatedAt: entity.CreatedAt,
	}
	if entity.MediaURL != nil {
		msg.MediaURL = *entity.MediaURL
	}
	if entity.ReplyToID != nil {
		msg.ReplyToID = *entity.ReplyToID
	}
	return msg
}
