package entities

import (
	"time"

	"gorm.io/datatypes"

	"nexuschat/chat-api/internal/domain/chat"
)

// User holds the identity record and its advisory presence state.
type User struct {
	ID       string              `gorm:"type:varchar(64);primaryKey"`
	Name     string              `gorm:"type:varchar(128)"`
	Email    string              `gorm:"type:varchar(256);index"`
	Avatar   string              `gorm:"type:varchar(512)"`
	Status   chat.PresenceStatus `gorm:"type:varchar(16);not null;default:'offline'"`
	LastSeen time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Chat is a conversation. The durable participant list lives in
// chat_participants; live room membership is transient and never persisted.
type Chat struct {
	ID            string        `gorm:"type:varchar(64);primaryKey"`
	Type          chat.ChatType `gorm:"type:varchar(16);not null;default:'individual'"`
	LastMessageAt time.Time     `gorm:"index"`

	Participants []ChatParticipant `gorm:"foreignKey:ChatID"`
	Messages     []Message         `gorm:"foreignKey:ChatID"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Chat) TableName() string {
	return "chats"
}

// ChatParticipant is the durable membership junction row.
type ChatParticipant struct {
	ID     uint   `gorm:"primaryKey"`
	ChatID string `gorm:"type:varchar(64);uniqueIndex:idx_chat_participant;not null"`
	UserID string `gorm:"type:varchar(64);uniqueIndex:idx_chat_participant;index;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChatParticipant) TableName() string {
	return "chat_participants"
}

// Message is a persisted chat message. PublicID is minted at insert time and
// is the only ID clients ever see.
type Message struct {
	ID        uint               `gorm:"primaryKey"`
	PublicID  string             `gorm:"type:varchar(50);uniqueIndex;not null"`
	ChatID    string             `gorm:"type:varchar(64);index:idx_message_chat_created;not null"`
	SenderID  string             `gorm:"type:varchar(64);index;not null"`
	Content   string             `gorm:"type:text;not null"`
	Type      chat.MessageType   `gorm:"type:varchar(20);not null"`
	MediaURL  *string            `gorm:"type:varchar(1024)"`
	ReplyToID *string            `gorm:"type:varchar(50)"`
	Status    chat.MessageStatus `gorm:"type:varchar(16);not null;default:'sent'"`
	Metadata  datatypes.JSONMap  `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"index:idx_message_chat_created;autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Message) TableName() string {
	return "messages"
}
