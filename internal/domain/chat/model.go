package chat

import "time"

// MessageType categorizes the content of a chat message.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeVideo    MessageType = "video"
	MessageTypeAudio    MessageType = "audio"
	MessageTypeDocument MessageType = "document"
	MessageTypeLocation MessageType = "location"
	MessageTypeContact  MessageType = "contact"
	MessageTypeSystem   MessageType = "system"
	MessageTypePoll     MessageType = "poll"
)

// ValidateMessageType reports whether the input is a known message type.
func ValidateMessageType(input string) bool {
	switch MessageType(input) {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeAudio,
		MessageTypeDocument, MessageTypeLocation, MessageTypeContact,
		MessageTypeSystem, MessageTypePoll:
		return true
	default:
		return false
	}
}

// MessageStatus tracks delivery progress of a message.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
	MessageStatusFailed    MessageStatus = "failed"
)

// PresenceStatus is a user's advisory online state.
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceOffline PresenceStatus = "offline"
)

// ChatType distinguishes direct conversations from groups.
type ChatType string

const (
	ChatTypeIndividual ChatType = "individual"
	ChatTypeGroup      ChatType = "group"
)

// Message is a persisted chat message. The ID is assigned by the store at
// insert time; clients never supply one.
type Message struct {
	ID        string        `json:"id"`
	ChatID    string        `json:"chatId"`
	SenderID  string        `json:"senderId"`
	Content   string        `json:"content"`
	Type      MessageType   `json:"type"`
	MediaURL  string        `json:"mediaUrl,omitempty"`
	ReplyToID string        `json:"replyToId,omitempty"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Chat is a conversation summary as returned to the history API.
type Chat struct {
	ID            string    `json:"id"`
	Type          ChatType  `json:"type"`
	CreatedAt     time.Time `json:"createdAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}
