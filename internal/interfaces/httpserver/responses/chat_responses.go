package responses

import (
	"nexuschat/chat-api/internal/domain/chat"
	"nexuschat/chat-api/internal/infrastructure/storage"
)

// ChatListResponse wraps the chats a user participates in.
type ChatListResponse struct {
	Chats []*chat.Chat `json:"chats"`
}

// MessageListResponse wraps a page of chat history.
type MessageListResponse struct {
	Messages []*chat.Message `json:"messages"`
}

// UploadResponse contains presigned upload information.
type UploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl,omitempty"`
}

// BuildUploadResponse creates an upload response from a presigned upload.
func BuildUploadResponse(up *storage.Upload) *UploadResponse {
	return &UploadResponse{
		UploadURL: up.URL,
		Key:       up.Key,
		PublicURL: up.PublicURL,
	}
}
