package handlers

import (
	"github.com/rs/zerolog"

	"nexuschat/chat-api/internal/config"
	"nexuschat/chat-api/internal/domain/chat"
	"nexuschat/chat-api/internal/infrastructure/storage"
)

// Provider wires HTTP handlers.
type Provider struct {
	Chat   *ChatHandler
	Upload *UploadHandler
}

func NewProvider(cfg *config.Config, store chat.Store, s3 *storage.S3Storage, log zerolog.Logger) *Provider {
	return &Provider{
		Chat:   NewChatHandler(cfg, store, log),
		Upload: NewUploadHandler(s3, log),
	}
}
