//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"nexuschat/chat-api/internal/config"
	"nexuschat/chat-api/internal/domain/chat"
	"nexuschat/chat-api/internal/domain/relay"
	"nexuschat/chat-api/internal/infrastructure/auth"
	"nexuschat/chat-api/internal/infrastructure/repository/chatrepo"
	"nexuschat/chat-api/internal/infrastructure/storage"
	"nexuschat/chat-api/internal/interfaces/httpserver"
	"nexuschat/chat-api/internal/interfaces/wsgateway"
)

// ProviderSet is the wire provider set for the application.
var ProviderSet = wire.NewSet(
	// Infrastructure providers
	ProvideAuthValidator,
	ProvideStorage,
	ProvideStore,

	// Domain providers
	ProvideRelayState,
	ProvideRelayService,

	// Interface providers
	wsgateway.New,
	httpserver.New,

	// Application
	NewApplication,
)

// ProvideAuthValidator provides an auth validator.
func ProvideAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

// ProvideStorage provides the object storage client.
func ProvideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage.S3Storage, error) {
	return storage.NewS3Storage(ctx, cfg, log)
}

// ProvideStore provides the persistence store.
func ProvideStore(db *gorm.DB) chat.Store {
	return chatrepo.NewRepository(db)
}

// ProvideRelayState provides the connection registry.
func ProvideRelayState(log zerolog.Logger) *relay.State {
	return relay.NewState(log)
}

// ProvideRelayService provides the relay service.
func ProvideRelayService(state *relay.State, store chat.Store, log zerolog.Logger) *relay.Service {
	return relay.NewService(state, store, log)
}

// CreateApplication creates the application with all dependencies wired.
func CreateApplication(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
	db *gorm.DB,
) (*Application, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
