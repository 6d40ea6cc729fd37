package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"nexuschat/chat-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.User{},
		&entities.Chat{},
		&entities.ChatParticipant{},
		&entities.Message{},
	); err != nil {
		return err
	}
	log.Info().Msg("applied chat schema migrations")
	return nil
}
