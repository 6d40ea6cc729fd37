package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_POSTGRESQL_DSN", "postgres://localhost/chat")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "chat-api", cfg.ServiceName)
	assert.Equal(t, 8188, cfg.HTTPPort)
	assert.Equal(t, ":8188", cfg.Addr())
	assert.Equal(t, 50, cfg.HistoryDefaultLimit)
	assert.Equal(t, 200, cfg.HistoryMaxLimit)
	assert.Equal(t, 60*time.Second, cfg.WSPongTimeout)
	assert.False(t, cfg.AuthEnabled)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DB_POSTGRESQL_DSN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadAuthValidation(t *testing.T) {
	t.Setenv("DB_POSTGRESQL_DSN", "postgres://localhost/chat")
	t.Setenv("AUTH_ENABLED", "true")

	_, err := Load()
	require.Error(t, err, "enabling auth without issuer and JWKS URL should fail")

	t.Setenv("AUTH_ISSUER", "https://auth.example.com/realms/chat")
	t.Setenv("AUTH_JWKS_URL", "https://auth.example.com/realms/chat/protocol/openid-connect/certs")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AuthEnabled)
}

func TestLoadClampsHistoryLimits(t *testing.T) {
	t.Setenv("DB_POSTGRESQL_DSN", "postgres://localhost/chat")
	t.Setenv("HISTORY_DEFAULT_LIMIT", "100")
	t.Setenv("HISTORY_MAX_LIMIT", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.HistoryDefaultLimit)
	assert.Equal(t, 100, cfg.HistoryMaxLimit, "max limit may never undercut the default")
}

func TestLoadTrimsS3PublicURL(t *testing.T) {
	t.Setenv("DB_POSTGRESQL_DSN", "postgres://localhost/chat")
	t.Setenv("CHAT_S3_PUBLIC_URL", "https://cdn.example.com/ ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com", cfg.S3PublicURL)
}
