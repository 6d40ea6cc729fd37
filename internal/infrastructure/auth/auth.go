package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"nexuschat/chat-api/internal/config"
)

// ContextUserIDKey is the gin context key carrying the authenticated user ID.
const ContextUserIDKey = "user_id"

// ErrInvalidToken is returned when a presented credential cannot be verified.
var ErrInvalidToken = errors.New("invalid token")

// Validator verifies bearer tokens against the configured JWKS endpoint.
// When auth is disabled (development), the raw token value is trusted as the
// user identity so clients can connect without an identity provider.
type Validator struct {
	cfg  *config.Config
	log  zerolog.Logger
	jwks *keyfunc.JWKS
}

// NewValidator initializes the JWKS key set when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	logger := log.With().Str("component", "auth-validator").Logger()

	if !cfg.AuthEnabled {
		logger.Warn().Msg("auth disabled; tokens are trusted as raw user identities")
		return &Validator{cfg: cfg, log: logger}, nil
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, keyfunc.Options{
		Ctx:             ctx,
		RefreshInterval: 5 * time.Minute,
		RefreshErrorHandler: func(err error) {
			logger.Error().Err(err).Msg("jwks refresh failed")
		},
	})
	if err != nil {
		return nil, err
	}

	return &Validator{cfg: cfg, log: logger, jwks: jwks}, nil
}

// Ready reports whether the validator can verify tokens.
func (v *Validator) Ready() bool {
	return !v.cfg.AuthEnabled || v.jwks != nil
}

// VerifyToken resolves a bearer token to a user identity.
func (v *Validator) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	if !v.cfg.AuthEnabled {
		return tokenString, nil
	}

	opts := []jwt.ParserOption{
		jwt.WithIssuer(v.cfg.AuthIssuer),
		jwt.WithLeeway(time.Minute),
	}
	if v.cfg.AuthAudience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.AuthAudience))
	}

	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc, opts...)
	if err != nil || !token.Valid {
		v.log.Debug().Err(err).Msg("jwt validation failed")
		return "", ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}

// Middleware enforces bearer auth on REST routes and stores the user ID in
// the gin context.
func (v *Validator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		userID, err := v.VerifyToken(c.Request.Context(), tokenString)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user ID from the gin context.
func UserID(c *gin.Context) string {
	if id, exists := c.Get(ContextUserIDKey); exists {
		if userID, ok := id.(string); ok {
			return userID
		}
	}
	return ""
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
