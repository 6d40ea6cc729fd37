package wsgateway

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"nexuschat/chat-api/internal/config"
	"nexuschat/chat-api/internal/domain/relay"
	"nexuschat/chat-api/internal/infrastructure/auth"
)

// Gateway upgrades HTTP requests to WebSocket connections and binds them to
// the relay engine.
type Gateway struct {
	cfg      *config.Config
	relay    *relay.Service
	auth     *auth.Validator
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func New(cfg *config.Config, relaySvc *relay.Service, validator *auth.Validator, log zerolog.Logger) *Gateway {
	return &Gateway{
		cfg:   cfg,
		relay: relaySvc,
		auth:  validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Browser clients connect cross-origin; access control happens
			// at the token check, not the Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.With().Str("component", "ws-gateway").Logger(),
	}
}

// Handle godoc
// @Summary      Open the realtime connection
// @Description  Upgrades to WebSocket. The identity credential is presented as a token query parameter or bearer header; connections without one are rejected.
// @Tags         realtime
// @Param        token  query  string  false  "identity credential"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /v1/ws [get]
func (g *Gateway) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		if header := c.GetHeader("Authorization"); len(header) > 7 {
			token = header[7:]
		}
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	identity, err := g.auth.VerifyToken(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ws, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		id:       uuid.NewString(),
		identity: identity,
		ws:       ws,
		send:     make(chan relay.Event, g.cfg.WSSendBuffer),
		gateway:  g,
	}
	client.log = g.log.With().Str("conn_id", client.id).Str("user_id", identity).Logger()

	// The connection outlives the upgrade request, whose context is
	// cancelled once this handler returns.
	ctx := context.WithoutCancel(c.Request.Context())
	if err := g.relay.Admit(ctx, client, identity); err != nil {
		g.log.Warn().Err(err).Msg("admit failed")
		_ = ws.Close()
		return
	}

	go client.writePump()
	go client.readPump(ctx)
}
