package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"nexuschat/chat-api/internal/config"
	"nexuschat/chat-api/internal/domain/chat"
	"nexuschat/chat-api/internal/infrastructure/auth"
	"nexuschat/chat-api/internal/interfaces/httpserver/responses"
)

// ChatHandler exposes chat history endpoints.
type ChatHandler struct {
	cfg   *config.Config
	store chat.Store
	log   zerolog.Logger
}

func NewChatHandler(cfg *config.Config, store chat.Store, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		cfg:   cfg,
		store: store,
		log:   log.With().Str("component", "chat-handler").Logger(),
	}
}

// ListChats godoc
// @Summary      List chats
// @Description  Returns the chats the authenticated user participates in, most recently active first.
// @Tags         chats
// @Produce      json
// @Success      200  {object}  responses.ChatListResponse
// @Failure      401  {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/chats [get]
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := auth.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, responses.ErrorResponse{Error: "unauthorized"})
		return
	}

	chats, err := h.store.ListChatsForUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list chats failed")
		responses.HandleError(c, err, "failed to list chats")
		return
	}
	if chats == nil {
		chats = []*chat.Chat{}
	}

	c.JSON(http.StatusOK, responses.ChatListResponse{Chats: chats})
}

// ListMessages godoc
// @Summary      List chat messages
// @Description  Returns message history for a chat in chronological order.
// @Tags         chats
// @Produce      json
// @Param        chatID  path   string  true   "Chat ID"
// @Param        limit   query  int     false  "Maximum messages to return"
// @Success      200  {object}  responses.MessageListResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/chats/{chatID}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	chatID := c.Param("chatID")
	if chatID == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "missing chat id"})
		return
	}

	limit := h.cfg.HistoryDefaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}
	if limit > h.cfg.HistoryMaxLimit {
		limit = h.cfg.HistoryMaxLimit
	}

	messages, err := h.store.ListMessages(c.Request.Context(), chatID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("chat_id", chatID).Msg("list messages failed")
		responses.HandleError(c, err, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []*chat.Message{}
	}

	c.JSON(http.StatusOK, responses.MessageListResponse{Messages: messages})
}
