package v1

import (
	"github.com/gin-gonic/gin"

	"nexuschat/chat-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under the /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")
	group.GET("/chats", r.handlers.Chat.ListChats)
	group.GET("/chats/:chatID/messages", r.handlers.Chat.ListMessages)
	group.POST("/uploads", r.handlers.Upload.PrepareUpload)
}
