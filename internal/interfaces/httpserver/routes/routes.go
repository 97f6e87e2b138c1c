package routes

import (
	"github.com/gin-gonic/gin"

	"abby-server/internal/interfaces/httpserver/handlers"
)

// Routes binds the API handlers to their paths.
type Routes struct {
	chatHandler         *handlers.ChatHandler
	conversationHandler *handlers.ConversationHandler
	profileHandler      *handlers.ProfileHandler
}

// NewRoutes constructs the route table.
func NewRoutes(
	chatHandler *handlers.ChatHandler,
	conversationHandler *handlers.ConversationHandler,
	profileHandler *handlers.ProfileHandler,
) *Routes {
	return &Routes{
		chatHandler:         chatHandler,
		conversationHandler: conversationHandler,
		profileHandler:      profileHandler,
	}
}

// RegisterRouter attaches all endpoints to the router group.
func (r *Routes) RegisterRouter(router gin.IRouter) {
	router.GET("/chat-stream", r.chatHandler.ChatStream)
	router.GET("/web-search", r.chatHandler.WebSearch)
	router.POST("/upload-file", r.chatHandler.UploadFile)
	router.GET("/assistant", r.chatHandler.Assistant)

	router.GET("/conversations", r.conversationHandler.List)
	router.POST("/conversations", r.conversationHandler.Create)
	router.PUT("/conversations/:conversationId", r.conversationHandler.Update)
	router.DELETE("/conversations/:conversationId", r.conversationHandler.Delete)
	router.GET("/conversations/:conversationId/export", r.conversationHandler.Export)

	router.GET("/user-profile", r.profileHandler.Get)
	router.POST("/user-profile", r.profileHandler.Update)
}
