package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"abby-server/internal/domain/conversation"
	"abby-server/internal/infrastructure/metrics"
	"abby-server/internal/interfaces/httpserver/requests"
	"abby-server/internal/interfaces/httpserver/responses"
	"abby-server/internal/utils/platformerrors"
)

// ConversationHandler exposes conversation CRUD and export endpoints.
type ConversationHandler struct {
	service *conversation.Service
	log     zerolog.Logger
}

// NewConversationHandler constructs the handler.
func NewConversationHandler(service *conversation.Service, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		log:     log.With().Str("handler", "conversation").Logger(),
	}
}

// List handles GET /conversations
func (h *ConversationHandler) List(c *gin.Context) {
	var req requests.UserQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request", "")
		return
	}
	req.ApplyDefaults()

	c.JSON(http.StatusOK, h.service.List(req.UserID))
}

// Create handles POST /conversations
func (h *ConversationHandler) Create(c *gin.Context) {
	var req requests.CreateConversationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request", "")
		return
	}
	req.ApplyDefaults()

	created := h.service.Create(req.UserID, req.Title)
	metrics.ConversationsCreatedTotal.Inc()

	c.JSON(http.StatusOK, created)
}

// Update handles PUT /conversations/:conversationId
func (h *ConversationHandler) Update(c *gin.Context) {
	conversationID := c.Param("conversationId")

	var req requests.UpdateConversationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request", "")
		return
	}
	req.ApplyDefaults()

	updated, err := h.service.Update(c.Request.Context(), req.UserID, conversationID, req.Title, req.Archived)
	if err != nil {
		responses.HandleError(c, err, "failed to update conversation")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /conversations/:conversationId
func (h *ConversationHandler) Delete(c *gin.Context) {
	conversationID := c.Param("conversationId")

	var req requests.UserQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request", "")
		return
	}
	req.ApplyDefaults()

	h.service.Delete(req.UserID, conversationID)
	c.Status(http.StatusOK)
}

// Export handles GET /conversations/:conversationId/export
func (h *ConversationHandler) Export(c *gin.Context) {
	conversationID := c.Param("conversationId")

	var req requests.ExportConversationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request", "")
		return
	}
	req.ApplyDefaults()

	switch req.Format {
	case "json":
		data, err := h.service.ExportJSON(c.Request.Context(), req.UserID, conversationID)
		if err != nil {
			responses.HandleError(c, err, "failed to export conversation")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"conversation_%s.json\"", conversationID))
		c.Data(http.StatusOK, "application/json", data)
	case "txt":
		text, err := h.service.ExportText(c.Request.Context(), req.UserID, conversationID)
		if err != nil {
			responses.HandleError(c, err, "failed to export conversation")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"conversation_%s.txt\"", conversationID))
		c.Data(http.StatusOK, "text/plain", []byte(text))
	default:
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "unsupported export format", "")
	}
}
