package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"abby-server/internal/config"
	"abby-server/internal/domain/chat"
	"abby-server/internal/domain/search"
	"abby-server/internal/infrastructure/metrics"
	"abby-server/internal/infrastructure/uploads"
	"abby-server/internal/interfaces/httpserver/middlewares"
	"abby-server/internal/interfaces/httpserver/requests"
	"abby-server/internal/interfaces/httpserver/responses"
	"abby-server/internal/utils/platformerrors"
)

// Stream outcome labels.
const (
	outcomeCompleted    = "completed"
	outcomeError        = "error"
	outcomeTimeout      = "timeout"
	outcomeDisconnected = "disconnected"
)

// ChatHandler exposes the streaming chat, search, and upload endpoints.
type ChatHandler struct {
	chats    *chat.Service
	searches *search.Service
	storage  *uploads.Storage
	cfg      *config.Config
	log      zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(chats *chat.Service, searches *search.Service, storage *uploads.Storage, cfg *config.Config, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chats:    chats,
		searches: searches,
		storage:  storage,
		cfg:      cfg,
		log:      log.With().Str("handler", "chat").Logger(),
	}
}

// ChatStream handles GET /chat-stream. The response is an SSE stream of
// token events followed by one complete or error event.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req requests.ChatStreamRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "message is required", "")
		return
	}
	req.ApplyDefaults()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.StreamTimeout)
	defer cancel()

	events := h.chats.ChatTurn(ctx, req.UserID, req.ConversationID, req.Message)
	h.streamEvents(c, ctx, events, "chat", "Connection error occurred")
}

// WebSearch handles GET /web-search. The query is searched and digested
// before the turn streams; search failures degrade into the digest so the
// stream still runs.
func (h *ChatHandler) WebSearch(c *gin.Context) {
	var req requests.WebSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "query is required", "")
		return
	}
	req.ApplyDefaults()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.StreamTimeout)
	defer cancel()

	digest := h.searches.Digest(ctx, req.Query)
	prompt := h.searches.ContextPrompt(req.Query, digest)

	events := h.chats.SearchTurn(ctx, req.UserID, req.ConversationID, req.Query, prompt, search.SummaryRequest)
	h.streamEvents(c, ctx, events, "search", "Search connection error occurred")
}

// UploadFile handles POST /upload-file. The file is persisted, its text
// extracted, and the turn streams the model's take on it.
func (h *ChatHandler) UploadFile(c *gin.Context) {
	var req requests.UploadFileRequest
	if err := c.ShouldBind(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid upload form", "")
		return
	}
	req.ApplyDefaults()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "file is required", "")
		return
	}

	if !middlewares.PrepareSSE(c) {
		responses.HandleNewError(c, platformerrors.ErrorTypeInternal, "streaming unsupported", "")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.abortUploadStream(c, err)
		return
	}
	defer src.Close()

	path, err := h.storage.Save(fileHeader.Filename, src)
	if err != nil {
		h.abortUploadStream(c, err)
		return
	}
	metrics.FilesUploadedTotal.Inc()

	content, err := h.storage.ReadContent(path)
	if err != nil {
		h.abortUploadStream(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.UploadStreamTimeout)
	defer cancel()

	events := h.chats.UploadTurn(ctx, req.UserID, req.ConversationID, fileHeader.Filename, req.Message, content)
	h.streamSSEBody(c, ctx, events, "upload", "File upload error occurred")
}

// Assistant handles GET /assistant, a stateless one-shot completion.
func (h *ChatHandler) Assistant(c *gin.Context) {
	var req requests.AssistantRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request", "")
		return
	}
	req.ApplyDefaults()

	answer, err := h.chats.Assist(c.Request.Context(), req.Message)
	if err != nil {
		responses.HandleError(c, err, "assistant request failed")
		return
	}

	c.String(200, answer)
}

// abortUploadStream reports an upload failure on an already-prepared SSE
// stream, matching the error event shape of a failed turn.
func (h *ChatHandler) abortUploadStream(c *gin.Context, err error) {
	h.log.Error().Err(err).Msg("file upload failed")
	_ = writeSSEEvent(c, chat.EventError, "Error uploading file: "+err.Error())
}

// streamEvents prepares the SSE response and forwards turn events to the
// client.
func (h *ChatHandler) streamEvents(c *gin.Context, ctx context.Context, events <-chan chat.Event, turnType, timeoutMessage string) {
	if !middlewares.PrepareSSE(c) {
		responses.HandleNewError(c, platformerrors.ErrorTypeInternal, "streaming unsupported", "")
		return
	}
	h.streamSSEBody(c, ctx, events, turnType, timeoutMessage)
}

// streamSSEBody forwards turn events to an already-prepared SSE response.
// Client disconnects end the stream silently; deadline expiry surfaces as a
// final error event.
func (h *ChatHandler) streamSSEBody(c *gin.Context, ctx context.Context, events <-chan chat.Event, turnType, timeoutMessage string) {
	metrics.IncrementActiveStreams(turnType)
	defer metrics.DecrementActiveStreams(turnType)

	start := time.Now()
	outcome := outcomeCompleted
	firstToken := false
	clientGone := false

	for ev := range events {
		if ev.Type == chat.EventToken && !firstToken {
			firstToken = true
			metrics.RecordFirstToken(turnType, time.Since(start).Seconds())
		}
		if ev.Type == chat.EventError {
			outcome = outcomeError
		}
		if clientGone {
			continue
		}
		if err := writeSSEEvent(c, ev.Type, ev.Data); err != nil {
			// The request context cancels with the connection, which winds
			// down the turn; keep draining until the channel closes.
			clientGone = true
			outcome = outcomeDisconnected
		}
	}

	switch {
	case ctx.Err() == context.DeadlineExceeded && !clientGone:
		h.log.Warn().Str("turn_type", turnType).Msg("streaming turn timed out")
		_ = writeSSEEvent(c, chat.EventError, timeoutMessage)
		outcome = outcomeTimeout
	case c.Request.Context().Err() != nil:
		outcome = outcomeDisconnected
	}

	metrics.RecordStreamTurn(turnType, outcome, time.Since(start).Seconds())
}

// writeSSEEvent writes one named SSE event and flushes it. Multi-line data is
// split into consecutive data fields per the SSE framing rules.
func writeSSEEvent(c *gin.Context, event, data string) error {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(event)
	b.WriteByte('\n')
	for _, line := range strings.Split(data, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if _, err := c.Writer.Write([]byte(b.String())); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
