// Message HTTP handlers.
//
// This file exposes REST endpoints for conversation messages:
//   - POST /conversations/{id}/messages   (append a user turn, get the assistant reply)
//   - GET  /conversations/{id}/messages   (full transcript, oldest first)
//
// Handlers are transport-thin:
//   - validate and normalize inputs (line endings, length constraints)
//   - delegate to the application service
//   - implement idempotency semantics for message posts
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (user, conversation, key), the handler returns that
// recorded assistant message and sets `Idempotency-Replayed: true`.
package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/http/middleware"
	"github.com/tbourn/go-tutor-backend/internal/repo"
	"github.com/tbourn/go-tutor-backend/internal/services"
)

//
// DTOs
//

// PostMessageRequest is the JSON payload for sending a user message.
//
// Content is normalized by the handler (line endings and excessive blank
// lines) before being passed to the service layer, which also enforces a
// maximum rune count.
type PostMessageRequest struct {
	// Content is the user's turn. It must be non-empty.
	Content string `json:"content" binding:"required,min=1" example:"If x is a positive integer, is x^2 + 1 prime?"`
}

// PostMessageResponse is the JSON envelope for a newly created assistant
// message.
type PostMessageResponse struct {
	// Message is the assistant reply created as a result of the request.
	Message *domain.Message `json:"message"`
}

// ListMessagesResponse contains a conversation transcript, oldest first.
type ListMessagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes user text for consistent downstream behavior:
//   - converts CRLF/CR to LF,
//   - collapses runs of 3+ LFs to exactly two (paragraph separation),
//   - trims surrounding whitespace.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// discoverMaxPromptRunes inspects the concrete ChatService for a configured
// prompt-length limit. If unavailable, it returns a conservative fallback.
func discoverMaxPromptRunes(chatSvc ChatService) int {
	const fallback = 4000
	if cs, okSvc := chatSvc.(*services.ChatService); okSvc {
		if cs.MaxPromptRunes > 0 {
			return cs.MaxPromptRunes
		}
	}
	return fallback
}

//
// Handlers
//

// PostMessage godoc
// @ID          postMessage
// @Summary     Send a message and get the assistant reply
// @Description Appends a user turn to the conversation and generates the assistant reply.
// @Description Supports idempotency via the Idempotency-Key header (same key, same result).
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    int     true  "Conversation ID"  minimum(1)
// @Param       body             body    handlers.PostMessageRequest  true  "User message payload"
//
// @Success     200  {object}  handlers.PostMessageResponse  "Assistant reply"
// @Failure     400  {object}  handlers.ErrorResponse        "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse        "Belongs to another user"
// @Failure     404  {object}  handlers.ErrorResponse        "Conversation not found"
// @Failure     500  {object}  handlers.ErrorResponse        "Internal error"
// @Router      /conversations/{id}/messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	ctx := c.Request.Context()

	uid, okID := currentUser(c)
	if !okID {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}
	convID, okParam := uintParam(c, "id")
	if !okParam {
		return
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	// Sanitize + early size cap to fail fast at the edge.
	content := sanitizeContent(req.Content)
	maxRunes := discoverMaxPromptRunes(h.chatSvc)
	if maxRunes > 0 && utf8.RuneCountInString(content) > maxRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		return
	}
	if content == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	// Idempotency (replay path): serve the previously recorded reply.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && h.db != nil {
		if rec, err := repo.GetIdempotency(ctx, h.db, uid, convID, idemKey, time.Now().UTC()); err == nil && rec != nil {
			if prev, err2 := repo.GetMessage(h.db, rec.MessageID); err2 == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusOK, PostMessageResponse{Message: prev})
				return
			}
		}
	}

	// Normal processing (the service has a second guard for length).
	m, err := h.chatSvc.PostMessage(ctx, uid, convID, content)
	if err != nil {
		failService(c, err, ErrCodeAnswerFailed)
		return
	}

	// Idempotency (store path): best effort.
	if idemKey != "" && h.db != nil {
		ttl := 24 * time.Hour
		_, _ = repo.CreateIdempotency(ctx, h.db, uid, convID, idemKey, m.ID, http.StatusOK, ttl)
	}

	ok(c, http.StatusOK, PostMessageResponse{Message: m})
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List messages in a conversation
// @Description Returns the conversation transcript, oldest first.
// @Tags        Messages
// @Produce     json
//
// @Param       id  path  int  true  "Conversation ID"  minimum(1)
//
// @Success     200  {object} handlers.ListMessagesResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Belongs to another user"
// @Failure     404  {object} handlers.ErrorResponse "Conversation not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /conversations/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	uid, okID := currentUser(c)
	if !okID {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}
	convID, okParam := uintParam(c, "id")
	if !okParam {
		return
	}

	msgs, err := h.chatSvc.Messages(c.Request.Context(), uid, middleware.IsAdmin(c), convID)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListMessagesResponse{Messages: msgs})
}
