// Conversation HTTP handlers.
//
// This file exposes REST endpoints for conversations:
//   - POST /conversations                     (start a fresh conversation)
//   - GET  /conversations                     (list the user's conversations)
//   - GET  /conversations/active/{topicId}    (resume or start for a topic)
//   - GET  /conversations/{id}               (single conversation)
//
// Starting a conversation seeds it with an assistant greeting, so the
// response already carries something to render.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/http/middleware"
)

//
// DTOs
//

// StartConversationRequest is the JSON payload for starting a conversation.
type StartConversationRequest struct {
	// TopicID selects the practice topic.
	TopicID uint `json:"topic_id" binding:"required" example:"3"`
}

// ListConversationsResponse wraps the user's conversations, newest first.
type ListConversationsResponse struct {
	Conversations []domain.Conversation `json:"conversations"`
}

//
// Handlers
//

// StartConversation godoc
// @ID          startConversation
// @Summary     Start a conversation
// @Description Begins a fresh conversation on a topic, seeded with an assistant greeting.
// @Tags        Conversations
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.StartConversationRequest  true  "Topic selection"
//
// @Success     201  {object}  domain.Conversation
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Topic not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /conversations [post]
func (h *Handlers) StartConversation(c *gin.Context) {
	uid, okID := currentUser(c)
	if !okID {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}

	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TopicID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "topic_id required")
		return
	}

	conv, err := h.chatSvc.StartConversation(c.Request.Context(), uid, req.TopicID)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, conv)
}

// OpenTopic godoc
// @ID          openTopic
// @Summary     Resume or start a topic conversation
// @Description Returns the user's existing conversation for the topic, creating one with a greeting when none exists.
// @Tags        Conversations
// @Produce     json
//
// @Param       topicId  path  int  true  "Topic ID"  minimum(1)
//
// @Success     200  {object}  domain.Conversation
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Topic not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /conversations/active/{topicId} [get]
func (h *Handlers) OpenTopic(c *gin.Context) {
	uid, okID := currentUser(c)
	if !okID {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}
	topicID, okParam := uintParam(c, "topicId")
	if !okParam {
		return
	}

	conv, err := h.chatSvc.OpenTopic(c.Request.Context(), uid, topicID)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusOK, conv)
}

// ListConversations godoc
// @ID          listConversations
// @Summary     List conversations
// @Description Returns the current user's conversations, newest first.
// @Tags        Conversations
// @Produce     json
//
// @Success     200  {object}  handlers.ListConversationsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Not authenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /conversations [get]
func (h *Handlers) ListConversations(c *gin.Context) {
	uid, okID := currentUser(c)
	if !okID {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}

	convs, err := h.chatSvc.Conversations(c.Request.Context(), uid)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	ok(c, http.StatusOK, ListConversationsResponse{Conversations: convs})
}

// GetConversation godoc
// @ID          getConversation
// @Summary     Get a conversation
// @Description Returns one conversation. Users see only their own; admins see any.
// @Tags        Conversations
// @Produce     json
//
// @Param       id  path  int  true  "Conversation ID"  minimum(1)
//
// @Success     200  {object}  domain.Conversation
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Belongs to another user"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /conversations/{id} [get]
func (h *Handlers) GetConversation(c *gin.Context) {
	uid, okID := currentUser(c)
	if !okID {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}
	convID, okParam := uintParam(c, "id")
	if !okParam {
		return
	}

	conv, err := h.chatSvc.Conversation(c.Request.Context(), uid, middleware.IsAdmin(c), convID)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, conv)
}
