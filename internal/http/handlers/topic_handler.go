// Topic HTTP handlers.
//
// This file exposes read-only endpoints for the practice topic catalog:
//   - GET /topics       (list)
//   - GET /topics/{id}  (single topic)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// ListTopicsResponse wraps the topic catalog.
type ListTopicsResponse struct {
	Topics []domain.Topic `json:"topics"`
}

// ListTopics godoc
// @ID          listTopics
// @Summary     List practice topics
// @Description Returns the full catalog of practice topics.
// @Tags        Topics
// @Produce     json
//
// @Success     200  {object}  handlers.ListTopicsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Not authenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /topics [get]
func (h *Handlers) ListTopics(c *gin.Context) {
	topics, err := h.chatSvc.Topics(c.Request.Context())
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	ok(c, http.StatusOK, ListTopicsResponse{Topics: topics})
}

// GetTopic godoc
// @ID          getTopic
// @Summary     Get a practice topic
// @Description Returns a single topic by id.
// @Tags        Topics
// @Produce     json
//
// @Param       id  path  int  true  "Topic ID"  minimum(1)
//
// @Success     200  {object}  domain.Topic
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Topic not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /topics/{id} [get]
func (h *Handlers) GetTopic(c *gin.Context) {
	id, okID := uintParam(c, "id")
	if !okID {
		return
	}

	topic, err := h.chatSvc.Topic(c.Request.Context(), id)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, topic)
}
