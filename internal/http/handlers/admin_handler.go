// Admin HTTP handlers.
//
// This file exposes the reporting endpoints behind the admin API:
//   - GET /admin/analytics       (platform usage totals)
//   - GET /admin/conversations   (recent conversations across all users)
//
// Both routes sit behind RequireAdmin; non-admin sessions never reach these
// handlers.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tutor-backend/internal/services"
)

// RecentConversationsResponse wraps the admin conversation feed.
type RecentConversationsResponse struct {
	Conversations []services.RecentConversation `json:"conversations"`
}

// Analytics godoc
// @ID          adminAnalytics
// @Summary     Usage totals
// @Description Returns platform-wide counts: users, conversations, messages, and users active in the last day.
// @Tags        Admin
// @Produce     json
//
// @Success     200  {object}  services.Summary
// @Failure     403  {object}  handlers.ErrorResponse  "Admin only"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/analytics [get]
func (h *Handlers) Analytics(c *gin.Context) {
	sum, err := h.statsSvc.Summary(c.Request.Context())
	if err != nil {
		failInternal(c, ErrCodeInternal, err)
		return
	}
	ok(c, http.StatusOK, sum)
}

// RecentConversations godoc
// @ID          adminRecentConversations
// @Summary     Recent conversations
// @Description Returns the latest conversations across all users, enriched with usernames and topic titles.
// @Tags        Admin
// @Produce     json
//
// @Param       limit  query  int  false  "Maximum rows"  minimum(1) maximum(100) default(10)
//
// @Success     200  {object}  handlers.RecentConversationsResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Admin only"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/conversations [get]
func (h *Handlers) RecentConversations(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a positive integer")
			return
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	convs, err := h.statsSvc.RecentConversations(c.Request.Context(), limit)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	ok(c, http.StatusOK, RecentConversationsResponse{Conversations: convs})
}
