// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements session authentication. Sessions are stateless signed
// tokens carried in an HTTP-only cookie; RequireSession decodes the cookie
// via a TokenParser and stashes the identity in the Gin context, where
// downstream middleware and handlers read it through UserID and IsAdmin.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tutor-backend/internal/services"
)

// Context keys for the authenticated identity.
const (
	ctxKeyUserID  = "userID"
	ctxKeyIsAdmin = "isAdmin"
)

// TokenParser validates a session token and returns the identity it carries.
// services.AuthService satisfies this.
type TokenParser interface {
	ParseToken(token string) (services.Session, error)
}

// UserID returns the authenticated user id stored by RequireSession.
// The second return value reports presence.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// IsAdmin reports whether the authenticated user has the admin flag.
func IsAdmin(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIsAdmin)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// RequireSession authenticates the request from the session cookie. Requests
// without a valid session are rejected with a 401 envelope.
func RequireSession(parser TokenParser, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "not authenticated")
			return
		}
		sess, err := parser.ParseToken(token)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "not authenticated")
			return
		}
		c.Set(ctxKeyUserID, sess.UserID)
		c.Set(ctxKeyIsAdmin, sess.IsAdmin)
		c.Next()
	}
}

// RequireAdmin rejects authenticated non-admin users with a 403 envelope.
// Mount it after RequireSession.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			abortAuth(c, http.StatusForbidden, "forbidden", "not authorized")
			return
		}
		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
