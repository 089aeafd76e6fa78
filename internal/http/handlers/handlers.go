// Handler wiring.
//
// This file defines the service contracts the HTTP layer depends on, the
// Handlers aggregate that binds them, and small helpers shared by the
// endpoint files (identity extraction, path parameter parsing, and the
// mapping from service errors to HTTP envelopes).
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/http/middleware"
	"github.com/tbourn/go-tutor-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// AuthService defines account and session operations consumed by HTTP
// handlers.
type AuthService interface {
	// Register creates a new account with a unique username and email.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	// Login verifies credentials; the identifier may be a username or email.
	Login(ctx context.Context, identifier, password string) (*domain.User, error)
	// GetUser returns the account behind an authenticated session.
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	// IssueToken mints a signed session token for the user.
	IssueToken(u *domain.User) (string, error)
}

// ChatService defines topic and conversation operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ChatService interface {
	// Topics lists the available practice topics.
	Topics(ctx context.Context) ([]domain.Topic, error)
	// Topic returns a single topic by id.
	Topic(ctx context.Context, id uint) (*domain.Topic, error)
	// OpenTopic returns the user's existing conversation for a topic or
	// starts one with an assistant greeting.
	OpenTopic(ctx context.Context, userID, topicID uint) (*domain.Conversation, error)
	// StartConversation always begins a fresh conversation for a topic.
	StartConversation(ctx context.Context, userID, topicID uint) (*domain.Conversation, error)
	// PostMessage appends a user turn and returns the assistant reply.
	PostMessage(ctx context.Context, userID, convID uint, text string) (*domain.Message, error)
	// Conversations lists the user's conversations, newest first.
	Conversations(ctx context.Context, userID uint) ([]domain.Conversation, error)
	// Conversation returns one conversation, enforcing ownership.
	Conversation(ctx context.Context, userID uint, isAdmin bool, convID uint) (*domain.Conversation, error)
	// Messages returns a conversation's transcript, enforcing ownership.
	Messages(ctx context.Context, userID uint, isAdmin bool, convID uint) ([]domain.Message, error)
}

// AnalyticsService defines the reporting operations behind the admin API.
type AnalyticsService interface {
	// Summary returns platform-wide usage totals.
	Summary(ctx context.Context) (services.Summary, error)
	// RecentConversations returns the latest conversations across all users.
	RecentConversations(ctx context.Context, limit int) ([]services.RecentConversation, error)
}

//
// Handler wiring
//

// CookieOptions configures the session cookie written by Login and cleared
// by Logout.
type CookieOptions struct {
	// Name of the session cookie.
	Name string
	// TTL bounds cookie lifetime; it should match the token TTL.
	TTL time.Duration
	// Secure marks the cookie as HTTPS-only. Keep it on outside local dev.
	Secure bool
	// Domain scopes the cookie; empty means host-only.
	Domain string
}

// Handlers groups the HTTP endpoints for auth, topics, conversations, and
// the admin API. It depends on abstract service interfaces to keep transport
// concerns separate from business logic; the raw DB handle is used only for
// idempotency records, which are a transport concern.
type Handlers struct {
	authSvc  AuthService
	chatSvc  ChatService
	statsSvc AnalyticsService
	db       *gorm.DB
	cookie   CookieOptions
}

// New constructs a Handlers instance bound to the given services.
func New(authSvc AuthService, chatSvc ChatService, statsSvc AnalyticsService, db *gorm.DB, cookie CookieOptions) *Handlers {
	if cookie.Name == "" {
		cookie.Name = "tutor_session"
	}
	if cookie.TTL <= 0 {
		cookie.TTL = 24 * time.Hour
	}
	return &Handlers{
		authSvc:  authSvc,
		chatSvc:  chatSvc,
		statsSvc: statsSvc,
		db:       db,
		cookie:   cookie,
	}
}

//
// Helpers
//

// currentUser extracts the authenticated user id set by the session
// middleware. Handlers behind RequireSession always find it; the boolean
// guards against misrouted registration.
func currentUser(c *gin.Context) (uint, bool) {
	return middleware.UserID(c)
}

// uintParam parses a numeric path parameter, failing the request with 400
// when it is absent or malformed. The boolean reports success.
func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return uint(n), true
}

// failService translates well-known service errors into HTTP envelopes.
// fallbackCode is used for unexpected errors, which become 500s.
func failService(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrTopicNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "topic not found")
	case errors.Is(err, services.ErrConversationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
	case errors.Is(err, services.ErrMessageNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "message not found")
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "conversation belongs to another user")
	case errors.Is(err, services.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
	case errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content too long")
	case errors.Is(err, services.ErrUserExists):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username already exists")
	case errors.Is(err, services.ErrEmailExists):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
	default:
		failInternal(c, fallbackCode, err)
	}
}
