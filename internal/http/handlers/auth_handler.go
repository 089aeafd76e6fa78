// Auth HTTP handlers.
//
// This file exposes REST endpoints for accounts and sessions:
//   - POST /auth/register  (create an account)
//   - POST /auth/login     (verify credentials, set session cookie)
//   - POST /auth/logout    (clear session cookie)
//   - GET  /auth/me        (current account)
//
// Sessions are stateless signed tokens delivered in an HTTP-only cookie, so
// logout is purely client-side: the cookie is overwritten with an expired
// one and the token ages out on its own.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tutor-backend/internal/sysutil"
)

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	// Username is the unique handle used to sign in (3-64 chars).
	Username string `json:"username" binding:"required,min=3,max=64" example:"gmat_hopeful"`
	// Email must be unique across accounts.
	Email string `json:"email" binding:"required,email" example:"student@example.com"`
	// Password is hashed before storage (8 chars minimum).
	Password string `json:"password" binding:"required,min=8" example:"correct-horse-battery"`
}

// LoginRequest is the JSON payload for signing in. Either username or email
// identifies the account; when both are present, username wins.
type LoginRequest struct {
	Username string `json:"username" example:"gmat_hopeful"`
	Email    string `json:"email" example:"student@example.com"`
	Password string `json:"password" binding:"required" example:"correct-horse-battery"`
}

// UserResponse is the public account shape. The password hash never leaves
// the service layer.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

//
// Handlers
//

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Registers a new user. Username and email must be unused.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object}  handlers.UserResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload or username/email taken"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, err)
		return
	}

	u, err := h.authSvc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
	})
}

// Login godoc
// @ID          login
// @Summary     Sign in
// @Description Verifies credentials and sets the HTTP-only session cookie.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.UserResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "password required")
		return
	}
	identifier := sysutil.FirstNonEmpty(req.Username, req.Email)
	if identifier == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username or email required")
		return
	}

	u, err := h.authSvc.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}

	token, err := h.authSvc.IssueToken(u)
	if err != nil {
		failInternal(c, ErrCodeInternal, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.TTL.Seconds()), "/", h.cookie.Domain, h.cookie.Secure, true)

	ok(c, http.StatusOK, UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
	})
}

// Logout godoc
// @ID          logout
// @Summary     Sign out
// @Description Clears the session cookie.
// @Tags        Auth
// @Produce     json
//
// @Success     204  {string}  string  "No Content"
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
	noContent(c)
}

// Me godoc
// @ID          me
// @Summary     Current account
// @Description Returns the account behind the session cookie.
// @Tags        Auth
// @Produce     json
//
// @Success     200  {object}  handlers.UserResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Not authenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	uid, okID := currentUser(c)
	if !okID {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}

	u, err := h.authSvc.GetUser(c.Request.Context(), uid)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
	})
}
