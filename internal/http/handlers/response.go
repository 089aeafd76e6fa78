// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all
// endpoints: a structured error envelope and helpers for common success
// patterns. Both success and failure responses keep a uniform shape so
// clients can branch on a stable `code` instead of parsing messages.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "topic not found"
//	}
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-tutor-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// Fields:
//   - RequestID: correlation ID echoed from X-Request-ID, used to match
//     server logs with client-side errors.
//   - Code: a stable, machine-readable string (see errors.go constants).
//   - Message: a human-readable description, safe to show to users.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"topic not found"`
	// Field-level validation problems, when the failure is a 400 on a
	// structured payload
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError pinpoints one invalid field in a request payload.
type FieldError struct {
	Field  string `json:"field" example:"email"`
	Reason string `json:"reason" example:"must be a valid email address"`
}

// fail aborts the request with a structured error envelope.
//
// Server errors (>=500) are logged with the request-scoped logger so every
// 5xx leaves a trace with the correlation ID attached.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail(). Router setup uses it for NoRoute
// and NoMethod responses so every path through the server speaks the same
// envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failInternal writes a 500 with a fixed generic message. The underlying
// error goes to the request-scoped log only; clients never see driver or
// store internals.
func failInternal(c *gin.Context, code string, err error) {
	lg := middleware.LoggerFrom(c)
	lg.Error().
		Err(err).
		Str("code", code).
		Msg("api error")

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   "server error",
	})
}

// failValidation writes a 400 with per-field detail when the binding error
// carries validator metadata, and falls back to a plain bad_request envelope
// otherwise.
func failValidation(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request payload")
		return
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:  strings.ToLower(fe.Field()),
			Reason: validationReason(fe),
		})
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      ErrCodeBadRequest,
		Message:   "invalid request payload",
		Errors:    fields,
	})
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
