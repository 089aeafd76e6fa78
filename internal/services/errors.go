// Package services defines the business logic for accounts, tutoring
// conversations, and analytics. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

// Account-related errors.
var (
	// ErrUserExists indicates the requested username is already taken.
	ErrUserExists = errors.New("username already exists")

	// ErrEmailExists indicates the requested email is already registered.
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when a login attempt fails. It covers
	// both unknown accounts and wrong passwords so callers cannot probe for
	// registered usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Conversation-related errors.
var (
	// ErrTopicNotFound indicates that the requested topic does not exist.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrConversationNotFound indicates that the requested conversation does
	// not exist or is not accessible to the current user.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrForbidden is returned when a user attempts to read or write a
	// conversation they do not own.
	ErrForbidden = errors.New("not authorized for this conversation")

	// ErrEmptyMessage is returned when a posted message contains no content
	// after trimming whitespace.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTooLong is returned when a posted message exceeds the maximum
	// configured length limit.
	ErrTooLong = errors.New("message too long")

	// ErrMessageNotFound indicates that the requested message does not exist
	// or is not accessible to the current user.
	ErrMessageNotFound = errors.New("message not found")
)
