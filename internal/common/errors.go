package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Comment errors
	ErrCommentNotFound  = errors.New("comment not found")
	ErrCommentWithdrawn = errors.New("comment has been withdrawn")
	ErrCommentsClosed   = errors.New("comments are closed for this agenda item")

	// Meeting errors
	ErrMeetingNotFound    = errors.New("meeting not found")
	ErrAgendaItemNotFound = errors.New("agenda item not found")

	// Recommendation errors
	ErrRecommendationNotFound = errors.New("recommendation not found")

	// Auth errors
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidOTP        = errors.New("invalid or expired code")
	ErrTooManyAttempts   = errors.New("too many failed attempts")
	ErrUserNotFound      = errors.New("user not found")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
