package service

import "errors"

// Validation errors: recoverable, reported to the caller with a 400.
var (
	ErrScoreOutOfRange = errors.New("score must be between 1 and 10")
	ErrDuplicateReview = errors.New("only one review allowed")
	ErrUnknownGenre    = errors.New("unknown genre slug")
	ErrUnknownCategory = errors.New("unknown category slug")
	ErrYearInFuture    = errors.New("year must not be in the future")
	ErrNameRequired    = errors.New("name is required")
	ErrSlugRequired    = errors.New("slug is required")
	ErrTextRequired    = errors.New("text is required")
	ErrUnknownRole     = errors.New("unknown role")
)

// Authorization errors. Handlers distinguish 401 from 403 by these.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient permissions")
)

// Missing parent or target resources, mapped to 404.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrTitleNotFound    = errors.New("title not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrCommentNotFound  = errors.New("comment not found")
)

// Auth flow errors.
var (
	ErrNameInUse    = errors.New("username already in use")
	ErrEmailInUse   = errors.New("email already in use")
	ErrInvalidCode  = errors.New("invalid or expired confirmation code")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
