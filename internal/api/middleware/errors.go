package middleware

import "errors"

var (
	errMissingHeader   = errors.New("missing authorization header")
	errBadHeaderFormat = errors.New("invalid authorization header format")
)
