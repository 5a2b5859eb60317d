package services

import "errors"

// Input errors: surfaced to the caller verbatim, never retried.
var (
	ErrDuplicateSource      = errors.New("source url already submitted")
	ErrNoAcceptableEncoding = errors.New("no acceptable encoding available")
	ErrInvalidCategory      = errors.New("unknown category")
	ErrNotFound             = errors.New("record not found")
)

// ErrMetadataUnavailable is an external-dependency failure on the
// synchronous submission path.
var ErrMetadataUnavailable = errors.New("video metadata unavailable")
