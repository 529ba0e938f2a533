package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrIndexUnavailable = errors.New("search index unavailable")
)
