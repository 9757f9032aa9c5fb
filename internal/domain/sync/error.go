package sync

import "errors"

var (
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrRecordNotFound   = errors.New("record not found")
	ErrInvalidRecord    = errors.New("invalid change record")
	ErrBatchTooLarge    = errors.New("batch too large")
)
