package session

import "errors"

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrInvalidDevice  = errors.New("invalid device id")
)
