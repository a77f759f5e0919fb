package service

import "errors"

var (
	// ErrInvalidInput marks a request the caller must correct.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState marks an operation not allowed in the queue's current status.
	ErrInvalidState = errors.New("invalid queue state")
)
