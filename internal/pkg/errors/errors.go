package errors

import (
	"errors"
	"time"
)

var (
	ErrNotFound               = errors.New("resource not found")
	ErrAlreadyExists          = errors.New("resource already exists")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInsufficientPermission = errors.New("insufficient permission")
	ErrRateLimited            = errors.New("rate limit exceeded")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

type Error struct {
	Err     error
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
		Code:    "INTERNAL_ERROR",
	}
}

// RateLimitError carries the window reset time alongside the sentinel so a
// 429 response can tell the caller when quota returns.
type RateLimitError struct {
	ResetTime time.Time
}

func (e *RateLimitError) Error() string {
	return ErrRateLimited.Error()
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
