package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// session specific errors
	ErrorNotLoggedIn = errors.New("not logged in")
	ErrInvalidToken  = errors.New("invalid token")

	// ui flow errors
	ErrCancelled = errors.New("cancelled")
)
