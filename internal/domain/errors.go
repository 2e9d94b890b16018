package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrInstanceNotFound indicates the requested instance does not exist
	ErrInstanceNotFound = errors.New("instance not found")

	// ErrAccountNotFound indicates the requested account does not exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrServerOffline indicates the backend instance is unreachable
	ErrServerOffline = errors.New("instance is unreachable")

	// ErrAuthFailed indicates credentials were rejected by the backend
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotSignedIn indicates an operation requiring credentials was
	// attempted without a signed-in account
	ErrNotSignedIn = errors.New("not signed in")
)
