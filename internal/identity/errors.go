package identity

import "errors"

var (
	// ErrInvalidInput reports a structurally incomplete registration request.
	ErrInvalidInput = errors.New("login and password are required")

	// ErrDuplicateLogin reports a registration collision on the login name.
	ErrDuplicateLogin = errors.New("login already taken")

	// ErrInvalidCredentials covers both an unknown login and a wrong password so
	// callers cannot probe for account existence.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable wraps any lower-level credential store failure.
	ErrStoreUnavailable = errors.New("credential store unavailable")

	// ErrNotFound is returned by repositories when no user matches.
	ErrNotFound = errors.New("user not found")
)
