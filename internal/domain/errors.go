package domain

import "errors"

var (
	ErrPrincipalNotFound   = errors.New("principal not found")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrCredentialRevoked   = errors.New("credential revoked")
	ErrInvalidSecret       = errors.New("invalid setup secret")
	ErrSecretNotConfigured = errors.New("setup secret not configured")
	ErrMissingUID          = errors.New("uid is required")
	ErrBatchTooLarge       = errors.New("batch exceeds max operations")
	ErrUnknownFeed         = errors.New("unknown feed")
	ErrManagerClosed       = errors.New("feed manager closed")
)
