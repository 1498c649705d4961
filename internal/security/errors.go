package security

import "errors"

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	// ErrSecretMissing is returned when a token service is built without a signing key.
	ErrSecretMissing = errors.New("jwt secret is required")
)
