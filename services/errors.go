package services

import "errors"

var (
	// ErrJobNotFound is returned when no job record has the requested id
	ErrJobNotFound = errors.New("job record not found")
	// ErrInvalidCredentials is returned by SignIn for an unknown email or wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned by Verify for malformed, expired or foreign tokens
	ErrInvalidToken = errors.New("invalid session token")
	// ErrSessionRevoked is returned by Verify for a token that was signed out
	ErrSessionRevoked = errors.New("session has been signed out")
	// ErrUploadFailed wraps media host failures
	ErrUploadFailed = errors.New("photo upload failed")
)
