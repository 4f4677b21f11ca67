package services

import "errors"

// AuthenticationError covers every way a credential or token can fail to
// authenticate: unknown email, wrong password, inactive user, bad signature,
// expired token, revoked token, token-version mismatch. Every instance maps
// to the same externally visible failure; Cause is for logs only, so error
// content cannot be used to enumerate accounts or probe token state.
type AuthenticationError struct {
	Cause string
}

func (e *AuthenticationError) Error() string { return e.Cause }

// AuthorizationError means the principal authenticated fine but its role is
// not allowed to perform the operation.
type AuthorizationError struct {
	Cause string
}

func (e *AuthorizationError) Error() string { return e.Cause }

// ValidationError means required input was missing or malformed before any
// authentication decision was made.
type ValidationError struct {
	Cause string
}

func (e *ValidationError) Error() string { return e.Cause }

var (
	ErrInvalidCredentials     = &AuthenticationError{Cause: "invalid credentials"}
	ErrInactiveUser           = &AuthenticationError{Cause: "inactive user"}
	ErrTokenInvalid           = &AuthenticationError{Cause: "token invalid or expired"}
	ErrUserNotFoundOrInactive = &AuthenticationError{Cause: "user not found or inactive"}
	ErrTokenVersionMismatch   = &AuthenticationError{Cause: "token revoked by version change"}
	ErrRefreshTokenInvalid    = &AuthenticationError{Cause: "refresh token invalid, expired or revoked"}
	ErrInsufficientRole       = &AuthorizationError{Cause: "insufficient role"}
)

// IsAuthenticationError reports whether err is any authentication failure.
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsAuthorizationError reports whether err is a role failure.
func IsAuthorizationError(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// IsValidationError reports whether err is an input validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
