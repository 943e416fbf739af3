// Package common defines shared constants and sentinel errors used across
// client and server layers of schedsync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors for inbound payloads.
	ErrorValidation     = errors.New("validation error")
	ErrInvalidWatermark = errors.New("invalid watermark")

	// Auth errors (invalid or malformed token, wrong application secret).
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidAppToken = errors.New("unauthorized application")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
