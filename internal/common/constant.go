// Package common contains shared constants and sentinel errors used across
// schedsync components.
package common

const (
	// AppSecretHeaderName carries the shared application credential on every
	// /api request (HTTP header and gRPC metadata key).
	AppSecretHeaderName = "X-App-Secret"

	// AuthorizationHeaderName carries the bearer access token.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "
)
