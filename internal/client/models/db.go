// Package models defines the client-side records kept in the local SQLite
// copy of the shared calendar.
package models

// Metadata keys of the local key/value table.
const (
	MetaWatermark    = "last_sync_timestamp"
	MetaAccessToken  = "access_token"
	MetaRefreshToken = "refresh_token"
	MetaAccountID    = "account_id"
	MetaUsername     = "username"
)
