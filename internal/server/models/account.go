package models

import "time"

// Account is the actor performing a sync. Accounts are created out of band
// and are immutable during sync.
type Account struct {
	ID           int64
	Username     string
	PasswordHash []byte
	ColorCode    string
	CreatedAt    time.Time
}
