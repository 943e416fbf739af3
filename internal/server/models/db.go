// Package models defines server-side records persisted in the entity store.
package models

// Entity kinds, as used for tombstones and logging.
const (
	KindAppointment = "appointment"
	KindNote        = "note"
)
