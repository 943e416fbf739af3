package models

import "time"

// Note is a free-form coloured note. Notes are shared for read and write:
// any authenticated account may update or delete any note.
type Note struct {
	ID              int64
	UserID          int64
	Title           *string
	Content         *string
	ColorCode       *string
	ServerUpdatedAt time.Time
}
