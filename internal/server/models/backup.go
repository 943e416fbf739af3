package models

import "time"

// Backup is the metadata row of a database backup kept in object storage.
type Backup struct {
	ID         int64
	FilePath   string
	FileSize   int64
	Notes      string
	BackupDate time.Time
}
