package services

import (
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

func appointmentRecord(a *models.Appointment) protocol.AppointmentRecord {
	owner := protocol.AccountSummary{ID: a.UserID}
	if a.Owner != nil {
		owner.Username = a.Owner.Username
		owner.ColorCode = a.Owner.ColorCode
	}
	return protocol.AppointmentRecord{
		ID:     a.ID,
		UserID: a.UserID,
		AppointmentFields: protocol.AppointmentFields{
			Title:           a.Title,
			AppointmentDate: a.AppointmentDate,
			StartTime:       a.StartTime,
			DurationMinutes: a.DurationMinutes,
			Notes:           a.Notes,
			RecurrenceType:  a.RecurrenceType,
		},
		ServerUpdatedAt: protocol.FormatTimestamp(a.ServerUpdatedAt),
		User:            owner,
	}
}

func noteRecord(n *models.Note) protocol.NoteRecord {
	return protocol.NoteRecord{
		ID:     n.ID,
		UserID: n.UserID,
		NoteFields: protocol.NoteFields{
			Title:     n.Title,
			Content:   n.Content,
			ColorCode: n.ColorCode,
		},
		ServerUpdatedAt: protocol.FormatTimestamp(n.ServerUpdatedAt),
	}
}

// AccountSummary is the public view of an account sent to clients.
func AccountSummary(a *models.Account) protocol.AccountSummary {
	return protocol.AccountSummary{ID: a.ID, Username: a.Username, ColorCode: a.ColorCode}
}

func backupView(b *models.Backup) protocol.Backup {
	return protocol.Backup{
		ID:         b.ID,
		FilePath:   b.FilePath,
		FileSize:   b.FileSize,
		Notes:      b.Notes,
		BackupDate: protocol.FormatTimestamp(b.BackupDate),
	}
}
