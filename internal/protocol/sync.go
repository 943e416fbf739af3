package protocol

// StatusSuccess is the only status a completed sync reply carries.
const StatusSuccess = "success"

// AppointmentFields are the client-editable attributes of an appointment.
type AppointmentFields struct {
	Title           string  `json:"title"`
	AppointmentDate string  `json:"appointment_date"`
	StartTime       *string `json:"start_time"`
	DurationMinutes *int64  `json:"duration_minutes"`
	Notes           *string `json:"notes"`
	RecurrenceType  *string `json:"recurrence_type"`
}

// NoteFields are the client-editable attributes of a general note.
type NoteFields struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	ColorCode *string `json:"color_code"`
}

// NewAppointment is a locally created appointment; ID is the client's
// temporary identifier.
type NewAppointment struct {
	ID string `json:"id"`
	AppointmentFields
}

// AppointmentUpdate carries the server id of an appointment edited locally.
type AppointmentUpdate struct {
	ID int64 `json:"id"`
	AppointmentFields
}

// NewNote is a locally created note keyed by a temporary identifier.
type NewNote struct {
	ID string `json:"id"`
	NoteFields
}

// NoteUpdate carries the server id of a note edited locally.
type NoteUpdate struct {
	ID int64 `json:"id"`
	NoteFields
}

// EntityChanges is the per-kind section of a change-set.
type EntityChanges[C, U any] struct {
	Created []C     `json:"created"`
	Updated []U     `json:"updated"`
	Deleted []int64 `json:"deleted"`
}

// IsEmpty reports whether the section carries nothing to push.
func (e *EntityChanges[C, U]) IsEmpty() bool {
	return e == nil || len(e.Created)+len(e.Updated)+len(e.Deleted) == 0
}

// ChangeSet groups the local edits a client pushes upstream. Both sections
// are optional on the wire.
type ChangeSet struct {
	Appointments *EntityChanges[NewAppointment, AppointmentUpdate] `json:"appointments,omitempty"`
	GeneralNotes *EntityChanges[NewNote, NoteUpdate]               `json:"general_notes,omitempty"`
}

// SyncRequest is the body of POST /api/sync.
type SyncRequest struct {
	LastSyncTimestamp string     `json:"last_sync_timestamp,omitempty"`
	Changes           *ChangeSet `json:"changes,omitempty"`
}

// IDRemap tells the client which server id its temporary record received.
type IDRemap struct {
	TempID   TempID `json:"temp_id"`
	ServerID int64  `json:"server_id"`
}

// AccountSummary identifies an account to other clients.
type AccountSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	ColorCode string `json:"color_code"`
}

// AppointmentRecord is the full current state of an appointment together
// with a summary of its owner.
type AppointmentRecord struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	AppointmentFields
	ServerUpdatedAt string         `json:"server_updated_at"`
	User            AccountSummary `json:"user"`
}

// NoteRecord is the full current state of a note.
type NoteRecord struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	NoteFields
	ServerUpdatedAt string `json:"server_updated_at"`
}

// Delta is the per-kind section of a sync reply. Created holds id remaps
// only; Updated holds every record modified after the watermark; Deleted
// holds tombstoned ids and stays empty unless deletion propagation is on.
type Delta[T any] struct {
	Created []IDRemap `json:"created"`
	Updated []T       `json:"updated"`
	Deleted []int64   `json:"deleted"`
}

// NewDelta returns a Delta whose lists encode as [] rather than null.
func NewDelta[T any]() Delta[T] {
	return Delta[T]{Created: []IDRemap{}, Updated: []T{}, Deleted: []int64{}}
}

// Changes is the outbound half of a sync reply.
type Changes struct {
	Appointments Delta[AppointmentRecord] `json:"appointments"`
	GeneralNotes Delta[NoteRecord]        `json:"general_notes"`
}

// SyncResponse is the reply to POST /api/sync.
type SyncResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Changes   Changes `json:"changes"`
}

// NewSyncResponse returns a successful, empty reply stamped with timestamp.
func NewSyncResponse(timestamp string) *SyncResponse {
	return &SyncResponse{
		Status:    StatusSuccess,
		Timestamp: timestamp,
		Changes: Changes{
			Appointments: NewDelta[AppointmentRecord](),
			GeneralNotes: NewDelta[NoteRecord](),
		},
	}
}
