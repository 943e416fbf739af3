package changeset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

const (
	listCreated = "created"
	listUpdated = "updated"
	listDeleted = "deleted"
)

type rawLists struct {
	Created []json.RawMessage `json:"created"`
	Updated []json.RawMessage `json:"updated"`
	Deleted []json.RawMessage `json:"deleted"`
}

type rawEnvelope struct {
	LastSyncTimestamp *string `json:"last_sync_timestamp"`
	Changes           *struct {
		Appointments *rawLists `json:"appointments"`
		GeneralNotes *rawLists `json:"general_notes"`
	} `json:"changes"`
}

// serverID is a positive record id sent as a JSON number or a numeric string.
type serverID int64

func (id *serverID) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		return errors.New("id is null")
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fmt.Errorf("id %s is not an integer", s)
	}
	if n <= 0 {
		return fmt.Errorf("id %d is not positive", n)
	}
	*id = serverID(n)
	return nil
}

type appointmentItem struct {
	Title           *string `json:"title"`
	AppointmentDate *string `json:"appointment_date"`
	StartTime       *string `json:"start_time"`
	DurationMinutes *int64  `json:"duration_minutes"`
	Notes           *string `json:"notes"`
	RecurrenceType  *string `json:"recurrence_type"`
}

func (it appointmentItem) record(id int64) (models.Appointment, error) {
	switch {
	case it.Title == nil:
		return models.Appointment{}, errors.New("title is required")
	case it.AppointmentDate == nil:
		return models.Appointment{}, errors.New("appointment_date is required")
	}
	return models.Appointment{
		ID:              id,
		Title:           *it.Title,
		AppointmentDate: *it.AppointmentDate,
		StartTime:       it.StartTime,
		DurationMinutes: it.DurationMinutes,
		Notes:           it.Notes,
		RecurrenceType:  it.RecurrenceType,
	}, nil
}

type noteItem struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	ColorCode *string `json:"color_code"`
}

func (it noteItem) record(id int64) (models.Note, error) {
	return models.Note{ID: id, Title: it.Title, Content: it.Content, ColorCode: it.ColorCode}, nil
}

// Parse decodes a sync request body. An empty body is an empty request.
func Parse(body []byte) (*Batch, error) {
	var env rawEnvelope
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("%w: malformed sync request: %v", common.ErrorValidation, err)
		}
	}

	var watermark string
	if env.LastSyncTimestamp != nil {
		watermark = *env.LastSyncTimestamp
	}
	wm, err := protocol.ParseWatermark(watermark)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}

	b := &Batch{Watermark: wm}
	if env.Changes == nil {
		return b, nil
	}
	b.Appointments = parseKind(b, models.KindAppointment, env.Changes.Appointments,
		func(raw json.RawMessage, id int64) (models.Appointment, error) {
			var it appointmentItem
			if err := json.Unmarshal(raw, &it); err != nil {
				return models.Appointment{}, err
			}
			return it.record(id)
		})
	b.Notes = parseKind(b, models.KindNote, env.Changes.GeneralNotes,
		func(raw json.RawMessage, id int64) (models.Note, error) {
			var it noteItem
			if err := json.Unmarshal(raw, &it); err != nil {
				return models.Note{}, err
			}
			return it.record(id)
		})
	return b, nil
}

func parseKind[T any](b *Batch, kind string, lists *rawLists, decode func(raw json.RawMessage, id int64) (T, error)) Ops[T] {
	var ops Ops[T]
	if lists == nil {
		return ops
	}
	skip := func(list string, i int, err error) {
		b.Skipped = append(b.Skipped, Skip{Kind: kind, List: list, Index: i, Err: err})
	}

	// temp ids already accepted, keyed by their JSON form
	seen := make(map[string]bool, len(lists.Created))
	for i, raw := range lists.Created {
		var head struct {
			ID *protocol.TempID `json:"id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			skip(listCreated, i, err)
			continue
		}
		if head.ID == nil || head.ID.IsZero() {
			skip(listCreated, i, errors.New("id is required"))
			continue
		}
		key, _ := head.ID.MarshalJSON()
		if seen[string(key)] {
			skip(listCreated, i, fmt.Errorf("duplicate id %s", key))
			continue
		}
		rec, err := decode(raw, 0)
		if err != nil {
			skip(listCreated, i, err)
			continue
		}
		seen[string(key)] = true
		ops.Created = append(ops.Created, Created[T]{TempID: *head.ID, Record: rec})
	}

	for i, raw := range lists.Updated {
		var head struct {
			ID *serverID `json:"id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			skip(listUpdated, i, err)
			continue
		}
		if head.ID == nil {
			skip(listUpdated, i, errors.New("id is required"))
			continue
		}
		rec, err := decode(raw, int64(*head.ID))
		if err != nil {
			skip(listUpdated, i, err)
			continue
		}
		ops.Updated = append(ops.Updated, rec)
	}

	for i, raw := range lists.Deleted {
		var id *serverID
		if err := json.Unmarshal(raw, &id); err != nil {
			skip(listDeleted, i, err)
			continue
		}
		if id == nil {
			skip(listDeleted, i, errors.New("id is null"))
			continue
		}
		ops.Deleted = append(ops.Deleted, int64(*id))
	}
	return ops
}
