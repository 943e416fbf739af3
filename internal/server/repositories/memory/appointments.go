package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

const dateLayout = "2006-01-02"

type appointmentRepo struct{ s *Store }

func checkAppointment(a *models.Appointment) error {
	if _, err := time.Parse(dateLayout, a.AppointmentDate); err != nil {
		return fmt.Errorf("db error: invalid input syntax for type date: %q", a.AppointmentDate)
	}
	return nil
}

func (r appointmentRepo) Create(_ context.Context, a *models.Appointment) (int64, error) {
	if err := checkAppointment(a); err != nil {
		return 0, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[a.UserID]; !ok {
		return 0, fmt.Errorf("db error: user %d does not exist", a.UserID)
	}
	r.s.appointmentSeq++
	a.ID = r.s.appointmentSeq
	a.ServerUpdatedAt = r.s.stamp()
	c := *a
	c.Owner = nil
	r.s.appointments[a.ID] = &c
	return a.ID, nil
}

func (r appointmentRepo) Update(_ context.Context, a *models.Appointment) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.appointments[a.ID]
	if !ok || cur.UserID != a.UserID {
		return false, nil
	}
	if err := checkAppointment(a); err != nil {
		return false, err
	}
	cur.Title = a.Title
	cur.AppointmentDate = a.AppointmentDate
	cur.StartTime = a.StartTime
	cur.DurationMinutes = a.DurationMinutes
	cur.Notes = a.Notes
	cur.RecurrenceType = a.RecurrenceType
	cur.ServerUpdatedAt = r.s.stamp()
	return true, nil
}

func (r appointmentRepo) Delete(_ context.Context, id, ownerID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.appointments[id]
	if !ok || cur.UserID != ownerID {
		return false, nil
	}
	delete(r.s.appointments, id)
	return true, nil
}

func (r appointmentRepo) GetByID(_ context.Context, id int64) (*models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.withOwner(a), nil
}

func (r appointmentRepo) SelectUpdatedSince(_ context.Context, since time.Time) ([]*models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.Appointment, 0)
	for _, a := range r.s.appointments {
		if a.ServerUpdatedAt.After(since) {
			result = append(result, r.withOwner(a))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].ServerUpdatedAt.Equal(result[j].ServerUpdatedAt) {
			return result[i].ServerUpdatedAt.Before(result[j].ServerUpdatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// withOwner copies a and attaches its owner summary. Callers hold the lock.
func (r appointmentRepo) withOwner(a *models.Appointment) *models.Appointment {
	c := *a
	owner := models.Account{ID: a.UserID}
	if acc, ok := r.s.accounts[a.UserID]; ok {
		owner = models.Account{ID: acc.ID, Username: acc.Username, ColorCode: acc.ColorCode}
	}
	c.Owner = &owner
	return &c
}
