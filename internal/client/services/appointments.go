package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/client/client"
	"github.com/dmitrijs2005/schedsync/internal/client/models"
	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/google/uuid"
)

// ErrNotOwner is returned for edits of an appointment another account owns.
// The server would ignore them.
var ErrNotOwner = errors.New("appointment belongs to another account")

type AppointmentService interface {
	Add(ctx context.Context, f protocol.AppointmentFields) (*models.Appointment, error)
	List(ctx context.Context) ([]models.Appointment, error)
	Get(ctx context.Context, ref string) (*models.Appointment, error)
	Update(ctx context.Context, ref string, edit func(*protocol.AppointmentFields)) (*models.Appointment, error)
	Delete(ctx context.Context, ref string) error
}

type appointmentService struct {
	repos *client.Repositories
}

func NewAppointmentService(repos *client.Repositories) AppointmentService {
	return &appointmentService{repos: repos}
}

// ValidateAppointment checks the fields the server requires and the formats
// the calendar understands.
func ValidateAppointment(f *protocol.AppointmentFields) error {
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if _, err := time.Parse(time.DateOnly, f.AppointmentDate); err != nil {
		return fmt.Errorf("%w: appointment date must be YYYY-MM-DD", common.ErrorValidation)
	}
	if f.StartTime != nil {
		if _, err := time.Parse("15:04", *f.StartTime); err != nil {
			return fmt.Errorf("%w: start time must be HH:MM", common.ErrorValidation)
		}
	}
	if f.DurationMinutes != nil && *f.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", common.ErrorValidation)
	}
	return nil
}

// owner returns the signed-in account as recorded at login.
func owner(ctx context.Context, repos *client.Repositories) (protocol.AccountSummary, error) {
	s, err := repos.Metadata.Get(ctx, models.MetaAccountID)
	if err != nil {
		return protocol.AccountSummary{}, err
	}
	var id int64
	if s != "" {
		if id, err = strconv.ParseInt(s, 10, 64); err != nil {
			return protocol.AccountSummary{}, fmt.Errorf("corrupt account id %q: %w", s, err)
		}
	}
	name, err := repos.Metadata.Get(ctx, models.MetaUsername)
	if err != nil {
		return protocol.AccountSummary{}, err
	}
	return protocol.AccountSummary{ID: id, Username: name}, nil
}

func (s *appointmentService) Add(ctx context.Context, f protocol.AppointmentFields) (*models.Appointment, error) {
	if err := ValidateAppointment(&f); err != nil {
		return nil, err
	}
	me, err := owner(ctx, s.repos)
	if err != nil {
		return nil, err
	}

	a := &models.Appointment{LocalID: uuid.NewString(), AppointmentFields: f, Owner: me}
	if err := s.repos.Appointments.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	return a, nil
}

func (s *appointmentService) List(ctx context.Context) ([]models.Appointment, error) {
	return s.repos.Appointments.List(ctx)
}

func (s *appointmentService) Get(ctx context.Context, ref string) (*models.Appointment, error) {
	list, err := s.repos.Appointments.List(ctx)
	if err != nil {
		return nil, err
	}
	return resolve(list, ref,
		func(a *models.Appointment) string { return a.LocalID },
		func(a *models.Appointment) int64 { return a.ServerID })
}

func (s *appointmentService) owned(ctx context.Context, ref string) (*models.Appointment, error) {
	a, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if a.ServerID == 0 {
		return a, nil
	}
	me, err := owner(ctx, s.repos)
	if err != nil {
		return nil, err
	}
	if a.Owner.ID != me.ID {
		return nil, fmt.Errorf("%s: %w (%s)", ref, ErrNotOwner, a.Owner.Username)
	}
	return a, nil
}

func (s *appointmentService) Update(ctx context.Context, ref string, edit func(*protocol.AppointmentFields)) (*models.Appointment, error) {
	a, err := s.owned(ctx, ref)
	if err != nil {
		return nil, err
	}
	edit(&a.AppointmentFields)
	if err := ValidateAppointment(&a.AppointmentFields); err != nil {
		return nil, err
	}
	if err := s.repos.Appointments.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	return a, nil
}

func (s *appointmentService) Delete(ctx context.Context, ref string) error {
	a, err := s.owned(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.repos.Appointments.MarkDeleted(ctx, a.LocalID); err != nil {
		return fmt.Errorf("error deleting appointment: %w", err)
	}
	return nil
}
