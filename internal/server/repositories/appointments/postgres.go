package appointments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/dbx"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Appointment) (int64, error) {
	query := `
		INSERT INTO appointments (user_id, title, appointment_date, start_time, duration_minutes, notes, recurrence_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, server_updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.UserID, a.Title, a.AppointmentDate, a.StartTime, a.DurationMinutes, a.Notes, a.RecurrenceType,
	).Scan(&a.ID, &a.ServerUpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return a.ID, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Appointment) (bool, error) {
	query := `
		UPDATE appointments
		SET title = $1, appointment_date = $2, start_time = $3, duration_minutes = $4,
			notes = $5, recurrence_type = $6, server_updated_at = now()
		WHERE id = $7 AND user_id = $8
	`
	res, err := r.db.ExecContext(ctx, query,
		a.Title, a.AppointmentDate, a.StartTime, a.DurationMinutes, a.Notes, a.RecurrenceType, a.ID, a.UserID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	query := `
		DELETE FROM appointments
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

const selectWithOwner = `
		SELECT a.id, a.user_id, a.title, a.appointment_date::text, a.start_time, a.duration_minutes,
			a.notes, a.recurrence_type, a.server_updated_at, u.username, u.color_code
		FROM appointments a
		JOIN users u ON u.id = a.user_id
`

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Appointment, error) {
	query := selectWithOwner + `		WHERE a.id = $1
	`
	a, err := scanAppointment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) SelectUpdatedSince(ctx context.Context, since time.Time) ([]*models.Appointment, error) {
	query := selectWithOwner + `		WHERE a.server_updated_at > $1
		ORDER BY a.server_updated_at, a.id
	`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(s scanner) (*models.Appointment, error) {
	a := &models.Appointment{Owner: &models.Account{}}
	var (
		startTime, notes, recurrence sql.NullString
		duration                     sql.NullInt64
	)
	err := s.Scan(&a.ID, &a.UserID, &a.Title, &a.AppointmentDate, &startTime, &duration,
		&notes, &recurrence, &a.ServerUpdatedAt, &a.Owner.Username, &a.Owner.ColorCode)
	if err != nil {
		return nil, err
	}
	a.Owner.ID = a.UserID
	a.StartTime = nullString(startTime)
	a.Notes = nullString(notes)
	a.RecurrenceType = nullString(recurrence)
	if duration.Valid {
		d := duration.Int64
		a.DurationMinutes = &d
	}
	return a, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
