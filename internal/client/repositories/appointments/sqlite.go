package appointments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/schedsync/internal/client/models"
	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/dbx"
)

const columns = `local_id, server_id, owner_id, owner_username, owner_color, title, appointment_date,
	start_time, duration_minutes, notes, recurrence_type, server_updated_at, dirty, deleted`

// SQLiteRepository implements Repository over a dbx.DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func serverIDArg(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Appointment, error) {
	var (
		a        models.Appointment
		serverID sql.NullInt64
		start    sql.NullString
		duration sql.NullInt64
		notes    sql.NullString
		recur    sql.NullString
	)
	err := row.Scan(&a.LocalID, &serverID, &a.Owner.ID, &a.Owner.Username, &a.Owner.ColorCode,
		&a.Title, &a.AppointmentDate, &start, &duration, &notes, &recur, &a.ServerUpdatedAt, &a.Dirty, &a.Deleted)
	if err != nil {
		return nil, err
	}
	a.ServerID = serverID.Int64
	if start.Valid {
		a.StartTime = &start.String
	}
	if duration.Valid {
		a.DurationMinutes = &duration.Int64
	}
	if notes.Valid {
		a.Notes = &notes.String
	}
	if recur.Valid {
		a.RecurrenceType = &recur.String
	}
	return &a, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select appointments: %w", err)
	}
	defer rows.Close()

	result := make([]models.Appointment, 0)
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointments: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) exec(ctx context.Context, what, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to %s appointment: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, a *models.Appointment) error {
	_, err := r.exec(ctx, "insert", `INSERT INTO appointments (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, 0)`,
		a.LocalID, serverIDArg(a.ServerID), a.Owner.ID, a.Owner.Username, a.Owner.ColorCode,
		a.Title, a.AppointmentDate, nullable(a.StartTime), nullable(a.DurationMinutes),
		nullable(a.Notes), nullable(a.RecurrenceType), a.ServerUpdatedAt)
	if err == nil {
		a.Dirty = true
	}
	return err
}

func (r *SQLiteRepository) Update(ctx context.Context, a *models.Appointment) error {
	n, err := r.exec(ctx, "update", `UPDATE appointments SET title = ?, appointment_date = ?, start_time = ?,
		duration_minutes = ?, notes = ?, recurrence_type = ?, dirty = 1
		WHERE local_id = ? AND deleted = 0`,
		a.Title, a.AppointmentDate, nullable(a.StartTime), nullable(a.DurationMinutes),
		nullable(a.Notes), nullable(a.RecurrenceType), a.LocalID)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	a.Dirty = true
	return nil
}

func (r *SQLiteRepository) GetByLocalID(ctx context.Context, localID string) (*models.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM appointments WHERE local_id = ? AND deleted = 0`, localID)
	a, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Appointment, error) {
	return r.query(ctx, `SELECT `+columns+` FROM appointments WHERE deleted = 0
		ORDER BY appointment_date, COALESCE(start_time, ''), title`)
}

func (r *SQLiteRepository) MarkDeleted(ctx context.Context, localID string) error {
	n, err := r.exec(ctx, "delete", `DELETE FROM appointments WHERE local_id = ? AND server_id IS NULL`, localID)
	if err != nil || n > 0 {
		return err
	}
	n, err = r.exec(ctx, "delete", `UPDATE appointments SET deleted = 1, dirty = 1 WHERE local_id = ? AND deleted = 0`, localID)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) Pending(ctx context.Context) ([]models.Appointment, error) {
	return r.query(ctx, `SELECT `+columns+` FROM appointments WHERE dirty = 1 ORDER BY rowid`)
}

func (r *SQLiteRepository) AssignServerID(ctx context.Context, localID string, serverID int64) error {
	_, err := r.exec(ctx, "remap", `UPDATE appointments SET server_id = ?, dirty = 0 WHERE local_id = ?`, serverID, localID)
	return err
}

func (r *SQLiteRepository) ClearDirty(ctx context.Context, localID string) error {
	_, err := r.exec(ctx, "update", `UPDATE appointments SET dirty = 0 WHERE local_id = ?`, localID)
	return err
}

func (r *SQLiteRepository) Purge(ctx context.Context, localID string) error {
	_, err := r.exec(ctx, "purge", `DELETE FROM appointments WHERE local_id = ?`, localID)
	return err
}

func (r *SQLiteRepository) UpsertFromServer(ctx context.Context, a *models.Appointment) error {
	_, err := r.exec(ctx, "upsert", `INSERT INTO appointments (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0)
		ON CONFLICT(server_id) DO UPDATE SET
			owner_id = excluded.owner_id,
			owner_username = excluded.owner_username,
			owner_color = excluded.owner_color,
			title = excluded.title,
			appointment_date = excluded.appointment_date,
			start_time = excluded.start_time,
			duration_minutes = excluded.duration_minutes,
			notes = excluded.notes,
			recurrence_type = excluded.recurrence_type,
			server_updated_at = excluded.server_updated_at
		WHERE appointments.dirty = 0`,
		a.LocalID, a.ServerID, a.Owner.ID, a.Owner.Username, a.Owner.ColorCode,
		a.Title, a.AppointmentDate, nullable(a.StartTime), nullable(a.DurationMinutes),
		nullable(a.Notes), nullable(a.RecurrenceType), a.ServerUpdatedAt)
	return err
}

func (r *SQLiteRepository) DeleteByServerID(ctx context.Context, serverID int64) error {
	_, err := r.exec(ctx, "delete", `DELETE FROM appointments WHERE server_id = ?`, serverID)
	return err
}
