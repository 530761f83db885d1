package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfman30/telepsych-site/internal/scheduling"
)

const uniqueViolation = "23505"

type appointmentsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores appointments in Postgres. A partial unique index
// on (appointment_date, appointment_time) for booked rows prevents double booking.
type PostgresRepository struct {
	db appointmentsDB
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db appointmentsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Book(ctx context.Context, req scheduling.BookingRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	appt := fromRequest(uuid.NewString(), req, time.Time{})
	query := `
		INSERT INTO appointments (id, full_name, email, phone, service_type, notes, appointment_date, appointment_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		appt.ID, appt.FullName, appt.Email, appt.Phone, appt.ServiceType, appt.Notes, appt.Date, appt.Time, appt.Status,
	).Scan(&appt.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}
	return appt, nil
}

func (r *PostgresRepository) BookedTimes(ctx context.Context, date string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT appointment_time FROM appointments WHERE appointment_date = $1 AND status = $2 ORDER BY appointment_time`,
		date, StatusBooked)
	if err != nil {
		return nil, fmt.Errorf("appointments: booked times failed: %w", err)
	}
	times, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("appointments: booked times failed: %w", err)
	}
	return times, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*Appointment, error) {
	query := `
		SELECT id, full_name, email, phone, service_type, notes, appointment_date, appointment_time, status, created_at
		FROM appointments
		ORDER BY appointment_date, appointment_time
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Appointment, 0)
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.FullName, &a.Email, &a.Phone, &a.ServiceType, &a.Notes,
			&a.Date, &a.Time, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	return out, nil
}
