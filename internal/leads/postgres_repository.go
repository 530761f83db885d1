package leads

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// likeEscaper makes search terms match literally under LIKE's default escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// leadsDB is the subset of pgxpool used by PostgresRepository.
type leadsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const leadColumns = `id, name, email, phone, service_type, insurance_provider, preferred_contact,
	message, source, utm_campaign, utm_medium, utm_source, urgent, status, notes, created_at, updated_at`

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db leadsDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db leadsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := newLead(uuid.New().String(), req, time.Time{})
	query := `
		INSERT INTO leads (id, name, email, phone, service_type, insurance_provider, preferred_contact,
			message, source, utm_campaign, utm_medium, utm_source, urgent, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.ServiceType,
		lead.InsuranceProvider,
		lead.PreferredContact,
		lead.Message,
		lead.Source,
		lead.UTMCampaign,
		lead.UTMMedium,
		lead.UTMSource,
		lead.Urgent,
		string(lead.Status),
	).Scan(&lead.CreatedAt, &lead.UpdatedAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return lead, nil
}

// GetByID fetches a single lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns matching leads, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+likeEscaper.Replace(term)+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(name ILIKE $"+n+" OR email ILIKE $"+n+" OR phone LIKE $"+n+")")
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

// Update applies an admin status/notes edit.
func (r *PostgresRepository) Update(ctx context.Context, id string, req *UpdateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		updates []string
		args    []any
	)
	argNum := 1
	if req.Status != nil {
		updates = append(updates, "status = $"+strconv.Itoa(argNum))
		args = append(args, string(*req.Status))
		argNum++
	}
	if req.Notes != nil {
		updates = append(updates, "notes = $"+strconv.Itoa(argNum))
		args = append(args, *req.Notes)
		argNum++
	}
	updates = append(updates, "updated_at = NOW()")
	args = append(args, id)

	query := `UPDATE leads SET ` + strings.Join(updates, ", ") +
		` WHERE id = $` + strconv.Itoa(argNum) + ` RETURNING ` + leadColumns
	lead, err := scanLead(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: update failed: %w", err)
	}
	return lead, nil
}

// Metrics counts leads per dashboard bucket in a single query.
func (r *PostgresRepository) Metrics(ctx context.Context) (Metrics, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'new'),
			COUNT(*) FILTER (WHERE status = 'contacted'),
			COUNT(*) FILTER (WHERE status = 'scheduled'),
			COUNT(*) FILTER (WHERE urgent)
		FROM leads
	`
	var total, newCount, contacted, scheduled, urgent int64
	if err := r.db.QueryRow(ctx, query).Scan(&total, &newCount, &contacted, &scheduled, &urgent); err != nil {
		return Metrics{}, fmt.Errorf("leads: metrics failed: %w", err)
	}
	return Metrics{
		Total:     int(total),
		New:       int(newCount),
		Contacted: int(contacted),
		Scheduled: int(scheduled),
		Urgent:    int(urgent),
	}, nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		lead   Lead
		status string
	)
	if err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.ServiceType,
		&lead.InsuranceProvider,
		&lead.PreferredContact,
		&lead.Message,
		&lead.Source,
		&lead.UTMCampaign,
		&lead.UTMMedium,
		&lead.UTMSource,
		&lead.Urgent,
		&status,
		&lead.Notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	lead.Status = Status(status)
	return &lead, nil
}
