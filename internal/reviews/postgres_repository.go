package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reviewsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const reviewColumns = `id, patient_name, rating, review_text, service_type, treatment_date, verified, approved, created_at`

// PostgresRepository stores reviews in Postgres.
type PostgresRepository struct {
	db reviewsDB
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("reviews: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db reviewsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, req *SubmitRequest) (*Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	review := &Review{
		ID:            uuid.New().String(),
		PatientName:   req.PatientName,
		Rating:        req.Rating,
		ReviewText:    req.ReviewText,
		ServiceType:   req.ServiceType,
		TreatmentDate: req.TreatmentDate,
	}
	query := `
		INSERT INTO reviews (id, patient_name, rating, review_text, service_type, treatment_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		review.ID, review.PatientName, review.Rating, review.ReviewText, review.ServiceType, review.TreatmentDate,
	).Scan(&review.CreatedAt); err != nil {
		return nil, fmt.Errorf("reviews: insert failed: %w", err)
	}
	return review, nil
}

func (r *PostgresRepository) List(ctx context.Context, approvedOnly bool) ([]*Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews`
	if approvedOnly {
		query += ` WHERE approved`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reviews: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("reviews: scan failed: %w", err)
		}
		out = append(out, review)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Approve(ctx context.Context, id string) (*Review, error) {
	query := `UPDATE reviews SET approved = TRUE WHERE id = $1 RETURNING ` + reviewColumns
	review, err := scanReview(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reviews: approve failed: %w", err)
	}
	return review, nil
}

func scanReview(row pgx.Row) (*Review, error) {
	var review Review
	if err := row.Scan(
		&review.ID,
		&review.PatientName,
		&review.Rating,
		&review.ReviewText,
		&review.ServiceType,
		&review.TreatmentDate,
		&review.Verified,
		&review.Approved,
		&review.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &review, nil
}
