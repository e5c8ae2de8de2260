package postgres

import (
	"context"
	"errors"
	"time"

	"go-hackathon-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type applicantRepo struct {
	db *pgxpool.Pool
}

// NewApplicantRepository creates a new applicant repository
func NewApplicantRepository(db *pgxpool.Pool) domain.ApplicantRepository {
	return &applicantRepo{db: db}
}

const applicantColumns = `
	id, auth_id, first_name, last_name, email, age, gender, nationality,
	country, city, university, degree, year_of_study, skills,
	status, invite_accept_deadline, created_at, updated_at, version`

func scanApplicant(row pgx.Row) (*domain.Applicant, error) {
	var a domain.Applicant
	err := row.Scan(
		&a.ID, &a.AuthID, &a.FirstName, &a.LastName, &a.Email, &a.Age,
		&a.Gender, &a.Nationality, &a.Country, &a.City, &a.University,
		&a.Degree, &a.YearOfStudy, &a.Skills,
		&a.Status, &a.InviteAcceptDeadline, &a.CreatedAt, &a.UpdatedAt, &a.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new applicant
func (r *applicantRepo) Create(ctx context.Context, a *domain.Applicant) error {
	query := `
		INSERT INTO applicants (
			id, auth_id, first_name, last_name, email, age, gender, nationality,
			country, city, university, degree, year_of_study, skills,
			status, invite_accept_deadline, created_at, updated_at, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	now := time.Now()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	a.Version = 1
	if a.Status == 0 {
		a.Status = domain.StatusApplied
	}

	_, err := r.db.Exec(ctx, query,
		a.ID, a.AuthID, a.FirstName, a.LastName, a.Email, a.Age,
		a.Gender, a.Nationality, a.Country, a.City, a.University,
		a.Degree, a.YearOfStudy, a.Skills,
		a.Status, a.InviteAcceptDeadline, a.CreatedAt, a.UpdatedAt, a.Version,
	)
	return err
}

// GetByID retrieves an applicant by ID
func (r *applicantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants WHERE id = $1`
	return scanApplicant(r.db.QueryRow(ctx, query, id))
}

// GetByAuthID retrieves an applicant by identity-provider subject
func (r *applicantRepo) GetByAuthID(ctx context.Context, authID string) (*domain.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants WHERE auth_id = $1`
	return scanApplicant(r.db.QueryRow(ctx, query, authID))
}

// ListByStatus retrieves applicants at a given lifecycle stage, oldest first
func (r *applicantRepo) ListByStatus(ctx context.Context, status domain.Status, limit, offset int) ([]domain.Applicant, error) {
	query := `
		SELECT ` + applicantColumns + `
		FROM applicants
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectApplicants(rows)
}

// FindEligibleForReview returns the oldest-K candidate pool for a reviewer.
// Review counts come from a live subquery against reviews so a cached or
// stale aggregate can never widen the pool.
func (r *applicantRepo) FindEligibleForReview(ctx context.Context, reviewerAuthID string, maxReviews, limit int) ([]domain.Applicant, error) {
	query := `
		SELECT
			a.id, a.auth_id, a.first_name, a.last_name, a.email, a.age, a.gender, a.nationality,
			a.country, a.city, a.university, a.degree, a.year_of_study, a.skills,
			a.status, a.invite_accept_deadline, a.created_at, a.updated_at, a.version
		FROM applicants a
		WHERE a.status = $1
		  AND (SELECT COUNT(*) FROM reviews rv WHERE rv.applicant_id = a.id) < $2
		  AND NOT EXISTS (
			SELECT 1 FROM reviews rv
			WHERE rv.applicant_id = a.id AND rv.created_by_auth_id = $3
		  )
		ORDER BY a.created_at ASC
		LIMIT $4`

	rows, err := r.db.Query(ctx, query, domain.StatusApplied, maxReviews, reviewerAuthID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectApplicants(rows)
}

// UpdateProfile updates the mutable profile fields of an applicant
func (r *applicantRepo) UpdateProfile(ctx context.Context, a *domain.Applicant) error {
	query := `
		UPDATE applicants SET
			first_name = $2, last_name = $3, email = $4, age = $5,
			gender = $6, nationality = $7, country = $8, city = $9,
			university = $10, degree = $11, year_of_study = $12, skills = $13,
			updated_at = $14
		WHERE id = $1`

	a.UpdatedAt = time.Now()
	result, err := r.db.Exec(ctx, query,
		a.ID, a.FirstName, a.LastName, a.Email, a.Age,
		a.Gender, a.Nationality, a.Country, a.City,
		a.University, a.Degree, a.YearOfStudy, a.Skills,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus applies the lifecycle compare-and-swap. The row only
// changes when version still matches; a miss on an existing row is a
// version conflict so the caller can tell races from missing rows.
func (r *applicantRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int64, status domain.Status, inviteDeadline *time.Time) error {
	query := `
		UPDATE applicants
		SET status = $3, invite_accept_deadline = $4, updated_at = $5, version = version + 1
		WHERE id = $1 AND version = $2`

	result, err := r.db.Exec(ctx, query, id, expectedVersion, status, inviteDeadline, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM applicants WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrVersionConflict
	}
	return nil
}

// Delete removes an applicant outright (pre-deadline withdrawal only)
func (r *applicantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM applicants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectApplicants(rows pgx.Rows) ([]domain.Applicant, error) {
	var applicants []domain.Applicant
	for rows.Next() {
		var a domain.Applicant
		if err := rows.Scan(
			&a.ID, &a.AuthID, &a.FirstName, &a.LastName, &a.Email, &a.Age,
			&a.Gender, &a.Nationality, &a.Country, &a.City, &a.University,
			&a.Degree, &a.YearOfStudy, &a.Skills,
			&a.Status, &a.InviteAcceptDeadline, &a.CreatedAt, &a.UpdatedAt, &a.Version,
		); err != nil {
			return nil, err
		}
		applicants = append(applicants, a)
	}
	return applicants, rows.Err()
}
