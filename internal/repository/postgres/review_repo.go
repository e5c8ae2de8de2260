package postgres

import (
	"context"
	"time"

	"go-hackathon-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reviewRepo struct {
	db *pgxpool.Pool
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *pgxpool.Pool) domain.ReviewRepository {
	return &reviewRepo{db: db}
}

// Create inserts a review. Reviews are append-only; there is no update.
func (r *reviewRepo) Create(ctx context.Context, rev *domain.Review) error {
	query := `
		INSERT INTO reviews (id, applicant_id, created_by_auth_id, average_score, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if rev.ID == uuid.Nil {
		rev.ID = uuid.New()
	}
	rev.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, query,
		rev.ID, rev.ApplicantID, rev.CreatedByAuthID, rev.AverageScore, rev.CreatedAt,
	)
	return err
}

// ListByApplicant retrieves all reviews for one applicant, oldest first
func (r *reviewRepo) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.Review, error) {
	query := `
		SELECT id, applicant_id, created_by_auth_id, average_score, created_at
		FROM reviews
		WHERE applicant_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(&rev.ID, &rev.ApplicantID, &rev.CreatedByAuthID, &rev.AverageScore, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

// CountByApplicant counts reviews for an applicant at call time
func (r *reviewRepo) CountByApplicant(ctx context.Context, applicantID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE applicant_id = $1`, applicantID).Scan(&count)
	return count, err
}

// CountByReviewer counts reviews authored by a reviewer at call time
func (r *reviewRepo) CountByReviewer(ctx context.Context, reviewerAuthID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE created_by_auth_id = $1`, reviewerAuthID).Scan(&count)
	return count, err
}

// ExistsByReviewerAndApplicant checks for an existing reviewer-applicant pair
func (r *reviewRepo) ExistsByReviewerAndApplicant(ctx context.Context, reviewerAuthID string, applicantID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE created_by_auth_id = $1 AND applicant_id = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, reviewerAuthID, applicantID).Scan(&exists)
	return exists, err
}

// DeleteByApplicant removes all reviews of an applicant, returning how
// many were removed. Used only by the pre-deadline withdrawal path.
func (r *reviewRepo) DeleteByApplicant(ctx context.Context, applicantID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE applicant_id = $1`, applicantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
