package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Review is one reviewer's scored assessment of one applicant.
// Reviews are immutable after creation.
type Review struct {
	ID              uuid.UUID `json:"id"`
	ApplicantID     uuid.UUID `json:"applicant_id"`
	CreatedByAuthID string    `json:"created_by_auth_id"`
	AverageScore    float64   `json:"average_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// ReviewerStats is the live progress view for one reviewer.
type ReviewerStats struct {
	ReviewerAuthID string `json:"reviewer_auth_id"`
	ReviewCount    int    `json:"review_count"`
}

// ReviewRepository defines data access for reviews. Counts are always
// computed from the table so decisions never act on stale aggregates.
type ReviewRepository interface {
	Create(ctx context.Context, r *Review) error
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]Review, error)
	CountByApplicant(ctx context.Context, applicantID uuid.UUID) (int, error)
	CountByReviewer(ctx context.Context, reviewerAuthID string) (int, error)
	ExistsByReviewerAndApplicant(ctx context.Context, reviewerAuthID string, applicantID uuid.UUID) (bool, error)
	DeleteByApplicant(ctx context.Context, applicantID uuid.UUID) (int64, error)
}

// ReviewUsecase is the assignment side of the in-process API.
type ReviewUsecase interface {
	// SelectNextForReview picks the next applicant for the reviewer,
	// or (nil, nil) when no eligible applicant remains. An empty pool
	// is a normal outcome, not an error; storage faults are errors.
	SelectNextForReview(ctx context.Context, reviewerAuthID string, poolSize int) (*Applicant, error)

	// SubmitReview averages the sub-question scores, re-validates
	// eligibility against live data, records the review, and promotes
	// the applicant to StatusReviewed once coverage is reached.
	SubmitReview(ctx context.Context, reviewerAuthID string, applicantID uuid.UUID, scores []float64) (*Review, error)

	ReviewerStats(ctx context.Context, reviewerAuthID string) (*ReviewerStats, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]Review, error)
}
