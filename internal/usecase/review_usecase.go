package usecase

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"go-hackathon-backend/config"
	"go-hackathon-backend/internal/domain"
	"go-hackathon-backend/pkg/apperror"
	"go-hackathon-backend/pkg/logger"

	"github.com/google/uuid"
)

type reviewUsecase struct {
	applicantRepo domain.ApplicantRepository
	reviewRepo    domain.ReviewRepository
	cfg           *config.Config

	mu  sync.Mutex
	rng *rand.Rand
}

// NewReviewUsecase creates the assignment usecase. The random source
// is injected so selection is deterministic under a seeded source.
func NewReviewUsecase(
	applicantRepo domain.ApplicantRepository,
	reviewRepo domain.ReviewRepository,
	cfg *config.Config,
	rng *rand.Rand,
) domain.ReviewUsecase {
	return &reviewUsecase{
		applicantRepo: applicantRepo,
		reviewRepo:    reviewRepo,
		cfg:           cfg,
		rng:           rng,
	}
}

// SelectNextForReview picks one applicant for the reviewer: the oldest
// K eligible applicants form the pool and one is chosen uniformly at
// random. Random-within-oldest-K spreads concurrent reviewers across
// the longest-waiting applicants instead of having every idle reviewer
// contend on the single oldest one.
func (uc *reviewUsecase) SelectNextForReview(ctx context.Context, reviewerAuthID string, poolSize int) (*domain.Applicant, error) {
	if reviewerAuthID == "" {
		return nil, apperror.Unauthorized("Reviewer identity required")
	}
	if poolSize <= 0 {
		poolSize = uc.cfg.ReviewPoolSize
	}

	pool, err := uc.applicantRepo.FindEligibleForReview(ctx, reviewerAuthID, uc.cfg.ReviewThreshold, poolSize)
	if err != nil {
		// A storage fault must surface as a retryable error, never as
		// "no applicants left".
		return nil, apperror.Storage(err)
	}
	if len(pool) == 0 {
		return nil, nil
	}

	uc.mu.Lock()
	idx := uc.rng.Intn(len(pool))
	uc.mu.Unlock()

	return &pool[idx], nil
}

// SubmitReview records a review. Eligibility is re-checked against
// live data here, not just at selection time, so a stale candidate
// pool can never produce a duplicate reviewer-applicant pair or push
// an applicant past the coverage threshold.
func (uc *reviewUsecase) SubmitReview(ctx context.Context, reviewerAuthID string, applicantID uuid.UUID, scores []float64) (*domain.Review, error) {
	// 1. Basic input validation
	if reviewerAuthID == "" {
		return nil, apperror.Unauthorized("Reviewer identity required")
	}
	if len(scores) == 0 {
		return nil, apperror.Validation("At least one score is required", "scores")
	}
	for _, s := range scores {
		if s < 0 || s > 5 {
			return nil, apperror.Validation("Scores must be between 0 and 5", "scores")
		}
	}

	// 2. Applicant must still be awaiting review
	app, err := uc.applicantRepo.GetByID(ctx, applicantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Applicant not found")
		}
		return nil, apperror.Storage(err)
	}
	if app.Status != domain.StatusApplied {
		return nil, apperror.InvalidTransition("Applicant is not awaiting review")
	}

	// 3. No duplicate reviewer-applicant pair
	exists, err := uc.reviewRepo.ExistsByReviewerAndApplicant(ctx, reviewerAuthID, applicantID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if exists {
		return nil, apperror.InvalidTransition("You have already reviewed this applicant")
	}

	// 4. Coverage re-check against the live count
	count, err := uc.reviewRepo.CountByApplicant(ctx, applicantID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if count >= uc.cfg.ReviewThreshold {
		return nil, apperror.InvalidTransition("Applicant already has enough reviews")
	}

	// 5. Record the review with the caller-side average
	var sum float64
	for _, s := range scores {
		sum += s
	}
	review := &domain.Review{
		ApplicantID:     applicantID,
		CreatedByAuthID: reviewerAuthID,
		AverageScore:    sum / float64(len(scores)),
	}
	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, apperror.Storage(err)
	}

	// 6. Promote once coverage is reached. The review itself is already
	// committed; a lost promotion race just means someone else promoted.
	if count+1 >= uc.cfg.ReviewThreshold {
		uc.promote(ctx, app)
	}

	return review, nil
}

// promote moves the applicant to StatusReviewed via compare-and-swap,
// retrying once on a version race.
func (uc *reviewUsecase) promote(ctx context.Context, app *domain.Applicant) {
	err := uc.applicantRepo.UpdateStatus(ctx, app.ID, app.Version, domain.StatusReviewed, nil)
	if errors.Is(err, domain.ErrVersionConflict) {
		fresh, ferr := uc.applicantRepo.GetByID(ctx, app.ID)
		if ferr != nil || fresh.Status != domain.StatusApplied {
			return
		}
		err = uc.applicantRepo.UpdateStatus(ctx, fresh.ID, fresh.Version, domain.StatusReviewed, nil)
	}
	if err != nil && !errors.Is(err, domain.ErrVersionConflict) {
		logger.Log.Error("Promotion to reviewed failed", "applicant_id", app.ID, "error", err)
	}
}

func (uc *reviewUsecase) ReviewerStats(ctx context.Context, reviewerAuthID string) (*domain.ReviewerStats, error) {
	count, err := uc.reviewRepo.CountByReviewer(ctx, reviewerAuthID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return &domain.ReviewerStats{
		ReviewerAuthID: reviewerAuthID,
		ReviewCount:    count,
	}, nil
}

func (uc *reviewUsecase) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.Review, error) {
	reviews, err := uc.reviewRepo.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return reviews, nil
}
