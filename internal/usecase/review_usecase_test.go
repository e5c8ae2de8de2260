package usecase_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"go-hackathon-backend/config"
	"go-hackathon-backend/internal/domain"
	"go-hackathon-backend/internal/usecase"
	"go-hackathon-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		ReviewPoolSize:     7,
		ReviewThreshold:    2,
		InviteDeadlineDays: 5,
	}
}

func newApplicant(status domain.Status) *domain.Applicant {
	authID := uuid.NewString()
	return &domain.Applicant{
		ID:        uuid.New(),
		AuthID:    &authID,
		FirstName: "Ada",
		Email:     "ada@example.com",
		Status:    status,
		CreatedAt: time.Now().Add(-time.Hour),
		Version:   1,
	}
}

func TestSelectNextForReview(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return an applicant from the eligible pool", func(t *testing.T) {
		appRepo := new(MockApplicantRepo)
		revRepo := new(MockReviewRepo)
		uc := usecase.NewReviewUsecase(appRepo, revRepo, testConfig(), rand.New(rand.NewSource(1)))

		pool := []domain.Applicant{*newApplicant(domain.StatusApplied), *newApplicant(domain.StatusApplied), *newApplicant(domain.StatusApplied)}
		appRepo.On("FindEligibleForReview", mock.Anything, "reviewer-1", 2, 7).Return(pool, nil)

		picked, err := uc.SelectNextForReview(ctx, "reviewer-1", 0)
		assert.NoError(t, err)
		assert.NotNil(t, picked)

		inPool := false
		for _, a := range pool {
			if a.ID == picked.ID {
				inPool = true
			}
		}
		assert.True(t, inPool, "picked applicant must come from the pool")
	})

	t.Run("Should honor the caller-provided pool size", func(t *testing.T) {
		appRepo := new(MockApplicantRepo)
		revRepo := new(MockReviewRepo)
		uc := usecase.NewReviewUsecase(appRepo, revRepo, testConfig(), rand.New(rand.NewSource(1)))

		appRepo.On("FindEligibleForReview", mock.Anything, "reviewer-1", 2, 10).Return([]domain.Applicant{*newApplicant(domain.StatusApplied)}, nil)

		_, err := uc.SelectNextForReview(ctx, "reviewer-1", 10)
		assert.NoError(t, err)
		appRepo.AssertExpectations(t)
	})

	t.Run("Should be deterministic under the same seed", func(t *testing.T) {
		pool := []domain.Applicant{*newApplicant(domain.StatusApplied), *newApplicant(domain.StatusApplied), *newApplicant(domain.StatusApplied), *newApplicant(domain.StatusApplied)}

		pickSequence := func() []uuid.UUID {
			appRepo := new(MockApplicantRepo)
			revRepo := new(MockReviewRepo)
			uc := usecase.NewReviewUsecase(appRepo, revRepo, testConfig(), rand.New(rand.NewSource(42)))
			appRepo.On("FindEligibleForReview", mock.Anything, "r", 2, 7).Return(pool, nil)

			var ids []uuid.UUID
			for i := 0; i < 10; i++ {
				a, err := uc.SelectNextForReview(ctx, "r", 0)
				assert.NoError(t, err)
				ids = append(ids, a.ID)
			}
			return ids
		}

		assert.Equal(t, pickSequence(), pickSequence())
	})

	t.Run("Should return nil without error when no applicants remain", func(t *testing.T) {
		appRepo := new(MockApplicantRepo)
		revRepo := new(MockReviewRepo)
		uc := usecase.NewReviewUsecase(appRepo, revRepo, testConfig(), rand.New(rand.NewSource(1)))

		appRepo.On("FindEligibleForReview", mock.Anything, "reviewer-1", 2, 7).Return([]domain.Applicant{}, nil)

		picked, err := uc.SelectNextForReview(ctx, "reviewer-1", 0)
		assert.NoError(t, err)
		assert.Nil(t, picked)
	})

	t.Run("Should surface storage faults as errors, not as empty pool", func(t *testing.T) {
		appRepo := new(MockApplicantRepo)
		revRepo := new(MockReviewRepo)
		uc := usecase.NewReviewUsecase(appRepo, revRepo, testConfig(), rand.New(rand.NewSource(1)))

		appRepo.On("FindEligibleForReview", mock.Anything, "reviewer-1", 2, 7).Return(nil, errors.New("connection reset"))

		picked, err := uc.SelectNextForReview(ctx, "reviewer-1", 0)
		assert.Nil(t, picked)
		assert.Error(t, err)

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.KindStorage, appErr.Kind)
	})

	t.Run("Should reject an empty reviewer identity", func(t *testing.T) {
		uc := usecase.NewReviewUsecase(new(MockApplicantRepo), new(MockReviewRepo), testConfig(), rand.New(rand.NewSource(1)))
		_, err := uc.SelectNextForReview(ctx, "", 0)
		assert.Error(t, err)
	})
}

func TestSubmitReview(t *testing.T) {
	ctx := context.Background()

	t.Run("Should record the review and average the scores", func(t *testing.T) {
		appRepo := new(MockApplicantRepo)
		revRepo := new(MockReviewRepo)
		uc := usecase.NewReviewUsecase(appRepo, revRepo, testConfig(), rand.New(rand.NewSource(1)))

		app := newApplicant(domain.StatusApplied)
		appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		revRepo.On("ExistsByReviewerAndApplicant", mock.Anything, "reviewer-1", app.ID).Return(false, nil)
		revRepo.On("CountByApplicant", mock.Anything, app.ID).Return(0, nil)
		revRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

		review, err := uc.SubmitReview(ctx, "reviewer-1", app.ID, []float64{2, 3, 4})
		assert.NoError(t, err)
		assert.Equal(t, 3.0, review.AverageScore)
		assert.Equal(t, "reviewer-1", review.CreatedByAuthID)
		appRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should promote to reviewed when coverage is reached", func(t *testing.T) {
		appRepo := new(MockApplicantRepo)
		revRepo := new(MockReviewRepo)
		uc := usecase.NewReviewUsecase(appRepo, revRepo, testConfig(), rand.New(rand.NewSource(1)))

		app := newApplicant(domain.StatusApplied)
		appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		revRepo.On("ExistsByReviewerAndApplicant", mock.Anything, "reviewer-2", app.ID).Return(false, nil)
		revRepo.On("CountByApplicant", mock.Anything, app.ID).Return(1, nil)
		revRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)
		appRepo.On("UpdateStatus", mock.Anything, app.ID, app.Version, domain.StatusReviewed, (*time.Time)(nil)).Return(nil)

		_, err := uc.SubmitReview(ctx, "reviewer-2", app.ID, []float64{5})
		assert.NoError(t, err)
		appRepo.AssertExpectations(t)
	})

	t.Run("Should reject a duplicate reviewer-applicant pair", func(t *testing.T) {
		appRepo := new(MockApplicantRepo)
		revRepo := new(MockReviewRepo)
		uc := usecase.NewReviewUsecase(appRepo, revRepo, testConfig(), rand.New(rand.NewSource(1)))

		app := newApplicant(domain.StatusApplied)
		appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		revRepo.On("ExistsByReviewerAndApplicant", mock.Anything, "reviewer-1", app.ID).Return(true, nil)

		_, err := uc.SubmitReview(ctx, "reviewer-1", app.ID, []float64{4})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already reviewed")
		revRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should reject when coverage is already met", func(t *testing.T) {
		appRepo := new(MockApplicantRepo)
		revRepo := new(MockReviewRepo)
		uc := usecase.NewReviewUsecase(appRepo, revRepo, testConfig(), rand.New(rand.NewSource(1)))

		app := newApplicant(domain.StatusApplied)
		appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		revRepo.On("ExistsByReviewerAndApplicant", mock.Anything, "reviewer-3", app.ID).Return(false, nil)
		revRepo.On("CountByApplicant", mock.Anything, app.ID).Return(2, nil)

		_, err := uc.SubmitReview(ctx, "reviewer-3", app.ID, []float64{4})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "enough reviews")
		revRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should reject applicants not awaiting review", func(t *testing.T) {
		appRepo := new(MockApplicantRepo)
		revRepo := new(MockReviewRepo)
		uc := usecase.NewReviewUsecase(appRepo, revRepo, testConfig(), rand.New(rand.NewSource(1)))

		app := newApplicant(domain.StatusInvited)
		appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

		_, err := uc.SubmitReview(ctx, "reviewer-1", app.ID, []float64{4})
		assert.Error(t, err)
		revRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should reject out-of-range scores", func(t *testing.T) {
		uc := usecase.NewReviewUsecase(new(MockApplicantRepo), new(MockReviewRepo), testConfig(), rand.New(rand.NewSource(1)))
		_, err := uc.SubmitReview(ctx, "reviewer-1", uuid.New(), []float64{6})
		assert.Error(t, err)
		_, err = uc.SubmitReview(ctx, "reviewer-1", uuid.New(), nil)
		assert.Error(t, err)
	})
}

// TestTwoReviewerFlow walks the full assignment scenario: two
// reviewers cover the same applicant, after which the applicant stops
// being assigned.
func TestTwoReviewerFlow(t *testing.T) {
	ctx := context.Background()
	appRepo := new(MockApplicantRepo)
	revRepo := new(MockReviewRepo)
	uc := usecase.NewReviewUsecase(appRepo, revRepo, testConfig(), rand.New(rand.NewSource(7)))

	app := newApplicant(domain.StatusApplied)

	// R1 selects and reviews; applicant still has < 2 reviews afterwards.
	appRepo.On("FindEligibleForReview", mock.Anything, "r1", 2, 7).Return([]domain.Applicant{*app}, nil).Once()
	picked, err := uc.SelectNextForReview(ctx, "r1", 0)
	assert.NoError(t, err)
	assert.Equal(t, app.ID, picked.ID)

	appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
	revRepo.On("ExistsByReviewerAndApplicant", mock.Anything, "r1", app.ID).Return(false, nil).Once()
	revRepo.On("CountByApplicant", mock.Anything, app.ID).Return(0, nil).Once()
	revRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	_, err = uc.SubmitReview(ctx, "r1", app.ID, []float64{3})
	assert.NoError(t, err)

	// R2 may still get the applicant: one review exists and R2 has not
	// reviewed them.
	appRepo.On("FindEligibleForReview", mock.Anything, "r2", 2, 7).Return([]domain.Applicant{*app}, nil).Once()
	picked, err = uc.SelectNextForReview(ctx, "r2", 0)
	assert.NoError(t, err)
	assert.Equal(t, app.ID, picked.ID)

	revRepo.On("ExistsByReviewerAndApplicant", mock.Anything, "r2", app.ID).Return(false, nil).Once()
	revRepo.On("CountByApplicant", mock.Anything, app.ID).Return(1, nil).Once()
	appRepo.On("UpdateStatus", mock.Anything, app.ID, app.Version, domain.StatusReviewed, (*time.Time)(nil)).Return(nil).Once()

	_, err = uc.SubmitReview(ctx, "r2", app.ID, []float64{5})
	assert.NoError(t, err)

	// Coverage reached: the applicant no longer appears in any pool.
	appRepo.On("FindEligibleForReview", mock.Anything, "r3", 2, 7).Return([]domain.Applicant{}, nil).Once()
	picked, err = uc.SelectNextForReview(ctx, "r3", 0)
	assert.NoError(t, err)
	assert.Nil(t, picked)

	appRepo.AssertExpectations(t)
	revRepo.AssertExpectations(t)
}

func TestReviewerStats(t *testing.T) {
	appRepo := new(MockApplicantRepo)
	revRepo := new(MockReviewRepo)
	uc := usecase.NewReviewUsecase(appRepo, revRepo, testConfig(), rand.New(rand.NewSource(1)))

	revRepo.On("CountByReviewer", mock.Anything, "reviewer-1").Return(12, nil)

	stats, err := uc.ReviewerStats(context.Background(), "reviewer-1")
	assert.NoError(t, err)
	assert.Equal(t, 12, stats.ReviewCount)
}
