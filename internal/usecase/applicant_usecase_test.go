package usecase_test

import (
	"context"
	"errors"
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

type lifecycleFixture struct {
	appRepo  *MockApplicantRepo
	revRepo  *MockReviewRepo
	notifier *MockNotifier
	roles    *MockRoleGranter
	cfg      *config.Config
	uc       domain.ApplicantUsecase
}

func newLifecycleFixture(cfg *config.Config) *lifecycleFixture {
	f := &lifecycleFixture{
		appRepo:  new(MockApplicantRepo),
		revRepo:  new(MockReviewRepo),
		notifier: new(MockNotifier),
		roles:    new(MockRoleGranter),
		cfg:      cfg,
	}
	f.uc = usecase.NewApplicantUsecase(f.appRepo, f.revRepo, f.notifier, f.roles, cfg)
	return f
}

func validFields() map[string]any {
	return map[string]any{
		"firstName":   "Grace",
		"lastName":    "Hopper",
		"email":       "grace@example.com",
		"age":         24,
		"gender":      "Female",
		"nationality": "American",
		"country":     "USA",
		"city":        "Arlington",
		"university":  "Yale",
		"degree":      "PhD",
		"yearOfStudy": 3,
		"skills":      "Go, COBOL",
	}
}

func TestSubmitApplication(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{AuthID: "auth-1", Email: "grace@example.com", AuthLevel: domain.LevelHacker}

	t.Run("Should create an applicant in applied status", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		f.appRepo.On("GetByAuthID", mock.Anything, "auth-1").Return(nil, domain.ErrNotFound)
		f.appRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Applicant")).Return(nil).Run(func(args mock.Arguments) {
			a := args.Get(1).(*domain.Applicant)
			assert.Equal(t, domain.StatusApplied, a.Status)
			assert.Equal(t, "auth-1", *a.AuthID)
			assert.Equal(t, 24, a.Age)
		})

		app, err := f.uc.SubmitApplication(ctx, validFields(), actor)
		assert.NoError(t, err)
		assert.Equal(t, "Grace", app.FirstName)
	})

	t.Run("Should resolve the Other fallback fields", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		f.appRepo.On("GetByAuthID", mock.Anything, "auth-1").Return(nil, domain.ErrNotFound)
		f.appRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Applicant")).Return(nil)

		fields := validFields()
		fields["gender"] = "Other"
		fields["genderOther"] = "Nonbinary"
		delete(fields, "university")
		fields["universityOther"] = "Open University"

		app, err := f.uc.SubmitApplication(ctx, fields, actor)
		assert.NoError(t, err)
		assert.Equal(t, "Nonbinary", app.Gender)
		assert.Equal(t, "Open University", app.University)
	})

	t.Run("Should report the failing fields", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		f.appRepo.On("GetByAuthID", mock.Anything, "auth-1").Return(nil, domain.ErrNotFound)

		fields := validFields()
		delete(fields, "firstName")
		fields["age"] = "not a number"

		_, err := f.uc.SubmitApplication(ctx, fields, actor)
		assert.Error(t, err)

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.KindValidation, appErr.Kind)
		assert.ElementsMatch(t, []string{"firstName", "age"}, appErr.Fields)
		f.appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should reject a second application from the same identity", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		f.appRepo.On("GetByAuthID", mock.Anything, "auth-1").Return(newApplicant(domain.StatusApplied), nil)

		_, err := f.uc.SubmitApplication(ctx, validFields(), actor)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already applied")
	})

	t.Run("Should reject submissions after the deadline", func(t *testing.T) {
		cfg := testConfig()
		cfg.ApplicationDeadline = time.Now().Add(-time.Hour)
		f := newLifecycleFixture(cfg)

		_, err := f.uc.SubmitApplication(ctx, validFields(), actor)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "closed")
	})

	t.Run("Should reject anonymous callers", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		_, err := f.uc.SubmitApplication(ctx, validFields(), domain.Identity{})
		assert.Error(t, err)
	})
}

func TestTransitionInvite(t *testing.T) {
	ctx := context.Background()
	organiser := domain.Identity{AuthID: "org-1", AuthLevel: domain.LevelOrganiser}

	t.Run("Should invite a reviewed applicant and start the clock", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := newApplicant(domain.StatusReviewed)
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		f.appRepo.On("UpdateStatus", mock.Anything, app.ID, app.Version, domain.StatusInvited, mock.AnythingOfType("*time.Time")).Return(nil).Run(func(args mock.Arguments) {
			deadline := args.Get(4).(*time.Time)
			expected := time.Now().Add(5 * 24 * time.Hour)
			assert.WithinDuration(t, expected, *deadline, time.Minute)
		})
		f.notifier.On("Send", mock.AnythingOfType("*domain.Applicant"), domain.EmailInvite).Return(true)

		updated, err := f.uc.Transition(ctx, app.ID, domain.EventInvite, organiser)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusInvited, updated.Status)
		assert.NotNil(t, updated.InviteAcceptDeadline)
	})

	t.Run("Should keep the committed invite when the email fails", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := newApplicant(domain.StatusApplied)
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		f.appRepo.On("UpdateStatus", mock.Anything, app.ID, app.Version, domain.StatusInvited, mock.AnythingOfType("*time.Time")).Return(nil)
		f.notifier.On("Send", mock.AnythingOfType("*domain.Applicant"), domain.EmailInvite).Return(false)

		updated, err := f.uc.Transition(ctx, app.ID, domain.EventInvite, organiser)
		assert.Error(t, err)
		assert.NotNil(t, updated)
		assert.Equal(t, domain.StatusInvited, updated.Status)

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.KindExternal, appErr.Kind)
	})

	t.Run("Should refuse invites from non-organisers", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := newApplicant(domain.StatusReviewed)
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

		_, err := f.uc.Transition(ctx, app.ID, domain.EventInvite, domain.Identity{AuthID: "h", AuthLevel: domain.LevelHacker})
		assert.Error(t, err)
		f.appRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should refuse invites from terminal stages", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := newApplicant(domain.StatusRejected)
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

		_, err := f.uc.Transition(ctx, app.ID, domain.EventInvite, organiser)
		assert.Error(t, err)
	})
}

func TestTransitionConfirm(t *testing.T) {
	ctx := context.Background()

	invited := func(deadline time.Time) *domain.Applicant {
		app := newApplicant(domain.StatusInvited)
		app.InviteAcceptDeadline = &deadline
		return app
	}

	t.Run("Should confirm before the deadline for the invite owner", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := invited(time.Now().Add(24 * time.Hour))
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		f.appRepo.On("UpdateStatus", mock.Anything, app.ID, app.Version, domain.StatusConfirmed, (*time.Time)(nil)).Return(nil)
		f.notifier.On("Send", mock.AnythingOfType("*domain.Applicant"), domain.EmailConfirmed).Return(true)

		updated, err := f.uc.Transition(ctx, app.ID, domain.EventConfirm, domain.Identity{AuthID: *app.AuthID})
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, updated.Status)
		assert.Nil(t, updated.InviteAcceptDeadline)
	})

	t.Run("Should never change status for a non-owner", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := invited(time.Now().Add(24 * time.Hour))
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

		_, err := f.uc.Transition(ctx, app.ID, domain.EventConfirm, domain.Identity{AuthID: "someone-else"})
		assert.Error(t, err)
		f.appRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject an expired invite even for the owner", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := invited(time.Now().Add(-time.Hour))
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		f.appRepo.On("UpdateStatus", mock.Anything, app.ID, app.Version, domain.StatusRejected, (*time.Time)(nil)).Return(nil)

		updated, err := f.uc.Transition(ctx, app.ID, domain.EventConfirm, domain.Identity{AuthID: *app.AuthID})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
		assert.NotNil(t, updated)
		assert.Equal(t, domain.StatusRejected, updated.Status)
	})

	t.Run("Should expire before checking who is confirming", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := invited(time.Now().Add(-30 * 24 * time.Hour))
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		f.appRepo.On("UpdateStatus", mock.Anything, app.ID, app.Version, domain.StatusRejected, (*time.Time)(nil)).Return(nil)

		// Wrong identity, long-expired invite: the deadline outcome wins.
		updated, err := f.uc.Transition(ctx, app.ID, domain.EventConfirm, domain.Identity{AuthID: "someone-else"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
		assert.Equal(t, domain.StatusRejected, updated.Status)
	})

	t.Run("Should report already-decided invites", func(t *testing.T) {
		for _, status := range []domain.Status{domain.StatusConfirmed, domain.StatusAdmitted} {
			f := newLifecycleFixture(testConfig())
			app := newApplicant(status)
			f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

			_, err := f.uc.Transition(ctx, app.ID, domain.EventConfirm, domain.Identity{AuthID: *app.AuthID})
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "already decided")
			f.appRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})
}

func TestTransitionCheckin(t *testing.T) {
	ctx := context.Background()
	volunteer := domain.Identity{AuthID: "vol-1", AuthLevel: domain.LevelVolunteer}

	t.Run("Should admit a confirmed applicant and grant the role once", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := newApplicant(domain.StatusConfirmed)
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		f.appRepo.On("UpdateStatus", mock.Anything, app.ID, app.Version, domain.StatusAdmitted, (*time.Time)(nil)).Return(nil)
		f.roles.On("SetRole", mock.Anything, "attendee", *app.AuthID).Return(nil)

		updated, err := f.uc.Transition(ctx, app.ID, domain.EventCheckin, volunteer)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusAdmitted, updated.Status)
		f.roles.AssertNumberOfCalls(t, "SetRole", 1)
	})

	t.Run("Should fail closed from every other stage", func(t *testing.T) {
		for _, status := range []domain.Status{domain.StatusApplied, domain.StatusReviewed, domain.StatusInvited, domain.StatusRejected, domain.StatusAdmitted, domain.StatusCancelled} {
			f := newLifecycleFixture(testConfig())
			app := newApplicant(status)
			f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

			_, err := f.uc.Transition(ctx, app.ID, domain.EventCheckin, volunteer)
			assert.Error(t, err, "status %s must not be checkin-eligible", status)
			f.appRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.roles.AssertNotCalled(t, "SetRole", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("Should keep admission when role propagation fails", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := newApplicant(domain.StatusConfirmed)
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		f.appRepo.On("UpdateStatus", mock.Anything, app.ID, app.Version, domain.StatusAdmitted, (*time.Time)(nil)).Return(nil)
		f.roles.On("SetRole", mock.Anything, "attendee", *app.AuthID).Return(errors.New("provider down"))

		updated, err := f.uc.Transition(ctx, app.ID, domain.EventCheckin, volunteer)
		assert.Error(t, err)
		assert.NotNil(t, updated)
		assert.Equal(t, domain.StatusAdmitted, updated.Status)

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.KindExternal, appErr.Kind)
	})

	t.Run("Should refuse hackers at the checkin desk", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := newApplicant(domain.StatusConfirmed)
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

		_, err := f.uc.Transition(ctx, app.ID, domain.EventCheckin, domain.Identity{AuthID: "h", AuthLevel: domain.LevelHacker})
		assert.Error(t, err)
	})
}

func TestTransitionCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Should hard-delete while applications are open", func(t *testing.T) {
		f := newLifecycleFixture(testConfig()) // zero deadline: window open
		app := newApplicant(domain.StatusApplied)
		f.revRepo.On("DeleteByApplicant", mock.Anything, app.ID).Return(int64(0), nil)
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		f.appRepo.On("Delete", mock.Anything, app.ID).Return(nil)

		updated, err := f.uc.Transition(ctx, app.ID, domain.EventCancel, domain.Identity{AuthID: *app.AuthID})
		assert.NoError(t, err)
		assert.Nil(t, updated)
		f.appRepo.AssertCalled(t, "Delete", mock.Anything, app.ID)
	})

	t.Run("Should soft-cancel after applications close", func(t *testing.T) {
		cfg := testConfig()
		cfg.ApplicationDeadline = time.Now().Add(-time.Hour)
		f := newLifecycleFixture(cfg)
		app := newApplicant(domain.StatusReviewed)
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		f.appRepo.On("UpdateStatus", mock.Anything, app.ID, app.Version, domain.StatusCancelled, (*time.Time)(nil)).Return(nil)

		updated, err := f.uc.Transition(ctx, app.ID, domain.EventCancel, domain.Identity{AuthID: *app.AuthID})
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, updated.Status)
		f.appRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Should only let the owner withdraw", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := newApplicant(domain.StatusApplied)
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

		_, err := f.uc.Transition(ctx, app.ID, domain.EventCancel, domain.Identity{AuthID: "intruder"})
		assert.Error(t, err)
	})
}

func TestTransitionConcurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("Should surface a lost compare-and-swap as a conflict", func(t *testing.T) {
		f := newLifecycleFixture(testConfig())
		app := newApplicant(domain.StatusConfirmed)
		f.appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		f.appRepo.On("UpdateStatus", mock.Anything, app.ID, app.Version, domain.StatusAdmitted, (*time.Time)(nil)).Return(domain.ErrVersionConflict)

		_, err := f.uc.Transition(ctx, app.ID, domain.EventCheckin, domain.Identity{AuthID: "org", AuthLevel: domain.LevelOrganiser})
		assert.Error(t, err)

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.KindConflict, appErr.Kind)
		f.roles.AssertNotCalled(t, "SetRole", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetByID(t *testing.T) {
	f := newLifecycleFixture(testConfig())
	missing := uuid.New()
	f.appRepo.On("GetByID", mock.Anything, missing).Return(nil, domain.ErrNotFound)

	_, err := f.uc.GetByID(context.Background(), missing)
	assert.Error(t, err)

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindNotFound, appErr.Kind)
}
