package usecase

import (
	"context"
	"errors"
	"time"

	"go-hackathon-backend/config"
	"go-hackathon-backend/internal/domain"
	"go-hackathon-backend/pkg/apperror"
	"go-hackathon-backend/pkg/logger"
	"go-hackathon-backend/pkg/validation"

	"github.com/google/uuid"
)

type applicantUsecase struct {
	applicantRepo domain.ApplicantRepository
	reviewRepo    domain.ReviewRepository
	notifier      domain.Notifier
	roles         domain.RoleGranter
	cfg           *config.Config
	now           func() time.Time
}

// NewApplicantUsecase creates the lifecycle usecase: submission plus
// the status transition engine.
func NewApplicantUsecase(
	applicantRepo domain.ApplicantRepository,
	reviewRepo domain.ReviewRepository,
	notifier domain.Notifier,
	roles domain.RoleGranter,
	cfg *config.Config,
) domain.ApplicantUsecase {
	return &applicantUsecase{
		applicantRepo: applicantRepo,
		reviewRepo:    reviewRepo,
		notifier:      notifier,
		roles:         roles,
		cfg:           cfg,
		now:           time.Now,
	}
}

// SubmitApplication validates the raw field map and creates the
// applicant record in StatusApplied.
func (uc *applicantUsecase) SubmitApplication(ctx context.Context, fields map[string]any, actor domain.Identity) (*domain.Applicant, error) {
	// 1. Caller must be a verified identity
	if actor.AuthID == "" {
		return nil, apperror.Unauthorized("You must be signed in to apply")
	}

	// 2. Submission window
	if uc.applicationsClosed() {
		return nil, apperror.Forbidden("Applications are closed")
	}

	// 3. One application per identity
	existing, err := uc.applicantRepo.GetByAuthID(ctx, actor.AuthID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Storage(err)
	}
	if existing != nil {
		return nil, apperror.Validation("You have already applied")
	}

	// 4. Field-table validation
	sub, failing := validation.ValidateSubmission(fields)
	if failing != nil {
		return nil, apperror.Validation(validation.FailingFieldsMessage(failing), failing...)
	}

	// 5. Create
	authID := actor.AuthID
	app := &domain.Applicant{
		AuthID:      &authID,
		FirstName:   sub.Strings["firstName"],
		LastName:    sub.Strings["lastName"],
		Email:       sub.Strings["email"],
		Age:         sub.Numbers["age"],
		Gender:      sub.Strings["gender"],
		Nationality: sub.Strings["nationality"],
		Country:     sub.Strings["country"],
		City:        sub.Strings["city"],
		University:  sub.Strings["university"],
		Degree:      sub.Strings["degree"],
		YearOfStudy: sub.Numbers["yearOfStudy"],
		Skills:      sub.Strings["skills"],
		Status:      domain.StatusApplied,
	}

	if err := uc.applicantRepo.Create(ctx, app); err != nil {
		return nil, apperror.Storage(err)
	}
	return app, nil
}

func (uc *applicantUsecase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Applicant, error) {
	return uc.getByID(ctx, id)
}

func (uc *applicantUsecase) GetByAuthID(ctx context.Context, authID string) (*domain.Applicant, error) {
	app, err := uc.applicantRepo.GetByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Applicant not found")
		}
		return nil, apperror.Storage(err)
	}
	return app, nil
}

func (uc *applicantUsecase) ListByStatus(ctx context.Context, status domain.Status, limit, offset int) ([]domain.Applicant, error) {
	if !status.Valid() {
		return nil, apperror.Validation("Unknown status")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	apps, err := uc.applicantRepo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return apps, nil
}

// UpdateProfile re-validates the field map and overwrites the mutable
// profile fields of the caller's own record.
func (uc *applicantUsecase) UpdateProfile(ctx context.Context, actor domain.Identity, fields map[string]any) (*domain.Applicant, error) {
	app, err := uc.applicantRepo.GetByAuthID(ctx, actor.AuthID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Applicant not found")
		}
		return nil, apperror.Storage(err)
	}
	if app.Status == domain.StatusCancelled {
		return nil, apperror.InvalidTransition("Withdrawn applications cannot be edited")
	}

	sub, failing := validation.ValidateSubmission(fields)
	if failing != nil {
		return nil, apperror.Validation(validation.FailingFieldsMessage(failing), failing...)
	}

	app.FirstName = sub.Strings["firstName"]
	app.LastName = sub.Strings["lastName"]
	app.Email = sub.Strings["email"]
	app.Age = sub.Numbers["age"]
	app.Gender = sub.Strings["gender"]
	app.Nationality = sub.Strings["nationality"]
	app.Country = sub.Strings["country"]
	app.City = sub.Strings["city"]
	app.University = sub.Strings["university"]
	app.Degree = sub.Strings["degree"]
	app.YearOfStudy = sub.Numbers["yearOfStudy"]
	app.Skills = sub.Strings["skills"]

	if err := uc.applicantRepo.UpdateProfile(ctx, app); err != nil {
		return nil, apperror.Storage(err)
	}
	return app, nil
}

// Transition drives the lifecycle state machine for one applicant.
func (uc *applicantUsecase) Transition(ctx context.Context, applicantID uuid.UUID, event domain.Event, actor domain.Identity) (*domain.Applicant, error) {
	app, err := uc.getByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	switch event {
	case domain.EventCancel:
		return uc.cancel(ctx, app, actor)
	case domain.EventInvite:
		return uc.invite(ctx, app, actor)
	case domain.EventReject:
		return uc.reject(ctx, app, actor)
	case domain.EventConfirm:
		return uc.confirm(ctx, app, actor)
	case domain.EventCheckin:
		return uc.checkin(ctx, app, actor)
	default:
		return nil, apperror.Validation("Unknown lifecycle event")
	}
}

// cancel withdraws the application. Before the applications-closed
// gate the record is removed outright so the applicant can re-apply;
// after the gate the record is kept and flipped to Cancelled.
func (uc *applicantUsecase) cancel(ctx context.Context, app *domain.Applicant, actor domain.Identity) (*domain.Applicant, error) {
	if app.AuthID == nil || actor.AuthID != *app.AuthID {
		return nil, apperror.Forbidden("You can only withdraw your own application")
	}
	if app.Status != domain.StatusApplied && app.Status != domain.StatusReviewed {
		return nil, apperror.InvalidTransition("Application can no longer be withdrawn")
	}

	if !uc.applicationsClosed() {
		// Reviews belong to the applicant row; remove them first so the
		// count index never sees orphans.
		if _, err := uc.reviewRepo.DeleteByApplicant(ctx, app.ID); err != nil {
			return nil, apperror.Storage(err)
		}
		if err := uc.applicantRepo.Delete(ctx, app.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, apperror.NotFound("Applicant not found")
			}
			return nil, apperror.Storage(err)
		}
		return nil, nil
	}

	return uc.applyStatus(ctx, app, domain.StatusCancelled, nil)
}

// invite moves a reviewed (or still applied) applicant to Invited and
// starts the acceptance clock.
func (uc *applicantUsecase) invite(ctx context.Context, app *domain.Applicant, actor domain.Identity) (*domain.Applicant, error) {
	if actor.AuthLevel != domain.LevelOrganiser {
		return nil, apperror.Forbidden("Only organisers can send invites")
	}
	if app.Status != domain.StatusApplied && app.Status != domain.StatusReviewed {
		return nil, apperror.InvalidTransition("Applicant cannot be invited from the current stage")
	}

	deadline := uc.now().Add(time.Duration(uc.cfg.InviteDeadlineDays) * 24 * time.Hour)
	updated, err := uc.applyStatus(ctx, app, domain.StatusInvited, &deadline)
	if err != nil {
		return nil, err
	}

	if !uc.notifier.Send(updated, domain.EmailInvite) {
		logger.Log.Error("Invite email failed", "applicant_id", updated.ID, "operation", "invite")
		return updated, apperror.External("invite email", nil)
	}
	return updated, nil
}

// reject declines an application.
func (uc *applicantUsecase) reject(ctx context.Context, app *domain.Applicant, actor domain.Identity) (*domain.Applicant, error) {
	if actor.AuthLevel != domain.LevelOrganiser {
		return nil, apperror.Forbidden("Only organisers can reject applications")
	}
	if app.Status != domain.StatusApplied && app.Status != domain.StatusReviewed {
		return nil, apperror.InvalidTransition("Applicant cannot be rejected from the current stage")
	}

	updated, err := uc.applyStatus(ctx, app, domain.StatusRejected, nil)
	if err != nil {
		return nil, err
	}

	if !uc.notifier.Send(updated, domain.EmailRejected) {
		logger.Log.Error("Rejection email failed", "applicant_id", updated.ID, "operation", "reject")
		return updated, apperror.External("rejection email", nil)
	}
	return updated, nil
}

// confirm accepts an invite. The deadline check runs before the
// identity check: an expired invite resolves to Rejected no matter who
// is confirming.
func (uc *applicantUsecase) confirm(ctx context.Context, app *domain.Applicant, actor domain.Identity) (*domain.Applicant, error) {
	if app.Status == domain.StatusCancelled {
		return nil, apperror.InvalidTransition("Application was withdrawn")
	}
	if app.Status >= domain.StatusConfirmed {
		return nil, apperror.InvalidTransition("Invite already decided")
	}
	if app.Status != domain.StatusInvited {
		return nil, apperror.InvalidTransition("No pending invite to confirm")
	}

	if app.InviteAcceptDeadline == nil || uc.now().After(*app.InviteAcceptDeadline) {
		updated, err := uc.applyStatus(ctx, app, domain.StatusRejected, nil)
		if err != nil {
			return nil, err
		}
		return updated, apperror.InvalidTransition("Invite expired")
	}

	if app.AuthID == nil || actor.AuthID != *app.AuthID {
		return nil, apperror.Forbidden("You can only confirm your own invite")
	}

	updated, err := uc.applyStatus(ctx, app, domain.StatusConfirmed, nil)
	if err != nil {
		return nil, err
	}

	if !uc.notifier.Send(updated, domain.EmailConfirmed) {
		logger.Log.Error("Confirmation email failed", "applicant_id", updated.ID, "operation", "confirm")
		return updated, apperror.External("confirmation email", nil)
	}
	return updated, nil
}

// checkin admits a confirmed applicant at the venue and propagates the
// attendee role to the identity provider. Checkin requires exactly
// StatusConfirmed; a second attempt fails closed.
func (uc *applicantUsecase) checkin(ctx context.Context, app *domain.Applicant, actor domain.Identity) (*domain.Applicant, error) {
	if actor.AuthLevel != domain.LevelVolunteer && actor.AuthLevel != domain.LevelOrganiser {
		return nil, apperror.Forbidden("Only volunteers and organisers can check applicants in")
	}
	if app.Status != domain.StatusConfirmed {
		return nil, apperror.InvalidTransition("Applicant is not eligible for checkin")
	}

	updated, err := uc.applyStatus(ctx, app, domain.StatusAdmitted, nil)
	if err != nil {
		return nil, err
	}

	if updated.AuthID != nil {
		if err := uc.roles.SetRole(ctx, "attendee", *updated.AuthID); err != nil {
			logger.Log.Error("Role propagation failed", "applicant_id", updated.ID, "operation", "checkin", "error", err)
			return updated, apperror.External("role propagation", err)
		}
	}
	return updated, nil
}

// applyStatus runs the compare-and-swap update and returns the record
// as committed. A version miss means another transition won the race.
func (uc *applicantUsecase) applyStatus(ctx context.Context, app *domain.Applicant, status domain.Status, deadline *time.Time) (*domain.Applicant, error) {
	err := uc.applicantRepo.UpdateStatus(ctx, app.ID, app.Version, status, deadline)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVersionConflict):
			return nil, apperror.Conflict("Applicant was updated concurrently. Please retry.")
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperror.NotFound("Applicant not found")
		default:
			return nil, apperror.Storage(err)
		}
	}

	updated := *app
	updated.Status = status
	updated.InviteAcceptDeadline = deadline
	updated.Version = app.Version + 1
	updated.UpdatedAt = uc.now()
	return &updated, nil
}

func (uc *applicantUsecase) getByID(ctx context.Context, id uuid.UUID) (*domain.Applicant, error) {
	app, err := uc.applicantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Applicant not found")
		}
		return nil, apperror.Storage(err)
	}
	return app, nil
}

func (uc *applicantUsecase) applicationsClosed() bool {
	return !uc.cfg.ApplicationDeadline.IsZero() && uc.now().After(uc.cfg.ApplicationDeadline)
}
