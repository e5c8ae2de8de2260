package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrVersionConflict = errors.New("record was modified concurrently")
)

// Event is a lifecycle trigger handled by the transition engine.
type Event string

const (
	EventCancel  Event = "cancel"
	EventInvite  Event = "invite"
	EventReject  Event = "reject"
	EventConfirm Event = "confirm"
	EventCheckin Event = "checkin"
)

// Identity is the caller as resolved by the external identity provider.
// Usecases only ever see this projection, never tokens or sessions.
type Identity struct {
	AuthID    string
	Email     string
	AuthLevel string
}

// Auth levels granted by the identity provider.
const (
	LevelHacker    = "hacker"
	LevelVolunteer = "volunteer"
	LevelReviewer  = "reviewer"
	LevelOrganiser = "organiser"
)

// Applicant is a person applying to the hackathon. Status is part of
// the record itself and is the single source of truth for the stage.
type Applicant struct {
	ID          uuid.UUID `json:"id"`
	AuthID      *string   `json:"auth_id,omitempty"` // identity-provider subject, unique when present
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Age         int       `json:"age"`
	Gender      string    `json:"gender"`
	Nationality string    `json:"nationality"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	University  string    `json:"university"`
	Degree      string    `json:"degree"`
	YearOfStudy int       `json:"year_of_study"`
	Skills      string    `json:"skills"`

	Status               Status     `json:"status"`
	InviteAcceptDeadline *time.Time `json:"invite_accept_deadline,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	// Version backs the compare-and-swap on status updates so that
	// concurrent transitions on the same applicant serialize.
	Version int64 `json:"-"`
}

// ApplicantRepository defines data access for applicants.
type ApplicantRepository interface {
	Create(ctx context.Context, a *Applicant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Applicant, error)
	GetByAuthID(ctx context.Context, authID string) (*Applicant, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]Applicant, error)

	// FindEligibleForReview returns the oldest applicants, submission
	// time ascending, that are in StatusApplied, have fewer than
	// maxReviews reviews, and have no review by reviewerAuthID. The
	// review counts are derived from the reviews table at query time.
	FindEligibleForReview(ctx context.Context, reviewerAuthID string, maxReviews, limit int) ([]Applicant, error)

	UpdateProfile(ctx context.Context, a *Applicant) error

	// UpdateStatus applies a compare-and-swap: the row is updated only
	// if its version still equals expectedVersion. A stale version
	// yields ErrVersionConflict, a missing row ErrNotFound.
	UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int64, status Status, inviteDeadline *time.Time) error

	Delete(ctx context.Context, id uuid.UUID) error
}

// ApplicantUsecase is the lifecycle side of the in-process API:
// submission plus the status transition engine.
type ApplicantUsecase interface {
	SubmitApplication(ctx context.Context, fields map[string]any, actor Identity) (*Applicant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Applicant, error)
	GetByAuthID(ctx context.Context, authID string) (*Applicant, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]Applicant, error)
	UpdateProfile(ctx context.Context, actor Identity, fields map[string]any) (*Applicant, error)

	// Transition drives the state machine. It may return both a
	// non-nil applicant and a non-nil error when the state change
	// committed but an external side effect (email, role grant)
	// failed; such errors carry the external-dependency kind.
	Transition(ctx context.Context, applicantID uuid.UUID, event Event, actor Identity) (*Applicant, error)
}

// EmailKind selects the notification template.
type EmailKind string

const (
	EmailInvite    EmailKind = "invite"
	EmailRejected  EmailKind = "rejected"
	EmailConfirmed EmailKind = "confirmed"
	EmailDetails   EmailKind = "details"
)

// Notifier dispatches lifecycle emails. Failures are reported by the
// boolean; they never affect an already committed transition.
type Notifier interface {
	Send(a *Applicant, kind EmailKind) bool
}

// RoleGranter propagates a role to the external identity system.
type RoleGranter interface {
	SetRole(ctx context.Context, role string, externalID string) error
}
