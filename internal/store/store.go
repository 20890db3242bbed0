// Package store defines the record-store contracts the lifecycle managers
// depend on. The backing store is an external collaborator; implementations
// live in store/rest (HTTP record API) and store/memory (tests, unconfigured
// deployments). No transactional coupling between calls is assumed.
package store

import (
	"context"
	"errors"

	"github.com/adnalow/next-level/internal/model"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint, e.g. a second application for the same (job, applicant).
	ErrDuplicate = errors.New("duplicate record")
)

// JobStore persists job postings.
type JobStore interface {
	Create(ctx context.Context, job *model.Job) error
	Get(ctx context.Context, id string) (*model.Job, error)
	UpdateStatus(ctx context.Context, id string, status model.JobStatus) error
	ListByStatus(ctx context.Context, status model.JobStatus) ([]model.Job, error)
	ListByPoster(ctx context.Context, posterID string) ([]model.Job, error)
}

// ApplicationStore persists applications. Create must enforce one
// application per (job, applicant) pair and surface violations as
// ErrDuplicate.
type ApplicationStore interface {
	Create(ctx context.Context, app *model.Application) error
	Get(ctx context.Context, id string) (*model.Application, error)
	Update(ctx context.Context, app *model.Application) error
	ListByJob(ctx context.Context, jobID string) ([]model.Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]model.Application, error)
}

// BadgeStore persists per-job badges.
type BadgeStore interface {
	Create(ctx context.Context, badge *model.Badge) error
	GetByJob(ctx context.Context, jobID string) (*model.Badge, error)
	Get(ctx context.Context, id string) (*model.Badge, error)
	UpdateArt(ctx context.Context, id, title, description, svg string) error
}

// UserBadgeStore persists award records. Rows are append-only.
type UserBadgeStore interface {
	Create(ctx context.Context, award *model.UserBadge) error
	CountByBadge(ctx context.Context, badgeID string) (int, error)
	ListByUser(ctx context.Context, userID string) ([]model.UserBadge, error)
}

// Stores bundles the four record stores a deployment wires once.
type Stores struct {
	Jobs         JobStore
	Applications ApplicationStore
	Badges       BadgeStore
	UserBadges   UserBadgeStore
}
