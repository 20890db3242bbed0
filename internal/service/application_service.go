package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/adnalow/next-level/internal/apperr"
	"github.com/adnalow/next-level/internal/auth"
	"github.com/adnalow/next-level/internal/model"
	"github.com/adnalow/next-level/internal/store"
)

const minMessageLength = 20

// ApplicationService owns the application state machine:
//
//	applied/pending --accept--> in_progress --complete--> completed
//	applied/pending --decline--> declined --undo--> (prior status)
//	in_progress --decline--> declined
//
// Accept and Complete are multi-write sequences against a store with no
// transactions; writes are applied in a fixed order and a mid-sequence
// failure surfaces as a PartialError, never a rollback. Every decision
// operation on the same job is serialized within this process.
type ApplicationService struct {
	apps     store.ApplicationStore
	jobs     store.JobStore
	badges   *BadgeService
	jobLocks *keyedMutex
}

func NewApplicationService(apps store.ApplicationStore, jobs store.JobStore, badges *BadgeService) *ApplicationService {
	return &ApplicationService{
		apps:     apps,
		jobs:     jobs,
		badges:   badges,
		jobLocks: newKeyedMutex(),
	}
}

// Submit creates an application in the applied state. All validation happens
// before any write; a (job, applicant) duplicate surfaces from the store's
// uniqueness constraint.
func (s *ApplicationService) Submit(ctx context.Context, actor auth.Actor, req *model.SubmitApplicationRequest) (*model.Application, error) {
	if len(req.Message) < minMessageLength {
		return nil, apperr.New(apperr.CodeValidation,
			fmt.Sprintf("cover letter must be at least %d characters", minMessageLength), nil)
	}
	if u, err := url.Parse(req.ResumeURL); err != nil || !u.IsAbs() || u.Host == "" {
		return nil, apperr.New(apperr.CodeValidation, "resume URL must be a well-formed absolute URL", nil)
	}

	job, err := s.getJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusOpen {
		return nil, apperr.New(apperr.CodeInvalidTransition, "job is no longer accepting applications", nil)
	}
	if job.PosterID == actor.UserID {
		return nil, apperr.New(apperr.CodeValidation, "you cannot apply to your own job", nil)
	}

	app := &model.Application{
		ID:          uuid.New().String(),
		JobID:       req.JobID,
		ApplicantID: actor.UserID,
		Message:     req.Message,
		ResumeURL:   req.ResumeURL,
		Status:      model.ApplicationStatusApplied,
		CreatedAt:   time.Now(),
	}
	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.New(apperr.CodeDuplicate, "you have already applied to this job", err)
		}
		return nil, apperr.New(apperr.CodeInternal, "failed to create application", err)
	}
	return app, nil
}

// Accept moves an application to in_progress and applies the cascade: every
// sibling application still in play is declined and the job is closed. The
// three writes happen in that order; if one fails the earlier ones stand and
// the caller gets a PartialError naming what committed.
func (s *ApplicationService) Accept(ctx context.Context, actor auth.Actor, applicationID string) (*model.Application, error) {
	app, job, err := s.getForPoster(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	unlock := s.jobLocks.Lock(job.ID)
	defer unlock()

	// Re-read under the lock: a concurrent accept on the same job may have
	// already moved this application or the job.
	app, err = s.get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	job, err = s.getJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	if !model.IsAwaitingDecision(app.Status) {
		return nil, apperr.New(apperr.CodeInvalidTransition,
			fmt.Sprintf("only an awaiting application can be accepted (current status %s)", app.Status), nil)
	}
	if job.Status == model.JobStatusCompleted {
		return nil, apperr.New(apperr.CodeInvalidTransition, "job is already completed", nil)
	}

	now := time.Now()
	app.Status = model.ApplicationStatusInProgress
	app.AcceptedAt = &now
	if err := s.apps.Update(ctx, app); err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to accept application", err)
	}
	completed := []string{"accept application"}

	siblings, err := s.apps.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, apperr.NewPartial("accept", completed, "list sibling applications", err)
	}
	for _, sibling := range siblings {
		if sibling.ID == app.ID {
			continue
		}
		switch model.NormalizeApplicationStatus(sibling.Status) {
		case model.ApplicationStatusDeclined, model.ApplicationStatusCompleted:
			// Declined needs no write; completed is terminal.
			continue
		}
		sibling.Status = model.ApplicationStatusDeclined
		if err := s.apps.Update(ctx, &sibling); err != nil {
			return nil, apperr.NewPartial("accept", completed,
				fmt.Sprintf("decline sibling application %s", sibling.ID), err)
		}
	}
	completed = append(completed, "decline sibling applications")

	if err := s.jobs.UpdateStatus(ctx, job.ID, model.JobStatusClosed); err != nil {
		return nil, apperr.NewPartial("accept", completed, "close job", err)
	}

	return app, nil
}

// Decline moves an application to declined. With allowUndo the response
// carries an undo token holding the prior status; redeeming it is the only
// backward transition in the machine and is bounded by the caller's UI
// session, not by this service.
func (s *ApplicationService) Decline(ctx context.Context, actor auth.Actor, applicationID string, allowUndo bool) (*model.DeclineApplicationResponse, error) {
	app, job, err := s.getForPoster(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	unlock := s.jobLocks.Lock(job.ID)
	defer unlock()

	app, err = s.get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !model.IsAwaitingDecision(app.Status) && app.Status != model.ApplicationStatusInProgress {
		return nil, apperr.New(apperr.CodeInvalidTransition,
			fmt.Sprintf("application cannot be declined from status %s", app.Status), nil)
	}

	previous := app.Status
	app.Status = model.ApplicationStatusDeclined
	if err := s.apps.Update(ctx, app); err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to decline application", err)
	}

	resp := &model.DeclineApplicationResponse{Application: app}
	if allowUndo {
		resp.Undo = &model.UndoToken{
			ApplicationID:  app.ID,
			PreviousStatus: previous,
		}
	}
	return resp, nil
}

// Undo restores a declined application to the exact status captured at
// decline time. No sibling or job state is touched.
func (s *ApplicationService) Undo(ctx context.Context, actor auth.Actor, applicationID string, previousStatus model.ApplicationStatus) (*model.Application, error) {
	switch model.NormalizeApplicationStatus(previousStatus) {
	case model.ApplicationStatusApplied, model.ApplicationStatusInProgress:
	default:
		return nil, apperr.New(apperr.CodeValidation,
			fmt.Sprintf("cannot restore an application to status %q", previousStatus), nil)
	}

	app, job, err := s.getForPoster(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	unlock := s.jobLocks.Lock(job.ID)
	defer unlock()

	app, err = s.get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != model.ApplicationStatusDeclined {
		return nil, apperr.New(apperr.CodeInvalidTransition, "only a declined application can be restored", nil)
	}

	app.Status = previousStatus
	if err := s.apps.Update(ctx, app); err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to restore application", err)
	}
	return app, nil
}

// Complete marks an in-progress apprenticeship finished and awards the job's
// badge. The status write commits first; a badge failure afterwards is
// reported in BadgeError and is the caller's to retry, the completion is not
// rolled back.
func (s *ApplicationService) Complete(ctx context.Context, actor auth.Actor, applicationID string) (*model.CompleteApplicationResponse, error) {
	app, job, err := s.getForPoster(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	unlock := s.jobLocks.Lock(job.ID)
	defer unlock()

	app, err = s.get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != model.ApplicationStatusInProgress {
		return nil, apperr.New(apperr.CodeInvalidTransition,
			fmt.Sprintf("only an in-progress application can be completed (current status %s)", app.Status), nil)
	}

	now := time.Now()
	app.Status = model.ApplicationStatusCompleted
	app.CompletedAt = &now
	if err := s.apps.Update(ctx, app); err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to complete application", err)
	}

	resp := &model.CompleteApplicationResponse{Application: app}
	award, err := s.badges.Award(ctx, app.ApplicantID, app.JobID)
	if err != nil {
		msg := apperr.MessageOf(err)
		resp.BadgeError = &msg
		return resp, nil
	}
	resp.Award = award
	return resp, nil
}

// Get returns an application visible to the actor: its applicant or the
// poster of its job.
func (s *ApplicationService) Get(ctx context.Context, actor auth.Actor, applicationID string) (*model.Application, error) {
	app, err := s.get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID == actor.UserID {
		return app, nil
	}
	job, err := s.getJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.PosterID != actor.UserID {
		return nil, apperr.New(apperr.CodeForbidden, "you are not a party to this application", nil)
	}
	return app, nil
}

// ListByJob returns a job's applications to its poster.
func (s *ApplicationService) ListByJob(ctx context.Context, actor auth.Actor, jobID string) ([]model.Application, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.PosterID != actor.UserID {
		return nil, apperr.New(apperr.CodeForbidden, "only the job poster may list its applications", nil)
	}
	apps, err := s.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to list applications", err)
	}
	return apps, nil
}

// ListByApplicant returns the actor's own applications.
func (s *ApplicationService) ListByApplicant(ctx context.Context, actor auth.Actor) ([]model.Application, error) {
	apps, err := s.apps.ListByApplicant(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to list applications", err)
	}
	return apps, nil
}

func (s *ApplicationService) get(ctx context.Context, applicationID string) (*model.Application, error) {
	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "application not found", err)
		}
		return nil, apperr.New(apperr.CodeInternal, "failed to load application", err)
	}
	app.Status = model.NormalizeApplicationStatus(app.Status)
	return app, nil
}

func (s *ApplicationService) getJob(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "job not found", err)
		}
		return nil, apperr.New(apperr.CodeInternal, "failed to load job", err)
	}
	return job, nil
}

// getForPoster loads an application and its job and checks the actor is the
// job's poster. Every decision operation goes through here before mutating.
func (s *ApplicationService) getForPoster(ctx context.Context, actor auth.Actor, applicationID string) (*model.Application, *model.Job, error) {
	app, err := s.get(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	job, err := s.getJob(ctx, app.JobID)
	if err != nil {
		return nil, nil, err
	}
	if job.PosterID != actor.UserID {
		return nil, nil, apperr.New(apperr.CodeForbidden, "only the job poster may decide on applications", nil)
	}
	return app, job, nil
}
