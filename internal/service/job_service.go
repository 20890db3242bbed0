package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/adnalow/next-level/internal/apperr"
	"github.com/adnalow/next-level/internal/auth"
	"github.com/adnalow/next-level/internal/model"
	"github.com/adnalow/next-level/internal/store"
)

// JobService owns job postings and their open/closed/completed transitions.
// Acceptance cascades live in ApplicationService, not here: closing a job as
// a side effect of accepting an applicant is part of the accept event.
type JobService struct {
	jobs   store.JobStore
	badges *BadgeService
}

func NewJobService(jobs store.JobStore, badges *BadgeService) *JobService {
	return &JobService{
		jobs:   jobs,
		badges: badges,
	}
}

// Create posts a new job and creates its badge. Badge creation is
// best-effort: a failure there is logged and the job stands.
func (s *JobService) Create(ctx context.Context, actor auth.Actor, req *model.CreateJobRequest) (*model.Job, error) {
	if !model.IsValidJobCategory(req.Category) {
		return nil, apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown category %q", req.Category), nil)
	}
	if req.DurationDays < model.MinDurationDays || req.DurationDays > model.MaxDurationDays {
		return nil, apperr.New(apperr.CodeValidation,
			fmt.Sprintf("duration must be between %d and %d days", model.MinDurationDays, model.MaxDurationDays), nil)
	}

	job := &model.Job{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Category:     req.Category,
		Description:  req.Description,
		Skills:       req.Skills,
		Location:     req.Location,
		DurationDays: req.DurationDays,
		Status:       model.JobStatusOpen,
		PosterID:     actor.UserID,
		CreatedAt:    time.Now(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to create job", err)
	}

	if s.badges != nil {
		if _, err := s.badges.CreateForJob(ctx, job); err != nil {
			log.Printf("Badge creation failed for job %s: %v", job.ID, err)
		}
	}
	return job, nil
}

// jobTransitions is the manual transition table. Acceptance-driven closing
// bypasses it (the cascade is owned by ApplicationService).
var jobTransitions = map[model.JobStatus][]model.JobStatus{
	model.JobStatusOpen:   {model.JobStatusClosed},
	model.JobStatusClosed: {model.JobStatusOpen, model.JobStatusCompleted},
}

func jobTransitionAllowed(from, to model.JobStatus) bool {
	for _, next := range jobTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SetStatus applies a manual status change by the poster. Allowed: open to
// closed, closed back to open, closed to completed. Completed is terminal.
func (s *JobService) SetStatus(ctx context.Context, actor auth.Actor, jobID string, status model.JobStatus) (*model.Job, error) {
	if !model.IsValidJobStatus(status) {
		return nil, apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown status %q", status), nil)
	}

	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.PosterID != actor.UserID {
		return nil, apperr.New(apperr.CodeForbidden, "only the job poster may change its status", nil)
	}
	if !jobTransitionAllowed(job.Status, status) {
		return nil, apperr.New(apperr.CodeInvalidTransition,
			fmt.Sprintf("job cannot move from %s to %s", job.Status, status), nil)
	}

	if err := s.jobs.UpdateStatus(ctx, jobID, status); err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to update job status", err)
	}
	job.Status = status
	return job, nil
}

// Get returns a job by ID.
func (s *JobService) Get(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "job not found", err)
		}
		return nil, apperr.New(apperr.CodeInternal, "failed to load job", err)
	}
	return job, nil
}

// ListOpen returns jobs currently accepting applications.
func (s *JobService) ListOpen(ctx context.Context) ([]model.Job, error) {
	return s.ListByStatus(ctx, model.JobStatusOpen)
}

// ListByStatus returns jobs in the given status.
func (s *JobService) ListByStatus(ctx context.Context, status model.JobStatus) ([]model.Job, error) {
	if !model.IsValidJobStatus(status) {
		return nil, apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown status %q", status), nil)
	}
	jobs, err := s.jobs.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to list jobs", err)
	}
	return jobs, nil
}

// ListByPoster returns the actor's own postings.
func (s *JobService) ListByPoster(ctx context.Context, actor auth.Actor) ([]model.Job, error) {
	jobs, err := s.jobs.ListByPoster(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to list jobs", err)
	}
	return jobs, nil
}
