// Package memory implements the record stores over in-process maps. It backs
// tests and deployments where the external record store is not configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/adnalow/next-level/internal/model"
	"github.com/adnalow/next-level/internal/store"
)

// Store holds all records behind a single mutex. Uniqueness of
// (job, applicant) application pairs is enforced on insert, mirroring the
// constraint the external store carries.
//
// Every write clones its key string first: handlers hand in request-scoped
// ids whose bytes fasthttp recycles, and assigning to a string map key
// rewrites the stored key.
type Store struct {
	mu         sync.RWMutex
	jobs       map[string]model.Job
	apps       map[string]model.Application
	appByPair  map[string]string // jobID+"/"+applicantID -> application ID
	badges     map[string]model.Badge
	badgeByJob map[string]string // jobID -> badge ID
	awards     map[string]model.UserBadge
}

func New() *Store {
	return &Store{
		jobs:       make(map[string]model.Job),
		apps:       make(map[string]model.Application),
		appByPair:  make(map[string]string),
		badges:     make(map[string]model.Badge),
		badgeByJob: make(map[string]string),
		awards:     make(map[string]model.UserBadge),
	}
}

// Stores returns the store bundle backed by this instance.
func (s *Store) Stores() store.Stores {
	return store.Stores{
		Jobs:         (*JobStore)(s),
		Applications: (*ApplicationStore)(s),
		Badges:       (*BadgeStore)(s),
		UserBadges:   (*UserBadgeStore)(s),
	}
}

func pairKey(jobID, applicantID string) string {
	return jobID + "/" + applicantID
}

// JobStore implements store.JobStore.
type JobStore Store

func (s *JobStore) Create(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[strings.Clone(job.ID)] = *job
	return nil
}

func (s *JobStore) Get(ctx context.Context, id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &job, nil
}

func (s *JobStore) UpdateStatus(ctx context.Context, id string, status model.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id = strings.Clone(id)
	job, ok := s.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	job.Status = status
	s.jobs[id] = job
	return nil
}

func (s *JobStore) ListByStatus(ctx context.Context, status model.JobStatus) ([]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Job
	for _, job := range s.jobs {
		if job.Status == status {
			out = append(out, job)
		}
	}
	sortJobs(out)
	return out, nil
}

func (s *JobStore) ListByPoster(ctx context.Context, posterID string) ([]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Job
	for _, job := range s.jobs {
		if job.PosterID == posterID {
			out = append(out, job)
		}
	}
	sortJobs(out)
	return out, nil
}

func sortJobs(jobs []model.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}

// ApplicationStore implements store.ApplicationStore.
type ApplicationStore Store

func (s *ApplicationStore) Create(ctx context.Context, app *model.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(app.JobID, app.ApplicantID)
	if _, exists := s.appByPair[key]; exists {
		return store.ErrDuplicate
	}
	s.apps[strings.Clone(app.ID)] = *app
	s.appByPair[key] = app.ID
	return nil
}

func (s *ApplicationStore) Get(ctx context.Context, id string) (*model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &app, nil
}

func (s *ApplicationStore) Update(ctx context.Context, app *model.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.Clone(app.ID)
	if _, ok := s.apps[id]; !ok {
		return store.ErrNotFound
	}
	s.apps[id] = *app
	return nil
}

func (s *ApplicationStore) ListByJob(ctx context.Context, jobID string) ([]model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Application
	for _, app := range s.apps {
		if app.JobID == jobID {
			out = append(out, app)
		}
	}
	sortApplications(out)
	return out, nil
}

func (s *ApplicationStore) ListByApplicant(ctx context.Context, applicantID string) ([]model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Application
	for _, app := range s.apps {
		if app.ApplicantID == applicantID {
			out = append(out, app)
		}
	}
	sortApplications(out)
	return out, nil
}

func sortApplications(apps []model.Application) {
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
}

// BadgeStore implements store.BadgeStore.
type BadgeStore Store

func (s *BadgeStore) Create(ctx context.Context, badge *model.Badge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.badgeByJob[badge.JobID]; exists {
		return store.ErrDuplicate
	}
	s.badges[strings.Clone(badge.ID)] = *badge
	s.badgeByJob[strings.Clone(badge.JobID)] = badge.ID
	return nil
}

func (s *BadgeStore) GetByJob(ctx context.Context, jobID string) (*model.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.badgeByJob[jobID]
	if !ok {
		return nil, store.ErrNotFound
	}
	badge := s.badges[id]
	return &badge, nil
}

func (s *BadgeStore) Get(ctx context.Context, id string) (*model.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	badge, ok := s.badges[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &badge, nil
}

func (s *BadgeStore) UpdateArt(ctx context.Context, id, title, description, svg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id = strings.Clone(id)
	badge, ok := s.badges[id]
	if !ok {
		return store.ErrNotFound
	}
	badge.Title = title
	badge.Description = description
	badge.SVG = svg
	s.badges[id] = badge
	return nil
}

// UserBadgeStore implements store.UserBadgeStore.
type UserBadgeStore Store

func (s *UserBadgeStore) Create(ctx context.Context, award *model.UserBadge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awards[strings.Clone(award.ID)] = *award
	return nil
}

func (s *UserBadgeStore) CountByBadge(ctx context.Context, badgeID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, award := range s.awards {
		if award.BadgeID == badgeID {
			count++
		}
	}
	return count, nil
}

func (s *UserBadgeStore) ListByUser(ctx context.Context, userID string) ([]model.UserBadge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.UserBadge
	for _, award := range s.awards {
		if award.UserID == userID {
			out = append(out, award)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AcquiredAt.After(out[j].AcquiredAt)
	})
	return out, nil
}
