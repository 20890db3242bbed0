package rest

import (
	"context"
	"net/url"
	"time"

	"github.com/adnalow/next-level/internal/model"
	"github.com/adnalow/next-level/internal/store"
)

const (
	tableJobs         = "jobs"
	tableApplications = "applications"
	tableBadges       = "badges"
	tableUserBadges   = "user_badges"
)

// Row types mirror the record API's snake_case column contract.

type jobRow struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Skills       []string  `json:"skills"`
	Location     string    `json:"location"`
	DurationDays int       `json:"duration_days"`
	Status       string    `json:"status"`
	PosterID     string    `json:"poster_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func toJobRow(j *model.Job) jobRow {
	return jobRow{
		ID:           j.ID,
		Title:        j.Title,
		Category:     string(j.Category),
		Description:  j.Description,
		Skills:       j.Skills,
		Location:     j.Location,
		DurationDays: j.DurationDays,
		Status:       string(j.Status),
		PosterID:     j.PosterID,
		CreatedAt:    j.CreatedAt,
	}
}

func (r jobRow) toModel() model.Job {
	return model.Job{
		ID:           r.ID,
		Title:        r.Title,
		Category:     model.JobCategory(r.Category),
		Description:  r.Description,
		Skills:       r.Skills,
		Location:     r.Location,
		DurationDays: r.DurationDays,
		Status:       model.JobStatus(r.Status),
		PosterID:     r.PosterID,
		CreatedAt:    r.CreatedAt,
	}
}

type applicationRow struct {
	ID          string     `json:"id"`
	JobID       string     `json:"job_id"`
	ApplicantID string     `json:"applicant_id"`
	Message     string     `json:"message"`
	ResumeURL   string     `json:"resume_url"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func toApplicationRow(a *model.Application) applicationRow {
	return applicationRow{
		ID:          a.ID,
		JobID:       a.JobID,
		ApplicantID: a.ApplicantID,
		Message:     a.Message,
		ResumeURL:   a.ResumeURL,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
		AcceptedAt:  a.AcceptedAt,
		CompletedAt: a.CompletedAt,
	}
}

func (r applicationRow) toModel() model.Application {
	return model.Application{
		ID:          r.ID,
		JobID:       r.JobID,
		ApplicantID: r.ApplicantID,
		Message:     r.Message,
		ResumeURL:   r.ResumeURL,
		// Stored rows may still carry the legacy "pending" spelling.
		Status:      model.NormalizeApplicationStatus(model.ApplicationStatus(r.Status)),
		CreatedAt:   r.CreatedAt,
		AcceptedAt:  r.AcceptedAt,
		CompletedAt: r.CompletedAt,
	}
}

type badgeRow struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SVG         string    `json:"svg"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}

func toBadgeRow(b *model.Badge) badgeRow {
	return badgeRow{
		ID:          b.ID,
		JobID:       b.JobID,
		Title:       b.Title,
		Description: b.Description,
		SVG:         b.SVG,
		Category:    string(b.Category),
		Location:    b.Location,
		CreatedAt:   b.CreatedAt,
	}
}

func (r badgeRow) toModel() model.Badge {
	return model.Badge{
		ID:          r.ID,
		JobID:       r.JobID,
		Title:       r.Title,
		Description: r.Description,
		SVG:         r.SVG,
		Category:    model.JobCategory(r.Category),
		Location:    r.Location,
		CreatedAt:   r.CreatedAt,
	}
}

type userBadgeRow struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	BadgeID           string    `json:"badge_id"`
	AcquisitionNumber int       `json:"acquisition_number"`
	AcquiredAt        time.Time `json:"acquired_at"`
}

func toUserBadgeRow(a *model.UserBadge) userBadgeRow {
	return userBadgeRow{
		ID:                a.ID,
		UserID:            a.UserID,
		BadgeID:           a.BadgeID,
		AcquisitionNumber: a.AcquisitionNumber,
		AcquiredAt:        a.AcquiredAt,
	}
}

func (r userBadgeRow) toModel() model.UserBadge {
	return model.UserBadge{
		ID:                r.ID,
		UserID:            r.UserID,
		BadgeID:           r.BadgeID,
		AcquisitionNumber: r.AcquisitionNumber,
		AcquiredAt:        r.AcquiredAt,
	}
}

// JobStore implements store.JobStore over the record API.
type JobStore struct {
	client *Client
}

func (s *JobStore) Create(ctx context.Context, job *model.Job) error {
	return s.client.insert(ctx, tableJobs, toJobRow(job), nil)
}

func (s *JobStore) Get(ctx context.Context, id string) (*model.Job, error) {
	q := url.Values{"id": {eq(id)}}
	var rows []jobRow
	if err := s.client.selectInto(ctx, tableJobs, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	job := rows[0].toModel()
	return &job, nil
}

func (s *JobStore) UpdateStatus(ctx context.Context, id string, status model.JobStatus) error {
	q := url.Values{"id": {eq(id)}}
	return s.client.update(ctx, tableJobs, q, map[string]string{"status": string(status)})
}

func (s *JobStore) ListByStatus(ctx context.Context, status model.JobStatus) ([]model.Job, error) {
	q := url.Values{"status": {eq(string(status))}, "order": {"created_at.desc"}}
	return s.list(ctx, q)
}

func (s *JobStore) ListByPoster(ctx context.Context, posterID string) ([]model.Job, error) {
	q := url.Values{"poster_id": {eq(posterID)}, "order": {"created_at.desc"}}
	return s.list(ctx, q)
}

func (s *JobStore) list(ctx context.Context, q url.Values) ([]model.Job, error) {
	var rows []jobRow
	if err := s.client.selectInto(ctx, tableJobs, q, &rows); err != nil {
		return nil, err
	}
	jobs := make([]model.Job, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, r.toModel())
	}
	return jobs, nil
}

// ApplicationStore implements store.ApplicationStore over the record API.
// The (job_id, applicant_id) uniqueness constraint lives in the store; a
// violating insert comes back as 409 and maps onto store.ErrDuplicate.
type ApplicationStore struct {
	client *Client
}

func (s *ApplicationStore) Create(ctx context.Context, app *model.Application) error {
	return s.client.insert(ctx, tableApplications, toApplicationRow(app), nil)
}

func (s *ApplicationStore) Get(ctx context.Context, id string) (*model.Application, error) {
	q := url.Values{"id": {eq(id)}}
	var rows []applicationRow
	if err := s.client.selectInto(ctx, tableApplications, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	app := rows[0].toModel()
	return &app, nil
}

func (s *ApplicationStore) Update(ctx context.Context, app *model.Application) error {
	q := url.Values{"id": {eq(app.ID)}}
	patch := map[string]interface{}{
		"status":       string(app.Status),
		"accepted_at":  app.AcceptedAt,
		"completed_at": app.CompletedAt,
	}
	return s.client.update(ctx, tableApplications, q, patch)
}

func (s *ApplicationStore) ListByJob(ctx context.Context, jobID string) ([]model.Application, error) {
	q := url.Values{"job_id": {eq(jobID)}, "order": {"created_at.desc"}}
	return s.list(ctx, q)
}

func (s *ApplicationStore) ListByApplicant(ctx context.Context, applicantID string) ([]model.Application, error) {
	q := url.Values{"applicant_id": {eq(applicantID)}, "order": {"created_at.desc"}}
	return s.list(ctx, q)
}

func (s *ApplicationStore) list(ctx context.Context, q url.Values) ([]model.Application, error) {
	var rows []applicationRow
	if err := s.client.selectInto(ctx, tableApplications, q, &rows); err != nil {
		return nil, err
	}
	apps := make([]model.Application, 0, len(rows))
	for _, r := range rows {
		apps = append(apps, r.toModel())
	}
	return apps, nil
}

// BadgeStore implements store.BadgeStore over the record API.
type BadgeStore struct {
	client *Client
}

func (s *BadgeStore) Create(ctx context.Context, badge *model.Badge) error {
	return s.client.insert(ctx, tableBadges, toBadgeRow(badge), nil)
}

func (s *BadgeStore) GetByJob(ctx context.Context, jobID string) (*model.Badge, error) {
	q := url.Values{"job_id": {eq(jobID)}}
	return s.getOne(ctx, q)
}

func (s *BadgeStore) Get(ctx context.Context, id string) (*model.Badge, error) {
	q := url.Values{"id": {eq(id)}}
	return s.getOne(ctx, q)
}

func (s *BadgeStore) getOne(ctx context.Context, q url.Values) (*model.Badge, error) {
	var rows []badgeRow
	if err := s.client.selectInto(ctx, tableBadges, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	badge := rows[0].toModel()
	return &badge, nil
}

func (s *BadgeStore) UpdateArt(ctx context.Context, id, title, description, svg string) error {
	q := url.Values{"id": {eq(id)}}
	patch := map[string]string{
		"title":       title,
		"description": description,
		"svg":         svg,
	}
	return s.client.update(ctx, tableBadges, q, patch)
}

// UserBadgeStore implements store.UserBadgeStore over the record API.
type UserBadgeStore struct {
	client *Client
}

func (s *UserBadgeStore) Create(ctx context.Context, award *model.UserBadge) error {
	return s.client.insert(ctx, tableUserBadges, toUserBadgeRow(award), nil)
}

func (s *UserBadgeStore) CountByBadge(ctx context.Context, badgeID string) (int, error) {
	q := url.Values{"badge_id": {eq(badgeID)}}
	return s.client.count(ctx, tableUserBadges, q)
}

func (s *UserBadgeStore) ListByUser(ctx context.Context, userID string) ([]model.UserBadge, error) {
	q := url.Values{"user_id": {eq(userID)}, "order": {"acquired_at.desc"}}
	var rows []userBadgeRow
	if err := s.client.selectInto(ctx, tableUserBadges, q, &rows); err != nil {
		return nil, err
	}
	awards := make([]model.UserBadge, 0, len(rows))
	for _, r := range rows {
		awards = append(awards, r.toModel())
	}
	return awards, nil
}
