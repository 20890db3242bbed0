package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/adnalow/next-level/internal/apperr"
	"github.com/adnalow/next-level/internal/badgeart"
	"github.com/adnalow/next-level/internal/model"
	"github.com/adnalow/next-level/internal/store"
)

const TaskTypeBadgeArt = "badge:art"

// BadgeArtTaskPayload is the queued request to replace a badge's fallback
// artwork with generated artwork.
type BadgeArtTaskPayload struct {
	BadgeID  string            `json:"badgeId"`
	JobID    string            `json:"jobId"`
	Metadata badgeart.Metadata `json:"metadata"`
}

// BadgeService is the badge issuer: it creates the per-job badge at posting
// time and records awards when apprenticeships complete.
type BadgeService struct {
	badges      store.BadgeStore
	awards      store.UserBadgeStore
	remote      *badgeart.RemoteGenerator
	inline      badgeart.Generator
	fallback    *badgeart.FallbackGenerator
	asynqClient *asynq.Client
	badgeLocks  *keyedMutex
}

func NewBadgeService(badges store.BadgeStore, awards store.UserBadgeStore, remote *badgeart.RemoteGenerator, asynqClient *asynq.Client) *BadgeService {
	s := &BadgeService{
		badges:      badges,
		awards:      awards,
		remote:      remote,
		fallback:    badgeart.NewFallbackGenerator(),
		asynqClient: asynqClient,
		badgeLocks:  newKeyedMutex(),
	}
	if remote != nil {
		// The inline path runs during job creation, so generation failures
		// must resolve to artwork rather than errors.
		s.inline = badgeart.WithFallback(remote)
	}
	return s
}

// CreateForJob creates the job's badge. The row is inserted immediately with
// the fixed fallback artwork so a badge always exists, then artwork
// generation is queued (or attempted inline when no queue is wired). Nothing
// on this path may block or fail job creation; errors are logged and
// swallowed by the caller.
func (s *BadgeService) CreateForJob(ctx context.Context, job *model.Job) (*model.Badge, error) {
	art, _ := s.fallback.Generate(ctx, metadataForJob(job))

	badge := &model.Badge{
		ID:          uuid.New().String(),
		JobID:       job.ID,
		Title:       art.Title,
		Description: art.Description,
		SVG:         art.SVG,
		Category:    job.Category,
		Location:    job.Location,
		CreatedAt:   time.Now(),
	}
	if err := s.badges.Create(ctx, badge); err != nil {
		return nil, fmt.Errorf("failed to create badge: %w", err)
	}

	s.requestArtwork(ctx, badge, metadataForJob(job))
	return badge, nil
}

// requestArtwork schedules generated artwork for a freshly created badge.
// Best-effort only: a full queue or unreachable generator leaves the
// fallback artwork in place.
func (s *BadgeService) requestArtwork(ctx context.Context, badge *model.Badge, meta badgeart.Metadata) {
	if s.asynqClient != nil {
		payload, err := json.Marshal(BadgeArtTaskPayload{
			BadgeID:  badge.ID,
			JobID:    badge.JobID,
			Metadata: meta,
		})
		if err != nil {
			log.Printf("Failed to marshal badge art task for badge %s: %v", badge.ID, err)
			return
		}
		task := asynq.NewTask(TaskTypeBadgeArt, payload)
		if _, err := s.asynqClient.Enqueue(task,
			asynq.Queue("badges"),
			asynq.MaxRetry(3),
			asynq.Retention(24*time.Hour),
		); err != nil {
			log.Printf("Failed to enqueue badge art task for badge %s: %v", badge.ID, err)
		}
		return
	}

	if s.remote == nil || !s.remote.IsConfigured() {
		return
	}
	art, err := s.inline.Generate(ctx, meta)
	if err != nil {
		// The inline generator falls back internally, so this is unexpected.
		log.Printf("Badge art generation failed for badge %s, keeping fallback: %v", badge.ID, err)
		return
	}
	if err := s.badges.UpdateArt(ctx, badge.ID, art.Title, art.Description, art.SVG); err != nil {
		log.Printf("Failed to store generated art for badge %s: %v", badge.ID, err)
	}
}

// Award records a completion award for the job's badge. The acquisition
// number is the count of prior awards for that badge plus one; the
// count-then-insert pair is serialized per badge within this process.
func (s *BadgeService) Award(ctx context.Context, userID, jobID string) (*model.UserBadge, error) {
	badge, err := s.badges.GetByJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "no badge exists for this job", err)
		}
		return nil, apperr.New(apperr.CodeInternal, "failed to look up badge", err)
	}

	unlock := s.badgeLocks.Lock(badge.ID)
	defer unlock()

	count, err := s.awards.CountByBadge(ctx, badge.ID)
	if err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to count prior awards", err)
	}

	award := &model.UserBadge{
		ID:                uuid.New().String(),
		UserID:            userID,
		BadgeID:           badge.ID,
		AcquisitionNumber: count + 1,
		AcquiredAt:        time.Now(),
	}
	if err := s.awards.Create(ctx, award); err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to record award", err)
	}
	return award, nil
}

// GetForJob returns the job's badge.
func (s *BadgeService) GetForJob(ctx context.Context, jobID string) (*model.Badge, error) {
	badge, err := s.badges.GetByJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "no badge exists for this job", err)
		}
		return nil, apperr.New(apperr.CodeInternal, "failed to look up badge", err)
	}
	return badge, nil
}

// ListForUser returns the user's earned badges with acquisition numbers.
func (s *BadgeService) ListForUser(ctx context.Context, userID string) ([]model.UserBadgeDetail, error) {
	awards, err := s.awards.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.New(apperr.CodeInternal, "failed to list awards", err)
	}
	details := make([]model.UserBadgeDetail, 0, len(awards))
	for _, award := range awards {
		badge, err := s.badges.Get(ctx, award.BadgeID)
		if err != nil {
			// A missing badge row means the award's badge was never
			// persisted; skip rather than fail the whole listing.
			log.Printf("Award %s references missing badge %s", award.ID, award.BadgeID)
			continue
		}
		details = append(details, model.UserBadgeDetail{Award: award, Badge: *badge})
	}
	return details, nil
}

// GenerateArtwork produces an artwork triple for arbitrary job metadata.
// Unparseable generator replies resolve to the fixed fallback; transport
// failures surface as upstream errors so the caller can decide.
func (s *BadgeService) GenerateArtwork(ctx context.Context, meta badgeart.Metadata) (*badgeart.Artwork, bool, error) {
	if s.remote == nil || !s.remote.IsConfigured() {
		art, _ := s.fallback.Generate(ctx, meta)
		return art, true, nil
	}

	art, err := s.remote.Generate(ctx, meta)
	if err == nil {
		return art, false, nil
	}
	if errors.Is(err, badgeart.ErrUnparseable) {
		art, _ := s.fallback.Generate(ctx, meta)
		return art, true, nil
	}
	return nil, false, apperr.New(apperr.CodeUpstream, "badge generator unreachable", err)
}

func metadataForJob(job *model.Job) badgeart.Metadata {
	return badgeart.Metadata{
		Title:       job.Title,
		Category:    string(job.Category),
		Description: job.Description,
		Skills:      job.Skills,
		Location:    job.Location,
	}
}
