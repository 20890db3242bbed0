package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/adnalow/next-level/internal/apperr"
	"github.com/adnalow/next-level/internal/badgeart"
	"github.com/adnalow/next-level/internal/client"
	"github.com/adnalow/next-level/internal/config"
	"github.com/adnalow/next-level/internal/model"
	"github.com/adnalow/next-level/internal/store/memory"
)

func newBadgeService(t *testing.T) (*memory.Store, *BadgeService) {
	t.Helper()
	mem := memory.New()
	stores := mem.Stores()
	return mem, NewBadgeService(stores.Badges, stores.UserBadges, nil, nil)
}

func TestCreateForJob_FallbackArtwork(t *testing.T) {
	_, badges := newBadgeService(t)
	ctx := context.Background()

	job := &model.Job{
		ID:       "job-1",
		Title:    "Stack firewood",
		Category: model.CategoryLabor,
		Location: "Back lot",
	}
	badge, err := badges.CreateForJob(ctx, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if badge.SVG != badgeart.FallbackSVG {
		t.Error("expected fallback artwork on a fresh badge")
	}
	if badge.JobID != job.ID {
		t.Errorf("expected badge bound to job, got %q", badge.JobID)
	}

	got, err := badges.GetForJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != badge.ID {
		t.Errorf("expected the created badge, got %q", got.ID)
	}
}

func TestAward_SequentialNumbering(t *testing.T) {
	_, badges := newBadgeService(t)
	ctx := context.Background()

	if _, err := badges.CreateForJob(ctx, &model.Job{ID: "job-1", Category: model.CategoryOther}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i <= 3; i++ {
		award, err := badges.Award(ctx, fmt.Sprintf("user-%d", i), "job-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if award.AcquisitionNumber != i {
			t.Errorf("expected acquisition number %d, got %d", i, award.AcquisitionNumber)
		}
	}
}

func TestAward_ConcurrentNumbersAreDistinct(t *testing.T) {
	_, badges := newBadgeService(t)
	ctx := context.Background()

	if _, err := badges.CreateForJob(ctx, &model.Job{ID: "job-1", Category: model.CategoryOther}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	numbers := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			award, err := badges.Award(ctx, fmt.Sprintf("user-%d", i), "job-1")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			numbers <- award.AcquisitionNumber
		}(i)
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool)
	for num := range numbers {
		if seen[num] {
			t.Errorf("acquisition number %d handed out twice", num)
		}
		seen[num] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d distinct numbers, got %d", n, len(seen))
	}
}

func TestAward_NoBadgeForJob(t *testing.T) {
	_, badges := newBadgeService(t)

	_, err := badges.Award(context.Background(), "user-1", "job-without-badge")
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListForUser_SkipsAwardsWithMissingBadge(t *testing.T) {
	mem, badges := newBadgeService(t)
	ctx := context.Background()
	stores := mem.Stores()

	if _, err := badges.CreateForJob(ctx, &model.Job{ID: "job-1", Category: model.CategoryOther}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := badges.Award(ctx, "user-1", "job-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// An award pointing at a badge that was never persisted.
	orphan := &model.UserBadge{ID: "orphan", UserID: "user-1", BadgeID: "ghost", AcquisitionNumber: 1}
	if err := stores.UserBadges.Create(ctx, orphan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	details, err := badges.ListForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected the orphan award to be skipped, got %d entries", len(details))
	}
	if details[0].Badge.JobID != "job-1" {
		t.Errorf("unexpected badge in listing: %+v", details[0].Badge)
	}
}

type brokenGenerator struct{}

func (brokenGenerator) Generate(ctx context.Context, meta badgeart.Metadata) (*badgeart.Artwork, error) {
	return nil, fmt.Errorf("model unavailable")
}

func TestCreateForJob_InlineGenerationFailureKeepsArtwork(t *testing.T) {
	mem := memory.New()
	stores := mem.Stores()
	remote := badgeart.NewRemoteGenerator(client.NewGeneratorClient(&config.GeneratorConfig{
		APIKey:  "key",
		BaseURL: "http://127.0.0.1:0",
		Model:   "test",
	}))
	badges := NewBadgeService(stores.Badges, stores.UserBadges, remote, nil)
	badges.inline = badgeart.WithFallback(brokenGenerator{})

	badge, err := badges.CreateForJob(context.Background(), &model.Job{ID: "job-1", Category: model.CategoryLabor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if badge.SVG != badgeart.FallbackSVG {
		t.Error("expected fallback artwork on the fresh badge")
	}

	got, err := badges.GetForJob(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SVG != badgeart.FallbackSVG {
		t.Error("expected the badge to stay presentable after a generation failure")
	}
}

func TestGenerateArtwork_UnconfiguredUsesFallback(t *testing.T) {
	_, badges := newBadgeService(t)

	art, usedFallback, err := badges.GenerateArtwork(context.Background(), badgeart.Metadata{Title: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !usedFallback {
		t.Error("expected fallback flag")
	}
	if art.SVG != badgeart.FallbackSVG {
		t.Error("expected fallback artwork")
	}
}
