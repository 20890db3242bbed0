package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/adnalow/next-level/internal/badgeart"
	"github.com/adnalow/next-level/internal/service"
	"github.com/adnalow/next-level/internal/store"
	ws "github.com/adnalow/next-level/internal/websocket"
)

// BadgeArtWorker replaces a badge's fallback artwork with generated artwork.
// Badges are created with the fallback before this runs, so every failure
// mode here still leaves a renderable badge behind.
type BadgeArtWorker struct {
	remote *badgeart.RemoteGenerator
	badges store.BadgeStore
	hub    *ws.Hub
}

// NewBadgeArtWorker creates a new badge art worker
func NewBadgeArtWorker(remote *badgeart.RemoteGenerator, badges store.BadgeStore, hub *ws.Hub) *BadgeArtWorker {
	return &BadgeArtWorker{
		remote: remote,
		badges: badges,
		hub:    hub,
	}
}

// ProcessTask handles badge art task processing
func (w *BadgeArtWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload service.BadgeArtTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal badge art payload: %w", err)
	}

	log.Printf("Generating artwork for badge %s", payload.BadgeID)

	if w.remote == nil || !w.remote.IsConfigured() {
		log.Printf("Generator not configured, badge %s keeps fallback artwork", payload.BadgeID)
		return nil
	}

	art, err := w.remote.Generate(ctx, payload.Metadata)
	if err != nil {
		// A reply that arrived but cannot be parsed will not improve on
		// retry; keep the fallback. Transport failures are retried.
		if errors.Is(err, badgeart.ErrUnparseable) {
			log.Printf("Unparseable artwork for badge %s, keeping fallback: %v", payload.BadgeID, err)
			return nil
		}
		return fmt.Errorf("artwork generation for badge %s: %w", payload.BadgeID, err)
	}

	if err := w.badges.UpdateArt(ctx, payload.BadgeID, art.Title, art.Description, art.SVG); err != nil {
		return fmt.Errorf("failed to store artwork for badge %s: %w", payload.BadgeID, err)
	}

	if w.hub != nil {
		w.hub.BroadcastJobEvent(ws.JobEvent{
			Type:    ws.EventBadgeArtReady,
			JobID:   payload.JobID,
			BadgeID: payload.BadgeID,
		})
	}
	return nil
}
