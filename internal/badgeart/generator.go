// Package badgeart produces badge artwork for completed jobs. Generation is
// a capability interface with two implementations: a remote model-backed
// generator and a deterministic fallback. WithFallback composes them so the
// rest of the system never sees a generation failure.
package badgeart

import (
	"context"
	"errors"
)

// Metadata is the job information the artwork is derived from.
type Metadata struct {
	Title       string
	Category    string
	Description string
	Skills      []string
	Location    string
}

// Artwork is the title/description/vector-graphic triple attached to a badge.
type Artwork struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SVG         string `json:"svg"`
}

// ErrUnparseable marks generator replies that came back but could not be
// turned into an artwork triple. Callers distinguish it from transport
// errors: parse failures are final, transport failures may be retried.
var ErrUnparseable = errors.New("unparseable generator reply")

// Generator produces badge artwork from job metadata.
type Generator interface {
	Generate(ctx context.Context, meta Metadata) (*Artwork, error)
}

// withFallback delegates to the primary generator and substitutes the fixed
// fallback artwork on any error.
type withFallback struct {
	primary  Generator
	fallback *FallbackGenerator
}

// WithFallback wraps g so Generate never returns an error.
func WithFallback(g Generator) Generator {
	return &withFallback{primary: g, fallback: NewFallbackGenerator()}
}

func (w *withFallback) Generate(ctx context.Context, meta Metadata) (*Artwork, error) {
	if w.primary != nil {
		if art, err := w.primary.Generate(ctx, meta); err == nil {
			return art, nil
		}
	}
	return w.fallback.Generate(ctx, meta)
}
