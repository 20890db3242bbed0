package badgeart

import "context"

// Fallback artwork constants. The glyph is a simple circular medal with a
// fixed palette so every badge renders even when generation is unavailable.
const (
	FallbackTitle       = "Badge"
	FallbackDescription = "Badge for job completion."
	FallbackSVG         = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 120 120" width="120" height="120">` +
		`<circle cx="60" cy="60" r="54" fill="#1e293b" stroke="#f59e0b" stroke-width="6"/>` +
		`<circle cx="60" cy="60" r="40" fill="none" stroke="#fbbf24" stroke-width="3"/>` +
		`<path d="M60 34l7.6 15.4 17 2.5-12.3 12 2.9 16.9L60 72.8l-15.2 8 2.9-16.9-12.3-12 17-2.5z" fill="#fbbf24"/>` +
		`</svg>`
)

// FallbackGenerator returns the same fixed artwork for every job. It cannot
// fail.
type FallbackGenerator struct{}

func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

func (g *FallbackGenerator) Generate(ctx context.Context, meta Metadata) (*Artwork, error) {
	return &Artwork{
		Title:       FallbackTitle,
		Description: FallbackDescription,
		SVG:         FallbackSVG,
	}, nil
}
