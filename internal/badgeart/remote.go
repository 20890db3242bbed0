package badgeart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adnalow/next-level/internal/client"
)

// RemoteGenerator asks the generation model for an artwork triple. Replies
// may arrive wrapped in code fences or surrounded by prose; both are
// stripped before parsing.
type RemoteGenerator struct {
	generatorClient *client.GeneratorClient
}

func NewRemoteGenerator(generatorClient *client.GeneratorClient) *RemoteGenerator {
	return &RemoteGenerator{
		generatorClient: generatorClient,
	}
}

func (g *RemoteGenerator) Generate(ctx context.Context, meta Metadata) (*Artwork, error) {
	if g.generatorClient == nil || !g.generatorClient.IsConfigured() {
		return nil, fmt.Errorf("generator not configured")
	}

	response, err := g.generatorClient.ChatCompletion(ctx, systemPrompt, buildPrompt(meta))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	art, err := parseArtworkResponse(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return art, nil
}

// IsConfigured reports whether remote generation is available at all.
func (g *RemoteGenerator) IsConfigured() bool {
	return g.generatorClient != nil && g.generatorClient.IsConfigured()
}

const systemPrompt = `You are a designer of achievement badges for a micro-apprenticeship platform.
Given job details, design a small commemorative badge.
Always output your response as valid JSON in the exact format requested.
Do not include any text outside the JSON structure.`

func buildPrompt(meta Metadata) string {
	skills := strings.Join(meta.Skills, ", ")
	if skills == "" {
		skills = "general"
	}

	return fmt.Sprintf(`Design a completion badge for this job:
Title: %s
Category: %s
Location: %s
Skills: %s
Description: %s

The badge needs a short celebratory title (max 6 words), a one-sentence
description of the achievement, and a self-contained SVG drawing sized
120x120 with a circular medal motif referencing the category.

Output as JSON: {"title": "...", "description": "...", "svg": "<svg ...>...</svg>"}`,
		meta.Title, meta.Category, meta.Location, skills, meta.Description)
}

func parseArtworkResponse(response string) (*Artwork, error) {
	response = stripCodeFences(response)
	response = extractJSON(response)

	var art Artwork
	if err := json.Unmarshal([]byte(response), &art); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	if art.SVG == "" || !strings.Contains(art.SVG, "<svg") {
		return nil, fmt.Errorf("no svg markup in response")
	}
	if art.Title == "" {
		art.Title = FallbackTitle
	}
	if art.Description == "" {
		art.Description = FallbackDescription
	}
	return &art, nil
}

// stripCodeFences removes a wrapping ```json ... ``` block if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:] // drop the language tag line
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// extractJSON attempts to extract JSON from a response that may contain extra text
func extractJSON(s string) string {
	// Find the first { and last }
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")

	if start != -1 && end != -1 && end > start {
		return s[start : end+1]
	}
	return s
}
