package visual

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"storymind/characters"
	"storymind/schema"
)

// DefaultStyle carries the shared stylistic anchor applied to every
// character portrait, so a character library reads as visually coherent.
const DefaultStyle = "realistic portrait, photorealistic, highly detailed, studio lighting, neutral background"

// DefaultAspectRatio is used when a caller does not request one.
const DefaultAspectRatio = "1:1"

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slug lowercases name and collapses every run of characters outside
// ASCII a-z and 0-9 (non-ASCII letters included) into a single hyphen,
// trimming leading and trailing hyphens, for use in deterministic file
// names.
func slug(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// ImagePath returns the deterministic output path for a character's
// portrait: <imageDir>/<slug(name)>_<seed>.png. Regeneration overwrites
// this same path, which is what gives the image cache its stability.
func ImagePath(imageDir, name string, seed uint32) string {
	return filepath.Join(imageDir, slug(name)+"_"+uint32ToString(seed)+".png")
}

func uint32ToString(v uint32) string {
	const base = 10
	if v == 0 {
		return "0"
	}
	digits := make([]byte, 0, 10)
	for v > 0 {
		digits = append([]byte{byte('0' + v%base)}, digits...)
		v /= base
	}
	return string(digits)
}

// assemblePrompt builds the provider prompt per the fixed template:
// "<description>, <style> [ID: <seed>]". The bracketed seed token is a
// textual anchor nudging providers that honor it toward deterministic
// output, independent of whatever numeric seed parameter is also sent.
func assemblePrompt(description, style string, seed uint32) string {
	return description + ", " + style + " [ID: " + uint32ToString(seed) + "]"
}

// Generator turns a canonical character's synthesized profile into a
// portrait file on disk, falling back to a deterministic placeholder on
// any provider failure. It never returns an error that would abort the
// pipeline for a single character — Generate's error return is reserved
// for failures writing to disk, which are genuinely fatal to this step.
type Generator struct {
	Client   *ImageClient
	ImageDir string
}

// NewGenerator builds a Generator writing portraits under imageDir.
func NewGenerator(client *ImageClient, imageDir string) *Generator {
	return &Generator{Client: client, ImageDir: imageDir}
}

// Generate implements the C7 state machine: pending -> real on provider
// success, pending -> placeholder on any provider error (quota, content
// filter, transport). style and aspectRatio default when empty.
func (g *Generator) Generate(ctx context.Context, profile characters.Profile, seed uint32, style, aspectRatio string) (*schema.GeneratedImage, error) {
	if style == "" {
		style = DefaultStyle
	}
	if aspectRatio == "" {
		aspectRatio = DefaultAspectRatio
	}

	prompt := assemblePrompt(profile.Description, style, seed)
	path := ImagePath(g.ImageDir, profile.Name, seed)

	if err := os.MkdirAll(g.ImageDir, 0o755); err != nil {
		return nil, err
	}

	start := time.Now()
	imgBytes, genErr := g.Client.GenerateImage(ctx, prompt, aspectRatio, seed)
	outcome := schema.OutcomeReal
	if genErr != nil {
		imgBytes, genErr = GeneratePlaceholder(profile.Name, seed)
		if genErr != nil {
			return nil, genErr
		}
		outcome = schema.OutcomePlaceholder
	}
	duration := time.Since(start)

	if err := os.WriteFile(path, imgBytes, 0o644); err != nil {
		return nil, err
	}

	return &schema.GeneratedImage{
		Path:        path,
		Prompt:      prompt,
		Style:       style,
		AspectRatio: aspectRatio,
		DurationMS:  duration.Milliseconds(),
		Outcome:     outcome,
		CreatedAt:   start,
	}, nil
}
