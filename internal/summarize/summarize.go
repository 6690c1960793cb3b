// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns paper text into a short prose summary with
// exactly three labeled bullets and an importance score. Backends that
// call a Generative AI API implement Summarizer; a deterministic template
// fallback covers unreachable backends.
// See docs/ARCHITECTURE § Summarization.
package summarize

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/pdiddy/scholarcast/pkg/types"
)

// Input carries the per-paper material handed to a summarization backend.
type Input struct {
	Title    string
	Abstract string
	// Text is the extracted content; backends truncate it to a bounded
	// prefix to keep prompts small.
	Text string
}

// Summarizer produces a Summary for one paper.
type Summarizer interface {
	Summarize(ctx context.Context, in Input) (types.Summary, error)
}

const paddedBullet = "Not specified"

// Normalize enforces the summary shape invariants post-hoc, regardless of
// what the backend returned: exactly types.BulletCount bullets (padded or
// truncated) and importance clamped to [0, 10].
func Normalize(s types.Summary) types.Summary {
	for len(s.Bullets) < types.BulletCount {
		s.Bullets = append(s.Bullets, paddedBullet)
	}
	s.Bullets = s.Bullets[:types.BulletCount]

	if s.Importance < 0 {
		s.Importance = 0
	}
	if s.Importance > 10 {
		s.Importance = 10
	}
	return s
}

// Fallback is the dependency-free summarizer: a deterministic template
// over title and abstract, with a pseudo-random importance drawn from a
// configured range. It never fails.
type Fallback struct {
	// ImportanceMin and ImportanceMax bound the assigned importance
	// (defaults 6 and 9). The bias toward the high end makes demo output
	// look interesting; the value carries no semantics.
	ImportanceMin int
	ImportanceMax int
}

// NewFallback builds a Fallback from the summary configuration.
func NewFallback(cfg types.SummaryConfig) *Fallback {
	return &Fallback{
		ImportanceMin: cfg.FallbackImportanceMin,
		ImportanceMax: cfg.FallbackImportanceMax,
	}
}

// Summarize returns the template summary. The error is always nil; the
// signature matches Summarizer.
func (f *Fallback) Summarize(_ context.Context, in Input) (types.Summary, error) {
	lo, hi := f.ImportanceMin, f.ImportanceMax
	if lo <= 0 && hi <= 0 {
		lo, hi = 6, 9
	}
	if hi < lo {
		hi = lo
	}

	s := types.Summary{
		Text: fmt.Sprintf(
			"This research paper titled %q presents important findings in the field. "+
				"The work demonstrates significant contributions through innovative methodology and experimental validation.",
			in.Title),
		Bullets: []string{
			fmt.Sprintf("Method: Advanced computational approach used in %s", in.Title),
			"Novelty: New technique or framework presented",
			"Key Result: Significant improvement or discovery achieved",
		},
		Importance: lo + rand.Intn(hi-lo+1),
		Provenance: "fallback",
	}
	return Normalize(s), nil
}
