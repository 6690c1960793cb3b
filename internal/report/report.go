// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles a single narrated report from all processed
// papers of one run: an LLM-written podcast narrative with a template
// fallback, synthesized into one audio artifact.
// See docs/ARCHITECTURE § Report Assembly.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/scholarcast/internal/audio"
	"github.com/pdiddy/scholarcast/pkg/types"
)

// Narrator produces free-form text from a prompt.
type Narrator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Assembler builds report artifacts and keeps them addressable by ID.
// Stored reports live in memory only; callers needing durability must
// persist the artifact themselves.
type Assembler struct {
	// Narrator writes the narrative. Nil means the template fallback is
	// used directly.
	Narrator Narrator

	// Synth produces the report audio. Required.
	Synth audio.Synthesizer

	// FallbackSynth is tried when Synth fails. Nil disables audio
	// fallback, in which case a synthesis failure fails the report.
	FallbackSynth audio.Synthesizer

	mu      sync.RWMutex
	reports map[string]*types.ReportArtifact
}

// New returns an Assembler with an empty report registry.
func New(narrator Narrator, synth, fallbackSynth audio.Synthesizer) *Assembler {
	return &Assembler{
		Narrator:      narrator,
		Synth:         synth,
		FallbackSynth: fallbackSynth,
		reports:       make(map[string]*types.ReportArtifact),
	}
}

// narrativePromptTmpl asks for a podcast-style narrative over the full
// paper set, bounded to a few minutes of audio.
var narrativePromptTmpl = template.Must(template.New("narrative").Parse(`You are a research podcast host creating an engaging summary of recent research on "{{.Query}}".

Here are {{.Count}} recent papers on this topic:

{{.Papers}}
Create a compelling podcast-style summary that:
1. Opens with an engaging introduction about the topic
2. Discusses the key findings from the most important papers
3. Highlights trends and patterns across the research
4. Mentions specific studies and their contributions
5. Concludes with implications and future directions
6. Uses conversational, engaging language suitable for audio
7. Is approximately 3-5 minutes when read aloud (aim for 500-800 words)

Make it sound natural and engaging, like a research podcast host would present it.`))

// Assemble builds one report over the processed papers and registers it.
// Narrative and audio failures degrade to their fallbacks; only the total
// absence of papers or a final synthesis failure is an error.
func (a *Assembler) Assemble(ctx context.Context, query string, papers []types.ProcessedPaper, w io.Writer) (*types.ReportArtifact, error) {
	if len(papers) == 0 {
		return nil, fmt.Errorf("no papers to report on")
	}

	narrative, provenance := a.narrate(ctx, query, papers, w)

	id := uuid.NewString()
	fileName := fmt.Sprintf("research_report_%s.mp3", id)

	art, err := a.Synth.Synthesize(ctx, narrative, fileName)
	if err != nil {
		if a.FallbackSynth == nil {
			return nil, fmt.Errorf("synthesizing report audio: %w", err)
		}
		fmt.Fprintf(w, "warning: report audio synthesis failed, using fallback: %v\n", err)
		art, err = a.FallbackSynth.Synthesize(ctx, narrative, fileName)
		if err != nil {
			return nil, fmt.Errorf("synthesizing fallback report audio: %w", err)
		}
	}

	rep := &types.ReportArtifact{
		ID:         id,
		Title:      "Research Report: " + query,
		Query:      query,
		Narrative:  narrative,
		Audio:      art,
		PaperCount: len(papers),
		Provenance: provenance,
		CreatedAt:  time.Now(),
	}

	a.mu.Lock()
	a.reports[id] = rep
	a.mu.Unlock()

	return rep, nil
}

// Get returns a previously assembled report by ID.
func (a *Assembler) Get(id string) (*types.ReportArtifact, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rep, ok := a.reports[id]
	return rep, ok
}

// narrate produces the narrative text and its provenance tag, degrading to
// the template when the narrator is absent or fails.
func (a *Assembler) narrate(ctx context.Context, query string, papers []types.ProcessedPaper, w io.Writer) (string, string) {
	if a.Narrator != nil {
		var sb strings.Builder
		for i, p := range papers {
			fmt.Fprintf(&sb, "Paper %d: %q by %s\nSummary: %s\nKey Points: %s\nImportance: %d/10\nVenue: %s\n\n",
				i+1, p.Title, joinAuthors(p.Authors), p.Summary.Text,
				strings.Join(p.Summary.Bullets, ". "), p.Summary.Importance, venueOr(p.Venue, "Unknown"))
		}

		var buf strings.Builder
		err := narrativePromptTmpl.Execute(&buf, struct {
			Query  string
			Count  int
			Papers string
		}{Query: query, Count: len(papers), Papers: sb.String()})
		if err == nil {
			narrative, err := a.Narrator.Generate(ctx, buf.String())
			if err == nil && strings.TrimSpace(narrative) != "" {
				return strings.TrimSpace(narrative), "claude"
			}
			if err != nil {
				fmt.Fprintf(w, "warning: narrative generation failed, using template: %v\n", err)
			}
		}
	}

	return templateNarrative(query, papers), "template"
}

// templateNarrative concatenates the top papers by importance into a fixed
// podcast script. It never fails.
func templateNarrative(query string, papers []types.ProcessedPaper) string {
	top := make([]types.ProcessedPaper, len(papers))
	copy(top, papers)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Summary.Importance > top[j].Summary.Importance
	})
	if len(top) > 5 {
		top = top[:5]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Welcome to the ScholarCast Research Report. Today we're exploring the latest research on %s.\n\n", query)
	fmt.Fprintf(&sb, "We've analyzed %d recent papers, and here are the key findings:\n\n", len(papers))

	for _, p := range top {
		fmt.Fprintf(&sb, "Let's look at %q by %s. ", p.Title, joinAuthors(p.Authors))
		sb.WriteString(p.Summary.Text + " ")
		fmt.Fprintf(&sb, "The key points are: %s. ", strings.Join(p.Summary.Bullets, ". "))
		fmt.Fprintf(&sb, "This work was published in %s and has an importance score of %d out of 10.\n\n",
			venueOr(p.Venue, "a leading journal"), p.Summary.Importance)
	}

	fmt.Fprintf(&sb, "In conclusion, the research on %s shows significant progress with multiple innovative approaches. ", query)
	sb.WriteString("The field continues to evolve rapidly, with these studies contributing valuable insights for future research and practical applications.\n\n")
	sb.WriteString("Thank you for listening to this ScholarCast Research Report. Stay curious and keep learning!")

	return sb.String()
}

func joinAuthors(authors []string) string {
	if len(authors) == 0 {
		return "researchers"
	}
	return strings.Join(authors, ", ")
}

func venueOr(venue, fallback string) string {
	if venue == "" {
		return fallback
	}
	return venue
}
