// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/scholarcast/internal/extract"
	"github.com/pdiddy/scholarcast/internal/summarize"
	"github.com/pdiddy/scholarcast/pkg/types"
)

// Embedder matches the embedding stage backends.
type Embedder interface {
	Embed(ctx context.Context, text string) (types.Embedding, error)
}

// Synthesizer matches the audio stage backends.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, fileName string) (types.AudioArtifact, error)
}

// Persister is the best-effort cache contract. Failures are logged and
// swallowed; a paper that could not be persisted is still returned as
// successful with only the cache considered stale.
type Persister interface {
	Save(ctx context.Context, p types.ProcessedPaper) error
}

// Processor runs one paper through extract, summarize, embed, synthesize,
// and persist. Each stage is independently fallback-protected; in strict
// mode any stage failure fails the paper instead of degrading.
type Processor struct {
	Extractor          extract.Extractor
	StubExtractor      extract.Extractor
	Summarizer         summarize.Summarizer
	FallbackSummarizer summarize.Summarizer
	Embedder           Embedder
	FallbackEmbedder   Embedder
	Synth              Synthesizer
	FallbackSynth      Synthesizer

	// Store may be nil when caching is disabled.
	Store Persister

	// UseFallbacks selects lenient mode. When false, stage failures
	// propagate instead of degrading.
	UseFallbacks bool
}

// Process runs the per-paper stages strictly in sequence and returns the
// assembled result. The returned error is a StageError when a stage failed
// without recovery; the caller decides how to treat it.
func (p *Processor) Process(ctx context.Context, paper types.Paper, w io.Writer) (types.ProcessedPaper, error) {
	extracted, err := p.extractText(ctx, paper, w)
	if err != nil {
		return types.ProcessedPaper{}, err
	}

	summary, err := runStage(ctx, "summarize", p.UseFallbacks, w,
		func(ctx context.Context) (types.Summary, error) {
			return p.Summarizer.Summarize(ctx, summarize.Input{
				Title:    paper.Title,
				Abstract: paper.Abstract,
				Text:     extracted.Text,
			})
		},
		func(ctx context.Context) (types.Summary, error) {
			return p.FallbackSummarizer.Summarize(ctx, summarize.Input{
				Title:    paper.Title,
				Abstract: paper.Abstract,
				Text:     extracted.Text,
			})
		})
	if err != nil {
		return types.ProcessedPaper{}, err
	}

	// The embedded text covers the prose summary plus all bullets so
	// similarity reflects the whole summary, not just its first sentence.
	embedText := summary.Text + " " + strings.Join(summary.Bullets, " ")
	embedding, err := runStage(ctx, "embed", p.UseFallbacks, w,
		func(ctx context.Context) (types.Embedding, error) {
			return p.Embedder.Embed(ctx, embedText)
		},
		func(ctx context.Context) (types.Embedding, error) {
			return p.FallbackEmbedder.Embed(ctx, embedText)
		})
	if err != nil {
		return types.ProcessedPaper{}, err
	}

	narration := fmt.Sprintf("%s. %s Key points: %s",
		paper.Title, summary.Text, strings.Join(summary.Bullets, ". "))
	fileName := paper.ID + ".mp3"
	artifact, err := runStage(ctx, "synthesize", p.UseFallbacks, w,
		func(ctx context.Context) (types.AudioArtifact, error) {
			return p.Synth.Synthesize(ctx, narration, fileName)
		},
		func(ctx context.Context) (types.AudioArtifact, error) {
			return p.FallbackSynth.Synthesize(ctx, narration, fileName)
		})
	if err != nil {
		return types.ProcessedPaper{}, err
	}

	processed := types.ProcessedPaper{
		Paper:       paper,
		Summary:     summary,
		Embedding:   embedding,
		Audio:       artifact,
		ProcessedAt: time.Now(),
	}

	// Persistence failures never fail the paper, strict mode included: the
	// in-memory result is still valid, only the cache is stale.
	if p.Store != nil {
		if err := p.Store.Save(ctx, processed); err != nil {
			fmt.Fprintf(w, "warning: persisting paper %s failed: %v\n", paper.ID, err)
		}
	}

	return processed, nil
}

// extractText resolves the text content for one paper. Papers without a
// PDF link use the abstract directly with no network call; papers with one
// go through the PDF extractor with the stub as fallback.
func (p *Processor) extractText(ctx context.Context, paper types.Paper, w io.Writer) (types.ExtractedText, error) {
	if paper.PDFURL == "" {
		return p.StubExtractor.Extract(ctx, paper)
	}
	return runStage(ctx, "extract", p.UseFallbacks, w,
		func(ctx context.Context) (types.ExtractedText, error) {
			return p.Extractor.Extract(ctx, paper)
		},
		func(ctx context.Context) (types.ExtractedText, error) {
			return p.StubExtractor.Extract(ctx, paper)
		})
}
