// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the full research-podcast run: query
// validation, paper fetch, bounded-concurrency per-paper processing with
// partial-failure tolerance, similarity indexing, and optional aggregate
// report assembly.
// See docs/ARCHITECTURE § Pipeline Orchestration.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pdiddy/scholarcast/internal/audio"
	"github.com/pdiddy/scholarcast/internal/embed"
	"github.com/pdiddy/scholarcast/internal/extract"
	"github.com/pdiddy/scholarcast/internal/fetch"
	"github.com/pdiddy/scholarcast/internal/report"
	"github.com/pdiddy/scholarcast/internal/similarity"
	"github.com/pdiddy/scholarcast/internal/store"
	"github.com/pdiddy/scholarcast/internal/summarize"
	"github.com/pdiddy/scholarcast/internal/validate"
	"github.com/pdiddy/scholarcast/pkg/types"
)

// Engine is the orchestrator handle: all collaborators are explicit
// fields constructed once at process start, never package-level state.
type Engine struct {
	Validator *validate.Validator
	Backends  []fetch.Backend
	Processor *Processor
	Index     *similarity.Index
	Reports   *report.Assembler

	Config types.PipelineConfig

	// W receives progress and warning lines.
	W io.Writer
}

// SearchOptions tunes one RunSearch call.
type SearchOptions struct {
	// MaxResults overrides the configured fetch cap when positive.
	MaxResults int

	// GenerateReport requests the aggregate narrated report over all
	// surviving papers.
	GenerateReport bool
}

// New wires an Engine from configuration: real backends where keys are
// present, local fallbacks always. The returned close function releases
// the paper cache; callers should defer it.
func New(cfg types.PipelineConfig, w io.Writer) (*Engine, func() error, error) {
	timeout := cfg.Fetch.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	var backends []fetch.Backend
	if cfg.Fetch.EnableArxiv {
		backends = append(backends, &fetch.ArxivBackend{Client: client})
	}
	if cfg.Fetch.EnableSemanticScholar {
		backends = append(backends, &fetch.SemanticScholarBackend{
			Client: client,
			APIKey: cfg.Fetch.SemanticScholarAPIKey,
		})
	}

	var persister Persister
	closeStore := func() error { return nil }
	if cfg.Store.CacheDir != "" {
		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return nil, nil, fmt.Errorf("opening paper cache: %w", err)
		}
		persister = st
		closeStore = st.Close
	}

	processor := &Processor{
		Extractor:          &extract.PDFExtractor{Client: client, Cfg: cfg.Extraction},
		StubExtractor:      extract.StubExtractor{},
		Summarizer:         summarize.NewClaudeBackend(cfg.Summary.AIConfig, cfg.Summary, client),
		FallbackSummarizer: summarize.NewFallback(cfg.Summary),
		Embedder:           embed.NewOpenAIBackend(cfg.Embedding, client),
		FallbackEmbedder:   &embed.Fallback{Dimension: cfg.Embedding.Dimension},
		Synth:              audio.NewOpenAIBackend(cfg.Audio, client),
		FallbackSynth:      audio.NewFallback(cfg.Audio),
		Store:              persister,
		UseFallbacks:       cfg.UseFallbacks,
	}

	var narrator report.Narrator
	if cfg.Summary.APIKey != "" {
		narrator = summarize.NewClaudeBackend(cfg.Summary.AIConfig, cfg.Summary, client)
	}
	var fallbackSynth audio.Synthesizer
	if cfg.UseFallbacks {
		fallbackSynth = audio.NewFallback(cfg.Audio)
	}

	e := &Engine{
		Validator: validate.New(cfg.Validation, client),
		Backends:  backends,
		Processor: processor,
		Index:     similarity.New(),
		Reports:   report.New(narrator, audio.NewOpenAIBackend(cfg.Audio, client), fallbackSynth),
		Config:    cfg,
		W:         w,
	}
	return e, closeStore, nil
}

// RunSearch is the single public entry point: validate, fetch, process
// with bounded concurrency, index, and optionally assemble the report.
// Partial failure is normal; only a rejected query, a dead fetch with
// fallbacks disabled, or zero surviving papers is an error.
func (e *Engine) RunSearch(ctx context.Context, query string, opts SearchOptions) (types.SearchResult, error) {
	verdict := e.Validator.Check(ctx, query)
	if !verdict.OK {
		return types.SearchResult{}, &ValidationError{Verdict: verdict}
	}

	fetchCfg := e.Config.Fetch
	if opts.MaxResults > 0 {
		fetchCfg.MaxResults = opts.MaxResults
	}

	papers, err := fetch.Fetch(ctx, query, e.Backends, fetchCfg, e.W)
	if err != nil {
		if !e.Config.UseFallbacks {
			return types.SearchResult{}, &BatchError{Reason: fmt.Sprintf("fetching papers: %v", err)}
		}
		fmt.Fprintf(e.W, "warning: fetch failed, using sample papers: %v\n", err)
		papers = fetch.SamplePapers(fetchCfg.MaxResults)
	}
	if len(papers) == 0 {
		return types.SearchResult{}, &BatchError{Reason: "no papers found for query"}
	}

	processed, failures := e.processAll(ctx, papers)

	for _, pe := range failures {
		fmt.Fprintf(e.W, "warning: skipping %v\n", pe)
	}

	if len(processed) == 0 {
		return types.SearchResult{}, &BatchError{Attempted: len(papers), Failures: failures}
	}

	for _, p := range processed {
		e.Index.Upsert(p.ID, p.Embedding.Vector)
	}

	result := types.SearchResult{
		Query:       query,
		Verdict:     verdict,
		Papers:      processed,
		Attempted:   len(papers),
		Succeeded:   len(processed),
		CompletedAt: time.Now(),
	}

	if opts.GenerateReport && e.Reports != nil {
		rep, err := e.Reports.Assemble(ctx, query, processed, e.W)
		if err != nil {
			fmt.Fprintf(e.W, "warning: report assembly failed: %v\n", err)
		} else {
			result.Report = rep
		}
	}

	return result, nil
}

// processAll fans the papers out to a bounded worker pool and reassembles
// survivors in original fetch order, not completion order.
func (e *Engine) processAll(ctx context.Context, papers []types.Paper) ([]types.ProcessedPaper, []*PaperError) {
	maxConcurrent := e.Config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	type slot struct {
		paper types.ProcessedPaper
		err   *PaperError
	}
	slots := make([]slot, len(papers))

	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	for i, paper := range papers {
		wg.Add(1)
		go func(i int, paper types.Paper) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			processed, err := e.Processor.Process(ctx, paper, e.W)
			if err != nil {
				slots[i].err = &PaperError{PaperID: paper.ID, Title: paper.Title, Err: err}
				return
			}
			slots[i].paper = processed
		}(i, paper)
	}
	wg.Wait()

	var processed []types.ProcessedPaper
	var failures []*PaperError
	for _, s := range slots {
		if s.err != nil {
			failures = append(failures, s.err)
			continue
		}
		processed = append(processed, s.paper)
	}
	return processed, failures
}

// QuerySimilar returns up to k papers most similar to the given one,
// excluding the paper itself.
func (e *Engine) QuerySimilar(paperID string, k int) ([]similarity.Match, error) {
	vec, ok := e.Index.Vector(paperID)
	if !ok {
		return nil, fmt.Errorf("paper %s is not indexed", paperID)
	}

	matches, err := e.Index.Query(vec, k+1)
	if err != nil {
		return nil, err
	}

	out := matches[:0]
	for _, m := range matches {
		if m.PaperID == paperID {
			continue
		}
		out = append(out, m)
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// GetReport returns a previously assembled report.
func (e *Engine) GetReport(reportID string) (*types.ReportArtifact, bool) {
	return e.Reports.Get(reportID)
}
