// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch queries academic APIs for candidate papers and returns
// unified, deduplicated records. Each backend (arXiv, Semantic Scholar)
// implements the Backend interface per the Strategy pattern.
// See docs/ARCHITECTURE § Fetch.
package fetch

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/pdiddy/scholarcast/pkg/types"
)

// Backend searches a single academic API.
type Backend interface {
	Name() string
	Fetch(ctx context.Context, query string, cfg types.FetchConfig) ([]types.Paper, error)
}

// Fetch fans the query out to all backends concurrently, deduplicates
// results, ranks them by relevance, assigns paper IDs, and returns the
// top maxResults. Individual backend failures are warnings; Fetch errors
// only when every backend failed or nothing was found.
func Fetch(ctx context.Context, query string, backends []Backend, cfg types.FetchConfig, w io.Writer) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("no fetch backends configured")
	}

	type backendResult struct {
		papers []types.Paper
		err    error
		name   string
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup

	for i, b := range backends {
		if i > 0 && cfg.InterBackendDelay > 0 {
			time.Sleep(cfg.InterBackendDelay)
		}
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			papers, err := b.Fetch(ctx, query, cfg)
			ch <- backendResult{papers: papers, err: err, name: b.Name()}
		}(b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.Paper
	var failed int
	for br := range ch {
		if br.err != nil {
			failed++
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", br.name, br.err)
			continue
		}
		all = append(all, br.papers...)
	}

	if failed == len(backends) {
		return nil, fmt.Errorf("all %d fetch backends failed", failed)
	}

	deduped, removed := deduplicate(all)
	if len(deduped) == 0 {
		return nil, fmt.Errorf("no papers found for query %q", query)
	}
	if removed > 0 {
		fmt.Fprintf(w, "deduplicated %d papers\n", removed)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].RelevanceScore > deduped[j].RelevanceScore
	})

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	if len(deduped) > maxResults {
		deduped = deduped[:maxResults]
	}

	for i := range deduped {
		deduped[i].ID = PaperID(deduped[i].Title, deduped[i].Authors)
	}

	return deduped, nil
}

// PaperID builds a readable, collision-free paper ID from title and first
// author plus a short random suffix. The slug alone is not unique across
// retries; the suffix makes it so.
func PaperID(title string, authors []string) string {
	author := "unknown"
	if len(authors) > 0 {
		author = authors[0]
	}
	return fmt.Sprintf("%s_%s_%s", slugify(title, 20), slugify(author, 10), uuid.NewString()[:8])
}

// slugify lowercases s, strips everything but letters and digits, and
// truncates to max bytes.
func slugify(s string, max int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		out = "untitled"
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// deduplicate merges papers that share an identifier or normalized title.
func deduplicate(papers []types.Paper) ([]types.Paper, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.Paper
	removed := 0

	for _, p := range papers {
		key := ""
		if p.Identifier != "" {
			key = "id:" + p.Identifier
		}
		titleKey := "title:" + normalizeTitle(p.Title)

		if idx, ok := seen[key]; key != "" && ok {
			mergeInto(&deduped[idx], p)
			removed++
			continue
		}
		if titleKey != "title:" {
			if idx, ok := seen[titleKey]; ok {
				mergeInto(&deduped[idx], p)
				removed++
				continue
			}
		}

		idx := len(deduped)
		deduped = append(deduped, p)
		if key != "" {
			seen[key] = idx
		}
		if titleKey != "title:" {
			seen[titleKey] = idx
		}
	}
	return deduped, removed
}

// mergeInto fills empty fields of dst from src and keeps the higher score.
// A record carrying a PDF link wins that field so extraction has something
// to work with.
func mergeInto(dst *types.Paper, src types.Paper) {
	if dst.Title == "" && src.Title != "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 && len(src.Authors) > 0 {
		dst.Authors = src.Authors
	}
	if dst.Abstract == "" && src.Abstract != "" {
		dst.Abstract = src.Abstract
	}
	if dst.URL == "" && src.URL != "" {
		dst.URL = src.URL
	}
	if dst.PDFURL == "" && src.PDFURL != "" {
		dst.PDFURL = src.PDFURL
	}
	if dst.PublishedDate == "" && src.PublishedDate != "" {
		dst.PublishedDate = src.PublishedDate
	}
	if dst.Venue == "" && src.Venue != "" {
		dst.Venue = src.Venue
	}
	if src.Citations > dst.Citations {
		dst.Citations = src.Citations
	}
	if src.RelevanceScore > dst.RelevanceScore {
		dst.RelevanceScore = src.RelevanceScore
	}
	if dst.Source != src.Source && !strings.Contains(dst.Source, src.Source) {
		dst.Source = dst.Source + "," + src.Source
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
