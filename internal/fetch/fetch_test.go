// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/scholarcast/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	name   string
	papers []types.Paper
	err    error
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Fetch(_ context.Context, _ string, _ types.FetchConfig) ([]types.Paper, error) {
	return m.papers, m.err
}

func testCfg() types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		MaxResults:        5,
		InterBackendDelay: 0,
	}
}

// --- Fetch fan-out ---

func TestFetchMergesBackends(t *testing.T) {
	backends := []Backend{
		&mockBackend{name: "a", papers: []types.Paper{
			{Identifier: "2301.07041", Title: "Paper A", Source: "arxiv", RelevanceScore: 0.9},
		}},
		&mockBackend{name: "b", papers: []types.Paper{
			{Identifier: "doi-1", Title: "Paper B", Source: "semantic_scholar", RelevanceScore: 0.8},
		}},
	}

	var buf bytes.Buffer
	papers, err := Fetch(context.Background(), "attention", backends, testCfg(), &buf)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}
	// Higher score first.
	if papers[0].Title != "Paper A" {
		t.Errorf("papers[0].Title = %q, want Paper A", papers[0].Title)
	}
	for _, p := range papers {
		if p.ID == "" {
			t.Errorf("paper %q has empty ID", p.Title)
		}
	}
}

func TestFetchToleratesPartialBackendFailure(t *testing.T) {
	backends := []Backend{
		&mockBackend{name: "broken", err: fmt.Errorf("boom")},
		&mockBackend{name: "ok", papers: []types.Paper{
			{Identifier: "x", Title: "Survivor", Source: "arxiv", RelevanceScore: 1.0},
		}},
	}

	var buf bytes.Buffer
	papers, err := Fetch(context.Background(), "q", backends, testCfg(), &buf)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(papers) != 1 || papers[0].Title != "Survivor" {
		t.Fatalf("papers = %+v, want only Survivor", papers)
	}
	if !strings.Contains(buf.String(), "warning: backend broken failed") {
		t.Errorf("expected failure warning in output, got %q", buf.String())
	}
}

func TestFetchAllBackendsFailed(t *testing.T) {
	backends := []Backend{
		&mockBackend{name: "a", err: fmt.Errorf("down")},
		&mockBackend{name: "b", err: fmt.Errorf("down")},
	}
	_, err := Fetch(context.Background(), "q", backends, testCfg(), &bytes.Buffer{})
	if err == nil {
		t.Fatal("Fetch must error when every backend failed")
	}
}

func TestFetchEmptyQuery(t *testing.T) {
	_, err := Fetch(context.Background(), "   ", []Backend{&mockBackend{name: "a"}}, testCfg(), &bytes.Buffer{})
	if err == nil {
		t.Fatal("Fetch must reject an empty query")
	}
}

func TestFetchCapsResults(t *testing.T) {
	var many []types.Paper
	for i := 0; i < 10; i++ {
		many = append(many, types.Paper{
			Identifier:     fmt.Sprintf("id-%d", i),
			Title:          fmt.Sprintf("Paper %d", i),
			RelevanceScore: 1.0 - float64(i)*0.05,
		})
	}
	cfg := testCfg()
	cfg.MaxResults = 3

	papers, err := Fetch(context.Background(), "q", []Backend{&mockBackend{name: "a", papers: many}}, cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(papers) != 3 {
		t.Fatalf("len(papers) = %d, want 3", len(papers))
	}
}

// --- Deduplication ---

func TestDeduplicateByIdentifier(t *testing.T) {
	papers := []types.Paper{
		{Identifier: "2301.07041", Title: "Paper A", Source: "arxiv", RelevanceScore: 0.9},
		{Identifier: "2301.07041", Title: "Paper A (from S2)", Source: "semantic_scholar", RelevanceScore: 0.8, Citations: 120, Venue: "NeurIPS"},
		{Identifier: "2301.99999", Title: "Paper B", Source: "arxiv", RelevanceScore: 0.7},
	}

	deduped, removed := deduplicate(papers)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(deduped) != 2 {
		t.Fatalf("len(deduped) = %d, want 2", len(deduped))
	}
	// Merged result keeps the higher score and fills empty fields.
	if deduped[0].RelevanceScore != 0.9 {
		t.Errorf("merged score = %f, want 0.9", deduped[0].RelevanceScore)
	}
	if deduped[0].Citations != 120 || deduped[0].Venue != "NeurIPS" {
		t.Errorf("merged fields = %d/%q, want 120/NeurIPS", deduped[0].Citations, deduped[0].Venue)
	}
	if !strings.Contains(deduped[0].Source, "semantic_scholar") {
		t.Errorf("merged source = %q, should contain both backends", deduped[0].Source)
	}
}

func TestDeduplicateByTitle(t *testing.T) {
	papers := []types.Paper{
		{Identifier: "arxiv-id-1", Title: "Attention Is All You Need", Source: "arxiv"},
		{Identifier: "doi-10.123", Title: "attention is all you need!", Source: "semantic_scholar", PDFURL: "https://example.com/a.pdf"},
	}

	deduped, removed := deduplicate(papers)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(deduped) != 1 {
		t.Fatalf("len(deduped) = %d, want 1", len(deduped))
	}
	if deduped[0].PDFURL == "" {
		t.Error("merge should adopt the PDF link from the duplicate")
	}
}

// --- Paper IDs ---

func TestPaperIDShape(t *testing.T) {
	id := PaperID("Deep Learning Approaches for Brain Tumor Detection!", []string{"Sarah Johnson"})
	pattern := regexp.MustCompile(`^[a-z0-9]{1,20}_[a-z0-9]{1,10}_[0-9a-f-]{8}$`)
	if !pattern.MatchString(id) {
		t.Errorf("PaperID = %q, does not match slug_author_suffix shape", id)
	}
}

func TestPaperIDUniqueAcrossRetries(t *testing.T) {
	a := PaperID("Same Title", []string{"Same Author"})
	b := PaperID("Same Title", []string{"Same Author"})
	if a == b {
		t.Errorf("PaperID must differ across calls, got %q twice", a)
	}
}

func TestPaperIDNoAuthors(t *testing.T) {
	id := PaperID("", nil)
	if !strings.Contains(id, "untitled") || !strings.Contains(id, "unknown") {
		t.Errorf("PaperID with empty inputs = %q, want untitled/unknown placeholders", id)
	}
}

// --- Fallback data ---

func TestSamplePapersCount(t *testing.T) {
	for _, n := range []int{1, 2, 3} {
		papers := SamplePapers(n)
		if len(papers) != n {
			t.Errorf("SamplePapers(%d) returned %d papers", n, len(papers))
		}
	}
	// Requests beyond the sample set are capped, never an error.
	if got := len(SamplePapers(50)); got != len(samplePapers) {
		t.Errorf("SamplePapers(50) returned %d papers, want %d", got, len(samplePapers))
	}
}

func TestSamplePapersTagged(t *testing.T) {
	for _, p := range SamplePapers(3) {
		if p.Source != "fallback" {
			t.Errorf("sample paper %q source = %q, want fallback", p.Title, p.Source)
		}
		if p.ID == "" || p.Abstract == "" {
			t.Errorf("sample paper %q missing ID or abstract", p.Title)
		}
	}
}
