// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholarcast/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePaper(id, title string) types.ProcessedPaper {
	return types.ProcessedPaper{
		Paper: types.Paper{
			ID:             id,
			Identifier:     "arxiv:" + id,
			Title:          title,
			Authors:        []string{"Ada Lovelace", "Charles Babbage"},
			Abstract:       "An abstract about " + title,
			URL:            "https://example.org/" + id,
			PublishedDate:  "2025-01-15",
			Citations:      12,
			Venue:          "NeurIPS",
			Source:         "arxiv",
			RelevanceScore: 0.9,
		},
		Summary: types.Summary{
			Text:       "Summary of " + title,
			Bullets:    []string{"Method: M", "Novelty: N", "Key Result: K"},
			Importance: 7,
			Provenance: "claude",
		},
		Embedding: types.Embedding{Vector: []float64{0.1, 0.2, 0.3}, Provenance: "openai"},
		Audio: types.AudioArtifact{
			Path:            "tmp/audio/" + id + ".mp3",
			URL:             "/audio/" + id + ".mp3",
			Text:            "narration",
			DurationSeconds: 42,
			Provenance:      "openai",
		},
		ProcessedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	want := samplePaper("p1", "Quantum Widgets")
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx, "p1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Title != want.Title || got.Identifier != want.Identifier {
		t.Errorf("metadata mismatch: got %+v", got.Paper)
	}
	if len(got.Authors) != 2 || got.Authors[0] != "Ada Lovelace" {
		t.Errorf("authors = %v", got.Authors)
	}
	if got.Summary.Text != want.Summary.Text || got.Summary.Importance != 7 {
		t.Errorf("summary mismatch: %+v", got.Summary)
	}
	if len(got.Summary.Bullets) != 3 {
		t.Errorf("bullets = %v", got.Summary.Bullets)
	}
	if len(got.Embedding.Vector) != 3 || got.Embedding.Vector[1] != 0.2 {
		t.Errorf("embedding = %v", got.Embedding.Vector)
	}
	if got.Audio.URL != "/audio/p1.mp3" || got.Audio.DurationSeconds != 42 {
		t.Errorf("audio mismatch: %+v", got.Audio)
	}
	if !got.ProcessedAt.Equal(want.ProcessedAt) {
		t.Errorf("processed_at = %v, want %v", got.ProcessedAt, want.ProcessedAt)
	}
}

func TestLoadMissing(t *testing.T) {
	s := testStore(t)
	if _, err := s.Load(context.Background(), "absent"); err == nil {
		t.Fatal("expected error for missing paper")
	}
}

func TestSaveUpserts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := samplePaper("p1", "First Title")
	if err := s.Save(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.Title = "Revised Title"
	p.Summary.Importance = 9
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.Load(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Revised Title" || got.Summary.Importance != 9 {
		t.Errorf("upsert did not replace: %+v", got)
	}

	all, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("got %d papers, want 1", len(all))
	}
}

func TestLoadAllOrdering(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	older := samplePaper("old", "Older Paper")
	older.ProcessedAt = time.Now().Add(-time.Hour)
	newer := samplePaper("new", "Newer Paper")

	for _, p := range []types.ProcessedPaper{older, newer} {
		if err := s.Save(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != "new" {
		t.Errorf("ordering wrong: %v", all)
	}
}

func TestDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, samplePaper("p1", "T")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load(ctx, "p1"); err == nil {
		t.Fatal("paper still present after delete")
	}
	// Deleting again is a no-op.
	if err := s.Delete(ctx, "p1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSearchCached(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	transformer := samplePaper("p1", "Transformer Architectures")
	transformer.Abstract = "Attention mechanisms for sequence modeling."
	database := samplePaper("p2", "Columnar Database Engines")
	database.Abstract = "Storage layouts for analytical workloads."

	for _, p := range []types.ProcessedPaper{transformer, database} {
		if err := s.Save(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := s.SearchCached(ctx, "attention", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "p1" {
		t.Errorf("hits = %v", hits)
	}

	// Updated rows are re-indexed.
	database.Abstract = "Attention-friendly storage layouts."
	if err := s.Save(ctx, database); err != nil {
		t.Fatal(err)
	}
	hits, err = s.SearchCached(ctx, "attention", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits after update, want 2", len(hits))
	}

	// Deleted rows drop out of the index.
	if err := s.Delete(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	hits, err = s.SearchCached(ctx, "attention", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "p2" {
		t.Errorf("hits after delete = %v", hits)
	}
}

func TestSearchCachedWithoutFTS(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// Simulate a driver built without the sqlite_fts5 tag: the store must
	// answer searches via LIKE matching instead of erroring out.
	s.ftsEnabled = false

	p := samplePaper("p1", "Graph Neural Networks")
	p.Abstract = "Message passing over molecular graphs."
	if err := s.Save(ctx, p); err != nil {
		t.Fatal(err)
	}

	hits, err := s.SearchCached(ctx, "molecular", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "p1" {
		t.Errorf("hits = %v", hits)
	}

	hits, err = s.SearchCached(ctx, "unrelated", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("got %d hits for non-matching query, want 0", len(hits))
	}
}

func TestStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := samplePaper("a", "A")
	a.Summary.Importance = 6
	b := samplePaper("b", "B")
	b.Summary.Importance = 8
	b.Source = "semantic_scholar"
	b.Venue = "ICML"
	b.Audio.Provenance = "fallback"

	for _, p := range []types.ProcessedPaper{a, b} {
		if err := s.Save(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.PaperCount != 2 {
		t.Errorf("count = %d, want 2", st.PaperCount)
	}
	if st.AvgImportance != 7 {
		t.Errorf("avg importance = %v, want 7", st.AvgImportance)
	}
	if st.BySource["arxiv"] != 1 || st.BySource["semantic_scholar"] != 1 {
		t.Errorf("by source = %v", st.BySource)
	}
	if len(st.TopVenues) != 2 {
		t.Errorf("venues = %v", st.TopVenues)
	}
	if st.FallbackAudio != 1 {
		t.Errorf("fallback audio = %d, want 1", st.FallbackAudio)
	}
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, samplePaper("p1", "Exported Paper")); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "export.yaml")
	if err := s.ExportYAML(ctx, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	var entries []ExportEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "Exported Paper" {
		t.Errorf("entries = %+v", entries)
	}
	if entries[0].AudioURL != "/audio/p1.mp3" {
		t.Errorf("audio url = %q", entries[0].AudioURL)
	}
}

func TestStatsEmptyStore(t *testing.T) {
	s := testStore(t)
	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.PaperCount != 0 || st.AvgImportance != 0 {
		t.Errorf("empty store stats = %+v", st)
	}
}
