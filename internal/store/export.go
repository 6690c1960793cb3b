// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is one cached paper flattened for export. Embedding vectors
// are omitted; they are bulky and meaningless outside the process that
// produced them.
type ExportEntry struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Authors       []string `json:"authors" yaml:"authors"`
	Venue         string   `json:"venue,omitempty" yaml:"venue,omitempty"`
	PublishedDate string   `json:"published_date,omitempty" yaml:"published_date,omitempty"`
	URL           string   `json:"url" yaml:"url"`
	Source        string   `json:"source" yaml:"source"`
	Summary       string   `json:"summary" yaml:"summary"`
	Bullets       []string `json:"bullets" yaml:"bullets"`
	Importance    int      `json:"importance" yaml:"importance"`
	AudioURL      string   `json:"audio_url" yaml:"audio_url"`
	Provenance    string   `json:"provenance" yaml:"provenance"`
}

// ExportYAML writes every cached paper to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every cached paper to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	papers, err := s.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(papers))
	for i, p := range papers {
		entries[i] = ExportEntry{
			ID:            p.ID,
			Title:         p.Title,
			Authors:       p.Authors,
			Venue:         p.Venue,
			PublishedDate: p.PublishedDate,
			URL:           p.URL,
			Source:        p.Source,
			Summary:       p.Summary.Text,
			Bullets:       p.Summary.Bullets,
			Importance:    p.Summary.Importance,
			AudioURL:      p.Audio.URL,
			Provenance:    p.Summary.Provenance,
		}
	}
	return entries, nil
}
