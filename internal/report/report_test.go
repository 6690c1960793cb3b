// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/scholarcast/pkg/types"
)

type mockNarrator struct {
	text  string
	err   error
	calls int
	// lastPrompt records the prompt for assertion.
	lastPrompt string
}

func (m *mockNarrator) Generate(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	return m.text, m.err
}

type mockSynth struct {
	err   error
	calls int
}

func (m *mockSynth) Synthesize(_ context.Context, text, fileName string) (types.AudioArtifact, error) {
	m.calls++
	if m.err != nil {
		return types.AudioArtifact{}, m.err
	}
	return types.AudioArtifact{
		Path:       "tmp/audio/" + fileName,
		URL:        "/audio/" + fileName,
		Text:       text,
		Provenance: "mock",
	}, nil
}

func testPapers() []types.ProcessedPaper {
	var papers []types.ProcessedPaper
	for i := 1; i <= 3; i++ {
		papers = append(papers, types.ProcessedPaper{
			Paper: types.Paper{
				ID:      fmt.Sprintf("p%d", i),
				Title:   fmt.Sprintf("Paper %d", i),
				Authors: []string{"Author One"},
				Venue:   "ICML",
			},
			Summary: types.Summary{
				Text:       fmt.Sprintf("Summary %d.", i),
				Bullets:    []string{"Method: M", "Novelty: N", "Key Result: K"},
				Importance: i + 5,
			},
		})
	}
	return papers
}

func TestAssemble(t *testing.T) {
	narrator := &mockNarrator{text: "An engaging narrative about the research."}
	synth := &mockSynth{}
	a := New(narrator, synth, nil)

	var log bytes.Buffer
	rep, err := a.Assemble(context.Background(), "graph neural networks", testPapers(), &log)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if rep.ID == "" {
		t.Error("report has no ID")
	}
	if rep.Title != "Research Report: graph neural networks" {
		t.Errorf("title = %q", rep.Title)
	}
	if rep.Narrative != "An engaging narrative about the research." {
		t.Errorf("narrative = %q", rep.Narrative)
	}
	if rep.Provenance != "claude" {
		t.Errorf("provenance = %q, want claude", rep.Provenance)
	}
	if rep.PaperCount != 3 {
		t.Errorf("paper count = %d, want 3", rep.PaperCount)
	}
	if !strings.HasPrefix(rep.Audio.URL, "/audio/research_report_") {
		t.Errorf("audio URL = %q", rep.Audio.URL)
	}

	// The prompt carries every paper's material.
	for i := 1; i <= 3; i++ {
		if !strings.Contains(narrator.lastPrompt, fmt.Sprintf("Paper %d", i)) {
			t.Errorf("prompt missing paper %d", i)
		}
	}
	if !strings.Contains(narrator.lastPrompt, "graph neural networks") {
		t.Error("prompt missing query")
	}

	// Assembled reports are retrievable by ID.
	got, ok := a.Get(rep.ID)
	if !ok || got.ID != rep.ID {
		t.Errorf("Get(%q) = %v, %v", rep.ID, got, ok)
	}
	if _, ok := a.Get("absent"); ok {
		t.Error("Get returned a report for an unknown ID")
	}
}

func TestAssembleNarratorFailureUsesTemplate(t *testing.T) {
	narrator := &mockNarrator{err: fmt.Errorf("api down")}
	a := New(narrator, &mockSynth{}, nil)

	var log bytes.Buffer
	rep, err := a.Assemble(context.Background(), "robotics", testPapers(), &log)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if rep.Provenance != "template" {
		t.Errorf("provenance = %q, want template", rep.Provenance)
	}
	if !strings.Contains(rep.Narrative, "Welcome to the ScholarCast Research Report") {
		t.Errorf("narrative is not the template: %q", rep.Narrative)
	}
	if !strings.Contains(log.String(), "narrative generation failed") {
		t.Errorf("missing warning in log: %q", log.String())
	}
	// The most important paper leads the template body.
	if !strings.Contains(rep.Narrative, "Paper 3") {
		t.Error("template narrative missing top paper")
	}
}

func TestAssembleNilNarrator(t *testing.T) {
	a := New(nil, &mockSynth{}, nil)
	rep, err := a.Assemble(context.Background(), "topic", testPapers(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if rep.Provenance != "template" {
		t.Errorf("provenance = %q, want template", rep.Provenance)
	}
}

func TestAssembleAudioFallback(t *testing.T) {
	primary := &mockSynth{err: fmt.Errorf("tts down")}
	fallback := &mockSynth{}
	a := New(&mockNarrator{text: "Narrative."}, primary, fallback)

	var log bytes.Buffer
	rep, err := a.Assemble(context.Background(), "topic", testPapers(), &log)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("synth calls = %d/%d, want 1/1", primary.calls, fallback.calls)
	}
	if rep.Audio.URL == "" {
		t.Error("fallback audio missing URL")
	}
	if !strings.Contains(log.String(), "audio synthesis failed") {
		t.Errorf("missing warning in log: %q", log.String())
	}
}

func TestAssembleAudioFailureNoFallback(t *testing.T) {
	a := New(&mockNarrator{text: "Narrative."}, &mockSynth{err: fmt.Errorf("tts down")}, nil)
	if _, err := a.Assemble(context.Background(), "topic", testPapers(), &bytes.Buffer{}); err == nil {
		t.Fatal("expected error when synthesis fails with no fallback")
	}
}

func TestAssembleNoPapers(t *testing.T) {
	a := New(nil, &mockSynth{}, nil)
	if _, err := a.Assemble(context.Background(), "topic", nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for empty paper set")
	}
}

func TestTemplateNarrativeCapsAtFivePapers(t *testing.T) {
	var papers []types.ProcessedPaper
	for i := 1; i <= 8; i++ {
		papers = append(papers, types.ProcessedPaper{
			Paper:   types.Paper{ID: fmt.Sprintf("p%d", i), Title: fmt.Sprintf("Title-%d", i)},
			Summary: types.Summary{Text: "S.", Bullets: []string{"a"}, Importance: i},
		})
	}

	narrative := templateNarrative("q", papers)
	if !strings.Contains(narrative, "analyzed 8 recent papers") {
		t.Error("narrative missing total paper count")
	}
	// Only the five most important papers are narrated.
	for i := 4; i <= 8; i++ {
		if !strings.Contains(narrative, fmt.Sprintf("Title-%d", i)) {
			t.Errorf("narrative missing important paper %d", i)
		}
	}
	for i := 1; i <= 3; i++ {
		if strings.Contains(narrative, fmt.Sprintf("Title-%d\"", i)) {
			t.Errorf("narrative includes low-importance paper %d", i)
		}
	}
}
