// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SecurityLevel grades the confidence of a query validation verdict.
type SecurityLevel string

const (
	SecurityLow    SecurityLevel = "low"
	SecurityMedium SecurityLevel = "medium"
	SecurityHigh   SecurityLevel = "high"
)

// Verdict is the outcome of query validation.
type Verdict struct {
	// OK reports whether the query was accepted.
	OK bool `json:"ok" yaml:"ok"`

	// Reason explains a rejection. Empty when OK.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// SecurityLevel is the scorer's confidence grade. When the external
	// scorer is unavailable the validator accepts with SecurityMedium.
	SecurityLevel SecurityLevel `json:"security_level,omitempty" yaml:"security_level,omitempty"`

	// Note carries scorer diagnostics (e.g. "scorer unavailable").
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// SearchResult is the aggregate returned by one pipeline run.
type SearchResult struct {
	// Query is the original user query.
	Query string `json:"query" yaml:"query"`

	// Verdict is the validation outcome for the query.
	Verdict Verdict `json:"verdict" yaml:"verdict"`

	// Papers lists the successfully processed papers in original fetch
	// order. Failed papers are excluded, not represented by gaps.
	Papers []ProcessedPaper `json:"papers" yaml:"papers"`

	// Attempted is the number of candidate papers the pipeline started.
	Attempted int `json:"attempted" yaml:"attempted"`

	// Succeeded is len(Papers); kept explicit so consumers can spot
	// partial results without counting.
	Succeeded int `json:"succeeded" yaml:"succeeded"`

	// Report is the optional aggregate narration, present only when
	// report generation was requested and produced an artifact.
	Report *ReportArtifact `json:"report,omitempty" yaml:"report,omitempty"`

	// CompletedAt is when the run finished.
	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`
}

// ReportArtifact is a long-form narrated report assembled from all
// processed papers of one run. Unlike audio files, stored reports have no
// automatic expiry; callers needing durability must persist them.
type ReportArtifact struct {
	// ID is a UUID assigned at creation.
	ID string `json:"id" yaml:"id"`

	// Title is the display title ("Research Report: <query>").
	Title string `json:"title" yaml:"title"`

	// Query is the query the report covers.
	Query string `json:"query" yaml:"query"`

	// Narrative is the full narrated text.
	Narrative string `json:"narrative" yaml:"narrative"`

	// Audio is the single narration artifact for the whole report.
	Audio AudioArtifact `json:"audio" yaml:"audio"`

	// PaperCount is the number of papers the narrative covers.
	PaperCount int `json:"paper_count" yaml:"paper_count"`

	// Provenance identifies how the narrative was composed
	// (e.g. "claude", "template").
	Provenance string `json:"provenance" yaml:"provenance"`

	// CreatedAt is when the report was assembled.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
