// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholarcast pipeline.
// See docs/ARCHITECTURE § Data Structures.
package types

import "time"

// Paper holds the metadata for one candidate paper as returned by a fetch
// backend. A Paper is immutable once produced by the fetch stage.
type Paper struct {
	// ID is a slug derived from title and first author, suffixed with a
	// short random component so retries never collide.
	ID string `json:"id" yaml:"id"`

	// Identifier is the canonical ID from the source (arXiv ID, DOI, or URL).
	// Used for cross-backend deduplication.
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract. It is the guaranteed minimum text
	// content when PDF extraction fails or no PDF is available.
	Abstract string `json:"abstract" yaml:"abstract"`

	// URL is the canonical landing page for the paper.
	URL string `json:"url" yaml:"url"`

	// PDFURL is the direct PDF link, empty when the source has none.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// PublishedDate is the publication date as reported by the source,
	// typically a year or a full date string.
	PublishedDate string `json:"published_date" yaml:"published_date"`

	// Citations is the citation count reported by the source (>= 0).
	Citations int `json:"citations" yaml:"citations"`

	// Venue is the journal or conference name.
	Venue string `json:"venue" yaml:"venue"`

	// Source identifies which backend produced this record
	// (e.g. "arxiv", "semantic_scholar", "fallback").
	Source string `json:"source" yaml:"source"`

	// RelevanceScore is a value between 0.0 and 1.0 assigned by the fetch
	// stage, position-based when the source reports no score of its own.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}

// TextSource identifies where extracted text came from.
type TextSource string

const (
	// TextFromPDF means the text was extracted from the paper's PDF.
	TextFromPDF TextSource = "pdf"
	// TextFromAbstract means extraction fell back to the abstract.
	TextFromAbstract TextSource = "abstract"
)

// ExtractedText is the free text derived from a paper for summarization.
// Text is never empty: the abstract is the guaranteed minimum content.
type ExtractedText struct {
	// Text is the extracted content.
	Text string `json:"text" yaml:"text"`

	// Pages is the page count of the source PDF, 0 for abstract fallback.
	Pages int `json:"pages" yaml:"pages"`

	// Source records whether the text came from the PDF or the abstract.
	Source TextSource `json:"source" yaml:"source"`
}

// BulletCount is the fixed number of labeled bullets per summary
// (Method / Novelty / Key Result). Enforced post-hoc regardless of what
// the summarization backend returns.
const BulletCount = 3

// Summary is the per-paper summarization result.
type Summary struct {
	// Text is a short prose summary, two to four sentences.
	Text string `json:"summary" yaml:"summary"`

	// Bullets holds exactly BulletCount labeled bullets.
	Bullets []string `json:"bullets" yaml:"bullets"`

	// Importance is a backend- or fallback-assigned integer in [0, 10].
	// Its semantics are opaque; callers should not infer more than
	// "bigger means the backend thought it mattered more".
	Importance int `json:"importance" yaml:"importance"`

	// Provenance identifies which backend produced the summary
	// (e.g. "claude", "fallback").
	Provenance string `json:"provenance" yaml:"provenance"`
}

// EmbeddingDimension is the default vector length, matching the
// text-embedding-3-small model.
const EmbeddingDimension = 1536

// Embedding is a fixed-dimension vector associated 1:1 with a paper.
// Replaced wholesale on reprocessing, never mutated in place.
type Embedding struct {
	// Vector is the embedding itself. Its length must match the configured
	// model dimension across a deployment.
	Vector []float64 `json:"vector" yaml:"vector"`

	// Provenance identifies the producing backend. The value "placeholder"
	// marks a structural hash-derived vector with no semantic meaning;
	// similarity consumers may discount or exclude such vectors.
	Provenance string `json:"provenance" yaml:"provenance"`
}

// AudioArtifact describes one synthesized narration file.
type AudioArtifact struct {
	// Path is the local filesystem path of the audio file.
	Path string `json:"path" yaml:"path"`

	// URL is the stable serving URL (/audio/<filename>), constructible by
	// a caller without a further round trip.
	URL string `json:"url" yaml:"url"`

	// Text is the text that was synthesized.
	Text string `json:"text" yaml:"text"`

	// DurationSeconds is estimated from word count and speaking rate,
	// not measured from the file.
	DurationSeconds int `json:"duration_seconds" yaml:"duration_seconds"`

	// Provenance identifies the producing backend (e.g. "openai", "fallback").
	Provenance string `json:"provenance" yaml:"provenance"`
}

// ProcessedPaper is the fully assembled unit for one paper: raw metadata
// plus summary, embedding, and audio references. This is what the store
// persists and what callers receive.
type ProcessedPaper struct {
	Paper `yaml:",inline"`

	Summary   Summary       `json:"summary_result" yaml:"summary_result"`
	Embedding Embedding     `json:"embedding" yaml:"embedding"`
	Audio     AudioArtifact `json:"audio" yaml:"audio"`

	// ProcessedAt is when the paper finished its pipeline.
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`
}
