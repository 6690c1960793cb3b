package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scholarcast/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the paper fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of candidate papers (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableArxiv controls whether the arXiv backend is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableSemanticScholar controls whether the Semantic Scholar backend is used.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// InterBackendDelay is the delay between calls to different backends (default 1s).
	InterBackendDelay time.Duration `json:"inter_backend_delay" yaml:"inter_backend_delay"`
}

// ValidationConfig holds settings for query validation.
type ValidationConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxQueryLength is the maximum accepted query length (default 500).
	MaxQueryLength int `json:"max_query_length" yaml:"max_query_length"`

	// ScorerURL is the optional external security scorer endpoint. Empty
	// disables external scoring; an unreachable scorer never blocks a query.
	ScorerURL string `json:"scorer_url,omitempty" yaml:"scorer_url,omitempty"`

	// ScorerAPIKey authenticates against the external scorer.
	ScorerAPIKey string `json:"scorer_api_key,omitempty" yaml:"scorer_api_key,omitempty"`
}

// ExtractionConfig holds settings for PDF text extraction.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline"`

	// PdftotextPath is the pdftotext binary to invoke (default "pdftotext").
	PdftotextPath string `json:"pdftotext_path" yaml:"pdftotext_path"`

	// MaxChars bounds the extracted text kept for summarization (default 5000).
	MaxChars int `json:"max_chars" yaml:"max_chars"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SummaryConfig holds settings for the summarization stage.
type SummaryConfig struct {
	AIConfig `yaml:",inline"`

	// MaxPromptChars bounds the extracted-text prefix included in the
	// prompt (default 2000).
	MaxPromptChars int `json:"max_prompt_chars" yaml:"max_prompt_chars"`

	// FallbackImportanceMin and FallbackImportanceMax bound the importance
	// the template fallback assigns (defaults 6 and 9). The range biases
	// demo output toward "interesting" papers and carries no semantics.
	FallbackImportanceMin int `json:"fallback_importance_min" yaml:"fallback_importance_min"`
	FallbackImportanceMax int `json:"fallback_importance_max" yaml:"fallback_importance_max"`
}

// EmbeddingConfig holds settings for the embedding stage.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the embedding model identifier (default "text-embedding-3-small").
	Model string `json:"model" yaml:"model"`

	// APIKey is the embedding API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Dimension is the vector dimension the model emits (default 1536).
	// Must be consistent across a deployment; the placeholder fallback
	// produces vectors of the same dimension.
	Dimension int `json:"dimension" yaml:"dimension"`
}

// AudioConfig holds settings for speech synthesis and audio bookkeeping.
type AudioConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the TTS model identifier (default "tts-1").
	Model string `json:"model" yaml:"model"`

	// Voice selects the synthesis voice (default "alloy").
	Voice string `json:"voice" yaml:"voice"`

	// APIKey is the TTS API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// StorageDir is the directory audio files are written to
	// (default "tmp/audio"). Files are served under /audio/.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// CleanupHorizon is the age past which the cleanup sweep deletes
	// audio files (default 24h).
	CleanupHorizon time.Duration `json:"cleanup_horizon" yaml:"cleanup_horizon"`

	// WordsPerMinute is the speaking rate used for duration estimates
	// (default 155).
	WordsPerMinute int `json:"words_per_minute" yaml:"words_per_minute"`
}

// StoreConfig holds settings for the paper cache store.
type StoreConfig struct {
	// CacheDir is the directory holding the SQLite database (default "cache").
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// MaxResults is the default cap for cached-paper queries (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations plus run-wide switches.
type PipelineConfig struct {
	Validation ValidationConfig `json:"validation" yaml:"validation"`
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Summary    SummaryConfig    `json:"summary" yaml:"summary"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding"`
	Audio      AudioConfig      `json:"audio" yaml:"audio"`
	Store      StoreConfig      `json:"store" yaml:"store"`

	// MaxConcurrent bounds the number of papers processed at once
	// (default 3). Zero or negative means sequential.
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`

	// UseFallbacks selects lenient mode: stage failures degrade to local
	// substitutes. When false (strict mode) a stage failure fails that
	// paper instead.
	UseFallbacks bool `json:"use_fallbacks" yaml:"use_fallbacks"`
}
