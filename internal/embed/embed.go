// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed produces fixed-dimension vector embeddings for paper
// summaries. The primary backend calls the OpenAI embeddings API; the
// fallback derives a deterministic placeholder vector from a text hash so
// downstream similarity machinery keeps working offline.
// See docs/ARCHITECTURE § Embeddings.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/pdiddy/scholarcast/internal/httputil"
	"github.com/pdiddy/scholarcast/pkg/types"
)

// Embedder produces a vector for one text.
type Embedder interface {
	Embed(ctx context.Context, text string) (types.Embedding, error)
}

// openaiEmbedAPIBase is the embeddings endpoint. Package-level var for test
// substitution.
var openaiEmbedAPIBase = "https://api.openai.com/v1/embeddings"

// maxEmbedChars bounds the input sent to the API, below the provider's
// token ceiling.
const maxEmbedChars = 8000

// OpenAIBackend calls the OpenAI embeddings API.
type OpenAIBackend struct {
	APIKey string
	Model  string
	Client *http.Client
	// Dimension is the expected vector length (default 1536). Responses
	// with a different length are rejected.
	Dimension  int
	MaxRetries int
}

// NewOpenAIBackend builds an OpenAIBackend from the embedding configuration.
func NewOpenAIBackend(cfg types.EmbeddingConfig, client *http.Client) *OpenAIBackend {
	return &OpenAIBackend{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		Client:    client,
		Dimension: cfg.Dimension,
	}
}

// embedRequest is the request body for the OpenAI embeddings API.
type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// embedResponse is the response body from the OpenAI embeddings API.
type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed sends the text to the embeddings API and validates the vector length.
func (o *OpenAIBackend) Embed(ctx context.Context, text string) (types.Embedding, error) {
	if strings.TrimSpace(text) == "" {
		return types.Embedding{}, fmt.Errorf("embedding input is empty")
	}
	if len(text) > maxEmbedChars {
		text = text[:maxEmbedChars] + "..."
	}

	model := o.Model
	if model == "" {
		model = "text-embedding-3-small"
	}

	bodyBytes, err := json.Marshal(embedRequest{Model: model, Input: text})
	if err != nil {
		return types.Embedding{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiEmbedAPIBase, bytes.NewReader(bodyBytes))
	if err != nil {
		return types.Embedding{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, o.MaxRetries)
	if err != nil {
		return types.Embedding{}, fmt.Errorf("calling embeddings API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return types.Embedding{}, fmt.Errorf("embeddings API returned %d: %s", resp.StatusCode, string(body))
	}

	var eResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&eResp); err != nil {
		return types.Embedding{}, fmt.Errorf("decoding embeddings response: %w", err)
	}
	if len(eResp.Data) == 0 {
		return types.Embedding{}, fmt.Errorf("embeddings API returned no data")
	}

	vec := eResp.Data[0].Embedding
	dim := o.Dimension
	if dim <= 0 {
		dim = types.EmbeddingDimension
	}
	if len(vec) != dim {
		return types.Embedding{}, fmt.Errorf("embeddings API returned %d dimensions, want %d", len(vec), dim)
	}

	return types.Embedding{Vector: vec, Provenance: "openai"}, nil
}

// Fallback derives a deterministic vector from a 32-bit string hash. The
// vector carries no semantic signal; it exists so indexing and persistence
// paths stay exercised when no API key is configured. Such vectors are
// tagged with the "placeholder" provenance.
type Fallback struct {
	// Dimension is the vector length (default 1536).
	Dimension int
}

// Embed returns the placeholder vector for the text. The error is always
// nil; the signature matches Embedder.
func (f *Fallback) Embed(_ context.Context, text string) (types.Embedding, error) {
	dim := f.Dimension
	if dim <= 0 {
		dim = types.EmbeddingDimension
	}

	seed := float64(hashText(text))
	vec := make([]float64, dim)
	for i := range vec {
		v := math.Sin(seed+float64(i)) * 10000
		vec[i] = v - math.Floor(v)
	}

	return types.Embedding{Vector: vec, Provenance: "placeholder"}, nil
}

// hashText is a 32-bit multiplicative string hash (the djb2 variant
// hash*31 + char, kept in int32 range).
func hashText(s string) uint32 {
	var hash int32
	for _, r := range s {
		hash = (hash << 5) - hash + int32(r)
	}
	if hash < 0 {
		hash = -hash
	}
	return uint32(hash)
}
