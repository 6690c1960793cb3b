// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate screens user queries before any pipeline work begins.
// See docs/ARCHITECTURE § Validation.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/pdiddy/scholarcast/pkg/types"
)

const defaultMaxQueryLength = 500

// denyPatterns is the fixed injection deny-list. A query matching any of
// these is rejected outright; the external scorer is never consulted for it.
var denyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)union\s+select`),
	regexp.MustCompile(`(?i)drop\s+table`),
	regexp.MustCompile(`(?i)exec\s*\(`),
	regexp.MustCompile(`(?i)eval\s*\(`),
}

// Validator screens queries. The zero value performs local checks only;
// set Client and cfg.ScorerURL to also consult an external scorer.
type Validator struct {
	Client *http.Client
	cfg    types.ValidationConfig
}

// New returns a Validator for the given configuration.
func New(cfg types.ValidationConfig, client *http.Client) *Validator {
	if client == nil {
		client = http.DefaultClient
	}
	return &Validator{Client: client, cfg: cfg}
}

// Check validates a query. Local shape checks (emptiness, length, the
// injection deny-list) reject outright. The external scorer, when
// configured, grades accepted queries; scorer unavailability is never a
// hard failure — the query is accepted with medium confidence instead.
func (v *Validator) Check(ctx context.Context, query string) types.Verdict {
	if query == "" {
		return types.Verdict{OK: false, Reason: "empty query"}
	}

	maxLen := v.cfg.MaxQueryLength
	if maxLen <= 0 {
		maxLen = defaultMaxQueryLength
	}
	if len(query) > maxLen {
		return types.Verdict{OK: false, Reason: fmt.Sprintf("query too long (max %d characters)", maxLen)}
	}

	for _, p := range denyPatterns {
		if p.MatchString(query) {
			return types.Verdict{OK: false, Reason: "query contains potentially malicious content"}
		}
	}

	if v.cfg.ScorerURL == "" {
		return types.Verdict{
			OK:            true,
			SecurityLevel: types.SecurityMedium,
			Note:          "local validation only (no scorer configured)",
		}
	}

	verdict, err := v.score(ctx, query)
	if err != nil {
		// Scorer availability is never a hard dependency: default open.
		return types.Verdict{
			OK:            true,
			SecurityLevel: types.SecurityMedium,
			Note:          fmt.Sprintf("scorer unavailable: %v", err),
		}
	}
	return verdict
}

// scorerRequest is the request body sent to the external scorer.
type scorerRequest struct {
	Query     string `json:"query"`
	Context   string `json:"context"`
	Timestamp string `json:"timestamp"`
}

// scorerResponse is the response body from the external scorer.
type scorerResponse struct {
	Safe      bool   `json:"safe"`
	RiskLevel string `json:"risk_level"`
	Message   string `json:"message"`
}

// score calls the external security scorer.
func (v *Validator) score(ctx context.Context, query string) (types.Verdict, error) {
	body, err := json.Marshal(scorerRequest{
		Query:     query,
		Context:   "research_search",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return types.Verdict{}, fmt.Errorf("marshaling scorer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.ScorerURL, bytes.NewReader(body))
	if err != nil {
		return types.Verdict{}, fmt.Errorf("creating scorer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.cfg.ScorerAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.cfg.ScorerAPIKey)
	}

	resp, err := v.Client.Do(req)
	if err != nil {
		return types.Verdict{}, fmt.Errorf("calling scorer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Verdict{}, fmt.Errorf("scorer returned HTTP %d", resp.StatusCode)
	}

	var sr scorerResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return types.Verdict{}, fmt.Errorf("decoding scorer response: %w", err)
	}

	level := types.SecurityLevel(sr.RiskLevel)
	switch level {
	case types.SecurityLow, types.SecurityMedium, types.SecurityHigh:
	default:
		level = types.SecurityMedium
	}

	if !sr.Safe {
		return types.Verdict{OK: false, Reason: "rejected by security scorer", SecurityLevel: level, Note: sr.Message}, nil
	}
	return types.Verdict{OK: true, SecurityLevel: level, Note: sr.Message}, nil
}
