// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/scholarcast/internal/httputil"
	"github.com/pdiddy/scholarcast/pkg/types"
)

// summaryPromptTmpl is the prompt sent to the Claude API for each paper. It
// asks for a narration-ready prose summary plus exactly three labeled
// bullets and an importance score, as a bare JSON object.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are a research paper summarizer for an audio briefing. Analyze the paper below and produce a summary suitable for being read aloud.

Respond with a JSON object containing:
- "summary": 2-3 sentences of flowing prose describing what the paper does and why it matters
- "bullets": an array of exactly 3 short strings, labeled "Method: ...", "Novelty: ...", and "Key Result: ..."
- "importance": an integer from 0 to 10 rating how significant the work is

Do not include any text outside the JSON object.

Title: {{.Title}}

Abstract: {{.Abstract}}

Content:
{{.Text}}
`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend summarizes a paper with one Claude Messages API call.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
	// MaxPromptChars bounds the extracted text included in the prompt
	// (default 2000).
	MaxPromptChars int
	// MaxRetries bounds retry attempts on 429 and 5xx responses.
	MaxRetries int
}

// NewClaudeBackend builds a ClaudeBackend from the AI and summary configuration.
func NewClaudeBackend(ai types.AIConfig, cfg types.SummaryConfig, client *http.Client) *ClaudeBackend {
	return &ClaudeBackend{
		APIKey:         ai.APIKey,
		Model:          ai.Model,
		Client:         client,
		MaxPromptChars: cfg.MaxPromptChars,
		MaxRetries:     ai.MaxRetries,
	}
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// summaryPayload is the JSON object the model is asked to return.
type summaryPayload struct {
	Summary    string   `json:"summary"`
	Bullets    []string `json:"bullets"`
	Importance int      `json:"importance"`
}

// Summarize calls the Claude API and normalizes the returned summary.
func (c *ClaudeBackend) Summarize(ctx context.Context, in Input) (types.Summary, error) {
	maxChars := c.MaxPromptChars
	if maxChars <= 0 {
		maxChars = 2000
	}
	text := in.Text
	if len(text) > maxChars {
		text = text[:maxChars]
	}

	var buf bytes.Buffer
	err := summaryPromptTmpl.Execute(&buf, struct {
		Title, Abstract, Text string
	}{Title: in.Title, Abstract: in.Abstract, Text: text})
	if err != nil {
		return types.Summary{}, fmt.Errorf("rendering prompt: %w", err)
	}

	text, err = c.Generate(ctx, buf.String())
	if err != nil {
		return types.Summary{}, err
	}

	payload, err := parseSummaryJSON(text)
	if err != nil {
		return types.Summary{}, err
	}
	return Normalize(types.Summary{
		Text:       payload.Summary,
		Bullets:    payload.Bullets,
		Importance: payload.Importance,
		Provenance: "claude",
	}), nil
}

// Generate sends one free-form prompt and returns the model's text. Used
// both for per-paper summaries and for report narratives.
func (c *ClaudeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 2000,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("no text content in Claude API response")
}

// parseSummaryJSON extracts the JSON object from a model response. Models
// occasionally wrap the object in prose, so parsing is retried on the
// substring between the first "{" and the last "}".
func parseSummaryJSON(text string) (summaryPayload, error) {
	var payload summaryPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return summaryPayload{}, fmt.Errorf("parsing summary JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
			return summaryPayload{}, fmt.Errorf("parsing summary JSON: %w", err)
		}
	}
	if strings.TrimSpace(payload.Summary) == "" {
		return summaryPayload{}, fmt.Errorf("summary JSON missing summary text")
	}
	return payload, nil
}
