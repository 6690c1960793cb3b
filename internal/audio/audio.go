// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audio turns narration text into MP3 artifacts on local disk. The
// primary backend calls the OpenAI speech API; the fallback writes a silent
// MP3 sized from the estimated narration duration so every processed paper
// still yields a playable artifact.
// See docs/ARCHITECTURE § Audio synthesis.
package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/scholarcast/internal/httputil"
	"github.com/pdiddy/scholarcast/pkg/types"
)

// Synthesizer writes spoken audio for the text to fileName under the
// storage directory and returns the resulting artifact.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, fileName string) (types.AudioArtifact, error)
}

// openaiSpeechAPIBase is the speech endpoint. Package-level var for test
// substitution.
var openaiSpeechAPIBase = "https://api.openai.com/v1/audio/speech"

// defaultWordsPerMinute is the narration pace used for duration estimates.
const defaultWordsPerMinute = 155

// OpenAIBackend calls the OpenAI speech API and stores the MP3 bytes.
type OpenAIBackend struct {
	APIKey     string
	Model      string
	Voice      string
	StorageDir string
	Client     *http.Client
	MaxRetries int
	// WordsPerMinute tunes the duration estimate (default 155).
	WordsPerMinute int
}

// NewOpenAIBackend builds an OpenAIBackend from the audio configuration.
func NewOpenAIBackend(cfg types.AudioConfig, client *http.Client) *OpenAIBackend {
	return &OpenAIBackend{
		APIKey:         cfg.APIKey,
		Model:          cfg.Model,
		Voice:          cfg.Voice,
		StorageDir:     cfg.StorageDir,
		Client:         client,
		WordsPerMinute: cfg.WordsPerMinute,
	}
}

// speechRequest is the request body for the OpenAI speech API.
type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize requests MP3 audio for the text and writes it under the
// storage directory.
func (o *OpenAIBackend) Synthesize(ctx context.Context, text, fileName string) (types.AudioArtifact, error) {
	if strings.TrimSpace(text) == "" {
		return types.AudioArtifact{}, fmt.Errorf("narration text is empty")
	}

	model := o.Model
	if model == "" {
		model = "tts-1"
	}
	voice := o.Voice
	if voice == "" {
		voice = "alloy"
	}

	bodyBytes, err := json.Marshal(speechRequest{
		Model:          model,
		Voice:          voice,
		Input:          text,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return types.AudioArtifact{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiSpeechAPIBase, bytes.NewReader(bodyBytes))
	if err != nil {
		return types.AudioArtifact{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, o.MaxRetries)
	if err != nil {
		return types.AudioArtifact{}, fmt.Errorf("calling speech API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return types.AudioArtifact{}, fmt.Errorf("speech API returned %d: %s", resp.StatusCode, string(body))
	}

	outPath, err := writeAudioFile(o.StorageDir, fileName, resp.Body)
	if err != nil {
		return types.AudioArtifact{}, err
	}

	return types.AudioArtifact{
		Path:            outPath,
		URL:             URLFor(fileName),
		Text:            text,
		DurationSeconds: EstimateDuration(text, o.WordsPerMinute),
		Provenance:      "openai",
	}, nil
}

// Fallback writes a silent MP3 built from repeated empty frames, sized
// from the estimated narration duration. It never calls the network and
// never fails on valid input.
type Fallback struct {
	StorageDir     string
	WordsPerMinute int
}

// NewFallback builds a Fallback from the audio configuration.
func NewFallback(cfg types.AudioConfig) *Fallback {
	return &Fallback{StorageDir: cfg.StorageDir, WordsPerMinute: cfg.WordsPerMinute}
}

// MPEG-1 Layer III header for a silent 128 kbps 44.1 kHz frame.
var silentFrameHeader = []byte{0xFF, 0xFB, 0x90, 0x00}

const (
	frameMillis = 26 // approximate frame duration at 44.1 kHz
	frameSize   = 128000 / 8 * frameMillis / 1000
)

// Synthesize writes the placeholder MP3. Duration is floored at 10 seconds
// so even short texts produce a visibly nonzero artifact.
func (f *Fallback) Synthesize(_ context.Context, text, fileName string) (types.AudioArtifact, error) {
	if strings.TrimSpace(text) == "" {
		return types.AudioArtifact{}, fmt.Errorf("narration text is empty")
	}

	secs := EstimateDuration(text, f.WordsPerMinute)
	if secs < 10 {
		secs = 10
	}

	numFrames := (secs*1000 + frameMillis - 1) / frameMillis
	frame := make([]byte, frameSize)
	copy(frame, silentFrameHeader)

	var buf bytes.Buffer
	buf.Grow(numFrames * frameSize)
	for i := 0; i < numFrames; i++ {
		buf.Write(frame)
	}

	outPath, err := writeAudioFile(f.StorageDir, fileName, &buf)
	if err != nil {
		return types.AudioArtifact{}, err
	}

	return types.AudioArtifact{
		Path:            outPath,
		URL:             URLFor(fileName),
		Text:            text,
		DurationSeconds: secs,
		Provenance:      "fallback",
	}, nil
}

// writeAudioFile creates the storage directory if needed and streams the
// audio bytes to fileName inside it.
func writeAudioFile(storageDir, fileName string, r io.Reader) (string, error) {
	dir := storageDir
	if dir == "" {
		dir = filepath.Join("tmp", "audio")
	}
	outPath := filepath.Join(dir, fileName)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("creating audio directory: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating audio file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return "", fmt.Errorf("writing audio file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing audio file: %w", err)
	}
	return outPath, nil
}

// URLFor maps a file name under the storage directory to its serving URL.
func URLFor(fileName string) string {
	return "/audio/" + filepath.ToSlash(fileName)
}

// EstimateDuration returns the expected narration length in whole seconds
// at the given pace (words per minute, default 155).
func EstimateDuration(text string, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = defaultWordsPerMinute
	}
	words := len(strings.Fields(text))
	return int(math.Round(float64(words) / float64(wordsPerMinute) * 60))
}

// FormatDuration renders seconds as "M:SS" for display.
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
