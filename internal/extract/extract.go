// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract derives text content from papers: PDF download plus
// pdftotext conversion on the primary path, the abstract on the fallback
// path. Extracted text is never empty — the abstract is the guaranteed
// minimum. See docs/ARCHITECTURE § Extraction.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/scholarcast/pkg/types"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxChars = 5000
)

// Extractor derives text for one paper.
type Extractor interface {
	Extract(ctx context.Context, paper types.Paper) (types.ExtractedText, error)
}

// PDFExtractor downloads a paper's PDF and converts it to text with the
// pdftotext tool. It errors on download, content-type, or conversion
// failure; callers route errors into the abstract fallback.
type PDFExtractor struct {
	Client *http.Client
	Cfg    types.ExtractionConfig
}

// Extract fetches paper.PDFURL and returns the trimmed text content.
func (e *PDFExtractor) Extract(ctx context.Context, paper types.Paper) (types.ExtractedText, error) {
	if paper.PDFURL == "" {
		return types.ExtractedText{}, fmt.Errorf("paper %s has no PDF URL", paper.ID)
	}

	timeout := e.Cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pdfPath, err := e.download(ctx, paper.PDFURL)
	if err != nil {
		return types.ExtractedText{}, err
	}
	defer os.Remove(pdfPath)

	raw, err := e.pdftotext(ctx, pdfPath)
	if err != nil {
		return types.ExtractedText{}, err
	}

	// pdftotext separates pages with form feeds.
	pages := strings.Count(raw, "\f") + 1

	maxChars := e.Cfg.MaxChars
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	text := RelevantSections(raw, maxChars)
	if strings.TrimSpace(text) == "" {
		return types.ExtractedText{}, fmt.Errorf("pdftotext produced empty output for %s", paper.PDFURL)
	}

	return types.ExtractedText{Text: text, Pages: pages, Source: types.TextFromPDF}, nil
}

// download fetches the PDF to a temporary file and returns its path.
func (e *PDFExtractor) download(ctx context.Context, pdfURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.Cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf,*/*;q=0.8")

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading PDF: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("PDF download returned HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/pdf") {
		return "", fmt.Errorf("URL does not point to a PDF (content-type %q)", ct)
	}

	f, err := os.CreateTemp("", "scholarcast-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer f.Close()

	if _, err := f.ReadFrom(resp.Body); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing PDF: %w", err)
	}
	return f.Name(), nil
}

// pdftotext runs the conversion tool and returns its stdout.
func (e *PDFExtractor) pdftotext(ctx context.Context, pdfPath string) (string, error) {
	bin := e.Cfg.PdftotextPath
	if bin == "" {
		bin = "pdftotext"
	}

	out := filepath.Join(os.TempDir(), filepath.Base(pdfPath)+".txt")
	defer os.Remove(out)

	cmd := exec.CommandContext(ctx, bin, pdfPath, out)
	if msg, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftotext: %w (%s)", err, strings.TrimSpace(string(msg)))
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return "", fmt.Errorf("reading pdftotext output: %w", err)
	}
	return string(data), nil
}

// StubExtractor is the dependency-free fallback: it returns the paper's
// abstract verbatim and never fails.
type StubExtractor struct{}

// Extract returns the abstract as text with abstract provenance.
func (StubExtractor) Extract(_ context.Context, paper types.Paper) (types.ExtractedText, error) {
	return types.ExtractedText{
		Text:   paper.Abstract,
		Source: types.TextFromAbstract,
	}, nil
}
