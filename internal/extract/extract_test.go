// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/scholarcast/pkg/types"
)

func TestStubExtractorReturnsAbstract(t *testing.T) {
	paper := types.Paper{
		ID:       "p1",
		Abstract: "This paper studies widgets.",
	}
	got, err := StubExtractor{}.Extract(context.Background(), paper)
	if err != nil {
		t.Fatalf("StubExtractor.Extract: %v", err)
	}
	if got.Text != paper.Abstract {
		t.Errorf("Text = %q, want abstract verbatim", got.Text)
	}
	if got.Source != types.TextFromAbstract {
		t.Errorf("Source = %q, want %q", got.Source, types.TextFromAbstract)
	}
	if got.Pages != 0 {
		t.Errorf("Pages = %d, want 0 for abstract fallback", got.Pages)
	}
}

func TestPDFExtractorNoURL(t *testing.T) {
	e := &PDFExtractor{}
	if _, err := e.Extract(context.Background(), types.Paper{ID: "p1"}); err == nil {
		t.Fatal("expected error for paper without PDF URL")
	}
}

func TestPDFExtractorRejectsNonPDFContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not a pdf</html>"))
	}))
	defer ts.Close()

	e := &PDFExtractor{Client: ts.Client()}
	_, err := e.Extract(context.Background(), types.Paper{ID: "p1", PDFURL: ts.URL})
	if err == nil || !strings.Contains(err.Error(), "content-type") {
		t.Fatalf("err = %v, want content-type rejection", err)
	}
}

func TestPDFExtractorDownloadError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	e := &PDFExtractor{Client: ts.Client()}
	if _, err := e.Extract(context.Background(), types.Paper{ID: "p1", PDFURL: ts.URL}); err == nil {
		t.Fatal("expected error on HTTP 404")
	}
}

const sampleBody = `Some Title Line

Abstract
This work proposes a new widget detector.
It performs well.

1. Introduction
Widgets are everywhere and hard to detect.

2. Methodology
We use a three-stage detector with residual connections.

3. Results
Precision improved by 12 points over the baseline.

4. Conclusion
Widget detection is now feasible at scale.

References
[1] Prior work.`

func TestRelevantSectionsFindsNamedSections(t *testing.T) {
	got := RelevantSections(sampleBody, 5000)

	for _, want := range []string{"ABSTRACT:", "INTRODUCTION:", "METHODOLOGY:", "RESULTS:", "CONCLUSION:"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %s section", want)
		}
	}
	if !strings.Contains(got, "widget detector") {
		t.Error("abstract body missing from output")
	}
	if strings.Contains(got, "Prior work") {
		t.Error("references must not leak into the trimmed output")
	}
}

func TestRelevantSectionsCapsLength(t *testing.T) {
	got := RelevantSections(sampleBody, 40)
	if len(got) > 40 {
		t.Errorf("len = %d, want <= 40", len(got))
	}
}

func TestRelevantSectionsNoHeadingsFallsBackToPrefix(t *testing.T) {
	text := strings.Repeat("plain prose with no structure whatsoever. ", 50)
	got := RelevantSections(text, 100)
	if len(got) != 100 {
		t.Errorf("len = %d, want 100 (prefix fallback)", len(got))
	}
	if !strings.HasPrefix(text, got) {
		t.Error("fallback must be a prefix of the original text")
	}
}
