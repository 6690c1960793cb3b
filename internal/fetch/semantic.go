// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/scholarcast/internal/httputil"
	"github.com/pdiddy/scholarcast/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,externalIds,year,publicationDate,citationCount,venue,openAccessPdf,url"

// SemanticScholarBackend queries the Semantic Scholar API.
type SemanticScholarBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return "semantic_scholar" }

// Fetch queries the Semantic Scholar API and returns candidate papers.
func (b *SemanticScholarBackend) Fetch(ctx context.Context, query string, cfg types.FetchConfig) ([]types.Paper, error) {
	if query == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", maxResults)},
		"fields": {semanticFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	total := len(sr.Data)
	var papers []types.Paper
	for i, paper := range sr.Data {
		p := types.Paper{
			Title:     paper.Title,
			Abstract:  paper.Abstract,
			URL:       paper.URL,
			Citations: paper.CitationCount,
			Venue:     paper.Venue,
			Source:    "semantic_scholar",
		}

		for _, a := range paper.Authors {
			p.Authors = append(p.Authors, a.Name)
		}

		if paper.PublicationDate != "" {
			p.PublishedDate = paper.PublicationDate
		} else if paper.Year > 0 {
			p.PublishedDate = fmt.Sprintf("%d", paper.Year)
		}

		if paper.OpenAccessPDF.URL != "" {
			p.PDFURL = paper.OpenAccessPDF.URL
		}

		// Prefer arXiv ID, then DOI, for cross-backend dedup.
		switch {
		case paper.ExternalIDs.ArXiv != "":
			p.Identifier = paper.ExternalIDs.ArXiv
			if p.PDFURL == "" {
				p.PDFURL = "https://arxiv.org/pdf/" + paper.ExternalIDs.ArXiv
			}
		case paper.ExternalIDs.DOI != "":
			p.Identifier = paper.ExternalIDs.DOI
		default:
			p.Identifier = paper.PaperID
		}

		// Position-based relevance score.
		if total > 1 {
			p.RelevanceScore = 1.0 - float64(i)/float64(total-1)*0.9
		} else {
			p.RelevanceScore = 1.0
		}

		papers = append(papers, p)
	}
	return papers, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string              `json:"paperId"`
	Title           string              `json:"title"`
	Abstract        string              `json:"abstract"`
	Year            int                 `json:"year"`
	PublicationDate string              `json:"publicationDate"`
	CitationCount   int                 `json:"citationCount"`
	Venue           string              `json:"venue"`
	URL             string              `json:"url"`
	OpenAccessPDF   semanticOpenAccess  `json:"openAccessPdf"`
	Authors         []semanticAuthor    `json:"authors"`
	ExternalIDs     semanticExternalIDs `json:"externalIds"`
}

type semanticOpenAccess struct {
	URL string `json:"url"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	CorpusID int    `json:"CorpusId"`
}
