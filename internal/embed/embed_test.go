// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/scholarcast/pkg/types"
)

func openaiTestServer(t *testing.T, handler http.HandlerFunc) *OpenAIBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	orig := openaiEmbedAPIBase
	openaiEmbedAPIBase = srv.URL
	t.Cleanup(func() { openaiEmbedAPIBase = orig })

	return &OpenAIBackend{APIKey: "test-key", Model: "text-embedding-3-small", Client: srv.Client(), Dimension: 4}
}

func vectorResponse(vec []float64) []byte {
	b, _ := json.Marshal(map[string]any{
		"data": []map[string]any{{"embedding": vec}},
	})
	return b
}

func TestOpenAIEmbed(t *testing.T) {
	var gotReq embedRequest
	backend := openaiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want Bearer test-key", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Write(vectorResponse([]float64{0.1, 0.2, 0.3, 0.4}))
	})

	e, err := backend.Embed(context.Background(), "some summary text")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(e.Vector) != 4 {
		t.Fatalf("got %d dimensions, want 4", len(e.Vector))
	}
	if e.Provenance != "openai" {
		t.Errorf("provenance = %q, want openai", e.Provenance)
	}
	if gotReq.Input != "some summary text" {
		t.Errorf("input = %q", gotReq.Input)
	}
	if gotReq.Model != "text-embedding-3-small" {
		t.Errorf("model = %q", gotReq.Model)
	}
}

func TestOpenAIEmbedTruncatesInput(t *testing.T) {
	var gotReq embedRequest
	backend := openaiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write(vectorResponse([]float64{1, 2, 3, 4}))
	})

	if _, err := backend.Embed(context.Background(), strings.Repeat("a", 20000)); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(gotReq.Input) > maxEmbedChars+3 {
		t.Errorf("input length %d exceeds cap", len(gotReq.Input))
	}
	if !strings.HasSuffix(gotReq.Input, "...") {
		t.Error("truncated input missing ellipsis")
	}
}

func TestOpenAIEmbedErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name:    "empty input",
			input:   "   ",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.Write(vectorResponse([]float64{1})) },
			wantErr: "empty",
		},
		{
			name:  "API error status",
			input: "text",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "invalid key", http.StatusUnauthorized)
			},
			wantErr: "401",
		},
		{
			name:  "no data",
			input: "text",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"data": []}`)
			},
			wantErr: "no data",
		},
		{
			name:  "wrong dimension",
			input: "text",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write(vectorResponse([]float64{1, 2}))
			},
			wantErr: "2 dimensions, want 4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := openaiTestServer(t, tt.handler)
			_, err := backend.Embed(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestFallbackEmbed(t *testing.T) {
	f := &Fallback{}

	e1, err := f.Embed(context.Background(), "paper about transformers")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(e1.Vector) != types.EmbeddingDimension {
		t.Fatalf("got %d dimensions, want %d", len(e1.Vector), types.EmbeddingDimension)
	}
	if e1.Provenance != "placeholder" {
		t.Errorf("provenance = %q, want placeholder", e1.Provenance)
	}
	for i, v := range e1.Vector {
		if v < 0 || v >= 1 {
			t.Fatalf("vector[%d] = %v outside [0, 1)", i, v)
		}
	}

	// Deterministic per input, distinct across inputs.
	e2, _ := f.Embed(context.Background(), "paper about transformers")
	e3, _ := f.Embed(context.Background(), "paper about databases")
	for i := range e1.Vector {
		if e1.Vector[i] != e2.Vector[i] {
			t.Fatal("same input produced different vectors")
		}
	}
	same := true
	for i := range e1.Vector {
		if e1.Vector[i] != e3.Vector[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different inputs produced identical vectors")
	}
}

func TestFallbackEmbedCustomDimension(t *testing.T) {
	f := &Fallback{Dimension: 8}
	e, err := f.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(e.Vector) != 8 {
		t.Fatalf("got %d dimensions, want 8", len(e.Vector))
	}
}
