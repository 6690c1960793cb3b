// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity maintains an in-memory cosine-similarity index over
// paper embeddings. Lookups are linear scans; at the cached-paper scale
// this is cheaper than any ANN structure and never goes stale.
package similarity

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Match is one index hit, ordered by descending similarity.
type Match struct {
	PaperID    string
	Similarity float64
}

// Index holds one vector per paper ID. Safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	vectors map[string][]float64
}

// New returns an empty index.
func New() *Index {
	return &Index{vectors: make(map[string][]float64)}
}

// Upsert replaces the vector stored for the paper. The vector is copied,
// so the caller may reuse its slice.
func (ix *Index) Upsert(paperID string, vector []float64) {
	v := make([]float64, len(vector))
	copy(v, vector)

	ix.mu.Lock()
	ix.vectors[paperID] = v
	ix.mu.Unlock()
}

// Remove drops the paper from the index. Removing an absent ID is a no-op.
func (ix *Index) Remove(paperID string) {
	ix.mu.Lock()
	delete(ix.vectors, paperID)
	ix.mu.Unlock()
}

// Vector returns a copy of the vector stored for the paper, if any.
func (ix *Index) Vector(paperID string) ([]float64, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	v, ok := ix.vectors[paperID]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out, true
}

// Len reports the number of indexed papers.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Query returns up to k papers most similar to the query vector, ordered
// by descending similarity. Ties break on paper ID so results are stable.
// Vectors of a different dimension than the query are skipped.
func (ix *Index) Query(vector []float64, k int) ([]Match, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	if k <= 0 {
		return nil, nil
	}

	ix.mu.RLock()
	matches := make([]Match, 0, len(ix.vectors))
	for id, v := range ix.vectors {
		if len(v) != len(vector) {
			continue
		}
		matches = append(matches, Match{PaperID: id, Similarity: Cosine(vector, v)})
	}
	ix.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].PaperID < matches[j].PaperID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Cosine returns the cosine similarity of two equal-length vectors. A
// zero-norm vector yields 0 rather than NaN.
func Cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
