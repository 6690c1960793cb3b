// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists processed papers in a local SQLite database so
// repeat queries and similarity lookups can reuse prior pipeline runs.
// Persistence is best effort: the pipeline treats store failures as
// warnings, never as paper failures.
// See docs/ARCHITECTURE § Paper Cache.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scholarcast/pkg/types"
)

const dbFile = "scholarcast.db"

// Store manages the processed-paper SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int

	// ftsEnabled reports whether the papers_fts virtual table exists.
	// FTS5 is a compile-time feature of the sqlite3 driver (build tag
	// sqlite_fts5); without it the store degrades to LIKE matching.
	ftsEnabled bool
}

// NewStore opens or creates the database at cacheDir/scholarcast.db and
// ensures the schema exists.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = "cache"
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			identifier TEXT,
			title TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			url TEXT,
			pdf_url TEXT,
			published_date TEXT,
			citations INTEGER,
			venue TEXT,
			source TEXT,
			relevance_score REAL,
			summary TEXT,
			bullets TEXT,
			importance INTEGER,
			summary_provenance TEXT,
			embedding TEXT,
			embedding_provenance TEXT,
			audio_path TEXT,
			audio_url TEXT,
			audio_duration INTEGER,
			audio_provenance TEXT,
			processed_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_identifier ON papers(identifier)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_source ON papers(source)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over the searchable text columns, with triggers
	// for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists > 0 {
		s.ftsEnabled = true
		return nil
	}

	// Creating the virtual table fails when the driver was built without
	// FTS5 ("no such module: fts5"); that is not an error, the store just
	// falls back to LIKE-based search.
	if _, err := s.db.Exec(
		`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, summary, content=papers, content_rowid=rowid)`,
	); err != nil {
		return nil
	}

	triggers := []string{
		`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
			INSERT INTO papers_fts(rowid, title, abstract, summary) VALUES (new.rowid, new.title, new.abstract, new.summary);
		END`,
		`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
			INSERT INTO papers_fts(papers_fts, rowid, title, abstract, summary) VALUES('delete', old.rowid, old.title, old.abstract, old.summary);
		END`,
		`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
			INSERT INTO papers_fts(papers_fts, rowid, title, abstract, summary) VALUES('delete', old.rowid, old.title, old.abstract, old.summary);
			INSERT INTO papers_fts(rowid, title, abstract, summary) VALUES (new.rowid, new.title, new.abstract, new.summary);
		END`,
	}
	for _, stmt := range triggers {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS triggers: %w", err)
		}
	}
	s.ftsEnabled = true

	return nil
}

// Save upserts one processed paper.
func (s *Store) Save(ctx context.Context, p types.ProcessedPaper) error {
	authorsJSON, _ := json.Marshal(p.Authors)
	bulletsJSON, _ := json.Marshal(p.Summary.Bullets)
	embeddingJSON, _ := json.Marshal(p.Embedding.Vector)

	processedAt := p.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (
			id, identifier, title, authors, abstract, url, pdf_url,
			published_date, citations, venue, source, relevance_score,
			summary, bullets, importance, summary_provenance,
			embedding, embedding_provenance,
			audio_path, audio_url, audio_duration, audio_provenance,
			processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			identifier=excluded.identifier, title=excluded.title,
			authors=excluded.authors, abstract=excluded.abstract,
			url=excluded.url, pdf_url=excluded.pdf_url,
			published_date=excluded.published_date, citations=excluded.citations,
			venue=excluded.venue, source=excluded.source,
			relevance_score=excluded.relevance_score,
			summary=excluded.summary, bullets=excluded.bullets,
			importance=excluded.importance,
			summary_provenance=excluded.summary_provenance,
			embedding=excluded.embedding,
			embedding_provenance=excluded.embedding_provenance,
			audio_path=excluded.audio_path, audio_url=excluded.audio_url,
			audio_duration=excluded.audio_duration,
			audio_provenance=excluded.audio_provenance,
			processed_at=excluded.processed_at`,
		p.ID, p.Identifier, p.Title, string(authorsJSON), p.Abstract, p.URL, p.PDFURL,
		p.PublishedDate, p.Citations, p.Venue, p.Source, p.RelevanceScore,
		p.Summary.Text, string(bulletsJSON), p.Summary.Importance, p.Summary.Provenance,
		string(embeddingJSON), p.Embedding.Provenance,
		p.Audio.Path, p.Audio.URL, p.Audio.DurationSeconds, p.Audio.Provenance,
		processedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving paper %s: %w", p.ID, err)
	}
	return nil
}

// Load returns the processed paper with the given ID, or sql.ErrNoRows
// wrapped when it is not cached.
func (s *Store) Load(ctx context.Context, id string) (types.ProcessedPaper, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM papers p WHERE p.id = ?`, id)
	p, err := scanPaper(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.ProcessedPaper{}, fmt.Errorf("paper %s not cached: %w", id, err)
		}
		return types.ProcessedPaper{}, fmt.Errorf("loading paper %s: %w", id, err)
	}
	return p, nil
}

// LoadAll returns every cached paper, most recently processed first.
func (s *Store) LoadAll(ctx context.Context) ([]types.ProcessedPaper, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` FROM papers p ORDER BY p.processed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("loading papers: %w", err)
	}
	defer rows.Close()
	return collectPapers(rows)
}

// Delete removes the paper from the cache. Deleting an absent ID is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting paper %s: %w", id, err)
	}
	return nil
}

// SearchCached runs a full-text query over cached titles, abstracts, and
// summaries. maxResults of zero uses the store default. Without FTS5
// support in the driver the query degrades to LIKE matching, which loses
// ranking but keeps the cache searchable.
func (s *Store) SearchCached(ctx context.Context, query string, maxResults int) ([]types.ProcessedPaper, error) {
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	if !s.ftsEnabled {
		pattern := "%" + query + "%"
		rows, err := s.db.QueryContext(ctx,
			selectColumns+` FROM papers p
			 WHERE p.title LIKE ? OR p.abstract LIKE ? OR p.summary LIKE ?
			 ORDER BY p.processed_at DESC
			 LIMIT ?`, pattern, pattern, pattern, maxResults)
		if err != nil {
			return nil, fmt.Errorf("searching cache: %w", err)
		}
		defer rows.Close()
		return collectPapers(rows)
	}

	rows, err := s.db.QueryContext(ctx,
		selectColumns+` FROM papers_fts
		 JOIN papers p ON p.rowid = papers_fts.rowid
		 WHERE papers_fts MATCH ?
		 ORDER BY papers_fts.rank
		 LIMIT ?`, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching cache: %w", err)
	}
	defer rows.Close()
	return collectPapers(rows)
}

func collectPapers(rows *sql.Rows) ([]types.ProcessedPaper, error) {
	var papers []types.ProcessedPaper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// Stats summarizes the cache contents.
type Stats struct {
	PaperCount    int
	AvgImportance float64
	// BySource counts papers per fetch backend.
	BySource map[string]int
	// TopVenues lists the most frequent venues, descending, up to five.
	TopVenues []string
	// FallbackAudio counts papers whose audio came from the silent
	// fallback rather than a synthesis API.
	FallbackAudio int
}

// Stats computes aggregate figures over the cache.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{BySource: make(map[string]int)}

	err := s.db.QueryRowContext(ctx,
		`SELECT count(*), coalesce(avg(importance), 0) FROM papers`,
	).Scan(&st.PaperCount, &st.AvgImportance)
	if err != nil {
		return Stats{}, fmt.Errorf("counting papers: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source, count(*) FROM papers GROUP BY source`)
	if err != nil {
		return Stats{}, fmt.Errorf("grouping by source: %w", err)
	}
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			rows.Close()
			return Stats{}, fmt.Errorf("scanning source row: %w", err)
		}
		st.BySource[source] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT venue FROM papers WHERE venue != '' GROUP BY venue ORDER BY count(*) DESC, venue LIMIT 5`)
	if err != nil {
		return Stats{}, fmt.Errorf("ranking venues: %w", err)
	}
	for rows.Next() {
		var venue string
		if err := rows.Scan(&venue); err != nil {
			rows.Close()
			return Stats{}, fmt.Errorf("scanning venue row: %w", err)
		}
		st.TopVenues = append(st.TopVenues, venue)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM papers WHERE audio_provenance = 'fallback'`,
	).Scan(&st.FallbackAudio)
	if err != nil {
		return Stats{}, fmt.Errorf("counting fallback audio: %w", err)
	}

	return st, nil
}

const selectColumns = `SELECT p.id, p.identifier, p.title, p.authors, p.abstract,
	p.url, p.pdf_url, p.published_date, p.citations, p.venue, p.source,
	p.relevance_score, p.summary, p.bullets, p.importance,
	p.summary_provenance, p.embedding, p.embedding_provenance,
	p.audio_path, p.audio_url, p.audio_duration, p.audio_provenance,
	p.processed_at`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(row scanner) (types.ProcessedPaper, error) {
	var (
		p             types.ProcessedPaper
		authorsJSON   sql.NullString
		bulletsJSON   sql.NullString
		embeddingJSON sql.NullString
		processedAt   string
	)

	err := row.Scan(
		&p.ID, &p.Identifier, &p.Title, &authorsJSON, &p.Abstract,
		&p.URL, &p.PDFURL, &p.PublishedDate, &p.Citations, &p.Venue, &p.Source,
		&p.RelevanceScore, &p.Summary.Text, &bulletsJSON, &p.Summary.Importance,
		&p.Summary.Provenance, &embeddingJSON, &p.Embedding.Provenance,
		&p.Audio.Path, &p.Audio.URL, &p.Audio.DurationSeconds, &p.Audio.Provenance,
		&processedAt,
	)
	if err != nil {
		return types.ProcessedPaper{}, err
	}

	if authorsJSON.Valid {
		json.Unmarshal([]byte(authorsJSON.String), &p.Authors)
	}
	if bulletsJSON.Valid {
		json.Unmarshal([]byte(bulletsJSON.String), &p.Summary.Bullets)
	}
	if embeddingJSON.Valid {
		json.Unmarshal([]byte(embeddingJSON.String), &p.Embedding.Vector)
	}
	if t, err := time.Parse(time.RFC3339Nano, processedAt); err == nil {
		p.ProcessedAt = t
	}

	return p, nil
}
