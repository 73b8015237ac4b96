package assemble

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"webcrawl/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	url TEXT PRIMARY KEY,
	normalized_url TEXT NOT NULL,
	hostname TEXT NOT NULL,
	referrer TEXT,
	depth INTEGER NOT NULL,
	title TEXT,
	author TEXT,
	date TEXT,
	language TEXT,
	description TEXT,
	pagetype TEXT,
	source TEXT,
	format TEXT NOT NULL,
	raw_text TEXT,
	html TEXT,
	fingerprint TEXT,
	fetched_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS links (
	page_url TEXT NOT NULL,
	target_url TEXT NOT NULL,
	PRIMARY KEY (page_url, target_url)
);
CREATE TABLE IF NOT EXISTS similarity (
	source_url TEXT NOT NULL,
	target_url TEXT NOT NULL,
	weight REAL NOT NULL,
	duplicate INTEGER NOT NULL,
	PRIMARY KEY (source_url, target_url)
);
CREATE INDEX IF NOT EXISTS idx_pages_hostname ON pages(hostname);
CREATE INDEX IF NOT EXISTS idx_pages_fingerprint ON pages(fingerprint);
`

// ExportSQLite writes pages and the similarity network to a SQLite
// database at path, for handoff to case-construction tooling. The
// export is additive: re-exporting into the same file upserts by URL.
func ExportSQLite(ctx context.Context, path string, pages []models.VisitedPage, edges []Edge) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening sqlite database %q: %w", path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	pageStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO pages
		(url, normalized_url, hostname, referrer, depth, title, author, date,
		 language, description, pagetype, source, format, raw_text, html,
		 fingerprint, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing page insert: %w", err)
	}
	defer pageStmt.Close()

	linkStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO links (page_url, target_url) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing link insert: %w", err)
	}
	defer linkStmt.Close()

	for i := range pages {
		page := &pages[i]
		_, err := pageStmt.ExecContext(ctx,
			page.URL, page.NormalizedURL, page.Hostname, page.Referrer,
			page.Depth, page.Title, page.Author, page.Date, page.Language,
			page.Description, page.PageType, page.Source, page.Format,
			page.RawText, page.HTML, page.Fingerprint,
			page.FetchedAt.Format("2006-01-02T15:04:05Z07:00"))
		if err != nil {
			return fmt.Errorf("inserting page %q: %w", page.URL, err)
		}
		for _, target := range page.Links {
			if strings.TrimSpace(target) == "" {
				continue
			}
			if _, err := linkStmt.ExecContext(ctx, page.URL, target); err != nil {
				return fmt.Errorf("inserting link %q -> %q: %w", page.URL, target, err)
			}
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO similarity (source_url, target_url, weight, duplicate)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing similarity insert: %w", err)
	}
	defer edgeStmt.Close()

	for _, edge := range edges {
		if _, err := edgeStmt.ExecContext(ctx, edge.Source, edge.Target, edge.Weight, edge.Duplicate); err != nil {
			return fmt.Errorf("inserting similarity edge %q -> %q: %w", edge.Source, edge.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}
