package assemble

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcrawl/pkg/models"
)

func samplePages() []models.VisitedPage {
	fetched := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return []models.VisitedPage{
		{
			URL:           "https://example.com/",
			NormalizedURL: "https://example.com/",
			Hostname:      "example.com",
			Depth:         0,
			Title:         "Root",
			RawText:       "root text",
			HTML:          "<html>root</html>",
			Links:         []string{"https://example.com/a", "https://example.com/b"},
			Fingerprint:   "fp-root",
			Format:        "html",
			Language:      "en",
			FetchedAt:     fetched,
		},
		{
			URL:           "https://example.com/a",
			NormalizedURL: "https://example.com/a",
			Hostname:      "example.com",
			Depth:         1,
			Title:         "A",
			RawText:       "a text",
			Links:         []string{"https://example.com/a", "https://example.com/b"},
			Fingerprint:   "fp-a",
			Format:        "html",
			FetchedAt:     fetched,
		},
		{
			URL:           "https://example.com/b",
			NormalizedURL: "https://example.com/b",
			Hostname:      "example.com",
			Depth:         1,
			Title:         "B",
			RawText:       "a text",
			Links:         []string{"https://example.com/elsewhere"},
			Fingerprint:   "fp-a",
			Format:        "html",
			FetchedAt:     fetched,
		},
	}
}

func TestNewTable(t *testing.T) {
	table := NewTable(samplePages())

	assert.Equal(t, Columns, table.Columns)
	require.Len(t, table.Rows, 3)
	for i, row := range table.Rows {
		assert.Len(t, row, len(Columns), "row %d width matches the header", i)
	}

	assert.Equal(t, "https://example.com/", table.Rows[0][0])
	assert.Equal(t, "Root", table.Rows[0][2])
	assert.Equal(t, "https://example.com/a https://example.com/b", table.Rows[0][5], "links are space-joined")
}

func TestDict(t *testing.T) {
	records := Dict(samplePages())

	require.Len(t, records, 3)
	assert.Equal(t, "https://example.com/", records[0]["url"])
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, records[0]["links"])
	for _, column := range Columns {
		_, present := records[0][column]
		assert.True(t, present, "record carries column %q", column)
	}
}

func TestSimilarityNetworkJaccard(t *testing.T) {
	pages := samplePages()
	edges := SimilarityNetwork(pages, 0.5)

	// Pages 0 and 1 share both links (Jaccard 1.0). Pages 1 and 2 share
	// a fingerprint, so they connect as duplicates despite no overlap.
	require.Len(t, edges, 2)

	assert.Equal(t, "https://example.com/", edges[0].Source)
	assert.Equal(t, "https://example.com/a", edges[0].Target)
	assert.InDelta(t, 1.0, edges[0].Weight, 1e-9)
	assert.False(t, edges[0].Duplicate)

	assert.Equal(t, "https://example.com/a", edges[1].Source)
	assert.Equal(t, "https://example.com/b", edges[1].Target)
	assert.True(t, edges[1].Duplicate)
}

func TestSimilarityNetworkThreshold(t *testing.T) {
	pages := samplePages()[:2]
	assert.Len(t, SimilarityNetwork(pages, 1.0), 1)
	pages[1].Links = []string{"https://example.com/a"}
	assert.Empty(t, SimilarityNetwork(pages, 0.9), "overlap of 0.5 stays under a 0.9 threshold")
}

func TestSimilarityNetworkEmptyPages(t *testing.T) {
	assert.Empty(t, SimilarityNetwork(nil, 0.5))
	assert.Empty(t, SimilarityNetwork([]models.VisitedPage{{URL: "https://solo.test/"}}, 0.5))
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, samplePages()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var decoded models.VisitedPage
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	assert.Equal(t, "https://example.com/", decoded.URL)
	assert.Equal(t, "fp-root", decoded.Fingerprint)
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, samplePages()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4, "header plus one line per page")
	assert.Equal(t, strings.Join(Columns, "\t"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "https://example.com/\t"))
}

func TestExportSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawl.db")
	pages := samplePages()
	edges := SimilarityNetwork(pages, 0.5)

	require.NoError(t, ExportSQLite(context.Background(), path, pages, edges))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var pageCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM pages").Scan(&pageCount))
	assert.Equal(t, 3, pageCount)

	var linkCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM links").Scan(&linkCount))
	assert.Equal(t, 5, linkCount)

	var edgeCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM similarity").Scan(&edgeCount))
	assert.Equal(t, len(edges), edgeCount)

	var title string
	require.NoError(t, db.QueryRow("SELECT title FROM pages WHERE url = ?", "https://example.com/").Scan(&title))
	assert.Equal(t, "Root", title)

	// Re-export into the same file upserts instead of failing.
	require.NoError(t, ExportSQLite(context.Background(), path, pages, edges))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM pages").Scan(&pageCount))
	assert.Equal(t, 3, pageCount)
}
