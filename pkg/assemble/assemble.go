package assemble

import (
	"strings"

	"webcrawl/pkg/models"
)

// Columns is the fixed column order of the tabular crawl output. Case
// tooling downstream keys on these names; do not reorder.
var Columns = []string{
	"url", "hostname", "title", "raw_text", "html", "links",
	"fingerprint", "date", "author", "language", "pagetype",
	"description", "source", "format",
}

// Table is the row-oriented tabular packaging of a crawl's pages.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable packages pages as a table, preserving their order. The
// links column holds the page's outbound links space-joined.
func NewTable(pages []models.VisitedPage) *Table {
	table := &Table{Columns: Columns, Rows: make([][]string, 0, len(pages))}
	for i := range pages {
		page := &pages[i]
		table.Rows = append(table.Rows, []string{
			page.URL,
			page.Hostname,
			page.Title,
			page.RawText,
			page.HTML,
			strings.Join(page.Links, " "),
			page.Fingerprint,
			page.Date,
			page.Author,
			page.Language,
			page.PageType,
			page.Description,
			page.Source,
			page.Format,
		})
	}
	return table
}

// Dict packages pages as ordered records keyed by column name, with
// the links column kept as a list.
func Dict(pages []models.VisitedPage) []map[string]any {
	records := make([]map[string]any, 0, len(pages))
	for i := range pages {
		page := &pages[i]
		records = append(records, map[string]any{
			"url":         page.URL,
			"hostname":    page.Hostname,
			"title":       page.Title,
			"raw_text":    page.RawText,
			"html":        page.HTML,
			"links":       page.Links,
			"fingerprint": page.Fingerprint,
			"date":        page.Date,
			"author":      page.Author,
			"language":    page.Language,
			"pagetype":    page.PageType,
			"description": page.Description,
			"source":      page.Source,
			"format":      page.Format,
		})
	}
	return records
}
