package models

import "time"

// FrontierEntry is a discovered-but-not-yet-visited URL, together with
// the page it was discovered on. The referrer is used to resolve
// relative links and to reconstruct the discovered-link graph.
type FrontierEntry struct {
	URL      string // Absolute URL as discovered
	Referrer string // URL of the page the link was found on (the seed itself for seeds)
	Depth    int    // Link distance from the seed set
}

// FetchResult holds everything retrieved and extracted for a single URL.
// Fast mode populates HTML, Links and TextContent; full mode additionally
// fills the structured metadata fields (or the PDF equivalents).
type FetchResult struct {
	URL         string   // URL as requested
	FinalURL    string   // URL after redirects
	StatusCode  int
	HTML        string
	Links       []string // Raw hrefs as found on the page, pre-normalization
	TextContent string   // Visible text (readability text in full mode)
	Title       string
	Author      string
	Date        string
	Language    string
	Description string
	PageType    string
	Source      string // Site/publisher name if known
	Format      string // "html" or "pdf"
}

// VisitedPage is the record produced per successfully fetched and
// accepted page. The ordered collection of these records is the crawl's
// only persisted output.
type VisitedPage struct {
	URL           string    `json:"url"`
	NormalizedURL string    `json:"normalized_url"`
	Hostname      string    `json:"hostname"`
	Referrer      string    `json:"referrer"`
	Depth         int       `json:"depth"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Date          string    `json:"date"`
	Language      string    `json:"language"`
	Description   string    `json:"description"`
	PageType      string    `json:"pagetype"`
	Source        string    `json:"source"`
	Format        string    `json:"format"`
	RawText       string    `json:"raw_text"`
	HTML          string    `json:"html"`
	Links         []string  `json:"links"` // Outbound links, post-normalization
	Fingerprint   string    `json:"fingerprint"`
	FetchedAt     time.Time `json:"fetched_at"`
}
