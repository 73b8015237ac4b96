package config

import "time"

// Output format selectors for the result assembler.
const (
	OutputTable = "table"
	OutputDict  = "dict"
	// OutputDataframe is accepted as an alias of OutputTable for callers
	// coming from the original tooling's vocabulary.
	OutputDataframe = "dataframe"
)

// CrawlConfig holds the full configuration for a single crawl. It is
// constructed once per invocation (NewCrawlConfig + YAML/flag overrides),
// validated, and never mutated afterwards.
type CrawlConfig struct {
	// Seeds and budget
	SeedURLs   []string `yaml:"seed_urls"`
	VisitLimit int      `yaml:"visit_limit"` // Hard cap on pages fetched

	// URL-level filters, applied before a link is queued
	ExcludedURLTerms []string `yaml:"excluded_url_terms,omitempty"` // Substring blocklist on candidate URLs
	IgnoreURLs       []string `yaml:"ignore_urls,omitempty"`        // Exact (normalized) URL blocklist
	IgnoreDomains    []string `yaml:"ignore_domains,omitempty"`     // Host blocklist, suffix-matched
	SameSiteOnly     bool     `yaml:"same_site_only,omitempty"`     // Drop links whose host is external to the seed hosts

	// Content-level filters, applied after fetch
	RequiredKeywords []string `yaml:"required_keywords,omitempty"`
	ExcludedKeywords []string `yaml:"excluded_keywords,omitempty"`
	CaseSensitive    bool     `yaml:"case_sensitive,omitempty"`

	// Behavior
	BePolite bool   `yaml:"be_polite"` // Honor robots-exclusion rules per domain
	Full     bool   `yaml:"full"`      // Run structured extraction per page
	OutputAs string `yaml:"output_as,omitempty"`

	// Politeness and transport tuning
	UserAgent               string        `yaml:"user_agent,omitempty"`
	DelayPerHost            time.Duration `yaml:"delay_per_host,omitempty"`
	Workers                 int           `yaml:"workers,omitempty"`
	MaxRequestsPerHost      int           `yaml:"max_requests_per_host,omitempty"`
	MaxPageSizeBytes        int64         `yaml:"max_page_size_bytes,omitempty"`
	MaxDuration             time.Duration `yaml:"max_duration,omitempty"` // Wall-clock budget for the whole crawl (0 = unlimited)
	SemaphoreAcquireTimeout time.Duration `yaml:"semaphore_acquire_timeout,omitempty"`
	HTTPClientSettings      HTTPClientConfig `yaml:"http_client_settings,omitempty"`

	// Persistence (optional; empty StateDir selects the in-memory store)
	StateDir string `yaml:"state_dir,omitempty"`
	Resume   bool   `yaml:"resume,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP clients.
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"`
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"` // nil=default, true=force, false=disable
}

// NewCrawlConfig returns a CrawlConfig with the documented defaults:
// polite, full extraction, table output, the built-in exclusion lists,
// and a small visit budget. Callers overlay YAML and flag values on top.
func NewCrawlConfig() *CrawlConfig {
	return &CrawlConfig{
		VisitLimit:       5,
		ExcludedURLTerms: DefaultExcludedURLTerms(),
		IgnoreDomains:    DefaultIgnoreDomains(),
		BePolite:         true,
		Full:             true,
		OutputAs:         OutputTable,
		UserAgent:        DefaultUserAgent,
		Workers:          1,
	}
}
