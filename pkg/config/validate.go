package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"webcrawl/pkg/utils"
)

// Validate checks the CrawlConfig, applies defaults for tunables, and
// returns collected warnings plus any fatal error. Configuration errors
// fail here, at crawl start, never mid-traversal. Modifies the receiver
// in place to apply defaults.
func (c *CrawlConfig) Validate() (warnings []string, err error) {
	// Required: seeds
	if len(c.SeedURLs) == 0 {
		return nil, fmt.Errorf("%w: no seed_urls provided", utils.ErrConfigValidation)
	}
	for i, seed := range c.SeedURLs {
		fixed := EnsureScheme(seed)
		parsed, parseErr := url.ParseRequestURI(fixed)
		if parseErr != nil || parsed.Hostname() == "" {
			return nil, fmt.Errorf("%w: seed_urls[%d] %q is not a valid URL", utils.ErrConfigValidation, i, seed)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return nil, fmt.Errorf("%w: seed_urls[%d] %q has unsupported scheme %q", utils.ErrConfigValidation, i, seed, parsed.Scheme)
		}
		c.SeedURLs[i] = fixed
	}

	// VisitLimit
	if c.VisitLimit <= 0 {
		return nil, fmt.Errorf("%w: visit_limit must be positive, got %d", utils.ErrConfigValidation, c.VisitLimit)
	}

	// OutputAs
	switch c.OutputAs {
	case "":
		c.OutputAs = OutputTable
	case OutputTable, OutputDict:
	case OutputDataframe:
		c.OutputAs = OutputTable
	default:
		return nil, fmt.Errorf("%w: output_as must be %q or %q, got %q", utils.ErrConfigValidation, OutputTable, OutputDict, c.OutputAs)
	}

	// Resume without a state dir cannot work
	if c.Resume && c.StateDir == "" {
		return nil, fmt.Errorf("%w: resume requires state_dir", utils.ErrConfigValidation)
	}

	// Workers
	if c.Workers <= 0 {
		warnings = append(warnings, "workers should be > 0, defaulting to 1 (sequential crawl)")
		c.Workers = 1
	}

	// MaxRequestsPerHost
	if c.MaxRequestsPerHost <= 0 {
		c.MaxRequestsPerHost = 1
	}

	// UserAgent
	if c.UserAgent == "" {
		warnings = append(warnings, "user_agent is empty, using built-in browser user agent")
		c.UserAgent = DefaultUserAgent
	}

	// DelayPerHost
	if c.DelayPerHost < 0 {
		warnings = append(warnings, "delay_per_host cannot be negative, disabling delay")
		c.DelayPerHost = 0
	}

	// MaxPageSizeBytes
	if c.MaxPageSizeBytes <= 0 {
		c.MaxPageSizeBytes = 10 << 20 // 10MB
	}

	// MaxDuration
	if c.MaxDuration < 0 {
		warnings = append(warnings, "max_duration cannot be negative, disabling wall-clock budget")
		c.MaxDuration = 0
	}

	// SemaphoreAcquireTimeout
	if c.SemaphoreAcquireTimeout <= 0 {
		c.SemaphoreAcquireTimeout = 30 * time.Second
	}

	c.validateHTTPClientSettings()

	return warnings, nil
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *CrawlConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 45 * time.Second
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 2
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}

// EnsureScheme prepends https:// to a URL that lacks a scheme. Seed URLs
// are commonly pasted without one.
func EnsureScheme(rawURL string) string {
	trimmed := strings.TrimSpace(strings.Trim(rawURL, `'"`))
	if trimmed == "" {
		return trimmed
	}
	if strings.Contains(trimmed, "://") {
		return trimmed
	}
	return "https://" + trimmed
}
