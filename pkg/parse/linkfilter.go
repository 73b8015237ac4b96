package parse

import (
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"webcrawl/pkg/config"
)

// Link is a discovered link that survived URL-level filtering.
type Link struct {
	URL        string // Absolute URL, as resolved against the referrer
	Normalized string // Visited-set key for the URL
	Host       string
	External   bool // Host is outside the seed host set
}

// LinkFilter canonicalizes raw hrefs against their referrer page and
// applies the URL-level exclusion rules: scheme gate, domain blocklist,
// exact-URL blocklist and URL-term blocklist. Content-level filters
// (the keyword gate) are deliberately not applied here; they run only
// after fetch.
type LinkFilter struct {
	seedHosts     map[string]bool
	ignoreDomains []string
	ignoreURLs    map[string]bool // keyed by normalized URL
	excludedTerms []string
	sameSiteOnly  bool
	caseSensitive bool
	log           *logrus.Entry
}

// NewLinkFilter builds a LinkFilter from the crawl configuration. Seed
// URLs must already be validated (config.Validate).
func NewLinkFilter(cfg *config.CrawlConfig, log *logrus.Entry) *LinkFilter {
	f := &LinkFilter{
		seedHosts:     make(map[string]bool, len(cfg.SeedURLs)),
		ignoreDomains: make([]string, 0, len(cfg.IgnoreDomains)),
		ignoreURLs:    make(map[string]bool, len(cfg.IgnoreURLs)),
		excludedTerms: cfg.ExcludedURLTerms,
		sameSiteOnly:  cfg.SameSiteOnly,
		caseSensitive: cfg.CaseSensitive,
		log:           log,
	}
	for _, seed := range cfg.SeedURLs {
		if parsed, err := url.Parse(seed); err == nil {
			f.seedHosts[strings.ToLower(parsed.Hostname())] = true
		}
	}
	for _, domain := range cfg.IgnoreDomains {
		f.ignoreDomains = append(f.ignoreDomains, strings.ToLower(strings.TrimSpace(domain)))
	}
	for _, raw := range cfg.IgnoreURLs {
		if normalized, _, err := ParseAndNormalize(config.EnsureScheme(raw)); err == nil {
			f.ignoreURLs[normalized] = true
		} else {
			log.Warnf("Ignoring unparseable ignore_urls entry %q: %v", raw, err)
		}
	}
	return f
}

// Apply resolves rawLink against the referrer URL and runs the URL-level
// filters. Returns nil if the link should not be queued.
func (f *LinkFilter) Apply(rawLink string, referrer *url.URL) *Link {
	trimmed := strings.TrimSpace(rawLink)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil // Empty and fragment-only links point back at the referrer
	}

	resolved, err := referrer.Parse(trimmed)
	if err != nil {
		f.log.Debugf("Dropping unparseable link %q found on %s: %v", rawLink, referrer, err)
		return nil
	}

	// Scheme gate: mailto:, javascript:, tel:, ftp: and friends
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}

	host := strings.ToLower(resolved.Hostname())
	if host == "" {
		return nil
	}

	for _, domain := range f.ignoreDomains {
		if domain == "" {
			continue
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return nil
		}
	}

	absolute := resolved.String()
	if f.containsExcludedTerm(absolute) {
		return nil
	}

	normalized := NormalizeURL(resolved)
	if f.ignoreURLs[normalized] {
		return nil
	}

	external := !f.isSeedHost(host)
	if f.sameSiteOnly && external {
		return nil
	}

	return &Link{
		URL:        absolute,
		Normalized: normalized,
		Host:       host,
		External:   external,
	}
}

// containsExcludedTerm reports whether the URL contains any blocked
// substring. Matching follows the crawl's case-sensitivity setting.
func (f *LinkFilter) containsExcludedTerm(absolute string) bool {
	candidate := absolute
	if !f.caseSensitive {
		candidate = strings.ToLower(candidate)
	}
	for _, term := range f.excludedTerms {
		if term == "" {
			continue
		}
		if !f.caseSensitive {
			term = strings.ToLower(term)
		}
		if strings.Contains(candidate, term) {
			return true
		}
	}
	return false
}

// isSeedHost reports whether host belongs to the seed host set, either
// exactly or as a subdomain of a seed host.
func (f *LinkFilter) isSeedHost(host string) bool {
	if f.seedHosts[host] {
		return true
	}
	for seedHost := range f.seedHosts {
		if strings.HasSuffix(host, "."+seedHost) {
			return true
		}
	}
	return false
}
