package parse

import (
	"net"
	"net/url"
	"strings"
)

// Query parameters that only carry tracking state. They are stripped
// during normalization so the same page reached through different
// campaign links collapses to one visited-set key.
var trackingParams = map[string]struct{}{
	"gclid":   {},
	"fbclid":  {},
	"msclkid": {},
	"yclid":   {},
	"dclid":   {},
	"twclid":  {},
	"igshid":  {},
	"mc_cid":  {},
	"mc_eid":  {},
	"_hsenc":  {},
	"_hsmi":   {},
}

// NormalizeURL standardizes a URL for comparison and storage.
// It lowercases the scheme and host, removes default ports (80 for http,
// 443 for https), removes trailing slashes from paths (unless root "/"),
// ensures empty path becomes "/", removes fragments, and strips tracking
// query parameters (utm_* and click identifiers). Non-tracking query
// parameters are kept, re-encoded in sorted order.
// Idempotent: NormalizeURL of an already-normalized URL is a no-op.
// Does not modify the input *url.URL.
func NormalizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	// Work on a copy
	normalized := *u

	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)

	// Remove default ports
	host, port, err := net.SplitHostPort(normalized.Host)
	if err == nil { // Host included a port
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host
		}
	}

	// Handle path normalization
	if normalized.Path == "" {
		normalized.Path = "/"
	} else if len(normalized.Path) > 1 && strings.HasSuffix(normalized.Path, "/") {
		normalized.Path = normalized.Path[:len(normalized.Path)-1]
	}

	normalized.Fragment = ""
	normalized.RawQuery = stripTrackingParams(normalized.RawQuery)

	return normalized.String()
}

// stripTrackingParams removes tracking parameters from a raw query
// string and re-encodes the remainder in sorted key order.
func stripTrackingParams(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		// Unparseable query strings are kept verbatim; the key is still
		// stable, just not parameter-normalized.
		return rawQuery
	}
	for key := range values {
		if _, tracking := trackingParams[strings.ToLower(key)]; tracking {
			delete(values, key)
			continue
		}
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			delete(values, key)
		}
	}
	return values.Encode() // Encode sorts keys
}

// ParseAndNormalize parses a URL string using the stricter
// url.ParseRequestURI (requiring a scheme) and then normalizes it.
// Returns the normalized string, the parsed URL object, and any parse error.
func ParseAndNormalize(urlStr string) (string, *url.URL, error) {
	parsed, err := url.ParseRequestURI(urlStr)
	if err != nil {
		return "", nil, err
	}
	normalizedStr := NormalizeURL(parsed)
	return normalizedStr, parsed, nil
}
