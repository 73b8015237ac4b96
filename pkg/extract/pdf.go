package extract

import (
	"net/url"
	"regexp"
	"strings"
)

// PDFData holds what can be recovered from a PDF without a full
// object-stream parser: Info-dictionary / XMP metadata, embedded link
// annotations and text drawn with uncompressed Tj operators.
type PDFData struct {
	Title   string
	Author  string
	Date    string
	RawText string
	Links   []string
}

var (
	pdfPathPattern = regexp.MustCompile(`(?i)\.pdf(?:\?.*)?$`)

	// Info dictionary entries, literal-string form. The alternation
	// consumes backslash escapes so \( and \) inside a string do not
	// terminate the match early.
	pdfTitlePattern  = regexp.MustCompile(`/Title\s*\(((?:[^()\\]|\\.)+)\)`)
	pdfAuthorPattern = regexp.MustCompile(`/Author\s*\(((?:[^()\\]|\\.)+)\)`)
	pdfDatePattern   = regexp.MustCompile(`/CreationDate\s*\(((?:[^()\\]|\\.)+)\)`)

	// XMP equivalents, used when the Info dictionary is absent.
	xmpTitlePattern  = regexp.MustCompile(`<dc:title[^>]*>.*?<rdf:li[^>]*>([^<]+)</rdf:li>`)
	xmpAuthorPattern = regexp.MustCompile(`<dc:creator[^>]*>.*?<rdf:li[^>]*>([^<]+)</rdf:li>`)
	xmpDatePattern   = regexp.MustCompile(`xmp:CreateDate>([^<]+)<`)

	pdfURIPattern  = regexp.MustCompile(`/URI\s*\(((?:[^()\\]|\\.)+)\)`)
	pdfTextPattern = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*Tj`)
)

// IsPDFPath reports whether the URL's path names a PDF document.
func IsPDFPath(u *url.URL) bool {
	return pdfPathPattern.MatchString(u.Path)
}

// IsPDFContentType reports whether a Content-Type header identifies a
// PDF response.
func IsPDFContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/pdf")
}

// PDF extracts metadata, links and visible text from raw PDF bytes.
// Compressed object streams are opaque to this parser, so fields may
// come back empty; callers treat every field as best-effort.
func PDF(data []byte) *PDFData {
	content := string(data)

	result := &PDFData{
		Title:  firstMatch(content, pdfTitlePattern, xmpTitlePattern),
		Author: firstMatch(content, pdfAuthorPattern, xmpAuthorPattern),
		Date:   pdfDate(firstMatch(content, pdfDatePattern, xmpDatePattern)),
	}

	seen := make(map[string]bool)
	for _, match := range pdfURIPattern.FindAllStringSubmatch(content, -1) {
		link := decodePDFString(match[1])
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		result.Links = append(result.Links, link)
	}

	var fragments []string
	for _, match := range pdfTextPattern.FindAllStringSubmatch(content, -1) {
		if text := decodePDFString(match[1]); text != "" {
			fragments = append(fragments, text)
		}
	}
	result.RawText = strings.Join(strings.Fields(strings.Join(fragments, " ")), " ")

	return result
}

func firstMatch(content string, patterns ...*regexp.Regexp) string {
	for _, pattern := range patterns {
		if match := pattern.FindStringSubmatch(content); len(match) > 1 && match[1] != "" {
			return decodePDFString(match[1])
		}
	}
	return ""
}

// pdfDate converts a D:YYYYMMDDHHmmSS value to YYYY-MM-DD. Values in
// any other shape pass through unchanged.
func pdfDate(value string) string {
	trimmed := strings.TrimPrefix(value, "D:")
	if len(trimmed) >= 8 && isDigits(trimmed[:8]) {
		return trimmed[:4] + "-" + trimmed[4:6] + "-" + trimmed[6:8]
	}
	if len(value) >= 10 && value[4] == '-' && value[7] == '-' {
		return value[:10]
	}
	return value
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// decodePDFString undoes the escape sequences of PDF literal strings.
func decodePDFString(s string) string {
	replacer := strings.NewReplacer(
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
	)
	return strings.TrimSpace(replacer.Replace(s))
}
