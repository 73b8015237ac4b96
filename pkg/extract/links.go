package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses a page body into a goquery document.
func ParseHTML(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// Links returns the raw href values of every anchor in the document, in
// document order, with duplicates removed. Values are returned as
// written in the page; resolution against the page URL and filtering
// happen downstream.
func Links(doc *goquery.Document) []string {
	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || seen[href] {
			return
		}
		seen[href] = true
		links = append(links, href)
	})
	return links
}

// DocumentTitle returns the trimmed <title> text, if any.
func DocumentTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// VisibleText returns the page's rendered text with script and style
// content removed and whitespace collapsed.
func VisibleText(doc *goquery.Document) string {
	clone := doc.Selection.Clone()
	clone.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(clone.Text()), " ")
}
