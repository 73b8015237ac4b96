package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"
	"github.com/sirupsen/logrus"

	"webcrawl/pkg/utils"
)

// PageData is the structured output of full-mode extraction.
type PageData struct {
	Title       string
	Author      string
	Date        string // ISO date (YYYY-MM-DD) when determinable
	Language    string // ISO 639-1 code, empty when undetectable
	Description string
	PageType    string // og:type, e.g. "article", "website"
	Source      string // og:site_name or the page hostname
	RawText     string
}

// minTextForLanguageDetection keeps the detector away from stub pages
// whose few words produce unreliable guesses.
const minTextForLanguageDetection = 40

// HTMLExtractor performs full-mode extraction: readability for the main
// article content, meta tags for descriptive fields, statistical
// language detection over the extracted text. Construction is expensive
// (the language models load once); share one instance per crawl.
type HTMLExtractor struct {
	detector  lingua.LanguageDetector
	converter *md.Converter
	log       *logrus.Logger
}

// NewHTMLExtractor builds an extractor with a detector covering the
// languages common in OSINT source material.
func NewHTMLExtractor(log *logrus.Logger) *HTMLExtractor {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Portuguese,
			lingua.Italian,
			lingua.Dutch,
			lingua.Russian,
			lingua.Ukrainian,
			lingua.Arabic,
			lingua.Chinese,
			lingua.Japanese,
		).
		Build()

	return &HTMLExtractor{
		detector:  detector,
		converter: md.NewConverter("", true, nil),
		log:       log,
	}
}

// Extract runs full-mode extraction over the page body. It never fails
// on thin content; an error means the body could not be parsed at all.
func (e *HTMLExtractor) Extract(body []byte, pageURL *url.URL) (*PageData, error) {
	doc, err := ParseHTML(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrParsing, err)
	}

	data := &PageData{
		Title:       DocumentTitle(doc),
		Description: metaContent(doc, "description", "og:description"),
		Author:      metaContent(doc, "author", "article:author"),
		PageType:    metaContent(doc, "og:type"),
		Source:      metaContent(doc, "og:site_name"),
		Date:        isoDate(metaContent(doc, "article:published_time", "date")),
	}
	if data.Source == "" {
		data.Source = pageURL.Hostname()
	}

	article, readErr := readability.FromReader(bytes.NewReader(body), pageURL)
	if readErr == nil {
		if article.Title != "" {
			data.Title = article.Title
		}
		if article.Byline != "" {
			data.Author = article.Byline
		}
		if data.Description == "" {
			data.Description = article.Excerpt
		}
		if article.SiteName != "" {
			data.Source = article.SiteName
		}
		if article.PublishedTime != nil {
			data.Date = article.PublishedTime.Format("2006-01-02")
		}
		data.RawText = strings.Join(strings.Fields(article.TextContent), " ")
	} else {
		e.log.WithField("url", pageURL.String()).Debugf("Readability extraction failed: %v", readErr)
	}

	if data.RawText == "" {
		// Readability found no article body (nav pages, indexes).
		// Derive text from a markdown rendering of the whole page.
		if markdown, convErr := e.converter.ConvertString(string(body)); convErr == nil {
			data.RawText = strings.Join(strings.Fields(markdown), " ")
		} else {
			data.RawText = VisibleText(doc)
		}
	}

	if len(data.RawText) >= minTextForLanguageDetection {
		if lang, ok := e.detector.DetectLanguageOf(data.RawText); ok {
			data.Language = strings.ToLower(lang.IsoCode639_1().String())
		}
	}

	return data, nil
}

// metaContent returns the first non-empty content attribute among meta
// tags matching any of the given name/property values.
func metaContent(doc *goquery.Document, names ...string) string {
	for _, name := range names {
		selector := fmt.Sprintf(`meta[name=%q], meta[property=%q]`, name, name)
		content := strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
		if content != "" {
			return content
		}
	}
	return ""
}

// isoDate reduces a timestamp-ish meta value to its date part.
func isoDate(value string) string {
	if len(value) >= 10 {
		candidate := value[:10]
		if candidate[4] == '-' && candidate[7] == '-' {
			return candidate
		}
	}
	return value
}
