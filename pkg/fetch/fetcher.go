package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"webcrawl/pkg/config"
	"webcrawl/pkg/extract"
	"webcrawl/pkg/models"
	"webcrawl/pkg/utils"
)

// Fetcher retrieves pages over HTTP. Every URL gets at most two
// attempts: the primary (browser-like) client, then one retry with the
// fallback low-level client for network, TLS and anti-bot failures.
// There is deliberately no backoff loop; the crawl has a fixed visit
// budget and must make forward progress regardless of per-page failures.
type Fetcher struct {
	primary      *http.Client
	fallback     *http.Client
	userAgent    string
	maxBodyBytes int64
	extractor    *extract.HTMLExtractor
	log          *logrus.Logger
}

// NewFetcher creates a Fetcher from the crawl configuration. The
// extractor may be nil when full-mode extraction is never requested.
func NewFetcher(cfg *config.CrawlConfig, extractor *extract.HTMLExtractor, log *logrus.Logger) *Fetcher {
	return &Fetcher{
		primary:      NewClient(cfg.HTTPClientSettings, log),
		fallback:     NewFallbackClient(cfg.HTTPClientSettings, log),
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxPageSizeBytes,
		extractor:    extractor,
		log:          log,
	}
}

// Fetch retrieves rawURL and returns its content. In fast mode the
// result carries raw HTML, visible text and scraped anchor hrefs; full
// mode additionally runs structured extraction. URLs whose path ends in
// .pdf (or whose response identifies as PDF) are routed to the PDF
// parser instead of HTML extraction.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, full bool) (*models.FetchResult, error) {
	resp, err := f.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	finalURL := resp.Request.URL
	reqLog := f.log.WithField("url", rawURL)
	if finalURL.String() != rawURL {
		reqLog = reqLog.WithField("final_url", finalURL.String())
		reqLog.Debug("URL redirected")
	}

	limitedReader := io.LimitReader(resp.Body, f.maxBodyBytes+1)
	body, readErr := io.ReadAll(limitedReader)
	if readErr != nil {
		return nil, fmt.Errorf("%w: reading body from '%s': %w", utils.ErrResponseBodyRead, finalURL, readErr)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("%w: page '%s' exceeds max size (%d bytes)", utils.ErrResponseBodyRead, finalURL, f.maxBodyBytes)
	}

	result := &models.FetchResult{
		URL:        rawURL,
		FinalURL:   finalURL.String(),
		StatusCode: resp.StatusCode,
		Format:     "html",
	}

	contentType := resp.Header.Get("Content-Type")
	if extract.IsPDFPath(finalURL) || extract.IsPDFContentType(contentType) {
		pdf := extract.PDF(body)
		result.Format = "pdf"
		result.PageType = "document"
		result.Title = pdf.Title
		result.Author = pdf.Author
		result.Date = pdf.Date
		result.TextContent = pdf.RawText
		result.Links = pdf.Links
		return result, nil
	}

	result.HTML = string(body)

	doc, parseErr := extract.ParseHTML(body)
	if parseErr != nil {
		// Malformed HTML falls back to raw content only; the page is
		// still a result, it just has no links or structured fields.
		reqLog.Debugf("HTML parse failed, keeping raw content only: %v", parseErr)
		return result, nil
	}
	result.Links = extract.Links(doc)
	result.TextContent = extract.VisibleText(doc)
	result.Title = extract.DocumentTitle(doc)

	if full && f.extractor != nil {
		page, extractErr := f.extractor.Extract(body, finalURL)
		if extractErr != nil {
			reqLog.Debugf("Structured extraction failed, keeping fast-mode fields: %v", extractErr)
			return result, nil
		}
		if page.Title != "" {
			result.Title = page.Title
		}
		if page.RawText != "" {
			result.TextContent = page.RawText
		}
		result.Author = page.Author
		result.Date = page.Date
		result.Language = page.Language
		result.Description = page.Description
		result.PageType = page.PageType
		result.Source = page.Source
	}

	return result, nil
}

// Get issues the HTTP GET with browser-like headers. On a network or
// TLS failure, any 5xx, or the statuses anti-bot challenges hide
// behind (403, 429), it retries exactly once with the fallback client.
// A successful call returns an open 2xx response; the caller owns Body.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	resp, err := f.attempt(ctx, f.primary, rawURL)
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if !retryable(err) {
		return nil, err
	}

	f.log.WithField("url", rawURL).Warnf("Primary fetch failed (%v), retrying with fallback client", err)
	resp, fallbackErr := f.attempt(ctx, f.fallback, rawURL)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrFetchFailed, fallbackErr)
	}
	return resp, nil
}

// attempt performs a single GET with one client and maps the status
// code to the sentinel error taxonomy. The response body is drained and
// closed on every error path.
func (f *Fetcher) attempt(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if reqErr != nil {
		return nil, fmt.Errorf("%w: '%s': %w", utils.ErrRequestCreation, rawURL, reqErr)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	statusCode := resp.StatusCode
	if statusCode >= 200 && statusCode < 300 {
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	switch {
	case statusCode >= 500:
		return nil, fmt.Errorf("%w: status %d %s", utils.ErrServerHTTPError, statusCode, resp.Status)
	case statusCode >= 400:
		return nil, fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, statusCode, resp.Status)
	default:
		return nil, fmt.Errorf("%w: status %d %s", utils.ErrOtherHTTPError, statusCode, resp.Status)
	}
}

// retryable reports whether an error from the primary attempt warrants
// the single fallback retry: network/TLS trouble, server errors, and
// the status codes anti-bot challenges hide behind.
func retryable(err error) bool {
	if errors.Is(err, utils.ErrRequestCreation) {
		return false
	}
	if errors.Is(err, utils.ErrServerHTTPError) {
		return true
	}
	if errors.Is(err, utils.ErrClientHTTPError) {
		msg := err.Error()
		return strings.Contains(msg, "status 403") || strings.Contains(msg, "status 429")
	}
	if errors.Is(err, utils.ErrOtherHTTPError) {
		return false
	}
	// Anything else is a transport-level failure (DNS, TCP, TLS).
	return true
}
