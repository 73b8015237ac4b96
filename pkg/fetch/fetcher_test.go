package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcrawl/pkg/config"
	"webcrawl/pkg/utils"
)

func newTestFetcher(t *testing.T, mutate func(*config.CrawlConfig)) *Fetcher {
	t.Helper()
	cfg := config.NewCrawlConfig()
	cfg.SeedURLs = []string{"https://example.com/"}
	if mutate != nil {
		mutate(cfg)
	}
	_, err := cfg.Validate()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewFetcher(cfg, nil, logger)
}

func TestFetchFastMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, `<html><head><title>Port Index</title></head>
			<body><script>ignored()</script><p>harbor listings</p>
			<a href="/a">A</a> <a href="/b">B</a> <a href="/a">dup</a></body></html>`)
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, nil)
	result, err := fetcher.Fetch(context.Background(), server.URL+"/", false)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "Port Index", result.Title)
	assert.Equal(t, []string{"/a", "/b"}, result.Links, "hrefs deduplicated, document order")
	assert.Contains(t, result.TextContent, "harbor listings")
	assert.NotContains(t, result.TextContent, "ignored", "script content is not visible text")
	assert.Equal(t, "html", result.Format)
	assert.NotEmpty(t, result.HTML)
}

func TestFetchClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, nil)
	_, err := fetcher.Fetch(context.Background(), server.URL+"/missing", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrClientHTTPError))
	assert.Equal(t, "HTTP_404", utils.CategorizeError(err))
}

func TestFetchFallbackRetryOn503(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `<html><title>Recovered</title><body>ok</body></html>`)
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, nil)
	result, err := fetcher.Fetch(context.Background(), server.URL+"/", false)
	require.NoError(t, err)
	assert.Equal(t, "Recovered", result.Title)
	assert.Equal(t, int32(2), attempts.Load(), "exactly one fallback retry")
}

func TestFetchNoSecondRetry(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, nil)
	_, err := fetcher.Fetch(context.Background(), server.URL+"/", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrFetchFailed))
	assert.Equal(t, int32(2), attempts.Load(), "primary attempt plus one fallback, nothing more")
}

func TestFetchNoRetryOn404(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, nil)
	_, err := fetcher.Fetch(context.Background(), server.URL+"/", false)
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load(), "plain 404 is final")
}

func TestFetchFallbackRetryOn403(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `<html><body>ok</body></html>`)
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, nil)
	result, err := fetcher.Fetch(context.Background(), server.URL+"/", false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestFetchRejectsOversizedPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 4096))
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, func(cfg *config.CrawlConfig) {
		cfg.MaxPageSizeBytes = 1024
	})
	_, err := fetcher.Fetch(context.Background(), server.URL+"/", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrResponseBodyRead))
}

func TestFetchRoutesPDFByPath(t *testing.T) {
	pdf := "%PDF-1.4\n" +
		"1 0 obj << /Title (Annual Report) /Author (Jane Doe) /CreationDate (D:20240115120000Z) >> endobj\n" +
		"2 0 obj << /Type /Annot /A << /URI (https://example.com/linked) >> >> endobj\n" +
		"BT (Quarterly shipping figures) Tj ET\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, pdf)
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, nil)
	result, err := fetcher.Fetch(context.Background(), server.URL+"/report.pdf", true)
	require.NoError(t, err)

	assert.Equal(t, "pdf", result.Format)
	assert.Equal(t, "Annual Report", result.Title)
	assert.Equal(t, "Jane Doe", result.Author)
	assert.Equal(t, "2024-01-15", result.Date)
	assert.Equal(t, []string{"https://example.com/linked"}, result.Links)
	assert.Contains(t, result.TextContent, "Quarterly shipping figures")
	assert.Empty(t, result.HTML, "PDF responses carry no HTML")
}

func TestFetchContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	fetcher := newTestFetcher(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fetcher.Fetch(ctx, server.URL+"/", false)
	assert.Error(t, err)
}
