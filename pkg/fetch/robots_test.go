package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRobotsHandler(t *testing.T, bePolite bool) (*RobotsHandler, *Fetcher) {
	t.Helper()
	fetcher := newTestFetcher(t, nil)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	handler := NewRobotsHandler(fetcher, nil, bePolite, "testbot", logger.WithField("test", t.Name()))
	return handler, fetcher
}

func serverURL(t *testing.T, server *httptest.Server, path string) *url.URL {
	t.Helper()
	parsed, err := url.Parse(server.URL + path)
	require.NoError(t, err)
	return parsed
}

func TestRobotsDisallowedPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		fmt.Fprint(w, "page")
	}))
	defer server.Close()

	handler, _ := newTestRobotsHandler(t, true)
	assert.False(t, handler.IsAllowed(context.Background(), serverURL(t, server, "/private/page")))
	assert.True(t, handler.IsAllowed(context.Background(), serverURL(t, server, "/public/page")))
}

func TestRobotsCachedPerHost(t *testing.T) {
	var robotsRequests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsRequests.Add(1)
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
		}
	}))
	defer server.Close()

	handler, _ := newTestRobotsHandler(t, true)
	for i := 0; i < 5; i++ {
		handler.IsAllowed(context.Background(), serverURL(t, server, fmt.Sprintf("/page-%d", i)))
	}
	assert.Equal(t, int32(1), robotsRequests.Load(), "robots.txt fetched once per host")
}

func TestRobotsMissingFileAllowsEverything(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	handler, _ := newTestRobotsHandler(t, true)
	assert.True(t, handler.IsAllowed(context.Background(), serverURL(t, server, "/anything")))
}

func TestRobotsOversizedFileTruncated(t *testing.T) {
	// Rules past the read cap are ignored; rules before it still apply.
	padding := strings.Repeat("# filler comment line\n", (600<<10)/22)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			fmt.Fprint(w, padding)
			fmt.Fprint(w, "Disallow: /past-the-cap/\n")
		}
	}))
	defer server.Close()

	handler, _ := newTestRobotsHandler(t, true)
	assert.False(t, handler.IsAllowed(context.Background(), serverURL(t, server, "/private/page")))
	assert.True(t, handler.IsAllowed(context.Background(), serverURL(t, server, "/past-the-cap/page")))
}

func TestRobotsUnreachableHostAllows(t *testing.T) {
	handler, _ := newTestRobotsHandler(t, true)
	target, err := url.Parse("http://127.0.0.1:1/page")
	require.NoError(t, err)
	assert.True(t, handler.IsAllowed(context.Background(), target), "fetch failure defaults to allowed")
}

func TestRobotsImpoliteShortCircuits(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, "User-agent: *\nDisallow: /\n")
	}))
	defer server.Close()

	handler, _ := newTestRobotsHandler(t, false)
	assert.True(t, handler.IsAllowed(context.Background(), serverURL(t, server, "/private")))
	assert.Equal(t, int32(0), requests.Load(), "impolite mode never requests robots.txt")
}

func TestRobotsAgentSpecificRules(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: testbot\nDisallow: /\n\nUser-agent: *\nDisallow:\n")
		}
	}))
	defer server.Close()

	handler, _ := newTestRobotsHandler(t, true)
	assert.False(t, handler.IsAllowed(context.Background(), serverURL(t, server, "/page")))
}
