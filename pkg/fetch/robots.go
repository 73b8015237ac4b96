package fetch

import (
	"context"
	"io"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// maxRobotsBytes caps how much of a robots.txt file is read. 500 KiB
// matches the limit the major crawlers document; rules past the cap
// are ignored.
const maxRobotsBytes = 500 << 10

// RobotsHandler is the politeness gate. It fetches and caches robots.txt
// per host and answers allow/deny for candidate URLs. When politeness is
// disabled every URL is allowed without any robots.txt traffic.
//
// Failure policy: if robots.txt cannot be fetched or parsed the host is
// treated as fully allowed. The failure is cached (as nil) so the file
// is requested at most once per host per crawl.
type RobotsHandler struct {
	fetcher   *Fetcher
	limiter   *RateLimiter
	cache     map[string]*robotstxt.RobotsData // hostname -> parsed rules, nil = unavailable
	cacheMu   sync.Mutex
	bePolite  bool
	userAgent string
	log       *logrus.Entry
}

// NewRobotsHandler creates a RobotsHandler sharing the crawl's Fetcher
// and RateLimiter so robots.txt requests respect per-host delays too.
func NewRobotsHandler(fetcher *Fetcher, limiter *RateLimiter, bePolite bool, userAgent string, log *logrus.Entry) *RobotsHandler {
	return &RobotsHandler{
		fetcher:   fetcher,
		limiter:   limiter,
		cache:     make(map[string]*robotstxt.RobotsData),
		bePolite:  bePolite,
		userAgent: userAgent,
		log:       log,
	}
}

// IsAllowed reports whether the crawl may fetch targetURL. Disallowed
// URLs are skipped by the caller without issuing a page GET.
func (rh *RobotsHandler) IsAllowed(ctx context.Context, targetURL *url.URL) bool {
	if !rh.bePolite {
		return true
	}

	data := rh.rulesFor(ctx, targetURL)
	if data == nil {
		return true // no rules obtainable, assume allowed
	}
	return data.TestAgent(targetURL.RequestURI(), rh.userAgent)
}

// rulesFor returns the cached robots.txt rules for the URL's host,
// fetching them on first sight. Returns nil when the file is missing,
// unreachable or unparseable.
func (rh *RobotsHandler) rulesFor(ctx context.Context, targetURL *url.URL) *robotstxt.RobotsData {
	host := targetURL.Hostname()

	rh.cacheMu.Lock()
	data, cached := rh.cache[host]
	rh.cacheMu.Unlock()
	if cached {
		return data
	}

	robotsURL := &url.URL{Scheme: targetURL.Scheme, Host: targetURL.Host, Path: "/robots.txt"}
	if robotsURL.Scheme != "http" && robotsURL.Scheme != "https" {
		robotsURL.Scheme = "https"
	}
	hostLog := rh.log.WithFields(logrus.Fields{"host": host, "robots_url": robotsURL.String()})
	hostLog.Debug("Fetching robots.txt")

	if rh.limiter != nil {
		rh.limiter.Wait(host)
	}
	resp, err := rh.fetcher.Get(ctx, robotsURL.String())
	if rh.limiter != nil {
		rh.limiter.Touch(host)
	}
	if err != nil {
		hostLog.Debugf("robots.txt unavailable, allowing host: %v", err)
		return rh.store(host, nil)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if readErr != nil {
		hostLog.Warnf("Failed reading robots.txt body, allowing host: %v", readErr)
		return rh.store(host, nil)
	}

	parsed, parseErr := robotstxt.FromBytes(body)
	if parseErr != nil {
		hostLog.Warnf("Failed parsing robots.txt, allowing host: %v", parseErr)
		return rh.store(host, nil)
	}

	hostLog.Debug("Cached robots.txt rules")
	return rh.store(host, parsed)
}

func (rh *RobotsHandler) store(host string, data *robotstxt.RobotsData) *robotstxt.RobotsData {
	rh.cacheMu.Lock()
	rh.cache[host] = data
	rh.cacheMu.Unlock()
	return data
}
