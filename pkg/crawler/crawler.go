package crawler

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"webcrawl/pkg/config"
	"webcrawl/pkg/extract"
	"webcrawl/pkg/fetch"
	"webcrawl/pkg/keyword"
	"webcrawl/pkg/models"
	"webcrawl/pkg/parse"
	"webcrawl/pkg/queue"
	"webcrawl/pkg/storage"
	"webcrawl/pkg/utils"
)

// TerminationReason records why a crawl stopped.
type TerminationReason string

const (
	// TerminationDrained: the frontier emptied before the visit budget.
	TerminationDrained TerminationReason = "drained"
	// TerminationLimitReached: the visit budget ran out first.
	TerminationLimitReached TerminationReason = "limit_reached"
	// TerminationCancelled: the context was cancelled or the wall-clock
	// budget expired.
	TerminationCancelled TerminationReason = "cancelled"
)

// Result is the outcome of one crawl.
type Result struct {
	CrawlID     string
	Pages       []models.VisitedPage
	Termination TerminationReason
	Attempts    int // fetch attempts issued (robots.txt requests excluded)
	Duration    time.Duration
}

// Crawler owns the frontier, the visited set and the visit budget, and
// drives URLs through the fetch/extract/filter pipeline. One Crawler
// runs one crawl.
type Crawler struct {
	cfg      *config.CrawlConfig
	crawlID  string
	log      *logrus.Entry
	fetcher  *fetch.Fetcher
	robots   *fetch.RobotsHandler
	limiter  *fetch.RateLimiter
	hostSems *fetch.HostSemaphorePool
	filter   *parse.LinkFilter
	gate     *keyword.Gate
	store    storage.VisitedStore
	frontier *queue.Frontier
	pending  sync.WaitGroup

	mu       sync.Mutex
	attempts int
	limitHit bool
	pages    []models.VisitedPage
}

// NewCrawler wires a Crawler from a validated configuration. With a
// state directory configured the visited set persists in BadgerDB so a
// later run with resume enabled skips already-claimed URLs; otherwise
// the visited set is in-memory and dies with the crawl.
func NewCrawler(cfg *config.CrawlConfig, logger *logrus.Logger) (*Crawler, error) {
	crawlID := uuid.NewString()
	crawlLog := logger.WithField("crawl_id", crawlID)

	var extractor *extract.HTMLExtractor
	if cfg.Full {
		extractor = extract.NewHTMLExtractor(logger)
	}
	fetcher := fetch.NewFetcher(cfg, extractor, logger)
	limiter := fetch.NewRateLimiter(cfg.DelayPerHost, logger)

	var store storage.VisitedStore
	if cfg.StateDir != "" {
		label := crawlLabel(cfg.SeedURLs)
		badgerStore, err := storage.NewBadgerStore(cfg.StateDir, label, cfg.Resume, crawlLog.WithField("component", "storage"))
		if err != nil {
			return nil, err
		}
		store = badgerStore
	} else {
		store = storage.NewMemoryStore()
	}

	return &Crawler{
		cfg:      cfg,
		crawlID:  crawlID,
		log:      crawlLog,
		fetcher:  fetcher,
		robots:   fetch.NewRobotsHandler(fetcher, limiter, cfg.BePolite, cfg.UserAgent, crawlLog.WithField("component", "robots")),
		limiter:  limiter,
		hostSems: fetch.NewHostSemaphorePool(cfg.MaxRequestsPerHost, crawlLog.WithField("component", "hostsem")),
		filter:   parse.NewLinkFilter(cfg, crawlLog.WithField("component", "linkfilter")),
		gate:     keyword.NewGate(cfg.RequiredKeywords, cfg.ExcludedKeywords, cfg.CaseSensitive),
		store:    store,
		frontier: queue.NewFrontier(logger),
	}, nil
}

// crawlLabel derives the state-directory label from the first seed host.
func crawlLabel(seeds []string) string {
	for _, seed := range seeds {
		if parsed, err := url.Parse(seed); err == nil && parsed.Hostname() != "" {
			return parsed.Hostname()
		}
	}
	return "crawl"
}

// Run executes the crawl to completion and returns the visited pages in
// discovery order. Per-page failures are absorbed and logged; the
// returned error covers only setup-level problems.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if c.cfg.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.MaxDuration)
		defer cancel()
	}
	crawlCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.log.WithFields(logrus.Fields{
		"seeds":       len(c.cfg.SeedURLs),
		"visit_limit": c.cfg.VisitLimit,
		"workers":     c.cfg.Workers,
		"full":        c.cfg.Full,
	}).Info("Starting crawl")

	seeded := 0
	for _, seed := range c.cfg.SeedURLs {
		normalized, _, err := parse.ParseAndNormalize(seed)
		if err != nil {
			c.log.Warnf("Skipping unparseable seed %q: %v", seed, err)
			continue
		}
		added, markErr := c.store.MarkVisited(normalized)
		if markErr != nil {
			c.log.Errorf("Visited store error for seed %q: %v", seed, markErr)
			continue
		}
		if !added {
			c.log.Debugf("Seed already claimed, skipping: %s", seed)
			continue
		}
		c.pending.Add(1)
		if !c.frontier.Add(&models.FrontierEntry{URL: seed, Referrer: seed, Depth: 0}) {
			c.pending.Done()
			continue
		}
		seeded++
	}
	c.log.Debugf("Seeded frontier with %d URLs", seeded)

	// Close the frontier when all queued work is done or the crawl
	// context ends, whichever happens first. Workers drain remaining
	// entries quickly after cancellation (process is a no-op then).
	go func() {
		c.pending.Wait()
		c.frontier.Close()
	}()
	go func() {
		<-crawlCtx.Done()
		c.frontier.Close()
	}()

	var workers sync.WaitGroup
	for i := 0; i < c.cfg.Workers; i++ {
		workers.Add(1)
		workerLog := c.log.WithField("worker_id", i)
		go func() {
			defer workers.Done()
			for {
				entry, ok := c.frontier.Pop()
				if !ok {
					return
				}
				c.process(crawlCtx, entry, workerLog)
				c.pending.Done()
			}
		}()
	}
	workers.Wait()

	c.mu.Lock()
	result := &Result{
		CrawlID:     c.crawlID,
		Pages:       c.pages,
		Attempts:    c.attempts,
		Duration:    time.Since(start),
		Termination: TerminationDrained,
	}
	limitHit := c.limitHit
	c.mu.Unlock()

	switch {
	case limitHit:
		result.Termination = TerminationLimitReached
	case ctx.Err() != nil:
		result.Termination = TerminationCancelled
	}

	c.log.WithFields(logrus.Fields{
		"pages":       len(result.Pages),
		"attempts":    result.Attempts,
		"termination": result.Termination,
		"duration":    result.Duration,
	}).Info("Crawl finished")
	return result, nil
}

// Close releases the visited store.
func (c *Crawler) Close() error {
	return c.store.Close()
}

// process runs one frontier entry through the pipeline: robots gate,
// budget reservation, fetch, keyword gate, link expansion. Every
// failure is absorbed here.
func (c *Crawler) process(ctx context.Context, entry *models.FrontierEntry, workerLog *logrus.Entry) {
	if ctx.Err() != nil {
		return
	}

	normalized, parsedURL, err := parse.ParseAndNormalize(entry.URL)
	if err != nil {
		workerLog.Warnf("Dropping unparseable frontier entry %q: %v", entry.URL, err)
		return
	}
	entryLog := workerLog.WithFields(logrus.Fields{"url": entry.URL, "depth": entry.Depth})

	if !c.robots.IsAllowed(ctx, parsedURL) {
		// Skipped permanently; no GET was issued, so the visit budget
		// is untouched.
		entryLog.Debug("Disallowed by robots.txt, skipping")
		return
	}

	if !c.reserveFetch() {
		entryLog.Debug("Visit limit reached, dropping entry")
		return
	}

	host := parsedURL.Hostname()
	if c.cfg.Workers > 1 {
		acqCtx, acqCancel := context.WithTimeout(ctx, c.cfg.SemaphoreAcquireTimeout)
		acqErr := c.hostSems.Acquire(acqCtx, host)
		acqCancel()
		if acqErr != nil {
			entryLog.Warnf("Could not acquire host slot for %s: %v", host, acqErr)
			return
		}
		defer c.hostSems.Release(host)
	}
	c.limiter.Wait(host)
	result, fetchErr := c.fetcher.Fetch(ctx, entry.URL, c.cfg.Full)
	c.limiter.Touch(host)

	if fetchErr != nil {
		entryLog.WithField("category", utils.CategorizeError(fetchErr)).Warnf("Fetch failed: %v", fetchErr)
		return
	}
	entryLog.WithField("status", result.StatusCode).Debug("Fetched page")

	finalParsed, parseErr := url.Parse(result.FinalURL)
	if parseErr != nil {
		finalParsed = parsedURL
	}

	outLinks, expansion := c.expandLinks(result.Links, finalParsed, entry.Depth)

	accepted := c.gate.Accept(result.Title, result.TextContent)
	if accepted {
		page := models.VisitedPage{
			URL:           entry.URL,
			NormalizedURL: normalized,
			Hostname:      finalParsed.Hostname(),
			Referrer:      entry.Referrer,
			Depth:         entry.Depth,
			Title:         result.Title,
			Author:        result.Author,
			Date:          result.Date,
			Language:      result.Language,
			Description:   result.Description,
			PageType:      result.PageType,
			Source:        result.Source,
			Format:        result.Format,
			RawText:       result.TextContent,
			HTML:          result.HTML,
			Links:         outLinks,
			Fingerprint:   utils.Fingerprint(result.TextContent),
			FetchedAt:     time.Now().UTC(),
		}
		c.mu.Lock()
		c.pages = append(c.pages, page)
		c.mu.Unlock()
	} else {
		// Keyword-rejected pages stay out of the results but their
		// links were already expanded above.
		entryLog.Debug("Rejected by keyword gate")
	}

	if ctx.Err() != nil {
		return
	}
	for _, next := range expansion {
		// The frontier may close between the context check above and
		// this add; an unreleased pending count would then stall the
		// drain goroutine forever.
		c.pending.Add(1)
		if !c.frontier.Add(next) {
			c.pending.Done()
		}
	}
}

// expandLinks filters and normalizes the raw hrefs of a page. It
// returns the page's deduplicated outbound link set (for the link
// graph) and the subset of links newly claimed in the visited store
// (for enqueueing). Claiming happens here, at discovery time, so two
// pages sharing a link race for it exactly once.
func (c *Crawler) expandLinks(rawLinks []string, pageURL *url.URL, depth int) ([]string, []*models.FrontierEntry) {
	var outLinks []string
	var expansion []*models.FrontierEntry
	seen := make(map[string]bool)

	for _, raw := range rawLinks {
		link := c.filter.Apply(raw, pageURL)
		if link == nil || seen[link.Normalized] {
			continue
		}
		seen[link.Normalized] = true
		outLinks = append(outLinks, link.Normalized)

		added, err := c.store.MarkVisited(link.Normalized)
		if err != nil {
			c.log.Errorf("Visited store error for %q: %v", link.URL, err)
			continue
		}
		if !added {
			continue
		}
		expansion = append(expansion, &models.FrontierEntry{
			URL:      link.URL,
			Referrer: pageURL.String(),
			Depth:    depth + 1,
		})
	}
	return outLinks, expansion
}

// reserveFetch claims one unit of the visit budget. A false return
// means the budget is spent; the first refusal flips the limit flag
// that the final termination reason reports.
func (c *Crawler) reserveFetch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempts >= c.cfg.VisitLimit {
		c.limitHit = true
		return false
	}
	c.attempts++
	return true
}
