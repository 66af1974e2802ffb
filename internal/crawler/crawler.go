// Package crawler drives the paginated walk across share-chat pages.
package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/briandowns/spinner"

	"lsedump/config"
	"lsedump/internal/lse"
	"lsedump/internal/printer"
	"lsedump/internal/store"
	"lsedump/logger"
	"lsedump/pkg/errors"
	"lsedump/services/cache"
	"lsedump/services/publisher"
)

// StopReason names the terminal state of a crawl
type StopReason string

const (
	// StopAlert fires on a non-benign error alert on the entry page
	StopAlert StopReason = "alert"
	// StopNoPosts fires when a page yields zero posts
	StopNoPosts StopReason = "no_posts"
	// StopNoNextLink fires when the "next page" link is absent
	StopNoNextLink StopReason = "no_next_link"
	// StopLastPage fires when the "next page" link is disabled
	StopLastPage StopReason = "last_page"
	// StopMaxReached fires when the posts_max cutoff is hit
	StopMaxReached StopReason = "max_reached"
	// StopPageLimit fires at the hard page-fetch bound
	StopPageLimit StopReason = "page_limit"
)

// Target selects what to crawl; exactly one field is set
type Target struct {
	Username string
	Ticker   string
}

// Key returns a short identifier for logging and cooldown cache keys
func (t Target) Key() string {
	if t.Username != "" {
		return "user:" + t.Username
	}
	return "ticker:" + t.Ticker
}

// Options are per-run settings from the command line
type Options struct {
	StartPage    int
	PostsMax     int // 0 means unlimited
	Save         bool
	KeepNewlines bool
}

// Result describes how the crawl ended
type Result struct {
	Reason StopReason
	Posts  int
	Pages  int
}

// FetchFunc fetches one URL and returns its body
type FetchFunc func(url string) (io.Reader, error)

// Deps carries the crawler's collaborators
type Deps struct {
	Fetch     FetchFunc
	Cache     cache.CacheService
	Store     *store.Store // nil unless --save
	Publisher publisher.Publisher
	Printer   *printer.Printer
	Spinner   *spinner.Spinner // nil when not interactive
}

// Crawler walks pages for one target until a stop condition fires. Fetching
// is strictly sequential; the politeness delay between pages is the rate
// limit.
type Crawler struct {
	cfg  *config.Config
	deps Deps
	log  *logger.Logger
}

// New creates a crawler
func New(cfg *config.Config, deps Deps) *Crawler {
	if deps.Publisher == nil {
		deps.Publisher = publisher.NoopPublisher{}
	}
	return &Crawler{
		cfg:  cfg,
		deps: deps,
		log:  logger.ForComponent("crawler"),
	}
}

// cooldownBlock is how long a rate-limited target stays blocked when the
// server gives no Retry-After
const cooldownBlock = 500 * time.Second

// Run executes the crawl. It returns a Result for every orderly stop; a
// non-nil error means a fatal condition (transport, structure, entry-page
// alert) and maps to a non-zero exit.
func (c *Crawler) Run(ctx context.Context, target Target, opts Options) (*Result, error) {
	startPage := opts.StartPage
	if startPage < 1 {
		startPage = 1
	}
	cooldownKey := "lse_cooldown:" + target.Key()

	// Explicit accumulator state for the whole crawl
	pagesFetched := 0

	for page := startPage; ; page++ {
		if pagesFetched >= c.cfg.PageFetchMax {
			c.log.Warn().
				Int("page_fetch_max", c.cfg.PageFetchMax).
				Msg("Exceeded maximum page fetches without a stop condition")
			return &Result{Reason: StopPageLimit, Posts: c.deps.Printer.Printed(), Pages: pagesFetched}, nil
		}

		if _, err := c.deps.Cache.Get(cooldownKey); err == nil {
			return nil, errors.NewNetwork(target.Key(), "target is cooling down after a rate limit, try again later", nil)
		}

		url := c.pageURL(target, page)
		c.log.Debug().Str("url", url).Int("page", page).Msg("Fetching page")

		doc, err := c.fetchDocument(url, cooldownKey)
		pagesFetched++
		if err != nil {
			return nil, err
		}

		alerts := lse.CheckAlerts(doc)
		for _, warning := range alerts.Warnings {
			c.log.Warn().Str("alert", warning).Msg("Server warning")
		}
		// Login walls are injected site-wide; checking the entry page once
		// is enough.
		if page == startPage && alerts.MustStop() {
			return &Result{Reason: StopAlert, Posts: c.deps.Printer.Printed(), Pages: pagesFetched},
				errors.NewAlert(url, alerts.Fatal[0])
		}

		posts, err := lse.ParsePosts(doc, lse.ParseOptions{
			Mode:         c.parseMode(target),
			Ticker:       target.Ticker,
			KeepNewlines: opts.KeepNewlines,
		})
		if err != nil {
			return nil, err
		}

		if len(posts) == 0 {
			if page == startPage {
				// Nothing at all: likely a bad name/symbol
				return &Result{Reason: StopNoPosts, Pages: pagesFetched},
					errors.NewParsing(url, "no posts found", nil)
			}
			c.log.Debug().Int("page", page).Msg("Page has no posts, end of data")
			return &Result{Reason: StopNoPosts, Posts: c.deps.Printer.Printed(), Pages: pagesFetched}, nil
		}

		stopped, err := c.emitPosts(ctx, posts, opts)
		if err != nil {
			return nil, err
		}
		if stopped {
			return &Result{Reason: StopMaxReached, Posts: c.deps.Printer.Printed(), Pages: pagesFetched}, nil
		}

		if lse.IsLastPage(doc) {
			c.log.Debug().Int("page", page).Msg("Reached last page")
			return &Result{Reason: StopLastPage, Posts: c.deps.Printer.Printed(), Pages: pagesFetched}, nil
		}
		if !lse.HasNextPage(doc) {
			c.log.Info().Int("page", page).Msg("No more pages found")
			return &Result{Reason: StopNoNextLink, Posts: c.deps.Printer.Printed(), Pages: pagesFetched}, nil
		}

		if err := c.pause(ctx); err != nil {
			return nil, err
		}
	}
}

// fetchDocument fetches one page and parses it into a document. A rate
// limit response blocks the target in the cooldown cache before failing.
func (c *Crawler) fetchDocument(url, cooldownKey string) (*goquery.Document, error) {
	if c.deps.Spinner != nil {
		c.deps.Spinner.Start()
		defer c.deps.Spinner.Stop()
	}

	body, err := c.deps.Fetch(url)
	if err != nil {
		if errors.TypeOf(err) == errors.ErrorTypeRateLimit {
			blockSecs := fmt.Sprintf("%d", cooldownBlock/time.Second)
			if cacheErr := c.deps.Cache.Set(cooldownKey, []byte(blockSecs), cooldownBlock); cacheErr != nil {
				c.log.Warn().Err(cacheErr).Msg("Failed to record rate-limit cooldown")
			}
		}
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.NewParsing(url, "failed to parse HTML", err)
	}
	return doc, nil
}

// emitPosts prints (and optionally persists and publishes) a page's posts.
// It reports stopped=true when the posts_max cutoff was hit, possibly
// mid-page.
func (c *Crawler) emitPosts(ctx context.Context, posts []lse.Post, opts Options) (stopped bool, err error) {
	for i := range posts {
		post := &posts[i]

		if opts.PostsMax > 0 && c.deps.Printer.Printed() >= opts.PostsMax {
			return true, nil
		}

		if opts.Save {
			seen, err := c.deps.Store.Exists(ctx, post.Fingerprint())
			if err != nil {
				// Storage errors are non-fatal: keep showing posts,
				// give up on saving them
				if errors.IsFatal(err) {
					return false, err
				}
				c.log.Error().Err(err).Msg("Dedup check failed, post will be shown unsaved")
			}
			if seen {
				c.log.Debug().
					Str("username", post.Username).
					Str("date", post.Date).
					Msg("Skipping already saved post")
				continue
			}
		}

		if err := c.deps.Printer.Print(post); err != nil {
			return false, err
		}

		if opts.Save {
			if err := c.savePost(ctx, post); err != nil {
				return false, err
			}
		}
	}

	if opts.PostsMax > 0 && c.deps.Printer.Printed() >= opts.PostsMax {
		return true, nil
	}
	return false, nil
}

// savePost persists one post and announces it to the publisher. Duplicate
// fingerprints are logged and skipped; publish failures never fail the
// crawl.
func (c *Crawler) savePost(ctx context.Context, post *lse.Post) error {
	inserted, err := c.deps.Store.Insert(ctx, post)
	if err != nil {
		if errors.IsFatal(err) {
			return err
		}
		c.log.Error().Err(err).Msg("Failed to save post")
		return nil
	}
	if !inserted {
		c.log.Debug().Str("hash", post.Fingerprint()).Msg("Duplicate fingerprint on insert, skipped")
		return nil
	}

	data, err := json.Marshal(post)
	if err != nil {
		return err
	}
	if err := c.deps.Publisher.Publish("post", data); err != nil {
		logger.LogError("publisher", err, "failed to publish post")
	}
	return nil
}

// pause sleeps a random duration in [0, PagePauseMax) between pages
func (c *Crawler) pause(ctx context.Context) error {
	if c.cfg.PagePauseMax <= 0 {
		return nil
	}
	delay := rand.N(c.cfg.PagePauseMax)
	c.log.Debug().Dur("delay", delay).Msg("Pausing before next page")

	if c.deps.Spinner != nil {
		c.deps.Spinner.Start()
		defer c.deps.Spinner.Stop()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (c *Crawler) pageURL(target Target, page int) string {
	if target.Username != "" {
		return c.cfg.UserURL(target.Username, page)
	}
	return c.cfg.TickerURL(target.Ticker, page)
}

func (c *Crawler) parseMode(target Target) lse.Mode {
	if target.Username != "" {
		return lse.ModeUser
	}
	return lse.ModeTicker
}
