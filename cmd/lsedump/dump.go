package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"lsedump/config"
	"lsedump/helpers"
	"lsedump/internal/crawler"
	"lsedump/internal/printer"
	"lsedump/internal/store"
	"lsedump/logger"
	"lsedump/pkg/errors"
	"lsedump/services/cache"
	"lsedump/services/publisher"
)

var (
	dumpUser     string
	dumpTicker   string
	dumpPostsMax int
	dumpPage     int
	dumpNewlines bool
	dumpSave     bool
	dumpJSON     bool
	dumpDebug    bool
)

func addDumpFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&dumpUser, "user", "u", "", "dump this user's posts")
	cmd.Flags().StringVarP(&dumpTicker, "ticker", "t", "", "dump this ticker's posts")
	cmd.Flags().IntVarP(&dumpPostsMax, "posts_max", "p", config.PostsMaxLimit, "stop after this many posts")
	cmd.Flags().IntVarP(&dumpPage, "page", "P", 1, "start from this page")
	cmd.Flags().BoolVarP(&dumpNewlines, "newlines", "n", false, "keep line breaks inside post text")
	cmd.Flags().BoolVarP(&dumpSave, "save", "s", false, "save posts to the local database, skip already saved ones")
	cmd.Flags().BoolVar(&dumpJSON, "json", false, "print posts as JSON lines")
	cmd.Flags().BoolVarP(&dumpDebug, "debug", "d", false, "enable debug logging")
}

func runDump(cmd *cobra.Command, args []string) error {
	if dumpDebug {
		logger.SetDebug()
	}
	log := logger.Default

	target, err := dumpTarget()
	if err != nil {
		return err
	}
	if dumpPostsMax < 1 || dumpPostsMax > config.PostsMaxLimit {
		return errors.NewUsage(fmt.Sprintf("posts_max must be between 1 and %d", config.PostsMaxLimit))
	}
	if dumpPage < 1 || dumpPage > config.StartPageLimit {
		return errors.NewUsage(fmt.Sprintf("page must be between 1 and %d", config.StartPageLimit))
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return errors.NewConfiguration("invalid configuration", err)
	}
	helpers.SetTimeout(cfg.HTTPTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := crawler.Deps{
		Fetch: func(url string) (io.Reader, error) {
			return helpers.FetchPage(url, cfg.UserAgent)
		},
		Cache:   newCooldownCache(cfg),
		Printer: printer.New(os.Stdout, dumpJSON),
	}

	if dumpSave {
		st, err := store.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		deps.Store = st
		deps.Publisher = newPublisher(ctx, cfg)
		defer deps.Publisher.Close()
	}

	// The spinner shares stderr with the logger; only one of them can own it
	if !dumpJSON && !dumpDebug && isatty.IsTerminal(os.Stderr.Fd()) {
		deps.Spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond,
			spinner.WithWriter(os.Stderr))
	}

	result, err := crawler.New(cfg, deps).Run(ctx, target, crawler.Options{
		StartPage:    dumpPage,
		PostsMax:     dumpPostsMax,
		Save:         dumpSave,
		KeepNewlines: dumpNewlines,
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("posts", result.Posts).
		Int("pages", result.Pages).
		Str("stop", string(result.Reason)).
		Msg("Crawl finished")

	if dumpSave && deps.Publisher != nil {
		if err := deps.Publisher.TrimStream(); err != nil {
			log.Warn().Err(err).Msg("Failed to trim publish stream")
		}
	}
	return nil
}

// dumpTarget validates the user/ticker flags; exactly one must be set.
// Usernames are lowercased for the profile URL, tickers uppercased for the
// chat URL.
func dumpTarget() (crawler.Target, error) {
	user := strings.TrimSpace(dumpUser)
	ticker := strings.TrimSpace(dumpTicker)

	switch {
	case user == "" && ticker == "":
		return crawler.Target{}, errors.NewUsage("provide one of --user or --ticker")
	case user != "" && ticker != "":
		return crawler.Target{}, errors.NewUsage("--user and --ticker are mutually exclusive")
	case user != "":
		return crawler.Target{Username: strings.ToLower(user)}, nil
	default:
		return crawler.Target{Ticker: strings.ToUpper(ticker)}, nil
	}
}

// newCooldownCache picks memcache when configured, otherwise an in-process
// map. The in-process cache only survives one run, which still throttles
// retries inside a session.
func newCooldownCache(cfg *config.Config) cache.CacheService {
	if cfg.MemcacheAddr != "" {
		return cache.NewMemcacheService(cfg.MemcacheAddr)
	}
	return cache.NewMemoryService()
}

// newPublisher returns a Redis stream publisher when configured, otherwise
// a no-op
func newPublisher(ctx context.Context, cfg *config.Config) publisher.Publisher {
	if cfg.RedisAddr == "" {
		return publisher.NoopPublisher{}
	}
	return publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
}
