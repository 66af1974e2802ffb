package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lsedump/config"
	"lsedump/helpers"
	"lsedump/internal/backtest"
	"lsedump/internal/crawler"
	"lsedump/internal/printer"
	"lsedump/internal/sentiment"
	"lsedump/internal/store"
	"lsedump/services/cache"
)

func TestDumpTargetValidation(t *testing.T) {
	testCases := []struct {
		name    string
		user    string
		ticker  string
		want    crawler.Target
		wantErr bool
	}{
		{name: "neither", wantErr: true},
		{name: "both", user: "alice", ticker: "shel", wantErr: true},
		{name: "user is lowercased", user: "AliceInvests", want: crawler.Target{Username: "aliceinvests"}},
		{name: "ticker is uppercased", ticker: "shel", want: crawler.Target{Ticker: "SHEL"}},
		{name: "whitespace only counts as empty", user: "  ", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dumpUser, dumpTicker = tc.user, tc.ticker
			target, err := dumpTarget()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, target)
		})
	}
}

func TestAnalyzeDefaults(t *testing.T) {
	flags := analyzeCmd().Flags()

	percent, err := flags.GetFloat64("percent")
	require.NoError(t, err)
	assert.Equal(t, 20.0, percent)

	start, err := flags.GetString("start-date")
	require.NoError(t, err)
	assert.Equal(t, "2024-01", start)

	future, err := flags.GetString("future")
	require.NoError(t, err)
	assert.Equal(t, "3-14", future)

	number, err := flags.GetInt("number")
	require.NoError(t, err)
	assert.Equal(t, 3, number)
}

func TestParseWindow(t *testing.T) {
	start, end, err := parseWindow("3-14")
	require.NoError(t, err)
	assert.Equal(t, 3, start)
	assert.Equal(t, 14, end)

	_, _, err = parseWindow("14-3")
	assert.Error(t, err)
	_, _, err = parseWindow("0-5")
	assert.Error(t, err)
	_, _, err = parseWindow("soon")
	assert.Error(t, err)
}

// chatPost renders one ticker-page message container
func chatPost(username, price, date, text string) string {
	return `
	<div class="share-chat-message__message-content">
		<p class="share-chat-message__details share-chat-message__details--username">` + username + `</p>
		<p class="share-chat-message__details">Price: ` + price + `</p>
		<div class="share-chat-message__status-bar">
			<span class="share-chat-message__status-bar-time">` + date + `</span>Opinion
		</div>
		<p class="share-chat-message__message-text">` + text + `</p>
	</div>`
}

// The full pipeline: crawl a chat page into the database, then backtest the
// saved posts. One user makes three bullish calls at 100; later posts quote
// 115-125 over the next three days, so with a 10% threshold every call
// scores as correct.
func TestDumpThenAnalyzePipeline(t *testing.T) {
	page := `<html><body>` + strings.Join([]string{
		chatPost("alice", "100.00", "2 Jan 2024 09:00", "undervalued at this level"),
		chatPost("alice", "100.00", "2 Jan 2024 11:30", "time to buy in my view"),
		chatPost("alice", "100.00", "2 Jan 2024 15:45", "this will rally before results"),
		chatPost("bob", "115.00", "3 Jan 2024 10:00", "quiet session so far"),
		chatPost("carol", "120.00", "4 Jan 2024 10:00", "volume picking back up"),
		chatPost("dave", "125.00", "5 Jan 2024 10:00", "still just observing"),
	}, "\n") +
		`<a class="pager__link pager__link--next pager__link--disabled" href="#">Next</a></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "posts.sqlite3"))
	require.NoError(t, err)
	defer st.Close()

	cfg := &config.Config{Host: "chat.example.com", PageFetchMax: 10, UserAgent: "test-agent"}
	c := crawler.New(cfg, crawler.Deps{
		Fetch: func(url string) (io.Reader, error) {
			parsed, err := neturl.Parse(url)
			if err != nil {
				return nil, err
			}
			return helpers.FetchPage(server.URL+parsed.Path+"?"+parsed.RawQuery, cfg.UserAgent)
		},
		Cache:   cache.NewMemoryService(),
		Store:   st,
		Printer: printer.New(&bytes.Buffer{}, false),
	})

	result, err := c.Run(ctx, crawler.Target{Ticker: "TEST"}, crawler.Options{StartPage: 1, Save: true})
	require.NoError(t, err)
	assert.Equal(t, 6, result.Posts)

	posts, err := st.Select(ctx, store.Filter{Ticker: "TEST"})
	require.NoError(t, err)
	require.Len(t, posts, 6)

	classifier, err := sentiment.NewClassifier(sentiment.DefaultSets())
	require.NoError(t, err)

	classified := make([]backtest.ClassifiedPost, 0, len(posts))
	for _, p := range posts {
		classified = append(classified, backtest.ClassifiedPost{
			Post:      p,
			Sentiment: classifier.Classify(p.Text),
		})
	}

	predictions := backtest.Evaluate(classified, backtest.BuildPriceIndex(posts), backtest.Options{
		StartDay:  1,
		EndDay:    3,
		Threshold: decimal.NewFromFloat(0.1),
	})
	require.Len(t, predictions, 3)

	stats := backtest.Aggregate(predictions)
	require.Len(t, stats, 1)
	assert.Equal(t, "alice", stats[0].Username)
	assert.Equal(t, 3, stats[0].Correct)
	assert.Equal(t, 3, stats[0].Total)
	assert.Equal(t, 100.0, stats[0].AccuracyPct)
}
