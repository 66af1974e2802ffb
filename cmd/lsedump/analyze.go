package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"lsedump/config"
	"lsedump/internal/backtest"
	"lsedump/internal/sentiment"
	"lsedump/internal/store"
	"lsedump/logger"
	"lsedump/pkg/errors"
)

var (
	analyzeTicker   string
	analyzeUser     string
	analyzePercent  float64
	analyzeStart    string
	analyzeEnd      string
	analyzeFuture   string
	analyzeNumber   int
	analyzeDB       string
	analyzeKeywords string
)

// analyzeCmd creates the "analyze" subcommand
func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Backtest saved posts: score each user's bullish/bearish calls against later prices",
		Long: `Classify saved posts as bullish or bearish from their wording, then
check each call against the prices mentioned in later posts of the same
ticker. A call is correct when the average price over the forward window
moved past the threshold in the called direction.

Prices come from the posts themselves, so only tickers with enough chat
activity produce scoreable calls.`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeTicker, "ticker", "t", "", "only analyze posts for this ticker")
	cmd.Flags().StringVarP(&analyzeUser, "username", "u", "", "only analyze posts by this user")
	cmd.Flags().Float64VarP(&analyzePercent, "percent", "p", 20, "price move threshold in percent")
	cmd.Flags().StringVarP(&analyzeStart, "start-date", "s", "2024-01", "earliest post month, YYYY-MM (empty: no lower bound)")
	cmd.Flags().StringVarP(&analyzeEnd, "end-date", "e", "", "latest post month, YYYY-MM (default: current month)")
	cmd.Flags().StringVarP(&analyzeFuture, "future", "f", "3-14", "forward window in days, MIN-MAX")
	cmd.Flags().IntVarP(&analyzeNumber, "number", "n", 3, "example posts to show per top user")
	cmd.Flags().StringVar(&analyzeDB, "db", "", "database path (default: the dump database)")
	cmd.Flags().StringVar(&analyzeKeywords, "keywords", "", "JSON file with custom positive/negative keyword lists")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.Default

	startDay, endDay, err := parseWindow(analyzeFuture)
	if err != nil {
		return err
	}
	if analyzePercent <= 0 {
		return errors.NewUsage("percent must be positive")
	}

	cfg := config.LoadConfig()
	dbPath := analyzeDB
	if dbPath == "" {
		dbPath = cfg.DBPath
	}

	sets := sentiment.DefaultSets()
	if analyzeKeywords != "" {
		sets, err = sentiment.LoadSets(analyzeKeywords)
		if err != nil {
			return err
		}
	}
	classifier, err := sentiment.NewClassifier(sets)
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, err := store.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	filter := store.Filter{
		Ticker:   strings.ToUpper(strings.TrimSpace(analyzeTicker)),
		Username: strings.ToLower(strings.TrimSpace(analyzeUser)),
	}
	if analyzeStart != "" {
		filter.DateFrom, filter.DateTo, err = backtest.MonthRange(analyzeStart, analyzeEnd)
		if err != nil {
			return errors.NewUsage(err.Error())
		}
	}

	posts, err := st.Select(ctx, filter)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return errors.NewUsage("no saved posts match the given filters; run a dump with --save first")
	}

	// The price index always spans the whole database: posts outside the
	// analyzed range still carry price observations.
	allPosts, err := st.All(ctx)
	if err != nil {
		return err
	}
	index := backtest.BuildPriceIndex(allPosts)

	classified := make([]backtest.ClassifiedPost, 0, len(posts))
	for _, p := range posts {
		classified = append(classified, backtest.ClassifiedPost{
			Post:      p,
			Sentiment: classifier.Classify(p.Text),
		})
	}

	predictions := backtest.Evaluate(classified, index, backtest.Options{
		StartDay:  startDay,
		EndDay:    endDay,
		Threshold: decimal.NewFromFloat(analyzePercent / 100),
	})
	stats := backtest.Aggregate(predictions)

	log.Info().
		Int("posts", len(posts)).
		Int("predictions", len(predictions)).
		Int("ranked_users", len(stats)).
		Msg("Backtest complete")

	if len(stats) == 0 {
		fmt.Println("No user has enough scoreable predictions to rank.")
		return nil
	}

	printLeaderboard(stats)
	printExamples(classifier, stats, predictions)
	return nil
}

// parseWindow parses a "MIN-MAX" day range
func parseWindow(s string) (startDay, endDay int, err error) {
	if _, err := fmt.Sscanf(s, "%d-%d", &startDay, &endDay); err != nil {
		return 0, 0, errors.NewUsage(fmt.Sprintf("future window %q is not MIN-MAX", s))
	}
	if startDay < 1 || endDay < startDay {
		return 0, 0, errors.NewUsage(fmt.Sprintf("future window %q must satisfy 1 <= MIN <= MAX", s))
	}
	return startDay, endDay, nil
}

const leaderboardSize = 20

func printLeaderboard(stats []backtest.UserStats) {
	if len(stats) > leaderboardSize {
		stats = stats[:leaderboardSize]
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tUSER\tCORRECT\tTOTAL\tACCURACY\tAVG MOVE")
	for i, s := range stats {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.1f%%\t%+.1f%%\n",
			i+1, s.Username, s.Correct, s.Total, s.AccuracyPct, s.AvgMovePct)
	}
	w.Flush()
}

// printExamples shows each top user's strongest calls with the trigger
// words highlighted
func printExamples(classifier *sentiment.Classifier, stats []backtest.UserStats, predictions []backtest.Prediction) {
	bullish := color.New(color.FgGreen, color.Bold).SprintFunc()
	bearish := color.New(color.FgRed, color.Bold).SprintFunc()
	header := color.New(color.FgCyan).SprintfFunc()

	topUsers := stats
	if len(topUsers) > 3 {
		topUsers = topUsers[:3]
	}

	for _, user := range topUsers {
		examples := backtest.TopPredictions(predictions, user.Username, analyzeNumber)
		if len(examples) == 0 {
			continue
		}
		fmt.Println()
		fmt.Println(header("=== %s (%d/%d correct) ===", user.Username, user.Correct, user.Total))

		for _, p := range examples {
			wrap := bullish
			if p.Sentiment == sentiment.Bearish {
				wrap = bearish
			}
			verdict := "WRONG"
			if p.Correct {
				verdict = "CORRECT"
			}
			fmt.Printf("%s %s @%s -> avg %s (%s%%) %s\n",
				p.Date.Format("2006-01-02"), p.Ticker, p.Price.String(),
				p.AvgFuturePrice.StringFixed(2), p.ChangePct.StringFixed(1), verdict)
			if !p.ThresholdDate.IsZero() {
				fmt.Printf("  threshold first crossed %s\n", p.ThresholdDate.Format("2006-01-02"))
			}
			fmt.Printf("  %s\n", classifier.Highlight(p.Text, p.Sentiment, func(m string) string {
				return wrap(m)
			}))
		}
	}
}
