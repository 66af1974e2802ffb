// Package backtest scores classified posts against the forward price history
// reconstructed from the dedup store.
package backtest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lsedump/internal/lse"
	"lsedump/internal/sentiment"
)

// A prediction needs at least this many forward prices to be scoreable, and
// a user needs at least this many scoreable predictions to be ranked.
const (
	minForwardPrices   = 3
	minUserPredictions = 3
)

// Options configures one backtest run
type Options struct {
	// StartDay and EndDay bound the forward window in days after the
	// post, inclusive.
	StartDay int
	EndDay   int

	// Threshold is the fractional price move a call must beat, e.g. 0.2
	// for 20%.
	Threshold decimal.Decimal
}

// ClassifiedPost pairs a stored post with its lexical sentiment
type ClassifiedPost struct {
	lse.Post
	Sentiment sentiment.Sentiment
}

// Prediction is one scoreable directional call
type Prediction struct {
	Username  string
	Ticker    string
	Sentiment sentiment.Sentiment
	Date      time.Time
	Price     decimal.Decimal

	AvgFuturePrice decimal.Decimal
	ChangePct      decimal.Decimal
	Correct        bool

	// ThresholdDate is the first day in the window whose single-day price
	// already crossed the threshold; zero when never hit. It is an
	// early-hit indicator, independent of the final verdict.
	ThresholdDate time.Time

	Text string
}

// UserStats aggregates a user's scoreable predictions
type UserStats struct {
	Username    string
	Total       int
	Correct     int
	AccuracyPct float64
	AvgMovePct  float64
}

// PriceKey addresses the price index by calendar day and ticker
type PriceKey struct {
	Day    string // "2006-01-02"
	Ticker string
}

// BuildPriceIndex maps (calendar day, ticker) to the last seen price that
// day, scanning ALL stored posts. Later posts overwrite earlier ones; at
// most one price per day and ticker is retained.
func BuildPriceIndex(posts []lse.Post) map[PriceKey]decimal.Decimal {
	index := make(map[PriceKey]decimal.Decimal)
	for _, p := range posts {
		day, err := postDay(p.Date)
		if err != nil {
			continue
		}
		price, err := ParsePrice(p.Price)
		if err != nil {
			continue
		}
		index[PriceKey{Day: day.Format("2006-01-02"), Ticker: p.Ticker}] = price
	}
	return index
}

// Evaluate scores every classified post against the price index. Posts with
// unparseable dates or prices, and posts with fewer than three forward
// prices in the window, are dropped silently.
func Evaluate(posts []ClassifiedPost, index map[PriceKey]decimal.Decimal, opts Options) []Prediction {
	one := decimal.NewFromInt(1)
	upperTarget := one.Add(opts.Threshold)
	lowerTarget := one.Sub(opts.Threshold)

	var predictions []Prediction
	for _, post := range posts {
		if post.Sentiment != sentiment.Bullish && post.Sentiment != sentiment.Bearish {
			continue
		}
		postDate, err := postDay(post.Date)
		if err != nil {
			continue
		}
		price, err := ParsePrice(post.Price)
		if err != nil || price.IsZero() {
			continue
		}

		var futurePrices []decimal.Decimal
		var thresholdDate time.Time
		for i := opts.StartDay; i <= opts.EndDay; i++ {
			day := postDate.AddDate(0, 0, i)
			future, ok := index[PriceKey{Day: day.Format("2006-01-02"), Ticker: post.Ticker}]
			if !ok {
				continue
			}
			futurePrices = append(futurePrices, future)
			if thresholdDate.IsZero() && crossed(post.Sentiment, future, price, upperTarget, lowerTarget) {
				thresholdDate = day
			}
		}

		if len(futurePrices) < minForwardPrices {
			continue
		}

		sum := decimal.Zero
		for _, p := range futurePrices {
			sum = sum.Add(p)
		}
		avg := sum.Div(decimal.NewFromInt(int64(len(futurePrices))))
		changePct := avg.Sub(price).Div(price).Mul(decimal.NewFromInt(100))

		predictions = append(predictions, Prediction{
			Username:       post.Username,
			Ticker:         post.Ticker,
			Sentiment:      post.Sentiment,
			Date:           postDate,
			Price:          price,
			AvgFuturePrice: avg,
			ChangePct:      changePct,
			Correct:        crossed(post.Sentiment, avg, price, upperTarget, lowerTarget),
			ThresholdDate:  thresholdDate,
			Text:           post.Text,
		})
	}
	return predictions
}

// crossed reports whether value beats the directional target relative to the
// entry price
func crossed(s sentiment.Sentiment, value, price, upperTarget, lowerTarget decimal.Decimal) bool {
	if s == sentiment.Bullish {
		return value.GreaterThan(price.Mul(upperTarget))
	}
	return value.LessThan(price.Mul(lowerTarget))
}

// Aggregate folds predictions into per-user stats. Users with fewer than
// three scoreable predictions are excluded. The ranking is accuracy first,
// prediction count as the tiebreak, both descending.
func Aggregate(predictions []Prediction) []UserStats {
	type acc struct {
		total   int
		correct int
		moveSum decimal.Decimal
	}
	users := make(map[string]*acc)
	for _, p := range predictions {
		a, ok := users[p.Username]
		if !ok {
			a = &acc{}
			users[p.Username] = a
		}
		a.total++
		if p.Correct {
			a.correct++
		}
		a.moveSum = a.moveSum.Add(p.ChangePct.Abs())
	}

	var stats []UserStats
	for username, a := range users {
		if a.total < minUserPredictions {
			continue
		}
		avgMove, _ := a.moveSum.Div(decimal.NewFromInt(int64(a.total))).Float64()
		stats = append(stats, UserStats{
			Username:    username,
			Total:       a.total,
			Correct:     a.correct,
			AccuracyPct: float64(a.correct) / float64(a.total) * 100,
			AvgMovePct:  avgMove,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].AccuracyPct != stats[j].AccuracyPct {
			return stats[i].AccuracyPct > stats[j].AccuracyPct
		}
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].Username < stats[j].Username
	})
	return stats
}

// TopPredictions returns a user's n predictions with the largest absolute
// price moves
func TopPredictions(predictions []Prediction, username string, n int) []Prediction {
	var mine []Prediction
	for _, p := range predictions {
		if p.Username == username {
			mine = append(mine, p)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		return mine[i].ChangePct.Abs().GreaterThan(mine[j].ChangePct.Abs())
	})
	if n < len(mine) {
		mine = mine[:n]
	}
	return mine
}

// priceCleaner strips thousands separators, currency marks, and unit
// suffixes like "p" or "%" from a displayed price
var priceCleaner = regexp.MustCompile(`[^0-9.\-]`)

// ParsePrice converts a displayed price string to a decimal
func ParsePrice(raw string) (decimal.Decimal, error) {
	cleaned := priceCleaner.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("no numeric content in price %q", raw)
	}
	return decimal.NewFromString(cleaned)
}

// postDay parses a stored post date down to its calendar day
func postDay(date string) (time.Time, error) {
	t, err := time.Parse(lse.StoreDateLayout, date)
	if err != nil {
		// Dates that failed normalization were stored raw; they cannot
		// anchor a forward window.
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// MonthRange expands "YYYY-MM" bounds into store-format date bounds. The end
// month runs through its final day.
func MonthRange(start, end string) (from, to string, err error) {
	startT, err := time.Parse("2006-01", start)
	if err != nil {
		return "", "", fmt.Errorf("invalid start month %q: %w", start, err)
	}
	if end == "" {
		end = time.Now().Format("2006-01")
	}
	endT, err := time.Parse("2006-01", end)
	if err != nil {
		return "", "", fmt.Errorf("invalid end month %q: %w", end, err)
	}
	lastDay := endT.AddDate(0, 1, -1)
	return startT.Format("2006-01-02"), lastDay.Format("2006-01-02") + " 23:59:59", nil
}
