package lse

import (
	"strings"
	"time"
)

const (
	// siteDateLayout matches the absolute form the site emits, e.g. "29 Mar 2024 15:32"
	siteDateLayout = "2 Jan 2006 15:04"

	// StoreDateLayout is the normalized form kept in the dedup store
	StoreDateLayout = "2006-01-02 15:04:05"
)

// NormalizeDate converts a raw site date string into StoreDateLayout form.
// Relative dates ("Today 15:32") are resolved against now. On parse failure
// the raw string is returned unchanged along with the error; callers keep
// the raw value rather than aborting.
func NormalizeDate(raw string, now time.Time) (string, error) {
	s := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(s, "Today "); ok {
		s = now.Format("2 Jan 2006") + " " + rest
	}

	t, err := time.ParseInLocation(siteDateLayout, s, now.Location())
	if err != nil {
		return raw, err
	}
	return t.Format(StoreDateLayout), nil
}
