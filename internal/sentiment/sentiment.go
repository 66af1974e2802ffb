// Package sentiment classifies free text against curated bullish and bearish
// phrase sets.
package sentiment

import (
	"fmt"
	"regexp"
	"strings"
)

// Sentiment is the lexical classification of a post's text
type Sentiment string

const (
	Bullish      Sentiment = "BULLISH"
	Bearish      Sentiment = "BEARISH"
	Unclassified Sentiment = "UNCLASSIFIED"
)

// Classifier matches whole phrases at word boundaries, case-insensitively.
// A phrase never matches as a substring of a longer word.
type Classifier struct {
	positive *regexp.Regexp
	negative *regexp.Regexp
}

// NewClassifier compiles a classifier from the given phrase sets
func NewClassifier(sets Sets) (*Classifier, error) {
	positive, err := compileSet(sets.Positive)
	if err != nil {
		return nil, fmt.Errorf("positive set: %w", err)
	}
	negative, err := compileSet(sets.Negative)
	if err != nil {
		return nil, fmt.Errorf("negative set: %w", err)
	}
	return &Classifier{positive: positive, negative: negative}, nil
}

// compileSet builds one alternation over all phrases, bounded by \b so that
// each phrase must stand alone as a token sequence. Inner spaces match any
// whitespace run, so phrases still hit across line breaks.
func compileSet(phrases []string) (*regexp.Regexp, error) {
	if len(phrases) == 0 {
		return nil, fmt.Errorf("empty phrase set")
	}
	quoted := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		phrase = strings.TrimSpace(strings.ToLower(phrase))
		if phrase == "" {
			continue
		}
		quoted = append(quoted, strings.ReplaceAll(regexp.QuoteMeta(phrase), " ", `\s+`))
	}
	return regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Classify returns BULLISH when the text hits at least one positive phrase
// and no negative ones, BEARISH for the reverse, and UNCLASSIFIED when it
// hits both sets or neither.
func (c *Classifier) Classify(text string) Sentiment {
	pos := c.positive.MatchString(text)
	neg := c.negative.MatchString(text)
	switch {
	case pos && !neg:
		return Bullish
	case neg && !pos:
		return Bearish
	default:
		return Unclassified
	}
}

// Highlight wraps every matched phrase of the given sentiment's set using
// wrap, for report output. Unclassified input is returned unchanged.
func (c *Classifier) Highlight(text string, s Sentiment, wrap func(string) string) string {
	switch s {
	case Bullish:
		return c.positive.ReplaceAllStringFunc(text, wrap)
	case Bearish:
		return c.negative.ReplaceAllStringFunc(text, wrap)
	default:
		return text
	}
}
