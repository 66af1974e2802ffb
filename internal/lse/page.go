package lse

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"lsedump/logger"
	"lsedump/pkg/errors"
)

// Mode selects which page layout the extractor expects
type Mode int

const (
	// ModeTicker is a ShareChat.asp ticker page
	ModeTicker Mode = iota
	// ModeUser is a /profiles/<name>/ page
	ModeUser
)

// Selectors for the share-chat message structure. The site has no
// distinguishing classes for the detail lines, so ticker, price, and opinion
// are located by position; which index holds what depends on the page mode.
const (
	postSelector     = "div.share-chat-message__message-content"
	usernameSelector = "p.share-chat-message__details--username"
	detailSelector   = "p.share-chat-message__details"
	titleSelector    = "div.share-chat-message__status-bar"
	dateSelector     = "span.share-chat-message__status-bar-time"
	textSelector     = "p.share-chat-message__message-text"

	nextPageSelector = "a.pager__link.pager__link--next"
	lastPageClass    = "pager__link--disabled"
)

// Positional detail indices per mode. Do not infer these from labels; the
// contract is the position, which tracks the live site's markup.
const (
	userTickerIdx    = 1
	userPriceIdx     = 3
	userOpinionIdx   = 4
	tickerPriceIdx   = 1
	tickerOpinionIdx = 2
)

// ParseOptions controls post extraction for one page
type ParseOptions struct {
	Mode Mode

	// Ticker is the caller-supplied symbol; used in ModeTicker, where the
	// page itself never states it per post.
	Ticker string

	// KeepNewlines preserves <br> breaks as "\n" instead of collapsing
	// them to spaces.
	KeepNewlines bool

	// Now anchors relative ("Today ...") dates; the zero value means the
	// current time.
	Now time.Time
}

// ParsePosts extracts all posts from one parsed page. A zero-length result
// with a nil error means the page genuinely holds no posts (end of data).
// A missing sub-element inside a post container is a parsing error for the
// whole page; the site's structure is stable within one page, so a partial
// container means the markup changed.
func ParsePosts(doc *goquery.Document, opts ParseOptions) ([]Post, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	var posts []Post
	var parseErr error

	doc.Find(postSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		post, err := parsePost(s, opts, now)
		if err != nil {
			parseErr = errors.NewParsing("post", fmt.Sprintf("post %d on page", i), err)
			return false
		}
		posts = append(posts, *post)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return posts, nil
}

func parsePost(s *goquery.Selection, opts ParseOptions, now time.Time) (*Post, error) {
	username, err := requireText(s, usernameSelector)
	if err != nil {
		return nil, err
	}

	details := s.Find(detailSelector)

	var ticker, price, opinion string
	switch opts.Mode {
	case ModeUser:
		shareText, err := detailText(details, userTickerIdx)
		if err != nil {
			return nil, err
		}
		ticker = strings.Replace(shareText, "Posted in: ", "", 1)

		price, err = detailText(details, userPriceIdx)
		if err != nil {
			return nil, err
		}
		opinion = optionalDetailText(details, userOpinionIdx)
	default:
		ticker = opts.Ticker

		price, err = detailText(details, tickerPriceIdx)
		if err != nil {
			return nil, err
		}
		opinion = optionalDetailText(details, tickerOpinionIdx)
	}
	price = strings.TrimLeft(strings.Replace(price, "Price: ", "", 1), " ")
	opinion = strings.TrimSpace(strings.Replace(opinion, "Opinion: ", "", 1))
	// An unfamiliar tag usually means the detail indices drifted
	if opinion != "" && !KnownOpinion(opinion) {
		logger.Debug("unrecognized opinion tag %q", opinion)
	}

	titleSel := s.Find(titleSelector)
	if titleSel.Length() == 0 {
		return nil, fmt.Errorf("element %q not found", titleSelector)
	}
	dateSel := s.Find(dateSelector)
	if dateSel.Length() == 0 {
		return nil, fmt.Errorf("element %q not found", dateSelector)
	}

	rawDate := dateSel.Text()
	// The status bar text is the date concatenated with a category label;
	// literal removal of the date substring isolates the label.
	title := strings.TrimSpace(strings.Replace(titleSel.Text(), rawDate, "", 1))

	date, err := NormalizeDate(rawDate, now)
	if err != nil {
		logger.Warn("could not parse date %q, keeping raw value", rawDate)
		date = strings.TrimSpace(rawDate)
	}

	textSel := s.Find(textSelector)
	if textSel.Length() == 0 {
		return nil, fmt.Errorf("element %q not found", textSelector)
	}
	// Rewrite line-break markers before extracting the final string
	if opts.KeepNewlines {
		textSel.Find("br").ReplaceWithHtml("\n")
	} else {
		textSel.Find("br").ReplaceWithHtml(" ")
	}
	text := strings.TrimSpace(textSel.Text())

	return &Post{
		Username: username,
		Ticker:   strings.TrimSpace(ticker),
		Price:    price,
		Opinion:  opinion,
		Date:     date,
		Title:    title,
		Text:     text,
	}, nil
}

// requireText returns the trimmed text of the first match, or an error when
// the element is absent
func requireText(s *goquery.Selection, selector string) (string, error) {
	sel := s.Find(selector)
	if sel.Length() == 0 {
		return "", fmt.Errorf("element %q not found", selector)
	}
	return strings.TrimSpace(sel.First().Text()), nil
}

// detailText returns the trimmed text of the detail line at idx
func detailText(details *goquery.Selection, idx int) (string, error) {
	if idx >= details.Length() {
		return "", fmt.Errorf("detail element %d not found (have %d)", idx, details.Length())
	}
	return strings.TrimSpace(details.Eq(idx).Text()), nil
}

// optionalDetailText returns the detail line at idx, or "" when the
// container is short. The opinion slot is the only optional one; the site
// omits it when the author picked no tag.
func optionalDetailText(details *goquery.Selection, idx int) string {
	if idx >= details.Length() {
		return ""
	}
	return strings.TrimSpace(details.Eq(idx).Text())
}

// HasNextPage reports whether the page carries an enabled "next" pager link
func HasNextPage(doc *goquery.Document) bool {
	sel := doc.Find(nextPageSelector)
	return sel.Length() > 0 && !sel.HasClass(lastPageClass)
}

// IsLastPage reports whether the page carries a disabled "next" pager link.
// The site signals end-of-pages either by disabling the link or by dropping
// it entirely, so callers check this and HasNextPage as a pair.
func IsLastPage(doc *goquery.Document) bool {
	return doc.Find(nextPageSelector).HasClass(lastPageClass)
}
