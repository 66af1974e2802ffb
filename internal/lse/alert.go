package lse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	errorAlertSelector   = "div.alert--error li.alert__list-item"
	warningAlertSelector = "div.alert--warning li.alert__list-item"

	// The site injects this error on every page for logged-out visitors;
	// it does not mean the crawl has to stop.
	benignErrorText = "Login failed"

	// Warnings asking the visitor to refresh are informational
	benignWarningSubstring = "refresh the page"
)

// Alerts holds the server-emitted banner messages found on a page
type Alerts struct {
	// Fatal carries error-class alert texts that must stop the crawl
	Fatal []string
	// Warnings carries warning-class alert texts; these never stop the crawl
	Warnings []string
}

// MustStop reports whether any fatal alert was found
func (a Alerts) MustStop() bool {
	return len(a.Fatal) > 0
}

// CheckAlerts scans a page for error- and warning-class banners. Known benign
// messages are dropped; anything else in an error banner is fatal, anything
// else in a warning banner is surfaced for logging only.
func CheckAlerts(doc *goquery.Document) Alerts {
	var alerts Alerts

	doc.Find(errorAlertSelector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" || text == benignErrorText {
			return
		}
		alerts.Fatal = append(alerts.Fatal, text)
	})

	doc.Find(warningAlertSelector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.Contains(text, benignWarningSubstring) {
			return
		}
		alerts.Warnings = append(alerts.Warnings, text)
	})

	return alerts
}
