package helpers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"golang.org/x/net/html/charset"

	"lsedump/pkg/errors"
)

// HTTP client with an explicit per-request timeout. The timeout can be
// adjusted once at startup via SetTimeout.
var client = &http.Client{
	Timeout: 10 * time.Second,
}

// SetTimeout sets the per-request timeout for all subsequent fetches
func SetTimeout(d time.Duration) {
	client.Timeout = d
}

// FetchPage sends an HTTP GET request with the given User-Agent, converts the
// response body to UTF-8 (if needed), and returns it as an io.Reader.
func FetchPage(url string, userAgent string) (io.Reader, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.NewNetwork(url, "failed to fetch URL", err)
	}

	// Check for rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		resp.Body.Close()
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, errors.NewRateLimit(url, retryAfter)
	}

	// Check for other error status codes
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.NewNetwork(url, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetwork(url, "failed to read response body", err)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))

	// If already UTF-8, return as is
	if name == "utf-8" || name == "UTF-8" {
		return bytes.NewReader(bodyBytes), nil
	}

	// Convert to UTF-8 if necessary
	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, fmt.Errorf("failed to read converted UTF-8 body: %w", err)
	}

	return &buf, nil
}

// parseRetryAfter interprets a Retry-After header value in seconds, falling
// back to a minute when absent or unparseable
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return time.Minute
	}
	var secs int
	if _, err := fmt.Sscanf(value, "%d", &secs); err != nil || secs <= 0 {
		return time.Minute
	}
	return time.Duration(secs) * time.Second
}
