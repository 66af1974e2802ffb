package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeNetwork, TypeOf(NewNetwork("url", "down", nil)))
	assert.Equal(t, ErrorTypeStorage, TypeOf(NewStorage("posts", "insert failed", nil)))

	// Wrapping must not hide the type
	wrapped := fmt.Errorf("crawl aborted: %w", NewAlert("url", "maintenance"))
	assert.Equal(t, ErrorTypeAlert, TypeOf(wrapped))

	assert.Equal(t, ErrorType(""), TypeOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}

func TestIsFatal(t *testing.T) {
	fatal := []*CrawlError{
		NewNetwork("url", "down", nil),
		NewParsing("url", "bad html", nil),
		NewAlert("url", "maintenance"),
		NewUsage("bad flag"),
		NewConfiguration("bad env", nil),
	}
	for _, err := range fatal {
		assert.True(t, err.IsFatal(), string(err.Type))
		assert.True(t, IsFatal(err), string(err.Type))
	}

	recoverable := []*CrawlError{
		NewRateLimit("url", time.Minute),
		NewStorage("posts", "insert failed", nil),
	}
	for _, err := range recoverable {
		assert.False(t, err.IsFatal(), string(err.Type))
		assert.False(t, IsFatal(err), string(err.Type))
	}

	// Wrapped recoverable errors stay recoverable
	assert.False(t, IsFatal(fmt.Errorf("save: %w", NewStorage("posts", "locked", nil))))

	// Anything outside the taxonomy aborts
	assert.True(t, IsFatal(fmt.Errorf("plain")))
}

func TestErrorMessage(t *testing.T) {
	err := NewNetwork("https://example.com", "unexpected status code: 503", nil)
	assert.Equal(t, "[network] https://example.com: unexpected status code: 503", err.Error())

	inner := fmt.Errorf("dial tcp: timeout")
	withCause := NewNetwork("https://example.com", "failed to fetch URL", inner)
	assert.Contains(t, withCause.Error(), "dial tcp: timeout")
	assert.Equal(t, inner, withCause.Unwrap())
}
