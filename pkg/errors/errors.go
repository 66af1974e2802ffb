package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport-level errors (DNS, connect, HTTP status)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML structure errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeAlert represents a server-emitted alert that stops the crawl
	ErrorTypeAlert ErrorType = "alert"
	// ErrorTypeRateLimit represents rate limiting by the origin server
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeStorage represents dedup-store errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeUsage represents command-line usage errors
	ErrorTypeUsage ErrorType = "usage"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CrawlError represents a classified error from the crawl pipeline
type CrawlError struct {
	Type    ErrorType
	Target  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Target, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Target, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlError) Unwrap() error {
	return e.Err
}

// IsFatal returns true if the error must abort the crawl
func (e *CrawlError) IsFatal() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeParsing, ErrorTypeAlert, ErrorTypeUsage, ErrorTypeConfiguration:
		return true
	case ErrorTypeRateLimit, ErrorTypeStorage:
		return false
	default:
		return true
	}
}

// TypeOf returns the error type of err, or "" if err is not a CrawlError
func TypeOf(err error) ErrorType {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ""
}

// IsFatal reports whether err must abort the crawl. Errors outside the
// taxonomy are fatal.
func IsFatal(err error) bool {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.IsFatal()
	}
	return true
}

// New creates a new CrawlError
func New(errType ErrorType, target, message string, err error) *CrawlError {
	return &CrawlError{
		Type:    errType,
		Target:  target,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(target, message string, err error) *CrawlError {
	return New(ErrorTypeNetwork, target, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(target, message string, err error) *CrawlError {
	return New(ErrorTypeParsing, target, message, err)
}

// NewAlert creates a new alert error carrying the server's alert text
func NewAlert(target, alertText string) *CrawlError {
	return New(ErrorTypeAlert, target, alertText, nil)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(target string, duration time.Duration) *CrawlError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, target, message, nil)
}

// NewStorage creates a new storage error
func NewStorage(target, message string, err error) *CrawlError {
	return New(ErrorTypeStorage, target, message, err)
}

// NewUsage creates a new usage error
func NewUsage(message string) *CrawlError {
	return New(ErrorTypeUsage, "", message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlError {
	return New(ErrorTypeConfiguration, "", message, err)
}
