package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Hard bounds on user-supplied numeric options. Checked before any network
// activity.
const (
	PostsMaxLimit  = 131072
	StartPageLimit = 4096
)

// Config represents the application configuration
type Config struct {
	// Crawl target
	Host string

	// Crawler configuration
	PagePauseMax time.Duration
	PageFetchMax int
	HTTPTimeout  time.Duration
	UserAgent    string

	// Dedup store
	DBPath string

	// Memcache configuration (optional, for the rate-limit cooldown cache)
	MemcacheAddr string

	// Redis configuration (optional, for publishing newly saved posts)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	pagePause, _ := strconv.Atoi(getEnv("LSEDUMP_PAGE_PAUSE_MAX_SECONDS", "5"))
	pageFetchMax, _ := strconv.Atoi(getEnv("LSEDUMP_PAGE_FETCH_MAX", "4096"))
	httpTimeout, _ := strconv.Atoi(getEnv("LSEDUMP_HTTP_TIMEOUT_SECONDS", "10"))
	redisDB, _ := strconv.Atoi(getEnv("LSEDUMP_REDIS_DB", "0"))
	redisStreamMaxLen, _ := strconv.Atoi(getEnv("LSEDUMP_REDIS_STREAM_MAXLEN", "500"))

	return &Config{
		Host:                 getEnv("LSEDUMP_HOST", "www.lse.co.uk"),
		PagePauseMax:         time.Duration(pagePause) * time.Second,
		PageFetchMax:         pageFetchMax,
		HTTPTimeout:          time.Duration(httpTimeout) * time.Second,
		UserAgent:            getEnv("LSEDUMP_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36"),
		DBPath:               getEnv("LSEDUMP_DB_PATH", "posts.sqlite3"),
		MemcacheAddr:         getEnv("LSEDUMP_MEMCACHE_ADDR", ""),
		RedisAddr:            getEnv("LSEDUMP_REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("LSEDUMP_REDIS_STREAM", "lsedump"),
		RedisStreamMaxLength: redisStreamMaxLen,
		Environment:          getEnv("LSEDUMP_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if c.PagePauseMax < 0 {
		return fmt.Errorf("page pause must not be negative")
	}
	if c.PageFetchMax < 1 || c.PageFetchMax > StartPageLimit {
		return fmt.Errorf("page fetch max must be between 1 and %d, got %d", StartPageLimit, c.PageFetchMax)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.RedisStreamMaxLength < 1 {
		return fmt.Errorf("redis stream max length must be positive")
	}
	return nil
}

// UserURL returns the chat page URL for a user profile
func (c *Config) UserURL(username string, page int) string {
	return fmt.Sprintf("https://%s/profiles/%s/?page=%d", c.Host, username, page)
}

// TickerURL returns the share chat page URL for a ticker
func (c *Config) TickerURL(ticker string, page int) string {
	return fmt.Sprintf("https://%s/ShareChat.asp?ShareTicker=%s&page=%d", c.Host, ticker, page)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
