package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "www.lse.co.uk", config.Host)
	assert.Equal(t, 5*time.Second, config.PagePauseMax)
	assert.Equal(t, 4096, config.PageFetchMax)
	assert.Equal(t, 10*time.Second, config.HTTPTimeout)
	assert.Equal(t, "posts.sqlite3", config.DBPath)
	assert.Equal(t, "", config.MemcacheAddr)
	assert.Equal(t, "", config.RedisAddr)
	assert.Equal(t, "lsedump", config.RedisStream)

	// Test with environment variables
	os.Setenv("LSEDUMP_HOST", "lse.example.com")
	os.Setenv("LSEDUMP_PAGE_PAUSE_MAX_SECONDS", "2")
	os.Setenv("LSEDUMP_PAGE_FETCH_MAX", "100")
	os.Setenv("LSEDUMP_DB_PATH", "/tmp/test.sqlite3")
	os.Setenv("LSEDUMP_MEMCACHE_ADDR", "memcache.example.com:11211")
	os.Setenv("LSEDUMP_REDIS_ADDR", "redis.example.com:6379")

	config = LoadConfig()
	assert.Equal(t, "lse.example.com", config.Host)
	assert.Equal(t, 2*time.Second, config.PagePauseMax)
	assert.Equal(t, 100, config.PageFetchMax)
	assert.Equal(t, "/tmp/test.sqlite3", config.DBPath)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)

	// Clean up
	os.Unsetenv("LSEDUMP_HOST")
	os.Unsetenv("LSEDUMP_PAGE_PAUSE_MAX_SECONDS")
	os.Unsetenv("LSEDUMP_PAGE_FETCH_MAX")
	os.Unsetenv("LSEDUMP_DB_PATH")
	os.Unsetenv("LSEDUMP_MEMCACHE_ADDR")
	os.Unsetenv("LSEDUMP_REDIS_ADDR")
}

func TestValidate(t *testing.T) {
	config := LoadConfig()
	assert.NoError(t, config.Validate())

	config.PageFetchMax = 0
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.PageFetchMax = StartPageLimit + 1
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.Host = ""
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.HTTPTimeout = 0
	assert.Error(t, config.Validate())
}

func TestURLConstruction(t *testing.T) {
	config := LoadConfig()

	assert.Equal(t,
		"https://www.lse.co.uk/profiles/someuser/?page=3",
		config.UserURL("someuser", 3))
	assert.Equal(t,
		"https://www.lse.co.uk/ShareChat.asp?ShareTicker=AFC&page=1",
		config.TickerURL("AFC", 1))
}
