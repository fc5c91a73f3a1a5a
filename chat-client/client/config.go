package client

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultServerURL      = "http://localhost:8080"
	DefaultStatsInterval  = 5 * time.Second
	DefaultStatsTimeout   = 5 * time.Second
	DefaultStatusInterval = time.Second
	DefaultStatusTTL      = 3 * time.Second
	DefaultDialTimeout    = 10 * time.Second
	DefaultHistorySize    = 100
)

// Config tunes the client. Zero durations and sizes fall back to the defaults.
type Config struct {
	ServerURL      string
	StatsInterval  time.Duration
	StatsTimeout   time.Duration
	StatusInterval time.Duration
	StatusTTL      time.Duration
	DialTimeout    time.Duration
	// HistorySize bounds the recent-message ring exposed through Snapshot.
	HistorySize int

	base *url.URL
}

func (c *Config) Validate() error {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("server url %q: scheme must be http, https, ws or wss", c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("server url %q: missing host", c.ServerURL)
	}
	c.base = u

	defaultDuration(&c.StatsInterval, DefaultStatsInterval)
	defaultDuration(&c.StatsTimeout, DefaultStatsTimeout)
	defaultDuration(&c.StatusInterval, DefaultStatusInterval)
	defaultDuration(&c.StatusTTL, DefaultStatusTTL)
	defaultDuration(&c.DialTimeout, DefaultDialTimeout)
	if c.HistorySize == 0 {
		c.HistorySize = DefaultHistorySize
	}

	for name, d := range map[string]time.Duration{
		"stats interval":  c.StatsInterval,
		"stats timeout":   c.StatsTimeout,
		"status interval": c.StatusInterval,
		"status ttl":      c.StatusTTL,
		"dial timeout":    c.DialTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.HistorySize < 0 {
		return errors.New("history size must not be negative")
	}
	return nil
}

// BaseURL is the parsed ServerURL; nil before Validate succeeds.
func (c *Config) BaseURL() *url.URL { return c.base }

func defaultDuration(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}
