// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// validation errors
var (
	ErrTokenRequired      = errors.New("DISCORD_TOKEN is required")
	ErrChannelRequired    = errors.New("DISCORD_CHANNEL_ID is required")
	ErrInvalidProbability = errors.New("reaction probability must be between 0 and 100")
	ErrInvalidDelayRange  = errors.New("min reaction delay must not exceed max reaction delay")
	ErrInvalidInterval    = errors.New("poll interval must be positive")
	ErrInvalidMultiplier  = errors.New("backoff multiplier must be greater than 1")
	ErrInvalidMaxBackoff  = errors.New("max backoff must not be below the poll interval")
	ErrInvalidThreshold   = errors.New("error thresholds must be at least 1")
	ErrInvalidFetchLimit  = errors.New("fetch limit must be between 1 and 100")
	ErrNoEmojis           = errors.New("at least one reaction emoji is required")
)

// Config holds all application configuration.
// Loaded once at startup, immutable afterwards.
type Config struct {
	// discord
	DiscordToken string
	ChannelID    string

	// reaction policy
	Emojis              []string
	ReactionProbability int
	MinDelayMs          int
	MaxDelayMs          int
	ReadingMsPerChar    int
	MaxReadingMs        int

	// polling & backoff
	PollIntervalMs     int
	PollJitterMs       int
	ErrorThreshold     int
	RateLimitThreshold int
	BackoffMultiplier  float64
	MaxBackoffMs       int
	FetchLimit         int

	// optional integrations
	CursorDB string // sqlite path or postgres:// url, empty = in-memory cursor only
	NatsURL  string // empty = event publishing disabled
	HTTPPort int    // 0 = status server disabled

	// logging
	LogLevel string
	LogFile  string

	// optional yaml policy file overriding the reaction policy fields
	PolicyFile string
}

// Load reads configuration from environment variables with sensible defaults.
// The optional POLICY_FILE overrides the reaction policy fields after env parsing.
func Load() (*Config, error) {
	cfg := &Config{
		DiscordToken:        getEnv("DISCORD_TOKEN", ""),
		ChannelID:           getEnv("DISCORD_CHANNEL_ID", ""),
		Emojis:              splitList(getEnv("REACTION_EMOJI", "👍")),
		ReactionProbability: getEnvInt("REACTION_PROBABILITY", 85),
		MinDelayMs:          getEnvInt("MIN_REACTION_DELAY_MS", 2000),
		MaxDelayMs:          getEnvInt("MAX_REACTION_DELAY_MS", 15000),
		ReadingMsPerChar:    getEnvInt("READING_MS_PER_CHAR", 30),
		MaxReadingMs:        getEnvInt("MAX_READING_MS", 10000),
		PollIntervalMs:      getEnvInt("POLL_INTERVAL_MS", 15000),
		PollJitterMs:        getEnvInt("POLL_JITTER_MS", 5000),
		ErrorThreshold:      getEnvInt("ERROR_THRESHOLD", 3),
		RateLimitThreshold:  getEnvInt("RATE_LIMIT_THRESHOLD", 0),
		BackoffMultiplier:   getEnvFloat("BACKOFF_MULTIPLIER", 2.0),
		MaxBackoffMs:        getEnvInt("MAX_BACKOFF_MS", 300000),
		FetchLimit:          getEnvInt("FETCH_LIMIT", 10),
		CursorDB:            getEnv("CURSOR_DB", ""),
		NatsURL:             getEnv("NATS_URL", ""),
		HTTPPort:            getEnvInt("HTTP_PORT", 0),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFile:             getEnv("LOG_FILE", ""),
		PolicyFile:          getEnv("POLICY_FILE", ""),
	}

	// the rate-limit threshold defaults to the generic one, preserving the
	// single-failure-path behavior unless tuned separately
	if cfg.RateLimitThreshold == 0 {
		cfg.RateLimitThreshold = cfg.ErrorThreshold
	}

	if cfg.PolicyFile != "" {
		policy, err := LoadPolicyFile(cfg.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("load policy file: %w", err)
		}
		policy.Apply(cfg)
	}

	return cfg, nil
}

// Validate checks required identifiers and value ranges.
// A failure here must abort startup before any polling begins.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return ErrTokenRequired
	}
	if c.ChannelID == "" {
		return ErrChannelRequired
	}
	if c.ReactionProbability < 0 || c.ReactionProbability > 100 {
		return ErrInvalidProbability
	}
	if c.MinDelayMs < 0 || c.MinDelayMs > c.MaxDelayMs {
		return ErrInvalidDelayRange
	}
	if c.PollIntervalMs <= 0 {
		return ErrInvalidInterval
	}
	if c.BackoffMultiplier <= 1 {
		return ErrInvalidMultiplier
	}
	if c.MaxBackoffMs < c.PollIntervalMs {
		return ErrInvalidMaxBackoff
	}
	if c.ErrorThreshold < 1 || c.RateLimitThreshold < 1 {
		return ErrInvalidThreshold
	}
	if c.FetchLimit < 1 || c.FetchLimit > 100 {
		return ErrInvalidFetchLimit
	}
	if len(c.Emojis) == 0 {
		return ErrNoEmojis
	}
	return nil
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
