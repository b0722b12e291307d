package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DiscordToken:        "token",
		ChannelID:           "123456",
		Emojis:              []string{"👍"},
		ReactionProbability: 85,
		MinDelayMs:          2000,
		MaxDelayMs:          15000,
		ReadingMsPerChar:    30,
		MaxReadingMs:        10000,
		PollIntervalMs:      15000,
		PollJitterMs:        5000,
		ErrorThreshold:      3,
		RateLimitThreshold:  3,
		BackoffMultiplier:   2.0,
		MaxBackoffMs:        300000,
		FetchLimit:          10,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_CHANNEL_ID", "123456")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"👍"}, cfg.Emojis)
	assert.Equal(t, 85, cfg.ReactionProbability)
	assert.Equal(t, 15000, cfg.PollIntervalMs)
	assert.Equal(t, 3, cfg.ErrorThreshold)
	assert.Equal(t, 3, cfg.RateLimitThreshold, "rate limit threshold defaults to the generic one")
	assert.Equal(t, 10, cfg.FetchLimit)
	assert.Equal(t, "", cfg.CursorDB)
	assert.Equal(t, 0, cfg.HTTPPort)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_CHANNEL_ID", "123456")
	t.Setenv("REACTION_EMOJI", "🔥, 👍 ,🎉")
	t.Setenv("RATE_LIMIT_THRESHOLD", "1")
	t.Setenv("POLL_INTERVAL_MS", "30000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"🔥", "👍", "🎉"}, cfg.Emojis)
	assert.Equal(t, 1, cfg.RateLimitThreshold)
	assert.Equal(t, 30000, cfg.PollIntervalMs)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing token", func(c *Config) { c.DiscordToken = "" }, ErrTokenRequired},
		{"missing channel", func(c *Config) { c.ChannelID = "" }, ErrChannelRequired},
		{"probability above 100", func(c *Config) { c.ReactionProbability = 101 }, ErrInvalidProbability},
		{"negative probability", func(c *Config) { c.ReactionProbability = -1 }, ErrInvalidProbability},
		{"min delay above max", func(c *Config) { c.MinDelayMs = 20000 }, ErrInvalidDelayRange},
		{"zero poll interval", func(c *Config) { c.PollIntervalMs = 0 }, ErrInvalidInterval},
		{"multiplier of one", func(c *Config) { c.BackoffMultiplier = 1.0 }, ErrInvalidMultiplier},
		{"max backoff below interval", func(c *Config) { c.MaxBackoffMs = 1000 }, ErrInvalidMaxBackoff},
		{"zero threshold", func(c *Config) { c.ErrorThreshold = 0 }, ErrInvalidThreshold},
		{"fetch limit too large", func(c *Config) { c.FetchLimit = 101 }, ErrInvalidFetchLimit},
		{"no emojis", func(c *Config) { c.Emojis = nil }, ErrNoEmojis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})
}

func TestPolicyFile(t *testing.T) {
	t.Run("overrides env policy fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		content := []byte("emojis: [\"🎉\"]\nprobability: 50\nmin_delay_ms: 100\n")
		require.NoError(t, os.WriteFile(path, content, 0644))

		t.Setenv("DISCORD_TOKEN", "token")
		t.Setenv("DISCORD_CHANNEL_ID", "123456")
		t.Setenv("POLICY_FILE", path)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, []string{"🎉"}, cfg.Emojis)
		assert.Equal(t, 50, cfg.ReactionProbability)
		assert.Equal(t, 100, cfg.MinDelayMs)
		// untouched fields keep their defaults
		assert.Equal(t, 15000, cfg.MaxDelayMs)
	})

	t.Run("missing file fails load", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "token")
		t.Setenv("DISCORD_CHANNEL_ID", "123456")
		t.Setenv("POLICY_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("malformed yaml fails load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("emojis: [unclosed"), 0644))

		_, err := LoadPolicyFile(path)
		assert.Error(t, err)
	})
}
