// Command validate-policy checks a YAML reaction policy file without
// starting the bot.
package main

import (
	"fmt"
	"os"

	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/config"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: validate-policy <policy.yaml>")
		os.Exit(2)
	}
	path := os.Args[1]

	pf, err := config.LoadPolicyFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}

	// apply over defaults and run the same validation the bot uses,
	// with placeholder identifiers so only policy fields can fail
	cfg := &config.Config{
		DiscordToken:        "placeholder",
		ChannelID:           "placeholder",
		Emojis:              []string{"👍"},
		ReactionProbability: 85,
		MinDelayMs:          2000,
		MaxDelayMs:          15000,
		ReadingMsPerChar:    30,
		MaxReadingMs:        10000,
		PollIntervalMs:      15000,
		ErrorThreshold:      3,
		RateLimitThreshold:  3,
		BackoffMultiplier:   2.0,
		MaxBackoffMs:        300000,
		FetchLimit:          10,
	}
	pf.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("ok: %d emoji(s), probability %d%%, delay %d-%dms\n",
		len(cfg.Emojis), cfg.ReactionProbability, cfg.MinDelayMs, cfg.MaxDelayMs)
}
