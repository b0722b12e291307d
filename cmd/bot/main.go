package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/config"
	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/database"
	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/discord"
	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/logger"
	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/nats"
	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/publisher"
	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/reactor"
	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/repository"
	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/web"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}

	// 3. Validate before anything touches the network
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Str("channel_id", cfg.ChannelID).
		Int("probability", cfg.ReactionProbability).
		Int("poll_interval_ms", cfg.PollIntervalMs).
		Msg("starting auto-reaction bot")

	// 4. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 5. Optional cursor persistence
	var store reactor.CursorStore
	if cfg.CursorDB != "" {
		db, err := database.New(cfg.CursorDB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open cursor database")
		}
		defer db.Close()

		repo, err := repository.NewCursorRepository(db.GORM)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize cursor repository")
		}
		store = repo
	}

	// 6. Optional NATS event publishing
	var pub reactor.EventPublisher
	if cfg.NatsURL != "" {
		nc, err := nats.New(cfg.NatsURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
		} else {
			defer nc.Close()
			pub = publisher.NewNATSPublisher(nc.Conn)
		}
	}

	// 7. Discord client; bad credentials abort startup
	client, err := discord.New(cfg.DiscordToken, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create discord client")
	}
	if err := client.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to verify discord credentials")
	}

	// 8. Assemble the control loop
	policy := reactor.Policy{
		Emojis:             cfg.Emojis,
		ProbabilityPercent: cfg.ReactionProbability,
		MinDelay:           time.Duration(cfg.MinDelayMs) * time.Millisecond,
		MaxDelay:           time.Duration(cfg.MaxDelayMs) * time.Millisecond,
		ReadingPerChar:     time.Duration(cfg.ReadingMsPerChar) * time.Millisecond,
		MaxReading:         time.Duration(cfg.MaxReadingMs) * time.Millisecond,
	}

	backoff := reactor.NewBackoff(reactor.BackoffConfig{
		BaseInterval:       time.Duration(cfg.PollIntervalMs) * time.Millisecond,
		MaxInterval:        time.Duration(cfg.MaxBackoffMs) * time.Millisecond,
		Multiplier:         cfg.BackoffMultiplier,
		ErrorThreshold:     cfg.ErrorThreshold,
		RateLimitThreshold: cfg.RateLimitThreshold,
	})

	stats := reactor.NewStats()
	svc := reactor.NewService(client, cfg.ChannelID, cfg.FetchLimit, policy, backoff, stats, store, pub, log)
	svc.RestoreCursor(ctx)

	// 9. Optional status server
	if cfg.HTTPPort > 0 {
		srv := web.NewServer(&web.Config{Port: cfg.HTTPPort}, svc, stats, backoff)

		log.Info().Int("port", cfg.HTTPPort).Msg("starting status server")
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("status server error")
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	// 10. Run until interrupted
	sched := reactor.NewScheduler(backoff, time.Duration(cfg.PollJitterMs)*time.Millisecond, svc.RunCycle, log)
	sched.Run(ctx)

	// 11. Give in-flight reaction attempts a moment, then flush final stats
	if !svc.Wait(5 * time.Second) {
		log.Warn().Msg("abandoning in-flight reaction attempts")
	}

	snap := stats.Snapshot()
	log.Info().
		Int64("reacted", snap.Reacted).
		Int64("skipped", snap.Skipped).
		Int64("failed", snap.Failed).
		Dur("uptime", snap.Uptime).
		Msg("shutdown complete")
}
