package reactor

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/logger"
)

// ChannelClient defines the two remote operations the loop depends on.
// Implementations must return batches ordered newest-first and surface
// throttling as ErrRateLimited.
type ChannelClient interface {
	ListRecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error)
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
}

// CursorStore optionally persists the cursor across restarts.
// Absence or corruption of the stored record is non-fatal.
type CursorStore interface {
	Load(ctx context.Context, channelID string) (messageID string, found bool, err error)
	Save(ctx context.Context, channelID, messageID string) error
}

// EventPublisher publishes reaction events for downstream consumers.
type EventPublisher interface {
	PublishReaction(ctx context.Context, event ReactionEvent) error
}

// ReactionEvent describes one successfully added reaction.
type ReactionEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	ChannelID string    `json:"channel_id"`
	MessageID string    `json:"message_id"`
	Emoji     string    `json:"emoji"`
	ReactedAt time.Time `json:"reacted_at"`
}

// Service runs the poll cycle: fetch a bounded batch, compute the delta
// against the cursor, triage each new message through the reaction policy
// and dispatch delayed reaction attempts.
//
// Fetch and triage form the only exclusive section (the scheduler
// guarantees single flight); reaction attempts are independent concurrent
// tasks that may outlive the cycle that launched them.
type Service struct {
	client     ChannelClient
	channelID  string
	fetchLimit int
	policy     Policy
	cursor     *Cursor
	backoff    *Backoff
	stats      *Stats
	store      CursorStore    // optional, may be nil
	publisher  EventPublisher // optional, may be nil
	log        *logger.Logger

	// injectable randomness and delay, for deterministic tests
	intn  func(n int) int
	sleep func(ctx context.Context, d time.Duration) bool

	attempts sync.WaitGroup
}

// NewService creates a poll cycle engine. store and publisher may be nil.
func NewService(
	client ChannelClient,
	channelID string,
	fetchLimit int,
	policy Policy,
	backoff *Backoff,
	stats *Stats,
	store CursorStore,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		client:     client,
		channelID:  channelID,
		fetchLimit: fetchLimit,
		policy:     policy,
		cursor:     NewCursor(),
		backoff:    backoff,
		stats:      stats,
		store:      store,
		publisher:  publisher,
		log:        log,
		intn:       rand.Intn,
		sleep:      sleepFor,
	}
}

// RestoreCursor loads the persisted cursor position, if any.
func (s *Service) RestoreCursor(ctx context.Context) {
	if s.store == nil {
		return
	}

	id, found, err := s.store.Load(ctx, s.channelID)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load persisted cursor, starting fresh")
		return
	}
	if !found {
		s.log.Info().Msg("no persisted cursor, starting fresh")
		return
	}

	s.cursor.Restore(id)
	s.log.Info().Str("last_message_id", id).Msg("cursor restored")
}

// CursorPosition returns the current cursor position for reporting.
func (s *Service) CursorPosition() (string, bool) {
	return s.cursor.LastSeen()
}

// RunCycle executes one poll cycle. It never reports an error to the
// caller: every failure, including a panic, is contained here and routed
// to the backoff controller, so the scheduler only ever sees "cycle
// finished".
func (s *Service) RunCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("poll cycle panicked")
			s.backoff.OnFailure(FailureTransient)
		}
	}()

	batch, err := s.client.ListRecentMessages(ctx, s.channelID, s.fetchLimit)
	if err != nil {
		kind := FailureTransient
		if errors.Is(err, ErrRateLimited) {
			kind = FailureRateLimited
		}
		s.log.Error().Err(err).Msg("failed to list recent messages")
		s.backoff.OnFailure(kind)
		return
	}

	delta := computeDelta(s.cursor, batch)
	if len(delta) == 0 {
		return
	}

	s.log.Debug().Int("fetched", len(batch)).Int("new", len(delta)).Msg("poll cycle delta")

	for _, msg := range delta {
		s.triage(ctx, msg)
	}

	// advance once per cycle, only after the whole delta is triaged, so a
	// crash mid-delta never marks partially-handled messages as done
	latest := batch[0]
	s.cursor.Advance(latest.ID)
	if s.store != nil {
		if err := s.store.Save(ctx, s.channelID, latest.ID); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist cursor")
		}
	}
}

// triage applies the reaction policy to one new message and, when it
// passes, dispatches an independent delayed reaction attempt.
func (s *Service) triage(ctx context.Context, msg Message) {
	if msg.AuthorBot {
		s.stats.MarkSkipped()
		s.log.Debug().Str("message_id", msg.ID).Msg("skipping bot-authored message")
		return
	}

	if !s.policy.PassesGate(s.intn) {
		s.stats.MarkSkipped()
		s.log.Debug().Str("message_id", msg.ID).Msg("message skipped by probability gate")
		return
	}

	emoji := s.policy.PickEmoji(s.intn)
	delay := s.policy.ReactionDelay(len(msg.Content), s.intn)

	s.attempts.Add(1)
	go s.attemptReaction(ctx, msg.ID, emoji, delay)
}

// attemptReaction waits out the human-like delay and adds the reaction.
// Runs as a fire-and-forget task; outcome is reported to the backoff
// controller, never to the scheduler.
func (s *Service) attemptReaction(ctx context.Context, messageID, emoji string, delay time.Duration) {
	defer s.attempts.Done()

	if !s.sleep(ctx, delay) {
		// shutdown before the delay elapsed; at-least-once semantics make
		// abandoning the attempt acceptable
		s.log.Debug().Str("message_id", messageID).Msg("reaction attempt abandoned")
		return
	}

	err := s.client.AddReaction(ctx, s.channelID, messageID, emoji)
	switch {
	case err == nil:
		s.stats.MarkReacted()
		s.backoff.OnSuccess()
		s.log.Info().Str("message_id", messageID).Str("emoji", emoji).Msg("reaction added")
		s.publishEvent(ctx, messageID, emoji)
	case errors.Is(err, ErrRateLimited):
		// never retried for the same message
		s.stats.MarkFailed()
		s.backoff.OnFailure(FailureRateLimited)
		s.log.Warn().Str("message_id", messageID).Msg("reaction rate limited, backing off")
	default:
		s.stats.MarkFailed()
		s.backoff.OnFailure(FailureTransient)
		s.log.Error().Err(err).Str("message_id", messageID).Msg("failed to add reaction")
	}
}

// publishEvent emits a reaction event, best-effort.
func (s *Service) publishEvent(ctx context.Context, messageID, emoji string) {
	if s.publisher == nil {
		return
	}

	event := ReactionEvent{
		EventID:   uuid.New(),
		ChannelID: s.channelID,
		MessageID: messageID,
		Emoji:     emoji,
		ReactedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishReaction(ctx, event); err != nil {
		s.log.Warn().Err(err).Msg("failed to publish reaction event")
	}
}

// Wait blocks until all in-flight reaction attempts finish, up to the
// given timeout. Returns false if attempts were still pending.
func (s *Service) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.attempts.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// sleepFor waits for d or until the context is cancelled.
// Returns false when cancelled.
func sleepFor(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
