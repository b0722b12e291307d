// Package discord implements the remote channel operations over the
// Discord REST API.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/logger"
	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/reactor"
)

// Client talks to Discord via the Bot REST API. No gateway connection is
// opened: polling only needs ChannelMessages and MessageReactionAdd.
type Client struct {
	session *discordgo.Session
	limiter *RateLimiter
	log     *logger.Logger
}

// New creates a Discord client from a bot token.
func New(token string, log *logger.Logger) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	// surface 429s to the caller instead of retrying inside discordgo;
	// the backoff controller owns throttling decisions
	session.ShouldRetryOnRateLimit = false

	return &Client{
		session: session,
		limiter: DefaultRateLimiter(),
		log:     log,
	}, nil
}

// Connect validates the credentials by fetching the bot identity.
// A failure here is a configuration error and must abort startup.
func (c *Client) Connect(ctx context.Context) error {
	user, err := c.session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("fetch bot identity: %w", err)
	}

	c.log.Info().
		Str("username", user.Username).
		Str("bot_id", user.ID).
		Msg("discord credentials verified")
	return nil
}

// ListRecentMessages fetches up to limit messages, newest first.
func (c *Client) ListRecentMessages(ctx context.Context, channelID string, limit int) ([]reactor.Message, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	msgs, err := c.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, c.mapError("list messages", err)
	}

	out := make([]reactor.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessage(m))
	}
	return out, nil
}

// AddReaction attaches an emoji reaction to a message.
func (c *Client) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if err := c.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return c.mapError("add reaction", err)
	}
	return nil
}

// mapError converts discordgo errors into the reactor's taxonomy: 429s
// become reactor.ErrRateLimited, everything else passes through wrapped.
func (c *Client) mapError(op string, err error) error {
	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) {
		c.limiter.SetCooldown(rl.RetryAfter)
		return fmt.Errorf("%s: %w", op, reactor.ErrRateLimited)
	}

	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", op, reactor.ErrRateLimited)
	}

	return fmt.Errorf("%s: %w", op, err)
}

// toMessage maps a discordgo message onto the reactor's message shape.
func toMessage(m *discordgo.Message) reactor.Message {
	msg := reactor.Message{
		ID:       m.ID,
		Content:  m.Content,
		PostedAt: m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorBot = m.Author.Bot
	}
	return msg
}
