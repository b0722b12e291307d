// Package publisher emits reaction events to NATS for downstream consumers.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/reactor"
)

// SubjectReactionAdded is the subject reaction events are published to.
const SubjectReactionAdded = "reactions.added"

// NATSClient interface to allow mocking
type NATSClient interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher implements reactor.EventPublisher
type NATSPublisher struct {
	nc NATSClient
}

// NewNATSPublisher creates a new publisher
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: conn}
}

// PublishReaction publishes a reaction event. Best-effort: the caller
// logs failures but the control loop is never affected.
func (p *NATSPublisher) PublishReaction(_ context.Context, event reactor.ReactionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.nc.Publish(SubjectReactionAdded, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}
