// Package nats provides a thin connection wrapper for event publishing.
package nats

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// Client wraps a core NATS connection.
type Client struct {
	Conn *nats.Conn
}

// New connects to a NATS server.
func New(natsURL string) (*Client, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &Client{Conn: conn}, nil
}

// IsConnected returns true if connected to nats.
func (c *Client) IsConnected() bool {
	return c.Conn != nil && c.Conn.IsConnected()
}

// Close closes the nats connection.
func (c *Client) Close() {
	c.Conn.Close()
}
