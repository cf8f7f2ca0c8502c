package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sirpyerre/incident-tracker/internal/core/ports"
)

var _ ports.NotificationSender = (*Publisher)(nil)

// Publisher broadcasts incident notifications on a Redis pub/sub channel so
// that any number of downstream consumers (mailers, chat bots) can react.
type Publisher struct {
	client  *redis.Client
	channel string
}

func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

type message struct {
	IncidentID int64    `json:"incident_id"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	Recipients []string `json:"recipients"`
}

func encodeMessage(n ports.Notification) ([]byte, error) {
	return json.Marshal(message{
		IncidentID: n.IncidentID,
		Subject:    n.Subject,
		Body:       n.Body,
		Recipients: n.Recipients,
	})
}

// Send publishes n. Having no subscribers is not an error.
func (p *Publisher) Send(ctx context.Context, n ports.Notification) error {
	payload, err := encodeMessage(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}
