package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/layer-3/freelance/core"
	"github.com/layer-3/freelance/ports"
)

const (
	TopicLogin  = "freelance.auth.login"
	TopicSignup = "freelance.auth.signup"
	TopicLogout = "freelance.auth.logout"
)

// AuthEventPayload is the wire form of an authentication event
type AuthEventPayload struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id,omitempty"`
	Address    string    `json:"address"`
	Role       string    `json:"role,omitempty"`
	TokenID    string    `json:"token_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// Topic returns the topic an event type is published on
func Topic(t core.EventType) (string, error) {
	switch t {
	case core.EventLogin:
		return TopicLogin, nil
	case core.EventSignup:
		return TopicSignup, nil
	case core.EventLogout:
		return TopicLogout, nil
	default:
		return "", fmt.Errorf("unknown event type %q", t)
	}
}

// Publish publishes an authentication event
func (p *WatermillPublisher) Publish(ctx context.Context, event core.AuthEvent) error {
	topic, err := Topic(event.Type)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(AuthEventPayload{
		Type:       string(event.Type),
		UserID:     event.UserID,
		Address:    event.Address,
		Role:       string(event.Role),
		TokenID:    event.TokenID,
		OccurredAt: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
