package ports

import (
	"context"

	"github.com/layer-3/freelance/core"
)

// EventPublisher publishes authentication events to other services
type EventPublisher interface {
	Publish(ctx context.Context, event core.AuthEvent) error
}
