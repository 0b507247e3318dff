package ports

import (
	"context"

	"github.com/layer-3/freelance/core"
)

// NonceRegistry issues single-use challenges and consumes them atomically
type NonceRegistry interface {
	Issue(ctx context.Context) (core.Nonce, error)
	// Consume removes the nonce and fails with core.ErrNonceInvalid when it
	// was never issued, was already consumed or has expired.
	Consume(ctx context.Context, value string) error
}
