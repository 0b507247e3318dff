package ports

import (
	"context"

	"github.com/layer-3/freelance/core"
)

// UserStore persists marketplace accounts
type UserStore interface {
	FindByAddress(ctx context.Context, address string) (*core.User, error)
	FindByID(ctx context.Context, id string) (*core.User, error)
	// Create fails with core.ErrUserExists when the address is taken
	Create(ctx context.Context, user *core.User) error
}

// BlobStore keeps uploaded files
type BlobStore interface {
	Put(ctx context.Context, blob core.Blob) error
	Get(ctx context.Context, id string) (*core.Blob, error)
	Delete(ctx context.Context, id string) error
}
