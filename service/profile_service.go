package service

import (
	"context"
	"errors"

	"github.com/layer-3/freelance/core"
	"github.com/layer-3/freelance/ports"
)

// ProfileService serves account and portfolio reads for authenticated callers
type ProfileService struct {
	users ports.UserStore
	blobs ports.BlobStore
}

// NewProfileService creates a new profile service
func NewProfileService(users ports.UserStore, blobs ports.BlobStore) *ProfileService {
	return &ProfileService{users: users, blobs: blobs}
}

// Me returns the account behind verified claims
func (s *ProfileService) Me(ctx context.Context, claims *core.Claims) (*core.User, error) {
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

// Profile returns the public profile of address
func (s *ProfileService) Profile(ctx context.Context, address string) (*core.User, error) {
	user, err := s.users.FindByAddress(ctx, address)
	if err != nil {
		return nil, userError(err)
	}
	if !user.Active {
		return nil, core.NewError(core.KindNotFound, "Utente non trovato", nil)
	}
	return user, nil
}

// Image returns a stored portfolio file
func (s *ProfileService) Image(ctx context.Context, id string) (*core.Blob, error) {
	if s.blobs == nil {
		return nil, core.NewError(core.KindNotFound, "Immagine non trovata", core.ErrBlobNotFound)
	}

	blob, err := s.blobs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrBlobNotFound) {
			return nil, core.NewError(core.KindNotFound, "Immagine non trovata", err)
		}
		return nil, core.NewError(core.KindUpstream, "Errore nel recupero dell'immagine", err)
	}
	return blob, nil
}

func userError(err error) error {
	if errors.Is(err, core.ErrUserNotFound) {
		return core.NewError(core.KindNotFound, "Utente non trovato", err)
	}
	return core.NewError(core.KindUpstream, "Errore nel recupero dell'utente", err)
}
