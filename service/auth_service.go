package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/freelance/core"
	"github.com/layer-3/freelance/ports"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Session is the outcome of a successful login, signup or refresh
type Session struct {
	AccessToken  core.Token
	RefreshToken core.Token
	User         *core.User
}

// Dependencies wires the collaborators of AuthService
type Dependencies struct {
	Nonces      ports.NonceRegistry
	Verifier    ports.SignatureVerifier
	Tokens      ports.TokenIssuer
	Users       ports.UserStore
	Blobs       ports.BlobStore       // optional, required only for portfolio uploads
	Revocations ports.RevocationStore // required when refresh rotation is on
	Events      ports.EventPublisher  // optional
	Logger      *zap.Logger
}

// Option configures AuthService
type Option func(*AuthService)

// WithRefreshRotation makes every refresh mint a new refresh token and revoke the presented one
func WithRefreshRotation() Option {
	return func(s *AuthService) {
		s.rotateRefresh = true
	}
}

// AuthService handles authentication business logic
type AuthService struct {
	nonces      ports.NonceRegistry
	verifier    ports.SignatureVerifier
	tokens      ports.TokenIssuer
	users       ports.UserStore
	blobs       ports.BlobStore
	revocations ports.RevocationStore
	eventPub    ports.EventPublisher
	logger      *zap.Logger

	rotateRefresh bool
	now           func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(deps Dependencies, opts ...Option) (*AuthService, error) {
	if deps.Nonces == nil || deps.Verifier == nil || deps.Tokens == nil || deps.Users == nil {
		return nil, errors.New("auth service requires nonces, verifier, tokens and users")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &AuthService{
		nonces:      deps.Nonces,
		verifier:    deps.Verifier,
		tokens:      deps.Tokens,
		users:       deps.Users,
		blobs:       deps.Blobs,
		revocations: deps.Revocations,
		eventPub:    deps.Events,
		logger:      deps.Logger.Named("auth"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.rotateRefresh && s.revocations == nil {
		return nil, errors.New("refresh rotation requires a revocation store")
	}
	return s, nil
}

// RequestChallenge issues a fresh nonce for the client to sign
func (s *AuthService) RequestChallenge(ctx context.Context) (core.Nonce, error) {
	n, err := s.nonces.Issue(ctx)
	if err != nil {
		return core.Nonce{}, core.NewError(core.KindUpstream, "Impossibile generare il nonce", err)
	}
	return n, nil
}

// Login authenticates an existing user who signed a nonce
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	address := core.CanonicalAddress(in.Address)

	// Burn the nonce and check the signer
	if err := s.verifyChallenge(ctx, address, in.Nonce, in.Signature); err != nil {
		return nil, err
	}

	user, err := s.users.FindByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.NewError(core.KindNotFound, MsgUserNotFound, err)
		}
		return nil, core.NewError(core.KindUpstream, "Errore nel recupero dell'utente", err)
	}
	if !user.Active {
		return nil, core.NewError(core.KindInactive, MsgInactive, nil)
	}

	session, err := s.establish(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("address", address), zap.String("user_id", user.ID))
	s.publish(ctx, core.EventLogin, user.Identity(), session.RefreshToken.ID)

	return session, nil
}

// Signup registers a new user who signed a nonce. Uploaded portfolio files
// are removed again if the account cannot be created.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	address := core.CanonicalAddress(in.Address)

	if err := s.verifyChallenge(ctx, address, in.Nonce, in.Signature); err != nil {
		return nil, err
	}

	// Reject taken addresses before touching the blob store
	_, err := s.users.FindByAddress(ctx, address)
	switch {
	case err == nil:
		return nil, conflict(address, core.ErrUserExists)
	case !errors.Is(err, core.ErrUserNotFound):
		return nil, core.NewError(core.KindUpstream, "Errore nel recupero dell'utente", err)
	}

	role, _ := core.ParseRole(in.Role)
	now := s.now()
	user := &core.User{
		ID:            uuid.NewString(),
		Address:       address,
		Nickname:      strings.TrimSpace(in.Nickname),
		Role:          role,
		Active:        true,
		TotalEarnings: decimal.Zero,
		TotalSpent:    decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var uploaded []string
	if role == core.RoleFreelancer {
		user.Title = strings.TrimSpace(in.Title)
		user.Skills = cleanSkills(in.Skills)

		user.Projects, uploaded, err = s.storeProjects(ctx, address, in.Projects)
		if err != nil {
			s.compensate(ctx, uploaded)
			return nil, core.NewError(core.KindUpstream, "Errore nel caricamento dei file", err)
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.compensate(ctx, uploaded)
		if errors.Is(err, core.ErrUserExists) {
			return nil, conflict(address, err)
		}
		return nil, core.NewError(core.KindUpstream, "Errore nella creazione dell'utente", err)
	}

	session, err := s.establish(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		zap.String("address", address),
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Int("files", len(uploaded)),
	)
	s.publish(ctx, core.EventSignup, user.Identity(), session.RefreshToken.ID)

	return session, nil
}

// Refresh exchanges a refresh token for a new access token. The presented
// refresh token is handed back unless rotation is enabled.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if blank(refreshToken) {
		return nil, core.NewError(core.KindUnauthorized, MsgUnauthorized, nil)
	}

	// Parse and validate the refresh token
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		s.logger.Debug("refresh token rejected", zap.Error(err))
		return nil, core.NewError(core.KindForbidden, MsgForbidden, err)
	}

	// Revoke first so concurrent reuse of the same token has exactly one winner
	if s.rotateRefresh {
		fresh, err := s.revocations.Revoke(ctx, claims.TokenID, s.remaining(claims.ExpiresAt))
		if err != nil {
			return nil, core.NewError(core.KindUpstream, "Errore nella revoca del token", err)
		}
		if !fresh {
			s.logger.Warn("refresh token reuse detected",
				zap.String("user_id", claims.UserID),
				zap.String("token_id", claims.TokenID),
			)
			return nil, core.NewError(core.KindForbidden, MsgForbidden, core.ErrTokenRevoked)
		}
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.NewError(core.KindUnauthorized, MsgUnauthorized, err)
		}
		return nil, core.NewError(core.KindUpstream, "Errore nel recupero dell'utente", err)
	}
	if !user.Active {
		return nil, core.NewError(core.KindUnauthorized, MsgInactive, nil)
	}

	access, err := s.tokens.IssueAccessToken(user.Identity())
	if err != nil {
		return nil, core.NewError(core.KindInternal, "Errore nella generazione del token", err)
	}

	refresh := core.Token{
		Value:     refreshToken,
		ID:        claims.TokenID,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}
	if s.rotateRefresh {
		refresh, err = s.tokens.IssueRefreshToken(user.Identity())
		if err != nil {
			return nil, core.NewError(core.KindInternal, "Errore nella generazione del token", err)
		}
	}

	return &Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Logout ends a session. It never fails: invalid or missing tokens are ignored
// and the caller clears the cookie regardless.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if blank(refreshToken) {
		return
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		s.logger.Debug("logout with unusable refresh token", zap.Error(err))
		return
	}

	if s.rotateRefresh {
		if _, err := s.revocations.Revoke(ctx, claims.TokenID, s.remaining(claims.ExpiresAt)); err != nil {
			s.logger.Warn("failed to revoke refresh token on logout", zap.Error(err))
		}
	}

	s.publish(ctx, core.EventLogout, claims.Identity, claims.TokenID)
}

// Authenticate validates a bearer access token
func (s *AuthService) Authenticate(accessToken string) (*core.Claims, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) {
			return nil, core.NewError(core.KindUnauthorized, "Token scaduto", err)
		}
		return nil, core.NewError(core.KindForbidden, "Token non valido", err)
	}
	return claims, nil
}

func (s *AuthService) verifyChallenge(ctx context.Context, address, nonce, signature string) error {
	if err := s.nonces.Consume(ctx, nonce); err != nil {
		if errors.Is(err, core.ErrNonceInvalid) {
			return core.NewError(core.KindChallenge, MsgInvalidNonce, err)
		}
		return core.NewError(core.KindUpstream, "Errore nella verifica del nonce", err)
	}

	ok, err := s.verifier.VerifyClaim(address, nonce, signature)
	if err != nil {
		return core.NewError(core.KindSignature, MsgSignatureFailed, err)
	}
	if !ok {
		return core.NewError(core.KindSignature, MsgSignatureFailed, core.ErrInvalidSignature)
	}
	return nil
}

func (s *AuthService) establish(user *core.User) (*Session, error) {
	identity := user.Identity()

	access, err := s.tokens.IssueAccessToken(identity)
	if err != nil {
		return nil, core.NewError(core.KindInternal, "Errore nella generazione del token", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(identity)
	if err != nil {
		return nil, core.NewError(core.KindInternal, "Errore nella generazione del token", err)
	}

	return &Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// storeProjects uploads project files as <address>_project_<i>_<j>. The ids
// stored so far are returned even on failure.
func (s *AuthService) storeProjects(ctx context.Context, address string, inputs []ProjectInput) ([]core.Project, []string, error) {
	projects := make([]core.Project, 0, len(inputs))
	var uploaded []string

	for i, p := range inputs {
		project := core.Project{
			Title:       strings.TrimSpace(p.Title),
			Description: strings.TrimSpace(p.Description),
			Link:        strings.TrimSpace(p.Link),
			ImageIDs:    []string{},
		}

		for j, f := range p.Files {
			if s.blobs == nil {
				return nil, uploaded, errors.New("blob store not configured")
			}

			id := fmt.Sprintf("%s_project_%d_%d", address, i, j)
			err := s.blobs.Put(ctx, core.Blob{
				ID:          id,
				Filename:    f.Filename,
				ContentType: f.ContentType,
				Data:        f.Data,
			})
			if err != nil {
				return nil, uploaded, err
			}

			uploaded = append(uploaded, id)
			project.ImageIDs = append(project.ImageIDs, id)
		}

		projects = append(projects, project)
	}

	return projects, uploaded, nil
}

// compensate deletes blobs stored by a signup that did not complete
func (s *AuthService) compensate(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}

	// cleanup must outlive a cancelled request
	ctx = context.WithoutCancel(ctx)
	for _, id := range ids {
		if err := s.blobs.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to delete orphaned blob", zap.String("blob_id", id), zap.Error(err))
		}
	}
	s.logger.Info("rolled back signup uploads", zap.Int("files", len(ids)))
}

func (s *AuthService) publish(ctx context.Context, typ core.EventType, identity core.Identity, tokenID string) {
	if s.eventPub == nil {
		return
	}

	err := s.eventPub.Publish(ctx, core.AuthEvent{
		Type:       typ,
		UserID:     identity.UserID,
		Address:    identity.Address,
		Role:       identity.Role,
		TokenID:    tokenID,
		OccurredAt: s.now(),
	})
	if err != nil {
		// the session is already established
		s.logger.Warn("failed to publish auth event", zap.String("type", string(typ)), zap.Error(err))
	}
}

// remaining is the revocation TTL for a token expiring at exp
func (s *AuthService) remaining(exp time.Time) time.Duration {
	if d := exp.Sub(s.now()); d > time.Second {
		return d
	}
	return time.Second
}

func conflict(address string, err error) error {
	return core.NewError(core.KindConflict, fmt.Sprintf("User with address %s already exists.", address), err)
}
