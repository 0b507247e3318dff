package tokenizer

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/freelance/core"
)

const (
	Issuer          = "freelance"
	AudienceAccess  = "session:access"
	AudienceRefresh = "session:refresh"
)

// Config holds the signing material and lifetimes of session tokens
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// JWTTokenizer issues HS256 session tokens. Access and refresh tokens use
// distinct secrets and audiences so one can never stand in for the other.
type JWTTokenizer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(cfg Config) (*JWTTokenizer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token secrets must not be empty")
	}
	if subtle.ConstantTimeCompare(cfg.AccessSecret, cfg.RefreshSecret) == 1 {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	return &JWTTokenizer{
		accessSecret:  cfg.AccessSecret,
		refreshSecret: cfg.RefreshSecret,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}, nil
}

// WithClock replaces the time source, used by tests
func (j *JWTTokenizer) WithClock(now func() time.Time) *JWTTokenizer {
	j.now = now
	return j
}

// IssueAccessToken signs a short-lived access token for identity
func (j *JWTTokenizer) IssueAccessToken(identity core.Identity) (core.Token, error) {
	now := j.now()
	claims := AccessClaims{
		RegisteredClaims: j.registered(identity, now, j.accessTTL, AudienceAccess),
		UserInfo:         userInfo(identity),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.accessSecret)
	if err != nil {
		return core.Token{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return core.Token{Value: signed, ID: claims.ID, IssuedAt: now, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// IssueRefreshToken signs a long-lived refresh token for identity
func (j *JWTTokenizer) IssueRefreshToken(identity core.Identity) (core.Token, error) {
	now := j.now()
	claims := RefreshClaims{
		RegisteredClaims: j.registered(identity, now, j.refreshTTL, AudienceRefresh),
		UserInfo:         userInfo(identity),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.refreshSecret)
	if err != nil {
		return core.Token{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return core.Token{Value: signed, ID: claims.ID, IssuedAt: now, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// VerifyAccessToken parses an access token and returns its claims
func (j *JWTTokenizer) VerifyAccessToken(tokenStr string) (*core.Claims, error) {
	claims := &AccessClaims{}
	if err := j.parse(tokenStr, claims, j.accessSecret, AudienceAccess); err != nil {
		return nil, err
	}
	return toClaims(claims.RegisteredClaims, claims.UserInfo), nil
}

// VerifyRefreshToken parses a refresh token and returns its claims
func (j *JWTTokenizer) VerifyRefreshToken(tokenStr string) (*core.Claims, error) {
	claims := &RefreshClaims{}
	if err := j.parse(tokenStr, claims, j.refreshSecret, AudienceRefresh); err != nil {
		return nil, err
	}
	return toClaims(claims.RegisteredClaims, claims.UserInfo), nil
}

func (j *JWTTokenizer) registered(identity core.Identity, now time.Time, ttl time.Duration, audience string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   identity.UserID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Audience:  jwt.ClaimStrings{audience},
	}
}

func (j *JWTTokenizer) parse(tokenStr string, claims jwt.Claims, secret []byte, audience string) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithAudience(audience),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %v", core.ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: %v", core.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return core.ErrTokenInvalid
	}

	return nil
}

func userInfo(identity core.Identity) UserInfo {
	return UserInfo{
		ID:      identity.UserID,
		Address: identity.Address,
		Role:    string(identity.Role),
	}
}

func toClaims(rc jwt.RegisteredClaims, info UserInfo) *core.Claims {
	claims := &core.Claims{
		Identity: core.Identity{
			UserID:  info.ID,
			Address: info.Address,
			Role:    core.Role(info.Role),
		},
		TokenID: rc.ID,
	}
	if rc.IssuedAt != nil {
		claims.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		claims.ExpiresAt = rc.ExpiresAt.Time
	}
	return claims
}
