package ports

import "github.com/layer-3/freelance/core"

// TokenIssuer mints and verifies session tokens
type TokenIssuer interface {
	IssueAccessToken(identity core.Identity) (core.Token, error)
	IssueRefreshToken(identity core.Identity) (core.Token, error)

	// Verification fails with core.ErrTokenExpired or core.ErrTokenInvalid
	VerifyAccessToken(token string) (*core.Claims, error)
	VerifyRefreshToken(token string) (*core.Claims, error)
}
