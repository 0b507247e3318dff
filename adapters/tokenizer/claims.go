package tokenizer

import "github.com/golang-jwt/jwt/v5"

// UserInfo is the identity payload carried by session tokens
type UserInfo struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Role    string `json:"role"`
}

// AccessClaims combines standard claims with the user identity
type AccessClaims struct {
	jwt.RegisteredClaims
	UserInfo UserInfo `json:"UserInfo"`
}

// RefreshClaims carry the same identity, signed with the refresh secret
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserInfo UserInfo `json:"UserInfo"`
}
