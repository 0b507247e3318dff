package core

import "time"

// Nonce represents a single-use authentication challenge
type Nonce struct {
	Value     string    // Random hex string the wallet signs
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge stops being redeemable
}

// Identity is the payload bound into access and refresh tokens
type Identity struct {
	UserID  string
	Address string
	Role    Role
}

// Token is a signed credential handed to the client
type Token struct {
	Value     string    // Encoded token
	ID        string    // Unique token identifier (jti)
	IssuedAt  time.Time // When the token was minted
	ExpiresAt time.Time // When the token stops being valid
}

// Claims is the verified content of a token
type Claims struct {
	Identity
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
