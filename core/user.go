package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role is the marketplace role a user signed up with
type Role string

const (
	RoleClient     Role = "CLIENT"
	RoleFreelancer Role = "FREELANCER"
)

// ParseRole normalises a role name. An empty name defaults to CLIENT.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case "", RoleClient:
		return RoleClient, true
	case RoleFreelancer:
		return RoleFreelancer, true
	default:
		return "", false
	}
}

// CanonicalAddress returns the lowercased, trimmed form used as the user key
func CanonicalAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Project is a portfolio entry attached to a freelancer profile
type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Link        string   `json:"link,omitempty"`
	ImageIDs    []string `json:"imageIds"`
}

// User is the marketplace account keyed by wallet address
type User struct {
	ID       string
	Address  string
	Nickname string
	Role     Role
	Active   bool

	Email     string
	Phone     string
	Title     string
	Skills    []string
	Github    string
	Portfolio string
	Projects  []Project

	PublishedJobs int
	CompletedJobs int
	TotalEarnings decimal.Decimal
	TotalSpent    decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity returns the token payload for the user
func (u *User) Identity() Identity {
	return Identity{
		UserID:  u.ID,
		Address: u.Address,
		Role:    u.Role,
	}
}

// Blob is a stored file, used for portfolio images
type Blob struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}
