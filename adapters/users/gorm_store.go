package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/freelance/core"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// userRecord is the users table row
type userRecord struct {
	ID       string `gorm:"primaryKey;size:36"`
	Address  string `gorm:"uniqueIndex;size:64;not null"`
	Nickname string `gorm:"not null"`
	Role     string `gorm:"index;size:16;not null"`
	Active   bool   `gorm:"not null"`

	Email     string
	Phone     string
	Title     string
	Skills    []string       `gorm:"serializer:json;type:text"`
	Github    string
	Portfolio string
	Projects  []core.Project `gorm:"serializer:json;type:text"`

	PublishedJobs int             `gorm:"not null;default:0"`
	CompletedJobs int             `gorm:"not null;default:0"`
	TotalEarnings decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	TotalSpent    decimal.Decimal `gorm:"type:decimal(20,8);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRecord) TableName() string {
	return "users"
}

// GormStore persists users through gorm
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a user store on db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the users table
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&userRecord{}); err != nil {
		return fmt.Errorf("failed to migrate users: %w", err)
	}
	return nil
}

// FindByAddress looks a user up by wallet address, case-insensitively
func (s *GormStore) FindByAddress(ctx context.Context, address string) (*core.User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).Where("address = ?", core.CanonicalAddress(address)).First(&rec).Error
	if err != nil {
		return nil, translate(err)
	}
	return rec.toUser(), nil
}

// FindByID looks a user up by id
func (s *GormStore) FindByID(ctx context.Context, id string) (*core.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return rec.toUser(), nil
}

// Create inserts user, assigning an id when it has none
func (s *GormStore) Create(ctx context.Context, user *core.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Address = core.CanonicalAddress(user.Address)

	rec := toRecord(user)
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return translate(err)
	}

	user.CreatedAt = rec.CreatedAt
	user.UpdatedAt = rec.UpdatedAt
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return core.ErrUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return core.ErrUserExists
	default:
		return err
	}
}

// isUniqueViolation catches drivers that do not implement gorm's error translation
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func toRecord(u *core.User) *userRecord {
	return &userRecord{
		ID:            u.ID,
		Address:       u.Address,
		Nickname:      u.Nickname,
		Role:          string(u.Role),
		Active:        u.Active,
		Email:         u.Email,
		Phone:         u.Phone,
		Title:         u.Title,
		Skills:        u.Skills,
		Github:        u.Github,
		Portfolio:     u.Portfolio,
		Projects:      u.Projects,
		PublishedJobs: u.PublishedJobs,
		CompletedJobs: u.CompletedJobs,
		TotalEarnings: u.TotalEarnings,
		TotalSpent:    u.TotalSpent,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (r *userRecord) toUser() *core.User {
	return &core.User{
		ID:            r.ID,
		Address:       r.Address,
		Nickname:      r.Nickname,
		Role:          core.Role(r.Role),
		Active:        r.Active,
		Email:         r.Email,
		Phone:         r.Phone,
		Title:         r.Title,
		Skills:        r.Skills,
		Github:        r.Github,
		Portfolio:     r.Portfolio,
		Projects:      r.Projects,
		PublishedJobs: r.PublishedJobs,
		CompletedJobs: r.CompletedJobs,
		TotalEarnings: r.TotalEarnings,
		TotalSpent:    r.TotalSpent,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
