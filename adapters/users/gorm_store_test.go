package users

import (
	"context"
	"testing"

	"github.com/layer-3/freelance/core"
	"github.com/layer-3/freelance/internal/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)

	s := NewGormStore(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestGormStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := &core.User{
		Address:  "0xAB5801a7D398351b8bE11C439e05C5B3259aeC9B",
		Nickname: "alice",
		Role:     core.RoleFreelancer,
		Active:   true,
		Title:    "Solidity developer",
		Skills:   []string{"go", "solidity"},
		Projects: []core.Project{{
			Title:       "DEX",
			Description: "order book",
			ImageIDs:    []string{"0xab_project_0_0"},
		}},
		TotalEarnings: decimal.RequireFromString("12.5"),
		TotalSpent:    decimal.Zero,
	}
	require.NoError(t, s.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "0xab5801a7d398351b8be11c439e05c5b3259aec9b", u.Address)
	assert.False(t, u.CreatedAt.IsZero())

	byAddr, err := s.FindByAddress(ctx, "0xAB5801A7D398351B8BE11C439E05C5B3259AEC9B")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byAddr.ID)
	assert.Equal(t, core.RoleFreelancer, byAddr.Role)
	assert.Equal(t, []string{"go", "solidity"}, byAddr.Skills)
	assert.Equal(t, u.Projects, byAddr.Projects)
	assert.True(t, byAddr.TotalEarnings.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, byAddr.Active)

	byID, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, byAddr.Address, byID.Address)
}

func TestGormStore_InactiveIsPersisted(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := &core.User{Address: "0x01", Nickname: "bob", Role: core.RoleClient, Active: false}
	require.NoError(t, s.Create(ctx, u))

	got, err := s.FindByAddress(ctx, "0x01")
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestGormStore_DuplicateAddress(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Create(ctx, &core.User{Address: "0xAA", Nickname: "a", Role: core.RoleClient, Active: true}))
	err := s.Create(ctx, &core.User{Address: "0xaa", Nickname: "b", Role: core.RoleClient, Active: true})
	assert.ErrorIs(t, err, core.ErrUserExists)
}

func TestGormStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.FindByAddress(ctx, "0xmissing")
	assert.ErrorIs(t, err, core.ErrUserNotFound)
	_, err = s.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}
