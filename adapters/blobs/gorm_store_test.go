package blobs

import (
	"context"
	"testing"

	"github.com/layer-3/freelance/core"
	"github.com/layer-3/freelance/internal/database"
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

func TestGormStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	blob := core.Blob{
		ID:          "0xab_project_0_0",
		Filename:    "shot.png",
		ContentType: "image/png",
		Data:        []byte{0x89, 'P', 'N', 'G'},
	}
	require.NoError(t, s.Put(ctx, blob))

	got, err := s.Get(ctx, blob.ID)
	require.NoError(t, err)
	assert.Equal(t, blob.Data, got.Data)
	assert.Equal(t, "image/png", got.ContentType)
	assert.Equal(t, "shot.png", got.Filename)

	require.NoError(t, s.Delete(ctx, blob.ID))
	_, err = s.Get(ctx, blob.ID)
	assert.ErrorIs(t, err, core.ErrBlobNotFound)
	assert.ErrorIs(t, s.Delete(ctx, blob.ID), core.ErrBlobNotFound)
}

func TestGormStore_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Put(ctx, core.Blob{ID: "x", Data: []byte("1")}))
	assert.Error(t, s.Put(ctx, core.Blob{ID: "x", Data: []byte("2")}))
}
