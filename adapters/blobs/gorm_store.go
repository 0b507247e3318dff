package blobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/freelance/core"
	"gorm.io/gorm"
)

type blobRecord struct {
	ID          string `gorm:"primaryKey;size:191"`
	Filename    string
	ContentType string `gorm:"size:127"`
	Size        int64
	Data        []byte
	CreatedAt   time.Time
}

func (blobRecord) TableName() string {
	return "blobs"
}

// GormStore keeps uploaded files in the database
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a blob store on db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the blobs table
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&blobRecord{}); err != nil {
		return fmt.Errorf("failed to migrate blobs: %w", err)
	}
	return nil
}

// Put stores blob under its id
func (s *GormStore) Put(ctx context.Context, blob core.Blob) error {
	rec := &blobRecord{
		ID:          blob.ID,
		Filename:    blob.Filename,
		ContentType: blob.ContentType,
		Size:        int64(len(blob.Data)),
		Data:        blob.Data,
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to store blob %s: %w", blob.ID, err)
	}
	return nil
}

// Get loads a blob by id
func (s *GormStore) Get(ctx context.Context, id string) (*core.Blob, error) {
	var rec blobRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrBlobNotFound
		}
		return nil, err
	}

	return &core.Blob{
		ID:          rec.ID,
		Filename:    rec.Filename,
		ContentType: rec.ContentType,
		Data:        rec.Data,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

// Delete removes a blob. Deleting a missing blob reports core.ErrBlobNotFound.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&blobRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete blob %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrBlobNotFound
	}
	return nil
}
