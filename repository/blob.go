package repository

import (
	"github.com/google/uuid"
	"github.com/openpan/drive-service/entity"
	"gorm.io/gorm"
)

type BlobRepository struct {
	db *gorm.DB
}

func NewBlobRepository(db *gorm.DB) *BlobRepository {
	return &BlobRepository{db: db}
}

func (r *BlobRepository) Create(blob *entity.Blob) error {
	return r.db.Create(blob).Error
}

func (r *BlobRepository) FindByID(id uuid.UUID) (*entity.Blob, error) {
	var blob entity.Blob
	err := r.db.Where("id = ?", id).First(&blob).Error
	if err != nil {
		return nil, err
	}
	return &blob, nil
}

// FindByIdentity looks up a blob by its dedup key (hash, size, mime).
func (r *BlobRepository) FindByIdentity(hash string, sizeBytes int64, mimeType string) (*entity.Blob, error) {
	var blob entity.Blob
	err := r.db.Where("hash = ? AND size_bytes = ? AND mime_type = ?", hash, sizeBytes, mimeType).
		First(&blob).Error
	if err != nil {
		return nil, err
	}
	return &blob, nil
}

// FirstOrCreateByIdentity resolves concurrent link races on the dedup key:
// whichever request commits first wins, the rest get the existing row.
func (r *BlobRepository) FirstOrCreateByIdentity(blob *entity.Blob) error {
	return r.db.Where("hash = ? AND size_bytes = ? AND mime_type = ?",
		blob.Hash, blob.SizeBytes, blob.MimeType).
		FirstOrCreate(blob).Error
}

func (r *BlobRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.Blob{}, "id = ?", id).Error
}
