package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/openpan/drive-service/entity"
	"gorm.io/gorm"
)

type PendingUploadRepository struct {
	db *gorm.DB
}

func NewPendingUploadRepository(db *gorm.DB) *PendingUploadRepository {
	return &PendingUploadRepository{db: db}
}

func (r *PendingUploadRepository) Create(pending *entity.PendingUpload) error {
	return r.db.Create(pending).Error
}

func (r *PendingUploadRepository) FindByID(id uuid.UUID) (*entity.PendingUpload, error) {
	var pending entity.PendingUpload
	err := r.db.Where("id = ?", id).First(&pending).Error
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

// FindByUserFileID locates the finalize token for a pending logical entry.
func (r *PendingUploadRepository) FindByUserFileID(userFileID uuid.UUID) (*entity.PendingUpload, error) {
	var pending entity.PendingUpload
	err := r.db.Where("user_file_id = ?", userFileID).First(&pending).Error
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

// FindByKeyAndUser locates a pending upload by its storage key, scoped to the
// requesting user.
func (r *PendingUploadRepository) FindByKeyAndUser(storageKey string, userID uuid.UUID) (*entity.PendingUpload, error) {
	var pending entity.PendingUpload
	err := r.db.Where("storage_key = ? AND user_id = ?", storageKey, userID).First(&pending).Error
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *PendingUploadRepository) UpdateStatus(id uuid.UUID, status entity.UploadStatus) error {
	return r.db.Model(&entity.PendingUpload{}).Where("id = ?", id).
		Update("status", status).Error
}

// MarkLinked flips PENDING to LINKED and reports whether this call won the
// transition. Repeated link requests see zero rows affected and do nothing.
func (r *PendingUploadRepository) MarkLinked(id uuid.UUID) (bool, error) {
	result := r.db.Model(&entity.PendingUpload{}).
		Where("id = ? AND status = ?", id, entity.UploadStatusPending).
		Update("status", entity.UploadStatusLinked)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindExpired returns stale PENDING rows past their expiry.
func (r *PendingUploadRepository) FindExpired(now time.Time, limit int) ([]entity.PendingUpload, error) {
	var pendings []entity.PendingUpload
	err := r.db.Where("expires_at < ? AND status = ?", now, entity.UploadStatusPending).
		Limit(limit).Find(&pendings).Error
	return pendings, err
}

func (r *PendingUploadRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.PendingUpload{}, "id = ?", id).Error
}
