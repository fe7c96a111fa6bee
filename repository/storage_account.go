package repository

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/openpan/drive-service/entity"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type StorageAccountRepository struct {
	db *gorm.DB
}

func NewStorageAccountRepository(db *gorm.DB) *StorageAccountRepository {
	return &StorageAccountRepository{db: db}
}

// EnsureAccount is the idempotent fetch-or-create: a missing account gets the
// free-tier defaults.
func (r *StorageAccountRepository) EnsureAccount(userID uuid.UUID, freeQuotaBytes int64) (*entity.StorageAccount, error) {
	var account entity.StorageAccount
	err := r.db.Where("user_id = ?", userID).First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	plan, err := json.Marshal(entity.PlanInfo{Tier: "free", IsPro: false})
	if err != nil {
		return nil, err
	}

	account = entity.StorageAccount{
		UserID:     userID,
		UsedBytes:  0,
		TotalBytes: freeQuotaBytes,
		Plan:       datatypes.JSON(plan),
	}
	// Concurrent first requests may race on the insert; the losing side reads
	// the winner's row.
	if err := r.db.Where("user_id = ?", userID).FirstOrCreate(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// CheckLimit reports whether used + additionalBytes fits the quota. Advisory
// only: nothing holds the row between this check and a later commit.
func (r *StorageAccountRepository) CheckLimit(userID uuid.UUID, additionalBytes, freeQuotaBytes int64) (bool, *entity.StorageAccount, error) {
	account, err := r.EnsureAccount(userID, freeQuotaBytes)
	if err != nil {
		return false, nil, err
	}
	return account.UsedBytes+additionalBytes <= account.TotalBytes, account, nil
}

// AddUsage atomically shifts used_bytes by delta (negative on purge). The
// floor at zero guards against double-decrement on replayed purge messages.
func (r *StorageAccountRepository) AddUsage(userID uuid.UUID, delta int64) error {
	if delta >= 0 {
		return r.db.Model(&entity.StorageAccount{}).Where("user_id = ?", userID).
			Update("used_bytes", gorm.Expr("used_bytes + ?", delta)).Error
	}
	return r.db.Model(&entity.StorageAccount{}).Where("user_id = ?", userID).
		Update("used_bytes", gorm.Expr("CASE WHEN used_bytes + ? < 0 THEN 0 ELSE used_bytes + ? END", delta, delta)).Error
}

func (r *StorageAccountRepository) FindByUserID(userID uuid.UUID) (*entity.StorageAccount, error) {
	var account entity.StorageAccount
	err := r.db.Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}
