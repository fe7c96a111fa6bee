package repository

import (
	"github.com/openpan/drive-service/infra"
	"gorm.io/gorm"
)

type Repository struct {
	BlobRepo           *BlobRepository
	UserFileRepo       *UserFileRepository
	StorageAccountRepo *StorageAccountRepository
	PendingUploadRepo  *PendingUploadRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = NewRepository(infra.Postgres.DB)
	return repository
}

// NewRepository builds a repository set over an explicit gorm handle. Tests
// use this with an in-memory database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		BlobRepo:           NewBlobRepository(db),
		UserFileRepo:       NewUserFileRepository(db),
		StorageAccountRepo: NewStorageAccountRepository(db),
		PendingUploadRepo:  NewPendingUploadRepository(db),
	}
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}

func (r *Repository) BeginTransaction(db *gorm.DB) *gorm.DB {
	return db.Begin()
}

func (r *Repository) WithTransaction(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}
