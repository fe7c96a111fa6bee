package entity

import (
	"time"

	"github.com/google/uuid"
)

// FileStatus represents the lifecycle state of a user file entry
type FileStatus string

const (
	FileStatusPending FileStatus = "PENDING"
	FileStatusLive    FileStatus = "LIVE"
)

// UserFile is a user-visible file or folder. Many rows may reference the same
// Blob (hash dedup); ParentID forms a tree rooted at null. A non-null
// DeletedAt means the entry is in the trash.
type UserFile struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index:idx_user_parent"`
	ParentID    *uuid.UUID `json:"parent_id" gorm:"type:uuid;index:idx_user_parent"`
	Name        string     `json:"name" gorm:"type:varchar(512);not null"`
	IsDirectory bool       `json:"is_directory" gorm:"not null;default:false"`
	BlobID      *uuid.UUID `json:"blob_id" gorm:"type:uuid;index"`
	Status      FileStatus `json:"status" gorm:"type:varchar(16);not null;default:'LIVE'"`
	DeletedAt   *time.Time `json:"deleted_at" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Blob *Blob `json:"blob,omitempty" gorm:"foreignKey:BlobID"`
}

// IsTrashed reports whether the entry currently sits in the recycle bin.
func (f *UserFile) IsTrashed() bool {
	return f.DeletedAt != nil
}
