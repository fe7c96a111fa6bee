package entity

import (
	"time"

	"github.com/google/uuid"
)

// UploadStatus represents the status of a pending upload
type UploadStatus string

const (
	UploadStatusPending UploadStatus = "PENDING"
	UploadStatusLinked  UploadStatus = "LINKED"
	UploadStatusFailed  UploadStatus = "FAILED"
	UploadStatusExpired UploadStatus = "EXPIRED"
)

// PendingUpload is the finalize token for a signed-URL transfer. It is created
// when a signed URL is issued and flipped to LINKED exactly once, no matter
// how many times the client calls the link endpoint.
type PendingUpload struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;index"`
	UserFileID uuid.UUID    `json:"user_file_id" gorm:"type:uuid;not null;index"`
	Hash       string       `json:"hash" gorm:"type:varchar(64);not null"`
	SizeBytes  int64        `json:"size_bytes" gorm:"not null"`
	MimeType   string       `json:"mime_type" gorm:"type:varchar(255);not null"`
	StorageKey string       `json:"storage_key" gorm:"type:varchar(1024);not null;index"`
	UploadID   string       `json:"upload_id" gorm:"type:varchar(255)"` // multipart only
	Status     UploadStatus `json:"status" gorm:"type:varchar(16);not null;default:'PENDING'"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
	ExpiresAt  time.Time    `json:"expires_at" gorm:"not null;index"`
}
