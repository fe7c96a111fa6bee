package entity

import (
	"time"

	"github.com/google/uuid"
)

// Blob represents physical content in object storage. Content identity is the
// (hash, size_bytes, mime_type) tuple; at most one row exists per tuple and
// every upload with the same identity resolves to the same row.
type Blob struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Hash        string    `json:"hash" gorm:"type:varchar(64);not null;uniqueIndex:idx_blob_identity"`
	SizeBytes   int64     `json:"size_bytes" gorm:"not null;uniqueIndex:idx_blob_identity"`
	MimeType    string    `json:"mime_type" gorm:"type:varchar(255);not null;uniqueIndex:idx_blob_identity"`
	StoragePath string    `json:"storage_path" gorm:"type:varchar(1024);not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}
