package dto

import (
	"github.com/google/uuid"
	"github.com/openpan/drive-service/infra"
)

// UploadCheckRequest asks whether content with this identity already exists.
type UploadCheckRequest struct {
	Name     string     `json:"name" binding:"required"`
	Hash     string     `json:"hash" binding:"required,len=32,hexadecimal"`
	Size     int64      `json:"size" binding:"required,gt=0"`
	Type     string     `json:"type" binding:"required"`
	ParentID *uuid.UUID `json:"parentId"`
}

// UploadCheckData is returned on a dedup hit: the new logical entry already
// points at the existing blob, no transfer needed.
type UploadCheckData struct {
	Location string    `json:"location"`
	ID       uuid.UUID `json:"id"`
}

// SignedUploadRequest requests a direct-to-storage upload URL.
type SignedUploadRequest struct {
	Name     string     `json:"name" binding:"required"`
	Hash     string     `json:"hash" binding:"required,len=32,hexadecimal"`
	Size     int64      `json:"size" binding:"required,gt=0"`
	Type     string     `json:"type" binding:"required"`
	ParentID *uuid.UUID `json:"parentId"`
}

type SignedUploadResponse struct {
	URL        string    `json:"url"`
	UserFileID uuid.UUID `json:"user_file_id"`
}

type MultipartSignedResponse struct {
	Key        string    `json:"key"`
	UploadID   string    `json:"uploadId"`
	UserFileID uuid.UUID `json:"user_file_id"`
}

// SignPartRequest requests a signed URL for one part of a multipart transfer.
type SignPartRequest struct {
	Key        string `json:"key" binding:"required"`
	UploadID   string `json:"uploadId" binding:"required"`
	PartNumber int32  `json:"partNumber" binding:"required,gt=0"`
}

// CompleteMultipartRequest finalizes a multipart transfer on the provider.
type CompleteMultipartRequest struct {
	Key      string                `json:"key" binding:"required"`
	UploadID string                `json:"uploadId" binding:"required"`
	Parts    []infra.CompletedPart `json:"parts" binding:"required,min=1"`
}

// LinkUploadRequest confirms a completed client transfer and binds the blob
// to its pending logical entry.
type LinkUploadRequest struct {
	Location   string    `json:"location" binding:"required"`
	UserFileID uuid.UUID `json:"user-file-id" binding:"required"`
}
