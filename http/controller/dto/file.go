package dto

import "github.com/google/uuid"

// CreateFolderRequest creates a directory entry in the tree.
type CreateFolderRequest struct {
	Name     string     `json:"name" binding:"required"`
	ParentID *uuid.UUID `json:"parentId"`
}

type RenameFileRequest struct {
	Name string `json:"name" binding:"required"`
}

type MoveFileRequest struct {
	ParentID *uuid.UUID `json:"parentId"`
}