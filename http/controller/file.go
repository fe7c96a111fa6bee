package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openpan/drive-service/entity"
	"github.com/openpan/drive-service/http/controller/dto"
	"github.com/openpan/drive-service/repository"
	"github.com/openpan/drive-service/utils"
	"gorm.io/gorm"
)

// ListFiles returns live entries under a parent folder (root when no parentId
// query param is given). Trashed and pending entries never show up here.
func (ctrl *Controller) ListFiles(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	q := repository.ListQuery{
		Sort:   c.Query("sort"),
		Order:  c.Query("order"),
		Search: c.Query("search"),
	}
	if pageStr := c.Query("page"); pageStr != "" {
		q.Page, _ = strconv.Atoi(pageStr)
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		q.Limit, _ = strconv.Atoi(limitStr)
	}
	if parentStr := c.Query("parentId"); parentStr != "" {
		parentID, err := uuid.Parse(parentStr)
		if err != nil {
			utils.JSON400(c, "Invalid parent ID")
			return
		}
		q.ParentID = &parentID
	}

	files, total, err := ctrl.Repository.UserFileRepo.List(userID, q)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[File] Failed to list files for user %s", userID)
		utils.JSON500(c, "Failed to list files")
		return
	}

	utils.JSON200(c, gin.H{
		"items": files,
		"total": total,
	})
}

// GetFile returns a single live entry by ID.
func (ctrl *Controller) GetFile(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "Invalid file ID")
		return
	}

	file, err := ctrl.Repository.UserFileRepo.FindByIDAndUser(id, userID)
	if err != nil || file.IsTrashed() {
		utils.JSON404(c, "File not found")
		return
	}

	utils.JSON200(c, file)
}

// CreateFolder inserts a directory entry. Directories carry no blob and no
// size of their own.
func (ctrl *Controller) CreateFolder(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	var req dto.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	folder := &entity.UserFile{
		ID:          uuid.New(),
		UserID:      userID,
		ParentID:    req.ParentID,
		Name:        req.Name,
		IsDirectory: true,
		Status:      entity.FileStatusLive,
	}
	if err := ctrl.Repository.UserFileRepo.Create(folder); err != nil {
		if errors.Is(err, repository.ErrInvalidParent) {
			utils.JSON400(c, "Invalid parent folder")
			return
		}
		ctrl.Logger.ErrorWithContextf(ctx, err, "[File] Failed to create folder for user %s", userID)
		utils.JSON500(c, "Failed to create folder")
		return
	}

	ctrl.Logger.InfoWithContextf(ctx, "[File] Folder %s created for user %s", folder.ID, userID)
	utils.JSON200(c, folder)
}

// RenameFile changes the display name of a live entry.
func (ctrl *Controller) RenameFile(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "Invalid file ID")
		return
	}

	var req dto.RenameFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	file, err := ctrl.Repository.UserFileRepo.Rename(id, userID, req.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSON404(c, "File not found")
			return
		}
		ctrl.Logger.ErrorWithContextf(ctx, err, "[File] Failed to rename entry %s", id)
		utils.JSON500(c, "Failed to rename file")
		return
	}

	utils.JSON200(c, file)
}

// MoveFile reparents a live entry. A null parentId moves it to the root.
func (ctrl *Controller) MoveFile(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "Invalid file ID")
		return
	}

	var req dto.MoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	file, err := ctrl.Repository.UserFileRepo.Move(id, userID, req.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSON404(c, "File not found")
			return
		}
		if errors.Is(err, repository.ErrInvalidParent) {
			utils.JSON400(c, "Invalid parent folder")
			return
		}
		ctrl.Logger.ErrorWithContextf(ctx, err, "[File] Failed to move entry %s", id)
		utils.JSON500(c, "Failed to move file")
		return
	}

	utils.JSON200(c, file)
}

// DeleteFile moves an entry into the trash. The blob stays untouched and the
// user's storage accounting does not change until a permanent delete.
func (ctrl *Controller) DeleteFile(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "Invalid file ID")
		return
	}

	file, err := ctrl.Repository.UserFileRepo.SoftDelete(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSON404(c, "File not found")
			return
		}
		ctrl.Logger.ErrorWithContextf(ctx, err, "[File] Failed to trash entry %s", id)
		utils.JSON500(c, "Failed to delete file")
		return
	}

	ctrl.Logger.InfoWithContextf(ctx, "[File] Entry %s moved to trash by user %s", id, userID)
	utils.JSON200(c, file)
}
