package controller

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/openpan/drive-service/http/controller/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFolderAndListUnderParent(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, h.ctrl.CreateFolder, http.MethodPost, "/rpc/files/folder", dto.CreateFolderRequest{
		Name: "documents",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	folderID, err := uuid.Parse(data["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, true, data["is_directory"])

	// Nesting under the new folder works; nesting under a bogus parent does
	// not.
	w = h.do(t, h.ctrl.CreateFolder, http.MethodPost, "/rpc/files/folder", dto.CreateFolderRequest{
		Name:     "reports",
		ParentID: &folderID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	bogus := uuid.New()
	w = h.do(t, h.ctrl.CreateFolder, http.MethodPost, "/rpc/files/folder", dto.CreateFolderRequest{
		Name:     "orphan",
		ParentID: &bogus,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenameAndMoveThroughHandlers(t *testing.T) {
	h := newTestHarness(t)
	file := h.seedLiveFile(t, "draft.txt", 100)

	folder := h.do(t, h.ctrl.CreateFolder, http.MethodPost, "/rpc/files/folder", dto.CreateFolderRequest{
		Name: "final",
	})
	require.Equal(t, http.StatusOK, folder.Code)
	folderData := decodeBody(t, folder)["data"].(map[string]interface{})
	folderID, err := uuid.Parse(folderData["id"].(string))
	require.NoError(t, err)

	w := h.doWithParamAndBody(t, h.ctrl.RenameFile, http.MethodPut, file.ID.String(), dto.RenameFileRequest{Name: "final.txt"})
	require.Equal(t, http.StatusOK, w.Code)

	w = h.doWithParamAndBody(t, h.ctrl.MoveFile, http.MethodPut, file.ID.String(), dto.MoveFileRequest{ParentID: &folderID})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := h.repo.UserFileRepo.FindByIDAndUser(file.ID, h.userID)
	require.NoError(t, err)
	assert.Equal(t, "final.txt", got.Name)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, folderID, *got.ParentID)
}

func TestRenameRejectsForeignFile(t *testing.T) {
	h := newTestHarness(t)
	file := h.seedLiveFile(t, "mine.txt", 100)

	h.userID = uuid.New()
	w := h.doWithParamAndBody(t, h.ctrl.RenameFile, http.MethodPut, file.ID.String(), dto.RenameFileRequest{Name: "stolen.txt"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
