package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openpan/drive-service/entity"
	"gorm.io/gorm"
)

var (
	ErrInvalidParent    = errors.New("parent must be an existing live directory owned by the caller")
	ErrFolderInvariant  = errors.New("directory entries must not reference a blob and live file entries must")
	ErrNotTrashed       = errors.New("entry is not in the trash")
	ErrAlreadyTrashed   = errors.New("entry is already in the trash")
	ErrEntryIsDirectory = errors.New("entry is a directory")
)

type UserFileRepository struct {
	db *gorm.DB
}

func NewUserFileRepository(db *gorm.DB) *UserFileRepository {
	return &UserFileRepository{db: db}
}

// ListQuery describes pagination/sort/search for file listings.
type ListQuery struct {
	ParentID *uuid.UUID
	Page     int
	Limit    int
	Sort     string // name | size | createdAt
	Order    string // asc | desc
	Search   string
}

// TrashQuery describes pagination/sort for trash listings.
type TrashQuery struct {
	Page  int
	Limit int
	Sort  string // name | size | deletedAt
	Order string // asc | desc
}

// Create inserts a logical entry after enforcing the shape invariants:
// directories never reference a blob, LIVE files always do, and the parent
// (when set) must be a live directory owned by the same user.
func (r *UserFileRepository) Create(file *entity.UserFile) error {
	if file.IsDirectory && file.BlobID != nil {
		return ErrFolderInvariant
	}
	if !file.IsDirectory && file.Status == entity.FileStatusLive && file.BlobID == nil {
		return ErrFolderInvariant
	}
	if err := r.ValidateParent(file.UserID, file.ParentID); err != nil {
		return err
	}
	return r.db.Create(file).Error
}

// ValidateParent checks that parentID is null or a live directory owned by
// userID.
func (r *UserFileRepository) ValidateParent(userID uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	var parent entity.UserFile
	err := r.db.Where("id = ? AND user_id = ? AND deleted_at IS NULL AND status = ?",
		*parentID, userID, entity.FileStatusLive).First(&parent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidParent
		}
		return err
	}
	if !parent.IsDirectory {
		return ErrInvalidParent
	}
	return nil
}

func (r *UserFileRepository) FindByID(id uuid.UUID) (*entity.UserFile, error) {
	var file entity.UserFile
	err := r.db.Where("id = ?", id).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *UserFileRepository) FindByIDAndUser(id, userID uuid.UUID) (*entity.UserFile, error) {
	var file entity.UserFile
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// List returns live entries under a parent, excluding anything in the trash.
func (r *UserFileRepository) List(userID uuid.UUID, q ListQuery) ([]entity.UserFile, int64, error) {
	query := r.db.Model(&entity.UserFile{}).
		Where("user_files.user_id = ? AND user_files.deleted_at IS NULL AND user_files.status = ?",
			userID, entity.FileStatusLive)

	if q.ParentID == nil {
		query = query.Where("user_files.parent_id IS NULL")
	} else {
		query = query.Where("user_files.parent_id = ?", *q.ParentID)
	}

	if q.Search != "" {
		query = query.Where("user_files.name LIKE ?", "%"+q.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "asc"
	if q.Order == "desc" {
		order = "desc"
	}

	switch q.Sort {
	case "size":
		query = query.Joins("LEFT JOIN blobs ON blobs.id = user_files.blob_id").
			Order(fmt.Sprintf("blobs.size_bytes %s", order))
	case "createdAt":
		query = query.Order(fmt.Sprintf("user_files.created_at %s", order))
	default:
		query = query.Order(fmt.Sprintf("user_files.name %s", order))
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var files []entity.UserFile
	err := query.Preload("Blob").
		Offset((page - 1) * limit).Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

func (r *UserFileRepository) Rename(id, userID uuid.UUID, name string) (*entity.UserFile, error) {
	file, err := r.findLiveByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if err := r.db.Model(file).Update("name", name).Error; err != nil {
		return nil, err
	}
	return file, nil
}

func (r *UserFileRepository) Move(id, userID uuid.UUID, parentID *uuid.UUID) (*entity.UserFile, error) {
	file, err := r.findLiveByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if err := r.ValidateParent(userID, parentID); err != nil {
		return nil, err
	}
	if err := r.db.Model(file).Update("parent_id", parentID).Error; err != nil {
		return nil, err
	}
	return file, nil
}

func (r *UserFileRepository) findLiveByIDAndUser(id, userID uuid.UUID) (*entity.UserFile, error) {
	var file entity.UserFile
	err := r.db.Where("id = ? AND user_id = ? AND deleted_at IS NULL", id, userID).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// SoftDelete moves an entry (and, for directories, its live subtree) into the
// trash by stamping deleted_at.
func (r *UserFileRepository) SoftDelete(id, userID uuid.UUID) (*entity.UserFile, error) {
	file, err := r.findLiveByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ids := []uuid.UUID{file.ID}
	if file.IsDirectory {
		descendants, err := r.collectLiveDescendants(userID, file.ID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, descendants...)
	}

	err = r.db.Model(&entity.UserFile{}).
		Where("id IN ? AND deleted_at IS NULL", ids).
		Update("deleted_at", now).Error
	if err != nil {
		return nil, err
	}
	file.DeletedAt = &now
	return file, nil
}

// collectLiveDescendants walks the tree breadth-first; the registry has no
// recursive queries so the fan-out happens here.
func (r *UserFileRepository) collectLiveDescendants(userID, rootID uuid.UUID) ([]uuid.UUID, error) {
	var result []uuid.UUID
	frontier := []uuid.UUID{rootID}

	for len(frontier) > 0 {
		var children []entity.UserFile
		err := r.db.Select("id", "is_directory").
			Where("user_id = ? AND parent_id IN ? AND deleted_at IS NULL", userID, frontier).
			Find(&children).Error
		if err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, child := range children {
			result = append(result, child.ID)
			if child.IsDirectory {
				frontier = append(frontier, child.ID)
			}
		}
	}
	return result, nil
}

// ListTrashed returns a page of trashed entries for a user.
func (r *UserFileRepository) ListTrashed(userID uuid.UUID, q TrashQuery) ([]entity.UserFile, int64, error) {
	query := r.db.Model(&entity.UserFile{}).
		Where("user_files.user_id = ? AND user_files.deleted_at IS NOT NULL", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "asc"
	if q.Order == "desc" {
		order = "desc"
	}

	switch q.Sort {
	case "size":
		query = query.Joins("LEFT JOIN blobs ON blobs.id = user_files.blob_id").
			Order(fmt.Sprintf("blobs.size_bytes %s", order))
	case "name":
		query = query.Order(fmt.Sprintf("user_files.name %s", order))
	default:
		query = query.Order(fmt.Sprintf("user_files.deleted_at %s", order))
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var files []entity.UserFile
	err := query.Preload("Blob").
		Offset((page - 1) * limit).Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

// FindTrashedByIDAndUser loads an entry only when it exists, belongs to the
// caller, and currently sits in the trash. Everything else reads as not found.
func (r *UserFileRepository) FindTrashedByIDAndUser(id, userID uuid.UUID) (*entity.UserFile, error) {
	var file entity.UserFile
	err := r.db.Where("id = ? AND user_id = ? AND deleted_at IS NOT NULL", id, userID).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Restore clears deleted_at. When the original parent is gone or trashed the
// entry comes back at the root instead of inside an invisible folder.
func (r *UserFileRepository) Restore(id, userID uuid.UUID) (*entity.UserFile, error) {
	file, err := r.FindTrashedByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"deleted_at": nil}
	if file.ParentID != nil {
		if err := r.ValidateParent(userID, file.ParentID); err != nil {
			if !errors.Is(err, ErrInvalidParent) {
				return nil, err
			}
			updates["parent_id"] = nil
			file.ParentID = nil
		}
	}

	if err := r.db.Model(file).Updates(updates).Error; err != nil {
		return nil, err
	}
	file.DeletedAt = nil
	return file, nil
}

// DeleteRow removes the entry permanently.
func (r *UserFileRepository) DeleteRow(id uuid.UUID) error {
	return r.db.Delete(&entity.UserFile{}, "id = ?", id).Error
}

// CountByBlobID reports how many logical entries still reference a blob.
func (r *UserFileRepository) CountByBlobID(blobID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&entity.UserFile{}).Where("blob_id = ?", blobID).Count(&count).Error
	return count, err
}

// BindBlob finalizes a pending entry: attaches the blob and flips it live.
func (r *UserFileRepository) BindBlob(id, blobID uuid.UUID) error {
	return r.db.Model(&entity.UserFile{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"blob_id": blobID,
			"status":  entity.FileStatusLive,
		}).Error
}
