package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StorageAccount tracks per-user attributed bytes against a plan quota.
// used_bytes <= total_bytes is checked before new uploads are accepted; the
// check is advisory and concurrent uploads may transiently overshoot.
type StorageAccount struct {
	UserID     uuid.UUID      `json:"user_id" gorm:"type:uuid;primaryKey"`
	UsedBytes  int64          `json:"used_bytes" gorm:"not null;default:0"`
	TotalBytes int64          `json:"total_bytes" gorm:"not null"`
	Plan       datatypes.JSON `json:"plan" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt  time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// PlanInfo is the serialized shape stored in StorageAccount.Plan.
type PlanInfo struct {
	Tier  string `json:"tier"` // "free" or "pro"
	IsPro bool   `json:"is_pro"`
}
