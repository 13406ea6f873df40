package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
)

// RecallReason is a reference row. Once an archived listing points at a
// reason it is immutable for audit purposes; rows are seeded by migration.
type RecallReason struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Reason      string                 `gorm:"column:reason;not null;unique"`
	Type        enums.RecallReasonType `gorm:"column:type;not null"`
	Description *string                `gorm:"column:description"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
