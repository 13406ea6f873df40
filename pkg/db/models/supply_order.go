package models

import (
	"time"

	"github.com/google/uuid"
)

// SupplyOrder is a store's request for new physical tags, fulfilled exactly
// once when the matching payment succeeds.
type SupplyOrder struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID  `gorm:"column:store_id;type:uuid;not null;index"`
	TagCount    int        `gorm:"column:tag_count;not null"`
	Fulfilled   bool       `gorm:"column:fulfilled;not null;default:false"`
	FulfilledAt *time.Time `gorm:"column:fulfilled_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
