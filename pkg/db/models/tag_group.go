package models

import (
	"time"

	"github.com/google/uuid"
)

// TagGroup is a batch of physical tags issued to a store, typically
// provisioned when a supplies order is fulfilled.
type TagGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	Size      int       `gorm:"column:size;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Tags []Tag `gorm:"foreignKey:TagGroupID"`
}
