package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a single physical token. A tag holds at most one active listing at
// a time; the exclusivity lives on listings.tag_id's unique index, not here,
// so tag state stays independent of how a past listing was archived.
type Tag struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TagGroupID uuid.UUID `gorm:"column:tag_group_id;type:uuid;not null;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
