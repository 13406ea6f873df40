package models

import (
	"time"

	"github.com/google/uuid"
)

// OpeningHours is one row of a store's weekly calendar. DayOfWeek is
// 0=Monday through 6=Sunday; OpensAt/ClosesAt are local "15:04" clock
// strings and are ignored when Closed is set.
type OpeningHours struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_opening_hours_store_day,priority:1"`
	DayOfWeek int       `gorm:"column:day_of_week;not null;uniqueIndex:idx_opening_hours_store_day,priority:2"`
	OpensAt   string    `gorm:"column:opens_at;not null;default:'09:00'"`
	ClosesAt  string    `gorm:"column:closes_at;not null;default:'17:00'"`
	Closed    bool      `gorm:"column:closed;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
