package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing is the active binding of one item to one tag. StoreCommissionRate
// and MinListingDays are snapshots taken from the store at creation time.
// Price, fee, commission and earnings are derived through the pricing engine
// and never stored.
type Listing struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID              uuid.UUID       `gorm:"column:item_id;type:uuid;not null;unique"`
	TagID               uuid.UUID       `gorm:"column:tag_id;type:uuid;not null;unique"`
	StoreID             uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	MemberID            uuid.UUID       `gorm:"column:member_id;type:uuid;not null;index"`
	StoreCommissionRate decimal.Decimal `gorm:"column:store_commission_rate;type:numeric(5,2);not null"`
	MinListingDays      int             `gorm:"column:min_listing_days;not null"`
	ListedAt            time.Time       `gorm:"column:listed_at;not null"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Item *Item `gorm:"foreignKey:ItemID"`
}
