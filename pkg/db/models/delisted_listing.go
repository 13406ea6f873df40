package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DelistedListing archives a listing removed without a sale: store delist,
// owner collection of a recalled item, or abandonment escalation. Collected
// distinguishes a pin-authorized release from a plain delist.
type DelistedListing struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID              uuid.UUID       `gorm:"column:item_id;type:uuid;not null;index"`
	TagID               uuid.UUID       `gorm:"column:tag_id;type:uuid;not null;index"`
	StoreID             uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	MemberID            uuid.UUID       `gorm:"column:member_id;type:uuid;not null;index"`
	StoreCommissionRate decimal.Decimal `gorm:"column:store_commission_rate;type:numeric(5,2);not null"`
	ReasonID            uuid.UUID       `gorm:"column:reason_id;type:uuid;not null"`
	Collected           bool            `gorm:"column:collected;not null;default:false"`
	DelistedAt          time.Time       `gorm:"column:delisted_at;not null"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`

	Reason *RecallReason `gorm:"foreignKey:ReasonID"`
}
