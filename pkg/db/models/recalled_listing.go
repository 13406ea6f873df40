package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecalledListing archives a listing the store has withdrawn pending
// physical collection by the owner. CollectionPin authorizes release;
// NextFeeChargeAt is the sole gate for the recurring storage fee sweep.
type RecalledListing struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID              uuid.UUID       `gorm:"column:item_id;type:uuid;not null;unique"`
	TagID               uuid.UUID       `gorm:"column:tag_id;type:uuid;not null;index"`
	StoreID             uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	MemberID            uuid.UUID       `gorm:"column:member_id;type:uuid;not null;index"`
	StoreCommissionRate decimal.Decimal `gorm:"column:store_commission_rate;type:numeric(5,2);not null"`
	ReasonID            uuid.UUID       `gorm:"column:reason_id;type:uuid;not null"`
	CollectionPin       string          `gorm:"column:collection_pin;not null"`
	CollectionDeadline  time.Time       `gorm:"column:collection_deadline;not null;index"`
	FeeChargedCount     int             `gorm:"column:fee_charged_count;not null;default:0"`
	LastFeeChargeAmount decimal.Decimal `gorm:"column:last_fee_charge_amount;type:numeric(10,2);not null;default:0"`
	NextFeeChargeAt     time.Time       `gorm:"column:next_fee_charge_at;not null;index"`
	RecalledAt          time.Time       `gorm:"column:recalled_at;not null"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Reason *RecallReason `gorm:"foreignKey:ReasonID"`
}
