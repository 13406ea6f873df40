package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SoldListing archives a listing completed through checkout, referencing the
// payment transaction that settled it.
type SoldListing struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID              uuid.UUID       `gorm:"column:item_id;type:uuid;not null;unique"`
	TagID               uuid.UUID       `gorm:"column:tag_id;type:uuid;not null;index"`
	StoreID             uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	MemberID            uuid.UUID       `gorm:"column:member_id;type:uuid;not null;index"`
	StoreCommissionRate decimal.Decimal `gorm:"column:store_commission_rate;type:numeric(5,2);not null"`
	TransactionID       uuid.UUID       `gorm:"column:transaction_id;type:uuid;not null"`
	SoldAt              time.Time       `gorm:"column:sold_at;not null"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`

	Transaction *ItemPaymentTransaction `gorm:"foreignKey:TransactionID"`
}
