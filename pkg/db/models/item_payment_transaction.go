package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemPaymentTransaction records one item purchase settled by the payment
// provider. ProviderRef is the payment-intent id and doubles as the
// idempotency key: duplicate webhook delivery upserts the same row.
// Processed gates the downstream side effects (listing archival, transfers,
// notifications) so they fire exactly once.
type ItemPaymentTransaction struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderRef    string          `gorm:"column:provider_ref;not null;unique"`
	SourceCharge   string          `gorm:"column:source_charge;not null"`
	ItemID         uuid.UUID       `gorm:"column:item_id;type:uuid;not null;index"`
	StoreID        uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	MemberID       uuid.UUID       `gorm:"column:member_id;type:uuid;not null;index"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	TransactionFee decimal.Decimal `gorm:"column:transaction_fee;type:numeric(10,2);not null"`
	Commission     decimal.Decimal `gorm:"column:commission;type:numeric(10,2);not null"`
	SellerEarnings decimal.Decimal `gorm:"column:seller_earnings;type:numeric(10,2);not null"`
	BuyerEmail     string          `gorm:"column:buyer_email;not null"`
	Processed      bool            `gorm:"column:processed;not null;default:false"`
	LatestStatus   string          `gorm:"column:latest_status;not null;default:'succeeded'"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
