package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SuppliesPaymentTransaction records a store's supplies purchase (tag
// provisioning). Same idempotency scheme as item transactions.
type SuppliesPaymentTransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderRef string          `gorm:"column:provider_ref;not null;unique"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	StoreID     uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	Processed   bool            `gorm:"column:processed;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
