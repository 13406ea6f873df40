package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingStoreTransfer queues a store commission payout whose transfer
// attempt failed at the provider.
type PendingStoreTransfer struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID            uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	DestinationAccount string          `gorm:"column:destination_account;not null"`
	Amount             decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	SourceCharge       string          `gorm:"column:source_charge;not null;unique"`
	AttemptCount       int             `gorm:"column:attempt_count;not null;default:0"`
	NextAttemptAt      time.Time       `gorm:"column:next_attempt_at;not null;index"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
