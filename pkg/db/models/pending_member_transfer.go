package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingMemberTransfer queues a seller payout whose transfer attempt failed
// at the provider. The retry sweep deletes the row once a transfer succeeds.
type PendingMemberTransfer struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID           uuid.UUID       `gorm:"column:member_id;type:uuid;not null;index"`
	DestinationAccount string          `gorm:"column:destination_account;not null"`
	Amount             decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	SourceCharge       string          `gorm:"column:source_charge;not null;unique"`
	AttemptCount       int             `gorm:"column:attempt_count;not null;default:0"`
	NextAttemptAt      time.Time       `gorm:"column:next_attempt_at;not null;index"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
