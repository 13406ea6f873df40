package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
)

// FailedPaymentRecord is an audit row for payment_intent.payment_failed
// events. No listing state is touched on failure.
type FailedPaymentRecord struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderRef    string             `gorm:"column:provider_ref;not null;index"`
	PurchaseType   enums.PurchaseType `gorm:"column:purchase_type;not null"`
	FailureMessage string             `gorm:"column:failure_message;not null"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
}
