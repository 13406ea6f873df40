package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
)

// CheckoutSession links a provider checkout session to its payment intent.
// SessionRef is unique so repeated checkout.session.completed deliveries
// upsert the same linkage.
type CheckoutSession struct {
	ID               uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SessionRef       string             `gorm:"column:session_ref;not null;unique"`
	PaymentIntentRef string             `gorm:"column:payment_intent_ref;not null;index"`
	PurchaseType     enums.PurchaseType `gorm:"column:purchase_type;not null"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
}
