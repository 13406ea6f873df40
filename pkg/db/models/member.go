package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is a seller account. Profile CRUD and auth live outside this core;
// the row carries only what the lifecycle and payout paths need.
type Member struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string     `gorm:"column:email;not null;unique"`
	DisplayName     string     `gorm:"column:display_name;not null"`
	StripeAccountID *string    `gorm:"column:stripe_account_id"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeactivatedAt   *time.Time `gorm:"column:deactivated_at"`
}
