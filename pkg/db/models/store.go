package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Store is a host shop. CommissionRate and MinListingDays are the values
// snapshotted onto a listing at creation time; later edits never touch
// in-flight listings.
type Store struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	Email              string          `gorm:"column:email;not null;unique"`
	CommissionRate     decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,2);not null"`
	MinListingDays     int             `gorm:"column:min_listing_days;not null;default:14"`
	MinPrice           decimal.Decimal `gorm:"column:min_price;type:numeric(10,2);not null"`
	AcceptedCategories pq.StringArray  `gorm:"column:accepted_categories;type:text[]"`
	AcceptedConditions pq.StringArray  `gorm:"column:accepted_conditions;type:text[]"`
	AcceptingListings  bool            `gorm:"column:accepting_listings;not null;default:true"`
	StripeAccountID    *string         `gorm:"column:stripe_account_id"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	OpeningHours []OpeningHours `gorm:"foreignKey:StoreID"`
}
