package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
)

// Item is a member-owned good. Status is mutated only by the listing
// lifecycle service; rows are never hard-deleted except through the explicit
// deletion API while still available.
type Item struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID    uuid.UUID           `gorm:"column:member_id;type:uuid;not null;index"`
	Name        string              `gorm:"column:name;not null"`
	Description *string             `gorm:"column:description"`
	Category    string              `gorm:"column:category;not null"`
	Condition   enums.ItemCondition `gorm:"column:condition;not null"`
	Price       decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null"`
	Status      enums.ItemStatus    `gorm:"column:status;not null;default:'available';index"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
