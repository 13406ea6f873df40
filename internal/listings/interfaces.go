package listings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
)

// Repository defines persistence operations for active and archived listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	FindListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	FindListingByItemID(ctx context.Context, itemID uuid.UUID) (*models.Listing, error)
	FindListingByTagID(ctx context.Context, tagID uuid.UUID) (*models.Listing, error)
	UpdateListingTag(ctx context.Context, id, newTagID uuid.UUID) error
	DeleteListing(ctx context.Context, id uuid.UUID) error

	CreateRecalledListing(ctx context.Context, recalled *models.RecalledListing) (*models.RecalledListing, error)
	FindRecalledByID(ctx context.Context, id uuid.UUID) (*models.RecalledListing, error)
	UpdateRecalled(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteRecalled(ctx context.Context, id uuid.UUID) error
	ListRecalledDueForFee(ctx context.Context, now time.Time) ([]models.RecalledListing, error)
	ClaimStorageFeeCharge(ctx context.Context, id uuid.UUID, dueBy time.Time, fee decimal.Decimal, nextChargeAt time.Time) (bool, error)
	ListRecalledPastDeadline(ctx context.Context, now time.Time) ([]models.RecalledListing, error)

	CreateDelistedListing(ctx context.Context, delisted *models.DelistedListing) (*models.DelistedListing, error)
	CreateSoldListing(ctx context.Context, sold *models.SoldListing) (*models.SoldListing, error)

	FindRecallReasonByID(ctx context.Context, id uuid.UUID) (*models.RecallReason, error)
	FindRecallReasonByName(ctx context.Context, reason string) (*models.RecallReason, error)

	FindMemberByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
}
