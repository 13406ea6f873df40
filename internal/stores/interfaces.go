package stores

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
)

// Repository defines persistence operations for stores and their calendars.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindByTagID(ctx context.Context, tagID uuid.UUID) (*models.Store, error)
	OpeningHoursForStore(ctx context.Context, storeID uuid.UUID) ([]models.OpeningHours, error)
	SetAcceptingListings(ctx context.Context, storeID uuid.UUID, accepting bool) error
}
