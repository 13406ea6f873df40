package supplies

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
)

// Repository defines persistence operations for supply orders and the tag
// inventory they provision.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.SupplyOrder) (*models.SupplyOrder, error)
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.SupplyOrder, error)
	ListOrdersByStore(ctx context.Context, storeID uuid.UUID) ([]models.SupplyOrder, error)

	// ClaimFulfillment flips the order's fulfilled flag and reports whether
	// this call won the flip. Losing callers must not provision tags.
	ClaimFulfillment(ctx context.Context, orderID uuid.UUID, at time.Time) (bool, error)

	CreateTagGroup(ctx context.Context, group *models.TagGroup) (*models.TagGroup, error)
}
