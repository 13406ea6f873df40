package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
)

// Repository defines persistence operations for member items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.Item, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ItemStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}
