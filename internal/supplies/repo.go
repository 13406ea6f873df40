package supplies

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a supplies repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.SupplyOrder) (*models.SupplyOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.SupplyOrder, error) {
	var order models.SupplyOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrdersByStore(ctx context.Context, storeID uuid.UUID) ([]models.SupplyOrder, error) {
	var orders []models.SupplyOrder
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ClaimFulfillment relies on the conditional update's row count for
// exactly-once semantics; no row lock needed.
func (r *repository) ClaimFulfillment(ctx context.Context, orderID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SupplyOrder{}).
		Where("id = ? AND fulfilled = ?", orderID, false).
		Updates(map[string]any{
			"fulfilled":    true,
			"fulfilled_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CreateTagGroup(ctx context.Context, group *models.TagGroup) (*models.TagGroup, error) {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}
