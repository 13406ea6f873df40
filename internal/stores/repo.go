package stores

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stores repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByTagID resolves the store a physical tag belongs to through its tag group.
func (r *repository) FindByTagID(ctx context.Context, tagID uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Joins("JOIN tag_groups ON tag_groups.store_id = stores.id").
		Joins("JOIN tags ON tags.tag_group_id = tag_groups.id").
		Where("tags.id = ?", tagID).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repository) OpeningHoursForStore(ctx context.Context, storeID uuid.UUID) ([]models.OpeningHours, error) {
	var hours []models.OpeningHours
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("day_of_week ASC").
		Find(&hours).Error
	if err != nil {
		return nil, err
	}
	return hours, nil
}

func (r *repository) SetAcceptingListings(ctx context.Context, storeID uuid.UUID, accepting bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		Update("accepting_listings", accepting).Error
}
