package transfers

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

// NewRepository builds a pending-transfers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) EnqueueMember(ctx context.Context, pending *models.PendingMemberTransfer) error {
	return r.db.WithContext(ctx).Create(pending).Error
}

func (r *repository) ListDueMember(ctx context.Context, now time.Time) ([]models.PendingMemberTransfer, error) {
	var pending []models.PendingMemberTransfer
	err := r.db.WithContext(ctx).
		Where("next_attempt_at <= ?", now).
		Order("next_attempt_at ASC").
		Find(&pending).Error
	if err != nil {
		return nil, err
	}
	return pending, nil
}

func (r *repository) UpdateMember(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PendingMemberTransfer{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteMember(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.PendingMemberTransfer{}).Error
}

func (r *repository) EnqueueStore(ctx context.Context, pending *models.PendingStoreTransfer) error {
	return r.db.WithContext(ctx).Create(pending).Error
}

func (r *repository) ListDueStore(ctx context.Context, now time.Time) ([]models.PendingStoreTransfer, error) {
	var pending []models.PendingStoreTransfer
	err := r.db.WithContext(ctx).
		Where("next_attempt_at <= ?", now).
		Order("next_attempt_at ASC").
		Find(&pending).Error
	if err != nil {
		return nil, err
	}
	return pending, nil
}

func (r *repository) UpdateStore(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PendingStoreTransfer{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteStore(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.PendingStoreTransfer{}).Error
}
