package listings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a listings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *repository) FindListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("id = ?", id).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) FindListingByItemID(ctx context.Context, itemID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("item_id = ?", itemID).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) FindListingByTagID(ctx context.Context, tagID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Where("tag_id = ?", tagID).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) UpdateListingTag(ctx context.Context, id, newTagID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Update("tag_id", newTagID).Error
}

func (r *repository) DeleteListing(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Listing{}).Error
}

func (r *repository) CreateRecalledListing(ctx context.Context, recalled *models.RecalledListing) (*models.RecalledListing, error) {
	if err := r.db.WithContext(ctx).Create(recalled).Error; err != nil {
		return nil, err
	}
	return recalled, nil
}

func (r *repository) FindRecalledByID(ctx context.Context, id uuid.UUID) (*models.RecalledListing, error) {
	var recalled models.RecalledListing
	err := r.db.WithContext(ctx).
		Preload("Reason").
		Where("id = ?", id).
		First(&recalled).Error
	if err != nil {
		return nil, err
	}
	return &recalled, nil
}

func (r *repository) UpdateRecalled(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.RecalledListing{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteRecalled(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.RecalledListing{}).Error
}

func (r *repository) ListRecalledDueForFee(ctx context.Context, now time.Time) ([]models.RecalledListing, error) {
	var recalled []models.RecalledListing
	err := r.db.WithContext(ctx).
		Where("next_fee_charge_at <= ?", now).
		Order("next_fee_charge_at ASC").
		Find(&recalled).Error
	if err != nil {
		return nil, err
	}
	return recalled, nil
}

// ClaimStorageFeeCharge records one storage fee charge against a recalled
// listing. The guard on next_fee_charge_at makes concurrent sweeps and
// repeated runs charge each billing period at most once.
func (r *repository) ClaimStorageFeeCharge(ctx context.Context, id uuid.UUID, dueBy time.Time, fee decimal.Decimal, nextChargeAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RecalledListing{}).
		Where("id = ? AND next_fee_charge_at <= ?", id, dueBy).
		Updates(map[string]any{
			"fee_charged_count":      gorm.Expr("fee_charged_count + 1"),
			"last_fee_charge_amount": fee,
			"next_fee_charge_at":     nextChargeAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListRecalledPastDeadline(ctx context.Context, now time.Time) ([]models.RecalledListing, error) {
	var recalled []models.RecalledListing
	err := r.db.WithContext(ctx).
		Where("collection_deadline < ?", now).
		Order("collection_deadline ASC").
		Find(&recalled).Error
	if err != nil {
		return nil, err
	}
	return recalled, nil
}

func (r *repository) CreateDelistedListing(ctx context.Context, delisted *models.DelistedListing) (*models.DelistedListing, error) {
	if err := r.db.WithContext(ctx).Create(delisted).Error; err != nil {
		return nil, err
	}
	return delisted, nil
}

func (r *repository) CreateSoldListing(ctx context.Context, sold *models.SoldListing) (*models.SoldListing, error) {
	if err := r.db.WithContext(ctx).Create(sold).Error; err != nil {
		return nil, err
	}
	return sold, nil
}

func (r *repository) FindRecallReasonByID(ctx context.Context, id uuid.UUID) (*models.RecallReason, error) {
	var reason models.RecallReason
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&reason).Error
	if err != nil {
		return nil, err
	}
	return &reason, nil
}

func (r *repository) FindRecallReasonByName(ctx context.Context, name string) (*models.RecallReason, error) {
	var reason models.RecallReason
	err := r.db.WithContext(ctx).
		Where("reason = ?", name).
		First(&reason).Error
	if err != nil {
		return nil, err
	}
	return &reason, nil
}

func (r *repository) FindMemberByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}
