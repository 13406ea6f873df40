package stripewebhook

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
)

// Repository persists payment transactions and webhook audit rows. The
// get-or-create methods are keyed on the provider reference so duplicate
// event delivery converges on one row; the claim methods flip the processed
// flag with a conditional update and report whether the caller owns the
// downstream side effects.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindItemTransaction(ctx context.Context, providerRef string) (*models.ItemPaymentTransaction, error)
	GetOrCreateItemTransaction(ctx context.Context, txn *models.ItemPaymentTransaction) (*models.ItemPaymentTransaction, error)
	ClaimItemProcessing(ctx context.Context, providerRef string) (bool, error)

	GetOrCreateSuppliesTransaction(ctx context.Context, txn *models.SuppliesPaymentTransaction) (*models.SuppliesPaymentTransaction, error)
	ClaimSuppliesProcessing(ctx context.Context, providerRef string) (bool, error)

	UpsertCheckoutSession(ctx context.Context, session *models.CheckoutSession) error
	CreateFailedPayment(ctx context.Context, record *models.FailedPaymentRecord) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a webhook transactions repository bound to the
// provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindItemTransaction returns nil without error when no row matches.
func (r *repository) FindItemTransaction(ctx context.Context, providerRef string) (*models.ItemPaymentTransaction, error) {
	var txn models.ItemPaymentTransaction
	err := r.db.WithContext(ctx).First(&txn, "provider_ref = ?", providerRef).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *repository) GetOrCreateItemTransaction(ctx context.Context, txn *models.ItemPaymentTransaction) (*models.ItemPaymentTransaction, error) {
	err := r.db.WithContext(ctx).Create(txn).Error
	if err == nil {
		return txn, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return nil, err
	}
	var existing models.ItemPaymentTransaction
	if err := r.db.WithContext(ctx).First(&existing, "provider_ref = ?", txn.ProviderRef).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *repository) ClaimItemProcessing(ctx context.Context, providerRef string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ItemPaymentTransaction{}).
		Where("provider_ref = ? AND processed = ?", providerRef, false).
		Update("processed", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) GetOrCreateSuppliesTransaction(ctx context.Context, txn *models.SuppliesPaymentTransaction) (*models.SuppliesPaymentTransaction, error) {
	err := r.db.WithContext(ctx).Create(txn).Error
	if err == nil {
		return txn, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return nil, err
	}
	var existing models.SuppliesPaymentTransaction
	if err := r.db.WithContext(ctx).First(&existing, "provider_ref = ?", txn.ProviderRef).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *repository) ClaimSuppliesProcessing(ctx context.Context, providerRef string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SuppliesPaymentTransaction{}).
		Where("provider_ref = ? AND processed = ?", providerRef, false).
		Update("processed", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpsertCheckoutSession(ctx context.Context, session *models.CheckoutSession) error {
	err := r.db.WithContext(ctx).Create(session).Error
	if err != nil && db.IsUniqueViolation(err, "") {
		return nil
	}
	return err
}

func (r *repository) CreateFailedPayment(ctx context.Context, record *models.FailedPaymentRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}
