package supplies

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/internal/stores"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
	pkgerrors "github.com/Tag-Take/tagandtake-backend-sub000/pkg/errors"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
)

// maxTagsPerOrder bounds one order so fulfillment cannot provision an
// unreasonable batch in a single transaction.
const maxTagsPerOrder = 500

// CreateOrderInput requests a batch of new tags for a store.
type CreateOrderInput struct {
	StoreID  uuid.UUID
	TagCount int
}

// Service manages supply orders and their webhook-driven fulfillment.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.SupplyOrder, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.SupplyOrder, error)
	ListOrders(ctx context.Context, storeID uuid.UUID) ([]models.SupplyOrder, error)

	// Fulfill provisions the order's tag group inside the caller's
	// transaction. It reports whether this call performed the provisioning;
	// repeated deliveries for an already fulfilled order return false with
	// no error.
	Fulfill(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error)
}

// ServiceParams packages the dependencies for the supplies service.
type ServiceParams struct {
	Repo   Repository
	Stores stores.Repository
	Logger *logger.Logger
	Now    func() time.Time
}

type service struct {
	repo   Repository
	stores stores.Repository
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the supplies service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "supplies repository required")
	}
	if params.Stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stores repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:   params.Repo,
		stores: params.Stores,
		logg:   params.Logger,
		now:    params.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.SupplyOrder, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if input.TagCount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag count must be positive")
	}
	if input.TagCount > maxTagsPerOrder {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag count exceeds order limit")
	}

	if _, err := s.stores.FindByID(ctx, input.StoreID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find store")
	}

	order, err := s.repo.CreateOrder(ctx, &models.SupplyOrder{
		StoreID:  input.StoreID,
		TagCount: input.TagCount,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create supply order")
	}
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.SupplyOrder, error) {
	order, err := s.repo.FindOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supply order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find supply order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, storeID uuid.UUID) ([]models.SupplyOrder, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	orders, err := s.repo.ListOrdersByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list supply orders")
	}
	return orders, nil
}

func (s *service) Fulfill(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error) {
	repo := s.repo.WithTx(tx)

	order, err := repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "supply order not found")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find supply order")
	}

	claimed, err := repo.ClaimFulfillment(ctx, order.ID, s.now())
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim supply order fulfillment")
	}
	if !claimed {
		s.logg.Info(s.logg.WithField(ctx, "supply_order_id", order.ID.String()),
			"supply order already fulfilled, skipping provisioning")
		return false, nil
	}

	group := &models.TagGroup{
		StoreID: order.StoreID,
		Size:    order.TagCount,
		Tags:    make([]models.Tag, order.TagCount),
	}
	if _, err := repo.CreateTagGroup(ctx, group); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "provision tag group")
	}
	return true, nil
}
