package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/internal/items"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/notifications"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/stores"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/config"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
	pkgerrors "github.com/Tag-Take/tagandtake-backend-sub000/pkg/errors"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/pricing"
)

// abandonedReason is the seeded recall reason archived onto listings whose
// collection deadline lapsed.
const abandonedReason = "abandoned"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateListingInput binds an available item to a free tag.
type CreateListingInput struct {
	ItemID uuid.UUID
	TagID  uuid.UUID
}

// RecallInput withdraws an active listing pending collection.
type RecallInput struct {
	ListingID uuid.UUID
	ReasonID  uuid.UUID
}

// DelistInput removes an active listing and returns the item to the pool.
type DelistInput struct {
	ListingID uuid.UUID
	ReasonID  uuid.UUID
}

// CollectInput releases a recalled item against its collection pin.
type CollectInput struct {
	RecalledListingID uuid.UUID
	Pin               string
}

// ListingDetail couples an active listing with its derived monetary split.
type ListingDetail struct {
	Listing models.Listing    `json:"listing"`
	Pricing pricing.Breakdown `json:"pricing"`
}

// PurchaseResult reports the archival outcome of a sale so the payment
// reconciliation path can notify after its transaction commits.
type PurchaseResult struct {
	Sold        *models.SoldListing
	Listing     *models.Listing
	MemberEmail string
}

// Service is the listing lifecycle state machine. Every transition swaps the
// active row for an archived variant, mutates the item status and frees or
// reassigns the tag in one transaction; notifications go out after commit,
// best effort.
type Service interface {
	Create(ctx context.Context, input CreateListingInput) (*models.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*ListingDetail, error)
	Recall(ctx context.Context, input RecallInput) (*models.RecalledListing, error)
	Delist(ctx context.Context, input DelistInput) error
	Collect(ctx context.Context, input CollectInput) error
	RegeneratePin(ctx context.Context, recalledID uuid.UUID) error
	ReplaceTag(ctx context.Context, listingID, newTagID uuid.UUID) error
	Abandon(ctx context.Context, recalledID uuid.UUID) error
	Purchase(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, txn *models.ItemPaymentTransaction) (*PurchaseResult, error)
}

// ServiceParams packages the dependencies for the lifecycle service.
type ServiceParams struct {
	Tx        txRunner
	Repo      Repository
	Items     items.Repository
	Stores    stores.Repository
	Deadlines *stores.DeadlineCalculator
	Pricer    *pricing.Engine
	Notifier  notifications.Notifier
	Logger    *logger.Logger
	RecallCfg config.RecallConfig
	Now       func() time.Time
}

type service struct {
	tx        txRunner
	repo      Repository
	items     items.Repository
	stores    stores.Repository
	deadlines *stores.DeadlineCalculator
	pricer    *pricing.Engine
	notifier  notifications.Notifier
	logg      *logger.Logger
	recallCfg config.RecallConfig
	now       func() time.Time
}

// NewService builds the lifecycle service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "listings repository required")
	}
	if params.Items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "items repository required")
	}
	if params.Stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stores repository required")
	}
	if params.Deadlines == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "deadline calculator required")
	}
	if params.Pricer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pricing engine required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifier required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		tx:        params.Tx,
		repo:      params.Repo,
		items:     params.Items,
		stores:    params.Stores,
		deadlines: params.Deadlines,
		pricer:    params.Pricer,
		notifier:  params.Notifier,
		logg:      params.Logger,
		recallCfg: params.RecallCfg,
		now:       params.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateListingInput) (*models.Listing, error) {
	if input.ItemID == uuid.Nil || input.TagID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id and tag id are required")
	}

	var listing *models.Listing
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		itemRepo := s.items.WithTx(tx)
		storeRepo := s.stores.WithTx(tx)

		item, err := itemRepo.FindByID(ctx, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find item")
		}
		if item.Status != enums.ItemStatusAvailable {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "item is not available")
		}

		store, err := storeRepo.FindByTagID(ctx, input.TagID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find tag store")
		}
		if !store.AcceptingListings {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "store is not accepting listings")
		}
		if err := validateStoreRequirements(store, item); err != nil {
			return err
		}

		created, err := repo.CreateListing(ctx, &models.Listing{
			ItemID:              item.ID,
			TagID:               input.TagID,
			StoreID:             store.ID,
			MemberID:            item.MemberID,
			StoreCommissionRate: store.CommissionRate,
			MinListingDays:      store.MinListingDays,
			ListedAt:            s.now(),
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "tag already holds an active listing")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create listing")
		}
		if err := itemRepo.UpdateStatus(ctx, item.ID, enums.ItemStatusListed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark item listed")
		}

		created.Item = item
		listing = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	data := map[string]any{"item_name": listing.Item.Name}
	if breakdown, err := s.pricer.Split(listing.Item.Price, listing.StoreCommissionRate); err == nil {
		data["listing_price"] = breakdown.ListingPrice.StringFixed(2)
		data["seller_earnings"] = breakdown.SellerEarnings.StringFixed(2)
	}
	s.notify(ctx, listing.MemberID, enums.NotificationItemListed, data)
	return listing, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ListingDetail, error) {
	listing, err := s.repo.FindListingByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find listing")
	}
	if listing.Item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "listing item missing")
	}
	breakdown, err := s.pricer.Split(listing.Item.Price, listing.StoreCommissionRate)
	if err != nil {
		return nil, err
	}
	return &ListingDetail{Listing: *listing, Pricing: breakdown}, nil
}

func (s *service) Recall(ctx context.Context, input RecallInput) (*models.RecalledListing, error) {
	now := s.now()

	var recalled *models.RecalledListing
	var reason *models.RecallReason
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		itemRepo := s.items.WithTx(tx)
		storeRepo := s.stores.WithTx(tx)

		listing, err := repo.FindListingByID(ctx, input.ListingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find listing")
		}

		reason, err = repo.FindRecallReasonByID(ctx, input.ReasonID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid recall reason")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find recall reason")
		}

		hours, err := storeRepo.OpeningHoursForStore(ctx, listing.StoreID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load opening hours")
		}
		deadline := s.deadlines.CollectionDeadline(hours, now)

		pin, err := GeneratePin()
		if err != nil {
			return err
		}

		created, err := repo.CreateRecalledListing(ctx, &models.RecalledListing{
			ItemID:              listing.ItemID,
			TagID:               listing.TagID,
			StoreID:             listing.StoreID,
			MemberID:            listing.MemberID,
			StoreCommissionRate: listing.StoreCommissionRate,
			ReasonID:            reason.ID,
			CollectionPin:       pin,
			CollectionDeadline:  deadline,
			NextFeeChargeAt:     now.AddDate(0, 0, s.storageFeeGraceDays()),
			RecalledAt:          now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create recalled listing")
		}
		if err := repo.DeleteListing(ctx, listing.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete active listing")
		}
		if err := itemRepo.UpdateStatus(ctx, listing.ItemID, enums.ItemStatusRecalled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark item recalled")
		}

		recalled = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, recalled.MemberID, enums.NotificationItemRecalled, map[string]any{
		"reason":              reason.Reason,
		"collection_pin":      recalled.CollectionPin,
		"collection_deadline": recalled.CollectionDeadline.Format(time.RFC3339),
	})
	return recalled, nil
}

func (s *service) Delist(ctx context.Context, input DelistInput) error {
	now := s.now()

	var memberID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		itemRepo := s.items.WithTx(tx)

		listing, err := repo.FindListingByID(ctx, input.ListingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find listing")
		}

		reason, err := repo.FindRecallReasonByID(ctx, input.ReasonID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid recall reason")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find recall reason")
		}

		if _, err := repo.CreateDelistedListing(ctx, &models.DelistedListing{
			ItemID:              listing.ItemID,
			TagID:               listing.TagID,
			StoreID:             listing.StoreID,
			MemberID:            listing.MemberID,
			StoreCommissionRate: listing.StoreCommissionRate,
			ReasonID:            reason.ID,
			DelistedAt:          now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create delisted listing")
		}
		if err := repo.DeleteListing(ctx, listing.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete active listing")
		}
		if err := itemRepo.UpdateStatus(ctx, listing.ItemID, enums.ItemStatusAvailable); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark item available")
		}

		memberID = listing.MemberID
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, memberID, enums.NotificationItemDelisted, nil)
	return nil
}

func (s *service) Collect(ctx context.Context, input CollectInput) error {
	now := s.now()

	var memberID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		itemRepo := s.items.WithTx(tx)

		recalled, err := repo.FindRecalledByID(ctx, input.RecalledListingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "recalled listing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find recalled listing")
		}
		if !VerifyPin(recalled.CollectionPin, input.Pin) {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid collection pin")
		}

		if _, err := repo.CreateDelistedListing(ctx, &models.DelistedListing{
			ItemID:              recalled.ItemID,
			TagID:               recalled.TagID,
			StoreID:             recalled.StoreID,
			MemberID:            recalled.MemberID,
			StoreCommissionRate: recalled.StoreCommissionRate,
			ReasonID:            recalled.ReasonID,
			Collected:           true,
			DelistedAt:          now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create delisted listing")
		}
		if err := repo.DeleteRecalled(ctx, recalled.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete recalled listing")
		}
		if err := itemRepo.UpdateStatus(ctx, recalled.ItemID, enums.ItemStatusAvailable); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark item available")
		}

		memberID = recalled.MemberID
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, memberID, enums.NotificationItemCollected, nil)
	return nil
}

func (s *service) RegeneratePin(ctx context.Context, recalledID uuid.UUID) error {
	recalled, err := s.repo.FindRecalledByID(ctx, recalledID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "recalled listing not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find recalled listing")
	}

	pin, err := GeneratePin()
	if err != nil {
		return err
	}
	if err := s.repo.UpdateRecalled(ctx, recalled.ID, map[string]any{"collection_pin": pin}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update collection pin")
	}

	s.notify(ctx, recalled.MemberID, enums.NotificationNewCollectionPin, map[string]any{
		"collection_pin":      pin,
		"collection_deadline": recalled.CollectionDeadline.Format(time.RFC3339),
	})
	return nil
}

func (s *service) ReplaceTag(ctx context.Context, listingID, newTagID uuid.UUID) error {
	if newTagID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "new tag id is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		storeRepo := s.stores.WithTx(tx)

		listing, err := repo.FindListingByID(ctx, listingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find listing")
		}

		if _, err := storeRepo.FindByTagID(ctx, newTagID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find tag store")
		}

		if err := repo.UpdateListingTag(ctx, listing.ID, newTagID); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "tag already holds an active listing")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reassign listing tag")
		}
		return nil
	})
}

func (s *service) Abandon(ctx context.Context, recalledID uuid.UUID) error {
	now := s.now()

	var memberID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		itemRepo := s.items.WithTx(tx)

		recalled, err := repo.FindRecalledByID(ctx, recalledID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "recalled listing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find recalled listing")
		}

		reason, err := repo.FindRecallReasonByName(ctx, abandonedReason)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find abandoned reason")
		}

		if _, err := repo.CreateDelistedListing(ctx, &models.DelistedListing{
			ItemID:              recalled.ItemID,
			TagID:               recalled.TagID,
			StoreID:             recalled.StoreID,
			MemberID:            recalled.MemberID,
			StoreCommissionRate: recalled.StoreCommissionRate,
			ReasonID:            reason.ID,
			DelistedAt:          now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create delisted listing")
		}
		if err := repo.DeleteRecalled(ctx, recalled.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete recalled listing")
		}
		if err := itemRepo.UpdateStatus(ctx, recalled.ItemID, enums.ItemStatusAbandoned); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark item abandoned")
		}

		memberID = recalled.MemberID
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, memberID, enums.NotificationItemAbandoned, nil)
	return nil
}

// Purchase archives an active listing as sold inside the caller's
// transaction. It is invoked only from the payment reconciliation path; the
// caller notifies after its transaction commits, using the returned member
// email.
func (s *service) Purchase(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, txn *models.ItemPaymentTransaction) (*PurchaseResult, error) {
	if txn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment transaction required")
	}
	repo := s.repo.WithTx(tx)
	itemRepo := s.items.WithTx(tx)

	listing, err := repo.FindListingByItemID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "active listing not found for item")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find listing")
	}

	sold, err := repo.CreateSoldListing(ctx, &models.SoldListing{
		ItemID:              listing.ItemID,
		TagID:               listing.TagID,
		StoreID:             listing.StoreID,
		MemberID:            listing.MemberID,
		StoreCommissionRate: listing.StoreCommissionRate,
		TransactionID:       txn.ID,
		SoldAt:              s.now(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sold listing")
	}
	if err := repo.DeleteListing(ctx, listing.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete active listing")
	}
	if err := itemRepo.UpdateStatus(ctx, listing.ItemID, enums.ItemStatusSold); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark item sold")
	}

	result := &PurchaseResult{Sold: sold, Listing: listing}
	if member, err := repo.FindMemberByID(ctx, listing.MemberID); err == nil {
		result.MemberEmail = member.Email
	} else {
		s.logg.Error(ctx, "lookup seller for sale notification", err)
	}
	return result, nil
}

func (s *service) storageFeeGraceDays() int {
	if s.recallCfg.StorageFeeGraceDays > 0 {
		return s.recallCfg.StorageFeeGraceDays
	}
	return 7
}

// notify resolves the member's email and dispatches best-effort. Failures
// are logged, never returned: the state change already committed.
func (s *service) notify(ctx context.Context, memberID uuid.UUID, template enums.NotificationTemplate, data map[string]any) {
	member, err := s.repo.FindMemberByID(ctx, memberID)
	if err != nil {
		s.logg.Error(ctx, "lookup notification recipient", err)
		return
	}
	if err := s.notifier.Notify(ctx, member.Email, template, data); err != nil {
		s.logg.Error(ctx, "dispatch notification", err)
	}
}

func validateStoreRequirements(store *models.Store, item *models.Item) error {
	if item.Price.LessThan(store.MinPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, "item price below store minimum")
	}
	if len(store.AcceptedCategories) > 0 && !containsFold(store.AcceptedCategories, item.Category) {
		return pkgerrors.New(pkgerrors.CodeValidation, "item category not accepted by store")
	}
	if len(store.AcceptedConditions) > 0 && !containsFold(store.AcceptedConditions, item.Condition.String()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "item condition not accepted by store")
	}
	return nil
}

func containsFold(values []string, candidate string) bool {
	for _, value := range values {
		if strings.EqualFold(value, candidate) {
			return true
		}
	}
	return false
}
