package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/internal/listings"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/notifications"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/stores"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/transfers"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
	pkgerrors "github.com/Tag-Take/tagandtake-backend-sub000/pkg/errors"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/pricing"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type listingPurchaser interface {
	Purchase(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, txn *models.ItemPaymentTransaction) (*listings.PurchaseResult, error)
}

type supplyFulfiller interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*models.SupplyOrder, error)
	Fulfill(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error)
}

type payoutOrchestrator interface {
	PayoutSale(ctx context.Context, payout transfers.SalePayout)
}

type handlerFunc func(ctx context.Context, event *stripe.Event) error

// ServiceParams packages the dependencies for the reconciliation service.
type ServiceParams struct {
	Tx           txRunner
	Repo         Repository
	ListingsRepo listings.Repository
	Listings     listingPurchaser
	Supplies     supplyFulfiller
	Stores       stores.Repository
	Transfers    payoutOrchestrator
	Pricer       *pricing.Engine
	Notifier     notifications.Notifier
	Logger       *logger.Logger
}

// Service reconciles provider payment events against listing and supply
// state. Routing is an explicit registry keyed by event type; unknown types
// are logged and dropped.
type Service struct {
	tx           txRunner
	repo         Repository
	listingsRepo listings.Repository
	listings     listingPurchaser
	supplies     supplyFulfiller
	stores       stores.Repository
	transfers    payoutOrchestrator
	pricer       *pricing.Engine
	notifier     notifications.Notifier
	logg         *logger.Logger

	handlers map[stripe.EventType]handlerFunc
}

// NewService builds the reconciliation service with the provided
// dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhook repository required")
	}
	if params.ListingsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "listings repository required")
	}
	if params.Listings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "listing purchaser required")
	}
	if params.Supplies == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "supplies service required")
	}
	if params.Stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stores repository required")
	}
	if params.Transfers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transfer orchestrator required")
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
	s := &Service{
		tx:           params.Tx,
		repo:         params.Repo,
		listingsRepo: params.ListingsRepo,
		listings:     params.Listings,
		supplies:     params.Supplies,
		stores:       params.Stores,
		transfers:    params.Transfers,
		pricer:       params.Pricer,
		notifier:     params.Notifier,
		logg:         params.Logger,
	}
	s.handlers = map[stripe.EventType]handlerFunc{
		stripe.EventTypeCheckoutSessionCompleted:   s.handleCheckoutSessionCompleted,
		stripe.EventTypePaymentIntentSucceeded:     s.handlePaymentIntentSucceeded,
		stripe.EventTypePaymentIntentPaymentFailed: s.handlePaymentIntentFailed,
	}
	return s, nil
}

// HandleEvent routes a verified event to its handler. Unknown event types
// are logged and acknowledged.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	handler, ok := s.handlers[event.Type]
	if !ok {
		s.logg.Info(s.logg.WithField(ctx, "event_type", string(event.Type)),
			"unhandled stripe event type, ignoring")
		return nil
	}
	return handler(ctx, event)
}

func (s *Service) handleCheckoutSessionCompleted(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
	}
	purchaseType, err := enums.ParsePurchaseType(session.Metadata["purchase_type"])
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "checkout session purchase type")
	}
	var intentRef string
	if session.PaymentIntent != nil {
		intentRef = session.PaymentIntent.ID
	}
	if session.ID == "" || intentRef == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session refs missing")
	}
	err = s.repo.UpsertCheckoutSession(ctx, &models.CheckoutSession{
		SessionRef:       session.ID,
		PaymentIntentRef: intentRef,
		PurchaseType:     purchaseType,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record checkout session")
	}
	return nil
}

func (s *Service) handlePaymentIntentSucceeded(ctx context.Context, event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	purchaseType, err := enums.ParsePurchaseType(intent.Metadata["purchase_type"])
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment intent purchase type")
	}

	switch purchaseType {
	case enums.PurchaseTypeItem:
		return s.reconcileItemPurchase(ctx, &intent)
	case enums.PurchaseTypeSupplies:
		return s.reconcileSuppliesPurchase(ctx, &intent)
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported purchase type")
	}
}

func (s *Service) reconcileItemPurchase(ctx context.Context, intent *stripe.PaymentIntent) error {
	itemID, err := uuid.Parse(intent.Metadata["item_id"])
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment intent item id")
	}
	sourceCharge := chargeRef(intent)

	var (
		owned  bool
		result *listings.PurchaseResult
		txn    *models.ItemPaymentTransaction
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		listingRepo := s.listingsRepo.WithTx(tx)

		// Processed transactions are final; redelivery after the listing has
		// been archived must be a clean no-op.
		existing, err := repo.FindItemTransaction(ctx, intent.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find item transaction")
		}
		if existing != nil && existing.Processed {
			return nil
		}

		listing, err := listingRepo.FindListingByItemID(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no active listing for paid item")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find listing for payment")
		}
		if listing.Item == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "listing item not loaded")
		}

		breakdown, err := s.pricer.Split(listing.Item.Price, listing.StoreCommissionRate)
		if err != nil {
			return err
		}

		txn, err = repo.GetOrCreateItemTransaction(ctx, &models.ItemPaymentTransaction{
			ProviderRef:    intent.ID,
			SourceCharge:   sourceCharge,
			ItemID:         itemID,
			StoreID:        listing.StoreID,
			MemberID:       listing.MemberID,
			Amount:         breakdown.ListingPrice,
			TransactionFee: breakdown.TransactionFee,
			Commission:     breakdown.StoreCommission,
			SellerEarnings: breakdown.SellerEarnings,
			BuyerEmail:     intent.ReceiptEmail,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert item transaction")
		}

		owned, err = repo.ClaimItemProcessing(ctx, intent.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim item transaction")
		}
		if !owned {
			return nil
		}

		result, err = s.listings.Purchase(ctx, tx, itemID, txn)
		return err
	})
	if err != nil {
		return err
	}
	if !owned {
		s.logg.Info(s.logg.WithField(ctx, "provider_ref", intent.ID),
			"item payment already processed, skipping")
		return nil
	}

	s.settleSale(ctx, result, txn, sourceCharge)
	return nil
}

// settleSale runs the post-commit side of an item sale: payout legs and
// notifications. The sale itself is already final.
func (s *Service) settleSale(ctx context.Context, result *listings.PurchaseResult, txn *models.ItemPaymentTransaction, sourceCharge string) {
	payout := transfers.SalePayout{
		MemberID:        result.Listing.MemberID,
		SellerEarnings:  txn.SellerEarnings,
		StoreID:         result.Listing.StoreID,
		StoreCommission: txn.Commission,
		SourceCharge:    sourceCharge,
	}
	if member, err := s.listingsRepo.FindMemberByID(ctx, result.Listing.MemberID); err == nil {
		if member.StripeAccountID != nil {
			payout.MemberDestination = *member.StripeAccountID
		}
	} else {
		s.logg.Error(ctx, "lookup seller payout account", err)
	}
	if store, err := s.stores.FindByID(ctx, result.Listing.StoreID); err == nil {
		if store.StripeAccountID != nil {
			payout.StoreDestination = *store.StripeAccountID
		}
	} else {
		s.logg.Error(ctx, "lookup store payout account", err)
	}
	s.transfers.PayoutSale(ctx, payout)

	if result.MemberEmail != "" {
		err := s.notifier.Notify(ctx, result.MemberEmail, enums.NotificationItemSold, map[string]any{
			"item_id":         result.Listing.ItemID.String(),
			"seller_earnings": txn.SellerEarnings.StringFixed(2),
		})
		if err != nil {
			s.logg.Error(ctx, "dispatch sale notification", err)
		}
	}
	if txn.BuyerEmail != "" {
		err := s.notifier.Notify(ctx, txn.BuyerEmail, enums.NotificationSaleConfirmation, map[string]any{
			"item_id": result.Listing.ItemID.String(),
			"amount":  txn.Amount.StringFixed(2),
		})
		if err != nil {
			s.logg.Error(ctx, "dispatch purchase confirmation", err)
		}
	}
}

func (s *Service) reconcileSuppliesPurchase(ctx context.Context, intent *stripe.PaymentIntent) error {
	orderID, err := uuid.Parse(intent.Metadata["order_id"])
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment intent order id")
	}
	order, err := s.supplies.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	var owned bool
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		_, err := repo.GetOrCreateSuppliesTransaction(ctx, &models.SuppliesPaymentTransaction{
			ProviderRef: intent.ID,
			OrderID:     order.ID,
			StoreID:     order.StoreID,
			Amount:      amountFromCents(intent.Amount),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert supplies transaction")
		}

		owned, err = repo.ClaimSuppliesProcessing(ctx, intent.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim supplies transaction")
		}
		if !owned {
			return nil
		}

		_, err = s.supplies.Fulfill(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return err
	}
	if !owned {
		s.logg.Info(s.logg.WithField(ctx, "provider_ref", intent.ID),
			"supplies payment already processed, skipping")
		return nil
	}

	if store, err := s.stores.FindByID(ctx, order.StoreID); err == nil {
		err := s.notifier.Notify(ctx, store.Email, enums.NotificationSuppliesShipped, map[string]any{
			"order_id":  order.ID.String(),
			"tag_count": order.TagCount,
		})
		if err != nil {
			s.logg.Error(ctx, "dispatch supplies notification", err)
		}
	} else {
		s.logg.Error(ctx, "lookup store for supplies notification", err)
	}
	return nil
}

func (s *Service) handlePaymentIntentFailed(ctx context.Context, event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	purchaseType, err := enums.ParsePurchaseType(intent.Metadata["purchase_type"])
	if err != nil {
		purchaseType = enums.PurchaseTypeItem
	}
	record := &models.FailedPaymentRecord{
		ProviderRef:    intent.ID,
		PurchaseType:   purchaseType,
		FailureMessage: failureMessage(&intent),
	}
	if err := s.repo.CreateFailedPayment(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record failed payment")
	}
	s.logg.Warn(s.logg.WithField(ctx, "provider_ref", intent.ID), "payment failed, audit row recorded")
	return nil
}

func chargeRef(intent *stripe.PaymentIntent) string {
	if intent.LatestCharge != nil && intent.LatestCharge.ID != "" {
		return intent.LatestCharge.ID
	}
	return intent.ID
}

func failureMessage(intent *stripe.PaymentIntent) string {
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		return intent.LastPaymentError.Msg
	}
	return "payment failed"
}

func amountFromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}
