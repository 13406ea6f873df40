package listings

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/internal/items"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/stores"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/config"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
	pkgerrors "github.com/Tag-Take/tagandtake-backend-sub000/pkg/errors"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/pricing"
)

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type notifyCall struct {
	recipient string
	template  enums.NotificationTemplate
	data      map[string]any
}

type captureNotifier struct {
	calls []notifyCall
}

func (n *captureNotifier) Notify(_ context.Context, recipient string, template enums.NotificationTemplate, data map[string]any) error {
	n.calls = append(n.calls, notifyCall{recipient: recipient, template: template, data: data})
	return nil
}

func (n *captureNotifier) last(t *testing.T) notifyCall {
	t.Helper()
	require.NotEmpty(t, n.calls)
	return n.calls[len(n.calls)-1]
}

var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newLifecycleService(t *testing.T, gdb *gorm.DB) (Service, *captureNotifier) {
	t.Helper()

	notifier := &captureNotifier{}
	pricer, err := pricing.NewEngine(pricing.Config{
		PlatformCommissionRate: decimal.RequireFromString("0.05"),
		PlatformFlatFee:        decimal.RequireFromString("1.00"),
	})
	require.NoError(t, err)

	recallCfg := config.RecallConfig{
		CollectionWindowDays: 21,
		FallbackDeadlineHour: 17,
		StorageFee:           decimal.RequireFromString("1.00"),
		StorageFeeInterval:   168 * time.Hour,
		StorageFeeGraceDays:  7,
	}

	svc, err := NewService(ServiceParams{
		Tx:        sqliteTxRunner{db: gdb},
		Repo:      NewRepository(gdb),
		Items:     items.NewRepository(gdb),
		Stores:    stores.NewRepository(gdb),
		Deadlines: stores.NewDeadlineCalculator(recallCfg),
		Pricer:    pricer,
		Notifier:  notifier,
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		RecallCfg: recallCfg,
		Now:       func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return svc, notifier
}

func TestCreateListing(t *testing.T) {
	gdb := setupListingsTestDB(t)
	svc, notifier := newLifecycleService(t, gdb)
	ctx := context.Background()

	member := seedMember(t, gdb, "create@example.com")
	store := seedStore(t, gdb, "create-store@example.com")
	tag := seedTag(t, gdb, store.ID)
	item := seedItem(t, gdb, member.ID, "100.00")

	listing, err := svc.Create(ctx, CreateListingInput{ItemID: item.ID, TagID: tag.ID})
	require.NoError(t, err)
	assert.True(t, listing.StoreCommissionRate.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, 14, listing.MinListingDays)

	var stored models.Item
	require.NoError(t, gdb.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, enums.ItemStatusListed, stored.Status)

	call := notifier.last(t)
	assert.Equal(t, "create@example.com", call.recipient)
	assert.Equal(t, enums.NotificationItemListed, call.template)
	assert.Equal(t, "106.00", call.data["listing_price"])
	assert.Equal(t, "80.00", call.data["seller_earnings"])

	detail, err := svc.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, detail.Pricing.ListingPrice.Equal(decimal.RequireFromString("106.00")))
	assert.True(t, detail.Pricing.StoreCommission.Equal(decimal.RequireFromString("20.00")))
}

func TestCreateListingRejections(t *testing.T) {
	gdb := setupListingsTestDB(t)
	svc, _ := newLifecycleService(t, gdb)
	ctx := context.Background()

	member := seedMember(t, gdb, "reject@example.com")
	store := seedStore(t, gdb, "reject-store@example.com")
	tag := seedTag(t, gdb, store.ID)

	t.Run("item not available", func(t *testing.T) {
		item := seedItem(t, gdb, member.ID, "50.00")
		require.NoError(t, gdb.Model(&models.Item{}).Where("id = ?", item.ID).
			Update("status", enums.ItemStatusListed).Error)

		_, err := svc.Create(ctx, CreateListingInput{ItemID: item.ID, TagID: tag.ID})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	})

	t.Run("price below store minimum", func(t *testing.T) {
		item := seedItem(t, gdb, member.ID, "2.00")
		_, err := svc.Create(ctx, CreateListingInput{ItemID: item.ID, TagID: tag.ID})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	})

	t.Run("tag occupied", func(t *testing.T) {
		first := seedItem(t, gdb, member.ID, "50.00")
		second := seedItem(t, gdb, member.ID, "60.00")

		_, err := svc.Create(ctx, CreateListingInput{ItemID: first.ID, TagID: tag.ID})
		require.NoError(t, err)

		_, err = svc.Create(ctx, CreateListingInput{ItemID: second.ID, TagID: tag.ID})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

		var stored models.Item
		require.NoError(t, gdb.First(&stored, "id = ?", second.ID).Error)
		assert.Equal(t, enums.ItemStatusAvailable, stored.Status)
	})

	t.Run("store not accepting", func(t *testing.T) {
		require.NoError(t, gdb.Model(&models.Store{}).Where("id = ?", store.ID).
			Update("accepting_listings", false).Error)
		item := seedItem(t, gdb, member.ID, "50.00")
		freeTag := seedTag(t, gdb, store.ID)

		_, err := svc.Create(ctx, CreateListingInput{ItemID: item.ID, TagID: freeTag.ID})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	})
}

func TestRecallAndCollect(t *testing.T) {
	gdb := setupListingsTestDB(t)
	svc, notifier := newLifecycleService(t, gdb)
	ctx := context.Background()

	member := seedMember(t, gdb, "recall@example.com")
	store := seedStore(t, gdb, "recall-store@example.com")
	tag := seedTag(t, gdb, store.ID)
	item := seedItem(t, gdb, member.ID, "40.00")
	reason := seedReason(t, gdb, "damaged", enums.RecallReasonTypeIssue)

	listing, err := svc.Create(ctx, CreateListingInput{ItemID: item.ID, TagID: tag.ID})
	require.NoError(t, err)

	recalled, err := svc.Recall(ctx, RecallInput{ListingID: listing.ID, ReasonID: reason.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, recalled.CollectionPin)
	assert.Equal(t, testNow.AddDate(0, 0, 7), recalled.NextFeeChargeAt)
	// No opening hours seeded: fallback deadline, 17:00 on day 21.
	assert.Equal(t, time.Date(2026, 9, 21, 17, 0, 0, 0, time.UTC), recalled.CollectionDeadline)

	var listingCount int64
	require.NoError(t, gdb.Model(&models.Listing{}).Where("id = ?", listing.ID).Count(&listingCount).Error)
	assert.Zero(t, listingCount)

	var stored models.Item
	require.NoError(t, gdb.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, enums.ItemStatusRecalled, stored.Status)

	call := notifier.last(t)
	assert.Equal(t, enums.NotificationItemRecalled, call.template)
	assert.Equal(t, recalled.CollectionPin, call.data["collection_pin"])

	err = svc.Collect(ctx, CollectInput{RecalledListingID: recalled.ID, Pin: "0"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	require.NoError(t, gdb.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, enums.ItemStatusRecalled, stored.Status)

	require.NoError(t, svc.Collect(ctx, CollectInput{RecalledListingID: recalled.ID, Pin: recalled.CollectionPin}))

	var delisted models.DelistedListing
	require.NoError(t, gdb.First(&delisted, "item_id = ?", item.ID).Error)
	assert.True(t, delisted.Collected)

	require.NoError(t, gdb.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, enums.ItemStatusAvailable, stored.Status)
	assert.Equal(t, enums.NotificationItemCollected, notifier.last(t).template)
}

func TestDelist(t *testing.T) {
	gdb := setupListingsTestDB(t)
	svc, notifier := newLifecycleService(t, gdb)
	ctx := context.Background()

	member := seedMember(t, gdb, "delist@example.com")
	store := seedStore(t, gdb, "delist-store@example.com")
	tag := seedTag(t, gdb, store.ID)
	item := seedItem(t, gdb, member.ID, "40.00")
	reason := seedReason(t, gdb, "space_reclaimed", enums.RecallReasonTypeStoreDiscretion)

	listing, err := svc.Create(ctx, CreateListingInput{ItemID: item.ID, TagID: tag.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delist(ctx, DelistInput{ListingID: listing.ID, ReasonID: reason.ID}))

	var delisted models.DelistedListing
	require.NoError(t, gdb.First(&delisted, "item_id = ?", item.ID).Error)
	assert.False(t, delisted.Collected)

	var stored models.Item
	require.NoError(t, gdb.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, enums.ItemStatusAvailable, stored.Status)
	assert.Equal(t, enums.NotificationItemDelisted, notifier.last(t).template)
}

func TestAbandon(t *testing.T) {
	gdb := setupListingsTestDB(t)
	svc, notifier := newLifecycleService(t, gdb)
	ctx := context.Background()

	member := seedMember(t, gdb, "abandon@example.com")
	store := seedStore(t, gdb, "abandon-store@example.com")
	tag := seedTag(t, gdb, store.ID)
	item := seedItem(t, gdb, member.ID, "40.00")
	reason := seedReason(t, gdb, "damaged", enums.RecallReasonTypeIssue)
	abandoned := seedReason(t, gdb, "abandoned", enums.RecallReasonTypeStoreDiscretion)

	listing, err := svc.Create(ctx, CreateListingInput{ItemID: item.ID, TagID: tag.ID})
	require.NoError(t, err)
	recalled, err := svc.Recall(ctx, RecallInput{ListingID: listing.ID, ReasonID: reason.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Abandon(ctx, recalled.ID))

	var delisted models.DelistedListing
	require.NoError(t, gdb.First(&delisted, "item_id = ?", item.ID).Error)
	assert.Equal(t, abandoned.ID, delisted.ReasonID)

	var stored models.Item
	require.NoError(t, gdb.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, enums.ItemStatusAbandoned, stored.Status)
	assert.Equal(t, enums.NotificationItemAbandoned, notifier.last(t).template)
}

func TestReplaceTag(t *testing.T) {
	gdb := setupListingsTestDB(t)
	svc, _ := newLifecycleService(t, gdb)
	ctx := context.Background()

	member := seedMember(t, gdb, "replace@example.com")
	store := seedStore(t, gdb, "replace-store@example.com")
	tag := seedTag(t, gdb, store.ID)
	otherTag := seedTag(t, gdb, store.ID)
	item := seedItem(t, gdb, member.ID, "40.00")
	otherItem := seedItem(t, gdb, member.ID, "50.00")

	listing, err := svc.Create(ctx, CreateListingInput{ItemID: item.ID, TagID: tag.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateListingInput{ItemID: otherItem.ID, TagID: otherTag.ID})
	require.NoError(t, err)

	err = svc.ReplaceTag(ctx, listing.ID, otherTag.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	freeTag := seedTag(t, gdb, store.ID)
	require.NoError(t, svc.ReplaceTag(ctx, listing.ID, freeTag.ID))

	found, err := NewRepository(gdb).FindListingByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, freeTag.ID, found.TagID)
}

func TestRegeneratePin(t *testing.T) {
	gdb := setupListingsTestDB(t)
	svc, notifier := newLifecycleService(t, gdb)
	ctx := context.Background()

	member := seedMember(t, gdb, "regen@example.com")
	store := seedStore(t, gdb, "regen-store@example.com")
	tag := seedTag(t, gdb, store.ID)
	item := seedItem(t, gdb, member.ID, "40.00")
	reason := seedReason(t, gdb, "damaged", enums.RecallReasonTypeIssue)

	listing, err := svc.Create(ctx, CreateListingInput{ItemID: item.ID, TagID: tag.ID})
	require.NoError(t, err)
	recalled, err := svc.Recall(ctx, RecallInput{ListingID: listing.ID, ReasonID: reason.ID})
	require.NoError(t, err)

	require.NoError(t, svc.RegeneratePin(ctx, recalled.ID))

	found, err := NewRepository(gdb).FindRecalledByID(ctx, recalled.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, found.CollectionPin)

	call := notifier.last(t)
	assert.Equal(t, enums.NotificationNewCollectionPin, call.template)
	assert.Equal(t, found.CollectionPin, call.data["collection_pin"])
}

func TestPurchase(t *testing.T) {
	gdb := setupListingsTestDB(t)
	svc, _ := newLifecycleService(t, gdb)
	ctx := context.Background()

	member := seedMember(t, gdb, "purchase@example.com")
	store := seedStore(t, gdb, "purchase-store@example.com")
	tag := seedTag(t, gdb, store.ID)
	item := seedItem(t, gdb, member.ID, "100.00")

	listing, err := svc.Create(ctx, CreateListingInput{ItemID: item.ID, TagID: tag.ID})
	require.NoError(t, err)

	txn := &models.ItemPaymentTransaction{
		ID:             uuid.New(),
		ProviderRef:    "pi_test_123",
		SourceCharge:   "ch_test_123",
		ItemID:         item.ID,
		StoreID:        store.ID,
		MemberID:       member.ID,
		Amount:         decimal.RequireFromString("100.00"),
		TransactionFee: decimal.RequireFromString("6.00"),
		Commission:     decimal.RequireFromString("20.00"),
		SellerEarnings: decimal.RequireFromString("80.00"),
		BuyerEmail:     "buyer@example.com",
	}
	require.NoError(t, gdb.Create(txn).Error)

	var result *PurchaseResult
	require.NoError(t, gdb.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = svc.Purchase(ctx, tx, item.ID, txn)
		return err
	}))

	assert.Equal(t, "purchase@example.com", result.MemberEmail)
	assert.Equal(t, txn.ID, result.Sold.TransactionID)

	var listingCount int64
	require.NoError(t, gdb.Model(&models.Listing{}).Where("id = ?", listing.ID).Count(&listingCount).Error)
	assert.Zero(t, listingCount)

	var sold models.SoldListing
	require.NoError(t, gdb.First(&sold, "item_id = ?", item.ID).Error)
	assert.Equal(t, txn.ID, sold.TransactionID)

	var stored models.Item
	require.NoError(t, gdb.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, enums.ItemStatusSold, stored.Status)
}
