package listings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
)

func setupListingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{`
CREATE TABLE IF NOT EXISTS members (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(6)))),
  email TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL,
  stripe_account_id TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  deactivated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(6)))),
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  commission_rate TEXT NOT NULL,
  min_listing_days INTEGER NOT NULL DEFAULT 14,
  min_price TEXT NOT NULL,
  accepted_categories TEXT,
  accepted_conditions TEXT,
  accepting_listings INTEGER NOT NULL DEFAULT 1,
  stripe_account_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS opening_hours (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(6)))),
  store_id TEXT NOT NULL,
  day_of_week INTEGER NOT NULL,
  opens_at TEXT NOT NULL DEFAULT '09:00',
  closes_at TEXT NOT NULL DEFAULT '17:00',
  closed INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (store_id, day_of_week)
);`, `
CREATE TABLE IF NOT EXISTS tag_groups (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(6)))),
  store_id TEXT NOT NULL,
  size INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS tags (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(6)))),
  tag_group_id TEXT NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS items (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(6)))),
  member_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  condition TEXT NOT NULL,
  price TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'available',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS recall_reasons (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(6)))),
  reason TEXT NOT NULL UNIQUE,
  type TEXT NOT NULL,
  description TEXT,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(6)))),
  item_id TEXT NOT NULL UNIQUE,
  tag_id TEXT NOT NULL UNIQUE,
  store_id TEXT NOT NULL,
  member_id TEXT NOT NULL,
  store_commission_rate TEXT NOT NULL,
  min_listing_days INTEGER NOT NULL,
  listed_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS recalled_listings (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(6)))),
  item_id TEXT NOT NULL UNIQUE,
  tag_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  member_id TEXT NOT NULL,
  store_commission_rate TEXT NOT NULL,
  reason_id TEXT NOT NULL,
  collection_pin TEXT NOT NULL,
  collection_deadline DATETIME NOT NULL,
  fee_charged_count INTEGER NOT NULL DEFAULT 0,
  last_fee_charge_amount TEXT NOT NULL DEFAULT '0',
  next_fee_charge_at DATETIME NOT NULL,
  recalled_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS delisted_listings (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(6)))),
  item_id TEXT NOT NULL,
  tag_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  member_id TEXT NOT NULL,
  store_commission_rate TEXT NOT NULL,
  reason_id TEXT NOT NULL,
  collected INTEGER NOT NULL DEFAULT 0,
  delisted_at DATETIME NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS sold_listings (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(6)))),
  item_id TEXT NOT NULL UNIQUE,
  tag_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  member_id TEXT NOT NULL,
  store_commission_rate TEXT NOT NULL,
  transaction_id TEXT NOT NULL,
  sold_at DATETIME NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS item_payment_transactions (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(2))||'-'||hex(randomblob(6)))),
  provider_ref TEXT NOT NULL UNIQUE,
  source_charge TEXT NOT NULL,
  item_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  member_id TEXT NOT NULL,
  amount TEXT NOT NULL,
  transaction_fee TEXT NOT NULL,
  commission TEXT NOT NULL,
  seller_earnings TEXT NOT NULL,
  buyer_email TEXT NOT NULL,
  processed INTEGER NOT NULL DEFAULT 0,
  latest_status TEXT NOT NULL DEFAULT 'succeeded',
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, schema := range schemas {
		require.NoError(t, gdb.Exec(schema).Error)
	}
	return gdb
}

func seedMember(t *testing.T, gdb *gorm.DB, email string) *models.Member {
	t.Helper()
	member := &models.Member{ID: uuid.New(), Email: email, DisplayName: "Test Member"}
	require.NoError(t, gdb.Create(member).Error)
	return member
}

func seedStore(t *testing.T, gdb *gorm.DB, email string) *models.Store {
	t.Helper()
	store := &models.Store{
		ID:             uuid.New(),
		Name:           "Corner Exchange",
		Email:          email,
		CommissionRate: decimal.RequireFromString("20.00"),
		MinListingDays: 14,
		MinPrice:       decimal.RequireFromString("5.00"),
	}
	require.NoError(t, gdb.Create(store).Error)
	return store
}

func seedTag(t *testing.T, gdb *gorm.DB, storeID uuid.UUID) *models.Tag {
	t.Helper()
	group := &models.TagGroup{ID: uuid.New(), StoreID: storeID, Size: 10}
	require.NoError(t, gdb.Create(group).Error)
	tag := &models.Tag{ID: uuid.New(), TagGroupID: group.ID}
	require.NoError(t, gdb.Create(tag).Error)
	return tag
}

func seedItem(t *testing.T, gdb *gorm.DB, memberID uuid.UUID, price string) *models.Item {
	t.Helper()
	item := &models.Item{
		ID:        uuid.New(),
		MemberID:  memberID,
		Name:      "Wool coat",
		Category:  "clothing",
		Condition: enums.ItemConditionGood,
		Price:     decimal.RequireFromString(price),
		Status:    enums.ItemStatusAvailable,
	}
	require.NoError(t, gdb.Create(item).Error)
	return item
}

func seedReason(t *testing.T, gdb *gorm.DB, name string, reasonType enums.RecallReasonType) *models.RecallReason {
	t.Helper()
	reason := &models.RecallReason{ID: uuid.New(), Reason: name, Type: reasonType}
	require.NoError(t, gdb.Create(reason).Error)
	return reason
}

func seedListing(t *testing.T, gdb *gorm.DB, item *models.Item, tagID, storeID uuid.UUID) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		ID:                  uuid.New(),
		ItemID:              item.ID,
		TagID:               tagID,
		StoreID:             storeID,
		MemberID:            item.MemberID,
		StoreCommissionRate: decimal.RequireFromString("20.00"),
		MinListingDays:      14,
		ListedAt:            time.Now().UTC(),
	}
	require.NoError(t, gdb.Create(listing).Error)
	return listing
}

func TestListingTagExclusivity(t *testing.T) {
	gdb := setupListingsTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	member := seedMember(t, gdb, "tagex@example.com")
	store := seedStore(t, gdb, "tagex-store@example.com")
	tag := seedTag(t, gdb, store.ID)
	first := seedItem(t, gdb, member.ID, "30.00")
	second := seedItem(t, gdb, member.ID, "40.00")

	_, err := repo.CreateListing(ctx, &models.Listing{
		ItemID: first.ID, TagID: tag.ID, StoreID: store.ID, MemberID: member.ID,
		StoreCommissionRate: store.CommissionRate, MinListingDays: 14, ListedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	_, err = repo.CreateListing(ctx, &models.Listing{
		ItemID: second.ID, TagID: tag.ID, StoreID: store.ID, MemberID: member.ID,
		StoreCommissionRate: store.CommissionRate, MinListingDays: 14, ListedAt: time.Now().UTC(),
	})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""), "expected a unique violation, got %v", err)
}

func TestFindListingLookups(t *testing.T) {
	gdb := setupListingsTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	member := seedMember(t, gdb, "lookups@example.com")
	store := seedStore(t, gdb, "lookups-store@example.com")
	tag := seedTag(t, gdb, store.ID)
	item := seedItem(t, gdb, member.ID, "25.00")
	listing := seedListing(t, gdb, item, tag.ID, store.ID)

	byID, err := repo.FindListingByID(ctx, listing.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.Item)
	assert.Equal(t, item.ID, byID.Item.ID)

	byItem, err := repo.FindListingByItemID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, byItem.ID)

	byTag, err := repo.FindListingByTagID(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, byTag.ID)

	_, err = repo.FindListingByTagID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecalledSweepQueries(t *testing.T) {
	gdb := setupListingsTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	member := seedMember(t, gdb, "sweep@example.com")
	store := seedStore(t, gdb, "sweep-store@example.com")
	reason := seedReason(t, gdb, "damaged", enums.RecallReasonTypeIssue)
	now := time.Now().UTC()

	mkRecalled := func(deadline, nextFee time.Time) *models.RecalledListing {
		item := seedItem(t, gdb, member.ID, "10.00")
		tag := seedTag(t, gdb, store.ID)
		recalled := &models.RecalledListing{
			ID:                  uuid.New(),
			ItemID:              item.ID,
			TagID:               tag.ID,
			StoreID:             store.ID,
			MemberID:            member.ID,
			StoreCommissionRate: store.CommissionRate,
			ReasonID:            reason.ID,
			CollectionPin:       "4821",
			CollectionDeadline:  deadline,
			LastFeeChargeAmount: decimal.Zero,
			NextFeeChargeAt:     nextFee,
			RecalledAt:          now.AddDate(0, 0, -10),
		}
		require.NoError(t, gdb.Create(recalled).Error)
		return recalled
	}

	overdueFee := mkRecalled(now.AddDate(0, 0, 5), now.Add(-time.Hour))
	pastDeadline := mkRecalled(now.AddDate(0, 0, -1), now.Add(24*time.Hour))
	quiet := mkRecalled(now.AddDate(0, 0, 5), now.Add(24*time.Hour))

	due, err := repo.ListRecalledDueForFee(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, overdueFee.ID, due[0].ID)

	expired, err := repo.ListRecalledPastDeadline(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, pastDeadline.ID, expired[0].ID)

	_ = quiet
}

func TestUpdateRecalled(t *testing.T) {
	gdb := setupListingsTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	member := seedMember(t, gdb, "update@example.com")
	store := seedStore(t, gdb, "update-store@example.com")
	reason := seedReason(t, gdb, "mislabelled", enums.RecallReasonTypeIssue)
	item := seedItem(t, gdb, member.ID, "10.00")
	tag := seedTag(t, gdb, store.ID)
	now := time.Now().UTC().Truncate(time.Second)

	recalled := &models.RecalledListing{
		ID:                  uuid.New(),
		ItemID:              item.ID,
		TagID:               tag.ID,
		StoreID:             store.ID,
		MemberID:            member.ID,
		StoreCommissionRate: store.CommissionRate,
		ReasonID:            reason.ID,
		CollectionPin:       "4821",
		CollectionDeadline:  now.AddDate(0, 0, 21),
		LastFeeChargeAmount: decimal.Zero,
		NextFeeChargeAt:     now,
		RecalledAt:          now,
	}
	require.NoError(t, gdb.Create(recalled).Error)

	require.NoError(t, repo.UpdateRecalled(ctx, recalled.ID, map[string]any{
		"fee_charged_count":      1,
		"last_fee_charge_amount": decimal.RequireFromString("1.00"),
		"next_fee_charge_at":     now.Add(168 * time.Hour),
	}))

	found, err := repo.FindRecalledByID(ctx, recalled.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.FeeChargedCount)
	assert.True(t, found.LastFeeChargeAmount.Equal(decimal.RequireFromString("1.00")))
	require.NotNil(t, found.Reason)
	assert.Equal(t, "mislabelled", found.Reason.Reason)
}
