package transfers

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/config"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
)

var transfersTestNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

type transferCall struct {
	Destination  string
	AmountCents  int64
	Currency     string
	SourceCharge string
}

type stubPaymentClient struct {
	calls []transferCall
	fail  map[string]error
}

func (s *stubPaymentClient) CreateTransfer(_ context.Context, destination string, amountCents int64, currency, sourceCharge string) (string, error) {
	s.calls = append(s.calls, transferCall{
		Destination:  destination,
		AmountCents:  amountCents,
		Currency:     currency,
		SourceCharge: sourceCharge,
	})
	if err, ok := s.fail[destination]; ok {
		return "", err
	}
	return "tr_" + destination, nil
}

func (s *stubPaymentClient) RetrievePaymentIntent(context.Context, string) (*stripe.PaymentIntent, error) {
	return nil, errors.New("not implemented")
}

func newPayoutService(t *testing.T, gdb *gorm.DB, payments PaymentClient) Orchestrator {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(gdb),
		Payments: payments,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Cfg: config.CronConfig{
			TransferRetryBase:        time.Hour,
			TransferRetryCap:         24 * time.Hour,
			TransferRetryMaxAttempts: 10,
		},
		Now: func() time.Time { return transfersTestNow },
	})
	require.NoError(t, err)
	return svc
}

func testPayout() SalePayout {
	return SalePayout{
		MemberID:          uuid.New(),
		MemberDestination: "acct_member",
		SellerEarnings:    decimal.RequireFromString("80.00"),
		StoreID:           uuid.New(),
		StoreDestination:  "acct_store",
		StoreCommission:   decimal.RequireFromString("20.00"),
		SourceCharge:      "ch_sale",
	}
}

func TestPayoutSaleBothLegs(t *testing.T) {
	gdb := setupTransfersTestDB(t)
	payments := &stubPaymentClient{}
	svc := newPayoutService(t, gdb, payments)

	svc.PayoutSale(context.Background(), testPayout())

	require.Len(t, payments.calls, 2)
	assert.Equal(t, transferCall{
		Destination:  "acct_member",
		AmountCents:  8000,
		Currency:     "gbp",
		SourceCharge: "ch_sale",
	}, payments.calls[0])
	assert.Equal(t, transferCall{
		Destination:  "acct_store",
		AmountCents:  2000,
		Currency:     "gbp",
		SourceCharge: "ch_sale",
	}, payments.calls[1])

	var memberCount, storeCount int64
	require.NoError(t, gdb.Model(&models.PendingMemberTransfer{}).Count(&memberCount).Error)
	require.NoError(t, gdb.Model(&models.PendingStoreTransfer{}).Count(&storeCount).Error)
	assert.Zero(t, memberCount)
	assert.Zero(t, storeCount)
}

func TestPayoutSaleFailedLegQueued(t *testing.T) {
	gdb := setupTransfersTestDB(t)
	payments := &stubPaymentClient{fail: map[string]error{"acct_member": errors.New("provider down")}}
	svc := newPayoutService(t, gdb, payments)

	svc.PayoutSale(context.Background(), testPayout())

	var pending []models.PendingMemberTransfer
	require.NoError(t, gdb.Find(&pending).Error)
	require.Len(t, pending, 1)
	assert.Equal(t, "acct_member", pending[0].DestinationAccount)
	assert.Equal(t, "ch_sale", pending[0].SourceCharge)
	assert.True(t, pending[0].Amount.Equal(decimal.RequireFromString("80.00")))
	assert.Equal(t, transfersTestNow.Add(time.Hour), pending[0].NextAttemptAt.UTC())

	// The store leg is independent and still settles.
	var storeCount int64
	require.NoError(t, gdb.Model(&models.PendingStoreTransfer{}).Count(&storeCount).Error)
	assert.Zero(t, storeCount)
}

func TestPayoutSaleMissingDestinationQueuedWithoutAttempt(t *testing.T) {
	gdb := setupTransfersTestDB(t)
	payments := &stubPaymentClient{}
	svc := newPayoutService(t, gdb, payments)

	payout := testPayout()
	payout.StoreDestination = ""
	svc.PayoutSale(context.Background(), payout)

	require.Len(t, payments.calls, 1)
	assert.Equal(t, "acct_member", payments.calls[0].Destination)

	var pending []models.PendingStoreTransfer
	require.NoError(t, gdb.Find(&pending).Error)
	require.Len(t, pending, 1)
	assert.Empty(t, pending[0].DestinationAccount)
}

func TestPayoutSaleDuplicateEnqueueIgnored(t *testing.T) {
	gdb := setupTransfersTestDB(t)
	payments := &stubPaymentClient{fail: map[string]error{
		"acct_member": errors.New("provider down"),
		"acct_store":  errors.New("provider down"),
	}}
	svc := newPayoutService(t, gdb, payments)

	payout := testPayout()
	svc.PayoutSale(context.Background(), payout)
	svc.PayoutSale(context.Background(), payout)

	var memberCount, storeCount int64
	require.NoError(t, gdb.Model(&models.PendingMemberTransfer{}).Count(&memberCount).Error)
	require.NoError(t, gdb.Model(&models.PendingStoreTransfer{}).Count(&storeCount).Error)
	assert.EqualValues(t, 1, memberCount)
	assert.EqualValues(t, 1, storeCount)
}

func TestPayoutSaleZeroAmountLegSkipped(t *testing.T) {
	gdb := setupTransfersTestDB(t)
	payments := &stubPaymentClient{}
	svc := newPayoutService(t, gdb, payments)

	payout := testPayout()
	payout.StoreCommission = decimal.Zero
	svc.PayoutSale(context.Background(), payout)

	require.Len(t, payments.calls, 1)
	assert.Equal(t, "acct_member", payments.calls[0].Destination)
}

func TestRetryPendingSuccessDeletesRow(t *testing.T) {
	gdb := setupTransfersTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	require.NoError(t, repo.EnqueueMember(ctx, &models.PendingMemberTransfer{
		MemberID:           uuid.New(),
		DestinationAccount: "acct_member",
		Amount:             decimal.RequireFromString("80.00"),
		SourceCharge:       "ch_retry",
		AttemptCount:       2,
		NextAttemptAt:      transfersTestNow.Add(-time.Minute),
	}))

	payments := &stubPaymentClient{}
	svc := newPayoutService(t, gdb, payments)
	require.NoError(t, svc.RetryPending(ctx))

	require.Len(t, payments.calls, 1)
	assert.Equal(t, int64(8000), payments.calls[0].AmountCents)

	var count int64
	require.NoError(t, gdb.Model(&models.PendingMemberTransfer{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRetryPendingFailureBacksOff(t *testing.T) {
	gdb := setupTransfersTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	require.NoError(t, repo.EnqueueStore(ctx, &models.PendingStoreTransfer{
		StoreID:            uuid.New(),
		DestinationAccount: "acct_store",
		Amount:             decimal.RequireFromString("20.00"),
		SourceCharge:       "ch_backoff",
		AttemptCount:       2,
		NextAttemptAt:      transfersTestNow.Add(-time.Minute),
	}))

	payments := &stubPaymentClient{fail: map[string]error{"acct_store": errors.New("provider down")}}
	svc := newPayoutService(t, gdb, payments)
	require.NoError(t, svc.RetryPending(ctx))

	var pending []models.PendingStoreTransfer
	require.NoError(t, gdb.Find(&pending).Error)
	require.Len(t, pending, 1)
	assert.Equal(t, 3, pending[0].AttemptCount)
	// Third attempt backs off to base * 2^2.
	assert.Equal(t, transfersTestNow.Add(4*time.Hour), pending[0].NextAttemptAt.UTC())
}

func TestRetryPendingBackoffCapped(t *testing.T) {
	gdb := setupTransfersTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	require.NoError(t, repo.EnqueueMember(ctx, &models.PendingMemberTransfer{
		MemberID:           uuid.New(),
		DestinationAccount: "acct_member",
		Amount:             decimal.RequireFromString("80.00"),
		SourceCharge:       "ch_cap",
		AttemptCount:       8,
		NextAttemptAt:      transfersTestNow.Add(-time.Minute),
	}))

	payments := &stubPaymentClient{fail: map[string]error{"acct_member": errors.New("provider down")}}
	svc := newPayoutService(t, gdb, payments)
	require.NoError(t, svc.RetryPending(ctx))

	var pending []models.PendingMemberTransfer
	require.NoError(t, gdb.Find(&pending).Error)
	require.Len(t, pending, 1)
	assert.Equal(t, 9, pending[0].AttemptCount)
	assert.Equal(t, transfersTestNow.Add(24*time.Hour), pending[0].NextAttemptAt.UTC())
}

func TestRetryPendingExhaustedLeftForOperator(t *testing.T) {
	gdb := setupTransfersTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	require.NoError(t, repo.EnqueueMember(ctx, &models.PendingMemberTransfer{
		MemberID:           uuid.New(),
		DestinationAccount: "acct_member",
		Amount:             decimal.RequireFromString("80.00"),
		SourceCharge:       "ch_exhausted",
		AttemptCount:       10,
		NextAttemptAt:      transfersTestNow.Add(-time.Minute),
	}))

	payments := &stubPaymentClient{}
	svc := newPayoutService(t, gdb, payments)
	require.NoError(t, svc.RetryPending(ctx))

	// No further provider attempts; the row stays queued out at the cap.
	assert.Empty(t, payments.calls)

	var pending []models.PendingMemberTransfer
	require.NoError(t, gdb.Find(&pending).Error)
	require.Len(t, pending, 1)
	assert.Equal(t, 10, pending[0].AttemptCount)
	assert.Equal(t, transfersTestNow.Add(24*time.Hour), pending[0].NextAttemptAt.UTC())
}
