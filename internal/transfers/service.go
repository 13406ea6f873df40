package transfers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/config"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
	pkgerrors "github.com/Tag-Take/tagandtake-backend-sub000/pkg/errors"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
)

// payoutCurrency is the settlement currency for connected-account transfers.
const payoutCurrency = "gbp"

// SalePayout carries the two legs of a settled sale. Either destination may
// be empty when the recipient has not finished provider onboarding; that leg
// goes straight to the pending queue.
type SalePayout struct {
	MemberID          uuid.UUID
	MemberDestination string
	SellerEarnings    decimal.Decimal
	StoreID           uuid.UUID
	StoreDestination  string
	StoreCommission   decimal.Decimal
	SourceCharge      string
}

// Orchestrator moves settled funds to sellers and stores, queueing any leg
// that cannot complete for the retry sweep.
type Orchestrator interface {
	PayoutSale(ctx context.Context, payout SalePayout)
	RetryPending(ctx context.Context) error
}

// ServiceParams packages the dependencies for the payout orchestrator.
type ServiceParams struct {
	Repo     Repository
	Payments PaymentClient
	Logger   *logger.Logger
	Cfg      config.CronConfig
	Now      func() time.Time
}

type service struct {
	repo     Repository
	payments PaymentClient
	logg     *logger.Logger
	cfg      config.CronConfig
	now      func() time.Time
}

// NewService builds the payout orchestrator with the provided dependencies.
func NewService(params ServiceParams) (Orchestrator, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transfers repository required")
	}
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment client required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	if params.Cfg.TransferRetryBase <= 0 {
		params.Cfg.TransferRetryBase = time.Hour
	}
	if params.Cfg.TransferRetryCap <= 0 {
		params.Cfg.TransferRetryCap = 24 * time.Hour
	}
	if params.Cfg.TransferRetryMaxAttempts <= 0 {
		params.Cfg.TransferRetryMaxAttempts = 10
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:     params.Repo,
		payments: params.Payments,
		logg:     params.Logger,
		cfg:      params.Cfg,
		now:      params.Now,
	}, nil
}

// PayoutSale attempts both legs of a sale payout. Failures never propagate
// to the caller; any leg that cannot complete is queued for retry so the
// sale itself is unaffected.
func (s *service) PayoutSale(ctx context.Context, payout SalePayout) {
	s.payMemberLeg(ctx, payout)
	s.payStoreLeg(ctx, payout)
}

func (s *service) payMemberLeg(ctx context.Context, payout SalePayout) {
	if payout.SellerEarnings.Sign() <= 0 {
		return
	}
	if payout.MemberDestination == "" {
		s.logg.Warn(s.logg.WithField(ctx, "member_id", payout.MemberID.String()),
			"seller has no payout destination, queueing transfer")
		s.enqueueMember(ctx, payout)
		return
	}
	_, err := s.payments.CreateTransfer(ctx, payout.MemberDestination,
		amountToCents(payout.SellerEarnings), payoutCurrency, payout.SourceCharge)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "member_id", payout.MemberID.String()),
			"seller transfer failed, queueing for retry", err)
		s.enqueueMember(ctx, payout)
	}
}

func (s *service) payStoreLeg(ctx context.Context, payout SalePayout) {
	if payout.StoreCommission.Sign() <= 0 {
		return
	}
	if payout.StoreDestination == "" {
		s.logg.Warn(s.logg.WithField(ctx, "store_id", payout.StoreID.String()),
			"store has no payout destination, queueing transfer")
		s.enqueueStore(ctx, payout)
		return
	}
	_, err := s.payments.CreateTransfer(ctx, payout.StoreDestination,
		amountToCents(payout.StoreCommission), payoutCurrency, payout.SourceCharge)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "store_id", payout.StoreID.String()),
			"store transfer failed, queueing for retry", err)
		s.enqueueStore(ctx, payout)
	}
}

func (s *service) enqueueMember(ctx context.Context, payout SalePayout) {
	pending := &models.PendingMemberTransfer{
		MemberID:           payout.MemberID,
		DestinationAccount: payout.MemberDestination,
		Amount:             payout.SellerEarnings,
		SourceCharge:       payout.SourceCharge,
		NextAttemptAt:      s.now().Add(s.cfg.TransferRetryBase),
	}
	if err := s.repo.EnqueueMember(ctx, pending); err != nil {
		if db.IsUniqueViolation(err, "") {
			return
		}
		s.logg.Error(ctx, "enqueue pending member transfer", err)
	}
}

func (s *service) enqueueStore(ctx context.Context, payout SalePayout) {
	pending := &models.PendingStoreTransfer{
		StoreID:            payout.StoreID,
		DestinationAccount: payout.StoreDestination,
		Amount:             payout.StoreCommission,
		SourceCharge:       payout.SourceCharge,
		NextAttemptAt:      s.now().Add(s.cfg.TransferRetryBase),
	}
	if err := s.repo.EnqueueStore(ctx, pending); err != nil {
		if db.IsUniqueViolation(err, "") {
			return
		}
		s.logg.Error(ctx, "enqueue pending store transfer", err)
	}
}

// RetryPending sweeps both pending queues and re-attempts every due row.
// A failed attempt pushes the row out on an exponential schedule; rows past
// the attempt ceiling are left for an operator and advanced at the cap
// cadence so they stop churning the sweep.
func (s *service) RetryPending(ctx context.Context) error {
	now := s.now()

	dueMembers, err := s.repo.ListDueMember(ctx, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list due member transfers")
	}
	for i := range dueMembers {
		s.retryMember(ctx, &dueMembers[i], now)
	}

	dueStores, err := s.repo.ListDueStore(ctx, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list due store transfers")
	}
	for i := range dueStores {
		s.retryStore(ctx, &dueStores[i], now)
	}
	return nil
}

func (s *service) retryMember(ctx context.Context, pending *models.PendingMemberTransfer, now time.Time) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"pending_transfer_id": pending.ID.String(),
		"member_id":           pending.MemberID.String(),
		"destination":         enums.TransferDestinationMember.String(),
	})
	if pending.AttemptCount >= s.cfg.TransferRetryMaxAttempts {
		s.logg.Error(ctx, "pending member transfer exhausted retries, operator action required", nil)
		s.queueWrite(ctx, func() error {
			return s.repo.UpdateMember(ctx, pending.ID, map[string]any{
				"next_attempt_at": now.Add(s.cfg.TransferRetryCap),
			})
		})
		return
	}
	if pending.DestinationAccount == "" {
		s.bumpMember(ctx, pending, now, nil)
		return
	}
	_, err := s.payments.CreateTransfer(ctx, pending.DestinationAccount,
		amountToCents(pending.Amount), payoutCurrency, pending.SourceCharge)
	if err != nil {
		s.bumpMember(ctx, pending, now, err)
		return
	}
	s.queueWrite(ctx, func() error { return s.repo.DeleteMember(ctx, pending.ID) })
}

func (s *service) retryStore(ctx context.Context, pending *models.PendingStoreTransfer, now time.Time) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"pending_transfer_id": pending.ID.String(),
		"store_id":            pending.StoreID.String(),
		"destination":         enums.TransferDestinationStore.String(),
	})
	if pending.AttemptCount >= s.cfg.TransferRetryMaxAttempts {
		s.logg.Error(ctx, "pending store transfer exhausted retries, operator action required", nil)
		s.queueWrite(ctx, func() error {
			return s.repo.UpdateStore(ctx, pending.ID, map[string]any{
				"next_attempt_at": now.Add(s.cfg.TransferRetryCap),
			})
		})
		return
	}
	if pending.DestinationAccount == "" {
		s.bumpStore(ctx, pending, now, nil)
		return
	}
	_, err := s.payments.CreateTransfer(ctx, pending.DestinationAccount,
		amountToCents(pending.Amount), payoutCurrency, pending.SourceCharge)
	if err != nil {
		s.bumpStore(ctx, pending, now, err)
		return
	}
	s.queueWrite(ctx, func() error { return s.repo.DeleteStore(ctx, pending.ID) })
}

func (s *service) bumpMember(ctx context.Context, pending *models.PendingMemberTransfer, now time.Time, cause error) {
	s.logg.Error(ctx, "member transfer retry failed", cause)
	s.queueWrite(ctx, func() error {
		return s.repo.UpdateMember(ctx, pending.ID, map[string]any{
			"attempt_count":   pending.AttemptCount + 1,
			"next_attempt_at": now.Add(s.backoff(pending.AttemptCount + 1)),
		})
	})
}

func (s *service) bumpStore(ctx context.Context, pending *models.PendingStoreTransfer, now time.Time, cause error) {
	s.logg.Error(ctx, "store transfer retry failed", cause)
	s.queueWrite(ctx, func() error {
		return s.repo.UpdateStore(ctx, pending.ID, map[string]any{
			"attempt_count":   pending.AttemptCount + 1,
			"next_attempt_at": now.Add(s.backoff(pending.AttemptCount + 1)),
		})
	})
}

// queueWrite runs a queue bookkeeping write and logs instead of failing the
// sweep; one stuck row must not block the rest.
func (s *service) queueWrite(ctx context.Context, fn func() error) {
	if err := fn(); err != nil {
		s.logg.Error(ctx, "update pending transfer queue", err)
	}
}

// backoff doubles the base delay per completed attempt, capped.
func (s *service) backoff(attempts int) time.Duration {
	delay := s.cfg.TransferRetryBase
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= s.cfg.TransferRetryCap {
			return s.cfg.TransferRetryCap
		}
	}
	if delay > s.cfg.TransferRetryCap {
		return s.cfg.TransferRetryCap
	}
	return delay
}

func amountToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}
