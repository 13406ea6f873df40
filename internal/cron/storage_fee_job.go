package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/Tag-Take/tagandtake-backend-sub000/internal/listings"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/notifications"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/config"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
	"github.com/google/uuid"
)

// lifecycleAbandoner is the slice of the listings service the sweep needs.
type lifecycleAbandoner interface {
	Abandon(ctx context.Context, recalledID uuid.UUID) error
}

// StorageFeeJobParams configure the recalled-listing storage sweep.
type StorageFeeJobParams struct {
	Logger    *logger.Logger
	Repo      listings.Repository
	Lifecycle lifecycleAbandoner
	Notifier  notifications.Notifier
	Cfg       config.RecallConfig
	Now       func() time.Time
}

// NewStorageFeeJob builds the job that charges recurring storage fees on
// uncollected recalls and abandons those past their collection deadline.
func NewStorageFeeJob(params StorageFeeJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Lifecycle == nil {
		return nil, fmt.Errorf("listings lifecycle required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &storageFeeJob{
		logg:      params.Logger,
		repo:      params.Repo,
		lifecycle: params.Lifecycle,
		notifier:  params.Notifier,
		cfg:       params.Cfg,
		now:       now,
	}, nil
}

type storageFeeJob struct {
	logg      *logger.Logger
	repo      listings.Repository
	lifecycle lifecycleAbandoner
	notifier  notifications.Notifier
	cfg       config.RecallConfig
	now       func() time.Time
}

func (j *storageFeeJob) Name() string { return "storage-fee" }

func (j *storageFeeJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.chargeDueFees(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.abandonExpired(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *storageFeeJob) chargeDueFees(ctx context.Context) error {
	now := j.now()
	due, err := j.repo.ListRecalledDueForFee(ctx, now)
	if err != nil {
		return fmt.Errorf("list recalls due for fee: %w", err)
	}

	var errs []error
	for _, recalled := range due {
		nextCharge := recalled.NextFeeChargeAt.Add(j.cfg.StorageFeeInterval)
		claimed, err := j.repo.ClaimStorageFeeCharge(ctx, recalled.ID, now, j.cfg.StorageFee, nextCharge)
		if err != nil {
			errs = append(errs, fmt.Errorf("charge storage fee for recall %s: %w", recalled.ID, err))
			continue
		}
		if !claimed {
			// Another sweep instance got here first.
			continue
		}

		feeCtx := j.logg.WithFields(ctx, map[string]any{
			"recalled_listing_id": recalled.ID.String(),
			"fee_amount":          j.cfg.StorageFee.String(),
			"charge_number":       recalled.FeeChargedCount + 1,
		})
		j.logg.Info(feeCtx, "storage fee charged")
		j.notifyMember(ctx, recalled.MemberID, enums.NotificationStorageFee, map[string]any{
			"fee_amount":          j.cfg.StorageFee.String(),
			"next_charge_at":      nextCharge,
			"collection_deadline": recalled.CollectionDeadline,
		})
	}
	return multierr.Combine(errs...)
}

func (j *storageFeeJob) abandonExpired(ctx context.Context) error {
	now := j.now()
	expired, err := j.repo.ListRecalledPastDeadline(ctx, now)
	if err != nil {
		return fmt.Errorf("list recalls past deadline: %w", err)
	}

	var errs []error
	for _, recalled := range expired {
		if err := j.lifecycle.Abandon(ctx, recalled.ID); err != nil {
			errs = append(errs, fmt.Errorf("abandon recall %s: %w", recalled.ID, err))
			continue
		}
		abandonCtx := j.logg.WithField(ctx, "recalled_listing_id", recalled.ID.String())
		j.logg.Info(abandonCtx, "uncollected item abandoned to store")
	}
	return multierr.Combine(errs...)
}

func (j *storageFeeJob) notifyMember(ctx context.Context, memberID uuid.UUID, template enums.NotificationTemplate, data map[string]any) {
	member, err := j.repo.FindMemberByID(ctx, memberID)
	if err != nil {
		j.logg.Error(ctx, "lookup storage fee recipient", err)
		return
	}
	if err := j.notifier.Notify(ctx, member.Email, template, data); err != nil {
		j.logg.Error(ctx, "dispatch storage fee notification", err)
	}
}
