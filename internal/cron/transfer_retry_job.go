package cron

import (
	"context"
	"fmt"

	"github.com/Tag-Take/tagandtake-backend-sub000/internal/transfers"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
)

// TransferRetryJobParams configure the pending payout retry sweep.
type TransferRetryJobParams struct {
	Logger    *logger.Logger
	Transfers transfers.Orchestrator
}

// NewTransferRetryJob builds the job that replays queued seller and store
// payouts whose provider transfers previously failed.
func NewTransferRetryJob(params TransferRetryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Transfers == nil {
		return nil, fmt.Errorf("transfers orchestrator required")
	}
	return &transferRetryJob{
		logg:      params.Logger,
		transfers: params.Transfers,
	}, nil
}

type transferRetryJob struct {
	logg      *logger.Logger
	transfers transfers.Orchestrator
}

func (j *transferRetryJob) Name() string { return "transfer-retry" }

func (j *transferRetryJob) Run(ctx context.Context) error {
	return j.transfers.RetryPending(ctx)
}
