package transfers

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/transfer"

	pkgstripe "github.com/Tag-Take/tagandtake-backend-sub000/pkg/stripe"
)

// PaymentClient exposes the subset of Stripe operations payout orchestration needs.
type PaymentClient interface {
	CreateTransfer(ctx context.Context, destination string, amountCents int64, currency, sourceCharge string) (string, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
}

type stripeClientWrapper struct {
	client *pkgstripe.Client
}

// NewPaymentClient wraps the provided Stripe client so the orchestrator can be tested.
func NewPaymentClient(client *pkgstripe.Client) PaymentClient {
	if client == nil {
		return nil
	}
	return &stripeClientWrapper{client: client}
}

func (w *stripeClientWrapper) CreateTransfer(ctx context.Context, destination string, amountCents int64, currency, sourceCharge string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.client.CallTimeout())
	defer cancel()

	params := &stripe.TransferParams{
		Amount:            stripe.Int64(amountCents),
		Currency:          stripe.String(currency),
		Destination:       stripe.String(destination),
		SourceTransaction: stripe.String(sourceCharge),
	}
	params.Context = callCtx

	created, err := transfer.New(params)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (w *stripeClientWrapper) RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.client.CallTimeout())
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = callCtx
	return paymentintent.Get(id, params)
}
