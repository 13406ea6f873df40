package pricing

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/Tag-Take/tagandtake-backend-sub000/pkg/errors"
)

// Engine computes the monetary split for a listing: what the buyer pays,
// what the platform keeps, what the store earns and what the seller takes
// home. All arithmetic is exact decimal; results are rounded half-up to two
// places, which for the non-negative amounts handled here is what
// decimal.Round does.
type Engine struct {
	cfg Config
}

// Config carries the platform-wide fee parameters. Store commission
// percentages are per-listing inputs, snapshotted at listing creation.
type Config struct {
	PlatformCommissionRate decimal.Decimal
	PlatformFlatFee        decimal.Decimal
}

// Breakdown is the full split for one item price at one commission rate.
// Invariants: SellerEarnings + StoreCommission == item price, and
// item price + TransactionFee == ListingPrice, both to the cent.
type Breakdown struct {
	ItemPrice       decimal.Decimal `json:"item_price"`
	TransactionFee  decimal.Decimal `json:"transaction_fee"`
	ListingPrice    decimal.Decimal `json:"listing_price"`
	StoreCommission decimal.Decimal `json:"store_commission"`
	SellerEarnings  decimal.Decimal `json:"seller_earnings"`
}

var oneHundred = decimal.NewFromInt(100)

// NewEngine builds a pricing engine from the supplied fee parameters.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.PlatformCommissionRate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform commission rate must be non-negative")
	}
	if cfg.PlatformFlatFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform flat fee must be non-negative")
	}
	return &Engine{cfg: cfg}, nil
}

// TransactionFee returns the platform's cut on top of the item price.
func (e *Engine) TransactionFee(itemPrice decimal.Decimal) decimal.Decimal {
	return itemPrice.Mul(e.cfg.PlatformCommissionRate).Add(e.cfg.PlatformFlatFee).Round(2)
}

// ListingPrice is what the buyer pays: item price plus transaction fee.
func (e *Engine) ListingPrice(itemPrice decimal.Decimal) decimal.Decimal {
	return itemPrice.Add(e.TransactionFee(itemPrice))
}

// StoreCommission returns the host store's share of the item price, where
// commissionPct is a percentage in [0,100].
func (e *Engine) StoreCommission(itemPrice, commissionPct decimal.Decimal) decimal.Decimal {
	return itemPrice.Mul(commissionPct.Div(oneHundred)).Round(2)
}

// SellerEarnings is the item price less the store commission. Computed by
// subtraction so earnings plus commission always reconstruct the price
// exactly.
func (e *Engine) SellerEarnings(itemPrice, commissionPct decimal.Decimal) decimal.Decimal {
	return itemPrice.Sub(e.StoreCommission(itemPrice, commissionPct))
}

// Split computes the complete breakdown for one listing.
func (e *Engine) Split(itemPrice, commissionPct decimal.Decimal) (Breakdown, error) {
	if itemPrice.IsNegative() {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "item price must be non-negative")
	}
	if commissionPct.IsNegative() || commissionPct.GreaterThan(oneHundred) {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "commission percentage must be between 0 and 100")
	}
	commission := e.StoreCommission(itemPrice, commissionPct)
	return Breakdown{
		ItemPrice:       itemPrice,
		TransactionFee:  e.TransactionFee(itemPrice),
		ListingPrice:    e.ListingPrice(itemPrice),
		StoreCommission: commission,
		SellerEarnings:  itemPrice.Sub(commission),
	}, nil
}

// ParseAmount converts raw monetary input into an exact decimal, rejecting
// anything non-numeric.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount")
	}
	return amount, nil
}
