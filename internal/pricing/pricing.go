package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNilPrice       = errors.New("ticket type has no price configured")
	ErrNegativePrice  = errors.New("ticket price cannot be negative")
	ErrInvalidPercent = errors.New("host discount percent must be between 0 and 100")
)

var hundred = decimal.NewFromInt(100)

// Engine computes order totals. It is pure: no storage, no clock.
type Engine struct {
	vatRate decimal.Decimal
}

func NewEngine(vatRate decimal.Decimal) *Engine {
	return &Engine{vatRate: vatRate}
}

// Quote is the full price breakdown for one ticket.
type Quote struct {
	OriginalPrice         decimal.Decimal
	HostDiscountPercent   decimal.Decimal
	HostDiscountAmount    decimal.Decimal
	VoucherDiscountAmount decimal.Decimal
	NetBeforeVAT          decimal.Decimal
	TotalAmount           decimal.Decimal
}

// Quote prices a ticket: host percentage discount first, then the flat
// voucher discount, floored at zero, then VAT, rounded to 2 decimals.
// Discount amounts are capped at the price they apply to so none of the
// recorded amounts can go negative.
func (e *Engine) Quote(price *decimal.Decimal, hostPercent, voucherDiscount decimal.Decimal) (*Quote, error) {
	if price == nil {
		return nil, ErrNilPrice
	}
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if hostPercent.IsNegative() || hostPercent.GreaterThan(hundred) {
		return nil, ErrInvalidPercent
	}

	p := *price

	hostAmount := p.Mul(hostPercent).Div(hundred)
	if hostAmount.GreaterThan(p) {
		hostAmount = p
	}

	if voucherDiscount.IsNegative() {
		voucherDiscount = decimal.Zero
	}
	if voucherDiscount.GreaterThan(p) {
		voucherDiscount = p
	}

	net := p.Sub(hostAmount).Sub(voucherDiscount)
	if net.IsNegative() {
		net = decimal.Zero
	}

	total := net.Mul(decimal.NewFromInt(1).Add(e.vatRate)).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return &Quote{
		OriginalPrice:         p,
		HostDiscountPercent:   hostPercent,
		HostDiscountAmount:    hostAmount,
		VoucherDiscountAmount: voucherDiscount,
		NetBeforeVAT:          net,
		TotalAmount:           total,
	}, nil
}
