package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func defaultEngine() *Engine {
	return NewEngine(dec("0.10"))
}

func TestQuote_HostAndVoucherDiscountsWithVAT(t *testing.T) {
	q, err := defaultEngine().Quote(decPtr("300"), dec("20"), dec("90"))

	assert.NoError(t, err)
	assert.True(t, q.HostDiscountAmount.Equal(dec("60")), "host discount: %s", q.HostDiscountAmount)
	assert.True(t, q.VoucherDiscountAmount.Equal(dec("90")))
	assert.True(t, q.NetBeforeVAT.Equal(dec("150")))
	assert.Equal(t, "165.00", q.TotalAmount.StringFixed(2))
}

func TestQuote_NetFlooredAtZero(t *testing.T) {
	q, err := defaultEngine().Quote(decPtr("100"), dec("20"), dec("90"))

	assert.NoError(t, err)
	assert.True(t, q.NetBeforeVAT.IsZero())
	assert.True(t, q.TotalAmount.IsZero())
}

func TestQuote_FreeTicket(t *testing.T) {
	q, err := defaultEngine().Quote(decPtr("0"), dec("0"), decimal.Zero)

	assert.NoError(t, err)
	assert.True(t, q.HostDiscountAmount.IsZero())
	assert.True(t, q.VoucherDiscountAmount.IsZero())
	assert.True(t, q.TotalAmount.IsZero())
}

func TestQuote_NilPrice(t *testing.T) {
	q, err := defaultEngine().Quote(nil, dec("10"), decimal.Zero)

	assert.Nil(t, q)
	assert.ErrorIs(t, err, ErrNilPrice)
}

func TestQuote_NegativePrice(t *testing.T) {
	q, err := defaultEngine().Quote(decPtr("-1"), dec("0"), decimal.Zero)

	assert.Nil(t, q)
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestQuote_PercentOutOfRange(t *testing.T) {
	for _, pct := range []string{"-5", "150"} {
		q, err := defaultEngine().Quote(decPtr("100"), dec(pct), decimal.Zero)
		assert.Nil(t, q)
		assert.ErrorIs(t, err, ErrInvalidPercent)
	}
}

func TestQuote_VoucherCappedAtPrice(t *testing.T) {
	q, err := defaultEngine().Quote(decPtr("100"), dec("0"), dec("250"))

	assert.NoError(t, err)
	assert.True(t, q.VoucherDiscountAmount.Equal(dec("100")))
	assert.True(t, q.TotalAmount.IsZero())
}

func TestQuote_NegativeVoucherTreatedAsZero(t *testing.T) {
	q, err := defaultEngine().Quote(decPtr("100"), dec("0"), dec("-10"))

	assert.NoError(t, err)
	assert.True(t, q.VoucherDiscountAmount.IsZero())
	assert.Equal(t, "110.00", q.TotalAmount.StringFixed(2))
}

func TestQuote_RoundsToTwoDecimals(t *testing.T) {
	q, err := defaultEngine().Quote(decPtr("99.99"), dec("0"), decimal.Zero)

	assert.NoError(t, err)
	assert.Equal(t, "109.99", q.TotalAmount.StringFixed(2))
}

func TestQuote_FullPercentDiscount(t *testing.T) {
	q, err := defaultEngine().Quote(decPtr("100"), dec("100"), decimal.Zero)

	assert.NoError(t, err)
	assert.True(t, q.HostDiscountAmount.Equal(dec("100")))
	assert.True(t, q.TotalAmount.IsZero())
}

func TestQuote_ConfigurableVATRate(t *testing.T) {
	q, err := NewEngine(dec("0.08")).Quote(decPtr("100"), dec("0"), decimal.Zero)

	assert.NoError(t, err)
	assert.Equal(t, "108.00", q.TotalAmount.StringFixed(2))
}
