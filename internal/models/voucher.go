package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type VoucherStatus string

const (
	VoucherActive   VoucherStatus = "ACTIVE"
	VoucherInactive VoucherStatus = "INACTIVE"
)

type Voucher struct {
	bun.BaseModel `bun:"table:vouchers"`

	VoucherID      int64           `json:"voucher_id" bun:"voucher_id,pk,autoincrement"`
	Code           string          `json:"code" bun:"code,notnull,unique"`
	Description    string          `json:"description" bun:"description"`
	DiscountAmount decimal.Decimal `json:"discount_amount" bun:"discount_amount,notnull"`
	Quantity       int             `json:"quantity" bun:"quantity"`
	Status         VoucherStatus   `json:"status" bun:"status"`
	CreatedAt      time.Time       `json:"created_at" bun:"created_at"`
	ExpiresAt      time.Time       `json:"expires_at" bun:"expires_at"`
}

// VoucherUsage is an immutable audit record of one redemption.
type VoucherUsage struct {
	bun.BaseModel `bun:"table:voucher_usages"`

	UsageID         int64           `json:"usage_id" bun:"usage_id,pk,autoincrement"`
	VoucherID       int64           `json:"voucher_id" bun:"voucher_id,notnull"`
	OrderID         int64           `json:"order_id" bun:"order_id,notnull"`
	DiscountApplied decimal.Decimal `json:"discount_applied" bun:"discount_applied,notnull"`
	UsedAt          time.Time       `json:"used_at" bun:"used_at"`
}
