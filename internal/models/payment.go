package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentCancelled PaymentStatus = "CANCELLED"
	PaymentExpired   PaymentStatus = "EXPIRED"
)

// Payment rows live on plain database/sql, not bun, so the struct carries
// no bun tags.
type Payment struct {
	PaymentID     int64           `json:"payment_id"`
	OrderID       int64           `json:"order_id"`
	Status        PaymentStatus   `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	OrderCode     int64           `json:"order_code"`
	PaymentLinkID string          `json:"payment_link_id"`
	CheckoutURL   string          `json:"checkout_url"`
	QRCode        string          `json:"qr_code,omitempty"`
	CreatedDate   time.Time       `json:"created_date"`
	ExpiredAt     time.Time       `json:"expired_at"`
	UpdatedDate   time.Time       `json:"updated_date,omitempty"`
}

type PaymentEvent struct {
	Type      string    `json:"type"`
	PaymentID int64     `json:"payment_id"`
	OrderID   int64     `json:"order_id"`
	Payment   *Payment  `json:"payment"`
	Timestamp time.Time `json:"timestamp"`
}
