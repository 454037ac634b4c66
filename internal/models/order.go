package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderExpired   OrderStatus = "EXPIRED"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID               int64           `json:"order_id" bun:"order_id,pk,autoincrement"`
	CustomerID            int64           `json:"customer_id" bun:"customer_id"`
	EventID               int64           `json:"event_id" bun:"event_id"`
	TicketTypeID          int64           `json:"ticket_type_id" bun:"ticket_type_id"`
	ParticipantName       string          `json:"participant_name" bun:"participant_name"`
	ParticipantEmail      string          `json:"participant_email" bun:"participant_email"`
	OriginalPrice         decimal.Decimal `json:"original_price" bun:"original_price,notnull"`
	HostDiscountPercent   decimal.Decimal `json:"host_discount_percent" bun:"host_discount_percent"`
	HostDiscountAmount    decimal.Decimal `json:"host_discount_amount" bun:"host_discount_amount"`
	VoucherID             *int64          `json:"voucher_id,omitempty" bun:"voucher_id,nullzero"`
	VoucherDiscountAmount decimal.Decimal `json:"voucher_discount_amount" bun:"voucher_discount_amount"`
	TotalAmount           decimal.Decimal `json:"total_amount" bun:"total_amount"`
	Status                OrderStatus     `json:"status" bun:"status"`
	CreatedAt             time.Time       `json:"created_at" bun:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at,omitempty" bun:"updated_at,nullzero"`

	Event *Event `json:"event,omitempty" bun:"rel:belongs-to,join:event_id=event_id"`
}

type CreateOrderRequest struct {
	EventID          int64  `json:"event_id"`
	TicketTypeID     *int64 `json:"ticket_type_id"`
	VoucherCode      string `json:"voucher_code,omitempty"`
	ParticipantName  string `json:"participant_name"`
	ParticipantEmail string `json:"participant_email"`
}

type OrderResponse struct {
	OrderID     int64           `json:"order_id"`
	EventID     int64           `json:"event_id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   int64     `json:"order_id"`
	Order     *Order    `json:"order"`
	Timestamp time.Time `json:"timestamp"`
}
