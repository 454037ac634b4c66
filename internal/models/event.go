package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Host struct {
	bun.BaseModel `bun:"table:hosts"`

	HostID              int64           `json:"host_id" bun:"host_id,pk,autoincrement"`
	Name                string          `json:"name" bun:"name,notnull"`
	HostDiscountPercent decimal.Decimal `json:"host_discount_percent" bun:"host_discount_percent"`
}

type Event struct {
	bun.BaseModel `bun:"table:events"`

	EventID     int64     `json:"event_id" bun:"event_id,pk,autoincrement"`
	HostID      int64     `json:"host_id" bun:"host_id"`
	Title       string    `json:"title" bun:"title,notnull"`
	Description string    `json:"description" bun:"description"`
	StartDate   time.Time `json:"start_date" bun:"start_date"`
	EndDate     time.Time `json:"end_date" bun:"end_date"`
	CreatedAt   time.Time `json:"created_at" bun:"created_at"`

	Host *Host `json:"host,omitempty" bun:"rel:belongs-to,join:host_id=host_id"`
}

// Price is a pointer so a misconfigured ticket type (no price set) is
// distinguishable from a free one.
type TicketType struct {
	bun.BaseModel `bun:"table:ticket_types"`

	TicketTypeID  int64            `json:"ticket_type_id" bun:"ticket_type_id,pk,autoincrement"`
	EventID       int64            `json:"event_id" bun:"event_id"`
	Name          string           `json:"name" bun:"name,notnull"`
	Price         *decimal.Decimal `json:"price" bun:"price"`
	TotalQuantity int              `json:"total_quantity" bun:"total_quantity"`
}

type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	CustomerID int64  `json:"customer_id" bun:"customer_id,pk,autoincrement"`
	AccountID  int64  `json:"account_id" bun:"account_id"`
	FullName   string `json:"full_name" bun:"full_name"`
	Email      string `json:"email" bun:"email"`
}
