package db

import (
	"context"
	"time"

	"ms-orders/internal/models"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Migrate creates the schema in dependency order. Tables that already exist
// are left alone.
func Migrate(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.Host)(nil),
		(*models.Event)(nil),
		(*models.TicketType)(nil),
		(*models.Customer)(nil),
		(*models.Voucher)(nil),
		(*models.Order)(nil),
		(*models.VoucherUsage)(nil),
	}
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Seed loads a small development dataset. Inserts are best effort so a
// reseeded database does not fail on duplicates.
func Seed(ctx context.Context, db *bun.DB) error {
	now := time.Now()

	host := &models.Host{
		HostID:              1,
		Name:                "Skyline Events",
		HostDiscountPercent: decimal.NewFromInt(20),
	}
	_, _ = db.NewInsert().Model(host).Exec(ctx)

	event := &models.Event{
		EventID:     1,
		HostID:      1,
		Title:       "Summer Fest 2026",
		Description: "Annual summer music festival.",
		StartDate:   now.AddDate(0, 1, 0),
		EndDate:     now.AddDate(0, 1, 3),
		CreatedAt:   now,
	}
	_, _ = db.NewInsert().Model(event).Exec(ctx)

	price := decimal.NewFromInt(300)
	ticketType := &models.TicketType{
		TicketTypeID:  1,
		EventID:       1,
		Name:          "General Admission",
		Price:         &price,
		TotalQuantity: 500,
	}
	_, _ = db.NewInsert().Model(ticketType).Exec(ctx)

	customer := &models.Customer{
		CustomerID: 1,
		AccountID:  1001,
		FullName:   "Alice Wonderland",
		Email:      "alice@example.com",
	}
	_, _ = db.NewInsert().Model(customer).Exec(ctx)

	voucher := &models.Voucher{
		VoucherID:      1,
		Code:           "SALE90",
		Description:    "90 off any registration",
		DiscountAmount: decimal.NewFromInt(90),
		Quantity:       100,
		Status:         models.VoucherActive,
		CreatedAt:      now,
		ExpiresAt:      now.AddDate(0, 2, 0),
	}
	_, _ = db.NewInsert().Model(voucher).Exec(ctx)

	return nil
}
