package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-orders/internal/models"
	"ms-orders/internal/order/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	// Connect to an in-memory SQLite DB for testing
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.Order)(nil),
		(*models.Host)(nil),
		(*models.Event)(nil),
		(*models.TicketType)(nil),
		(*models.Customer)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).Exec(context.Background()); err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestCreateAndGetOrder(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	newOrder := &models.Order{
		CustomerID:    5,
		EventID:       10,
		TicketTypeID:  3,
		OriginalPrice: dec("300"),
		TotalAmount:   dec("264.00"),
		Status:        models.OrderPending,
		CreatedAt:     time.Now(),
	}

	err := orderDB.CreateOrder(newOrder)
	assert.NoError(t, err)
	assert.NotZero(t, newOrder.OrderID, "insert should fill the generated id")

	stored, err := orderDB.GetOrderByID(newOrder.OrderID)
	assert.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Equal(t, models.OrderPending, stored.Status)
	assert.True(t, stored.TotalAmount.Equal(dec("264.00")))

	// Unknown id returns nil without error
	stored, err = orderDB.GetOrderByID(999999)
	assert.NoError(t, err)
	assert.Nil(t, stored)
}

func TestUpdateOrder(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	o := &models.Order{
		CustomerID:    5,
		EventID:       10,
		TicketTypeID:  3,
		OriginalPrice: dec("300"),
		TotalAmount:   dec("330.00"),
		Status:        models.OrderPending,
		CreatedAt:     time.Now(),
	}
	assert.NoError(t, orderDB.CreateOrder(o))

	voucherID := int64(7)
	o.Status = models.OrderPaid
	o.VoucherID = &voucherID
	o.VoucherDiscountAmount = dec("90")
	o.TotalAmount = dec("231.00")
	o.UpdatedAt = time.Now()
	assert.NoError(t, orderDB.UpdateOrder(o))

	stored, err := orderDB.GetOrderByID(o.OrderID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPaid, stored.Status)
	assert.NotNil(t, stored.VoucherID)
	assert.Equal(t, int64(7), *stored.VoucherID)
	assert.True(t, stored.TotalAmount.Equal(dec("231.00")))
}

func TestGetPendingOrderForEvent(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	pending := &models.Order{
		CustomerID: 5, EventID: 10, TicketTypeID: 3,
		OriginalPrice: dec("100"), TotalAmount: dec("110.00"),
		Status: models.OrderPending, CreatedAt: time.Now(),
	}
	paid := &models.Order{
		CustomerID: 5, EventID: 11, TicketTypeID: 3,
		OriginalPrice: dec("100"), TotalAmount: dec("110.00"),
		Status: models.OrderPaid, CreatedAt: time.Now(),
	}
	assert.NoError(t, orderDB.CreateOrder(pending))
	assert.NoError(t, orderDB.CreateOrder(paid))

	found, err := orderDB.GetPendingOrderForEvent(5, 10)
	assert.NoError(t, err)
	assert.NotNil(t, found)
	assert.Equal(t, pending.OrderID, found.OrderID)

	// A paid order is not an open registration
	found, err = orderDB.GetPendingOrderForEvent(5, 11)
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestGetOrdersByCustomer(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	for i := 0; i < 2; i++ {
		assert.NoError(t, orderDB.CreateOrder(&models.Order{
			CustomerID: 5, EventID: int64(10 + i), TicketTypeID: 3,
			OriginalPrice: dec("100"), TotalAmount: dec("110.00"),
			Status: models.OrderPending, CreatedAt: time.Now(),
		}))
	}
	assert.NoError(t, orderDB.CreateOrder(&models.Order{
		CustomerID: 6, EventID: 10, TicketTypeID: 3,
		OriginalPrice: dec("100"), TotalAmount: dec("110.00"),
		Status: models.OrderPending, CreatedAt: time.Now(),
	}))

	orders, err := orderDB.GetOrdersByCustomer(5)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(orders))
}

func TestGetEventByID_LoadsHost(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	host := &models.Host{Name: "Acme Events", HostDiscountPercent: dec("20")}
	_, err := bunDB.NewInsert().Model(host).Exec(context.Background())
	assert.NoError(t, err)

	event := &models.Event{HostID: host.HostID, Title: "Go Conference", CreatedAt: time.Now()}
	_, err = bunDB.NewInsert().Model(event).Exec(context.Background())
	assert.NoError(t, err)

	stored, err := orderDB.GetEventByID(event.EventID)
	assert.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Equal(t, "Go Conference", stored.Title)
	assert.NotNil(t, stored.Host)
	assert.True(t, stored.Host.HostDiscountPercent.Equal(dec("20")))

	stored, err = orderDB.GetEventByID(999)
	assert.NoError(t, err)
	assert.Nil(t, stored)
}

func TestGetTicketTypeByID(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	price := dec("300")
	tt := &models.TicketType{EventID: 10, Name: "Standard", Price: &price, TotalQuantity: 100}
	_, err := bunDB.NewInsert().Model(tt).Exec(context.Background())
	assert.NoError(t, err)

	stored, err := orderDB.GetTicketTypeByID(tt.TicketTypeID)
	assert.NoError(t, err)
	assert.NotNil(t, stored)
	assert.NotNil(t, stored.Price)
	assert.True(t, stored.Price.Equal(dec("300")))

	stored, err = orderDB.GetTicketTypeByID(999)
	assert.NoError(t, err)
	assert.Nil(t, stored)
}

func TestGetCustomerByAccountID(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	c := &models.Customer{AccountID: 50, FullName: "Jane Doe", Email: "jane@example.com"}
	_, err := bunDB.NewInsert().Model(c).Exec(context.Background())
	assert.NoError(t, err)

	stored, err := orderDB.GetCustomerByAccountID(50)
	assert.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Equal(t, "Jane Doe", stored.FullName)

	stored, err = orderDB.GetCustomerByAccountID(99)
	assert.NoError(t, err)
	assert.Nil(t, stored)
}
