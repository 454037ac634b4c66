package db

import (
	"context"
	"database/sql"
	"errors"

	"ms-orders/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- ORDERS ----------------

// GetOrderByID → fetch one order with its event loaded, nil when absent
func (d *DB) GetOrderByID(id int64) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Relation("Event").
		Where("\"order\".order_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder → insert new order, the generated id lands on the model
func (d *DB) CreateOrder(order *models.Order) error {
	_, err := d.Bun.NewInsert().Model(order).Exec(context.Background())
	return err
}

// UpdateOrder → update allowed fields
func (d *DB) UpdateOrder(order *models.Order) error {
	_, err := d.Bun.NewUpdate().
		Model(order).
		Column("status", "voucher_id", "voucher_discount_amount", "total_amount", "updated_at").
		Where("order_id = ?", order.OrderID).
		Exec(context.Background())
	return err
}

// GetOrdersByCustomer → all orders for a customer, newest first
func (d *DB) GetOrdersByCustomer(customerID int64) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetPendingOrderForEvent → the customer's open order for an event, if any
func (d *DB) GetPendingOrderForEvent(customerID, eventID int64) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("customer_id = ?", customerID).
		Where("event_id = ?", eventID).
		Where("status = ?", models.OrderPending).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ---------------- LOOKUPS ----------------

// GetEventByID → event with its host loaded, nil when absent
func (d *DB) GetEventByID(id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Relation("Host").
		Where("event.event_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetTicketTypeByID → one ticket type, nil when absent
func (d *DB) GetTicketTypeByID(id int64) (*models.TicketType, error) {
	var ticketType models.TicketType
	err := d.Bun.NewSelect().
		Model(&ticketType).
		Where("ticket_type_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ticketType, nil
}

// GetCustomerByAccountID → the customer row behind an account, nil when absent
func (d *DB) GetCustomerByAccountID(accountID int64) (*models.Customer, error) {
	var customer models.Customer
	err := d.Bun.NewSelect().
		Model(&customer).
		Where("account_id = ?", accountID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
