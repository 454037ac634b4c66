package storage

import (
	"errors"

	"ms-orders/internal/models"
)

// ErrPaymentNotFound is returned by lookups when no payment row matches.
var ErrPaymentNotFound = errors.New("payment not found")

type Store interface {
	// Payment operations
	SavePayment(payment *models.Payment) error
	GetPayment(id int64) (*models.Payment, error)
	UpdatePayment(payment *models.Payment) error
	ListPayments(orderID int64, limit, offset int) ([]*models.Payment, error)
	GetPaymentByOrderID(orderID int64) (*models.Payment, error)

	// Health and maintenance
	Close() error
	HealthCheck() error
}
