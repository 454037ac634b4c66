package voucher

import (
	"errors"
	"fmt"
	"time"

	"ms-orders/internal/logger"
	"ms-orders/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrVoucherInvalid    = errors.New("voucher invalid or expired")
	ErrVoucherOutOfStock = errors.New("voucher out of stock")
	ErrVoucherNotFound   = errors.New("voucher not found")
)

type DBLayer interface {
	GetVoucherByCode(code string) (*models.Voucher, error)
	GetVoucherByID(id int64) (*models.Voucher, error)
	GetAvailableVoucherByCode(code string, now time.Time) (*models.Voucher, error)
	ListAvailableVouchers(now time.Time) ([]models.Voucher, error)
	CreateVoucher(voucher *models.Voucher) error
	UpdateVoucher(voucher *models.Voucher) error
	DecrementQuantity(id int64) (bool, error)
	CreateUsage(usage *models.VoucherUsage) error
	ListUsagesByVoucher(voucherID int64) ([]models.VoucherUsage, error)
}

type VoucherService struct {
	DB     DBLayer
	Logger *logger.Logger
	Now    func() time.Time
}

func NewVoucherService(db DBLayer, log *logger.Logger) *VoucherService {
	return &VoucherService{DB: db, Logger: log, Now: time.Now}
}

// ApplyVoucherToOrder redeems one unit of the voucher against the order.
// Validation happens before any mutation: an unknown, inactive or expired
// code is invalid; a known-but-exhausted one is out of stock. The discount
// is capped at the order's original price. On success the order carries the
// voucher reference and discount, and an immutable usage record is written.
func (s *VoucherService) ApplyVoucherToOrder(code string, order *models.Order) (*models.VoucherUsage, error) {
	voucher, err := s.DB.GetAvailableVoucherByCode(code, s.Now())
	if err != nil {
		return nil, fmt.Errorf("voucher lookup failed: %w", err)
	}
	if voucher == nil {
		return nil, ErrVoucherInvalid
	}
	if voucher.Quantity <= 0 {
		return nil, ErrVoucherOutOfStock
	}

	discount := voucher.DiscountAmount
	if discount.GreaterThan(order.OriginalPrice) {
		discount = order.OriginalPrice
	}

	// Storage serializes concurrent redemptions: the loser of the last
	// unit sees no row updated.
	taken, err := s.DB.DecrementQuantity(voucher.VoucherID)
	if err != nil {
		return nil, fmt.Errorf("voucher decrement failed: %w", err)
	}
	if !taken {
		return nil, ErrVoucherOutOfStock
	}

	order.VoucherID = &voucher.VoucherID
	order.VoucherDiscountAmount = discount

	usage := &models.VoucherUsage{
		VoucherID:       voucher.VoucherID,
		OrderID:         order.OrderID,
		DiscountApplied: discount,
		UsedAt:          s.Now(),
	}
	if err := s.DB.CreateUsage(usage); err != nil {
		return nil, fmt.Errorf("voucher usage record failed: %w", err)
	}

	if s.Logger != nil {
		s.Logger.LogVoucher("REDEEM", code, fmt.Sprintf("applied %s to order %d", discount.String(), order.OrderID))
	}
	return usage, nil
}

// CalculateVoucherDiscount previews the capped discount a code would give
// against a price. Zero when the voucher is unavailable. Never mutates.
func (s *VoucherService) CalculateVoucherDiscount(code string, price decimal.Decimal) decimal.Decimal {
	voucher, err := s.DB.GetAvailableVoucherByCode(code, s.Now())
	if err != nil || voucher == nil || voucher.Quantity <= 0 {
		return decimal.Zero
	}
	if voucher.DiscountAmount.GreaterThan(price) {
		return price
	}
	return voucher.DiscountAmount
}

func (s *VoucherService) IsVoucherAvailable(code string) bool {
	voucher, err := s.DB.GetAvailableVoucherByCode(code, s.Now())
	return err == nil && voucher != nil && voucher.Quantity > 0
}

func (s *VoucherService) GetAvailableVouchers() ([]models.Voucher, error) {
	return s.DB.ListAvailableVouchers(s.Now())
}

func (s *VoucherService) GetVoucherByCode(code string) (*models.Voucher, error) {
	voucher, err := s.DB.GetVoucherByCode(code)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, ErrVoucherNotFound
	}
	return voucher, nil
}

func (s *VoucherService) CreateVoucher(voucher *models.Voucher) error {
	if voucher.Status == "" {
		voucher.Status = models.VoucherActive
	}
	if voucher.CreatedAt.IsZero() {
		voucher.CreatedAt = s.Now()
	}
	return s.DB.CreateVoucher(voucher)
}

// DisableVoucher marks the voucher INACTIVE. Reports whether anything was
// disabled; an unknown id is not an error.
func (s *VoucherService) DisableVoucher(id int64) bool {
	voucher, err := s.DB.GetVoucherByID(id)
	if err != nil || voucher == nil {
		return false
	}
	voucher.Status = models.VoucherInactive
	if err := s.DB.UpdateVoucher(voucher); err != nil {
		if s.Logger != nil {
			s.Logger.Error("VOUCHER", fmt.Sprintf("disable voucher %d: %v", id, err))
		}
		return false
	}
	return true
}

func (s *VoucherService) UpdateVoucherQuantity(id int64, quantity int) error {
	voucher, err := s.DB.GetVoucherByID(id)
	if err != nil {
		return err
	}
	if voucher == nil {
		return ErrVoucherNotFound
	}
	if quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	voucher.Quantity = quantity
	return s.DB.UpdateVoucher(voucher)
}

func (s *VoucherService) GetVoucherUsageHistory(voucherID int64) ([]models.VoucherUsage, error) {
	return s.DB.ListUsagesByVoucher(voucherID)
}
