package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ms-orders/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// GetVoucherByCode → fetch one voucher by its code, nil when absent
func (d *DB) GetVoucherByCode(code string) (*models.Voucher, error) {
	var voucher models.Voucher
	err := d.Bun.NewSelect().
		Model(&voucher).
		Where("code = ?", code).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

// GetVoucherByID → fetch one voucher by its ID, nil when absent
func (d *DB) GetVoucherByID(id int64) (*models.Voucher, error) {
	var voucher models.Voucher
	err := d.Bun.NewSelect().
		Model(&voucher).
		Where("voucher_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

// GetAvailableVoucherByCode → ACTIVE voucher whose validity window contains
// now. Quantity is deliberately not part of the filter: an exhausted voucher
// is still "found" so the caller can distinguish out-of-stock from invalid.
func (d *DB) GetAvailableVoucherByCode(code string, now time.Time) (*models.Voucher, error) {
	var voucher models.Voucher
	err := d.Bun.NewSelect().
		Model(&voucher).
		Where("code = ?", code).
		Where("status = ?", models.VoucherActive).
		Where("created_at <= ?", now).
		Where("expires_at >= ?", now).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

// ListAvailableVouchers → all ACTIVE vouchers inside their validity window
// with stock left
func (d *DB) ListAvailableVouchers(now time.Time) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	err := d.Bun.NewSelect().
		Model(&vouchers).
		Where("status = ?", models.VoucherActive).
		Where("created_at <= ?", now).
		Where("expires_at >= ?", now).
		Where("quantity > 0").
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return vouchers, nil
}

// CreateVoucher → insert new voucher
func (d *DB) CreateVoucher(voucher *models.Voucher) error {
	_, err := d.Bun.NewInsert().Model(voucher).Exec(context.Background())
	return err
}

// UpdateVoucher → update mutable fields
func (d *DB) UpdateVoucher(voucher *models.Voucher) error {
	_, err := d.Bun.NewUpdate().
		Model(voucher).
		Column("description", "discount_amount", "quantity", "status", "expires_at").
		Where("voucher_id = ?", voucher.VoucherID).
		Exec(context.Background())
	return err
}

// DecrementQuantity → take one unit of stock. The WHERE clause makes the
// decrement conditional so concurrent redemptions serialize in storage and
// quantity never goes below zero. Returns false when no stock was left.
func (d *DB) DecrementQuantity(id int64) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Voucher)(nil)).
		Set("quantity = quantity - 1").
		Where("voucher_id = ?", id).
		Where("quantity > 0").
		Exec(context.Background())
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// CreateUsage → insert an immutable redemption record
func (d *DB) CreateUsage(usage *models.VoucherUsage) error {
	_, err := d.Bun.NewInsert().Model(usage).Exec(context.Background())
	return err
}

// ListUsagesByVoucher → redemption history, newest first
func (d *DB) ListUsagesByVoucher(voucherID int64) ([]models.VoucherUsage, error) {
	var usages []models.VoucherUsage
	err := d.Bun.NewSelect().
		Model(&usages).
		Where("voucher_id = ?", voucherID).
		Order("used_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return usages, nil
}
