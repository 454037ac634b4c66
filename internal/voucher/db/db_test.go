package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-orders/internal/models"
	"ms-orders/internal/voucher/db"

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

	_, err = bunDB.NewCreateTable().Model((*models.Voucher)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create voucher table: %v", err)
	}

	_, err = bunDB.NewCreateTable().Model((*models.VoucherUsage)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create voucher usage table: %v", err)
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func insertVoucher(t *testing.T, bunDB *bun.DB, v *models.Voucher) {
	_, err := bunDB.NewInsert().Model(v).Exec(context.Background())
	assert.NoError(t, err)
}

func TestGetAvailableVoucherByCode(t *testing.T) {
	voucherDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	insertVoucher(t, bunDB, &models.Voucher{
		Code:           "SALE50",
		DiscountAmount: dec("50000"),
		Quantity:       10,
		Status:         models.VoucherActive,
		CreatedAt:      now.Add(-24 * time.Hour),
		ExpiresAt:      now.Add(24 * time.Hour),
	})

	// Available voucher found
	v, err := voucherDB.GetAvailableVoucherByCode("SALE50", now)
	assert.NoError(t, err)
	assert.NotNil(t, v)
	assert.Equal(t, "SALE50", v.Code)

	// Unknown code returns nil without error
	v, err = voucherDB.GetAvailableVoucherByCode("NOPE", now)
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestGetAvailableVoucherByCode_ExpiredAndInactive(t *testing.T) {
	voucherDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	insertVoucher(t, bunDB, &models.Voucher{
		Code:           "EXPIRED",
		DiscountAmount: dec("10"),
		Quantity:       10,
		Status:         models.VoucherActive,
		CreatedAt:      now.Add(-48 * time.Hour),
		ExpiresAt:      now.Add(-24 * time.Hour),
	})
	insertVoucher(t, bunDB, &models.Voucher{
		Code:           "DISABLED",
		DiscountAmount: dec("10"),
		Quantity:       10,
		Status:         models.VoucherInactive,
		CreatedAt:      now.Add(-24 * time.Hour),
		ExpiresAt:      now.Add(24 * time.Hour),
	})

	v, err := voucherDB.GetAvailableVoucherByCode("EXPIRED", now)
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = voucherDB.GetAvailableVoucherByCode("DISABLED", now)
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestGetAvailableVoucherByCode_ExhaustedStillFound(t *testing.T) {
	voucherDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	// Quantity is not part of the availability filter; the service decides
	// between invalid and out-of-stock.
	insertVoucher(t, bunDB, &models.Voucher{
		Code:           "EMPTY",
		DiscountAmount: dec("10"),
		Quantity:       0,
		Status:         models.VoucherActive,
		CreatedAt:      now.Add(-24 * time.Hour),
		ExpiresAt:      now.Add(24 * time.Hour),
	})

	v, err := voucherDB.GetAvailableVoucherByCode("EMPTY", now)
	assert.NoError(t, err)
	assert.NotNil(t, v)
	assert.Equal(t, 0, v.Quantity)
}

func TestDecrementQuantity_StopsAtZero(t *testing.T) {
	voucherDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	v := &models.Voucher{
		Code:           "LAST",
		DiscountAmount: dec("10"),
		Quantity:       1,
		Status:         models.VoucherActive,
		CreatedAt:      now.Add(-24 * time.Hour),
		ExpiresAt:      now.Add(24 * time.Hour),
	}
	insertVoucher(t, bunDB, v)

	// First decrement takes the last unit
	taken, err := voucherDB.DecrementQuantity(v.VoucherID)
	assert.NoError(t, err)
	assert.True(t, taken)

	// Second decrement finds no stock and changes nothing
	taken, err = voucherDB.DecrementQuantity(v.VoucherID)
	assert.NoError(t, err)
	assert.False(t, taken)

	stored, err := voucherDB.GetVoucherByID(v.VoucherID)
	assert.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)
}

func TestListAvailableVouchers(t *testing.T) {
	voucherDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	insertVoucher(t, bunDB, &models.Voucher{
		Code: "GOOD", DiscountAmount: dec("10"), Quantity: 5,
		Status: models.VoucherActive, CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour),
	})
	insertVoucher(t, bunDB, &models.Voucher{
		Code: "EMPTY", DiscountAmount: dec("10"), Quantity: 0,
		Status: models.VoucherActive, CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour),
	})
	insertVoucher(t, bunDB, &models.Voucher{
		Code: "OLD", DiscountAmount: dec("10"), Quantity: 5,
		Status: models.VoucherActive, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	})

	vouchers, err := voucherDB.ListAvailableVouchers(now)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(vouchers))
	assert.Equal(t, "GOOD", vouchers[0].Code)
}

func TestCreateUsageAndListByVoucher(t *testing.T) {
	voucherDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	usage := &models.VoucherUsage{
		VoucherID:       7,
		OrderID:         16,
		DiscountApplied: dec("50000"),
		UsedAt:          now,
	}
	assert.NoError(t, voucherDB.CreateUsage(usage))
	assert.NotZero(t, usage.UsageID)

	usages, err := voucherDB.ListUsagesByVoucher(7)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(usages))
	assert.Equal(t, int64(16), usages[0].OrderID)
	assert.True(t, usages[0].DiscountApplied.Equal(dec("50000")))
}

func TestUpdateVoucher(t *testing.T) {
	voucherDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	v := &models.Voucher{
		Code: "SALE", DiscountAmount: dec("10"), Quantity: 5,
		Status: models.VoucherActive, CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour),
	}
	insertVoucher(t, bunDB, v)

	v.Status = models.VoucherInactive
	v.Quantity = 3
	assert.NoError(t, voucherDB.UpdateVoucher(v))

	stored, err := voucherDB.GetVoucherByID(v.VoucherID)
	assert.NoError(t, err)
	assert.Equal(t, models.VoucherInactive, stored.Status)
	assert.Equal(t, 3, stored.Quantity)
}
