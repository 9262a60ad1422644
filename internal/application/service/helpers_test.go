package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/sangkips/tailorbook-api/internal/domain/reconciliation"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/lock"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tailorbook-api/internal/testutil"
	"github.com/sangkips/tailorbook-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	ctx       context.Context
	shopID    uuid.UUID
	customers *CustomerService
	taxes     *TaxService
	bills     *BillService
	receipts  *ReceiptService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	ctx, shopID := testutil.ShopContext()

	billRepo := repository.NewBillRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	seqRepo := repository.NewSequenceRepository(db)
	tx := repository.NewTransactor(db)
	locker := lock.NewMemoryLocker(5 * time.Second)
	reconciler := reconciliation.New(reconciliation.DefaultPolicy())

	taxes := NewTaxService(repository.NewTaxRepository(db))
	return &fixture{
		db:        db,
		ctx:       ctx,
		shopID:    shopID,
		customers: NewCustomerService(customerRepo),
		taxes:     taxes,
		bills:     NewBillService(billRepo, receiptRepo, customerRepo, seqRepo, tx, locker, reconciler),
		receipts:  NewReceiptService(billRepo, receiptRepo, seqRepo, taxes, tx, locker, reconciler),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got.StringFixed(2))
}

var paymentDay = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// createBill makes a single-line bill worth total
func (f *fixture) createBill(t *testing.T, total string) *entity.Bill {
	t.Helper()
	bill, err := f.bills.CreateBill(f.ctx, &CreateBillInput{
		Name:      "Ravi",
		Category:  "suit",
		OrderDate: paymentDay,
		Items:     []BillItemInput{{Name: "Stitching", Quantity: 1, Rate: dec(total)}},
	})
	require.NoError(t, err)
	return bill
}

func (f *fixture) createTax(t *testing.T, name string, taxType enum.TaxType, pct string) *entity.Tax {
	t.Helper()
	tax, err := f.taxes.CreateTax(f.ctx, &TaxInput{Name: name, TaxType: taxType, TaxPercentage: dec(pct)})
	require.NoError(t, err)
	return tax
}

func (f *fixture) pay(billNumber int64, amount string, offsetDays int, taxIDs ...uuid.UUID) (*ReceiptResult, error) {
	return f.receipts.CreateReceipt(f.ctx, &CreateReceiptInput{
		BillNumber:    billNumber,
		Amount:        dec(amount),
		TaxIDs:        taxIDs,
		PaymentMethod: enum.PaymentMethodCash,
		PaymentDate:   paymentDay.AddDate(0, 0, offsetDays),
	})
}

func requireReason(t *testing.T, err error, code int, reason string) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.Truef(t, ok, "expected *apperror.AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, reason, appErr.Reason)
	return appErr
}
