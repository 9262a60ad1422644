package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tailorbook-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptRepository_CreateListAndUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	bills := repository.NewBillRepository(db)
	repo := repository.NewReceiptRepository(db)
	ctx, shopID := testutil.ShopContext()

	bill := newBill(ctx, t, bills, 7, "Ravi")
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	late := &entity.Receipt{
		ShopID: shopID, ReceiptNumber: 1, BillID: bill.ID, BillNumber: 7, Name: "Ravi",
		Amount: decimal.NewFromInt(300), PaymentMethod: enum.PaymentMethodCash,
		PaymentDate: day.AddDate(0, 0, 5), PaymentType: enum.PaymentTypeAdvance,
	}
	early := &entity.Receipt{
		ShopID: shopID, ReceiptNumber: 2, BillID: bill.ID, BillNumber: 7, Name: "Ravi",
		Amount: decimal.NewFromInt(500), PaymentMethod: enum.PaymentMethodUPI,
		PaymentDate: day, PaymentType: enum.PaymentTypeAdvance,
		Tax: []entity.TaxLine{{TaxName: "GST", TaxType: enum.TaxTypePercentage, TaxPercentage: decimal.NewFromInt(10)}},
		TaxAmount: decimal.NewFromInt(50),
	}
	require.NoError(t, repo.Create(ctx, late))
	require.NoError(t, repo.Create(ctx, early))

	list, err := repo.ListByBill(ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ReceiptNumber, "ordered by payment date")
	require.Len(t, list[0].Tax, 1)
	assert.Equal(t, "GST", list[0].Tax[0].TaxName)

	count, err := repo.CountByBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	late.Amount = decimal.NewFromInt(250)
	late.BillID = uuid.New()
	late.BillNumber = 99
	require.NoError(t, repo.Update(ctx, late))

	got, err := repo.GetByNumber(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, bill.ID, got.BillID, "bill reference is immutable")
	assert.Equal(t, int64(7), got.BillNumber)
}
