package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tailorbook-api/internal/domain/repository"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tailorbook-api/internal/testutil"
	"github.com/sangkips/tailorbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBill(ctx context.Context, t *testing.T, repo domainRepo.BillRepository, number int64, name string) *entity.Bill {
	t.Helper()
	shopID, _ := repository.GetShopID(ctx)
	bill := &entity.Bill{
		ShopID:     shopID,
		BillNumber: number,
		Name:       name,
		Category:   "shirt",
		OrderDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Items: []entity.BillItem{
			{Name: "Stitching", Quantity: 2, Rate: decimal.NewFromInt(400), Amount: decimal.NewFromInt(800)},
			{Name: "Lining", Quantity: 1, Rate: decimal.NewFromInt(200), Amount: decimal.NewFromInt(200)},
		},
		TotalAmount:   decimal.NewFromInt(1000),
		GrandTotal:    decimal.NewFromInt(1000),
		DueAmount:     decimal.NewFromInt(1000),
		PaymentStatus: enum.PaymentStatusUnpaid,
		Version:       1,
	}
	require.NoError(t, repo.Create(ctx, bill))
	return bill
}

func TestBillRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewBillRepository(db)
	ctx, _ := testutil.ShopContext()

	created := newBill(ctx, t, repo, 1, "Ravi")

	got, err := repo.GetByNumber(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(1000)))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Stitching", got.Items[0].Name)
	assert.Equal(t, "Lining", got.Items[1].Name)

	missing, err := repo.GetByNumber(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBillRepository_ShopIsolation(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewBillRepository(db)
	ctxA, _ := testutil.ShopContext()
	ctxB, _ := testutil.ShopContext()

	newBill(ctxA, t, repo, 1, "Ravi")

	got, err := repo.GetByNumber(ctxB, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByNumber(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, got, "no shop in context must match nothing")
}

func TestBillRepository_SaveChecksVersion(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewBillRepository(db)
	ctx, _ := testutil.ShopContext()

	newBill(ctx, t, repo, 1, "Ravi")

	first, err := repo.GetForUpdate(ctx, 1)
	require.NoError(t, err)
	stale, err := repo.GetByNumber(ctx, 1)
	require.NoError(t, err)

	first.PaidAmount = decimal.NewFromInt(500)
	first.DueAmount = decimal.NewFromInt(500)
	first.PaymentStatus = enum.PaymentStatusPartiallyPaid
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, 2, first.Version)

	stale.PaidAmount = decimal.NewFromInt(100)
	err = repo.Save(ctx, stale)
	assert.ErrorIs(t, err, domainRepo.ErrVersionConflict)

	got, err := repo.GetByNumber(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.True(t, got.PaidAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, enum.PaymentStatusPartiallyPaid, got.PaymentStatus)
}

func TestBillRepository_ReplaceItems(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewBillRepository(db)
	ctx, _ := testutil.ShopContext()

	bill := newBill(ctx, t, repo, 1, "Ravi")

	items := []entity.BillItem{
		{Name: "Suit", Quantity: 1, Rate: decimal.NewFromInt(3000), Amount: decimal.NewFromInt(3000)},
	}
	require.NoError(t, repo.ReplaceItems(ctx, bill.ID, items))

	got, err := repo.GetByNumber(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Suit", got.Items[0].Name)
}

func TestBillRepository_List(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewBillRepository(db)
	ctx, _ := testutil.ShopContext()

	newBill(ctx, t, repo, 1, "Ravi Kumar")
	paid := newBill(ctx, t, repo, 2, "Meena")
	newBill(ctx, t, repo, 3, "ravi shankar")

	paid.PaidAmount = paid.GrandTotal
	paid.DueAmount = decimal.Zero
	paid.PaymentStatus = enum.PaymentStatusPaid
	require.NoError(t, repo.Save(ctx, paid))

	params := pagination.DefaultPagination()

	bills, total, err := repo.List(ctx, domainRepo.BillFilter{}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, int64(3), bills[0].BillNumber, "newest first")

	bills, total, err = repo.List(ctx, domainRepo.BillFilter{Search: "RAVI"}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, bills, 2)

	_, total, err = repo.List(ctx, domainRepo.BillFilter{DueOnly: true}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	bills, _, err = repo.List(ctx, domainRepo.BillFilter{Status: enum.PaymentStatusPaid}, params)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, int64(2), bills[0].BillNumber)
}
