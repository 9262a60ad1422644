package service

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/sangkips/tailorbook-api/internal/domain/reconciliation"
	"github.com/sangkips/tailorbook-api/internal/domain/repository"
	infraRepo "github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tailorbook-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptService_PartialThenFullPayment(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, "1000")

	first, err := f.pay(bill.BillNumber, "400", 0)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentTypeAdvance, first.Receipt.PaymentType)
	assert.Equal(t, enum.PaymentStatusPartiallyPaid, first.Bill.PaymentStatus)
	assertMoney(t, "600", first.Bill.DueAmount, "due")

	second, err := f.pay(bill.BillNumber, "600", 1)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentTypeFullyPaid, second.Receipt.PaymentType)

	stored, err := f.bills.GetBill(f.ctx, bill.BillNumber)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPaid, stored.PaymentStatus)
	assertMoney(t, "1000", stored.PaidAmount, "paid")
	assertMoney(t, "0", stored.DueAmount, "due")
	assert.Equal(t, 3, stored.Version, "each receipt bumps the version")

	_, err = f.pay(bill.BillNumber, "1", 2)
	requireReason(t, err, http.StatusConflict, string(reconciliation.ReasonBillAlreadyPaid))
}

func TestReceiptService_Rejections(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, "1000")

	_, err := f.pay(0, "100", 0)
	requireReason(t, err, http.StatusUnprocessableEntity, string(reconciliation.ReasonMissingBillReference))

	_, err = f.pay(0, "0", 0)
	requireReason(t, err, http.StatusUnprocessableEntity, string(reconciliation.ReasonInvalidAmount))

	_, err = f.pay(bill.BillNumber, "1006", 0)
	appErr := requireReason(t, err, http.StatusUnprocessableEntity, string(reconciliation.ReasonExcessiveOverpayment))
	require.NotNil(t, appErr.Overpayment)
	assertMoney(t, "6", *appErr.Overpayment, "overpayment")

	_, err = f.receipts.CreateReceipt(f.ctx, &CreateReceiptInput{
		BillNumber:  bill.BillNumber,
		Amount:      dec("100"),
		PaymentDate: paymentDay,
	})
	requireReason(t, err, http.StatusUnprocessableEntity, string(reconciliation.ReasonMissingPaymentMethod))

	_, err = f.pay(999, "100", 0)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)

	stored, err := f.bills.GetBill(f.ctx, bill.BillNumber)
	require.NoError(t, err)
	assertMoney(t, "0", stored.PaidAmount, "rejections leave the bill untouched")
	assert.Equal(t, 1, stored.Version)
}

func TestReceiptService_OverpaymentWithinTolerance(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, "1000")

	res, err := f.pay(bill.BillNumber, "1004", 0)
	require.NoError(t, err)
	assertMoney(t, "4", res.Overpayment, "overpayment")
	assertMoney(t, "-4", res.Bill.DueAmount, "due")
	assert.Equal(t, enum.PaymentStatusPaid, res.Bill.PaymentStatus)
	assert.Equal(t, enum.PaymentTypeFullyPaid, res.Receipt.PaymentType)
}

func TestReceiptService_SubCentAmounts(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, "1000")

	_, err := f.pay(bill.BillNumber, "0.004", 0)
	requireReason(t, err, http.StatusUnprocessableEntity, string(reconciliation.ReasonInvalidAmount))

	// 1005.004 is stored as 1005.00, which is within the tolerance
	res, err := f.pay(bill.BillNumber, "1005.004", 1)
	require.NoError(t, err)
	assertMoney(t, "1005", res.Receipt.Amount, "amount")
	assertMoney(t, "5", res.Overpayment, "overpayment")

	_, err = f.receipts.UpdateReceipt(f.ctx, &UpdateReceiptInput{
		Number:        res.Receipt.ReceiptNumber,
		Amount:        dec("0.001"),
		PaymentMethod: enum.PaymentMethodCash,
		PaymentDate:   paymentDay,
	})
	requireReason(t, err, http.StatusUnprocessableEntity, string(reconciliation.ReasonInvalidAmount))

	stored, err := f.receipts.GetReceipt(f.ctx, res.Receipt.ReceiptNumber)
	require.NoError(t, err)
	assertMoney(t, "1005", stored.Amount, "rejected edit leaves the receipt untouched")
}

// Bill 1000; 500 with 10% tax, 550 to settle, then the first payment is
// edited down to 400.
func TestReceiptService_TaxAndEdit(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, "1000")
	gst := f.createTax(t, "GST", enum.TaxTypePercentage, "10")

	first, err := f.pay(bill.BillNumber, "500", 0, gst.ID)
	require.NoError(t, err)
	assertMoney(t, "50", first.Receipt.TaxAmount, "tax")
	assertMoney(t, "1050", first.Bill.GrandTotal, "grand")
	assertMoney(t, "550", first.Bill.DueAmount, "due")

	second, err := f.pay(bill.BillNumber, "550", 1)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPaid, second.Bill.PaymentStatus)

	track, err := f.bills.AmountTrack(f.ctx, bill.BillNumber, first.Receipt.ReceiptNumber)
	require.NoError(t, err)
	assertMoney(t, "450", track.Due, "due without the edited receipt")

	edited, err := f.receipts.UpdateReceipt(f.ctx, &UpdateReceiptInput{
		Number:        first.Receipt.ReceiptNumber,
		Amount:        dec("400"),
		PaymentMethod: enum.PaymentMethodUPI,
		PaymentDate:   paymentDay,
	})
	require.NoError(t, err)
	assertMoney(t, "40", edited.Receipt.TaxAmount, "tax recomputed from the snapshot")
	assert.Equal(t, enum.PaymentTypeAdvance, edited.Receipt.PaymentType)
	assertMoney(t, "1040", edited.Bill.GrandTotal, "grand")
	assertMoney(t, "950", edited.Bill.PaidAmount, "paid")
	assertMoney(t, "90", edited.Bill.DueAmount, "due")
	assert.Equal(t, enum.PaymentStatusPartiallyPaid, edited.Bill.PaymentStatus)

	breakdown, err := f.receipts.Breakdown(f.ctx, second.Receipt.ReceiptNumber)
	require.NoError(t, err)
	assertMoney(t, "640", breakdown.DueBefore, "due before second")
	assertMoney(t, "90", breakdown.DueAfter, "due after second")
}

func TestReceiptService_EditCannotOverpay(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, "1000")

	first, err := f.pay(bill.BillNumber, "300", 0)
	require.NoError(t, err)
	_, err = f.pay(bill.BillNumber, "500", 1)
	require.NoError(t, err)

	_, err = f.receipts.UpdateReceipt(f.ctx, &UpdateReceiptInput{
		Number:        first.Receipt.ReceiptNumber,
		Amount:        dec("510"),
		PaymentMethod: enum.PaymentMethodCash,
		PaymentDate:   paymentDay,
	})
	requireReason(t, err, http.StatusUnprocessableEntity, string(reconciliation.ReasonExcessiveOverpayment))

	_, err = f.receipts.UpdateReceipt(f.ctx, &UpdateReceiptInput{
		Number:        first.Receipt.ReceiptNumber,
		Amount:        dec("500"),
		PaymentMethod: enum.PaymentMethodCash,
		PaymentDate:   paymentDay,
	})
	require.NoError(t, err, "editing may use exactly the receipt's own share plus the due")
}

func TestReceiptService_TaxSnapshotSurvivesTaxEdit(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, "1000")
	gst := f.createTax(t, "GST", enum.TaxTypePercentage, "10")

	res, err := f.pay(bill.BillNumber, "200", 0, gst.ID)
	require.NoError(t, err)

	_, err = f.taxes.UpdateTax(f.ctx, gst.ID, &TaxInput{Name: "GST", TaxType: enum.TaxTypePercentage, TaxPercentage: dec("18")})
	require.NoError(t, err)

	stored, err := f.receipts.GetReceipt(f.ctx, res.Receipt.ReceiptNumber)
	require.NoError(t, err)
	require.Len(t, stored.Tax, 1)
	assertMoney(t, "10", stored.Tax[0].TaxPercentage, "snapshot percentage")
	assertMoney(t, "20", stored.TaxAmount, "stored tax")
}

func TestReceiptService_UnknownTaxRejected(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, "1000")

	_, err := f.pay(bill.BillNumber, "100", 0, uuid.New())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
}

func TestReceiptService_ConcurrentPaymentsNeverOverpay(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, "1000")

	const workers = 8
	var wg sync.WaitGroup
	results := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.pay(bill.BillNumber, "300", 0)
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range results {
		if err == nil {
			accepted++
			continue
		}
		assert.Equal(t, string(reconciliation.ReasonExcessiveOverpayment), apperror.GetAppError(err).Reason)
	}
	assert.Equal(t, 3, accepted, "only three payments of 300 fit in 1000")

	stored, err := f.bills.GetBill(f.ctx, bill.BillNumber)
	require.NoError(t, err)
	assertMoney(t, "900", stored.PaidAmount, "paid")
	assertMoney(t, "100", stored.DueAmount, "due")

	receipts, err := f.receipts.ListByBill(f.ctx, bill.BillNumber)
	require.NoError(t, err)
	assert.Len(t, receipts, 3)
}

func TestReceiptService_StaleBillVersionRollsBack(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, "1000")

	// Another writer bumps the version between our read and our save.
	billRepo := infraRepo.NewBillRepository(f.db)
	stale := &staleBillRepo{BillRepository: billRepo}
	svc := NewReceiptService(stale, infraRepo.NewReceiptRepository(f.db), infraRepo.NewSequenceRepository(f.db),
		f.taxes, infraRepo.NewTransactor(f.db), f.receipts.locker, f.receipts.reconciler)

	_, err := svc.CreateReceipt(f.ctx, &CreateReceiptInput{
		BillNumber:    bill.BillNumber,
		Amount:        dec("100"),
		PaymentMethod: enum.PaymentMethodCard,
		PaymentDate:   paymentDay,
	})
	assert.ErrorIs(t, err, apperror.ErrConcurrentUpdate)

	receipts, err := f.receipts.ListByBill(f.ctx, bill.BillNumber)
	require.NoError(t, err)
	assert.Empty(t, receipts, "the receipt insert is rolled back")
}

// staleBillRepo hands out bills one version behind the stored row.
type staleBillRepo struct {
	repository.BillRepository
}

func (r *staleBillRepo) GetForUpdate(ctx context.Context, number int64) (*entity.Bill, error) {
	bill, err := r.BillRepository.GetForUpdate(ctx, number)
	if bill != nil {
		bill.Version--
	}
	return bill, err
}
