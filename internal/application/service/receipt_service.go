package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/sangkips/tailorbook-api/internal/domain/reconciliation"
	"github.com/sangkips/tailorbook-api/internal/domain/repository"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/lock"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/logger"
	infraRepo "github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tailorbook-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiptService records payments against bills. Every write holds the bill
// lock and runs in one transaction that ends with a version-checked bill save.
type ReceiptService struct {
	billRepo    repository.BillRepository
	receiptRepo repository.ReceiptRepository
	seqRepo     repository.SequenceRepository
	taxService  *TaxService
	tx          repository.Transactor
	locker      lock.Locker
	reconciler  *reconciliation.Reconciler
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	billRepo repository.BillRepository,
	receiptRepo repository.ReceiptRepository,
	seqRepo repository.SequenceRepository,
	taxService *TaxService,
	tx repository.Transactor,
	locker lock.Locker,
	reconciler *reconciliation.Reconciler,
) *ReceiptService {
	return &ReceiptService{
		billRepo:    billRepo,
		receiptRepo: receiptRepo,
		seqRepo:     seqRepo,
		taxService:  taxService,
		tx:          tx,
		locker:      locker,
		reconciler:  reconciler,
	}
}

// CreateReceiptInput represents a new payment
type CreateReceiptInput struct {
	BillNumber    int64
	Amount        decimal.Decimal
	Discount      decimal.Decimal
	TaxIDs        []uuid.UUID
	PaymentMethod enum.PaymentMethod
	PaymentDate   time.Time
	Notes         *string
}

// UpdateReceiptInput represents an edit of a payment. A nil TaxIDs keeps the
// receipt's existing tax snapshot.
type UpdateReceiptInput struct {
	Number        int64
	Amount        decimal.Decimal
	Discount      decimal.Decimal
	TaxIDs        *[]uuid.UUID
	PaymentMethod enum.PaymentMethod
	PaymentDate   time.Time
	Notes         *string
}

// ReceiptResult is a stored receipt together with the bill it settled against
type ReceiptResult struct {
	Receipt     *entity.Receipt `json:"receipt"`
	Bill        *entity.Bill    `json:"bill"`
	Overpayment decimal.Decimal `json:"overpayment"`
}

// CreateReceipt validates and records a payment against a bill
func (s *ReceiptService) CreateReceipt(ctx context.Context, input *CreateReceiptInput) (*ReceiptResult, error) {
	shopID, ok := infraRepo.GetShopID(ctx)
	if !ok {
		return nil, apperror.ErrMissingShop
	}

	// Validate the amounts that will be stored, not the raw request values.
	amount := entity.RoundMoney(input.Amount)
	discount := entity.RoundMoney(input.Discount)

	candidate := reconciliation.ReceiptInput{
		BillNumber:    input.BillNumber,
		Amount:        amount,
		Discount:      discount,
		PaymentMethod: input.PaymentMethod,
		PaymentDate:   input.PaymentDate,
	}
	if input.BillNumber <= 0 {
		// No bill to load: the empty snapshot still yields the first failing check in order.
		_, err := s.reconciler.ValidateReceipt(candidate, reconciliation.AmountTrack{})
		return nil, translateWriteError(err)
	}

	taxes, err := s.taxService.Snapshot(ctx, input.TaxIDs)
	if err != nil {
		return nil, err
	}
	candidate.Tax = taxes

	var result *ReceiptResult
	err = withBillLock(ctx, s.locker, input.BillNumber, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			bill, receipts, err := s.loadBill(ctx, input.BillNumber)
			if err != nil {
				return err
			}

			candidate.Name = bill.Name
			track := reconciliation.NewAmountTrack(reconciliation.BaseOf(bill), receipts, 0)
			acc, err := s.reconciler.ValidateReceipt(candidate, track)
			if err != nil {
				return err
			}

			number, err := s.seqRepo.Next(ctx, entity.SequenceReceipt)
			if err != nil {
				return err
			}

			receipt := &entity.Receipt{
				ShopID:        shopID,
				ReceiptNumber: number,
				BillID:        bill.ID,
				BillNumber:    bill.BillNumber,
				Name:          bill.Name,
				Amount:        amount,
				Discount:      discount,
				Tax:           taxes,
				TaxAmount:     acc.TaxAmount,
				PaymentMethod: input.PaymentMethod,
				PaymentDate:   input.PaymentDate,
				PaymentType:   acc.PaymentType,
				Notes:         input.Notes,
			}
			if err := s.receiptRepo.Create(ctx, receipt); err != nil {
				return err
			}

			reconciliation.ApplyTotals(bill, append(receipts, *receipt))
			if err := s.billRepo.Save(ctx, bill); err != nil {
				return err
			}

			result = &ReceiptResult{Receipt: receipt, Bill: bill, Overpayment: acc.Overpayment}
			return nil
		})
	})
	if err != nil {
		s.logRefusal(ctx, "create", input.BillNumber, err)
		return nil, err
	}

	logger.FromContext(ctx).Info("Receipt recorded",
		zap.Int64("bill_number", result.Bill.BillNumber),
		zap.Int64("receipt_number", result.Receipt.ReceiptNumber),
		zap.String("amount", result.Receipt.Amount.StringFixed(2)),
		zap.String("payment_status", string(result.Bill.PaymentStatus)),
	)
	return result, nil
}

// UpdateReceipt re-validates an edited payment against its bill, leaving the
// receipt's own previous contribution out of the balance.
func (s *ReceiptService) UpdateReceipt(ctx context.Context, input *UpdateReceiptInput) (*ReceiptResult, error) {
	existing, err := s.GetReceipt(ctx, input.Number)
	if err != nil {
		return nil, err
	}

	amount := entity.RoundMoney(input.Amount)
	discount := entity.RoundMoney(input.Discount)

	var taxes []entity.TaxLine
	if input.TaxIDs != nil {
		taxes, err = s.taxService.Snapshot(ctx, *input.TaxIDs)
		if err != nil {
			return nil, err
		}
	}

	var result *ReceiptResult
	err = withBillLock(ctx, s.locker, existing.BillNumber, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			bill, receipts, err := s.loadBill(ctx, existing.BillNumber)
			if err != nil {
				return err
			}

			idx := -1
			for i := range receipts {
				if receipts[i].ReceiptNumber == input.Number {
					idx = i
					break
				}
			}
			if idx < 0 {
				return apperror.NewNotFoundError("Receipt")
			}
			receipt := receipts[idx]
			if input.TaxIDs == nil {
				taxes = receipt.Tax
			}

			candidate := reconciliation.ReceiptInput{
				BillNumber:    bill.BillNumber,
				Name:          bill.Name,
				Amount:        amount,
				Discount:      discount,
				Tax:           taxes,
				PaymentMethod: input.PaymentMethod,
				PaymentDate:   input.PaymentDate,
			}
			track := reconciliation.NewAmountTrack(reconciliation.BaseOf(bill), receipts, input.Number)
			acc, err := s.reconciler.ValidateReceipt(candidate, track)
			if err != nil {
				return err
			}

			receipt.Name = bill.Name
			receipt.Amount = amount
			receipt.Discount = discount
			receipt.Tax = taxes
			receipt.TaxAmount = acc.TaxAmount
			receipt.PaymentMethod = input.PaymentMethod
			receipt.PaymentDate = input.PaymentDate
			receipt.PaymentType = acc.PaymentType
			if input.Notes != nil {
				receipt.Notes = input.Notes
			}
			if err := s.receiptRepo.Update(ctx, &receipt); err != nil {
				return err
			}
			receipts[idx] = receipt

			reconciliation.ApplyTotals(bill, receipts)
			if err := s.billRepo.Save(ctx, bill); err != nil {
				return err
			}

			result = &ReceiptResult{Receipt: &receipt, Bill: bill, Overpayment: acc.Overpayment}
			return nil
		})
	})
	if err != nil {
		s.logRefusal(ctx, "update", existing.BillNumber, err)
		return nil, err
	}

	logger.FromContext(ctx).Info("Receipt updated",
		zap.Int64("bill_number", result.Bill.BillNumber),
		zap.Int64("receipt_number", result.Receipt.ReceiptNumber),
		zap.String("amount", result.Receipt.Amount.StringFixed(2)),
		zap.String("payment_status", string(result.Bill.PaymentStatus)),
	)
	return result, nil
}

// GetReceipt retrieves a receipt by its number
func (s *ReceiptService) GetReceipt(ctx context.Context, number int64) (*entity.Receipt, error) {
	receipt, err := s.receiptRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

// ListByBill returns the receipt history of a bill in payment order
func (s *ReceiptService) ListByBill(ctx context.Context, billNumber int64) ([]entity.Receipt, error) {
	bill, err := s.billRepo.GetByNumber(ctx, billNumber)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return s.receiptRepo.ListByBill(ctx, bill.ID)
}

// Breakdown returns the due amount before and after one receipt
func (s *ReceiptService) Breakdown(ctx context.Context, number int64) (*reconciliation.ReceiptBreakdown, error) {
	receipt, err := s.GetReceipt(ctx, number)
	if err != nil {
		return nil, err
	}

	bill, err := s.billRepo.GetByNumber(ctx, receipt.BillNumber)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}

	receipts, err := s.receiptRepo.ListByBill(ctx, bill.ID)
	if err != nil {
		return nil, err
	}

	breakdown, ok := reconciliation.DeriveReceiptBreakdown(reconciliation.BaseOf(bill), receipts, number)
	if !ok {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return breakdown, nil
}

func (s *ReceiptService) loadBill(ctx context.Context, number int64) (*entity.Bill, []entity.Receipt, error) {
	bill, err := s.billRepo.GetForUpdate(ctx, number)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load bill %d: %w", number, err)
	}
	if bill == nil {
		return nil, nil, apperror.NewNotFoundError("Bill")
	}

	receipts, err := s.receiptRepo.ListByBill(ctx, bill.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load receipts of bill %d: %w", number, err)
	}
	return bill, receipts, nil
}

func (s *ReceiptService) logRefusal(ctx context.Context, op string, billNumber int64, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return
	}
	logger.FromContext(ctx).Info("Receipt refused",
		zap.String("operation", op),
		zap.Int64("bill_number", billNumber),
		zap.Int("status", appErr.Code),
		zap.String("reason", appErr.Reason),
	)
}
