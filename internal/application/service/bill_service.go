package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/reconciliation"
	"github.com/sangkips/tailorbook-api/internal/domain/repository"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/lock"
	infraRepo "github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tailorbook-api/pkg/apperror"
	"github.com/sangkips/tailorbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ReasonTotalBelowPaid is returned when a bill edit would leave it owing the customer money.
const ReasonTotalBelowPaid = "TotalBelowPaid"

// BillService handles bill-related operations
type BillService struct {
	billRepo     repository.BillRepository
	receiptRepo  repository.ReceiptRepository
	customerRepo repository.CustomerRepository
	seqRepo      repository.SequenceRepository
	tx           repository.Transactor
	locker       lock.Locker
	reconciler   *reconciliation.Reconciler
}

// NewBillService creates a new bill service
func NewBillService(
	billRepo repository.BillRepository,
	receiptRepo repository.ReceiptRepository,
	customerRepo repository.CustomerRepository,
	seqRepo repository.SequenceRepository,
	tx repository.Transactor,
	locker lock.Locker,
	reconciler *reconciliation.Reconciler,
) *BillService {
	return &BillService{
		billRepo:     billRepo,
		receiptRepo:  receiptRepo,
		customerRepo: customerRepo,
		seqRepo:      seqRepo,
		tx:           tx,
		locker:       locker,
		reconciler:   reconciler,
	}
}

// BillItemInput represents an order line of a bill
type BillItemInput struct {
	Name     string
	Quantity int
	Rate     decimal.Decimal
}

// CreateBillInput represents the create bill input
type CreateBillInput struct {
	CustomerID   *uuid.UUID
	Name         string
	Category     string
	OrderDate    time.Time
	DeliveryDate *time.Time
	Items        []BillItemInput
	Discount     decimal.Decimal
	Notes        *string
}

// UpdateBillInput represents the update bill input. Nil fields are left unchanged.
type UpdateBillInput struct {
	Number int64
	// Version, when set, must match the stored bill version.
	Version      *int
	CustomerID   *uuid.UUID
	Name         *string
	Category     *string
	OrderDate    *time.Time
	DeliveryDate *time.Time
	Items        []BillItemInput
	Discount     *decimal.Decimal
	Notes        *string
}

// ReconcileResult reports how the cached totals of a bill compare with its receipts
type ReconcileResult struct {
	BillNumber int64                  `json:"bill_number"`
	Consistent bool                   `json:"consistent"`
	Drift      []reconciliation.Drift `json:"drift"`
	Repaired   bool                   `json:"repaired"`
	Bill       *entity.Bill           `json:"bill"`
}

func buildItems(inputs []BillItemInput) ([]entity.BillItem, decimal.Decimal, []apperror.FieldError) {
	var errs []apperror.FieldError
	if len(inputs) == 0 {
		errs = append(errs, apperror.FieldError{Field: "items", Message: "at least one item is required"})
	}

	items := make([]entity.BillItem, 0, len(inputs))
	total := decimal.Zero
	for i, in := range inputs {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(in.Name) == "" {
			errs = append(errs, apperror.FieldError{Field: field + ".name", Message: "name is required"})
		}
		if in.Quantity <= 0 {
			errs = append(errs, apperror.FieldError{Field: field + ".quantity", Message: "quantity must be greater than zero"})
		}
		if in.Rate.IsNegative() {
			errs = append(errs, apperror.FieldError{Field: field + ".rate", Message: "rate cannot be negative"})
		}

		rate := entity.RoundMoney(in.Rate)
		amount := entity.RoundMoney(rate.Mul(decimal.NewFromInt(int64(in.Quantity))))
		items = append(items, entity.BillItem{
			Name:     strings.TrimSpace(in.Name),
			Quantity: in.Quantity,
			Rate:     rate,
			Amount:   amount,
		})
		total = total.Add(amount)
	}
	return items, entity.RoundMoney(total), errs
}

func validateDiscount(discount, total decimal.Decimal) []apperror.FieldError {
	if discount.IsNegative() {
		return []apperror.FieldError{{Field: "discount", Message: "discount cannot be negative"}}
	}
	if discount.GreaterThan(total) {
		return []apperror.FieldError{{Field: "discount", Message: "discount cannot exceed the bill total"}}
	}
	return nil
}

// CreateBill creates a new bill with the next bill number of the shop
func (s *BillService) CreateBill(ctx context.Context, input *CreateBillInput) (*entity.Bill, error) {
	shopID, ok := infraRepo.GetShopID(ctx)
	if !ok {
		return nil, apperror.ErrMissingShop
	}

	name := strings.TrimSpace(input.Name)
	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
		if name == "" {
			name = customer.Name
		}
	}

	items, total, errs := buildItems(input.Items)
	errs = append(errs, validateDiscount(input.Discount, total)...)
	if name == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "name is required when no customer is given"})
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	bill := &entity.Bill{
		ShopID:       shopID,
		CustomerID:   input.CustomerID,
		Name:         name,
		Category:     strings.TrimSpace(input.Category),
		OrderDate:    orderDate,
		DeliveryDate: input.DeliveryDate,
		Items:        items,
		TotalAmount:  total,
		Discount:     entity.RoundMoney(input.Discount),
		Notes:        input.Notes,
		Version:      1,
	}
	reconciliation.ApplyTotals(bill, nil)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		number, err := s.seqRepo.Next(ctx, entity.SequenceBill)
		if err != nil {
			return err
		}
		bill.BillNumber = number
		return s.billRepo.Create(ctx, bill)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}

	return bill, nil
}

// GetBill retrieves a bill by its number
func (s *BillService) GetBill(ctx context.Context, number int64) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// ListBills lists the shop's bills
func (s *BillService) ListBills(ctx context.Context, filter repository.BillFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Bill], error) {
	bills, total, err := s.billRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total).
		WithFilter("status", string(filter.Status)).
		WithFilter("category", filter.Category).
		WithFilter("search", filter.Search)
	if filter.CustomerID != nil {
		pag.WithFilter("customer_id", filter.CustomerID.String())
	}
	if filter.DueOnly {
		pag.WithFilter("due_only", "true")
	}
	return pagination.NewPaginatedResult(bills, pag), nil
}

// ListDueBills lists bills that still have an amount due
func (s *BillService) ListDueBills(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Bill], error) {
	return s.ListBills(ctx, repository.BillFilter{DueOnly: true}, params)
}

// UpdateBill edits the header, lines or discount of a bill. Totals and the
// payment status are re-derived from the bill's receipts.
func (s *BillService) UpdateBill(ctx context.Context, input *UpdateBillInput) (*entity.Bill, error) {
	var updated *entity.Bill
	err := withBillLock(ctx, s.locker, input.Number, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			bill, err := s.billRepo.GetForUpdate(ctx, input.Number)
			if err != nil {
				return err
			}
			if bill == nil {
				return apperror.NewNotFoundError("Bill")
			}
			if input.Version != nil && *input.Version != bill.Version {
				return repository.ErrVersionConflict
			}

			if err := s.applyBillChanges(ctx, bill, input); err != nil {
				return err
			}

			receipts, err := s.receiptRepo.ListByBill(ctx, bill.ID)
			if err != nil {
				return err
			}
			reconciliation.ApplyTotals(bill, receipts)

			tolerance := s.reconciler.Policy().OverpaymentTolerance
			if bill.DueAmount.Neg().GreaterThan(tolerance) {
				return apperror.NewRejectionError(http.StatusUnprocessableEntity, ReasonTotalBelowPaid,
					fmt.Sprintf("Bill total would fall %s below the amount already paid", bill.DueAmount.Neg().StringFixed(2)))
			}

			if input.Items != nil {
				if err := s.billRepo.ReplaceItems(ctx, bill.ID, bill.Items); err != nil {
					return err
				}
			}
			if err := s.billRepo.Save(ctx, bill); err != nil {
				return err
			}
			updated = bill
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BillService) applyBillChanges(ctx context.Context, bill *entity.Bill, input *UpdateBillInput) error {
	var errs []apperror.FieldError

	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return apperror.NewNotFoundError("Customer")
		}
		bill.CustomerID = input.CustomerID
		bill.Customer = nil
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			errs = append(errs, apperror.FieldError{Field: "name", Message: "name cannot be blank"})
		}
		bill.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		bill.Category = strings.TrimSpace(*input.Category)
	}
	if input.OrderDate != nil {
		bill.OrderDate = *input.OrderDate
	}
	if input.DeliveryDate != nil {
		bill.DeliveryDate = input.DeliveryDate
	}
	if input.Notes != nil {
		bill.Notes = input.Notes
	}
	if input.Items != nil {
		items, total, itemErrs := buildItems(input.Items)
		errs = append(errs, itemErrs...)
		bill.Items = items
		bill.TotalAmount = total
	}
	if input.Discount != nil {
		bill.Discount = entity.RoundMoney(*input.Discount)
	}
	errs = append(errs, validateDiscount(bill.Discount, bill.TotalAmount)...)

	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// DeleteBill deletes a bill that has no receipts
func (s *BillService) DeleteBill(ctx context.Context, number int64) error {
	return withBillLock(ctx, s.locker, number, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			bill, err := s.billRepo.GetForUpdate(ctx, number)
			if err != nil {
				return err
			}
			if bill == nil {
				return apperror.NewNotFoundError("Bill")
			}

			count, err := s.receiptRepo.CountByBill(ctx, bill.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				return apperror.NewConflictError(fmt.Sprintf("Bill %d has %d receipt(s) and cannot be deleted", number, count))
			}
			return s.billRepo.Delete(ctx, bill.ID)
		})
	})
}

// AmountTrack returns the money state of a bill for the receipt form. When
// exclude names one of the bill's receipts, its contribution is left out.
func (s *BillService) AmountTrack(ctx context.Context, number, exclude int64) (*reconciliation.AmountTrack, error) {
	bill, err := s.GetBill(ctx, number)
	if err != nil {
		return nil, err
	}

	receipts, err := s.receiptRepo.ListByBill(ctx, bill.ID)
	if err != nil {
		return nil, err
	}

	if exclude != 0 && !containsReceipt(receipts, exclude) {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("Receipt %d on bill %d", exclude, number))
	}

	track := reconciliation.NewAmountTrack(reconciliation.BaseOf(bill), receipts, exclude)
	return &track, nil
}

// Reconcile compares the cached totals of a bill with a derivation from its
// receipts. With repair set, drifted fields are rewritten.
func (s *BillService) Reconcile(ctx context.Context, number int64, repair bool) (*ReconcileResult, error) {
	if !repair {
		bill, err := s.GetBill(ctx, number)
		if err != nil {
			return nil, err
		}
		receipts, err := s.receiptRepo.ListByBill(ctx, bill.ID)
		if err != nil {
			return nil, err
		}
		drift := reconciliation.DetectDrift(bill, receipts)
		return &ReconcileResult{BillNumber: number, Consistent: len(drift) == 0, Drift: drift, Bill: bill}, nil
	}

	var result *ReconcileResult
	err := withBillLock(ctx, s.locker, number, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			bill, err := s.billRepo.GetForUpdate(ctx, number)
			if err != nil {
				return err
			}
			if bill == nil {
				return apperror.NewNotFoundError("Bill")
			}
			receipts, err := s.receiptRepo.ListByBill(ctx, bill.ID)
			if err != nil {
				return err
			}

			drift := reconciliation.DetectDrift(bill, receipts)
			result = &ReconcileResult{BillNumber: number, Consistent: len(drift) == 0, Drift: drift, Bill: bill}
			if len(drift) == 0 {
				return nil
			}

			reconciliation.ApplyTotals(bill, receipts)
			if err := s.billRepo.Save(ctx, bill); err != nil {
				return err
			}
			result.Repaired = true
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func containsReceipt(receipts []entity.Receipt, number int64) bool {
	for i := range receipts {
		if receipts[i].ReceiptNumber == number {
			return true
		}
	}
	return false
}
