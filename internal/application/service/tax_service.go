package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/sangkips/tailorbook-api/internal/domain/repository"
	infraRepo "github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tailorbook-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// TaxService manages the shop's tax definitions. Receipts keep their own
// copy of the taxes they were charged, so edits here only affect new payments.
type TaxService struct {
	taxRepo repository.TaxRepository
}

// NewTaxService creates a new tax service
func NewTaxService(taxRepo repository.TaxRepository) *TaxService {
	return &TaxService{taxRepo: taxRepo}
}

// TaxInput represents the create/update tax input
type TaxInput struct {
	Name          string
	TaxType       enum.TaxType
	TaxPercentage decimal.Decimal
	Active        *bool
}

func validateTax(input *TaxInput) error {
	var errs []apperror.FieldError
	if input.Name == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "name is required"})
	}
	if !input.TaxType.IsValid() {
		errs = append(errs, apperror.FieldError{Field: "tax_type", Message: fmt.Sprintf("tax_type must be %s or %s", enum.TaxTypePercentage, enum.TaxTypeFixed)})
	}
	if input.TaxPercentage.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "tax_percentage", Message: "tax_percentage cannot be negative"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// CreateTax creates a new tax definition
func (s *TaxService) CreateTax(ctx context.Context, input *TaxInput) (*entity.Tax, error) {
	shopID, ok := infraRepo.GetShopID(ctx)
	if !ok {
		return nil, apperror.ErrMissingShop
	}
	if err := validateTax(input); err != nil {
		return nil, err
	}

	tax := &entity.Tax{
		ShopID:        shopID,
		Name:          input.Name,
		TaxType:       input.TaxType,
		TaxPercentage: entity.RoundMoney(input.TaxPercentage),
		Active:        input.Active == nil || *input.Active,
	}
	if err := s.taxRepo.Create(ctx, tax); err != nil {
		return nil, err
	}
	return tax, nil
}

// ListTaxes lists the shop's tax definitions
func (s *TaxService) ListTaxes(ctx context.Context, activeOnly bool) ([]entity.Tax, error) {
	return s.taxRepo.List(ctx, activeOnly)
}

// UpdateTax replaces a tax definition
func (s *TaxService) UpdateTax(ctx context.Context, id uuid.UUID, input *TaxInput) (*entity.Tax, error) {
	if err := validateTax(input); err != nil {
		return nil, err
	}

	tax, err := s.taxRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tax == nil {
		return nil, apperror.NewNotFoundError("Tax")
	}

	tax.Name = input.Name
	tax.TaxType = input.TaxType
	tax.TaxPercentage = entity.RoundMoney(input.TaxPercentage)
	if input.Active != nil {
		tax.Active = *input.Active
	}

	if err := s.taxRepo.Update(ctx, tax); err != nil {
		return nil, err
	}
	return tax, nil
}

// DeleteTax deletes a tax definition
func (s *TaxService) DeleteTax(ctx context.Context, id uuid.UUID) error {
	tax, err := s.taxRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tax == nil {
		return apperror.NewNotFoundError("Tax")
	}
	return s.taxRepo.Delete(ctx, id)
}

// Snapshot resolves tax ids into receipt tax lines, keeping the request order.
// Inactive or unknown ids are rejected.
func (s *TaxService) Snapshot(ctx context.Context, ids []uuid.UUID) ([]entity.TaxLine, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	taxes, err := s.taxRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxes: %w", err)
	}

	found := make(map[uuid.UUID]bool, len(taxes))
	lines := make([]entity.TaxLine, 0, len(taxes))
	for i := range taxes {
		if !taxes[i].Active {
			continue
		}
		found[taxes[i].ID] = true
		lines = append(lines, taxes[i].Snapshot())
	}

	for _, id := range ids {
		if !found[id] {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: "tax_ids", Message: fmt.Sprintf("tax %s does not exist or is inactive", id)},
			})
		}
	}
	return lines, nil
}
