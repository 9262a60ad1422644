package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/sangkips/tailorbook-api/internal/domain/reconciliation"
	"github.com/sangkips/tailorbook-api/internal/domain/repository"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/lock"
	infraRepo "github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tailorbook-api/pkg/apperror"
)

// rejectionError turns a reconciler rejection into an API error.
func rejectionError(rej *reconciliation.Rejection) *apperror.AppError {
	code := http.StatusUnprocessableEntity
	if rej.Reason == reconciliation.ReasonBillAlreadyPaid {
		code = http.StatusConflict
	}

	appErr := apperror.NewRejectionError(code, string(rej.Reason), rej.Message)
	if rej.Reason == reconciliation.ReasonExcessiveOverpayment {
		overpayment := rej.Overpayment
		appErr.Overpayment = &overpayment
	}
	return appErr
}

// translateWriteError maps the failure modes of a guarded bill write onto API
// errors. Anything unknown is passed through unchanged.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if rej, ok := reconciliation.AsRejection(err); ok {
		return rejectionError(rej)
	}
	switch {
	case errors.Is(err, repository.ErrVersionConflict):
		return apperror.ErrConcurrentUpdate
	case errors.Is(err, lock.ErrTimeout):
		return apperror.ErrBusy
	}
	return err
}

// withBillLock runs fn while holding the lock of one bill of the shop in ctx.
func withBillLock(ctx context.Context, locker lock.Locker, billNumber int64, fn func() error) error {
	shopID, ok := infraRepo.GetShopID(ctx)
	if !ok {
		return apperror.ErrMissingShop
	}

	release, err := locker.Acquire(ctx, lock.BillKey(shopID, billNumber))
	if err != nil {
		return translateWriteError(err)
	}
	defer release()

	return translateWriteError(fn())
}
