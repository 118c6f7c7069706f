package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/apperror"
)

// requireSource returns the source the request is scoped to
func requireSource(ctx context.Context) (uuid.UUID, error) {
	sourceID, ok := repository.SourceIDFromContext(ctx)
	if !ok {
		return uuid.Nil, apperror.ErrNoSource
	}
	return sourceID, nil
}

// domainError attaches an HTTP code to errors raised by the domain and repository layers.
// Anything it does not recognise is returned unchanged.
func domainError(err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}

	switch {
	case errors.Is(err, checkout.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrInvalidPrice),
		errors.Is(err, checkout.ErrInvalidDiscount),
		errors.Is(err, checkout.ErrInvalidContent),
		errors.Is(err, checkout.ErrDivisionByZero),
		errors.Is(err, checkout.ErrNegativeTotal):
		return apperror.Wrap(http.StatusUnprocessableEntity, err)
	case errors.Is(err, checkout.ErrInvalidTransition),
		errors.Is(err, checkout.ErrBillLocked),
		errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, repository.ErrDuplicate):
		return apperror.Wrap(http.StatusConflict, err)
	}
	return err
}

var errBillEntry = errors.New("entries recorded from bills cannot be deleted")

var errPayerRequired = errors.New("a payer is required to leave a balance on the bill")
