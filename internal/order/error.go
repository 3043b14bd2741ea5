package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrValidation           = errors.New("invalid checkout request")
	ErrEmptyOrder           = errors.New("order has no items")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
	ErrMissingPaymentProof  = errors.New("payment proof is required")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrMissingCustomerInfo  = errors.New("customer name, phone and shipping address are required")

	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("insufficient stock")
	ErrPriceChanged    = errors.New("product price changed during checkout")

	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("not allowed to access this order")
)

// ValidationError is a malformed request, rejected before storage is read.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrValidation
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: err.Error(), Err: err}
}

// StockError rejects a checkout because of specific products. Kind is
// ErrProductNotFound, ErrOutOfStock or ErrPriceChanged.
type StockError struct {
	Kind       error
	ProductIDs []uuid.UUID
}

func (e *StockError) Error() string {
	ids := make([]string, len(e.ProductIDs))
	for i, id := range e.ProductIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(ids, ", "))
}

func (e *StockError) Unwrap() error {
	return e.Kind
}

type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
