package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/cart"
	"zidoyvelg-be/internal/idempotency"
	"zidoyvelg-be/internal/logger"
	"zidoyvelg-be/internal/order"
	"zidoyvelg-be/internal/product"
	"zidoyvelg-be/internal/storage"
	"zidoyvelg-be/internal/user"
	"zidoyvelg-be/internal/utils"

	"go.uber.org/zap"
)

var errMalformedBody = errors.New("malformed request body")

type apiError struct {
	status int
	kind   string
}

// classify maps a domain error to its HTTP status and kind.
func classify(err error) apiError {
	var stockErr *order.StockError
	if errors.As(err, &stockErr) {
		switch {
		case errors.Is(err, order.ErrProductNotFound):
			return apiError{http.StatusNotFound, "ProductNotFound"}
		case errors.Is(err, order.ErrPriceChanged):
			return apiError{http.StatusConflict, "PriceChanged"}
		default:
			return apiError{http.StatusConflict, "OutOfStock"}
		}
	}

	switch {
	case errors.Is(err, order.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidQuantity):
		return apiError{http.StatusBadRequest, "InvalidQuantity"}
	case errors.Is(err, order.ErrMissingPaymentProof), errors.Is(err, storage.ErrEmptyFile):
		return apiError{http.StatusBadRequest, "MissingPaymentProof"}
	case errors.Is(err, storage.ErrTooLarge):
		return apiError{http.StatusRequestEntityTooLarge, "Validation"}
	case errors.Is(err, order.ErrValidation),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		errors.Is(err, order.ErrMissingCustomerInfo),
		errors.Is(err, product.ErrInvalidInput),
		errors.Is(err, user.ErrInvalidInput),
		errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, cart.ErrCartEmpty),
		errors.Is(err, cart.ErrInvalidBlob),
		errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, idempotency.ErrInvalidKey),
		errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, errMalformedBody):
		return apiError{http.StatusBadRequest, "Validation"}

	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidToken):
		return apiError{http.StatusUnauthorized, "Unauthenticated"}
	case errors.Is(err, user.ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, "InvalidCredentials"}

	case errors.Is(err, order.ErrForbidden), errors.Is(err, product.ErrForbidden):
		return apiError{http.StatusForbidden, "Forbidden"}

	case errors.Is(err, order.ErrOrderNotFound):
		return apiError{http.StatusNotFound, "OrderNotFound"}
	case errors.Is(err, product.ErrProductNotFound), errors.Is(err, order.ErrProductNotFound):
		return apiError{http.StatusNotFound, "ProductNotFound"}
	case errors.Is(err, user.ErrUserNotFound):
		return apiError{http.StatusNotFound, "NotFound"}

	case errors.Is(err, order.ErrOutOfStock):
		return apiError{http.StatusConflict, "OutOfStock"}
	case errors.Is(err, order.ErrInvalidTransition):
		return apiError{http.StatusConflict, "InvalidTransition"}
	case errors.Is(err, idempotency.ErrInProgress):
		return apiError{http.StatusConflict, "IdempotencyInProgress"}
	case errors.Is(err, user.ErrEmailExists), errors.Is(err, user.ErrUsernameExists):
		return apiError{http.StatusConflict, "Conflict"}
	}

	return apiError{http.StatusInternalServerError, "Internal"}
}

// writeError renders err. Internal failures are logged with detail and
// answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)

	body := utils.ErrorBody{Error: err.Error(), Kind: e.kind}
	if e.status == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path), zap.Error(err))
		body.Error = "internal server error"
	}

	var stockErr *order.StockError
	if errors.As(err, &stockErr) {
		body.ProductIDs = make([]string, len(stockErr.ProductIDs))
		for i, id := range stockErr.ProductIDs {
			body.ProductIDs[i] = id.String()
		}
	}

	utils.WriteJSON(w, e.status, body)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s", errMalformedBody, err.Error())
	}
	return nil
}
