package api

import (
	"fmt"
	"net/http"
	"strings"

	"zidoyvelg-be/internal/payment"
	"zidoyvelg-be/internal/utils"

	"github.com/shopspring/decimal"
)

func (h *Handler) paymentMethods(w http.ResponseWriter, r *http.Request) {
	var q payment.Quote

	if raw := strings.TrimSpace(r.URL.Query().Get("amount")); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil || amount.IsNegative() {
			writeError(w, r, fmt.Errorf("%w: amount must be a non-negative number", errMalformedBody))
			return
		}
		q.Amount = &amount
	}
	q.Reference = strings.TrimSpace(r.URL.Query().Get("reference"))

	utils.WriteJSON(w, http.StatusOK, h.payments.Methods(q))
}
