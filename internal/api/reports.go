package api

import (
	"fmt"
	"net/http"
	"time"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/utils"
)

const dateLayout = "2006-01-02"

// salesSummary reports on [from, to] in whole UTC days. Without parameters
// it covers the last 30 days up to and including today.
func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.FromContext(r.Context())
	q := r.URL.Query()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -29)
	to := today

	var err error
	if raw := q.Get("from"); raw != "" {
		if from, err = time.Parse(dateLayout, raw); err != nil {
			writeError(w, r, fmt.Errorf("%w: from must be YYYY-MM-DD", errMalformedBody))
			return
		}
	}
	if raw := q.Get("to"); raw != "" {
		if to, err = time.Parse(dateLayout, raw); err != nil {
			writeError(w, r, fmt.Errorf("%w: to must be YYYY-MM-DD", errMalformedBody))
			return
		}
	}

	sum, err := h.orders.Summary(r.Context(), caller, from, to.AddDate(0, 0, 1))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, sum)
}
