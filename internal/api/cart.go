package api

import (
	"net/http"

	"zidoyvelg-be/internal/cart"
	"zidoyvelg-be/internal/utils"
)

type quoteRequest struct {
	Lines []cart.Line `json:"lines"`
	Cart  string      `json:"cart"`
}

type quoteResponse struct {
	*cart.Quote
	Cart string `json:"cart"`
}

// quoteCart prices a cart against the live catalog. It is read-only and
// open to anonymous callers.
func (h *Handler) quoteCart(w http.ResponseWriter, r *http.Request) {
	var body quoteRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	var (
		c   cart.Cart
		err error
	)
	if body.Cart != "" && len(body.Lines) == 0 {
		c, err = cart.Decode(body.Cart)
	} else {
		c, err = cart.FromLines(body.Lines)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	q, err := h.carts.Quote(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}

	blob, err := c.Encode()
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, quoteResponse{Quote: q, Cart: blob})
}
