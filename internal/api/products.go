package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/category"
	"zidoyvelg-be/internal/product"
	"zidoyvelg-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	inStock, _ := strconv.ParseBool(q.Get("inStock"))

	res, err := h.products.List(r.Context(), product.ListFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
		Brand:    strings.TrimSpace(q.Get("brand")),
		InStock:  inStock,
		Page:     utils.AtoiDefault(q.Get("page"), 1),
		Limit:    utils.AtoiDefault(q.Get("limit"), product.DefaultLimit),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.FromContext(r.Context())

	in, img, cleanup, err := h.parseProductForm(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cleanup()

	p, err := h.products.Create(r.Context(), caller, in, img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.FromContext(r.Context())

	id, err := productIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in, img, cleanup, err := h.parseProductForm(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cleanup()

	p, err := h.products.Update(r.Context(), caller, id, in, img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.FromContext(r.Context())

	id, err := productIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.products.Delete(r.Context(), caller, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func productIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, product.ErrProductNotFound
	}
	return id, nil
}

// parseProductForm reads the multipart product form. The returned cleanup
// closes the uploaded image, if any.
func (h *Handler) parseProductForm(w http.ResponseWriter, r *http.Request) (product.Input, *product.Image, func(), error) {
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartSlack)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return product.Input{}, nil, noop, fmt.Errorf("%w: %s", errMalformedBody, err.Error())
	}

	in := product.Input{
		Name:        r.FormValue("name"),
		Brand:       r.FormValue("brand"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		Color:       r.FormValue("color"),
		Spec:        r.FormValue("spec"),
	}

	price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
	if err != nil {
		return product.Input{}, nil, noop, fmt.Errorf("%w: price must be a number", product.ErrInvalidInput)
	}
	in.Price = price

	stock, err := strconv.Atoi(strings.TrimSpace(r.FormValue("stock")))
	if err != nil {
		return product.Input{}, nil, noop, fmt.Errorf("%w: stock must be an integer", product.ErrInvalidInput)
	}
	in.Stock = stock

	if raw := strings.TrimSpace(r.FormValue("variants")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Variants); err != nil {
			return product.Input{}, nil, noop, fmt.Errorf("%w: variants: %s", product.ErrInvalidInput, err.Error())
		}
	}

	file, hdr, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, noop, nil
	}
	if err != nil {
		return product.Input{}, nil, noop, fmt.Errorf("%w: %s", errMalformedBody, err.Error())
	}
	return in, &product.Image{Filename: hdr.Filename, Body: file}, func() { file.Close() }, nil
}

func (h *Handler) productFacets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.facets.Facets(r.Context(), q.Get("q"), utils.AtoiDefault(q.Get("limit"), category.DefaultLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}
