package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/cart"
	"zidoyvelg-be/internal/idempotency"
	"zidoyvelg-be/internal/logger"
	"zidoyvelg-be/internal/metrics"
	"zidoyvelg-be/internal/order"
	"zidoyvelg-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"

	// Headroom for the non-file multipart fields on top of the upload limit.
	multipartSlack = 1 << 20
)

type orderResponse struct {
	*order.Order
	NextStatuses []order.Status `json:"nextStatuses"`
}

func newOrderResponse(o *order.Order) orderResponse {
	return orderResponse{Order: o, NextStatuses: order.NextStatuses(o.Status)}
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "order.Checkout")
	defer span.End()

	caller, _ := auth.FromContext(ctx)
	span.SetAttributes(attribute.Int64("user.id", int64(caller.UserID)))

	fail := func(err error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, r, err)
	}

	req, cleanup, err := h.parseCheckoutForm(w, r)
	if err != nil {
		fail(err)
		return
	}
	defer cleanup()

	key, replayed, err := h.beginIdempotent(ctx, w, r, caller)
	if err != nil {
		fail(err)
		return
	}
	if replayed {
		span.SetAttributes(attribute.Bool("idempotent.replay", true))
		return
	}

	o, err := h.orders.Checkout(ctx, caller, req)
	if err != nil {
		h.releaseIdempotent(ctx, key)
		fail(err)
		return
	}

	h.completeIdempotent(ctx, key, o.ID)

	span.SetAttributes(
		attribute.String("order.id", o.ID.String()),
		attribute.String("order.total", o.TotalAmount.String()),
		attribute.Int("order.items", len(o.Items)),
	)
	utils.WriteJSON(w, http.StatusCreated, newOrderResponse(o))
}

// beginIdempotent reserves the request's Idempotency-Key. When the key was
// already completed it writes the original order and reports replayed. A
// store outage degrades to an unguarded checkout.
func (h *Handler) beginIdempotent(ctx context.Context, w http.ResponseWriter, r *http.Request, caller auth.Identity) (string, bool, error) {
	raw := r.Header.Get(IdempotencyKeyHeader)
	if raw == "" || h.idem == nil {
		return "", false, nil
	}

	key, err := idempotency.Key(caller.UserID, raw)
	if err != nil {
		return "", false, err
	}

	out, err := h.idem.Begin(ctx, key)
	if errors.Is(err, idempotency.ErrInProgress) {
		return "", false, err
	}
	if err != nil {
		logger.FromCtx(ctx).Warn("idempotency store unavailable", zap.Error(err))
		return "", false, nil
	}

	if !out.Replay() {
		return key, false, nil
	}

	o, err := h.orders.GetOrder(ctx, caller, out.OrderID)
	if err != nil {
		return "", false, err
	}
	h.metrics.Counter(metrics.IdempotentReplays).Inc()
	utils.WriteJSON(w, http.StatusOK, newOrderResponse(o))
	return "", true, nil
}

// completeIdempotent records the order against key, retrying once. If both
// attempts fail the pending marker lapses on its own short TTL.
func (h *Handler) completeIdempotent(ctx context.Context, key string, orderID uuid.UUID) {
	if key == "" {
		return
	}
	err := h.idem.Complete(ctx, key, orderID)
	if err == nil {
		return
	}
	if err = h.idem.Complete(ctx, key, orderID); err != nil {
		logger.FromCtx(ctx).Warn("failed to record idempotency key",
			zap.String("order_id", orderID.String()), zap.Error(err))
	}
}

func (h *Handler) releaseIdempotent(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.idem.Release(ctx, key); err != nil {
		logger.FromCtx(ctx).Warn("failed to release idempotency key", zap.Error(err))
	}
}

// parseCheckoutForm reads the multipart checkout form. Lines come from the
// items JSON or, when absent, from an encoded cart blob.
func (h *Handler) parseCheckoutForm(w http.ResponseWriter, r *http.Request) (order.CheckoutRequest, func(), error) {
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartSlack)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return order.CheckoutRequest{}, noop, fmt.Errorf("%w: %s", errMalformedBody, err.Error())
	}

	req := order.CheckoutRequest{
		CustomerName:    r.FormValue("customerName"),
		CustomerPhone:   r.FormValue("customerPhone"),
		ShippingAddress: r.FormValue("shippingAddress"),
		PaymentMethod:   r.FormValue("paymentMethod"),
	}

	items := strings.TrimSpace(r.FormValue("items"))
	blob := strings.TrimSpace(r.FormValue("cart"))
	switch {
	case items == "" && blob != "":
		c, err := cart.Decode(blob)
		if err != nil {
			return order.CheckoutRequest{}, noop, err
		}
		for _, l := range c.CheckoutLines() {
			req.Items = append(req.Items, order.LineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
		}
	default:
		lines, err := order.ParseLineRequests([]byte(items))
		if err != nil {
			return order.CheckoutRequest{}, noop, err
		}
		req.Items = lines
	}

	file, hdr, err := r.FormFile("paymentProof")
	if errors.Is(err, http.ErrMissingFile) {
		return req, noop, nil
	}
	if err != nil {
		return order.CheckoutRequest{}, noop, fmt.Errorf("%w: %s", errMalformedBody, err.Error())
	}
	req.Proof = &order.ProofUpload{Filename: hdr.Filename, Body: file}
	return req, func() { file.Close() }, nil
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.FromContext(r.Context())

	orders, err := h.orders.MyOrders(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) allOrders(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.FromContext(r.Context())

	orders, err := h.orders.AllOrders(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.FromContext(r.Context())

	id, err := orderIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.GetOrder(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newOrderResponse(o))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "order.UpdateStatus")
	defer span.End()

	caller, _ := auth.FromContext(ctx)

	fail := func(err error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, r, err)
	}

	id, err := orderIDParam(r)
	if err != nil {
		fail(err)
		return
	}

	var body statusRequest
	if err := decodeJSON(r, &body); err != nil {
		fail(err)
		return
	}
	target, err := order.ParseStatus(body.Status)
	if err != nil {
		fail(err)
		return
	}

	span.SetAttributes(
		attribute.String("order.id", id.String()),
		attribute.String("order.target_status", string(target)),
		attribute.String("caller.role", string(caller.Role)),
	)

	o, err := h.orders.UpdateStatus(ctx, caller, id, target)
	if err != nil {
		fail(err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newOrderResponse(o))
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, order.ErrOrderNotFound
	}
	return id, nil
}
